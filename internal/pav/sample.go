// Package pav resolves per-haplotype input files for PAV-style callers.
//
// PAV writes one variant table per haplotype and encodes the haplotype in the
// sample name itself: "HG00733-h1" is haplotype 1 of sample HG00733. This
// package parses that convention and locates the haplotype's variant table
// under the caller's data root.
package pav

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/svbio/svnorm/internal/registry"
	"github.com/svbio/svnorm/internal/task"
)

// CallerType is the registry caller-type tag for PAV BED output trees.
const CallerType = "pavbed"

// sampleHapPattern matches "<base>-h<digits>" anchored at both ends. The base
// is greedy, so "SAMPLE-h1-h2" parses as base "SAMPLE-h1", haplotype "h2".
var sampleHapPattern = regexp.MustCompile(`^(.+)-h(\d+)$`)

// NamingConventionError reports a sample identifier without the required
// haplotype suffix.
type NamingConventionError struct {
	Sample string
}

func (e *NamingConventionError) Error() string {
	return fmt.Sprintf(
		"sample %q does not follow the \"<sample>-h<hap>\" naming convention required for %s sources",
		e.Sample, CallerType,
	)
}

// ParseSampleHap splits a composite sample identifier into its base sample
// name and haplotype tag. The haplotype digits are kept verbatim, so
// "HG00733-h01" yields tag "h01".
func ParseSampleHap(sample string) (base, hapTag string, err error) {
	m := sampleHapPattern.FindStringSubmatch(sample)
	if m == nil {
		return "", "", &NamingConventionError{Sample: sample}
	}
	return m[1], "h" + m[2], nil
}

// InputPath builds the path of the per-haplotype variant table under the
// registry entry's data root:
//
//	<DATA>/results/<base>/bed/pre_merge/<hap>/<vartype>_<svtype>.bed.gz
func InputPath(entry registry.Entry, base, hapTag string, t task.Task) string {
	return filepath.Join(
		entry.Data,
		"results", base, "bed", "pre_merge", hapTag,
		fmt.Sprintf("%s_%s.bed.gz", t.VarType, t.SVType),
	)
}

// Resolve returns the physical path of the task's input table. The sample
// name is validated before the registry is consulted, so a malformed name
// fails without any lookup or file I/O.
func Resolve(reg registry.Registry, t task.Task) (string, error) {
	base, hapTag, err := ParseSampleHap(t.Sample)
	if err != nil {
		return "", err
	}

	entry, err := reg.Lookup(t.Source, CallerType, t)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", t, err)
	}

	return InputPath(entry, base, hapTag, t), nil
}
