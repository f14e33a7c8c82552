// Package task defines the wildcard context identifying one unit of work.
package task

import "fmt"

// Task identifies one (source, sample, vartype, svtype) unit. The scheduler
// invokes the tool once per task across the full cross-product of samples,
// haplotypes, and variant types.
type Task struct {
	Source  string // callerset/source name used for the registry lookup
	Sample  string // composite sample identifier, e.g. "HG00733-h1"
	VarType string // variant type: "sv", "indel", "snv"
	SVType  string // structural variant class: "ins", "del", "snv", ...
}

// VarTypeSNV is the variant type that carries no sequence payload.
const VarTypeSNV = "snv"

// IsSNV reports whether the task's variant type is the single-nucleotide
// marker, which has no SEQ column and gets an empty sequence archive.
func (t Task) IsSNV() bool {
	return t.VarType == VarTypeSNV
}

// String formats the task for log and error messages.
func (t Task) String() string {
	return fmt.Sprintf("%s/%s/%s_%s", t.Source, t.Sample, t.VarType, t.SVType)
}

// Wildcards returns the placeholder values available for registry DATA
// expansion, keyed by placeholder name.
func (t Task) Wildcards() map[string]string {
	return map[string]string{
		"source":  t.Source,
		"sample":  t.Sample,
		"vartype": t.VarType,
		"svtype":  t.SVType,
	}
}
