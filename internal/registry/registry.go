// Package registry resolves caller sources to their physical data roots.
//
// The sample registry maps a (source name, caller type) pair to the entry
// describing where that caller's output tree lives. Backends share the
// Registry interface so the splitter can be tested with a fake.
package registry

import (
	"fmt"
	"strings"

	"github.com/svbio/svnorm/internal/task"
)

// Entry is one registry record. DATA is the caller's data root directory;
// any further columns from the backing table are preserved in Fields.
type Entry struct {
	Name   string
	Type   string
	Data   string
	Fields map[string]string
}

// Registry looks up the entry for a source and caller type. The task supplies
// the ambient wildcard context used to expand placeholders in DATA.
type Registry interface {
	Lookup(source, callerType string, t task.Task) (Entry, error)
}

// NotFoundError reports a missing registry entry.
type NotFoundError struct {
	Source     string
	CallerType string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no registry entry for source %q with caller type %q", e.Source, e.CallerType)
}

// ExpandData substitutes {sample}-style placeholders in a DATA value with the
// task's wildcard context. Unknown placeholders are left untouched so path
// mistakes surface as missing files rather than silently altered paths.
func ExpandData(data string, t task.Task) string {
	for key, val := range t.Wildcards() {
		data = strings.ReplaceAll(data, "{"+key+"}", val)
	}
	return data
}
