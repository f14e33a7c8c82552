package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svbio/svnorm/internal/task"
)

const sampleTable = `NAME	TYPE	DATA	VERSION
hgsvc	pavbed	/data/pav/run1	2.0
hgsvc	callerset	/data/merged	1.1
hprc	pavbed	/data/pav/{sample}	2.1
`

func testTask() task.Task {
	return task.Task{
		Source:  "hgsvc",
		Sample:  "HG00733-h1",
		VarType: "sv",
		SVType:  "ins",
	}
}

func TestTableLookup(t *testing.T) {
	tbl, err := NewTableFromReader(strings.NewReader(sampleTable))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	entry, err := tbl.Lookup("hgsvc", "pavbed", testTask())
	require.NoError(t, err)

	assert.Equal(t, "hgsvc", entry.Name)
	assert.Equal(t, "pavbed", entry.Type)
	assert.Equal(t, "/data/pav/run1", entry.Data)
	assert.Equal(t, "2.0", entry.Fields["VERSION"])
}

func TestTableLookupKeyedByType(t *testing.T) {
	tbl, err := NewTableFromReader(strings.NewReader(sampleTable))
	require.NoError(t, err)

	entry, err := tbl.Lookup("hgsvc", "callerset", testTask())
	require.NoError(t, err)
	assert.Equal(t, "/data/merged", entry.Data)
}

func TestTableLookupNotFound(t *testing.T) {
	tbl, err := NewTableFromReader(strings.NewReader(sampleTable))
	require.NoError(t, err)

	_, err = tbl.Lookup("nosuch", "pavbed", testTask())
	require.Error(t, err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nosuch", nf.Source)
	assert.Equal(t, "pavbed", nf.CallerType)
}

func TestTableWildcardExpansion(t *testing.T) {
	tbl, err := NewTableFromReader(strings.NewReader(sampleTable))
	require.NoError(t, err)

	tk := testTask()
	tk.Source = "hprc"

	entry, err := tbl.Lookup("hprc", "pavbed", tk)
	require.NoError(t, err)
	assert.Equal(t, "/data/pav/HG00733-h1", entry.Data)
}

func TestTableMissingColumn(t *testing.T) {
	_, err := NewTableFromReader(strings.NewReader("NAME\tDATA\nhgsvc\t/data\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TYPE")
}

func TestTableRaggedRow(t *testing.T) {
	_, err := NewTableFromReader(strings.NewReader("NAME\tTYPE\tDATA\nhgsvc\tpavbed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestTableDuplicateEntry(t *testing.T) {
	dup := "NAME\tTYPE\tDATA\nhgsvc\tpavbed\t/a\nhgsvc\tpavbed\t/b\n"
	_, err := NewTableFromReader(strings.NewReader(dup))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTableSkipsCommentsAndBlanks(t *testing.T) {
	content := "# registry for run1\n\nNAME\tTYPE\tDATA\n# local caller\nhgsvc\tpavbed\t/data\n"
	tbl, err := NewTableFromReader(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
}

func TestLoadTableGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.tsv.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleTable))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	tbl, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
}

func TestExpandDataUnknownPlaceholder(t *testing.T) {
	out := ExpandData("/data/{sample}/{unknown}", testTask())
	assert.Equal(t, "/data/HG00733-h1/{unknown}", out)
}
