package adapters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemalens/internal/types"
)

func sampleCodeTable() types.CodeTable {
	ancestor := "Activity"
	code := "acty"
	return types.CodeTable{
		Schema: "sample",
		Slot:   "id",
		Rows: []types.CodeTableRow{
			{Class: "Activity", DefinesSlot: true, Ancestor: &ancestor, Typecode: &code},
			{Class: "Biosample", DefinesSlot: true},
			{Class: "QuantityValue"},
		},
	}
}

const sampleCodeTableTSV = "class\tuses_id\tfrom_ancestor\ttypecode\n" +
	"Activity\ttrue\tActivity\tacty\n" +
	"Biosample\ttrue\t\t\n" +
	"QuantityValue\tfalse\t\t\n"

func TestCodeTableTSVWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCodeTableTSVAdapter().WriteCodeTable(&buf, sampleCodeTable()))
	assert.Equal(t, sampleCodeTableTSV, buf.String())
}

func TestCodeTableTSVWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "typecodes.tsv")
	require.NoError(t, NewCodeTableTSVAdapter().WriteCodeTableFile(path, sampleCodeTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCodeTableTSV, string(data))

	assert.Error(t, NewCodeTableTSVAdapter().WriteCodeTableFile(" ", sampleCodeTable()))
}

func TestCodeTableTSVRoundTripsThroughParser(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCodeTableTSVAdapter().WriteCodeTable(&buf, sampleCodeTable()))

	table, err := ParseTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, CodeTableHeader("id"), table.Header)
	assert.Len(t, table.Rows, 3)
}
