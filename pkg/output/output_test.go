package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	SharedWith string `json:"SharedWith"`
	IsActive   bool   `json:"IsActive"`
}

func write(t *testing.T, format string, v any, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, format, v, opts))
	return buf.String()
}

func TestJSONKeepsRemoteKeyOrder(t *testing.T) {
	got := write(t, JSON, json.RawMessage(`{"z":1,"a":{"y":true,"b":null}}`), Options{})
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": {\n    \"y\": true,\n    \"b\": null\n  }\n}\n", got)
}

func TestJSONGoValue(t *testing.T) {
	got := write(t, JSON, []row{{SharedWith: "A & B", IsActive: true}}, Options{})
	assert.Equal(t, "[\n  {\n    \"SharedWith\": \"A & B\",\n    \"IsActive\": true\n  }\n]\n", got)
}

func TestStringsAreVerbatim(t *testing.T) {
	for _, format := range []string{JSON, Text, CSV, MD} {
		assert.Equal(t, "Logged out\n", write(t, format, "Logged out", Options{}), format)
	}
	assert.Empty(t, write(t, None, "Logged out", Options{}))
}

func TestTextObject(t *testing.T) {
	got := write(t, Text, json.RawMessage(`{"id":"1","displayName":"Tab","configuration":{"entityId":"x"}}`), Options{})
	assert.Equal(t, "id           : 1\ndisplayName  : Tab\nconfiguration: {\"entityId\":\"x\"}\n", got)
}

func TestTextTable(t *testing.T) {
	got := write(t, Text, []row{{SharedWith: "John Doe", IsActive: true}, {SharedWith: "Everyone"}}, Options{})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "SharedWith")
	assert.Contains(t, lines[0], "IsActive")
	assert.Contains(t, got, "John Doe")
	assert.Contains(t, got, "Everyone")
	assert.Contains(t, got, "false")
}

func TestTextScalars(t *testing.T) {
	assert.Equal(t, "a\nb\n", write(t, Text, []string{"a", "b"}, Options{}))
	assert.Empty(t, write(t, Text, []row{}, Options{}))
}

func TestCSV(t *testing.T) {
	rows := []row{{SharedWith: "Doe, John", IsActive: true}}
	assert.Equal(t, "SharedWith,IsActive\n\"Doe, John\",true\n", write(t, CSV, rows, Options{CSVHeader: true}))
	assert.Equal(t, "\"Doe, John\",true\n", write(t, CSV, rows, Options{}))

	got := write(t, CSV, json.RawMessage(`{"Name":"PnP","CustomProperties":{"a":"1"}}`), Options{CSVHeader: true})
	assert.Equal(t, "Name,CustomProperties\nPnP,\"{\"\"a\"\":\"\"1\"\"}\"\n", got)
}

func TestMarkdown(t *testing.T) {
	got := write(t, MD, []row{{SharedWith: "A|B", IsActive: false}}, Options{})
	assert.Equal(t, "| SharedWith | IsActive |\n| --- | --- |\n| A\\|B | false |\n", got)

	got = write(t, MD, json.RawMessage(`{"Title":"List"}`), Options{})
	assert.Equal(t, "| Property | Value |\n| --- | --- |\n| Title | List |\n", got)
}

func TestInvalidFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "xml", "x", Options{})
	assert.EqualError(t, err, "'xml' is not a valid output type. Allowed values: json, text, csv, md, none")
}
