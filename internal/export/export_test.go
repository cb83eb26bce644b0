package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

var flatEntries = []leaderboard.Entry{
	{Address: "0xAA", Points: "5"},
	{Address: "0xBB", Points: "3"},
}

func writeAndRead(t *testing.T, entries []leaderboard.Entry, opts Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaderboard_data."+string(opts.Format))
	require.NoError(t, Write(path, entries, opts))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWrite_JSONList(t *testing.T) {
	got := writeAndRead(t, flatEntries, Options{Layout: LayoutList, Format: FormatJSON})

	assert.JSONEq(t, `[{"address":"0xAA","points":5},{"address":"0xBB","points":3}]`, got)
	assert.Contains(t, got, "\n    {\n        \"address\": \"0xAA\"", "expected 4-space indentation")
}

func TestWrite_JSONMap(t *testing.T) {
	got := writeAndRead(t, []leaderboard.Entry{{Address: "0xCC", Points: "10"}}, Options{Layout: LayoutMap, Format: FormatJSON})
	assert.JSONEq(t, `{"0xCC": 10}`, got)
}

func TestWrite_JSONMapLastWins(t *testing.T) {
	entries := []leaderboard.Entry{
		{Address: "0xAA", Points: "1"},
		{Address: "0xBB", Points: "2"},
		{Address: "0xAA", Points: "7"},
	}
	got := writeAndRead(t, entries, Options{Layout: LayoutMap, Format: FormatJSON})
	assert.JSONEq(t, `{"0xAA": 7, "0xBB": 2}`, got)
}

func TestWrite_Empty(t *testing.T) {
	tests := []struct {
		name    string
		entries []leaderboard.Entry
		opts    Options
		want    string
	}{
		{name: "json_list_nil", entries: nil, opts: Options{Layout: LayoutList, Format: FormatJSON}, want: "[]\n"},
		{name: "json_list_empty", entries: []leaderboard.Entry{}, opts: Options{Layout: LayoutList, Format: FormatJSON}, want: "[]\n"},
		{name: "json_map", entries: nil, opts: Options{Layout: LayoutMap, Format: FormatJSON}, want: "{}\n"},
		{name: "yaml_list", entries: nil, opts: Options{Layout: LayoutList, Format: FormatYAML}, want: "[]\n"},
		{name: "yaml_map", entries: nil, opts: Options{Layout: LayoutMap, Format: FormatYAML}, want: "{}\n"},
		{name: "csv", entries: nil, opts: Options{Layout: LayoutList, Format: FormatCSV}, want: "address,points\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, writeAndRead(t, tt.entries, tt.opts))
		})
	}
}

func TestWrite_PreservesLargeAndFractionalPoints(t *testing.T) {
	entries := []leaderboard.Entry{
		{Address: "0xAA", Points: "123456789012345678901234567890"},
		{Address: "0xBB", Points: "0.125"},
	}
	got := writeAndRead(t, entries, Options{Layout: LayoutList, Format: FormatJSON})
	assert.Contains(t, got, "123456789012345678901234567890")
	assert.Contains(t, got, "0.125")
}

func TestWrite_Idempotent(t *testing.T) {
	entries := []leaderboard.Entry{
		{Address: "0xDD", Points: "4"},
		{Address: "0xAA", Points: "1"},
		{Address: "0xCC", Points: "9"},
	}

	for _, format := range Formats {
		for _, layout := range []Layout{LayoutList, LayoutMap} {
			t.Run(string(format)+"_"+string(layout), func(t *testing.T) {
				dir := t.TempDir()
				a := filepath.Join(dir, "a")
				b := filepath.Join(dir, "b")
				require.NoError(t, Write(a, entries, Options{Layout: layout, Format: format}))
				require.NoError(t, Write(b, entries, Options{Layout: layout, Format: format}))

				da, err := os.ReadFile(a)
				require.NoError(t, err)
				db, err := os.ReadFile(b)
				require.NoError(t, err)
				if format == FormatXLSX {
					// zip entries carry timestamps; compare decoded cells instead.
					assert.Equal(t, readXLSX(t, a), readXLSX(t, b))
					return
				}
				assert.True(t, bytes.Equal(da, db), "outputs differ")
			})
		}
	}
}

func TestWrite_TruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard_data.json")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 4096), 0o644))

	require.NoError(t, Write(path, flatEntries[:1], Options{Layout: LayoutList, Format: FormatJSON}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got), "stale bytes must not survive the rewrite")
	assert.Len(t, got, 1)
}

func TestWrite_WritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaderboard_data.json")
	require.NoError(t, Write(path, flatEntries, Options{Layout: LayoutList, Format: FormatJSON}))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1, "no temp file is used")
	assert.Equal(t, "leaderboard_data.json", files[0].Name())
}

func TestWrite_Errors(t *testing.T) {
	dir := t.TempDir()

	err := Write(filepath.Join(dir, "out"), flatEntries, Options{Layout: LayoutList, Format: "toml"})
	assert.ErrorContains(t, err, `unsupported format "toml"`)

	err = Write(filepath.Join(dir, "out"), flatEntries, Options{Layout: LayoutAuto, Format: FormatJSON})
	assert.ErrorContains(t, err, "must be resolved")

	err = Write(dir, flatEntries, Options{Layout: LayoutList, Format: FormatJSON})
	assert.ErrorContains(t, err, "export: create")

	_, statErr := os.Stat(filepath.Join(dir, "out"))
	assert.True(t, os.IsNotExist(statErr), "invalid options must not touch the filesystem")
}

func TestWrite_DefaultFormatIsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard_data.json")
	require.NoError(t, Write(path, flatEntries, Options{Layout: LayoutList}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"address":"0xAA","points":5},{"address":"0xBB","points":3}]`, string(data))
}

func TestWrite_YAML(t *testing.T) {
	entries := []leaderboard.Entry{
		{Address: "0xBB", Points: "3"},
		{Address: "0xAA", Points: "1.5"},
		{Address: "0xBB", Points: "8"},
	}

	list := writeAndRead(t, entries, Options{Layout: LayoutList, Format: FormatYAML})
	var gotList []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(list), &gotList))
	require.Len(t, gotList, 3)
	assert.Equal(t, "0xBB", gotList[0]["address"])
	assert.Equal(t, 3, gotList[0]["points"])
	assert.InDelta(t, 1.5, gotList[1]["points"], 0.0001)

	mapping := writeAndRead(t, entries, Options{Layout: LayoutMap, Format: FormatYAML})
	assert.Equal(t, "\"0xAA\": 1.5\n\"0xBB\": 8\n", mapping)
}

func TestWrite_CSV(t *testing.T) {
	entries := []leaderboard.Entry{
		{Address: "0xBB", Points: "3"},
		{Address: "0xAA", Points: "1"},
		{Address: "0xBB", Points: "8"},
	}

	list := writeAndRead(t, entries, Options{Layout: LayoutList, Format: FormatCSV})
	assert.Equal(t, "address,points\n0xBB,3\n0xAA,1\n0xBB,8\n", list)

	mapping := writeAndRead(t, entries, Options{Layout: LayoutMap, Format: FormatCSV})
	assert.Equal(t, "address,points\n0xAA,1\n0xBB,8\n", mapping)
}

func readXLSX(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok, "sheet %q missing", SheetName)

	var rows [][]string
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestWrite_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.xlsx")
	require.NoError(t, Write(path, flatEntries, Options{Layout: LayoutList, Format: FormatXLSX}))

	rows := readXLSX(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"address", "points"}, rows[0])
	assert.Equal(t, "0xAA", rows[1][0])
	assert.Equal(t, "0xBB", rows[2][0])

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	v, err := f.Sheet[SheetName].Rows[1].Cells[1].Float()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, v, 0.0001)
}

func TestLayoutFor(t *testing.T) {
	assert.Equal(t, LayoutList, LayoutFor(LayoutAuto, leaderboard.ShapeFlat))
	assert.Equal(t, LayoutMap, LayoutFor(LayoutAuto, leaderboard.ShapeParticipants))
	assert.Equal(t, LayoutMap, LayoutFor("", leaderboard.ShapeParticipants))
	assert.Equal(t, LayoutList, LayoutFor(LayoutList, leaderboard.ShapeParticipants))
	assert.Equal(t, LayoutMap, LayoutFor(LayoutMap, leaderboard.ShapeFlat))
}
