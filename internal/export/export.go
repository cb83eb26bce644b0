// Package export writes extracted leaderboard entries to disk.
package export

import (
	"io"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

// Layout selects how entries are arranged in the output.
type Layout string

const (
	// LayoutAuto picks list for flat responses and map for participant responses.
	LayoutAuto Layout = "auto"
	// LayoutList writes an array of {address, points} records in input order.
	LayoutList Layout = "list"
	// LayoutMap writes an address -> points object; later duplicates win.
	LayoutMap Layout = "map"
)

// Format selects the output encoding.
type Format string

// Supported output formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported output formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// Layouts lists the accepted layout values.
var Layouts = []Layout{LayoutAuto, LayoutList, LayoutMap}

// Options configures Write.
type Options struct {
	Layout Layout
	Format Format
}

// LayoutFor resolves LayoutAuto against the detected response shape.
func LayoutFor(layout Layout, shape leaderboard.Shape) Layout {
	if layout != LayoutAuto && layout != "" {
		return layout
	}
	if shape == leaderboard.ShapeParticipants {
		return LayoutMap
	}
	return LayoutList
}

type encoder func(w io.Writer, entries []leaderboard.Entry, layout Layout) error

var encoders = map[Format]encoder{
	FormatJSON: writeJSON,
	FormatYAML: writeYAML,
	FormatCSV:  writeCSV,
	FormatXLSX: writeXLSX,
}

// Write serializes entries to path, truncating any existing file. The file
// is written in place, so a failure part way through can leave it partial.
func Write(path string, entries []leaderboard.Entry, opts Options) error {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	enc, ok := encoders[opts.Format]
	if !ok {
		return eris.Errorf("export: unsupported format %q", opts.Format)
	}
	if opts.Layout != LayoutList && opts.Layout != LayoutMap {
		return eris.Errorf("export: layout %q must be resolved to list or map", opts.Layout)
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	if err := enc(f, entries, opts.Layout); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "export: write %s", path)
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}

	zap.L().Debug("wrote leaderboard output",
		zap.String("path", path),
		zap.String("format", string(opts.Format)),
		zap.String("layout", string(opts.Layout)),
		zap.Int("entries", len(entries)),
	)
	return nil
}

// collapse applies last-write-wins on duplicate addresses and returns the
// surviving entries sorted by address.
func collapse(entries []leaderboard.Entry) []leaderboard.Entry {
	m := leaderboard.MappingFromEntries(entries)
	out := make([]leaderboard.Entry, 0, len(m))
	for addr, pts := range m {
		out = append(out, leaderboard.Entry{Address: addr, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

func arrange(entries []leaderboard.Entry, layout Layout) []leaderboard.Entry {
	if layout == LayoutMap {
		return collapse(entries)
	}
	return entries
}
