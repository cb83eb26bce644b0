package export

import (
	"encoding/json"
	"io"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

const jsonIndent = "    "

func writeJSON(w io.Writer, entries []leaderboard.Entry, layout Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)

	if layout == LayoutMap {
		// encoding/json sorts map keys, keeping output stable across runs.
		return enc.Encode(leaderboard.MappingFromEntries(entries))
	}
	return enc.Encode(entries)
}
