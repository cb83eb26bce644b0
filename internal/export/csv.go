package export

import (
	"encoding/csv"
	"io"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

var header = []string{"address", "points"}

func writeCSV(w io.Writer, entries []leaderboard.Entry, layout Layout) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range arrange(entries, layout) {
		if err := cw.Write([]string{e.Address, e.Points.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
