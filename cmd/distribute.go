package main

import (
	"encoding/json"
	"io"
	"math/big"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/leaderboard-cli/internal/leaderboard"
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Split a fixed allocation across addresses by points",
	Long: `Reads an address -> points mapping (the map layout written by fetch) and
splits --allocation across the addresses in proportion to their points.

Points are truncated to integers, addresses with no positive points are
dropped, and each amount is rounded down.

Examples:
  # Split 2,000,000 units across the fetched leaderboard
  distribute --allocation 2000000

  # Emit JSON for another tool
  distribute --input leaderboard_data.json --allocation 2000000000000000000000000 --format json`,
	Args: cobra.NoArgs,
	RunE: runDistribute,
}

func init() {
	f := distributeCmd.Flags()
	f.String("input", "", "mapping file to read (default: output.path from config)")
	f.String("allocation", "", "total amount to distribute, as an integer")
	f.String("format", "table", "output format: table or json")
	_ = distributeCmd.MarkFlagRequired("allocation")

	rootCmd.AddCommand(distributeCmd)
}

func runDistribute(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("distribute"); err != nil {
		return err
	}

	input, _ := cmd.Flags().GetString("input")
	rawAlloc, _ := cmd.Flags().GetString("allocation")
	format, _ := cmd.Flags().GetString("format")

	if input == "" {
		input = cfg.Output.Path
	}
	if format != "table" && format != "json" {
		return eris.Errorf("distribute: --format must be table or json (got %q)", format)
	}
	allocation, ok := new(big.Int).SetString(rawAlloc, 10)
	if !ok {
		return eris.Errorf("distribute: --allocation must be an integer (got %q)", rawAlloc)
	}

	points, err := leaderboard.ReadMapping(input)
	if err != nil {
		return err
	}

	allocs, err := leaderboard.Distribute(points, allocation)
	if err != nil {
		return err
	}

	zap.L().Info("distribute: computed allocation",
		zap.String("input", input),
		zap.Int("addresses", len(allocs)),
		zap.Int("dropped", len(points)-len(allocs)),
	)

	out := cmd.OutOrStdout()
	if format == "json" {
		return writeAllocationsJSON(out, allocs)
	}
	formatAllocations(out, allocs, allocation)
	return nil
}

type allocationRecord struct {
	Address string   `json:"address"`
	Points  *big.Int `json:"points"`
	Amount  *big.Int `json:"amount"`
}

func writeAllocationsJSON(w io.Writer, allocs []leaderboard.Allocation) error {
	recs := make([]allocationRecord, len(allocs))
	for i, a := range allocs {
		recs[i] = allocationRecord(a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(recs); err != nil {
		return eris.Wrap(err, "distribute: encode json")
	}
	return nil
}

// formatAllocations writes a tabular allocation report to w.
func formatAllocations(out io.Writer, allocs []leaderboard.Allocation, allocation *big.Int) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	distributed := new(big.Int)
	_, _ = p.Fprintln(w, "ADDRESS\tPOINTS\tAMOUNT\t")
	for _, a := range allocs {
		distributed.Add(distributed, a.Amount)
		_, _ = p.Fprintf(w, "%s\t%s\t%s\t\n", a.Address, formatInt(p, a.Points), formatInt(p, a.Amount))
	}
	_, _ = p.Fprintf(w, "Total\t\t%s\t\n", formatInt(p, distributed))
	_, _ = p.Fprintf(w, "Remainder\t\t%s\t\n", formatInt(p, new(big.Int).Sub(allocation, distributed)))
	_ = w.Flush()
}

// formatInt groups digits when the value fits in an int64 and falls back to
// the plain decimal string otherwise.
func formatInt(p *message.Printer, v *big.Int) string {
	if v.IsInt64() {
		return p.Sprintf("%d", v.Int64())
	}
	return v.String()
}
