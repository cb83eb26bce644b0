package leaderboard

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"sort"

	"github.com/rotisserie/eris"
)

// Allocation is one address's share of a fixed allocation.
type Allocation struct {
	Address string
	Points  *big.Int
	Amount  *big.Int
}

// ReadMapping reads an address -> points JSON object, as written by the
// mapping layout.
func ReadMapping(path string) (map[string]json.Number, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "leaderboard: read mapping %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]json.Number
	if err := dec.Decode(&m); err != nil {
		return nil, eris.Wrapf(err, "leaderboard: decode mapping %s", path)
	}
	return m, nil
}

// MappingFromEntries collapses entries into an address -> points mapping.
// Later entries overwrite earlier ones with the same address.
func MappingFromEntries(entries []Entry) map[string]json.Number {
	m := make(map[string]json.Number, len(entries))
	for _, e := range entries {
		m[e.Address] = e.Points
	}
	return m
}

// Distribute splits allocation across addresses in proportion to their
// points. Points are truncated to integers and addresses with points <= 0
// are dropped. Each amount is points*allocation/total, rounded down, so the
// amounts may sum to slightly less than allocation. Results are ordered by
// address.
func Distribute(points map[string]json.Number, allocation *big.Int) ([]Allocation, error) {
	if allocation == nil || allocation.Sign() < 0 {
		return nil, eris.New("leaderboard: allocation must be non-negative")
	}

	out := make([]Allocation, 0, len(points))
	total := new(big.Int)
	for addr, n := range points {
		r, ok := new(big.Rat).SetString(n.String())
		if !ok {
			return nil, eris.Errorf("leaderboard: invalid points %q for %s", n.String(), addr)
		}
		if r.Sign() <= 0 {
			continue
		}
		p := new(big.Int).Quo(r.Num(), r.Denom())
		total.Add(total, p)
		out = append(out, Allocation{Address: addr, Points: p})
	}
	if total.Sign() == 0 {
		return nil, eris.New("leaderboard: no positive points to distribute")
	}

	for i := range out {
		amt := new(big.Int).Mul(out[i].Points, allocation)
		out[i].Amount = amt.Quo(amt, total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}
