// Package leaderboard parses leaderboard API responses into address/points entries.
package leaderboard

import (
	"encoding/json"
	"math/big"
)

// Shape identifies which response layout a body uses.
type Shape string

const (
	// ShapeFlat is {"data": [{"address": ..., "points": ...}]}.
	ShapeFlat Shape = "flat"
	// ShapeParticipants is {"data": {"participants": [{"points": ..., "addresses": [...]}]}}.
	ShapeParticipants Shape = "participants"
)

// StashType is the address type treated as a participant's payout address.
const StashType = "stash"

// Entry is one extracted (address, points) pair. Points keeps the literal
// number text from the response.
type Entry struct {
	Address string      `json:"address"`
	Points  json.Number `json:"points"`
}

// Result is the outcome of parsing one response body.
type Result struct {
	Shape   Shape
	Entries []Entry
}

// Stats summarizes a set of entries.
type Stats struct {
	Entries         int
	UniqueAddresses int
	TotalPoints     float64
}

// Summarize counts entries and distinct addresses and sums points.
// Unparseable points values are ignored in the total.
func Summarize(entries []Entry) Stats {
	seen := make(map[string]struct{}, len(entries))
	total := new(big.Rat)
	for _, e := range entries {
		seen[e.Address] = struct{}{}
		if r, ok := new(big.Rat).SetString(e.Points.String()); ok {
			total.Add(total, r)
		}
	}
	f, _ := total.Float64()
	return Stats{
		Entries:         len(entries),
		UniqueAddresses: len(seen),
		TotalPoints:     f,
	}
}
