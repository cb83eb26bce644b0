package leaderboard

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Parser extracts entries from the "data" member of a response.
type Parser interface {
	Shape() Shape
	Parse(data json.RawMessage) ([]Entry, error)
}

var parsers = map[Shape]Parser{
	ShapeFlat:         FlatParser{},
	ShapeParticipants: ParticipantParser{},
}

// ParserFor returns the parser registered for shape.
func ParserFor(shape Shape) (Parser, error) {
	p, ok := parsers[shape]
	if !ok {
		return nil, eris.Errorf("leaderboard: unknown shape %q", shape)
	}
	return p, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Parse reads a response body, detects its shape from the "data" member and
// extracts entries with the matching parser.
func Parse(r io.Reader) (*Result, error) {
	data, err := readData(r)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errMissingData()
	}
	shape, err := DetectShape(data)
	if err != nil {
		return nil, err
	}
	return parseWith(parsers[shape], data)
}

// ParseShape is Parse with the shape fixed by the caller instead of detected.
// A flat response without "data" yields no entries.
func ParseShape(r io.Reader, shape Shape) (*Result, error) {
	p, err := ParserFor(shape)
	if err != nil {
		return nil, err
	}
	data, err := readData(r)
	if err != nil {
		return nil, err
	}
	if data == nil {
		if shape != ShapeFlat {
			return nil, errMissingData()
		}
		data = json.RawMessage("[]")
	}
	return parseWith(p, data)
}

func parseWith(p Parser, data json.RawMessage) (*Result, error) {
	entries, err := p.Parse(data)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("parsed leaderboard response",
		zap.String("shape", string(p.Shape())),
		zap.Int("entries", len(entries)),
	)
	return &Result{Shape: p.Shape(), Entries: entries}, nil
}

// readData returns the "data" member, or nil when it is absent or null.
func readData(r io.Reader) (json.RawMessage, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, NewMalformed("decode body", err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, nil
	}
	return env.Data, nil
}

func errMissingData() error {
	return NewMalformed("decode body", eris.New(`missing "data" member`))
}

// DetectShape inspects the first token of data: an array is ShapeFlat, an
// object is ShapeParticipants.
func DetectShape(data json.RawMessage) (Shape, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", NewMalformed("detect shape", eris.New("empty data"))
	}
	switch trimmed[0] {
	case '[':
		return ShapeFlat, nil
	case '{':
		return ShapeParticipants, nil
	default:
		return "", NewMalformed("detect shape", eris.Errorf("unsupported data value %.20q", trimmed))
	}
}

// FlatParser handles {"data": [{"address": ..., "points": ...}]}.
// Items that are not objects, or lack a string address or numeric points,
// are skipped.
type FlatParser struct{}

type flatItem struct {
	Address *string      `json:"address"`
	Points  *json.Number `json:"points"`
}

// Shape implements Parser.
func (FlatParser) Shape() Shape { return ShapeFlat }

// Parse implements Parser.
func (FlatParser) Parse(data json.RawMessage) ([]Entry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, NewMalformed("parse flat", err)
	}

	entries := make([]Entry, 0, len(items))
	skipped := 0
	for _, raw := range items {
		var it flatItem
		if err := json.Unmarshal(raw, &it); err != nil || it.Address == nil || it.Points == nil {
			skipped++
			continue
		}
		entries = append(entries, Entry{Address: *it.Address, Points: *it.Points})
	}
	if skipped > 0 {
		zap.L().Debug("skipped unusable leaderboard items", zap.Int("skipped", skipped))
	}
	return entries, nil
}

// ParticipantParser handles {"data": {"participants": [...]}}, emitting one
// entry per stash address. Every participant must carry "points" and
// "addresses".
type ParticipantParser struct{}

type participantData struct {
	Participants *[]participant `json:"participants"`
}

type participant struct {
	Points    *json.Number    `json:"points"`
	Addresses *[]addressEntry `json:"addresses"`
}

type addressEntry struct {
	Address *string `json:"address"`
	Type    string  `json:"type"`
}

// Shape implements Parser.
func (ParticipantParser) Shape() Shape { return ShapeParticipants }

// Parse implements Parser.
func (ParticipantParser) Parse(data json.RawMessage) ([]Entry, error) {
	var pd participantData
	if err := json.Unmarshal(data, &pd); err != nil {
		return nil, NewMalformed("parse participants", err)
	}
	if pd.Participants == nil {
		return nil, NewMalformed("parse participants", eris.New(`missing "participants"`))
	}

	var entries []Entry
	for i, p := range *pd.Participants {
		if p.Points == nil {
			return nil, NewMalformed("parse participants", eris.Errorf(`participant %d: missing "points"`, i))
		}
		if p.Addresses == nil {
			return nil, NewMalformed("parse participants", eris.Errorf(`participant %d: missing "addresses"`, i))
		}
		for j, a := range *p.Addresses {
			if a.Type != StashType {
				continue
			}
			if a.Address == nil {
				return nil, NewMalformed("parse participants", eris.Errorf(`participant %d address %d: missing "address"`, i, j))
			}
			entries = append(entries, Entry{Address: *a.Address, Points: *p.Points})
		}
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
