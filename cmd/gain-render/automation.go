package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/justyntemme/paramsync/pkg/framework/param"
)

// Event is one automation point. Exactly one of Normalized or DB is set.
type Event struct {
	At         float64  `json:"at"`
	Param      string   `json:"param"`
	Normalized *float64 `json:"normalized,omitempty"`
	DB         *float64 `json:"db,omitempty"`
}

// Script is the JSON automation file, e.g.
//
//	{"events": [{"at": 0.5, "param": "gain master", "db": -12}]}
type Script struct {
	Events []Event `json:"events"`
}

type scheduledEvent struct {
	frame      int
	id         uint32
	normalized float64
}

// loadScript reads an automation file.
func loadScript(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Script
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("automation %s: %w", path, err)
	}
	return &s, nil
}

// schedule resolves parameter names and converts times to frames. The
// result is ordered by frame; events at the same frame keep file order.
func (s *Script) schedule(table *param.Table, sampleRate float64) ([]scheduledEvent, error) {
	if s == nil {
		return nil, nil
	}

	byName := make(map[string]*param.Descriptor, table.Len())
	for _, d := range table.All() {
		byName[d.Name] = d
	}

	out := make([]scheduledEvent, 0, len(s.Events))
	for i, e := range s.Events {
		d, ok := byName[e.Param]
		if !ok {
			return nil, fmt.Errorf("events[%d]: unknown parameter %q", i, e.Param)
		}
		if e.At < 0 {
			return nil, fmt.Errorf("events[%d]: negative time %v", i, e.At)
		}

		var n float64
		switch {
		case e.Normalized != nil && e.DB != nil:
			return nil, fmt.Errorf("events[%d]: both normalized and db set", i)
		case e.Normalized != nil:
			n = *e.Normalized
		case e.DB != nil:
			n = d.ToNormalized(*e.DB)
		default:
			return nil, fmt.Errorf("events[%d]: no value", i)
		}

		out = append(out, scheduledEvent{
			frame:      int(e.At * sampleRate),
			id:         d.ID,
			normalized: n,
		})
	}

	sort.SliceStable(out, func(a, b int) bool { return out[a].frame < out[b].frame })
	return out, nil
}
