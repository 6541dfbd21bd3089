package scoring

import (
	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/detectors"
)

type Entry struct {
	Detector detectors.Detector
	Weight   float64
}

// Registry is the ordered set of detectors a scan runs, each paired with its
// weight. Built once at startup; never mutated afterwards.
type Registry struct {
	entries []Entry
}

// NewRegistry pairs detectors with weights in the order given. Every detector
// needs a weight, every weight needs a detector and no identity may repeat.
func NewRegistry(weights *WeightTable, ds ...detectors.Detector) (*Registry, error) {
	if weights == nil {
		return nil, errors.New(errors.CodeConfiguration, "weight table is required")
	}
	if len(ds) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "at least one detector must be registered")
	}

	seen := make(map[detectors.ID]bool, len(ds))
	entries := make([]Entry, 0, len(ds))
	for _, d := range ds {
		if d == nil {
			return nil, errors.New(errors.CodeConfiguration, "nil detector registered")
		}
		id := d.ID()
		if seen[id] {
			return nil, configError("detector registered twice", id)
		}
		seen[id] = true
		w, ok := weights.Weight(id)
		if !ok {
			return nil, configError("detector has no weight", id)
		}
		entries = append(entries, Entry{Detector: d, Weight: w})
	}
	if weights.Len() != len(entries) {
		for id := range weights.weights {
			if !seen[id] {
				return nil, configError("weight has no registered detector", id)
			}
		}
	}
	return &Registry{entries: entries}, nil
}

// DefaultRegistry builds every detector from cfg and pairs them with weights.
func DefaultRegistry(cfg detectors.Config, weights map[detectors.ID]float64) (*Registry, error) {
	if weights == nil {
		weights = DefaultWeights()
	}
	table, err := NewWeightTable(weights)
	if err != nil {
		return nil, err
	}
	all, err := detectors.All(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfiguration, "build detectors")
	}
	return NewRegistry(table, all...)
}

// Entries returns a copy of the registry in order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Registry) Len() int {
	return len(r.entries)
}

func configError(msg string, id detectors.ID) error {
	return (&errors.DomainError{Code: errors.CodeConfiguration, Message: msg}).
		WithContext(errors.CtxDetector, string(id))
}
