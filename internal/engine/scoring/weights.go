package scoring

import (
	"fmt"
	"math"
	"sort"

	"vibecheck/internal/core/errors"
	"vibecheck/internal/engine/detectors"
)

// WeightTolerance bounds how far the weights may sum away from 1.
const WeightTolerance = 1e-6

// DefaultWeights is the calibrated weight of each detector.
func DefaultWeights() map[detectors.ID]float64 {
	return map[detectors.ID]float64{
		detectors.Security:     0.25,
		detectors.Repetitive:   0.15,
		detectors.Naming:       0.15,
		detectors.Imports:      0.15,
		detectors.Comments:     0.10,
		detectors.Placeholders: 0.10,
		detectors.Ratio:        0.10,
	}
}

// WeightTable is read-only once built and safe for concurrent readers.
type WeightTable struct {
	weights map[detectors.ID]float64
}

func NewWeightTable(weights map[detectors.ID]float64) (*WeightTable, error) {
	if len(weights) == 0 {
		return nil, errors.New(errors.CodeConfiguration, "weight table is empty")
	}

	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)

	copied := make(map[detectors.ID]float64, len(weights))
	sum := 0.0
	for _, raw := range ids {
		id := detectors.ID(raw)
		w := weights[id]
		if math.IsNaN(w) || w < 0 || w > 1 {
			return nil, configError(fmt.Sprintf("weight must be within [0,1], got %v", w), id)
		}
		copied[id] = w
		sum += w
	}
	if math.Abs(sum-1) > WeightTolerance {
		return nil, errors.Newf(errors.CodeConfiguration, "weights must sum to 1.0, got %.6f", sum)
	}
	return &WeightTable{weights: copied}, nil
}

func (t *WeightTable) Weight(id detectors.ID) (float64, bool) {
	w, ok := t.weights[id]
	return w, ok
}

func (t *WeightTable) Len() int {
	return len(t.weights)
}
