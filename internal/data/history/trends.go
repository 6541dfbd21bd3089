package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport turns ordered scans into points with deltas against the
// previous scan and a moving average of the repository score over window.
func BuildTrendReport(scans []Scan, window time.Duration) (TrendReport, error) {
	if len(scans) == 0 {
		return TrendReport{}, fmt.Errorf("no scans recorded")
	}

	points := make([]TrendPoint, 0, len(scans))
	for i, current := range scans {
		point := TrendPoint{
			Timestamp:  current.Timestamp,
			ScanID:     current.ID,
			CommitHash: current.CommitHash,
			Score:      current.Score,
			Max:        current.Max,
			HighRisk:   current.HighRisk,
			Analyzed:   current.Analyzed,
		}
		if i > 0 {
			prev := scans[i-1]
			point.DeltaScore = current.Score - prev.Score
			point.DeltaHighRisk = current.HighRisk - prev.HighRisk
			point.DeltaAnalyzed = current.Analyzed - prev.Analyzed
		}
		point.AvgScore = round2(movingAverage(scans, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    scans[0].ProjectKey,
		Since:         scans[0].Timestamp,
		Until:         scans[len(scans)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverage(scans []Scan, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(scans[index].Score)
	}
	cutoff := scans[index].Timestamp.Add(-window)
	total, count := 0, 0
	for i := index; i >= 0; i-- {
		if scans[i].Timestamp.Before(cutoff) {
			break
		}
		total += scans[i].Score
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
