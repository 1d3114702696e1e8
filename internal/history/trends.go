package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport derives per-snapshot deltas and windowed moving
// averages from a project's snapshots, which must be in ascending
// timestamp order.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:    current.Timestamp,
			ScanID:       current.ScanID,
			FileCount:    current.FileCount,
			TotalLines:   current.TotalLines,
			CodeLines:    current.CodeLines,
			CommentLines: current.CommentLines,
			BlankLines:   current.BlankLines,
			ErrorCount:   current.ErrorCount,
			CodeRatioPct: current.CodeRatioPct,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaLines = current.TotalLines - prev.TotalLines
			point.DeltaCode = current.CodeLines - prev.CodeLines
			point.DeltaRatioPct = round2(current.CodeRatioPct - prev.CodeRatioPct)
			if prev.TotalLines > 0 {
				point.LineGrowthPct = round2((float64(point.DeltaLines) / float64(prev.TotalLines)) * 100)
			}
		}

		avgLines, avgRatio := movingAverages(snapshots, i, window)
		point.AvgLines = round2(avgLines)
		point.AvgCodeRatioPct = round2(avgRatio)
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    projectKey,
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverages(snapshots []Snapshot, index int, window time.Duration) (float64, float64) {
	if window <= 0 {
		return float64(snapshots[index].TotalLines), snapshots[index].CodeRatioPct
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	var linesTotal int
	var ratioTotal float64
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		linesTotal += snapshots[i].TotalLines
		ratioTotal += snapshots[i].CodeRatioPct
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return float64(linesTotal) / float64(count), ratioTotal / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
