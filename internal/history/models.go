package history

import "time"

const SchemaVersion = 2

// Snapshot is one persisted scan result. ScanID is assigned on save when
// empty.
type Snapshot struct {
	ScanID        string        `json:"scan_id"`
	ProjectKey    string        `json:"project_key"`
	SchemaVersion int           `json:"schema_version"`
	Timestamp     time.Time     `json:"timestamp"`
	Framework     string        `json:"framework"`
	FileCount     int           `json:"file_count"`
	TotalLines    int           `json:"total_lines"`
	CodeLines     int           `json:"code_lines"`
	CommentLines  int           `json:"comment_lines"`
	BlankLines    int           `json:"blank_lines"`
	ErrorCount    int           `json:"error_count"`
	CodeRatioPct  float64       `json:"code_ratio_pct"`
	Duration      time.Duration `json:"duration"`
}

// ProjectSummary aggregates the stored snapshots of one project.
type ProjectSummary struct {
	ProjectKey    string    `json:"project_key"`
	Framework     string    `json:"framework"`
	SnapshotCount int       `json:"snapshot_count"`
	FirstScan     time.Time `json:"first_scan"`
	LastScan      time.Time `json:"last_scan"`
}

type TrendPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	ScanID          string    `json:"scan_id"`
	FileCount       int       `json:"file_count"`
	TotalLines      int       `json:"total_lines"`
	CodeLines       int       `json:"code_lines"`
	CommentLines    int       `json:"comment_lines"`
	BlankLines      int       `json:"blank_lines"`
	ErrorCount      int       `json:"error_count"`
	CodeRatioPct    float64   `json:"code_ratio_pct"`
	DeltaFiles      int       `json:"delta_files"`
	DeltaLines      int       `json:"delta_lines"`
	DeltaCode       int       `json:"delta_code"`
	DeltaRatioPct   float64   `json:"delta_ratio_pct"`
	LineGrowthPct   float64   `json:"line_growth_pct"`
	AvgLines        float64   `json:"avg_lines"`
	AvgCodeRatioPct float64   `json:"avg_code_ratio_pct"`
	WindowHours     float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
