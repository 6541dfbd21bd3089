package history

import "time"

// SchemaVersion is the newest migration this build understands.
const SchemaVersion = 1

// Scan is one persisted repository scan.
type Scan struct {
	ID              string       `json:"id"`
	ProjectKey      string       `json:"project_key"`
	Timestamp       time.Time    `json:"timestamp"`
	CommitHash      string       `json:"commit_hash,omitempty"`
	CommitTimestamp time.Time    `json:"commit_timestamp,omitempty"`
	Score           int          `json:"repo_vibe_score"`
	Mean            float64      `json:"average_score"`
	Weighted        int          `json:"weighted_score"`
	Min             int          `json:"min_score"`
	Max             int          `json:"max_score"`
	HighRisk        int          `json:"high_risk_files"`
	MediumRisk      int          `json:"medium_risk_files"`
	Analyzed        int          `json:"files_analyzed"`
	Skipped         int          `json:"files_skipped"`
	Errored         int          `json:"files_errored"`
	Files           []FileRecord `json:"files,omitempty"`
}

type FileRecord struct {
	Path  string `json:"path"`
	Score int    `json:"vibe_score"`
	Label string `json:"score_label"`
}

type TrendPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	ScanID        string    `json:"scan_id"`
	CommitHash    string    `json:"commit_hash,omitempty"`
	Score         int       `json:"repo_vibe_score"`
	Max           int       `json:"max_score"`
	HighRisk      int       `json:"high_risk_files"`
	Analyzed      int       `json:"files_analyzed"`
	DeltaScore    int       `json:"delta_score"`
	DeltaHighRisk int       `json:"delta_high_risk"`
	DeltaAnalyzed int       `json:"delta_files"`
	AvgScore      float64   `json:"moving_avg_score"`
	WindowHours   float64   `json:"window_hours"`
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
