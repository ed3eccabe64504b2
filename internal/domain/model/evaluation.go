package model

import "time"

// SourceKind tells where an evaluation score was read from.
type SourceKind string

// Score sources. The wire values match what the leaderboard viewer expects.
const (
	SourceDescriptor    SourceKind = "model-card"
	SourcePendingChange SourceKind = "pull-request"
)

// EvaluationRecord is the best score a repository declares for one benchmark.
type EvaluationRecord struct {
	ModelID        string     `json:"model_id"`
	ModelName      string     `json:"model_name"`
	BenchmarkKey   string     `json:"benchmark_key"`
	BenchmarkLabel string     `json:"benchmark"`
	Score          float64    `json:"score"`
	Unit           string     `json:"unit"`
	Dataset        string     `json:"dataset"`
	TaskType       string     `json:"task_type"`
	MetricName     string     `json:"metric_name"`
	Contributor    string     `json:"contributor"`
	SourceType     SourceKind `json:"source_type"`
	SourceURL      string     `json:"source_url"`
	Revision       string     `json:"revision"`
	CollectedAt    time.Time  `json:"collected_at"`
}

// EvalsSummary is the metadata object published next to the evals rows.
type EvalsSummary struct {
	GeneratedAt      time.Time `json:"generated_at"`
	RunID            string    `json:"run_id"`
	TotalEntries     int       `json:"total_entries"`
	ModelsWithScores int       `json:"models_with_scores"`
	Contributors     int       `json:"contributors"`
	Benchmarks       []string  `json:"benchmarks"`
}

// EvalsOutput is the local leaderboard file for the evals pipeline.
type EvalsOutput struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	TotalEntries int                `json:"total_entries"`
	Benchmarks   []string           `json:"benchmarks"`
	Leaderboard  []EvaluationRecord `json:"leaderboard"`
}
