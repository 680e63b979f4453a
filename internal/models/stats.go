package models

import "time"

// QuestionStat summarises the answers to one question within a filtered group.
type QuestionStat struct {
	Question     string          `json:"question"`
	Average      float64         `json:"average"`
	Counts       map[int]int     `json:"counts"`
	Distribution map[int]float64 `json:"distribution"`
	Responses    int             `json:"responses"`
}

// Aggregate is the result of one aggregation pass over a filtered group.
type Aggregate struct {
	Label        string                  `json:"label"`
	Respondents  int                     `json:"respondents"`
	Questions    map[string]QuestionStat `json:"questions"`
	Competencies map[string]float64      `json:"competencies"`
}

// Question returns the stat for a question and whether the question was aggregated.
func (a Aggregate) Question(question string) (QuestionStat, bool) {
	stat, ok := a.Questions[question]
	return stat, ok
}

// Competency returns the competency average, 0 when unknown.
func (a Aggregate) Competency(name string) float64 {
	return a.Competencies[name]
}

// SystemMetrics is a point-in-time snapshot of process instrumentation.
type SystemMetrics struct {
	SessionHitRatio          float64           `json:"session_hit_ratio"`
	SessionHits              uint64            `json:"session_hits"`
	SessionMisses            uint64            `json:"session_misses"`
	RequestsTotal            uint64            `json:"requests_total"`
	AverageRequestDurationMs float64           `json:"average_request_duration_ms"`
	RowsIngested             uint64            `json:"rows_ingested"`
	ArtifactsGenerated       map[string]uint64 `json:"artifacts_generated"`
	Goroutines               int               `json:"goroutines"`
	GeneratedAt              time.Time         `json:"generated_at"`
}
