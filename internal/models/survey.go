package models

import (
	"encoding/json"
	"fmt"
)

// MinScore and MaxScore bound the four-point answer scale.
const (
	MinScore = 1
	MaxScore = 4
)

// Score is an optional answer score on the four-point scale. The zero value is "no value".
type Score struct {
	value int
	valid bool
}

// NewScore wraps a present score.
func NewScore(v int) Score {
	return Score{value: v, valid: true}
}

// NoScore represents an unanswered or unparseable answer.
func NoScore() Score {
	return Score{}
}

// Value returns the score and whether it is present.
func (s Score) Value() (int, bool) {
	return s.value, s.valid
}

// Valid reports whether the score is present.
func (s Score) Valid() bool {
	return s.valid
}

// String renders the score for raw dumps; absent scores render empty.
func (s Score) String() string {
	if !s.valid {
		return ""
	}
	return fmt.Sprintf("%d", s.value)
}

// MarshalJSON encodes absent scores as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}

// UnmarshalJSON decodes null as an absent score.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoScore()
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal score: %w", err)
	}
	*s = NewScore(v)
	return nil
}

// RawResponse is one survey submission as read from the uploaded file.
type RawResponse struct {
	Row        int               `json:"row"`
	Identifier string            `json:"identifier"`
	Answers    map[string]string `json:"answers"`
}

// Dataset is the parsed upload: headers in file order plus one RawResponse per respondent.
type Dataset struct {
	Filename         string        `json:"filename"`
	Headers          []string      `json:"headers"`
	IdentifierColumn string        `json:"identifierColumn"`
	HasIdentifier    bool          `json:"hasIdentifier"`
	Rows             []RawResponse `json:"rows"`
}

// NormalizedResponse is a RawResponse with derived grade/class and numeric scores.
// Grade is nil when the identifier could not be parsed; ClassLabel is then empty.
type NormalizedResponse struct {
	Row        int               `json:"row"`
	Identifier string            `json:"identifier"`
	Grade      *int              `json:"grade"`
	ClassLabel string            `json:"classLabel,omitempty"`
	Scores     map[string]Score  `json:"scores"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// HasGrade reports whether the respondent resolved to the given grade.
func (r NormalizedResponse) HasGrade(grade int) bool {
	return r.Grade != nil && *r.Grade == grade
}

// ResponseSet is the read-only normalized dataset shared by every aggregation and report.
type ResponseSet struct {
	Filename      string               `json:"filename"`
	Headers       []string             `json:"headers"`
	Questions     []string             `json:"questions"`
	Missing       []string             `json:"missing,omitempty"`
	HasIdentifier bool                 `json:"hasIdentifier"`
	Rows          []NormalizedResponse `json:"rows"`
}

// HasQuestion reports whether the question column exists in the upload.
func (s *ResponseSet) HasQuestion(question string) bool {
	if s == nil {
		return false
	}
	for _, q := range s.Questions {
		if q == question {
			return true
		}
	}
	return false
}

// GradeCounts returns respondent counts keyed by resolved grade.
func (s *ResponseSet) GradeCounts() map[int]int {
	counts := make(map[int]int)
	if s == nil {
		return counts
	}
	for _, row := range s.Rows {
		if row.Grade != nil {
			counts[*row.Grade]++
		}
	}
	return counts
}
