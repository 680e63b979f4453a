package survey

import (
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

const (
	identifierWidth = 4
	classSuffix     = "組"
)

// ParseIdentifier derives grade and class from the 4-digit class/seat identifier
// (e.g. 1634 → grade 1, class "6組"). Short values are zero-padded; spreadsheet floats
// such as "1634.0" are accepted. Unparseable identifiers yield nil and "".
func ParseIdentifier(raw string) (*int, string) {
	digits, ok := identifierDigits(raw)
	if !ok {
		return nil, ""
	}

	grade := int(digits[0] - '0')
	return &grade, string(digits[1]) + classSuffix
}

func identifierDigits(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	var n uint64
	if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
		n = v
	} else {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 {
			return "", false
		}
		n = uint64(f)
	}

	digits := strconv.FormatUint(n, 10)
	if len(digits) < identifierWidth {
		digits = strings.Repeat("0", identifierWidth-len(digits)) + digits
	}
	return digits, true
}

// ConvertScore maps a raw answer to a score: text lookup in the score map first, then a
// numeric literal on the 1..4 scale. Anything else is NoScore.
func ConvertScore(raw string, scores models.ScoreMap) models.Score {
	answer := strings.TrimSpace(raw)
	if answer == "" {
		return models.NoScore()
	}

	if v, ok := scores.Lookup(answer); ok {
		return models.NewScore(v)
	}

	f, err := strconv.ParseFloat(answer, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return models.NoScore()
	}
	if f < models.MinScore || f > models.MaxScore {
		return models.NoScore()
	}
	return models.NewScore(int(f))
}

// Normalize converts one raw response. Configured questions found among the answers are
// scored; every other answer passes through untouched in Extra.
func Normalize(row models.RawResponse, cfg *models.SurveyConfig) models.NormalizedResponse {
	present := make(map[string]struct{})
	for _, q := range cfg.Competencies.Questions() {
		if _, ok := row.Answers[q]; ok {
			present[q] = struct{}{}
		}
	}
	return normalizeRow(row, cfg, present)
}

func normalizeRow(row models.RawResponse, cfg *models.SurveyConfig, present map[string]struct{}) models.NormalizedResponse {
	out := models.NormalizedResponse{
		Row:        row.Row,
		Identifier: row.Identifier,
		Scores:     make(map[string]models.Score, len(present)),
		Extra:      make(map[string]string),
	}
	out.Grade, out.ClassLabel = ParseIdentifier(row.Identifier)

	for header, answer := range row.Answers {
		if _, ok := present[header]; ok {
			out.Scores[header] = ConvertScore(answer, cfg.Scores)
			continue
		}
		out.Extra[header] = answer
	}
	for q := range present {
		if _, ok := out.Scores[q]; !ok {
			out.Scores[q] = models.NoScore()
		}
	}

	return out
}

// NormalizeDataset produces the read-only ResponseSet consumed by aggregation and reports.
// Configured questions absent from the upload are reported in Missing and skipped.
func NormalizeDataset(ds *models.Dataset, cfg *models.SurveyConfig) *models.ResponseSet {
	headers := make(map[string]struct{}, len(ds.Headers))
	for _, h := range ds.Headers {
		headers[h] = struct{}{}
	}

	set := &models.ResponseSet{
		Filename:      ds.Filename,
		Headers:       append([]string(nil), ds.Headers...),
		HasIdentifier: ds.HasIdentifier,
		Rows:          make([]models.NormalizedResponse, 0, len(ds.Rows)),
	}

	present := make(map[string]struct{})
	for _, q := range cfg.Competencies.Questions() {
		if _, ok := headers[q]; ok {
			set.Questions = append(set.Questions, q)
			present[q] = struct{}{}
			continue
		}
		set.Missing = append(set.Missing, q)
	}

	for _, row := range ds.Rows {
		n := normalizeRow(row, cfg, present)
		if !ds.HasIdentifier {
			n.Grade, n.ClassLabel = nil, ""
		}
		set.Rows = append(set.Rows, n)
	}

	return set
}
