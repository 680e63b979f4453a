package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

func TestParseIdentifier(t *testing.T) {
	cases := []struct {
		raw   string
		grade int
		class string
		ok    bool
	}{
		{raw: "1634", grade: 1, class: "6組", ok: true},
		{raw: " 2105 ", grade: 2, class: "1組", ok: true},
		{raw: "0271", grade: 0, class: "2組", ok: true},
		{raw: "634", grade: 0, class: "6組", ok: true},
		{raw: "0634", grade: 0, class: "6組", ok: true},
		{raw: "1634.0", grade: 1, class: "6組", ok: true},
		{raw: "31201", grade: 3, class: "1組", ok: true},
		{raw: "abc"},
		{raw: ""},
		{raw: "-1634"},
		{raw: "16.5"},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			grade, class := ParseIdentifier(tc.raw)
			if !tc.ok {
				assert.Nil(t, grade)
				assert.Empty(t, class)
				return
			}
			require.NotNil(t, grade)
			assert.Equal(t, tc.grade, *grade)
			assert.Equal(t, tc.class, class)
		})
	}
}

func TestConvertScore(t *testing.T) {
	scores := testConfig().Scores

	cases := map[string]struct {
		raw   string
		value int
		valid bool
	}{
		"text":            {raw: "とてもそう思う", value: 4, valid: true},
		"padded text":     {raw: "  そう思わない ", value: 1, valid: true},
		"numeric":         {raw: "3", value: 3, valid: true},
		"numeric float":   {raw: "2.0", value: 2, valid: true},
		"out of range":    {raw: "5"},
		"zero":            {raw: "0"},
		"fractional":      {raw: "2.5"},
		"blank":           {raw: "   "},
		"unknown text":    {raw: "わからない"},
		"not a number":    {raw: "NaN"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			v, ok := ConvertScore(tc.raw, scores).Value()
			assert.Equal(t, tc.valid, ok)
			if tc.valid {
				assert.Equal(t, tc.value, v)
			}
		})
	}
}

func TestConvertScoreIdempotent(t *testing.T) {
	scores := testConfig().Scores
	for _, raw := range []string{"とてもそう思う", "どちらかといえばそう思わない", "1", "4", "x", ""} {
		first := ConvertScore(raw, scores)
		second := ConvertScore(first.String(), scores)
		assert.Equal(t, first, second, raw)
	}
}

func TestNormalizeSplitsScoresAndExtras(t *testing.T) {
	cfg := testConfig()
	row := raw(2, "2311", map[string]string{"Q1": "とてもそう思う", "Q2": "", "名前": "山田"})

	n := Normalize(row, cfg)

	require.NotNil(t, n.Grade)
	assert.Equal(t, 2, *n.Grade)
	assert.Equal(t, "3組", n.ClassLabel)
	assert.Equal(t, models.NewScore(4), n.Scores["Q1"])
	assert.False(t, n.Scores["Q2"].Valid())
	assert.NotContains(t, n.Scores, "Q3")
	assert.Equal(t, "山田", n.Extra["名前"])
	assert.Equal(t, "2311", n.Extra[testIDColumn])
}

func TestNormalizeDatasetReportsMissingQuestions(t *testing.T) {
	cfg := testConfig()
	ds := &models.Dataset{
		Filename:         "survey.xlsx",
		Headers:          []string{testIDColumn, "Q1", "Q3", "備考"},
		IdentifierColumn: testIDColumn,
		HasIdentifier:    true,
		Rows: []models.RawResponse{
			raw(2, "1101", map[string]string{"Q1": "3", "Q3": "そう思わない", "備考": ""}),
			raw(3, "abc", map[string]string{"Q1": "4", "Q3": "", "備考": "x"}),
		},
	}

	set := NormalizeDataset(ds, cfg)

	assert.Equal(t, []string{"Q1", "Q3"}, set.Questions)
	assert.Equal(t, []string{"Q2", "Q4"}, set.Missing)
	require.Len(t, set.Rows, 2)
	assert.True(t, set.Rows[0].HasGrade(1))
	assert.Nil(t, set.Rows[1].Grade)
	assert.Equal(t, map[int]int{1: 1}, set.GradeCounts())
	assert.True(t, set.HasQuestion("Q3"))
	assert.False(t, set.HasQuestion("Q2"))

	// the input dataset is not modified
	assert.Equal(t, "3", ds.Rows[0].Answers["Q1"])
}

func TestNormalizeDatasetWithoutIdentifierColumn(t *testing.T) {
	cfg := testConfig()
	ds := &models.Dataset{
		Headers: []string{"Q1"},
		Rows:    []models.RawResponse{{Row: 2, Answers: map[string]string{"Q1": "4"}}},
	}

	set := NormalizeDataset(ds, cfg)

	require.Len(t, set.Rows, 1)
	assert.Nil(t, set.Rows[0].Grade)
	assert.False(t, set.HasIdentifier)
}
