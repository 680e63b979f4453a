package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/rgb-survey-api/internal/repository"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

func newIngestFixture(t *testing.T, maxBytes int64) (*IngestService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	sessions := NewSessionService(repository.NewMemorySessionRepository(), metrics, time.Hour, nil)
	svc := NewIngestService(testSurveyConfig(), sessions, metrics, maxBytes, nil)
	svc.now = func() time.Time { return time.Date(2025, 9, 12, 8, 0, 0, 0, time.UTC) }
	return svc, metrics
}

func TestIngestServiceIngestCSV(t *testing.T) {
	svc, metrics := newIngestFixture(t, 0)
	ctx := context.Background()

	resp, err := svc.Ingest(ctx, UploadInput{Filename: "uploads/survey.csv", Reader: strings.NewReader(testSurveyCSV)})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "survey.csv", resp.Filename)
	assert.Equal(t, 3, resp.Rows)
	assert.True(t, resp.HasIdentifier)
	assert.Equal(t, 0, resp.UngradedRows)
	assert.Equal(t, 3, resp.Questions)
	assert.Empty(t, resp.MissingQuestions)
	assert.Equal(t, resp.UploadedAt.Add(time.Hour), resp.ExpiresAt)
	require.Len(t, resp.Grades, 3)
	assert.Equal(t, 2, resp.Grades[0].Count)
	assert.Equal(t, 1, resp.Grades[1].Count)
	assert.Equal(t, 0, resp.Grades[2].Count)
	assert.Equal(t, uint64(3), metrics.Snapshot().RowsIngested)

	again, err := svc.Get(ctx, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, again.ID)

	require.NoError(t, svc.Delete(ctx, resp.ID))
	_, err = svc.Get(ctx, resp.ID)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSessionExpired.Code))
	assert.True(t, appErrors.HasCode(svc.Delete(ctx, resp.ID), appErrors.ErrSessionExpired.Code))
}

func TestIngestServiceIngestWorkbook(t *testing.T) {
	svc, _ := newIngestFixture(t, 0)

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"ID", "友達と協力できる。", "意見を受け止められる。"},
		{1101, "とてもそう思う", 3},
		{"", "そう思わない", ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	resp, err := svc.Ingest(context.Background(), UploadInput{Filename: "survey.xlsx", Size: int64(buf.Len()), Reader: &buf})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, 1, resp.UngradedRows)
	assert.Equal(t, []string{"考えを伝えられる。"}, resp.MissingQuestions)
}

func TestIngestServiceRejectsBadUploads(t *testing.T) {
	svc, _ := newIngestFixture(t, 32)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, UploadInput{Filename: "survey.csv"})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.Ingest(ctx, UploadInput{Filename: "survey.csv", Size: 64, Reader: strings.NewReader("x")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPayloadTooLarge.Code))

	_, err = svc.Ingest(ctx, UploadInput{Filename: "survey.csv", Reader: strings.NewReader(testSurveyCSV)})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrPayloadTooLarge.Code))

	_, err = svc.Ingest(ctx, UploadInput{Filename: "survey.pdf", Reader: strings.NewReader("ID\n1")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnsupportedFormat.Code))

	_, err = svc.Ingest(ctx, UploadInput{Filename: "survey.xlsx", Reader: strings.NewReader("not zip")})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidWorkbook.Code))
}

func TestIngestServicePeriods(t *testing.T) {
	svc, _ := newIngestFixture(t, 0)
	periods := svc.Periods()
	assert.Equal(t, []string{"4月(第一回)", "9月(第二回)", "1月(第三回)"}, periods.Periods)
	assert.Equal(t, "9月(第二回)", periods.DefaultPeriod)
	assert.Equal(t, "R7", periods.CurrentPeriod)
}
