package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rgb-survey-api/internal/dto"
	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/service"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

type reportServiceMock struct {
	createReq   dto.ReportRequest
	createResp  *dto.ReportJobResponse
	createErr   error
	statusResp  *dto.ReportStatusResponse
	statusErr   error
	download    *service.ReportDownload
	downloadErr error
}

func (m *reportServiceMock) CreateJob(ctx context.Context, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	m.createReq = req
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body.Error.Code
}

func TestReportHandlerGenerateReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		createResp: &dto.ReportJobResponse{ID: "job-1", SurveyPeriod: "9月(第二回)", Status: models.ReportStatusQueued},
	}
	handler := NewReportHandler(mockSvc)

	payload, _ := json.Marshal(dto.ReportRequest{SessionID: "session-1", SurveyPeriod: "9月(第二回)"})
	c, w := newGinContext(http.MethodPost, "/reports/generate", payload)

	handler.GenerateReport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "session-1", mockSvc.createReq.SessionID)
	assert.Contains(t, w.Body.String(), "job-1")
}

func TestReportHandlerGenerateReportErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, w := newGinContext(http.MethodPost, "/reports/generate", []byte("{"))
	NewReportHandler(&reportServiceMock{}).GenerateReport(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeError(t, w))

	payload, _ := json.Marshal(dto.ReportRequest{SessionID: "gone"})
	c, w = newGinContext(http.MethodPost, "/reports/generate", payload)
	NewReportHandler(&reportServiceMock{createErr: appErrors.ErrSessionExpired}).GenerateReport(c)
	require.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, decodeError(t, w))
}

func TestReportHandlerReportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		statusResp: &dto.ReportStatusResponse{ID: "job-1", Status: models.ReportStatusFinished, Progress: 100},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/reports/status/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FINISHED"`)
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (r *trackingCloser) Close() error {
	r.closed = true
	return nil
}

func TestReportHandlerDownloadReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reader := &trackingCloser{Reader: strings.NewReader("data")}
	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			Reader:      reader,
			Filename:    "1.RGB意識調査R7.9月結果（1年・分布あり）.xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			SizeBytes:   4,
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
	handler := NewReportHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadReport(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "data", w.Body.String())
	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, `filename="1.RGBR7.91.xlsx"`)
	assert.Contains(t, disposition, "filename*=UTF-8''1.RGB")
	assert.True(t, reader.closed)
}

func TestReportHandlerDownloadReportForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{downloadErr: appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")})

	c, w := newGinContext(http.MethodGet, "/export/bad", nil)
	c.Params = gin.Params{{Key: "token", Value: "bad"}}

	handler.DownloadReport(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}
