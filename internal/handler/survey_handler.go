package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rgb-survey-api/internal/dto"
	"github.com/noah-isme/rgb-survey-api/internal/service"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
	"github.com/noah-isme/rgb-survey-api/pkg/response"
)

type surveyService interface {
	Ingest(ctx context.Context, upload service.UploadInput) (*dto.SurveySessionResponse, error)
	Get(ctx context.Context, id string) (*dto.SurveySessionResponse, error)
	Delete(ctx context.Context, id string) error
	Periods() dto.SurveyPeriodsResponse
}

// SurveyHandler exposes survey upload and session endpoints.
type SurveyHandler struct {
	service surveyService
}

// NewSurveyHandler constructs handler.
func NewSurveyHandler(svc surveyService) *SurveyHandler {
	return &SurveyHandler{service: svc}
}

// Upload godoc
// @Summary Upload a survey export
// @Description Reads an .xlsx or .csv survey export once and keeps the normalized responses as a session.
// @Tags Surveys
// @Accept mpfd
// @Produce json
// @Param file formData file true "Survey export (.xlsx or .csv)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /surveys [post]
func (h *SurveyHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	session, err := h.service.Ingest(c.Request.Context(), service.UploadInput{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// GetSession godoc
// @Summary Describe an uploaded survey session
// @Tags Surveys
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /surveys/{id} [get]
func (h *SurveyHandler) GetSession(c *gin.Context) {
	id, err := requiredParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// DeleteSession godoc
// @Summary Discard an uploaded survey session
// @Tags Surveys
// @Param id path string true "Session ID"
// @Success 204
// @Failure 410 {object} response.Envelope
// @Router /surveys/{id} [delete]
func (h *SurveyHandler) DeleteSession(c *gin.Context) {
	id, err := requiredParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Periods godoc
// @Summary List selectable survey periods
// @Tags Surveys
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /surveys/periods [get]
func (h *SurveyHandler) Periods(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Periods())
}
