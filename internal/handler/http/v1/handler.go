package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/geocoder"
	"github.com/shenikar/incident_reporting_system/internal/service"
	"github.com/shenikar/incident_reporting_system/internal/upload"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		cfg:             cfg,
	}
}

// @Summary Submit an incident report
// @Description Submit a new community incident report as a multipart form with an optional photo.
// @Tags Reports
// @Accept mpfd
// @Produce json
// @Param incident_type formData string true "Incident type"
// @Param title formData string true "Short title"
// @Param description formData string true "What happened"
// @Param location formData string true "Street or landmark"
// @Param area formData string true "Area or neighbourhood"
// @Param date formData string true "Incident date (YYYY-MM-DD)"
// @Param time formData string true "Incident time (HH:MM)"
// @Param consent formData string true "Reporter consent"
// @Param reporter_name formData string false "Reporter name"
// @Param reporter_email formData string false "Reporter email"
// @Param latitude formData number false "Browser latitude"
// @Param longitude formData number false "Browser longitude"
// @Param photo formData file false "Photo evidence"
// @Success 201 {object} SubmitReportResponse
// @Failure 400 {object} SubmitReportResponse "Validation or geocoding failure"
// @Failure 500 {object} SubmitReportResponse "Internal server error"
// @Router /reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	var input SubmitReportRequest
	log := h.logger.WithField("method", "submitReport")

	if err := c.ShouldBind(&input); err != nil {
		log.WithError(err).Warn("Failed to bind report form")
		c.JSON(http.StatusBadRequest, h.rejection("invalid form data", err))
		return
	}

	// Фото необязательно: его отсутствие не является ошибкой формы
	photo, err := c.FormFile("photo")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		log.WithError(err).Warn("Failed to read photo from form")
		c.JSON(http.StatusBadRequest, h.rejection("invalid photo upload", err))
		return
	}

	sub := DTOToReportSubmission(input, photo)
	incident, err := h.incidentService.SubmitReport(c.Request.Context(), sub)
	if err != nil {
		h.writeSubmitError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, SubmitReportResponse{
		Success:    true,
		Message:    "incident report submitted",
		IncidentID: incident.ID,
	})
}

// writeSubmitError переводит ошибку конвейера приема в HTTP-ответ.
// Ошибки заявителя дают 400, все остальное - 500.
func (h *Handler) writeSubmitError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidField),
		errors.Is(err, service.ErrFutureDate):
		log.WithError(err).Warn("Report validation failed")
		c.JSON(http.StatusBadRequest, h.rejection("report validation failed", err))
	case errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrUnsupportedType):
		log.WithError(err).Warn("Report photo rejected")
		c.JSON(http.StatusBadRequest, h.rejection("photo rejected", err))
	case errors.Is(err, geocoder.ErrUnresolved):
		log.WithError(err).Warn("Report location could not be resolved")
		c.JSON(http.StatusBadRequest, h.rejection("could not resolve incident location", err))
	default:
		log.WithError(err).Error("Failed to submit report in service")
		c.JSON(http.StatusInternalServerError, h.rejection("internal server error", err))
	}
}

// rejection собирает отрицательный ответ. Текст исходной ошибки
// раскрывается только в диагностическом режиме.
func (h *Handler) rejection(message string, err error) SubmitReportResponse {
	resp := SubmitReportResponse{
		Success: false,
		Message: message,
	}
	if h.cfg.Env == "local" && err != nil {
		resp.Detail = err.Error()
	}
	return resp
}

// @Summary Get a list of incidents
// @Description Get a paginated page of incidents filtered by type and time window.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param type query string false "Incident type filter, 'all' disables it" default(all)
// @Param time query string false "Time window: 24h, week, month or all" default(week)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Number of items per page" default(5)
// @Success 200 {object} ListIncidentsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "0"))

	incidents, hasMore, err := h.incidentService.ListIncidents(
		c.Request.Context(),
		c.Query("type"),
		c.Query("time"),
		page,
		perPage,
	)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ListIncidentsResponse{
		Incidents: ModelsToIncidentResponses(incidents),
		HasMore:   hasMore,
	})
}

// @Summary Get incident statistics
// @Description Get incident counts grouped by type for a time window.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param time query string false "Time window: 24h, week, month or all" default(week)
// @Success 200 {object} StatsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	counts, err := h.incidentService.TypeStats(c.Request.Context(), c.Query("time"))
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Stats: ModelsToTypeCountResponses(counts)})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
