package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/geocoder"
	"github.com/shenikar/incident_reporting_system/internal/metrics"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/webhook"
	"github.com/shenikar/incident_reporting_system/pkg/sanitize"
)

// requiredFields - обязательные поля заявки в порядке проверки.
// Ошибка возвращается по первому пустому полю.
var requiredFields = []string{
	"incident_type", "title", "description", "location", "area", "date", "time", "consent",
}

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

// IncidentRepository определяет контракт для работы с бд происшествий
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error)
	CountByType(ctx context.Context, since *time.Time) ([]models.TypeCount, error)
}

// CoordinateResolver определяет контракт для определения координат заявки
type CoordinateResolver interface {
	Resolve(ctx context.Context, location, area string, lat, lng *float64) (geocoder.Point, error)
}

// PhotoStore определяет контракт для сохранения фотографий заявок
type PhotoStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
}

// IncidentService определяет контракт для бизнес-логики приема и выборки происшествий
type IncidentService interface {
	SubmitReport(ctx context.Context, sub models.ReportSubmission) (*models.Incident, error)
	ListIncidents(ctx context.Context, incidentType, window string, page, perPage int) ([]*models.Incident, bool, error)
	TypeStats(ctx context.Context, window string) ([]models.TypeCount, error)
}

type incidentService struct {
	repo      IncidentRepository
	resolver  CoordinateResolver
	photos    PhotoStore
	publisher webhook.Publisher
	logger    *logrus.Logger
	clock     clockwork.Clock
	cfg       *config.Config
	validate  *validator.Validate
}

func NewIncidentService(
	repo IncidentRepository,
	resolver CoordinateResolver,
	photos PhotoStore,
	publisher webhook.Publisher,
	logger *logrus.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
) IncidentService {
	return &incidentService{
		repo:      repo,
		resolver:  resolver,
		photos:    photos,
		publisher: publisher,
		logger:    logger,
		clock:     clock,
		cfg:       cfg,
		validate:  validator.New(),
	}
}

// SubmitReport проводит заявку через весь конвейер приема:
// валидация, санитизация, сохранение фото, определение координат, запись в бд.
// Происшествие без координат не сохраняется.
func (s *incidentService) SubmitReport(ctx context.Context, sub models.ReportSubmission) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":       "incident",
		"method":        "SubmitReport",
		"incident_type": sub.Type,
	})
	log.Info("Attempting to submit a new incident report")

	date, err := s.validateSubmission(sub)
	if err != nil {
		log.WithError(err).Warn("Report validation failed")
		return nil, err
	}

	// Санитизация выполняется до геокодирования: в запрос к провайдеру
	// уходит уже экранированный текст
	incident := &models.Incident{
		Type:          models.IncidentType(sub.Type),
		Title:         sanitize.Clean(sub.Title),
		Description:   sanitize.Clean(sub.Description),
		Location:      sanitize.Clean(sub.Location),
		Area:          sanitize.Clean(sub.Area),
		Date:          date,
		Time:          sub.Time,
		ReporterName:  sanitize.CleanOptional(sub.ReporterName),
		ReporterEmail: sanitize.CleanOptional(sub.ReporterEmail),
	}

	photoPath, err := s.photos.Save(ctx, sub.Photo)
	if err != nil {
		metrics.ReportsRejected.WithLabelValues("photo").Inc()
		log.WithError(err).Warn("Failed to store report photo")
		return nil, err
	}
	if photoPath != "" {
		incident.PhotoPath = &photoPath
	}

	point, err := s.resolver.Resolve(ctx, incident.Location, incident.Area, sub.Lat, sub.Lng)
	if err != nil {
		metrics.ReportsRejected.WithLabelValues("geocode").Inc()
		log.WithError(err).Warn("Failed to resolve report coordinates")
		return nil, err
	}
	incident.Lat = point.Lat
	incident.Lng = point.Lng

	if err := s.repo.Create(ctx, incident); err != nil {
		metrics.ReportsRejected.WithLabelValues("persistence").Inc()
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.ReportsAccepted.Inc()
	log.WithField("incident_id", incident.ID).Info("Incident report submitted successfully")

	// Сбой публикации не отменяет уже сохраненную заявку
	event := webhook.IncidentEvent{
		IncidentID: incident.ID,
		Type:       incident.Type,
		Title:      incident.Title,
		Area:       incident.Area,
		Lat:        incident.Lat,
		Lng:        incident.Lng,
		CreatedAt:  incident.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).Error("Failed to publish incident event")
	}

	return incident, nil
}

// validateSubmission проверяет заявку и возвращает разобранную дату происшествия.
func (s *incidentService) validateSubmission(sub models.ReportSubmission) (time.Time, error) {
	values := map[string]string{
		"incident_type": sub.Type,
		"title":         sub.Title,
		"description":   sub.Description,
		"location":      sub.Location,
		"area":          sub.Area,
		"date":          sub.Date,
		"time":          sub.Time,
	}
	for _, field := range requiredFields {
		if field == "consent" {
			if !sub.Consent {
				metrics.ReportsRejected.WithLabelValues("missing_field").Inc()
				return time.Time{}, fmt.Errorf("%w: consent", ErrMissingField)
			}
			continue
		}
		if sanitize.Blank(values[field]) {
			metrics.ReportsRejected.WithLabelValues("missing_field").Inc()
			return time.Time{}, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	if !models.ValidIncidentType(sub.Type) {
		metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
		return time.Time{}, fmt.Errorf("%w: incident_type %q", ErrInvalidField, sub.Type)
	}

	date, err := time.ParseInLocation("2006-01-02", sub.Date, time.UTC)
	if err != nil {
		metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidField, sub.Date)
	}
	// Сравнение с точностью до дня: сегодняшняя дата допустима
	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		metrics.ReportsRejected.WithLabelValues("future_date").Inc()
		return time.Time{}, fmt.Errorf("%w: %s", ErrFutureDate, sub.Date)
	}

	if _, err := time.Parse("15:04", sub.Time); err != nil {
		metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidField, sub.Time)
	}

	if sub.ReporterEmail != "" {
		if err := s.validate.Var(sub.ReporterEmail, "email"); err != nil {
			metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
			return time.Time{}, fmt.Errorf("%w: reporter_email %q", ErrInvalidField, sub.ReporterEmail)
		}
	}

	if sub.Lat != nil {
		if err := s.validate.Var(*sub.Lat, "latitude"); err != nil {
			metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
			return time.Time{}, fmt.Errorf("%w: lat %v", ErrInvalidField, *sub.Lat)
		}
	}
	if sub.Lng != nil {
		if err := s.validate.Var(*sub.Lng, "longitude"); err != nil {
			metrics.ReportsRejected.WithLabelValues("invalid_field").Inc()
			return time.Time{}, fmt.Errorf("%w: lng %v", ErrInvalidField, *sub.Lng)
		}
	}

	return date, nil
}

// ListIncidents возвращает страницу происшествий и признак наличия следующей.
func (s *incidentService) ListIncidents(ctx context.Context, incidentType, window string, page, perPage int) ([]*models.Incident, bool, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = s.cfg.DefaultPerPage
	}
	if incidentType == "all" {
		incidentType = ""
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":       "incident",
		"method":        "ListIncidents",
		"incident_type": incidentType,
		"window":        window,
		"page":          page,
		"per_page":      perPage,
	})
	log.Info("Listing incidents")

	filter := models.IncidentFilter{
		Type:    incidentType,
		Since:   s.windowSince(window),
		Page:    page,
		PerPage: perPage,
	}

	incidents, hasMore, err := s.repo.List(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, false, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, hasMore, nil
}

// TypeStats возвращает количество происшествий по типам за временное окно.
func (s *incidentService) TypeStats(ctx context.Context, window string) ([]models.TypeCount, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "TypeStats",
		"window":  window,
	})
	log.Info("Fetching incident type stats")

	counts, err := s.repo.CountByType(ctx, s.windowSince(window))
	if err != nil {
		log.WithError(err).Error("Failed to count incidents by type")
		return nil, fmt.Errorf("service: could not count incidents: %w", err)
	}
	return counts, nil
}

// windowSince переводит имя временного окна в нижнюю границу created_at.
// Пустое окно заменяется окном по умолчанию из конфигурации,
// "all" явно отключает фильтр. Неизвестные значения трактуются как "week".
func (s *incidentService) windowSince(window string) *time.Time {
	if window == "" {
		window = s.cfg.DefaultTimeWindow
	}

	now := s.clock.Now().UTC()
	var since time.Time
	switch window {
	case "all":
		return nil
	case "24h":
		since = now.Add(-24 * time.Hour)
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	default:
		s.logger.WithField("window", window).Warn("Unknown time window, falling back to week")
		since = now.AddDate(0, 0, -7)
	}
	return &since
}
