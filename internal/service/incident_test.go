package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shenikar/incident_reporting_system/internal/config"
	"github.com/shenikar/incident_reporting_system/internal/geocoder"
	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service/mocks"
	webhook_mocks "github.com/shenikar/incident_reporting_system/internal/webhook/mocks"
)

// Фиксированный момент "сейчас" для тестов: 15 марта 2024, полдень UTC.
var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type serviceMocks struct {
	repo      *mocks.MockIncidentRepository
	resolver  *mocks.MockCoordinateResolver
	photos    *mocks.MockPhotoStore
	publisher *webhook_mocks.MockPublisher
}

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, serviceMocks) {
	ctrl := gomock.NewController(t)
	m := serviceMocks{
		repo:      mocks.NewMockIncidentRepository(ctrl),
		resolver:  mocks.NewMockCoordinateResolver(ctrl),
		photos:    mocks.NewMockPhotoStore(ctrl),
		publisher: webhook_mocks.NewMockPublisher(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		DefaultTimeWindow: "week",
		DefaultPerPage:    5,
	}

	service := NewIncidentService(m.repo, m.resolver, m.photos, m.publisher, logger, clockwork.NewFakeClockAt(testNow), cfg)
	return service.(*incidentService), m
}

// validSubmission возвращает заявку, проходящую все проверки.
func validSubmission() models.ReportSubmission {
	return models.ReportSubmission{
		Type:        "theft",
		Title:       "Stolen bicycle",
		Description: "Bicycle stolen from the market entrance",
		Location:    "Central Market",
		Area:        "MG Road",
		Date:        "2024-03-14",
		Time:        "18:30",
		Consent:     true,
	}
}

func TestSubmitReport_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.ReporterEmail = "witness@example.com"

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	m.resolver.EXPECT().
		Resolve(ctx, "Central Market", "MG Road", gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 12.97, Lng: 77.59}, nil).
		Times(1)
	m.repo.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			// Симулируем, что БД присвоила ID
			inc.ID = 42
			inc.CreatedAt = testNow
			return nil
		}).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, int64(42), incident.ID)
	assert.Equal(t, models.TypeTheft, incident.Type)
	assert.Equal(t, 12.97, incident.Lat)
	assert.Equal(t, 77.59, incident.Lng)
	require.NotNil(t, incident.ReporterEmail)
	assert.Equal(t, "witness@example.com", *incident.ReporterEmail)
	assert.Nil(t, incident.PhotoPath)
}

func TestSubmitReport_SanitizesFields(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.Title = "  <script>alert(1)</script>  "
	sub.Location = "Main & Cross"

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	// Геокодер получает уже экранированный location
	m.resolver.EXPECT().
		Resolve(ctx, "Main &amp; Cross", "MG Road", gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 1, Lng: 2}, nil).
		Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt;", incident.Title)
	assert.Equal(t, "Main &amp; Cross", incident.Location)
}

func TestSubmitReport_MissingFieldOrder(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()

	// Пустыми оставлены и title, и area: ошибка должна указать на title,
	// потому что он идет раньше в порядке проверки
	sub := validSubmission()
	sub.Title = "   "
	sub.Area = ""

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrMissingField)
	assert.ErrorContains(t, err, "title")
}

func TestSubmitReport_MissingConsent(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.Consent = false

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrMissingField)
	assert.ErrorContains(t, err, "consent")
}

func TestSubmitReport_UnknownType(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.Type = "meteor"

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrInvalidField)
	assert.ErrorContains(t, err, "incident_type")
}

func TestSubmitReport_FutureDate(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.Date = "2024-03-16" // Завтра относительно testNow

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrFutureDate)
}

func TestSubmitReport_TodayIsAllowed(t *testing.T) {
	// Подготовка: дата совпадает с сегодняшним днем — это не "будущее"
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.Date = "2024-03-15"

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	m.resolver.EXPECT().Resolve(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 1, Lng: 2}, nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	_, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.NoError(t, err)
}

func TestSubmitReport_InvalidEmail(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	sub.ReporterEmail = "not-an-email"

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrInvalidField)
	assert.ErrorContains(t, err, "reporter_email")
}

func TestSubmitReport_InvalidClientCoords(t *testing.T) {
	service, _ := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	lat := 123.0 // За пределами диапазона широты
	lng := 77.59
	sub.Lat = &lat
	sub.Lng = &lng

	_, err := service.SubmitReport(ctx, sub)

	require.ErrorIs(t, err, ErrInvalidField)
	assert.ErrorContains(t, err, "lat")
}

func TestSubmitReport_GeocodeUnresolved(t *testing.T) {
	// Подготовка: резолвер не нашел координаты — заявка отклоняется
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	m.resolver.EXPECT().
		Resolve(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{}, geocoder.ErrUnresolved).
		Times(1)
	// Репозиторий и публикатор НЕ вызываются
	m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.ErrorIs(t, err, geocoder.ErrUnresolved)
}

func TestSubmitReport_RepositoryError(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()
	dbError := fmt.Errorf("connection refused")

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	m.resolver.EXPECT().Resolve(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 1, Lng: 2}, nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(dbError).Times(1)
	m.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.ErrorIs(t, err, ErrPersistence)
}

func TestSubmitReport_PublishFailureDoesNotFailSubmission(t *testing.T) {
	// Подготовка: заявка уже сохранена, сбой очереди событий не должен ее отменить
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("", nil).Times(1)
	m.resolver.EXPECT().Resolve(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 1, Lng: 2}, nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	incident, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.NoError(t, err)
	assert.NotNil(t, incident)
}

func TestSubmitReport_PhotoStored(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	sub := validSubmission()

	// Ожидания
	m.photos.EXPECT().Save(ctx, gomock.Nil()).Return("uploads/abc.jpg", nil).Times(1)
	m.resolver.EXPECT().Resolve(ctx, gomock.Any(), gomock.Any(), gomock.Nil(), gomock.Nil()).
		Return(geocoder.Point{Lat: 1, Lng: 2}, nil).Times(1)
	m.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	m.publisher.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := service.SubmitReport(ctx, sub)

	// Проверки
	require.NoError(t, err)
	require.NotNil(t, incident.PhotoPath)
	assert.Equal(t, "uploads/abc.jpg", *incident.PhotoPath)
}

func TestListIncidents_DefaultWindow(t *testing.T) {
	// Подготовка: пустое окно означает окно по умолчанию (неделя)
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{{ID: 1}, {ID: 2}}

	// Ожидания
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
			require.NotNil(t, filter.Since)
			assert.Equal(t, testNow.AddDate(0, 0, -7), *filter.Since)
			assert.Equal(t, "", filter.Type)
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 5, filter.PerPage)
			return expected, true, nil
		}).Times(1)

	// Действие
	incidents, hasMore, err := service.ListIncidents(ctx, "", "", 0, 0)

	// Проверки
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Equal(t, expected, incidents)
}

func TestListIncidents_AllWindowDisablesFilter(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
			assert.Nil(t, filter.Since)
			return nil, false, nil
		}).Times(1)

	// Действие
	_, _, err := service.ListIncidents(ctx, "", "all", 1, 5)

	// Проверки
	require.NoError(t, err)
}

func TestListIncidents_WindowBounds(t *testing.T) {
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	cases := []struct {
		window string
		since  time.Time
	}{
		{"24h", testNow.Add(-24 * time.Hour)},
		{"week", testNow.AddDate(0, 0, -7)},
		{"month", testNow.AddDate(0, -1, 0)},
	}

	for _, tc := range cases {
		m.repo.EXPECT().
			List(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
				require.NotNil(t, filter.Since)
				assert.Equal(t, tc.since, *filter.Since)
				return nil, false, nil
			}).Times(1)

		_, _, err := service.ListIncidents(ctx, "", tc.window, 1, 5)
		require.NoError(t, err, "window %q", tc.window)
	}
}

func TestListIncidents_TypeAllMeansNoFilter(t *testing.T) {
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
			assert.Equal(t, "", filter.Type)
			return nil, false, nil
		}).Times(1)

	_, _, err := service.ListIncidents(ctx, "all", "week", 1, 5)
	require.NoError(t, err)
}

func TestListIncidents_ClampsPagination(t *testing.T) {
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		List(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 5, filter.PerPage)
			return nil, false, nil
		}).Times(1)

	_, _, err := service.ListIncidents(ctx, "", "week", -3, 500)
	require.NoError(t, err)
}

func TestTypeStats_Success(t *testing.T) {
	// Подготовка
	service, m := newTestIncidentService(t)
	ctx := context.Background()
	expected := []models.TypeCount{
		{Type: models.TypeTheft, Count: 7},
		{Type: models.TypeNoise, Count: 2},
	}

	// Ожидания
	m.repo.EXPECT().
		CountByType(ctx, gomock.Any()).
		Return(expected, nil).
		Times(1)

	// Действие
	counts, err := service.TypeStats(ctx, "week")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, counts)
}

func TestTypeStats_RepositoryError(t *testing.T) {
	service, m := newTestIncidentService(t)
	ctx := context.Background()

	m.repo.EXPECT().
		CountByType(ctx, gomock.Any()).
		Return(nil, fmt.Errorf("connection refused")).
		Times(1)

	_, err := service.TypeStats(ctx, "week")

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not count incidents")
}
