package geocoder

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/shenikar/incident_reporting_system/internal/metrics"
)

// Resolver выбирает координату заявки по приоритетной цепочке:
//  1. координаты, переданные браузером клиента;
//  2. геокодирование запроса "<location>, <area>";
//  3. геокодирование только "<location>";
//  4. ErrUnresolved.
//
// Первый успешный шаг завершает цепочку. Транспортные сбои провайдера
// приравниваются к отсутствию результата и не прерывают цепочку.
type Resolver struct {
	provider Provider
	logger   *logrus.Logger
}

// NewResolver создает резолвер координат поверх провайдера геокодирования.
func NewResolver(provider Provider, logger *logrus.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logger,
	}
}

// Resolve возвращает координату для заявки или ErrUnresolved.
// Координаты клиента принимаются как есть, без обращения к провайдеру.
func (r *Resolver) Resolve(ctx context.Context, location, area string, lat, lng *float64) (Point, error) {
	if lat != nil && lng != nil {
		metrics.GeocodeResolutions.WithLabelValues("client").Inc()
		return Point{Lat: *lat, Lng: *lng}, nil
	}

	combined := fmt.Sprintf("%s, %s", location, area)
	if pt, ok := r.attempt(ctx, combined); ok {
		metrics.GeocodeResolutions.WithLabelValues("combined").Inc()
		return pt, nil
	}

	// Area бывает неточной или с опечатками, поэтому повторяем запрос
	// по одному только location
	if pt, ok := r.attempt(ctx, location); ok {
		metrics.GeocodeResolutions.WithLabelValues("fallback").Inc()
		return pt, nil
	}

	metrics.GeocodeResolutions.WithLabelValues("unresolved").Inc()
	return Point{}, ErrUnresolved
}

// attempt выполняет один шаг цепочки. Любая ошибка провайдера логируется
// и трактуется как "нет результата".
func (r *Resolver) attempt(ctx context.Context, query string) (Point, bool) {
	pt, ok, err := r.provider.Geocode(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Warn("geocode attempt failed")
		return Point{}, false
	}
	return pt, ok
}
