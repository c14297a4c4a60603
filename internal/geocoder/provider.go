package geocoder

import (
	"context"
	"errors"
)

// ErrUnresolved возвращается, когда ни один шаг цепочки геокодирования
// не дал координат.
var ErrUnresolved = errors.New("geocoding unresolved")

// Point - географическая координата.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Provider - внешний сервис прямого геокодирования. Возвращает лучшую
// найденную координату и признак того, что результат вообще есть.
// Ошибка означает транспортный сбой, а не отсутствие результата.
type Provider interface {
	Geocode(ctx context.Context, query string) (Point, bool, error)
}
