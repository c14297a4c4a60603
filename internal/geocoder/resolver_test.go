package geocoder

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider отдает заранее подготовленные ответы и запоминает запросы.
type fakeProvider struct {
	responses map[string]Point
	errs      map[string]error
	queries   []string
}

func (f *fakeProvider) Geocode(_ context.Context, query string) (Point, bool, error) {
	f.queries = append(f.queries, query)
	if err, ok := f.errs[query]; ok {
		return Point{}, false, err
	}
	if pt, ok := f.responses[query]; ok {
		return pt, true, nil
	}
	return Point{}, false, nil
}

func newTestResolver(provider Provider) *Resolver {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewResolver(provider, logger)
}

func floatPtr(v float64) *float64 { return &v }

func TestResolve_ClientCoordinates_SkipProvider(t *testing.T) {
	provider := &fakeProvider{}
	resolver := newTestResolver(provider)

	pt, err := resolver.Resolve(context.Background(), "Main St", "Downtown", floatPtr(12.34), floatPtr(56.78))

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 12.34, Lng: 56.78}, pt)
	assert.Empty(t, provider.queries, "при координатах клиента провайдер не должен вызываться")
}

func TestResolve_CombinedQuery_NoFallback(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]Point{
			"Main St, Downtown": {Lat: 1.0, Lng: 2.0},
		},
	}
	resolver := newTestResolver(provider)

	pt, err := resolver.Resolve(context.Background(), "Main St", "Downtown", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 1.0, Lng: 2.0}, pt)
	assert.Equal(t, []string{"Main St, Downtown"}, provider.queries)
}

func TestResolve_FallbackToLocationOnly(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]Point{
			"Main St": {Lat: 12.34, Lng: 56.78},
		},
	}
	resolver := newTestResolver(provider)

	pt, err := resolver.Resolve(context.Background(), "Main St", "Downtown", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 12.34, Lng: 56.78}, pt)
	assert.Equal(t, []string{"Main St, Downtown", "Main St"}, provider.queries)
}

func TestResolve_ProviderErrorTreatedAsMiss(t *testing.T) {
	provider := &fakeProvider{
		errs: map[string]error{
			"Main St, Downtown": errors.New("connection refused"),
		},
		responses: map[string]Point{
			"Main St": {Lat: 3.0, Lng: 4.0},
		},
	}
	resolver := newTestResolver(provider)

	pt, err := resolver.Resolve(context.Background(), "Main St", "Downtown", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 3.0, Lng: 4.0}, pt)
}

func TestResolve_AllPathsEmpty_Unresolved(t *testing.T) {
	provider := &fakeProvider{}
	resolver := newTestResolver(provider)

	_, err := resolver.Resolve(context.Background(), "Main St", "Downtown", nil, nil)

	require.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, []string{"Main St, Downtown", "Main St"}, provider.queries)
}

func TestResolve_OnlyOneClientCoordinate_FallsThroughToProvider(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]Point{
			"Main St, Downtown": {Lat: 1.0, Lng: 2.0},
		},
	}
	resolver := newTestResolver(provider)

	pt, err := resolver.Resolve(context.Background(), "Main St", "Downtown", floatPtr(12.34), nil)

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 1.0, Lng: 2.0}, pt)
	assert.NotEmpty(t, provider.queries)
}
