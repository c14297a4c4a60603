package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/incident_reporting_system/internal/models"
)

const (
	incidentQueueKey = "incident_events"
)

// IncidentEvent - уведомление о новом принятом происшествии.
type IncidentEvent struct {
	IncidentID int64               `json:"incident_id"`
	Type       models.IncidentType `json:"type"`
	Title      string              `json:"title"`
	Area       string              `json:"area"`
	Lat        float64             `json:"lat"`
	Lng        float64             `json:"lng"`
	CreatedAt  time.Time           `json:"created_at"`
}

//go:generate mockgen -source=publisher.go -destination=mocks/mock_publisher.go -package=mocks

// Publisher - интерфейс для публикации событий о происшествиях.
type Publisher interface {
	Publish(ctx context.Context, event IncidentEvent) error
}

// RedisPublisher - реализация Publisher поверх очереди в Redis.
type RedisPublisher struct {
	redisClient *redis.Client
}

// NewRedisPublisher создает новый RedisPublisher.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		redisClient: client,
	}
}

// Publish кладет событие в очередь Redis. Доставку выполняет Worker.
func (p *RedisPublisher) Publish(ctx context.Context, event IncidentEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal incident event: %w", err)
	}

	if err := p.redisClient.LPush(ctx, incidentQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish incident event to Redis: %w", err)
	}
	return nil
}
