package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shenikar/incident_reporting_system/internal/models"
	"github.com/shenikar/incident_reporting_system/internal/service"
)

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create вставляет происшествие и получает от базы id и created_at.
// Вставка атомарна: при ошибке частичной записи не остается.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents
			(incident_type, title, description, location, area, incident_date, incident_time,
			 reporter_name, reporter_email, photo_path, lat, lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		string(incident.Type),
		incident.Title,
		incident.Description,
		incident.Location,
		incident.Area,
		incident.Date,
		incident.Time,
		incident.ReporterName,
		incident.ReporterEmail,
		incident.PhotoPath,
		incident.Lat,
		incident.Lng,
	).Scan(&incident.ID, &incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// List возвращает страницу происшествий по фильтру и признак наличия
// следующих строк. Сортировка: created_at DESC, id DESC - id как
// тай-брейк делает пагинацию устойчивой к конкурентным вставкам.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, bool, error) {
	offset := (filter.Page - 1) * filter.PerPage

	query := `
		SELECT id, incident_type, title, description, location, area,
		       incident_date, incident_time, reporter_name, reporter_email,
		       photo_path, lat, lng, created_at
		FROM incidents
		WHERE ($1 = '' OR incident_type = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4;
	`

	// Забираем на одну строку больше, чтобы вычислить has_more без COUNT(*)
	rows, err := r.db.Query(ctx, query, filter.Type, filter.Since, filter.PerPage+1, offset)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0, filter.PerPage)
	for rows.Next() {
		incident := &models.Incident{}
		var rawType string
		err := rows.Scan(
			&incident.ID,
			&rawType,
			&incident.Title,
			&incident.Description,
			&incident.Location,
			&incident.Area,
			&incident.Date,
			&incident.Time,
			&incident.ReporterName,
			&incident.ReporterEmail,
			&incident.PhotoPath,
			&incident.Lat,
			&incident.Lng,
			&incident.CreatedAt,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan incident row: %w", err)
		}
		// Неизвестные типы на чтении превращаются в "other"
		incident.Type = models.ParseIncidentType(rawType)
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error list iteration: %w", err)
	}

	hasMore := len(incidents) > filter.PerPage
	if hasMore {
		incidents = incidents[:filter.PerPage]
	}
	return incidents, hasMore, nil
}

// CountByType возвращает количество происшествий по типам для статистики.
func (r *IncidentRepository) CountByType(ctx context.Context, since *time.Time) ([]models.TypeCount, error) {
	query := `
		SELECT incident_type, COUNT(*)
		FROM incidents
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		GROUP BY incident_type
		ORDER BY COUNT(*) DESC;
	`
	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to count incidents by type: %w", err)
	}
	defer rows.Close()

	counts := make([]models.TypeCount, 0)
	for rows.Next() {
		var rawType string
		var count int64
		if err := rows.Scan(&rawType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		counts = append(counts, models.TypeCount{
			Type:  models.ParseIncidentType(rawType),
			Count: count,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error stats iteration: %w", err)
	}
	return counts, nil
}
