package v1

import "time"

// SubmitReportRequest DTO для приема заявки о происшествии (multipart-форма)
// @Description DTO для приема заявки о происшествии
type SubmitReportRequest struct {
	IncidentType  string   `form:"incident_type"`
	Title         string   `form:"title"`
	Description   string   `form:"description"`
	Location      string   `form:"location"`
	Area          string   `form:"area"`
	Date          string   `form:"date"`
	Time          string   `form:"time"`
	ReporterName  string   `form:"reporter_name"`
	ReporterEmail string   `form:"reporter_email"`
	Consent       string   `form:"consent"`
	Lat           *float64 `form:"latitude"`
	Lng           *float64 `form:"longitude"`
}

// SubmitReportResponse DTO для ответа на заявку
// @Description DTO для ответа на заявку
type SubmitReportResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	IncidentID int64  `json:"incident_id,omitempty"`
	// Детали ошибки, только в диагностическом режиме
	Detail string `json:"detail,omitempty"`
}

// IncidentResponse DTO для ответа с информацией о происшествии
// @Description DTO для ответа с информацией о происшествии
type IncidentResponse struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	Area          string    `json:"area"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	ReporterName  *string   `json:"reporter_name,omitempty"`
	ReporterEmail *string   `json:"reporter_email,omitempty"`
	PhotoPath     *string   `json:"photo_path,omitempty"`
	Lat           float64   `json:"lat"`
	Lng           float64   `json:"lng"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListIncidentsResponse DTO для страницы происшествий
// @Description DTO для страницы происшествий
type ListIncidentsResponse struct {
	Incidents []*IncidentResponse `json:"incidents"`
	HasMore   bool                `json:"has_more"`
}

// TypeCountResponse DTO для одной строки статистики
// @Description DTO для одной строки статистики
type TypeCountResponse struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// StatsResponse DTO для ответа со статистикой по типам
// @Description DTO для ответа со статистикой по типам
type StatsResponse struct {
	Stats []TypeCountResponse `json:"stats"`
}
