package models

import (
	"mime/multipart"
	"time"
)

// ReportSubmission - сырая заявка с формы до валидации и геокодирования.
// Значения полей приходят строками из multipart-формы.
type ReportSubmission struct {
	Type          string
	Title         string
	Description   string
	Location      string
	Area          string
	Date          string // YYYY-MM-DD
	Time          string // HH:MM
	ReporterName  string
	ReporterEmail string
	Consent       bool

	// Координаты браузера, если клиент их передал
	Lat *float64
	Lng *float64

	// Необязательная фотография
	Photo *multipart.FileHeader
}

// IncidentFilter - параметры выборки для дашборда.
type IncidentFilter struct {
	// Точное совпадение по типу; пустое значение или "all" - без фильтра
	Type string
	// Нижняя граница created_at; nil - без ограничения по времени
	Since *time.Time
	Page  int
	// Размер страницы
	PerPage int
}
