package models

import (
	"time"
)

// IncidentType - тип происшествия из фиксированного набора.
type IncidentType string

const (
	TypeTheft      IncidentType = "theft"
	TypeVandalism  IncidentType = "vandalism"
	TypeSuspicious IncidentType = "suspicious"
	TypeAssault    IncidentType = "assault"
	TypeHazard     IncidentType = "hazard"
	TypeNoise      IncidentType = "noise"
	TypeProtest    IncidentType = "protest"
	TypeOther      IncidentType = "other"
)

var incidentTypes = map[IncidentType]struct{}{
	TypeTheft:      {},
	TypeVandalism:  {},
	TypeSuspicious: {},
	TypeAssault:    {},
	TypeHazard:     {},
	TypeNoise:      {},
	TypeProtest:    {},
	TypeOther:      {},
}

// ValidIncidentType сообщает, входит ли значение в допустимый набор типов.
func ValidIncidentType(s string) bool {
	_, ok := incidentTypes[IncidentType(s)]
	return ok
}

// ParseIncidentType приводит произвольное значение к типу происшествия.
// Неизвестные значения на чтении превращаются в "other".
func ParseIncidentType(s string) IncidentType {
	if ValidIncidentType(s) {
		return IncidentType(s)
	}
	return TypeOther
}

// Incident - сохраненное происшествие. Создается один раз при успешном
// приеме заявки, после этого не изменяется и не удаляется.
type Incident struct {
	ID            int64        `json:"id"`
	Type          IncidentType `json:"type"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Location      string       `json:"location"`
	Area          string       `json:"area"`
	Date          time.Time    `json:"-"`
	Time          string       `json:"time"`
	ReporterName  *string      `json:"reporter_name,omitempty"`
	ReporterEmail *string      `json:"reporter_email,omitempty"`
	PhotoPath     *string      `json:"photo_path,omitempty"`
	Lat           float64      `json:"lat"`
	Lng           float64      `json:"lng"`
	CreatedAt     time.Time    `json:"created_at"`
}

// TypeCount - количество происшествий одного типа, для статистики дашборда.
type TypeCount struct {
	Type  IncidentType `json:"type"`
	Count int64        `json:"count"`
}
