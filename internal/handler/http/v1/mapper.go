package v1

import (
	"mime/multipart"

	"github.com/shenikar/incident_reporting_system/internal/models"
)

// DTOToReportSubmission преобразует DTO формы в доменную модель заявки.
// Consent приходит чекбоксом: любое непустое значение, кроме явного
// отказа, считается согласием.
func DTOToReportSubmission(dto SubmitReportRequest, photo *multipart.FileHeader) models.ReportSubmission {
	return models.ReportSubmission{
		Type:          dto.IncidentType,
		Title:         dto.Title,
		Description:   dto.Description,
		Location:      dto.Location,
		Area:          dto.Area,
		Date:          dto.Date,
		Time:          dto.Time,
		ReporterName:  dto.ReporterName,
		ReporterEmail: dto.ReporterEmail,
		Consent:       parseConsent(dto.Consent),
		Lat:           dto.Lat,
		Lng:           dto.Lng,
		Photo:         photo,
	}
}

func parseConsent(v string) bool {
	switch v {
	case "", "false", "0", "off":
		return false
	}
	return true
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:            model.ID,
		Type:          string(model.Type),
		Title:         model.Title,
		Description:   model.Description,
		Location:      model.Location,
		Area:          model.Area,
		Date:          model.Date.Format("2006-01-02"),
		Time:          model.Time,
		ReporterName:  model.ReporterName,
		ReporterEmail: model.ReporterEmail,
		PhotoPath:     model.PhotoPath,
		Lat:           model.Lat,
		Lng:           model.Lng,
		CreatedAt:     model.CreatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

// ModelsToTypeCountResponses преобразует статистику по типам в DTO
func ModelsToTypeCountResponses(counts []models.TypeCount) []TypeCountResponse {
	responses := make([]TypeCountResponse, len(counts))
	for i, count := range counts {
		responses[i] = TypeCountResponse{
			Type:  string(count.Type),
			Count: count.Count,
		}
	}
	return responses
}
