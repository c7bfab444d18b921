package v1

import (
	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/models"
	"github.com/shenikar/geo_attendance/internal/service"
)

// DTOToGeofenceModel преобразует DTO создания в доменную модель.
// Без поля active новая геозона считается активной.
func DTOToGeofenceModel(dto GeofenceRequest) *models.Geofence {
	active := true
	if dto.Active != nil {
		active = *dto.Active
	}
	return &models.Geofence{
		Name:         dto.Name,
		Latitude:     *dto.Latitude,
		Longitude:    *dto.Longitude,
		RadiusMeters: dto.RadiusMeters,
		Active:       active,
	}
}

// DTOToGeofenceUpdate преобразует DTO обновления; отсутствующее active не меняет состояние геозоны
func DTOToGeofenceUpdate(id uuid.UUID, dto GeofenceRequest) models.GeofenceUpdate {
	return models.GeofenceUpdate{
		ID:           id,
		Name:         dto.Name,
		Latitude:     *dto.Latitude,
		Longitude:    *dto.Longitude,
		RadiusMeters: dto.RadiusMeters,
		Active:       dto.Active,
	}
}

// ModelToGeofenceResponse преобразует доменную модель в DTO для ответа
func ModelToGeofenceResponse(model *models.Geofence) *GeofenceResponse {
	return &GeofenceResponse{
		ID:           model.ID,
		Name:         model.Name,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		RadiusMeters: model.RadiusMeters,
		Active:       model.Active,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToGeofenceResponses преобразует слайс моделей в слайс DTO
func ModelsToGeofenceResponses(models []*models.Geofence) []*GeofenceResponse {
	responses := make([]*GeofenceResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToGeofenceResponse(model)
	}
	return responses
}

func ModelToAttendanceRecordResponse(model *models.AttendanceRecord) *AttendanceRecordResponse {
	return &AttendanceRecordResponse{
		ID:             model.ID,
		UserID:         model.UserID,
		GeofenceID:     model.GeofenceID,
		Latitude:       model.Latitude,
		Longitude:      model.Longitude,
		DistanceMeters: model.DistanceMeters,
		Status:         string(model.Status),
		Date:           model.WindowKey,
		Timestamp:      model.Timestamp,
	}
}

func ModelsToAttendanceRecordResponses(models []*models.AttendanceRecord) []*AttendanceRecordResponse {
	responses := make([]*AttendanceRecordResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToAttendanceRecordResponse(model)
	}
	return responses
}

// SubmitResultToResponse преобразует сохраненную попытку в DTO; result.Record не nil
func SubmitResultToResponse(result *service.SubmitResult) *AttendanceResponse {
	return &AttendanceResponse{
		Status:       string(result.Record.Status),
		LocationName: result.LocationName,
		RecordID:     result.Record.ID,
		Timestamp:    result.Record.Timestamp,
	}
}

func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		ID:             model.ID,
		Name:           model.Name,
		Email:          model.Email,
		FaceEnrolled:   model.FaceEnrolled(),
		FaceEnrolledAt: model.FaceEnrolledAt,
		CreatedAt:      model.CreatedAt,
	}
}
