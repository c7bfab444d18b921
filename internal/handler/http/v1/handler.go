package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/geo_attendance/internal/attendance"
	"github.com/shenikar/geo_attendance/internal/config"
	"github.com/shenikar/geo_attendance/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	geofenceService   service.GeofenceService
	attendanceService service.AttendanceService
	userService       service.UserService
	logger            *logrus.Logger
	validate          *validator.Validate
	cfg               *config.Config
}

func NewHandler(
	geofenceService service.GeofenceService,
	attendanceService service.AttendanceService,
	userService service.UserService,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		geofenceService:   geofenceService,
		attendanceService: attendanceService,
		userService:       userService,
		logger:            logger,
		validate:          validator.New(),
		cfg:               cfg,
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindAndValidate разбирает JSON тела запроса и проверяет его тегами validate
func (h *Handler) bindAndValidate(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: err.Error()})
		return false
	}
	return true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return page, pageSize
}

// respondError переводит ошибку сервиса в HTTP статус и код
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, service.ErrDimensionMismatch):
		status, code = http.StatusBadRequest, "DIMENSION_MISMATCH"
	case errors.Is(err, service.ErrNeedsEnrollment):
		status, code = http.StatusPreconditionRequired, "NEEDS_ENROLLMENT"
	case errors.Is(err, service.ErrUserNotFound):
		status, code = http.StatusNotFound, "USER_NOT_FOUND"
	case errors.Is(err, service.ErrGeofenceNotFound):
		status, code = http.StatusNotFound, "GEOFENCE_NOT_FOUND"
	case errors.Is(err, service.ErrUserExists):
		status, code = http.StatusConflict, "USER_EXISTS"
	case errors.Is(err, service.ErrDuplicateRecord):
		status, code = http.StatusConflict, "DUPLICATE_ATTENDANCE"
	case errors.Is(err, service.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		c.JSON(status, ErrorResponse{Code: code, Error: "service temporarily unavailable"})
		return
	}
	log.WithError(err).Warn("Request rejected")
	c.JSON(status, ErrorResponse{Code: code, Error: err.Error()})
}

// outcomeStatus возвращает HTTP статус для исхода попытки отметки
func outcomeStatus(outcome attendance.Outcome) int {
	switch outcome {
	case attendance.OutcomePresent:
		return http.StatusCreated
	case attendance.OutcomeOutOfRange, attendance.OutcomeFaceMismatch:
		return http.StatusForbidden
	case attendance.OutcomeNeedsEnrollment, attendance.OutcomeNeedsFaceVerification:
		return http.StatusPreconditionRequired
	case attendance.OutcomeDuplicateAttendance:
		return http.StatusConflict
	case attendance.OutcomeInvalidInput, attendance.OutcomeDimensionMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
