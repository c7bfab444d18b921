package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/geo_attendance/internal/auth"
	"github.com/shenikar/geo_attendance/internal/service"
	"github.com/sirupsen/logrus"
)

// currentUser достает ID студента из токена; при отсутствии отвечает 401
func currentUser(c *gin.Context, log *logrus.Entry) (uuid.UUID, *logrus.Entry, bool) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		log.Warn("Missing authenticated user in context")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, log, false
	}
	return userID, log.WithField("user_id", userID), true
}

// @Summary Submit attendance
// @Description Mark attendance at the current location. Identity is proven either by face_descriptor or by a preceding /attendance/face/verify call.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attempt body SubmitAttendanceRequest true "Attendance attempt"
// @Success 201 {object} AttendanceResponse "Marked present"
// @Failure 400 {object} ErrorResponse "Invalid input or descriptor dimension mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} AttendanceResponse "Out of range (record stored) or face mismatch"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "Attendance already marked today"
// @Failure 428 {object} ErrorResponse "Face enrollment or verification required"
// @Failure 503 {object} ErrorResponse "Storage unavailable, safe to retry"
// @Router /attendance [post]
func (h *Handler) submitAttendance(c *gin.Context) {
	userID, log, ok := currentUser(c, h.logger.WithField("method", "submitAttendance"))
	if !ok {
		return
	}

	var input SubmitAttendanceRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	result, err := h.attendanceService.SubmitAttendance(c.Request.Context(), service.SubmitRequest{
		UserID:     userID,
		Latitude:   *input.Latitude,
		Longitude:  *input.Longitude,
		Descriptor: input.FaceDescriptor,
	})
	if err != nil {
		respondError(c, log, err)
		return
	}

	status := outcomeStatus(result.Outcome)
	if result.Record != nil {
		c.JSON(status, SubmitResultToResponse(result))
		return
	}
	log.WithField("outcome", result.Outcome).Info("Attendance attempt rejected")
	c.JSON(status, ErrorResponse{Code: string(result.Outcome), Error: result.Reason})
}

// @Summary Enroll face
// @Description Store the caller's face descriptor. Re-enrollment overwrites the previous descriptor.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param descriptor body FaceDescriptorRequest true "Face descriptor"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid descriptor"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /attendance/face/enroll [post]
func (h *Handler) enrollFace(c *gin.Context) {
	userID, log, ok := currentUser(c, h.logger.WithField("method", "enrollFace"))
	if !ok {
		return
	}

	var input FaceDescriptorRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	if err := h.attendanceService.EnrollFace(c.Request.Context(), userID, input.FaceDescriptor); err != nil {
		respondError(c, log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Verify face
// @Description Compare a fresh descriptor with the enrolled one. A match grants a short-lived, single-use proof for the next attendance submission.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param descriptor body FaceDescriptorRequest true "Face descriptor"
// @Success 200 {object} FaceVerificationResponse "Face matched"
// @Failure 400 {object} ErrorResponse "Invalid descriptor or dimension mismatch"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} FaceVerificationResponse "Face does not match"
// @Failure 428 {object} ErrorResponse "Face not enrolled"
// @Router /attendance/face/verify [post]
func (h *Handler) verifyFace(c *gin.Context) {
	userID, log, ok := currentUser(c, h.logger.WithField("method", "verifyFace"))
	if !ok {
		return
	}

	var input FaceDescriptorRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	result, err := h.attendanceService.VerifyFace(c.Request.Context(), userID, input.FaceDescriptor)
	if err != nil {
		respondError(c, log, err)
		return
	}

	resp := FaceVerificationResponse{Matched: result.Matched, Distance: result.Distance}
	if !result.Matched {
		c.JSON(http.StatusForbidden, resp)
		return
	}
	resp.ExpiresAt = &result.ExpiresAt
	c.JSON(http.StatusOK, resp)
}

// @Summary Get own attendance history
// @Description Get the caller's attendance records, newest first.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} AttendanceRecordResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Router /attendance/me [get]
func (h *Handler) myAttendance(c *gin.Context) {
	userID, log, ok := currentUser(c, h.logger.WithField("method", "myAttendance"))
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	records, err := h.attendanceService.History(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAttendanceRecordResponses(records))
}

// @Summary List attendance for a day
// @Description Get all attendance records of a day (defaults to today). Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param date query string false "Day in YYYY-MM-DD"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} AttendanceRecordResponse
// @Failure 400 {object} ErrorResponse "Invalid date"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /attendance [get]
func (h *Handler) listAttendance(c *gin.Context) {
	date := c.Query("date")
	log := h.logger.WithField("method", "listAttendance").WithField("date", date)
	page, pageSize := pagination(c)

	records, err := h.attendanceService.ListByDay(c.Request.Context(), date, page, pageSize)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToAttendanceRecordResponses(records))
}

// @Summary Get attendance statistics
// @Description Get the number of distinct students marked present today. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Router /attendance/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.attendanceService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{Date: stats.WindowKey, PresentUsers: stats.PresentUsers})
}
