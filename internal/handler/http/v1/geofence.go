package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Create a new geofence
// @Description Register a geofence where students can mark attendance. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param geofence body GeofenceRequest true "Geofence creation request"
// @Success 201 {object} GeofenceResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Router /geofences [post]
func (h *Handler) createGeofence(c *gin.Context) {
	var input GeofenceRequest
	log := h.logger.WithField("method", "createGeofence")

	if !h.bindAndValidate(c, log, &input) {
		return
	}

	model := DTOToGeofenceModel(input)
	if err := h.geofenceService.CreateGeofence(c.Request.Context(), model); err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToGeofenceResponse(model))
}

// @Summary Get a list of geofences
// @Description Get a paginated list of all geofences, including inactive ones. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Success 200 {array} GeofenceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 503 {object} ErrorResponse "Storage unavailable"
// @Router /geofences [get]
func (h *Handler) listGeofences(c *gin.Context) {
	log := h.logger.WithField("method", "listGeofences")
	page, pageSize := pagination(c)

	geofences, err := h.geofenceService.ListGeofences(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToGeofenceResponses(geofences))
}

// @Summary Get geofence by ID
// @Description Get a single geofence by its ID. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geofence ID"
// @Success 200 {object} GeofenceResponse
// @Failure 400 {object} ErrorResponse "Invalid geofence ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "Geofence not found"
// @Router /geofences/{id} [get]
func (h *Handler) getGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid geofence ID"})
		return
	}
	log := h.logger.WithField("method", "getGeofence").WithField("id", id)

	geofence, err := h.geofenceService.GetGeofence(c.Request.Context(), id)
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToGeofenceResponse(geofence))
}

// @Summary Update an existing geofence
// @Description Update an existing geofence by ID. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geofence ID"
// @Param geofence body GeofenceRequest true "Geofence update request"
// @Success 200 {object} GeofenceResponse
// @Failure 400 {object} ErrorResponse "Invalid geofence ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "Geofence not found"
// @Router /geofences/{id} [put]
func (h *Handler) updateGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid geofence ID"})
		return
	}
	log := h.logger.WithField("method", "updateGeofence").WithField("id", id)

	var input GeofenceRequest
	if !h.bindAndValidate(c, log, &input) {
		return
	}

	updated, err := h.geofenceService.UpdateGeofence(c.Request.Context(), DTOToGeofenceUpdate(id, input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToGeofenceResponse(updated))
}

// @Summary Deactivate a geofence
// @Description Deactivate a geofence by its ID. Existing attendance records keep referencing it. Requires API key.
// @Tags Geofences
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Geofence ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invalid geofence ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} ErrorResponse "Geofence not found"
// @Router /geofences/{id} [delete]
func (h *Handler) deleteGeofence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: "INVALID_INPUT", Error: "invalid geofence ID"})
		return
	}
	log := h.logger.WithField("method", "deleteGeofence").WithField("id", id)

	if err := h.geofenceService.DeactivateGeofence(c.Request.Context(), id); err != nil {
		respondError(c, log, err)
		return
	}

	c.Status(http.StatusNoContent)
}
