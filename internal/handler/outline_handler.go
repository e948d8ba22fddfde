package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// OutlineHandler manages bell-schedule outline endpoints.
type OutlineHandler struct {
	service *service.OutlineService
}

// NewOutlineHandler constructs handler.
func NewOutlineHandler(svc *service.OutlineService) *OutlineHandler {
	return &OutlineHandler{service: svc}
}

// List godoc
// @Summary List timetable outlines
// @Tags Outlines
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /outlines [get]
func (h *OutlineHandler) List(c *gin.Context) {
	outlines, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outlines, nil)
}

// Get godoc
// @Summary Get one outline
// @Tags Outlines
// @Produce json
// @Param id path string true "Outline ID"
// @Success 200 {object} response.Envelope
// @Router /outlines/{id} [get]
func (h *OutlineHandler) Get(c *gin.Context) {
	outline, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outline, nil)
}

// Create godoc
// @Summary Create outline
// @Tags Outlines
// @Accept json
// @Produce json
// @Param payload body service.CreateOutlineRequest true "Outline payload"
// @Success 201 {object} response.Envelope
// @Router /outlines [post]
func (h *OutlineHandler) Create(c *gin.Context) {
	var req service.CreateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outline, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, outline)
}

// Update godoc
// @Summary Update outline
// @Tags Outlines
// @Accept json
// @Produce json
// @Param id path string true "Outline ID"
// @Param payload body service.UpdateOutlineRequest true "Outline payload"
// @Success 200 {object} response.Envelope
// @Router /outlines/{id} [put]
func (h *OutlineHandler) Update(c *gin.Context) {
	var req service.UpdateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	outline, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outline, nil)
}

// Delete godoc
// @Summary Delete outline
// @Tags Outlines
// @Produce json
// @Param id path string true "Outline ID"
// @Success 204
// @Router /outlines/{id} [delete]
func (h *OutlineHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
