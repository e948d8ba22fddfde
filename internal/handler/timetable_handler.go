package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// TimetableHandler manages the weekly timetable endpoints for a class.
type TimetableHandler struct {
	service         *service.TimetableService
	defaultYear     string
	defaultSemester int
}

// NewTimetableHandler constructs handler. Defaults are applied when a
// request omits the academic year or semester query parameters.
func NewTimetableHandler(svc *service.TimetableService, defaultYear string, defaultSemester int) *TimetableHandler {
	if defaultSemester < 1 {
		defaultSemester = 1
	}
	return &TimetableHandler{service: svc, defaultYear: defaultYear, defaultSemester: defaultSemester}
}

func (h *TimetableHandler) yearAndSemester(c *gin.Context) (string, int) {
	year := c.Query("academicYear")
	if year == "" {
		year = h.defaultYear
	}
	semester := h.defaultSemester
	if raw := c.Query("semester"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			semester = parsed
		}
	}
	return year, semester
}

// Get godoc
// @Summary Get the weekly timetable for a class
// @Tags Timetables
// @Produce json
// @Param id path string true "Class ID"
// @Param academicYear query string false "Academic year"
// @Param semester query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/timetable [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	year, semester := h.yearAndSemester(c)
	view, err := h.service.GetForClass(c.Request.Context(), c.Param("id"), year, semester)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, view.Cached)
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// Save godoc
// @Summary Save (fully replace) the weekly timetable for a class
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.SaveTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/timetable [post]
func (h *TimetableHandler) Save(c *gin.Context) {
	var req service.SaveTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	timetable, err := h.service.Save(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timetable, nil)
}

// AssignPeriod godoc
// @Summary Assign one period slot (optionally across all days)
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.AssignPeriodRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/timetable/periods [post]
func (h *TimetableHandler) AssignPeriod(c *gin.Context) {
	var req service.AssignPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.AssignPeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	var meta map[string]interface{}
	if len(result.Warnings) > 0 {
		meta = map[string]interface{}{"warnings": result.Warnings}
	}
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// RemovePeriod godoc
// @Summary Remove one period assignment from a day
// @Tags Timetables
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.RemovePeriodRequest true "Removal payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/timetable/periods [delete]
func (h *TimetableHandler) RemovePeriod(c *gin.Context) {
	var req service.RemovePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.service.RemovePeriod(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Clear godoc
// @Summary Clear the whole timetable for a class and academic year
// @Tags Timetables
// @Produce json
// @Param id path string true "Class ID"
// @Param academicYear query string false "Academic year"
// @Success 204
// @Router /classes/{id}/timetable [delete]
func (h *TimetableHandler) Clear(c *gin.Context) {
	year, _ := h.yearAndSemester(c)
	if err := h.service.Clear(c.Request.Context(), c.Param("id"), year); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
