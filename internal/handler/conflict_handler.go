package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// ConflictHandler exposes the advisory conflict checks and teacher
// availability lookup.
type ConflictHandler struct {
	conflicts       *service.ConflictService
	availability    *service.AvailabilityService
	defaultYear     string
	defaultSemester int
}

// NewConflictHandler constructs handler.
func NewConflictHandler(conflicts *service.ConflictService, availability *service.AvailabilityService, defaultYear string, defaultSemester int) *ConflictHandler {
	if defaultSemester < 1 {
		defaultSemester = 1
	}
	return &ConflictHandler{conflicts: conflicts, availability: availability, defaultYear: defaultYear, defaultSemester: defaultSemester}
}

func (h *ConflictHandler) yearAndSemester(c *gin.Context) (string, int) {
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

// CheckRoom godoc
// @Summary Check for room double-bookings in a time window
// @Tags Conflicts
// @Produce json
// @Param day query string true "Weekday name"
// @Param startTime query string true "Window start HH:MM"
// @Param endTime query string true "Window end HH:MM"
// @Param room query string true "Room"
// @Param excludeClassId query string false "Class to exclude"
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts/room [get]
func (h *ConflictHandler) CheckRoom(c *gin.Context) {
	day := c.Query("day")
	room := c.Query("room")
	if day == "" || room == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day and room are required"))
		return
	}
	year, semester := h.yearAndSemester(c)
	conflicts, err := h.conflicts.CheckRoomConflict(c.Request.Context(), year, semester, day, c.Query("startTime"), c.Query("endTime"), room, c.Query("excludeClassId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "has_conflict": len(conflicts) > 0}, nil)
}

// CheckTeacher godoc
// @Summary Check whether a teacher is already booked in a time window
// @Tags Conflicts
// @Produce json
// @Param day query string true "Weekday name"
// @Param startTime query string true "Window start HH:MM"
// @Param endTime query string true "Window end HH:MM"
// @Param teacherId query string true "Teacher ID"
// @Param excludeClassId query string false "Class to exclude"
// @Success 200 {object} response.Envelope
// @Router /timetable/conflicts/teacher [get]
func (h *ConflictHandler) CheckTeacher(c *gin.Context) {
	day := c.Query("day")
	teacherID := c.Query("teacherId")
	if day == "" || teacherID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day and teacherId are required"))
		return
	}
	year, semester := h.yearAndSemester(c)
	conflicts, err := h.conflicts.CheckTeacherAvailability(c.Request.Context(), year, semester, day, c.Query("startTime"), c.Query("endTime"), teacherID, c.Query("excludeClassId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts, "has_conflict": len(conflicts) > 0}, nil)
}

// AvailableTeachers godoc
// @Summary List teachers qualified for a subject, annotated with booking state
// @Tags Conflicts
// @Produce json
// @Param subjectId query string true "Subject ID"
// @Param day query string true "Weekday name"
// @Param startTime query string true "Window start HH:MM"
// @Param endTime query string true "Window end HH:MM"
// @Param excludeClassId query string false "Class to exclude from conflict annotations"
// @Success 200 {object} response.Envelope
// @Router /timetable/available-teachers [get]
func (h *ConflictHandler) AvailableTeachers(c *gin.Context) {
	subjectID := c.Query("subjectId")
	day := c.Query("day")
	if subjectID == "" || day == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "subjectId and day are required"))
		return
	}
	year, semester := h.yearAndSemester(c)
	teachers, err := h.availability.FindAvailableTeachers(c.Request.Context(), subjectID, year, semester, day, c.Query("startTime"), c.Query("endTime"), c.Query("excludeClassId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
