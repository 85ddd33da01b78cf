package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deptsched/timetable-api/internal/dto"
	"github.com/deptsched/timetable-api/internal/service"
	appErrors "github.com/deptsched/timetable-api/pkg/errors"
	"github.com/deptsched/timetable-api/pkg/response"
)

// RunHandler exposes the planning run lifecycle over HTTP.
type RunHandler struct {
	planner *service.PlannerService
	export  *service.ExportService
}

// NewRunHandler constructs a RunHandler.
func NewRunHandler(planner *service.PlannerService, export *service.ExportService) *RunHandler {
	return &RunHandler{planner: planner, export: export}
}

// Create submits a department configuration for planning.
func (h *RunHandler) Create(c *gin.Context) {
	var req dto.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed request body"))
		return
	}

	detail, err := h.planner.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List returns a page of planning run summaries.
func (h *RunHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	runs, err := h.planner.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, nil)
}

// Get returns one planning run's full detail, including solved assignments.
func (h *RunHandler) Get(c *gin.Context) {
	detail, err := h.planner.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete removes a planning run.
func (h *RunHandler) Delete(c *gin.Context) {
	if err := h.planner.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExportXLSX streams the per-class timetable workbook for a completed run.
func (h *RunHandler) ExportXLSX(c *gin.Context) {
	data, err := h.export.XLSX(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := "combined_timetables_" + time.Now().UTC().Format("20060102_150405") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportCSV streams a flat per-assignment CSV listing for a completed run.
func (h *RunHandler) ExportCSV(c *gin.Context) {
	data, err := h.export.CSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=timetable.csv")
	c.Data(http.StatusOK, "text/csv", data)
}
