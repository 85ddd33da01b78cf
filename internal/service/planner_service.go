package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/deptsched/timetable-api/internal/domain"
	"github.com/deptsched/timetable-api/internal/dto"
	"github.com/deptsched/timetable-api/internal/repository"
	"github.com/deptsched/timetable-api/internal/solver"
	appErrors "github.com/deptsched/timetable-api/pkg/errors"
)

// plannerRunRepository is the narrow persistence surface PlannerService
// depends on, kept separate from the concrete *repository.RunRepository so
// tests can substitute an in-memory double.
type plannerRunRepository interface {
	Create(ctx context.Context, run *repository.PlanningRun) error
	UpdateSucceeded(ctx context.Context, id string, result types.JSONText) error
	UpdateFailed(ctx context.Context, id, labStatus, lectStatus, errorCode, errorMessage string) error
	FindByID(ctx context.Context, id string) (*repository.PlanningRun, error)
	FindByInputHash(ctx context.Context, hash string) (*repository.PlanningRun, error)
	List(ctx context.Context, limit, offset int) ([]repository.PlanningRun, error)
	Delete(ctx context.Context, id string) error
}

// storedResult is the JSON payload persisted in PlanningRun.Result.
type storedResult struct {
	Labs     []dto.LabAssignmentView     `json:"labs"`
	Lectures []dto.LectureAssignmentView `json:"lectures"`
}

// PlannerService orchestrates input validation, the two CP-SAT scheduler
// phases, caching, and persistence for a planning run.
type PlannerService struct {
	runs      plannerRunRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	tm        *domain.TimeModel
	params    solver.Params
}

// NewPlannerService constructs a PlannerService.
func NewPlannerService(runs plannerRunRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, params solver.Params) *PlannerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PlannerService{
		runs:      runs,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		tm:        domain.NewTimeModel(),
		params:    params,
	}
}

// Generate validates a department configuration, runs the lab phase
// followed by the lecture phase, and persists the outcome.
func (s *PlannerService) Generate(ctx context.Context, req dto.CreateRunRequest) (*dto.RunDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid planning run payload")
	}

	data, err := toDepartmentData(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInputInvalid.Code, appErrors.ErrInputInvalid.Status, err.Error())
	}
	if err := data.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInputInvalid.Code, appErrors.ErrInputInvalid.Status, err.Error())
	}

	inputJSON, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode department data")
	}
	hash := hashInput(inputJSON)

	if cached, err := s.runs.FindByInputHash(ctx, hash); err == nil && cached.Status == repository.RunStatusSucceeded {
		return s.toDetail(cached)
	}

	run := &repository.PlanningRun{
		ID:        uuid.NewString(),
		Status:    repository.RunStatusRunning,
		InputHash: hash,
		Input:     types.JSONText(inputJSON),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create planning run")
	}

	labs, labStatus, err := s.runLabPhase(ctx, data)
	if err != nil {
		s.fail(ctx, run.ID, labStatus.String(), "", appErrors.ErrInternal.Code, err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lab phase failed")
	}
	if !labStatus.Solved() {
		appErr := labFailureError(ctx, labStatus)
		s.fail(ctx, run.ID, labStatus.String(), "", appErr.Code, appErr.Message)
		return nil, appErr
	}

	lectures, lectStatus, err := s.runLecturePhase(ctx, data, labs)
	if err != nil {
		s.fail(ctx, run.ID, labStatus.String(), lectStatus.String(), appErrors.ErrInternal.Code, err.Error())
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lecture phase failed")
	}
	if !lectStatus.Solved() {
		appErr := lectureFailureError(ctx, lectStatus)
		s.fail(ctx, run.ID, labStatus.String(), lectStatus.String(), appErr.Code, appErr.Message)
		return nil, appErr
	}

	result := storedResult{}
	for _, l := range labs {
		result.Labs = append(result.Labs, labToView(s.tm, l))
	}
	for _, l := range lectures {
		result.Lectures = append(result.Lectures, lectureToView(l))
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode planning result")
	}

	if err := s.runs.UpdateSucceeded(ctx, run.ID, types.JSONText(resultJSON)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist planning result")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey(hash), result, 0)
	}

	completed, err := s.runs.FindByID(ctx, run.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload planning run")
	}
	return s.toDetail(completed)
}

func (s *PlannerService) runLabPhase(ctx context.Context, data *domain.DepartmentData) ([]domain.LabAssignment, solver.Status, error) {
	start := time.Now()
	sched := solver.NewLabScheduler(s.tm, data, s.params)
	labs, status, err := sched.Run(ctx)
	if s.metrics != nil {
		s.metrics.ObserveSolve("lab", status.String(), time.Since(start))
	}
	return labs, status, err
}

func (s *PlannerService) runLecturePhase(ctx context.Context, data *domain.DepartmentData, labs []domain.LabAssignment) ([]domain.LectureAssignment, solver.Status, error) {
	start := time.Now()
	sched := solver.NewLectureScheduler(s.tm, data, labs, s.params)
	lectures, status, err := sched.Run(ctx)
	if s.metrics != nil {
		s.metrics.ObserveSolve("lecture", status.String(), time.Since(start))
	}
	return lectures, status, err
}

func (s *PlannerService) fail(ctx context.Context, runID, labStatus, lectStatus, code, message string) {
	if err := s.runs.UpdateFailed(ctx, runID, labStatus, lectStatus, code, message); err != nil {
		s.logger.Warn("failed to persist planning run failure", zap.String("run_id", runID), zap.Error(err))
	}
}

// Get loads one completed or failed planning run by ID.
func (s *PlannerService) Get(ctx context.Context, id string) (*dto.RunDetail, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "planning run not found")
	}
	return s.toDetail(run)
}

// List returns a page of planning run summaries, newest first.
func (s *PlannerService) List(ctx context.Context, page, pageSize int) ([]dto.RunSummary, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	runs, err := s.runs.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list planning runs")
	}
	summaries := make([]dto.RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, toSummary(r))
	}
	return summaries, nil
}

// Delete removes a planning run.
func (s *PlannerService) Delete(ctx context.Context, id string) error {
	if err := s.runs.Delete(ctx, id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "planning run not found")
	}
	return nil
}

func (s *PlannerService) toDetail(run *repository.PlanningRun) (*dto.RunDetail, error) {
	detail := &dto.RunDetail{RunSummary: toSummary(*run)}
	if len(run.Result) == 0 {
		return detail, nil
	}
	var result storedResult
	if err := json.Unmarshal(run.Result, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode planning result")
	}
	detail.Labs = result.Labs
	detail.Lectures = result.Lectures
	return detail, nil
}

func toSummary(run repository.PlanningRun) dto.RunSummary {
	summary := dto.RunSummary{
		ID:         run.ID,
		Status:     run.Status,
		CreatedAt:  run.CreatedAt,
		LabStatus:  run.LabStatus,
		LectStatus: run.LectStatus,
		Error:      run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		summary.CompletedAt = run.CompletedAt
	}
	return summary
}

func labFailureError(ctx context.Context, status solver.Status) *appErrors.Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return appErrors.Clone(appErrors.ErrTimeout, "lab phase timed out")
	}
	return appErrors.Clone(appErrors.ErrInfeasibleLab, fmt.Sprintf("lab phase returned %s", status))
}

func lectureFailureError(ctx context.Context, status solver.Status) *appErrors.Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return appErrors.Clone(appErrors.ErrTimeout, "lecture phase timed out")
	}
	return appErrors.Clone(appErrors.ErrInfeasibleLecture, fmt.Sprintf("lecture phase returned %s", status))
}

func hashInput(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func cacheKey(hash string) string {
	return "planning_run:" + hash
}

func unmarshalResult(raw types.JSONText, dest *storedResult) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
