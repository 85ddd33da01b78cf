package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deptsched/timetable-api/internal/solver"
)

func TestHashInputDeterministic(t *testing.T) {
	a := hashInput([]byte(`{"a":1}`))
	b := hashInput([]byte(`{"a":1}`))
	c := hashInput([]byte(`{"a":2}`))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCacheKeyPrefixed(t *testing.T) {
	assert.Equal(t, "planning_run:deadbeef", cacheKey("deadbeef"))
}

func TestLabFailureErrorTimeoutVsInfeasible(t *testing.T) {
	deadlineCtx, dcancel := context.WithTimeout(context.Background(), 0)
	defer dcancel()
	<-deadlineCtx.Done()

	err := labFailureError(deadlineCtx, solver.StatusInfeasible)
	assert.True(t, errors.Is(deadlineCtx.Err(), context.DeadlineExceeded))
	assert.Equal(t, "SOLVE_TIMEOUT", err.Code)

	plainErr := labFailureError(context.Background(), solver.StatusInfeasible)
	assert.Equal(t, "INFEASIBLE_LAB", plainErr.Code)
}

func TestLectureFailureErrorInfeasible(t *testing.T) {
	err := lectureFailureError(context.Background(), solver.StatusInfeasible)
	assert.Equal(t, "INFEASIBLE_LECTURE", err.Code)
}

func TestUnmarshalResultEmptyIsNoop(t *testing.T) {
	var dest storedResult
	assert.NoError(t, unmarshalResult(nil, &dest))
	assert.Nil(t, dest.Labs)
}
