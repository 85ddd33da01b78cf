package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/deptsched/timetable-api/pkg/errors"
)

type mockCacheRepo struct {
	store  map[string]string
	getErr error
	setErr error
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{store: make(map[string]string)}
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	val, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if p, ok := dest.(*string); ok {
		*p = val
	}
	return nil
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.store[key], _ = value.(string)
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	delete(m.store, pattern)
	return nil
}

func TestCacheServiceDisabledSkipsRepo(t *testing.T) {
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	hit, err := svc.Get(context.Background(), "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, svc.Enabled())
}

func TestCacheServiceGetMissReturnsFalseNoError(t *testing.T) {
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	var dest string
	hit, err := svc.Get(context.Background(), "missing", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSetThenGetHits(t *testing.T) {
	repo := newMockCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)

	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))

	var dest string
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", dest)
}

func TestCacheServiceInvalidateDisabledNoop(t *testing.T) {
	svc := NewCacheService(newMockCacheRepo(), nil, time.Minute, nil, false)
	assert.NoError(t, svc.Invalidate(context.Background(), "pattern:*"))
}
