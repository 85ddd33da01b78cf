package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deptsched/timetable-api/internal/dto"
	"github.com/deptsched/timetable-api/internal/repository"
)

type mockOperatorRepo struct {
	op  *repository.Operator
	err error
}

func (m *mockOperatorRepo) FindByUsername(ctx context.Context, username string) (*repository.Operator, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.op, nil
}

func newAuthTestService(t *testing.T, repo *mockOperatorRepo) *AuthService {
	t.Helper()
	return NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "timetable-api"})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo := &mockOperatorRepo{op: &repository.Operator{Username: "planner", PasswordHash: string(hash)}}
	svc := newAuthTestService(t, repo)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "planner", Password: "correct-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresIn, int64(0))
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	require.NoError(t, err)

	repo := &mockOperatorRepo{op: &repository.Operator{Username: "planner", PasswordHash: string(hash)}}
	svc := newAuthTestService(t, repo)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "planner", Password: "wrong"})
	require.Error(t, err)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo := &mockOperatorRepo{op: &repository.Operator{Username: "planner", PasswordHash: string(hash)}}
	svc := newAuthTestService(t, repo)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "planner", Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "planner", claims.Username)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthTestService(t, &mockOperatorRepo{})
	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
}
