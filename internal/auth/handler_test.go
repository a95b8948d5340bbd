package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleLoginSuccess(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.add(Principal{
		EmployeeNo:   "E-100",
		Email:        "ana@dealer.example",
		PasswordHash: hashOf(t, "correct-horse"),
		RoleID:       4,
		IsActive:     true,
	})
	handler := NewHandler(testLogger(), newTestService(repo, nil, nil), repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier": "E-100", "password": "correct-horse"}`))
	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)
	require.Contains(t, rec.Body.String(), `"role_id":4`)
}

func TestHandleLoginWrongPassword(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.add(Principal{
		EmployeeNo:   "E-100",
		Email:        "ana@dealer.example",
		PasswordHash: hashOf(t, "correct-horse"),
		IsActive:     true,
	})
	handler := NewHandler(testLogger(), newTestService(repo, nil, nil), repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier": "E-100", "password": "wrong-secret"}`))
	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotContains(t, rec.Body.String(), "token\":")
}

func TestHandleLoginUnknownIdentifierIsIndistinguishable(t *testing.T) {
	handler := NewHandler(testLogger(), newTestService(newMemoryAuthRepo(), nil, nil), newMemoryAuthRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier": "ghost@dealer.example", "password": "whatever-pass"}`))
	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestHandleLoginLockedAccount(t *testing.T) {
	repo := newMemoryAuthRepo()
	repo.add(Principal{
		EmployeeNo:   "E-100",
		Email:        "ana@dealer.example",
		PasswordHash: hashOf(t, "correct-horse"),
		IsActive:     true,
		IsLocked:     true,
	})
	handler := NewHandler(testLogger(), newTestService(repo, nil, nil), repo)

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"identifier": "E-100", "password": "correct-horse"}`))
	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusLocked, rec.Code)
}

func TestHandleLoginMalformedBody(t *testing.T) {
	handler := NewHandler(testLogger(), newTestService(newMemoryAuthRepo(), nil, nil), newMemoryAuthRepo())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{broken`))
	rec := httptest.NewRecorder()
	handler.handleLogin(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
