// File: internal/user/handler_test.go
package user

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"companyos_backend/internal/common"
	"companyos_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockUserService is a mock implementation of shared.Service.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	args := m.Called(ctx, id)
	if usr, ok := args.Get(0).(*shared.User); ok {
		return usr, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserService) GetOrCreateFromIdentity(ctx context.Context, identity *shared.Identity) (*shared.User, bool, error) {
	args := m.Called(ctx, identity)
	if usr, ok := args.Get(0).(*shared.User); ok {
		return usr, args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

// MockSessionRevoker is a mock implementation of shared.SessionRevoker.
type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) RevokeRefreshTokens(ctx context.Context, providerUID string) error {
	args := m.Called(ctx, providerUID)
	return args.Error(0)
}

// stubAuth injects an authenticated caller the way the auth middleware would.
func stubAuth(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(common.UserIDKey, userID)
		c.Set(common.UserRoleKey, role)
		c.Next()
	}
}

func setupUserHandlerTest(t *testing.T, callerID uuid.UUID, role string, revoker shared.SessionRevoker) (*MockUserService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mockSvc := new(MockUserService)
	h := NewHandler(mockSvc, revoker, zap.NewNop())

	router := gin.New()
	group := router.Group("/api/v1", stubAuth(callerID, role))
	h.RegisterRoutes(group, func(c *gin.Context) { c.Next() })
	return mockSvc, router
}

func performRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_RevokeSessions_NonAdminForbidden(t *testing.T) {
	revoker := new(MockSessionRevoker)
	mockSvc, router := setupUserHandlerTest(t, uuid.New(), common.RoleUser, revoker)

	w := performRequest(router, http.MethodPost, "/api/v1/users/"+uuid.New().String()+"/revoke-sessions")

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	revoker.AssertNotCalled(t, "RevokeRefreshTokens", mock.Anything, mock.Anything)
}

func TestHandler_RevokeSessions_AdminSuccess(t *testing.T) {
	revoker := new(MockSessionRevoker)
	mockSvc, router := setupUserHandlerTest(t, uuid.New(), common.RoleAdmin, revoker)

	targetID := uuid.New()
	mockSvc.On("GetUserByID", mock.Anything, targetID).
		Return(&shared.User{ID: targetID, Role: common.RoleUser, Provider: "firebase", ProviderUID: "firebase-uid-42"}, nil)
	revoker.On("RevokeRefreshTokens", mock.Anything, "firebase-uid-42").Return(nil)

	w := performRequest(router, http.MethodPost, "/api/v1/users/"+targetID.String()+"/revoke-sessions")

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
	revoker.AssertExpectations(t)
}

func TestHandler_RevokeSessions_InvalidID(t *testing.T) {
	revoker := new(MockSessionRevoker)
	_, router := setupUserHandlerTest(t, uuid.New(), common.RoleAdmin, revoker)

	w := performRequest(router, http.MethodPost, "/api/v1/users/not-a-uuid/revoke-sessions")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	revoker.AssertNotCalled(t, "RevokeRefreshTokens", mock.Anything, mock.Anything)
}

func TestHandler_RevokeSessions_UnknownUser(t *testing.T) {
	revoker := new(MockSessionRevoker)
	mockSvc, router := setupUserHandlerTest(t, uuid.New(), common.RoleAdmin, revoker)

	targetID := uuid.New()
	mockSvc.On("GetUserByID", mock.Anything, targetID).Return(nil, common.ErrNotFound)

	w := performRequest(router, http.MethodPost, "/api/v1/users/"+targetID.String()+"/revoke-sessions")

	assert.Equal(t, http.StatusNotFound, w.Code)
	revoker.AssertNotCalled(t, "RevokeRefreshTokens", mock.Anything, mock.Anything)
}

func TestHandler_RevokeSessions_NoRevokerConfigured(t *testing.T) {
	mockSvc, router := setupUserHandlerTest(t, uuid.New(), common.RoleAdmin, nil)

	w := performRequest(router, http.MethodPost, "/api/v1/users/"+uuid.New().String()+"/revoke-sessions")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	mockSvc.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
}

func TestHandler_RevokeSessions_ProviderFailure(t *testing.T) {
	revoker := new(MockSessionRevoker)
	mockSvc, router := setupUserHandlerTest(t, uuid.New(), common.RoleAdmin, revoker)

	targetID := uuid.New()
	mockSvc.On("GetUserByID", mock.Anything, targetID).
		Return(&shared.User{ID: targetID, Role: common.RoleUser, Provider: "firebase", ProviderUID: "firebase-uid-7"}, nil)
	revoker.On("RevokeRefreshTokens", mock.Anything, "firebase-uid-7").Return(errors.New("firebase unreachable"))

	w := performRequest(router, http.MethodPost, "/api/v1/users/"+targetID.String()+"/revoke-sessions")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockSvc.AssertExpectations(t)
	revoker.AssertExpectations(t)
}
