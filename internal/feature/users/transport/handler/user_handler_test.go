package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/domain/entity"
	"github.com/kopparam/aerospike-bucketing/internal/feature/users/usecase"
)

// mockUserUsecase is a mock implementation of the UserUsecase interface.
type mockUserUsecase struct {
	CreateUserFunc       func(ctx context.Context, user *entity.User) (*entity.User, error)
	FindByExternalIDFunc func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error)
	FindByIDFunc         func(ctx context.Context, id string) (*entity.User, error)
}

func (m *mockUserUsecase) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) FindByExternalID(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
	if m.FindByExternalIDFunc != nil {
		return m.FindByExternalIDFunc(ctx, typ, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserUsecase) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func setupRouter(uc UserUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(uc)
	r := gin.New()
	r.POST("/user", h.Create)
	r.GET("/user", h.GetByQuery)
	r.GET("/user/externalId/:externalIdType/:externalId", h.GetByExternalID)
	r.GET("/user/:id", h.GetByID)
	return r
}

func sampleUser() *entity.User {
	return &entity.User{
		ID:   "7f9c4c5e-0000-4000-8000-000000000001",
		Data: "alice",
		ExternalIDs: []entity.ExternalID{
			{Type: entity.TypeGoCustomerID, ID: "cust-1"},
		},
	}
}

func TestUserHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createFunc     func(ctx context.Context, user *entity.User) (*entity.User, error)
		expectedStatus int
	}{
		{
			name: "success: user created",
			body: `{"data":"alice","externalIds":[{"id":"cust-1","type":"GO_CUSTOMER_ID"}]}`,
			createFunc: func(ctx context.Context, user *entity.User) (*entity.User, error) {
				return sampleUser(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: missing external ids rejected at bind time",
			body:           `{"data":"alice"}`,
			createFunc:     nil, // usecase is not called
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: empty external id list rejected at bind time",
			body:           `{"data":"alice","externalIds":[]}`,
			createFunc:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: unrecognized type literal fails deserialization",
			body:           `{"data":"alice","externalIds":[{"id":"cust-1","type":"CUSTOMER_ID"}]}`,
			createFunc:     nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "failure: external id conflict maps to 400",
			body: `{"data":"bob","externalIds":[{"id":"cust-1","type":"GO_CUSTOMER_ID"}]}`,
			createFunc: func(ctx context.Context, user *entity.User) (*entity.User, error) {
				return nil, fmt.Errorf("%w: GO_CUSTOMER_ID:cust-1", domain.ErrExternalIDConflict)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "failure: self-conflict maps to 400",
			body: `{"data":"carol","externalIds":[{"id":"c1","type":"GO_CUSTOMER_ID"},{"id":"c1","type":"GO_CUSTOMER_ID"}]}`,
			createFunc: func(ctx context.Context, user *entity.User) (*entity.User, error) {
				return nil, fmt.Errorf("%w: GO_CUSTOMER_ID:c1", domain.ErrDuplicateExternalID)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "failure: store error maps to 500 with generic body",
			body: `{"data":"alice","externalIds":[{"id":"cust-1","type":"GO_CUSTOMER_ID"}]}`,
			createFunc: func(ctx context.Context, user *entity.User) (*entity.User, error) {
				return nil, errors.New("store unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mockUC := &mockUserUsecase{
				CreateUserFunc: func(ctx context.Context, user *entity.User) (*entity.User, error) {
					called = true
					require.NotNil(t, tt.createFunc, "usecase must not be called for bind failures")
					return tt.createFunc(ctx, user)
				},
			}
			router := setupRouter(mockUC)

			req, _ := http.NewRequest(http.MethodPost, "/user", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.createFunc == nil {
				assert.False(t, called, "usecase must not be called")
			}

			switch tt.expectedStatus {
			case http.StatusCreated:
				var resp struct {
					ID          string `json:"id"`
					Data        string `json:"data"`
					ExternalIDs []struct {
						ID   string `json:"id"`
						Type string `json:"type"`
					} `json:"externalIds"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, sampleUser().ID, resp.ID)
				assert.Equal(t, "alice", resp.Data)
				require.Len(t, resp.ExternalIDs, 1)
				assert.Equal(t, "GO_CUSTOMER_ID", resp.ExternalIDs[0].Type)
			case http.StatusInternalServerError:
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "server error", resp["error"], "internal details must not leak")
			}
		})
	}
}

func TestUserHandler_GetByQuery(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedType   entity.ExternalIDType
		expectedID     string
		expectedStatus int
	}{
		{
			name:           "goCustomerId lookup",
			query:          "?goCustomerId=cust-1",
			expectedType:   entity.TypeGoCustomerID,
			expectedID:     "cust-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "payAccountId lookup",
			query:          "?payAccountId=pay-1",
			expectedType:   entity.TypePayAccountID,
			expectedID:     "pay-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "goCustomerId wins when both are present",
			query:          "?goCustomerId=cust-1&payAccountId=pay-1",
			expectedType:   entity.TypeGoCustomerID,
			expectedID:     "cust-1",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing both parameters",
			query:          "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUserUsecase{
				FindByExternalIDFunc: func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
					assert.Equal(t, tt.expectedType, typ)
					assert.Equal(t, tt.expectedID, id)
					return sampleUser(), nil
				},
			}
			router := setupRouter(mockUC)

			req, _ := http.NewRequest(http.MethodGet, "/user"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_GetByExternalID(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		findFunc       func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error)
		expectedStatus int
	}{
		{
			name: "success",
			path: "/user/externalId/GO_CUSTOMER_ID/cust-1",
			findFunc: func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
				assert.Equal(t, entity.TypeGoCustomerID, typ)
				assert.Equal(t, "cust-1", id)
				return sampleUser(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown external id maps to 404",
			path: "/user/externalId/LENDING_PLATFORM_ID/unknown",
			findFunc: func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
				return nil, fmt.Errorf("external id LENDING_PLATFORM_ID:unknown: %w", usecase.ErrExternalIDNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "invalid type literal maps to 400",
			path: "/user/externalId/NOT_A_TYPE/x",
			findFunc: func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
				return nil, fmt.Errorf("%w: %q", domain.ErrUnknownExternalIDType, typ)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "index inconsistency maps to 500, not 404",
			path: "/user/externalId/GO_CUSTOMER_ID/orphan",
			findFunc: func(ctx context.Context, typ entity.ExternalIDType, id string) (*entity.User, error) {
				return nil, fmt.Errorf("%w: key GO_CUSTOMER_ID:orphan owner gone", usecase.ErrIndexInconsistent)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUserUsecase{FindByExternalIDFunc: tt.findFunc}
			router := setupRouter(mockUC)

			req, _ := http.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestUserHandler_GetByID(t *testing.T) {
	tests := []struct {
		name           string
		findFunc       func(ctx context.Context, id string) (*entity.User, error)
		expectedStatus int
	}{
		{
			name: "success",
			findFunc: func(ctx context.Context, id string) (*entity.User, error) {
				assert.Equal(t, "user-1", id)
				return sampleUser(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			findFunc: func(ctx context.Context, id string) (*entity.User, error) {
				return nil, usecase.ErrUserNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store error",
			findFunc: func(ctx context.Context, id string) (*entity.User, error) {
				return nil, errors.New("store unavailable")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUserUsecase{FindByIDFunc: tt.findFunc}
			router := setupRouter(mockUC)

			req, _ := http.NewRequest(http.MethodGet, "/user/user-1", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
