package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Start(syncType models.SyncType, forceRestart bool) (string, error) {
	args := m.Called(syncType, forceRestart)
	return args.String(0), args.Error(1)
}

func (m *MockSyncService) Cancel() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSyncService) Status(ctx context.Context) (*models.SyncStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncStatus), args.Error(1)
}

type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Run(ctx context.Context, trigger models.VerificationTrigger) (*models.DataIntegrityReport, error) {
	args := m.Called(ctx, trigger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DataIntegrityReport), args.Error(1)
}

func (m *MockVerificationService) Latest(ctx context.Context) (*models.DataIntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DataIntegrityReport), args.Error(1)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *MockSyncService, *MockVerificationService) {
	gin.SetMode(gin.TestMode)

	mockSync := new(MockSyncService)
	mockVerify := new(MockVerificationService)
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil)) // Discard logs during tests

	handler := NewHandler(mockSync, mockVerify, logger)

	router := gin.New()
	router.POST("/sync", handler.StartSync)
	router.POST("/sync/cancel", handler.CancelSync)
	router.GET("/sync/status", handler.GetSyncStatus)
	router.POST("/verification", handler.RunVerification)
	router.GET("/verification/latest", handler.GetLatestVerification)

	return router, mockSync, mockVerify
}

func TestStartSync(t *testing.T) {
	t.Run("accepts a full sync", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)
		mockSync.On("Start", models.SyncTypeFull, false).Return("run-1", nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync", strings.NewReader(`{"sync_type":"FULL"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var resp SyncResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "run-1", resp.RunID)
		mockSync.AssertExpectations(t)
	})

	t.Run("defaults to FULL when sync_type is omitted", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)
		mockSync.On("Start", models.SyncTypeFull, true).Return("run-2", nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync", strings.NewReader(`{"force_restart":true}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		mockSync.AssertExpectations(t)
	})

	t.Run("rejects unknown sync types", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync", strings.NewReader(`{"sync_type":"PARTIAL"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSync.AssertNotCalled(t, "Start")
	})

	t.Run("returns 409 when a sync is already running", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)
		mockSync.On("Start", models.SyncTypeFull, false).Return("", apperrors.NewSyncInProgressError())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync", strings.NewReader(`{"sync_type":"FULL"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		mockSync.AssertExpectations(t)
	})
}

func TestCancelSync(t *testing.T) {
	t.Run("accepts cancellation of a running sync", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)
		mockSync.On("Cancel").Return(true)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync/cancel", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("returns 409 when nothing is running", func(t *testing.T) {
		router, mockSync, _ := setupTestRouter(t)
		mockSync.On("Cancel").Return(false)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/sync/cancel", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetSyncStatus(t *testing.T) {
	router, mockSync, _ := setupTestRouter(t)
	status := &models.SyncStatus{
		State:            models.SyncStateRunning,
		IsRunning:        true,
		Progress:         40,
		CurrentOperation: "Importing players",
	}
	mockSync.On("Status", mock.Anything).Return(status, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/sync/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.SyncStatus
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.SyncStateRunning, got.State)
	assert.True(t, got.IsRunning)
}

func TestRunVerification(t *testing.T) {
	router, _, mockVerify := setupTestRouter(t)
	report := &models.DataIntegrityReport{
		Timestamp:       time.Now(),
		Trigger:         models.TriggerManual,
		OverallAccuracy: 97.5,
		Status:          models.ReportStatusOK,
	}
	mockVerify.On("Run", mock.Anything, models.TriggerManual).Return(report, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/verification", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got models.DataIntegrityReport
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 97.5, got.OverallAccuracy)
	mockVerify.AssertExpectations(t)
}

func TestGetLatestVerification(t *testing.T) {
	t.Run("returns the stored report", func(t *testing.T) {
		router, _, mockVerify := setupTestRouter(t)
		report := &models.DataIntegrityReport{OverallAccuracy: 92.0, Status: models.ReportStatusWarning}
		mockVerify.On("Latest", mock.Anything).Return(report, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/verification/latest", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("returns 404 before any verification has run", func(t *testing.T) {
		router, _, mockVerify := setupTestRouter(t)
		mockVerify.On("Latest", mock.Anything).Return(nil, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/verification/latest", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
