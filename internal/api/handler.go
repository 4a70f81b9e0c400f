package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/mafia-stats/gomafia-sync/internal/errors"
	"github.com/mafia-stats/gomafia-sync/internal/models"
)

// SyncService starts and inspects import runs.
type SyncService interface {
	Start(syncType models.SyncType, forceRestart bool) (string, error)
	Cancel() bool
	Status(ctx context.Context) (*models.SyncStatus, error)
}

// VerificationService runs data-integrity checks and serves their reports.
type VerificationService interface {
	Run(ctx context.Context, trigger models.VerificationTrigger) (*models.DataIntegrityReport, error)
	Latest(ctx context.Context) (*models.DataIntegrityReport, error)
}

type Handler struct {
	syncService   SyncService
	verifyService VerificationService
	logger        *logrus.Logger
}

func NewHandler(syncService SyncService, verifyService VerificationService, logger *logrus.Logger) *Handler {
	return &Handler{
		syncService:   syncService,
		verifyService: verifyService,
		logger:        logger,
	}
}

// SyncRequest is the body of POST /sync.
type SyncRequest struct {
	SyncType     models.SyncType `json:"sync_type" example:"FULL"`
	ForceRestart bool            `json:"force_restart" example:"false"`
}

// SyncResponse is returned when an import run is accepted.
type SyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StartSync godoc
// @Summary Start an import run
// @Description Starts a full or incremental import from gomafia.pro in the background
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Sync parameters"
// @Success 202 {object} SyncResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /sync [post]
func (h *Handler) StartSync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.SyncType == "" {
		req.SyncType = models.SyncTypeFull
	}
	if req.SyncType != models.SyncTypeFull && req.SyncType != models.SyncTypeIncremental {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "sync_type must be FULL or INCREMENTAL"})
		return
	}

	runID, err := h.syncService.Start(req.SyncType, req.ForceRestart)
	if err != nil {
		if apperrors.IsConflict(err) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to start sync")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to start sync"})
		return
	}

	c.JSON(http.StatusAccepted, SyncResponse{
		Success: true,
		Message: "sync started",
		RunID:   runID,
	})
}

// CancelSync godoc
// @Summary Cancel the running import
// @Description Requests cooperative cancellation of the active import run
// @Tags sync
// @Produce json
// @Success 202 {object} SyncResponse
// @Failure 409 {object} ErrorResponse
// @Router /sync/cancel [post]
func (h *Handler) CancelSync(c *gin.Context) {
	if !h.syncService.Cancel() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no sync is currently running"})
		return
	}
	c.JSON(http.StatusAccepted, SyncResponse{
		Success: true,
		Message: "cancellation requested",
	})
}

// GetSyncStatus godoc
// @Summary Get import status
// @Description Returns the state of the current or most recent import run
// @Tags sync
// @Produce json
// @Success 200 {object} models.SyncStatus
// @Failure 500 {object} ErrorResponse
// @Router /sync/status [get]
func (h *Handler) GetSyncStatus(c *gin.Context) {
	status, err := h.syncService.Status(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load sync status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load sync status"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// RunVerification godoc
// @Summary Run data-integrity verification
// @Description Samples stored records, re-fetches them from gomafia.pro and reports accuracy
// @Tags verification
// @Produce json
// @Success 200 {object} models.DataIntegrityReport
// @Failure 500 {object} ErrorResponse
// @Router /verification [post]
func (h *Handler) RunVerification(c *gin.Context) {
	report, err := h.verifyService.Run(c.Request.Context(), models.TriggerManual)
	if err != nil {
		h.logger.WithError(err).Error("Verification run failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "verification failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLatestVerification godoc
// @Summary Get the latest verification report
// @Tags verification
// @Produce json
// @Success 200 {object} models.DataIntegrityReport
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /verification/latest [get]
func (h *Handler) GetLatestVerification(c *gin.Context) {
	report, err := h.verifyService.Latest(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load verification report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load verification report"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no verification report yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}
