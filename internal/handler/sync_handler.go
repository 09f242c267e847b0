package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/progress"
	"github.com/locvowork/todo_sync_sample/internal/service/serviceutils"
)

// SyncRunner is the orchestrator surface the handler consumes.
type SyncRunner interface {
	SyncFromRemote(ctx context.Context) *domain.SyncResult
	SyncToRemote(ctx context.Context) *domain.SyncResult
	FullSync(ctx context.Context) *domain.SyncResult
}

type SyncHandler struct {
	svc SyncRunner
	hub *progress.Hub
}

func NewSyncHandler(svc SyncRunner, hub *progress.Hub) *SyncHandler {
	return &SyncHandler{svc: svc, hub: hub}
}

func (h *SyncHandler) Pull(c echo.Context) error {
	return h.runSync(c, "pull", h.svc.SyncFromRemote)
}

func (h *SyncHandler) Push(c echo.Context) error {
	return h.runSync(c, "push", h.svc.SyncToRemote)
}

func (h *SyncHandler) Full(c echo.Context) error {
	return h.runSync(c, "full", h.svc.FullSync)
}

// runSync always answers 200: sync operations report failures inside the
// result instead of failing the request.
func (h *SyncHandler) runSync(c echo.Context, operation string, fn func(context.Context) *domain.SyncResult) error {
	if h.hub != nil {
		h.hub.PublishSyncStarted(operation)
	}

	result := fn(c.Request().Context())

	if h.hub != nil {
		h.hub.PublishSyncResult(operation, result)
	}

	msg := "Sync completed"
	if !result.Successful() {
		msg = "Sync completed with errors"
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, msg, result)
}
