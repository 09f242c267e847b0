package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/todo_sync_sample/internal/jobs"
	"github.com/locvowork/todo_sync_sample/internal/service/serviceutils"
)

type JobHandler struct {
	runner *jobs.Runner
}

func NewJobHandler(runner *jobs.Runner) *JobHandler {
	return &JobHandler{runner: runner}
}

// CompleteAll starts a background job that marks every item of the list
// completed and answers 202 with the job snapshot.
func (h *JobHandler) CompleteAll(c echo.Context) error {
	job, err := h.runner.CompleteAll(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to start completion job", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusAccepted, "Job accepted", job)
}

func (h *JobHandler) GetJob(c echo.Context) error {
	job, err := h.runner.Status(c.Param("id"))
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to get job", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", job)
}
