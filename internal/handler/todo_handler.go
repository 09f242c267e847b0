package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/internal/service"
	"github.com/locvowork/todo_sync_sample/internal/service/serviceutils"
)

type TodoHandler struct {
	svc service.TodoService
}

func NewTodoHandler(svc service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

type createListRequest struct {
	Name string `json:"name"`
}

type updateListRequest struct {
	Name string `json:"name"`
}

type createItemRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type updateItemRequest struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (h *TodoHandler) ListTodoLists(c echo.Context) error {
	lists, err := h.svc.ListLists(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to list todo lists", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", lists)
}

func (h *TodoHandler) CreateTodoList(c echo.Context) error {
	var req createListRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	list := &domain.TodoList{Name: req.Name}
	if err := h.svc.CreateList(c.Request().Context(), list); err != nil {
		return serviceutils.ResponseForError(c, "Failed to create todo list", err)
	}
	logger.InfoLog(c.Request().Context(), "created todo list %s", list.ID)
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Created", list)
}

func (h *TodoHandler) GetTodoList(c echo.Context) error {
	list, err := h.svc.GetList(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to get todo list", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", list)
}

func (h *TodoHandler) UpdateTodoList(c echo.Context) error {
	var req updateListRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	list, err := h.svc.UpdateList(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to update todo list", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Updated", list)
}

func (h *TodoHandler) DeleteTodoList(c echo.Context) error {
	if err := h.svc.DeleteList(c.Request().Context(), c.Param("id")); err != nil {
		return serviceutils.ResponseForError(c, "Failed to delete todo list", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Deleted", nil)
}

func (h *TodoHandler) CreateTodoItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	item := &domain.TodoItem{Description: req.Description, Completed: req.Completed}
	if err := h.svc.CreateItem(c.Request().Context(), c.Param("id"), item); err != nil {
		return serviceutils.ResponseForError(c, "Failed to create todo item", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusCreated, "Created", item)
}

func (h *TodoHandler) GetTodoItem(c echo.Context) error {
	item, err := h.svc.GetItem(c.Request().Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to get todo item", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "OK", item)
}

func (h *TodoHandler) UpdateTodoItem(c echo.Context) error {
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid request body", err)
	}

	item, err := h.svc.UpdateItem(c.Request().Context(), c.Param("id"), c.Param("itemId"), req.Description, req.Completed)
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to update todo item", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Updated", item)
}

func (h *TodoHandler) DeleteTodoItem(c echo.Context) error {
	if err := h.svc.DeleteItem(c.Request().Context(), c.Param("id"), c.Param("itemId")); err != nil {
		return serviceutils.ResponseForError(c, "Failed to delete todo item", err)
	}
	return serviceutils.ResponseSuccess(c, http.StatusOK, "Deleted", nil)
}
