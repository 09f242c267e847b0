package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/locvowork/todo_sync_sample/internal/domain"
)

// ErrValidation wraps input problems so handlers can map them to 400.
type ErrValidation struct {
	Field  string
	Reason string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type TodoService interface {
	ListLists(ctx context.Context) ([]domain.TodoList, error)
	CreateList(ctx context.Context, req *domain.TodoList) error
	GetList(ctx context.Context, id string) (*domain.TodoList, error)
	UpdateList(ctx context.Context, id string, name string) (*domain.TodoList, error)
	DeleteList(ctx context.Context, id string) error

	CreateItem(ctx context.Context, listID string, req *domain.TodoItem) error
	GetItem(ctx context.Context, listID, itemID string) (*domain.TodoItem, error)
	UpdateItem(ctx context.Context, listID, itemID string, description *string, completed *bool) (*domain.TodoItem, error)
	DeleteItem(ctx context.Context, listID, itemID string) error
}

type todoService struct {
	repo domain.TodoRepository
}

func NewTodoService(repo domain.TodoRepository) TodoService {
	return &todoService{repo: repo}
}

func (s *todoService) ListLists(ctx context.Context) ([]domain.TodoList, error) {
	return s.repo.LoadAllListsWithItems(ctx)
}

func (s *todoService) CreateList(ctx context.Context, req *domain.TodoList) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ErrValidation{Field: "name", Reason: "must not be empty"}
	}
	return s.repo.CreateList(ctx, req)
}

func (s *todoService) GetList(ctx context.Context, id string) (*domain.TodoList, error) {
	return s.repo.GetListWithItems(ctx, id)
}

func (s *todoService) UpdateList(ctx context.Context, id string, name string) (*domain.TodoList, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ErrValidation{Field: "name", Reason: "must not be empty"}
	}
	list, err := s.repo.GetListWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	list.Name = name
	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *todoService) DeleteList(ctx context.Context, id string) error {
	return s.repo.DeleteListByID(ctx, id)
}

func (s *todoService) CreateItem(ctx context.Context, listID string, req *domain.TodoItem) error {
	if strings.TrimSpace(req.Description) == "" {
		return &ErrValidation{Field: "description", Reason: "must not be empty"}
	}
	// Reject unknown lists up front so the item FK error never leaks out.
	if _, err := s.repo.GetListWithItems(ctx, listID); err != nil {
		return err
	}
	req.TodoListID = listID
	return s.repo.CreateItem(ctx, req)
}

func (s *todoService) GetItem(ctx context.Context, listID, itemID string) (*domain.TodoItem, error) {
	return s.repo.GetItem(ctx, listID, itemID)
}

func (s *todoService) UpdateItem(ctx context.Context, listID, itemID string, description *string, completed *bool) (*domain.TodoItem, error) {
	if description != nil && strings.TrimSpace(*description) == "" {
		return nil, &ErrValidation{Field: "description", Reason: "must not be empty"}
	}
	item, err := s.repo.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}
	if description != nil {
		item.Description = *description
	}
	if completed != nil {
		item.Completed = *completed
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *todoService) DeleteItem(ctx context.Context, listID, itemID string) error {
	return s.repo.DeleteItemByID(ctx, listID, itemID)
}
