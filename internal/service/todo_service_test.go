package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/todo_sync_sample/internal/domain"
)

type fakeRepo struct {
	domain.TodoRepository

	lists map[string]*domain.TodoList

	created     []*domain.TodoList
	updated     []*domain.TodoList
	itemCreated []*domain.TodoItem
	itemUpdated []*domain.TodoItem
	deletedIDs  []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{lists: make(map[string]*domain.TodoList)}
}

func (r *fakeRepo) CreateList(ctx context.Context, list *domain.TodoList) error {
	r.created = append(r.created, list)
	if list.ID == "" {
		list.ID = "l1"
	}
	r.lists[list.ID] = list
	return nil
}

func (r *fakeRepo) UpdateList(ctx context.Context, list *domain.TodoList) error {
	r.updated = append(r.updated, list)
	return nil
}

func (r *fakeRepo) GetListWithItems(ctx context.Context, id string) (*domain.TodoList, error) {
	list, ok := r.lists[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return list, nil
}

func (r *fakeRepo) DeleteListByID(ctx context.Context, id string) error {
	if _, ok := r.lists[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.lists, id)
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *fakeRepo) CreateItem(ctx context.Context, item *domain.TodoItem) error {
	r.itemCreated = append(r.itemCreated, item)
	return nil
}

func (r *fakeRepo) UpdateItem(ctx context.Context, item *domain.TodoItem) error {
	r.itemUpdated = append(r.itemUpdated, item)
	return nil
}

func (r *fakeRepo) GetItem(ctx context.Context, listID, itemID string) (*domain.TodoItem, error) {
	list, ok := r.lists[listID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for i := range list.Items {
		if list.Items[i].ID == itemID {
			return &list.Items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestCreateListValidation(t *testing.T) {
	svc := NewTodoService(newFakeRepo())

	err := svc.CreateList(context.Background(), &domain.TodoList{Name: "   "})

	var v *ErrValidation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "name", v.Field)
}

func TestUpdateListRenames(t *testing.T) {
	repo := newFakeRepo()
	repo.lists["l1"] = &domain.TodoList{ID: "l1", Name: "old"}
	svc := NewTodoService(repo)

	list, err := svc.UpdateList(context.Background(), "l1", "new")

	require.NoError(t, err)
	assert.Equal(t, "new", list.Name)
	require.Len(t, repo.updated, 1)
}

func TestUpdateListUnknownID(t *testing.T) {
	svc := NewTodoService(newFakeRepo())

	_, err := svc.UpdateList(context.Background(), "missing", "new")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateItemChecksListExists(t *testing.T) {
	repo := newFakeRepo()
	svc := NewTodoService(repo)

	err := svc.CreateItem(context.Background(), "missing", &domain.TodoItem{Description: "x"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.itemCreated)
}

func TestCreateItemAssignsListID(t *testing.T) {
	repo := newFakeRepo()
	repo.lists["l1"] = &domain.TodoList{ID: "l1", Name: "list"}
	svc := NewTodoService(repo)

	item := &domain.TodoItem{Description: "buy milk"}
	require.NoError(t, svc.CreateItem(context.Background(), "l1", item))

	assert.Equal(t, "l1", item.TodoListID)
	require.Len(t, repo.itemCreated, 1)
}

func TestUpdateItemPartialPatch(t *testing.T) {
	repo := newFakeRepo()
	repo.lists["l1"] = &domain.TodoList{
		ID: "l1", Name: "list",
		Items: []domain.TodoItem{{ID: "i1", TodoListID: "l1", Description: "orig", Completed: false}},
	}
	svc := NewTodoService(repo)

	completed := true
	item, err := svc.UpdateItem(context.Background(), "l1", "i1", nil, &completed)

	require.NoError(t, err)
	assert.Equal(t, "orig", item.Description, "nil description leaves the field alone")
	assert.True(t, item.Completed)
	require.Len(t, repo.itemUpdated, 1)
}

func TestUpdateItemRejectsBlankDescription(t *testing.T) {
	repo := newFakeRepo()
	repo.lists["l1"] = &domain.TodoList{
		ID: "l1", Name: "list",
		Items: []domain.TodoItem{{ID: "i1", TodoListID: "l1", Description: "orig"}},
	}
	svc := NewTodoService(repo)

	blank := " "
	_, err := svc.UpdateItem(context.Background(), "l1", "i1", &blank, nil)

	var v *ErrValidation
	assert.ErrorAs(t, err, &v)
}
