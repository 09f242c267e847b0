package sync

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

// fakeStore is an in-memory Store. Lists own their items just like the
// Postgres repository (deleting a list drops its items).
type fakeStore struct {
	lists      map[string]*domain.TodoList
	tombstones map[string]*domain.DeletedEntity
	seq        int64

	failSaveList bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:      make(map[string]*domain.TodoList),
		tombstones: make(map[string]*domain.DeletedEntity),
	}
}

func (s *fakeStore) nextID() string {
	return fmt.Sprintf("local-%d", atomic.AddInt64(&s.seq, 1))
}

func (s *fakeStore) addList(list domain.TodoList) *domain.TodoList {
	if list.ID == "" {
		list.ID = s.nextID()
	}
	for i := range list.Items {
		if list.Items[i].ID == "" {
			list.Items[i].ID = s.nextID()
		}
		list.Items[i].TodoListID = list.ID
	}
	s.lists[list.ID] = &list
	return &list
}

func (s *fakeStore) addTombstone(t domain.DeletedEntity) {
	if t.ID == "" {
		t.ID = s.nextID()
	}
	s.tombstones[t.ID] = &t
}

func (s *fakeStore) LoadAllListsWithItems(ctx context.Context) ([]domain.TodoList, error) {
	out := make([]domain.TodoList, 0, len(s.lists))
	// Stable order by id sequence keeps the tests deterministic.
	for i := int64(1); i <= s.seq; i++ {
		if l, ok := s.lists[fmt.Sprintf("local-%d", i)]; ok {
			copied := *l
			copied.Items = append([]domain.TodoItem(nil), l.Items...)
			out = append(out, copied)
		}
	}
	return out, nil
}

func (s *fakeStore) SaveList(ctx context.Context, list *domain.TodoList) error {
	if s.failSaveList {
		return fmt.Errorf("save list refused")
	}
	if list.ID == "" {
		list.ID = s.nextID()
	}
	stored, ok := s.lists[list.ID]
	if !ok {
		copied := *list
		s.lists[list.ID] = &copied
		return nil
	}
	items := stored.Items
	*stored = *list
	stored.Items = items
	return nil
}

func (s *fakeStore) SaveItem(ctx context.Context, item *domain.TodoItem) error {
	if item.ID == "" {
		item.ID = s.nextID()
	}
	list, ok := s.lists[item.TodoListID]
	if !ok {
		return fmt.Errorf("list %s not found", item.TodoListID)
	}
	for i := range list.Items {
		if list.Items[i].ID == item.ID {
			list.Items[i] = *item
			return nil
		}
	}
	list.Items = append(list.Items, *item)
	return nil
}

func (s *fakeStore) DeleteList(ctx context.Context, list *domain.TodoList) error {
	delete(s.lists, list.ID)
	return nil
}

func (s *fakeStore) DeleteItem(ctx context.Context, item *domain.TodoItem) error {
	list, ok := s.lists[item.TodoListID]
	if !ok {
		return nil
	}
	for i := range list.Items {
		if list.Items[i].ID == item.ID {
			list.Items = append(list.Items[:i], list.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *fakeStore) ListTombstones(ctx context.Context) ([]domain.DeletedEntity, error) {
	out := make([]domain.DeletedEntity, 0, len(s.tombstones))
	for i := int64(1); i <= s.seq; i++ {
		if t, ok := s.tombstones[fmt.Sprintf("local-%d", i)]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteTombstone(ctx context.Context, tombstone *domain.DeletedEntity) error {
	delete(s.tombstones, tombstone.ID)
	return nil
}

func (s *fakeStore) findByRemoteID(remoteID string) *domain.TodoList {
	for _, l := range s.lists {
		if l.RemoteID != nil && *l.RemoteID == remoteID {
			return l
		}
	}
	return nil
}

// fakeAPI is a scripted RemoteAPI that records every call.
type fakeAPI struct {
	lists   []remote.RemoteList
	listErr error

	createFn func(remote.RemoteListInput) (*remote.RemoteList, error)

	deleteErr     map[string]error
	deleteItemErr map[string]error

	updates     []string
	itemUpdates []string
	deletes     []string
	itemDeletes []string
}

func newFakeAPI(lists ...remote.RemoteList) *fakeAPI {
	return &fakeAPI{
		lists:         lists,
		deleteErr:     make(map[string]error),
		deleteItemErr: make(map[string]error),
	}
}

func (a *fakeAPI) ListAll(ctx context.Context) ([]remote.RemoteList, error) {
	if a.listErr != nil {
		return nil, a.listErr
	}
	return a.lists, nil
}

func (a *fakeAPI) Create(ctx context.Context, input remote.RemoteListInput) (*remote.RemoteList, error) {
	if a.createFn != nil {
		return a.createFn(input)
	}
	created := remote.RemoteList{ID: "r-" + input.Name, Name: input.Name, SourceID: input.SourceID}
	for i, item := range input.Items {
		created.Items = append(created.Items, remote.RemoteItem{
			ID:          fmt.Sprintf("r-%s-item-%d", input.Name, i),
			Description: item.Description,
			Completed:   item.Completed,
		})
	}
	return &created, nil
}

func (a *fakeAPI) Update(ctx context.Context, remoteListID string, patch remote.RemoteListPatch) (*remote.RemoteList, error) {
	a.updates = append(a.updates, remoteListID)
	return &remote.RemoteList{ID: remoteListID, Name: patch.Name}, nil
}

func (a *fakeAPI) Delete(ctx context.Context, remoteListID string) error {
	a.deletes = append(a.deletes, remoteListID)
	return a.deleteErr[remoteListID]
}

func (a *fakeAPI) UpdateItem(ctx context.Context, remoteListID, remoteItemID string, patch remote.RemoteItemPatch) (*remote.RemoteItem, error) {
	a.itemUpdates = append(a.itemUpdates, remoteListID+"/"+remoteItemID)
	return &remote.RemoteItem{ID: remoteItemID, Description: patch.Description, Completed: patch.Completed}, nil
}

func (a *fakeAPI) DeleteItem(ctx context.Context, remoteListID, remoteItemID string) error {
	key := remoteListID + "/" + remoteItemID
	a.itemDeletes = append(a.itemDeletes, key)
	return a.deleteItemErr[key]
}
