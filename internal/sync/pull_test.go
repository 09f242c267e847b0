package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

var (
	t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
	t2 = t0.Add(2 * time.Hour)
)

func newTestEngine(store *fakeStore, api *fakeAPI) *Engine {
	e := NewEngine(store, api)
	e.now = func() time.Time { return t2 }
	return e
}

func pullOnce(t *testing.T, store *fakeStore, api *fakeAPI) *domain.SyncResult {
	t.Helper()
	result := &domain.SyncResult{}
	newTestEngine(store, api).pull(context.Background(), result)
	return result
}

func TestPullCreatesListAndItems(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI(remote.RemoteList{
		ID: "r1", SourceID: "s1", Name: "groceries", CreatedAt: t0, UpdatedAt: t1,
		Items: []remote.RemoteItem{
			{ID: "i1", Description: "milk", CreatedAt: t0, UpdatedAt: t1},
		},
	})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ListsCreated)
	assert.Equal(t, 1, result.ItemsCreated)

	list := store.findByRemoteID("r1")
	require.NotNil(t, list)
	assert.Equal(t, "groceries", list.Name)
	assert.Equal(t, "s1", *list.SourceID)
	assert.Equal(t, t1, list.UpdatedAt)
	require.NotNil(t, list.LastSyncedAt)

	require.Len(t, list.Items, 1)
	assert.Equal(t, "i1", *list.Items[0].RemoteID)
	assert.Equal(t, "milk", list.Items[0].Description)
}

func TestPullMatchesBySourceIDWithoutDuplicating(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{
		Name:      "old name",
		SourceID:  strPtr("s1"),
		CreatedAt: t0,
		UpdatedAt: t0,
	})
	api := newFakeAPI(remote.RemoteList{
		ID: "r1", SourceID: "s1", Name: "completely different name", UpdatedAt: t1,
	})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.ListsCreated, "matched by source id, must not duplicate")
	assert.Equal(t, 1, result.ListsUpdated)
	assert.Len(t, store.lists, 1)

	list := store.findByRemoteID("r1")
	require.NotNil(t, list)
	assert.Equal(t, "completely different name", list.Name)
}

func TestPullMatchesByNameCaseInsensitive(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{Name: "Groceries", CreatedAt: t0, UpdatedAt: t0})
	api := newFakeAPI(remote.RemoteList{ID: "r1", Name: "gRoCeRiEs", UpdatedAt: t1})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.ListsCreated)
	assert.Len(t, store.lists, 1)
	assert.NotNil(t, store.findByRemoteID("r1"))
}

func TestPullLocalNewerKeepsContentButConvergesMetadata(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{
		Name:      "local truth",
		SourceID:  strPtr("s1"),
		CreatedAt: t0,
		UpdatedAt: t2, // newer than remote
	})
	api := newFakeAPI(remote.RemoteList{ID: "r1", SourceID: "s1", Name: "stale remote", UpdatedAt: t1})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ListsSkipped)
	assert.Equal(t, 0, result.ListsUpdated)

	list := store.findByRemoteID("r1")
	require.NotNil(t, list, "remote id must be populated even on skip")
	assert.Equal(t, "local truth", list.Name, "content must not change when local is newer")
	assert.Equal(t, t2, list.UpdatedAt)
	require.NotNil(t, list.LastSyncedAt)
	assert.Equal(t, t2, *list.LastSyncedAt)
}

func TestPullBackfillsSourceID(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{Name: "groceries", CreatedAt: t0, UpdatedAt: t2})
	api := newFakeAPI(remote.RemoteList{ID: "r1", SourceID: "s1", Name: "groceries", UpdatedAt: t1})

	pullOnce(t, store, api)

	list := store.findByRemoteID("r1")
	require.NotNil(t, list)
	require.NotNil(t, list.SourceID)
	assert.Equal(t, "s1", *list.SourceID)
}

func TestPullIsIdempotent(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI(remote.RemoteList{
		ID: "r1", Name: "groceries", CreatedAt: t0, UpdatedAt: t1,
		Items: []remote.RemoteItem{
			{ID: "i1", Description: "milk", UpdatedAt: t1},
			{ID: "i2", Description: "eggs", UpdatedAt: t1},
		},
	})

	first := pullOnce(t, store, api)
	require.Empty(t, first.Errors)
	assert.Equal(t, 1, first.ListsCreated)
	assert.Equal(t, 2, first.ItemsCreated)

	second := pullOnce(t, store, api)
	require.Empty(t, second.Errors)
	assert.Zero(t, second.ListsCreated)
	assert.Zero(t, second.ListsUpdated)
	assert.Zero(t, second.ListsDeleted)
	assert.Zero(t, second.ItemsCreated)
	assert.Zero(t, second.ItemsUpdated)
	assert.Zero(t, second.ItemsDeleted)
	assert.Equal(t, 1, second.ListsSkipped)
	assert.Equal(t, 2, second.ItemsSkipped)
}

func TestPullDeletesRemoteVanishedList(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{
		Name:     "gone remotely",
		RemoteID: strPtr("r-gone"),
		Items: []domain.TodoItem{
			{Description: "a", RemoteID: strPtr("i1")},
			{Description: "b", RemoteID: strPtr("i2")},
		},
		CreatedAt: t0, UpdatedAt: t0,
	})
	api := newFakeAPI() // remote has nothing

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ListsDeleted)
	assert.Equal(t, 2, result.ItemsDeleted)
	assert.Empty(t, store.lists)
}

func TestPullDeletesRemoteVanishedItem(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{
		Name:     "groceries",
		RemoteID: strPtr("r1"),
		Items: []domain.TodoItem{
			{Description: "keep", RemoteID: strPtr("i1"), UpdatedAt: t1},
			{Description: "drop", RemoteID: strPtr("i2"), UpdatedAt: t1},
		},
		CreatedAt: t0, UpdatedAt: t2,
	})
	api := newFakeAPI(remote.RemoteList{
		ID: "r1", Name: "groceries", UpdatedAt: t1,
		Items: []remote.RemoteItem{{ID: "i1", Description: "keep", UpdatedAt: t1}},
	})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ItemsDeleted)

	list := store.findByRemoteID("r1")
	require.NotNil(t, list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "keep", list.Items[0].Description)
}

func TestPullNeverDeletesLocalOnlyEntities(t *testing.T) {
	store := newFakeStore()
	store.addList(domain.TodoList{
		Name: "never synced",
		Items: []domain.TodoItem{
			{Description: "local only item"},
		},
		CreatedAt: t0, UpdatedAt: t0,
	})
	store.addList(domain.TodoList{
		Name:      "synced list with local item",
		RemoteID:  strPtr("r1"),
		Items:     []domain.TodoItem{{Description: "unsynced item"}},
		CreatedAt: t0, UpdatedAt: t2,
	})
	api := newFakeAPI(remote.RemoteList{ID: "r1", Name: "synced list with local item", UpdatedAt: t1})

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Zero(t, result.ListsDeleted)
	assert.Zero(t, result.ItemsDeleted)
	assert.Len(t, store.lists, 2)

	synced := store.findByRemoteID("r1")
	require.NotNil(t, synced)
	require.Len(t, synced.Items, 1)
	assert.Nil(t, synced.Items[0].RemoteID)
}

func TestPullRecordsFatalErrorWhenRemoteFetchFails(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI()
	api.listErr = assert.AnError

	result := pullOnce(t, store, api)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "failed to fetch remote lists")
}

func TestPullIsolatesPerListFailures(t *testing.T) {
	store := newFakeStore()
	store.failSaveList = true
	api := newFakeAPI(
		remote.RemoteList{ID: "r1", Name: "first", UpdatedAt: t1},
		remote.RemoteList{ID: "r2", Name: "second", UpdatedAt: t1},
	)

	result := pullOnce(t, store, api)

	// Both lists fail to persist, both failures are recorded, neither aborts
	// the other.
	assert.Len(t, result.Errors, 2)
	assert.Zero(t, result.ListsCreated)
}

func TestPullMatchesItemCreatedEarlierInSameBatch(t *testing.T) {
	store := newFakeStore()
	// Two remote lists with the same name: the first creates a local list,
	// the second must match the list just created instead of duplicating.
	api := newFakeAPI(
		remote.RemoteList{ID: "r1", Name: "shared", UpdatedAt: t1},
		remote.RemoteList{ID: "r1", Name: "shared", UpdatedAt: t1},
	)

	result := pullOnce(t, store, api)

	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.ListsCreated)
	assert.Equal(t, 1, result.ListsSkipped)
	assert.Len(t, store.lists, 1)
}

// cancelAfterFirstSaveStore cancels the run once the first list has been
// persisted, simulating a caller giving up mid-pull.
type cancelAfterFirstSaveStore struct {
	*fakeStore
	cancel context.CancelFunc
	saves  int
}

func (s *cancelAfterFirstSaveStore) SaveList(ctx context.Context, list *domain.TodoList) error {
	err := s.fakeStore.SaveList(ctx, list)
	s.saves++
	if s.saves == 1 {
		s.cancel()
	}
	return err
}

func TestPullCancelledBeforeStartRecordsError(t *testing.T) {
	store := newFakeStore()
	api := newFakeAPI(
		remote.RemoteList{ID: "r1", Name: "first", UpdatedAt: t1},
		remote.RemoteList{ID: "r2", Name: "second", UpdatedAt: t1},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := &domain.SyncResult{}
	newTestEngine(store, api).pull(ctx, result)

	assert.False(t, result.Successful())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "pull cancelled")
	assert.Zero(t, result.ListsCreated)
	assert.Empty(t, store.lists)
}

func TestPullCancelledMidRunKeepsPartialCounters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &cancelAfterFirstSaveStore{fakeStore: newFakeStore(), cancel: cancel}
	api := newFakeAPI(
		remote.RemoteList{ID: "r1", Name: "first", UpdatedAt: t1},
		remote.RemoteList{ID: "r2", Name: "second", UpdatedAt: t1},
	)
	engine := NewEngine(store, api)
	engine.now = func() time.Time { return t2 }

	result := &domain.SyncResult{}
	engine.pull(ctx, result)

	// The first list landed before the cancellation; the second never ran.
	assert.Equal(t, 1, result.ListsCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "pull cancelled")
	assert.Len(t, store.lists, 1)
}
