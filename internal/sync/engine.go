// Package sync implements bidirectional reconciliation between the local
// store and the external todo API: multi-key matching, last-write-wins
// merging, tombstone-based deletion propagation, and per-entity failure
// isolation.
package sync

import (
	"context"
	"time"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

// RemoteAPI is the subset of the external API client the engine consumes.
type RemoteAPI interface {
	ListAll(ctx context.Context) ([]remote.RemoteList, error)
	Create(ctx context.Context, input remote.RemoteListInput) (*remote.RemoteList, error)
	Update(ctx context.Context, remoteListID string, patch remote.RemoteListPatch) (*remote.RemoteList, error)
	Delete(ctx context.Context, remoteListID string) error
	UpdateItem(ctx context.Context, remoteListID, remoteItemID string, patch remote.RemoteItemPatch) (*remote.RemoteItem, error)
	DeleteItem(ctx context.Context, remoteListID, remoteItemID string) error
}

// Store is the persistence subset the engine consumes. Every write commits
// durably before returning; each entity write is atomic.
type Store interface {
	LoadAllListsWithItems(ctx context.Context) ([]domain.TodoList, error)
	SaveList(ctx context.Context, list *domain.TodoList) error
	SaveItem(ctx context.Context, item *domain.TodoItem) error
	DeleteList(ctx context.Context, list *domain.TodoList) error
	DeleteItem(ctx context.Context, item *domain.TodoItem) error
	ListTombstones(ctx context.Context) ([]domain.DeletedEntity, error)
	DeleteTombstone(ctx context.Context, tombstone *domain.DeletedEntity) error
}

// Engine runs the pull and push phases. It processes entities strictly
// sequentially; callers serialize concurrent invocations (see Service).
type Engine struct {
	store Store
	api   RemoteAPI
	now   func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(store Store, api RemoteAPI) *Engine {
	return &Engine{
		store: store,
		api:   api,
		now:   time.Now,
	}
}
