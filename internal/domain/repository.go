package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repository lookups when no row matches.
var ErrNotFound = errors.New("not found")

// TodoRepository is the persistence contract. The sync engine consumes the
// Load/Save/Delete/tombstone subset; the CRUD service additionally uses the
// Create/Update/Get methods, which stamp UpdatedAt at this boundary so no
// user-facing write path can forget it. Save* methods persist the entity
// verbatim; the sync engine manages timestamps itself per its merge rules.
// Every write commits durably before the call returns.
type TodoRepository interface {
	// Sync engine contract.
	LoadAllListsWithItems(ctx context.Context) ([]TodoList, error)
	SaveList(ctx context.Context, list *TodoList) error
	SaveItem(ctx context.Context, item *TodoItem) error
	DeleteList(ctx context.Context, list *TodoList) error
	DeleteItem(ctx context.Context, item *TodoItem) error
	ListTombstones(ctx context.Context) ([]DeletedEntity, error)
	DeleteTombstone(ctx context.Context, tombstone *DeletedEntity) error

	// CRUD contract. Create/Update stamp CreatedAt/UpdatedAt; DeleteListByID
	// and DeleteItemByID atomically record a tombstone when the entity was
	// previously synced.
	CreateList(ctx context.Context, list *TodoList) error
	UpdateList(ctx context.Context, list *TodoList) error
	GetListWithItems(ctx context.Context, id string) (*TodoList, error)
	DeleteListByID(ctx context.Context, id string) error
	CreateItem(ctx context.Context, item *TodoItem) error
	UpdateItem(ctx context.Context, item *TodoItem) error
	GetItem(ctx context.Context, listID, itemID string) (*TodoItem, error)
	DeleteItemByID(ctx context.Context, listID, itemID string) error
}
