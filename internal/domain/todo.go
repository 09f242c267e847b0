package domain

import (
	"time"
)

// EntityType identifies what a tombstone refers to.
type EntityType string

const (
	EntityTypeList EntityType = "list"
	EntityTypeItem EntityType = "item"
)

// TodoList is a locally persisted list of todo items. RemoteID is nil until
// the list has been pushed to (or pulled from) the external API.
type TodoList struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	RemoteID     *string    `json:"remote_id,omitempty"`
	SourceID     *string    `json:"source_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
	Items        []TodoItem `json:"items"`
}

// TodoItem belongs to exactly one TodoList. Deleting the list cascades.
type TodoItem struct {
	ID           string     `json:"id"`
	TodoListID   string     `json:"todo_list_id"`
	Description  string     `json:"description"`
	Completed    bool       `json:"completed"`
	RemoteID     *string    `json:"remote_id,omitempty"`
	SourceID     *string    `json:"source_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}

// DeletedEntity is a tombstone: a locally deleted entity whose deletion still
// has to be propagated to the remote API. Only entities that had a RemoteID at
// deletion time leave a tombstone.
type DeletedEntity struct {
	ID             string     `json:"id"`
	RemoteID       string     `json:"remote_id"`
	EntityType     EntityType `json:"entity_type"`
	ParentRemoteID *string    `json:"parent_remote_id,omitempty"`
	DeletedAt      time.Time  `json:"deleted_at"`
}

// ModifiedSinceLastSync reports whether the list was mutated locally after the
// last successful reconciliation. Never-synced lists are handled by the push
// create phase instead and report false here.
func (l *TodoList) ModifiedSinceLastSync() bool {
	return l.RemoteID != nil && l.LastSyncedAt != nil && l.UpdatedAt.After(*l.LastSyncedAt)
}

// ModifiedSinceLastSync reports whether the item was mutated locally after the
// last successful reconciliation.
func (i *TodoItem) ModifiedSinceLastSync() bool {
	return i.RemoteID != nil && i.LastSyncedAt != nil && i.UpdatedAt.After(*i.LastSyncedAt)
}
