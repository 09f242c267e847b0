package remote

import (
	"time"
)

// RemoteList is a todo list as represented by the external API.
type RemoteList struct {
	ID        string       `json:"id"`
	SourceID  string       `json:"source_id,omitempty"`
	Name      string       `json:"name,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Items     []RemoteItem `json:"items"`
}

// RemoteItem is a todo item as represented by the external API.
type RemoteItem struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RemoteListInput is the create payload. Items are created together with the
// list; the response carries their generated ids in the same order.
type RemoteListInput struct {
	SourceID string            `json:"source_id,omitempty"`
	Name     string            `json:"name"`
	Items    []RemoteItemInput `json:"items"`
}

// RemoteItemInput is the per-item part of a list create payload.
type RemoteItemInput struct {
	SourceID    string `json:"source_id,omitempty"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// RemoteListPatch is the update payload for a list.
type RemoteListPatch struct {
	Name string `json:"name"`
}

// RemoteItemPatch is the update payload for an item.
type RemoteItemPatch struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}
