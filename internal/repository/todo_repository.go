// Package repository implements the persistence layer over Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/todo_sync_sample/internal/domain"
)

type todoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates the Postgres-backed repository.
func NewTodoRepository(db *sql.DB) domain.TodoRepository {
	return &todoRepository{db: db}
}

const listColumns = "id, name, remote_id, source_id, created_at, updated_at, last_synced_at"
const itemColumns = "id, todo_list_id, description, completed, remote_id, source_id, created_at, updated_at, last_synced_at"

// LoadAllListsWithItems returns every list with its items, lists ordered by
// creation time and items ordered by creation time within each list.
func (r *todoRepository) LoadAllListsWithItems(ctx context.Context) ([]domain.TodoList, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+listColumns+" FROM todo_lists ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []domain.TodoList
	index := make(map[string]int)
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		index[list.ID] = len(lists)
		lists = append(lists, *list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM todo_items ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanItem(itemRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[item.TodoListID]; ok {
			lists[i].Items = append(lists[i].Items, *item)
		}
	}
	return lists, itemRows.Err()
}

// SaveList upserts the list exactly as given. The sync engine manages
// timestamps itself, so nothing is stamped here.
func (r *todoRepository) SaveList(ctx context.Context, list *domain.TodoList) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_lists (id, name, remote_id, source_id, created_at, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			remote_id = EXCLUDED.remote_id,
			source_id = EXCLUDED.source_id,
			updated_at = EXCLUDED.updated_at,
			last_synced_at = EXCLUDED.last_synced_at`,
		list.ID, list.Name, list.RemoteID, list.SourceID, list.CreatedAt, list.UpdatedAt, list.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to save list %s: %w", list.ID, err)
	}
	return nil
}

// SaveItem upserts the item exactly as given.
func (r *todoRepository) SaveItem(ctx context.Context, item *domain.TodoItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_items (id, todo_list_id, description, completed, remote_id, source_id, created_at, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			completed = EXCLUDED.completed,
			remote_id = EXCLUDED.remote_id,
			source_id = EXCLUDED.source_id,
			updated_at = EXCLUDED.updated_at,
			last_synced_at = EXCLUDED.last_synced_at`,
		item.ID, item.TodoListID, item.Description, item.Completed,
		item.RemoteID, item.SourceID, item.CreatedAt, item.UpdatedAt, item.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ID, err)
	}
	return nil
}

// DeleteList removes the list; items cascade via the foreign key. No
// tombstone is written here; this is the sync engine's path for entities
// that vanished remotely.
func (r *todoRepository) DeleteList(ctx context.Context, list *domain.TodoList) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = $1", list.ID)
	if err != nil {
		return fmt.Errorf("failed to delete list %s: %w", list.ID, err)
	}
	return nil
}

// DeleteItem removes the item without writing a tombstone.
func (r *todoRepository) DeleteItem(ctx context.Context, item *domain.TodoItem) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM todo_items WHERE id = $1", item.ID)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", item.ID, err)
	}
	return nil
}

// ListTombstones returns all pending deletion tombstones, oldest first.
func (r *todoRepository) ListTombstones(ctx context.Context) ([]domain.DeletedEntity, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, remote_id, entity_type, parent_remote_id, deleted_at FROM deleted_entities ORDER BY deleted_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query tombstones: %w", err)
	}
	defer rows.Close()

	var tombstones []domain.DeletedEntity
	for rows.Next() {
		var t domain.DeletedEntity
		var parent sql.NullString
		if err := rows.Scan(&t.ID, &t.RemoteID, &t.EntityType, &parent, &t.DeletedAt); err != nil {
			return nil, err
		}
		if parent.Valid {
			t.ParentRemoteID = &parent.String
		}
		tombstones = append(tombstones, t)
	}
	return tombstones, rows.Err()
}

// DeleteTombstone removes a tombstone after the remote delete succeeded or
// was confirmed already gone.
func (r *todoRepository) DeleteTombstone(ctx context.Context, tombstone *domain.DeletedEntity) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM deleted_entities WHERE id = $1", tombstone.ID)
	if err != nil {
		return fmt.Errorf("failed to delete tombstone %s: %w", tombstone.ID, err)
	}
	return nil
}

// CreateList stamps CreatedAt/UpdatedAt and inserts. This is the user-facing
// create path; the timestamps are owned by this boundary.
func (r *todoRepository) CreateList(ctx context.Context, list *domain.TodoList) error {
	if list.ID == "" {
		list.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	list.CreatedAt = now
	list.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_lists (id, name, remote_id, source_id, created_at, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		list.ID, list.Name, list.RemoteID, list.SourceID, list.CreatedAt, list.UpdatedAt, list.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// UpdateList stamps UpdatedAt and persists the mutable fields.
func (r *todoRepository) UpdateList(ctx context.Context, list *domain.TodoList) error {
	list.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE todo_lists SET name = $2, updated_at = $3 WHERE id = $1",
		list.ID, list.Name, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update list %s: %w", list.ID, err)
	}
	return requireRow(res)
}

// GetListWithItems loads one list and its items.
func (r *todoRepository) GetListWithItems(ctx context.Context, id string) (*domain.TodoList, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+listColumns+" FROM todo_lists WHERE id = $1", id)
	list, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM todo_items WHERE todo_list_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, *item)
	}
	return list, rows.Err()
}

// DeleteListByID deletes a list on user request. If the list was previously
// synced, a tombstone is written in the same transaction so the delete and
// its pending propagation are atomic.
func (r *todoRepository) DeleteListByID(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var remoteID sql.NullString
	err = tx.QueryRowContext(ctx, "SELECT remote_id FROM todo_lists WHERE id = $1", id).Scan(&remoteID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete list %s: %w", id, err)
	}

	if remoteID.Valid {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deleted_entities (id, remote_id, entity_type, parent_remote_id, deleted_at)
			VALUES ($1, $2, $3, NULL, $4)`,
			uuid.NewString(), remoteID.String, domain.EntityTypeList, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to record list tombstone: %w", err)
		}
	}

	return tx.Commit()
}

// CreateItem stamps timestamps and inserts a user-created item.
func (r *todoRepository) CreateItem(ctx context.Context, item *domain.TodoItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO todo_items (id, todo_list_id, description, completed, remote_id, source_id, created_at, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.TodoListID, item.Description, item.Completed,
		item.RemoteID, item.SourceID, item.CreatedAt, item.UpdatedAt, item.LastSyncedAt)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// UpdateItem stamps UpdatedAt and persists the mutable fields.
func (r *todoRepository) UpdateItem(ctx context.Context, item *domain.TodoItem) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE todo_items SET description = $2, completed = $3, updated_at = $4 WHERE id = $1",
		item.ID, item.Description, item.Completed, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	return requireRow(res)
}

// GetItem loads one item scoped to its list.
func (r *todoRepository) GetItem(ctx context.Context, listID, itemID string) (*domain.TodoItem, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM todo_items WHERE id = $1 AND todo_list_id = $2", itemID, listID)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return item, err
}

// DeleteItemByID deletes an item on user request, recording a tombstone
// (with the owning list's remote id) in the same transaction when the item
// was previously synced.
func (r *todoRepository) DeleteItemByID(ctx context.Context, listID, itemID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var itemRemoteID, listRemoteID sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT i.remote_id, l.remote_id
		FROM todo_items i JOIN todo_lists l ON l.id = i.todo_list_id
		WHERE i.id = $1 AND i.todo_list_id = $2`, itemID, listID).Scan(&itemRemoteID, &listRemoteID)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM todo_items WHERE id = $1", itemID); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", itemID, err)
	}

	// Item tombstones require the parent's remote id to address the remote
	// delete call. An item can only have a remote id if its list does.
	if itemRemoteID.Valid && listRemoteID.Valid {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deleted_entities (id, remote_id, entity_type, parent_remote_id, deleted_at)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), itemRemoteID.String, domain.EntityTypeItem, listRemoteID.String, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to record item tombstone: %w", err)
		}
	}

	return tx.Commit()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanList(row scanner) (*domain.TodoList, error) {
	var l domain.TodoList
	var remoteID, sourceID sql.NullString
	var lastSyncedAt sql.NullTime
	err := row.Scan(&l.ID, &l.Name, &remoteID, &sourceID, &l.CreatedAt, &l.UpdatedAt, &lastSyncedAt)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		l.RemoteID = &remoteID.String
	}
	if sourceID.Valid {
		l.SourceID = &sourceID.String
	}
	if lastSyncedAt.Valid {
		l.LastSyncedAt = &lastSyncedAt.Time
	}
	return &l, nil
}

func scanItem(row scanner) (*domain.TodoItem, error) {
	var i domain.TodoItem
	var remoteID, sourceID sql.NullString
	var lastSyncedAt sql.NullTime
	err := row.Scan(&i.ID, &i.TodoListID, &i.Description, &i.Completed,
		&remoteID, &sourceID, &i.CreatedAt, &i.UpdatedAt, &lastSyncedAt)
	if err != nil {
		return nil, err
	}
	if remoteID.Valid {
		i.RemoteID = &remoteID.String
	}
	if sourceID.Valid {
		i.SourceID = &sourceID.String
	}
	if lastSyncedAt.Valid {
		i.LastSyncedAt = &lastSyncedAt.Time
	}
	return &i, nil
}
