package sync

import (
	"context"
	"errors"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

// push propagates local state to the remote API in four ordered phases:
// create new lists, update modified lists, update modified items, then
// drain the deletion tombstones. The ordering guarantees an item update
// never targets a list that lacks a remote id.
func (e *Engine) push(ctx context.Context, result *domain.SyncResult) {
	// Checked once up front so a run cancelled before it starts still
	// reports the cancellation even when every phase would be a no-op.
	if ctx.Err() != nil {
		result.AddError("push cancelled: %v", ctx.Err())
		return
	}

	localLists, err := e.store.LoadAllListsWithItems(ctx)
	if err != nil {
		result.AddError("failed to load local lists: %v", err)
		return
	}

	lists := make([]*domain.TodoList, 0, len(localLists))
	for i := range localLists {
		lists = append(lists, &localLists[i])
	}

	e.pushCreateLists(ctx, lists, result)
	e.pushUpdateLists(ctx, lists, result)
	e.pushUpdateItems(ctx, lists, result)
	e.pushDeletions(ctx, result)
}

// pushCreateLists sends every never-synced list (nil remote id) to the
// remote API as a create carrying all of its items. Returned remote ids are
// assigned positionally to the list and its items.
func (e *Engine) pushCreateLists(ctx context.Context, lists []*domain.TodoList, result *domain.SyncResult) {
	for _, list := range lists {
		if ctx.Err() != nil {
			result.AddError("push cancelled: %v", ctx.Err())
			return
		}
		if list.RemoteID != nil {
			continue
		}
		if err := e.createRemoteList(ctx, list); err != nil {
			result.AddError("failed to create list %q remotely: %v", list.Name, err)
			continue
		}
		result.ListsCreated++
		result.ItemsCreated += len(list.Items)
	}
}

func (e *Engine) createRemoteList(ctx context.Context, list *domain.TodoList) error {
	input := remote.RemoteListInput{
		SourceID: deref(list.SourceID),
		Name:     list.Name,
		Items:    make([]remote.RemoteItemInput, 0, len(list.Items)),
	}
	for _, item := range list.Items {
		input.Items = append(input.Items, remote.RemoteItemInput{
			SourceID:    deref(item.SourceID),
			Description: item.Description,
			Completed:   item.Completed,
		})
	}

	created, err := e.api.Create(ctx, input)
	if err != nil {
		return err
	}

	now := e.now()
	list.RemoteID = strPtr(created.ID)
	list.LastSyncedAt = &now
	if err := e.store.SaveList(ctx, list); err != nil {
		return err
	}

	// Remote ids come back in the same order the items were sent.
	for i := range list.Items {
		if i >= len(created.Items) {
			break
		}
		item := &list.Items[i]
		item.RemoteID = strPtr(created.Items[i].ID)
		item.LastSyncedAt = &now
		if err := e.store.SaveItem(ctx, item); err != nil {
			return err
		}
	}

	logger.InfoLog(ctx, "push: created list %q remotely as %s", list.Name, created.ID)
	return nil
}

// pushUpdateLists sends an update for every list modified locally since its
// last sync.
func (e *Engine) pushUpdateLists(ctx context.Context, lists []*domain.TodoList, result *domain.SyncResult) {
	for _, list := range lists {
		if ctx.Err() != nil {
			result.AddError("push cancelled: %v", ctx.Err())
			return
		}
		if !list.ModifiedSinceLastSync() {
			continue
		}
		if _, err := e.api.Update(ctx, *list.RemoteID, remote.RemoteListPatch{Name: list.Name}); err != nil {
			result.AddError("failed to update list %q remotely: %v", list.Name, err)
			continue
		}
		now := e.now()
		list.LastSyncedAt = &now
		if err := e.store.SaveList(ctx, list); err != nil {
			result.AddError("failed to persist list %q after push: %v", list.Name, err)
			continue
		}
		result.ListsUpdated++
	}
}

// pushUpdateItems sends an update for every item modified locally since its
// last sync. Runs after the list phases, so every owning list has a remote id.
func (e *Engine) pushUpdateItems(ctx context.Context, lists []*domain.TodoList, result *domain.SyncResult) {
	for _, list := range lists {
		if list.RemoteID == nil {
			continue
		}
		for i := range list.Items {
			if ctx.Err() != nil {
				result.AddError("push cancelled: %v", ctx.Err())
				return
			}
			item := &list.Items[i]
			if !item.ModifiedSinceLastSync() {
				continue
			}
			patch := remote.RemoteItemPatch{Description: item.Description, Completed: item.Completed}
			if _, err := e.api.UpdateItem(ctx, *list.RemoteID, *item.RemoteID, patch); err != nil {
				result.AddError("failed to update item %q remotely: %v", item.Description, err)
				continue
			}
			now := e.now()
			item.LastSyncedAt = &now
			if err := e.store.SaveItem(ctx, item); err != nil {
				result.AddError("failed to persist item %q after push: %v", item.Description, err)
				continue
			}
			result.ItemsUpdated++
		}
	}
}

// pushDeletions drains the tombstones: item tombstones first (children
// before parents), then list tombstones. A remote 404 counts as success:
// the entity is already gone. Any other failure keeps the tombstone for
// retry on the next sync.
func (e *Engine) pushDeletions(ctx context.Context, result *domain.SyncResult) {
	tombstones, err := e.store.ListTombstones(ctx)
	if err != nil {
		result.AddError("failed to load tombstones: %v", err)
		return
	}

	ordered := make([]domain.DeletedEntity, 0, len(tombstones))
	for _, t := range tombstones {
		if t.EntityType == domain.EntityTypeItem {
			ordered = append(ordered, t)
		}
	}
	for _, t := range tombstones {
		if t.EntityType == domain.EntityTypeList {
			ordered = append(ordered, t)
		}
	}

	for i := range ordered {
		if ctx.Err() != nil {
			result.AddError("push cancelled: %v", ctx.Err())
			return
		}
		t := &ordered[i]
		propagated, err := e.pushOneDeletion(ctx, t)
		if err != nil {
			result.AddError("failed to delete remote %s %s: %v", t.EntityType, t.RemoteID, err)
			continue
		}
		if !propagated {
			continue
		}
		switch t.EntityType {
		case domain.EntityTypeItem:
			result.ItemsDeleted++
		case domain.EntityTypeList:
			result.ListsDeleted++
		}
	}
}

// pushOneDeletion reports whether the deletion was actually propagated to
// the remote; discarded malformed tombstones are dropped without counting.
func (e *Engine) pushOneDeletion(ctx context.Context, t *domain.DeletedEntity) (bool, error) {
	var err error
	switch t.EntityType {
	case domain.EntityTypeItem:
		if t.ParentRemoteID == nil {
			// Malformed tombstone; drop it so it does not wedge every sync.
			logger.WarnLog(ctx, "push: item tombstone %s has no parent remote id, discarding", t.ID)
			return false, e.store.DeleteTombstone(ctx, t)
		}
		err = e.api.DeleteItem(ctx, *t.ParentRemoteID, t.RemoteID)
	case domain.EntityTypeList:
		err = e.api.Delete(ctx, t.RemoteID)
	}

	if err != nil && !errors.Is(err, remote.ErrNotFound) {
		return false, err
	}
	return true, e.store.DeleteTombstone(ctx, t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
