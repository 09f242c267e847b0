package sync

import (
	"context"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

// pull fetches the remote state, merges it into the local store, and then
// deletes local entities that vanished remotely. Failures while reconciling
// one remote list are recorded and do not abort the remaining lists.
func (e *Engine) pull(ctx context.Context, result *domain.SyncResult) {
	if ctx.Err() != nil {
		result.AddError("pull cancelled: %v", ctx.Err())
		return
	}

	remoteLists, err := e.api.ListAll(ctx)
	if err != nil {
		result.AddError("failed to fetch remote lists: %v", err)
		return
	}

	localLists, err := e.store.LoadAllListsWithItems(ctx)
	if err != nil {
		result.AddError("failed to load local lists: %v", err)
		return
	}

	// The matching pool holds pointers so merges mutate the entries the
	// deletion detection pass will later inspect. Lists created during this
	// pull are appended so later remote entries in the same batch can match.
	pool := make([]*domain.TodoList, 0, len(localLists))
	for i := range localLists {
		pool = append(pool, &localLists[i])
	}

	for _, rl := range remoteLists {
		if ctx.Err() != nil {
			result.AddError("pull cancelled: %v", ctx.Err())
			return
		}
		if err := e.mergeRemoteList(ctx, rl, &pool, result); err != nil {
			result.AddError("failed to sync remote list %q (%s): %v", rl.Name, rl.ID, err)
		}
	}

	e.detectRemoteDeletions(ctx, remoteLists, pool, result)
}

// mergeRemoteList reconciles one remote list (and its items) into the local
// store.
func (e *Engine) mergeRemoteList(ctx context.Context, rl remote.RemoteList, pool *[]*domain.TodoList, result *domain.SyncResult) error {
	local := matchList(*pool, rl)
	now := e.now()

	if local == nil {
		// No counterpart: mirror the remote list locally, adopting the
		// remote timestamps so a later remote edit still wins.
		local = &domain.TodoList{
			Name:         rl.Name,
			RemoteID:     strPtr(rl.ID),
			SourceID:     optionalStr(rl.SourceID),
			CreatedAt:    rl.CreatedAt,
			UpdatedAt:    rl.UpdatedAt,
			LastSyncedAt: &now,
		}
		if err := e.store.SaveList(ctx, local); err != nil {
			return err
		}
		result.ListsCreated++
		*pool = append(*pool, local)

		for _, ri := range rl.Items {
			if err := e.createLocalItem(ctx, local, ri); err != nil {
				result.AddError("failed to create item %q in list %q: %v", ri.Description, rl.Name, err)
				continue
			}
			result.ItemsCreated++
		}
		return nil
	}

	// Last-write-wins on content; sync metadata converges either way.
	if rl.UpdatedAt.After(local.UpdatedAt) {
		local.Name = rl.Name
		local.UpdatedAt = rl.UpdatedAt
		result.ListsUpdated++
	} else {
		result.ListsSkipped++
	}
	local.RemoteID = strPtr(rl.ID)
	if local.SourceID == nil && rl.SourceID != "" {
		local.SourceID = strPtr(rl.SourceID)
	}
	local.LastSyncedAt = &now

	if err := e.store.SaveList(ctx, local); err != nil {
		return err
	}

	for _, ri := range rl.Items {
		if err := e.mergeRemoteItem(ctx, local, ri, result); err != nil {
			result.AddError("failed to sync item %q in list %q: %v", ri.Description, rl.Name, err)
		}
	}
	return nil
}

// mergeRemoteItem reconciles one remote item against the matched local list.
func (e *Engine) mergeRemoteItem(ctx context.Context, list *domain.TodoList, ri remote.RemoteItem, result *domain.SyncResult) error {
	local := matchItem(list, ri)
	now := e.now()

	if local == nil {
		if err := e.createLocalItem(ctx, list, ri); err != nil {
			return err
		}
		result.ItemsCreated++
		return nil
	}

	if ri.UpdatedAt.After(local.UpdatedAt) {
		local.Description = ri.Description
		local.Completed = ri.Completed
		local.UpdatedAt = ri.UpdatedAt
		result.ItemsUpdated++
	} else {
		result.ItemsSkipped++
	}
	local.RemoteID = strPtr(ri.ID)
	if local.SourceID == nil && ri.SourceID != "" {
		local.SourceID = strPtr(ri.SourceID)
	}
	local.LastSyncedAt = &now

	return e.store.SaveItem(ctx, local)
}

// createLocalItem mirrors a remote item into the given local list and
// appends it to the list's in-memory item pool.
func (e *Engine) createLocalItem(ctx context.Context, list *domain.TodoList, ri remote.RemoteItem) error {
	now := e.now()
	item := domain.TodoItem{
		TodoListID:   list.ID,
		Description:  ri.Description,
		Completed:    ri.Completed,
		RemoteID:     strPtr(ri.ID),
		SourceID:     optionalStr(ri.SourceID),
		CreatedAt:    ri.CreatedAt,
		UpdatedAt:    ri.UpdatedAt,
		LastSyncedAt: &now,
	}
	if err := e.store.SaveItem(ctx, &item); err != nil {
		return err
	}
	list.Items = append(list.Items, item)
	return nil
}

// detectRemoteDeletions removes local entities whose remote counterpart no
// longer exists. Entities that were never synced (nil remote id) are
// preserved unconditionally.
func (e *Engine) detectRemoteDeletions(ctx context.Context, remoteLists []remote.RemoteList, pool []*domain.TodoList, result *domain.SyncResult) {
	remoteListIDs := make(map[string]bool, len(remoteLists))
	remoteItemIDs := make(map[string]map[string]bool, len(remoteLists))
	for _, rl := range remoteLists {
		remoteListIDs[rl.ID] = true
		itemIDs := make(map[string]bool, len(rl.Items))
		for _, ri := range rl.Items {
			itemIDs[ri.ID] = true
		}
		remoteItemIDs[rl.ID] = itemIDs
	}

	for _, list := range pool {
		if ctx.Err() != nil {
			result.AddError("pull cancelled: %v", ctx.Err())
			return
		}
		if list.RemoteID == nil {
			continue
		}

		if !remoteListIDs[*list.RemoteID] {
			if err := e.store.DeleteList(ctx, list); err != nil {
				result.AddError("failed to delete local list %q: %v", list.Name, err)
				continue
			}
			logger.InfoLog(ctx, "pull: deleted local list %q (remote %s vanished)", list.Name, *list.RemoteID)
			result.ListsDeleted++
			result.ItemsDeleted += len(list.Items)
			continue
		}

		itemIDs := remoteItemIDs[*list.RemoteID]
		for i := range list.Items {
			item := &list.Items[i]
			if item.RemoteID == nil || itemIDs[*item.RemoteID] {
				continue
			}
			if err := e.store.DeleteItem(ctx, item); err != nil {
				result.AddError("failed to delete local item %q: %v", item.Description, err)
				continue
			}
			result.ItemsDeleted++
		}
	}
}

func strPtr(s string) *string {
	return &s
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
