package sync

import (
	"strings"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/remote"
)

// matchList finds the local counterpart of a remote list. Keys are tried in
// strict priority order, first match wins:
//  1. remote id
//  2. source id (only when the remote carries one)
//  3. name, case-insensitive (only when the remote name is non-empty)
//
// nil means no counterpart exists and a local list must be created.
func matchList(pool []*domain.TodoList, rl remote.RemoteList) *domain.TodoList {
	for _, l := range pool {
		if l.RemoteID != nil && *l.RemoteID == rl.ID {
			return l
		}
	}
	if rl.SourceID != "" {
		for _, l := range pool {
			if l.SourceID != nil && *l.SourceID == rl.SourceID {
				return l
			}
		}
	}
	if rl.Name != "" {
		for _, l := range pool {
			if strings.EqualFold(l.Name, rl.Name) {
				return l
			}
		}
	}
	return nil
}

// matchItem finds the local counterpart of a remote item within a matched
// list, using the same key priority as matchList with description in place
// of name.
func matchItem(list *domain.TodoList, ri remote.RemoteItem) *domain.TodoItem {
	for i := range list.Items {
		it := &list.Items[i]
		if it.RemoteID != nil && *it.RemoteID == ri.ID {
			return it
		}
	}
	if ri.SourceID != "" {
		for i := range list.Items {
			it := &list.Items[i]
			if it.SourceID != nil && *it.SourceID == ri.SourceID {
				return it
			}
		}
	}
	if ri.Description != "" {
		for i := range list.Items {
			it := &list.Items[i]
			if strings.EqualFold(it.Description, ri.Description) {
				return it
			}
		}
	}
	return nil
}
