package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/logger"
)

// Service is the sync orchestrator. It exposes the three public operations,
// serializes concurrent invocations with a single-flight lock, and
// guarantees none of them ever returns an error; failures degrade to
// entries in the result's error list.
type Service struct {
	engine *Engine
	mu     stdsync.Mutex
}

// NewService creates the orchestrator around an engine.
func NewService(engine *Engine) *Service {
	return &Service{engine: engine}
}

// SyncFromRemote runs the pull phase: merge remote state into the local
// store, then delete local entities that vanished remotely.
func (s *Service) SyncFromRemote(ctx context.Context) *domain.SyncResult {
	return s.run(ctx, "pull", func(ctx context.Context, result *domain.SyncResult) {
		s.engine.pull(ctx, result)
	})
}

// SyncToRemote runs the push phase: create, update, and delete remote
// entities to reflect local state.
func (s *Service) SyncToRemote(ctx context.Context) *domain.SyncResult {
	return s.run(ctx, "push", func(ctx context.Context, result *domain.SyncResult) {
		s.engine.push(ctx, result)
	})
}

// FullSync runs pull then push sequentially; push must observe the
// post-pull state. Counters are combined per phase semantics.
func (s *Service) FullSync(ctx context.Context) *domain.SyncResult {
	return s.run(ctx, "full", func(ctx context.Context, result *domain.SyncResult) {
		pull := &domain.SyncResult{}
		s.engine.pull(ctx, pull)
		// Snapshot the pull progress so a panic during push still returns
		// the counters the pull earned.
		*result = *pull

		push := &domain.SyncResult{}
		s.engine.push(ctx, push)

		*result = *domain.CombineSyncResults(pull, push)
	})
}

// run wraps a sync phase with the single-flight guard, panic containment,
// and result finalization.
func (s *Service) run(ctx context.Context, name string, fn func(context.Context, *domain.SyncResult)) (result *domain.SyncResult) {
	result = &domain.SyncResult{}

	if !s.mu.TryLock() {
		result.AddError("sync already in progress")
		result.CompletedAt = time.Now()
		return result
	}
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			result.AddError("%s sync panicked: %v", name, r)
		}
		result.CompletedAt = time.Now()
		if result.Successful() {
			logger.InfoLog(ctx, "%s sync finished: lists +%d ~%d -%d, items +%d ~%d -%d",
				name, result.ListsCreated, result.ListsUpdated, result.ListsDeleted,
				result.ItemsCreated, result.ItemsUpdated, result.ItemsDeleted)
		} else {
			logger.WarnLog(ctx, "%s sync finished with %d error(s)", name, len(result.Errors))
		}
	}()

	logger.InfoLog(ctx, "%s sync starting", name)
	fn(ctx, result)
	return result
}
