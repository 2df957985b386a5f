package services

import (
	"context"
	"log"
	"sync"
	"time"

	"weektodo/backend/internal/cache"
	"weektodo/backend/internal/models"
)

const (
	inboxCacheKey = "tasks:inbox"
	listsCacheKey = "lists:all"

	inboxCacheTTL = 5 * time.Minute
	listsCacheTTL = 10 * time.Minute
)

// CollectionCache is the read-through and invalidation logic shared by the
// task and list decorators. Both must use the same instance: a task
// mutation invalidates the list collection and the other way round.
//
// Every invalidation bumps a generation. A reader that loaded from the store
// before an invalidation does not write its snapshot back.
type CollectionCache struct {
	cache cache.Cache

	mu         sync.Mutex
	generation uint64
}

func NewCollectionCache(c cache.Cache) *CollectionCache {
	return &CollectionCache{cache: c}
}

func (c *CollectionCache) current() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// readThrough serves key from the cache or loads it, caching the result
// only if no invalidation happened since the load started.
func readThrough[T any](ctx context.Context, c *CollectionCache, key string, ttl time.Duration, load func(context.Context) ([]T, error)) ([]T, error) {
	var cached []T
	if err := c.cache.Get(ctx, key, &cached); err == nil && cached != nil {
		return cached, nil
	}

	generation := c.current()
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return items, nil
	}
	if err := c.cache.Set(ctx, key, items, ttl); err != nil {
		log.Printf("Failed to cache %s: %v", key, err)
	}
	return items, nil
}

func (c *CollectionCache) invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if err := c.cache.Delete(ctx, inboxCacheKey, listsCacheKey); err != nil {
		log.Printf("Failed to invalidate cached collections: %v", err)
	}
}

type CachedTaskService struct {
	taskService TaskService
	collections *CollectionCache
}

func NewCachedTaskService(taskService TaskService, collections *CollectionCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		collections: collections,
	}
}

func (s *CachedTaskService) ListInbox(ctx context.Context) ([]models.Task, error) {
	return readThrough(ctx, s.collections, inboxCacheKey, inboxCacheTTL, s.taskService.ListInbox)
}

func (s *CachedTaskService) GetTask(ctx context.Context, id string) (models.Task, error) {
	return s.taskService.GetTask(ctx, id)
}

func (s *CachedTaskService) CreateTask(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	task, err := s.taskService.CreateTask(ctx, patch)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return task, err
}

func (s *CachedTaskService) CreateTaskInList(ctx context.Context, listID string, patch models.TaskPatch) (models.Task, error) {
	task, err := s.taskService.CreateTaskInList(ctx, listID, patch)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return task, err
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	task, err := s.taskService.UpdateTask(ctx, id, patch)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return task, err
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, id string) error {
	err := s.taskService.DeleteTask(ctx, id)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return err
}

func (s *CachedTaskService) MoveTask(ctx context.Context, listID, taskID string) (models.Task, error) {
	task, err := s.taskService.MoveTask(ctx, listID, taskID)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return task, err
}

type CachedListService struct {
	listService ListService
	collections *CollectionCache
}

func NewCachedListService(listService ListService, collections *CollectionCache) *CachedListService {
	return &CachedListService{
		listService: listService,
		collections: collections,
	}
}

func (s *CachedListService) ListLists(ctx context.Context) ([]models.CustomList, error) {
	return readThrough(ctx, s.collections, listsCacheKey, listsCacheTTL, s.listService.ListLists)
}

func (s *CachedListService) CreateList(ctx context.Context, input models.ListInput) (models.CustomList, error) {
	list, err := s.listService.CreateList(ctx, input)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return list, err
}

func (s *CachedListService) DeleteList(ctx context.Context, id string) error {
	err := s.listService.DeleteList(ctx, id)
	if err == nil {
		s.collections.invalidate(ctx)
	}
	return err
}

var (
	_ TaskService = (*TaskServiceImpl)(nil)
	_ TaskService = (*CachedTaskService)(nil)
	_ ListService = (*ListServiceImpl)(nil)
	_ ListService = (*CachedListService)(nil)
)
