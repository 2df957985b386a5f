// Package repositories is the storage access layer. A Store wraps a gorm
// handle and owns the tasks and custom_lists tables; services receive one at
// construction and run every mutation inside Store.Transaction.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"weektodo/backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the two tables if they do not exist yet.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.CustomList{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// MaxID returns the highest numeric id across tasks and lists, or 0 when both
// tables are empty.
func (s *Store) MaxID(ctx context.Context) (int64, error) {
	var max int64
	for _, table := range []string{"tasks", "custom_lists"} {
		var tableMax int64
		err := s.db.WithContext(ctx).
			Raw("SELECT COALESCE(MAX(CAST(id AS BIGINT)), 0) FROM " + table).
			Scan(&tableMax).Error
		if err != nil {
			return 0, fmt.Errorf("failed to read max id of %s: %w", table, err)
		}
		if tableMax > max {
			max = tableMax
		}
	}
	return max, nil
}

// Transaction runs fn against a Store bound to a single transaction. The
// transaction commits only if fn returns nil.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) ListInboxTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Where("list_id IS NULL").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list inbox tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) FindTask(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to load task %s: %w", id, err)
	}
	return task, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// SaveTask writes every column of task, including NULLs.
func (s *Store) SaveTask(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to save task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask reports whether a row was removed.
func (s *Store) DeleteTask(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete task %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *Store) ListLists(ctx context.Context) ([]models.CustomList, error) {
	var lists []models.CustomList
	if err := s.db.WithContext(ctx).Preload("Tasks").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("failed to list custom lists: %w", err)
	}
	return lists, nil
}

func (s *Store) FindList(ctx context.Context, id string) (models.CustomList, error) {
	var list models.CustomList
	err := s.db.WithContext(ctx).Preload("Tasks").Where("id = ?", id).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CustomList{}, ErrNotFound
	}
	if err != nil {
		return models.CustomList{}, fmt.Errorf("failed to load list %s: %w", id, err)
	}
	return list, nil
}

func (s *Store) ListExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CustomList{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check list %s: %w", id, err)
	}
	return count > 0, nil
}

func (s *Store) CreateList(ctx context.Context, list *models.CustomList) error {
	if err := s.db.WithContext(ctx).Omit("Tasks").Create(list).Error; err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}
	return nil
}

// DeleteListTasks removes every task that references listID.
func (s *Store) DeleteListTasks(ctx context.Context, listID string) (int64, error) {
	result := s.db.WithContext(ctx).Where("list_id = ?", listID).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete tasks of list %s: %w", listID, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteList removes the list row only; callers delete member tasks first.
func (s *Store) DeleteList(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CustomList{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete list %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}
