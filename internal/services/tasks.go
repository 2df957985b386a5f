package services

import (
	"context"
	"errors"
	"fmt"

	"weektodo/backend/internal/ids"
	"weektodo/backend/internal/models"
	"weektodo/backend/internal/repositories"
)

type TaskService interface {
	ListInbox(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	CreateTask(ctx context.Context, patch models.TaskPatch) (models.Task, error)
	CreateTaskInList(ctx context.Context, listID string, patch models.TaskPatch) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, listID, taskID string) (models.Task, error)
}

type TaskServiceImpl struct {
	store *repositories.Store
	ids   *ids.Generator
}

func NewTaskService(store *repositories.Store, generator *ids.Generator) *TaskServiceImpl {
	return &TaskServiceImpl{store: store, ids: generator}
}

func (s *TaskServiceImpl) ListInbox(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.store.ListInboxTasks(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id string) (models.Task, error) {
	task, err := s.store.FindTask(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Task{}, ErrTaskNotFound
	}
	return task, err
}

// CreateTask always files the task in the inbox, whatever listId the body carries.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, patch models.TaskPatch) (models.Task, error) {
	task := models.NewTask(s.ids.Next(), patch)
	task.ListID = nil

	if err := s.store.CreateTask(ctx, &task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) CreateTaskInList(ctx context.Context, listID string, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := requireList(ctx, tx, listID); err != nil {
			return err
		}

		task = models.NewTask(s.ids.Next(), patch)
		task.ListID = &listID
		return tx.CreateTask(ctx, &task)
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if err := patch.Validate(); err != nil {
		return models.Task{}, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	var task models.Task
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		existing, err := tx.FindTask(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}

		if patch.ListID.HasValue() {
			if err := requireList(ctx, tx, patch.ListID.Value); err != nil {
				return err
			}
		}

		patch.Apply(&existing)
		if err := tx.SaveTask(ctx, &existing); err != nil {
			return err
		}
		task = existing
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask is idempotent: a missing id is not an error.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	_, err := s.store.DeleteTask(ctx, id)
	return err
}

func (s *TaskServiceImpl) MoveTask(ctx context.Context, listID, taskID string) (models.Task, error) {
	var task models.Task
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := requireList(ctx, tx, listID); err != nil {
			return err
		}

		existing, err := tx.FindTask(ctx, taskID)
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		if err != nil {
			return err
		}

		if existing.ListID == nil || *existing.ListID != listID {
			existing.ListID = &listID
			if err := tx.SaveTask(ctx, &existing); err != nil {
				return err
			}
		}
		task = existing
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func requireList(ctx context.Context, tx *repositories.Store, listID string) error {
	exists, err := tx.ListExists(ctx, listID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrListNotFound
	}
	return nil
}
