package services

import (
	"context"
	"log"

	"weektodo/backend/internal/ids"
	"weektodo/backend/internal/models"
	"weektodo/backend/internal/repositories"
)

type ListService interface {
	ListLists(ctx context.Context) ([]models.CustomList, error)
	CreateList(ctx context.Context, input models.ListInput) (models.CustomList, error)
	DeleteList(ctx context.Context, id string) error
}

type ListServiceImpl struct {
	store *repositories.Store
	ids   *ids.Generator
}

func NewListService(store *repositories.Store, generator *ids.Generator) *ListServiceImpl {
	return &ListServiceImpl{store: store, ids: generator}
}

func (s *ListServiceImpl) ListLists(ctx context.Context) ([]models.CustomList, error) {
	lists, err := s.store.ListLists(ctx)
	if err != nil {
		return nil, err
	}
	if lists == nil {
		lists = []models.CustomList{}
	}
	for i := range lists {
		if lists[i].Tasks == nil {
			lists[i].Tasks = []models.Task{}
		}
	}
	return lists, nil
}

func (s *ListServiceImpl) CreateList(ctx context.Context, input models.ListInput) (models.CustomList, error) {
	list := models.NewCustomList(s.ids.Next(), input)
	if err := s.store.CreateList(ctx, &list); err != nil {
		return models.CustomList{}, err
	}
	return list, nil
}

// DeleteList removes the member tasks and then the list in one transaction.
// Deleting a missing list succeeds.
func (s *ListServiceImpl) DeleteList(ctx context.Context, id string) error {
	return s.store.Transaction(ctx, func(tx *repositories.Store) error {
		removed, err := tx.DeleteListTasks(ctx, id)
		if err != nil {
			return err
		}

		deleted, err := tx.DeleteList(ctx, id)
		if err != nil {
			return err
		}

		if deleted {
			log.Printf("Deleted list %s with %d tasks", id, removed)
		}
		return nil
	})
}
