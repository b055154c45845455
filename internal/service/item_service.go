package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/repository"
	apperrors "github.com/spec-kit/queue-info-api/pkg/util"
)

const defaultItemPageSize = 100

// ItemService applies ownership rules on top of the item repository. Regular
// users see only their own items; superusers see everything.
type ItemService struct {
	items repository.ItemRepository
}

// NewItemService builds the service.
func NewItemService(items repository.ItemRepository) *ItemService {
	return &ItemService{items: items}
}

// List returns items visible to the user along with the total count.
func (s *ItemService) List(ctx context.Context, user *domain.User, limit, offset int) ([]domain.Item, int64, error) {
	if limit <= 0 {
		limit = defaultItemPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if user.IsSuperuser {
		return s.items.List(ctx, limit, offset)
	}
	return s.items.ListByOwner(ctx, user.ID, limit, offset)
}

// Create stores a new item owned by the user.
func (s *ItemService) Create(ctx context.Context, user *domain.User, title, description string) (*domain.Item, error) {
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	item := &domain.Item{
		Title:       title,
		Description: description,
		UserID:      user.ID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Get fetches a single item, enforcing ownership.
func (s *ItemService) Get(ctx context.Context, user *domain.User, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("item", nil)
		}
		return nil, err
	}
	if item.UserID != user.ID && !user.IsSuperuser {
		return nil, apperrors.NewForbidden("not enough permissions")
	}
	return item, nil
}

// Update modifies an item the user owns.
func (s *ItemService) Update(ctx context.Context, user *domain.User, id int64, title, description string) (*domain.Item, error) {
	item, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if title != "" {
		item.Title = title
	}
	if description != "" {
		item.Description = description
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item the user owns.
func (s *ItemService) Delete(ctx context.Context, user *domain.User, id int64) error {
	if _, err := s.Get(ctx, user, id); err != nil {
		return err
	}
	return s.items.Delete(ctx, id)
}
