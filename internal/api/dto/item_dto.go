package dto

import (
	"time"

	"github.com/spec-kit/queue-info-api/internal/domain"
)

// ItemCreateRequest payload for new items.
type ItemCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ItemUpdateRequest payload for item updates; empty fields are left unchanged.
type ItemUpdateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ItemResponse is the public view of an item.
type ItemResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemRows is a paged list of items.
type ItemRows struct {
	Data  []ItemResponse `json:"data"`
	Total int64          `json:"total"`
}

// NewItemResponse maps a domain item to its public view.
func NewItemResponse(item *domain.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		UserID:      item.UserID,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// NewItemRows maps a page of items.
func NewItemRows(items []domain.Item, total int64) ItemRows {
	rows := ItemRows{Data: make([]ItemResponse, 0, len(items)), Total: total}
	for i := range items {
		rows.Data = append(rows.Data, NewItemResponse(&items[i]))
	}
	return rows
}
