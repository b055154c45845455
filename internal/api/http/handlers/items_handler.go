package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-info-api/internal/api/dto"
	"github.com/spec-kit/queue-info-api/internal/auth"
	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/service"
)

// ItemsHandler exposes CRUD endpoints for user-owned items.
type ItemsHandler struct {
	items *service.ItemService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(items *service.ItemService) *ItemsHandler {
	return &ItemsHandler{items: items}
}

// List handles GET /items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("skip", 0)

	items, total, err := h.items.List(c.UserContext(), user, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItemRows(items, total))
}

// Create handles POST /items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ItemCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	item, err := h.items.Create(c.UserContext(), user, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewItemResponse(item))
}

// Get handles GET /items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.items.Get(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItemResponse(item))
}

// Update handles PUT /items/:id.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := itemID(c)
	if err != nil {
		return err
	}

	var req dto.ItemUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	item, err := h.items.Update(c.UserContext(), user, id, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewItemResponse(item))
}

// Delete handles DELETE /items/:id.
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := itemID(c)
	if err != nil {
		return err
	}

	if err := h.items.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.JSON(dto.MsgResponse{Msg: "Item deleted"})
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return nil, fiber.NewError(http.StatusUnauthorized, "authentication required")
	}
	return user, nil
}

func itemID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(http.StatusBadRequest, "invalid item id")
	}
	return id, nil
}
