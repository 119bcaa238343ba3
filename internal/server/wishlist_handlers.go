package server

import (
	"giftshare/internal/models"
	"giftshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateWishlist handles POST /api/wishlists
// @Summary Create a wishlist
// @Description Create a draft wishlist
// @Tags wishlists
// @Accept json
// @Produce json
// @Param request body service.CreateWishlistInput true "Wishlist"
// @Success 201 {object} models.Wishlist
// @Failure 400 {object} models.ErrorResponse
// @Router /wishlists [post]
func (s *Server) CreateWishlist(c *fiber.Ctx) error {
	var req service.CreateWishlistInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	w, err := s.wishlists.Create(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// GetWishlist handles GET /api/wishlists/:id
// @Summary Get a wishlist
// @Description Owner view of a wishlist with its gifts. Reservation state is not included.
// @Tags wishlists
// @Produce json
// @Param id path int true "Wishlist ID"
// @Success 200 {object} models.WishlistWithGifts
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlists/{id} [get]
func (s *Server) GetWishlist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	w, err := s.wishlists.Get(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(w)
}

// UpdateWishlist handles PUT /api/wishlists/:id
// @Summary Update a wishlist
// @Description Partially update a draft wishlist. Published wishlists are read-only.
// @Tags wishlists
// @Accept json
// @Produce json
// @Param id path int true "Wishlist ID"
// @Param request body models.WishlistPatch true "Fields to change"
// @Success 200 {object} models.Wishlist
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlists/{id} [put]
func (s *Server) UpdateWishlist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.WishlistPatch
	if err := bindJSON(c, &patch); err != nil {
		return nil
	}

	w, err := s.wishlists.Update(c.UserContext(), id, patch)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(w)
}

// DeleteWishlist handles DELETE /api/wishlists/:id
// @Summary Delete a wishlist
// @Description Delete a wishlist with its gifts and saved references
// @Tags wishlists
// @Produce json
// @Param id path int true "Wishlist ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlists/{id} [delete]
func (s *Server) DeleteWishlist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.wishlists.Delete(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Wishlist deleted successfully"})
}

// PublishWishlist handles POST /api/wishlists/:id/publish
// @Summary Publish a wishlist
// @Description Freeze a draft wishlist and issue its share token
// @Tags wishlists
// @Produce json
// @Param id path int true "Wishlist ID"
// @Success 200 {object} models.PublishedWishlist
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlists/{id}/publish [post]
func (s *Server) PublishWishlist(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	published, err := s.wishlists.Publish(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	s.publishPublishedEvent(map[string]any{
		"wishlist_id":  published.ID,
		"title":        published.Title,
		"published_at": published.PublishedAt,
	})

	return c.JSON(published)
}
