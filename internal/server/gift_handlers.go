package server

import (
	"giftshare/internal/models"
	"giftshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddGift handles POST /api/wishlists/:id/gifts
// @Summary Add a gift
// @Description Add a gift to a draft wishlist
// @Tags gifts
// @Accept json
// @Produce json
// @Param id path int true "Wishlist ID"
// @Param request body service.CreateGiftInput true "Gift"
// @Success 201 {object} models.OwnerGift
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlists/{id}/gifts [post]
func (s *Server) AddGift(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.CreateGiftInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	gift, err := s.wishlists.AddGift(c.UserContext(), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(gift)
}

// ListGifts handles GET /api/wishlists/:id/gifts
// @Summary List gifts
// @Description Owner view of a wishlist's gifts, highest priority first
// @Tags gifts
// @Produce json
// @Param id path int true "Wishlist ID"
// @Success 200 {object} object{gifts=[]models.OwnerGift}
// @Failure 400 {object} models.ErrorResponse
// @Router /wishlists/{id}/gifts [get]
func (s *Server) ListGifts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	gifts, err := s.wishlists.ListGifts(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"gifts": gifts})
}

// UpdateGift handles PUT /api/gifts/:id
// @Summary Update a gift
// @Description Partially update a gift of a draft wishlist. Send null to clear an optional field.
// @Tags gifts
// @Accept json
// @Produce json
// @Param id path int true "Gift ID"
// @Param request body models.GiftPatch true "Fields to change"
// @Success 200 {object} models.OwnerGift
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /gifts/{id} [put]
func (s *Server) UpdateGift(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.GiftPatch
	if err := bindJSON(c, &patch); err != nil {
		return nil
	}

	gift, err := s.gifts.UpdateGift(c.UserContext(), id, patch)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(gift)
}

// DeleteGift handles DELETE /api/gifts/:id
// @Summary Delete a gift
// @Description Remove a gift from a draft wishlist
// @Tags gifts
// @Produce json
// @Param id path int true "Gift ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /gifts/{id} [delete]
func (s *Server) DeleteGift(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.gifts.DeleteGift(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Gift deleted successfully"})
}

// RandomGift handles GET /api/gifts/random
// @Summary Random gift
// @Description Suggest an unreserved gift from any published wishlist
// @Tags gifts
// @Produce json
// @Success 200 {object} models.RandomGift
// @Failure 404 {object} models.ErrorResponse
// @Router /gifts/random [get]
func (s *Server) RandomGift(c *fiber.Ctx) error {
	gift, err := s.gifts.Random(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(gift)
}
