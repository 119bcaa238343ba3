package server

import (
	"giftshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListSaved handles GET /api/saved/:browserId
// @Summary List saved wishlists
// @Description Published wishlists bookmarked by a browser, newest first
// @Tags saved
// @Produce json
// @Param browserId path string true "Browser ID (UUID)"
// @Success 200 {object} object{saved_wishlists=[]models.SavedWishlistView}
// @Failure 400 {object} models.ErrorResponse
// @Router /saved/{browserId} [get]
func (s *Server) ListSaved(c *fiber.Ctx) error {
	browserID, err := parseUUIDParam(c, "browserId")
	if err != nil {
		return nil
	}

	views, err := s.saved.List(c.UserContext(), browserID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"saved_wishlists": views})
}

// SaveWishlist handles POST /api/saved
// @Summary Save a wishlist
// @Description Bookmark a wishlist for a browser
// @Tags saved
// @Accept json
// @Produce json
// @Param request body service.SaveInput true "Browser and wishlist"
// @Success 201 {object} object{message=string,saved=models.SavedWishlist}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /saved [post]
func (s *Server) SaveWishlist(c *fiber.Ctx) error {
	var req service.SaveInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	saved, err := s.saved.Save(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Wishlist saved",
		"saved":   saved,
	})
}

// RemoveSaved handles DELETE /api/saved/:browserId/:wishlistId
// @Summary Remove a saved wishlist
// @Tags saved
// @Produce json
// @Param browserId path string true "Browser ID (UUID)"
// @Param wishlistId path int true "Wishlist ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /saved/{browserId}/{wishlistId} [delete]
func (s *Server) RemoveSaved(c *fiber.Ctx) error {
	browserID, err := parseUUIDParam(c, "browserId")
	if err != nil {
		return nil
	}
	wishlistID, err := parseID(c, "wishlistId")
	if err != nil {
		return nil
	}

	if err := s.saved.Remove(c.UserContext(), browserID, wishlistID); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Wishlist removed from saved"})
}
