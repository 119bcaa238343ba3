package server

import (
	"giftshare/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPublicWishlist handles GET /api/public/:token
// @Summary Public wishlist
// @Description Visitor view of a published wishlist, including reservation state
// @Tags public
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} models.PublicWishlist
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /public/{token} [get]
func (s *Server) GetPublicWishlist(c *fiber.Ctx) error {
	token, err := parseUUIDParam(c, "token")
	if err != nil {
		return nil
	}

	view, err := s.wishlists.GetPublic(c.UserContext(), token)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

type reserveRequest struct {
	Message *string `json:"message"`
}

// ReserveGift handles POST /api/public/:token/gifts/:giftId/reserve
// @Summary Reserve a gift
// @Description Claim a gift of a published wishlist. Only the first of concurrent requests succeeds.
// @Tags public
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param giftId path int true "Gift ID"
// @Param request body reserveRequest false "Optional note for the owner"
// @Success 200 {object} object{message=string,gift=models.ReservedGift}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /public/{token}/gifts/{giftId}/reserve [post]
func (s *Server) ReserveGift(c *fiber.Ctx) error {
	token, err := parseUUIDParam(c, "token")
	if err != nil {
		return nil
	}
	giftID, err := parseID(c, "giftId")
	if err != nil {
		return nil
	}

	var req reserveRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return nil
		}
	}

	reserved, err := s.gifts.Reserve(c.UserContext(), service.ReserveInput{
		Token:   token,
		GiftID:  giftID,
		Message: req.Message,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Gift reserved successfully",
		"gift":    reserved,
	})
}
