package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"giftshare/internal/models"
	"giftshare/internal/notifications"
	"giftshare/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createPublished builds a wishlist with one gift through the API and
// publishes it, returning the wishlist id, the gift id and the share token.
func createPublished(t *testing.T, app *fiber.App) (float64, float64, string) {
	t.Helper()

	status, w := doJSON(t, app, http.MethodPost, "/api/wishlists", map[string]any{
		"title": "Xmas", "owner_name": "Ann",
	})
	require.Equal(t, fiber.StatusCreated, status, w)
	wishlistID := idOf(t, w)

	status, g := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/gifts", wishlistID), map[string]any{
		"name": "Book", "priority": 1,
	})
	require.Equal(t, fiber.StatusCreated, status, g)
	giftID := idOf(t, g)

	status, p := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/publish", wishlistID), nil)
	require.Equal(t, fiber.StatusOK, status, p)
	token, _ := p["secret_token"].(string)
	require.NotEmpty(t, token)
	return wishlistID, giftID, token
}

func TestScenario_CreateAddPublish(t *testing.T) {
	app, _ := newTestServer(t, testConfig())

	status, w := doJSON(t, app, http.MethodPost, "/api/wishlists", map[string]any{
		"title": "Xmas", "owner_name": "Ann",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, false, w["is_published"])
	assert.Nil(t, w["secret_token"])
	id := idOf(t, w)

	status, _ = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/gifts", id), map[string]any{
		"name": "Book", "priority": 1,
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, p := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/publish", id), nil)
	require.Equal(t, fiber.StatusOK, status)
	token := p["secret_token"].(string)
	assert.Equal(t, true, p["is_published"])
	assert.NotNil(t, p["published_at"])
	assert.Equal(t, "http://localhost:5173/wishlist/"+token, p["public_url"])

	// Publishing again is refused and the token is unchanged.
	status, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/publish", id), nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "PERMISSION_DENIED", body["code"])

	status, got := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/wishlists/%.0f", id), nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, token, got["secret_token"])
}

func TestScenario_PublishWithoutGifts(t *testing.T) {
	app, _ := newTestServer(t, testConfig())

	_, w := doJSON(t, app, http.MethodPost, "/api/wishlists", map[string]any{
		"title": "Empty", "owner_name": "Ann",
	})
	id := idOf(t, w)

	status, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/publish", id), nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	_, got := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/wishlists/%.0f", id), nil)
	assert.Equal(t, false, got["is_published"])
}

func TestScenario_ReserveTwice(t *testing.T) {
	app, db := newTestServer(t, testConfig())
	_, giftID, token := createPublished(t, app)
	path := fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID)

	status, body := doJSON(t, app, http.MethodPost, path, map[string]any{"message": "  from Bob  "})
	require.Equal(t, fiber.StatusOK, status, body)
	gift := body["gift"].(map[string]any)
	assert.Equal(t, true, gift["is_reserved"])
	assert.Equal(t, "from Bob", gift["reservation_message"])
	assert.NotEmpty(t, body["message"])

	status, body = doJSON(t, app, http.MethodPost, path, map[string]any{"message": "late"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	var stored models.Gift
	require.NoError(t, db.First(&stored, uint(giftID)).Error)
	require.NotNil(t, stored.ReservationMessage)
	assert.Equal(t, "from Bob", *stored.ReservationMessage)
	assert.NotNil(t, stored.ReservedAt)
}

func TestScenario_PublicViewOfDraft(t *testing.T) {
	app, db := newTestServer(t, testConfig())
	testutil.CreateWishlist(t, db, "Draft")

	status, body := doJSON(t, app, http.MethodGet, "/api/public/"+unknownToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, _ = doJSON(t, app, http.MethodGet, "/api/public/null", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestReserve_Concurrent(t *testing.T) {
	app, db := newTestServer(t, testConfig())
	_, giftID, token := createPublished(t, app)
	path := fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID)

	const n = 20
	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, path,
				strings.NewReader(fmt.Sprintf(`{"message":"visitor %d"}`, i)))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				return
			}
			_ = resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	winner := -1
	conflicts := 0
	for i, s := range statuses {
		switch s {
		case fiber.StatusOK:
			assert.Equal(t, -1, winner, "more than one reservation succeeded")
			winner = i
		case fiber.StatusConflict:
			conflicts++
		default:
			t.Errorf("request %d: unexpected status %d", i, s)
		}
	}
	require.NotEqual(t, -1, winner)
	assert.Equal(t, n-1, conflicts)

	var stored models.Gift
	require.NoError(t, db.First(&stored, uint(giftID)).Error)
	require.NotNil(t, stored.ReservationMessage)
	assert.Equal(t, fmt.Sprintf("visitor %d", winner), *stored.ReservationMessage)
}

func TestReserve_Errors(t *testing.T) {
	app, db := newTestServer(t, testConfig())
	_, giftID, token := createPublished(t, app)

	other := testutil.CreateWishlist(t, db, "Other")
	foreign := testutil.CreateGift(t, db, other.ID, "Foreign", 0)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"bad token", fmt.Sprintf("/api/public/xyz/gifts/%.0f/reserve", giftID), "", fiber.StatusBadRequest},
		{"bad gift id", fmt.Sprintf("/api/public/%s/gifts/abc/reserve", token), "", fiber.StatusBadRequest},
		{"unknown token", fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", unknownToken, giftID), "", fiber.StatusNotFound},
		{"gift of another wishlist", fmt.Sprintf("/api/public/%s/gifts/%d/reserve", token, foreign.ID), "", fiber.StatusNotFound},
		{"unknown gift", fmt.Sprintf("/api/public/%s/gifts/9999/reserve", token), "", fiber.StatusNotFound},
		{"message too long", fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID),
			fmt.Sprintf(`{"message":%q}`, strings.Repeat("x", models.MaxReservationMessageLength+1)), fiber.StatusBadRequest},
		{"malformed body", fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID), "{", fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	// None of the failures reserved anything.
	var stored models.Gift
	require.NoError(t, db.First(&stored, uint(giftID)).Error)
	assert.False(t, stored.IsReserved)
}

func TestReserve_RateLimited(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.ReserveRateLimit = 2
	db := testutil.NewSQLiteDB(t)
	srv, err := NewServerWithDeps(cfg, db, nil, rdb)
	require.NoError(t, err)
	app := srv.App()

	_, giftID, token := createPublished(t, app)
	path := fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID)

	status, _ := doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	status, body := doJSON(t, app, http.MethodPost, path, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.Equal(t, "RATE_LIMITED", body["code"])
}

func TestReserve_FailClosedWithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg := testConfig()
	cfg.RateLimitFailClosed = true
	app, _ := newTestServer(t, cfg)

	_, giftID, token := createPublished(t, app)
	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID), nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/saved", map[string]any{
		"browser_id": testBrowserID, "wishlist_id": 1,
	})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}

func TestEditLock(t *testing.T) {
	app, _ := newTestServer(t, testConfig())
	wishlistID, giftID, _ := createPublished(t, app)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"update wishlist", http.MethodPut, fmt.Sprintf("/api/wishlists/%.0f", wishlistID), map[string]any{"title": "New"}},
		{"add gift", http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/gifts", wishlistID), map[string]any{"name": "Pen"}},
		{"update gift", http.MethodPut, fmt.Sprintf("/api/gifts/%.0f", giftID), map[string]any{"name": "Pen"}},
		{"delete gift", http.MethodDelete, fmt.Sprintf("/api/gifts/%.0f", giftID), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, fiber.StatusForbidden, status)
			assert.Equal(t, "PERMISSION_DENIED", body["code"])
		})
	}

	// Deletion of a published wishlist stays allowed.
	status, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/wishlists/%.0f", wishlistID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/wishlists/%.0f", wishlistID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestDraftEditing(t *testing.T) {
	app, _ := newTestServer(t, testConfig())

	_, w := doJSON(t, app, http.MethodPost, "/api/wishlists", map[string]any{
		"title": "Birthday", "owner_name": "Ann",
	})
	id := idOf(t, w)

	status, body := doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/wishlists/%.0f", id), map[string]any{})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Birthday", body["title"])

	status, body = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/wishlists/%.0f", id), map[string]any{"title": "Bday"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Bday", body["title"])
	assert.Equal(t, "Ann", body["owner_name"])

	status, body = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/wishlists/%.0f", id), map[string]any{"title": nil})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["details"], "title")

	_, g := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/wishlists/%.0f/gifts", id), map[string]any{
		"name": "Lamp", "price": 20.5, "notes": "blue",
	})
	giftID := idOf(t, g)

	status, body = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/gifts/%.0f", giftID), map[string]any{
		"notes": nil, "priority": 4,
	})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Nil(t, body["notes"])
	assert.EqualValues(t, 4, body["priority"])
	assert.EqualValues(t, 20.5, body["price"])

	status, _ = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/gifts/%.0f", giftID), map[string]any{"priority": 9})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/gifts/%.0f", giftID), nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/gifts/%.0f", giftID), nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCreateValidation(t *testing.T) {
	app, _ := newTestServer(t, testConfig())

	status, body := doJSON(t, app, http.MethodPost, "/api/wishlists", map[string]any{"title": "  "})
	assert.Equal(t, fiber.StatusBadRequest, status)
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "owner_name")

	status, _ = doJSON(t, app, http.MethodPost, "/api/wishlists/9999/gifts", map[string]any{"name": "Pen"})
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/wishlists/0", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestProjections(t *testing.T) {
	app, db := newTestServer(t, testConfig())
	wishlistID, giftID, token := createPublished(t, app)

	var g models.Gift
	require.NoError(t, db.First(&g, uint(giftID)).Error)
	testutil.CreateGift(t, db, uint(wishlistID), "Top", 5)

	status, body := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/wishlists/%.0f/gifts", wishlistID), nil)
	require.Equal(t, fiber.StatusOK, status)
	owner := body["gifts"].([]any)
	require.Len(t, owner, 2)
	assert.Equal(t, "Top", owner[0].(map[string]any)["name"])
	for _, item := range owner {
		m := item.(map[string]any)
		assert.NotContains(t, m, "is_reserved")
		assert.NotContains(t, m, "reservation_message")
		assert.NotContains(t, m, "reserved_at")
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/public/"+token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Xmas", body["title"])
	assert.Equal(t, "Ann", body["owner_name"])
	public := body["gifts"].([]any)
	require.Len(t, public, 2)
	for _, item := range public {
		m := item.(map[string]any)
		assert.Contains(t, m, "is_reserved")
		assert.NotContains(t, m, "wishlist_id")
		assert.NotContains(t, m, "created_at")
		assert.NotContains(t, m, "updated_at")
	}
}

func TestRandomGift(t *testing.T) {
	app, _ := newTestServer(t, testConfig())

	status, _ := doJSON(t, app, http.MethodGet, "/api/gifts/random", nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	_, giftID, _ := createPublished(t, app)
	status, body := doJSON(t, app, http.MethodGet, "/api/gifts/random", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, giftID, body["id"])
	assert.NotContains(t, body, "wishlist_id")
}

func TestRandomGift_FlagOff(t *testing.T) {
	cfg := testConfig()
	cfg.FeatureFlags = "random_gift=off,saved_wishlists=on"
	app, _ := newTestServer(t, cfg)
	createPublished(t, app)

	status, _ := doJSON(t, app, http.MethodGet, "/api/gifts/random", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPublish_AnnouncesWishlistAndReserveStaysSilent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewSQLiteDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, nil, rdb)
	require.NoError(t, err)
	app := srv.App()

	ctx := context.Background()
	sub := rdb.PSubscribe(ctx, "*")
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)
	messages := sub.Channel()

	_, giftID, token := createPublished(t, app)
	select {
	case msg := <-messages:
		assert.Equal(t, notifications.PublishedChannel, msg.Channel)
		assert.Contains(t, msg.Payload, `"type":"wishlist_published"`)
	case <-time.After(2 * time.Second):
		t.Fatal("publish was not announced")
	}

	status, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/public/%s/gifts/%.0f/reserve", token, giftID), nil)
	require.Equal(t, fiber.StatusOK, status)
	select {
	case msg := <-messages:
		t.Fatalf("unexpected event on %s: %s", msg.Channel, msg.Payload)
	case <-time.After(200 * time.Millisecond):
	}
}
