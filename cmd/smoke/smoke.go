package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

type wishlistResp struct {
	ID          uint    `json:"id"`
	IsPublished bool    `json:"is_published"`
	SecretToken *string `json:"secret_token"`
	PublicURL   string  `json:"public_url"`
}

type giftResp struct {
	ID uint `json:"id"`
}

type publicResp struct {
	Title string `json:"title"`
	Gifts []struct {
		ID         uint `json:"id"`
		IsReserved bool `json:"is_reserved"`
	} `json:"gifts"`
}

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Report summarizes a smoke run.
type Report struct {
	WishlistID uint
	Token      string
	Reserved   int
	Conflicts  int
}

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL+"/api").
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second).
		SetError(&errorResp{})
}

func expect(resp *resty.Response, err error, status int, step string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if resp.StatusCode() != status {
		return fmt.Errorf("%s: got status %d, want %d: %s", step, resp.StatusCode(), status, resp.String())
	}
	return nil
}

func run(ctx context.Context, cl *resty.Client, burst int) (*Report, error) {
	var w wishlistResp
	resp, err := cl.R().SetContext(ctx).
		SetBody(map[string]any{"title": "Smoke test", "owner_name": "Smoke"}).
		SetResult(&w).
		Post("/wishlists")
	if err := expect(resp, err, http.StatusCreated, "create wishlist"); err != nil {
		return nil, err
	}

	resp, err = cl.R().SetContext(ctx).Post(fmt.Sprintf("/wishlists/%d/publish", w.ID))
	if err := expect(resp, err, http.StatusBadRequest, "publish empty wishlist"); err != nil {
		return nil, err
	}

	var gift giftResp
	for i, name := range []string{"Kettle", "Notebook"} {
		resp, err = cl.R().SetContext(ctx).
			SetBody(map[string]any{"name": name, "priority": i + 1}).
			SetResult(&gift).
			Post(fmt.Sprintf("/wishlists/%d/gifts", w.ID))
		if err := expect(resp, err, http.StatusCreated, "add gift"); err != nil {
			return nil, err
		}
	}

	var published wishlistResp
	resp, err = cl.R().SetContext(ctx).SetResult(&published).
		Post(fmt.Sprintf("/wishlists/%d/publish", w.ID))
	if err := expect(resp, err, http.StatusOK, "publish"); err != nil {
		return nil, err
	}
	if published.SecretToken == nil || *published.SecretToken == "" {
		return nil, fmt.Errorf("publish: no token in response")
	}
	token := *published.SecretToken

	resp, err = cl.R().SetContext(ctx).
		SetBody(map[string]any{"title": "Changed"}).
		Put(fmt.Sprintf("/wishlists/%d", w.ID))
	if err := expect(resp, err, http.StatusForbidden, "edit published wishlist"); err != nil {
		return nil, err
	}

	var view publicResp
	resp, err = cl.R().SetContext(ctx).SetResult(&view).Get("/public/" + token)
	if err := expect(resp, err, http.StatusOK, "public view"); err != nil {
		return nil, err
	}
	if len(view.Gifts) != 2 {
		return nil, fmt.Errorf("public view: got %d gifts, want 2", len(view.Gifts))
	}

	report := &Report{WishlistID: w.ID, Token: token}
	statuses := make([]int, burst)
	var wg sync.WaitGroup
	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := cl.R().SetContext(ctx).
				SetBody(map[string]any{"message": fmt.Sprintf("smoke %d", i)}).
				Post(fmt.Sprintf("/public/%s/gifts/%d/reserve", token, gift.ID))
			if err == nil {
				statuses[i] = r.StatusCode()
			}
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		switch status {
		case http.StatusOK:
			report.Reserved++
		case http.StatusConflict, http.StatusTooManyRequests:
			report.Conflicts++
		default:
			return report, fmt.Errorf("reserve attempt %d: unexpected status %d", i, status)
		}
	}
	if report.Reserved != 1 {
		return report, fmt.Errorf("reserve burst: %d successes, want exactly 1", report.Reserved)
	}

	resp, err = cl.R().SetContext(ctx).Delete(fmt.Sprintf("/wishlists/%d", w.ID))
	if err := expect(resp, err, http.StatusOK, "delete wishlist"); err != nil {
		return report, err
	}
	return report, nil
}
