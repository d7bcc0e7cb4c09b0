// Package generator is the HTTP client for the external message-generator
// service that turns a user profile and a nearby shop into a personalized
// notification text.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AlphaCodeSWE/NearYou/internal/domain/profile"
	"github.com/AlphaCodeSWE/NearYou/internal/domain/shop"
)

// Client calls the message-generator service with a token-bucket limiter
// so a burst of position events cannot flood the LLM backend.
type Client struct {
	httpClient *http.Client
	url        string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(url string, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(requestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

type userPayload struct {
	Age        int    `json:"age"`
	Profession string `json:"profession"`
	Interests  string `json:"interests"`
}

type poiPayload struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ShopID      int    `json:"shop_id"`
}

type generateRequest struct {
	User userPayload `json:"user"`
	POI  poiPayload  `json:"poi"`
}

type generateResponse struct {
	Message string `json:"message"`
}

// Generate requests a notification text for the (user, shop) pair. Any
// transport error, non-200 status or malformed body is returned as an
// error; the caller decides how to degrade.
func (c *Client) Generate(ctx context.Context, p profile.Profile, m shop.Match) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	reqBody := generateRequest{
		User: userPayload{
			Age:        p.Age,
			Profession: p.Profession,
			Interests:  p.Interests,
		},
		POI: poiPayload{
			Name:        m.Name,
			Category:    m.Category,
			Description: fmt.Sprintf("Negozio a %.0fm di distanza", m.DistanceMeters),
			ShopID:      m.ShopID,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generator request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generator response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generator returned %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode generator response: %w", err)
	}

	message := strings.TrimSpace(result.Message)
	if message == "" {
		return "", fmt.Errorf("generator returned empty message")
	}

	return message, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
