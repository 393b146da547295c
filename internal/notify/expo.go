package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"platechat-server/internal/config"
)

// TokenSource resolves a user id to their registered push token. Satisfied by
// *store.Registry.
type TokenSource interface {
	PushToken(ctx context.Context, userID string) (string, error)
}

// ExpoDispatcher sends previews to the Expo push API. Every failure path logs
// and returns; the caller never learns about delivery problems.
type ExpoDispatcher struct {
	tokens      TokenSource
	url         string
	accessToken string
	client      *http.Client
}

// NewExpoDispatcher creates an ExpoDispatcher from push configuration.
func NewExpoDispatcher(cfg config.PushConfig, tokens TokenSource) *ExpoDispatcher {
	return &ExpoDispatcher{
		tokens:      tokens,
		url:         cfg.ExpoURL,
		accessToken: cfg.AccessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type expoPushMessage struct {
	To    string            `json:"to"`
	Sound string            `json:"sound"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Notify looks up the user's push token and posts the preview to Expo.
// Users without a registered token are skipped silently.
func (d *ExpoDispatcher) Notify(ctx context.Context, userID, preview string, data map[string]string) {
	token, err := d.tokens.PushToken(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("push token lookup failed")
		return
	}
	if token == "" {
		log.Debug().Str("user", userID).Msg("no push token registered, skipping notification")
		return
	}

	payload, err := json.Marshal([]expoPushMessage{{
		To:    token,
		Sound: "default",
		Body:  preview,
		Data:  data,
	}})
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode push payload")
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(payload))
	if err != nil {
		log.Warn().Err(err).Msg("failed to build push request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if d.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+d.accessToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("push delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Warn().Int("status", resp.StatusCode).Str("user", userID).Msg("push delivery rejected")
	}
}
