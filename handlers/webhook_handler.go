package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"streakzillaAPI/internal/logger"
	"streakzillaAPI/internal/types/profile"
	"streakzillaAPI/services"
)

const (
	maxWebhookBytes = 64 << 10
	// svix rejects deliveries whose timestamp drifts further than this.
	webhookTolerance = 5 * time.Minute
)

var (
	errMissingSignature = errors.New("missing svix headers")
	errStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
	errBadSignature     = errors.New("no matching signature")
)

type ClerkSyncer interface {
	SyncFromClerk(ctx context.Context, data profile.ClerkUserData) (*profile.Profile, error)
	DeleteByClerkID(ctx context.Context, clerkID string) error
}

type WebhookHandler struct {
	users  ClerkSyncer
	secret []byte
	now    func() time.Time
}

// NewWebhookHandler takes the Clerk signing secret as shown in the
// dashboard, with or without its whsec_ prefix.
func NewWebhookHandler(users ClerkSyncer, signingSecret string) (*WebhookHandler, error) {
	h := &WebhookHandler{users: users, now: time.Now}
	if signingSecret == "" {
		return h, nil
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(signingSecret, "whsec_"))
	if err != nil {
		return nil, fmt.Errorf("decode webhook secret: %w", err)
	}
	h.secret = key
	return h, nil
}

// verify checks the svix-signature header, a space separated list of
// "v1,<base64 hmac>" entries over "id.timestamp.body".
func (h *WebhookHandler) verify(header http.Header, body []byte) error {
	id := header.Get("svix-id")
	ts := header.Get("svix-timestamp")
	sigs := header.Get("svix-signature")
	if id == "" || ts == "" || sigs == "" {
		return errMissingSignature
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return errStaleTimestamp
	}
	if d := h.now().Sub(time.Unix(sec, 0)); d > webhookTolerance || d < -webhookTolerance {
		return errStaleTimestamp
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(id + "." + ts + "."))
	mac.Write(body)
	expected := []byte(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	for _, entry := range strings.Fields(sigs) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != "v1" {
			continue
		}
		if hmac.Equal(expected, []byte(sig)) {
			return nil
		}
	}
	return errBadSignature
}

func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	if h.secret == nil {
		logger.Log.Error("clerk webhook received but no signing secret is configured")
		respondWithError(w, http.StatusInternalServerError, "Webhook not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verify(r.Header, body); err != nil {
		logger.Log.Warn("rejected clerk webhook", zap.Error(err))
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event profile.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	switch event.Type {
	case "user.created", "user.updated":
		err = h.syncUser(ctx, event.Data)
	case "user.deleted":
		err = h.deleteUser(ctx, event.Data)
	default:
		logger.Log.Debug("unhandled clerk webhook", zap.String("type", event.Type))
	}
	if err != nil {
		respondWithServiceError(w, "clerk webhook "+event.Type, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) syncUser(ctx context.Context, data json.RawMessage) error {
	var u profile.ClerkUserData
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("unmarshal user data: %w", err)
	}
	_, err := h.users.SyncFromClerk(ctx, u)
	return err
}

func (h *WebhookHandler) deleteUser(ctx context.Context, data json.RawMessage) error {
	var u struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return fmt.Errorf("unmarshal user data: %w", err)
	}
	if u.ID == "" {
		return nil
	}
	// Redelivered deletes find nothing left to remove.
	if err := h.users.DeleteByClerkID(ctx, u.ID); err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	return nil
}
