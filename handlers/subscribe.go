package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mlovric/postdigest.api/models"
)

type SubscriptionStore interface {
	Save(ctx context.Context, email string, accountIDs []string) error
}

type ConfirmationMailer interface {
	ConfirmationEmail(to string, accountIDs []string) (models.Email, error)
	Send(mail models.Email) error
}

type SubscribeHandler struct {
	store  SubscriptionStore
	mailer ConfirmationMailer
}

func NewSubscribeHandler(store SubscriptionStore, mailer ConfirmationMailer) *SubscribeHandler {
	return &SubscribeHandler{
		store:  store,
		mailer: mailer,
	}
}

type subscribeRequest struct {
	// UserIDs accepts either a JSON array of strings or a single
	// comma-separated string.
	UserIDs        json.RawMessage `json:"user_ids"`
	RecipientEmail string          `json:"recipient_email"`
}

func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) Result {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return BadRequest("Invalid request.")
	}

	recipient := strings.TrimSpace(req.RecipientEmail)
	if recipient == "" {
		return BadRequest("'recipient_email' is required.")
	}

	accountIDs, ok := parseAccountIDs(req.UserIDs)
	if !ok {
		return BadRequest("'user_ids' must be a list of ids or a comma-separated string.")
	}
	if len(accountIDs) == 0 {
		return BadRequest("'user_ids' must contain at least one account id.")
	}

	if err := h.store.Save(r.Context(), recipient, accountIDs); err != nil {
		return InternalError(err, "save subscription: ")
	}

	slog.Info("subscription saved", "recipient", recipient, "accounts", len(accountIDs))

	// The subscription is already persisted; a failed confirmation email
	// must not fail the request.
	if mail, err := h.mailer.ConfirmationEmail(recipient, accountIDs); err != nil {
		slog.Error("failed to build confirmation email", "recipient", recipient, "error", err)
	} else if err := h.mailer.Send(mail); err != nil {
		slog.Error("failed to send confirmation email", "recipient", recipient, "error", err)
	}

	return Ok(MessageResponse{"Subscription successful!"})
}

// parseAccountIDs normalizes the user_ids field: a JSON array of strings or
// a single comma-separated string, with every element trimmed and empty
// elements dropped.
func parseAccountIDs(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return nil, false
		}
		list = strings.Split(joined, ",")
	}

	accountIDs := make([]string, 0, len(list))
	for _, id := range list {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		accountIDs = append(accountIDs, id)
	}

	return accountIDs, true
}
