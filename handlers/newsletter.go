package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mlovric/postdigest.api/digest"
	"github.com/mlovric/postdigest.api/sources"
)

type DigestSender interface {
	SendTo(ctx context.Context, recipient string, accountIDs []string) (digest.Digest, error)
	Broadcast(ctx context.Context) (digest.Summary, error)
}

type NewsletterHandler struct {
	builder DigestSender
}

func NewNewsletterHandler(builder DigestSender) *NewsletterHandler {
	return &NewsletterHandler{builder}
}

type sendReport struct {
	Recipient      string   `json:"recipient"`
	Posts          int      `json:"posts"`
	FailedAccounts []string `json:"failed_accounts,omitempty"`
}

// SendNewsletter serves both modes: with 'user_id' and 'recipient_email'
// query parameters it sends one targeted digest, with neither it broadcasts
// to every stored subscriber.
func (h *NewsletterHandler) SendNewsletter(w http.ResponseWriter, r *http.Request) Result {
	query := r.URL.Query()
	userID := strings.TrimSpace(query.Get("user_id"))
	recipient := strings.TrimSpace(query.Get("recipient_email"))

	if userID == "" && recipient == "" {
		summary, err := h.builder.Broadcast(r.Context())
		if err != nil {
			return InternalError(err, "broadcast digests: ")
		}
		return Ok(summary)
	}

	if userID == "" || recipient == "" {
		return BadRequest("Missing required query parameters: 'user_id' and 'recipient_email'.")
	}

	accountIDs := make([]string, 0, 1)
	for _, id := range strings.Split(userID, ",") {
		if id = strings.TrimSpace(id); id != "" {
			accountIDs = append(accountIDs, id)
		}
	}
	if len(accountIDs) == 0 {
		return BadRequest("'user_id' must contain at least one account id.")
	}

	result, err := h.builder.SendTo(r.Context(), recipient, accountIDs)
	if err != nil {
		// Nothing could be fetched at all; relay the upstream status.
		var upstream *sources.UpstreamError
		if errors.As(err, &upstream) {
			return Result{
				Code: upstream.StatusCode,
				Body: ErrorResponse{"Failed to fetch posts from feed API: " + upstream.Error()},
			}
		}
		return InternalError(err, "send digest: ")
	}

	return Ok(sendReport{
		Recipient:      recipient,
		Posts:          len(result.Posts),
		FailedAccounts: result.Failed,
	})
}
