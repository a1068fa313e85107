package notifiers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlovric/postdigest.api/models"
)

func newTestMailer() *Mailer {
	return NewMailer("smtp.example.com", "587", "digest@example.com", "apikey", "secret")
}

func TestDigestEmail_Deterministic(t *testing.T) {
	mailer := newTestMailer()
	posts := []models.Post{
		{ID: "1", Text: "first post", AuthorName: "Jane", AuthorHandle: "jane", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Text: "second post", CreatedAt: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)},
	}

	first, err := mailer.DigestEmail("user@example.com", posts)
	require.NoError(t, err)
	second, err := mailer.DigestEmail("user@example.com", posts)
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
}

func TestDigestEmail_EscapesMarkupInPostText(t *testing.T) {
	mailer := newTestMailer()
	posts := []models.Post{
		{ID: "1", Text: `<script>alert("x")</script> & <b>bold</b>`, CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}

	mail, err := mailer.DigestEmail("user@example.com", posts)
	require.NoError(t, err)

	assert.NotContains(t, mail.Body, "<script>")
	assert.Contains(t, mail.Body, "&lt;script&gt;")
}

func TestDigestEmail_EmptyPostsRendersIndicator(t *testing.T) {
	mailer := newTestMailer()

	mail, err := mailer.DigestEmail("user@example.com", nil)
	require.NoError(t, err)

	assert.Contains(t, mail.Body, "No posts found for this period.")
	assert.Equal(t, "user@example.com", mail.To)
}

func TestDigestEmail_AuthorAttribution(t *testing.T) {
	mailer := newTestMailer()
	posts := []models.Post{
		{ID: "1", Text: "hello", AuthorName: "Jane Doe", AuthorHandle: "janedoe", CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{ID: "2", Text: "anonymous", CreatedAt: time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)},
	}

	mail, err := mailer.DigestEmail("user@example.com", posts)
	require.NoError(t, err)

	assert.Contains(t, mail.Body, "Jane Doe")
	assert.Contains(t, mail.Body, "@janedoe")
	assert.Contains(t, mail.Body, "https://twitter.com/i/web/status/1")
	assert.Contains(t, mail.Body, "anonymous")
}

func TestDigestEmail_SubjectCarriesDate(t *testing.T) {
	mailer := newTestMailer()

	mail, err := mailer.DigestEmail("user@example.com", nil)
	require.NoError(t, err)

	assert.Contains(t, mail.Subject, time.Now().Format("Jan 2, 2006"))
}

func TestConfirmationEmail_ListsAccounts(t *testing.T) {
	mailer := newTestMailer()

	mail, err := mailer.ConfirmationEmail("user@example.com", []string{"12345", "67890"})
	require.NoError(t, err)

	assert.Equal(t, "Subscription Confirmed!", mail.Subject)
	assert.Contains(t, mail.Body, "12345, 67890")
}
