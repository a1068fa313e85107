package notifiers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/mlovric/postdigest.api/metrics"
	"github.com/mlovric/postdigest.api/models"
)

//go:embed templates/digest.html templates/confirmation.html
var emailTemplates embed.FS

// html/template is used on purpose: post text comes from an external API
// and must not be able to break out of the document.
var mailTemplates = template.Must(template.New("emails").ParseFS(emailTemplates, "templates/*.html"))

type Mailer struct {
	smtpHost string
	smtpPort string
	from     string
	user     string
	password string
}

func NewMailer(smtpHost, smtpPort, from, user, password string) *Mailer {
	return &Mailer{
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		from:     from,
		user:     user,
		password: password,
	}
}

// DigestEmail renders the digest for one recipient. It does no I/O and is
// deterministic over the post list: identical posts produce an identical
// body. An empty post list renders a valid "no posts" digest.
func (m *Mailer) DigestEmail(to string, posts []models.Post) (models.Email, error) {
	type digestPost struct {
		Text      string
		URL       string
		Author    string
		Handle    string
		CreatedAt string
	}

	items := make([]digestPost, 0, len(posts))
	for _, post := range posts {
		items = append(items, digestPost{
			Text:      post.Text,
			URL:       "https://twitter.com/i/web/status/" + post.ID,
			Author:    post.AuthorName,
			Handle:    post.AuthorHandle,
			CreatedAt: post.CreatedAt.UTC().Format("Jan 2, 2006 15:04 UTC"),
		})
	}

	var buf bytes.Buffer
	tmplData := struct {
		Posts []digestPost
	}{
		Posts: items,
	}
	if err := mailTemplates.ExecuteTemplate(&buf, "digest.html", tmplData); err != nil {
		return models.Email{}, fmt.Errorf("render digest template: %w", err)
	}

	subject := "Your Post Digest - " + time.Now().Format("Jan 2, 2006")

	return models.Email{
		To:      to,
		Subject: subject,
		Body:    buf.String(),
	}, nil
}

// ConfirmationEmail renders the message sent right after a subscription is
// saved.
func (m *Mailer) ConfirmationEmail(to string, accountIDs []string) (models.Email, error) {
	var buf bytes.Buffer
	tmplData := struct {
		AccountIDs []string
	}{
		AccountIDs: accountIDs,
	}
	if err := mailTemplates.ExecuteTemplate(&buf, "confirmation.html", tmplData); err != nil {
		return models.Email{}, fmt.Errorf("render confirmation template: %w", err)
	}

	return models.Email{
		To:      to,
		Subject: "Subscription Confirmed!",
		Body:    buf.String(),
	}, nil
}

func (m *Mailer) Send(mail models.Email) error {
	message := fmt.Sprintf(`From: Post Digest <%s>
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, m.from, mail.To, mail.Subject, mail.Body)

	auth := smtp.PlainAuth("", m.user, m.password, m.smtpHost)
	addr := fmt.Sprintf("%s:%s", m.smtpHost, m.smtpPort)
	err := smtp.SendMail(addr, auth, m.from, []string{mail.To}, []byte(message))
	if err != nil {
		slog.Error("Failed to send email", "error", err)
		return err
	}

	metrics.EmailsSent.Inc()
	slog.Info("email sent", "recipient", mail.To, "subject", mail.Subject)
	return nil
}
