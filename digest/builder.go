// Package digest builds and delivers post digests: it fans out to the feed
// API for every followed account, merges what came back, and hands the
// result to the mailer.
package digest

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mlovric/postdigest.api/metrics"
	"github.com/mlovric/postdigest.api/models"
)

const (
	fetchConcurrency = 4
	sendConcurrency  = 4
)

type FeedProvider interface {
	RecentPosts(ctx context.Context, accountID string) (models.Timeline, error)
}

type SubscriptionProvider interface {
	Get(ctx context.Context, email string) ([]string, error)
	ListEmails(ctx context.Context) ([]string, error)
}

type MailSender interface {
	DigestEmail(to string, posts []models.Post) (models.Email, error)
	Send(mail models.Email) error
}

// Digest is the merged result of one recipient's account fetches. Accounts
// whose fetch failed are listed in Failed; their posts are simply absent.
type Digest struct {
	Posts  []models.Post
	Failed []string
	// FirstErr is the first per-account fetch error, kept so callers can
	// surface the upstream status when nothing could be fetched at all.
	FirstErr error
}

// Summary is the outcome of one broadcast run.
type Summary struct {
	RunID  string   `json:"run_id"`
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

type Builder struct {
	logger *slog.Logger
	feed   FeedProvider
	store  SubscriptionProvider
	mailer MailSender
}

func NewBuilder(logger *slog.Logger, feed FeedProvider, store SubscriptionProvider, mailer MailSender) *Builder {
	return &Builder{
		logger: logger,
		feed:   feed,
		store:  store,
		mailer: mailer,
	}
}

// BuildDigest fetches every account's recent posts with bounded concurrency
// and merges them into one list sorted by creation time, newest first. The
// sort is stable and results are collected in account-list order, so posts
// with identical timestamps keep their relative fetch order. A failed
// account is skipped, never fatal.
func (b *Builder) BuildDigest(ctx context.Context, accountIDs []string) Digest {
	slots := make([][]models.Post, len(accountIDs))
	errs := make([]error, len(accountIDs))

	g := new(errgroup.Group)
	g.SetLimit(fetchConcurrency)
	for i, accountID := range accountIDs {
		i, accountID := i, accountID
		g.Go(func() error {
			timeline, err := b.feed.RecentPosts(ctx, accountID)
			if err != nil {
				errs[i] = err
				return nil
			}

			posts := timeline.Posts
			for j := range posts {
				if author, ok := timeline.Authors[posts[j].AuthorID]; ok {
					posts[j].AuthorName = author.Name
					posts[j].AuthorHandle = author.Username
				}
			}
			slots[i] = posts
			return nil
		})
	}
	_ = g.Wait()

	digest := Digest{}
	for i, accountID := range accountIDs {
		if errs[i] != nil {
			b.logger.Error("failed to fetch account, skipping", "account_id", accountID, "error", errs[i])
			metrics.FeedFetchFailures.Inc()
			digest.Failed = append(digest.Failed, accountID)
			if digest.FirstErr == nil {
				digest.FirstErr = errs[i]
			}
			continue
		}
		digest.Posts = append(digest.Posts, slots[i]...)
	}

	sort.SliceStable(digest.Posts, func(i, j int) bool {
		return digest.Posts[i].CreatedAt.After(digest.Posts[j].CreatedAt)
	})

	return digest
}

// SendTo builds and delivers one recipient's digest. A partial digest is
// still sent; only when every single account fetch failed does the run fail
// with the first fetch error, so nothing is sent off the back of a fully
// broken fetch.
func (b *Builder) SendTo(ctx context.Context, recipient string, accountIDs []string) (Digest, error) {
	digest := b.BuildDigest(ctx, accountIDs)

	if len(accountIDs) > 0 && len(digest.Failed) == len(accountIDs) {
		return digest, errors.Wrap(digest.FirstErr, "all account fetches failed")
	}

	mail, err := b.mailer.DigestEmail(recipient, digest.Posts)
	if err != nil {
		return digest, errors.Wrap(err, "render digest")
	}
	if err := b.mailer.Send(mail); err != nil {
		return digest, errors.Wrap(err, "send digest")
	}

	metrics.DigestsSent.Inc()
	b.logger.Info("digest sent",
		"recipient", recipient,
		"posts", len(digest.Posts),
		"failed_accounts", len(digest.Failed),
	)

	return digest, nil
}

// Broadcast runs the full pipeline for every known subscriber. Each
// recipient is its own failure boundary: an error is recorded in the
// summary and the remaining recipients still get their digest.
func (b *Builder) Broadcast(ctx context.Context) (Summary, error) {
	emails, err := b.store.ListEmails(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "broadcast: list subscribers")
	}

	summary := Summary{
		RunID: uuid.New().String(),
		Total: len(emails),
	}
	b.logger.Info("starting broadcast", "run_id", summary.RunID, "recipients", len(emails))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(sendConcurrency)
	for _, email := range emails {
		email := email
		g.Go(func() error {
			if err := b.sendOne(ctx, email); err != nil {
				b.logger.Error("failed to send digest", "run_id", summary.RunID, "recipient", email, "error", err)
				metrics.BroadcastFailures.Inc()
				mu.Lock()
				summary.Failed = append(summary.Failed, email)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			summary.Sent++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(summary.Failed)
	b.logger.Info("broadcast finished", "run_id", summary.RunID, "sent", summary.Sent, "failed", len(summary.Failed))

	return summary, nil
}

func (b *Builder) sendOne(ctx context.Context, email string) error {
	accountIDs, err := b.store.Get(ctx, email)
	if err != nil {
		return errors.Wrap(err, "read subscription")
	}

	_, err = b.SendTo(ctx, email, accountIDs)
	return err
}
