package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("subscription not found")

// SubscriptionRepo persists subscriptions as recipient email -> JSON array
// of followed account ids.
type SubscriptionRepo struct {
	client redis.UniversalClient
}

func NewSubscriptionRepo(client redis.UniversalClient) *SubscriptionRepo {
	return &SubscriptionRepo{client}
}

// Ping reports whether the backing store is reachable.
func (r *SubscriptionRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Save overwrites any existing subscription for the recipient.
func (r *SubscriptionRepo) Save(ctx context.Context, email string, accountIDs []string) error {
	raw, err := json.Marshal(accountIDs)
	if err != nil {
		return fmt.Errorf("marshal account ids: %w", err)
	}

	if err := r.client.Set(ctx, email, raw, 0).Err(); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepo) Get(ctx context.Context, email string) ([]string, error) {
	raw, err := r.client.Get(ctx, email).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	var accountIDs []string
	if err := json.Unmarshal([]byte(raw), &accountIDs); err != nil {
		return nil, fmt.Errorf("unmarshal account ids: %w", err)
	}

	return accountIDs, nil
}

// ListEmails returns the address of every known subscriber.
func (r *SubscriptionRepo) ListEmails(ctx context.Context) ([]string, error) {
	var emails []string

	iter := r.client.Scan(ctx, 0, "*", 0).Iterator()
	for iter.Next(ctx) {
		emails = append(emails, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	return emails, nil
}
