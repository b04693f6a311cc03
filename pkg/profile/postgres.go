package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nextweekend/nextweekend/pkg/pg"
)

const profileColumns = `id, email, full_name, stripe_customer_id, subscription_id,
	subscription_status, subscription_tier, subscription_period_end,
	preferences, created_at, updated_at`

// PostgresStore is a Store backed by the profiles table through pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Profile, error) {
	return s.queryOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (s *PostgresStore) GetByCustomerID(ctx context.Context, customerID string) (*Profile, error) {
	return s.queryOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE stripe_customer_id = $1`, customerID)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.queryOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE lower(email) = $1`, NormalizeEmail(email))
}

func (s *PostgresStore) Insert(ctx context.Context, p Profile) (*Profile, error) {
	p.Email = NormalizeEmail(p.Email)
	if err := p.validate(); err != nil {
		return nil, err
	}
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	out, err := s.queryOne(ctx, `
		INSERT INTO profiles (id, email, full_name, preferences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+profileColumns,
		p.ID, p.Email, p.FullName, prefs, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if pg.IsDuplicateKeyError(err) {
		return nil, ErrAlreadyExists
	}
	return out, err
}

func (s *PostgresStore) UpdateSubscription(ctx context.Context, id string, f SubscriptionFields) (*Profile, error) {
	return s.queryOne(ctx, `
		UPDATE profiles SET
			stripe_customer_id = $2,
			subscription_id = $3,
			subscription_status = $4,
			subscription_tier = $5,
			subscription_period_end = $6,
			updated_at = $7
		WHERE id = $1
		RETURNING `+profileColumns,
		id, f.CustomerID, f.SubscriptionID, f.Status, f.Tier, f.PeriodEnd.UTC(), f.UpdatedAt.UTC(),
	)
}

func (s *PostgresStore) UpdatePreferences(ctx context.Context, id string, prefs Preferences, now time.Time) (*Profile, error) {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return s.queryOne(ctx, `
		UPDATE profiles SET preferences = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+profileColumns,
		id, raw, now.UTC(),
	)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, sql string, args ...any) (*Profile, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanProfile)
	switch {
	case err == nil:
		return p, nil
	case pg.IsNotFoundError(err):
		return nil, ErrNotFound
	case pg.IsDuplicateKeyError(err):
		return nil, err
	default:
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
}

func scanProfile(row pgx.CollectableRow) (*Profile, error) {
	var (
		p     Profile
		prefs []byte
	)
	err := row.Scan(
		&p.ID, &p.Email, &p.FullName, &p.StripeCustomerID, &p.SubscriptionID,
		&p.SubscriptionStatus, &p.SubscriptionTier, &p.SubscriptionPeriodEnd,
		&prefs, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, fmt.Errorf("decode preferences: %w", err)
		}
	}
	return &p, nil
}
