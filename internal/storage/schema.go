package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id          TEXT PRIMARY KEY,
		external_id TEXT UNIQUE,
		name        TEXT NOT NULL,
		currency    TEXT,
		timezone    TEXT,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS campaigns (
		id                  TEXT PRIMARY KEY,
		external_id         TEXT UNIQUE,
		account_id          TEXT NOT NULL,
		name                TEXT NOT NULL,
		status              TEXT NOT NULL,
		objective           TEXT,
		daily_budget        DOUBLE PRECISION,
		lifetime_budget     DOUBLE PRECISION,
		start_at            TIMESTAMPTZ,
		stop_at             TIMESTAMPTZ,
		remote_sync_pending BOOLEAN NOT NULL DEFAULT FALSE,
		error_note          TEXT,
		deleted_at          TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaigns_account ON campaigns (account_id)`,
	`CREATE TABLE IF NOT EXISTS adsets (
		id                  TEXT PRIMARY KEY,
		external_id         TEXT UNIQUE,
		campaign_id         TEXT NOT NULL,
		name                TEXT NOT NULL,
		status              TEXT NOT NULL,
		optimization_goal   TEXT,
		billing_event       TEXT,
		bid_strategy        TEXT,
		bid_amount          DOUBLE PRECISION,
		targeting           JSONB,
		daily_budget        DOUBLE PRECISION,
		lifetime_budget     DOUBLE PRECISION,
		start_at            TIMESTAMPTZ,
		stop_at             TIMESTAMPTZ,
		remote_sync_pending BOOLEAN NOT NULL DEFAULT FALSE,
		error_note          TEXT,
		deleted_at          TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_adsets_campaign ON adsets (campaign_id)`,
	`CREATE TABLE IF NOT EXISTS creatives (
		id          TEXT PRIMARY KEY,
		external_id TEXT UNIQUE,
		ad_id       TEXT,
		name        TEXT,
		content     JSONB NOT NULL,
		status      TEXT NOT NULL,
		error_note  TEXT,
		deleted_at  TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ads (
		id                  TEXT PRIMARY KEY,
		external_id         TEXT UNIQUE,
		adset_id            TEXT NOT NULL,
		creative_id         TEXT NOT NULL,
		name                TEXT NOT NULL,
		status              TEXT NOT NULL,
		remote_sync_pending BOOLEAN NOT NULL DEFAULT FALSE,
		error_note          TEXT,
		deleted_at          TIMESTAMPTZ,
		created_at          TIMESTAMPTZ NOT NULL,
		updated_at          TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ads_adset ON ads (adset_id)`,
}

// Migrate applies the schema. Statements are idempotent; the function is safe
// to run at every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
