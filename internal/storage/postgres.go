package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/radiusdt/adbridge/internal/models"
)

// NewPostgresStore returns a Store backed by PostgreSQL repositories sharing
// one connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Accounts:  NewPostgresAccountRepo(pool),
		Campaigns: NewPostgresCampaignRepo(pool),
		AdSets:    NewPostgresAdSetRepo(pool),
		Creatives: NewPostgresCreativeRepo(pool),
		Ads:       NewPostgresAdRepo(pool),
	}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// PostgresAccountRepo implements AccountRepo using PostgreSQL.
type PostgresAccountRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAccountRepo(pool *pgxpool.Pool) *PostgresAccountRepo {
	return &PostgresAccountRepo{pool: pool}
}

const accountColumns = `id, external_id, name, currency, timezone, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	var externalID, currency, timezone *string
	if err := row.Scan(&a.ID, &externalID, &a.Name, &currency, &timezone, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.ExternalID = derefString(externalID)
	a.Currency = derefString(currency)
	a.Timezone = derefString(timezone)
	return &a, nil
}

func (r *PostgresAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	if externalID == "" {
		return nil, nil
	}
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE external_id = $1`, externalID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by external id: %w", err)
	}
	return a, nil
}

func (r *PostgresAccountRepo) Upsert(ctx context.Context, a *models.Account) error {
	if a == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (id, external_id, name, currency, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			name = EXCLUDED.name,
			currency = EXCLUDED.currency,
			timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at
	`, a.ID, nullString(a.ExternalID), a.Name, nullString(a.Currency), nullString(a.Timezone), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *PostgresAccountRepo) ListAll(ctx context.Context) ([]*models.Account, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

const campaignColumns = `id, external_id, account_id, name, status, objective,
	daily_budget, lifetime_budget, start_at, stop_at,
	remote_sync_pending, error_note, deleted_at, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	var externalID, objective, errorNote *string
	var daily, lifetime *float64
	var startAt, stopAt *time.Time
	if err := row.Scan(
		&c.ID, &externalID, &c.AccountID, &c.Name, &c.Status, &objective,
		&daily, &lifetime, &startAt, &stopAt,
		&c.RemoteSyncPending, &errorNote, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ExternalID = derefString(externalID)
	c.Objective = models.CampaignObjective(derefString(objective))
	c.ErrorNote = derefString(errorNote)
	if daily != nil {
		c.Budget.Daily = *daily
	}
	if lifetime != nil {
		c.Budget.Lifetime = *lifetime
	}
	c.Schedule.StartAt = derefTime(startAt)
	c.Schedule.StopAt = derefTime(stopAt)
	return &c, nil
}

func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return c, nil
}

func (r *PostgresCampaignRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Campaign, error) {
	if externalID == "" {
		return nil, nil
	}
	c, err := scanCampaign(r.pool.QueryRow(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE external_id = $1`, externalID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign by external id: %w", err)
	}
	return c, nil
}

func (r *PostgresCampaignRepo) ListByAccount(ctx context.Context, accountID string, includeDeleted bool) ([]*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE account_id = $1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (
			id, external_id, account_id, name, status, objective,
			daily_budget, lifetime_budget, start_at, stop_at,
			remote_sync_pending, error_note, deleted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			objective = EXCLUDED.objective,
			daily_budget = EXCLUDED.daily_budget,
			lifetime_budget = EXCLUDED.lifetime_budget,
			start_at = EXCLUDED.start_at,
			stop_at = EXCLUDED.stop_at,
			remote_sync_pending = EXCLUDED.remote_sync_pending,
			error_note = EXCLUDED.error_note,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at
	`,
		c.ID, nullString(c.ExternalID), c.AccountID, c.Name, c.Status, nullString(string(c.Objective)),
		c.Budget.Daily, c.Budget.Lifetime, nullTime(c.Schedule.StartAt), nullTime(c.Schedule.StopAt),
		c.RemoteSyncPending, nullString(c.ErrorNote), c.DeletedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

func (r *PostgresCampaignRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	return updateManyStatus(ctx, r.pool, "campaigns", ids, patch)
}

func (r *PostgresCampaignRepo) SoftDelete(ctx context.Context, id, reason string) error {
	return softDelete(ctx, r.pool, "campaigns", id, reason)
}

// updateManyStatus applies a StatusPatch to a set of rows of any entity
// table. All entity tables share the status / error_note / deleted_at /
// remote_sync_pending columns.
func updateManyStatus(ctx context.Context, pool *pgxpool.Pool, table string, ids []string, patch StatusPatch) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	set := `updated_at = $2`
	args := []any{ids, now}
	if patch.Status != "" {
		args = append(args, string(patch.Status))
		set += fmt.Sprintf(`, status = $%d`, len(args))
		if patch.Status == models.StatusDeleted {
			args = append(args, now)
			set += fmt.Sprintf(`, deleted_at = $%d`, len(args))
		}
	}
	if patch.ErrorNote != "" {
		args = append(args, patch.ErrorNote)
		set += fmt.Sprintf(`, error_note = $%d`, len(args))
	}
	if patch.RemoteSyncPending != nil && table != "creatives" {
		args = append(args, *patch.RemoteSyncPending)
		set += fmt.Sprintf(`, remote_sync_pending = $%d`, len(args))
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ANY($1)`, table, set)
	if _, err := pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

func softDelete(ctx context.Context, pool *pgxpool.Pool, table, id, reason string) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(
		`UPDATE %s SET status = 'deleted', deleted_at = $2, error_note = COALESCE(NULLIF($3, ''), error_note), updated_at = $2 WHERE id = $1`,
		table,
	)
	if _, err := pool.Exec(ctx, query, id, now, reason); err != nil {
		return fmt.Errorf("soft delete %s: %w", table, err)
	}
	return nil
}

// PostgresAdSetRepo implements AdSetRepo using PostgreSQL.
type PostgresAdSetRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAdSetRepo(pool *pgxpool.Pool) *PostgresAdSetRepo {
	return &PostgresAdSetRepo{pool: pool}
}

const adsetColumns = `id, external_id, campaign_id, name, status,
	optimization_goal, billing_event, bid_strategy, bid_amount, targeting,
	daily_budget, lifetime_budget, start_at, stop_at,
	remote_sync_pending, error_note, deleted_at, created_at, updated_at`

func scanAdSet(row pgx.Row) (*models.AdSet, error) {
	var a models.AdSet
	var externalID, optGoal, billing, bidStrategy, errorNote *string
	var targetingJSON []byte
	var daily, lifetime *float64
	var startAt, stopAt *time.Time
	if err := row.Scan(
		&a.ID, &externalID, &a.CampaignID, &a.Name, &a.Status,
		&optGoal, &billing, &bidStrategy, &a.BidAmount, &targetingJSON,
		&daily, &lifetime, &startAt, &stopAt,
		&a.RemoteSyncPending, &errorNote, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.ExternalID = derefString(externalID)
	a.OptimizationGoal = models.OptimizationGoal(derefString(optGoal))
	a.BillingEvent = models.BillingEvent(derefString(billing))
	a.BidStrategy = models.BidStrategyType(derefString(bidStrategy))
	a.ErrorNote = derefString(errorNote)
	if daily != nil {
		a.Budget.Daily = *daily
	}
	if lifetime != nil {
		a.Budget.Lifetime = *lifetime
	}
	a.Schedule.StartAt = derefTime(startAt)
	a.Schedule.StopAt = derefTime(stopAt)
	if len(targetingJSON) > 0 {
		if err := json.Unmarshal(targetingJSON, &a.Targeting); err != nil {
			return nil, fmt.Errorf("parse targeting: %w", err)
		}
	}
	return &a, nil
}

func (r *PostgresAdSetRepo) GetByID(ctx context.Context, id string) (*models.AdSet, error) {
	a, err := scanAdSet(r.pool.QueryRow(ctx,
		`SELECT `+adsetColumns+` FROM adsets WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get adset: %w", err)
	}
	return a, nil
}

func (r *PostgresAdSetRepo) GetByExternalID(ctx context.Context, externalID string) (*models.AdSet, error) {
	if externalID == "" {
		return nil, nil
	}
	a, err := scanAdSet(r.pool.QueryRow(ctx,
		`SELECT `+adsetColumns+` FROM adsets WHERE external_id = $1`, externalID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get adset by external id: %w", err)
	}
	return a, nil
}

func (r *PostgresAdSetRepo) ListByCampaign(ctx context.Context, campaignID string, includeDeleted bool) ([]*models.AdSet, error) {
	query := `SELECT ` + adsetColumns + ` FROM adsets WHERE campaign_id = $1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list adsets: %w", err)
	}
	defer rows.Close()

	var adsets []*models.AdSet
	for rows.Next() {
		a, err := scanAdSet(rows)
		if err != nil {
			return nil, err
		}
		adsets = append(adsets, a)
	}
	return adsets, rows.Err()
}

func (r *PostgresAdSetRepo) Upsert(ctx context.Context, a *models.AdSet) error {
	if a == nil {
		return nil
	}
	targetingJSON, err := json.Marshal(a.Targeting)
	if err != nil {
		return fmt.Errorf("marshal targeting: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO adsets (
			id, external_id, campaign_id, name, status,
			optimization_goal, billing_event, bid_strategy, bid_amount, targeting,
			daily_budget, lifetime_budget, start_at, stop_at,
			remote_sync_pending, error_note, deleted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			campaign_id = EXCLUDED.campaign_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			optimization_goal = EXCLUDED.optimization_goal,
			billing_event = EXCLUDED.billing_event,
			bid_strategy = EXCLUDED.bid_strategy,
			bid_amount = EXCLUDED.bid_amount,
			targeting = EXCLUDED.targeting,
			daily_budget = EXCLUDED.daily_budget,
			lifetime_budget = EXCLUDED.lifetime_budget,
			start_at = EXCLUDED.start_at,
			stop_at = EXCLUDED.stop_at,
			remote_sync_pending = EXCLUDED.remote_sync_pending,
			error_note = EXCLUDED.error_note,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at
	`,
		a.ID, nullString(a.ExternalID), a.CampaignID, a.Name, a.Status,
		nullString(string(a.OptimizationGoal)), nullString(string(a.BillingEvent)),
		nullString(string(a.BidStrategy)), a.BidAmount, targetingJSON,
		a.Budget.Daily, a.Budget.Lifetime, nullTime(a.Schedule.StartAt), nullTime(a.Schedule.StopAt),
		a.RemoteSyncPending, nullString(a.ErrorNote), a.DeletedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert adset: %w", err)
	}
	return nil
}

func (r *PostgresAdSetRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	return updateManyStatus(ctx, r.pool, "adsets", ids, patch)
}

func (r *PostgresAdSetRepo) SoftDelete(ctx context.Context, id, reason string) error {
	return softDelete(ctx, r.pool, "adsets", id, reason)
}

// PostgresCreativeRepo implements CreativeRepo using PostgreSQL.
type PostgresCreativeRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCreativeRepo(pool *pgxpool.Pool) *PostgresCreativeRepo {
	return &PostgresCreativeRepo{pool: pool}
}

const creativeColumns = `id, external_id, ad_id, name, content, status, error_note, deleted_at, created_at, updated_at`

func scanCreative(row pgx.Row) (*models.Creative, error) {
	var c models.Creative
	var externalID, adID, name, errorNote *string
	var contentJSON []byte
	if err := row.Scan(
		&c.ID, &externalID, &adID, &name, &contentJSON, &c.Status,
		&errorNote, &c.DeletedAt, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.ExternalID = derefString(externalID)
	c.AdID = derefString(adID)
	c.Name = derefString(name)
	c.ErrorNote = derefString(errorNote)
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &c.Content); err != nil {
			return nil, fmt.Errorf("parse creative content: %w", err)
		}
	}
	return &c, nil
}

func (r *PostgresCreativeRepo) GetByID(ctx context.Context, id string) (*models.Creative, error) {
	c, err := scanCreative(r.pool.QueryRow(ctx,
		`SELECT `+creativeColumns+` FROM creatives WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get creative: %w", err)
	}
	return c, nil
}

func (r *PostgresCreativeRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Creative, error) {
	if externalID == "" {
		return nil, nil
	}
	c, err := scanCreative(r.pool.QueryRow(ctx,
		`SELECT `+creativeColumns+` FROM creatives WHERE external_id = $1`, externalID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get creative by external id: %w", err)
	}
	return c, nil
}

func (r *PostgresCreativeRepo) Upsert(ctx context.Context, c *models.Creative) error {
	if c == nil {
		return nil
	}
	contentJSON, err := json.Marshal(c.Content)
	if err != nil {
		return fmt.Errorf("marshal creative content: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO creatives (id, external_id, ad_id, name, content, status, error_note, deleted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			ad_id = EXCLUDED.ad_id,
			name = EXCLUDED.name,
			content = EXCLUDED.content,
			status = EXCLUDED.status,
			error_note = EXCLUDED.error_note,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at
	`,
		c.ID, nullString(c.ExternalID), nullString(c.AdID), nullString(c.Name),
		contentJSON, c.Status, nullString(c.ErrorNote), c.DeletedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert creative: %w", err)
	}
	return nil
}

func (r *PostgresCreativeRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	return updateManyStatus(ctx, r.pool, "creatives", ids, patch)
}

func (r *PostgresCreativeRepo) SoftDelete(ctx context.Context, id, reason string) error {
	return softDelete(ctx, r.pool, "creatives", id, reason)
}

// PostgresAdRepo implements AdRepo using PostgreSQL.
type PostgresAdRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAdRepo(pool *pgxpool.Pool) *PostgresAdRepo {
	return &PostgresAdRepo{pool: pool}
}

const adColumns = `id, external_id, adset_id, creative_id, name, status,
	remote_sync_pending, error_note, deleted_at, created_at, updated_at`

func scanAd(row pgx.Row) (*models.Ad, error) {
	var a models.Ad
	var externalID, errorNote *string
	if err := row.Scan(
		&a.ID, &externalID, &a.AdSetID, &a.CreativeID, &a.Name, &a.Status,
		&a.RemoteSyncPending, &errorNote, &a.DeletedAt, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.ExternalID = derefString(externalID)
	a.ErrorNote = derefString(errorNote)
	return &a, nil
}

func (r *PostgresAdRepo) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	a, err := scanAd(r.pool.QueryRow(ctx,
		`SELECT `+adColumns+` FROM ads WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ad: %w", err)
	}
	return a, nil
}

func (r *PostgresAdRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Ad, error) {
	if externalID == "" {
		return nil, nil
	}
	a, err := scanAd(r.pool.QueryRow(ctx,
		`SELECT `+adColumns+` FROM ads WHERE external_id = $1`, externalID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ad by external id: %w", err)
	}
	return a, nil
}

func (r *PostgresAdRepo) ListByAdSet(ctx context.Context, adsetID string, includeDeleted bool) ([]*models.Ad, error) {
	query := `SELECT ` + adColumns + ` FROM ads WHERE adset_id = $1`
	if !includeDeleted {
		query += ` AND status <> 'deleted'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, adsetID)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}
	defer rows.Close()

	var ads []*models.Ad
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

func (r *PostgresAdRepo) Upsert(ctx context.Context, a *models.Ad) error {
	if a == nil {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ads (
			id, external_id, adset_id, creative_id, name, status,
			remote_sync_pending, error_note, deleted_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			adset_id = EXCLUDED.adset_id,
			creative_id = EXCLUDED.creative_id,
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			remote_sync_pending = EXCLUDED.remote_sync_pending,
			error_note = EXCLUDED.error_note,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at
	`,
		a.ID, nullString(a.ExternalID), a.AdSetID, a.CreativeID, a.Name, a.Status,
		a.RemoteSyncPending, nullString(a.ErrorNote), a.DeletedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert ad: %w", err)
	}
	return nil
}

func (r *PostgresAdRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	return updateManyStatus(ctx, r.pool, "ads", ids, patch)
}

func (r *PostgresAdRepo) SoftDelete(ctx context.Context, id, reason string) error {
	return softDelete(ctx, r.pool, "ads", id, reason)
}
