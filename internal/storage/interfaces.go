package storage

import (
	"context"

	"github.com/radiusdt/adbridge/internal/models"
)

// StatusPatch is the partial update applied by UpdateMany. Nil fields are
// left untouched.
type StatusPatch struct {
	Status            models.Status
	ErrorNote         string
	RemoteSyncPending *bool
}

// Repositories return (nil, nil) for records that do not exist; errors are
// reserved for infrastructure failures.

// AccountRepo defines operations for account storage.
type AccountRepo interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Account, error)
	Upsert(ctx context.Context, a *models.Account) error
	ListAll(ctx context.Context) ([]*models.Account, error)
}

// CampaignRepo defines operations for campaign storage.
type CampaignRepo interface {
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Campaign, error)
	ListByAccount(ctx context.Context, accountID string, includeDeleted bool) ([]*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
	UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error
	SoftDelete(ctx context.Context, id, reason string) error
}

// AdSetRepo defines operations for ad set storage.
type AdSetRepo interface {
	GetByID(ctx context.Context, id string) (*models.AdSet, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.AdSet, error)
	ListByCampaign(ctx context.Context, campaignID string, includeDeleted bool) ([]*models.AdSet, error)
	Upsert(ctx context.Context, a *models.AdSet) error
	UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error
	SoftDelete(ctx context.Context, id, reason string) error
}

// CreativeRepo defines operations for creative storage.
type CreativeRepo interface {
	GetByID(ctx context.Context, id string) (*models.Creative, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Creative, error)
	Upsert(ctx context.Context, c *models.Creative) error
	UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error
	SoftDelete(ctx context.Context, id, reason string) error
}

// AdRepo defines operations for ad storage.
type AdRepo interface {
	GetByID(ctx context.Context, id string) (*models.Ad, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Ad, error)
	ListByAdSet(ctx context.Context, adsetID string, includeDeleted bool) ([]*models.Ad, error)
	Upsert(ctx context.Context, a *models.Ad) error
	UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error
	SoftDelete(ctx context.Context, id, reason string) error
}

// AuditStore records append-only audit events for publishes, compensations
// and sync runs.
type AuditStore interface {
	Append(ctx context.Context, ev *models.AuditEvent) error
}

// Store bundles the per-kind repositories behind one handle.
type Store struct {
	Accounts  AccountRepo
	Campaigns CampaignRepo
	AdSets    AdSetRepo
	Creatives CreativeRepo
	Ads       AdRepo
}
