package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/storage"
)

// DraftManager creates or locates local placeholder records before any
// remote call is attempted, so every publish is anchored to a durable local
// record even if the process dies mid-flight. It never talks to the remote
// platform.
type DraftManager struct {
	store  *storage.Store
	logger *zap.Logger
}

// NewDraftManager constructs a DraftManager over the given store.
func NewDraftManager(store *storage.Store, logger *zap.Logger) *DraftManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftManager{store: store, logger: logger}
}

// EnsureCampaign returns the existing record for providedID, or creates a
// fresh draft from the template. Repeated calls with the same providedID
// never create duplicates.
func (d *DraftManager) EnsureCampaign(ctx context.Context, providedID string, tmpl models.Campaign) (*models.Campaign, error) {
	if providedID != "" {
		existing, err := d.store.Campaigns.GetByID(ctx, providedID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	c := tmpl
	c.ID = providedID
	if c.ID == "" {
		c.ID = newID()
	}
	c.ExternalID = ""
	c.Status = models.StatusDraft
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := d.store.Campaigns.Upsert(ctx, &c); err != nil {
		return nil, err
	}
	d.logger.Debug("campaign draft created", zap.String("id", c.ID))
	return &c, nil
}

// EnsureAdSet returns the existing record for providedID, or creates a fresh
// draft from the template.
func (d *DraftManager) EnsureAdSet(ctx context.Context, providedID string, tmpl models.AdSet) (*models.AdSet, error) {
	if providedID != "" {
		existing, err := d.store.AdSets.GetByID(ctx, providedID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	a := tmpl
	a.ID = providedID
	if a.ID == "" {
		a.ID = newID()
	}
	a.ExternalID = ""
	a.Status = models.StatusDraft
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := d.store.AdSets.Upsert(ctx, &a); err != nil {
		return nil, err
	}
	d.logger.Debug("adset draft created", zap.String("id", a.ID))
	return &a, nil
}

// EnsureCreative returns the existing record for providedID, or creates a
// fresh draft from the template.
func (d *DraftManager) EnsureCreative(ctx context.Context, providedID string, tmpl models.Creative) (*models.Creative, error) {
	if providedID != "" {
		existing, err := d.store.Creatives.GetByID(ctx, providedID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	c := tmpl
	c.ID = providedID
	if c.ID == "" {
		c.ID = newID()
	}
	c.ExternalID = ""
	c.Status = models.StatusDraft
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := d.store.Creatives.Upsert(ctx, &c); err != nil {
		return nil, err
	}
	d.logger.Debug("creative draft created", zap.String("id", c.ID))
	return &c, nil
}

// EnsureAd returns the existing record for providedID, or creates a fresh
// draft from the template.
func (d *DraftManager) EnsureAd(ctx context.Context, providedID string, tmpl models.Ad) (*models.Ad, error) {
	if providedID != "" {
		existing, err := d.store.Ads.GetByID(ctx, providedID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	a := tmpl
	a.ID = providedID
	if a.ID == "" {
		a.ID = newID()
	}
	a.ExternalID = ""
	a.Status = models.StatusDraft
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if err := d.store.Ads.Upsert(ctx, &a); err != nil {
		return nil, err
	}
	d.logger.Debug("ad draft created", zap.String("id", a.ID))
	return &a, nil
}
