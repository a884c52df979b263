package storage

import (
	"context"
	"sync"
	"time"

	"github.com/radiusdt/adbridge/internal/models"
)

// NewMemoryStore returns a Store backed entirely by in-memory repositories.
// Used when PostgreSQL is unavailable and throughout the test suite.
func NewMemoryStore() *Store {
	return &Store{
		Accounts:  NewInMemoryAccountRepo(),
		Campaigns: NewInMemoryCampaignRepo(),
		AdSets:    NewInMemoryAdSetRepo(),
		Creatives: NewInMemoryCreativeRepo(),
		Ads:       NewInMemoryAdRepo(),
	}
}

// InMemoryAccountRepo stores accounts in a map keyed by local id.
type InMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewInMemoryAccountRepo() *InMemoryAccountRepo {
	return &InMemoryAccountRepo{accounts: make(map[string]*models.Account)}
}

func (r *InMemoryAccountRepo) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryAccountRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Account, error) {
	if externalID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ExternalID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryAccountRepo) Upsert(ctx context.Context, a *models.Account) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *InMemoryAccountRepo) ListAll(ctx context.Context) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]*models.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		res = append(res, &cp)
	}
	return res, nil
}

// InMemoryCampaignRepo stores campaigns in a map keyed by local id.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

func NewInMemoryCampaignRepo() *InMemoryCampaignRepo {
	return &InMemoryCampaignRepo{campaigns: make(map[string]*models.Campaign)}
}

func (r *InMemoryCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryCampaignRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Campaign, error) {
	if externalID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.campaigns {
		if c.ExternalID == externalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryCampaignRepo) ListByAccount(ctx context.Context, accountID string, includeDeleted bool) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.Campaign
	for _, c := range r.campaigns {
		if c.AccountID != accountID {
			continue
		}
		if !includeDeleted && c.Status.Terminal() {
			continue
		}
		cp := *c
		res = append(res, &cp)
	}
	return res, nil
}

func (r *InMemoryCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *InMemoryCampaignRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range ids {
		c, ok := r.campaigns[id]
		if !ok {
			continue
		}
		applyCampaignPatch(c, patch, now)
	}
	return nil
}

func (r *InMemoryCampaignRepo) SoftDelete(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	c.Status = models.StatusDeleted
	c.DeletedAt = &now
	if reason != "" {
		c.ErrorNote = reason
	}
	c.UpdatedAt = now
	return nil
}

func applyCampaignPatch(c *models.Campaign, patch StatusPatch, now time.Time) {
	if patch.Status != "" {
		c.Status = patch.Status
		if patch.Status == models.StatusDeleted {
			c.DeletedAt = &now
		}
	}
	if patch.ErrorNote != "" {
		c.ErrorNote = patch.ErrorNote
	}
	if patch.RemoteSyncPending != nil {
		c.RemoteSyncPending = *patch.RemoteSyncPending
	}
	c.UpdatedAt = now
}

// InMemoryAdSetRepo stores ad sets in a map keyed by local id.
type InMemoryAdSetRepo struct {
	mu     sync.RWMutex
	adsets map[string]*models.AdSet
}

func NewInMemoryAdSetRepo() *InMemoryAdSetRepo {
	return &InMemoryAdSetRepo{adsets: make(map[string]*models.AdSet)}
}

func (r *InMemoryAdSetRepo) GetByID(ctx context.Context, id string) (*models.AdSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.adsets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryAdSetRepo) GetByExternalID(ctx context.Context, externalID string) (*models.AdSet, error) {
	if externalID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.adsets {
		if a.ExternalID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryAdSetRepo) ListByCampaign(ctx context.Context, campaignID string, includeDeleted bool) ([]*models.AdSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.AdSet
	for _, a := range r.adsets {
		if a.CampaignID != campaignID {
			continue
		}
		if !includeDeleted && a.Status.Terminal() {
			continue
		}
		cp := *a
		res = append(res, &cp)
	}
	return res, nil
}

func (r *InMemoryAdSetRepo) Upsert(ctx context.Context, a *models.AdSet) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.adsets[a.ID] = &cp
	return nil
}

func (r *InMemoryAdSetRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range ids {
		a, ok := r.adsets[id]
		if !ok {
			continue
		}
		if patch.Status != "" {
			a.Status = patch.Status
			if patch.Status == models.StatusDeleted {
				a.DeletedAt = &now
			}
		}
		if patch.ErrorNote != "" {
			a.ErrorNote = patch.ErrorNote
		}
		if patch.RemoteSyncPending != nil {
			a.RemoteSyncPending = *patch.RemoteSyncPending
		}
		a.UpdatedAt = now
	}
	return nil
}

func (r *InMemoryAdSetRepo) SoftDelete(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adsets[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	a.Status = models.StatusDeleted
	a.DeletedAt = &now
	if reason != "" {
		a.ErrorNote = reason
	}
	a.UpdatedAt = now
	return nil
}

// InMemoryCreativeRepo stores creatives in a map keyed by local id.
type InMemoryCreativeRepo struct {
	mu        sync.RWMutex
	creatives map[string]*models.Creative
}

func NewInMemoryCreativeRepo() *InMemoryCreativeRepo {
	return &InMemoryCreativeRepo{creatives: make(map[string]*models.Creative)}
}

func (r *InMemoryCreativeRepo) GetByID(ctx context.Context, id string) (*models.Creative, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.creatives[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryCreativeRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Creative, error) {
	if externalID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.creatives {
		if c.ExternalID == externalID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryCreativeRepo) Upsert(ctx context.Context, c *models.Creative) error {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.creatives[c.ID] = &cp
	return nil
}

func (r *InMemoryCreativeRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range ids {
		c, ok := r.creatives[id]
		if !ok {
			continue
		}
		if patch.Status != "" {
			c.Status = patch.Status
			if patch.Status == models.StatusDeleted {
				c.DeletedAt = &now
			}
		}
		if patch.ErrorNote != "" {
			c.ErrorNote = patch.ErrorNote
		}
		c.UpdatedAt = now
	}
	return nil
}

func (r *InMemoryCreativeRepo) SoftDelete(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creatives[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	c.Status = models.StatusDeleted
	c.DeletedAt = &now
	if reason != "" {
		c.ErrorNote = reason
	}
	c.UpdatedAt = now
	return nil
}

// InMemoryAdRepo stores ads in a map keyed by local id.
type InMemoryAdRepo struct {
	mu  sync.RWMutex
	ads map[string]*models.Ad
}

func NewInMemoryAdRepo() *InMemoryAdRepo {
	return &InMemoryAdRepo{ads: make(map[string]*models.Ad)}
}

func (r *InMemoryAdRepo) GetByID(ctx context.Context, id string) (*models.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.ads[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryAdRepo) GetByExternalID(ctx context.Context, externalID string) (*models.Ad, error) {
	if externalID == "" {
		return nil, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.ads {
		if a.ExternalID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryAdRepo) ListByAdSet(ctx context.Context, adsetID string, includeDeleted bool) ([]*models.Ad, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []*models.Ad
	for _, a := range r.ads {
		if a.AdSetID != adsetID {
			continue
		}
		if !includeDeleted && a.Status.Terminal() {
			continue
		}
		cp := *a
		res = append(res, &cp)
	}
	return res, nil
}

func (r *InMemoryAdRepo) Upsert(ctx context.Context, a *models.Ad) error {
	if a == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.ads[a.ID] = &cp
	return nil
}

func (r *InMemoryAdRepo) UpdateMany(ctx context.Context, ids []string, patch StatusPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, id := range ids {
		a, ok := r.ads[id]
		if !ok {
			continue
		}
		if patch.Status != "" {
			a.Status = patch.Status
			if patch.Status == models.StatusDeleted {
				a.DeletedAt = &now
			}
		}
		if patch.ErrorNote != "" {
			a.ErrorNote = patch.ErrorNote
		}
		if patch.RemoteSyncPending != nil {
			a.RemoteSyncPending = *patch.RemoteSyncPending
		}
		a.UpdatedAt = now
	}
	return nil
}

func (r *InMemoryAdRepo) SoftDelete(ctx context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.ads[id]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	a.Status = models.StatusDeleted
	a.DeletedAt = &now
	if reason != "" {
		a.ErrorNote = reason
	}
	a.UpdatedAt = now
	return nil
}
