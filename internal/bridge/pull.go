package bridge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
)

// SyncAccount pulls the full remote entity snapshot for one account and
// reconciles local state toward it: remote records are upserted keyed by
// external id, records whose remote parent is unknown locally are skipped,
// and local records that carry an external id absent from the snapshot are
// tombstoned. Running it twice in a row converges: the second pass is a
// no-op apart from timestamps.
func (s *Service) SyncAccount(ctx context.Context, accountExternalID string, creds platform.Credentials) (*models.SyncReport, error) {
	if err := creds.Validate(); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}
	account, err := s.store.Accounts.GetByExternalID(ctx, accountExternalID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountExternalID)
	}

	report := &models.SyncReport{AccountExternalID: accountExternalID}

	remoteCampaigns, err := s.fetchAllCampaigns(ctx, creds, accountExternalID)
	if err != nil {
		return s.syncFailed(ctx, account, report, fmt.Errorf("list campaigns: %w", err))
	}
	remoteAdSets, err := s.fetchAllAdSets(ctx, creds, accountExternalID)
	if err != nil {
		return s.syncFailed(ctx, account, report, fmt.Errorf("list adsets: %w", err))
	}
	remoteAds, err := s.fetchAllAds(ctx, creds, accountExternalID)
	if err != nil {
		return s.syncFailed(ctx, account, report, fmt.Errorf("list ads: %w", err))
	}
	report.Campaigns.Fetched = len(remoteCampaigns)
	report.AdSets.Fetched = len(remoteAdSets)
	report.Ads.Fetched = len(remoteAds)

	// Parents before children so the local id maps are complete when the
	// children need remapping.
	campaignLocal, err := s.mergeCampaigns(ctx, account, remoteCampaigns, &report.Campaigns)
	if err != nil {
		return s.syncFailed(ctx, account, report, err)
	}
	adsetLocal, err := s.mergeAdSets(ctx, remoteAdSets, campaignLocal, &report.AdSets)
	if err != nil {
		return s.syncFailed(ctx, account, report, err)
	}
	seenAds, err := s.mergeAds(ctx, remoteAds, adsetLocal, &report.Ads)
	if err != nil {
		return s.syncFailed(ctx, account, report, err)
	}

	seenCampaigns := make(map[string]bool, len(remoteCampaigns))
	for _, rc := range remoteCampaigns {
		seenCampaigns[rc.ID] = true
	}
	seenAdSets := make(map[string]bool, len(remoteAdSets))
	for _, ra := range remoteAdSets {
		seenAdSets[ra.ID] = true
	}

	if err := s.tombstoneMissing(ctx, account, seenCampaigns, seenAdSets, seenAds, report); err != nil {
		return s.syncFailed(ctx, account, report, err)
	}

	s.recordAudit(ctx, models.AuditEvent{
		Type:      models.AuditSyncRun,
		AccountID: account.ID,
		Message: fmt.Sprintf("campaigns=%d adsets=%d ads=%d",
			report.Campaigns.Upserted, report.AdSets.Upserted, report.Ads.Upserted),
	})
	if s.metrics != nil {
		s.metrics.RecordSyncRun("succeeded")
	}
	s.logger.Info("account synced",
		zap.String("account_external_id", accountExternalID),
		zap.Int("campaigns_fetched", report.Campaigns.Fetched),
		zap.Int("adsets_fetched", report.AdSets.Fetched),
		zap.Int("ads_fetched", report.Ads.Fetched),
	)
	return report, nil
}

func (s *Service) syncFailed(ctx context.Context, account *models.Account, report *models.SyncReport, err error) (*models.SyncReport, error) {
	if s.metrics != nil {
		s.metrics.RecordSyncRun("failed")
	}
	s.recordAudit(ctx, models.AuditEvent{
		Type:      models.AuditSyncRun,
		AccountID: account.ID,
		Message:   "failed: " + err.Error(),
	})
	return report, err
}

func (s *Service) fetchAllCampaigns(ctx context.Context, creds platform.Credentials, accountExternalID string) ([]platform.RemoteCampaign, error) {
	var all []platform.RemoteCampaign
	cursor := ""
	for {
		page, next, err := s.remote.ListCampaigns(ctx, creds, accountExternalID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (s *Service) fetchAllAdSets(ctx context.Context, creds platform.Credentials, accountExternalID string) ([]platform.RemoteAdSet, error) {
	var all []platform.RemoteAdSet
	cursor := ""
	for {
		page, next, err := s.remote.ListAdSets(ctx, creds, accountExternalID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func (s *Service) fetchAllAds(ctx context.Context, creds platform.Credentials, accountExternalID string) ([]platform.RemoteAd, error) {
	var all []platform.RemoteAd
	cursor := ""
	for {
		page, next, err := s.remote.ListAds(ctx, creds, accountExternalID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

// mergeCampaigns upserts every remote campaign and returns the remote id to
// local id map the ad set pass keys off.
func (s *Service) mergeCampaigns(ctx context.Context, account *models.Account, remotes []platform.RemoteCampaign, report *models.SyncKindReport) (map[string]string, error) {
	localByRemote := make(map[string]string, len(remotes))
	for _, rc := range remotes {
		local, err := s.store.Campaigns.GetByExternalID(ctx, rc.ID)
		if err != nil {
			return nil, err
		}
		if local == nil {
			local = &models.Campaign{ID: newID(), ExternalID: rc.ID, AccountID: account.ID}
		}
		local.AccountID = account.ID
		local.Name = rc.Name
		local.Status = platform.StatusFromRemote(rc.Status)
		if rc.Objective != "" {
			local.Objective = models.CampaignObjective(rc.Objective)
		}
		local.Budget = models.Budget{Daily: rc.DailyBudget, Lifetime: rc.LifetimeBudget}
		local.Schedule = models.Schedule{
			StartAt: parseWireTime(rc.StartTime),
			StopAt:  parseWireTime(rc.StopTime),
		}
		local.RemoteSyncPending = false
		local.DeletedAt = nil
		if err := s.store.Campaigns.Upsert(ctx, local); err != nil {
			return nil, fmt.Errorf("upsert synced campaign %s: %w", rc.ID, err)
		}
		localByRemote[rc.ID] = local.ID
		report.Upserted++
		if s.metrics != nil {
			s.metrics.RecordSyncUpsert(string(models.KindCampaign))
		}
	}
	return localByRemote, nil
}

func (s *Service) mergeAdSets(ctx context.Context, remotes []platform.RemoteAdSet, campaignLocal map[string]string, report *models.SyncKindReport) (map[string]string, error) {
	localByRemote := make(map[string]string, len(remotes))
	for _, ra := range remotes {
		parentID, ok := campaignLocal[ra.CampaignID]
		if !ok {
			// Orphan: its campaign is not in this snapshot and not known
			// locally. Never invent a parent for it.
			s.logger.Warn("skipping orphan adset",
				zap.String("external_id", ra.ID),
				zap.String("remote_campaign_id", ra.CampaignID),
			)
			report.Skipped++
			if s.metrics != nil {
				s.metrics.RecordSyncOrphan(string(models.KindAdSet))
			}
			continue
		}

		local, err := s.store.AdSets.GetByExternalID(ctx, ra.ID)
		if err != nil {
			return nil, err
		}
		if local == nil {
			local = &models.AdSet{ID: newID(), ExternalID: ra.ID}
		}
		local.CampaignID = parentID
		local.Name = ra.Name
		local.Status = platform.StatusFromRemote(ra.Status)
		if ra.OptimizationGoal != "" {
			local.OptimizationGoal = models.OptimizationGoal(ra.OptimizationGoal)
		}
		if ra.BillingEvent != "" {
			local.BillingEvent = models.BillingEvent(ra.BillingEvent)
		}
		if ra.BidStrategy != "" {
			local.BidStrategy = models.BidStrategyType(ra.BidStrategy)
			local.BidAmount = ra.BidAmount
		}
		local.NormalizeBid()
		local.Budget = models.Budget{Daily: ra.DailyBudget, Lifetime: ra.LifetimeBudget}
		local.RemoteSyncPending = false
		local.DeletedAt = nil
		if err := s.store.AdSets.Upsert(ctx, local); err != nil {
			return nil, fmt.Errorf("upsert synced adset %s: %w", ra.ID, err)
		}
		localByRemote[ra.ID] = local.ID
		report.Upserted++
		if s.metrics != nil {
			s.metrics.RecordSyncUpsert(string(models.KindAdSet))
		}
	}
	return localByRemote, nil
}

func (s *Service) mergeAds(ctx context.Context, remotes []platform.RemoteAd, adsetLocal map[string]string, report *models.SyncKindReport) (map[string]bool, error) {
	seen := make(map[string]bool, len(remotes))
	for _, ra := range remotes {
		parentID, ok := adsetLocal[ra.AdSetID]
		if !ok {
			s.logger.Warn("skipping orphan ad",
				zap.String("external_id", ra.ID),
				zap.String("remote_adset_id", ra.AdSetID),
			)
			report.Skipped++
			if s.metrics != nil {
				s.metrics.RecordSyncOrphan(string(models.KindAd))
			}
			continue
		}
		seen[ra.ID] = true

		local, err := s.store.Ads.GetByExternalID(ctx, ra.ID)
		if err != nil {
			return nil, err
		}
		if local == nil {
			local = &models.Ad{ID: newID(), ExternalID: ra.ID}
		}
		local.AdSetID = parentID
		local.Name = ra.Name
		local.Status = platform.StatusFromRemote(ra.Status)
		local.RemoteSyncPending = false
		local.DeletedAt = nil

		// Every ad references a creative locally. Remotely-created ads get
		// a shell creative record carrying only the remote id; the content
		// itself is not pulled.
		if local.CreativeID == "" {
			creativeID, err := s.ensureShellCreative(ctx, ra, local.ID)
			if err != nil {
				return nil, err
			}
			local.CreativeID = creativeID
		}

		if err := s.store.Ads.Upsert(ctx, local); err != nil {
			return nil, fmt.Errorf("upsert synced ad %s: %w", ra.ID, err)
		}
		report.Upserted++
		if s.metrics != nil {
			s.metrics.RecordSyncUpsert(string(models.KindAd))
		}
	}
	return seen, nil
}

func (s *Service) ensureShellCreative(ctx context.Context, ra platform.RemoteAd, adID string) (string, error) {
	if ra.CreativeID != "" {
		existing, err := s.store.Creatives.GetByExternalID(ctx, ra.CreativeID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return existing.ID, nil
		}
	}
	shell := &models.Creative{
		ID:         newID(),
		ExternalID: ra.CreativeID,
		AdID:       adID,
		Name:       ra.Name,
		Status:     platform.StatusFromRemote(ra.Status),
	}
	if err := s.store.Creatives.Upsert(ctx, shell); err != nil {
		return "", fmt.Errorf("upsert shell creative for ad %s: %w", ra.ID, err)
	}
	return shell.ID, nil
}

// tombstoneMissing soft-deletes local records whose external id did not come
// back in the snapshot. Local-only drafts (no external id) are never touched.
// The hierarchy is collected up front so a tombstoned parent cannot hide its
// children from the walk.
func (s *Service) tombstoneMissing(ctx context.Context, account *models.Account, seenCampaigns, seenAdSets, seenAds map[string]bool, report *models.SyncReport) error {
	campaigns, err := s.store.Campaigns.ListByAccount(ctx, account.ID, false)
	if err != nil {
		return err
	}
	var adsets []*models.AdSet
	for _, c := range campaigns {
		children, err := s.store.AdSets.ListByCampaign(ctx, c.ID, false)
		if err != nil {
			return err
		}
		adsets = append(adsets, children...)
	}
	var ads []*models.Ad
	for _, as := range adsets {
		children, err := s.store.Ads.ListByAdSet(ctx, as.ID, false)
		if err != nil {
			return err
		}
		ads = append(ads, children...)
	}

	for _, a := range ads {
		if a.ExternalID == "" || seenAds[a.ExternalID] {
			continue
		}
		if err := s.tombstone(ctx, models.KindAd, a.ID, a.ExternalID, s.store.Ads.SoftDelete); err != nil {
			return err
		}
		report.Ads.Tombstoned++
	}
	for _, as := range adsets {
		if as.ExternalID == "" || seenAdSets[as.ExternalID] {
			continue
		}
		if err := s.tombstone(ctx, models.KindAdSet, as.ID, as.ExternalID, s.store.AdSets.SoftDelete); err != nil {
			return err
		}
		report.AdSets.Tombstoned++
	}
	for _, c := range campaigns {
		if c.ExternalID == "" || seenCampaigns[c.ExternalID] {
			continue
		}
		if err := s.tombstone(ctx, models.KindCampaign, c.ID, c.ExternalID, s.store.Campaigns.SoftDelete); err != nil {
			return err
		}
		report.Campaigns.Tombstoned++
	}
	return nil
}

func (s *Service) tombstone(ctx context.Context, kind models.EntityKind, id, externalID string, del func(context.Context, string, string) error) error {
	if err := del(ctx, id, "absent from remote snapshot"); err != nil {
		return fmt.Errorf("tombstone %s %s: %w", kind, id, err)
	}
	s.recordAudit(ctx, models.AuditEvent{
		Type:       models.AuditTombstone,
		Kind:       kind,
		LocalID:    id,
		ExternalID: externalID,
	})
	if s.metrics != nil {
		s.metrics.RecordSyncTombstone(string(kind))
	}
	return nil
}

func parseWireTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
