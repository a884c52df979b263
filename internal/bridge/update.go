package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
	"github.com/radiusdt/adbridge/internal/storage"
)

// UpdateFlexible reconciles a forest of campaign nodes against local and
// remote state. Per node it either updates an existing local+remote pair
// (remote first; a remote failure is non-fatal and flags the record
// remote_sync_pending) or creates a fresh one. Campaign roots run through
// the batch runner with bounded concurrency; one bad node never blocks the
// rest.
func (s *Service) UpdateFlexible(ctx context.Context, forest models.UpdateForest, creds platform.Credentials) (*models.UpdateReport, error) {
	if err := creds.Validate(); err != nil {
		return nil, &ValidationError{Fields: []string{err.Error()}}
	}
	account, err := s.lookupAccount(ctx, forest.AccountID)
	if err != nil {
		return nil, err
	}

	run := &updateRun{
		svc:     s,
		creds:   creds,
		account: account,
		report:  models.NewUpdateReport(),
	}

	tasks := make([]Task, len(forest.Campaigns))
	for i, node := range forest.Campaigns {
		node := node
		tasks[i] = Task{
			Name: "campaign:" + firstNonEmpty(node.ID, node.DraftID, node.ExternalID, node.Name),
			Fn: func(ctx context.Context) (any, error) {
				run.processCampaign(ctx, node)
				return nil, nil
			},
		}
	}
	for _, res := range s.runBatched(ctx, tasks) {
		// processCampaign reports its own failures; a non-nil Err here is a
		// recovered panic, which must still land in the error list.
		if res.Err != nil {
			run.errored(models.KindCampaign, res.Name, "", res.Err)
		}
	}

	return run.report, nil
}

// addBudgetFields adds the changed budget to an update fields map. Daily and
// lifetime are mutually exclusive on the wire, so the zero-valued key is
// omitted.
func addBudgetFields(fields map[string]any, b models.Budget) {
	if b.Daily > 0 {
		fields["daily_budget"] = b.Daily
	}
	if b.Lifetime > 0 {
		fields["lifetime_budget"] = b.Lifetime
	}
}

// updateRun carries the per-invocation state of one flexible update.
type updateRun struct {
	svc     *Service
	creds   platform.Credentials
	account *models.Account

	mu     sync.Mutex
	report *models.UpdateReport
}

func (r *updateRun) created(kind models.EntityKind) {
	r.mu.Lock()
	r.report.Add(kind, 1, 0, 0)
	r.mu.Unlock()
	if r.svc.metrics != nil {
		r.svc.metrics.RecordUpdateNode(string(kind), "created")
	}
}

func (r *updateRun) updated(kind models.EntityKind) {
	r.mu.Lock()
	r.report.Add(kind, 0, 1, 0)
	r.mu.Unlock()
	if r.svc.metrics != nil {
		r.svc.metrics.RecordUpdateNode(string(kind), "updated")
	}
}

func (r *updateRun) errored(kind models.EntityKind, name, id string, err error) {
	r.mu.Lock()
	r.report.Add(kind, 0, 0, 1)
	r.report.Errors = append(r.report.Errors, models.UpdateItemError{
		Kind:    kind,
		Name:    name,
		ID:      id,
		Message: platform.UserMessage(err, err.Error()),
	})
	r.mu.Unlock()
	if r.svc.metrics != nil {
		r.svc.metrics.RecordUpdateNode(string(kind), "errored")
	}
}

func (r *updateRun) processCampaign(ctx context.Context, node models.CampaignNode) {
	s := r.svc
	ref := NodeRef{ID: node.ID, DraftID: node.DraftID, ExternalID: node.ExternalID}

	existing, err := resolveRef(ctx, ref, s.store.Campaigns.GetByID, s.store.Campaigns.GetByExternalID)
	if err != nil {
		r.errored(models.KindCampaign, node.Name, node.ID, err)
		return
	}

	var campaign *models.Campaign
	if existing == nil {
		campaign, err = r.createCampaign(ctx, node)
		if err != nil {
			r.errored(models.KindCampaign, node.Name, node.ID, err)
			// Children cannot be anchored without their campaign.
			return
		}
		r.created(models.KindCampaign)
	} else {
		campaign, err = r.updateCampaign(ctx, existing, node)
		if err != nil {
			r.errored(models.KindCampaign, node.Name, existing.ID, err)
			return
		}
		r.updated(models.KindCampaign)
	}

	for _, asNode := range node.AdSets {
		r.processAdSet(ctx, campaign, asNode)
	}
}

func (r *updateRun) createCampaign(ctx context.Context, node models.CampaignNode) (*models.Campaign, error) {
	s := r.svc
	tmpl := models.Campaign{
		AccountID: r.account.ID,
		Name:      node.Name,
		Objective: node.Objective,
	}
	if node.Budget != nil {
		tmpl.Budget = *node.Budget
	}
	if node.Schedule != nil {
		tmpl.Schedule = *node.Schedule
	}
	campaign, err := s.drafts.EnsureCampaign(ctx, firstNonEmpty(node.ID, node.DraftID), tmpl)
	if err != nil {
		return nil, err
	}

	extID, err := s.remote.CreateCampaign(ctx, r.creds, r.account.ExternalID, platform.BuildCampaignPayload(campaign))
	if err != nil {
		s.markFailed(ctx, models.KindCampaign, campaign.ID, err)
		return nil, err
	}
	campaign.ExternalID = extID
	campaign.Status = models.StatusPaused
	if err := s.store.Campaigns.Upsert(ctx, campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (r *updateRun) updateCampaign(ctx context.Context, existing *models.Campaign, node models.CampaignNode) (*models.Campaign, error) {
	s := r.svc

	// Mutable whitelist only: name, status, budget, schedule. Objective is
	// immutable once the campaign exists remotely.
	fields := map[string]any{}
	if node.Name != "" && node.Name != existing.Name {
		existing.Name = node.Name
		fields["name"] = node.Name
	}
	if node.Status != "" && node.Status != existing.Status {
		existing.Status = node.Status
		fields["status"] = platform.StatusToRemote(node.Status)
	}
	if node.Budget != nil {
		existing.Budget = *node.Budget
		addBudgetFields(fields, *node.Budget)
	}
	if node.Schedule != nil {
		existing.Schedule = *node.Schedule
		fields["start_time"] = platform.WireTime(node.Schedule.StartAt)
		fields["stop_time"] = platform.WireTime(node.Schedule.StopAt)
	}

	if existing.ExternalID != "" && len(fields) > 0 {
		if err := s.remote.UpdateEntity(ctx, r.creds, existing.ExternalID, fields); err != nil {
			// Non-fatal: keep the local write, flag the drift.
			s.noteRemoteMiss(ctx, models.KindCampaign, existing.ID, existing.ExternalID, err)
			existing.RemoteSyncPending = true
		} else {
			existing.RemoteSyncPending = false
		}
	}

	if err := s.store.Campaigns.Upsert(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *updateRun) processAdSet(ctx context.Context, campaign *models.Campaign, node models.AdSetNode) {
	s := r.svc
	ref := NodeRef{ID: node.ID, DraftID: node.DraftID, ExternalID: node.ExternalID}

	existing, err := resolveRef(ctx, ref, s.store.AdSets.GetByID, s.store.AdSets.GetByExternalID)
	if err != nil {
		r.errored(models.KindAdSet, node.Name, node.ID, err)
		return
	}

	var adset *models.AdSet
	if existing == nil {
		adset, err = r.createAdSet(ctx, campaign, node)
		if err != nil {
			r.errored(models.KindAdSet, node.Name, node.ID, err)
			return
		}
		r.created(models.KindAdSet)
	} else {
		adset, err = r.updateAdSet(ctx, campaign, existing, node)
		if err != nil {
			r.errored(models.KindAdSet, node.Name, existing.ID, err)
			return
		}
		r.updated(models.KindAdSet)
	}

	for _, adNode := range node.Ads {
		r.processAd(ctx, adset, adNode)
	}
}

func adsetTemplate(campaignID string, node models.AdSetNode) models.AdSet {
	tmpl := models.AdSet{
		CampaignID:       campaignID,
		Name:             node.Name,
		OptimizationGoal: node.OptimizationGoal,
		BillingEvent:     node.BillingEvent,
		BidStrategy:      node.BidStrategy,
		BidAmount:        node.BidAmount,
	}
	if node.Targeting != nil {
		tmpl.Targeting = *node.Targeting
	}
	if node.Budget != nil {
		tmpl.Budget = *node.Budget
	}
	if node.Schedule != nil {
		tmpl.Schedule = *node.Schedule
	}
	return tmpl
}

func (r *updateRun) createAdSet(ctx context.Context, campaign *models.Campaign, node models.AdSetNode) (*models.AdSet, error) {
	s := r.svc
	adset, err := s.drafts.EnsureAdSet(ctx, firstNonEmpty(node.ID, node.DraftID), adsetTemplate(campaign.ID, node))
	if err != nil {
		return nil, err
	}
	adset.NormalizeBid()
	extID, err := s.remote.CreateAdSet(ctx, r.creds, r.account.ExternalID, platform.BuildAdSetPayload(adset, campaign.ExternalID))
	if err != nil {
		s.markFailed(ctx, models.KindAdSet, adset.ID, err)
		return nil, err
	}
	adset.ExternalID = extID
	adset.Status = models.StatusPaused
	if err := s.store.AdSets.Upsert(ctx, adset); err != nil {
		return nil, err
	}
	return adset, nil
}

func (r *updateRun) updateAdSet(ctx context.Context, campaign *models.Campaign, existing *models.AdSet, node models.AdSetNode) (*models.AdSet, error) {
	s := r.svc

	fields := map[string]any{}
	if node.Name != "" && node.Name != existing.Name {
		existing.Name = node.Name
		fields["name"] = node.Name
	}
	if node.Status != "" && node.Status != existing.Status {
		existing.Status = node.Status
		fields["status"] = platform.StatusToRemote(node.Status)
	}
	if node.BidStrategy != "" {
		existing.BidStrategy = node.BidStrategy
		existing.BidAmount = node.BidAmount
	}
	existing.NormalizeBid()
	if node.BidStrategy != "" {
		fields["bid_strategy"] = string(existing.BidStrategy)
		if existing.BidAmount != nil {
			fields["bid_amount"] = *existing.BidAmount
		}
	}
	if node.Budget != nil {
		existing.Budget = *node.Budget
		addBudgetFields(fields, *node.Budget)
	}
	if node.Targeting != nil {
		existing.Targeting = *node.Targeting
		fields["targeting"] = platform.TargetingSpec(*node.Targeting)
	}
	if node.Schedule != nil {
		existing.Schedule = *node.Schedule
		fields["start_time"] = platform.WireTime(node.Schedule.StartAt)
		fields["end_time"] = platform.WireTime(node.Schedule.StopAt)
	}

	if existing.ExternalID != "" && len(fields) > 0 {
		err := s.remote.UpdateEntity(ctx, r.creds, existing.ExternalID, fields)
		switch {
		case err == nil:
			existing.RemoteSyncPending = false
		case platform.IsNotFound(err):
			// The remote ad set vanished out of band. Create a replacement
			// and rebind rather than failing the whole node.
			s.logger.Warn("remote adset missing, creating replacement",
				zap.String("adset_id", existing.ID),
				zap.String("stale_external_id", existing.ExternalID),
			)
			extID, cerr := s.remote.CreateAdSet(ctx, r.creds, r.account.ExternalID, platform.BuildAdSetPayload(existing, campaign.ExternalID))
			if cerr != nil {
				return nil, fmt.Errorf("replace missing remote adset: %w", cerr)
			}
			existing.ExternalID = extID
			existing.RemoteSyncPending = false
		default:
			s.noteRemoteMiss(ctx, models.KindAdSet, existing.ID, existing.ExternalID, err)
			existing.RemoteSyncPending = true
		}
	}

	if err := s.store.AdSets.Upsert(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *updateRun) processAd(ctx context.Context, adset *models.AdSet, node models.AdNode) {
	s := r.svc
	ref := NodeRef{ID: node.ID, DraftID: node.DraftID, ExternalID: node.ExternalID}

	existing, err := resolveRef(ctx, ref, s.store.Ads.GetByID, s.store.Ads.GetByExternalID)
	if err != nil {
		r.errored(models.KindAd, node.Name, node.ID, err)
		return
	}

	if existing == nil {
		// Unmatched node: brand-new creative and ad pair. This is also the
		// documented path for changed creative content, which can never be
		// applied in place.
		if err := r.createAdPair(ctx, adset, node); err != nil {
			r.errored(models.KindAd, node.Name, node.ID, err)
			return
		}
		r.created(models.KindAd)
		return
	}

	if err := r.updateAd(ctx, existing, node); err != nil {
		r.errored(models.KindAd, node.Name, existing.ID, err)
		return
	}
	r.updated(models.KindAd)
}

// createAdPair creates a creative and an ad as a two-step mini saga: if the
// ad create fails, the just-created remote creative is compensated away.
func (r *updateRun) createAdPair(ctx context.Context, adset *models.AdSet, node models.AdNode) error {
	s := r.svc

	creative, err := s.drafts.EnsureCreative(ctx, "", models.Creative{
		Name:    node.Name,
		Content: node.Creative,
	})
	if err != nil {
		return err
	}
	adTmpl := models.Ad{
		AdSetID:    adset.ID,
		CreativeID: creative.ID,
		Name:       node.Name,
		Status:     node.Status,
	}
	ad, err := s.drafts.EnsureAd(ctx, firstNonEmpty(node.ID, node.DraftID), adTmpl)
	if err != nil {
		return err
	}
	creative.AdID = ad.ID

	creativeExtID, err := s.remote.CreateCreative(ctx, r.creds, r.account.ExternalID, platform.BuildCreativePayload(creative.Name, creative.Content))
	if err != nil {
		s.markFailed(ctx, models.KindCreative, creative.ID, err)
		s.markFailed(ctx, models.KindAd, ad.ID, err)
		return err
	}
	creative.ExternalID = creativeExtID
	creative.Status = models.StatusPaused
	if err := s.store.Creatives.Upsert(ctx, creative); err != nil {
		return err
	}

	adExtID, err := s.remote.CreateAd(ctx, r.creds, r.account.ExternalID, platform.BuildAdPayload(ad, adset.ExternalID, creativeExtID))
	if err != nil {
		s.unwind(r.creds, []compensation{{kind: models.KindCreative, externalID: creativeExtID, localID: creative.ID}})
		s.markFailed(ctx, models.KindCreative, creative.ID, err)
		s.markFailed(ctx, models.KindAd, ad.ID, err)
		return err
	}
	ad.ExternalID = adExtID
	ad.Status = models.StatusPaused
	return s.store.Ads.Upsert(ctx, ad)
}

func (r *updateRun) updateAd(ctx context.Context, existing *models.Ad, node models.AdNode) error {
	s := r.svc

	// Only name and status are mutable. Creative content is remote-immutable
	// and is deliberately not compared here; callers wanting new content
	// submit an unmatched node.
	fields := map[string]any{}
	if node.Name != "" && node.Name != existing.Name {
		existing.Name = node.Name
		fields["name"] = node.Name
	}
	if node.Status != "" && node.Status != existing.Status {
		existing.Status = node.Status
		fields["status"] = platform.StatusToRemote(node.Status)
	}

	if existing.ExternalID != "" && len(fields) > 0 {
		if err := s.remote.UpdateEntity(ctx, r.creds, existing.ExternalID, fields); err != nil {
			s.noteRemoteMiss(ctx, models.KindAd, existing.ID, existing.ExternalID, err)
			existing.RemoteSyncPending = true
		} else {
			existing.RemoteSyncPending = false
		}
	}

	return s.store.Ads.Upsert(ctx, existing)
}

// noteRemoteMiss logs and audits a failed remote update that the reconciler
// chose to continue past.
func (s *Service) noteRemoteMiss(ctx context.Context, kind models.EntityKind, localID, externalID string, err error) {
	s.logger.Warn("remote update failed, keeping local write",
		zap.String("kind", string(kind)),
		zap.String("local_id", localID),
		zap.String("external_id", externalID),
		zap.Error(err),
	)
	s.recordAudit(ctx, models.AuditEvent{
		Type:       models.AuditRemoteUpdateMiss,
		Kind:       kind,
		LocalID:    localID,
		ExternalID: externalID,
		Message:    platform.UserMessage(err, err.Error()),
	})
}

// markFailed stamps a single draft FAILED after an unrecoverable remote
// create error.
func (s *Service) markFailed(ctx context.Context, kind models.EntityKind, id string, cause error) {
	patch := storage.StatusPatch{
		Status:    models.StatusFailed,
		ErrorNote: platform.UserMessage(cause, cause.Error()),
	}
	var err error
	switch kind {
	case models.KindCampaign:
		err = s.store.Campaigns.UpdateMany(ctx, []string{id}, patch)
	case models.KindAdSet:
		err = s.store.AdSets.UpdateMany(ctx, []string{id}, patch)
	case models.KindCreative:
		err = s.store.Creatives.UpdateMany(ctx, []string{id}, patch)
	case models.KindAd:
		err = s.store.Ads.UpdateMany(ctx, []string{id}, patch)
	}
	if err != nil {
		s.logger.Error("failed to mark draft failed",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}
