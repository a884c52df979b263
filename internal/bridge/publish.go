package bridge

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
	"github.com/radiusdt/adbridge/internal/storage"
)

// compensation is one entry of the saga undo stack: the inverse delete for a
// remote entity already created in this publish.
type compensation struct {
	kind       models.EntityKind
	externalID string
	localID    string
}

// unwindTimeout bounds the whole compensation pass. Unwind runs on a fresh
// context because the original one may already be canceled by the failure
// that triggered it.
const unwindTimeout = time.Minute

// Publish creates the four-level graph on the remote platform in strict
// order: campaign, ad set, creative, ad. Each successful remote create
// pushes a compensating delete; any later failure unwinds the stack in
// reverse, marks all four local drafts FAILED and returns the original
// error. With dryRun set, drafts are still created but no remote call is
// made; synthetic external ids are returned.
func (s *Service) Publish(ctx context.Context, graph models.PublishGraph, creds platform.Credentials, dryRun bool) (*models.PublishResult, error) {
	if err := validateGraph(&graph, creds); err != nil {
		if s.metrics != nil {
			s.metrics.RecordPublish("rejected")
		}
		return nil, err
	}

	account, err := s.lookupAccount(ctx, graph.AccountID)
	if err != nil {
		return nil, err
	}

	// Anchor every remote attempt to durable local drafts first.
	campaignTmpl := graph.Campaign
	campaignTmpl.AccountID = account.ID
	campaign, err := s.drafts.EnsureCampaign(ctx, graph.CampaignDraftID, campaignTmpl)
	if err != nil {
		return nil, fmt.Errorf("ensure campaign draft: %w", err)
	}

	adsetTmpl := graph.AdSet
	adsetTmpl.CampaignID = campaign.ID
	adset, err := s.drafts.EnsureAdSet(ctx, graph.AdSetDraftID, adsetTmpl)
	if err != nil {
		return nil, fmt.Errorf("ensure adset draft: %w", err)
	}

	creative, err := s.drafts.EnsureCreative(ctx, graph.CreativeDraftID, models.Creative{
		Name:    graph.Ad.Name,
		Content: graph.Creative,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure creative draft: %w", err)
	}

	adTmpl := graph.Ad
	adTmpl.AdSetID = adset.ID
	adTmpl.CreativeID = creative.ID
	ad, err := s.drafts.EnsureAd(ctx, graph.AdDraftID, adTmpl)
	if err != nil {
		return nil, fmt.Errorf("ensure ad draft: %w", err)
	}

	// Back-reference the owning ad now that the draft exists.
	if creative.AdID != ad.ID {
		creative.AdID = ad.ID
		if err := s.store.Creatives.Upsert(ctx, creative); err != nil {
			return nil, fmt.Errorf("bind creative to ad: %w", err)
		}
	}

	drafts := models.DraftIDs{
		Campaign: campaign.ID,
		AdSet:    adset.ID,
		Creative: creative.ID,
		Ad:       ad.ID,
	}

	if dryRun {
		return s.dryRunResult(campaign, adset, creative, ad, drafts), nil
	}

	s.recordAudit(ctx, models.AuditEvent{
		Type:      models.AuditPublishAttempt,
		Kind:      models.KindCampaign,
		AccountID: account.ID,
		LocalID:   campaign.ID,
	})

	comps := make([]compensation, 0, 4)
	fail := func(kind models.EntityKind, cause error) (*models.PublishResult, error) {
		s.unwind(creds, comps)
		s.markGraphFailed(ctx, drafts, cause)
		s.recordAudit(ctx, models.AuditEvent{
			Type:      models.AuditPublishFailed,
			Kind:      kind,
			AccountID: account.ID,
			LocalID:   campaign.ID,
			Message:   platform.UserMessage(cause, cause.Error()),
		})
		if s.metrics != nil {
			s.metrics.RecordPublish("failed")
		}
		return nil, cause
	}

	// Step 2: campaign.
	extID, err := s.remote.CreateCampaign(ctx, creds, account.ExternalID, platform.BuildCampaignPayload(campaign))
	if err != nil {
		s.recordStep(models.KindCampaign, err)
		return fail(models.KindCampaign, err)
	}
	s.recordStep(models.KindCampaign, nil)
	comps = append(comps, compensation{kind: models.KindCampaign, externalID: extID, localID: campaign.ID})
	if err := s.persistPublished(ctx, func() error {
		campaign.ExternalID = extID
		campaign.Status = models.StatusPaused
		return s.store.Campaigns.Upsert(ctx, campaign)
	}); err != nil {
		return fail(models.KindCampaign, err)
	}

	// Step 3: ad set, bid fields normalized before the payload is built.
	adset.NormalizeBid()
	extID, err = s.remote.CreateAdSet(ctx, creds, account.ExternalID, platform.BuildAdSetPayload(adset, campaign.ExternalID))
	if err != nil {
		s.recordStep(models.KindAdSet, err)
		return fail(models.KindAdSet, err)
	}
	s.recordStep(models.KindAdSet, nil)
	comps = append(comps, compensation{kind: models.KindAdSet, externalID: extID, localID: adset.ID})
	if err := s.persistPublished(ctx, func() error {
		adset.ExternalID = extID
		adset.Status = models.StatusPaused
		return s.store.AdSets.Upsert(ctx, adset)
	}); err != nil {
		return fail(models.KindAdSet, err)
	}

	// Step 4: creative. Only whitelisted content fields are forwarded.
	extID, err = s.remote.CreateCreative(ctx, creds, account.ExternalID, platform.BuildCreativePayload(creative.Name, creative.Content))
	if err != nil {
		s.recordStep(models.KindCreative, err)
		return fail(models.KindCreative, err)
	}
	s.recordStep(models.KindCreative, nil)
	comps = append(comps, compensation{kind: models.KindCreative, externalID: extID, localID: creative.ID})
	if err := s.persistPublished(ctx, func() error {
		creative.ExternalID = extID
		creative.Status = models.StatusPaused
		return s.store.Creatives.Upsert(ctx, creative)
	}); err != nil {
		return fail(models.KindCreative, err)
	}

	// Step 5: ad, referencing the remote ad set and creative.
	extID, err = s.remote.CreateAd(ctx, creds, account.ExternalID, platform.BuildAdPayload(ad, adset.ExternalID, creative.ExternalID))
	if err != nil {
		s.recordStep(models.KindAd, err)
		return fail(models.KindAd, err)
	}
	s.recordStep(models.KindAd, nil)
	comps = append(comps, compensation{kind: models.KindAd, externalID: extID, localID: ad.ID})
	if err := s.persistPublished(ctx, func() error {
		ad.ExternalID = extID
		ad.Status = models.StatusPaused
		return s.store.Ads.Upsert(ctx, ad)
	}); err != nil {
		return fail(models.KindAd, err)
	}

	s.recordAudit(ctx, models.AuditEvent{
		Type:       models.AuditPublishSucceeded,
		Kind:       models.KindCampaign,
		AccountID:  account.ID,
		LocalID:    campaign.ID,
		ExternalID: campaign.ExternalID,
	})
	if s.metrics != nil {
		s.metrics.RecordPublish("succeeded")
	}
	s.logger.Info("graph published",
		zap.String("campaign_id", campaign.ID),
		zap.String("campaign_external_id", campaign.ExternalID),
		zap.String("ad_external_id", ad.ExternalID),
	)

	return &models.PublishResult{
		Campaign: campaign,
		AdSet:    adset,
		Creative: creative,
		Ad:       ad,
		Drafts:   drafts,
	}, nil
}

// validateGraph fails fast on missing required fields, before any remote
// call.
func validateGraph(graph *models.PublishGraph, creds platform.Credentials) error {
	var fields []string
	if graph.AccountID == "" {
		fields = append(fields, "account_id is required")
	}
	if graph.Campaign.Name == "" {
		fields = append(fields, "campaign name is required")
	}
	if graph.Campaign.Objective == "" {
		fields = append(fields, "campaign objective is required")
	}
	if err := graph.Campaign.Budget.Validate(); err != nil {
		fields = append(fields, "campaign "+err.Error())
	}
	if graph.AdSet.Name == "" {
		fields = append(fields, "adset name is required")
	}
	if err := graph.AdSet.Budget.Validate(); err != nil {
		fields = append(fields, "adset "+err.Error())
	}
	if graph.Creative.Empty() {
		fields = append(fields, "creative content is required")
	}
	if graph.Ad.Name == "" {
		fields = append(fields, "ad name is required")
	}
	if err := creds.Validate(); err != nil {
		fields = append(fields, err.Error())
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// lookupAccount resolves the account by local id first, external id second.
// The account must already exist and be linked to the platform.
func (s *Service) lookupAccount(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.store.Accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = s.store.Accounts.GetByExternalID(ctx, accountID)
		if err != nil {
			return nil, err
		}
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
	}
	if account.ExternalID == "" {
		return nil, &ValidationError{Fields: []string{"account is not linked to the remote platform"}}
	}
	return account, nil
}

func (s *Service) dryRunResult(campaign *models.Campaign, adset *models.AdSet, creative *models.Creative, ad *models.Ad, drafts models.DraftIDs) *models.PublishResult {
	c := *campaign
	as := *adset
	cr := *creative
	a := *ad
	c.ExternalID = syntheticID()
	as.ExternalID = syntheticID()
	cr.ExternalID = syntheticID()
	a.ExternalID = syntheticID()
	as.NormalizeBid()
	return &models.PublishResult{
		Campaign: &c,
		AdSet:    &as,
		Creative: &cr,
		Ad:       &a,
		Drafts:   drafts,
		DryRun:   true,
	}
}

func syntheticID() string {
	return "dryrun_" + newID()
}

// persistPublished runs the local write that records a successful remote
// create. A failure here still unwinds: a remote entity we cannot track
// locally is worse than no entity at all.
func (s *Service) persistPublished(ctx context.Context, write func() error) error {
	if err := write(); err != nil {
		return fmt.Errorf("persist external id: %w", err)
	}
	return nil
}

// unwind deletes already-created remote entities in strict reverse order.
// Each step is best effort; a failed delete is logged and the remaining
// steps still run. Runs on its own context since the original is usually
// canceled or expired at this point.
func (s *Service) unwind(creds platform.Credentials, comps []compensation) {
	if len(comps) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), unwindTimeout)
	defer cancel()

	for i := len(comps) - 1; i >= 0; i-- {
		c := comps[i]
		_, err := s.remote.DeleteEntity(ctx, creds, c.externalID)
		if err != nil {
			cerr := &CompensationError{Kind: string(c.kind), ExternalID: c.externalID, Err: err}
			s.logger.Error("compensation failed",
				zap.String("kind", string(c.kind)),
				zap.String("external_id", c.externalID),
				zap.Error(cerr),
			)
			if s.metrics != nil {
				s.metrics.RecordCompensation(string(c.kind), "failed")
			}
			s.recordAudit(ctx, models.AuditEvent{
				Type:       models.AuditCompensation,
				Kind:       c.kind,
				LocalID:    c.localID,
				ExternalID: c.externalID,
				Message:    cerr.Error(),
			})
			continue
		}
		if s.metrics != nil {
			s.metrics.RecordCompensation(string(c.kind), "succeeded")
		}
		s.recordAudit(ctx, models.AuditEvent{
			Type:       models.AuditCompensation,
			Kind:       c.kind,
			LocalID:    c.localID,
			ExternalID: c.externalID,
		})
	}
}

// markGraphFailed stamps all four drafts FAILED with the triggering error.
func (s *Service) markGraphFailed(ctx context.Context, drafts models.DraftIDs, cause error) {
	note := platform.UserMessage(cause, cause.Error())
	patch := storage.StatusPatch{Status: models.StatusFailed, ErrorNote: note}

	if err := s.store.Campaigns.UpdateMany(ctx, []string{drafts.Campaign}, patch); err != nil {
		s.logger.Error("failed to mark campaign draft failed", zap.Error(err))
	}
	if err := s.store.AdSets.UpdateMany(ctx, []string{drafts.AdSet}, patch); err != nil {
		s.logger.Error("failed to mark adset draft failed", zap.Error(err))
	}
	if err := s.store.Creatives.UpdateMany(ctx, []string{drafts.Creative}, patch); err != nil {
		s.logger.Error("failed to mark creative draft failed", zap.Error(err))
	}
	if err := s.store.Ads.UpdateMany(ctx, []string{drafts.Ad}, patch); err != nil {
		s.logger.Error("failed to mark ad draft failed", zap.Error(err))
	}
}

func (s *Service) recordStep(kind models.EntityKind, err error) {
	if s.metrics == nil {
		return
	}
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	s.metrics.RecordPublishStep(string(kind), status)
}
