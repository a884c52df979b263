package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/metrics"
	"github.com/radiusdt/adbridge/internal/models"
	"github.com/radiusdt/adbridge/internal/platform"
	"github.com/radiusdt/adbridge/internal/storage"
)

// DefaultConcurrency bounds parallel remote operations when the caller does
// not configure a limit. Kept small to respect the platform's rate limits.
const DefaultConcurrency = 4

// Service is the publish/update orchestrator and reconciliation engine. It
// owns no global state; everything it touches arrives through this struct.
type Service struct {
	remote      platform.Client
	store       *storage.Store
	audit       storage.AuditStore
	drafts      *DraftManager
	logger      *zap.Logger
	metrics     *metrics.Metrics
	concurrency int
}

// ServiceConfig holds construction options for Service. Audit and Metrics
// may be nil.
type ServiceConfig struct {
	Remote      platform.Client
	Store       *storage.Store
	Audit       storage.AuditStore
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Concurrency int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Service{
		remote:      cfg.Remote,
		store:       cfg.Store,
		audit:       cfg.Audit,
		drafts:      NewDraftManager(cfg.Store, logger),
		logger:      logger,
		metrics:     cfg.Metrics,
		concurrency: concurrency,
	}
}

// Drafts exposes the draft manager for callers that stage records without
// publishing.
func (s *Service) Drafts() *DraftManager {
	return s.drafts
}

func newID() string {
	return uuid.NewString()
}

// recordAudit appends one event to the audit trail. Audit failures are
// logged and swallowed; the trail is best-effort and must never fail an
// operation.
func (s *Service) recordAudit(ctx context.Context, ev models.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.ID = newID()
	ev.Timestamp = time.Now().UTC()
	if err := s.audit.Append(ctx, &ev); err != nil {
		s.logger.Warn("audit append failed",
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}

// SoftDeleteCampaign tombstones a campaign and cascades the tombstone to its
// ad sets, ads and creatives.
func (s *Service) SoftDeleteCampaign(ctx context.Context, campaignID, reason string) error {
	adsets, err := s.store.AdSets.ListByCampaign(ctx, campaignID, false)
	if err != nil {
		return err
	}
	for _, as := range adsets {
		ads, err := s.store.Ads.ListByAdSet(ctx, as.ID, false)
		if err != nil {
			return err
		}
		for _, ad := range ads {
			if ad.CreativeID != "" {
				if err := s.store.Creatives.SoftDelete(ctx, ad.CreativeID, reason); err != nil {
					return err
				}
			}
			if err := s.store.Ads.SoftDelete(ctx, ad.ID, reason); err != nil {
				return err
			}
		}
		if err := s.store.AdSets.SoftDelete(ctx, as.ID, reason); err != nil {
			return err
		}
	}
	if err := s.store.Campaigns.SoftDelete(ctx, campaignID, reason); err != nil {
		return err
	}
	s.recordAudit(ctx, models.AuditEvent{
		Type:    models.AuditTombstone,
		Kind:    models.KindCampaign,
		LocalID: campaignID,
		Message: reason,
	})
	return nil
}
