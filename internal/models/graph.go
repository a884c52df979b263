package models

// PublishGraph is one campaign with its single ad set, creative and ad, as
// submitted for publishing. The optional *DraftID fields anchor the publish
// to pre-existing local drafts; when empty, fresh drafts are created.
type PublishGraph struct {
	AccountID string `json:"account_id"`

	Campaign Campaign        `json:"campaign"`
	AdSet    AdSet           `json:"adset"`
	Creative CreativeContent `json:"creative"`
	Ad       Ad              `json:"ad"`

	CampaignDraftID string `json:"campaign_draft_id,omitempty"`
	AdSetDraftID    string `json:"adset_draft_id,omitempty"`
	CreativeDraftID string `json:"creative_draft_id,omitempty"`
	AdDraftID       string `json:"ad_draft_id,omitempty"`
}

// DraftIDs collects the local ids the publish was anchored to.
type DraftIDs struct {
	Campaign string `json:"campaign"`
	AdSet    string `json:"adset"`
	Creative string `json:"creative"`
	Ad       string `json:"ad"`
}

// PublishResult is the bundle returned by a successful publish: all four
// entities with their external ids plus the local draft ids.
type PublishResult struct {
	Campaign *Campaign `json:"campaign"`
	AdSet    *AdSet    `json:"adset"`
	Creative *Creative `json:"creative"`
	Ad       *Ad       `json:"ad"`
	Drafts   DraftIDs  `json:"drafts"`
	DryRun   bool      `json:"dry_run,omitempty"`
}

// AdNode is one ad (with its creative content) inside an update forest.
// Identity fields are tried in the order ID, DraftID, ExternalID; a node that
// matches nothing is created rather than updated.
type AdNode struct {
	ID         string `json:"id,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	Name     string          `json:"name,omitempty"`
	Status   Status          `json:"status,omitempty"`
	Creative CreativeContent `json:"creative"`
}

// AdSetNode is one ad set inside an update forest.
type AdSetNode struct {
	ID         string `json:"id,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	Name             string           `json:"name,omitempty"`
	Status           Status           `json:"status,omitempty"`
	OptimizationGoal OptimizationGoal `json:"optimization_goal,omitempty"`
	BillingEvent     BillingEvent     `json:"billing_event,omitempty"`
	BidStrategy      BidStrategyType  `json:"bid_strategy,omitempty"`
	BidAmount        *float64         `json:"bid_amount,omitempty"`
	Targeting        *Targeting       `json:"targeting,omitempty"`
	Budget           *Budget          `json:"budget,omitempty"`
	Schedule         *Schedule        `json:"schedule,omitempty"`

	Ads []AdNode `json:"ads,omitempty"`
}

// CampaignNode is one root of an update forest.
type CampaignNode struct {
	ID         string `json:"id,omitempty"`
	DraftID    string `json:"draft_id,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	AccountID string            `json:"account_id,omitempty"`
	Name      string            `json:"name,omitempty"`
	Status    Status            `json:"status,omitempty"`
	Objective CampaignObjective `json:"objective,omitempty"`
	Budget    *Budget           `json:"budget,omitempty"`
	Schedule  *Schedule         `json:"schedule,omitempty"`

	AdSets []AdSetNode `json:"adsets,omitempty"`
}

// UpdateForest is the flexible-update input: many campaign roots, each with
// optional nested children.
type UpdateForest struct {
	AccountID string         `json:"account_id"`
	Campaigns []CampaignNode `json:"campaigns"`
}

// KindCounts aggregates per-entity-kind outcomes of a flexible update.
type KindCounts struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errored int `json:"errored"`
}

// UpdateItemError describes one failed node of an update forest. Message
// prefers the platform's user-facing text when the remote supplied one.
type UpdateItemError struct {
	Kind    EntityKind `json:"kind"`
	Name    string     `json:"name,omitempty"`
	ID      string     `json:"id,omitempty"`
	Message string     `json:"message"`
}

// UpdateReport is the aggregated result of a flexible update.
type UpdateReport struct {
	TotalCreated int                        `json:"total_created"`
	TotalUpdated int                        `json:"total_updated"`
	TotalErrors  int                        `json:"total_errors"`
	Details      map[EntityKind]*KindCounts `json:"details"`
	Errors       []UpdateItemError          `json:"errors"`
}

// NewUpdateReport returns an empty report with counters for the three synced
// kinds pre-allocated.
func NewUpdateReport() *UpdateReport {
	return &UpdateReport{
		Details: map[EntityKind]*KindCounts{
			KindCampaign: {},
			KindAdSet:    {},
			KindAd:       {},
		},
	}
}

// Add records one outcome for the given kind and keeps the totals in step.
func (r *UpdateReport) Add(kind EntityKind, created, updated, errored int) {
	kc, ok := r.Details[kind]
	if !ok {
		kc = &KindCounts{}
		r.Details[kind] = kc
	}
	kc.Created += created
	kc.Updated += updated
	kc.Errored += errored
	r.TotalCreated += created
	r.TotalUpdated += updated
	r.TotalErrors += errored
}

// SyncKindReport counts the outcome of one entity kind during a pull sync.
type SyncKindReport struct {
	Fetched    int `json:"fetched"`
	Upserted   int `json:"upserted"`
	Skipped    int `json:"skipped"`
	Tombstoned int `json:"tombstoned"`
}

// SyncReport summarizes one account pull.
type SyncReport struct {
	AccountExternalID string         `json:"account_external_id"`
	Campaigns         SyncKindReport `json:"campaigns"`
	AdSets            SyncKindReport `json:"adsets"`
	Ads               SyncKindReport `json:"ads"`
}
