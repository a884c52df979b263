package models

import (
	"errors"
	"time"
)

type BidStrategyType string

const (
	// BidStrategyLowestCost lets the platform bid freely; a bid amount must
	// not be sent alongside it.
	BidStrategyLowestCost BidStrategyType = "lowest_cost"
	// BidStrategyBidCap caps every auction bid; a bid amount is mandatory.
	BidStrategyBidCap BidStrategyType = "bid_cap"
)

// DefaultBidAmount is injected when a bid-cap ad set is published without an
// explicit bid amount.
const DefaultBidAmount = 2.0

type OptimizationGoal string

const (
	OptimizeClicks      OptimizationGoal = "clicks"
	OptimizeConversions OptimizationGoal = "conversions"
	OptimizeImpressions OptimizationGoal = "impressions"
	OptimizeReach       OptimizationGoal = "reach"
)

type BillingEvent string

const (
	BillingImpressions BillingEvent = "impressions"
	BillingClicks      BillingEvent = "clicks"
)

// Targeting defines the audience filters for an ad set. The struct is
// forwarded to the remote platform as an opaque specification.
type Targeting struct {
	Countries       []string `json:"countries,omitempty"`
	Regions         []string `json:"regions,omitempty"`
	Cities          []string `json:"cities,omitempty"`
	AgeMin          int      `json:"age_min,omitempty"`
	AgeMax          int      `json:"age_max,omitempty"`
	Genders         []int    `json:"genders,omitempty"`
	Interests       []string `json:"interests,omitempty"`
	CustomAudiences []string `json:"custom_audiences,omitempty"`
	Languages       []string `json:"languages,omitempty"`
}

// AdSet groups ads under shared targeting, budget and bidding. CampaignID is
// required and must reference a locally persisted campaign.
type AdSet struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	Status     Status `json:"status"`

	OptimizationGoal OptimizationGoal `json:"optimization_goal,omitempty"`
	BillingEvent     BillingEvent     `json:"billing_event,omitempty"`
	BidStrategy      BidStrategyType  `json:"bid_strategy,omitempty"`
	// BidAmount is nil when no cap applies. See NormalizeBid for the rules
	// tying it to BidStrategy.
	BidAmount *float64 `json:"bid_amount,omitempty"`

	Targeting Targeting `json:"targeting"`
	Budget    Budget    `json:"budget"`
	Schedule  Schedule  `json:"schedule"`

	RemoteSyncPending bool   `json:"remote_sync_pending,omitempty"`
	ErrorNote         string `json:"error_note,omitempty"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Validate checks the fields required before an ad set may be published.
func (a *AdSet) Validate() error {
	if a == nil {
		return errors.New("adset is nil")
	}
	if a.Name == "" {
		return errors.New("adset name is required")
	}
	return a.Budget.Validate()
}

// NormalizeBid enforces the mutual constraint between bid strategy and bid
// amount: lowest_cost strips any amount, bid_cap injects the default when the
// caller supplied none.
func (a *AdSet) NormalizeBid() {
	switch a.BidStrategy {
	case BidStrategyLowestCost:
		a.BidAmount = nil
	case BidStrategyBidCap:
		if a.BidAmount == nil || *a.BidAmount <= 0 {
			amt := DefaultBidAmount
			a.BidAmount = &amt
		}
	}
}
