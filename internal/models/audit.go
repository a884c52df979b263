package models

import "time"

// AuditEventType classifies entries in the append-only audit trail.
type AuditEventType string

const (
	AuditPublishAttempt   AuditEventType = "publish_attempt"
	AuditPublishSucceeded AuditEventType = "publish_succeeded"
	AuditPublishFailed    AuditEventType = "publish_failed"
	AuditCompensation     AuditEventType = "compensation"
	AuditRemoteUpdateMiss AuditEventType = "remote_update_miss"
	AuditSyncRun          AuditEventType = "sync_run"
	AuditTombstone        AuditEventType = "tombstone"
)

// AuditEvent is one immutable record of a publish, compensation or sync
// action. Events are write-only; they exist for debugging partial failures
// and for answering "what did we do to the platform and when".
type AuditEvent struct {
	ID         string         `json:"id"`
	Type       AuditEventType `json:"type"`
	Kind       EntityKind     `json:"kind,omitempty"`
	AccountID  string         `json:"account_id,omitempty"`
	LocalID    string         `json:"local_id,omitempty"`
	ExternalID string         `json:"external_id,omitempty"`
	Message    string         `json:"message,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
