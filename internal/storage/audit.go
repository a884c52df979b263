package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/radiusdt/adbridge/internal/models"
)

// InMemoryAuditStore keeps audit events in a slice. Used when ClickHouse is
// unavailable and throughout the test suite.
type InMemoryAuditStore struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) Append(ctx context.Context, ev *models.AuditEvent) error {
	if ev == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *ev
	s.events = append(s.events, &cp)
	return nil
}

// Events returns a snapshot of all recorded events.
func (s *InMemoryAuditStore) Events() []*models.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]*models.AuditEvent, len(s.events))
	copy(res, s.events)
	return res
}

// ClickHouseAuditStore writes audit events to an append-only ClickHouse
// table. Events are insert-only; there is no update or delete path.
type ClickHouseAuditStore struct {
	conn driver.Conn
}

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          String,
	type        String,
	kind        String,
	account_id  String,
	local_id    String,
	external_id String,
	message     String,
	timestamp   DateTime64(3, 'UTC')
) ENGINE = MergeTree()
ORDER BY (timestamp, type)
`

// NewClickHouseAuditStore creates the audit table if needed and returns the
// store.
func NewClickHouseAuditStore(ctx context.Context, conn driver.Conn) (*ClickHouseAuditStore, error) {
	if err := conn.Exec(ctx, auditSchema); err != nil {
		return nil, fmt.Errorf("create audit table: %w", err)
	}
	return &ClickHouseAuditStore{conn: conn}, nil
}

func (s *ClickHouseAuditStore) Append(ctx context.Context, ev *models.AuditEvent) error {
	if ev == nil {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO audit_events (id, type, kind, account_id, local_id, external_id, message, timestamp)`)
	if err != nil {
		return fmt.Errorf("prepare audit insert: %w", err)
	}
	if err := batch.Append(
		ev.ID, string(ev.Type), string(ev.Kind), ev.AccountID,
		ev.LocalID, ev.ExternalID, ev.Message, ev.Timestamp,
	); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("send audit event: %w", err)
	}
	return nil
}
