package audit

import (
	"context"
	"encoding/json"
	"time"

	"fieldops/internal/platform/querier"
)

type Entry struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Service records an audit row for every lifecycle transition. Failures are
// logged by callers, never propagated: auditing must not block the
// transition that already committed.
type Service struct {
	DB querier.Querier
}

func NewService(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, payload any) error {
	var encoded []byte
	if payload != nil {
		var err error
		encoded, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}
	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log (actor_id, action, entity_type, entity_id, request_id, payload)
    VALUES ($1,$2,$3,$4,NULLIF($5,''),$6)
  `, actorID, action, entityType, entityID, requestID, encoded)
	return err
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.DB.Query(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, COALESCE(request_id, ''), payload, created_at
    FROM audit_log
    ORDER BY created_at DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.EntityType, &e.EntityID, &e.RequestID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
