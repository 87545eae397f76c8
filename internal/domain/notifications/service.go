package notifications

import (
	"context"
	"time"

	"fieldops/internal/platform/querier"
)

const (
	KindLeaveApproved  = "leave.approved"
	KindLeaveRejected  = "leave.rejected"
	KindLeaveCancelled = "leave.cancelled"
)

type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipientId"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	ReferenceID string    `json:"referenceId,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

func (s *Service) Notify(ctx context.Context, recipientID, kind, message, referenceID string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (recipient_id, kind, message, reference_id)
    VALUES ($1,$2,$3,NULLIF($4,''))
  `, recipientID, kind, message, referenceID)
	return err
}

func (s *Service) ListForRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]Notification, error) {
	query := `
    SELECT id, recipient_id, kind, message, COALESCE(reference_id, ''), read, created_at
    FROM notifications
    WHERE recipient_id = $1
  `
	if unreadOnly {
		query += " AND NOT read"
	}
	query += " ORDER BY created_at DESC LIMIT 100"

	rows, err := s.DB.Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Message, &n.ReferenceID, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = true
    WHERE id = $1 AND recipient_id = $2
  `, notificationID, recipientID)
	return err
}
