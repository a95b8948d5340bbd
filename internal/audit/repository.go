package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines persistence operations for the login history.
type Repository interface {
	Append(ctx context.Context, event LoginEvent) error
	EventsSince(ctx context.Context, principalID int64, since time.Time) ([]LoginEvent, error)
	ActivePrincipals(ctx context.Context, since time.Time) ([]int64, error)
}

// PGRepository implements Repository using PostgreSQL. The login_events table
// is append-only; nothing in this repository updates or deletes rows.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Append inserts a new login event row.
func (r *PGRepository) Append(ctx context.Context, event LoginEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO login_events (id, principal_id, occurred_at, ip, country, city, user_agent, browser, device, os)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		event.ID, event.PrincipalID,
		pgtype.Timestamptz{Time: event.At.UTC(), Valid: true},
		event.IP, event.Country, event.City, event.UserAgent, event.Browser, event.Device, event.OS,
	)
	return err
}

// EventsSince returns the principal's events after the cutoff, oldest first.
func (r *PGRepository) EventsSince(ctx context.Context, principalID int64, since time.Time) ([]LoginEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, principal_id, occurred_at, ip, country, city, user_agent, browser, device, os
		FROM login_events
		WHERE principal_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at`,
		principalID, pgtype.Timestamptz{Time: since.UTC(), Valid: true},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []LoginEvent
	for rows.Next() {
		var event LoginEvent
		var at pgtype.Timestamptz
		if err := rows.Scan(&event.ID, &event.PrincipalID, &at, &event.IP, &event.Country, &event.City,
			&event.UserAgent, &event.Browser, &event.Device, &event.OS); err != nil {
			return nil, err
		}
		event.At = at.Time
		events = append(events, event)
	}
	return events, rows.Err()
}

// ActivePrincipals lists principals with at least one login after the cutoff.
func (r *PGRepository) ActivePrincipals(ctx context.Context, since time.Time) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT principal_id FROM login_events WHERE occurred_at >= $1 ORDER BY principal_id`,
		pgtype.Timestamptz{Time: since.UTC(), Valid: true},
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
