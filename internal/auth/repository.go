package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-dms/vantage-dms/internal/shared"
)

// ErrDuplicateIdentifier indicates the email or employee number is taken.
var ErrDuplicateIdentifier = errors.New("auth: duplicate identifier")

// Repository defines persistence operations for principals. Counter updates
// are single atomic UPDATEs; per-row atomicity comes from the database.
type Repository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*Principal, error)
	ResetFailedAttempts(ctx context.Context, id int64) error
	IncrementFailedAttempts(ctx context.Context, id int64) error
	Create(ctx context.Context, principal *Principal) (*Principal, error)
	SetLocked(ctx context.Context, id int64, locked bool) error
	List(ctx context.Context) ([]Principal, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const principalColumns = `id, employee_no, email, full_name, password_hash, role_id, is_active, is_locked, failed_attempts, created_at, updated_at`

// FindByIdentifier fetches a principal by email or employee number.
func (r *PGRepository) FindByIdentifier(ctx context.Context, identifier string) (*Principal, error) {
	identifier = strings.TrimSpace(identifier)
	column := "employee_no"
	if strings.Contains(identifier, "@") {
		column = "email"
		identifier = strings.ToLower(identifier)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+principalColumns+` FROM principals WHERE `+column+` = $1`, identifier)
	principal, err := scanPrincipal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return principal, nil
}

// ResetFailedAttempts zeroes the counter after a successful login.
func (r *PGRepository) ResetFailedAttempts(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE principals SET failed_attempts = 0, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// IncrementFailedAttempts bumps the counter after a credential mismatch.
func (r *PGRepository) IncrementFailedAttempts(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `UPDATE principals SET failed_attempts = failed_attempts + 1, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// Create inserts a new principal.
func (r *PGRepository) Create(ctx context.Context, principal *Principal) (*Principal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO principals (employee_no, email, full_name, password_hash, role_id, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING `+principalColumns,
		principal.EmployeeNo, strings.ToLower(principal.Email), principal.FullName,
		principal.PasswordHash, principal.RoleID,
	)
	created, err := scanPrincipal(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateIdentifier
		}
		return nil, err
	}
	return created, nil
}

// SetLocked flips the administrative lock flag.
func (r *PGRepository) SetLocked(ctx context.Context, id int64, locked bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE principals SET is_locked = $2, updated_at = NOW() WHERE id = $1`, id, locked)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns every principal ordered by id.
func (r *PGRepository) List(ctx context.Context) ([]Principal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+principalColumns+` FROM principals ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []Principal
	for rows.Next() {
		principal, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, *principal)
	}
	return principals, rows.Err()
}

func scanPrincipal(row pgx.Row) (*Principal, error) {
	var p Principal
	if err := row.Scan(&p.ID, &p.EmployeeNo, &p.Email, &p.FullName, &p.PasswordHash, &p.RoleID,
		&p.IsActive, &p.IsLocked, &p.FailedAttempts, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ Repository = (*PGRepository)(nil)
