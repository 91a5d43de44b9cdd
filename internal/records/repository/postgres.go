package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

//go:embed schema.sql
var schemaSQL string

var _ Store = (*PostgresStore)(nil)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates missing tables and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}

const projectCols = `id, user_id, name, description, start_date, end_date, budget, status, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		p      domain.Project
		status string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.StartDate, &p.EndDate,
		&p.Budget, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	return &p, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, p *domain.Project) error {
	const q = `
insert into projects (` + projectCols + `)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	id := uuid.NewString()
	if _, err := s.db.Exec(ctx, q, id, p.UserID, p.Name, p.Description, p.StartDate, p.EndDate,
		p.Budget, string(p.Status), p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = id
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	const q = `select ` + projectCols + ` from projects where id = $1 and user_id = $2;`

	p, err := scanProject(s.db.QueryRow(ctx, q, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	const q = `select ` + projectCols + ` from projects where user_id = $1 order by created_at desc;`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateProject(ctx context.Context, userID, id string, patch domain.ProjectPatch, now time.Time) (*domain.Project, error) {
	const q = `
update projects set
    name        = coalesce($3, name),
    description = coalesce($4, description),
    start_date  = coalesce($5, start_date),
    end_date    = coalesce($6, end_date),
    budget      = coalesce($7, budget),
    status      = coalesce($8, status),
    updated_at  = $9
where id = $1 and user_id = $2
returning ` + projectCols + `;
`
	p, err := scanProject(s.db.QueryRow(ctx, q, id, userID, patch.Name, patch.Description,
		patch.StartDate, patch.EndDate, patch.Budget, statusArg(patch.Status), now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ActivateProjectIfPending(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	const q = `
update projects set status = $3, updated_at = $4
where id = $1 and user_id = $2 and status = $5;
`
	ct, err := s.db.Exec(ctx, q, id, userID, string(domain.StatusActive), now, string(domain.StatusPending))
	if err != nil {
		return false, fmt.Errorf("activate project: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PostgresStore) DeleteProjectCascade(ctx context.Context, userID, id string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `delete from projects where id = $1 and user_id = $2;`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return 0, domain.ErrProjectNotFound
	}

	ct, err = tx.Exec(ctx, `delete from bookings where project_id = $1;`, id)
	if err != nil {
		return 0, fmt.Errorf("delete bookings of project %s: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (s *PostgresStore) CountProjectsByStatus(ctx context.Context, userID string) (map[domain.Status]int64, error) {
	const q = `select status, count(*) from projects where user_id = $1 group by status;`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}
	defer rows.Close()

	out := make(map[domain.Status]int64, len(domain.ProjectStatuses))
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[domain.Status(status)] = n
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	const q = `
insert into bookings (id, project_id, project_name, booking_date, duration, status, user_id, created_at)
values ($1, $2, $3, $4, $5, $6, $7, $8);
`
	id := uuid.NewString()
	if _, err := s.db.Exec(ctx, q, id, b.ProjectID, b.ProjectName, b.Date, b.Duration,
		string(b.Status), b.UserID, b.CreatedAt); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = id
	return nil
}

// The inner join hides bookings whose project is gone.
const bookingSelect = `
select b.id, b.project_id, b.project_name, b.booking_date, b.duration, b.status, b.user_id, b.created_at,
       p.id, p.user_id, p.name, p.description, p.start_date, p.end_date, p.budget, p.status, p.created_at, p.updated_at
from bookings b
join projects p on p.id = b.project_id
`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b                domain.Booking
		p                domain.Project
		bStatus, pStatus string
	)
	if err := row.Scan(&b.ID, &b.ProjectID, &b.ProjectName, &b.Date, &b.Duration, &bStatus, &b.UserID, &b.CreatedAt,
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.StartDate, &p.EndDate, &p.Budget, &pStatus,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.Status(bStatus)
	p.Status = domain.Status(pStatus)
	b.Project = &p
	return &b, nil
}

func (s *PostgresStore) GetBooking(ctx context.Context, userID, id string) (*domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, bookingSelect+`where b.id = $1 and b.user_id = $2;`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select booking: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := s.db.Query(ctx, bookingSelect+`where b.user_id = $1 order by b.created_at desc;`, userID)
	if err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Booking, 0, 16)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateBooking(ctx context.Context, userID, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	const q = `
update bookings set
    booking_date = coalesce($3, booking_date),
    duration     = coalesce($4, duration),
    status       = coalesce($5, status)
where id = $1 and user_id = $2
  and exists (select 1 from projects p where p.id = bookings.project_id);
`
	ct, err := s.db.Exec(ctx, q, id, userID, patch.Date, patch.Duration, statusArg(patch.Status))
	if err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return nil, domain.ErrBookingNotFound
	}
	return s.GetBooking(ctx, userID, id)
}

func (s *PostgresStore) DeleteBooking(ctx context.Context, userID, id string) error {
	ct, err := s.db.Exec(ctx, `delete from bookings where id = $1 and user_id = $2;`, id, userID)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *PostgresStore) CountBookings(ctx context.Context, userID string) (int64, error) {
	const q = `
select count(*) from bookings b
join projects p on p.id = b.project_id
where b.user_id = $1;
`
	var n int64
	if err := s.db.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountBookingsForProject(ctx context.Context, projectID string) (int64, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `select count(*) from bookings where project_id = $1;`, projectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count project bookings: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) DeleteOrphanBookings(ctx context.Context) (int64, error) {
	const q = `
delete from bookings b
where not exists (select 1 from projects p where p.id = b.project_id);
`
	ct, err := s.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("delete orphan bookings: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	fields, err := json.Marshal(sub.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	const q = `
insert into submissions (id, form, fields, status, created_at)
values ($1, $2, $3::jsonb, $4, $5);
`
	id := uuid.NewString()
	if _, err := s.db.Exec(ctx, q, id, string(sub.Form), string(fields), string(sub.Status), sub.CreatedAt); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	sub.ID = id
	return nil
}

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var (
		sub          domain.Submission
		form, status string
		raw          []byte
	)
	if err := row.Scan(&sub.ID, &form, &raw, &status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Fields = map[string]string{}
	if err := json.Unmarshal(raw, &sub.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of submission %s: %w", sub.ID, err)
	}
	sub.Form = domain.FormKind(form)
	sub.Status = domain.Status(status)
	return &sub, nil
}

func (s *PostgresStore) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	const q = `select id, form, fields, status, created_at from submissions where id = $1;`

	sub, err := scanSubmission(s.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select submission: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, form domain.FormKind, limit int) ([]domain.Submission, error) {
	const q = `
select id, form, fields, status, created_at from submissions
where ($1::text = '' or form = $1)
order by created_at desc
limit $2;
`
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, q, string(form), limit)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Submission, 0, 16)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

func statusArg(s *domain.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
