package graduate

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record matches the given identifier.
var ErrNotFound = errors.New("graduate not found")

const graduateColumns = `id, submission_date, name, email, qualification, student_id,
	payment_status, gown_option, additional_guests, total_amount, unique_id,
	gown_size, submission_id, photo_path,
	attended, check_in_time, checked_in_by, gown_collected, gown_returned,
	gown_notes, seat_row, seat_number, presentation_order, display_name,
	course_name, created_at, updated_at`

// Repository persists graduate records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGraduate(row rowScanner) (Graduate, error) {
	var g Graduate
	err := row.Scan(
		&g.ID, &g.SubmissionDate, &g.Name, &g.Email, &g.Qualification, &g.StudentID,
		&g.PaymentStatus, &g.GownOption, &g.AdditionalGuests, &g.TotalAmount, &g.UniqueID,
		&g.GownSize, &g.SubmissionID, &g.PhotoPath,
		&g.Attended, &g.CheckInTime, &g.CheckedInBy, &g.GownCollected, &g.GownReturned,
		&g.GownNotes, &g.SeatRow, &g.SeatNumber, &g.PresentationOrder, &g.DisplayName,
		&g.CourseName, &g.CreatedAt, &g.UpdatedAt,
	)
	return g, err
}

// FindByID returns a single record by primary key.
func (r *Repository) FindByID(ctx context.Context, id string) (Graduate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+graduateColumns+` FROM graduates WHERE id = $1`, id)
	g, err := scanGraduate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graduate{}, ErrNotFound
	}
	return g, err
}

// FindByUniqueID returns a single record by the externally-issued unique id.
func (r *Repository) FindByUniqueID(ctx context.Context, uniqueID string) (Graduate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+graduateColumns+` FROM graduates WHERE unique_id = $1`, uniqueID)
	g, err := scanGraduate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graduate{}, ErrNotFound
	}
	return g, err
}

// likeEscaper neutralizes LIKE metacharacters so a query is always
// matched literally; student ids and submission ids contain underscores.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func searchPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// Search matches q as a case-insensitive substring of student id, name,
// email, unique id or submission id, ordered by name. An empty query
// yields no rows; the search screens require an explicit query.
func (r *Repository) Search(ctx context.Context, q string) ([]Graduate, error) {
	if q == "" {
		return nil, nil
	}
	pattern := searchPattern(q)
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+graduateColumns+`
		FROM graduates
		WHERE student_id ILIKE $1
		   OR name ILIKE $1
		   OR email ILIKE $1
		   OR unique_id ILIKE $1
		   OR submission_id ILIKE $1
		ORDER BY name ASC
	`, pattern)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Valid sort keys for List. Anything else falls back to the ceremony
// default of presentation order then name, unordered records last.
var sortColumns = map[string]string{
	"name":           "name",
	"unique_id":      "unique_id",
	"attended":       "attended",
	"gown_collected": "gown_collected",
}

// List returns every record ordered by sortKey.
func (r *Repository) List(ctx context.Context, sortKey string, desc bool) ([]Graduate, error) {
	order := "presentation_order ASC NULLS LAST, name ASC"
	if col, ok := sortColumns[sortKey]; ok {
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		order = col + " " + dir + ", name ASC"
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+graduateColumns+` FROM graduates ORDER BY `+order)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Eligible returns the stage-eligible set: attended with gown collected,
// in ascending unique id order.
func (r *Repository) Eligible(ctx context.Context) ([]Graduate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+graduateColumns+`
		FROM graduates
		WHERE attended AND gown_collected
		ORDER BY unique_id ASC
	`)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Graduate, error) {
	defer rows.Close()
	var res []Graduate
	for rows.Next() {
		g, err := scanGraduate(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}

// Update applies a partial column update and returns the fresh record.
// Callers are expected to pass only allow-listed columns.
func (r *Repository) Update(ctx context.Context, id string, changes map[string]any) (Graduate, error) {
	if len(changes) == 0 {
		return r.FindByID(ctx, id)
	}
	query := `UPDATE graduates SET updated_at = NOW()`
	args := []any{}
	for col, val := range changes {
		args = append(args, val)
		query += ", " + col + " = $" + strconv.Itoa(len(args))
	}
	args = append(args, id)
	query += ` WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + graduateColumns

	row := r.db.QueryRowContext(ctx, query, args...)
	g, err := scanGraduate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graduate{}, ErrNotFound
	}
	return g, err
}

// StampCheckIn sets attended and the check-in timestamp in one write.
// The timestamp is only written when still null, so a re-submitted
// check-in never moves it.
func (r *Repository) StampCheckIn(ctx context.Context, id, staffInitials string, at time.Time) (Graduate, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE graduates
		SET attended = TRUE,
		    check_in_time = COALESCE(check_in_time, $2),
		    checked_in_by = CASE WHEN $3 <> '' THEN $3 ELSE checked_in_by END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+graduateColumns, id, at, staffInitials)
	g, err := scanGraduate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Graduate{}, ErrNotFound
	}
	return g, err
}

// AggregateCounts computes the dashboard tallies in one pass.
func (r *Repository) AggregateCounts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE attended),
		       COUNT(*) FILTER (WHERE gown_collected),
		       COUNT(*) FILTER (WHERE gown_returned),
		       COUNT(*) FILTER (WHERE gown_option ILIKE '%hire%')
		FROM graduates
	`).Scan(&c.Total, &c.CheckedIn, &c.GownCollected, &c.GownReturned, &c.GownToReturn)
	return c, err
}

// Upsert creates or rewrites the import-sourced columns of a record keyed
// by unique id. Event-control columns are left untouched on update;
// display_name falls back to name on first insert. Reports whether a new
// row was created.
func (r *Repository) Upsert(ctx context.Context, g Graduate) (bool, error) {
	if g.UniqueID == "" {
		return false, errors.New("unique id required")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	displayName := g.DisplayName
	if displayName == "" {
		displayName = g.Name
	}
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO graduates (
			id, submission_date, name, email, qualification, student_id,
			payment_status, gown_option, additional_guests, total_amount,
			unique_id, gown_size, submission_id, display_name
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (unique_id) DO UPDATE SET
			submission_date   = EXCLUDED.submission_date,
			name              = EXCLUDED.name,
			email             = EXCLUDED.email,
			qualification     = EXCLUDED.qualification,
			student_id        = EXCLUDED.student_id,
			payment_status    = EXCLUDED.payment_status,
			gown_option       = EXCLUDED.gown_option,
			additional_guests = EXCLUDED.additional_guests,
			total_amount      = EXCLUDED.total_amount,
			gown_size         = EXCLUDED.gown_size,
			submission_id     = EXCLUDED.submission_id,
			updated_at        = NOW()
		RETURNING (xmax = 0)
	`, g.ID, g.SubmissionDate, g.Name, g.Email, g.Qualification, g.StudentID,
		g.PaymentStatus, g.GownOption, g.AdditionalGuests, g.TotalAmount,
		g.UniqueID, g.GownSize, g.SubmissionID, displayName).Scan(&created)
	return created, err
}
