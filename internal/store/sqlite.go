package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the SQLite-backed project database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens dbPath, applies pragmas and runs migrations.
// ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().Format(time.RFC3339)
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*types.Project, error) {
	var p types.Project
	var goLive sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&p.ID, &p.Name, &p.Client, &goLive, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.GoLiveDate = goLive.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

const projectColumns = `id, name, client, go_live_date, created_at, updated_at`

// CreateProject inserts a project with a new ULID.
func (s *SQLiteStore) CreateProject(ctx context.Context, p types.NewProject) (*types.Project, error) {
	now := s.timestamp()
	id := ulid.Make().String()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, client, go_live_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.Client, nullable(p.GoLiveDate), now, now)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// GetProject returns a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateProject applies the non-nil fields of u.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, u types.ProjectUpdate) (*types.Project, error) {
	p, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Client != nil {
		p.Client = *u.Client
	}
	if u.GoLiveDate != nil {
		p.GoLiveDate = *u.GoLiveDate
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, client = ?, go_live_date = ?, updated_at = ?
		WHERE id = ?
	`, p.Name, p.Client, nullable(p.GoLiveDate), s.timestamp(), id)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return s.GetProject(ctx, id)
}

// SetGoLive sets the designated go-live date. An empty date clears it.
func (s *SQLiteStore) SetGoLive(ctx context.Context, id, date string) error {
	_, err := s.UpdateProject(ctx, id, types.ProjectUpdate{GoLiveDate: &date})
	return err
}

// DeleteProject removes a project and, by cascade, its milestones.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func projectExists(ctx context.Context, q queryRower, id string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProjectNotFound
	}
	if err != nil {
		return fmt.Errorf("check project: %w", err)
	}
	return nil
}

// ListMilestones returns a project's milestones in canonical order.
func (s *SQLiteStore) ListMilestones(ctx context.Context, projectID string) ([]schedule.Milestone, error) {
	if err := projectExists(ctx, s.db, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, phase, start_date, end_date
		FROM milestones
		WHERE project_id = ?
		ORDER BY position ASC, id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	var list []schedule.Milestone
	for rows.Next() {
		var m schedule.Milestone
		var phase, end sql.NullString
		if err := rows.Scan(&m.ID, &m.Label, &phase, &m.StartDate, &end); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.Phase = phase.String
		m.EndDate = end.String
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return schedule.SortMilestones(list), nil
}

// InsertMilestone appends one milestone to a project.
func (s *SQLiteStore) InsertMilestone(ctx context.Context, projectID string, m types.NewMilestone) (*schedule.Milestone, error) {
	out, err := s.InsertMilestones(ctx, projectID, []types.NewMilestone{m})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// InsertMilestones appends milestones to a project in one transaction,
// assigning consecutive positions after the current last one.
func (s *SQLiteStore) InsertMilestones(ctx context.Context, projectID string, ms []types.NewMilestone) ([]schedule.Milestone, error) {
	for _, m := range ms {
		if m.EndDate != "" && m.EndDate < m.StartDate {
			return nil, fmt.Errorf("%w: %s ends %s before it starts %s", ErrInvalidDateRange, m.Label, m.EndDate, m.StartDate)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := projectExists(ctx, tx, projectID); err != nil {
		return nil, err
	}

	var next int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM milestones WHERE project_id = ?`, projectID).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO milestones (id, project_id, label, phase, start_date, end_date, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	now := s.timestamp()
	out := make([]schedule.Milestone, 0, len(ms))
	for i, m := range ms {
		id := ulid.Make().String()
		_, err := stmt.ExecContext(ctx, id, projectID, m.Label, nullable(m.Phase), m.StartDate, nullable(m.EndDate), next+i, now, now)
		if err != nil {
			return nil, fmt.Errorf("insert milestone: %w", err)
		}
		out = append(out, schedule.Milestone{
			ID:        id,
			Label:     m.Label,
			Phase:     m.Phase,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		})
	}

	if _, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, now, projectID); err != nil {
		return nil, fmt.Errorf("touch project: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return out, nil
}

// UpdateMilestoneDates persists a committed drag: a single-row write of the
// milestone's start and end dates.
func (s *SQLiteStore) UpdateMilestoneDates(ctx context.Context, projectID string, m schedule.Milestone) error {
	if m.EndDate != "" && m.EndDate < m.StartDate {
		return fmt.Errorf("%w: %s..%s", ErrInvalidDateRange, m.StartDate, m.EndDate)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE milestones SET start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND project_id = ?
	`, m.StartDate, nullable(m.EndDate), s.timestamp(), m.ID, projectID)
	if err != nil {
		return fmt.Errorf("update milestone: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

// DeleteMilestone removes one milestone from a project.
func (s *SQLiteStore) DeleteMilestone(ctx context.Context, projectID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM milestones WHERE id = ? AND project_id = ?`, id, projectID)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

// GetStats returns aggregate store statistics
func (s *SQLiteStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	var stats types.StoreStats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM projects), (SELECT COUNT(*) FROM milestones)
	`).Scan(&stats.ProjectCount, &stats.MilestoneCount)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	v, err := SchemaVersion(s.db)
	if err != nil {
		return nil, err
	}
	stats.SchemaVersion = v
	return &stats, nil
}

// BackupPrefix and BackupExt frame every backup file name.
const (
	BackupPrefix = "slate-"
	BackupExt    = ".db"
)

// Backup writes a consistent copy of the database into dir with VACUUM INTO
// and returns the new file's path.
func (s *SQLiteStore) Backup(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	name := BackupPrefix + s.now().Format("20060102T150405.000000000Z") + BackupExt
	path := filepath.Join(dir, name)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", path, err)
	}
	return path, nil
}
