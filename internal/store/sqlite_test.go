package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
	_ "modernc.org/sqlite"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *SQLiteStore) *types.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), types.NewProject{Name: "Spring launch", Client: "Acme"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func seedScenario(t *testing.T, s *SQLiteStore, projectID string) []schedule.Milestone {
	t.Helper()
	// Inserted out of canonical order on purpose.
	ms, err := s.InsertMilestones(context.Background(), projectID, []types.NewMilestone{
		{Label: schedule.LabelGoLive, StartDate: "2026-01-30"},
		{Label: "Kickoff", StartDate: "2026-01-05"},
		{Label: schedule.LabelFinalDelivery, StartDate: "2026-01-25"},
		{Label: "Production", Phase: "Production", StartDate: "2026-01-10", EndDate: "2026-01-20"},
	})
	if err != nil {
		t.Fatalf("InsertMilestones: %v", err)
	}
	return ms
}

func TestStore_NewSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "slate.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestStore_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := seedProject(t, s)
	if len(p.ID) != 26 {
		t.Errorf("ID = %q, want a ULID", p.ID)
	}
	if p.Name != "Spring launch" || p.Client != "Acme" || p.GoLiveDate != "" {
		t.Errorf("created = %+v", p)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	got, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID || got.Name != p.Name {
		t.Errorf("GetProject = %+v", got)
	}

	if err := s.SetGoLive(ctx, p.ID, "2026-01-28"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProject(ctx, p.ID)
	if got.GoLiveDate != "2026-01-28" {
		t.Errorf("GoLiveDate = %q after SetGoLive", got.GoLiveDate)
	}
	if err := s.SetGoLive(ctx, p.ID, ""); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetProject(ctx, p.ID)
	if got.GoLiveDate != "" {
		t.Errorf("GoLiveDate = %q after clearing", got.GoLiveDate)
	}

	name := "Summer launch"
	updated, err := s.UpdateProject(ctx, p.ID, types.ProjectUpdate{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != name || updated.Client != "Acme" {
		t.Errorf("UpdateProject = %+v", updated)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetProject(ctx, p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("GetProject after delete error = %v, want ErrProjectNotFound", err)
	}
	if err := s.DeleteProject(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListProjects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	empty, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("ListProjects on empty store = %#v, want empty non-nil", empty)
	}

	a := seedProject(t, s)
	b, _ := s.CreateProject(ctx, types.NewProject{Name: "Second"})

	list, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Errorf("ListProjects order = %v, want newest first", list)
	}
}

func TestStore_ListMilestones_CanonicalOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	list, err := s.ListMilestones(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	var labels []string
	for _, m := range list {
		labels = append(labels, m.Label)
	}
	want := "Kickoff,Production,Final Delivery,Go Live"
	if got := strings.Join(labels, ","); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if list[1].Phase != "Production" || list[1].EndDate != "2026-01-20" {
		t.Errorf("Production = %+v", list[1])
	}
	if list[0].EndDate != "" || list[0].Phase != "" {
		t.Errorf("Kickoff nullable columns = %+v", list[0])
	}
}

func TestStore_ListMilestones_UnknownProject(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.ListMilestones(context.Background(), "01ARYZ6S41TSV4RRFFQ69G5FAV"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("error = %v, want ErrProjectNotFound", err)
	}
}

func TestStore_InsertMilestone_AppendsPosition(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)

	first, err := s.InsertMilestone(ctx, p.ID, types.NewMilestone{Label: "A", StartDate: "2026-01-05"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.InsertMilestone(ctx, p.ID, types.NewMilestone{Label: "B", StartDate: "2026-01-05"})
	if err != nil {
		t.Fatal(err)
	}

	var p1, p2 int
	s.db.QueryRow(`SELECT position FROM milestones WHERE id = ?`, first.ID).Scan(&p1)
	s.db.QueryRow(`SELECT position FROM milestones WHERE id = ?`, second.ID).Scan(&p2)
	if p1 != 0 || p2 != 1 {
		t.Errorf("positions = %d, %d; want 0, 1", p1, p2)
	}

	// Equal start dates keep insertion order.
	list, _ := s.ListMilestones(ctx, p.ID)
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("tie order = %v", list)
	}
}

func TestStore_InsertMilestone_Rejects(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)

	_, err := s.InsertMilestone(ctx, p.ID, types.NewMilestone{Label: "Edit", StartDate: "2026-01-10", EndDate: "2026-01-09"})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("inverted range error = %v, want ErrInvalidDateRange", err)
	}

	_, err = s.InsertMilestone(ctx, "01ARYZ6S41TSV4RRFFQ69G5FAV", types.NewMilestone{Label: "Edit", StartDate: "2026-01-10"})
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("unknown project error = %v, want ErrProjectNotFound", err)
	}
}

func TestStore_UpdateMilestoneDates_SingleRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	before, _ := s.ListMilestones(ctx, p.ID)
	changed := before[1]
	changed.EndDate = "2026-01-22"
	if err := s.UpdateMilestoneDates(ctx, p.ID, changed); err != nil {
		t.Fatal(err)
	}

	after, _ := s.ListMilestones(ctx, p.ID)
	for i := range before {
		want := before[i]
		if i == 1 {
			want = changed
		}
		if after[i] != want {
			t.Errorf("after[%d] = %+v, want %+v", i, after[i], want)
		}
	}
}

func TestStore_UpdateMilestoneDates_ClearsEnd(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	list, _ := s.ListMilestones(ctx, p.ID)
	m := list[1]
	m.StartDate, m.EndDate = "2026-01-12", ""
	if err := s.UpdateMilestoneDates(ctx, p.ID, m); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListMilestones(ctx, p.ID)
	if list[1].EndDate != "" {
		t.Errorf("EndDate = %q, want cleared", list[1].EndDate)
	}
}

func TestStore_UpdateMilestoneDates_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	ms := seedScenario(t, s, p.ID)

	bad := ms[3]
	bad.EndDate = "2026-01-01"
	if err := s.UpdateMilestoneDates(ctx, p.ID, bad); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("inverted error = %v", err)
	}

	other, _ := s.CreateProject(ctx, types.NewProject{Name: "Other"})
	if err := s.UpdateMilestoneDates(ctx, other.ID, ms[0]); !errors.Is(err, ErrMilestoneNotFound) {
		t.Errorf("cross-project error = %v, want ErrMilestoneNotFound", err)
	}
}

func TestStore_DeleteMilestone(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	ms := seedScenario(t, s, p.ID)

	if err := s.DeleteMilestone(ctx, p.ID, ms[0].ID); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListMilestones(ctx, p.ID)
	if len(list) != 3 {
		t.Errorf("len = %d after delete, want 3", len(list))
	}
	if err := s.DeleteMilestone(ctx, p.ID, ms[0].ID); !errors.Is(err, ErrMilestoneNotFound) {
		t.Errorf("second delete error = %v", err)
	}
}

func TestStore_DeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.MilestoneCount != 0 {
		t.Errorf("MilestoneCount = %d after cascade, want 0", stats.MilestoneCount)
	}
}

func TestStore_GetStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	stats, err := s.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.ProjectCount != 1 || stats.MilestoneCount != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.SchemaVersion < 1 {
		t.Errorf("SchemaVersion = %d, want >= 1", stats.SchemaVersion)
	}
}

func TestStore_Backup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	p := seedProject(t, s)
	seedScenario(t, s, p.ID)

	dir := filepath.Join(t.TempDir(), "backups")
	path, err := s.Backup(ctx, dir)
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("backup path = %s, want inside %s", path, dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, BackupPrefix) || !strings.HasSuffix(base, BackupExt) {
		t.Errorf("backup name = %s", base)
	}

	// The copy is a complete database.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM milestones`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("backup has %d milestones, want 4", n)
	}
}
