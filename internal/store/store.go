package store

import (
	"context"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
)

// Store defines the persistence contract for projects and their milestones.
// Milestone lists are always returned in canonical order.
type Store interface {
	CreateProject(ctx context.Context, p types.NewProject) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context) ([]types.Project, error)
	UpdateProject(ctx context.Context, id string, u types.ProjectUpdate) (*types.Project, error)
	SetGoLive(ctx context.Context, id, date string) error
	DeleteProject(ctx context.Context, id string) error

	ListMilestones(ctx context.Context, projectID string) ([]schedule.Milestone, error)
	InsertMilestone(ctx context.Context, projectID string, m types.NewMilestone) (*schedule.Milestone, error)
	InsertMilestones(ctx context.Context, projectID string, ms []types.NewMilestone) ([]schedule.Milestone, error)
	UpdateMilestoneDates(ctx context.Context, projectID string, m schedule.Milestone) error
	DeleteMilestone(ctx context.Context, projectID, id string) error

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Backup(ctx context.Context, dir string) (string, error)
	Close() error
}
