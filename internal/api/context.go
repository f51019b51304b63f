package api

import (
	"context"
	"errors"

	"github.com/hyperengineering/slate/internal/types"
)

// projectContextKey is the context key for the resolved project.
type projectContextKey struct{}

// ErrNoProjectInContext indicates no project was found in the context.
var ErrNoProjectInContext = errors.New("no project in context")

// WithProject returns a new context with the project attached.
func WithProject(ctx context.Context, p *types.Project) context.Context {
	return context.WithValue(ctx, projectContextKey{}, p)
}

// ProjectFromContext extracts the project from the context.
// Returns ErrNoProjectInContext if not present or nil.
func ProjectFromContext(ctx context.Context) (*types.Project, error) {
	p, ok := ctx.Value(projectContextKey{}).(*types.Project)
	if !ok || p == nil {
		return nil, ErrNoProjectInContext
	}
	return p, nil
}

// MustProjectFromContext extracts the project or panics.
// Use only behind ProjectCtx.
func MustProjectFromContext(ctx context.Context) *types.Project {
	p, err := ProjectFromContext(ctx)
	if err != nil {
		panic("project not in context: middleware misconfiguration")
	}
	return p
}
