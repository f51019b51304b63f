package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperengineering/slate/internal/config"
	"github.com/hyperengineering/slate/internal/store"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

// openStore opens the database named by --db or the config. No API key is
// needed for local commands.
func openStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := config.LoadLocal()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	path := cfg.Database.Path
	if dbPathOverride != "" {
		path = dbPathOverride
	}
	db, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// resolveProject finds a project by ID, or failing that by exact
// case-insensitive name.
func resolveProject(ctx context.Context, s store.Store, ref string) (*types.Project, error) {
	p, err := s.GetProject(ctx, ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrProjectNotFound) {
		return nil, err
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	var found *types.Project
	for i := range projects {
		if strings.EqualFold(projects[i].Name, ref) {
			if found != nil {
				return nil, fmt.Errorf("project name %q is ambiguous; use the ID", ref)
			}
			found = &projects[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("project %q: %w", ref, store.ErrProjectNotFound)
	}
	return found, nil
}

// validationFailed joins field errors into one error.
func validationFailed(errs []validation.ValidationError) error {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Field + ": " + e.Message
	}
	return fmt.Errorf("invalid input: %s", strings.Join(parts, "; "))
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
