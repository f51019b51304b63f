package api

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperengineering/slate/internal/types"
)

func TestWithProject_RoundTrip(t *testing.T) {
	p := &types.Project{ID: "01ARYZ6S41TSV4RRFFQ69G5FAV", Name: "Spring launch"}

	got, err := ProjectFromContext(WithProject(context.Background(), p))
	if err != nil {
		t.Fatalf("ProjectFromContext() error = %v", err)
	}
	if got != p {
		t.Error("got different project instance")
	}
}

func TestProjectFromContext_Missing(t *testing.T) {
	if _, err := ProjectFromContext(context.Background()); !errors.Is(err, ErrNoProjectInContext) {
		t.Errorf("empty context error = %v", err)
	}
	if _, err := ProjectFromContext(WithProject(context.Background(), nil)); !errors.Is(err, ErrNoProjectInContext) {
		t.Errorf("nil project error = %v", err)
	}
}

func TestMustProjectFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustProjectFromContext did not panic")
		}
	}()
	MustProjectFromContext(context.Background())
}
