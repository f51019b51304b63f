package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/store"
	"github.com/hyperengineering/slate/internal/validation"
)

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

type problemType struct {
	typeURI string
	title   string
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]problemType{
	http.StatusUnauthorized: {
		typeURI: "https://slate.dev/errors/unauthorized",
		title:   "Unauthorized",
	},
	http.StatusBadRequest: {
		typeURI: "https://slate.dev/errors/bad-request",
		title:   "Bad Request",
	},
	http.StatusNotFound: {
		typeURI: "https://slate.dev/errors/not-found",
		title:   "Not Found",
	},
	http.StatusInternalServerError: {
		typeURI: "https://slate.dev/errors/internal-error",
		title:   "Internal Server Error",
	},
	http.StatusUnprocessableEntity: {
		typeURI: "https://slate.dev/errors/validation-error",
		title:   "Validation Error",
	},
	http.StatusServiceUnavailable: {
		typeURI: "https://slate.dev/errors/service-unavailable",
		title:   "Service Unavailable",
	},
	http.StatusConflict: {
		typeURI: "https://slate.dev/errors/conflict",
		title:   "Conflict",
	},
}

// dragRejected is the problem type of a drop that breaks the schedule rules.
var dragRejected = problemType{
	typeURI: "https://slate.dev/errors/drag-rejected",
	title:   "Drag Rejected",
}

func newProblem(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt = problemType{
			typeURI: "https://slate.dev/errors/unknown",
			title:   http.StatusText(status),
		}
	}
	return Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "error", err)
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, newProblem(r, status, detail))
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	writeProblemBody(w, http.StatusUnprocessableEntity, ProblemWithErrors{
		Problem: newProblem(r, http.StatusUnprocessableEntity, detail),
		Errors:  errs,
	})
}

// DragProblem is the 409 body for a rejected drop. Nothing was written.
type DragProblem struct {
	Problem
	DeniedIdx int   `json:"denied_idx"`
	Conflicts []int `json:"conflicts"`
}

// WriteProblemDragRejected writes a 409 naming the denied milestone and every
// index the dropped preview flagged.
func WriteProblemDragRejected(w http.ResponseWriter, r *http.Request, deniedIdx int, conflicts []int) {
	p := newProblem(r, http.StatusConflict, "Drop violates milestone order or go-live date")
	p.Type = dragRejected.typeURI
	p.Title = dragRejected.title
	writeProblemBody(w, http.StatusConflict, DragProblem{
		Problem:   p,
		DeniedIdx: deniedIdx,
		Conflicts: conflicts,
	})
}

// MapStoreError converts domain errors to Problem Details responses.
func MapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Project not found")
	case errors.Is(err, store.ErrMilestoneNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Milestone not found")
	case errors.Is(err, store.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, "Resource not found")
	case errors.Is(err, store.ErrInvalidDateRange):
		WriteProblem(w, r, http.StatusUnprocessableEntity, "End date is before start date")
	case errors.Is(err, schedule.ErrBadDate):
		WriteProblem(w, r, http.StatusBadRequest, "Malformed date")
	default:
		// Never expose internal error details to client
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
