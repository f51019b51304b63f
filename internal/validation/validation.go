package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/types"
)

const (
	maxNameLength  = 200
	maxLabelLength = 100
	dateLayout     = "2006-01-02"
	monthLayout    = "2006-01"
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateULID returns an error if the value is not a valid ULID format.
// ULIDs are 26 characters using Crockford Base32 (excludes I, L, O, U).
func ValidateULID(field, value string) *ValidationError {
	if len(value) != 26 {
		return &ValidationError{
			Field:   field,
			Message: "must be a valid ULID (26 characters)",
		}
	}

	// Crockford Base32 alphabet: 0123456789ABCDEFGHJKMNPQRSTVWXYZ
	// Excludes: I, L, O, U (to avoid confusion)
	const crockfordBase32 = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"
	for _, r := range value {
		upper := strings.ToUpper(string(r))
		if !strings.Contains(crockfordBase32, upper) {
			return &ValidationError{
				Field:   field,
				Message: "must be a valid ULID (invalid character)",
			}
		}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateDate returns an error unless value is a real calendar date in
// YYYY-MM-DD form.
func ValidateDate(field, value string) *ValidationError {
	t, err := time.Parse(dateLayout, value)
	if err != nil || t.Format(dateLayout) != value {
		return &ValidationError{
			Field:   field,
			Message: "must be a date in YYYY-MM-DD format",
		}
	}
	return nil
}

// ValidateDateRange returns an error on endField when end is before start.
// Both values must already be valid dates; an empty end is a single-day milestone.
func ValidateDateRange(endField, start, end string) *ValidationError {
	if end != "" && end < start {
		return &ValidationError{
			Field:   endField,
			Message: "must not be before start_date",
		}
	}
	return nil
}

// ValidateMonth returns an error unless value is a month in YYYY-MM form.
func ValidateMonth(field, value string) *ValidationError {
	t, err := time.Parse(monthLayout, value)
	if err != nil || t.Format(monthLayout) != value {
		return &ValidationError{
			Field:   field,
			Message: "must be a month in YYYY-MM format",
		}
	}
	return nil
}

func validateText(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateNewProject validates a project creation request.
func ValidateNewProject(p types.NewProject) []ValidationError {
	var c Collector
	if err := ValidateRequired("name", p.Name); err != nil {
		c.Add(err)
	} else {
		validateText(&c, "name", p.Name, maxNameLength)
	}
	validateText(&c, "client", p.Client, maxNameLength)
	if p.GoLiveDate != "" {
		c.Add(ValidateDate("go_live_date", p.GoLiveDate))
	}
	return c.Errors()
}

// ValidateProjectUpdate validates a partial project update.
func ValidateProjectUpdate(u types.ProjectUpdate) []ValidationError {
	var c Collector
	if u.Name == nil && u.Client == nil && u.GoLiveDate == nil {
		c.Add(&ValidationError{Field: "body", Message: "must set at least one of name, client, go_live_date"})
	}
	if u.Name != nil {
		if err := ValidateRequired("name", *u.Name); err != nil {
			c.Add(err)
		} else {
			validateText(&c, "name", *u.Name, maxNameLength)
		}
	}
	if u.Client != nil {
		validateText(&c, "client", *u.Client, maxNameLength)
	}
	if u.GoLiveDate != nil && *u.GoLiveDate != "" {
		c.Add(ValidateDate("go_live_date", *u.GoLiveDate))
	}
	return c.Errors()
}

// ValidateNewMilestone validates a milestone before it is stored. A milestone
// whose end is before its start is rejected here so classification never
// sees an empty range.
func ValidateNewMilestone(m types.NewMilestone) []ValidationError {
	var c Collector
	if err := ValidateRequired("label", m.Label); err != nil {
		c.Add(err)
	} else {
		validateText(&c, "label", m.Label, maxLabelLength)
	}
	validateText(&c, "phase", m.Phase, maxLabelLength)

	startErr := ValidateRequired("start_date", m.StartDate)
	if startErr == nil {
		startErr = ValidateDate("start_date", m.StartDate)
	}
	c.Add(startErr)

	var endErr *ValidationError
	if m.EndDate != "" {
		endErr = ValidateDate("end_date", m.EndDate)
		c.Add(endErr)
	}
	if startErr == nil && endErr == nil {
		c.Add(ValidateDateRange("end_date", m.StartDate, m.EndDate))
	}
	return c.Errors()
}

// ValidatePlanRequest validates a template plan request against the known
// template names.
func ValidatePlanRequest(req types.PlanRequest, templates []string) []ValidationError {
	var c Collector
	if err := ValidateRequired("start", req.Start); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateDate("start", req.Start))
	}
	if req.Template != "" {
		c.Add(ValidateEnum("template", req.Template, templates))
	}
	return c.Errors()
}

// DragTypeNames returns the accepted drag type values.
func DragTypeNames() []string {
	names := make([]string, len(schedule.DragTypes))
	for i, t := range schedule.DragTypes {
		names[i] = string(t)
	}
	return names
}

// ValidateDragRequest validates a drag preview or commit request.
func ValidateDragRequest(req types.DragRequest) []ValidationError {
	var c Collector
	if err := ValidateRequired("milestone_id", req.MilestoneID); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateULID("milestone_id", req.MilestoneID))
	}
	c.Add(ValidateEnum("type", req.Type, DragTypeNames()))
	if err := ValidateRequired("target", req.Target); err != nil {
		c.Add(err)
	} else {
		c.Add(ValidateDate("target", req.Target))
	}
	if req.GrabDate != "" {
		c.Add(ValidateDate("grab_date", req.GrabDate))
	}
	return c.Errors()
}
