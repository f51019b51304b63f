package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/slate/internal/render"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/tui"
	"github.com/hyperengineering/slate/internal/validation"
)

var (
	calendarMonth string
	calendarSVG   bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar <project>",
	Short: "Print a read-only month calendar",
	Long:  "Print the customer view of one month: colored milestone cells and a legend. --svg writes the same month as an SVG document.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default: current month)")
	calendarCmd.Flags().BoolVar(&calendarSVG, "svg", false, "Write SVG instead of terminal output")
}

// parseMonthFlag returns the first day of the month named by v, or of the
// current month when v is empty.
func parseMonthFlag(v string) (time.Time, error) {
	if v == "" {
		return schedule.FirstOfMonth(time.Now()), nil
	}
	if verr := validation.ValidateMonth("month", v); verr != nil {
		return time.Time{}, validationFailed([]validation.ValidationError{*verr})
	}
	return schedule.ParseMonth(v)
}

func runCalendar(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	month, err := parseMonthFlag(calendarMonth)
	if err != nil {
		return err
	}

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := resolveProject(ctx, db, args[0])
	if err != nil {
		return err
	}
	list, err := db.ListMilestones(ctx, p.ID)
	if err != nil {
		return err
	}

	if !calendarSVG {
		fmt.Fprint(cmd.OutOrStdout(), tui.Calendar(*p, list, month))
		return nil
	}

	in := schedule.ReadOnly(month, list, p.GoLiveDate)
	in.PhaseForDay = schedule.PhaseLookup(list)
	conflicts := schedule.CheckConflicts(list, schedule.EffectiveGoLive(p.GoLiveDate, list))
	return render.MonthSVG(cmd.OutOrStdout(), schedule.BuildMonth(in), render.Legend(list, conflicts))
}
