package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/slate/internal/tui"
)

var editMonth string

var editCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Drag milestones in an interactive terminal calendar",
	Long:  "Open a mouse-driven month calendar. Drag a milestone to move it, or drag its first or last day to resize. Valid drops are saved immediately.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editMonth, "month", "", "Month to open (YYYY-MM, default: first milestone's month)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// A zero month lets the editor open on the first milestone.
	var month time.Time
	if editMonth != "" {
		m, err := parseMonthFlag(editMonth)
		if err != nil {
			return err
		}
		month = m
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

	prog := tea.NewProgram(tui.New(*p, list, db, month),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}
