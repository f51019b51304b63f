package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/slate/internal/metrics"
	"github.com/hyperengineering/slate/internal/schedule"
	"github.com/hyperengineering/slate/internal/store"
	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

var (
	milestonePhase   string
	milestoneGrouped bool
	planTemplate     string
)

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage a project's milestones",
}

var milestoneListCmd = &cobra.Command{
	Use:   "list <project>",
	Short: "List milestones in canonical order",
	Args:  cobra.ExactArgs(1),
	RunE:  runMilestoneList,
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add <project> <label> <start> [end]",
	Short: "Add a milestone",
	Long:  "Add a milestone spanning start to end (YYYY-MM-DD). Without an end it is a single day.",
	Args:  cobra.RangeArgs(3, 4),
	RunE:  runMilestoneAdd,
}

var milestoneRmCmd = &cobra.Command{
	Use:   "rm <project> <milestone-id>",
	Short: "Remove a milestone",
	Args:  cobra.ExactArgs(2),
	RunE:  runMilestoneRm,
}

var milestonePlanCmd = &cobra.Command{
	Use:   "plan <project> <start>",
	Short: "Draft a timeline from a template",
	Long:  "Insert a draft timeline: kickoff on the first Tuesday on or after start, then each template phase in business days, Final Delivery and Go Live.",
	Args:  cobra.ExactArgs(2),
	RunE:  runMilestonePlan,
}

func init() {
	milestoneListCmd.Flags().BoolVar(&milestoneGrouped, "grouped", false, "Show phase groups")
	milestoneAddCmd.Flags().StringVar(&milestonePhase, "phase", "", "Phase the milestone belongs to")
	milestonePlanCmd.Flags().StringVar(&planTemplate, "template", "", "Template name (default: standard)")

	milestoneCmd.AddCommand(milestoneListCmd)
	milestoneCmd.AddCommand(milestoneAddCmd)
	milestoneCmd.AddCommand(milestoneRmCmd)
	milestoneCmd.AddCommand(milestonePlanCmd)
}

func runMilestoneList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := resolveProject(ctx, db, args[0])
	if err != nil {
		return err
	}
	return printMilestones(ctx, cmd, db, p)
}

// printMilestones writes p's canonical list with conflict flags.
func printMilestones(ctx context.Context, cmd *cobra.Command, db store.Store, p *types.Project) error {
	list, err := db.ListMilestones(ctx, p.ID)
	if err != nil {
		return err
	}
	goLive := schedule.EffectiveGoLive(p.GoLiveDate, list)
	conflicts := schedule.CheckConflicts(list, goLive)
	views := types.MilestoneViews(list, conflicts)

	var groups []types.PhaseGroupView
	if milestoneGrouped {
		for _, g := range schedule.GroupByPhase(list) {
			ids := make([]string, len(g.Milestones))
			for i, m := range g.Milestones {
				ids[i] = m.ID
			}
			groups = append(groups, types.PhaseGroupView{Phase: g.Phase, FirstIndex: g.FirstIndex, MilestoneIDs: ids})
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), types.MilestoneListResponse{
			ProjectID:  p.ID,
			GoLiveDate: goLive,
			Milestones: views,
			Conflicts:  conflicts.Indices(),
			Groups:     groups,
		})
	}

	out := cmd.OutOrStdout()
	if len(views) == 0 {
		fmt.Fprintf(out, "No milestones for %q.\n", p.Name)
		return nil
	}

	w := newTabWriter(out)
	fmt.Fprintln(w, "#\tID\tLABEL\tPHASE\tSTART\tEND\tDAYS\t")
	for _, v := range views {
		flag := ""
		if v.Red {
			flag = "✗"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			v.Index, v.ID, v.Label, orDash(v.Phase), v.StartDate, orDash(v.EndDate), v.WorkingDays, flag)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, g := range groups {
		fmt.Fprintf(out, "%s: %d milestone(s) from #%d\n", orDash(g.Phase), len(g.MilestoneIDs), g.FirstIndex)
	}
	if goLive != "" {
		fmt.Fprintf(out, "Go-live: %s\n", goLive)
	}
	return nil
}

func runMilestoneAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	nm := types.NewMilestone{Label: args[1], Phase: milestonePhase, StartDate: args[2]}
	if len(args) == 4 {
		nm.EndDate = args[3]
	}
	if errs := validation.ValidateNewMilestone(nm); len(errs) > 0 {
		return validationFailed(errs)
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
	m, err := db.InsertMilestone(ctx, p.ID, nm)
	if err != nil {
		return err
	}
	metrics.RecordMilestoneWrite("insert", 1)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), m)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %q (%s)\n", m.Label, p.Name, m.ID)
	return nil
}

func runMilestoneRm(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if verr := validation.ValidateULID("milestone_id", args[1]); verr != nil {
		return validationFailed([]validation.ValidationError{*verr})
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
	if err := db.DeleteMilestone(ctx, p.ID, args[1]); err != nil {
		return err
	}
	metrics.RecordMilestoneWrite("delete", 1)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      args[1],
			"deleted": true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed milestone %s from %q\n", args[1], p.Name)
	return nil
}

func runMilestonePlan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	req := types.PlanRequest{Start: args[1], Template: planTemplate}
	if errs := validation.ValidatePlanRequest(req, cfg.TemplateNames()); len(errs) > 0 {
		return validationFailed(errs)
	}
	tpl, _ := cfg.Template(req.Template)
	start, err := schedule.ParseLocal(req.Start)
	if err != nil {
		return err
	}

	p, err := resolveProject(ctx, db, args[0])
	if err != nil {
		return err
	}

	planned := schedule.PlanTimeline(start, tpl)
	entries := make([]types.NewMilestone, len(planned))
	for i, m := range planned {
		entries[i] = types.NewMilestone{Label: m.Label, Phase: m.Phase, StartDate: m.StartDate, EndDate: m.EndDate}
	}
	if _, err := db.InsertMilestones(ctx, p.ID, entries); err != nil {
		return err
	}
	metrics.RecordMilestoneWrite("plan", len(entries))

	if !jsonOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "Planned %d milestones from template %q\n", len(entries), tpl.Name)
	}
	return printMilestones(ctx, cmd, db, p)
}
