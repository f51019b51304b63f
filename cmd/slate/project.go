package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/slate/internal/types"
	"github.com/hyperengineering/slate/internal/validation"
)

var (
	projectClient string
	projectGoLive string
	deleteForce   bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "Create, list, and delete projects and set their go-live date without running the server.",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectGoLiveCmd = &cobra.Command{
	Use:   "golive <project> [date]",
	Short: "Set or clear the designated go-live date",
	Long:  "Set the designated go-live date (YYYY-MM-DD). Without a date the designation is cleared and the Go Live milestone's start is used.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runProjectGoLive,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project and all its milestones",
	Long:  "Permanently delete a project and its milestones. Requires --force or interactive confirmation.",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectClient, "client", "", "Client name")
	projectCreateCmd.Flags().StringVar(&projectGoLive, "go-live", "", "Designated go-live date (YYYY-MM-DD)")
	projectDeleteCmd.Flags().BoolVar(&deleteForce, "force", false, "Skip confirmation prompt")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGoLiveCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	np := types.NewProject{Name: args[0], Client: projectClient, GoLiveDate: projectGoLive}
	if errs := validation.ValidateNewProject(np); len(errs) > 0 {
		return validationFailed(errs)
	}

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	p, err := db.CreateProject(ctx, np)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", p.Name, p.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := db.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), types.ProjectListResponse{Projects: projects})
	}

	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME\tCLIENT\tGO-LIVE\tCREATED")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			p.Name,
			orDash(p.Client),
			orDash(p.GoLiveDate),
			p.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runProjectGoLive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	date := ""
	if len(args) == 2 {
		date = args[1]
		if verr := validation.ValidateDate("go_live_date", date); verr != nil {
			return validationFailed([]validation.ValidationError{*verr})
		}
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
	if err := db.SetGoLive(ctx, p.ID, date); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":           p.ID,
			"go_live_date": date,
		})
	}
	if date == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared go-live date for %q\n", p.Name)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Go-live for %q set to %s\n", p.Name, date)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
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

	if !deleteForce {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintf(errOut, "WARNING: This will permanently delete project %q and all its milestones.\n", p.Name)
		fmt.Fprint(errOut, "Type the project ID to confirm: ")

		reader := bufio.NewReader(cmd.InOrStdin())
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if strings.TrimSpace(input) != p.ID {
			fmt.Fprintln(errOut, "Aborted. Project ID did not match.")
			return nil
		}
	}

	if err := db.DeleteProject(ctx, p.ID); err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"id":      p.ID,
			"deleted": true,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %q\n", p.Name)
	return nil
}
