package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/timecard/internal/model"
	"github.com/christopherklint97/timecard/internal/store"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the project reference table",
}

var projectAddCmd = &cobra.Command{
	Use:   "add NAME CODE",
	Short: "Add a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runProjectAdd(cmd, s.repo, args[0], args[1])
		})
	},
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runProjectList(cmd, s.repo)
		})
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete CODE",
	Short: "Delete a project by code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			return runProjectDelete(cmd, s.repo, args[0])
		})
	},
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}

func runProjectAdd(cmd *cobra.Command, repo store.Repository, name, code string) error {
	p := &model.Project{Name: name, Code: code}
	if _, err := repo.CreateProject(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Project saved.")
	return nil
}

func runProjectList(cmd *cobra.Command, repo store.Repository) error {
	projects, err := repo.Projects(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching projects: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found.")
		return nil
	}

	rows := make([][]string, len(projects))
	for i, p := range projects {
		rows[i] = []string{p.Name, p.Code}
	}
	fmt.Fprintln(out, listTable(useColor(out), []string{"Name", "Code"}, rows))
	return nil
}

func runProjectDelete(cmd *cobra.Command, repo store.Repository, code string) error {
	if err := repo.DeleteProject(cmd.Context(), code); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Project deleted.")
	return nil
}
