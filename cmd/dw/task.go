package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nbukhari/diwan/internal/assignment"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/nbukhari/diwan/internal/task"
	"github.com/spf13/cobra"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskCreateCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskStatusCmd())
	cmd.AddCommand(newTaskPriorityCmd())
	cmd.AddCommand(newTaskClaimCmd())
	cmd.AddCommand(newTaskAssignCmd())
	cmd.AddCommand(newTaskReviewerCmd())
	cmd.AddCommand(newTaskActivityCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	return cmd
}

func newTaskCreateCmd() *cobra.Command {
	var (
		configPath  string
		actorID     string
		title       string
		description string
		priority    string
		assigneeID  string
		projectID   string
		parentID    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			opts := task.CreateOpts{
				Title:        title,
				Description:  description,
				Priority:     models.TaskPriority(priority),
				AssigneeID:   assigneeID,
				ProjectID:    projectID,
				ParentTaskID: parentID,
			}
			if due != "" {
				d, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("parse --due %q: %w", due, err)
				}
				opts.DueDate = &d
			}
			created, err := task.Create(gormDB, buildSchema(cfg), actor, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s, %s)\n", created.ID, created.Status, created.Priority)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&priority, "priority", "medium", "low, medium, high")
	cmd.Flags().StringVar(&assigneeID, "assignee", "", "assignee profile id")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task id (creates a subtask)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		status     string
		assigneeID string
		projectID  string
		unassigned bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			tasks, err := task.List(gormDB, task.ListFilters{
				Status:     models.TaskStatus(status),
				AssigneeID: assigneeID,
				ProjectID:  projectID,
				Unassigned: unassigned,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tASSIGNEE\tDUE")
			for _, t := range tasks {
				due := "-"
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Title, t.Status, t.Priority, deref(t.AssigneeID), due)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&assigneeID, "assignee", "", "filter by assignee profile id")
	cmd.Flags().StringVar(&projectID, "project", "", "filter by project id")
	cmd.Flags().BoolVar(&unassigned, "unassigned", false, "only unassigned tasks")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			t, err := task.Get(gormDB, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID:\t%s\n", t.ID)
			fmt.Fprintf(w, "Title:\t%s\n", t.Title)
			fmt.Fprintf(w, "Status:\t%s\n", t.Status)
			fmt.Fprintf(w, "Priority:\t%s\n", t.Priority)
			fmt.Fprintf(w, "Assignee:\t%s\n", deref(t.AssigneeID))
			fmt.Fprintf(w, "Reviewer:\t%s\n", deref(t.ReviewerID))
			fmt.Fprintf(w, "Created by:\t%s\n", deref(t.CreatedBy))
			if t.DueDate != nil {
				fmt.Fprintf(w, "Due:\t%s\n", t.DueDate.Format("2006-01-02"))
			}
			if t.StartedAt != nil {
				fmt.Fprintf(w, "Started:\t%s\n", t.StartedAt.Format(time.RFC3339))
			}
			if t.CompletedAt != nil {
				fmt.Fprintf(w, "Completed:\t%s\n", t.CompletedAt.Format(time.RFC3339))
			}
			if t.Description != "" {
				fmt.Fprintf(w, "Description:\t%s\n", t.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	return cmd
}

func newTaskStatusCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "status <task-id> <new-status>",
		Short: "Move a task to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			updated, err := task.Transition(gormDB, buildSchema(cfg), actor, args[0], models.TaskStatus(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s is now %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	return cmd
}

func newTaskPriorityCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "priority <task-id> <new-priority>",
		Short: "Change a task's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			updated, err := task.ChangePriority(gormDB, buildSchema(cfg), actor, args[0], models.TaskPriority(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s priority is now %s\n", updated.ID, updated.Priority)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	return cmd
}

func newTaskClaimCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "claim <task-id>",
		Short: "Claim an unassigned task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			claimed, err := assignment.Claim(gormDB, buildSchema(cfg), actor, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s claimed by %s\n", claimed.ID, actor.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	return cmd
}

func newTaskAssignCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "assign <task-id> <profile-id>",
		Short: "Assign a task to a user (pass - to unassign)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			userID := args[1]
			if userID == "-" {
				userID = ""
			}
			updated, err := assignment.Assign(gormDB, buildSchema(cfg), actor, args[0], userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s assignee is now %s\n", updated.ID, deref(updated.AssigneeID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	return cmd
}

func newTaskReviewerCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
		clear      bool
	)

	cmd := &cobra.Command{
		Use:   "reviewer <task-id> [profile-id]",
		Short: "Set or clear a task's reviewer",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if clear {
				if err := assignment.ClearReviewer(gormDB, actor, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(out, "Task %s reviewer cleared\n", args[0])
				return nil
			}
			if len(args) < 2 {
				return fmt.Errorf("pass a reviewer profile id, or --clear")
			}
			if err := assignment.SetReviewer(gormDB, actor, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Task %s reviewer is now %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the reviewer")
	return cmd
}

func newTaskActivityCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "activity <task-id>",
		Short: "Show a task's activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			if _, err := task.Get(gormDB, args[0]); err != nil {
				return err
			}
			entries, err := task.ListActivity(gormDB, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No activity.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tFROM\tTO\tACTOR")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Action,
					deref(e.FromStatus), deref(e.ToStatus), deref(e.ActorID))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			actor, err := resolveActor(gormDB, actorID)
			if err != nil {
				return err
			}
			if err := task.Delete(gormDB, actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id")
	return cmd
}
