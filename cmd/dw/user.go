package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/nbukhari/diwan/internal/assignment"
	"github.com/nbukhari/diwan/internal/models"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserAddCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserRemoveCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var (
		configPath string
		id         string
		name       string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if !buildSchema(cfg).ValidRole(models.Role(role)) {
				return fmt.Errorf("role %q is not valid under the active schema", role)
			}
			if id == "" {
				id = uuid.NewString()
			}
			p := models.Profile{ID: id, FullName: name, Role: models.Role(role)}
			if err := gormDB.Create(&p).Error; err != nil {
				return fmt.Errorf("create profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) as %s\n", p.FullName, p.ID, p.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&id, "id", "", "profile id (defaults to a new UUID)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", "employee", "manager or employee")
	return cmd
}

func newUserListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := openFromConfig(configPath)
			if err != nil {
				return err
			}
			var profiles []models.Profile
			if err := gormDB.Order("full_name ASC").Find(&profiles).Error; err != nil {
				return fmt.Errorf("list profiles: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, "No users found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROLE")
			for _, p := range profiles {
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.FullName, p.Role)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	return cmd
}

func newUserRemoveCmd() *cobra.Command {
	var (
		configPath string
		actorID    string
	)

	cmd := &cobra.Command{
		Use:   "remove <profile-id>",
		Short: "Remove a user and detach their tasks",
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
			if err := assignment.RemoveUser(gormDB, actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&actorID, "as", "", "acting profile id (must be a manager)")
	return cmd
}
