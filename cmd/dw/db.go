package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/nbukhari/diwan/internal/config"
	"github.com/nbukhari/diwan/internal/db"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var (
		configPath  string
		managerID   string
		managerName string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Diwan database",
		Long:  "Creates the database, migrates all tables, and seeds the bootstrap manager account.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath, managerID, managerName)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().StringVar(&managerID, "manager-id", "", "profile id for the bootstrap manager")
	cmd.Flags().StringVar(&managerName, "manager-name", "Manager", "display name for the bootstrap manager")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath, managerID, managerName string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config from %s\n", configPath)

	info := connInfo(cfg)
	adminDB, err := db.ConnectAdmin(info)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", info.Host, info.Port)

	if err := db.CreateDatabase(adminDB, info.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s ready\n", info.Database)

	gormDB, err := db.Connect(info)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	if managerID != "" {
		if err := db.SeedManager(gormDB, managerID, managerName); err != nil {
			return err
		}
		fmt.Fprintf(out, "Seeded manager %q (%s)\n", managerName, managerID)
	}

	fmt.Fprintln(out, "\nDiwan database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the Diwan database",
		Long: `Drops the Diwan database and re-creates it from config (migrate only,
no seed data). Asks for confirmation when run interactively; from scripts
pass --yes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "diwan.yaml", "path to Diwan config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	info := connInfo(cfg)

	if !skipConfirm {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("refusing to drop %q without a terminal; pass --yes to confirm", info.Database)
		}
		if !confirmReset(cmd, info.Database) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	adminDB, err := db.ConnectAdmin(info)
	if err != nil {
		return err
	}
	if err := db.DropDatabase(adminDB, info.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped database %s\n", info.Database)

	if err := db.CreateDatabase(adminDB, info.Database); err != nil {
		return err
	}
	gormDB, err := db.Connect(info)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	fmt.Fprintln(out, "\nDiwan database reset successfully.")
	return nil
}

// confirmReset asks the user to type "yes" before a destructive reset.
func confirmReset(cmd *cobra.Command, dbName string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintf(out, "WARNING: This will permanently delete all data in database %q.\n", dbName)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "yes"
}
