package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"exit_poll/internal/logger"
	"exit_poll/internal/services"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger.Setup(cfg.Log)
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

// seedAdminCommand creates the admin account, or resets its password when
// it already exists.
func seedAdminCommand() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or reset an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			logger.Setup(cfg.Log)
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			admin, err := services.New(db, nil).SeedAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q ready (id %d)\n", admin.Username, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
