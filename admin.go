// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

var (
	adminUsername string
	adminRole     string
)

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminRole, "role", models.RoleActivator, "Role: superuser, staff or activator")
	createAdminCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(migrateCmd, createAdminCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openDatabase()
		if err != nil {
			return err
		}
		return conn.Close()
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account and print its key",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !auth.ValidRole(adminRole) {
			return fmt.Errorf("unknown role %q", adminRole)
		}

		conn, err := openDatabase()
		if err != nil {
			return err
		}
		defer conn.Close()

		if _, err := store.New(conn).CreateAdminUser(cmd.Context(), adminUsername, adminRole); err != nil {
			return err
		}
		slog.Info("admin created", "username", adminUsername, "role", adminRole)

		// The key is derived, not stored; print it once for the operator.
		fmt.Fprintln(cmd.OutOrStdout(), auth.GenerateAdminKey(adminUsername, cfg.AdminKeySalt))
		return nil
	},
}
