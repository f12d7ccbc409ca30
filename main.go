// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
)

var cfg cliparse.Config

var rootCmd = &cobra.Command{
	Use:           "campus-vote",
	Short:         "Student election ballot service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return cliparse.Resolve(&cfg)
	},
}

func init() {
	cliparse.RegisterFlags(rootCmd.PersistentFlags(), &cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// openDatabase connects using the resolved config and ensures the schema
// exists.
func openDatabase() (*sql.DB, error) {
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("Database schema ready", "type", dialect)

	return conn, nil
}
