package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	mongomigrations "marketplace/internal/migrations/mongo"
	"marketplace/pkg/config"

	"github.com/spf13/cobra"
)

const JobName = "mongo-migrations"

var timeout time.Duration

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrations",
		Short:        "Manage the marketplace MongoDB schema",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the command")

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create collections, validators and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				return mongomigrations.Run(ctx, cfg.Database(), cfg.Log)
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List managed collections and their indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), func(ctx context.Context, cfg *config.Config) error {
				statuses, err := mongomigrations.Status(ctx, cfg.Database())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "COLLECTION\tEXISTS\tINDEXES")
				for _, s := range statuses {
					fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Exists, strings.Join(s.Indexes, ","))
				}
				return w.Flush()
			})
		},
	}
}

func withDatabase(parent context.Context, fn func(ctx context.Context, cfg *config.Config) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	return fn(ctx, cfg)
}
