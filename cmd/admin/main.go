package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesikahq/spitalverse/internal/audit"
	"github.com/mesikahq/spitalverse/internal/bootstrap"
	"github.com/mesikahq/spitalverse/internal/config"
	"github.com/mesikahq/spitalverse/internal/insight"
	"github.com/mesikahq/spitalverse/internal/record"
	"github.com/mesikahq/spitalverse/internal/store"
)

const clearConfirmation = "delete my data"

var configPath string

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:          "spitalverse-admin",
		Short:        "Maintenance commands for a Spitalverse storage slot",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(clearCmd())
	rootCmd.AddCommand(summaryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads the configured slot. Mutations are written to the audit
// trail just like the server does.
func openStore(ctx context.Context) (*store.Store, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	slot, closeSlot, err := bootstrap.OpenSlot(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	auditLogger := logrus.New()
	auditLogger.SetOutput(os.Stderr)
	auditService, err := bootstrap.NewAuditService(cfg, auditLogger)
	if err != nil {
		closeSlot()
		return nil, nil, err
	}

	opts := []store.Option{store.WithObserver(audit.StoreObserver(auditService))}
	if cfg.Storage.SeedDemo {
		opts = append(opts, store.WithSeed(record.DemoState))
	}
	st, err := store.New(ctx, slot, opts...)
	if err != nil {
		closeSlot()
		return nil, nil, err
	}
	return st, closeSlot, nil
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full record set as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			data, err := st.Export()
			if err != nil {
				return err
			}
			if output == "" {
				output = store.ExportFilename(st.Now())
			}
			if output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", `Output file ("-" for stdout)`)
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all records with a previous export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import: %w", err)
			}

			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := st.Import(cmd.Context(), data); err != nil {
				return err
			}
			snap := st.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents, %d medications, %d lab reports, %d appointments\n",
				len(snap.Documents), len(snap.Medications), len(snap.LabReports), len(snap.Appointments))
			return nil
		},
	}
}

func clearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all records and reset the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm, _ := cmd.Flags().GetString("confirm")
			if !strings.EqualFold(confirm, clearConfirmation) {
				return fmt.Errorf("--confirm %q is required", clearConfirmation)
			}

			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := st.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data cleared")
			return nil
		},
	}
	cmd.Flags().String("confirm", "", "Type the confirmation phrase to proceed")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Generate a rule-based health summary and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			h, err := st.AddHealthSummary(cmd.Context(), insight.Summarize(st.Snapshot(), st.Now()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Risk level: %s\n\n%s\n", h.RiskLevel, h.Summary)
			for _, rec := range h.Recommendations {
				fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", rec)
			}
			return nil
		},
	}
}
