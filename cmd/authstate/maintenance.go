package main

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"authstate"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recorded captures and their expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ledger, err := authstate.OpenLedger(ctx, cfg.StateDir)
		if err != nil {
			return err
		}
		defer func() { _ = ledger.Close() }()

		entries, err := ledger.Entries(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			color.Yellow("No captures recorded. Run `authstate capture` first.")
			return nil
		}

		now := time.Now()
		for _, e := range entries {
			status := color.GreenString("valid  ")
			if !now.Before(e.ExpiresAt) {
				status = color.RedString("expired")
			}
			color.White("%s  %-8s %-9s captured %s  expires %s  %s",
				status, e.Environment, e.Browser,
				e.CapturedAt.Local().Format("2006-01-02 15:04"),
				e.ExpiresAt.Local().Format("2006-01-02 15:04"),
				e.Path)
		}
		return nil
	},
}

var pruneAll bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired artifacts and their ledger entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		// --all treats every artifact as expired.
		cutoff := time.Now()
		if pruneAll {
			cutoff = cutoff.AddDate(100, 0, 0)
		}

		store := newStore(false)
		removedFiles, err := store.RemoveExpired(cutoff)
		if err != nil {
			return err
		}

		removedRows := 0
		if ledger, err := authstate.OpenLedger(ctx, cfg.StateDir); err == nil {
			removedRows, _ = ledger.PruneExpired(ctx, cutoff)
			_ = ledger.Close()
		}

		color.Green("✓ Removed %d artifact file(s), %d ledger entr(ies)", removedFiles, removedRows)
		return nil
	},
}

var installCmd = &cobra.Command{
	Use:   "install [browser...]",
	Short: "Download the Playwright browser payloads",
	Long: `install fetches the browser binaries Playwright drives. With no arguments
all supported engines (chromium, firefox, webkit) are installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := make([]authstate.Browser, 0, len(args))
		for _, a := range args {
			kinds = append(kinds, authstate.Browser(a))
		}
		if err := authstate.InstallBrowsers(kinds...); err != nil {
			return err
		}
		color.Green("✓ Browsers installed")
		return nil
	},
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "delete every artifact, not just expired ones")
	rootCmd.AddCommand(listCmd, pruneCmd, installCmd)
}
