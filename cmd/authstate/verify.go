package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"authstate"
)

var (
	testPath     string
	testEnv      string
	testBrowser  string
	testCheckURL string
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Smoke-test a saved artifact in a throwaway headless browser",
	Long: `test restores the artifact into a headless context, navigates to an
authenticated-only page (default: the URL recorded at capture) and reports
whether the session is still accepted or bounces to a login page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := newStore(false)

		path := testPath
		if path == "" {
			path = store.LatestPath(authstate.Environment(testEnv), authstate.Browser(testBrowser))
		}

		engine, err := authstate.NewPlaywrightEngine()
		if err != nil {
			return err
		}
		defer func() { _ = engine.Stop() }()

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " checking session..."
		sp.Start()

		report, err := authstate.Verify(ctx, engine, store, path, testCheckURL, authstate.RestoreOptions{
			Browser: authstate.Browser(testBrowser),
			Logger:  logger,
		})
		sp.Stop()
		if err != nil {
			return err
		}

		if !report.Authenticated {
			color.Red("✗ Session check failed: landed on %s", report.FinalURL)
			return fmt.Errorf("artifact %s no longer authenticates", path)
		}
		color.Green("✓ Session is still authenticated")
		if report.Title != "" {
			color.White("  Page:      %s", report.Title)
		}
		color.White("  URL:       %s", report.FinalURL)
		color.White("  Expires:   %s (%s left)",
			report.ExpiresAt.Format(time.RFC3339), report.Remaining.Round(time.Minute))
		return nil
	},
}

func init() {
	testCmd.Flags().StringVar(&testPath, "path", "", "artifact file (default: latest for --env/--browser)")
	testCmd.Flags().StringVar(&testEnv, "env", "test", "target environment (test|preprod|prod)")
	testCmd.Flags().StringVar(&testBrowser, "browser", "chromium", "browser engine (chromium|firefox|webkit)")
	testCmd.Flags().StringVar(&testCheckURL, "check-url", "", "authenticated-only page to probe")
	rootCmd.AddCommand(testCmd)
}
