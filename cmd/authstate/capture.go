package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"authstate"
)

var (
	captureEnv      string
	captureBrowser  string
	captureURL      string
	captureValidity time.Duration
	captureSeal     bool
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Open a browser, log in manually, and save the session state",
	Long: `capture opens a headful browser at the target URL and waits while you log
in and complete 2FA. When you confirm in the terminal, the full session
state is captured and written to the state directory, both as a timestamped
artifact and as the latest pointer for this environment/browser pair.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := authstate.Environment(captureEnv)
		browser := authstate.Browser(captureBrowser)

		url, err := resolveURL(env, captureURL)
		if err != nil {
			return err
		}
		validity := captureValidity
		if validity <= 0 {
			validity = cfg.Validity
		}

		engine, err := authstate.NewPlaywrightEngine()
		if err != nil {
			return err
		}
		defer func() { _ = engine.Stop() }()

		printCaptureBanner(url, env)

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " launching " + string(browser) + "..."
		sp.Start()
		defer sp.Stop()

		gate := func(ctx context.Context) error {
			sp.Stop()
			printLoginInstructions(url)
			color.Green("➜ Press ENTER after completing authentication and 2FA...")
			return waitForEnter(ctx, os.Stdin)
		}

		artifact, err := authstate.Capture(ctx, engine, authstate.CaptureOptions{
			URL:         url,
			Environment: env,
			Browser:     browser,
			Validity:    validity,
			Gate:        gate,
			Logger:      logger,
		})
		if err != nil {
			return err
		}

		store := newStore(captureSeal)
		path, err := store.Save(artifact)
		if err != nil {
			return err
		}

		if ledger, err := authstate.OpenLedger(ctx, cfg.StateDir); err != nil {
			logger.Warn("capture ledger unavailable", zap.Error(err))
		} else {
			if err := ledger.Record(ctx, artifact, path); err != nil {
				logger.Warn("capture not recorded in ledger", zap.Error(err))
			}
			_ = ledger.Close()
		}

		printCaptureSuccess(path, artifact, captureSeal)
		return nil
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureEnv, "env", "test", "target environment (test|preprod|prod)")
	captureCmd.Flags().StringVar(&captureBrowser, "browser", "chromium", "browser engine (chromium|firefox|webkit)")
	captureCmd.Flags().StringVar(&captureURL, "url", "", "application URL (default: environment base URL)")
	captureCmd.Flags().DurationVar(&captureValidity, "validity", 0, "how long the artifact stays usable (default 24h)")
	captureCmd.Flags().BoolVar(&captureSeal, "seal", false, "encrypt the artifact at rest (key in OS keyring)")
	rootCmd.AddCommand(captureCmd)
}

// waitForEnter blocks until a newline arrives on in or the context is
// cancelled. EOF counts as confirmation so piped input works.
func waitForEnter(ctx context.Context, in io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(in).ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func printCaptureBanner(url string, env authstate.Environment) {
	rule := strings.Repeat("=", 70)
	color.Cyan(rule)
	color.Cyan("Authentication capture: %s environment", strings.ToUpper(string(env)))
	color.Cyan(rule)
	color.White("Target: %s", url)
}

func printLoginInstructions(url string) {
	color.Yellow("\nMANUAL AUTHENTICATION REQUIRED")
	color.White("1. A browser window is open at: %s", url)
	color.White("2. Enter your username and password")
	color.White("3. Complete the 2FA verification")
	color.White("4. Wait until the main application page has loaded")
	color.Yellow("Do not close the browser; it closes automatically.\n")
}

func printCaptureSuccess(path string, a *authstate.Artifact, sealed bool) {
	color.Green("\n✓ Session captured")
	color.White("  File:        %s", path)
	color.White("  Environment: %s", a.Environment)
	color.White("  Browser:     %s", a.Browser)
	color.White("  Cookies:     %d", len(a.StorageState.Cookies))
	if len(a.Tokens) > 0 {
		color.White("  Tokens:      %d", len(a.Tokens))
	}
	if sealed {
		color.White("  Sealed:      yes (key in OS keyring)")
	}
	color.White("  Expires:     %s", a.ExpiresAt.Format(time.RFC3339))
	color.Green("Automated runs can now skip login until the artifact expires.")
}
