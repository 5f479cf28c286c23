package main

import (
	"errors"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"authstate"
)

var (
	restorePath     string
	restoreEnv      string
	restoreBrowser  string
	restoreURL      string
	restoreHeadless bool
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Open a browser pre-authenticated from a saved artifact",
	Long: `restore loads a saved artifact, checks its expiry, and opens a browser
whose session is already authenticated. With no flags it prompts for the
artifact path (defaulting to the latest capture for the chosen environment
and browser) and for the browser to launch. The browser stays open until
you press Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env := authstate.Environment(restoreEnv)
		store := newStore(false)

		path := restorePath
		if path == "" {
			var err error
			path, err = promptArtifactPath(store, env, authstate.Browser(restoreBrowser))
			if err != nil {
				return err
			}
		}
		browser := restoreBrowser
		if browser == "" {
			var err error
			browser, err = promptBrowser()
			if err != nil {
				return err
			}
		}

		engine, err := authstate.NewPlaywrightEngine()
		if err != nil {
			return err
		}
		defer func() { _ = engine.Stop() }()

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " restoring session..."
		sp.Start()

		session, page, artifact, err := authstate.Restore(ctx, engine, store, authstate.RestoreOptions{
			Path:        path,
			Environment: env,
			Browser:     authstate.Browser(browser),
			URL:         restoreURL,
			Headless:    restoreHeadless,
			Logger:      logger,
		})
		sp.Stop()
		if err != nil {
			var expired *authstate.ExpiredStateError
			if errors.As(err, &expired) {
				color.Red("✗ Artifact expired at %s", expired.ExpiresAt.Format(time.RFC3339))
				color.Yellow("Run `authstate capture` again to create a fresh one.")
			}
			return err
		}
		defer func() {
			_ = page.Close()
			_ = session.Close()
		}()

		color.Green("✓ Session restored, no login required")
		if title, err := page.Title(); err == nil && title != "" {
			color.White("  Page:    %s", title)
		}
		color.White("  URL:     %s", page.URL())
		color.White("  Expires: %s (%s left)",
			artifact.ExpiresAt.Format(time.RFC3339),
			artifact.Remaining(time.Now()).Round(time.Minute))
		color.Yellow("\nThe browser stays open. Press Ctrl+C to close it.")

		<-ctx.Done()
		color.Cyan("Closing browser...")
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restorePath, "path", "", "artifact file (default: prompt, suggesting the latest capture)")
	restoreCmd.Flags().StringVar(&restoreEnv, "env", "test", "target environment (test|preprod|prod)")
	restoreCmd.Flags().StringVar(&restoreBrowser, "browser", "", "browser engine (default: prompt)")
	restoreCmd.Flags().StringVar(&restoreURL, "url", "", "URL to open (default: the URL recorded at capture)")
	restoreCmd.Flags().BoolVar(&restoreHeadless, "headless", false, "run without a visible browser window")
	rootCmd.AddCommand(restoreCmd)
}

func promptArtifactPath(store *authstate.Store, env authstate.Environment, browser authstate.Browser) (string, error) {
	def := store.LatestPath(env, browser)
	if browser == "" {
		def = store.LatestPath(env, authstate.BrowserChromium)
	}
	prompt := promptui.Prompt{
		Label:   "Artifact path",
		Default: def,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("path required")
			}
			return nil
		},
	}
	path, err := prompt.Run()
	if err != nil {
		return "", err
	}
	// Drag-and-dropped paths arrive quoted.
	return strings.Trim(strings.TrimSpace(path), `"'`), nil
}

func promptBrowser() (string, error) {
	items := make([]string, 0, 3)
	for _, b := range authstate.Browsers() {
		items = append(items, string(b))
	}
	sel := promptui.Select{Label: "Browser", Items: items}
	_, choice, err := sel.Run()
	return choice, err
}
