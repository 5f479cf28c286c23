package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"authstate"
)

var (
	cfg    *authstate.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "authstate",
	Short: "Capture and reuse authenticated browser sessions",
	Long: `authstate drives a browser through a manual login/2FA flow once, saves the
resulting session state (cookies, web storage, tokens) to a JSON artifact
with a 24h expiry, and later rehydrates new browser sessions from that
artifact so automated runs skip interactive login.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		cfg, err = authstate.LoadConfig()
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogFile)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// newLogger tees structured logs to the log file (JSON, info level) and to
// stderr (console encoding, warnings only; operator guidance goes through
// colored prints instead).
func newLogger(logFile string) (*zap.Logger, error) {
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), zapcore.InfoLevel)

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEnc), zapcore.Lock(os.Stderr), zapcore.WarnLevel)

	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}

func newStore(sealed bool) *authstate.Store {
	store := authstate.NewStore(cfg.StateDir)
	store.Logger = logger
	if sealed {
		store.Sealer = authstate.NewSealer()
	}
	return store
}

// resolveURL picks the explicit URL when given, otherwise the environment's
// base URL from environments.ini.
func resolveURL(env authstate.Environment, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	baseURLs, err := authstate.LoadBaseURLs(cfg.EnvFile)
	if err != nil {
		return "", err
	}
	if u, ok := baseURLs[env]; ok {
		return u, nil
	}
	return "", fmt.Errorf("no base URL configured for %q; pass --url or add it to %s", env, cfg.EnvFile)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}
