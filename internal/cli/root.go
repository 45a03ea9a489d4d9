// Package cli implements the trackify command line client. Each command
// drives the client core the same way a dashboard view would: fetch over
// REST, build a view model, optionally subscribe to push, tear down on exit.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/trackify/internal/config"
	"github.com/spec-kit/trackify/internal/observability"
	"github.com/spec-kit/trackify/internal/rest"
	"github.com/spec-kit/trackify/internal/session"
)

var (
	flagAPIURL      string
	flagPushURL     string
	flagSessionFile string
)

var rootCmd = &cobra.Command{
	Use:           "trackify",
	Short:         "Repair ticket tracking client",
	Long:          `Track repair tickets, drive status updates and manage job requests against a trackify backend.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api", "", "backend API base URL (overrides TRACKIFY_API_URL)")
	rootCmd.PersistentFlags().StringVar(&flagPushURL, "push", "", "backend push URL (overrides TRACKIFY_PUSH_URL)")
	rootCmd.PersistentFlags().StringVar(&flagSessionFile, "session", "", "session file path (default ~/.trackify/session.json)")
}

// Execute runs the CLI. Ctrl-C cancels the command context so long-running
// commands (track --follow, watch) unwind cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// appEnv bundles everything a command needs: config, logger, the explicit
// session object, and the REST client bound to it.
type appEnv struct {
	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	client  *rest.Client
}

func newEnv() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.Client.APIBaseURL = flagAPIURL
	}
	if flagPushURL != "" {
		cfg.Client.PushURL = flagPushURL
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	sess := session.New()
	if stored, err := loadStoredSession(); err == nil && stored != nil {
		sess.Start(stored.Token, stored.Principal)
	}

	client := rest.New(cfg.Client.APIBaseURL, cfg.Client.RequestTimeout(), sess, logger)
	return &appEnv{cfg: cfg, logger: logger, session: sess, client: client}, nil
}

type storedSession struct {
	Token     string            `json:"token"`
	Principal session.Principal `json:"principal"`
}

func sessionPath() (string, error) {
	if flagSessionFile != "" {
		return flagSessionFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".trackify", "session.json"), nil
}

func loadStoredSession() (*storedSession, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func saveStoredSession(stored *storedSession) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func clearStoredSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func requireSession(env *appEnv) (session.Principal, error) {
	principal, ok := env.session.Principal()
	if !ok || !env.session.Active() {
		return session.Principal{}, fmt.Errorf("not logged in (or session expired); run `trackify login` first")
	}
	return principal, nil
}
