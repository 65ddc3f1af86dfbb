// Package cli is the storefront command line: a terminal client of the
// course-api that keeps its session and cart in a local key-value store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yashrajoria/course-store/storefront/storage"
)

// Option customises NewRootCmd.
type Option func(*rootOptions)

type rootOptions struct {
	storage storage.Storage
}

// WithStorage bypasses backend selection and uses s for every command. s is
// closed after each command when it implements io.Closer.
func WithStorage(s storage.Storage) Option {
	return func(o *rootOptions) { o.storage = s }
}

// NewRootCmd builds the command tree. Output goes to out.
func NewRootCmd(out io.Writer, opts ...Option) *cobra.Command {
	var o rootOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		cfgFile string
		app     *App
	)

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Course storefront client",
		Long:          "storefront signs in to the course-api and keeps a local shopping cart.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cfgFile)
			if err != nil {
				return err
			}
			flags := cmd.Root().PersistentFlags()
			for key, flag := range map[string]string{
				"api_base_url": "api-url",
				"storage":      "storage",
				"db_path":      "db",
				"redis_url":    "redis-url",
				"scope":        "scope",
				"currency":     "currency",
				"verbose":      "verbose",
			} {
				if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
					return fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			log := newLogger(cfg.Verbose)
			store, closer := o.storage, func() error { return nil }
			if c, ok := store.(io.Closer); ok {
				closer = c.Close
			}
			if store == nil {
				store, closer, err = openStorage(cmd.Context(), cfg)
				if err != nil {
					return fmt.Errorf("open %s storage: %w", cfg.Storage, err)
				}
			}
			app = newApp(cfg, store, closer, out, log)
			log.Debug("storefront ready",
				zap.String("storage", cfg.Storage),
				zap.String("scope", cfg.Scope),
				zap.String("api", cfg.APIBaseURL))
			return nil
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./storefront.yaml or ~/.storefront/storefront.yaml)")
	pf.String("api-url", "", "course-api base URL")
	pf.String("storage", "", "storage backend: sqlite, redis or memory")
	pf.String("db", "", "sqlite database path")
	pf.String("redis-url", "", "redis URL")
	pf.String("scope", "", "storage namespace")
	pf.String("currency", "", "currency label for prices")
	pf.BoolP("verbose", "v", false, "debug logging")

	getApp := func() *App { return app }
	root.AddCommand(
		newLoginCmd(getApp),
		newRegisterCmd(getApp),
		newLogoutCmd(getApp),
		newWhoamiCmd(getApp),
		newCartCmd(getApp),
	)
	closeAfterRun(root, getApp)
	return root
}

// closeAfterRun makes every command release the app once it returns, failed
// runs included; cobra skips post-run hooks when RunE errors.
func closeAfterRun(cmd *cobra.Command, app func() *App) {
	for _, sub := range cmd.Commands() {
		closeAfterRun(sub, app)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) (err error) {
		defer func() {
			if a := app(); a != nil {
				err = errors.Join(err, a.Close())
			}
		}()
		return run(c, args)
	}
}

// Execute runs the CLI against stdout and exits non-zero on error.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
