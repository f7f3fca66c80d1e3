package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/feednav/feednav-cli/internal/config"
	"github.com/feednav/feednav-cli/internal/observability"
)

// NewRootCommand builds the feednav command tree. Each call returns a fresh
// tree so flag state cannot leak between invocations.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "feednav",
		Short: "Keyboard navigation for social feed pages, driven through a real browser.",
		Long: `feednav attaches to a Chromium tab showing a social feed and adds
vim-style keyboard navigation to it: j and k move a focus ring between
posts, l likes the focused post, and Enter opens it.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Runs before every command: configuration first, then logging.
			if err := initializeConfig(cfgFile); err != nil {
				return err
			}
			if err := viper.BindPFlag("logger.level", cmd.Flags().Lookup("log-level")); err != nil {
				return err
			}
			if err := viper.BindPFlag("logger.format", cmd.Flags().Lookup("log-format")); err != nil {
				return err
			}

			var cfg config.Config
			if err := viper.Unmarshal(&cfg); err != nil {
				// Fall back to a sane logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "feednav"})
				return fmt.Errorf("failed to unmarshal config: %w", err)
			}
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting feednav.", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default is ./feednav.yaml, then ~/.config/feednav/feednav.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format override (console, json)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newInspectCmd())

	return rootCmd
}

// Execute runs the command tree under the given signal-aware context and
// returns the command error for the caller to turn into an exit code.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		// A signal ended the run; the commands log their own wind-down.
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// initializeConfig loads defaults, the config file if one exists, and the
// FEEDNAV_* environment overrides into the global viper instance.
func initializeConfig(cfgFile string) error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "feednav"))
		}
		v.SetConfigName("feednav")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FEEDNAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine; defaults and env vars carry it.
	}
	return nil
}
