package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/feednav/feednav-cli/internal/browser"
	"github.com/feednav/feednav-cli/internal/config"
	"github.com/feednav/feednav-cli/internal/observability"
)

// newRunCmd creates the `run` command, the long-lived navigation session.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Start a navigation session against a feed page",
		Long: `Run launches a browser (or attaches to one via --remote-url), injects
the key-capture agent into the page, and services j/k/l/Enter presses
until interrupted. With --remote-url and no url argument, the attached
tab's current document is adopted as-is.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their viper keys so command-line values
			// override the config file and environment.
			if err := viper.BindPFlag("browser.remote_url", cmd.Flags().Lookup("remote-url")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.exec_path", cmd.Flags().Lookup("exec-path")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.user_data_dir", cmd.Flags().Lookup("user-data-dir")); err != nil {
				return err
			}
			return viper.BindPFlag("page.header_offset_px", cmd.Flags().Lookup("header-offset"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			// 1. Resolve the final configuration, flag overrides included.
			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			targetURL := ""
			if len(args) > 0 {
				targetURL = args[0]
			}
			if targetURL == "" && cfg.Browser.RemoteURL == "" {
				return fmt.Errorf("a url argument is required unless --remote-url attaches to an existing tab")
			}

			// 2. Build the session. The background parent keeps the
			// browser alive through shutdown so Close can clean the page
			// before tearing it down.
			session, err := browser.NewSession(context.Background(), cfg, logger)
			if err != nil {
				return fmt.Errorf("create browser session: %w", err)
			}
			defer func() {
				if err := session.Close(); err != nil {
					logger.Warn("Session close reported an error.", zap.Error(err))
				}
			}()

			// 3. Connect, inject the agent, and reach the page.
			if err := session.Initialize(ctx, targetURL); err != nil {
				return fmt.Errorf("initialize session: %w", err)
			}

			logger.Info("Navigation session running. Press Ctrl+C to stop.",
				zap.String("session_id", session.ID()))

			// 4. Pump page events until a signal or the tab ends it.
			if err := session.Run(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Info("Navigation session stopped.")
					return nil
				}
				return err
			}
			return nil
		},
	}

	runCmd.Flags().String("remote-url", "", "DevTools HTTP endpoint of a running browser (e.g. http://127.0.0.1:9222)")
	runCmd.Flags().String("exec-path", "", "Browser executable to launch (defaults to the system Chrome)")
	runCmd.Flags().Bool("headless", true, "Run the launched browser headless")
	runCmd.Flags().String("user-data-dir", "", "Profile directory for the launched browser")
	runCmd.Flags().Float64("header-offset", 60, "Fixed header height in pixels that focused posts scroll beneath")

	return runCmd
}
