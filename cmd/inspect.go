package cmd

import (
	"context"
	"fmt"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feednav/feednav-cli/internal/browser"
	"github.com/feednav/feednav-cli/internal/config"
	"github.com/feednav/feednav-cli/internal/navigator"
	"github.com/feednav/feednav-cli/internal/observability"
)

// inspectReport is the machine-readable output of `inspect`.
type inspectReport struct {
	Path           string             `json:"path"`
	Mode           navigator.ViewMode `json:"mode"`
	ViewportHeight float64            `json:"viewport_height"`
	Posts          []inspectPost      `json:"posts"`
	FirstVisible   string             `json:"first_visible,omitempty"`
}

type inspectPost struct {
	ID     string  `json:"id"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// newInspectCmd creates the `inspect` command, a one-shot post listing.
func newInspectCmd() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect [url]",
		Short: "Enumerate the posts a session would navigate",
		Long: `Inspect loads the page (or attaches to one via --remote-url), lists the
posts the configured selectors find, and marks the one a fresh session
would focus first. Useful for checking selector and offset settings
against a page before committing to a session.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("browser.remote_url", cmd.Flags().Lookup("remote-url")); err != nil {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

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

			session, err := browser.NewSession(context.Background(), cfg, logger)
			if err != nil {
				return fmt.Errorf("create browser session: %w", err)
			}
			defer session.Close()

			if err := session.Initialize(ctx, targetURL); err != nil {
				return fmt.Errorf("initialize session: %w", err)
			}

			report, err := buildInspectReport(ctx, session.Driver(), cfg)
			if err != nil {
				return err
			}

			switch viper.GetString("format") {
			case "json":
				blob, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(blob))
			case "text":
				printInspectReport(cmd, report)
			default:
				return fmt.Errorf("unknown format %q (want text or json)", viper.GetString("format"))
			}
			return nil
		},
	}

	inspectCmd.Flags().String("remote-url", "", "DevTools HTTP endpoint of a running browser (e.g. http://127.0.0.1:9222)")
	inspectCmd.Flags().StringP("format", "f", "text", "Output format: text or json")

	return inspectCmd
}

// buildInspectReport runs the same locator and visibility inference a live
// session would, without installing any key handling.
func buildInspectReport(ctx context.Context, driver *browser.PageDriver, cfg *config.Config) (inspectReport, error) {
	logger := observability.GetLogger()

	path, err := driver.LocationPath(ctx)
	if err != nil {
		return inspectReport{}, err
	}

	locator, err := navigator.NewLocator(driver, cfg.Page.ThreadPathPattern, logger)
	if err != nil {
		return inspectReport{}, err
	}
	list, err := locator.List(ctx, path)
	if err != nil {
		return inspectReport{}, err
	}

	report := inspectReport{
		Path:           path,
		Mode:           list.Mode,
		ViewportHeight: list.ViewportHeight,
	}
	for _, p := range list.Posts {
		report.Posts = append(report.Posts, inspectPost{ID: p.ID, Top: p.Top, Bottom: p.Bottom})
	}

	focus := navigator.NewFocusController(driver, cfg.Page.HeaderOffsetPx, logger)
	if first, ok := focus.FirstVisible(list); ok {
		report.FirstVisible = first.ID
	}
	return report, nil
}

func printInspectReport(cmd *cobra.Command, report inspectReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s view), %d posts, viewport %.0fpx\n",
		report.Path, report.Mode, len(report.Posts), report.ViewportHeight)
	for _, p := range report.Posts {
		marker := " "
		if p.ID == report.FirstVisible {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %-8s top %8.1f  bottom %8.1f\n", marker, p.ID, p.Top, p.Bottom)
	}
	if report.FirstVisible == "" && len(report.Posts) > 0 {
		fmt.Fprintln(out, "no post is visible below the header; a session would start unfocused")
	}
}
