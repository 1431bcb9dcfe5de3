package cli

import (
	"github.com/spf13/cobra"

	"github.com/hiveboard/hiveboard/internal/dash"
	"github.com/hiveboard/hiveboard/pkg/logging"
)

var dashAPIURL string

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the terminal dashboard",
	Long: `Open the terminal dashboard against a running hiveboard server.

The dashboard polls each widget on its own interval and flags widgets
whose data has gone stale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dashCfg := cfg.Dashboard
		if dashAPIURL != "" {
			dashCfg.APIBaseURL = dashAPIURL
		}
		// The TUI owns the terminal; logs would corrupt the frames
		return dash.Run(dashCfg, logging.NewNop())
	},
}

func init() {
	dashCmd.Flags().StringVar(&dashAPIURL, "api", "", "API base URL (overrides config)")
}
