package cli

import (
	"github.com/spf13/cobra"
)

var sentinelDaemon bool

var sentinelCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Watch the ETH price and drop a trade trigger when it falls below the threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RunSentinel(cmd.Context(), sentinelDaemon)
	},
}

func init() {
	sentinelCmd.Flags().BoolVar(&sentinelDaemon, "daemon", false, "Keep checking on the configured interval instead of exiting after one check")
}
