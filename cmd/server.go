package cmd

import (
	"github.com/ricky-lee-athena/odoo-demo/server"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"start"},
	Short:   "Start the bridge server",
	Run: func(_ *cobra.Command, _ []string) {
		server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
