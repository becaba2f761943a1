package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ussd-bridge",
	Short: "Bridge synchronous USSD sessions to an asynchronous chatbot",
	Long: `ussd-bridge answers USSD gateway requests by forwarding each user turn
to a webhook-driven chatbot platform and waiting, within the gateway's
deadline, for the correlated reply.

Without a subcommand it runs the HTTP server.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkConfigCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
