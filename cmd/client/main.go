package main

import (
	"os"

	"github.com/spf13/cobra"

	"gorc/internal/client"
)

var addr string

var rootCmd = &cobra.Command{
	Use:   "gorc-client <name>",
	Short: "Connect to a gorc chat server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return client.Run(addr, args[0])
	},
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "localhost:5050", "server address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
