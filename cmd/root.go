package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tychodev/tycho/cmd/game"
	"github.com/tychodev/tycho/cmd/serve"
	"github.com/tychodev/tycho/cmd/util"
)

const (
	// Version is the current version of the tycho CLI
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tycho",
		Short: "tycho - game state server",
		Long:  `tycho is a server and CLI for a persistent space game world. It manages worlds, users, inventories and messages behind a rank-ordered locking layer and exposes them over RPC (http, tcp or unix).`,
	}

	// versionCmd prints the current version
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tycho",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tycho version %s\n", Version)
		},
	}
)

func init() {
	// add subcommands
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(game.GameCommands)

	// add persistent flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("The serializer to use (json, gob)"))

	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("The transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := RootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
