package game

import (
	"github.com/spf13/cobra"
	"github.com/tychodev/tycho/cmd/util"
	"github.com/tychodev/tycho/rpc/client"
)

var (
	rpcClient client.IGameClient

	// GameCommands represents the game command group
	GameCommands = &cobra.Command{
		Use:               "game",
		Short:             "Perform game operations against a tycho server",
		PersistentPreRunE: setupGameClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the game command
	util.SetupRPCClientFlags(GameCommands)

	// Add subcommands
	GameCommands.AddCommand(worldGetCmd)
	GameCommands.AddCommand(worldAdvanceCmd)
	GameCommands.AddCommand(worldCreateCmd)
	GameCommands.AddCommand(userGetCmd)
	GameCommands.AddCommand(userCreateCmd)
	GameCommands.AddCommand(xpCmd)
	GameCommands.AddCommand(researchCmd)
	GameCommands.AddCommand(bonusesCmd)
	GameCommands.AddCommand(invGetCmd)
	GameCommands.AddCommand(invGrantCmd)
	GameCommands.AddCommand(invEquipCmd)
	GameCommands.AddCommand(msgSendCmd)
	GameCommands.AddCommand(msgListCmd)
	GameCommands.AddCommand(msgReadCmd)
	GameCommands.AddCommand(resetCmd)
	GameCommands.AddCommand(perfTestCmd)
}

// setupGameClient initializes the RPC game client
func setupGameClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the game client
	rpcClient, err = client.NewGameClient(
		*config,
		t,
		s,
	)

	return err
}
