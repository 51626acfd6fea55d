package game

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tychodev/tycho/lib/game"
)

var (
	worldGetCmd = &cobra.Command{
		Use:   "world-get [worldID]",
		Short: "Reads the current snapshot of a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "worldID")
			if err != nil {
				return err
			}
			w, err := rpcClient.World(id)
			if err != nil {
				return err
			}
			fmt.Printf("world=%d, tick=%d, ships=%d\n", w.ID, w.Tick, len(w.Ships))
			for _, ship := range w.Ships {
				fmt.Printf("  ship=%d, pos=(%.2f, %.2f), vel=(%.2f, %.2f)\n", ship.ID, ship.X, ship.Y, ship.VX, ship.VY)
			}
			return nil
		},
	}
	worldAdvanceCmd = &cobra.Command{
		Use:   "world-advance [worldID] [dt]",
		Short: "Advances a world by dt ticks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "worldID")
			if err != nil {
				return err
			}
			dt, err := parseID(args[1], "dt")
			if err != nil {
				return err
			}
			tick, err := rpcClient.AdvanceWorld(id, dt)
			if err != nil {
				return err
			}
			fmt.Printf("world=%d, tick=%d\n", id, tick)
			return nil
		},
	}
	worldCreateCmd = &cobra.Command{
		Use:   "world-create [worldID]",
		Short: "Creates an empty world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "worldID")
			if err != nil {
				return err
			}
			if err := rpcClient.CreateWorld(&game.World{ID: id}); err != nil {
				return err
			}
			fmt.Println("world created successfully")
			return nil
		},
	}
	userGetCmd = &cobra.Command{
		Use:   "user-get [userID]",
		Short: "Reads a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			u, err := rpcClient.User(id)
			if err != nil {
				return err
			}
			printUser(u)
			return nil
		},
	}
	userCreateCmd = &cobra.Command{
		Use:   "user-create [userID] [name]",
		Short: "Creates a new user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			u, err := rpcClient.CreateUser(id, args[1])
			if err != nil {
				return err
			}
			printUser(u)
			return nil
		},
	}
	xpCmd = &cobra.Command{
		Use:   "xp [userID] [amount]",
		Short: "Grants experience to a user (bonus multipliers apply server-side)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			amount, err := parseID(args[1], "amount")
			if err != nil {
				return err
			}
			u, err := rpcClient.GainExperience(id, amount)
			if err != nil {
				return err
			}
			printUser(u)
			return nil
		},
	}
	researchCmd = &cobra.Command{
		Use:   "research [userID] [topic]",
		Short: "Completes a research topic for a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			u, err := rpcClient.CompleteResearch(id, args[1])
			if err != nil {
				return err
			}
			printUser(u)
			return nil
		},
	}
	bonusesCmd = &cobra.Command{
		Use:   "bonuses [userID]",
		Short: "Reads the derived bonus multipliers of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			b, err := rpcClient.Bonuses(id)
			if err != nil {
				return err
			}
			fmt.Printf("user=%d, xpRate=%.2f, speedRate=%.2f, attackRate=%.2f\n", b.UserID, b.XPRate, b.SpeedRate, b.AttackRate)
			return nil
		},
	}
	invGetCmd = &cobra.Command{
		Use:   "inv-get [userID]",
		Short: "Reads the inventory of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			inv, err := rpcClient.Inventory(id)
			if err != nil {
				return err
			}
			fmt.Printf("user=%d, items=%d\n", inv.UserID, len(inv.Items))
			for _, item := range inv.Items {
				fmt.Printf("  item=%d, name=%s, equipped=%v, mods=(atk %.2f, spd %.2f, xp %.2f)\n",
					item.ID, item.Name, item.Equipped, item.AttackMod, item.SpeedMod, item.XPMod)
			}
			return nil
		},
	}
	invGrantCmd = &cobra.Command{
		Use:   "inv-grant [userID] [itemID] [name]",
		Short: "Grants an item to a user",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			itemID, err := parseID(args[1], "itemID")
			if err != nil {
				return err
			}
			item := game.Item{
				ID:        itemID,
				Name:      args[2],
				AttackMod: grantAttackMod,
				SpeedMod:  grantSpeedMod,
				XPMod:     grantXPMod,
			}
			if err := rpcClient.GrantItem(userID, item); err != nil {
				return err
			}
			fmt.Println("item granted successfully")
			return nil
		},
	}
	invEquipCmd = &cobra.Command{
		Use:   "inv-equip [userID] [itemID]",
		Short: "Equips an item from a user's inventory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			itemID, err := parseID(args[1], "itemID")
			if err != nil {
				return err
			}
			inv, err := rpcClient.EquipItem(userID, itemID)
			if err != nil {
				return err
			}
			fmt.Printf("equipped, user=%d, items=%d\n", inv.UserID, len(inv.Items))
			return nil
		},
	}
	msgSendCmd = &cobra.Command{
		Use:   "msg-send [fromID] [toID] [body]",
		Short: "Sends a message between two users",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromID, err := parseID(args[0], "fromID")
			if err != nil {
				return err
			}
			toID, err := parseID(args[1], "toID")
			if err != nil {
				return err
			}
			msg, err := rpcClient.SendMessage(fromID, toID, args[2])
			if err != nil {
				return err
			}
			fmt.Printf("sent, msg=%d\n", msg.ID)
			return nil
		},
	}
	msgListCmd = &cobra.Command{
		Use:   "msg-list [userID]",
		Short: "Lists the inbox of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "userID")
			if err != nil {
				return err
			}
			msgs, err := rpcClient.Messages(id)
			if err != nil {
				return err
			}
			fmt.Printf("user=%d, messages=%d\n", id, len(msgs))
			for _, msg := range msgs {
				fmt.Printf("  msg=%d, from=%d, read=%v, body=%s\n", msg.ID, msg.FromID, msg.Read, msg.Body)
			}
			return nil
		},
	}
	msgReadCmd = &cobra.Command{
		Use:   "msg-read [messageID]",
		Short: "Marks a message as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "messageID")
			if err != nil {
				return err
			}
			if err := rpcClient.MarkMessageRead(id); err != nil {
				return err
			}
			fmt.Println("marked read successfully")
			return nil
		},
	}
	resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Drops all cached state on the server (storage is untouched)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcClient.Reset(); err != nil {
				return err
			}
			fmt.Println("reset successfully")
			return nil
		},
	}

	grantAttackMod float64
	grantSpeedMod  float64
	grantXPMod     float64
)

func init() {
	invGrantCmd.Flags().Float64Var(&grantAttackMod, "attack-mod", 0, "Attack multiplier contribution of the item when equipped")
	invGrantCmd.Flags().Float64Var(&grantSpeedMod, "speed-mod", 0, "Speed multiplier contribution of the item when equipped")
	invGrantCmd.Flags().Float64Var(&grantXPMod, "xp-mod", 0, "Experience multiplier contribution of the item when equipped")
}

func parseID(arg, name string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", name, err)
	}
	return id, nil
}

func printUser(u *game.User) {
	fmt.Printf("user=%d, name=%s, level=%d, xp=%d, research=%d\n", u.ID, u.Name, u.Level, u.Experience, len(u.Research))
	for topic := range u.Research {
		fmt.Printf("  research=%s\n", topic)
	}
}
