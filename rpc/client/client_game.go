package client

import (
	"encoding/json"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/rpc/common"
	"github.com/tychodev/tycho/rpc/serializer"
	"github.com/tychodev/tycho/rpc/transport"
)

// IGameClient is the typed client for the game server. Every method maps to
// one server operation.
type IGameClient interface {
	// World returns a snapshot of the given world
	World(id uint64) (*game.World, error)
	// AdvanceWorld runs the given world forward by dt ticks and returns the
	// resulting tick
	AdvanceWorld(id uint64, dt uint64) (uint64, error)
	// CreateWorld registers a new world
	CreateWorld(w *game.World) error

	// User returns the given user
	User(id uint64) (*game.User, error)
	// CreateUser registers a new user and returns it
	CreateUser(id uint64, name string) (*game.User, error)
	// GainExperience awards experience and returns the updated user
	GainExperience(id uint64, amount uint64) (*game.User, error)
	// CompleteResearch finishes a research topic and returns the updated user
	CompleteResearch(id uint64, topic string) (*game.User, error)
	// Bonuses returns the derived bonus aggregate for a user
	Bonuses(id uint64) (*game.Bonuses, error)

	// Inventory returns a user's inventory
	Inventory(userID uint64) (*game.Inventory, error)
	// GrantItem adds an item to a user's inventory
	GrantItem(userID uint64, item game.Item) error
	// EquipItem equips an item and returns the updated inventory
	EquipItem(userID, itemID uint64) (*game.Inventory, error)

	// SendMessage delivers a message and returns it with its assigned id
	SendMessage(fromID, toID uint64, body string) (*game.Message, error)
	// Messages lists a user's inbox, oldest first
	Messages(userID uint64) ([]game.Message, error)
	// MarkMessageRead flips the read flag of one message
	MarkMessageRead(messageID uint64) error

	// Reset drops every server-side cache
	Reset() error

	// Close closes the underlying transport
	Close() error
}

// NewGameClient creates a new typed game client
// The function takes a config, a transport and a serializer as parameters
func NewGameClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (IGameClient, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new game client
	c := gameClient{
		rpcClientAdapter{
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the game client
	return &c, nil
}

type gameClient struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// invokeDecoded sends a request and decodes the JSON value of the response
// into out.
func (c *gameClient) invokeDecoded(req *common.Message, out any) error {
	resp, err := invokeRPCRequest(req, c.transport, c.serializer)
	if err != nil {
		return err
	}
	return json.Unmarshal(resp.Value, out)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IGameClient)
// --------------------------------------------------------------------------

func (c *gameClient) World(id uint64) (*game.World, error) {
	w := &game.World{}
	if err := c.invokeDecoded(common.NewWorldGetRequest(id), w); err != nil {
		return nil, err
	}
	return w, nil
}

func (c *gameClient) AdvanceWorld(id uint64, dt uint64) (uint64, error) {
	resp, err := invokeRPCRequest(common.NewWorldAdvanceRequest(id, dt), c.transport, c.serializer)
	if err != nil {
		return 0, err
	}
	return resp.Amount, nil
}

func (c *gameClient) CreateWorld(w *game.World) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	_, err = invokeRPCRequest(common.NewWorldCreateRequest(w.ID, data), c.transport, c.serializer)
	return err
}

func (c *gameClient) User(id uint64) (*game.User, error) {
	u := &game.User{}
	if err := c.invokeDecoded(common.NewUserGetRequest(id), u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *gameClient) CreateUser(id uint64, name string) (*game.User, error) {
	u := &game.User{}
	if err := c.invokeDecoded(common.NewUserCreateRequest(id, name), u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *gameClient) GainExperience(id uint64, amount uint64) (*game.User, error) {
	u := &game.User{}
	if err := c.invokeDecoded(common.NewGainXPRequest(id, amount), u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *gameClient) CompleteResearch(id uint64, topic string) (*game.User, error) {
	u := &game.User{}
	if err := c.invokeDecoded(common.NewResearchRequest(id, topic), u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *gameClient) Bonuses(id uint64) (*game.Bonuses, error) {
	b := &game.Bonuses{}
	if err := c.invokeDecoded(common.NewBonusesRequest(id), b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *gameClient) Inventory(userID uint64) (*game.Inventory, error) {
	inv := &game.Inventory{}
	if err := c.invokeDecoded(common.NewInventoryGetRequest(userID), inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (c *gameClient) GrantItem(userID uint64, item game.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	_, err = invokeRPCRequest(common.NewGrantItemRequest(userID, data), c.transport, c.serializer)
	return err
}

func (c *gameClient) EquipItem(userID, itemID uint64) (*game.Inventory, error) {
	inv := &game.Inventory{}
	if err := c.invokeDecoded(common.NewEquipRequest(userID, itemID), inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (c *gameClient) SendMessage(fromID, toID uint64, body string) (*game.Message, error) {
	msg := &game.Message{}
	if err := c.invokeDecoded(common.NewMessageSendRequest(fromID, toID, body), msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *gameClient) Messages(userID uint64) ([]game.Message, error) {
	var msgs []game.Message
	if err := c.invokeDecoded(common.NewMessageListRequest(userID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *gameClient) MarkMessageRead(messageID uint64) error {
	_, err := invokeRPCRequest(common.NewMessageReadRequest(messageID), c.transport, c.serializer)
	return err
}

func (c *gameClient) Reset() error {
	_, err := invokeRPCRequest(common.NewResetRequest(), c.transport, c.serializer)
	return err
}

func (c *gameClient) Close() error {
	return c.transport.Close()
}
