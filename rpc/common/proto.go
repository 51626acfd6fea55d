package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	ID       uint64 `json:"id,omitempty"`        // Primary object id (world, user, message)
	TargetID uint64 `json:"target_id,omitempty"` // Secondary id: item to equip, message recipient
	Amount   uint64 `json:"amount,omitempty"`    // Used for: GainXP (points), WorldAdvance (ticks)
	Name     string `json:"name,omitempty"`      // Used for: UserCreate (name), Research (topic)
	Body     string `json:"body,omitempty"`      // Used for: MessageSend
	Value    []byte `json:"value,omitempty"`     // JSON-encoded domain object (payloads and results)

	// Response only fields
	Ok  bool   `json:"ok,omitempty"`  // Operation-specific flag (e.g. item state changed)
	Err string `json:"err,omitempty"` // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewWorldGetRequest creates a new WorldGet request
func NewWorldGetRequest(worldID uint64) *Message {
	return &Message{
		MsgType: MsgTWorldGet,
		ID:      worldID,
	}
}

// NewWorldAdvanceRequest creates a new WorldAdvance request
func NewWorldAdvanceRequest(worldID, ticks uint64) *Message {
	return &Message{
		MsgType: MsgTWorldAdvance,
		ID:      worldID,
		Amount:  ticks,
	}
}

// NewWorldCreateRequest creates a new WorldCreate request carrying the
// encoded world
func NewWorldCreateRequest(worldID uint64, value []byte) *Message {
	return &Message{
		MsgType: MsgTWorldCreate,
		ID:      worldID,
		Value:   value,
	}
}

// NewUserGetRequest creates a new UserGet request
func NewUserGetRequest(userID uint64) *Message {
	return &Message{
		MsgType: MsgTUserGet,
		ID:      userID,
	}
}

// NewUserCreateRequest creates a new UserCreate request
func NewUserCreateRequest(userID uint64, name string) *Message {
	return &Message{
		MsgType: MsgTUserCreate,
		ID:      userID,
		Name:    name,
	}
}

// NewGainXPRequest creates a new GainXP request
func NewGainXPRequest(userID, amount uint64) *Message {
	return &Message{
		MsgType: MsgTUserGainXP,
		ID:      userID,
		Amount:  amount,
	}
}

// NewResearchRequest creates a new Research request
func NewResearchRequest(userID uint64, topic string) *Message {
	return &Message{
		MsgType: MsgTUserResearch,
		ID:      userID,
		Name:    topic,
	}
}

// NewBonusesRequest creates a new Bonuses request
func NewBonusesRequest(userID uint64) *Message {
	return &Message{
		MsgType: MsgTUserBonuses,
		ID:      userID,
	}
}

// NewInventoryGetRequest creates a new InventoryGet request
func NewInventoryGetRequest(userID uint64) *Message {
	return &Message{
		MsgType: MsgTInvGet,
		ID:      userID,
	}
}

// NewGrantItemRequest creates a new GrantItem request carrying the encoded
// item
func NewGrantItemRequest(userID uint64, value []byte) *Message {
	return &Message{
		MsgType: MsgTInvGrant,
		ID:      userID,
		Value:   value,
	}
}

// NewEquipRequest creates a new Equip request
func NewEquipRequest(userID, itemID uint64) *Message {
	return &Message{
		MsgType:  MsgTInvEquip,
		ID:       userID,
		TargetID: itemID,
	}
}

// NewMessageSendRequest creates a new MessageSend request
func NewMessageSendRequest(fromID, toID uint64, body string) *Message {
	return &Message{
		MsgType:  MsgTMsgSend,
		ID:       fromID,
		TargetID: toID,
		Body:     body,
	}
}

// NewMessageListRequest creates a new MessageList request
func NewMessageListRequest(userID uint64) *Message {
	return &Message{
		MsgType: MsgTMsgList,
		ID:      userID,
	}
}

// NewMessageReadRequest creates a new MessageRead request
func NewMessageReadRequest(messageID uint64) *Message {
	return &Message{
		MsgType: MsgTMsgRead,
		ID:      messageID,
	}
}

// NewResetRequest creates a new Reset request
func NewResetRequest() *Message {
	return &Message{
		MsgType: MsgTReset,
	}
}

// NewValueResponse creates a response of the given type carrying an encoded
// result object
func NewValueResponse(msgType MessageType, value []byte, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Value:   value,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewOkResponse creates a response of the given type carrying only an
// operation flag
func NewOkResponse(msgType MessageType, ok bool, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewTickResponse creates a WorldAdvance response carrying the resulting
// tick
func NewTickResponse(tick uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTWorldAdvance,
		Amount:  tick,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTWorldGet:
		return "worldGet"
	case MsgTWorldAdvance:
		return "worldAdvance"
	case MsgTWorldCreate:
		return "worldCreate"
	case MsgTUserGet:
		return "userGet"
	case MsgTUserCreate:
		return "userCreate"
	case MsgTUserGainXP:
		return "gainXP"
	case MsgTUserResearch:
		return "research"
	case MsgTUserBonuses:
		return "bonuses"
	case MsgTInvGet:
		return "inventoryGet"
	case MsgTInvGrant:
		return "grantItem"
	case MsgTInvEquip:
		return "equip"
	case MsgTMsgSend:
		return "messageSend"
	case MsgTMsgList:
		return "messageList"
	case MsgTMsgRead:
		return "messageRead"
	case MsgTReset:
		return "reset"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "worldGet":
		*t = MsgTWorldGet
	case "worldAdvance":
		*t = MsgTWorldAdvance
	case "worldCreate":
		*t = MsgTWorldCreate
	case "userGet":
		*t = MsgTUserGet
	case "userCreate":
		*t = MsgTUserCreate
	case "gainXP":
		*t = MsgTUserGainXP
	case "research":
		*t = MsgTUserResearch
	case "bonuses":
		*t = MsgTUserBonuses
	case "inventoryGet":
		*t = MsgTInvGet
	case "grantItem":
		*t = MsgTInvGrant
	case "equip":
		*t = MsgTInvEquip
	case "messageSend":
		*t = MsgTMsgSend
	case "messageList":
		*t = MsgTMsgList
	case "messageRead":
		*t = MsgTMsgRead
	case "reset":
		*t = MsgTReset
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// World operations

	MsgTWorldGet     // Snapshot a world
	MsgTWorldAdvance // Advance world physics
	MsgTWorldCreate  // Register a new world

	// User operations

	MsgTUserGet      // Get a user
	MsgTUserCreate   // Register a new user
	MsgTUserGainXP   // Award experience
	MsgTUserResearch // Complete a research topic
	MsgTUserBonuses  // Query the derived bonuses

	// Inventory operations

	MsgTInvGet   // Get an inventory
	MsgTInvGrant // Add an item
	MsgTInvEquip // Equip an item

	// Message queue operations

	MsgTMsgSend // Send a message
	MsgTMsgList // List a user's inbox
	MsgTMsgRead // Mark a message read

	// Admin operations

	MsgTReset // Drop every cache
)
