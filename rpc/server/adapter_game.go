package server

import (
	"encoding/json"
	"fmt"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
	"github.com/tychodev/tycho/lib/state"
	"github.com/tychodev/tycho/rpc/common"
)

func NewGameServerAdapter() IRPCServerAdapter {
	return &gameServerAdapterImpl{}
}

type gameServerAdapterImpl struct{}

// Handle routes one request into the state manager. Every operation starts
// from an empty lock context, so each request walks its own ascending rank
// chain.
func (adapter *gameServerAdapterImpl) Handle(req *common.Message, mgr *state.Manager) *common.Message {
	// Check for nil manager
	if mgr == nil {
		return common.NewErrorResponse("handler: state manager is nil")
	}

	ctx := lock.EmptyContext()

	// Handle different message types
	switch req.MsgType {
	case common.MsgTWorldGet:
		w, err := mgr.WorldSnapshot(ctx, req.ID)
		return encodedResponse(req.MsgType, w, err)
	case common.MsgTWorldAdvance:
		tick, err := mgr.AdvanceWorld(ctx, req.ID, req.Amount)
		return common.NewTickResponse(tick, err)
	case common.MsgTWorldCreate:
		var w game.World
		if err := json.Unmarshal(req.Value, &w); err != nil {
			return common.NewErrorResponse(fmt.Sprintf("invalid world payload: %v", err))
		}
		err := mgr.CreateWorld(ctx, &w)
		return common.NewOkResponse(req.MsgType, err == nil, err)
	case common.MsgTUserGet:
		u, err := mgr.User(ctx, req.ID)
		return encodedResponse(req.MsgType, u, err)
	case common.MsgTUserCreate:
		u := &game.User{ID: req.ID, Name: req.Name}
		err := mgr.CreateUser(ctx, u)
		if err != nil {
			return common.NewOkResponse(req.MsgType, false, err)
		}
		return encodedResponse(req.MsgType, u, nil)
	case common.MsgTUserGainXP:
		u, err := mgr.GainExperience(ctx, req.ID, req.Amount)
		return encodedResponse(req.MsgType, u, err)
	case common.MsgTUserResearch:
		u, err := mgr.CompleteResearch(ctx, req.ID, req.Name)
		return encodedResponse(req.MsgType, u, err)
	case common.MsgTUserBonuses:
		b, err := mgr.UserBonuses(ctx, req.ID)
		return encodedResponse(req.MsgType, b, err)
	case common.MsgTInvGet:
		inv, err := mgr.Inventory(ctx, req.ID)
		return encodedResponse(req.MsgType, inv, err)
	case common.MsgTInvGrant:
		var item game.Item
		if err := json.Unmarshal(req.Value, &item); err != nil {
			return common.NewErrorResponse(fmt.Sprintf("invalid item payload: %v", err))
		}
		err := mgr.GrantItem(ctx, req.ID, item)
		return common.NewOkResponse(req.MsgType, err == nil, err)
	case common.MsgTInvEquip:
		inv, err := mgr.EquipItem(ctx, req.ID, req.TargetID)
		return encodedResponse(req.MsgType, inv, err)
	case common.MsgTMsgSend:
		msg, err := mgr.SendMessage(ctx, req.ID, req.TargetID, req.Body)
		return encodedResponse(req.MsgType, msg, err)
	case common.MsgTMsgList:
		msgs, err := mgr.MessagesFor(ctx, req.ID)
		return encodedResponse(req.MsgType, msgs, err)
	case common.MsgTMsgRead:
		err := mgr.MarkMessageRead(ctx, req.ID)
		return common.NewOkResponse(req.MsgType, err == nil, err)
	case common.MsgTReset:
		err := mgr.Reset(ctx)
		return common.NewOkResponse(req.MsgType, err == nil, err)
	default:
		return common.NewErrorResponse(fmt.Sprintf("handler: unsupported message type: %s", req.MsgType))
	}
}

// encodedResponse JSON-encodes a successful result into the response value.
// An operation error wins over an encoding error.
func encodedResponse(msgType common.MessageType, result any, err error) *common.Message {
	if err != nil {
		return common.NewValueResponse(msgType, nil, err)
	}
	data, err := json.Marshal(result)
	return common.NewValueResponse(msgType, data, err)
}
