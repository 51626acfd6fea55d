package server

import (
	"encoding/json"
	"testing"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/state"
	"github.com/tychodev/tycho/lib/storage/memory"
	"github.com/tychodev/tycho/rpc/common"
)

func newTestAdapter() (IRPCServerAdapter, *state.Manager) {
	return NewGameServerAdapter(), state.NewManager(memory.NewMemoryStorage())
}

func decodeValue(t *testing.T, resp *common.Message, out any) {
	t.Helper()
	if resp.Err != "" {
		t.Fatalf("unexpected error response: %s", resp.Err)
	}
	if err := json.Unmarshal(resp.Value, out); err != nil {
		t.Fatalf("failed to decode response value: %v", err)
	}
}

func TestAdapterNilManager(t *testing.T) {
	adapter := NewGameServerAdapter()
	resp := adapter.Handle(common.NewUserGetRequest(1), nil)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for nil manager, got %s", resp.MsgType)
	}
}

func TestAdapterUnknownType(t *testing.T) {
	adapter, mgr := newTestAdapter()
	resp := adapter.Handle(&common.Message{MsgType: common.MsgTUnknown}, mgr)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for unknown type, got %s", resp.MsgType)
	}
}

func TestAdapterUserLifecycle(t *testing.T) {
	adapter, mgr := newTestAdapter()

	resp := adapter.Handle(common.NewUserCreateRequest(1, "kepler"), mgr)
	var created game.User
	decodeValue(t, resp, &created)
	if created.Name != "kepler" || created.Level != 1 {
		t.Errorf("unexpected created user %+v", created)
	}

	resp = adapter.Handle(common.NewGainXPRequest(1, 100), mgr)
	var u game.User
	decodeValue(t, resp, &u)
	if u.Experience != 100 || u.Level != 2 {
		t.Errorf("unexpected user after xp gain %+v", u)
	}

	resp = adapter.Handle(common.NewBonusesRequest(1), mgr)
	var b game.Bonuses
	decodeValue(t, resp, &b)
	if b.UserID != 1 {
		t.Errorf("unexpected bonuses %+v", b)
	}
}

func TestAdapterWorldRoundTrip(t *testing.T) {
	adapter, mgr := newTestAdapter()

	world := &game.World{ID: 5, Ships: []game.Ship{{ID: 1, VX: 1}}}
	payload, err := json.Marshal(world)
	if err != nil {
		t.Fatalf("marshal world: %v", err)
	}

	resp := adapter.Handle(common.NewWorldCreateRequest(5, payload), mgr)
	if resp.Err != "" || !resp.Ok {
		t.Fatalf("world create failed: %+v", resp)
	}

	resp = adapter.Handle(common.NewWorldAdvanceRequest(5, 4), mgr)
	if resp.Err != "" {
		t.Fatalf("world advance failed: %s", resp.Err)
	}
	if resp.Amount != 4 {
		t.Errorf("expected tick 4, got %d", resp.Amount)
	}

	resp = adapter.Handle(common.NewWorldGetRequest(5), mgr)
	var snap game.World
	decodeValue(t, resp, &snap)
	if snap.Ships[0].X != 4 {
		t.Errorf("expected ship at x=4, got %v", snap.Ships[0].X)
	}
}

func TestAdapterMessages(t *testing.T) {
	adapter, mgr := newTestAdapter()

	resp := adapter.Handle(common.NewMessageSendRequest(1, 2, "hello"), mgr)
	var sent game.Message
	decodeValue(t, resp, &sent)
	if sent.FromID != 1 || sent.ToID != 2 || sent.ID == 0 {
		t.Errorf("unexpected sent message %+v", sent)
	}

	resp = adapter.Handle(common.NewMessageListRequest(2), mgr)
	var msgs []game.Message
	decodeValue(t, resp, &msgs)
	if len(msgs) != 1 || msgs[0].Body != "hello" {
		t.Errorf("unexpected inbox %+v", msgs)
	}

	resp = adapter.Handle(common.NewMessageReadRequest(sent.ID), mgr)
	if resp.Err != "" || !resp.Ok {
		t.Errorf("mark read failed: %+v", resp)
	}
}

func TestAdapterInvalidPayload(t *testing.T) {
	adapter, mgr := newTestAdapter()

	resp := adapter.Handle(common.NewWorldCreateRequest(1, []byte("not json")), mgr)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for invalid payload, got %s", resp.MsgType)
	}
}
