package state

import (
	"fmt"
	"sort"

	"github.com/tychodev/tycho/lib/game"
	"github.com/tychodev/tycho/lib/lock"
	"github.com/tychodev/tycho/lib/storage"
)

// SendMessage stores a new message and delivers it to the recipient's
// inbox. The message id is assigned here; ids ascend, so inbox order is
// send order.
func (m *Manager) SendMessage(ctx lock.Context, fromID, toID uint64, body string) (*game.Message, error) {
	return lock.WithWrite(m.messageLock, ctx, func(writeCtx lock.Context) (*game.Message, error) {
		// The id counter starts from the highest stored id, queried once
		// per manager. Senders are serialized by the write rank, so a zero
		// counter can only be observed before the first send completed.
		if m.nextMessageID.Load() == 0 {
			err := m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
				maxID, dbErr := m.store.MaxMessageID()
				if dbErr != nil {
					return dbErr
				}
				m.nextMessageID.Store(maxID)
				return nil
			})
			if err != nil {
				return nil, err
			}
		}

		msg := &game.Message{
			ID:     m.nextMessageID.Add(1),
			FromID: fromID,
			ToID:   toID,
			Body:   body,
		}
		if err := m.messages.SetUnsafe(msg.ID, msg, writeCtx); err != nil {
			return nil, err
		}

		// Only append when the inbox is already materialized. An absent
		// entry means nobody has listed this inbox yet; the first
		// MessagesFor rebuilds it from storage, message included.
		inbox, ok, err := m.inboxes.GetUnsafe(toID, writeCtx)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := m.inboxes.SetUnsafe(toID, append(inbox, msg.ID), writeCtx); err != nil {
				return nil, err
			}
		}

		err = m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
			return m.store.SaveMessage(msg)
		})
		if err != nil {
			return nil, err
		}
		return msg, nil
	})
}

// MessagesFor returns copies of all messages addressed to a user, oldest
// first. A materialized inbox is served concurrently under the read rank;
// the first listing per user retries under the write rank and builds the
// inbox from storage.
func (m *Manager) MessagesFor(ctx lock.Context, toID uint64) ([]game.Message, error) {
	out, hit, err := m.messagesFromInbox(ctx, toID)
	if err != nil || hit {
		return out, err
	}

	// The read rank is released here, same reasoning as the world
	// snapshot: populating needs the write rank and an in-place upgrade
	// would deadlock behind our own read hold.
	return lock.WithWrite(m.messageLock, ctx, func(writeCtx lock.Context) ([]game.Message, error) {
		// Another writer may have materialized the inbox between our
		// read miss and this acquisition.
		inbox, ok, err := m.inboxes.GetUnsafe(toID, writeCtx)
		if err != nil {
			return nil, err
		}
		if ok {
			return m.collectMessages(writeCtx, inbox)
		}

		var stored []*game.Message
		err = m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
			var dbErr error
			stored, dbErr = m.store.LoadMessages(toID)
			return dbErr
		})
		if err != nil {
			return nil, err
		}

		inbox = make([]uint64, 0, len(stored))
		for _, msg := range stored {
			if err := m.messages.SetUnsafe(msg.ID, msg, writeCtx); err != nil {
				return nil, err
			}
			inbox = append(inbox, msg.ID)
		}
		sort.Slice(inbox, func(i, j int) bool { return inbox[i] < inbox[j] })
		if err := m.inboxes.SetUnsafe(toID, inbox, writeCtx); err != nil {
			return nil, err
		}
		return m.collectMessages(writeCtx, inbox)
	})
}

// MarkMessageRead flips the read flag of one message and persists it. An
// already-read message is a no-op; an unknown id is a NotFound error. A
// message not yet cached (no prior listing of its inbox) is fetched from
// storage, so the flag lands in the backend either way.
func (m *Manager) MarkMessageRead(ctx lock.Context, id uint64) error {
	return m.messageLock.AcquireWrite(ctx, func(writeCtx lock.Context) error {
		msg, ok, err := m.messages.GetUnsafe(id, writeCtx)
		if err != nil {
			return err
		}
		if !ok {
			err = m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
				var dbErr error
				msg, dbErr = m.store.LoadMessage(id)
				return dbErr
			})
			if err != nil {
				return err
			}
			if err := m.messages.SetUnsafe(id, msg, writeCtx); err != nil {
				return err
			}
		}
		if msg.Read {
			return nil
		}
		msg.Read = true
		return m.databaseMutex.Acquire(writeCtx, func(lock.Context) error {
			return m.store.SaveMessage(msg)
		})
	})
}

// messagesFromInbox is the read fast path. The bool result reports whether
// the inbox was materialized.
func (m *Manager) messagesFromInbox(ctx lock.Context, toID uint64) ([]game.Message, bool, error) {
	var out []game.Message
	hit := false
	err := m.messageLock.AcquireRead(ctx, func(readCtx lock.Context) error {
		inbox, ok, err := m.inboxes.GetUnsafe(toID, readCtx)
		if err != nil || !ok {
			return err
		}
		hit = true
		out, err = m.collectMessages(readCtx, inbox)
		return err
	})
	return out, hit, err
}

// collectMessages copies the messages behind an inbox's id list. A
// materialized inbox implies its messages are cached; a dangling id means
// the two caches diverged and is reported instead of dropping mail.
func (m *Manager) collectMessages(ctx lock.Context, inbox []uint64) ([]game.Message, error) {
	out := make([]game.Message, 0, len(inbox))
	for _, id := range inbox {
		msg, ok, err := m.messages.GetUnsafe(id, ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, storage.NewError(storage.RetCInternalError,
				fmt.Sprintf("inbox references message %d that is not cached", id))
		}
		out = append(out, *msg)
	}
	return out, nil
}
