package listener

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kodjaoglanian/blockvent/lib/ledger"
	"github.com/Kodjaoglanian/blockvent/lib/msg"
	"github.com/Kodjaoglanian/blockvent/lib/store"
	"github.com/Kodjaoglanian/blockvent/lib/store/file"
)

// fakeBroker keeps the events sent and fails on the event named failOn.
type fakeBroker struct {
	mu     sync.Mutex
	sent   []msg.AssetEvent
	failOn string
}

func (b *fakeBroker) Setup(interface{}) error { return nil }

func (b *fakeBroker) Close() error { return nil }

func (b *fakeBroker) SendEvent(channel string, e msg.AssetEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Name == b.failOn {
		return errors.New("broker unavailable")
	}

	b.sent = append(b.sent, e)

	return nil
}

// fakeSource replays a fixed list of events after the checkpoint and then blocks until ctx is done.
type fakeSource struct {
	events []ledger.Event
	cp     *store.Checkpoint
	close  bool // close the stream after the events
}

func (s *fakeSource) Events(ctx context.Context, cp *store.Checkpoint) (<-chan ledger.Event, error) {
	s.cp = cp
	out := make(chan ledger.Event)

	go func() {
		defer close(out)

		for _, e := range s.events {
			if cp != nil && (e.Block < cp.Block || e.Block == cp.Block && e.TxID <= cp.TxID) {
				continue
			}

			select {
			case out <- e:
			case <-ctx.Done():
				return
			}
		}

		if !s.close {
			<-ctx.Done()
		}
	}()

	return out, nil
}

var testEvents = []ledger.Event{ //nolint:gochecknoglobals
	{Block: 5, TxID: "t1", Name: "AssetCreated", Payload: []byte(`{"id":"A1"}`)},
	{Block: 6, TxID: "t2", Name: "AssetTransferred", Payload: []byte(`{"id":"A1","responsavel":"Bob"}`)},
	{Block: 7, TxID: "t3", Name: "AssetUpdated", Payload: []byte("not json")},
}

func TestListen(t *testing.T) {
	db, err := file.New(filepath.Join(t.TempDir(), "wallet"))
	require.NoError(t, err)

	mb := &fakeBroker{}
	src := &fakeSource{events: testEvents}
	l := New(db, mb, src, "mychannel", "patrimonio")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)

	go func() { done <- l.Listen(ctx) }()

	require.Eventually(t, func() bool {
		mb.mu.Lock()
		defer mb.mu.Unlock()

		return len(mb.sent) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Nil(t, src.cp)

	for i, e := range mb.sent {
		assert.Equal(t, testEvents[i].Name, e.Name)
		assert.Equal(t, testEvents[i].TxID, e.TxID)
		assert.Equal(t, testEvents[i].Block, e.Block)
		assert.Equal(t, "mychannel", e.Channel)
		assert.Equal(t, "patrimonio", e.Contract)
		assert.NotEmpty(t, e.ID)
	}

	assert.NotEqual(t, mb.sent[0].ID, mb.sent[1].ID)
	assert.JSONEq(t, `{"id":"A1"}`, string(mb.sent[0].Payload))
	assert.JSONEq(t, `"not json"`, string(mb.sent[2].Payload))

	cp, err := db.LoadCheckpoint("mychannel")
	require.NoError(t, err)
	assert.Equal(t, store.Checkpoint{Block: 7, TxID: "t3"}, cp)
}

func TestListenPublishFails(t *testing.T) {
	db, err := file.New(filepath.Join(t.TempDir(), "wallet"))
	require.NoError(t, err)

	// the second event cannot be published
	mb := &fakeBroker{failOn: "AssetTransferred"}
	l := New(db, mb, &fakeSource{events: testEvents}, "mychannel", "patrimonio")

	err = l.Listen(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AssetTransferred")
	require.Len(t, mb.sent, 1)

	cp, err := db.LoadCheckpoint("mychannel")
	require.NoError(t, err)
	assert.Equal(t, store.Checkpoint{Block: 5, TxID: "t1"}, cp)

	// a restart resumes after the checkpoint and sends the failed event again
	mb.failOn = ""
	src := &fakeSource{events: testEvents, close: true}
	l = New(db, mb, src, "mychannel", "patrimonio")

	assert.ErrorIs(t, l.Listen(context.Background()), ErrStreamClosed)
	require.NotNil(t, src.cp)
	assert.Equal(t, uint64(5), src.cp.Block)
	require.Len(t, mb.sent, 3)
	assert.Equal(t, "AssetTransferred", mb.sent[1].Name)
	assert.Equal(t, "AssetUpdated", mb.sent[2].Name)

	cp, err = db.LoadCheckpoint("mychannel")
	require.NoError(t, err)
	assert.Equal(t, store.Checkpoint{Block: 7, TxID: "t3"}, cp)
}
