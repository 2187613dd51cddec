package websocket

import (
	"errors"
	"fmt"
	"job-portal/internal/domain"
	"job-portal/pkg/logger"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(id string) domain.NotificationEvent {
	return domain.NotificationEvent{
		ID:        id,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Type:      domain.NotificationInfo,
		Message:   "Job updated",
		Data:      map[string]interface{}{"jobId": "job-1"},
	}
}

func TestConnectionManager_IsConnected(t *testing.T) {
	type op struct {
		register bool
		user     string
		conn     int
	}

	tests := []struct {
		name string
		ops  []op
		want map[string]bool
	}{
		{
			name: "single register",
			ops:  []op{{true, "u1", 0}},
			want: map[string]bool{"u1": true, "u2": false},
		},
		{
			name: "register then unregister",
			ops:  []op{{true, "u1", 0}, {false, "u1", 0}},
			want: map[string]bool{"u1": false},
		},
		{
			name: "two tabs, one closes",
			ops:  []op{{true, "u1", 0}, {true, "u1", 1}, {false, "u1", 0}},
			want: map[string]bool{"u1": true},
		},
		{
			name: "two tabs, both close",
			ops:  []op{{true, "u1", 0}, {true, "u1", 1}, {false, "u1", 1}, {false, "u1", 0}},
			want: map[string]bool{"u1": false},
		},
		{
			name: "unregister of another user's conn is a no-op",
			ops:  []op{{true, "u1", 0}, {false, "u2", 0}},
			want: map[string]bool{"u1": true, "u2": false},
		},
		{
			name: "duplicate register then single unregister",
			ops:  []op{{true, "u1", 0}, {true, "u1", 0}, {false, "u1", 0}},
			want: map[string]bool{"u1": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewConnectionManager(logger.NewNop())
			conns := []*mockConn{newMockConn("c0"), newMockConn("c1")}

			for _, o := range tt.ops {
				if o.register {
					cm.Register(o.user, conns[o.conn])
				} else {
					cm.Unregister(o.user, conns[o.conn])
				}
			}

			for user, want := range tt.want {
				assert.Equal(t, want, cm.IsConnected(user), "user %s", user)
			}
		})
	}
}

func TestConnectionManager_UnregisterIdempotent(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	conn := newMockConn("c1")

	assert.NotPanics(t, func() {
		cm.Unregister("ghost", conn)
		cm.Register("u1", conn)
		cm.Unregister("u1", conn)
		cm.Unregister("u1", conn)
	})

	users, connections := cm.Stats()
	assert.Equal(t, 0, users)
	assert.Equal(t, 0, connections)
}

func TestConnectionManager_RegisterSameConnTwice(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	conn := newMockConn("c1")

	cm.Register("u1", conn)
	cm.Register("u1", conn)

	users, connections := cm.Stats()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, connections)
}

func TestConnectionManager_SendToUser_Offline(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	other := newMockConn("other")
	cm.Register("someone-else", other)

	delivered := cm.SendToUser("u1", testEvent("n1"))

	assert.False(t, delivered)
	assert.Empty(t, other.getReceived())
}

func TestConnectionManager_SendToUser_AllTabsGetIdenticalPayload(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	tab1 := newMockConn("tab1")
	tab2 := newMockConn("tab2")
	cm.Register("userD", tab1)
	cm.Register("userD", tab2)

	delivered := cm.SendToUser("userD", testEvent("n1"))

	require.True(t, delivered)
	require.Len(t, tab1.getReceived(), 1)
	require.Len(t, tab2.getReceived(), 1)
	assert.Equal(t, tab1.getReceived()[0], tab2.getReceived()[0])

	frame := tab1.frames(t)[0]
	assert.Equal(t, "notification", frame["type"])
	assert.Equal(t, "n1", frame["id"])
	assert.Equal(t, "info", frame["notificationType"])
	assert.Equal(t, "Job updated", frame["message"])
	assert.Equal(t, map[string]interface{}{"jobId": "job-1"}, frame["data"])
	assert.Equal(t, "2026-03-01T12:00:00Z", frame["timestamp"])
}

func TestConnectionManager_SendToUser_SkipsClosedTransport(t *testing.T) {
	tests := []struct {
		name          string
		closed        []bool
		wantDelivered bool
	}{
		{name: "one closed one open", closed: []bool{true, false}, wantDelivered: true},
		{name: "all closed", closed: []bool{true, true}, wantDelivered: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewConnectionManager(logger.NewNop())
			var conns []*mockConn
			for i, closed := range tt.closed {
				c := newMockConn(fmt.Sprintf("c%d", i))
				c.closed = closed
				cm.Register("u1", c)
				conns = append(conns, c)
			}

			assert.Equal(t, tt.wantDelivered, cm.SendToUser("u1", testEvent("n1")))
			for i, c := range conns {
				if tt.closed[i] {
					assert.Empty(t, c.getReceived(), "closed conn %s", c.ID())
				} else {
					assert.Len(t, c.getReceived(), 1, "open conn %s", c.ID())
				}
			}
		})
	}
}

func TestConnectionManager_SendToUser_WriteFailureDoesNotAbortSiblings(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	broken := newMockConn("broken")
	broken.sendErr = errors.New("write: broken pipe")
	healthy := newMockConn("healthy")
	cm.Register("u1", broken)
	cm.Register("u1", healthy)

	assert.True(t, cm.SendToUser("u1", testEvent("n1")))
	assert.Len(t, healthy.getReceived(), 1)
}

func TestConnectionManager_SendToUser_OnlyFailingConnection(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	broken := newMockConn("broken")
	broken.sendErr = domain.ErrSendBufferFull
	cm.Register("u1", broken)

	assert.False(t, cm.SendToUser("u1", testEvent("n1")))
}

func TestConnectionManager_SendToMany(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	a := newMockConn("a")
	failing := newMockConn("f")
	failing.sendErr = errors.New("closing")
	cm.Register("alice", a)
	cm.Register("fred", failing)

	results := cm.SendToMany([]string{"alice", "bob", "fred"}, testEvent("n1"))

	assert.Equal(t, []domain.DeliveryResult{
		{UserID: "alice", Delivered: true},
		{UserID: "bob", Delivered: false},
		{UserID: "fred", Delivered: false},
	}, results)
	assert.Len(t, a.getReceived(), 1)
}

func TestConnectionManager_BroadcastExcludes(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	userA := newMockConn("a")
	userB := newMockConn("b")
	cm.Register("A", userA)
	cm.Register("B", userB)

	results := cm.Broadcast(testEvent("n1"), []string{"A"})

	assert.Equal(t, []domain.DeliveryResult{{UserID: "B", Delivered: true}}, results)
	assert.Len(t, userB.framesOfType(t, "notification"), 1)
	assert.Empty(t, userA.getReceived())
}

func TestConnectionManager_BroadcastEveryone(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	for _, id := range []string{"u1", "u2", "u3"} {
		cm.Register(id, newMockConn("conn-"+id))
	}

	results := cm.Broadcast(testEvent("n1"), nil)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Delivered, "user %s", r.UserID)
	}
}

func TestConnectionManager_BroadcastNobodyConnected(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	assert.Empty(t, cm.Broadcast(testEvent("n1"), []string{"A"}))
}

func TestConnectionManager_PingAll(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	open1 := newMockConn("o1")
	open2 := newMockConn("o2")
	anonymous := newMockConn("anon")
	closed := newMockConn("c")
	closed.closed = true
	for _, c := range []*mockConn{open1, open2, anonymous, closed} {
		cm.Track(c)
	}
	cm.Register("u1", open1)
	cm.Register("u1", closed)
	cm.Register("u2", open2)

	sent := cm.PingAll()

	assert.Equal(t, 3, sent)
	for _, c := range []*mockConn{open1, open2, anonymous} {
		require.Len(t, c.getReceived(), 1)
		assert.JSONEq(t, `{"type":"ping"}`, string(c.getReceived()[0]))
	}
	assert.Empty(t, closed.getReceived())
}

func TestConnectionManager_PingAllSkipsUntracked(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	conn := newMockConn("c1")
	cm.Track(conn)
	cm.Untrack(conn)
	cm.Untrack(conn)

	assert.Equal(t, 0, cm.PingAll())
	assert.Empty(t, conn.getReceived())
	assert.Empty(t, cm.OpenConnections())
}

func TestConnectionManager_Stats(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	cm.Register("u1", newMockConn("a"))
	cm.Register("u1", newMockConn("b"))
	cm.Register("u2", newMockConn("c"))

	users, connections := cm.Stats()
	assert.Equal(t, 2, users)
	assert.Equal(t, 3, connections)
}

func TestConnectionManager_ConcurrentAccess(t *testing.T) {
	cm := NewConnectionManager(logger.NewNop())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("u%d", i%5)
			conn := newMockConn(fmt.Sprintf("c%d", i))
			cm.Track(conn)
			cm.Register(userID, conn)
			cm.SendToUser(userID, testEvent("n"))
			cm.Broadcast(testEvent("b"), nil)
			cm.PingAll()
			cm.Unregister(userID, conn)
		}(i)
	}
	wg.Wait()

	users, connections := cm.Stats()
	assert.Equal(t, 0, users)
	assert.Equal(t, 0, connections)
}
