package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientWriter_WritesEnqueuedFrames(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), newTestMetrics())
	t.Cleanup(cw.stop)

	require.True(t, cw.enqueue([]byte("one")))
	require.True(t, cw.enqueue([]byte("two")))

	assert.Equal(t, "one", readFrame(t, client))
	assert.Equal(t, "two", readFrame(t, client))
}

func TestClientWriter_EnqueueReportsFullBuffer(t *testing.T) {
	cw := &clientWriter{sendChannel: make(chan []byte, sendBufferSize)}

	for range sendBufferSize {
		require.True(t, cw.enqueue([]byte("x")))
	}
	assert.False(t, cw.enqueue([]byte("overflow")))
}

func TestClientWriter_SendsPingOnInterval(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Now())
	server, client := newTestConnPair(t)

	cw := newClientWriter(server, fakeClock, newTestMetrics())
	t.Cleanup(cw.stop)

	pinged := make(chan struct{}, 1)
	client.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))
	fakeClock.Advance(pingInterval)

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestClientWriter_WriteErrorClosesTransport(t *testing.T) {
	m := newTestMetrics()
	server, _ := newTestConnPair(t)

	cw := newClientWriter(server, clockwork.NewRealClock(), m)
	t.Cleanup(cw.stop)

	// closing underneath the writer makes the next write fail
	require.NoError(t, server.NetConn().Close())
	cw.enqueue([]byte("lost"))

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(m.TransportErrors.WithLabelValues("text")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientWriter_StopIdempotent(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), newTestMetrics())

	cw.stop()
	cw.stop()
	cw.stopGraceful("again")
}

func TestClientWriter_ConcurrentStop(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), newTestMetrics())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cw.stop()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("concurrent stop calls deadlocked")
	}
}
