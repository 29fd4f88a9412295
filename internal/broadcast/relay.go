package broadcast

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/syncvision/internal/adapter/metrics"
)

const (
	commandTimeout      = 5 * time.Second
	stopTimeout         = 10 * time.Second
	commandQueueSize    = 256
	queueDepthWarnLevel = 200
)

// relayCmd is the command interface for the Relay actor.
type relayCmd interface{ isRelayCmd() }

type baseRelayCmd struct{}

func (baseRelayCmd) isRelayCmd() {}

type registerCmd struct {
	baseRelayCmd
	id         string
	connection *websocket.Conn
	ack        chan struct{}
}

type unregisterCmd struct {
	baseRelayCmd
	id string
}

type publishCmd struct {
	baseRelayCmd
	frame []byte
}

type countCmd struct {
	baseRelayCmd
	replyChannel chan int
}

type stopCmd struct {
	baseRelayCmd
}

// Relay fans events out to every registered connection. A single goroutine
// owns the membership map; all access goes through the command channel.
type Relay struct {
	cmdCh       chan relayCmd
	clock       clockwork.Clock
	metrics     *metrics.RelayMetrics
	members     map[string]*clientWriter
	done        chan struct{}
	stopTimeout time.Duration
}

func NewRelay(clock clockwork.Clock, m *metrics.RelayMetrics) *Relay {
	r := &Relay{
		cmdCh:       make(chan relayCmd, commandQueueSize),
		clock:       clock,
		metrics:     m,
		members:     make(map[string]*clientWriter),
		done:        make(chan struct{}),
		stopTimeout: stopTimeout,
	}
	go r.run()
	return r
}

// Register adds a connection and starts its writer. Registering an id that
// is already a member is a no-op. Register returns once the connection is a
// member, so any Publish issued afterwards reaches it.
func (r *Relay) Register(id string, conn *websocket.Conn) {
	ack := make(chan struct{})
	if !r.send(registerCmd{id: id, connection: conn, ack: ack}) {
		return
	}

	timer := r.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case <-ack:
	case <-r.done:
	case <-timer.Chan():
		slog.Warn("Register timed out", "connection_id", id, "timeout", commandTimeout)
	}
}

// Unregister removes a connection and stops its writer. Unknown ids are ignored.
func (r *Relay) Unregister(id string) {
	r.send(unregisterCmd{id: id})
}

// Publish frames payload once as an update_task_list event and enqueues the
// same frame to every member.
func (r *Relay) Publish(payload json.RawMessage) {
	r.send(publishCmd{frame: EncodeEvent(EventUpdateTaskList, payload)})
}

// Count returns the membership size, or -1 if the actor did not answer in time.
func (r *Relay) Count() int {
	replyCh := make(chan int, 1)
	if !r.send(countCmd{replyChannel: replyCh}) {
		return 0
	}

	timer := r.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-r.done:
		return 0
	case <-timer.Chan():
		slog.Warn("Count timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop closes every member with a going-away frame and waits for the actor to exit.
// Calling Stop more than once is safe.
func (r *Relay) Stop() {
	if !r.send(stopCmd{}) {
		return
	}

	timeout := r.clock.NewTimer(r.stopTimeout)
	defer timeout.Stop()

	select {
	case <-r.done:
		slog.Info("Relay stopped gracefully")
	case <-timeout.Chan():
		slog.Warn("Relay stop timeout exceeded", "timeout", r.stopTimeout)
	}
}

// send enqueues a command unless the actor has already exited.
func (r *Relay) send(cmd relayCmd) bool {
	select {
	case <-r.done:
		return false
	default:
	}

	select {
	case r.cmdCh <- cmd:
		return true
	case <-r.done:
		return false
	}
}

func (r *Relay) run() {
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Relay panic recovered", "panic", rec)
			r.closeAll("relay failure")
		}
	}()

	depthTicker := r.clock.NewTicker(time.Second)
	defer depthTicker.Stop()

	for {
		select {
		case <-depthTicker.Chan():
			depth := len(r.cmdCh)
			r.metrics.CommandQueueDepth.Set(float64(depth))
			if depth > queueDepthWarnLevel {
				slog.Warn("Relay command queue near capacity", "depth", depth, "capacity", cap(r.cmdCh))
			}

		case cmd := <-r.cmdCh:
			switch c := cmd.(type) {
			case registerCmd:
				r.handleRegister(c)
			case unregisterCmd:
				r.handleUnregister(c.id)
			case publishCmd:
				r.handlePublish(c.frame)
			case countCmd:
				c.replyChannel <- len(r.members)
			case stopCmd:
				r.handleStop()
				return
			default:
				slog.Warn("Relay received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		}
	}
}

func (r *Relay) handleRegister(c registerCmd) {
	defer close(c.ack)

	if _, exists := r.members[c.id]; exists {
		slog.Debug("Connection already registered", "connection_id", c.id)
		return
	}

	r.members[c.id] = newClientWriter(c.connection, r.clock, r.metrics)
	r.metrics.ActiveConnections.Inc()
	slog.Info("Client connected", "connection_id", c.id, "total_clients", len(r.members))
}

func (r *Relay) handleUnregister(id string) {
	cw, exists := r.members[id]
	if !exists {
		return
	}

	cw.stop()
	delete(r.members, id)
	r.metrics.ActiveConnections.Dec()
	slog.Info("Client disconnected", "connection_id", id, "remaining_clients", len(r.members))
}

func (r *Relay) handlePublish(frame []byte) {
	r.metrics.EventsPublished.Inc()

	var slow []string
	for id, cw := range r.members {
		if cw.enqueue(frame) {
			r.metrics.Deliveries.Inc()
			continue
		}
		slow = append(slow, id)
	}

	for _, id := range slow {
		slog.Warn("Disconnecting slow client", "connection_id", id)
		r.metrics.SlowClientsEvicted.Inc()
		r.handleUnregister(id)
	}

	slog.Debug("Event broadcast", "event", EventUpdateTaskList, "recipients", len(r.members), "evicted", len(slow))
}

func (r *Relay) handleStop() {
	total := len(r.members)
	slog.Info("Relay shutting down", "total_clients", total)
	r.closeAll("server shutting down")
	slog.Info("Relay shutdown complete", "disconnected_clients", total)
}

// closeAll closes every member with the given reason.
// Used during panic recovery and graceful shutdown.
func (r *Relay) closeAll(reason string) {
	for id, cw := range r.members {
		cw.stopGraceful(reason)
		delete(r.members, id)
	}
	r.metrics.ActiveConnections.Set(0)
}
