// Package broadcast implements the real-time relay behind /socket.
//
// The Relay is an actor: one goroutine owns the membership set and processes
// register, unregister, publish and count commands from a buffered channel.
// Every member has its own writer goroutine with a small send buffer; a
// member whose buffer is full when an event is published is evicted.
//
// A Session drives one connection through Connecting, Connected and
// Disconnected. The state machine itself is the pure Transition function.
package broadcast
