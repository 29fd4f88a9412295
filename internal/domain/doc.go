// Package domain defines the core domain types and interfaces.
//
// Tasks are the only persisted entity. Connections exist only inside the
// broadcast relay and have no domain representation beyond their ID.
// No implementation code lives here, just contracts shared by the app,
// store and transport layers.
package domain
