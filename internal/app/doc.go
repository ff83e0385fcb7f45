// Package app wires application dependencies for embedders and the CLI.
//
// It builds the concrete stores, transports and high-level services from
// Config, exposing them via the Wire struct.
package app
