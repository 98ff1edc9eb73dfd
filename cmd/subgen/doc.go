// Package main hosts the subgen CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into subtitle
// generation runs, cache and binary status reporting, run-history listing,
// and configuration scaffolding. Flag overrides layer on top of the TOML
// configuration before anything touches the working cache.
package main
