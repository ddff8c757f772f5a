// Package tiercache is a multi-tier client-side cache for the sport-tracker
// client: an ephemeral in-memory tier, a quota-bounded durable local tier,
// and an optional shared remote tier, orchestrated behind one Manager.
//
// Consumers talk to the Manager only. It probes tiers fastest-first on reads,
// fans writes out by entry priority, promotes hot entries toward memory,
// enforces per-tier capacity with pluggable eviction policies, cascades
// invalidation through a rule engine, prefetches with bounded concurrency,
// and re-optimizes itself on a fixed interval.
//
// Tier failures never reach the caller: a broken tier degrades to a miss and
// the caller recomputes or refetches. Only programmer errors (bad patterns,
// bad configuration, use after shutdown) surface from the public API.
package tiercache
