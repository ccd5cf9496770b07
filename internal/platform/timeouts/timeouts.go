// Package timeouts defines shared timeout constants used across the arena
// runtime.
package timeouts

import "time"

// StoreOperation caps a single persisted query executed by the gateway.
const StoreOperation = 5 * time.Second

// StoreFlush limits how long shutdown waits for pending store operations.
const StoreFlush = 5 * time.Second

// Shutdown limits how long the gRPC server waits for in-flight calls
// during graceful shutdown.
const Shutdown = 5 * time.Second
