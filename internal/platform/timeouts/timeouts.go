// Package timeouts defines shared timeout constants used by the commands.
package timeouts

import "time"

// Probe caps how long the health probe waits for SERVING.
const Probe = 5 * time.Second

// Shutdown limits how long the gRPC server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
