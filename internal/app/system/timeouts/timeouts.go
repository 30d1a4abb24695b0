// Package timeouts provides centralized timeout values for handler
// operations. Used with context.WithTimeout for database and remote-service
// calls so a slow dependency cannot pin a request forever.
//
// Guidelines:
//   - Ping: health checks and connectivity verification
//   - Short: single-document reads or lookups
//   - Medium: list queries, aggregations, simple writes
//   - Long: multi-collection writes and remote media operations
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
)

// Ping returns the timeout for health checks.
func Ping() time.Duration { return ping }

// Short returns the timeout for simple single-document operations.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and aggregations.
func Medium() time.Duration { return medium }

// Long returns the timeout for operations touching multiple collections or
// remote media storage.
func Long() time.Duration { return long }
