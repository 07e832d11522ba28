package engine

import (
	"runtime"
	"time"
)

// Options configures workflow execution behavior.
type Options struct {
	// WorkerCount bounds the number of nodes executing in parallel within a
	// level. Defaults to the number of available hardware threads, minimum 1.
	WorkerCount int

	// ExecutionTimeout is the deadline for the whole execution. Zero means
	// unlimited; expiry behaves like a cancel request.
	ExecutionTimeout time.Duration

	// ContinueOnError keeps an execution going past node failures, treating
	// failed nodes' outputs as null. Default is fail-fast.
	ContinueOnError bool

	// CacheEnabled is the master cache switch; it overrides a per-execution
	// use_cache request when false.
	CacheEnabled bool

	// CacheTTL is the time-to-live for cached node results.
	CacheTTL time.Duration

	// StrictTemplates turns unresolved template references into node
	// failures instead of passing placeholders through.
	StrictTemplates bool
}

// DefaultOptions returns execution options with the documented defaults.
func DefaultOptions() *Options {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	return &Options{
		WorkerCount:  workers,
		CacheEnabled: true,
		CacheTTL:     time.Hour,
	}
}
