package main

// Exit codes consumed by the external scheduler that re-invokes the process.
const (
	ExitCaughtUp          = 0 // Harvest is caught up, no work remains
	ExitFailure           = 1 // Unrecoverable failure
	ExitNeedsContinuation = 2 // Budget or transient cutoff, re-invoke to resume
)
