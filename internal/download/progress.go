package download

import "time"

// Kind distinguishes what a download produces.
type Kind int

const (
	// KindModel fetches a GGUF model file into the models directory.
	KindModel Kind = iota
	// KindRuntime fetches a native runtime archive and extracts the current
	// platform's payload into the runtimes directory.
	KindRuntime
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// State is the download lifecycle. Transitions are strictly forward:
// Starting -> Downloading -> one of the terminal states. A terminal state can
// only be cleared back to "no active download", never resumed.
type State string

const (
	StateStarting    State = "starting"
	StateDownloading State = "downloading"
	StateCompleted   State = "completed"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// Progress is the published snapshot of the single download slot. It is
// copied out to pollers; only the orchestrator mutates it, under its mutex.
type Progress struct {
	ID                 string
	DisplayName        string
	Kind               Kind
	DownloadedBytes    int64
	TotalBytes         int64
	State              State
	StatusText         string
	Percentage         float64
	EstimatedRemaining time.Duration
	CompletedPath      string
}

// Record is the terminal outcome handed to an optional Recorder once a
// download reaches a terminal state.
type Record struct {
	ID         string
	Kind       string
	URL        string
	Dest       string
	State      State
	Bytes      int64
	Total      int64
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
