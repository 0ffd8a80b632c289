package cluster

import (
	"time"
)

// PassStats describes one clustering pass.
type PassStats struct {
	Zoom       int
	Candidates int // unassigned markers found inside the extended bounds
	Joined     int // candidates that joined an existing cluster
	Skipped    int // markers dropped because their position is invalid
	Clusters   int
	Duration   time.Duration
}

// Hooks receives events from the clusterer. Implementations must not call
// back into the clusterer.
type Hooks interface {
	OnPassComplete(stats PassStats, err error)
	OnRepaint(released int)
	OnReset(clusters int, hide bool)
}

// NoopHooks is a no-op implementation of Hooks.
type NoopHooks struct{}

func (NoopHooks) OnPassComplete(PassStats, error) {}
func (NoopHooks) OnRepaint(int)                   {}
func (NoopHooks) OnReset(int, bool)               {}
