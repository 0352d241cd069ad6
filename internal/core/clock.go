package core

import "time"

// Clock times one phase of the pipeline (discovery, classification, mesh
// patch, texture patch, output write) for the run summary. Adapted from
// the teacher's per-frame Clock; here it times phases, not frames.
type Clock struct {
	start   time.Time
	elapsed time.Duration
}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Start() {
	c.start = time.Now()
	c.elapsed = 0
}

func (c *Clock) Stop() {
	if !c.start.IsZero() {
		c.elapsed = time.Since(c.start)
	}
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}
