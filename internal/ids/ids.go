// Package ids issues the server-assigned identifiers for tasks and lists.
//
// Identifiers are the decimal Unix time in milliseconds at creation. Two
// requests inside the same millisecond would collide, so the generator hands
// out the last value plus one whenever the clock has not moved past it. The
// result is strictly increasing for the lifetime of the process, and across
// restarts once Observe has been given the highest id already stored.
package ids

import (
	"strconv"
	"sync"
	"time"
)

type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// NewGeneratorWithClock is used by tests to pin the clock.
func NewGeneratorWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.now().UnixMilli()
	if candidate <= g.last {
		candidate = g.last + 1
	}
	g.last = candidate

	return strconv.FormatInt(candidate, 10)
}

// Observe raises the floor so that every later id is greater than last.
func (g *Generator) Observe(last int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last > g.last {
		g.last = last
	}
}
