package ics

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for extracted events. Every call
// must return a value not returned before by the same generator.
type IDGenerator interface {
	NextID() string
}

// Counter is a goroutine-safe incrementing IDGenerator producing
// "<prefix>-1", "<prefix>-2", ...
type Counter struct {
	prefix string
	n      atomic.Uint64
}

func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

func (c *Counter) NextID() string {
	n := strconv.FormatUint(c.n.Add(1), 10)
	if c.prefix == "" {
		return n
	}
	return c.prefix + "-" + n
}

// UUIDGenerator issues random v4 UUIDs, unique across calls and
// processes.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}
