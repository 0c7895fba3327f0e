package lls

import (
	"context"
	"sync"

	"github.com/teranos/ionclm/clm"
)

// Attachment is one store received by a Collector.
type Attachment struct {
	Citation string
	Store    *clm.Store
}

// Collector is an in-memory clm.Sink, used for dry runs and tests.
type Collector struct {
	mu       sync.Mutex
	attached []Attachment
}

var _ clm.Sink = (*Collector)(nil)

// Attach records store under citation.
func (c *Collector) Attach(ctx context.Context, store *clm.Store, citation string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = append(c.attached, Attachment{Citation: citation, Store: store})
	return nil
}

// Attachments returns a copy of everything attached so far.
func (c *Collector) Attachments() []Attachment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Attachment, len(c.attached))
	copy(out, c.attached)
	return out
}
