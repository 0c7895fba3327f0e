package storage

import (
	"context"

	"github.com/teranos/ionclm/clm"
	"github.com/teranos/ionclm/ixgest/lls"
)

// SystemSink attaches stores to one absorption system.
type SystemSink struct {
	store  *SQLStore
	system lls.SystemInfo
}

var _ clm.Sink = (*SystemSink)(nil)

// Attach persists the system row and store under citation.
func (s *SystemSink) Attach(ctx context.Context, store *clm.Store, citation string) error {
	return s.store.Attach(ctx, s.system, citation, store)
}

// SinkFor is an lls.SinkFactory backed by s.
func (s *SQLStore) SinkFor(_ context.Context, system lls.SystemInfo) (clm.Sink, error) {
	return &SystemSink{store: s, system: system}, nil
}
