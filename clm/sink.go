package clm

import "context"

// Sink accepts a finished store together with the citation key of the
// publication it came from (e.g. "Zon04"). An absorption-system container
// implements it; this package needs nothing else from the container.
type Sink interface {
	Attach(ctx context.Context, store *Store, citation string) error
}
