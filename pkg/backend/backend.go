package backend

import "context"

// Identity names the signed-in account a load, save, or subscription is
// scoped to. Anonymous is the absence of one.
type Identity string

const Anonymous Identity = ""

func (id Identity) IsAnonymous() bool {
	return id == Anonymous
}

// RemoteStore is the networked backend of record for tasks when reachable.
// Implementations exchange wire Records; mapping between the wire shape and
// model.Task belongs to this package and the adapter, not to callers.
type RemoteStore interface {
	// Query returns every record owned by identity, ordered by creation time
	// descending.
	Query(ctx context.Context, identity Identity) ([]Record, error)

	// Insert stores a single new record and returns it as persisted.
	Insert(ctx context.Context, rec Record) (Record, error)

	// Upsert makes the remote collection for identity match recs exactly,
	// inserting, patching, and deleting as needed.
	Upsert(ctx context.Context, identity Identity, recs []Record) error

	// Delete removes the record with the given task ID if present.
	Delete(ctx context.Context, identity Identity, id string) error

	// Subscribe invokes onChange, with no payload, whenever identity's
	// records change remotely. The returned cancel is safe to call more than
	// once and after the underlying channel is gone.
	Subscribe(identity Identity, onChange func()) (cancel func(), err error)
}
