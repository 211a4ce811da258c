package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/backend"
	"github.com/harrisonrobin/taskflow/pkg/filter"
	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/harrisonrobin/taskflow/pkg/persist"
	"github.com/harrisonrobin/taskflow/pkg/stats"
	"github.com/harrisonrobin/taskflow/pkg/store"
)

// Session ties a Task Store to the identity that owns it: it hydrates the
// store on sign-in, writes every mutation through the coordinator, and
// re-fetches the authoritative list whenever the change feed reports an
// out-of-band remote edit.
//
// Identity switches bump an epoch. Loads and feed callbacks carry the epoch
// at which they started; results arriving after the epoch has moved belong to
// a previous identity and are discarded, never merged into the new view.
type Session struct {
	coord  *persist.Coordinator
	remote backend.RemoteStore // nil when running offline
	store  *store.TaskStore

	mu          sync.Mutex
	identity    backend.Identity
	epoch       uint64
	loadSeq     uint64
	unsubscribe func()

	wg sync.WaitGroup
}

func New(coord *persist.Coordinator, remote backend.RemoteStore) *Session {
	s := &Session{
		coord:  coord,
		remote: remote,
		store:  store.New(),
	}
	s.store.OnChange(s.persistAsync)
	return s
}

// SetIdentity switches the session to a new identity: the previous change
// feed subscription is torn down, the store is re-hydrated for the new
// identity, and a new subscription is opened. Setting the same identity again
// (a token refresh) is a no-op.
func (s *Session) SetIdentity(identity backend.Identity) {
	s.mu.Lock()
	if identity == s.identity && s.epoch > 0 {
		s.mu.Unlock()
		return
	}
	s.epoch++
	epoch := s.epoch
	s.identity = identity
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if identity.IsAnonymous() {
		s.store.Hydrate(nil)
		return
	}
	s.subscribe(identity, epoch)
	s.reload(identity, epoch)
}

// Close tears down the change feed subscription and waits for in-flight loads
// and saves to settle.
func (s *Session) Close() {
	s.mu.Lock()
	s.epoch++
	s.identity = backend.Anonymous
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.wg.Wait()
}

// Flush blocks until every load and save issued so far has settled.
func (s *Session) Flush() {
	s.wg.Wait()
}

func (s *Session) Create(draft model.Draft) (model.Task, error) {
	return s.store.Create(draft)
}

func (s *Session) Update(id string, patch model.Patch) {
	s.store.Update(id, patch)
}

func (s *Session) Remove(id string) {
	s.store.Remove(id)
}

func (s *Session) ToggleStatus(id string) {
	s.store.ToggleStatus(id)
}

// Import replaces the whole collection with a validated import document.
func (s *Session) Import(tasks []model.Task) {
	s.store.ReplaceAll(tasks)
}

// ClearAll deletes every task and purges the cached fallback snapshot, so a
// later remote failure cannot resurrect stale data. The empty snapshot is
// saved through first, then the cache entry is removed outright rather than
// left holding an empty payload.
func (s *Session) ClearAll() {
	s.store.ReplaceAll(nil)
	s.wg.Wait()

	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()
	s.coord.Purge(identity)
}

// Tasks returns a snapshot of the collection in canonical order.
func (s *Session) Tasks() []model.Task {
	return s.store.Tasks()
}

// Filtered derives the view for a selector and search text against now.
func (s *Session) Filtered(sel filter.Selector, search string) []model.Task {
	return filter.Apply(s.store.Tasks(), sel, search, time.Now())
}

// Summary derives the dashboard counters from the current snapshot.
func (s *Session) Summary() stats.Summary {
	return stats.Summarize(s.store.Tasks(), time.Now())
}

// persistAsync is the store's change hook: it saves the snapshot on a
// goroutine so mutations return immediately. The coordinator's sequence
// tagging keeps overlapping saves from committing out of order.
func (s *Session) persistAsync(tasks []model.Task) {
	s.mu.Lock()
	identity := s.identity
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.coord.Save(context.Background(), identity, tasks)
	}()
}

// reload fetches the authoritative list and hydrates the store, unless the
// identity changed or a newer reload started while this one was in flight.
func (s *Session) reload(identity backend.Identity, epoch uint64) {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tasks := s.coord.Load(context.Background(), identity)

		s.mu.Lock()
		stale := s.epoch != epoch || s.loadSeq != seq
		s.mu.Unlock()
		if stale {
			return
		}
		s.store.Hydrate(tasks)
	}()
}

func (s *Session) subscribe(identity backend.Identity, epoch uint64) {
	if s.remote == nil {
		return
	}
	cancel, err := s.remote.Subscribe(identity, func() {
		s.mu.Lock()
		current := s.epoch == epoch
		s.mu.Unlock()
		if current {
			s.reload(identity, epoch)
		}
	})
	if err != nil {
		log.Printf("change feed subscription for %s failed: %v", identity, err)
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Identity moved while we were subscribing.
		s.mu.Unlock()
		cancel()
		return
	}
	s.unsubscribe = cancel
	s.mu.Unlock()
}
