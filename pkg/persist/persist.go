package persist

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/harrisonrobin/taskflow/pkg/backend"
	"github.com/harrisonrobin/taskflow/pkg/cache"
	"github.com/harrisonrobin/taskflow/pkg/model"
)

// Coordinator prefers the remote store and falls back to the local cache.
// Persistence failures are logged and absorbed: callers always get a usable
// result, possibly stale or empty, and the in-memory collection is never
// rolled back because a write failed.
//
// A nil remote means the process is running offline; every load and save then
// goes straight to the cache.
type Coordinator struct {
	remote backend.RemoteStore
	cache  *cache.Cache

	mu    sync.Mutex
	saves map[backend.Identity]*saveState
}

// saveState sequences one identity's saves. writeMu serializes the durable
// writes so overlapping saves cannot reach the remote store or the cache out
// of issue order; seq marks saves that were superseded before their turn.
type saveState struct {
	seqMu   sync.Mutex
	seq     uint64
	writeMu sync.Mutex
}

func (st *saveState) next() uint64 {
	st.seqMu.Lock()
	defer st.seqMu.Unlock()
	st.seq++
	return st.seq
}

// stale reports whether a newer save has been issued since seq was assigned.
func (st *saveState) stale(seq uint64) bool {
	st.seqMu.Lock()
	defer st.seqMu.Unlock()
	return seq < st.seq
}

func New(remote backend.RemoteStore, c *cache.Cache) *Coordinator {
	return &Coordinator{remote: remote, cache: c}
}

// Load fetches identity's tasks, newest first. Anonymous loads return an
// empty collection without consulting any backend. Remote failures of any
// kind degrade to the cached snapshot, or to empty when none exists.
func (co *Coordinator) Load(ctx context.Context, identity backend.Identity) []model.Task {
	if identity.IsAnonymous() {
		return nil
	}
	if co.remote != nil {
		recs, err := co.remote.Query(ctx, identity)
		if err == nil {
			tasks := make([]model.Task, 0, len(recs))
			for _, r := range recs {
				tasks = append(tasks, r.Task())
			}
			return tasks
		}
		log.Printf("remote load for %s failed, falling back to local cache: %v", identity, err)
	}
	return co.loadCached(identity)
}

// Save writes the full snapshot through to the remote store, or to the local
// cache when the remote write fails. Saving the same snapshot twice leaves
// durable state unchanged. Saves are serialized per identity and each one
// carries a sequence number, so a save that was superseded before its turn is
// dropped outright: a slow save that started earlier can never leave the
// remote store or the cache holding an older snapshot than a later save.
func (co *Coordinator) Save(ctx context.Context, identity backend.Identity, tasks []model.Task) {
	if identity.IsAnonymous() {
		return
	}

	st := co.state(identity)
	seq := st.next()

	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	if st.stale(seq) {
		return
	}

	if co.remote != nil {
		recs := make([]backend.Record, 0, len(tasks))
		for _, t := range tasks {
			recs = append(recs, backend.RecordFromTask(t, identity))
		}
		err := co.remote.Upsert(ctx, identity, recs)
		if err == nil {
			return
		}
		log.Printf("remote save for %s failed, writing local cache instead: %v", identity, err)
		if st.stale(seq) {
			// A newer snapshot was issued while the remote call was failing.
			return
		}
	}

	payload, err := json.Marshal(tasks)
	if err != nil {
		log.Printf("failed to encode tasks for %s: %v", identity, err)
		return
	}
	if err := co.cache.Write(cacheKey(identity), string(payload)); err != nil {
		log.Printf("local cache write for %s failed: %v", identity, err)
	}
}

func (co *Coordinator) state(identity backend.Identity) *saveState {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.saves == nil {
		co.saves = make(map[backend.Identity]*saveState)
	}
	st := co.saves[identity]
	if st == nil {
		st = &saveState{}
		co.saves[identity] = st
	}
	return st
}

// Purge removes identity's cached snapshot entirely. Clear-all uses this so
// an empty collection is not merely written over stale data that a later
// fallback read could resurrect.
func (co *Coordinator) Purge(identity backend.Identity) {
	if identity.IsAnonymous() {
		return
	}
	if err := co.cache.Remove(cacheKey(identity)); err != nil {
		log.Printf("failed to purge cached tasks for %s: %v", identity, err)
	}
}

func (co *Coordinator) loadCached(identity backend.Identity) []model.Task {
	raw, ok := co.cache.Read(cacheKey(identity))
	if !ok {
		return nil
	}
	var tasks []model.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		log.Printf("discarding unreadable cached tasks for %s: %v", identity, err)
		return nil
	}
	return tasks
}

// cacheKey namespaces cached snapshots per identity, so one account's
// fallback never surfaces another account's tasks.
func cacheKey(identity backend.Identity) string {
	return "tasks-" + string(identity)
}
