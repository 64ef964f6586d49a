package cartstore

import (
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/internal/session"
)

// Manager owns one Store (and its Session) per signed-in shopper,
// keyed by identity uid. The HTTP layer resolves a verified identity per
// request and routes it through Ensure; sign-out flows through Drop.
type Manager struct {
	log    *logrus.Entry
	remote Persistence

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	sess  *session.Session
	store *Store
}

func NewManager(remote Persistence, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Manager{
		log:    log,
		remote: remote,
		stores: map[string]*entry{},
	}
}

// Ensure returns the store for id, creating it (and kicking off the
// authoritative remote read) on first sight of this uid.
func (m *Manager) Ensure(id *session.Identity) *Store {
	if id == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.stores[id.UID]; ok {
		return e.store
	}

	sess := session.New()
	st := New(sess, m.remote, m.log)
	m.stores[id.UID] = &entry{sess: sess, store: st}
	sess.Set(id)
	return st
}

// Drop signs the shopper out: the session clears, the store discards
// its in-memory cart (the remote copy is untouched), and the entry is
// released.
func (m *Manager) Drop(uid string) {
	m.mu.Lock()
	e, ok := m.stores[uid]
	if ok {
		delete(m.stores, uid)
	}
	m.mu.Unlock()

	if ok {
		e.sess.Clear()
	}
}
