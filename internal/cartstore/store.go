// Package cartstore is the in-memory source of truth for one shopper's
// cart, kept consistent with the remote persisted copy.
//
// Reconciliation contract:
//   - on every identity change the remote cart is authoritative: the
//     store refetches and replaces its local items, and reports Loading
//     until that read resolves;
//   - mutations apply locally first and trigger an asynchronous
//     full-replace persist of the entire cart (optimistic, never rolled
//     back on persist failure);
//   - a read that was issued for a previous identity is discarded when
//     it lands instead of being applied to the new identity's state.
//
// Persist calls are serialized per store (single-flight): at most one
// write is in flight and queued writes coalesce to the latest snapshot,
// so a slow early write can never overwrite a later one.
package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	"storefront/internal/session"
)

// Persistence is the remote cart store, keyed by the identity's email.
type Persistence interface {
	// Fetch returns the persisted line items for email; an absent
	// record is (nil, nil), not an error.
	Fetch(ctx context.Context, email string) ([]cartdom.LineItem, error)

	// Replace overwrites the full line-item collection for email
	// (create-or-replace, never a merge).
	Replace(ctx context.Context, email string, items []cartdom.LineItem) error
}

// Store holds the current shopper's cart. All exported methods are safe
// for concurrent use; mutations are applied in call order.
type Store struct {
	log     *logrus.Entry
	remote  Persistence
	timeout time.Duration

	mu      sync.Mutex
	cond    *sync.Cond
	cart    *cartdom.Cart
	email   string // empty while signed out
	epoch   uint64 // bumped on every identity change; guards stale reads
	loading bool

	// single-flight persist state
	inFlight bool
	pending  *persistJob
}

type persistJob struct {
	email string
	items []cartdom.LineItem
}

// New builds a store subscribed to sess. The subscription delivers the
// current identity immediately, so the initial remote fetch (or the
// signed-out empty state) is in motion before New returns.
func New(sess *session.Session, remote Persistence, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Store{
		log:     log.WithField("component", "cartstore"),
		remote:  remote,
		timeout: 15 * time.Second,
		cart:    &cartdom.Cart{},
	}
	s.cond = sync.NewCond(&s.mu)
	if sess != nil {
		sess.Subscribe(s.LoadForIdentity)
	}
	return s
}

// LoadForIdentity reacts to an identity change.
//
// nil identity: the in-memory cart is discarded and no remote call is
// made (the remote copy is not deleted). Otherwise the remote cart for
// the identity's email is fetched and replaces local state; on fetch
// failure the cart starts empty and the error is logged, never surfaced
// as a crash.
func (s *Store) LoadForIdentity(id *session.Identity) {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.pending = nil // queued writes belong to the previous identity

	if id == nil {
		s.email = ""
		s.cart = &cartdom.Cart{}
		s.loading = false
		s.mu.Unlock()
		s.cond.Broadcast()
		return
	}

	email := id.Email
	s.email = email
	s.cart = &cartdom.Cart{Email: email}
	s.loading = true
	s.mu.Unlock()

	go s.fetch(epoch, email)
}

func (s *Store) fetch(epoch uint64, email string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	items, err := s.remote.Fetch(ctx, email)

	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.cond.Broadcast()
	}()

	if s.epoch != epoch {
		// Identity changed while the read was in flight; the result
		// belongs to whoever was signed in when it was issued.
		s.log.WithField("email", email).Info("discarding stale cart read")
		return
	}

	s.loading = false
	if err != nil {
		s.log.WithField("email", email).WithError(err).Error("cart fetch failed; starting empty")
		s.cart = &cartdom.Cart{Email: email}
		return
	}

	c := &cartdom.Cart{Email: email}
	c.Replace(items, time.Now().UTC())
	s.cart = c
}

// Loading reports whether the authoritative remote read is still in
// flight; callers should render a loading state rather than the cart.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// AddItem appends a line item for p (first add wins: re-adding an
// already-present product id changes nothing). qty < 1 is rejected.
func (s *Store) AddItem(p productdom.Product, qty int) error {
	s.mu.Lock()
	changed, err := s.cart.Add(p, qty, time.Now().UTC())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.schedulePersist()
	}
	return nil
}

// RemoveItem deletes the line item for productID; absent id is a no-op
// and triggers no persist call.
func (s *Store) RemoveItem(productID int) {
	s.mu.Lock()
	changed := s.cart.Remove(productID, time.Now().UTC())
	s.mu.Unlock()
	if changed {
		s.schedulePersist()
	}
}

// SetQuantity overwrites the quantity for productID. qty < 1 is
// rejected without mutating state or touching the network.
func (s *Store) SetQuantity(productID, qty int) error {
	s.mu.Lock()
	changed, err := s.cart.SetQuantity(productID, qty, time.Now().UTC())
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if changed {
		s.schedulePersist()
	}
	return nil
}

// Items returns a snapshot of the line items in insertion order.
func (s *Store) Items() []cartdom.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]cartdom.LineItem, len(s.cart.Items))
	copy(out, s.cart.Items)
	return out
}

// TotalPrice recomputes the cart total on every call.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// ItemCount is the number of distinct line items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// schedulePersist queues a full-replace write of the current cart.
// Signed-out mutations stay local. Writes are fire-and-forget for the
// caller: failure is logged and the in-memory state stands.
func (s *Store) schedulePersist() {
	s.mu.Lock()
	if s.email == "" {
		s.mu.Unlock()
		return
	}

	job := &persistJob{email: s.email}
	job.items = make([]cartdom.LineItem, len(s.cart.Items))
	copy(job.items, s.cart.Items)

	if s.inFlight {
		// latest snapshot wins; earlier queued writes are superseded
		s.pending = job
		s.mu.Unlock()
		return
	}
	s.inFlight = true
	s.mu.Unlock()

	go s.persistLoop(job)
}

func (s *Store) persistLoop(job *persistJob) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.remote.Replace(ctx, job.email, job.items)
		cancel()
		if err != nil {
			s.log.WithField("email", job.email).WithError(err).Error("cart persist failed; keeping local state")
		}

		s.mu.Lock()
		if s.pending == nil {
			s.inFlight = false
			s.mu.Unlock()
			s.cond.Broadcast()
			return
		}
		job = s.pending
		s.pending = nil
		s.mu.Unlock()
	}
}

// Quiesce blocks until no remote read or write is outstanding, or ctx
// is done. Useful for shutdown and tests.
func (s *Store) Quiesce(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		for s.loading || s.inFlight || s.pending != nil {
			s.cond.Wait()
		}
		s.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.cond.Broadcast()
		return ctx.Err()
	}
}
