package cartstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	"storefront/internal/session"
)

// fakeRemote is a controllable Persistence: fetches can be gated per
// email and replace calls are recorded.
type fakeRemote struct {
	mu       sync.Mutex
	carts    map[string][]cartdom.LineItem
	fetchGct map[string]chan struct{} // fetch for email blocks until closed
	fetched  int

	replaceGate  chan struct{} // every Replace waits for one token when set
	replaceStart chan struct{} // signaled when a Replace begins
	replaceErr   error
	replaces     []replaceCall
}

type replaceCall struct {
	email string
	items []cartdom.LineItem
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		carts:    map[string][]cartdom.LineItem{},
		fetchGct: map[string]chan struct{}{},
	}
}

func (f *fakeRemote) Fetch(ctx context.Context, email string) ([]cartdom.LineItem, error) {
	f.mu.Lock()
	gate := f.fetchGct[email]
	items := f.carts[email]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	f.fetched++
	f.mu.Unlock()
	return items, nil
}

func (f *fakeRemote) Replace(ctx context.Context, email string, items []cartdom.LineItem) error {
	if f.replaceStart != nil {
		f.replaceStart <- struct{}{}
	}
	if f.replaceGate != nil {
		<-f.replaceGate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	snapshot := make([]cartdom.LineItem, len(items))
	copy(snapshot, items)
	f.replaces = append(f.replaces, replaceCall{email: email, items: snapshot})
	f.carts[email] = snapshot
	return nil
}

func (f *fakeRemote) replaceCalls() []replaceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]replaceCall, len(f.replaces))
	copy(out, f.replaces)
	return out
}

func (f *fakeRemote) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched
}

func testProduct(id int) productdom.Product {
	return productdom.Product{ID: id, Title: "Product", Price: 10}
}

func ident(email string) *session.Identity {
	return &session.Identity{UID: "uid-" + email, Email: email}
}

func quiesce(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Quiesce(ctx))
}

func TestStore_SignInLoadsRemoteCart(t *testing.T) {
	remote := newFakeRemote()
	remote.carts["a@example.com"] = []cartdom.LineItem{
		{ProductID: 7, Title: "Saved", Price: 5, Quantity: 2},
	}

	sess := session.New()
	s := New(sess, remote, nil)

	sess.Set(ident("a@example.com"))
	quiesce(t, s)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 7, s.Items()[0].ProductID)
	assert.False(t, s.Loading())
}

func TestStore_LoadingWhileFetchInFlight(t *testing.T) {
	remote := newFakeRemote()
	gate := make(chan struct{})
	remote.fetchGct["a@example.com"] = gate

	sess := session.New()
	s := New(sess, remote, nil)

	sess.Set(ident("a@example.com"))
	assert.True(t, s.Loading())

	close(gate)
	quiesce(t, s)
	assert.False(t, s.Loading())
}

func TestStore_StaleReadDiscardedAfterIdentitySwitch(t *testing.T) {
	remote := newFakeRemote()
	remote.carts["old@example.com"] = []cartdom.LineItem{
		{ProductID: 1, Title: "Old", Price: 1, Quantity: 1},
	}
	remote.carts["new@example.com"] = []cartdom.LineItem{
		{ProductID: 2, Title: "New", Price: 2, Quantity: 1},
	}
	oldGate := make(chan struct{})
	remote.fetchGct["old@example.com"] = oldGate

	sess := session.New()
	s := New(sess, remote, nil)

	// Old identity's fetch hangs; the shopper switches accounts while
	// it is in flight.
	sess.Set(ident("old@example.com"))
	sess.Set(ident("new@example.com"))
	quiesce(t, s)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].ProductID)

	// Now the stale read lands. It must not clobber the new cart.
	close(oldGate)
	require.Eventually(t, func() bool { return remote.fetchCount() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].ProductID)
}

func TestStore_SignOutClearsLocalNotRemote(t *testing.T) {
	remote := newFakeRemote()
	remote.carts["a@example.com"] = []cartdom.LineItem{
		{ProductID: 1, Title: "Saved", Price: 1, Quantity: 1},
	}

	sess := session.New()
	s := New(sess, remote, nil)
	sess.Set(ident("a@example.com"))
	quiesce(t, s)
	require.Len(t, s.Items(), 1)

	sess.Clear()

	assert.Empty(t, s.Items())
	assert.Empty(t, remote.replaceCalls(), "sign-out never writes to the remote store")
	remote.mu.Lock()
	saved := remote.carts["a@example.com"]
	remote.mu.Unlock()
	assert.Len(t, saved, 1, "persisted copy survives sign-out")
}

func TestStore_MutationsPersistFullReplacement(t *testing.T) {
	remote := newFakeRemote()
	sess := session.New()
	s := New(sess, remote, nil)
	sess.Set(ident("a@example.com"))
	quiesce(t, s)

	require.NoError(t, s.AddItem(testProduct(1), 2))
	require.NoError(t, s.AddItem(testProduct(2), 1))
	quiesce(t, s)

	calls := remote.replaceCalls()
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, "a@example.com", last.email)
	require.Len(t, last.items, 2, "persist writes the whole collection, not a delta")
}

func TestStore_PersistFailureKeepsLocalState(t *testing.T) {
	remote := newFakeRemote()
	remote.replaceErr = errors.New("remote down")

	sess := session.New()
	s := New(sess, remote, nil)
	sess.Set(ident("a@example.com"))
	quiesce(t, s)

	require.NoError(t, s.AddItem(testProduct(1), 1))
	quiesce(t, s)

	require.Len(t, s.Items(), 1, "optimistic state is never rolled back")
	assert.Equal(t, 1, s.Items()[0].ProductID)
}

func TestStore_PersistSingleFlightCoalesces(t *testing.T) {
	remote := newFakeRemote()
	remote.replaceGate = make(chan struct{}, 2)
	remote.replaceStart = make(chan struct{}, 4)

	sess := session.New()
	s := New(sess, remote, nil)
	sess.Set(ident("a@example.com"))
	quiesce(t, s)

	// First mutation starts a persist that we hold open.
	require.NoError(t, s.AddItem(testProduct(1), 1))
	<-remote.replaceStart

	// Two more mutations while the write is in flight; their snapshots
	// coalesce into a single queued job.
	require.NoError(t, s.AddItem(testProduct(2), 1))
	require.NoError(t, s.AddItem(testProduct(3), 1))

	remote.replaceGate <- struct{}{}
	remote.replaceGate <- struct{}{}
	quiesce(t, s)

	calls := remote.replaceCalls()
	require.Len(t, calls, 2, "intermediate snapshot is superseded, not written")
	assert.Len(t, calls[0].items, 1)
	assert.Len(t, calls[1].items, 3, "queued write carries the latest snapshot")
}

func TestStore_NoOpMutationsDoNotPersist(t *testing.T) {
	remote := newFakeRemote()
	sess := session.New()
	s := New(sess, remote, nil)
	sess.Set(ident("a@example.com"))
	quiesce(t, s)

	require.NoError(t, s.AddItem(testProduct(1), 1))
	quiesce(t, s)
	base := len(remote.replaceCalls())

	// absent remove
	s.RemoveItem(99)
	// duplicate add
	require.NoError(t, s.AddItem(testProduct(1), 5))
	// same quantity
	require.NoError(t, s.SetQuantity(1, 1))
	// invalid quantity
	assert.ErrorIs(t, s.SetQuantity(1, 0), cartdom.ErrInvalidQuantity)
	quiesce(t, s)

	assert.Len(t, remote.replaceCalls(), base, "no-op mutations trigger no writes")
}

func TestStore_SignedOutMutationsStayLocal(t *testing.T) {
	remote := newFakeRemote()
	s := New(nil, remote, nil)

	require.NoError(t, s.AddItem(testProduct(1), 1))
	quiesce(t, s)

	assert.Len(t, s.Items(), 1)
	assert.Empty(t, remote.replaceCalls())
}

func TestManager_EnsureAndDrop(t *testing.T) {
	remote := newFakeRemote()
	m := NewManager(remote, nil)

	id := ident("a@example.com")
	s1 := m.Ensure(id)
	require.NotNil(t, s1)
	quiesce(t, s1)

	// same uid returns the same store
	s2 := m.Ensure(id)
	assert.Same(t, s1, s2)

	require.NoError(t, s1.AddItem(testProduct(1), 1))
	quiesce(t, s1)
	require.Len(t, s1.Items(), 1)

	m.Drop(id.UID)
	assert.Empty(t, s1.Items(), "drop clears the in-memory cart")

	// next Ensure builds a fresh store that reloads from the remote
	s3 := m.Ensure(id)
	assert.NotSame(t, s1, s3)
	quiesce(t, s3)
	assert.Len(t, s3.Items(), 1, "persisted cart survives sign-out and reloads")
}
