package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"docqa/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeStore records deletions and can be told to fail per id.
type fakeStore struct {
	mu       sync.Mutex
	deleted  []uuid.UUID
	deleteFn func(id uuid.UUID) error
}

func (f *fakeStore) CreateCollection(ctx context.Context) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeStore) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFn != nil {
		if err := f.deleteFn(id); err != nil {
			return err
		}
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) AddChunks(ctx context.Context, id uuid.UUID, texts []string, embeddings [][]float32, sources []string) error {
	return nil
}

func (f *fakeStore) SearchCollection(ctx context.Context, id uuid.UUID, embedding []float32, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeStore) deletedIDs() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.deleted...)
}

func newTestSweeper(st store.VectorStore, r *Registry, ttl time.Duration) *Sweeper {
	return NewSweeper(r, st, time.Minute, ttl, zap.NewNop())
}

func registerAt(r *Registry, id uuid.UUID, at time.Time) {
	r.now = func() time.Time { return at }
	r.Register(id)
	r.now = time.Now
}

func TestSweepRemovesOnlyExpiredSessions(t *testing.T) {
	r := NewRegistry()
	st := &fakeStore{}
	sw := newTestSweeper(st, r, 60*time.Minute)

	old := uuid.New()
	fresh := uuid.New()
	registerAt(r, old, time.Now().Add(-2*time.Hour))
	registerAt(r, fresh, time.Now().Add(-30*time.Minute))

	sw.sweep(context.Background())

	assert.Equal(t, []uuid.UUID{old}, st.deletedIDs())
	assert.False(t, r.Contains(old))
	assert.True(t, r.Contains(fresh))
}

func TestSweepKeepsEntryWhenDeleteFails(t *testing.T) {
	r := NewRegistry()
	st := &fakeStore{deleteFn: func(uuid.UUID) error {
		return errors.New("storage unavailable")
	}}
	sw := newTestSweeper(st, r, 60*time.Minute)

	id := uuid.New()
	registerAt(r, id, time.Now().Add(-2*time.Hour))

	sw.sweep(context.Background())
	assert.True(t, r.Contains(id), "a failed delete must stay registered for the next tick")

	// Store recovers, next tick succeeds.
	st.mu.Lock()
	st.deleteFn = nil
	st.mu.Unlock()
	sw.sweep(context.Background())
	assert.False(t, r.Contains(id))
}

func TestSweepToleratesAlreadyAbsentCollection(t *testing.T) {
	r := NewRegistry()
	st := &fakeStore{deleteFn: func(uuid.UUID) error {
		return store.ErrCollectionNotFound
	}}
	sw := newTestSweeper(st, r, 60*time.Minute)

	id := uuid.New()
	registerAt(r, id, time.Now().Add(-2*time.Hour))

	sw.sweep(context.Background())
	assert.False(t, r.Contains(id), "an already absent collection still evicts the entry")
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	r := NewRegistry()
	st := &fakeStore{}
	sw := NewSweeper(r, st, 5*time.Millisecond, time.Nanosecond, zap.NewNop())

	id := uuid.New()
	registerAt(r, id, time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !r.Contains(id) }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}
