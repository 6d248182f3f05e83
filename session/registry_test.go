package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterAndRemove(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()

	assert.False(t, r.Contains(id))
	r.Register(id)
	assert.True(t, r.Contains(id))
	assert.Equal(t, 1, r.Len())

	r.Remove(id)
	assert.False(t, r.Contains(id))
	assert.Equal(t, 0, r.Len())
}

func TestRegistryRemoveUnknownIsHarmless(t *testing.T) {
	r := NewRegistry()
	r.Remove(uuid.New())
	assert.Equal(t, 0, r.Len())
}

func TestRegistryExpiredBoundary(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	ttl := 60 * time.Minute

	overdue := uuid.New()
	exact := uuid.New()
	fresh := uuid.New()

	r.now = func() time.Time { return now.Add(-61 * time.Minute) }
	r.Register(overdue)
	r.now = func() time.Time { return now.Add(-60 * time.Minute) }
	r.Register(exact)
	r.now = func() time.Time { return now.Add(-59 * time.Minute) }
	r.Register(fresh)

	expired := r.Expired(ttl, now)
	assert.Equal(t, []uuid.UUID{overdue}, expired, "only the session older than the window expires")
}

func TestRegistryExpiredEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Expired(time.Hour, time.Now()))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			id := uuid.New()
			r.Register(id)
			r.Remove(id)
		}
	}()
	for i := 0; i < 500; i++ {
		r.Expired(time.Hour, time.Now())
	}
	<-done
}
