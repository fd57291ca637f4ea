package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionStore(ttl time.Duration) (*inventory.SessionStore, *int) {
	created := 0
	backend := newFakeBackend()
	store := inventory.NewSessionStore(ttl, func(storeID string) *inventory.ViewModel {
		created++
		return inventory.NewViewModel(backend, inventory.ViewModelConfig{StoreID: storeID}, nil)
	})
	return store, &created
}

func TestSessionStore_UnViewModelPorUsuarioYTienda(t *testing.T) {
	store, created := newTestSessionStore(time.Minute)

	a, isNew := store.Get("u1", "s1")
	require.True(t, isNew)
	again, isNew := store.Get("u1", "s1")
	assert.False(t, isNew)
	assert.Same(t, a, again)

	other, isNew := store.Get("u1", "s2")
	assert.True(t, isNew)
	assert.NotSame(t, a, other)
	assert.Equal(t, "s2", other.StoreID())

	_, isNew = store.Get("u2", "s1")
	assert.True(t, isNew, "cada usuario tiene su propia sesión")
	assert.Equal(t, 3, *created)
	assert.Equal(t, 3, store.Len())
}

func TestSessionStore_PeekNoCreaSesion(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute)

	_, ok := store.Peek("u1", "s1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())

	vm, _ := store.Get("u1", "s1")
	got, ok := store.Peek("u1", "s1")
	require.True(t, ok)
	assert.Same(t, vm, got)
}

func TestSessionStore_EvictQuitaSesionesInactivas(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute)
	store.Get("u1", "s1")
	store.Get("u2", "s1")

	assert.Zero(t, store.Evict(time.Now()), "todavía dentro del TTL")
	assert.Equal(t, 2, store.Evict(time.Now().Add(2*time.Minute)))
	assert.Zero(t, store.Len())
}

func TestSessionStore_SinTTLNoExpira(t *testing.T) {
	store, _ := newTestSessionStore(0)
	store.Get("u1", "s1")

	assert.Zero(t, store.Evict(time.Now().Add(24*time.Hour)))
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_Drop(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute)
	store.Get("u1", "s1")

	store.Drop("u1", "s1")

	assert.Zero(t, store.Len())
}

func TestSessionStore_JanitorTerminaConElContexto(t *testing.T) {
	store, _ := newTestSessionStore(time.Nanosecond)
	store.Get("u1", "s1")

	ctx, cancel := context.WithCancel(context.Background())
	evicted := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		store.RunJanitor(ctx, time.Millisecond, func(n int) {
			select {
			case evicted <- n:
			default:
			}
		})
		close(done)
	}()

	select {
	case n := <-evicted:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("el janitor no desalojó la sesión")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("el janitor no terminó al cancelar el contexto")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga inicial
// ──────────────────────────────────────────────────────────────────────────────

func TestSessionStore_AcquireEsperaLaCargaInicial(t *testing.T) {
	store, created := newTestSessionStore(time.Minute)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	first := make(chan *inventory.ViewModel, 1)
	go func() {
		vm, err := store.Acquire(ctx, "u1", "s1", func(context.Context, *inventory.ViewModel) error {
			close(started)
			<-release
			return nil
		})
		assert.NoError(t, err)
		first <- vm
	}()
	<-started

	_, ok := store.Peek("u1", "s1")
	assert.False(t, ok, "una sesión a medio cargar no es visible")

	second := make(chan *inventory.ViewModel, 1)
	go func() {
		vm, err := store.Acquire(ctx, "u1", "s1", func(context.Context, *inventory.ViewModel) error {
			t.Error("la carga inicial se ejecuta una sola vez")
			return nil
		})
		assert.NoError(t, err)
		second <- vm
	}()

	select {
	case <-second:
		t.Fatal("Acquire devolvió la sesión antes de terminar la carga")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	a, b := <-first, <-second
	assert.Same(t, a, b)
	assert.Equal(t, 1, *created)
	_, ok = store.Peek("u1", "s1")
	assert.True(t, ok)
}

func TestSessionStore_AcquireFallidoPropagaElErrorYDescarta(t *testing.T) {
	store, created := newTestSessionStore(time.Minute)
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("backend caído")

	go func() {
		_, _ = store.Acquire(ctx, "u1", "s1", func(context.Context, *inventory.ViewModel) error {
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	waiter := make(chan error, 1)
	go func() {
		_, err := store.Acquire(ctx, "u1", "s1", nil)
		waiter <- err
	}()
	close(release)

	assert.ErrorIs(t, <-waiter, boom)
	assert.Zero(t, store.Len())

	vm, err := store.Acquire(ctx, "u1", "s1", func(context.Context, *inventory.ViewModel) error { return nil })
	require.NoError(t, err)
	assert.NotNil(t, vm)
	assert.Equal(t, 2, *created, "el reintento crea una sesión nueva")
}

func TestSessionStore_AcquireRespetaElContextoDelQueEspera(t *testing.T) {
	store, _ := newTestSessionStore(time.Minute)
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _ = store.Acquire(context.Background(), "u1", "s1", func(context.Context, *inventory.ViewModel) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := store.Acquire(ctx, "u1", "s1", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
