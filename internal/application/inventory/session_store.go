package inventory

import (
	"context"
	"errors"
	"sync"
	"time"
)

// SessionStore mantiene un ViewModel por (usuario, tienda) y descarta los inactivos.
type SessionStore struct {
	ttl     time.Duration
	factory func(storeID string) *ViewModel

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	vm       *ViewModel
	lastUsed time.Time
	// ready se cierra al terminar la carga inicial; err queda fijo antes del cierre.
	ready chan struct{}
	err   error
}

// errInitAborted resultado de una carga inicial que no llegó a terminar (panic).
var errInitAborted = errors.New("inventario: la carga inicial de la sesión no terminó")

// NewSessionStore construye el store. factory crea el ViewModel de una tienda.
func NewSessionStore(ttl time.Duration, factory func(storeID string) *ViewModel) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		factory:  factory,
		sessions: make(map[string]*session),
	}
}

func sessionKey(userID, storeID string) string { return userID + "|" + storeID }

// Acquire devuelve el ViewModel del usuario en la tienda. Si la sesión no existe la crea y
// ejecuta load antes de que cualquier otra petición pueda usarla: las llamadas concurrentes
// esperan a que termine (o a que su ctx se cancele) y reciben el mismo error. Si load falla
// la sesión se descarta y la próxima llamada vuelve a intentarlo.
func (s *SessionStore) Acquire(ctx context.Context, userID, storeID string, load func(context.Context, *ViewModel) error) (*ViewModel, error) {
	key := sessionKey(userID, storeID)
	sess, created := s.lookup(key, storeID)
	if created {
		err := errInitAborted
		defer func() { s.finish(key, sess, err) }()
		if load == nil {
			err = nil
		} else {
			err = load(ctx, sess.vm)
		}
		if err != nil {
			return nil, err
		}
		return sess.vm, nil
	}

	select {
	case <-sess.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if sess.err != nil {
		return nil, sess.err
	}
	return sess.vm, nil
}

// Get devuelve el ViewModel del usuario en la tienda sin carga inicial; created indica si es nuevo.
func (s *SessionStore) Get(userID, storeID string) (vm *ViewModel, created bool) {
	key := sessionKey(userID, storeID)
	sess, created := s.lookup(key, storeID)
	if created {
		s.finish(key, sess, nil)
	}
	return sess.vm, created
}

// lookup renueva la sesión existente o publica una nueva todavía no lista.
func (s *SessionStore) lookup(key, storeID string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[key]; ok {
		sess.lastUsed = time.Now()
		return sess, false
	}
	sess := &session{vm: s.factory(storeID), lastUsed: time.Now(), ready: make(chan struct{})}
	s.sessions[key] = sess
	return sess, true
}

// finish marca la sesión como lista. Con error la quita del mapa antes de liberar a los
// que esperan, así un reintento crea una sesión nueva.
func (s *SessionStore) finish(key string, sess *session, err error) {
	if err != nil {
		s.mu.Lock()
		if s.sessions[key] == sess {
			delete(s.sessions, key)
		}
		s.mu.Unlock()
	}
	sess.err = err
	close(sess.ready)
}

// Peek devuelve el ViewModel existente y ya cargado sin crearlo ni renovar su uso.
func (s *SessionStore) Peek(userID, storeID string) (*ViewModel, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(userID, storeID)]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-sess.ready:
		if sess.err != nil {
			return nil, false
		}
		return sess.vm, true
	default:
		return nil, false
	}
}

// Drop elimina la sesión (por ejemplo si la carga inicial falló).
func (s *SessionStore) Drop(userID, storeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, storeID))
}

// Len número de sesiones activas.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict elimina las sesiones sin uso desde antes de now-ttl y devuelve cuántas quitó.
// Las ediciones pendientes de esas sesiones se pierden, igual que al cerrar la página.
func (s *SessionStore) Evict(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, sess := range s.sessions {
		if now.Sub(sess.lastUsed) > s.ttl {
			delete(s.sessions, key)
			n++
		}
	}
	return n
}

// RunJanitor ejecuta Evict periódicamente hasta que ctx se cancele. every <= 0 no hace nada.
func (s *SessionStore) RunJanitor(ctx context.Context, every time.Duration, onEvict func(n int)) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Evict(now); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}
