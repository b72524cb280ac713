// Package sesion models the authenticated session as an explicitly scoped
// context object with a defined lifecycle: created at sign-in, torn down at
// sign-out. Consumers receive it by injection or subscription instead of
// reading ambient globals.
package sesion

import (
	"sync"

	"github.com/iatechsabana/cotecmar/internal/model"
)

// Contexto is the state of one authenticated session.
type Contexto struct {
	UserID  string
	Email   string
	Nombre  string
	Rol     model.Rol
	Offline bool
}

func (c *Contexto) EsLider() bool { return c != nil && c.Rol == model.RolLider }

// Registro publishes session changes. Every login and logout transition is
// delivered to each subscriber; new subscribers immediately receive the
// current session or its absence, mirroring a provider-side session-change
// callback firing at startup.
type Registro struct {
	mu          sync.Mutex
	actual      *Contexto
	subscribers []func(*Contexto)
}

func NewRegistro() *Registro { return &Registro{} }

// Actual returns the live session context, or nil when signed out.
func (r *Registro) Actual() *Contexto {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actual
}

// Publicar installs ses as the current session (nil = signed out) and
// notifies subscribers.
func (r *Registro) Publicar(ses *Contexto) {
	r.mu.Lock()
	r.actual = ses
	subs := make([]func(*Contexto), len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(ses)
	}
}

// Suscribir registers cb and fires it once with the current state.
func (r *Registro) Suscribir(cb func(*Contexto)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, cb)
	actual := r.actual
	r.mu.Unlock()

	cb(actual)
}
