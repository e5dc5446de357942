// Package storetest provides an in-memory store.Persister for tests.
package storetest

import (
	"quickaccess/internal/handle"
	"quickaccess/internal/store"
)

// Persister keeps state in memory and counts writes.
type Persister struct {
	State store.State
	Saves int
	Err   error
}

var _ store.Persister = (*Persister)(nil)

func (p *Persister) Load() (store.State, error) {
	return clone(p.State), nil
}

func (p *Persister) Save(st store.State) error {
	if p.Err != nil {
		return p.Err
	}
	p.Saves++
	p.State = clone(st)
	return nil
}

func clone(st store.State) store.State {
	out := store.State{Version: st.Version, Filter: st.Filter}
	out.Handles = make([]*handle.Handle, 0, len(st.Handles))
	for _, h := range st.Handles {
		if h != nil {
			out.Handles = append(out.Handles, h.Clone())
		} else {
			out.Handles = append(out.Handles, nil)
		}
	}
	return out
}
