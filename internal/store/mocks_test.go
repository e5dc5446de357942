package store

import "quickaccess/internal/handle"

// memPersister keeps state in memory and counts writes.
type memPersister struct {
	State State
	Saves int
	Err   error
}

func (p *memPersister) Load() (State, error) {
	return cloneState(p.State), nil
}

func (p *memPersister) Save(st State) error {
	if p.Err != nil {
		return p.Err
	}
	p.Saves++
	p.State = cloneState(st)
	return nil
}

func cloneState(st State) State {
	out := State{Version: st.Version, Filter: st.Filter}
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
