package event

import (
	"fmt"

	"go-hep.org/x/hep/fmom"
)

// Role identifies one particle of the exclusive final state, by slot or by
// PDG code.
type Role struct {
	Name string
	Slot int   // slot in the event, used by slot selection
	PID  int32 // PDG code, 0 matches any species in slot selection
}

// Selector picks the particles playing the requested roles in an event.
//
// With ByPID unset, role i is the particle in Roles[i].Slot; if the role
// carries a PDG code the particle must match it. With ByPID set, role i is
// the first particle with the role's PDG code not already taken by a
// previous role. FinalState restricts the PDG code match to final state
// particles (Status 1).
//
// A Selector is not safe for concurrent use.
type Selector struct {
	Roles      []Role
	ByPID      bool
	FinalState bool

	used []bool
}

// NewSelector returns a selector for the given roles.
func NewSelector(byPID bool, roles ...Role) (*Selector, error) {
	for _, r := range roles {
		switch {
		case byPID && r.PID == 0:
			return nil, fmt.Errorf("event: role %q needs a PDG code for PDG-based selection", r.Name)
		case !byPID && r.Slot < 0:
			return nil, fmt.Errorf("event: role %q has invalid slot %d", r.Name, r.Slot)
		}
	}
	return &Selector{Roles: roles, ByPID: byPID}, nil
}

// Select fills out with the four-momenta of the roles, in order, and
// reports whether every role was found. out must have len(sel.Roles)
// elements.
func (sel *Selector) Select(evt *Event, out []fmom.PxPyPzE) bool {
	if sel.ByPID {
		return sel.selectPID(evt, out)
	}

	for i, r := range sel.Roles {
		if r.Slot >= len(evt.Particles) {
			return false
		}
		p := evt.Particles[r.Slot]
		if r.PID != 0 && p.PID != r.PID {
			return false
		}
		out[i] = p.P4
	}
	return true
}

func (sel *Selector) selectPID(evt *Event, out []fmom.PxPyPzE) bool {
	if cap(sel.used) < len(evt.Particles) {
		sel.used = make([]bool, len(evt.Particles))
	}
	sel.used = sel.used[:len(evt.Particles)]
	for i := range sel.used {
		sel.used[i] = false
	}

	for i, r := range sel.Roles {
		found := false
		for j, p := range evt.Particles {
			if sel.used[j] || p.PID != r.PID || (sel.FinalState && p.Status != 1) {
				continue
			}
			sel.used[j] = true
			out[i] = p.P4
			found = true
			break
		}
		if !found {
			return false
		}
	}
	return true
}
