// internal/workflow/workflow.go
package workflow

import (
	"github.com/insurance-solutions/vims-backend/internal/apperrors"
	"github.com/insurance-solutions/vims-backend/internal/models"
)

// Transition is one guarded edge in an entity's state graph.
type Transition struct {
	From    string
	Action  string
	To      string
	Allowed []models.UserRole
}

// Definition is the canonical, versioned state machine for one entity type.
// The historical configuration existed in several conflicting revisions;
// this is the single reconciled source of truth.
type Definition struct {
	Name        string
	Version     int
	Terminal    map[string]bool
	Transitions []Transition
}

// Find returns the transition for (from, action), or nil.
func (d *Definition) Find(from, action string) *Transition {
	for i := range d.Transitions {
		t := &d.Transitions[i]
		if t.From == from && t.Action == action {
			return t
		}
	}
	return nil
}

// IsTerminal reports whether a state locks the record.
func (d *Definition) IsTerminal(state string) bool {
	return d.Terminal[state]
}

// Apply validates that role may perform action from the current state and
// returns the target state. It never mutates anything; persisting the new
// state is the caller's job.
func (d *Definition) Apply(current, action string, role models.UserRole) (string, error) {
	if d.IsTerminal(current) {
		return "", apperrors.Validation("status", "%s is locked in terminal state %q", d.Name, current)
	}
	t := d.Find(current, action)
	if t == nil {
		return "", apperrors.Validation("status", "action %q is not allowed from state %q on %s", action, current, d.Name)
	}
	if !roleAllowed(t.Allowed, role) {
		return "", apperrors.Validation("role", "role %q may not perform %q on %s", role, action, d.Name)
	}
	return t.To, nil
}

func roleAllowed(allowed []models.UserRole, role models.UserRole) bool {
	if role == models.RoleAdmin {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
