package onboarding

import "github.com/spigell/edubridge/internal/session"

type State int

const (
	Anonymous State = iota
	// Registering covers any in-flight account call (register or login).
	Registering
	AwaitingRoleSelection
	RoleConfirmed
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Registering:
		return "registering"
	case AwaitingRoleSelection:
		return "awaiting_role_selection"
	case RoleConfirmed:
		return "role_confirmed"
	default:
		return "unknown"
	}
}

// stateFromStore derives where a restarted process resumes.
func stateFromStore(store *session.Store) State {
	switch {
	case !store.Authenticated():
		return Anonymous
	case store.Role() != "":
		return RoleConfirmed
	default:
		return AwaitingRoleSelection
	}
}
