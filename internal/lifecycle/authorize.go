package lifecycle

import (
	"visionaid/pkg/types"
)

type action int

const (
	actionCreate action = iota
	actionAccept
	actionAssign
	actionComplete
	actionCompleteOrg
	actionArchive
)

// authorize is the single capability check for every mutating operation.
// Rules:
//   - any action requires a logged-in session
//   - create/assign/complete-by-org/archive require an organization acting
//     on a request it owns
//   - accept requires an individual volunteer
//   - complete requires the assigned volunteer
//
// Callers pass the freshly read record when one exists, so ownership checks
// run against current state, not a stale snapshot.
func (m *Manager) authorize(actor types.Session, a action, request *types.HelpRequest) error {
	if actor.UserID == "" {
		return types.ErrUnauthenticated
	}

	switch a {
	case actionCreate:
		if !actor.IsOrganization() {
			return types.ErrForbidden
		}

	case actionAccept:
		if actor.IsOrganization() {
			return types.ErrForbidden
		}

	case actionAssign, actionCompleteOrg, actionArchive:
		if !actor.IsOrganization() {
			return types.ErrForbidden
		}
		if request != nil && request.OrgID != actor.UserID {
			return types.ErrForbidden
		}

	case actionComplete:
		if actor.IsOrganization() {
			return types.ErrForbidden
		}
		if request != nil && request.VolunteerID != actor.UserID {
			return types.ErrForbidden
		}
	}

	return nil
}
