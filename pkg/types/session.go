package types

// Session is the profile snapshot captured at login time and carried in the
// encrypted session cookie. It is not re-fetched per request; handlers that
// need fresh profile data read the store.
type Session struct {
	UserID string      `json:"user_id"`
	Kind   AccountKind `json:"kind"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
}

func (s Session) IsOrganization() bool {
	return s.Kind == AccountKindOrganization
}
