package types

import "time"

type AccountKind string

const (
	AccountKindIndividual   AccountKind = "individual"
	AccountKindOrganization AccountKind = "organization"
)

// VolunteerProfile lives at users/{uid}.
type VolunteerProfile struct {
	ID string `json:"-"`

	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Kind     AccountKind `json:"type"`
	Verified bool        `json:"verified"`

	Skills   []string                 `json:"skills,omitempty"`
	Schedule map[string]ScheduleEvent `json:"schedule,omitempty"`

	// Organizations the volunteer has been added to, keyed by org id.
	Organizations map[string]OrgMembership `json:"organizations,omitempty"`

	AssignmentsCount int `json:"assignments_count"`
	CompletionsCount int `json:"completions_count"`

	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	LastAssignment *time.Time `json:"last_assignment,omitempty"`
	LastCompletion *time.Time `json:"last_completion,omitempty"`
}

type ScheduleEvent struct {
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}

type OrgMembership struct {
	OrgName  string    `json:"org_name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}
