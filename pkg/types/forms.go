package types

// JSON payloads for the action endpoints. Validation tags are enforced at
// the route boundary before the lifecycle manager is invoked.

type CreateRequestInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	RequestType string   `json:"request_type"`
	Skills      []string `json:"skills"`
}

type AssignRequestInput struct {
	RequestID   string `json:"request_id" validate:"required"`
	VolunteerID string `json:"volunteer_id" validate:"required"`
	Notes       string `json:"notes"`
}

type AddSkillInput struct {
	Skill string `json:"skill" validate:"required"`
}

type AddEventInput struct {
	Title string `json:"title" validate:"required"`
	Date  string `json:"date" validate:"required"`
	Time  string `json:"time" validate:"required"`
}

type AddDomainInput struct {
	Domain string `json:"domain" validate:"required"`
}

type AddVolunteerInput struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"`
	Notes string `json:"notes"`
}
