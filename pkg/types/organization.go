package types

import "time"

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

// OrganizationProfile lives at organizations/{uid}.
type OrganizationProfile struct {
	ID string `json:"-"`

	OrgName   string      `json:"org_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone,omitempty"`
	Website   string      `json:"website,omitempty"`
	RegNumber string      `json:"reg_number,omitempty"`
	Kind      AccountKind `json:"type"`

	// URL of the uploaded registration document in the blob store.
	RegDocumentURL string `json:"reg_document_url,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`

	Domains    []string               `json:"domains,omitempty"`
	Volunteers map[string]RosterEntry `json:"volunteers,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RosterEntry is one volunteer on an organization's roster, keyed by the
// volunteer's user id.
type RosterEntry struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Notes   string    `json:"notes,omitempty"`
	Status  string    `json:"status"`
	AddedAt time.Time `json:"added_at"`
}
