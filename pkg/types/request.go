package types

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusActive    RequestStatus = "active"
	RequestStatusAssigned  RequestStatus = "assigned"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusArchived  RequestStatus = "archived"
)

type RequestPriority string

const (
	RequestPriorityLow    RequestPriority = "low"
	RequestPriorityMedium RequestPriority = "medium"
	RequestPriorityHigh   RequestPriority = "high"
	RequestPriorityUrgent RequestPriority = "urgent"
)

// HelpRequest is the single authoritative record for a posted request. It
// lives at requests/{id} and carries every field it accumulates as it moves
// through the lifecycle. The legacy per-status collections are derived views.
type HelpRequest struct {
	ID string `json:"-"`

	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Priority    RequestPriority `json:"priority"`
	RequestType string          `json:"request_type"`
	Skills      []string        `json:"skills"`

	Status RequestStatus `json:"status"`

	OrgID   string `json:"org_id"`
	OrgName string `json:"org_name,omitempty"`

	VolunteerID     string `json:"volunteer_id,omitempty"`
	VolunteerName   string `json:"volunteer_name,omitempty"`
	AssignmentNotes string `json:"assignment_notes,omitempty"`
	CompletedByOrg  bool   `json:"completed_by_org,omitempty"`

	// Rev increments on every transition; the conditional write that bumps
	// it is what guarantees a single winner under contention.
	Rev int64 `json:"rev"`

	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// AssignmentView is the lightweight per-volunteer projection of a request,
// materialized on read in place of the old denormalized snapshot maps.
type AssignmentView struct {
	RequestID   string     `json:"request_id"`
	Title       string     `json:"title"`
	OrgID       string     `json:"org_id"`
	OrgName     string     `json:"org_name,omitempty"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
	AssignedAt  *time.Time `json:"assigned_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
