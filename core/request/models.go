package request

import (
	"context"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/user"
)

// Status of an instructor request. Transitions are one-way:
// pending -> approved or pending -> rejected, never back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type Outcome string

const (
	Approve Outcome = "approve"
	Reject  Outcome = "reject"
)

type InstructorRequest struct {
	ID         int        `json:"id"`
	Status     Status     `json:"status"`
	Note       string     `json:"note,omitempty"`
	FilePath   string     `json:"file_path"`
	UserID     int        `json:"user_id"`
	UserEmail  string     `json:"user_email,omitempty"`
	CreatedAt  core.Time  `json:"created_at"`
	DecisionBy *int       `json:"decision_by,omitempty"`
	DecidedAt  *core.Time `json:"decided_at,omitempty"`
}

func (r InstructorRequest) Decided() bool { return r.Status != StatusPending }

// UserRow is the admin board's local projection of a user account.
type UserRow struct {
	ID     string    `json:"id"`
	Email  string    `json:"email"`
	Role   user.Role `json:"role"`
	Status string    `json:"status"` // active | disabled | pending
}

// Stats aggregates the request list for the board header.
type Stats struct {
	Total    int
	Pending  int
	Approved int
	Rejected int
}

// Notice is a transient toast-style notification.
type Notice struct {
	OK          bool
	Title       string
	Description string
}

// API is the slice of the resource client the request flows consume.
type API interface {
	ListInstructorRequests(ctx context.Context) ([]InstructorRequest, error)
	SubmitInstructorRequest(ctx context.Context, note string, file core.Attachment) (InstructorRequest, error)
	DecideInstructorRequest(ctx context.Context, requestID int, outcome Outcome) error
}
