package request

import (
	"context"
	"strconv"
	"sync"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/user"
)

const requestsFallbackMsg = "Failed to load requests"

// Board is the admin dashboard state: the instructor-request queue and the
// user-row projection it mutates on approval. Status updates are optimistic:
// they apply locally on network success and reconcile with server truth on
// the next full Load.
type Board struct {
	api API
	log core.Logger

	mu       sync.Mutex
	requests []InstructorRequest
	users    []UserRow
	loading  bool
	err      string
	notice   *Notice
}

func NewBoard(api API, log core.Logger, users []UserRow) *Board {
	return &Board{api: api, log: log, users: users}
}

func (b *Board) Requests() []InstructorRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]InstructorRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *Board) Users() []UserRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]UserRow, len(b.users))
	copy(out, b.users)
	return out
}

func (b *Board) Err() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Notice returns the pending notification, clearing it.
func (b *Board) Notice() *Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.notice
	b.notice = nil
	return n
}

func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := Stats{Total: len(b.requests)}
	for _, r := range b.requests {
		switch r.Status {
		case StatusPending:
			stats.Pending++
		case StatusApproved:
			stats.Approved++
		case StatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

func (b *Board) Load(ctx context.Context) {
	b.mu.Lock()
	b.loading = true
	b.err = ""
	b.mu.Unlock()

	reqs, err := b.api.ListInstructorRequests(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.err = core.APIErrorMessage(err, requestsFallbackMsg)
		return
	}
	b.requests = reqs
}

// Decide approves or rejects a pending request. Requests already decided are
// a local no-op with no network call (the UI hides the action buttons once
// status leaves pending, this guard backs that up). On success the status
// transitions locally; approval also promotes the matching user row, by
// email, to an active instructor. On failure nothing changes and a notice
// reports the error.
func (b *Board) Decide(ctx context.Context, requestID int, outcome Outcome) error {
	b.mu.Lock()
	idx := -1
	for i := range b.requests {
		if b.requests[i].ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 || b.requests[idx].Decided() {
		b.mu.Unlock()
		return nil
	}
	email := b.requests[idx].UserEmail
	b.mu.Unlock()

	if err := b.api.DecideInstructorRequest(ctx, requestID, outcome); err != nil {
		b.log.Error("decide request failed", strconv.Itoa(requestID), err)
		b.push(Notice{Title: "Error", Description: core.APIErrorMessage(err, "Failed to "+string(outcome))})
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// a Load may have replaced the queue while the decide call was in
	// flight; re-find by id and leave reconciliation to server truth when
	// the request is gone or already settled
	idx = -1
	for i := range b.requests {
		if b.requests[i].ID == requestID {
			idx = i
			break
		}
	}
	switch outcome {
	case Approve:
		if idx >= 0 && !b.requests[idx].Decided() {
			b.requests[idx].Status = StatusApproved
		}
		for i := range b.users {
			if email != "" && b.users[i].Email == email {
				b.users[i].Role = user.RoleInstructor
				b.users[i].Status = "active"
			}
		}
		b.notice = &Notice{OK: true, Title: "Request approved", Description: "The user can now access instructor features."}
	case Reject:
		if idx >= 0 && !b.requests[idx].Decided() {
			b.requests[idx].Status = StatusRejected
		}
		b.notice = &Notice{Title: "Request rejected", Description: "The user remains a student."}
	}
	return nil
}

func (b *Board) push(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notice = &n
}
