package classroom

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/Joud158/PolyLab/core"
)

const (
	emptyDraftMsg     = "Add a short answer or attach a document before submitting."
	submitFallbackMsg = "Failed to submit. Try again."
	submittedMsg      = "Submitted!"
)

// Draft is the editable buffer for one assignment's submission form. At most
// one draft exists per assignment id; drafts live only for the page visit.
type Draft struct {
	Content    string
	File       *core.Attachment
	Submitting bool
	Success    string
	Error      string
}

// DraftStore keys drafts by assignment id. Keys are independent: mutations
// on different assignments never interact, same-key mutations are
// last-write-wins.
type DraftStore struct {
	api    API
	log    core.Logger
	onSubs func(assignmentID int, subs []Submission)

	mu     sync.Mutex
	drafts map[int]*Draft
}

func newDraftStore(api API, log core.Logger, onSubs func(int, []Submission)) *DraftStore {
	return &DraftStore{
		api:    api,
		log:    log,
		onSubs: onSubs,
		drafts: make(map[int]*Draft),
	}
}

// Draft returns a copy of the assignment's draft (zero Draft when untouched).
func (ds *DraftStore) Draft(assignmentID int) Draft {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if d, ok := ds.drafts[assignmentID]; ok {
		return *d
	}
	return Draft{}
}

func (ds *DraftStore) SetContent(assignmentID int, content string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.edit(assignmentID).Content = content
}

func (ds *DraftStore) AttachFile(assignmentID int, file *core.Attachment) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.edit(assignmentID).File = file
}

// edit returns the live draft for in-place mutation; callers hold ds.mu.
func (ds *DraftStore) edit(assignmentID int) *Draft {
	d, ok := ds.drafts[assignmentID]
	if !ok {
		d = &Draft{}
		ds.drafts[assignmentID] = d
	}
	return d
}

// Submit runs the draft lifecycle for one assignment:
//
//	Editing -> Submitting -> Succeeded | Failed
//
// An empty draft (whitespace-only content, no file) is rejected locally with
// no network call. Exactly one endpoint is invoked per submit: the upload
// endpoint when a file is attached (trimmed content rides along as the
// caption), the plain endpoint otherwise. Success refetches that
// assignment's submissions and resets the draft; failure surfaces inline and
// preserves the user's input verbatim — the trimmed value is what went on
// the wire, the untrimmed one is what stays in the buffer.
func (ds *DraftStore) Submit(ctx context.Context, assignmentID int) {
	ds.mu.Lock()
	d := ds.edit(assignmentID)
	snapshot := *d
	trimmed := strings.TrimSpace(snapshot.Content)
	if trimmed == "" && snapshot.File == nil {
		d.Error = emptyDraftMsg
		ds.mu.Unlock()
		return
	}
	d.Submitting = true
	d.Error = ""
	d.Success = ""
	ds.mu.Unlock()

	err := ds.send(ctx, assignmentID, snapshot.File, trimmed)
	if err == nil {
		var subs []Submission
		subs, err = ds.api.ListSubmissions(ctx, assignmentID)
		if err == nil && ds.onSubs != nil {
			ds.onSubs(assignmentID, subs)
		}
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	d = ds.edit(assignmentID)
	if err != nil {
		ds.log.Debug("submit failed", strconv.Itoa(assignmentID), err)
		d.Content = snapshot.Content
		d.File = snapshot.File
		d.Submitting = false
		d.Error = core.APIErrorMessage(err, submitFallbackMsg)
		return
	}
	*d = Draft{Success: submittedMsg}
}

func (ds *DraftStore) send(ctx context.Context, assignmentID int, file *core.Attachment, content string) error {
	if file != nil {
		_, err := ds.api.UploadSubmissionFile(ctx, assignmentID, *file, content)
		return err
	}
	_, err := ds.api.SubmitAssignment(ctx, assignmentID, content)
	return err
}
