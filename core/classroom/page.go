package classroom

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/Joud158/PolyLab/core"
)

var ErrNotEnrolled = errors.New("You are not enrolled in this classroom.")

const loadFallbackMsg = "Failed to load classroom data"

// View is a read-only snapshot of the page state.
type View struct {
	Classroom   *Classroom
	Assignments []Assignment
	Materials   []Material
	Submissions map[int][]Submission // keyed by assignment id; index 0 is the current one
	Numbers     map[int]int          // derived display numbering, keyed by assignment id
	Loading     bool
	NotEnrolled bool
	Err         string // page-level error banner; "" when healthy
}

// SubmittedCount counts assignments with at least one submission.
func (v View) SubmittedCount() int {
	var n int
	for _, subs := range v.Submissions {
		if len(subs) > 0 {
			n++
		}
	}
	return n
}

// Page holds the view state of one classroom visit and runs the data
// aggregation workflow against the API. Loads may be re-run in full after a
// mutating action; overlapping loads are not deduplicated, so callers
// disable the triggering control while one is in flight. A closed page
// discards late-arriving results instead of writing into a dead view.
type Page struct {
	api  API
	log  core.Logger
	conf *core.Config

	classroomID int
	drafts      *DraftStore

	mu     sync.Mutex
	closed bool
	view   View
}

func NewPage(classroomID int, api API, log core.Logger, conf *core.Config) *Page {
	p := &Page{
		api:         api,
		log:         log,
		conf:        conf,
		classroomID: classroomID,
	}
	p.drafts = newDraftStore(api, log, p.applySubmissions)
	return p
}

func (p *Page) Drafts() *DraftStore { return p.drafts }

// View returns a snapshot; the maps and slices it carries are owned by the
// page and must be treated as read-only.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view
}

// FileURL resolves an attachment reference from the view into a fetchable link.
func (p *Page) FileURL(ref string) string {
	return core.ResolveFileURL(p.conf.FileBaseURL, ref)
}

// Close marks the page dead; in-flight loads are not cancelled but their
// results are dropped on arrival.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Load runs the aggregation workflow:
//
//  1. the caller's classroom list, to confirm enrollment;
//  2. assignments and materials for the classroom, concurrently;
//  3. submissions per assignment, fanned out — one failing fetch degrades
//     only its own slot to an empty history, never the page.
func (p *Page) Load(ctx context.Context) {
	if !p.begin() {
		return
	}

	classes, err := p.api.ListClassrooms(ctx)
	if err != nil {
		p.fail(core.APIErrorMessage(err, loadFallbackMsg))
		return
	}
	var cls *Classroom
	for i := range classes {
		if classes[i].ID == p.classroomID {
			cls = &classes[i]
			break
		}
	}
	if cls == nil {
		p.log.Debug("classroom not in caller's list", strconv.Itoa(p.classroomID))
		p.failNotEnrolled()
		return
	}

	var (
		wg        sync.WaitGroup
		asgs      []Assignment
		mats      []Material
		asgsErr   error
		matsErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		asgs, asgsErr = p.api.ListAssignments(ctx, p.classroomID)
	}()
	go func() {
		defer wg.Done()
		mats, matsErr = p.api.ListMaterials(ctx, p.classroomID)
	}()
	wg.Wait()
	if asgsErr != nil {
		p.fail(core.APIErrorMessage(asgsErr, loadFallbackMsg))
		return
	}
	if matsErr != nil {
		p.fail(core.APIErrorMessage(matsErr, loadFallbackMsg))
		return
	}

	// fire all, then await all: total latency is bounded by the slowest
	// fetch. No completion-order guarantee between slots.
	subsByAsg := make([][]Submission, len(asgs))
	wg.Add(len(asgs))
	for i := range asgs {
		go func(i int) {
			defer wg.Done()
			subs, err := p.api.ListSubmissions(ctx, asgs[i].ID)
			if err != nil {
				// isolated: this assignment shows no history, others are unaffected
				p.log.Debug("submissions fetch failed", strconv.Itoa(asgs[i].ID), err)
				subs = nil
			}
			subsByAsg[i] = subs
		}(i)
	}
	wg.Wait()

	subs := make(map[int][]Submission, len(asgs))
	for i := range asgs {
		if subsByAsg[i] == nil {
			subsByAsg[i] = []Submission{}
		}
		subs[asgs[i].ID] = subsByAsg[i]
	}

	p.apply(func(v *View) {
		v.Classroom = cls
		v.Assignments = asgs
		v.Materials = mats
		v.Submissions = subs
		v.Numbers = AssignmentNumbers(asgs)
		v.Loading = false
	})
}

// begin flips the page into its loading state; returns false on a closed page.
func (p *Page) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.view.Loading = true
	p.view.Err = ""
	p.view.NotEnrolled = false
	return true
}

func (p *Page) apply(mut func(*View)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	mut(&p.view)
}

func (p *Page) fail(msg string) {
	p.apply(func(v *View) {
		v.Loading = false
		v.Err = msg
	})
}

func (p *Page) failNotEnrolled() {
	p.apply(func(v *View) {
		v.Loading = false
		v.NotEnrolled = true
		v.Err = ErrNotEnrolled.Error()
	})
}

func (p *Page) applySubmissions(assignmentID int, subs []Submission) {
	p.apply(func(v *View) {
		if v.Submissions == nil {
			v.Submissions = make(map[int][]Submission)
		}
		v.Submissions[assignmentID] = subs
	})
}
