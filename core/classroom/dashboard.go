package classroom

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/Joud158/PolyLab/core"
)

const (
	badJoinCodeMsg  = "Enter a valid join code."
	joinFallbackMsg = "Unable to join. Check the code or try again."
	listFallbackMsg = "Failed to load classrooms"
)

var ErrBadJoinCode = errors.New(badJoinCodeMsg)

// Dashboard holds the "My Classrooms" state: the enrolled list plus the
// join-code form.
type Dashboard struct {
	api API
	log core.Logger

	mu         sync.Mutex
	classrooms []Classroom
	loading    bool
	joining    bool
	joinErr    string
}

func NewDashboard(api API, log core.Logger) *Dashboard {
	return &Dashboard{api: api, log: log}
}

func (d *Dashboard) Classrooms() []Classroom {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classrooms
}

func (d *Dashboard) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loading
}

func (d *Dashboard) JoinError() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.joinErr
}

func (d *Dashboard) Load(ctx context.Context) {
	d.mu.Lock()
	d.loading = true
	d.joinErr = ""
	d.mu.Unlock()

	classes, err := d.api.ListClassrooms(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.joinErr = core.APIErrorMessage(err, listFallbackMsg)
		return
	}
	d.classrooms = classes
}

// Join validates and normalizes the code locally, joins, then reloads the
// classroom list. Invalid codes never reach the network. Join is a no-op
// while a previous join is still in flight.
func (d *Dashboard) Join(ctx context.Context, code string) error {
	d.mu.Lock()
	if d.joining {
		d.mu.Unlock()
		return nil
	}
	d.joinErr = ""

	code = NormalizeJoinCode(code)
	if err := core.Validate.Var(code, "required,joincode"); err != nil {
		d.joinErr = badJoinCodeMsg
		d.mu.Unlock()
		return core.NewValidationError(ErrBadJoinCode, core.FieldError{Field: "code", Error: badJoinCodeMsg})
	}
	d.joining = true
	d.mu.Unlock()

	err := d.api.JoinClassroom(ctx, code)

	d.mu.Lock()
	d.joining = false
	if err != nil {
		d.joinErr = core.APIErrorMessage(err, joinFallbackMsg)
		d.mu.Unlock()
		return err
	}
	d.mu.Unlock()

	d.Load(ctx)
	return nil
}
