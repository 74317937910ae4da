package classroom

import (
	"context"
	"sort"
	"strings"

	"github.com/Joud158/PolyLab/core"
)

type Classroom struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt core.Time `json:"created_at"`
}

type Assignment struct {
	ID            int        `json:"id"`
	ClassroomID   int        `json:"classroom_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDate       *core.Time `json:"due_date,omitempty"`
	AttachmentURL string     `json:"attachment_url,omitempty"`
	CreatedAt     core.Time  `json:"created_at"`
}

type Material struct {
	ID          int       `json:"id"`
	ClassroomID int       `json:"classroom_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	CreatedAt   core.Time `json:"created_at"`
}

type Submission struct {
	ID           int       `json:"id"`
	AssignmentID int       `json:"assignment_id"`
	Content      string    `json:"content,omitempty"`
	FileURL      string    `json:"file_url,omitempty"`
	SubmittedAt  core.Time `json:"submitted_at"`
	Grade        *float64  `json:"grade,omitempty"`
}

// NewClassroom creates a classroom (instructor side).
type NewClassroom struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewClassroom) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	return core.Validate.Struct(nc)
}

// NewAssignment posts an assignment to a classroom (instructor side).
type NewAssignment struct {
	ClassroomID int        `json:"classroom_id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	DueDate     *core.Time `json:"due_date,omitempty"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

// API is the slice of the resource client the classroom pages consume.
type API interface {
	ListClassrooms(ctx context.Context) ([]Classroom, error)
	CreateClassroom(ctx context.Context, nc NewClassroom) (Classroom, error)
	JoinClassroom(ctx context.Context, code string) error
	ListAssignments(ctx context.Context, classroomID int) ([]Assignment, error)
	CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error)
	ListMaterials(ctx context.Context, classroomID int) ([]Material, error)
	ListSubmissions(ctx context.Context, assignmentID int) ([]Submission, error)
	SubmitAssignment(ctx context.Context, assignmentID int, content string) (Submission, error)
	UploadSubmissionFile(ctx context.Context, assignmentID int, file core.Attachment, caption string) (Submission, error)
	GetSubmission(ctx context.Context, submissionID int) (Submission, error)
	GradeSubmission(ctx context.Context, submissionID int, grade float64) error
}

// NormalizeJoinCode prepares user input for validation and the wire:
// codes are case-insensitive, the API stores them uppercased.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}

// AssignmentNumbers derives the stable display numbering ("Asg 1", "Asg 2",
// ...): 1-based by ascending creation time. The numbering is never stored.
func AssignmentNumbers(asgs []Assignment) map[int]int {
	sorted := make([]Assignment, len(asgs))
	copy(sorted, asgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt.Time)
	})

	numbers := make(map[int]int, len(sorted))
	for i, a := range sorted {
		numbers[a.ID] = i + 1
	}
	return numbers
}
