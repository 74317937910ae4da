package request

import (
	"context"

	"github.com/Joud158/PolyLab/core"
)

// Service is the student-facing side: filing a request for the instructor
// role with a proof document.
type Service struct {
	api  API
	conf *core.Config
}

func NewService(api API, conf *core.Config) *Service {
	return &Service{api: api, conf: conf}
}

// Submit files an instructor request. The proof file is checked locally
// first (present, non-empty, within the upload cap) so obviously bad uploads
// never leave the client.
func (svc *Service) Submit(ctx context.Context, note string, file *core.Attachment) (InstructorRequest, error) {
	if err := core.CheckUpload(file, svc.conf.MaxUploadSize); err != nil {
		return InstructorRequest{}, err
	}
	return svc.api.SubmitInstructorRequest(ctx, core.CleanString(note), *file)
}
