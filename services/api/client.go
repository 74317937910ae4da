// Package apisvc implements the resource-client contracts over the PolyLab
// HTTP API: JSON bodies, cookie-session auth, CSRF tokens on mutations and
// multipart uploads for files.
package apisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/classroom"
	"github.com/Joud158/PolyLab/core/request"
	"github.com/Joud158/PolyLab/core/session"
	"github.com/Joud158/PolyLab/core/user"
)

type Client struct {
	baseURL string
	http    *http.Client
	log     core.Logger

	mu   sync.Mutex
	csrf string
}

// interface compliance checks
var (
	_ session.API   = (*Client)(nil)
	_ classroom.API = (*Client)(nil)
	_ request.API   = (*Client)(nil)
)

func NewClient(conf *core.Config, log core.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "apisvc.cookiejar")
	}
	return &Client{
		baseURL: conf.APIBaseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: conf.RequestTimeout,
		},
		log: log,
	}, nil
}

// --- session ---

func (c *Client) Signup(ctx context.Context, form user.Signup) error {
	body := map[string]string{"email": form.Email, "password": form.Password}
	return c.do(ctx, http.MethodPost, "/auth/signup", nil, body, nil)
}

func (c *Client) Login(ctx context.Context, form user.Login) error {
	return c.do(ctx, http.MethodPost, "/auth/login", nil, form, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (user.Identity, error) {
	var payload struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &payload); err != nil {
		return user.Identity{}, err
	}
	return user.Identity{ID: payload.ID, Email: payload.Email, Role: user.ParseRole(payload.Role)}, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-email", url.Values{"token": {token}}, nil, nil)
}

func (c *Client) StartPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset", url.Values{"email": {email}}, nil, nil)
}

func (c *Client) ConfirmPasswordReset(ctx context.Context, form user.ResetPassword) error {
	q := url.Values{"token": {form.Token}, "new_password": {form.Password}}
	return c.do(ctx, http.MethodPost, "/auth/reset/confirm", q, nil, nil)
}

// --- classrooms ---

func (c *Client) ListClassrooms(ctx context.Context) ([]classroom.Classroom, error) {
	var out []classroom.Classroom
	err := c.do(ctx, http.MethodGet, "/classrooms", nil, nil, &out)
	return out, err
}

func (c *Client) CreateClassroom(ctx context.Context, nc classroom.NewClassroom) (classroom.Classroom, error) {
	var out classroom.Classroom
	err := c.do(ctx, http.MethodPost, "/classrooms", nil, nc, &out)
	return out, err
}

func (c *Client) JoinClassroom(ctx context.Context, code string) error {
	return c.do(ctx, http.MethodPost, "/classrooms/join", nil, map[string]string{"code": code}, nil)
}

func (c *Client) ListAssignments(ctx context.Context, classroomID int) ([]classroom.Assignment, error) {
	var out []classroom.Assignment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/classrooms/%d/assignments", classroomID), nil, nil, &out)
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, na classroom.NewAssignment) (classroom.Assignment, error) {
	var out classroom.Assignment
	err := c.do(ctx, http.MethodPost, "/assignments", nil, na, &out)
	return out, err
}

func (c *Client) ListMaterials(ctx context.Context, classroomID int) ([]classroom.Material, error) {
	var out []classroom.Material
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/classrooms/%d/materials", classroomID), nil, nil, &out)
	return out, err
}

// --- submissions ---

func (c *Client) ListSubmissions(ctx context.Context, assignmentID int) ([]classroom.Submission, error) {
	var out []classroom.Submission
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/assignments/%d/submissions", assignmentID), nil, nil, &out)
	return out, err
}

func (c *Client) SubmitAssignment(ctx context.Context, assignmentID int, content string) (classroom.Submission, error) {
	body := map[string]interface{}{"assignment_id": assignmentID, "content": content}
	var out classroom.Submission
	err := c.do(ctx, http.MethodPost, "/submissions", nil, body, &out)
	return out, err
}

func (c *Client) UploadSubmissionFile(ctx context.Context, assignmentID int, file core.Attachment, caption string) (classroom.Submission, error) {
	fields := map[string]string{}
	if caption != "" {
		fields["caption"] = caption
	}
	var out classroom.Submission
	path := fmt.Sprintf("/assignments/%d/submissions/upload", assignmentID)
	err := c.upload(ctx, path, fields, file, &out)
	return out, err
}

func (c *Client) GetSubmission(ctx context.Context, submissionID int) (classroom.Submission, error) {
	var out classroom.Submission
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/submissions/%d", submissionID), nil, nil, &out)
	return out, err
}

func (c *Client) GradeSubmission(ctx context.Context, submissionID int, grade float64) error {
	q := url.Values{"grade": {strconv.FormatFloat(grade, 'f', -1, 64)}}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/submissions/%d/grade", submissionID), q, nil, nil)
}

// --- instructor requests ---

func (c *Client) ListInstructorRequests(ctx context.Context) ([]request.InstructorRequest, error) {
	var out []request.InstructorRequest
	err := c.do(ctx, http.MethodGet, "/admin/roles/requests", nil, nil, &out)
	return out, err
}

func (c *Client) SubmitInstructorRequest(ctx context.Context, note string, file core.Attachment) (request.InstructorRequest, error) {
	fields := map[string]string{}
	if note != "" {
		fields["note"] = note
	}
	var out request.InstructorRequest
	err := c.upload(ctx, "/roles/requests", fields, file, &out)
	return out, err
}

func (c *Client) DecideInstructorRequest(ctx context.Context, requestID int, outcome request.Outcome) error {
	path := fmt.Sprintf("/admin/roles/requests/%d/%s", requestID, outcome)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "apisvc: encode %s %s", method, path)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := c.newRequest(ctx, method, path, query, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// upload ships an attachment (plus form fields) as multipart form data.
func (c *Client) upload(ctx context.Context, path string, fields map[string]string, file core.Attachment, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, val := range fields {
		if err := w.WriteField(name, val); err != nil {
			return errors.Wrap(err, "apisvc: multipart field")
		}
	}
	part, err := w.CreateFormFile("file", file.Filename)
	if err != nil {
		return errors.Wrap(err, "apisvc: multipart file")
	}
	if file.Content != nil {
		if _, err = part.Write(file.Content.Bytes()); err != nil {
			return errors.Wrap(err, "apisvc: multipart write")
		}
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "apisvc: multipart close")
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "apisvc: new request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	if method != http.MethodGet && method != http.MethodHead {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-CSRF-Token", token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "apisvc: %s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusForbidden && req.Method != http.MethodGet {
			// the CSRF token may have rotated; next mutating call refetches
			c.resetCSRF()
		}
		return c.decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "apisvc: decode %s %s", req.Method, req.URL.Path)
	}
	return nil
}

// decodeError maps API failures to core.APIError, carrying the server's
// "detail" message when it is a plain string.
func (c *Client) decodeError(resp *http.Response) error {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	var msg string
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			msg = s
		}
	}
	c.log.Debug("api error", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, msg)
	return core.NewAPIError(resp.StatusCode, msg)
}

// csrfToken returns the cached CSRF token, fetching one on first use.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.csrf
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/csrf", nil)
	if err != nil {
		return "", errors.Wrap(err, "apisvc: csrf request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "apisvc: csrf fetch")
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", c.decodeError(resp)
	}

	var payload struct {
		CSRF string `json:"csrf"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrap(err, "apisvc: csrf decode")
	}

	c.mu.Lock()
	c.csrf = payload.CSRF
	c.mu.Unlock()
	return payload.CSRF, nil
}

func (c *Client) resetCSRF() {
	c.mu.Lock()
	c.csrf = ""
	c.mu.Unlock()
}
