package apisvc

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Joud158/PolyLab/core"
	"github.com/Joud158/PolyLab/core/user"
)

// fakeAPI is an in-process stand-in for the PolyLab backend: cookie sessions,
// a rotating CSRF token and FastAPI-style {"detail": ...} errors.
type fakeAPI struct {
	e *echo.Echo

	mu          sync.Mutex
	csrfFetches int
	token       string
	sessions    map[string]bool
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{
		e:        echo.New(),
		token:    "csrf-1",
		sessions: make(map[string]bool),
	}
	f.e.GET("/auth/csrf", f.csrf)
	f.e.POST("/auth/login", f.guard(f.login))
	f.e.GET("/me", f.me)
	f.e.GET("/classrooms", f.listClassrooms)
	f.e.POST("/roles/requests", f.guard(f.submitRequest))
	f.e.POST("/classrooms/join", f.guard(f.join))
	return f
}

func (f *fakeAPI) start(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(f.e)
	t.Cleanup(srv.Close)

	client, err := NewClient(&core.Config{APIBaseURL: srv.URL}, core.NopLogger{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func (f *fakeAPI) rotateToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) csrfFetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.csrfFetches
}

func (f *fakeAPI) csrf(c echo.Context) error {
	f.mu.Lock()
	f.csrfFetches++
	token := f.token
	f.mu.Unlock()
	return c.JSON(http.StatusOK, echo.Map{"csrf": token})
}

// guard enforces the CSRF header on mutations, like the real backend does.
func (f *fakeAPI) guard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		f.mu.Lock()
		token := f.token
		f.mu.Unlock()
		if c.Request().Header.Get("X-CSRF-Token") != token {
			return c.JSON(http.StatusForbidden, echo.Map{"detail": "CSRF token mismatch"})
		}
		if c.Request().Header.Get("X-Request-ID") == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "Missing request id"})
		}
		return next(c)
	}
}

func (f *fakeAPI) login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Email != "lina@polylab.test" || body.Password != "grape-Vine-77" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid credentials"})
	}
	f.mu.Lock()
	f.sessions["sess-1"] = true
	f.mu.Unlock()
	c.SetCookie(&http.Cookie{Name: "session", Value: "sess-1", Path: "/"})
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (f *fakeAPI) authed(c echo.Context) bool {
	cookie, err := c.Cookie("session")
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[cookie.Value]
}

func (f *fakeAPI) me(c echo.Context) error {
	if !f.authed(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": 10, "email": "lina@polylab.test", "role": "student"})
}

func (f *fakeAPI) listClassrooms(c echo.Context) error {
	if !f.authed(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Not authenticated"})
	}
	return c.JSON(http.StatusOK, []echo.Map{
		{"id": 42, "name": "Polynomials 101", "code": "POLY42", "created_at": "2024-03-01T10:00:00"},
	})
}

func (f *fakeAPI) join(c echo.Context) error {
	var body struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return err
	}
	if body.Code != "POLY42" {
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "Invalid class code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (f *fakeAPI) submitRequest(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "Missing file"})
	}
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	content, _ := io.ReadAll(src)

	return c.JSON(http.StatusOK, echo.Map{
		"id":        7,
		"status":    "pending",
		"note":      c.FormValue("note"),
		"file_path": "uploads/" + fh.Filename,
		"user_id":   10,
		"size":      len(content),
	})
}

func TestClientSessionFlow(t *testing.T) {
	api := newFakeAPI()
	client := api.start(t)
	ctx := context.Background()

	form := user.Login{Email: "lina@polylab.test", Password: "grape-Vine-77"}
	if err := client.Login(ctx, form); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// session rides on the cookie jar, no token handling by the caller
	id, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	want := user.Identity{ID: 10, Email: "lina@polylab.test", Role: user.RoleStudent}
	if id != want {
		t.Errorf("Me() = %+v, want %+v", id, want)
	}

	classes, err := client.ListClassrooms(ctx)
	if err != nil {
		t.Fatalf("ListClassrooms() error = %v", err)
	}
	if len(classes) != 1 || classes[0].Code != "POLY42" {
		t.Errorf("ListClassrooms() = %+v", classes)
	}

	// the CSRF token is fetched once and cached across mutations
	if err := client.JoinClassroom(ctx, "POLY42"); err != nil {
		t.Errorf("JoinClassroom() error = %v", err)
	}
	if n := api.csrfFetchCount(); n != 1 {
		t.Errorf("csrf fetched %d times, want 1", n)
	}
}

func TestClientBadCredentials(t *testing.T) {
	api := newFakeAPI()
	client := api.start(t)

	form := user.Login{Email: "lina@polylab.test", Password: "wrong"}
	err := client.Login(context.Background(), form)
	if !core.IsUnauthorized(err) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
	if got := core.APIErrorMessage(err, "fallback"); got != "Invalid credentials" {
		t.Errorf("server detail = %q", got)
	}
}

func TestClientErrorDetail(t *testing.T) {
	e := echo.New()
	e.GET("/classrooms", func(c echo.Context) error {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "database unavailable"})
	})
	e.GET("/me", func(c echo.Context) error {
		return c.HTML(http.StatusBadGateway, "<html>upstream dead</html>")
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	client, err := NewClient(&core.Config{APIBaseURL: srv.URL}, core.NopLogger{})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	ctx := context.Background()

	_, err = client.ListClassrooms(ctx)
	if got := core.APIErrorMessage(err, "fallback"); got != "database unavailable" {
		t.Errorf("APIErrorMessage() = %q, want the server detail", got)
	}

	// non-JSON bodies fall back to the status text, never raw HTML
	_, err = client.Me(ctx)
	if got := core.APIErrorMessage(err, "fallback"); got != http.StatusText(http.StatusBadGateway) {
		t.Errorf("APIErrorMessage() = %q, want %q", got, http.StatusText(http.StatusBadGateway))
	}
}

func TestClientUpload(t *testing.T) {
	api := newFakeAPI()
	client := api.start(t)

	file := core.Attachment{
		Content:     bytes.NewBufferString("%PDF-1.4 stub"),
		ContentType: "application/pdf",
		Filename:    "cv.pdf",
	}
	req, err := client.SubmitInstructorRequest(context.Background(), "I teach labs already", file)
	if err != nil {
		t.Fatalf("SubmitInstructorRequest() error = %v", err)
	}
	if req.ID != 7 || req.Note != "I teach labs already" || req.FilePath != "uploads/cv.pdf" {
		t.Errorf("SubmitInstructorRequest() = %+v", req)
	}
}

func TestClientCSRFRotation(t *testing.T) {
	api := newFakeAPI()
	client := api.start(t)
	ctx := context.Background()

	form := user.Login{Email: "lina@polylab.test", Password: "grape-Vine-77"}
	if err := client.Login(ctx, form); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// the server rotates the token; the cached one now draws a 403 and the
	// client drops its copy so the next mutation refetches
	api.rotateToken("csrf-2")
	err := client.JoinClassroom(ctx, "POLY42")
	if err == nil {
		t.Fatal("JoinClassroom() error = nil with a stale token")
	}
	if err := client.JoinClassroom(ctx, "POLY42"); err != nil {
		t.Errorf("JoinClassroom() after refetch error = %v", err)
	}
	if n := api.csrfFetchCount(); n != 2 {
		t.Errorf("csrf fetched %d times, want 2", n)
	}
}
