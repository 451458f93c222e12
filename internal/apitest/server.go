// ABOUTME: In-memory gin server implementing the job board API contract for tests
// ABOUTME: Records every request and supports seeding, token revocation and forced failures

package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/gigboard/internal/model"
)

// Request is one recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	Body          []byte
}

type userRecord struct {
	model.User
	passwordHash []byte
}

type forcedFailure struct {
	status  int
	message string
}

// Server is the API double. Create it with NewServer.
type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
	users    map[int64]*userRecord
	jobs     map[int64]*model.Job
	apps     map[int64]*model.Application
	nextID   int64
	requests []Request
	failures []forcedFailure
}

// NewServer starts a double and closes it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:   []byte("apitest-signing-secret-32-bytes!"),
		tokenTTL: 24 * time.Hour,
		now:      time.Now,
		users:    make(map[int64]*userRecord),
		jobs:     make(map[int64]*model.Job),
		apps:     make(map[int64]*model.Application),
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the API root, including the /api prefix.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// Requests returns a copy of the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount returns how many requests have been received.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// LastRequest returns the most recent request. ok is false if none arrived.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// ResetRequests forgets recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// FailNext makes the next request answer status with {error: message}
// before any routing. Calls queue in order.
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	s.failures = append(s.failures, forcedFailure{status: status, message: message})
	s.mu.Unlock()
}

// SeedUser creates an account directly and returns its record.
func (s *Server) SeedUser(email, password, fullName string, userType model.UserType) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	rec := &userRecord{
		User: model.User{
			ID:        s.nextID,
			Email:     email,
			FullName:  fullName,
			UserType:  userType,
			CreatedAt: s.now().UTC(),
		},
		passwordHash: hash,
	}
	s.users[rec.ID] = rec
	return rec.User
}

// SeedJob stores job as-is, assigning an ID and defaults for unset times.
func (s *Server) SeedJob(job model.Job) model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	job.ID = s.nextID
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now().UTC()
	}
	if job.ExpiresAt.IsZero() {
		job.ExpiresAt = s.now().UTC().Add(72 * time.Hour)
	}
	if job.Status == "" {
		job.Status = "open"
	}
	stored := job
	s.jobs[job.ID] = &stored
	return job
}

// SeedApplication stores an application as-is, assigning an ID.
func (s *Server) SeedApplication(app model.Application) model.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	app.ID = s.nextID
	if app.Status == "" {
		app.Status = model.StatusPending
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = s.now().UTC()
	}
	stored := app
	s.apps[app.ID] = &stored
	return app
}

// Application returns the stored application with id.
func (s *Server) Application(id int64) (model.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return model.Application{}, false
	}
	return *app, true
}

// Jobs returns stored jobs ordered by ID.
func (s *Server) Jobs() []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// SetClock replaces the server's notion of now.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// SetTokenTTL changes the lifetime of tokens issued by login.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	s.tokenTTL = ttl
	s.mu.Unlock()
}

func (s *Server) clock() time.Time {
	s.mu.Lock()
	now := s.now
	s.mu.Unlock()
	return now()
}

// RevokeTokens rotates the signing secret so every issued token answers 401.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	s.secret = append([]byte("rotated-"), s.secret...)
	s.mu.Unlock()
}

func (s *Server) routes() http.Handler {
	r := gin.New()
	r.Use(s.record(), s.injectFailures())

	api := r.Group("/api")
	api.POST("/register", s.handleRegister)
	api.POST("/login", s.handleLogin)
	api.GET("/jobs", s.handleListJobs)
	api.GET("/jobs/:id", s.handleGetJob)

	protected := api.Group("")
	protected.Use(s.authRequired())
	protected.GET("/profile/:id", s.handleGetProfile)
	protected.PUT("/profile/:id", s.handleUpdateProfile)
	protected.POST("/jobs", requireRole(model.UserTypeEmployer), s.handleCreateJob)
	protected.POST("/applications", requireRole(model.UserTypeWorker), s.handleApply)
	protected.GET("/applications/worker/:workerId", requireRole(model.UserTypeWorker), s.handleWorkerApplications)
	protected.GET("/applications/job/:jobId", requireRole(model.UserTypeEmployer), s.handleJobApplications)
	protected.PUT("/applications/:id", requireRole(model.UserTypeEmployer), s.handleUpdateStatus)

	return r
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Authorization: c.GetHeader("Authorization"),
			ContentType:   c.GetHeader("Content-Type"),
			RequestID:     c.GetHeader("X-Request-ID"),
			Body:          body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		var f *forcedFailure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f != nil {
			c.AbortWithStatusJSON(f.status, gin.H{"error": f.message})
			return
		}
		c.Next()
	}
}
