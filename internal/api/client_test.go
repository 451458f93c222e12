// ABOUTME: Tests for the API client against the in-memory server double
// ABOUTME: Cover bearer attachment, 401 invalidation, envelopes and error mapping

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/apitest"
	"github.com/2389/gigboard/internal/model"
	"github.com/2389/gigboard/internal/storage"
)

func newClient(t *testing.T, srv *apitest.Server, opts ...api.Option) (*api.Client, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return api.New(srv.URL(), store, opts...), store
}

func saveSession(t *testing.T, store storage.Store, token string, u model.User) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), storage.Credentials{Token: token, User: &u}))
}

func TestNewTrimsBaseURL(t *testing.T) {
	c := api.New("http://example.test/api/ ", storage.NewMemoryStore())
	assert.Equal(t, "http://example.test/api", c.BaseURL())

	c = api.New("", storage.NewMemoryStore())
	assert.Equal(t, api.DefaultBaseURL, c.BaseURL())
}

func TestBearerHeaderFollowsStoredToken(t *testing.T) {
	srv := apitest.NewServer(t)
	c, store := newClient(t, srv)
	ctx := context.Background()

	_, err := c.ListJobs(ctx)
	require.NoError(t, err)
	req, ok := srv.LastRequest()
	require.True(t, ok)
	assert.Empty(t, req.Authorization)
	assert.NotEmpty(t, req.RequestID)
	assert.Equal(t, "application/json", req.ContentType)

	saveSession(t, store, "abc123", model.User{ID: 1, UserType: model.UserTypeWorker})
	_, err = c.ListJobs(ctx)
	require.NoError(t, err)
	req, _ = srv.LastRequest()
	assert.Equal(t, "Bearer abc123", req.Authorization)

	require.NoError(t, store.Clear(ctx))
	_, err = c.ListJobs(ctx)
	require.NoError(t, err)
	req, _ = srv.LastRequest()
	assert.Empty(t, req.Authorization)
}

func TestUnauthorizedClearsStorageAndFiresHooksOnce(t *testing.T) {
	srv := apitest.NewServer(t)
	c, store := newClient(t, srv)
	ctx := context.Background()

	var fired atomic.Int32
	c.OnUnauthorized(func() { fired.Add(1) })

	saveSession(t, store, "stale-token", model.User{ID: 9, UserType: model.UserTypeWorker})

	_, err := c.GetProfile(ctx, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.KindUnauthorized, apiErr.Kind)
	assert.Equal(t, "Invalid or expired token", apiErr.Message)

	assert.Equal(t, int32(1), fired.Load())
	assert.Zero(t, store.Len())
}

func TestHooksRunInRegistrationOrder(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv)

	var order []int
	c.OnUnauthorized(func() { order = append(order, 1) })
	c.OnUnauthorized(func() { order = append(order, 2) })

	srv.FailNext(http.StatusUnauthorized, "nope")
	_, err := c.ListJobs(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, order)
}

func TestOtherStatusesLeaveSessionAlone(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   api.ErrorKind
	}{
		{"bad request", http.StatusBadRequest, api.KindClient},
		{"forbidden", http.StatusForbidden, api.KindClient},
		{"not found", http.StatusNotFound, api.KindClient},
		{"conflict", http.StatusConflict, api.KindClient},
		{"server error", http.StatusInternalServerError, api.KindServer},
		{"bad gateway", http.StatusBadGateway, api.KindServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer(t)
			c, store := newClient(t, srv)
			saveSession(t, store, "tok", model.User{ID: 1, UserType: model.UserTypeEmployer})

			var fired bool
			c.OnUnauthorized(func() { fired = true })

			srv.FailNext(tt.status, "boom")
			_, err := c.ListJobs(context.Background())

			var apiErr *api.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.False(t, fired)
			assert.Equal(t, 2, store.Len())
		})
	}
}

func TestFailedLoginInvalidates(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	c, _ := newClient(t, srv)

	var fired bool
	c.OnUnauthorized(func() { fired = true })

	_, err := c.Login(context.Background(), "w@example.com", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", api.UserMessage(err, "Login failed"))
	assert.True(t, fired)
}

func TestNetworkError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	c := api.New(url, storage.NewMemoryStore(), api.WithTimeout(2*time.Second))
	_, err := c.ListJobs(context.Background())

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.StatusCode)
	assert.Equal(t, "Failed to load jobs", api.UserMessage(err, "Failed to load jobs"))
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("x"), "fallback"},
		{"client with message", &api.Error{Kind: api.KindClient, StatusCode: 400, Message: "Title is required"}, "Title is required"},
		{"client without message", &api.Error{Kind: api.KindClient, StatusCode: 400}, "fallback"},
		{"unauthorized", &api.Error{Kind: api.KindUnauthorized, StatusCode: 401, Message: "Invalid email or password"}, "Invalid email or password"},
		{"server hides message", &api.Error{Kind: api.KindServer, StatusCode: 500, Message: "pq: connection refused"}, "fallback"},
		{"network", &api.Error{Kind: api.KindNetwork, Err: errors.New("dial tcp")}, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, api.UserMessage(tt.err, "fallback"))
		})
	}
}

func TestErrorSentinels(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv)

	_, err := c.GetJob(context.Background(), 404)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.NotErrorIs(t, err, api.ErrConflict)
	assert.Equal(t, "Job not found", api.UserMessage(err, "Failed to load job"))
}

func TestRegisterDoesNotReturnToken(t *testing.T) {
	srv := apitest.NewServer(t)
	c, store := newClient(t, srv)

	u, err := c.Register(context.Background(), model.NewUser{
		Email:    "new@example.com",
		Password: "hunter22",
		FullName: "New Person",
		UserType: model.UserTypeWorker,
		Location: "Pune",
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "New Person", u.FullName)
	assert.Equal(t, "Pune", u.Location)
	assert.Zero(t, store.Len())

	_, err = c.Register(context.Background(), model.NewUser{
		Email: "new@example.com", Password: "hunter22", FullName: "Again", UserType: model.UserTypeWorker,
	})
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	srv := apitest.NewServer(t)
	seeded := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	c, _ := newClient(t, srv)

	res, err := c.Login(context.Background(), "e@example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, seeded.ID, res.User.ID)
	assert.Equal(t, model.UserTypeEmployer, res.User.UserType)
}

func TestLoginWithoutTokenIsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"Login successful","user":{"id":1}}`))
	}))
	defer ts.Close()

	c := api.New(ts.URL, storage.NewMemoryStore())
	_, err := c.Login(context.Background(), "a@b.c", "pw")

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.KindServer, apiErr.Kind)
}

func TestUndecodableResponseIsServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer ts.Close()

	c := api.New(ts.URL, storage.NewMemoryStore())
	_, err := c.ListJobs(context.Background())

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.KindServer, apiErr.Kind)
	assert.Equal(t, "Failed to load jobs", api.UserMessage(err, "Failed to load jobs"))
}

func TestErrorDetailsAreLoggedNotShown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid input","details":"Key: 'title' Error:Field validation"}`))
	}))
	defer ts.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := api.New(ts.URL, storage.NewMemoryStore(), api.WithLogger(logger))
	_, err := c.ListJobs(context.Background())

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Key: 'title' Error:Field validation", apiErr.Details)
	assert.Equal(t, "Invalid input", api.UserMessage(err, "Failed to load jobs"))
	assert.Contains(t, logs.String(), "api error details")
	assert.Contains(t, logs.String(), "Field validation")
}

func TestProfileRoundTrip(t *testing.T) {
	srv := apitest.NewServer(t)
	u := srv.SeedUser("w@example.com", "secret1", "Worker One", model.UserTypeWorker)
	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(u, time.Hour), u)
	ctx := context.Background()

	got, err := c.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Worker One", got.FullName)

	update := model.ProfileUpdateFrom(*got)
	update.Bio = "Carpenter with **ten** years"
	update.Location = "Mumbai"
	updated, err := c.UpdateProfile(ctx, u.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.Location)
	assert.Equal(t, "Carpenter with **ten** years", updated.Bio)

	req, _ := srv.LastRequest()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/api/profile/1", req.Path)
}

func TestJobsListAndDetail(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Acme Builders", model.UserTypeEmployer)
	cat := 1
	old := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Old", Location: "Delhi", CreatedAt: time.Now().Add(-time.Hour)})
	recent := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Recent", Location: "Delhi", CategoryID: &cat})
	srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Gone", ExpiresAt: time.Now().Add(-time.Minute)})

	c, _ := newClient(t, srv)
	ctx := context.Background()

	jobs, err := c.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, recent.ID, jobs[0].ID)
	assert.Equal(t, old.ID, jobs[1].ID)
	assert.Equal(t, "Acme Builders", jobs[0].EmployerName)
	assert.NotEmpty(t, jobs[0].CategoryName)

	job, err := c.GetJob(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", job.Title)
}

func TestEmptyJobListIsNotNil(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv)

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestCreateJobSendsNullsForUnsetOptionalNumbers(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(emp, time.Hour), emp)

	job, err := c.CreateJob(context.Background(), model.NewJob{
		Title:       "Painter",
		Description: "Paint two rooms",
		Location:    "Chennai",
		ExpiryDays:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, emp.ID, job.EmployerID)
	assert.Equal(t, "Painter", job.Title)

	req, _ := srv.LastRequest()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Contains(t, body, "salary_min")
	assert.Nil(t, body["salary_min"])
	assert.Nil(t, body["category_id"])
	assert.EqualValues(t, 2, body["expiry_days"])
}

func TestWorkerCannotPostJob(t *testing.T) {
	srv := apitest.NewServer(t)
	w := srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(w, time.Hour), w)

	_, err := c.CreateJob(context.Background(), model.NewJob{Title: "x", Description: "y", Location: "z", ExpiryDays: 1})
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Only employers can access this resource", apiErr.Message)
	assert.Equal(t, 2, store.Len())
}

func TestApplySendsOnlyJobAndCoverLetter(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	w := srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	job := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Mason", Location: "Goa"})

	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(w, time.Hour), w)
	ctx := context.Background()

	app, err := c.ApplyToJob(ctx, job.ID, "I have tools")
	require.NoError(t, err)
	assert.Equal(t, w.ID, app.WorkerID)
	assert.Equal(t, model.StatusPending, app.Status)

	req, _ := srv.LastRequest()
	assert.JSONEq(t, `{"job_id":`+itoa(job.ID)+`,"cover_letter":"I have tools"}`, string(req.Body))

	_, err = c.ApplyToJob(ctx, job.ID, "")
	assert.ErrorIs(t, err, api.ErrConflict)
	assert.Equal(t, "You have already applied to this job", api.UserMessage(err, "Failed to submit application"))

	apps, err := c.ListWorkerApplications(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "Mason", apps[0].JobTitle)
	assert.Equal(t, "Boss", apps[0].EmployerName)
}

func TestApplyOmitsEmptyCoverLetter(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	w := srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	job := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Mason"})

	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(w, time.Hour), w)

	_, err := c.ApplyToJob(context.Background(), job.ID, "")
	require.NoError(t, err)
	req, _ := srv.LastRequest()
	assert.JSONEq(t, `{"job_id":`+itoa(job.ID)+`}`, string(req.Body))
}

func TestApplyToExpiredJob(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	w := srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	job := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Late", ExpiresAt: time.Now().Add(-time.Hour)})

	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(w, time.Hour), w)

	_, err := c.ApplyToJob(context.Background(), job.ID, "")
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "This job has expired", api.UserMessage(err, "fallback"))
}

func TestUpdateApplicationStatus(t *testing.T) {
	srv := apitest.NewServer(t)
	emp := srv.SeedUser("e@example.com", "secret1", "Boss", model.UserTypeEmployer)
	w := srv.SeedUser("w@example.com", "secret1", "Worker", model.UserTypeWorker)
	job := srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Mason"})
	app := srv.SeedApplication(model.Application{JobID: job.ID, WorkerID: w.ID})

	c, store := newClient(t, srv)
	saveSession(t, store, srv.IssueToken(emp, time.Hour), emp)
	ctx := context.Background()

	updated, err := c.UpdateApplicationStatus(ctx, app.ID, model.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAccepted, updated.Status)

	req, _ := srv.LastRequest()
	assert.JSONEq(t, `{"status":"accepted"}`, string(req.Body))

	applicants, err := c.ListJobApplications(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, model.StatusAccepted, applicants[0].Status)
	assert.Equal(t, "Worker", applicants[0].WorkerName)
	assert.Equal(t, "w@example.com", applicants[0].WorkerEmail)
}

func TestUpdateApplicationStatusRejectsOtherStatuses(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv)

	for _, status := range []model.ApplicationStatus{model.StatusPending, model.StatusWithdrawn, "hired"} {
		_, err := c.UpdateApplicationStatus(context.Background(), 1, status)
		assert.ErrorIs(t, err, api.ErrInvalidStatus)
	}
	assert.Zero(t, srv.RequestCount())
}

func TestRateLimitSpacesRequests(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv, api.WithRateLimit(20, 1))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.ListJobs(ctx)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestCanceledContextIsNetworkError(t *testing.T) {
	srv := apitest.NewServer(t)
	c, _ := newClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListJobs(ctx)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, api.KindNetwork, apiErr.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
