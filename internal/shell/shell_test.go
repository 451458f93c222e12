// ABOUTME: End-to-end tests for the command loop against the API double
// ABOUTME: Scripted stdin drives login, browsing, posting, reviewing and expiry

package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/apitest"
	"github.com/2389/gigboard/internal/events"
	"github.com/2389/gigboard/internal/model"
	"github.com/2389/gigboard/internal/session"
	"github.com/2389/gigboard/internal/storage"
	"github.com/2389/gigboard/internal/views"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type harness struct {
	srv   *apitest.Server
	store *storage.MemoryStore
	mgr   *session.Manager
	bus   *events.Broadcaster
	out   *bytes.Buffer
	env   views.Env
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.NewServer(t)
	store := storage.NewMemoryStore()
	client := api.New(srv.URL(), store)
	bus := events.NewBroadcaster(nil)
	t.Cleanup(bus.Close)
	mgr := session.New(client, store, bus, nil)
	out := &bytes.Buffer{}
	return &harness{
		srv:   srv,
		store: store,
		mgr:   mgr,
		bus:   bus,
		out:   out,
		env:   views.Env{API: client, Session: mgr, Out: out, FlashDelay: time.Minute},
	}
}

func (h *harness) run(t *testing.T, script string, opts ...Option) string {
	t.Helper()
	sh := New(h.env, h.mgr, h.bus, strings.NewReader(script), opts...)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sh.Run(ctx))
	return h.out.String()
}

func lines(l ...string) string {
	return strings.Join(l, "\n") + "\n"
}

func TestAnonymousMenu(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines("help", "jobs", "quit"))

	assert.Contains(t, out, "login")
	assert.Contains(t, out, "register")
	assert.NotContains(t, out, "Post a job")
	assert.Contains(t, out, `Unknown command "jobs"`)
	assert.Contains(t, out, "Goodbye!")
	assert.Zero(t, h.srv.RequestCount())
}

func TestEndOfInputExits(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "help")
	assert.Contains(t, out, "Commands")
}

func TestRegisterThenLogin(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, lines(
		"register", "Asha Rao", "asha@example.com", "secret1", "employer", "", "Bengaluru",
		"login", "asha@example.com", "secret1",
		"help",
	))

	assert.Contains(t, out, views.MsgRegistered)
	assert.Contains(t, out, "Welcome back, Asha Rao!")
	assert.Contains(t, out, "Employer commands")
	assert.Contains(t, out, "Post a job")
	assert.NotContains(t, out, "List open jobs")
	require.NotNil(t, h.mgr.User())
	assert.Equal(t, model.UserTypeEmployer, h.mgr.User().UserType)
}

func TestWorkerFlow(t *testing.T) {
	h := newHarness(t)
	emp := h.srv.SeedUser("e@example.com", "secret1", "Acme", model.UserTypeEmployer)
	job := h.srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Gardener", Description: "Trim hedges", Location: "Mysuru"})
	h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)

	out := h.run(t, lines(
		"login", "w@example.com", "secret1",
		"jobs",
		fmt.Sprintf("job %d", job.ID),
		fmt.Sprintf("apply %d", job.ID), "I have shears",
		"mine",
		"post",
		"logout",
		"jobs",
	))

	assert.Contains(t, out, "Worker commands")
	assert.Contains(t, out, "Available Jobs (1)")
	assert.Contains(t, out, "Trim hedges")
	assert.Contains(t, out, views.MsgApplied)
	assert.Contains(t, out, "My Applications (1)")
	assert.Contains(t, out, "I have shears")
	assert.Contains(t, out, `Unknown command "post"`)
	assert.Contains(t, out, "Logged out.")
	assert.Contains(t, out, `Unknown command "jobs"`)
	assert.Nil(t, h.mgr.User())
	assert.Zero(t, h.store.Len())
}

func TestEmployerFlow(t *testing.T) {
	h := newHarness(t)
	w := h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)
	h.srv.SeedUser("e@example.com", "secret1", "Acme", model.UserTypeEmployer)

	script := lines(
		"login", "e@example.com", "secret1",
		"post",
		"Bricklayer", "Build a **garden** wall", "Hubli",
		"10", "300", "450", "2 days", "", "", "", "5",
	)
	out := h.run(t, script)
	assert.Contains(t, out, views.MsgJobPosted)

	jobs := h.srv.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "Bricklayer", jobs[0].Title)
	require.NotNil(t, jobs[0].CategoryID)
	assert.Equal(t, 10, *jobs[0].CategoryID)
	require.NotNil(t, jobs[0].SalaryMax)
	assert.InDelta(t, 450.0, *jobs[0].SalaryMax, 0.001)

	app := h.srv.SeedApplication(model.Application{JobID: jobs[0].ID, WorkerID: w.ID, CoverLetter: "Experienced"})

	h.out.Reset()
	out = h.run(t, lines(
		fmt.Sprintf("accept %d", app.ID),
		fmt.Sprintf("applicants %d", jobs[0].ID),
		fmt.Sprintf("reject %d", app.ID),
		fmt.Sprintf("accept %d", app.ID),
		fmt.Sprintf("accept %d", app.ID),
	))
	assert.Contains(t, out, "Run applicants <job-id> first.")
	assert.Contains(t, out, "Experienced")
	assert.Contains(t, out, "Application rejected successfully!")
	assert.Contains(t, out, views.MsgNotPending)

	stored, ok := h.srv.Application(app.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusRejected, stored.Status)
}

func TestEditProfile(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)

	out := h.run(t, lines(
		"login", "w@example.com", "secret1",
		"profile",
		"edit-profile", "", "99999 00000", "Hassan", "Handy with *tools*",
	))

	assert.Contains(t, out, views.NoBio)
	assert.Contains(t, out, views.MsgProfileUpdated)
	assert.Contains(t, out, "Handy with tools")
	assert.Contains(t, out, "99999 00000")
}

func TestSessionExpiryReturnsToEntryScreen(t *testing.T) {
	h := newHarness(t)
	u := h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)
	ctx := context.Background()
	require.NoError(t, h.store.Save(ctx, storage.Credentials{Token: "stale-token", User: &u}))
	require.NoError(t, h.mgr.Restore(ctx))
	require.True(t, h.mgr.Capabilities().Worker)

	out := h.run(t, lines("mine", "jobs"))

	assert.Contains(t, out, "Signed in as Ravi")
	assert.Contains(t, out, "Your session has expired. Please login again.")
	assert.Contains(t, out, `Unknown command "jobs"`)
	assert.Nil(t, h.mgr.User())
	assert.Zero(t, h.store.Len())
}

func TestPasswordReaderOption(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)

	var prompted string
	reader := func(prompt string) (string, error) {
		prompted = prompt
		return "secret1", nil
	}
	out := h.run(t, lines("login", "w@example.com"), WithPasswordReader(reader))

	assert.Contains(t, prompted, "Password")
	assert.Contains(t, out, "Welcome back, Ravi!")
}

func TestApplyDefaultsToShownJob(t *testing.T) {
	h := newHarness(t)
	emp := h.srv.SeedUser("e@example.com", "secret1", "Acme", model.UserTypeEmployer)
	h.srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Painter", Description: "Two rooms", Location: "Pune"})
	job := h.srv.SeedJob(model.Job{EmployerID: emp.ID, Title: "Plumber", Description: "Fix a tap", Location: "Pune"})
	h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)

	out := h.run(t, lines(
		"login", "w@example.com", "secret1",
		fmt.Sprintf("job %d", job.ID),
		"apply", "Bring my own wrench",
	))

	assert.Contains(t, out, views.MsgApplied)
	assert.NotContains(t, out, "Usage: apply")

	req, ok := h.srv.LastRequest()
	require.True(t, ok)
	assert.JSONEq(t, fmt.Sprintf(`{"job_id":%d,"cover_letter":"Bring my own wrench"}`, job.ID), string(req.Body))
}

func TestBadIDArgument(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedUser("w@example.com", "secret1", "Ravi", model.UserTypeWorker)

	out := h.run(t, lines("login", "w@example.com", "secret1", "job abc", "apply"))
	assert.Contains(t, out, `"abc" is not a valid id`)
	assert.Contains(t, out, "Usage: apply <id>")
}

func TestCancelledContextStops(t *testing.T) {
	h := newHarness(t)
	r, w := ioPipe()
	defer w.Close()

	sh := New(h.env, h.mgr, h.bus, r)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sh.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func ioPipe() (*os.File, *os.File) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	return r, w
}
