// ABOUTME: Application lists: a worker's own applications and an employer's applicants
// ABOUTME: Employers accept or reject pending applications and the list is re-fetched

package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/model"
)

// Application list messages.
const (
	MsgApplicationsLoadFailed = "Failed to load applications"
	MsgStatusUpdateFailed     = "Failed to update application status"
	MsgNotPending             = "Only pending applications can be accepted or rejected"
	msgStatusUpdated          = "Application %s successfully!"
)

// MyApplications lists the signed-in worker's applications.
type MyApplications struct {
	env Env
	req *inflight

	mu      sync.Mutex
	apps    []model.WorkerApplication
	loaded  bool
	loading bool
	err     string
}

// NewMyApplications creates the worker's application list.
func NewMyApplications(env Env) *MyApplications {
	return &MyApplications{env: env.withDefaults(), req: newInflight()}
}

// Load fetches the applications and renders them.
func (v *MyApplications) Load(ctx context.Context) error {
	user := v.env.Session.User()
	if !v.env.Session.Capabilities().Worker || user == nil {
		return v.env.deny(DenyMyApplications)
	}

	ctx, seq, cancel := v.req.load(ctx)
	defer cancel()
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	apps, err := v.env.API.ListWorkerApplications(ctx, user.ID)
	if !v.req.current(seq) {
		return ErrSuperseded
	}

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.err = MsgApplicationsLoadFailed
	} else {
		v.err = ""
		v.apps = apps
		v.loaded = true
	}
	v.mu.Unlock()

	if err != nil {
		v.env.Logger.Debug("loading worker applications", "error", err)
	}
	v.Render()
	return err
}

// Applications returns the last loaded list.
func (v *MyApplications) Applications() []model.WorkerApplication {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.WorkerApplication, len(v.apps))
	copy(out, v.apps)
	return out
}

// Error returns the current error text.
func (v *MyApplications) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Render prints the list.
func (v *MyApplications) Render() {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.env.Out
	printHeader(w, fmt.Sprintf("My Applications (%d)", len(v.apps)))
	if v.loading {
		fmt.Fprintln(w, "  Loading your applications...")
		return
	}
	printStatus(w, v.err, "")
	if !v.loaded {
		return
	}
	if len(v.apps) == 0 {
		fmt.Fprintln(w, "  You haven't applied to any jobs yet.")
		return
	}

	for _, a := range v.apps {
		fmt.Fprintln(w)
		labelColor.Fprintf(w, "  #%d %s", a.ID, a.JobTitle)
		fmt.Fprintf(w, "  [%s]\n", statusBadge(a.Status))
		printField(w, "Employer", a.EmployerName)
		printField(w, "Location", a.Location)
		if salary, ok := a.SalaryRange(); ok {
			printField(w, "Salary", salary)
		}
		if a.CoverLetter != "" {
			printBlock(w, "Your Cover Letter", a.CoverLetter)
		}
		printField(w, "Applied on", formatDateTime(a.AppliedAt))
	}
}

// Close cancels outstanding requests.
func (v *MyApplications) Close() {
	v.req.close()
}

// JobApplications lists applicants for one of the employer's jobs.
type JobApplications struct {
	env   Env
	req   *inflight
	flash *Flash

	mu      sync.Mutex
	jobID   int64
	apps    []model.JobApplicant
	loaded  bool
	loading bool
	err     string
}

// NewJobApplications creates the employer's applicant list.
func NewJobApplications(env Env) *JobApplications {
	env = env.withDefaults()
	return &JobApplications{env: env, req: newInflight(), flash: NewFlash(env.Now, env.FlashDelay)}
}

func (v *JobApplications) allowed() error {
	if !v.env.Session.Capabilities().Employer {
		return v.env.deny(DenyJobApplications)
	}
	return nil
}

// Load fetches the applicants for jobID and renders them.
func (v *JobApplications) Load(ctx context.Context, jobID int64) error {
	if err := v.allowed(); err != nil {
		return err
	}
	if err := v.fetch(ctx, jobID); err != nil {
		return err
	}
	v.Render()
	return nil
}

func (v *JobApplications) fetch(ctx context.Context, jobID int64) error {
	ctx, seq, cancel := v.req.load(ctx)
	defer cancel()
	v.mu.Lock()
	if v.jobID != jobID {
		v.apps = nil
		v.loaded = false
	}
	v.jobID = jobID
	v.loading = true
	v.mu.Unlock()

	apps, err := v.env.API.ListJobApplications(ctx, jobID)
	if !v.req.current(seq) {
		return ErrSuperseded
	}

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.err = api.UserMessage(err, MsgApplicationsLoadFailed)
	} else {
		v.err = ""
		v.apps = apps
		v.loaded = true
	}
	v.mu.Unlock()

	if err != nil {
		v.env.Logger.Debug("loading job applications", "job_id", jobID, "error", err)
		v.Render()
	}
	return err
}

// UpdateStatus accepts or rejects a pending application from the loaded
// list, then re-fetches the list.
func (v *JobApplications) UpdateStatus(ctx context.Context, applicationID int64, status model.ApplicationStatus) error {
	if err := v.allowed(); err != nil {
		return err
	}

	app, ok := v.find(applicationID)
	if !ok {
		msg := fmt.Sprintf("Application #%d is not in the current list", applicationID)
		v.setError(msg)
		printStatus(v.env.Out, msg, "")
		return fmt.Errorf("application %d: not loaded", applicationID)
	}
	if !app.Status.CanTransition(status) {
		v.setError(MsgNotPending)
		printStatus(v.env.Out, MsgNotPending, "")
		return fmt.Errorf("application %d is %s: %w", applicationID, app.Status, api.ErrInvalidStatus)
	}

	opCtx, cancel := v.req.op(ctx)
	_, err := v.env.API.UpdateApplicationStatus(opCtx, applicationID, status)
	cancel()
	if !v.req.open() {
		return ErrSuperseded
	}
	if err != nil {
		v.env.Logger.Debug("updating application status", "application_id", applicationID, "error", err)
		v.setError(api.UserMessage(err, MsgStatusUpdateFailed))
		printStatus(v.env.Out, v.Error(), "")
		return err
	}

	v.flash.Show(fmt.Sprintf(msgStatusUpdated, status))
	v.mu.Lock()
	v.err = ""
	jobID := v.jobID
	v.mu.Unlock()

	if err := v.fetch(ctx, jobID); err != nil {
		return err
	}
	v.Render()
	return nil
}

// Applicants returns the last loaded list.
func (v *JobApplications) Applicants() []model.JobApplicant {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.JobApplicant, len(v.apps))
	copy(out, v.apps)
	return out
}

// Error returns the current error text.
func (v *JobApplications) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Flash returns the visible success message.
func (v *JobApplications) Flash() string {
	return v.flash.Message()
}

// Render prints the applicants.
func (v *JobApplications) Render() {
	flash := v.flash.Message()
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.env.Out
	printHeader(w, fmt.Sprintf("Applications for job #%d", v.jobID))
	if v.loading {
		fmt.Fprintln(w, "  Loading applications...")
		return
	}
	printStatus(w, v.err, flash)
	if !v.loaded {
		return
	}
	fmt.Fprintf(w, "  Total Applications: %d\n", len(v.apps))
	if len(v.apps) == 0 {
		fmt.Fprintln(w, "  No applications received yet.")
		return
	}

	for _, a := range v.apps {
		fmt.Fprintln(w)
		labelColor.Fprintf(w, "  #%d %s", a.ID, a.WorkerName)
		fmt.Fprintf(w, "  [%s]\n", statusBadge(a.Status))
		contact := []string{a.WorkerEmail}
		if a.WorkerPhone != "" {
			contact = append(contact, a.WorkerPhone)
		}
		printField(w, "Contact", strings.Join(contact, " | "))
		if a.WorkerLocation != "" {
			printField(w, "Location", a.WorkerLocation)
		}
		if a.CoverLetter != "" {
			printBlock(w, "Cover Letter", a.CoverLetter)
		}
		printField(w, "Applied on", formatDateTime(a.AppliedAt))
		if a.Status == model.StatusPending {
			dimColor.Fprintf(w, "  accept %d | reject %d\n", a.ID, a.ID)
		}
	}
}

// Close cancels outstanding requests.
func (v *JobApplications) Close() {
	v.req.close()
}

func (v *JobApplications) find(id int64) (model.JobApplicant, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, a := range v.apps {
		if a.ID == id {
			return a, true
		}
	}
	return model.JobApplicant{}, false
}

func (v *JobApplications) setError(msg string) {
	v.mu.Lock()
	v.err = msg
	v.mu.Unlock()
}
