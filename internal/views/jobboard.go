// ABOUTME: Job board for workers: open listings, job details and applying
// ABOUTME: Apply clears the cover letter and flashes a confirmation on success

package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/model"
)

// JobBoard messages.
const (
	MsgJobsLoadFailed = "Failed to load jobs"
	MsgJobLoadFailed  = "Failed to load job"
	MsgApplied        = "Application submitted successfully!"
	MsgApplyFailed    = "Failed to submit application"
)

// JobBoard lists open jobs and lets a worker apply.
type JobBoard struct {
	env   Env
	req   *inflight
	flash *Flash

	mu          sync.Mutex
	jobs        []model.JobListing
	loaded      bool
	selected    *model.JobListing
	coverLetter string
	loading     bool
	err         string
}

// NewJobBoard creates the job board view.
func NewJobBoard(env Env) *JobBoard {
	env = env.withDefaults()
	return &JobBoard{env: env, req: newInflight(), flash: NewFlash(env.Now, env.FlashDelay)}
}

func (v *JobBoard) allowed() error {
	if !v.env.Session.Capabilities().Worker {
		return v.env.deny(DenyJobBoard)
	}
	return nil
}

// Load fetches the listing and renders it.
func (v *JobBoard) Load(ctx context.Context) error {
	if err := v.allowed(); err != nil {
		return err
	}

	ctx, seq, cancel := v.req.load(ctx)
	defer cancel()
	v.setLoading(true)

	jobs, err := v.env.API.ListJobs(ctx)
	if !v.req.current(seq) {
		return ErrSuperseded
	}

	v.mu.Lock()
	v.loading = false
	if err != nil {
		v.err = MsgJobsLoadFailed
	} else {
		v.err = ""
		v.jobs = jobs
		v.loaded = true
	}
	v.mu.Unlock()

	if err != nil {
		v.env.Logger.Debug("loading jobs", "error", err)
	}
	v.Render()
	return err
}

// Show fetches one job and renders its details.
func (v *JobBoard) Show(ctx context.Context, jobID int64) error {
	if err := v.allowed(); err != nil {
		return err
	}

	ctx, seq, cancel := v.req.load(ctx)
	defer cancel()

	job, err := v.env.API.GetJob(ctx, jobID)
	if !v.req.current(seq) {
		return ErrSuperseded
	}
	if err != nil {
		v.env.Logger.Debug("loading job", "job_id", jobID, "error", err)
		v.setError(api.UserMessage(err, MsgJobLoadFailed))
		printStatus(v.env.Out, v.Error(), "")
		return err
	}

	v.mu.Lock()
	v.err = ""
	v.selected = job
	v.mu.Unlock()
	v.RenderDetail()
	return nil
}

// SetCoverLetter sets the text sent with the next application.
func (v *JobBoard) SetCoverLetter(s string) {
	v.mu.Lock()
	v.coverLetter = s
	v.mu.Unlock()
}

// CoverLetter returns the pending cover letter.
func (v *JobBoard) CoverLetter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.coverLetter
}

// Apply submits an application for jobID with the pending cover letter.
// Expiry is left to the server; the local clock only drives the marker.
func (v *JobBoard) Apply(ctx context.Context, jobID int64) error {
	if err := v.allowed(); err != nil {
		return err
	}

	ctx, cancel := v.req.op(ctx)
	defer cancel()
	_, err := v.env.API.ApplyToJob(ctx, jobID, v.CoverLetter())
	if !v.req.open() {
		return ErrSuperseded
	}

	if err != nil {
		v.env.Logger.Debug("applying", "job_id", jobID, "error", err)
		v.setError(api.UserMessage(err, MsgApplyFailed))
		printStatus(v.env.Out, v.Error(), "")
		return err
	}

	v.mu.Lock()
	v.err = ""
	v.coverLetter = ""
	v.mu.Unlock()
	v.flash.Show(MsgApplied)
	printStatus(v.env.Out, "", v.flash.Message())
	return nil
}

// Jobs returns the last loaded listing.
func (v *JobBoard) Jobs() []model.JobListing {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.JobListing, len(v.jobs))
	copy(out, v.jobs)
	return out
}

// Selected returns the job last shown in detail, or nil.
func (v *JobBoard) Selected() *model.JobListing {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// Error returns the current error text.
func (v *JobBoard) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Flash returns the visible success message.
func (v *JobBoard) Flash() string {
	return v.flash.Message()
}

// Render prints the listing.
func (v *JobBoard) Render() {
	flash := v.flash.Message()
	now := v.env.Now()
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.env.Out
	printHeader(w, fmt.Sprintf("Available Jobs (%d)", len(v.jobs)))
	if v.loading {
		fmt.Fprintln(w, "  Loading jobs...")
		return
	}
	printStatus(w, v.err, flash)
	if !v.loaded {
		return
	}
	if len(v.jobs) == 0 {
		fmt.Fprintln(w, "  No jobs available at the moment.")
		return
	}

	t := newTable(w)
	fmt.Fprintln(t, "  ID\tTITLE\tEMPLOYER\tLOCATION\tCATEGORY\tSALARY\tEXPIRES")
	fmt.Fprintln(t, "  --\t-----\t--------\t--------\t--------\t------\t-------")
	for _, j := range v.jobs {
		salary, ok := j.SalaryRange()
		if !ok {
			salary = "-"
		}
		expires := formatDate(j.ExpiresAt)
		if j.Expired(now) {
			expires = "expired"
		}
		fmt.Fprintf(t, "  %d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID,
			truncate(j.Title, 32),
			truncate(j.EmployerName, 20),
			truncate(j.Location, 20),
			orPlaceholder(j.CategoryName, "-"),
			salary,
			expires)
	}
	t.Flush()
}

// RenderDetail prints the selected job.
func (v *JobBoard) RenderDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	j := v.selected
	if j == nil {
		return
	}

	w := v.env.Out
	printHeader(w, j.Title)
	printField(w, "Employer", j.EmployerName)
	printField(w, "Location", j.Location)
	if j.CategoryName != "" {
		printField(w, "Category", j.CategoryName)
	}
	if salary, ok := j.SalaryRange(); ok {
		printField(w, "Salary", salary)
	}
	if j.Duration != "" {
		printField(w, "Duration", j.Duration)
	}
	printBlock(w, "Description", Markdown(j.Description))
	if j.Requirements != "" {
		printBlock(w, "Requirements", Markdown(j.Requirements))
	}
	if j.ContactPhone != "" {
		printField(w, "Phone", j.ContactPhone)
	}
	if j.ContactEmail != "" {
		printField(w, "Email", j.ContactEmail)
	}
	expires := formatDateTime(j.ExpiresAt)
	if j.Expired(v.env.Now()) {
		expires += " (expired)"
	}
	printField(w, "Expires", expires)
}

// Close cancels outstanding requests.
func (v *JobBoard) Close() {
	v.req.close()
}

func (v *JobBoard) setLoading(b bool) {
	v.mu.Lock()
	v.loading = b
	v.mu.Unlock()
}

func (v *JobBoard) setError(msg string) {
	v.mu.Lock()
	v.err = msg
	v.mu.Unlock()
}
