// ABOUTME: Job posting form for employers
// ABOUTME: Validates locally, submits, and resets the form after success

package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389/gigboard/internal/api"
	"github.com/2389/gigboard/internal/model"
)

// PostJob messages.
const (
	MsgJobPosted       = "Job posted successfully!"
	MsgJobCreateFailed = "Failed to create job"
)

// PostJob is the employer's posting form.
type PostJob struct {
	env   Env
	req   *inflight
	flash *Flash

	mu     sync.Mutex
	form   model.NewJob
	err    string
	posted *model.Job
}

// NewPostJob creates the posting view with an empty form.
func NewPostJob(env Env) *PostJob {
	env = env.withDefaults()
	return &PostJob{
		env:   env,
		req:   newInflight(),
		flash: NewFlash(env.Now, env.FlashDelay),
		form:  emptyJobForm(),
	}
}

func emptyJobForm() model.NewJob {
	return model.NewJob{ExpiryDays: model.DefaultExpiryDays}
}

// Allowed reports whether the current user may post. When not, the denial
// message is printed.
func (v *PostJob) Allowed() error {
	if !v.env.Session.Capabilities().Employer {
		return v.env.deny(DenyPostJob)
	}
	return nil
}

// Form returns the current form.
func (v *PostJob) Form() model.NewJob {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// SetForm replaces the form.
func (v *PostJob) SetForm(j model.NewJob) {
	v.mu.Lock()
	v.form = j
	v.mu.Unlock()
}

// Submit posts the current form.
func (v *PostJob) Submit(ctx context.Context) error {
	if err := v.Allowed(); err != nil {
		return err
	}

	form := v.Form()
	if err := form.Validate(); err != nil {
		v.setError(err.Error())
		v.Render()
		return err
	}

	ctx, cancel := v.req.op(ctx)
	defer cancel()
	job, err := v.env.API.CreateJob(ctx, form)
	if !v.req.open() {
		return ErrSuperseded
	}

	if err != nil {
		v.env.Logger.Debug("creating job", "error", err)
		v.setError(api.UserMessage(err, MsgJobCreateFailed))
		v.Render()
		return err
	}

	v.mu.Lock()
	v.err = ""
	v.posted = job
	v.form = emptyJobForm()
	v.mu.Unlock()
	v.flash.Show(MsgJobPosted)
	v.Render()
	return nil
}

// Posted returns the last job created from this form, or nil.
func (v *PostJob) Posted() *model.Job {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.posted
}

// Error returns the current error text.
func (v *PostJob) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Flash returns the visible success message.
func (v *PostJob) Flash() string {
	return v.flash.Message()
}

// Render prints the outcome of the last submission.
func (v *PostJob) Render() {
	flash := v.flash.Message()
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.env.Out
	printStatus(w, v.err, flash)
	if flash != "" && v.posted != nil {
		fmt.Fprintf(w, "  Job #%d %q expires %s\n", v.posted.ID, v.posted.Title, formatDateTime(v.posted.ExpiresAt))
	}
}

// Close cancels outstanding requests.
func (v *PostJob) Close() {
	v.req.close()
}

func (v *PostJob) setError(msg string) {
	v.mu.Lock()
	v.err = msg
	v.mu.Unlock()
}
