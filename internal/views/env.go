// ABOUTME: Shared dependencies and role gates for every view
// ABOUTME: Narrow API and session interfaces keep views testable

package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/2389/gigboard/internal/model"
	"github.com/2389/gigboard/internal/session"
)

// DefaultFlashDelay is how long success messages stay visible.
const DefaultFlashDelay = 3 * time.Second

// Denial messages printed when a view is opened by the wrong role.
const (
	DenyPostJob         = "Only employers can post jobs"
	DenyJobApplications = "Only employers can review applications"
	DenyJobBoard        = "Only workers can browse and apply to jobs"
	DenyMyApplications  = "Only workers can view their applications"
	DenyProfile         = "Please login to view your profile"
)

var (
	// ErrDenied is returned when the current role may not use a view.
	ErrDenied = errors.New("view not available for this role")
	// ErrSuperseded is returned when a newer load or Close discarded a result.
	ErrSuperseded = errors.New("result discarded")
)

// API is the subset of the job board client views call.
type API interface {
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, p model.ProfileUpdate) (*model.User, error)
	CreateJob(ctx context.Context, j model.NewJob) (*model.Job, error)
	ListJobs(ctx context.Context) ([]model.JobListing, error)
	GetJob(ctx context.Context, jobID int64) (*model.JobListing, error)
	ApplyToJob(ctx context.Context, jobID int64, coverLetter string) (*model.Application, error)
	ListWorkerApplications(ctx context.Context, workerID int64) ([]model.WorkerApplication, error)
	ListJobApplications(ctx context.Context, jobID int64) ([]model.JobApplicant, error)
	UpdateApplicationStatus(ctx context.Context, applicationID int64, status model.ApplicationStatus) (*model.Application, error)
}

// Session is the subset of the session manager views call.
type Session interface {
	User() *model.User
	Capabilities() session.Capabilities
	Login(ctx context.Context, email, password string) (*model.User, error)
	Register(ctx context.Context, u model.NewUser) (*model.User, error)
}

// Env carries what every view needs.
type Env struct {
	API        API
	Session    Session
	Out        io.Writer
	Now        func() time.Time
	FlashDelay time.Duration
	Logger     *slog.Logger
}

func (e Env) withDefaults() Env {
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.FlashDelay == 0 {
		e.FlashDelay = DefaultFlashDelay
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	return e
}

// deny prints msg and returns ErrDenied.
func (e Env) deny(msg string) error {
	errorColor.Fprintf(e.Out, "  %s\n", msg)
	return fmt.Errorf("%w: %s", ErrDenied, msg)
}
