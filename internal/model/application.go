// ABOUTME: Application record, status lifecycle, and joined listing rows
// ABOUTME: Only pending applications may be accepted or rejected

package model

import "time"

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
	StatusWithdrawn ApplicationStatus = "withdrawn"
)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// CanTransition reports whether this client may move an application from s
// to next. Only the owning employer decides a pending application.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	return s == StatusPending && (next == StatusAccepted || next == StatusRejected)
}

// Application is a worker's request to be considered for one job.
type Application struct {
	ID          int64             `json:"id"`
	JobID       int64             `json:"job_id"`
	WorkerID    int64             `json:"worker_id"`
	CoverLetter string            `json:"cover_letter,omitempty"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"applied_at"`
}

// WorkerApplication is an application joined with job and employer fields,
// as returned to the worker who submitted it.
type WorkerApplication struct {
	Application
	JobTitle     string   `json:"job_title"`
	Location     string   `json:"location"`
	SalaryMin    *float64 `json:"salary_min,omitempty"`
	SalaryMax    *float64 `json:"salary_max,omitempty"`
	EmployerName string   `json:"employer_name"`
}

// SalaryRange formats the hourly salary band of the applied job.
func (a WorkerApplication) SalaryRange() (string, bool) {
	return formatSalary(a.SalaryMin, a.SalaryMax)
}

// JobApplicant is an application joined with the applying worker's contact
// fields, as returned to the employer who owns the job.
type JobApplicant struct {
	Application
	WorkerName     string `json:"worker_name"`
	WorkerEmail    string `json:"worker_email"`
	WorkerPhone    string `json:"worker_phone,omitempty"`
	WorkerLocation string `json:"worker_location,omitempty"`
}

// NewApplication is the body of POST /applications. The worker comes from
// the bearer token.
type NewApplication struct {
	JobID       int64  `json:"job_id"`
	CoverLetter string `json:"cover_letter,omitempty"`
}

// StatusUpdate is the body of PUT /applications/{id}.
type StatusUpdate struct {
	Status ApplicationStatus `json:"status"`
}
