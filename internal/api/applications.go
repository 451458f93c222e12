// ABOUTME: Application submit, list and status update calls
// ABOUTME: The applying worker is identified by the bearer token, never the body

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/2389/gigboard/internal/model"
)

// ErrInvalidStatus is returned for status updates other than accepted or rejected.
var ErrInvalidStatus = errors.New("status must be accepted or rejected")

type applicationsResponse[T any] struct {
	Applications []T `json:"applications"`
	Count        int `json:"count"`
}

// ApplyToJob submits an application for jobID with an optional cover letter.
func (c *Client) ApplyToJob(ctx context.Context, jobID int64, coverLetter string) (*model.Application, error) {
	body := model.NewApplication{JobID: jobID, CoverLetter: coverLetter}
	var app model.Application
	if err := c.do(ctx, http.MethodPost, "/applications", body, &app, "application"); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListWorkerApplications returns a worker's applications joined with job fields.
func (c *Client) ListWorkerApplications(ctx context.Context, workerID int64) ([]model.WorkerApplication, error) {
	var res applicationsResponse[model.WorkerApplication]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/applications/worker/%d", workerID), nil, &res, ""); err != nil {
		return nil, err
	}
	if res.Applications == nil {
		res.Applications = []model.WorkerApplication{}
	}
	return res.Applications, nil
}

// ListJobApplications returns the applications for one job joined with worker fields.
func (c *Client) ListJobApplications(ctx context.Context, jobID int64) ([]model.JobApplicant, error) {
	var res applicationsResponse[model.JobApplicant]
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/applications/job/%d", jobID), nil, &res, ""); err != nil {
		return nil, err
	}
	if res.Applications == nil {
		res.Applications = []model.JobApplicant{}
	}
	return res.Applications, nil
}

// UpdateApplicationStatus accepts or rejects an application.
func (c *Client) UpdateApplicationStatus(ctx context.Context, applicationID int64, status model.ApplicationStatus) (*model.Application, error) {
	if status != model.StatusAccepted && status != model.StatusRejected {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	var app model.Application
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/applications/%d", applicationID),
		model.StatusUpdate{Status: status}, &app, "application"); err != nil {
		return nil, err
	}
	return &app, nil
}
