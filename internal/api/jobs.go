// ABOUTME: Job posting, listing and detail calls
// ABOUTME: Order and filtering of the listing are decided by the server

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/2389/gigboard/internal/model"
)

type jobsResponse struct {
	Jobs  []model.JobListing `json:"jobs"`
	Count int                `json:"count"`
}

// CreateJob posts a job as the employer identified by the bearer token.
func (c *Client) CreateJob(ctx context.Context, j model.NewJob) (*model.Job, error) {
	var job model.Job
	if err := c.do(ctx, http.MethodPost, "/jobs", j, &job, "job"); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns the open jobs in server order.
func (c *Client) ListJobs(ctx context.Context) ([]model.JobListing, error) {
	var res jobsResponse
	if err := c.do(ctx, http.MethodGet, "/jobs", nil, &res, ""); err != nil {
		return nil, err
	}
	if res.Jobs == nil {
		res.Jobs = []model.JobListing{}
	}
	return res.Jobs, nil
}

// GetJob fetches one job. A missing job returns an error matching ErrNotFound.
func (c *Client) GetJob(ctx context.Context, jobID int64) (*model.JobListing, error) {
	var job model.JobListing
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d", jobID), nil, &job, ""); err != nil {
		return nil, err
	}
	return &job, nil
}
