// Package model defines the job board records exchanged with the gig API.
//
// # Records
//
//   - User: identity record for a worker or an employer
//   - Job, JobListing: a posted job, optionally joined with employer and category names
//   - Application: a worker's request to be considered for one job
//   - WorkerApplication, JobApplicant: applications joined with display fields
//
// # Payloads
//
// NewUser, ProfileUpdate and NewJob are request bodies. Each has a Validate
// method that mirrors the server's binding rules so forms can fail fast
// without a round trip. The server remains the authority.
package model
