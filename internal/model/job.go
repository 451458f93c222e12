// ABOUTME: Job record, listing join, and the job posting payload
// ABOUTME: Expiry is evaluated client-side for display only

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expiry bounds accepted by the server for a new posting.
const (
	MinExpiryDays     = 1
	MaxExpiryDays     = 7
	DefaultExpiryDays = 3
)

// Job is a posting created by an employer.
type Job struct {
	ID           int64     `json:"id"`
	EmployerID   int64     `json:"employer_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	CategoryID   *int      `json:"category_id,omitempty"`
	Location     string    `json:"location"`
	SalaryMin    *float64  `json:"salary_min,omitempty"`
	SalaryMax    *float64  `json:"salary_max,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Status       string    `json:"status,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired reports whether the job's expiry is at or before now. The server
// decides whether a job still accepts applications.
func (j Job) Expired(now time.Time) bool {
	return !j.ExpiresAt.IsZero() && !j.ExpiresAt.After(now)
}

// SalaryRange formats the hourly salary band. ok is false unless both ends
// are set.
func (j Job) SalaryRange() (string, bool) {
	return formatSalary(j.SalaryMin, j.SalaryMax)
}

// JobListing is a job joined with its employer and category display names.
type JobListing struct {
	Job
	EmployerName string `json:"employer_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// NewJob is the body of POST /jobs. The employer comes from the bearer token.
type NewJob struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	CategoryID   *int     `json:"category_id"`
	Location     string   `json:"location"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	Duration     string   `json:"duration,omitempty"`
	Requirements string   `json:"requirements,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ExpiryDays   int      `json:"expiry_days"`
}

// Validate checks the posting form before it is sent.
func (j NewJob) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return &FieldError{Field: "title", Message: "Job title is required"}
	}
	if strings.TrimSpace(j.Description) == "" {
		return &FieldError{Field: "description", Message: "Description is required"}
	}
	if strings.TrimSpace(j.Location) == "" {
		return &FieldError{Field: "location", Message: "Location is required"}
	}
	if j.CategoryID != nil {
		if _, ok := CategoryName(*j.CategoryID); !ok {
			return &FieldError{Field: "category_id", Message: "Unknown category"}
		}
	}
	if j.SalaryMin != nil && *j.SalaryMin < 0 {
		return &FieldError{Field: "salary_min", Message: "Salary cannot be negative"}
	}
	if j.SalaryMax != nil && *j.SalaryMax < 0 {
		return &FieldError{Field: "salary_max", Message: "Salary cannot be negative"}
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		return &FieldError{Field: "salary_max", Message: "Maximum salary must be at least the minimum"}
	}
	if j.ExpiryDays < MinExpiryDays || j.ExpiryDays > MaxExpiryDays {
		return &FieldError{Field: "expiry_days", Message: fmt.Sprintf("Expiry must be between %d and %d days", MinExpiryDays, MaxExpiryDays)}
	}
	return validateEmail("contact_email", j.ContactEmail, false)
}

// Category is one of the fixed job categories.
type Category struct {
	ID   int
	Name string
}

// Categories lists the job categories known to the server.
var Categories = []Category{
	{1, "Retail & Sales"},
	{2, "Food Service"},
	{3, "Delivery & Logistics"},
	{4, "Tutoring"},
	{5, "Data Entry"},
	{6, "Cleaning"},
	{7, "Event Help"},
	{8, "Tech Support"},
	{9, "Content Creation"},
	{10, "General Labor"},
}

// CategoryName returns the display name for a category ID.
func CategoryName(id int) (string, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}

func formatSalary(min, max *float64) (string, bool) {
	if min == nil || max == nil {
		return "", false
	}
	return fmt.Sprintf("₹%s - ₹%s per hour", formatAmount(*min), formatAmount(*max)), true
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
