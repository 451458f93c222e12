// ABOUTME: Route handlers for the API double
// ABOUTME: Mirror the real server's envelopes, status codes and error strings

package apitest

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/gigboard/internal/model"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	UserType string `json:"user_type" binding:"required,oneof=worker employer"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Bio      string `json:"bio"`
}

type createJobRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	CategoryID   *int     `json:"category_id"`
	Location     string   `json:"location" binding:"required"`
	SalaryMin    *float64 `json:"salary_min"`
	SalaryMax    *float64 `json:"salary_max"`
	Duration     string   `json:"duration"`
	Requirements string   `json:"requirements"`
	ContactPhone string   `json:"contact_phone"`
	ContactEmail string   `json:"contact_email"`
	ExpiryDays   int      `json:"expiry_days" binding:"required,min=1,max=7"`
}

type applyRequest struct {
	JobID       int64  `json:"job_id" binding:"required"`
	CoverLetter string `json:"cover_letter"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			s.mu.Unlock()
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
	}
	s.mu.Unlock()

	user := s.SeedUser(req.Email, req.Password, req.FullName, model.UserType(req.UserType))
	s.mu.Lock()
	rec := s.users[user.ID]
	rec.Phone = req.Phone
	rec.Location = req.Location
	user = rec.User
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	var found *userRecord
	for _, u := range s.users {
		if strings.EqualFold(u.Email, req.Email) {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	s.mu.Lock()
	ttl := s.tokenTTL
	user := found.User
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   s.IssueToken(user, ttl),
		"user":    user,
	})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	rec, found := s.users[id]
	s.mu.Unlock()
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, rec.User)
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if mustClaims(c).UserID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	rec, found := s.users[id]
	if found {
		rec.FullName = req.FullName
		rec.Phone = req.Phone
		rec.Location = req.Location
		rec.Bio = req.Bio
	}
	var profile model.User
	if found {
		profile = rec.User
	}
	s.mu.Unlock()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

func (s *Server) handleCreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := s.clock().UTC()
	job := s.SeedJob(model.Job{
		EmployerID:   mustClaims(c).UserID,
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Location:     req.Location,
		SalaryMin:    req.SalaryMin,
		SalaryMax:    req.SalaryMax,
		Duration:     req.Duration,
		Requirements: req.Requirements,
		ContactPhone: req.ContactPhone,
		ContactEmail: req.ContactEmail,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Duration(req.ExpiryDays) * 24 * time.Hour),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Job created successfully",
		"job":     job,
	})
}

func (s *Server) handleListJobs(c *gin.Context) {
	now := s.clock()

	s.mu.Lock()
	jobs := make([]model.JobListing, 0, len(s.jobs))
	for _, j := range s.jobs {
		if j.Status != "open" || !j.ExpiresAt.After(now) {
			continue
		}
		jobs = append(jobs, s.listingLocked(*j))
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].CreatedAt.Equal(jobs[k].CreatedAt) {
			return jobs[i].ID > jobs[k].ID
		}
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

func (s *Server) handleGetJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s.mu.Lock()
	j, found := s.jobs[id]
	var listing model.JobListing
	if found {
		listing = s.listingLocked(*j)
	}
	s.mu.Unlock()

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleApply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	workerID := mustClaims(c).UserID
	now := s.clock()

	s.mu.Lock()
	var job model.Job
	stored, found := s.jobs[req.JobID]
	if found {
		job = *stored
	}
	var duplicate bool
	for _, a := range s.apps {
		if a.JobID == req.JobID && a.WorkerID == workerID && a.Status != model.StatusWithdrawn {
			duplicate = true
			break
		}
	}
	s.mu.Unlock()

	switch {
	case !found:
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	case job.Status != "open":
		c.JSON(http.StatusBadRequest, gin.H{"error": "This job is no longer accepting applications"})
		return
	case !job.ExpiresAt.After(now):
		c.JSON(http.StatusBadRequest, gin.H{"error": "This job has expired"})
		return
	case duplicate:
		c.JSON(http.StatusConflict, gin.H{"error": "You have already applied to this job"})
		return
	}

	app := s.SeedApplication(model.Application{
		JobID:       req.JobID,
		WorkerID:    workerID,
		CoverLetter: req.CoverLetter,
		Status:      model.StatusPending,
		AppliedAt:   now.UTC(),
	})
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Application submitted successfully",
		"application": app,
	})
}

func (s *Server) handleWorkerApplications(c *gin.Context) {
	workerID, ok := pathID(c, "workerId")
	if !ok {
		return
	}
	if mustClaims(c).UserID != workerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only view your own applications"})
		return
	}

	s.mu.Lock()
	out := []model.WorkerApplication{}
	for _, a := range s.apps {
		if a.WorkerID != workerID {
			continue
		}
		row := model.WorkerApplication{Application: *a}
		if j, ok := s.jobs[a.JobID]; ok {
			row.JobTitle = j.Title
			row.Location = j.Location
			row.SalaryMin = j.SalaryMin
			row.SalaryMax = j.SalaryMax
			if emp, ok := s.users[j.EmployerID]; ok {
				row.EmployerName = emp.FullName
			}
		}
		out = append(out, row)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	c.JSON(http.StatusOK, gin.H{"applications": out, "count": len(out)})
}

func (s *Server) handleJobApplications(c *gin.Context) {
	jobID, ok := pathID(c, "jobId")
	if !ok {
		return
	}

	s.mu.Lock()
	j, found := s.jobs[jobID]
	if !found {
		s.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if j.EmployerID != mustClaims(c).UserID {
		s.mu.Unlock()
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only review applications for your own jobs"})
		return
	}
	out := []model.JobApplicant{}
	for _, a := range s.apps {
		if a.JobID != jobID {
			continue
		}
		row := model.JobApplicant{Application: *a}
		if w, ok := s.users[a.WorkerID]; ok {
			row.WorkerName = w.FullName
			row.WorkerEmail = w.Email
			row.WorkerPhone = w.Phone
			row.WorkerLocation = w.Location
		}
		out = append(out, row)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, k int) bool { return out[i].ID > out[k].ID })
	c.JSON(http.StatusOK, gin.H{"applications": out, "count": len(out)})
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	app, found := s.apps[id]
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Application not found"})
		return
	}
	if j, ok := s.jobs[app.JobID]; !ok || j.EmployerID != mustClaims(c).UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only review applications for your own jobs"})
		return
	}
	if app.Status != model.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending applications can be updated"})
		return
	}
	app.Status = model.ApplicationStatus(req.Status)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Application status updated",
		"application": *app,
	})
}

// listingLocked joins a job with display names. Callers hold s.mu.
func (s *Server) listingLocked(j model.Job) model.JobListing {
	l := model.JobListing{Job: j}
	if emp, ok := s.users[j.EmployerID]; ok {
		l.EmployerName = emp.FullName
	}
	if j.CategoryID != nil {
		l.CategoryName, _ = model.CategoryName(*j.CategoryID)
	}
	return l
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
