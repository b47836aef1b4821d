package db

import (
	"strings"
	"time"

	"github.com/jonathan/careers-board/internal/types"
)

// StatusNew is the status every candidate starts (and stays) in.
const StatusNew = "New"

// Job represents a posted opening
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Department  string    `json:"department"`
	Location    string    `json:"location"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Candidate represents an application against a job
type Candidate struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"job_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	ResumePath string    `json:"resume_path"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined from jobs; not stored
	JobTitle string `json:"job_title,omitempty"`
}

// JobCreateInput is used when creating a new job
type JobCreateInput struct {
	Title       string
	Department  string
	Location    string
	Type        string
	Description string
}

// Validate reports the first empty required field.
func (in *JobCreateInput) Validate() error {
	return requireFields(
		"title", in.Title,
		"department", in.Department,
		"location", in.Location,
		"type", in.Type,
	)
}

// CandidateCreateInput is used when creating a new candidate
type CandidateCreateInput struct {
	JobID      int64
	Name       string
	Email      string
	ResumePath string
}

// Validate reports the first empty required field.
func (in *CandidateCreateInput) Validate() error {
	if in.JobID <= 0 {
		return &types.ValidationError{Field: "job_id", Message: "job_id must be a positive integer"}
	}
	return requireFields(
		"name", in.Name,
		"email", in.Email,
		"resume_path", in.ResumePath,
	)
}

// requireFields takes alternating field names and values.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return &types.ValidationError{Field: pairs[i], Message: pairs[i] + " is required"}
		}
	}
	return nil
}

// SampleJobs are inserted by SeedJobs into an empty database.
var SampleJobs = []JobCreateInput{
	{
		Title:       "Senior Software Engineer",
		Department:  "Engineering",
		Location:    "Remote",
		Type:        "Full-time",
		Description: "We are looking for a Senior Software Engineer to join our core team...",
	},
	{
		Title:       "Product Manager",
		Department:  "Product",
		Location:    "New York, NY",
		Type:        "Full-time",
		Description: "Lead the vision for our next generation of HR tools...",
	},
	{
		Title:       "UX Designer",
		Department:  "Design",
		Location:    "San Francisco, CA",
		Type:        "Contract",
		Description: "Help us craft beautiful and intuitive user experiences...",
	},
}
