package client

import (
	"encoding/json"
)

// Job statuses reported by the server.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Job is a submission as reported by the server. Fields the client does not
// model are kept in Raw.
type Job struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	ResultData   json.RawMessage `json:"result_data,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Raw          map[string]any  `json:"-"`
}

// UnmarshalJSON fills the modelled fields and Raw from one document.
func (j *Job) UnmarshalJSON(data []byte) error {
	type plain Job
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*j = Job(p)
	j.Raw = raw
	if j.Status == "" {
		j.Status = "unknown"
	}
	return nil
}

// Done reports whether the job reached a terminal status.
func (j *Job) Done() bool {
	return j.Status == StatusComplete || j.Status == StatusFailed
}

// Result is the outcome of a finished job.
type Result struct {
	JobID  string          `json:"job_id"`
	Status string          `json:"status"`
	Data   json.RawMessage `json:"result_data,omitempty"`
	Error  string          `json:"error,omitempty"`
	// Cached is set when the result was served from the submission cache.
	Cached bool `json:"cached,omitempty"`
}

// ResultFromJob converts a terminal job.
func ResultFromJob(j *Job) *Result {
	return &Result{
		JobID:  j.ID,
		Status: j.Status,
		Data:   j.ResultData,
		Error:  j.ErrorMessage,
	}
}

type resultData struct {
	WellImages      map[string]string `json:"well_images"`
	DurationSeconds float64           `json:"duration_seconds"`
}

func (r *Result) data() resultData {
	var d resultData
	if len(r.Data) > 0 {
		// Non-object results carry neither field.
		_ = json.Unmarshal(r.Data, &d)
	}
	return d
}

// WellImages maps well labels to base64 data URIs of a successful result.
func (r *Result) WellImages() map[string]string {
	images := r.data().WellImages
	if images == nil {
		return map[string]string{}
	}
	return images
}

// DurationSeconds is the lab execution time of a successful result.
func (r *Result) DurationSeconds() float64 {
	return r.data().DurationSeconds
}

// User is the authenticated account.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Enrollment is the user's active challenge.
type Enrollment struct {
	ChallengeID       string `json:"challenge_id"`
	TargetImageBase64 string `json:"target_image_base64"`
}

// LeaderboardEntry is one ranked participant.
type LeaderboardEntry struct {
	UserName  string   `json:"user_name"`
	BestScore *float64 `json:"best_score"`
}
