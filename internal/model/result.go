// Package model holds the plain data types passed between tasks, the
// executor and the report builder.
package model

import "time"

// Status is the outcome of one task invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// TaskResult records what one requested task produced. Payload is set only
// on success, Error only on failure.
type TaskResult struct {
	TaskID     string        `json:"task_id" yaml:"task_id"`
	Status     Status        `json:"status" yaml:"status"`
	Payload    any           `json:"payload,omitempty" yaml:"payload,omitempty"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration   time.Duration `json:"-" yaml:"-"`
	DurationMS int64         `json:"duration_ms" yaml:"duration_ms"`
}

func Succeeded(id string, payload any) TaskResult {
	return TaskResult{TaskID: id, Status: StatusSuccess, Payload: payload}
}

func Failed(id, message string) TaskResult {
	return TaskResult{TaskID: id, Status: StatusFailed, Error: message}
}

func (r TaskResult) OK() bool { return r.Status == StatusSuccess }

// WithDuration stamps the elapsed time on a result.
func (r TaskResult) WithDuration(d time.Duration) TaskResult {
	r.Duration = d
	r.DurationMS = d.Milliseconds()
	return r
}

// Count returns the integer payload of a cleanup-style result.
func (r TaskResult) Count() (int64, bool) {
	switch v := r.Payload.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}
