package ogc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// minPollInterval floors the caller-supplied poll interval so a
// misconfigured caller cannot hammer the upstream server.
const minPollInterval = 500 * time.Millisecond

type jobDoc struct {
	JobID     string `json:"jobID"`
	Status    string `json:"status"`
	ProcessID string `json:"processID"`
	Message   string `json:"message"`
	Progress  *int   `json:"progress"`
	Created   string `json:"created"`
	Finished  string `json:"finished"`
}

// GetJobStatus fetches the current status of an asynchronous job.
// Returns ErrJobNotFound when the server answers 404.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	var doc jobDoc
	err := c.get(ctx, "/jobs/"+jobID, nil, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("job %q not found on %s, it may have expired or never existed: %w", jobID, c.baseURL, ErrJobNotFound)
	}
	if err != nil {
		return nil, err
	}

	job := &Job{
		JobID:     doc.JobID,
		Status:    JobStatus(doc.Status),
		ProcessID: doc.ProcessID,
		Message:   doc.Message,
		Progress:  doc.Progress,
		Created:   doc.Created,
		Finished:  doc.Finished,
	}
	if job.JobID == "" {
		job.JobID = jobID
	}
	if job.Status == "" {
		job.Status = "unknown"
	}
	return job, nil
}

// GetJobResults retrieves the output of a completed job. Only valid
// after the job reached status "successful"; calling earlier surfaces
// whatever error the upstream returns.
func (c *Client) GetJobResults(ctx context.Context, jobID string) (map[string]any, error) {
	var out map[string]any
	err := c.get(ctx, "/jobs/"+jobID+"/results", nil, &out)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("job %q not found on %s: %w", jobID, c.baseURL, ErrJobNotFound)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PollJobUntilComplete polls a job's status every interval until it
// reaches a terminal state or maxWait elapses. The interval is floored
// at 500ms. This is the only retry/polling loop in the system.
//
// Returns the job when it completes successfully. A job that fails or
// is dismissed yields ErrExecutionFailed carrying the server's message;
// exceeding maxWait yields ErrTimeout naming the last observed status.
// Cancel the context to stop polling early.
func (c *Client) PollJobUntilComplete(ctx context.Context, jobID string, interval, maxWait time.Duration) (*Job, error) {
	if interval < minPollInterval {
		interval = minPollInterval
	}
	deadline := time.Now().Add(maxWait)
	lastStatus := JobStatus("unknown")

	for {
		job, err := c.GetJobStatus(ctx, jobID)
		if err != nil {
			return nil, err
		}

		switch job.Status {
		case JobSuccessful:
			return job, nil
		case JobFailed:
			msg := job.Message
			if msg == "" {
				msg = "no details provided"
			}
			return nil, fmt.Errorf("job %q failed, server message: %s: %w", jobID, msg, ErrExecutionFailed)
		case JobDismissed:
			return nil, fmt.Errorf("job %q was dismissed before completion: %w", jobID, ErrExecutionFailed)
		}
		lastStatus = job.Status

		if !time.Now().Before(deadline) {
			return nil, fmt.Errorf("job %q did not complete within %s, last status %q: %w", jobID, maxWait, lastStatus, ErrTimeout)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
