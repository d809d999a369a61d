package ogc

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// jobSequence serves a scripted sequence of status documents, one per
// poll, holding the last one once exhausted.
type jobSequence struct {
	mu    sync.Mutex
	docs  []map[string]any
	polls int
}

func (s *jobSequence) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	idx := s.polls
	if idx >= len(s.docs) {
		idx = len(s.docs) - 1
	}
	s.polls++
	doc := s.docs[idx]
	s.mu.Unlock()
	writeDoc(w, doc)
}

func (s *jobSequence) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func TestGetJobStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/j1", r.URL.Path)
		writeDoc(w, map[string]any{
			"jobID":     "j1",
			"processID": "buffer",
			"status":    "running",
			"progress":  40,
		})
	})

	job, err := client.GetJobStatus(context.Background(), "j1")
	require.NoError(t, err)
	require.Equal(t, "j1", job.JobID)
	require.Equal(t, JobRunning, job.Status)
	require.Equal(t, "buffer", job.ProcessID)
	require.NotNil(t, job.Progress)
	require.Equal(t, 40, *job.Progress)
	require.False(t, job.Status.Terminal())
}

func TestGetJobStatus_Defaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeDoc(w, map[string]any{})
	})

	job, err := client.GetJobStatus(context.Background(), "j1")
	require.NoError(t, err)
	require.Equal(t, "j1", job.JobID)
	require.Equal(t, JobStatus("unknown"), job.Status)
}

func TestGetJobStatus_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.GetJobStatus(context.Background(), "gone")
	require.ErrorIs(t, err, ErrJobNotFound)
	require.ErrorIs(t, err, ErrClient)
}

func TestPollJobUntilComplete_Success(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "accepted"},
		{"jobID": "j1", "status": "running"},
		{"jobID": "j1", "status": "successful"},
	}}
	client := newTestClient(t, seq.handler)

	job, err := client.PollJobUntilComplete(context.Background(), "j1", time.Millisecond, 30*time.Second)
	require.NoError(t, err)
	require.Equal(t, JobSuccessful, job.Status)
	require.Equal(t, 3, seq.pollCount())
}

func TestPollJobUntilComplete_Failed(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "running"},
		{"jobID": "j1", "status": "failed", "message": "out of memory"},
	}}
	client := newTestClient(t, seq.handler)

	_, err := client.PollJobUntilComplete(context.Background(), "j1", time.Millisecond, 30*time.Second)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Contains(t, err.Error(), "out of memory")
}

func TestPollJobUntilComplete_FailedWithoutMessage(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "failed"},
	}}
	client := newTestClient(t, seq.handler)

	_, err := client.PollJobUntilComplete(context.Background(), "j1", time.Millisecond, 30*time.Second)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Contains(t, err.Error(), "no details provided")
}

func TestPollJobUntilComplete_Dismissed(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "dismissed"},
	}}
	client := newTestClient(t, seq.handler)

	_, err := client.PollJobUntilComplete(context.Background(), "j1", time.Millisecond, 30*time.Second)
	require.ErrorIs(t, err, ErrExecutionFailed)
	require.Contains(t, err.Error(), "dismissed")
}

func TestPollJobUntilComplete_Timeout(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "running"},
	}}
	client := newTestClient(t, seq.handler)

	// maxWait of zero expires after the first non-terminal poll.
	_, err := client.PollJobUntilComplete(context.Background(), "j1", time.Millisecond, 0)
	require.ErrorIs(t, err, ErrTimeout)
	require.Contains(t, err.Error(), `"running"`)
	require.Equal(t, 1, seq.pollCount())
}

func TestPollJobUntilComplete_ContextCancel(t *testing.T) {
	seq := &jobSequence{docs: []map[string]any{
		{"jobID": "j1", "status": "running"},
	}}
	client := newTestClient(t, seq.handler)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// A generous interval ensures cancellation happens mid-wait.
	_, err := client.PollJobUntilComplete(ctx, "j1", 10*time.Second, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGetJobResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/j1/results", r.URL.Path)
		writeDoc(w, map[string]any{"output": "value"})
	})

	out, err := client.GetJobResults(context.Background(), "j1")
	require.NoError(t, err)
	require.Equal(t, "value", out["output"])
}
