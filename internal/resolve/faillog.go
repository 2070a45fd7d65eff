package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FailureEntry is one line of the failure log: the query, why it closed,
// and a snapshot of the best candidates that were considered.
type FailureEntry struct {
	Time       string              `json:"time"`
	Query      Query               `json:"query"`
	Reason     string              `json:"reason"`
	Detail     string              `json:"detail,omitempty"`
	Attempted  []string            `json:"attempted,omitempty"`
	Candidates []CandidateSnapshot `json:"candidates,omitempty"`
}

// CandidateSnapshot is the compact candidate form stored in failure-log
// lines.
type CandidateSnapshot struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Artist         string   `json:"artist,omitempty"`
	Status         string   `json:"status,omitempty"`
	Date           string   `json:"date,omitempty"`
	Country        string   `json:"country,omitempty"`
	Disambiguation string   `json:"disambiguation,omitempty"`
	ReleaseGroupID string   `json:"release_group_id,omitempty"`
	Sources        []string `json:"sources,omitempty"`
	Score          float64  `json:"score"`
	BaseScore      float64  `json:"base_score"`
}

// FailureLog appends newline-delimited JSON entries to a file. Writes are
// flushed to disk before the lock is released so a crash never loses a
// recorded failure. Logging errors are reported through the hook and
// never propagate to the resolution pipeline.
type FailureLog struct {
	path    string
	mu      sync.Mutex
	now     func() time.Time
	onError func(error)
}

// NewFailureLog creates a failure log writing to path. onError may be
// nil.
func NewFailureLog(path string, onError func(error)) *FailureLog {
	return &FailureLog{
		path:    path,
		now:     time.Now,
		onError: onError,
	}
}

// Record appends one entry. Safe for concurrent use.
func (l *FailureLog) Record(q Query, reason, detail string, attempted []string, candidates []ScoredCandidate) {
	entry := FailureEntry{
		Time:       l.now().UTC().Format(time.RFC3339),
		Query:      q,
		Reason:     reason,
		Detail:     detail,
		Attempted:  attempted,
		Candidates: snapshotCandidates(candidates),
	}

	if err := l.append(entry); err != nil {
		if l.onError != nil {
			l.onError(err)
		}
	}
}

func (l *FailureLog) append(entry FailureEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	return nil
}

func snapshotCandidates(candidates []ScoredCandidate) []CandidateSnapshot {
	n := min(len(candidates), maxSnapshotCandidates)
	if n == 0 {
		return nil
	}
	snaps := make([]CandidateSnapshot, 0, n)
	for _, c := range candidates[:n] {
		snaps = append(snaps, CandidateSnapshot{
			ID:             c.ID,
			Title:          c.Title,
			Artist:         c.Artist,
			Status:         c.Status,
			Date:           c.Date,
			Country:        c.Country,
			Disambiguation: c.Disambiguation,
			ReleaseGroupID: c.ReleaseGroupID,
			Sources:        c.Sources,
			Score:          c.Score,
			BaseScore:      c.BaseScore,
		})
	}
	return snaps
}
