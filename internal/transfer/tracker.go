package transfer

import (
	"fmt"
	"sync"
	"time"

	"go-file-manager/pkg/fault"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Transfer is one tracked upload or download. Terminal statuses are
// sticky: once completed or failed, no mutation changes the status.
type Transfer struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	TotalSize   int64      `json:"total_size"`
	Transferred int64      `json:"transferred"`
	Status      Status     `json:"status"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	DurationMS  *int64     `json:"duration_ms,omitempty"`
	Error       string     `json:"error,omitempty"`
	Progress    int        `json:"progress"`
	Result      any        `json:"result,omitempty"`
}

type EventType string

const (
	EventStarted   EventType = "transferStarted"
	EventProgress  EventType = "progressUpdate"
	EventCompleted EventType = "transferCompleted"
	EventFailed    EventType = "transferFailed"
)

type Event struct {
	Type      EventType `json:"type"`
	Transfer  Transfer  `json:"transfer"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber receives events synchronously and in order. Callbacks run
// under the tracker lock: keep them fast and never call back into the
// tracker from one.
type Subscriber func(Event)

type StartOptions struct {
	Source      string
	Destination string
	TotalSize   int64
}

type Stats struct {
	Total            int   `json:"total"`
	Pending          int   `json:"pending"`
	InProgress       int   `json:"in_progress"`
	Completed        int   `json:"completed"`
	Failed           int   `json:"failed"`
	BytesTransferred int64 `json:"bytes_transferred"`
}

// Tracker assigns stable identifiers to in-flight transfers and exposes
// their progress. It is an explicitly owned value handed to whoever needs
// it, not package state.
type subscription struct {
	id int64
	fn Subscriber
}

type Tracker struct {
	mu          sync.Mutex
	transfers   map[string]*Transfer
	order       []string
	nextID      int64
	nextSubID   int64
	subscribers []subscription
}

func NewTracker() *Tracker {
	return &Tracker{transfers: map[string]*Transfer{}}
}

// Subscribe registers a listener; events arrive in registration order.
// The returned function removes the subscription and is safe to call
// more than once.
func (t *Tracker) Subscribe(fn Subscriber) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextSubID++
	id := t.nextSubID
	t.subscribers = append(t.subscribers, subscription{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		for i, sub := range t.subscribers {
			if sub.id == id {
				t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Start registers a transfer and returns its snapshot. IDs are issued as
// "transfer_<N>" with N monotonically increasing from 1.
func (t *Tracker) Start(opts StartOptions) Transfer {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	tr := &Transfer{
		ID:          fmt.Sprintf("transfer_%d", t.nextID),
		Source:      opts.Source,
		Destination: opts.Destination,
		TotalSize:   opts.TotalSize,
		Status:      StatusPending,
		StartTime:   time.Now().UTC(),
	}

	t.transfers[tr.ID] = tr
	t.order = append(t.order, tr.ID)

	snapshot := *tr
	t.emitLocked(EventStarted, snapshot)
	return snapshot
}

// UpdateProgress records transferred bytes, keeping the known total size.
func (t *Tracker) UpdateProgress(id string, transferred int64) (Transfer, error) {
	return t.updateProgress(id, transferred, -1)
}

// UpdateProgressWithTotal records transferred bytes and replaces the
// total size (0 means unknown).
func (t *Tracker) UpdateProgressWithTotal(id string, transferred int64, totalSize int64) (Transfer, error) {
	if totalSize < 0 {
		totalSize = 0
	}

	return t.updateProgress(id, transferred, totalSize)
}

func (t *Tracker) updateProgress(id string, transferred int64, totalSize int64) (Transfer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.lookupLocked(id)
	if err != nil {
		return Transfer{}, err
	}

	if tr.Status == StatusCompleted || tr.Status == StatusFailed {
		return *tr, nil
	}

	if totalSize >= 0 {
		tr.TotalSize = totalSize
	}

	if transferred < 0 {
		transferred = 0
	}
	if tr.TotalSize > 0 && transferred > tr.TotalSize {
		transferred = tr.TotalSize
	}
	tr.Transferred = transferred

	if tr.TotalSize > 0 {
		tr.Progress = int(100 * tr.Transferred / tr.TotalSize)
	} else {
		tr.Progress = 0
	}

	completed := false
	switch {
	case tr.TotalSize > 0 && tr.Progress >= 100:
		tr.Status = StatusCompleted
		tr.Progress = 100
		t.finishLocked(tr)
		completed = true
	case tr.Transferred > 0:
		tr.Status = StatusInProgress
	default:
		tr.Status = StatusPending
	}

	snapshot := *tr
	t.emitLocked(EventProgress, snapshot)
	if completed {
		t.emitLocked(EventCompleted, snapshot)
	}

	return snapshot, nil
}

// Complete marks a transfer successful. Calling it on a terminal transfer
// is a no-op and emits nothing.
func (t *Tracker) Complete(id string, result any) (Transfer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.lookupLocked(id)
	if err != nil {
		return Transfer{}, err
	}

	if tr.Status == StatusCompleted || tr.Status == StatusFailed {
		return *tr, nil
	}

	tr.Status = StatusCompleted
	tr.Progress = 100
	if tr.TotalSize > 0 {
		tr.Transferred = tr.TotalSize
	}
	if result != nil {
		tr.Result = result
	}
	t.finishLocked(tr)

	snapshot := *tr
	t.emitLocked(EventCompleted, snapshot)
	return snapshot, nil
}

// Fail marks a transfer failed with the given cause; idempotent on
// terminal state.
func (t *Tracker) Fail(id string, cause error) (Transfer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.lookupLocked(id)
	if err != nil {
		return Transfer{}, err
	}

	if tr.Status == StatusCompleted || tr.Status == StatusFailed {
		return *tr, nil
	}

	tr.Status = StatusFailed
	if cause != nil {
		tr.Error = cause.Error()
	} else {
		tr.Error = "transfer failed"
	}
	t.finishLocked(tr)

	snapshot := *tr
	t.emitLocked(EventFailed, snapshot)
	return snapshot, nil
}

func (t *Tracker) Get(id string) (Transfer, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr, err := t.lookupLocked(id)
	if err != nil {
		return Transfer{}, err
	}

	return *tr, nil
}

// List returns snapshots in creation order.
func (t *Tracker) List() []Transfer {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Transfer, 0, len(t.order))
	for _, id := range t.order {
		if tr, ok := t.transfers[id]; ok {
			out = append(out, *tr)
		}
	}

	return out
}

func (t *Tracker) Remove(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.lookupLocked(id); err != nil {
		return err
	}

	delete(t.transfers, id)
	for i, existing := range t.order {
		if existing == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}

	return nil
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{Total: len(t.transfers)}
	for _, tr := range t.transfers {
		switch tr.Status {
		case StatusPending:
			stats.Pending++
		case StatusInProgress:
			stats.InProgress++
		case StatusCompleted:
			stats.Completed++
		case StatusFailed:
			stats.Failed++
		}
		stats.BytesTransferred += tr.Transferred
	}

	return stats
}

func (t *Tracker) lookupLocked(id string) (*Transfer, error) {
	tr, ok := t.transfers[id]
	if !ok {
		return nil, fault.New(fault.KindUnknownTransfer, "transfer not found", id)
	}

	return tr, nil
}

func (t *Tracker) finishLocked(tr *Transfer) {
	now := time.Now().UTC()
	tr.EndTime = &now
	duration := now.Sub(tr.StartTime).Milliseconds()
	if duration < 0 {
		duration = 0
	}
	tr.DurationMS = &duration
}

func (t *Tracker) emitLocked(eventType EventType, snapshot Transfer) {
	event := Event{Type: eventType, Transfer: snapshot, Timestamp: time.Now().UTC()}
	for _, sub := range t.subscribers {
		sub.fn(event)
	}
}
