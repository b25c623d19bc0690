package transfer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-file-manager/pkg/fault"
)

func TestStartAssignsSequentialIDs(t *testing.T) {
	tracker := NewTracker()

	first := tracker.Start(StartOptions{Source: "a.txt", Destination: "/a.txt", TotalSize: 10})
	second := tracker.Start(StartOptions{Source: "b.txt", Destination: "/b.txt"})

	assert.Equal(t, "transfer_1", first.ID)
	assert.Equal(t, "transfer_2", second.ID)
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, 0, first.Progress)
}

func TestProgressLifecycle(t *testing.T) {
	tracker := NewTracker()
	tr := tracker.Start(StartOptions{Source: "big.bin", Destination: "/big.bin", TotalSize: 1024})

	updated, err := tracker.UpdateProgress(tr.ID, 512)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, updated.Status)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, int64(512), updated.Transferred)

	done, err := tracker.Complete(tr.ID, map[string]any{"path": "/big.bin"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, int64(1024), done.Transferred)
	require.NotNil(t, done.EndTime)
	require.NotNil(t, done.DurationMS)
	assert.GreaterOrEqual(t, *done.DurationMS, int64(0))
}

func TestTerminalStatusIsSticky(t *testing.T) {
	tracker := NewTracker()
	tr := tracker.Start(StartOptions{TotalSize: 100})

	_, err := tracker.Fail(tr.ID, errors.New("disk full"))
	require.NoError(t, err)

	after, err := tracker.UpdateProgress(tr.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, after.Status)
	assert.Equal(t, "disk full", after.Error)

	again, err := tracker.Complete(tr.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, again.Status)
}

func TestProgressClamping(t *testing.T) {
	tracker := NewTracker()

	overshoot := tracker.Start(StartOptions{TotalSize: 100})
	updated, err := tracker.UpdateProgress(overshoot.ID, 999)
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.Transferred)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, StatusCompleted, updated.Status)

	unknown := tracker.Start(StartOptions{TotalSize: 0})
	updated, err = tracker.UpdateProgress(unknown.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Progress, "unknown total size never reports a percentage")
	assert.Equal(t, StatusInProgress, updated.Status)
}

func TestUnknownTransfer(t *testing.T) {
	tracker := NewTracker()

	_, err := tracker.Get("transfer_99")
	require.Error(t, err)
	assert.Equal(t, fault.KindUnknownTransfer, fault.KindOf(err))

	_, err = tracker.UpdateProgress("transfer_99", 1)
	assert.Equal(t, fault.KindUnknownTransfer, fault.KindOf(err))

	assert.Equal(t, fault.KindUnknownTransfer, fault.KindOf(tracker.Remove("transfer_99")))
}

func TestEventOrdering(t *testing.T) {
	tracker := NewTracker()

	var events []EventType
	unsubscribe := tracker.Subscribe(func(event Event) {
		events = append(events, event.Type)
	})
	defer unsubscribe()

	tr := tracker.Start(StartOptions{TotalSize: 100})
	_, err := tracker.UpdateProgress(tr.ID, 40)
	require.NoError(t, err)
	_, err = tracker.UpdateProgress(tr.ID, 100)
	require.NoError(t, err)

	assert.Equal(t, []EventType{EventStarted, EventProgress, EventProgress, EventCompleted}, events)
}

func TestSubscribersReceiveInRegistrationOrder(t *testing.T) {
	tracker := NewTracker()

	var order []string
	tracker.Subscribe(func(Event) { order = append(order, "first") })
	tracker.Subscribe(func(Event) { order = append(order, "second") })

	tracker.Start(StartOptions{})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	tracker := NewTracker()

	count := 0
	unsubscribe := tracker.Subscribe(func(Event) { count++ })

	tracker.Start(StartOptions{})
	unsubscribe()
	tracker.Start(StartOptions{})

	assert.Equal(t, 1, count)
}

func TestUnsubscribeCompactsList(t *testing.T) {
	tracker := NewTracker()

	var order []string
	unsubA := tracker.Subscribe(func(Event) { order = append(order, "a") })
	unsubB := tracker.Subscribe(func(Event) { order = append(order, "b") })
	tracker.Subscribe(func(Event) { order = append(order, "c") })

	unsubB()
	unsubB()

	tracker.Start(StartOptions{})
	assert.Equal(t, []string{"a", "c"}, order)
	assert.Len(t, tracker.subscribers, 2, "removed slots must not linger")

	unsubA()
	assert.Len(t, tracker.subscribers, 1)
}

func TestListOrderAndRemove(t *testing.T) {
	tracker := NewTracker()

	a := tracker.Start(StartOptions{})
	b := tracker.Start(StartOptions{})
	c := tracker.Start(StartOptions{})

	list := tracker.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, tracker.Remove(b.ID))
	list = tracker.List()
	require.Len(t, list, 2)
	assert.Equal(t, []string{a.ID, c.ID}, []string{list[0].ID, list[1].ID})
}

func TestStats(t *testing.T) {
	tracker := NewTracker()

	done := tracker.Start(StartOptions{TotalSize: 10})
	_, err := tracker.Complete(done.ID, nil)
	require.NoError(t, err)

	failed := tracker.Start(StartOptions{TotalSize: 10})
	_, err = tracker.Fail(failed.ID, errors.New("boom"))
	require.NoError(t, err)

	running := tracker.Start(StartOptions{TotalSize: 10})
	_, err = tracker.UpdateProgress(running.ID, 4)
	require.NoError(t, err)

	tracker.Start(StartOptions{})

	stats := tracker.Stats()
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, int64(14), stats.BytesTransferred)
}
