package eventbus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishNotifiesMatchingSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var all, created []EventType

	bus.Subscribe(nil, func(e *Event) {
		mu.Lock()
		defer mu.Unlock()
		all = append(all, e.Type)
	})
	bus.Subscribe([]EventType{EventProcessCreated}, func(e *Event) {
		mu.Lock()
		defer mu.Unlock()
		created = append(created, e.Type)
	})

	bus.Publish(NewEvent(EventProcessCreated).WithData("pid", 10))
	bus.Publish(NewEvent(EventProcessReaped).WithData("pid", 10))
	bus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []EventType{EventProcessCreated, EventProcessReaped}, all)
	assert.Equal(t, []EventType{EventProcessCreated}, created)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	id := bus.Subscribe(nil, func(*Event) { calls++ })
	require.NotEmpty(t, id)

	bus.Unsubscribe(id)
	bus.Publish(NewEvent(EventProcessPruned))
	bus.Wait()

	assert.Equal(t, 0, calls)
}

func TestHistoryIsBounded(t *testing.T) {
	bus := NewBusWithLimit(2)
	bus.Publish(NewEvent(EventProcessCreated).WithData("pid", 1))
	bus.Publish(NewEvent(EventProcessCreated).WithData("pid", 2))
	bus.Publish(NewEvent(EventProcessCreated).WithData("pid", 3))

	history := bus.GetHistory(0)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Data["pid"])
	assert.Equal(t, 3, history[1].Data["pid"])

	last := bus.GetHistory(1)
	require.Len(t, last, 1)
	assert.Equal(t, 3, last[0].Data["pid"])
}

func TestGetHistoryByType(t *testing.T) {
	bus := NewBus()
	bus.Publish(NewEvent(EventProcessCreated))
	bus.Publish(NewEvent(EventSignalFailed))
	bus.Publish(NewEvent(EventProcessReaped))

	got := bus.GetHistoryByType([]EventType{EventProcessCreated, EventProcessReaped}, 10)
	require.Len(t, got, 2)
	assert.Equal(t, EventProcessCreated, got[0].Type)
	assert.Equal(t, EventProcessReaped, got[1].Type)
}

func TestEventJSON(t *testing.T) {
	data, err := NewEvent(EventProcessSignaled).WithSource("supervisor").WithData("pid", 7).JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"process.signaled"`)
	assert.Contains(t, string(data), `"source":"supervisor"`)
}
