package subscription

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishToSubscribers(t *testing.T) {
	hub := NewHub()
	topic := Topic("pending", 1001)

	var got []interface{}
	unsub := hub.Subscribe(topic, func(payload interface{}) {
		got = append(got, payload)
	})
	defer unsub()

	hub.Publish(topic, "snapshot-1")
	hub.Publish(topic, "snapshot-2")

	require.Len(t, got, 2)
	assert.Equal(t, "snapshot-1", got[0])
	assert.Equal(t, "snapshot-2", got[1])
}

func TestHubTopicIsolation(t *testing.T) {
	hub := NewHub()

	var pendingCount, sentCount int
	hub.Subscribe(Topic("pending", 1), func(interface{}) { pendingCount++ })
	hub.Subscribe(Topic("sent", 1), func(interface{}) { sentCount++ })

	hub.Publish(Topic("pending", 1), nil)
	hub.Publish(Topic("pending", 2), nil)

	assert.Equal(t, 1, pendingCount)
	assert.Equal(t, 0, sentCount)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	topic := Topic("connections", 7)

	count := 0
	unsub := hub.Subscribe(topic, func(interface{}) { count++ })

	hub.Publish(topic, nil)
	unsub()
	hub.Publish(topic, nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, hub.SubscriberCount(topic))

	// 重复退订是空操作
	unsub()
}

func TestHubMultipleSubscribers(t *testing.T) {
	hub := NewHub()
	topic := Topic("notifications", 42)

	first, second := 0, 0
	hub.Subscribe(topic, func(interface{}) { first++ })
	unsubSecond := hub.Subscribe(topic, func(interface{}) { second++ })

	hub.Publish(topic, nil)
	assert.Equal(t, 2, hub.SubscriberCount(topic))

	unsubSecond()
	hub.Publish(topic, nil)

	assert.Equal(t, 2, first)
	assert.Equal(t, 1, second)
}

func TestHubConcurrentPublish(t *testing.T) {
	hub := NewHub()
	topic := Topic("pending", 9)

	var mu sync.Mutex
	count := 0
	hub.Subscribe(topic, func(interface{}) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish(topic, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, count)
}
