package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatventas/commerce-service/internal/events"
)

func TestHubDeliversToConversationSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	_, ch1 := hub.Subscribe("conv-1")
	_, ch2 := hub.Subscribe("conv-1")
	_, other := hub.Subscribe("conv-2")

	hub.Publish("conv-1", events.TopicOrderCreated, map[string]string{"order_number": "ORD-20260829-0001"})

	for _, ch := range []<-chan Envelope{ch1, ch2} {
		select {
		case env := <-ch:
			assert.Equal(t, events.TopicOrderCreated, env.Topic)
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}

	select {
	case <-other:
		t.Fatal("conv-2 subscriber must not receive conv-1 events")
	default:
	}
}

func TestHubOfflineSubscribersMissEvents(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	// Published before anyone subscribed: gone.
	hub.Publish("conv-1", events.TopicTicketCreated, nil)

	_, ch := hub.Subscribe("conv-1")
	select {
	case <-ch:
		t.Fatal("event published before subscribe must not be delivered")
	default:
	}
}

func TestHubUnsubscribeClosesChannelIdempotently(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)

	id, ch := hub.Subscribe("conv-1")
	require.Equal(t, 1, hub.SubscriberCount("conv-1"))

	hub.Unsubscribe("conv-1", id)
	hub.Unsubscribe("conv-1", id)
	assert.Zero(t, hub.SubscriberCount("conv-1"))

	_, open := <-ch
	assert.False(t, open)
}

func TestHubSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	_, ch := hub.Subscribe("conv-1")

	// Overflow the buffer; extra events are dropped, not blocking.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish("conv-1", events.TopicSessionStatusChanged, i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, received)
}
