package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New()
	var got1, got2 []Event
	b.Subscribe(func(e Event) { got1 = append(got1, e) })
	b.Subscribe(func(e Event) { got2 = append(got2, e) })

	b.Publish(AppointmentsChanged{})
	b.Publish(SelectAppointment{AppointmentID: "apt-1", OpenDetail: true})

	assert.Len(t, got1, 2)
	assert.Len(t, got2, 2)
	sel, ok := got1[1].(SelectAppointment)
	assert.True(t, ok)
	assert.Equal(t, "apt-1", sel.AppointmentID)
	assert.True(t, sel.OpenDetail)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	var got int
	cancel := b.Subscribe(func(Event) { got++ })

	b.Publish(NotificationsChanged{})
	cancel()
	b.Publish(NotificationsChanged{})

	assert.Equal(t, 1, got)
}

func TestSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	b := New()
	var cancel func()
	var got int
	cancel = b.Subscribe(func(Event) {
		got++
		cancel()
	})

	b.Publish(AppointmentsChanged{})
	b.Publish(AppointmentsChanged{})

	assert.Equal(t, 1, got)
}
