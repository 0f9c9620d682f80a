package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneDefaultsToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, Session{}.Zone())

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, tokyo, Session{Location: tokyo}.Zone())
}

func TestRegistryNotifiesSubscribers(t *testing.T) {
	registry := NewRegistry()

	var got []Event
	registry.Subscribe(func(s Session, e Event) {
		assert.Equal(t, "user-1", s.UserID)
		got = append(got, e)
	})
	registry.Subscribe(func(s Session, e Event) {
		got = append(got, e)
	})

	registry.Notify(Session{UserID: "user-1"}, Began)
	registry.Notify(Session{UserID: "user-1"}, Ended)

	assert.Equal(t, []Event{Began, Began, Ended, Ended}, got)
}

func TestRegistryWithNoSubscribers(t *testing.T) {
	registry := NewRegistry()
	// Must not panic.
	registry.Notify(Session{UserID: "user-1"}, Began)
}
