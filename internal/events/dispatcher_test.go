package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesEverySubscriber(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var seen []string

	d.Subscribe(EventAccountDeleted, func(_ context.Context, e Event) error {
		seen = append(seen, "first:"+e.SubjectID)
		return errors.New("boom")
	})
	d.Subscribe(EventAccountDeleted, func(_ context.Context, e Event) error {
		seen = append(seen, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventIssueSubmitted, func(_ context.Context, e Event) error {
		seen = append(seen, "unexpected")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventAccountDeleted, SubjectID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:acc-1", "second:acc-1"}, seen)
}
