package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "vouch/pkg/domain"
	"vouch/pkg/requestcontext"
)

const chromeOnMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type captureSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *captureSink) Publish(ctx context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func TestEmitRecordsSubmitterContext(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store, nil, nil)
	userID := id.UserID(uuid.New())

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", chromeOnMac)

	publisher.Emit(ctx, userID, ActionSubmissionCreated, map[string]string{"submission_id": "abc"})

	events, err := publisher.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Equal(t, ActionSubmissionCreated, event.Action)
	assert.Equal(t, at, event.Timestamp)
	assert.Equal(t, "203.0.113.9", event.IP)
	assert.Contains(t, event.Browser, "Chrome")
	assert.Equal(t, "Mac OS X", event.OS)
	assert.False(t, event.Mobile)
	assert.Equal(t, "abc", event.Metadata["submission_id"])
}

func TestEmitWithoutRequestMetadata(t *testing.T) {
	store := NewInMemoryStore()
	publisher := NewPublisher(store, nil, nil)
	userID := id.UserID(uuid.New())

	publisher.Emit(context.Background(), userID, ActionDocumentUploaded, nil)

	events, err := publisher.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Empty(t, events[0].IP)
	assert.Empty(t, events[0].Browser)
}

func TestEmitFansOutToSink(t *testing.T) {
	sink := &captureSink{}
	publisher := NewPublisher(NewInMemoryStore(), sink, nil)
	userID := id.UserID(uuid.New())

	publisher.Emit(context.Background(), userID, ActionSubmissionApproved, nil)

	require.Len(t, sink.events, 1)
	assert.Equal(t, ActionSubmissionApproved, sink.events[0].Action)
}

func TestListFiltersByUser(t *testing.T) {
	publisher := NewPublisher(NewInMemoryStore(), nil, nil)
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())

	publisher.Emit(context.Background(), alice, ActionSubmissionCreated, nil)
	publisher.Emit(context.Background(), bob, ActionSubmissionCreated, nil)
	publisher.Emit(context.Background(), alice, ActionSubmissionApproved, nil)

	events, err := publisher.List(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, ActionSubmissionCreated, events[0].Action)
	assert.Equal(t, ActionSubmissionApproved, events[1].Action)
}
