package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

func TestDirectory_Lookup(t *testing.T) {
	d := NewDirectory(domain.DirectoryRecord{PrimaryKey: "P", SecondaryKey: "S", Coordinates: "1,2"})

	rec, err := d.Lookup(context.Background(), domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"})
	require.NoError(t, err)
	assert.Equal(t, "1,2", rec.Coordinates)

	_, err = d.Lookup(context.Background(), domain.TargetKey{PrimaryKey: "P", SecondaryKey: "X"})
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestDirectory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDirectory().Lookup(ctx, domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"})
	assert.ErrorIs(t, err, e.ErrCanceled)
}

func TestEventStore_AppendAndLatest(t *testing.T) {
	now := time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)
	s := NewEventStore(func() time.Time { return now })
	key := domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"}
	ctx := context.Background()

	latest, err := s.Latest(ctx, "a1", key)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first, err := s.Append(ctx, domain.AttendanceEvent{ID: uuid.New(), ActorID: "a1", TargetKey: key, EventType: domain.CheckIn})
	require.NoError(t, err)
	assert.Equal(t, now, first.OccurredAt)

	now = now.Add(10 * time.Minute)
	second, err := s.Append(ctx, domain.AttendanceEvent{ID: uuid.New(), ActorID: "a1", TargetKey: key, EventType: domain.CheckOut})
	require.NoError(t, err)

	latest, err = s.Latest(ctx, "a1", key)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	other, err := s.Latest(ctx, "a2", key)
	require.NoError(t, err)
	assert.Nil(t, other)

	list := s.List("a1")
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
}

func TestEventStore_DuplicateID(t *testing.T) {
	s := NewEventStore(nil)
	ev := domain.AttendanceEvent{ID: uuid.New(), ActorID: "a1", EventType: domain.CheckIn}

	_, err := s.Append(context.Background(), ev)
	require.NoError(t, err)
	_, err = s.Append(context.Background(), ev)
	assert.ErrorIs(t, err, e.ErrUniqueViolation)
}
