package f1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
)

func collect(t *testing.T, svc *Service, ctx context.Context, year int) ([]StreamEvent, error) {
	t.Helper()

	seq, err := svc.SeasonStream(ctx, year)
	require.NoError(t, err)

	var events []StreamEvent
	for event, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
	return events, nil
}

func TestSeasonStream(t *testing.T) {
	svc, _ := newTestService(t, 0)

	events, err := collect(t, svc, context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, events, 5, "schedule, three events, completion")

	assert.Equal(t, EventData, events[0].Name)
	assert.Equal(t, ScheduleRecord{
		Type:        "schedule",
		Year:        2024,
		TotalRounds: 3,
		Message:     "Starting F1 2024 data stream...",
	}, events[0].Data)

	for i, event := range events[1:4] {
		assert.Equal(t, EventRecord, event.Name)
		record := event.Data.(RoundRecord)
		assert.Equal(t, i, record.Index)
		assert.Equal(t, i+1, record.Event.Round)
	}

	first := events[1].Data.(RoundRecord)
	require.Len(t, first.Podium, 3)
	assert.Equal(t, "VER", first.Podium[0].Driver)
	assert.Equal(t, "SAI", first.Podium[2].Driver)

	third := events[3].Data.(RoundRecord)
	assert.Nil(t, third.Podium, "no podium before results are published")

	assert.Equal(t, EventComplete, events[4].Name)
	assert.Equal(t, CompleteRecord{
		Type:        "complete",
		Year:        2024,
		TotalEvents: 3,
		Message:     "Stream completed",
	}, events[4].Data)
}

func TestSeasonStreamUnknownSeason(t *testing.T) {
	svc, upstream := newTestService(t, 0)

	seq, err := svc.SeasonStream(context.Background(), 1900)
	assert.Nil(t, seq)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.Equal(t, 1, upstream.TotalHits())
}

func TestSeasonStreamSkipsFutureRaces(t *testing.T) {
	svc, upstream := newTestService(t, 0)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }

	events, err := collect(t, svc, context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, events, 5)

	assert.Equal(t, 1, upstream.Hits("/2024/1/results.json"))
	assert.Equal(t, 0, upstream.Hits("/2024/2/results.json"))
	assert.Equal(t, 0, upstream.Hits("/2024/3/results.json"))
}

func TestSeasonStreamMidStreamFailure(t *testing.T) {
	svc, upstream := newTestService(t, 0)

	seq, err := svc.SeasonStream(context.Background(), 2024)
	require.NoError(t, err)

	upstream.FailWith(500)

	var (
		names   []string
		lastErr error
	)
	for event, err := range seq {
		if err != nil {
			lastErr = err
			break
		}
		names = append(names, event.Name)
	}

	assert.Equal(t, []string{EventData}, names)
	assert.ErrorIs(t, lastErr, ErrUpstream)
	assert.True(t, errors.Is(lastErr, ergast.ErrUpstream))

	errorEvent := ErrorEvent(2024, lastErr)
	assert.Equal(t, EventError, errorEvent.Name)
	assert.Equal(t, "error", errorEvent.Data.(ErrorRecord).Type)
}

func TestSeasonStreamPacingAndCancellation(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	seq, err := svc.SeasonStream(ctx, 2024)
	require.NoError(t, err)

	done := make(chan []string)
	go func() {
		var names []string
		for event, err := range seq {
			if err != nil {
				break
			}
			names = append(names, event.Name)
		}
		done <- names
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case names := <-done:
		assert.Equal(t, []string{EventData}, names, "cancellation during the pause ends the stream")
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

func TestSeasonStreamStopsWhenConsumerBreaks(t *testing.T) {
	svc, upstream := newTestService(t, 0)

	seq, err := svc.SeasonStream(context.Background(), 2024)
	require.NoError(t, err)

	for event := range seq {
		assert.Equal(t, EventData, event.Name)
		break
	}
	assert.Equal(t, 0, upstream.Hits("/2024/1/results.json"))
}
