package f1

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/rs/zerolog/log"
)

// Season stream event names
const (
	EventData     = "f1_data"
	EventRecord   = "f1_event"
	EventComplete = "f1_complete"
	EventError    = "f1_error"
)

// StreamEvent is one record of a season stream
type StreamEvent struct {
	Name string
	Data any
}

type ScheduleRecord struct {
	Type        string `json:"type"`
	Year        int    `json:"year"`
	TotalRounds int    `json:"total_rounds"`
	Message     string `json:"message"`
}

type RoundRecord struct {
	Type   string        `json:"type"`
	Year   int           `json:"year"`
	Index  int           `json:"index"`
	Event  ScheduleEvent `json:"event"`
	Podium []PodiumEntry `json:"podium,omitempty"`
}

type CompleteRecord struct {
	Type        string `json:"type"`
	Year        int    `json:"year"`
	TotalEvents int    `json:"total_events"`
	Message     string `json:"message"`
}

type ErrorRecord struct {
	Type  string `json:"type"`
	Year  int    `json:"year"`
	Error string `json:"error"`
}

// ErrorEvent wraps a mid-stream failure as the terminal f1_error record
func ErrorEvent(year int, err error) StreamEvent {
	return StreamEvent{Name: EventError, Data: ErrorRecord{Type: "error", Year: year, Error: err.Error()}}
}

// SeasonStream loads the season schedule and returns an iterator over its
// records: one schedule record, one record per event and a completion record.
// A season with no schedule fails here, before anything is yielded. The
// iterator yields at most one error and stops after it; it stops silently
// when ctx is cancelled.
func (s *Service) SeasonStream(ctx context.Context, year int) (iter.Seq2[StreamEvent, error], error) {
	schedule, err := s.Schedule(ctx, year)
	if err != nil {
		return nil, err
	}

	return func(yield func(StreamEvent, error) bool) {
		start := StreamEvent{Name: EventData, Data: ScheduleRecord{
			Type:        "schedule",
			Year:        year,
			TotalRounds: schedule.TotalRounds,
			Message:     fmt.Sprintf("Starting F1 %d data stream...", year),
		}}
		if !yield(start, nil) {
			return
		}

		for i, event := range schedule.Events {
			if !s.pause(ctx) {
				return
			}

			podium, err := s.podium(ctx, year, event)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Int("year", year).Int("round", event.Round).Msg("Season stream aborted")
				yield(StreamEvent{}, err)
				return
			}

			record := StreamEvent{Name: EventRecord, Data: RoundRecord{
				Type:   "event",
				Year:   year,
				Index:  i,
				Event:  event,
				Podium: podium,
			}}
			if !yield(record, nil) {
				return
			}
		}

		if !s.pause(ctx) {
			return
		}

		yield(StreamEvent{Name: EventComplete, Data: CompleteRecord{
			Type:        "complete",
			Year:        year,
			TotalEvents: len(schedule.Events),
			Message:     "Stream completed",
		}}, nil)
	}, nil
}

// podium returns the top three of a run race, or nil when no results are
// published yet.
func (s *Service) podium(ctx context.Context, year int, event ScheduleEvent) ([]PodiumEntry, error) {
	if date, err := time.Parse(time.DateOnly, event.EventDate); err == nil && date.After(s.now()) {
		return nil, nil
	}

	results, err := s.SessionResults(ctx, year, event.Round, SessionRace)
	if errors.Is(err, ErrDataUnavailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var podium []PodiumEntry
	for _, r := range results.Results {
		if len(podium) == 3 {
			break
		}
		podium = append(podium, PodiumEntry{
			Position: r.Position,
			Driver:   r.Driver,
			FullName: r.FullName,
			Team:     r.Team,
			Time:     r.Time,
		})
	}
	return podium, nil
}

// pause waits for the configured interval; false means ctx ended first
func (s *Service) pause(ctx context.Context) bool {
	if s.interval <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
