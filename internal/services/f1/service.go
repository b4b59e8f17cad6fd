package f1

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
	"github.com/Josh-Mantel/MCP-F1/pkg/logger"
)

var (
	// ErrDataUnavailable means nothing is published for the request
	ErrDataUnavailable = errors.New("data unavailable")
	ErrInvalidSession  = errors.New("invalid session type")
	// ErrUpstream means the data source failed
	ErrUpstream = errors.New("f1 data source unavailable")
)

// Source is the subset of the Ergast client the service reads from
type Source interface {
	Races(ctx context.Context, year int) ([]ergast.Race, error)
	RaceResults(ctx context.Context, year, round int) (*ergast.Race, error)
	QualifyingResults(ctx context.Context, year, round int) (*ergast.Race, error)
	SprintResults(ctx context.Context, year, round int) (*ergast.Race, error)
	Laps(ctx context.Context, year, round int) (*ergast.Race, error)
	DriverStandings(ctx context.Context, year, round int) (*ergast.StandingsList, error)
	ConstructorStandings(ctx context.Context, year, round int) (*ergast.StandingsList, error)
}

type Service struct {
	source   Source
	interval time.Duration
	now      func() time.Time
}

// NewService builds the F1 data service. interval is the pause between
// season stream records.
func NewService(source Source, interval time.Duration) *Service {
	logger.Info(logger.SERVICE, "Initialising F1 data service")
	return &Service{
		source:   source,
		interval: interval,
		now:      time.Now,
	}
}

// NormalizeSession upper-cases a session identifier and checks it is known
func NormalizeSession(session string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(session))
	switch s {
	case SessionPractice1, SessionPractice2, SessionPractice3, SessionQualifying, SessionSprint, SessionRace:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSession, session)
}

func (s *Service) Schedule(ctx context.Context, year int) (*Schedule, error) {
	races, err := s.source.Races(ctx, year)
	if err != nil {
		return nil, classify(err)
	}

	events := make([]ScheduleEvent, 0, len(races))
	for _, race := range races {
		format := "conventional"
		if race.Sprint != nil {
			format = "sprint"
		}
		events = append(events, ScheduleEvent{
			Round:       atoi(race.Round),
			EventName:   race.RaceName,
			Location:    race.Circuit.Location.Locality,
			Country:     race.Circuit.Location.Country,
			EventDate:   race.Date,
			EventFormat: format,
		})
	}

	return &Schedule{
		Season:      year,
		TotalRounds: len(events),
		Events:      events,
	}, nil
}

func (s *Service) SessionResults(ctx context.Context, year, round int, session string) (*SessionResults, error) {
	session, err := NormalizeSession(session)
	if err != nil {
		return nil, err
	}

	var race *ergast.Race
	switch session {
	case SessionRace:
		race, err = s.source.RaceResults(ctx, year, round)
	case SessionSprint:
		race, err = s.source.SprintResults(ctx, year, round)
	case SessionQualifying:
		race, err = s.source.QualifyingResults(ctx, year, round)
	default:
		return nil, fmt.Errorf("%w: no classification is published for %s", ErrDataUnavailable, session)
	}
	if err != nil {
		return nil, classify(err)
	}

	out := &SessionResults{
		Year:      year,
		Round:     round,
		Session:   session,
		EventName: race.RaceName,
		Location:  race.Circuit.Location.Locality,
	}

	switch session {
	case SessionQualifying:
		for _, q := range race.QualifyingResults {
			out.Results = append(out.Results, SessionResult{
				Position:     atoi(q.Position),
				DriverNumber: atoi(q.Number),
				Driver:       q.Driver.Abbreviation(),
				FullName:     q.Driver.FullName(),
				Team:         q.Constructor.Name,
				Time:         bestQualifyingTime(q),
			})
		}
	case SessionSprint:
		out.Results = classification(race.SprintResults)
	default:
		out.Results = classification(race.Results)
	}

	return out, nil
}

// DriverStandings returns the championship after round, or the latest when round is 0
func (s *Service) DriverStandings(ctx context.Context, year, round int) (*DriverStandings, error) {
	list, err := s.source.DriverStandings(ctx, year, round)
	if err != nil {
		return nil, classify(err)
	}

	out := &DriverStandings{Year: year, AfterRound: atoi(list.Round)}
	for _, ds := range list.DriverStandings {
		out.Standings = append(out.Standings, DriverStanding{
			Position: atoi(ds.Position),
			Driver:   ds.Driver.Abbreviation(),
			FullName: ds.Driver.FullName(),
			Team:     lastConstructor(ds.Constructors),
			Points:   atof(ds.Points),
			Wins:     atoi(ds.Wins),
		})
	}
	return out, nil
}

// ConstructorStandings returns the championship after round, or the latest
// when round is 0, with each team's drivers taken from the driver standings.
func (s *Service) ConstructorStandings(ctx context.Context, year, round int) (*ConstructorStandings, error) {
	list, err := s.source.ConstructorStandings(ctx, year, round)
	if err != nil {
		return nil, classify(err)
	}

	drivers := make(map[string][]ConstructorDriver)
	if driverList, err := s.source.DriverStandings(ctx, year, atoi(list.Round)); err == nil {
		for _, ds := range driverList.DriverStandings {
			team := lastConstructor(ds.Constructors)
			drivers[team] = append(drivers[team], ConstructorDriver{
				Name:         ds.Driver.FullName(),
				Abbreviation: ds.Driver.Abbreviation(),
				Points:       atof(ds.Points),
			})
		}
	} else if !errors.Is(err, ergast.ErrNotFound) {
		return nil, classify(err)
	}

	out := &ConstructorStandings{Year: year, AfterRound: atoi(list.Round)}
	for _, cs := range list.ConstructorStandings {
		teamDrivers := drivers[cs.Constructor.Name]
		if teamDrivers == nil {
			teamDrivers = []ConstructorDriver{}
		}
		out.Standings = append(out.Standings, ConstructorStanding{
			Position: atoi(cs.Position),
			Team:     cs.Constructor.Name,
			Points:   atof(cs.Points),
			Wins:     atoi(cs.Wins),
			Drivers:  teamDrivers,
		})
	}
	return out, nil
}

// LapTimes lists race laps, optionally for one driver, capped at 50 rows.
// Only the race has lap data.
func (s *Service) LapTimes(ctx context.Context, year, round int, session, driver string) (*LapTimes, error) {
	session, err := NormalizeSession(session)
	if err != nil {
		return nil, err
	}
	if session != SessionRace {
		return nil, fmt.Errorf("%w: lap times are only published for the race", ErrDataUnavailable)
	}

	race, err := s.source.Laps(ctx, year, round)
	if err != nil {
		return nil, classify(err)
	}

	type entrant struct{ code, team string }
	entrants := make(map[string]entrant)
	if results, err := s.source.RaceResults(ctx, year, round); err == nil {
		for _, r := range results.Results {
			entrants[r.Driver.DriverID] = entrant{code: r.Driver.Abbreviation(), team: r.Constructor.Name}
		}
	} else if !errors.Is(err, ergast.ErrNotFound) {
		return nil, classify(err)
	}

	out := &LapTimes{
		Year:      year,
		Round:     round,
		Session:   session,
		EventName: race.RaceName,
	}

	filter := strings.ToUpper(strings.TrimSpace(driver))
	if filter != "" {
		out.DriverFilter = &filter
	}

	laps := []LapTime{}
	for _, lap := range race.Laps {
		for _, timing := range lap.Timings {
			e, ok := entrants[timing.DriverID]
			if !ok {
				e = entrant{code: strings.ToUpper(timing.DriverID)}
			}
			if filter != "" && e.code != filter {
				continue
			}
			laps = append(laps, LapTime{
				LapNumber: atoi(lap.Number),
				Driver:    e.code,
				Team:      e.team,
				LapTime:   optional(timing.Time),
				Position:  atoi(timing.Position),
			})
		}
	}

	out.TotalLaps = len(laps)
	if len(laps) > maxLaps {
		out.Note = fmt.Sprintf("Showing first %d of %d laps", maxLaps, len(laps))
		laps = laps[:maxLaps]
	}
	out.Laps = laps

	return out, nil
}

func classification(results []ergast.Result) []SessionResult {
	out := make([]SessionResult, 0, len(results))
	for _, r := range results {
		var t *string
		if r.Time != nil {
			t = optional(r.Time.Time)
		}
		out = append(out, SessionResult{
			Position:     atoi(r.Position),
			DriverNumber: atoi(r.Number),
			Driver:       r.Driver.Abbreviation(),
			FullName:     r.Driver.FullName(),
			Team:         r.Constructor.Name,
			Time:         t,
			Status:       optional(r.Status),
			Points:       atof(r.Points),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// bestQualifyingTime is the time from the last segment the driver reached
func bestQualifyingTime(q ergast.QualifyingResult) *string {
	for _, t := range []string{q.Q3, q.Q2, q.Q1} {
		if t != "" {
			return optional(t)
		}
	}
	return nil
}

func lastConstructor(constructors []ergast.Constructor) string {
	if len(constructors) == 0 {
		return ""
	}
	return constructors[len(constructors)-1].Name
}

func classify(err error) error {
	switch {
	case errors.Is(err, ergast.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	case errors.Is(err, ergast.ErrUpstream):
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	default:
		return err
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
