package f1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josh-Mantel/MCP-F1/internal/config"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast/ergasttest"
)

func newTestService(t *testing.T, interval time.Duration) (*Service, *ergasttest.Server) {
	t.Helper()

	upstream := ergasttest.NewServer(t)
	source := ergast.NewService(config.ErgastConfig{
		BaseURL:  upstream.URL,
		Timeout:  5 * time.Second,
		CacheTTL: time.Minute,
	}, nil, nil)

	return NewService(source, interval), upstream
}

func TestSchedule(t *testing.T) {
	svc, _ := newTestService(t, 0)

	schedule, err := svc.Schedule(context.Background(), 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, schedule.Season)
	assert.Equal(t, 3, schedule.TotalRounds)
	assert.Equal(t, ScheduleEvent{
		Round:       1,
		EventName:   "Bahrain Grand Prix",
		Location:    "Sakhir",
		Country:     "Bahrain",
		EventDate:   "2024-03-02",
		EventFormat: "conventional",
	}, schedule.Events[0])
	assert.Equal(t, "sprint", schedule.Events[1].EventFormat)

	_, err = svc.Schedule(context.Background(), 1900)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestSessionResults(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	t.Run("race", func(t *testing.T) {
		results, err := svc.SessionResults(ctx, 2024, 1, "r")
		require.NoError(t, err)

		assert.Equal(t, "R", results.Session)
		assert.Equal(t, "Bahrain Grand Prix", results.EventName)
		assert.Equal(t, "Sakhir", results.Location)
		require.Len(t, results.Results, 4)

		winner := results.Results[0]
		assert.Equal(t, 1, winner.Position)
		assert.Equal(t, 33, winner.DriverNumber)
		assert.Equal(t, "VER", winner.Driver)
		assert.Equal(t, "Max Verstappen", winner.FullName)
		assert.Equal(t, "Red Bull", winner.Team)
		assert.Equal(t, "1:31:44.742", *winner.Time)
		assert.Equal(t, 26.0, winner.Points)
	})

	t.Run("retired driver has no time", func(t *testing.T) {
		results, err := svc.SessionResults(ctx, 2024, 2, "R")
		require.NoError(t, err)
		assert.Nil(t, results.Results[3].Time)
		assert.Equal(t, "Retired", *results.Results[3].Status)
	})

	t.Run("qualifying uses best reached segment", func(t *testing.T) {
		results, err := svc.SessionResults(ctx, 2024, 1, "Q")
		require.NoError(t, err)
		require.Len(t, results.Results, 4)
		assert.Equal(t, "1:29.179", *results.Results[0].Time)
		assert.Equal(t, "1:29.932", *results.Results[3].Time, "Q2 time for a Q2 exit")
		assert.Nil(t, results.Results[0].Status)
	})

	t.Run("sprint", func(t *testing.T) {
		results, err := svc.SessionResults(ctx, 2024, 2, "S")
		require.NoError(t, err)
		assert.Equal(t, 8.0, results.Results[0].Points)
	})

	t.Run("unavailable sessions", func(t *testing.T) {
		for _, session := range []string{"FP1", "FP2", "FP3"} {
			_, err := svc.SessionResults(ctx, 2024, 1, session)
			assert.ErrorIs(t, err, ErrDataUnavailable, session)
		}

		_, err := svc.SessionResults(ctx, 2024, 1, "S")
		assert.ErrorIs(t, err, ErrDataUnavailable, "no sprint at round 1")

		_, err = svc.SessionResults(ctx, 2024, 3, "R")
		assert.ErrorIs(t, err, ErrDataUnavailable, "round 3 not run yet")
	})

	t.Run("invalid session", func(t *testing.T) {
		_, err := svc.SessionResults(ctx, 2024, 1, "warmup")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestDriverStandings(t *testing.T) {
	svc, _ := newTestService(t, 0)

	latest, err := svc.DriverStandings(context.Background(), 2024, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.AfterRound)
	assert.Equal(t, DriverStanding{
		Position: 1,
		Driver:   "VER",
		FullName: "Max Verstappen",
		Team:     "Red Bull",
		Points:   59,
		Wins:     2,
	}, latest.Standings[0])

	afterFirst, err := svc.DriverStandings(context.Background(), 2024, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, afterFirst.AfterRound)
	assert.Equal(t, 26.0, afterFirst.Standings[0].Points)
}

func TestConstructorStandings(t *testing.T) {
	svc, _ := newTestService(t, 0)

	standings, err := svc.ConstructorStandings(context.Background(), 2024, 0)
	require.NoError(t, err)
	require.Len(t, standings.Standings, 2)

	redBull := standings.Standings[0]
	assert.Equal(t, "Red Bull", redBull.Team)
	assert.Equal(t, 98.0, redBull.Points)
	assert.Equal(t, 2, redBull.Wins)
	assert.Equal(t, []ConstructorDriver{
		{Name: "Max Verstappen", Abbreviation: "VER", Points: 59},
		{Name: "Sergio Pérez", Abbreviation: "PER", Points: 39},
	}, redBull.Drivers)

	ferrari := standings.Standings[1]
	var total float64
	for _, d := range ferrari.Drivers {
		total += d.Points
	}
	assert.Equal(t, ferrari.Points, total)
}

func TestLapTimes(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	t.Run("all drivers capped at fifty", func(t *testing.T) {
		laps, err := svc.LapTimes(ctx, 2024, 1, "R", "")
		require.NoError(t, err)

		assert.Equal(t, "Bahrain Grand Prix", laps.EventName)
		assert.Nil(t, laps.DriverFilter)
		assert.Equal(t, 4*ergasttest.LapsPerCar, laps.TotalLaps)
		assert.Len(t, laps.Laps, 50)
		assert.Equal(t, "Showing first 50 of 120 laps", laps.Note)

		first := laps.Laps[0]
		assert.Equal(t, 1, first.LapNumber)
		assert.Equal(t, "VER", first.Driver)
		assert.Equal(t, "Red Bull", first.Team)
		assert.Equal(t, 1, first.Position)
		assert.NotNil(t, first.LapTime)
	})

	t.Run("driver filter is case insensitive", func(t *testing.T) {
		laps, err := svc.LapTimes(ctx, 2024, 1, "R", "lec")
		require.NoError(t, err)

		require.NotNil(t, laps.DriverFilter)
		assert.Equal(t, "LEC", *laps.DriverFilter)
		assert.Equal(t, ergasttest.LapsPerCar, laps.TotalLaps)
		assert.Empty(t, laps.Note)
		for _, lap := range laps.Laps {
			assert.Equal(t, "LEC", lap.Driver)
			assert.Equal(t, "Ferrari", lap.Team)
		}
	})

	t.Run("only the race has laps", func(t *testing.T) {
		for _, session := range []string{"FP1", "Q", "S"} {
			_, err := svc.LapTimes(ctx, 2024, 1, session, "")
			assert.ErrorIs(t, err, ErrDataUnavailable, session)
		}
	})

	t.Run("no laps published", func(t *testing.T) {
		_, err := svc.LapTimes(ctx, 2024, 2, "R", "")
		assert.ErrorIs(t, err, ErrDataUnavailable)
	})
}

func TestErrorsKeepSourceChain(t *testing.T) {
	t.Run("upstream failure", func(t *testing.T) {
		svc, upstream := newTestService(t, 0)
		upstream.FailWith(503)

		_, err := svc.Schedule(context.Background(), 2024)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.ErrorIs(t, err, ergast.ErrUpstream)
	})

	t.Run("nothing published", func(t *testing.T) {
		svc, _ := newTestService(t, 0)

		_, err := svc.Schedule(context.Background(), 1990)
		assert.ErrorIs(t, err, ErrDataUnavailable)
		assert.ErrorIs(t, err, ergast.ErrNotFound)
	})
}
