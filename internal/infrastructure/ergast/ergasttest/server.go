// Package ergasttest serves a small, fixed 2024 season in the Ergast JSON
// format for tests. Pagination follows the real API: rows are sliced by
// limit/offset and MRData.total reports the full row count.
package ergasttest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/Josh-Mantel/MCP-F1/internal/infrastructure/ergast"
)

const (
	Season     = 2024
	LapsPerCar = 30
)

var (
	redBull = ergast.Constructor{ConstructorID: "red_bull", Name: "Red Bull"}
	ferrari = ergast.Constructor{ConstructorID: "ferrari", Name: "Ferrari"}

	verstappen = ergast.Driver{DriverID: "max_verstappen", PermanentNumber: "33", Code: "VER", GivenName: "Max", FamilyName: "Verstappen"}
	perez      = ergast.Driver{DriverID: "perez", PermanentNumber: "11", Code: "PER", GivenName: "Sergio", FamilyName: "Pérez"}
	sainz      = ergast.Driver{DriverID: "sainz", PermanentNumber: "55", Code: "SAI", GivenName: "Carlos", FamilyName: "Sainz"}
	leclerc    = ergast.Driver{DriverID: "leclerc", PermanentNumber: "16", Code: "LEC", GivenName: "Charles", FamilyName: "Leclerc"}
)

// Server is a fake Ergast API
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	failWith int
}

func NewServer(t testing.TB) *Server {
	s := &Server{hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Hits returns how many requests reached path, any query string
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests served
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

// FailWith makes every following request answer with status; 0 restores
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	failWith := s.failWith
	s.mu.Unlock()

	if failWith != 0 {
		http.Error(w, "upstream unavailable", failWith)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 30
	}

	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".json"), "/")
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	var data ergast.MRData
	switch len(parts) {
	case 1:
		data = raceTable(year, 0, paginate(schedule(year), limit, offset))
	case 2:
		data = standings(year, 0, parts[1], limit, offset)
	case 3:
		round, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		data = roundData(year, round, parts[2], limit, offset)
	default:
		http.NotFound(w, r)
		return
	}

	data.Series = "f1"
	data.Limit = strconv.Itoa(limit)
	data.Offset = strconv.Itoa(offset)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ergast.Response{MRData: data})
}

type page[T any] struct {
	rows  []T
	total int
}

func paginate[T any](rows []T, limit, offset int) page[T] {
	total := len(rows)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return page[T]{rows: rows[offset:end], total: total}
}

func raceTable(year, round int, races page[ergast.Race]) ergast.MRData {
	table := &ergast.RaceTable{Season: strconv.Itoa(year), Races: races.rows}
	if round > 0 {
		table.Round = strconv.Itoa(round)
	}
	if table.Races == nil {
		table.Races = []ergast.Race{}
	}
	return ergast.MRData{Total: strconv.Itoa(races.total), RaceTable: table}
}

// Schedule returns the fixed calendar
func schedule(year int) []ergast.Race {
	if year != Season {
		return nil
	}
	return []ergast.Race{
		newRace(1, "Bahrain Grand Prix", "bahrain", "Sakhir", "Bahrain", "2024-03-02", false),
		newRace(2, "Chinese Grand Prix", "shanghai", "Shanghai", "China", "2024-04-21", true),
		newRace(3, "Miami Grand Prix", "miami", "Miami", "USA", "2024-05-05", true),
	}
}

func newRace(round int, name, circuitID, locality, country, date string, sprint bool) ergast.Race {
	race := ergast.Race{
		Season:   strconv.Itoa(Season),
		Round:    strconv.Itoa(round),
		RaceName: name,
		Circuit: ergast.Circuit{
			CircuitID:   circuitID,
			CircuitName: locality + " Circuit",
			Location:    ergast.Location{Locality: locality, Country: country},
		},
		Date:       date,
		Time:       "15:00:00Z",
		Qualifying: &ergast.SessionTime{Date: date},
	}
	if sprint {
		race.Sprint = &ergast.SessionTime{Date: date}
	}
	return race
}

func scheduledRace(year, round int) (ergast.Race, bool) {
	for _, race := range schedule(year) {
		if race.Round == strconv.Itoa(round) {
			return race, true
		}
	}
	return ergast.Race{}, false
}

func roundData(year, round int, endpoint string, limit, offset int) ergast.MRData {
	if endpoint == "driverStandings" || endpoint == "constructorStandings" {
		return standings(year, round, endpoint, limit, offset)
	}

	race, ok := scheduledRace(year, round)
	if !ok {
		return raceTable(year, round, page[ergast.Race]{})
	}

	var total int
	switch endpoint {
	case "results":
		rows := paginate(RaceResults(round), limit, offset)
		race.Results, total = rows.rows, rows.total
	case "sprint":
		rows := paginate(SprintResults(round), limit, offset)
		race.SprintResults, total = rows.rows, rows.total
	case "qualifying":
		rows := paginate(qualifying(round), limit, offset)
		race.QualifyingResults, total = rows.rows, rows.total
	case "laps":
		rows := paginate(timings(round), limit, offset)
		race.Laps, total = groupLaps(rows.rows), rows.total
	}

	if total == 0 {
		return raceTable(year, round, page[ergast.Race]{})
	}
	return raceTable(year, round, page[ergast.Race]{rows: []ergast.Race{race}, total: total})
}

func result(pos int, d ergast.Driver, c ergast.Constructor, points, status, gap string) ergast.Result {
	r := ergast.Result{
		Number:       d.PermanentNumber,
		Position:     strconv.Itoa(pos),
		PositionText: strconv.Itoa(pos),
		Points:       points,
		Driver:       d,
		Constructor:  c,
		Grid:         strconv.Itoa(pos),
		Laps:         strconv.Itoa(LapsPerCar),
		Status:       status,
	}
	if gap != "" {
		r.Time = &ergast.ResultTime{Time: gap}
	}
	return r
}

// RaceResults returns the published classification for round; round 3 has
// not been run yet.
func RaceResults(round int) []ergast.Result {
	switch round {
	case 1:
		return []ergast.Result{
			result(1, verstappen, redBull, "26", "Finished", "1:31:44.742"),
			result(2, perez, redBull, "18", "Finished", "+22.457"),
			result(3, sainz, ferrari, "15", "Finished", "+25.110"),
			result(4, leclerc, ferrari, "12", "Finished", "+39.669"),
		}
	case 2:
		return []ergast.Result{
			result(1, verstappen, redBull, "25", "Finished", "1:40:52.554"),
			result(2, leclerc, ferrari, "19", "Finished", "+13.773"),
			result(3, perez, redBull, "15", "Finished", "+19.160"),
			result(4, sainz, ferrari, "12", "Retired", ""),
		}
	}
	return nil
}

func SprintResults(round int) []ergast.Result {
	if round != 2 {
		return nil
	}
	return []ergast.Result{
		result(1, verstappen, redBull, "8", "Finished", "32:04.660"),
		result(2, leclerc, ferrari, "7", "Finished", "+13.043"),
		result(3, perez, redBull, "6", "Finished", "+15.258"),
		result(4, sainz, ferrari, "5", "Finished", "+17.486"),
	}
}

func qualifying(round int) []ergast.QualifyingResult {
	if round != 1 {
		return nil
	}
	return []ergast.QualifyingResult{
		{Number: "1", Position: "1", Driver: verstappen, Constructor: redBull, Q1: "1:30.031", Q2: "1:29.374", Q3: "1:29.179"},
		{Number: "16", Position: "2", Driver: leclerc, Constructor: ferrari, Q1: "1:30.243", Q2: "1:29.165", Q3: "1:29.407"},
		{Number: "55", Position: "3", Driver: sainz, Constructor: ferrari, Q1: "1:30.309", Q2: "1:29.812", Q3: "1:29.507"},
		{Number: "11", Position: "4", Driver: perez, Constructor: redBull, Q1: "1:30.221", Q2: "1:29.932"},
	}
}

// timings lists lap rows in API order: lap by lap, drivers by position
func timings(round int) []lapTiming {
	if round != 1 {
		return nil
	}

	drivers := []ergast.Driver{verstappen, perez, sainz, leclerc}
	var rows []lapTiming
	for lap := 1; lap <= LapsPerCar; lap++ {
		for i, d := range drivers {
			rows = append(rows, lapTiming{
				lap: lap,
				timing: ergast.Timing{
					DriverID: d.DriverID,
					Position: strconv.Itoa(i + 1),
					Time:     fmt.Sprintf("1:3%d.%03d", i+4, lap*7),
				},
			})
		}
	}
	return rows
}

type lapTiming struct {
	lap    int
	timing ergast.Timing
}

func groupLaps(rows []lapTiming) []ergast.Lap {
	var laps []ergast.Lap
	for _, row := range rows {
		number := strconv.Itoa(row.lap)
		if n := len(laps); n > 0 && laps[n-1].Number == number {
			laps[n-1].Timings = append(laps[n-1].Timings, row.timing)
			continue
		}
		laps = append(laps, ergast.Lap{Number: number, Timings: []ergast.Timing{row.timing}})
	}
	return laps
}

func standings(year, round int, endpoint string, limit, offset int) ergast.MRData {
	if year != Season || round > 2 {
		return emptyStandings(year)
	}
	if round == 0 {
		round = 2
	}

	list := ergast.StandingsList{Season: strconv.Itoa(year), Round: strconv.Itoa(round)}
	var total int

	switch endpoint {
	case "driverStandings":
		rows := paginate(driverStandings(round), limit, offset)
		list.DriverStandings, total = rows.rows, rows.total
	case "constructorStandings":
		rows := paginate(constructorStandings(round), limit, offset)
		list.ConstructorStandings, total = rows.rows, rows.total
	default:
		return emptyStandings(year)
	}

	return ergast.MRData{
		Total: strconv.Itoa(total),
		StandingsTable: &ergast.StandingsTable{
			Season:         strconv.Itoa(year),
			Round:          strconv.Itoa(round),
			StandingsLists: []ergast.StandingsList{list},
		},
	}
}

func emptyStandings(year int) ergast.MRData {
	return ergast.MRData{
		Total:          "0",
		StandingsTable: &ergast.StandingsTable{Season: strconv.Itoa(year), StandingsLists: []ergast.StandingsList{}},
	}
}

func driverStanding(pos int, d ergast.Driver, c ergast.Constructor, points, wins string) ergast.DriverStanding {
	return ergast.DriverStanding{
		Position:     strconv.Itoa(pos),
		PositionText: strconv.Itoa(pos),
		Points:       points,
		Wins:         wins,
		Driver:       d,
		Constructors: []ergast.Constructor{c},
	}
}

func driverStandings(round int) []ergast.DriverStanding {
	if round == 1 {
		return []ergast.DriverStanding{
			driverStanding(1, verstappen, redBull, "26", "1"),
			driverStanding(2, perez, redBull, "18", "0"),
			driverStanding(3, sainz, ferrari, "15", "0"),
			driverStanding(4, leclerc, ferrari, "12", "0"),
		}
	}
	return []ergast.DriverStanding{
		driverStanding(1, verstappen, redBull, "59", "2"),
		driverStanding(2, perez, redBull, "39", "0"),
		driverStanding(3, leclerc, ferrari, "38", "0"),
		driverStanding(4, sainz, ferrari, "32", "0"),
	}
}

func constructorStandings(round int) []ergast.ConstructorStanding {
	if round == 1 {
		return []ergast.ConstructorStanding{
			{Position: "1", PositionText: "1", Points: "44", Wins: "1", Constructor: redBull},
			{Position: "2", PositionText: "2", Points: "27", Wins: "0", Constructor: ferrari},
		}
	}
	return []ergast.ConstructorStanding{
		{Position: "1", PositionText: "1", Points: "98", Wins: "2", Constructor: redBull},
		{Position: "2", PositionText: "2", Points: "70", Wins: "0", Constructor: ferrari},
	}
}
