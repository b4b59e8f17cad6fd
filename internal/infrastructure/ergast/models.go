package ergast

import "strings"

// Response is the envelope every Ergast-compatible endpoint returns
type Response struct {
	MRData MRData `json:"MRData"`
}

type MRData struct {
	Series         string          `json:"series"`
	Limit          string          `json:"limit"`
	Offset         string          `json:"offset"`
	Total          string          `json:"total"`
	RaceTable      *RaceTable      `json:"RaceTable,omitempty"`
	StandingsTable *StandingsTable `json:"StandingsTable,omitempty"`
}

type RaceTable struct {
	Season string `json:"season"`
	Round  string `json:"round,omitempty"`
	Races  []Race `json:"Races"`
}

type Race struct {
	Season            string             `json:"season"`
	Round             string             `json:"round"`
	RaceName          string             `json:"raceName"`
	Circuit           Circuit            `json:"Circuit"`
	Date              string             `json:"date"`
	Time              string             `json:"time,omitempty"`
	FirstPractice     *SessionTime       `json:"FirstPractice,omitempty"`
	SecondPractice    *SessionTime       `json:"SecondPractice,omitempty"`
	ThirdPractice     *SessionTime       `json:"ThirdPractice,omitempty"`
	Qualifying        *SessionTime       `json:"Qualifying,omitempty"`
	Sprint            *SessionTime       `json:"Sprint,omitempty"`
	SprintQualifying  *SessionTime       `json:"SprintQualifying,omitempty"`
	Results           []Result           `json:"Results,omitempty"`
	SprintResults     []Result           `json:"SprintResults,omitempty"`
	QualifyingResults []QualifyingResult `json:"QualifyingResults,omitempty"`
	Laps              []Lap              `json:"Laps,omitempty"`
}

type SessionTime struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber,omitempty"`
	Code            string `json:"code,omitempty"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	Nationality     string `json:"nationality,omitempty"`
}

// FullName joins given and family name
func (d Driver) FullName() string {
	if d.GivenName == "" {
		return d.FamilyName
	}
	return d.GivenName + " " + d.FamilyName
}

// Abbreviation is the three letter code, derived from the family name for
// drivers that predate official codes.
func (d Driver) Abbreviation() string {
	if d.Code != "" {
		return d.Code
	}
	name := []rune(d.FamilyName)
	if len(name) > 3 {
		name = name[:3]
	}
	return strings.ToUpper(string(name))
}

type Constructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality,omitempty"`
}

type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid"`
	Laps         string      `json:"laps"`
	Status       string      `json:"status"`
	Time         *ResultTime `json:"Time,omitempty"`
}

type ResultTime struct {
	Millis string `json:"millis,omitempty"`
	Time   string `json:"time"`
}

type QualifyingResult struct {
	Number      string      `json:"number"`
	Position    string      `json:"position"`
	Driver      Driver      `json:"Driver"`
	Constructor Constructor `json:"Constructor"`
	Q1          string      `json:"Q1,omitempty"`
	Q2          string      `json:"Q2,omitempty"`
	Q3          string      `json:"Q3,omitempty"`
}

type Lap struct {
	Number  string   `json:"number"`
	Timings []Timing `json:"Timings"`
}

type Timing struct {
	DriverID string `json:"driverId"`
	Position string `json:"position"`
	Time     string `json:"time"`
}

type StandingsTable struct {
	Season         string          `json:"season"`
	Round          string          `json:"round,omitempty"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

type ConstructorStanding struct {
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}
