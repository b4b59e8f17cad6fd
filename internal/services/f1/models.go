package f1

// Session identifiers accepted by SessionResults and LapTimes
const (
	SessionPractice1  = "FP1"
	SessionPractice2  = "FP2"
	SessionPractice3  = "FP3"
	SessionQualifying = "Q"
	SessionSprint     = "S"
	SessionRace       = "R"
)

const maxLaps = 50

type ScheduleEvent struct {
	Round       int    `json:"round"`
	EventName   string `json:"event_name"`
	Location    string `json:"location"`
	Country     string `json:"country"`
	EventDate   string `json:"event_date"`
	EventFormat string `json:"event_format"`
}

type Schedule struct {
	Season      int             `json:"season"`
	TotalRounds int             `json:"total_rounds"`
	Events      []ScheduleEvent `json:"events"`
}

type SessionResult struct {
	Position     int     `json:"position"`
	DriverNumber int     `json:"driver_number"`
	Driver       string  `json:"driver"`
	FullName     string  `json:"full_name"`
	Team         string  `json:"team"`
	Time         *string `json:"time"`
	Status       *string `json:"status"`
	Points       float64 `json:"points"`
}

type SessionResults struct {
	Year      int             `json:"year"`
	Round     int             `json:"round"`
	Session   string          `json:"session"`
	EventName string          `json:"event_name"`
	Location  string          `json:"location"`
	Results   []SessionResult `json:"results"`
}

type DriverStanding struct {
	Position int     `json:"position"`
	Driver   string  `json:"driver"`
	FullName string  `json:"full_name"`
	Team     string  `json:"team"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
}

type DriverStandings struct {
	Year       int              `json:"year"`
	AfterRound int              `json:"after_round"`
	Standings  []DriverStanding `json:"standings"`
}

type ConstructorDriver struct {
	Name         string  `json:"name"`
	Abbreviation string  `json:"abbreviation"`
	Points       float64 `json:"points"`
}

type ConstructorStanding struct {
	Position int                 `json:"position"`
	Team     string              `json:"team"`
	Points   float64             `json:"points"`
	Wins     int                 `json:"wins"`
	Drivers  []ConstructorDriver `json:"drivers"`
}

type ConstructorStandings struct {
	Year       int                   `json:"year"`
	AfterRound int                   `json:"after_round"`
	Standings  []ConstructorStanding `json:"standings"`
}

type LapTime struct {
	LapNumber int     `json:"lap_number"`
	Driver    string  `json:"driver"`
	Team      string  `json:"team"`
	LapTime   *string `json:"lap_time"`
	Position  int     `json:"position"`
}

type LapTimes struct {
	Year         int       `json:"year"`
	Round        int       `json:"round"`
	Session      string    `json:"session"`
	EventName    string    `json:"event_name"`
	DriverFilter *string   `json:"driver_filter"`
	TotalLaps    int       `json:"total_laps"`
	Laps         []LapTime `json:"laps"`
	Note         string    `json:"note,omitempty"`
}

type PodiumEntry struct {
	Position int     `json:"position"`
	Driver   string  `json:"driver"`
	FullName string  `json:"full_name"`
	Team     string  `json:"team"`
	Time     *string `json:"time"`
}
