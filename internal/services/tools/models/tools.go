package models

// ScheduleParams are the arguments of get_race_schedule
type ScheduleParams struct {
	Year int `json:"year" validate:"required,min=1950,max=2030"`
}

// SessionParams are the arguments of get_session_results
type SessionParams struct {
	Year        int    `json:"year" validate:"required,min=1950,max=2030"`
	RoundNumber int    `json:"round_number" validate:"required,min=1,max=24"`
	Session     string `json:"session" validate:"required,oneof=FP1 FP2 FP3 Q S R"`
}

// StandingsParams are the arguments of both standings tools. A missing
// round means the latest published standings.
type StandingsParams struct {
	Year        int `json:"year" validate:"required,min=1950,max=2030"`
	RoundNumber int `json:"round_number,omitempty" validate:"omitempty,min=1,max=24"`
}

// LapTimesParams are the arguments of get_lap_times
type LapTimesParams struct {
	Year        int    `json:"year" validate:"required,min=1950,max=2030"`
	RoundNumber int    `json:"round_number" validate:"required,min=1,max=24"`
	Session     string `json:"session" validate:"required,oneof=FP1 FP2 FP3 Q S R"`
	Driver      string `json:"driver,omitempty" validate:"omitempty,alpha,len=3"`
}
