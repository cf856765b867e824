package models

// TournamentSummary aggregates the ledger the way the dashboard header shows it
type TournamentSummary struct {
	Games    int     `json:"games"`
	Goals    int     `json:"goals"`
	AvgGoals float64 `json:"avg_goals"`
	HomeWins int     `json:"home_wins"`
	AwayWins int     `json:"away_wins"`
	Draws    int     `json:"draws"`
}

// HeadToHeadGame is a past meeting between two teams
type HeadToHeadGame struct {
	MatchRecord
	ResultText string `json:"result"`
}
