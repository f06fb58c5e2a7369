package models

// FormatKind identifies which generation and advancement rule set a
// tournament uses. The kind is fixed for the lifetime of a structure;
// changing it means regenerating the structure from scratch.
type FormatKind string

const (
	FormatSingleElimination  FormatKind = "single_elimination"
	FormatDoubleElimination  FormatKind = "double_elimination"
	FormatTripleElimination  FormatKind = "triple_elimination"
	FormatConsolation        FormatKind = "consolation"
	FormatRoundRobin         FormatKind = "round_robin"
	FormatSwiss              FormatKind = "swiss"
	FormatPoolPlayBracket    FormatKind = "pool_play_bracket"
	FormatThreeGameGuarantee FormatKind = "three_game_guarantee"
	FormatCompassDraw        FormatKind = "compass_draw"
	FormatLeaderboard        FormatKind = "leaderboard"
	FormatMultiEvent         FormatKind = "multi_event"
	FormatTimeTrial          FormatKind = "time_trial"
	FormatSkillsCompetition  FormatKind = "skills_competition"
	FormatLadder             FormatKind = "ladder"
	FormatPyramid            FormatKind = "pyramid"
	FormatBattleRoyale       FormatKind = "battle_royale"
)

var allFormats = map[FormatKind]bool{
	FormatSingleElimination:  true,
	FormatDoubleElimination:  true,
	FormatTripleElimination:  true,
	FormatConsolation:        true,
	FormatRoundRobin:         true,
	FormatSwiss:              true,
	FormatPoolPlayBracket:    true,
	FormatThreeGameGuarantee: true,
	FormatCompassDraw:        true,
	FormatLeaderboard:        true,
	FormatMultiEvent:         true,
	FormatTimeTrial:          true,
	FormatSkillsCompetition:  true,
	FormatLadder:             true,
	FormatPyramid:            true,
	FormatBattleRoyale:       true,
}

func (k FormatKind) Valid() bool {
	return allFormats[k]
}

// GenerateConfig carries the caller-supplied knobs a format may need.
// Zero values mean "use the format default"; Normalize applies those
// defaults so the engine never has to re-check.
type GenerateConfig struct {
	// ShuffleSeed seeds the reproducible shuffle used to place unseeded
	// participants. Identical inputs always produce identical structures.
	ShuffleSeed int64 `json:"shuffle_seed"`

	// Round robin / swiss / pool play.
	PoolCount      int  `json:"pool_count,omitempty"`
	AdvancePerPool int  `json:"advance_per_pool,omitempty"`
	SwissRounds    int  `json:"swiss_rounds,omitempty"`
	AllowDraws     bool `json:"allow_draws,omitempty"`
	PointsPerWin   int  `json:"points_per_win,omitempty"`
	PointsPerDraw  int  `json:"points_per_draw,omitempty"`

	// Elimination policy knobs.
	DropPolicy string `json:"drop_policy,omitempty"` // "standard" is the only published policy

	// Score-driven formats.
	Events          []string `json:"events,omitempty"`
	SecondaryMetric string   `json:"secondary_metric,omitempty"`

	// Battle royale.
	EliminationPercent int `json:"elimination_percent,omitempty"` // bottom x% cut per round
	RoundCap           int `json:"round_cap,omitempty"`

	// Ladder / pyramid.
	MaxChallengeDistance int `json:"max_challenge_distance,omitempty"`
}

const DropPolicyStandard = "standard"

// Normalize fills in format defaults. It returns the config by value so
// stored configs stay exactly as the caller supplied them.
func (c GenerateConfig) Normalize() GenerateConfig {
	if c.PoolCount == 0 {
		c.PoolCount = 2
	}
	if c.AdvancePerPool == 0 {
		c.AdvancePerPool = 2
	}
	if c.PointsPerWin == 0 {
		c.PointsPerWin = 2
	}
	if c.PointsPerDraw == 0 {
		c.PointsPerDraw = 1
	}
	if c.DropPolicy == "" {
		c.DropPolicy = DropPolicyStandard
	}
	if len(c.Events) == 0 {
		c.Events = []string{"overall"}
	}
	if c.EliminationPercent == 0 {
		c.EliminationPercent = 25
	}
	if c.MaxChallengeDistance == 0 {
		c.MaxChallengeDistance = 2
	}
	return c
}
