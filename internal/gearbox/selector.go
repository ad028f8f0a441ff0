package gearbox

// Rule names reported in a Decision.
const (
	RuleCrawl        = "crawl"
	RuleLowSpeedIdle = "low_speed_low_rpm"
	RuleCruise       = "eco_cruise"
	RuleHighway      = "eco_highway"
	RuleHold         = "hold"
	RuleDownshift1   = "downshift_1"
	RuleDownshift2   = "downshift_2"
	RuleDownshift3   = "downshift_3"
	RuleDownshift4   = "downshift_4"
	RuleFallback     = "fallback"
)

// Decision is a gear recommendation together with what produced it.
type Decision struct {
	Gear     int    `json:"gear"`
	Rule     string `json:"rule"`
	BestGear int    `json:"best_gear"` // 0 when a low-speed override fired first
	Scores   Scores `json:"scores"`
}

// situation is what the rule predicates see.
type situation struct {
	reading Reading
	scores  Scores
	best    int
}

// rule is one row of a priority table. The first matching row wins.
type rule struct {
	name  string
	match func(s situation) bool
	gear  func(s situation) int
}

func fixed(gear int) func(situation) int {
	return func(situation) int { return gear }
}

// downshift returns best-n, never below first gear.
func downshift(n int) func(situation) int {
	return func(s situation) int {
		return max(MinGear, s.best-n)
	}
}

var lowSpeedRules = []rule{
	{
		name:  RuleCrawl,
		match: func(s situation) bool { return s.reading.Speed < 8 },
		gear:  fixed(1),
	},
	{
		name:  RuleLowSpeedIdle,
		match: func(s situation) bool { return s.reading.Speed < 20 && s.scores.RPM < 0.4 },
		gear:  fixed(2),
	},
}

// loadRules shift down further from the best-acceleration gear the lower the
// engine and road speed are. Shared by both modes.
var loadRules = []rule{
	{
		name:  RuleHold,
		match: func(s situation) bool { return s.scores.RPM > 0.8 || s.scores.Speed > 0.85 },
		gear:  downshift(0),
	},
	{
		name:  RuleDownshift1,
		match: func(s situation) bool { return s.scores.RPM > 0.65 || s.scores.Speed > 0.7 },
		gear:  downshift(1),
	},
	{
		name:  RuleDownshift2,
		match: func(s situation) bool { return s.scores.RPM > 0.5 || s.scores.Speed > 0.5 },
		gear:  downshift(2),
	},
	{
		name:  RuleDownshift3,
		match: func(s situation) bool { return s.scores.RPM > 0.3 || s.scores.Speed > 0.35 || s.scores.Incline > 0.7 },
		gear:  downshift(3),
	},
	{
		name:  RuleDownshift4,
		match: func(s situation) bool { return s.scores.Incline > 0.8 || s.scores.Throttle > 0.7 },
		gear:  downshift(4),
	},
	{
		name:  RuleFallback,
		match: func(situation) bool { return true },
		gear:  fixed(1),
	},
}

var economyRules = append([]rule{
	{
		name:  RuleCruise,
		match: func(s situation) bool { return s.reading.Speed > 40 && s.reading.RPM < 2500 },
		gear:  fixed(3),
	},
	{
		name:  RuleHighway,
		match: func(s situation) bool { return s.reading.Speed > 100 },
		gear:  fixed(5),
	},
}, loadRules...)

var towingRules = loadRules

// Selector picks a gear for a Reading.
type Selector struct {
	drivetrain DriveTrain
}

// NewSelector returns a Selector using the given drivetrain.
func NewSelector(d DriveTrain) *Selector {
	return &Selector{drivetrain: d}
}

// SelectGear returns the recommended gear for r, always in [MinGear, MaxGear].
func (s *Selector) SelectGear(r Reading) int {
	return s.Decide(r).Gear
}

// Decide evaluates the rule tables for r:
//
//  1. low-speed overrides, independent of mode
//  2. the best-acceleration gear from the drivetrain
//  3. the mode table (economy overrides, then the shared load rules)
//
// The resulting gear is clamped to [MinGear, MaxGear].
func (s *Selector) Decide(r Reading) Decision {
	sit := situation{reading: r, scores: ScoreReading(r)}

	if d, ok := evaluate(lowSpeedRules, sit); ok {
		return d
	}

	sit.best = s.drivetrain.BestGearByAcceleration(r.RPM)

	table := economyRules
	if r.Mode == ModeTowing {
		table = towingRules
	}
	d, _ := evaluate(table, sit)
	return d
}

func evaluate(table []rule, sit situation) (Decision, bool) {
	for _, rl := range table {
		if !rl.match(sit) {
			continue
		}
		return Decision{
			Gear:     clampGear(rl.gear(sit)),
			Rule:     rl.name,
			BestGear: sit.best,
			Scores:   sit.scores,
		}, true
	}
	return Decision{}, false
}
