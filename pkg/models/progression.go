package models

// EngagementLevel classifies a recipient by how many deliveries they have received
type EngagementLevel string

const (
	EngagementNew              EngagementLevel = "new"
	EngagementGettingStarted   EngagementLevel = "getting_started"
	EngagementBuildingMomentum EngagementLevel = "building_momentum"
	EngagementActivelyEngaged  EngagementLevel = "actively_engaged"
	EngagementHighlyCommitted  EngagementLevel = "highly_committed"
)

// ProgressPattern classifies the ratio of actual to expected deliveries
type ProgressPattern string

const (
	PatternBeginning        ProgressPattern = "beginning"
	PatternConsistent       ProgressPattern = "consistent"
	PatternMostlyConsistent ProgressPattern = "mostly_consistent"
	PatternIrregular        ProgressPattern = "irregular"
)

// GoalComplexity is a coarse signal derived from the recipient's stated goals
type GoalComplexity string

const (
	GoalsSimple   GoalComplexity = "simple"
	GoalsModerate GoalComplexity = "moderate"
	GoalsLayered  GoalComplexity = "layered"
)

// ProgressionContext is a derived summary of a recipient's delivery history.
// It is recomputed on each evaluation and never persisted.
type ProgressionContext struct {
	EngagementLevel EngagementLevel `json:"engagement_level"`
	ProgressPattern ProgressPattern `json:"progress_pattern"`
	GoalComplexity  GoalComplexity  `json:"goal_complexity"`
	PriorThemes     []string        `json:"prior_themes"` // Most recent first, at most 5
}

// LastAction returns the most recent prior action content, or empty
func (p *ProgressionContext) LastAction() string {
	if len(p.PriorThemes) == 0 {
		return ""
	}
	return p.PriorThemes[0]
}
