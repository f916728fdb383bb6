package models

// ContentSource records where a weekly content payload came from
type ContentSource string

const (
	// SourceGenerated means the text-generation service produced the content
	SourceGenerated ContentSource = "generated"
	// SourceFallback means the pre-authored week-indexed table produced it
	SourceFallback ContentSource = "fallback"
)

// WeeklyContent is the structured payload fed into mail composition
type WeeklyContent struct {
	Encouragement  string        `json:"encouragement"`
	ActionItem     string        `json:"action_item"`
	GoalConnection string        `json:"goal_connection"`
	Source         ContentSource `json:"source"`
}
