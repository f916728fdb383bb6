package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/example/coachmail/pkg/models"
)

// minActionLength is a cheap proxy for "not a placeholder": generated
// action items shorter than this are rejected to the fallback path.
const minActionLength = 20

const systemPrompt = "You are a personal coach writing one short weekly email for a twelve-week program. " +
	"Respond with a single JSON object with exactly these string fields: " +
	`"encouragement", "action_item", "goal_connection". No other text.`

// Completer is the text-generation collaborator: prompt in, raw text out
// or failure. Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Generator produces one week of coaching content. Generation failures
// and validation rejections route to the pre-authored fallback table, so
// Generate always succeeds.
type Generator struct {
	completer Completer
}

// NewGenerator creates a generator. A nil completer is allowed and makes
// every week fall back to the pre-authored table.
func NewGenerator(c Completer) *Generator {
	return &Generator{completer: c}
}

// generationResult is the strictly validated shape expected back from
// the text-generation service
type generationResult struct {
	Encouragement  string `json:"encouragement"`
	ActionItem     string `json:"action_item"`
	GoalConnection string `json:"goal_connection"`
}

// Generate builds the weekly content for a recipient. A fallback
// selection is a valid successful result with different provenance, not
// an error.
func (g *Generator) Generate(ctx context.Context, goalsText string, week int, pc models.ProgressionContext) models.WeeklyContent {
	if g.completer == nil {
		return FallbackForWeek(week)
	}

	raw, err := g.completer.Complete(ctx, systemPrompt, buildPrompt(goalsText, week, pc))
	if err != nil {
		log.Printf("Content generation failed for week %d, using fallback: %v", week, err)
		return FallbackForWeek(week)
	}

	result, err := parseResult(raw)
	if err != nil {
		log.Printf("Content generation returned invalid shape for week %d, using fallback: %v", week, err)
		return FallbackForWeek(week)
	}

	if err := validate(result, pc.LastAction()); err != nil {
		log.Printf("Generated content rejected for week %d, using fallback: %v", week, err)
		return FallbackForWeek(week)
	}

	return models.WeeklyContent{
		Encouragement:  strings.TrimSpace(result.Encouragement),
		ActionItem:     strings.TrimSpace(result.ActionItem),
		GoalConnection: strings.TrimSpace(result.GoalConnection),
		Source:         models.SourceGenerated,
	}
}

// buildPrompt embeds the recipient's goals, week number and progression
// context into a single user prompt
func buildPrompt(goalsText string, week int, pc models.ProgressionContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write the week %d of %d email for this participant.\n", week, models.ProgramLengthWeeks)
	fmt.Fprintf(&b, "Stated goals: %s\n", goalsText)
	fmt.Fprintf(&b, "Engagement level: %s\n", pc.EngagementLevel)
	fmt.Fprintf(&b, "Progress pattern: %s\n", pc.ProgressPattern)
	fmt.Fprintf(&b, "Goal complexity: %s\n", pc.GoalComplexity)

	if last := pc.LastAction(); last != "" {
		fmt.Fprintf(&b, "Last week's action (build on it, do not repeat it): %s\n", last)
	}
	if len(pc.PriorThemes) > 1 {
		fmt.Fprintf(&b, "Earlier actions, newest first: %s\n", strings.Join(pc.PriorThemes[1:], " | "))
	}

	b.WriteString("The action_item must be one concrete task doable within the week.")
	return b.String()
}

// parseResult decodes the completion into the expected structure. Models
// sometimes wrap JSON in code fences, so parsing starts at the first
// brace and ends at the last.
func parseResult(raw string) (*generationResult, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion")
	}

	var result generationResult
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode completion: %v", err)
	}
	return &result, nil
}

// validate enforces the content contract: a substantive action item that
// does not repeat the immediately preceding one
func validate(result *generationResult, lastAction string) error {
	action := strings.TrimSpace(result.ActionItem)
	if action == "" {
		return fmt.Errorf("empty action item")
	}
	if len(action) < minActionLength {
		return fmt.Errorf("action item too short (%d chars)", len(action))
	}
	if lastAction != "" && action == lastAction {
		return fmt.Errorf("action item repeats the previous week")
	}
	return nil
}
