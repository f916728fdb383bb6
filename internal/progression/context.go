// Package progression derives a compact context from a recipient's
// delivery history, used to parameterize content generation.
package progression

import (
	"strings"

	"github.com/example/coachmail/pkg/models"
)

// maxPriorThemes limits how many prior action items are carried as
// generation context.
const maxPriorThemes = 5

// BuildContext assembles the progression context for a recipient. The
// caller supplies the already-fetched delivery history, newest first.
// No I/O happens here.
func BuildContext(history []models.DeliveryRecord, currentWeek int, goalsText string) models.ProgressionContext {
	return models.ProgressionContext{
		EngagementLevel: engagementLevel(len(history)),
		ProgressPattern: progressPattern(len(history), currentWeek),
		GoalComplexity:  goalComplexity(goalsText),
		PriorThemes:     priorThemes(history),
	}
}

// engagementLevel is a monotonic function of delivery count
func engagementLevel(deliveries int) models.EngagementLevel {
	switch {
	case deliveries == 0:
		return models.EngagementNew
	case deliveries <= 2:
		return models.EngagementGettingStarted
	case deliveries <= 6:
		return models.EngagementBuildingMomentum
	case deliveries <= 9:
		return models.EngagementActivelyEngaged
	default:
		return models.EngagementHighlyCommitted
	}
}

// progressPattern compares actual deliveries against what the current
// week implies should have happened
func progressPattern(actual, currentWeek int) models.ProgressPattern {
	expected := currentWeek - 1
	if expected <= 0 {
		return models.PatternBeginning
	}
	if actual >= expected {
		return models.PatternConsistent
	}
	if float64(actual) >= 0.7*float64(expected) {
		return models.PatternMostlyConsistent
	}
	return models.PatternIrregular
}

// goalComplexity is a coarse signal from the stated goals; it only
// shades the generation prompt and carries no behavioral contract
func goalComplexity(goalsText string) models.GoalComplexity {
	words := len(strings.Fields(goalsText))
	switch {
	case words < 12:
		return models.GoalsSimple
	case words < 40:
		return models.GoalsModerate
	default:
		return models.GoalsLayered
	}
}

// priorThemes takes up to 5 most-recent non-empty action items, newest first
func priorThemes(history []models.DeliveryRecord) []string {
	var themes []string
	for _, rec := range history {
		content := strings.TrimSpace(rec.ActionContent)
		if content == "" {
			continue
		}
		themes = append(themes, content)
		if len(themes) == maxPriorThemes {
			break
		}
	}
	return themes
}
