package ai

import "github.com/example/coachmail/pkg/models"

// fallbackTable holds pre-authored weekly content, one entry per program
// week. Selection is deterministic by week number so every recipient
// still receives a coherent, non-empty action item during a total
// text-generation outage.
var fallbackTable = [models.ProgramLengthWeeks]models.WeeklyContent{
	{
		Encouragement:  "Welcome to week one. Starting is the hardest part, and you have already done it.",
		ActionItem:     "Write down the single outcome that would make the next twelve weeks a success, and put it somewhere you will see every morning.",
		GoalConnection: "A visible, concrete target keeps every later step pointed at the goal you enrolled with.",
	},
	{
		Encouragement:  "One week in. Momentum is built one small action at a time.",
		ActionItem:     "Break your main goal into three milestones and pick the first concrete step toward the nearest one. Do that step this week.",
		GoalConnection: "Milestones turn a twelve-week ambition into something you can act on today.",
	},
	{
		Encouragement:  "Two weeks of showing up. That consistency is the foundation everything else builds on.",
		ActionItem:     "Block a recurring thirty-minute slot in your calendar dedicated to your goal, and protect it for the whole week.",
		GoalConnection: "Scheduled time is how intentions survive busy weeks.",
	},
	{
		Encouragement:  "You are a quarter of the way through. Time to look at what the first weeks taught you.",
		ActionItem:     "Review your notes from the first three weeks and write one paragraph on what worked, what stalled, and one change you will make.",
		GoalConnection: "A short retrospective keeps the remaining weeks aimed at what actually moves you forward.",
	},
	{
		Encouragement:  "Week five. The novelty has worn off, which means the habit is what carries you now.",
		ActionItem:     "Identify the one recurring obstacle that costs you the most progress and design a specific workaround for it this week.",
		GoalConnection: "Removing one persistent blocker compounds across every remaining week.",
	},
	{
		Encouragement:  "Almost halfway. You have built more than you probably give yourself credit for.",
		ActionItem:     "Tell one person you trust about your goal and ask them to check in with you once a week for the rest of the program.",
		GoalConnection: "Accountability from someone outside your own head roughly doubles follow-through.",
	},
	{
		Encouragement:  "Week seven: the second half starts now, and it starts from strength.",
		ActionItem:     "Measure your progress against the milestones you set in week two and adjust the remaining ones to match reality.",
		GoalConnection: "Honest mid-course correction beats quietly abandoning a plan that drifted.",
	},
	{
		Encouragement:  "Eight weeks of effort is a serious investment. Keep protecting it.",
		ActionItem:     "Pick the task related to your goal that you have been avoiding longest and spend one focused hour on it this week.",
		GoalConnection: "Avoided tasks are usually the ones gating the progress you care about most.",
	},
	{
		Encouragement:  "Week nine. You know your patterns by now; use that knowledge deliberately.",
		ActionItem:     "Double down on the single practice that has produced the most progress so far by giving it twice the time this week.",
		GoalConnection: "Concentrating effort on what demonstrably works is the fastest route through the final weeks.",
	},
	{
		Encouragement:  "Ten weeks in, and the finish line is visible. Strong finishes are planned, not improvised.",
		ActionItem:     "Write a concrete plan for the final two weeks: what gets finished, what gets dropped, and what done looks like.",
		GoalConnection: "A deliberate finish converts twelve weeks of work into a result you can point to.",
	},
	{
		Encouragement:  "Week eleven. Nearly everything is built; now make it durable.",
		ActionItem:     "Choose the one habit from this program you want to keep permanently and decide exactly when and where it happens after the program ends.",
		GoalConnection: "Goals end; the habits that achieved them should not.",
	},
	{
		Encouragement:  "The final week. Finish it the way you started: on purpose.",
		ActionItem:     "Write a one-page summary of what you achieved over the twelve weeks and the next goal that follows from it.",
		GoalConnection: "Naming what you accomplished, and what comes next, turns this program into a beginning rather than an ending.",
	},
}

// FallbackForWeek returns the pre-authored content for the given program
// week (1-12). Out-of-range weeks clamp to the nearest entry.
func FallbackForWeek(week int) models.WeeklyContent {
	if week < 1 {
		week = 1
	}
	if week > models.ProgramLengthWeeks {
		week = models.ProgramLengthWeeks
	}

	content := fallbackTable[week-1]
	content.Source = models.SourceFallback
	return content
}
