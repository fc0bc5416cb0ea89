package assistant

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/habiliai/spoar/internal/stringutils"
	"github.com/samber/lo"
)

const (
	// MinAutomationScore is the lowest score a task needs to be suggested.
	MinAutomationScore = 0.6
	MaxSuggestions     = 3

	selectionPrefixChars = 30
	displayTaskChars     = 60
)

type Suggestion struct {
	Task       string  `json:"task"`
	Score      float64 `json:"automation_score"`
	TimeSaved  string  `json:"estimated_time_saved"`
	Complexity string  `json:"complexity"`
	Priority   string  `json:"priority"`
	Approach   string  `json:"suggested_approach"`
}

// scoring works in tenths to keep the thresholds exact.
var scoreRules = []struct {
	keywords []string
	tenths   int
}{
	{[]string{"daily", "weekly", "every", "repeat", "always", "routine"}, 3},
	{[]string{"copy", "transfer", "update", "sync", "extract", "import", "export"}, 3},
	{[]string{"manually", "by hand", "check", "verify", "format"}, 2},
	{[]string{"api", "webhook", "integration", "connect"}, 2},
}

// ScoreTask rates how automatable a task description is, from 0 to 1.
func ScoreTask(task string) float64 {
	lower := strings.ToLower(task)
	tenths := 0
	for _, rule := range scoreRules {
		if containsAny(lower, rule.keywords) {
			tenths += rule.tenths
		}
	}
	return float64(min(tenths, 10)) / 10
}

func EstimateTimeSaved(task string) string {
	lower := strings.ToLower(task)
	switch {
	case strings.Contains(lower, "daily"):
		return "30-60 minutes/day"
	case strings.Contains(lower, "weekly"):
		return "2-4 hours/week"
	case strings.Contains(lower, "monthly"):
		return "4-8 hours/month"
	default:
		return "1-2 hours per execution"
	}
}

func EstimateComplexity(task string) string {
	lower := strings.ToLower(task)
	switch {
	case containsAny(lower, []string{"copy", "move", "format", "send"}):
		return "Low"
	case containsAny(lower, []string{"analyze", "integrate", "process", "generate"}):
		return "High"
	default:
		return "Medium"
	}
}

func SuggestApproach(task string) string {
	lower := strings.ToLower(task)
	switch {
	case strings.Contains(lower, "email"):
		return "Python script with SMTP or API integration"
	case containsAny(lower, []string{"data", "spreadsheet"}):
		return "Python script with pandas/openpyxl for data manipulation"
	case containsAny(lower, []string{"api", "webhook"}):
		return "Python script with requests library for API calls"
	case strings.Contains(lower, "file"):
		return "Python script with file system operations"
	default:
		return "Python script with appropriate libraries based on requirements"
	}
}

// AnalyzeTasks returns up to MaxSuggestions tasks scoring at least
// MinAutomationScore, best first.
func AnalyzeTasks(data OPTData) []Suggestion {
	suggestions := lo.FilterMap(data.Tasks, func(task string, _ int) (Suggestion, bool) {
		score := ScoreTask(task)
		if score < MinAutomationScore {
			return Suggestion{}, false
		}
		priority := "medium"
		if score >= 0.8 {
			priority = "high"
		}
		return Suggestion{
			Task:       task,
			Score:      score,
			TimeSaved:  EstimateTimeSaved(task),
			Complexity: EstimateComplexity(task),
			Priority:   priority,
			Approach:   SuggestApproach(task),
		}, true
	})

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > MaxSuggestions {
		suggestions = suggestions[:MaxSuggestions]
	}
	return suggestions
}

func FormatSuggestions(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return "No high-value automation opportunities found at this time."
	}

	var sb strings.Builder
	sb.WriteString("## Automation Opportunities\n\n")
	for i, s := range suggestions {
		fmt.Fprintf(&sb, "### Option %d: %s...\n\n", i+1, stringutils.Truncate(s.Task, displayTaskChars))
		fmt.Fprintf(&sb, "- **Automation Score**: %.0f%%\n", s.Score*100)
		fmt.Fprintf(&sb, "- **Time Saved**: %s\n", s.TimeSaved)
		fmt.Fprintf(&sb, "- **Complexity**: %s\n", s.Complexity)
		fmt.Fprintf(&sb, "- **Approach**: %s\n\n", s.Approach)
	}
	sb.WriteString("Which automation would you like to build first?")
	return sb.String()
}

var ordinals = map[int]string{1: "first", 2: "second", 3: "third"}

// SelectTask resolves the user's choice among suggestions: an option
// number, "option N", an ordinal, the start of a task, or a generic
// build/code/automate request meaning the first suggestion.
func SelectTask(message string, suggestions []Suggestion) (string, bool) {
	lower := strings.ToLower(message)
	for i, s := range suggestions {
		n := i + 1
		prefix := taskPrefix(s.Task)
		ordinal, hasOrdinal := ordinals[n]
		if strings.Contains(lower, strconv.Itoa(n)) ||
			(prefix != "" && strings.Contains(lower, prefix)) ||
			strings.Contains(lower, "option "+strconv.Itoa(n)) ||
			(hasOrdinal && strings.Contains(lower, ordinal)) {
			return s.Task, true
		}
	}

	if len(suggestions) > 0 && containsAny(lower, []string{"build", "code", "automate"}) {
		return suggestions[0].Task, true
	}
	return "", false
}

func taskPrefix(task string) string {
	return stringutils.Truncate(strings.ToLower(task), selectionPrefixChars)
}
