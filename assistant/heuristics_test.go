package assistant_test

import (
	"testing"

	"github.com/habiliai/spoar/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextQuestion(t *testing.T) {
	assert.Equal(t, assistant.CategoryOperatingModel, assistant.NextQuestion(assistant.OPTData{}).Category)

	partial := assistant.OPTData{
		OperatingModel: "Content creator",
		Processes:      []string{"Video editing"},
		Tasks:          []string{"Download footage", "Edit video"},
	}
	assert.Equal(t, assistant.CategoryProcesses, assistant.NextQuestion(partial).Category)

	partial.Processes = append(partial.Processes, "Social media")
	assert.Equal(t, assistant.CategoryTasks, assistant.NextQuestion(partial).Category)

	partial.Tasks = append(partial.Tasks, "Upload to YouTube")
	q := assistant.NextQuestion(partial)
	assert.Equal(t, assistant.CategoryDeepDive, q.Category)
	assert.Equal(t, "medium", q.Priority)
}

func TestExtractOPTData(t *testing.T) {
	empty := assistant.OPTData{}
	updated := assistant.ExtractOPTData("I run a newsletter business for dog owners", empty)
	assert.Equal(t, "I run a newsletter business for dog owners", updated.OperatingModel)
	assert.Empty(t, updated.Processes)
	assert.Empty(t, updated.Tasks)
	assert.Empty(t, empty.OperatingModel)

	updated = assistant.ExtractOPTData("My workflow: I create content and send emails to my company list", updated)
	assert.Equal(t, "I run a newsletter business for dog owners", updated.OperatingModel, "operating model is kept once set")
	assert.Len(t, updated.Processes, 1)
	assert.Len(t, updated.Tasks, 1)

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'é'
	}
	updated = assistant.ExtractOPTData("job "+string(long), assistant.OPTData{})
	assert.Len(t, []rune(updated.OperatingModel), 200)
}

func TestIsDiscoveryComplete(t *testing.T) {
	assert.False(t, assistant.IsDiscoveryComplete(assistant.OPTData{}))
	assert.False(t, assistant.IsDiscoveryComplete(assistant.OPTData{
		OperatingModel: "Content creator",
		Processes:      []string{"Video editing"},
		Tasks:          []string{"Download footage", "Edit video", "Upload"},
	}))
	assert.True(t, assistant.IsDiscoveryComplete(assistant.OPTData{
		OperatingModel: "Content creator",
		Processes:      []string{"Video editing", "Social media"},
		Tasks:          []string{"Download footage", "Edit video", "Upload to YouTube", "Post on social"},
	}))
}

func TestScoreTask(t *testing.T) {
	tests := []struct {
		task  string
		score float64
	}{
		{"Write articles", 0},
		{"Send weekly newsletters", 0.3},
		{"Update subscriber lists manually", 0.5},
		{"Export the daily report", 0.6},
		{"Manually update the subscriber list daily", 0.8},
		{"Every day sync orders via the API and verify totals", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.task, func(t *testing.T) {
			assert.Equal(t, tt.score, assistant.ScoreTask(tt.task))
		})
	}
}

func TestEstimates(t *testing.T) {
	assert.Equal(t, "30-60 minutes/day", assistant.EstimateTimeSaved("daily backup"))
	assert.Equal(t, "2-4 hours/week", assistant.EstimateTimeSaved("Weekly digest"))
	assert.Equal(t, "4-8 hours/month", assistant.EstimateTimeSaved("monthly invoices"))
	assert.Equal(t, "1-2 hours per execution", assistant.EstimateTimeSaved("invoices"))

	assert.Equal(t, "Low", assistant.EstimateComplexity("copy rows and analyze them"))
	assert.Equal(t, "High", assistant.EstimateComplexity("analyze churn"))
	assert.Equal(t, "Medium", assistant.EstimateComplexity("sync contacts"))

	assert.Equal(t, "Python script with SMTP or API integration", assistant.SuggestApproach("email the team"))
	assert.Equal(t, "Python script with pandas/openpyxl for data manipulation", assistant.SuggestApproach("clean spreadsheet"))
	assert.Equal(t, "Python script with requests library for API calls", assistant.SuggestApproach("call the webhook"))
	assert.Equal(t, "Python script with file system operations", assistant.SuggestApproach("rename file"))
}

func TestAnalyzeTasks(t *testing.T) {
	suggestions := assistant.AnalyzeTasks(assistant.OPTData{
		OperatingModel: "Newsletter business",
		Processes:      []string{"Content creation", "Email marketing"},
		Tasks: []string{
			"Write articles daily",
			"Export the daily report",
			"Update subscriber lists manually",
			"Every day sync orders via the API and verify totals",
			"Manually update the subscriber list daily",
			"Copy signups every week",
		},
	})

	require.Len(t, suggestions, assistant.MaxSuggestions)
	assert.Equal(t, "Every day sync orders via the API and verify totals", suggestions[0].Task)
	assert.Equal(t, "high", suggestions[0].Priority)
	assert.Equal(t, "Manually update the subscriber list daily", suggestions[1].Task)
	assert.Equal(t, "Export the daily report", suggestions[2].Task)
	assert.Equal(t, "medium", suggestions[2].Priority)
	assert.Equal(t, "30-60 minutes/day", suggestions[2].TimeSaved)

	formatted := assistant.FormatSuggestions(suggestions)
	assert.Contains(t, formatted, "### Option 1: Every day sync orders via the API and verify totals...")
	assert.Contains(t, formatted, "- **Automation Score**: 100%")
	assert.Contains(t, formatted, "- **Automation Score**: 60%")
	assert.Equal(t, "No high-value automation opportunities found at this time.", assistant.FormatSuggestions(nil))
}

func TestSelectTask(t *testing.T) {
	suggestions := []assistant.Suggestion{
		{Task: "Manually update the subscriber list daily"},
		{Task: "Export the daily report"},
		{Task: "Copy signups every week"},
	}

	tests := []struct {
		message string
		task    string
		ok      bool
	}{
		{"2", "Export the daily report", true},
		{"Let's do option 3", "Copy signups every week", true},
		{"the first one please", "Manually update the subscriber list daily", true},
		{"I like the THIRD", "Copy signups every week", true},
		{"export the daily report sounds good", "Export the daily report", true},
		{"just build something", "Manually update the subscriber list daily", true},
		{"tell me more about these", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			task, ok := assistant.SelectTask(tt.message, suggestions)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.task, task)
		})
	}

	_, ok := assistant.SelectTask("build it", nil)
	assert.False(t, ok)
}

func TestIsExitCommand(t *testing.T) {
	for _, input := range []string{"exit", "  QUIT ", "ok bye", "I'm done for today", "Stop."} {
		assert.True(t, assistant.IsExitCommand(input), input)
	}
	for _, input := range []string{"", "send the weekend report", "closed accounts", "unfinished tasks", "backend sync"} {
		assert.False(t, assistant.IsExitCommand(input), input)
	}
}
