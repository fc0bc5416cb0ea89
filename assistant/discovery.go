package assistant

import (
	"strings"

	"github.com/habiliai/spoar/internal/stringutils"
	"github.com/samber/lo"
)

const (
	CategoryOperatingModel = "Operating Model"
	CategoryProcesses      = "Processes"
	CategoryTasks          = "Tasks"
	CategoryDeepDive       = "Deep Dive"

	minProcesses = 2
	minTasks     = 3

	operatingModelChars = 200
	itemChars           = 100
)

var (
	operatingModelKeywords = []string{"business", "company", "work", "role", "job"}
	processKeywords        = []string{"process", "workflow"}
	taskVerbs              = []string{"create", "send", "update", "check", "download", "upload", "process"}
)

type (
	// OPTData is what discovery has learned about the user's Operating
	// model, Processes and Tasks.
	OPTData struct {
		OperatingModel string   `json:"operating_model,omitempty"`
		Processes      []string `json:"processes"`
		Tasks          []string `json:"tasks"`
	}

	Question struct {
		Category string
		Text     string
		Priority string
	}
)

// ExtractOPTData folds one user message into data using keyword heuristics.
// The input is not modified.
func ExtractOPTData(message string, data OPTData) OPTData {
	updated := OPTData{
		OperatingModel: data.OperatingModel,
		Processes:      append([]string{}, data.Processes...),
		Tasks:          append([]string{}, data.Tasks...),
	}
	lower := strings.ToLower(message)

	if updated.OperatingModel == "" && containsAny(lower, operatingModelKeywords) {
		updated.OperatingModel = stringutils.Truncate(message, operatingModelChars)
	}
	if containsAny(lower, processKeywords) {
		updated.Processes = append(updated.Processes, stringutils.Truncate(message, itemChars))
	}
	if containsAny(lower, taskVerbs) {
		updated.Tasks = append(updated.Tasks, stringutils.Truncate(message, itemChars))
	}

	return updated
}

// IsDiscoveryComplete reports whether data has an operating model, at
// least two processes and at least three tasks.
func IsDiscoveryComplete(data OPTData) bool {
	return data.OperatingModel != "" && len(data.Processes) >= minProcesses && len(data.Tasks) >= minTasks
}

// NextQuestion picks the first category discovery still lacks.
func NextQuestion(data OPTData) Question {
	switch {
	case data.OperatingModel == "":
		return Question{Category: CategoryOperatingModel, Text: "What is your primary business or role?", Priority: "high"}
	case len(data.Processes) < minProcesses:
		return Question{Category: CategoryProcesses, Text: "What are your main workflows or processes?", Priority: "high"}
	case len(data.Tasks) < minTasks:
		return Question{Category: CategoryTasks, Text: "What specific tasks do you do daily/weekly?", Priority: "high"}
	default:
		return Question{
			Category: CategoryDeepDive,
			Text:     "Can you tell me more about any pain points or bottlenecks in your current workflow?",
			Priority: "medium",
		}
	}
}

func containsAny(s string, keywords []string) bool {
	return lo.SomeBy(keywords, func(k string) bool {
		return strings.Contains(s, k)
	})
}
