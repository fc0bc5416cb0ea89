package assistant

import (
	"fmt"
	"strings"
	"time"
)

type (
	PlanPhase struct {
		Name          string   `json:"phase"`
		Steps         []string `json:"steps"`
		EstimatedTime string   `json:"estimated_time"`
	}

	Masterplan struct {
		Task               string      `json:"task"`
		CreatedAt          time.Time   `json:"created_at"`
		Phases             []PlanPhase `json:"phases"`
		TotalEstimatedTime string      `json:"total_estimated_time"`
		Dependencies       []string    `json:"dependencies"`
		Risks              []string    `json:"risks"`
	}
)

// BuildMasterplan lays out the delivery plan for automating task.
func BuildMasterplan(task string, now time.Time) Masterplan {
	return Masterplan{
		Task:      task,
		CreatedAt: now,
		Phases: []PlanPhase{
			{
				Name: "Planning",
				Steps: []string{
					"Define automation scope and requirements",
					"Identify required APIs, tools, and libraries",
					"Design data flow and error handling",
					"Set up development environment",
				},
				EstimatedTime: "1-2 hours",
			},
			{
				Name: "Development",
				Steps: []string{
					"Set up project structure",
					"Implement core functionality",
					"Add error handling and logging",
					"Write unit tests",
				},
				EstimatedTime: "2-4 hours",
			},
			{
				Name: "Testing",
				Steps: []string{
					"Test with sample data",
					"Validate edge cases",
					"Test error scenarios",
					"Performance testing",
				},
				EstimatedTime: "1-2 hours",
			},
			{
				Name: "Deployment",
				Steps: []string{
					"Document usage instructions",
					"Set up scheduling (if needed)",
					"Configure environment variables",
					"Deploy to production environment",
				},
				EstimatedTime: "1 hour",
			},
		},
		TotalEstimatedTime: "5-9 hours",
		Dependencies:       planDependencies(task),
		Risks:              planRisks(task),
	}
}

func planDependencies(task string) []string {
	lower := strings.ToLower(task)

	var deps []string
	if strings.Contains(lower, "email") {
		deps = append(deps, "Email API credentials (SMTP or service API key)")
	}
	if containsAny(lower, []string{"api", "webhook"}) {
		deps = append(deps, "API credentials and documentation")
	}
	if containsAny(lower, []string{"data", "spreadsheet"}) {
		deps = append(deps, "Data source access and format specifications")
	}
	if strings.Contains(lower, "file") {
		deps = append(deps, "File system access and permissions")
	}
	return append(deps, "Python 3.8+ with required libraries")
}

func planRisks(task string) []string {
	lower := strings.ToLower(task)

	var risks []string
	if strings.Contains(lower, "api") {
		risks = append(risks, "API rate limits or changes")
	}
	if strings.Contains(lower, "data") {
		risks = append(risks, "Data format changes")
	}
	if strings.Contains(lower, "email") {
		risks = append(risks, "Email service provider limitations")
	}
	return append(risks, "Error handling for edge cases", "Maintenance requirements as systems evolve")
}

func (m Masterplan) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Masterplan: %s\n\n", m.Task)
	fmt.Fprintf(&sb, "**Created**: %s\n\n", m.CreatedAt.Format(time.RFC3339))

	sb.WriteString("## Phases\n\n")
	for _, phase := range m.Phases {
		fmt.Fprintf(&sb, "### %s (%s)\n\n", phase.Name, phase.EstimatedTime)
		for i, step := range phase.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "**Total Estimated Time**: %s\n\n", m.TotalEstimatedTime)

	if len(m.Dependencies) > 0 {
		sb.WriteString("## Dependencies\n\n")
		for _, dep := range m.Dependencies {
			fmt.Fprintf(&sb, "- %s\n", dep)
		}
		sb.WriteString("\n")
	}
	if len(m.Risks) > 0 {
		sb.WriteString("## Potential Risks\n\n")
		for _, risk := range m.Risks {
			fmt.Fprintf(&sb, "- %s\n", risk)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
