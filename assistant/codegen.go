package assistant

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/habiliai/spoar/errors"
	"github.com/samber/lo"
)

// knownPackages maps detectable imports to their pip package.
var knownPackages = []struct{ module, pip string }{
	{"requests", "requests"},
	{"pandas", "pandas"},
	{"numpy", "numpy"},
	{"openpyxl", "openpyxl"},
	{"xlsxwriter", "xlsxwriter"},
	{"beautifulsoup4", "beautifulsoup4"},
	{"selenium", "selenium"},
	{"pillow", "pillow"},
	{"pytz", "pytz"},
	{"python-dotenv", "python-dotenv"},
	{"groq", "groq"},
	{"openai", "openai"},
}

var pythonStdlib = []string{"os", "sys", "json", "datetime", "typing", "pathlib", "logging"}

// ExtractDependencies detects the pip packages a generated Python script
// imports. python-dotenv is added whenever the script reads a .env file.
func ExtractDependencies(code string) []string {
	lower := strings.ToLower(code)

	var deps []string
	for _, p := range knownPackages {
		if strings.Contains(lower, "import "+p.module) || strings.Contains(lower, "from "+p.module) {
			deps = append(deps, p.pip)
		}
	}
	if (strings.Contains(lower, ".env") || strings.Contains(lower, "load_dotenv")) && !lo.Contains(deps, "python-dotenv") {
		deps = append(deps, "python-dotenv")
	}
	return deps
}

// StripCodeFences removes markdown fences around generated code.
func StripCodeFences(code string) string {
	code = strings.ReplaceAll(code, "```python", "")
	code = strings.ReplaceAll(code, "```", "")
	return strings.TrimSpace(code)
}

// SaveScript writes code without its fences to dir/name and returns the
// path.
func SaveScript(dir, name, code string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", dir)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(StripCodeFences(code)), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to save script %s", path)
	}
	return path, nil
}

// WriteRequirements writes one non-stdlib dependency per line to path.
func WriteRequirements(path string, deps []string) error {
	external := lo.Without(deps, pythonStdlib...)

	var sb strings.Builder
	for _, dep := range external {
		sb.WriteString(dep)
		sb.WriteByte('\n')
	}
	return errors.Wrapf(os.WriteFile(path, []byte(sb.String()), 0o644), "failed to write requirements %s", path)
}

type Deployment struct {
	ScriptPath   string
	Dependencies []string
	Schedule     string
}

func (d Deployment) installCommand() string {
	if len(d.Dependencies) == 0 {
		return "pip install -r requirements.txt"
	}
	external := lo.Without(d.Dependencies, pythonStdlib...)
	if len(external) == 0 {
		return "No external dependencies required"
	}
	return "pip install " + strings.Join(external, " ")
}

func (d Deployment) scheduling() string {
	if d.Schedule == "" {
		return `# Manual Execution:
python script_name.py

# For automated scheduling, use cron (Linux/Mac) or Task Scheduler (Windows):

# Linux/Mac Cron Example (runs daily at 9 AM):
# 0 9 * * * /usr/bin/python3 /path/to/script_name.py

# Windows Task Scheduler:
# Create a new task that runs python.exe with the script path`
	}
	return fmt.Sprintf(`# Scheduled to run: %s

# Add to crontab (Linux/Mac):
# Edit crontab: crontab -e
# Add line with appropriate schedule

# Or use Windows Task Scheduler with the specified schedule`, d.Schedule)
}

const (
	deploymentEnvSetup = `# Create a .env file in the script directory
# Add your API keys and credentials:

# Example:
# API_KEY=your_api_key_here
# EMAIL_PASSWORD=your_email_password
# DATABASE_URL=your_database_url`

	deploymentMonitoring = `# Monitoring Recommendations:

1. Add logging to track script execution:
   import logging
   logging.basicConfig(filename='automation.log', level=logging.INFO)

2. Set up error notifications (email/Slack) for failures

3. Monitor script execution time and resource usage

4. Set up alerts for critical failures`
)

var deploymentSteps = []string{
	"1. Install Python 3.8 or higher",
	"2. Install required dependencies",
	"3. Set up environment variables",
	"4. Test the script manually",
	"5. Set up scheduling (if needed)",
}

func (d Deployment) String() string {
	var sb strings.Builder
	sb.WriteString("# Deployment Instructions\n\n")
	fmt.Fprintf(&sb, "**Script**: `%s`\n\n", d.ScriptPath)

	sb.WriteString("## Setup Steps\n\n")
	sb.WriteString(strings.Join(deploymentSteps, "\n"))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "## Environment Setup\n\n```bash\n%s\n```\n\n", deploymentEnvSetup)
	fmt.Fprintf(&sb, "## Install Dependencies\n\n```bash\n%s\n```\n\n", d.installCommand())
	fmt.Fprintf(&sb, "## Scheduling\n\n```bash\n%s\n```\n\n", d.scheduling())
	fmt.Fprintf(&sb, "## Monitoring\n\n```python\n%s\n```\n", deploymentMonitoring)
	return sb.String()
}
