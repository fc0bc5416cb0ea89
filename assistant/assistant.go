// Package assistant implements a conversational automation consultant that
// moves a user through DISCOVERY, ANALYSIS and CODE phases.
package assistant

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/habiliai/spoar/decision"
	"github.com/habiliai/spoar/engine"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/repetition"
)

type Phase string

const (
	PhaseDiscovery Phase = "DISCOVERY"
	PhaseAnalysis  Phase = "ANALYSIS"
	PhaseCode      Phase = "CODE"

	DefaultTemperature = 0.7
	DefaultOutputDir   = "generated_automations"
	HistoryWindow      = 10

	exitSentinel          = "<EXIT>"
	phaseCompleteTag      = "<PHASE_COMPLETE>"
	discoveryDoneMessage  = "Great! I have enough information about your business. Let me analyze your tasks and suggest automation opportunities...\n\n**Moving to Analysis Phase**"
	discoveryForcedSuffix = "\n\n**Discovery complete. Moving to Analysis...**"
	noSuggestionsMessage  = "I've analyzed your tasks, but I couldn't find high-value automation opportunities at this time. Would you like to explore more specific tasks or processes?"
)

var (
	exitKeywords = []string{"exit", "quit", "bye", "end", "stop", "close", "done", "finish"}
	exitPattern  = regexp.MustCompile(`(?i)\b(` + strings.Join(exitKeywords, "|") + `)\b`)

	//go:embed prompts/discovery_system.md
	discoverySystemPrompt string
	//go:embed prompts/analysis_system.md
	analysisSystemPrompt string
	//go:embed prompts/code_system.md
	codeSystemPrompt string

	//go:embed prompts/*.tmpl
	promptFS    embed.FS
	promptTmpls = template.Must(template.New("").Funcs(sprig.TxtFuncMap()).ParseFS(promptFS, "prompts/*.tmpl"))
)

type (
	HistoryMessage struct {
		Role      engine.Role `json:"role"`
		Content   string      `json:"content"`
		Timestamp time.Time   `json:"timestamp"`
	}

	Reply struct {
		Text  string
		Phase Phase
		// Exit is set when the user asked to leave.
		Exit bool
		// Repeated is set when the assistant keeps giving the same answer.
		// It is terminal.
		Repeated bool
	}

	Assistant struct {
		chat        engine.ChatModel
		logger      *slog.Logger
		detector    *repetition.Detector
		temperature float64
		outputDir   string
		now         func() time.Time

		phase         Phase
		previousPhase Phase
		data          OPTData
		history       []HistoryMessage
		suggestions   []Suggestion
		selectedTask  string
		masterplan    *Masterplan
	}

	Option func(*Assistant)
)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

func WithTemperature(t float64) Option {
	return func(a *Assistant) {
		a.temperature = t
	}
}

// WithOutputDir sets where generated scripts and requirements are written.
func WithOutputDir(dir string) Option {
	return func(a *Assistant) {
		if dir != "" {
			a.outputDir = dir
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

func WithRepetition(opts ...repetition.Option) Option {
	return func(a *Assistant) {
		a.detector = repetition.New(opts...)
	}
}

func New(chat engine.ChatModel, opts ...Option) *Assistant {
	a := &Assistant{
		chat:          chat,
		logger:        slog.Default(),
		detector:      repetition.New(),
		temperature:   DefaultTemperature,
		outputDir:     DefaultOutputDir,
		now:           time.Now,
		phase:         PhaseDiscovery,
		previousPhase: PhaseDiscovery,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IsExitCommand reports whether input contains an exit keyword as a whole
// word.
func IsExitCommand(input string) bool {
	return exitPattern.MatchString(input)
}

func (a *Assistant) Phase() Phase {
	return a.phase
}

func (a *Assistant) UpdatePhase(p Phase) {
	a.logger.Info("phase transition", "from", a.phase, "to", p)
	a.phase = p
}

func (a *Assistant) Data() OPTData {
	return a.data
}

func (a *Assistant) History() []HistoryMessage {
	return append([]HistoryMessage(nil), a.history...)
}

// Respond handles one user turn. LLM failures degrade to an apology and
// keep the conversation going; errors are returned only for local failures
// such as saving generated code.
func (a *Assistant) Respond(ctx context.Context, input string) (Reply, error) {
	if IsExitCommand(input) {
		return Reply{Phase: a.phase, Exit: true}, nil
	}

	a.addMessage(engine.RoleUser, input)

	if a.phase != a.previousPhase {
		a.detector.Reset()
		a.previousPhase = a.phase
	}

	var (
		text string
		err  error
	)
	switch a.phase {
	case PhaseDiscovery:
		text = a.discover(ctx, input)
	case PhaseAnalysis:
		text = a.analyze(ctx, input)
	case PhaseCode:
		text, err = a.generate(ctx)
	default:
		err = errors.Errorf("unknown phase %q", a.phase)
	}
	if err != nil {
		return Reply{Phase: a.phase}, err
	}

	if text == exitSentinel {
		return Reply{Phase: a.phase, Exit: true}, nil
	}
	if a.detector.RecordAndCheck(text) {
		a.logger.WarnContext(ctx, "assistant is repeating itself", "phase", a.phase)
		return Reply{Text: text, Phase: a.phase, Repeated: true}, nil
	}

	a.addMessage(engine.RoleAssistant, text)
	return Reply{Text: text, Phase: a.phase}, nil
}

func (a *Assistant) discover(ctx context.Context, input string) string {
	a.data = ExtractOPTData(input, a.data)

	if IsDiscoveryComplete(a.data) {
		a.UpdatePhase(PhaseAnalysis)
		return discoveryDoneMessage
	}

	prompt, err := render("discovery.md.tmpl", map[string]any{
		"Data":     a.data,
		"Question": NextQuestion(a.data),
		"History":  a.historyString(),
	})
	if err != nil {
		return a.llmFailure(ctx, err)
	}

	text := a.call(ctx, discoverySystemPrompt, prompt)
	if strings.Contains(text, phaseCompleteTag) {
		text = strings.ReplaceAll(text, phaseCompleteTag, "") + discoveryForcedSuffix
		a.UpdatePhase(PhaseAnalysis)
	}
	return text
}

func (a *Assistant) analyze(ctx context.Context, input string) string {
	// Respond checks exit words first; this keeps analyze terminal on its own.
	if IsExitCommand(input) {
		return exitSentinel
	}

	if len(a.suggestions) == 0 {
		a.suggestions = AnalyzeTasks(a.data)
		if len(a.suggestions) == 0 {
			return noSuggestionsMessage
		}

		prompt, err := render("analysis_present.md.tmpl", map[string]any{
			"Data":        a.dataJSON(),
			"Suggestions": FormatSuggestions(a.suggestions),
		})
		if err != nil {
			return a.llmFailure(ctx, err)
		}
		return a.call(ctx, analysisSystemPrompt, prompt)
	}

	if task, ok := SelectTask(input, a.suggestions); ok {
		a.selectedTask = task
		a.UpdatePhase(PhaseCode)
		return fmt.Sprintf("Perfect! I'll help you build automation for: **%s**\n\nLet me create a masterplan and then generate the code for you...", task)
	}

	prompt, err := render("analysis_clarify.md.tmpl", map[string]any{
		"Message":     input,
		"Suggestions": FormatSuggestions(a.suggestions),
	})
	if err != nil {
		return a.llmFailure(ctx, err)
	}
	return a.call(ctx, analysisSystemPrompt, prompt)
}

func (a *Assistant) generate(ctx context.Context) (string, error) {
	var sb strings.Builder

	if a.masterplan == nil {
		if a.selectedTask == "" {
			a.selectedTask = a.taskFromHistory()
		}
		if a.selectedTask != "" {
			plan := BuildMasterplan(a.selectedTask, a.now())
			a.masterplan = &plan
			sb.WriteString(plan.String())
			sb.WriteString("---\n\n")
		}
	}

	task := a.selectedTask
	if task == "" {
		task = "the selected automation task"
	}
	prompt, err := render("code.md.tmpl", map[string]any{
		"Task":    task,
		"Data":    a.dataJSON(),
		"History": a.historyString(),
	})
	if err != nil {
		return a.llmFailure(ctx, err), nil
	}
	code := a.call(ctx, codeSystemPrompt, prompt)

	stamp := a.now().Unix()
	name := fmt.Sprintf("automation_%d.py", stamp)
	path, err := SaveScript(a.outputDir, name, code)
	if err != nil {
		return "", err
	}

	deps := ExtractDependencies(code)
	requirements := filepath.Join(a.outputDir, fmt.Sprintf("requirements_%d.txt", stamp))
	if len(deps) > 0 {
		if err := WriteRequirements(requirements, deps); err != nil {
			return "", err
		}
	}
	a.logger.InfoContext(ctx, "automation script saved", "path", path, "dependencies", deps)

	deployment := Deployment{ScriptPath: path, Dependencies: deps}
	fmt.Fprintf(&sb, "## Code Generated Successfully!\n\n**File saved**: `%s`\n\n### Generated Code:\n\n%s\n\n---\n\n", path, code)
	fmt.Fprintf(&sb, "%s\n---\n\n", deployment)
	fmt.Fprintf(&sb, "**Next Steps:**\n1. Review the generated code\n2. Set up your `.env` file with required API keys\n3. Install dependencies: `pip install -r %s`\n4. Test the script: `python %s`\n", requirements, path)
	return sb.String(), nil
}

// taskFromHistory finds a suggestion mentioned in the recent conversation.
func (a *Assistant) taskFromHistory() string {
	recent := a.history[max(0, len(a.history)-5):]
	for i := len(recent) - 1; i >= 0; i-- {
		content := strings.ToLower(recent[i].Content)
		for _, s := range a.suggestions {
			if prefix := taskPrefix(s.Task); prefix != "" && strings.Contains(content, prefix) {
				return s.Task
			}
		}
	}
	return ""
}

func (a *Assistant) call(ctx context.Context, system, prompt string) string {
	text, err := a.chat.Complete(ctx, engine.ChatRequest{
		Messages: []engine.Message{
			engine.System(strings.TrimSpace(system)),
			engine.User(prompt),
		},
		Temperature: engine.Temperature(a.temperature),
	})
	if err != nil {
		return a.llmFailure(ctx, err)
	}
	return text
}

func (a *Assistant) llmFailure(ctx context.Context, err error) string {
	a.logger.ErrorContext(ctx, "error calling LLM", "phase", a.phase, "err", err)
	return decision.LLMErrorAnswer
}

func (a *Assistant) addMessage(role engine.Role, content string) {
	a.history = append(a.history, HistoryMessage{Role: role, Content: content, Timestamp: a.now()})
}

// historyString renders the last HistoryWindow messages as "ROLE: content".
func (a *Assistant) historyString() string {
	recent := a.history[max(0, len(a.history)-HistoryWindow):]
	lines := make([]string, len(recent))
	for i, m := range recent {
		lines[i] = strings.ToUpper(string(m.Role)) + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

func (a *Assistant) dataJSON() string {
	b, err := json.MarshalIndent(a.data, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func render(name string, values any) (string, error) {
	var buf strings.Builder
	if err := promptTmpls.ExecuteTemplate(&buf, name, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
