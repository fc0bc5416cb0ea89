// Package spoar wires the SPOAR agent loop, its tools, memory and the
// phase assistant from configuration.
package spoar

import (
	"context"
	"log/slog"
	"time"

	"github.com/habiliai/spoar/agent"
	"github.com/habiliai/spoar/assistant"
	"github.com/habiliai/spoar/config"
	"github.com/habiliai/spoar/engine"
	"github.com/habiliai/spoar/entity"
	"github.com/habiliai/spoar/errors"
	"github.com/habiliai/spoar/internal/mylog"
	"github.com/habiliai/spoar/internal/tracing"
	"github.com/habiliai/spoar/knowledge"
	"github.com/habiliai/spoar/memory"
	"github.com/habiliai/spoar/speech"
	"github.com/habiliai/spoar/tool"
	"github.com/habiliai/spoar/tool/rss"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultAgent is used when no agent definition is given.
var DefaultAgent = entity.Agent{
	Name:   "spoar",
	System: agent.DefaultPersona,
	Skills: []entity.Skill{
		{Type: entity.SkillTypeNative, Name: "search_knowledge_base"},
		{Type: entity.SkillTypeNative, Name: "calculate"},
	},
}

type (
	Runtime struct {
		config *config.Config
		def    entity.Agent
		logger *slog.Logger

		chat      engine.ChatModel
		embedder  memory.Embedder
		store     memory.Store
		memory    *memory.Service
		knowledge *knowledge.Base
		registry  *tool.Registry
		deps      tool.Dependencies
		speech    speech.Provider
		agent     *agent.Agent

		traceVerbose   bool
		tracerProvider *sdktrace.TracerProvider
	}

	Option func(*Runtime)
)

func WithConfig(c *config.Config) Option {
	return func(r *Runtime) {
		r.config = c
	}
}

func WithAgent(def entity.Agent) Option {
	return func(r *Runtime) {
		r.def = def
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

func WithChatModel(chat engine.ChatModel) Option {
	return func(r *Runtime) {
		r.chat = chat
	}
}

func WithEmbedder(embedder memory.Embedder) Option {
	return func(r *Runtime) {
		r.embedder = embedder
	}
}

func WithMemoryStore(store memory.Store) Option {
	return func(r *Runtime) {
		r.store = store
	}
}

func WithWebSearcher(searcher tool.WebSearcher) Option {
	return func(r *Runtime) {
		r.deps.WebSearch = searcher
	}
}

func WithScraper(scraper tool.Scraper) Option {
	return func(r *Runtime) {
		r.deps.Scraper = scraper
	}
}

func WithSpeechProvider(p speech.Provider) Option {
	return func(r *Runtime) {
		r.speech = p
	}
}

// WithTraceVerbose keeps long span attributes in the span logs.
func WithTraceVerbose(v bool) Option {
	return func(r *Runtime) {
		r.traceVerbose = v
	}
}

func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	r := &Runtime{def: DefaultAgent}
	for _, opt := range opts {
		opt(r)
	}

	if r.config == nil {
		r.config = config.Default()
	}
	if r.logger == nil {
		r.logger = mylog.NewLogger(r.config.Log.LogLevel, r.config.Log.LogHandler)
	}
	if err := r.def.Validate(); err != nil {
		return nil, err
	}

	if r.chat == nil {
		modelConfig := r.config.Model
		if r.def.Model != "" {
			modelConfig.Model = r.def.Model
		}
		chat, err := engine.New(modelConfig)
		if err != nil {
			return nil, err
		}
		r.chat = chat
	}

	if err := r.initMemory(ctx); err != nil {
		return nil, err
	}
	if err := r.initTools(ctx); err != nil {
		_ = r.Close()
		return nil, err
	}

	r.tracerProvider = tracing.NewTracerProvider(r.logger, r.traceVerbose)

	maxIterations := r.config.Loop.MaxIterations
	if r.def.MaxIterations > 0 {
		maxIterations = r.def.MaxIterations
	}

	// a nil *memory.Service must stay a nil interface
	var mem agent.Memory
	if r.memory != nil {
		mem = r.memory
	}

	r.agent = agent.New(
		agent.NewLLMPlanner(r.chat, r.def.System),
		agent.NewLLMReflector(r.chat),
		r.registry,
		mem,
		agent.WithLogger(r.logger),
		agent.WithTracer(r.tracerProvider.Tracer(tracing.TracerName)),
		agent.WithMaxIterations(maxIterations),
		agent.WithSenseEveryIteration(r.config.Loop.SenseEveryIteration),
		agent.WithThresholds(r.config.Memory.RetrievalThreshold, r.config.Memory.DedupThreshold),
		agent.WithMatchCount(r.config.Memory.MatchCount),
	)

	return r, nil
}

func (r *Runtime) initMemory(ctx context.Context) error {
	mc := r.config.Memory

	if r.embedder == nil {
		apiKey := r.config.Model.OpenAIAPIKey
		if apiKey == "" {
			r.logger.Warn("OPENAI_API_KEY is not set; memory is disabled")
			return nil
		}
		r.embedder = memory.NewOpenAIEmbedder(apiKey, "", mc.EmbeddingModel)
	}
	if mc.CacheSize > 0 {
		cached, err := memory.NewCachedEmbedder(r.embedder, mc.CacheSize)
		if err != nil {
			return err
		}
		r.embedder = cached
	}

	if r.store == nil {
		store, err := r.openStore(ctx)
		if err != nil {
			return err
		}
		r.store = store
	}

	r.memory = memory.NewService(r.embedder, r.store, memory.WithLogger(r.logger))
	return nil
}

func (r *Runtime) openStore(ctx context.Context) (memory.Store, error) {
	mc := r.config.Memory
	switch mc.Backend {
	case config.MemoryBackendSqlite:
		return memory.NewSqliteStore(mc.SqlitePath, mc.Dimension)
	case config.MemoryBackendPostgres:
		return memory.NewPostgresStore(ctx, mc.PostgresDSN, mc.Table, mc.Dimension)
	case config.MemoryBackendInMemory, "":
		return memory.NewInMemoryStore(mc.Dimension), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown memory backend %q", mc.Backend)
	}
}

func (r *Runtime) initTools(ctx context.Context) error {
	tc := r.config.Tools

	path := r.def.KnowledgeBase
	if path == "" {
		path = tc.KnowledgeBasePath
	}
	base, err := knowledge.LoadFile(path)
	if err != nil {
		return err
	}
	r.knowledge = base
	r.deps.Knowledge = base

	if r.deps.WebSearch == nil && tc.TavilyAPIKey != "" {
		r.deps.WebSearch = tool.NewTavilyClient(tc.TavilyAPIKey, tc.TavilyAPIURL)
	}
	if r.deps.Scraper == nil && tc.FirecrawlAPIKey != "" {
		scraper, err := tool.NewFirecrawlScraper(tc.FirecrawlAPIKey, tc.FirecrawlAPIURL)
		if err != nil {
			return err
		}
		r.deps.Scraper = scraper
	}
	r.deps.Feeds = rss.NewReader(rss.WithAllowedPrefixes(tc.AllowedFeedURLs...))

	r.registry = tool.NewRegistry(r.logger)
	for _, name := range r.def.NativeTools() {
		if err := tool.RegisterBuiltin(r.registry, name, r.deps); err != nil {
			return errors.Wrapf(err, "failed to register tool %s", name)
		}
	}
	for _, s := range r.def.MCPServers() {
		if err := tool.RegisterMCPServer(ctx, r.registry, tool.MCPServer{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			Env:     s.Env,
			Tools:   s.Tools,
		}); err != nil {
			return err
		}
	}

	r.logger.Debug("tools registered", "agent", r.def.Name, "tools", r.registry.Names(), "documents", base.Len())
	return nil
}

// Ask runs the SPOAR loop once for goal.
func (r *Runtime) Ask(ctx context.Context, goal string) agent.Result {
	return r.agent.Run(ctx, goal)
}

// SaveTranscript writes res's transcript under the configured log directory
// and returns its path.
func (r *Runtime) SaveTranscript(res agent.Result) (string, error) {
	if res.Transcript == nil {
		return "", errors.New("result has no transcript")
	}
	path := agent.LogPath(r.config.Loop.LogDir, time.Now())
	return path, res.Transcript.Save(path)
}

// NewAssistant starts a phase assistant conversation over the runtime's
// chat model.
func (r *Runtime) NewAssistant(opts ...assistant.Option) *assistant.Assistant {
	base := []assistant.Option{
		assistant.WithLogger(r.logger),
		assistant.WithTemperature(r.config.Assistant.Temperature),
		assistant.WithOutputDir(r.config.Assistant.OutputDir),
	}
	return assistant.New(r.chat, append(base, opts...)...)
}

// Speak synthesizes text and stores the audio in the configured directory.
func (r *Runtime) Speak(ctx context.Context, text string) (string, error) {
	if r.speech == nil {
		p, err := speech.New(r.config.Speech, r.config.Model.OpenAIAPIKey)
		if err != nil {
			return "", err
		}
		r.speech = p
	}

	res, err := r.speech.Synthesize(ctx, text, speech.Options{})
	if err != nil {
		return "", err
	}
	return speech.NewFileSink(r.config.Speech.OutputDir).Write(res)
}

// Memory returns the memory service, or nil when memory is disabled.
func (r *Runtime) Memory() *memory.Service {
	return r.memory
}

func (r *Runtime) Registry() *tool.Registry {
	return r.registry
}

func (r *Runtime) Knowledge() *knowledge.Base {
	return r.knowledge
}

func (r *Runtime) Agent() entity.Agent {
	return r.def
}

func (r *Runtime) Close() error {
	var errs []error
	if r.registry != nil {
		errs = append(errs, r.registry.Close())
	}
	if r.memory != nil {
		errs = append(errs, r.memory.Close())
	} else if r.store != nil {
		errs = append(errs, r.store.Close())
	}
	if r.tracerProvider != nil {
		errs = append(errs, r.tracerProvider.Shutdown(context.Background()))
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
