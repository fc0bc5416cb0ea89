// Package agent runs the SENSE, PLAN, ACT, OBSERVE, REFLECT loop.
package agent

import (
	"context"
	"log/slog"

	"github.com/habiliai/spoar/decision"
	"github.com/habiliai/spoar/internal/tracing"
	"github.com/habiliai/spoar/memory"
	"github.com/habiliai/spoar/tool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultMaxIterations = 5

	ExhaustedAnswer = "failed to answer within iteration limit"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusExhausted Status = "exhausted"
	StatusCancelled Status = "cancelled"
)

type (
	// Memory is the part of memory.Service the loop uses.
	Memory interface {
		Query(ctx context.Context, text string, threshold float64, limit int) []string
		Insert(ctx context.Context, question, answer string, dedupThreshold float64) memory.InsertResult
	}

	Result struct {
		Answer     string
		Iterations int
		Status     Status
		Transcript *Transcript
	}

	Agent struct {
		planner   Planner
		reflector Reflector
		registry  *tool.Registry
		memory    Memory

		logger             *slog.Logger
		tracer             trace.Tracer
		maxIterations      int
		senseEvery         bool
		retrievalThreshold float64
		dedupThreshold     float64
		matchCount         int
	}

	Option func(*Agent)
)

var (
	_ Memory = (*memory.Service)(nil)
)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(a *Agent) {
		a.tracer = tracer
	}
}

func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithSenseEveryIteration queries memory on every iteration instead of
// only the first.
func WithSenseEveryIteration(v bool) Option {
	return func(a *Agent) {
		a.senseEvery = v
	}
}

func WithThresholds(retrieval, dedup float64) Option {
	return func(a *Agent) {
		a.retrievalThreshold = retrieval
		a.dedupThreshold = dedup
	}
}

func WithMatchCount(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.matchCount = n
		}
	}
}

// New builds an agent. mem may be nil, which disables retrieval and
// storage.
func New(planner Planner, reflector Reflector, registry *tool.Registry, mem Memory, opts ...Option) *Agent {
	a := &Agent{
		planner:            planner,
		reflector:          reflector,
		registry:           registry,
		memory:             mem,
		logger:             slog.Default(),
		tracer:             tracing.Noop(),
		maxIterations:      DefaultMaxIterations,
		retrievalThreshold: memory.DefaultRetrievalThreshold,
		dedupThreshold:     memory.DefaultDedupThreshold,
		matchCount:         memory.DefaultMatchCount,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Run(ctx context.Context, goal string) Result {
	ctx, span := a.tracer.Start(ctx, "spoar.run", trace.WithAttributes(attribute.String("goal", goal)))
	defer span.End()

	transcript := NewTranscript()
	c := &Context{Goal: goal}

	a.logger.InfoContext(ctx, "agent start", "goal", goal, "maxIterations", a.maxIterations)

	for i := 1; i <= a.maxIterations; i++ {
		c.Iteration = i

		if err := ctx.Err(); err != nil {
			return a.cancelled(ctx, span, transcript, i-1, err)
		}
		a.sense(ctx, c, transcript)

		if err := ctx.Err(); err != nil {
			return a.cancelled(ctx, span, transcript, i-1, err)
		}
		d := a.plan(ctx, c, transcript)

		if done, ok := d.(decision.Complete); ok {
			if !done.Fallback && a.memory != nil {
				result := a.memory.Insert(ctx, goal, done.Answer, a.dedupThreshold)
				a.logger.DebugContext(ctx, "answer offered to memory", "result", result.String())
			}
			transcript.Add(PhaseComplete, map[string]any{
				"answer":    done.Answer,
				"reasoning": done.Reasoning,
				"fallback":  done.Fallback,
			})
			span.SetAttributes(attribute.Int("iterations", i))
			a.logger.InfoContext(ctx, "agent complete", "iterations", i, "fallback", done.Fallback)
			return Result{Answer: done.Answer, Iterations: i, Status: StatusCompleted, Transcript: transcript}
		}
		use := d.(decision.UseTool)

		if err := ctx.Err(); err != nil {
			return a.cancelled(ctx, span, transcript, i-1, err)
		}
		obs := a.act(ctx, use, transcript)

		if err := ctx.Err(); err != nil {
			return a.cancelled(ctx, span, transcript, i, err)
		}
		reflection := a.reflect(ctx, c, obs, transcript)

		c.LastObservation = &obs
		c.LastReflection = reflection
	}

	transcript.Add(PhaseExhausted, map[string]any{"iterations": a.maxIterations})
	span.SetStatus(codes.Error, ExhaustedAnswer)
	a.logger.WarnContext(ctx, "agent exhausted", "iterations", a.maxIterations)
	return Result{Answer: ExhaustedAnswer, Iterations: a.maxIterations, Status: StatusExhausted, Transcript: transcript}
}

func (a *Agent) sense(ctx context.Context, c *Context, transcript *Transcript) {
	ctx, span := a.tracer.Start(ctx, "spoar.sense")
	defer span.End()

	if a.memory != nil && (c.Iteration == 1 || a.senseEvery) {
		c.Memories = a.memory.Query(ctx, c.Goal, a.retrievalThreshold, a.matchCount)
		span.SetAttributes(attribute.Int("memories", len(c.Memories)))
		if len(c.Memories) > 0 {
			a.logger.InfoContext(ctx, "relevant memories found", "count", len(c.Memories))
		}
	}
	c.Available = a.registry.Tools()
	c.Tools = a.registry.DescribeAll()

	transcript.Add(PhaseSense, map[string]any{
		"iteration": c.Iteration,
		"memories":  c.Memories,
		"tools":     a.registry.Names(),
	})
}

func (a *Agent) plan(ctx context.Context, c *Context, transcript *Transcript) decision.Decision {
	ctx, span := a.tracer.Start(ctx, "spoar.plan")
	defer span.End()

	noDecision := decision.Fallback(decision.ParseFailureAnswer, "planner returned no decision")
	d := a.planner.Plan(ctx, c)
	switch v := d.(type) {
	case nil:
		d = noDecision
	case *decision.UseTool:
		if v == nil {
			d = noDecision
		} else {
			d = *v
		}
	case *decision.Complete:
		if v == nil {
			d = noDecision
		} else {
			d = *v
		}
	}

	data := map[string]any{"action": d.Action(), "reasoning": d.Rationale()}
	if use, ok := d.(decision.UseTool); ok {
		data["tool"] = use.Tool
		data["args"] = use.Args
		span.SetAttributes(attribute.String("tool", use.Tool))
	}
	span.SetAttributes(attribute.String("action", d.Action()))
	transcript.Add(PhasePlan, data)

	a.logger.DebugContext(ctx, "plan", "iteration", c.Iteration, "action", d.Action())
	return d
}

func (a *Agent) act(ctx context.Context, use decision.UseTool, transcript *Transcript) Observation {
	ctx, span := a.tracer.Start(ctx, "spoar.act", trace.WithAttributes(attribute.String("tool", use.Tool)))
	defer span.End()

	transcript.Add(PhaseAct, map[string]any{"tool": use.Tool, "args": use.Args})
	a.logger.InfoContext(ctx, "calling tool", "tool", use.Tool, "args", use.Args)

	obs := NewObservation(use.Tool, a.registry.Invoke(ctx, use.Tool, use.Args))
	if !obs.Success {
		span.SetStatus(codes.Error, obs.Result)
	}
	transcript.Add(PhaseObserve, obs)
	return obs
}

func (a *Agent) reflect(ctx context.Context, c *Context, obs Observation, transcript *Transcript) string {
	ctx, span := a.tracer.Start(ctx, "spoar.reflect")
	defer span.End()

	reflection := a.reflector.Reflect(ctx, c, obs)
	transcript.Add(PhaseReflect, map[string]any{"reflection": reflection})
	return reflection
}

func (a *Agent) cancelled(ctx context.Context, span trace.Span, transcript *Transcript, iterations int, err error) Result {
	transcript.Add(PhaseCancelled, map[string]any{"error": err.Error()})
	span.SetStatus(codes.Error, err.Error())
	a.logger.WarnContext(ctx, "agent cancelled", "iterations", iterations, "err", err)
	return Result{Answer: err.Error(), Iterations: iterations, Status: StatusCancelled, Transcript: transcript}
}
