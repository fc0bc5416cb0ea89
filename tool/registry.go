// Package tool holds the registry the SPOAR loop dispatches through and the
// built-in tools an agent can be granted.
package tool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/habiliai/spoar/errors"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

type (
	// Capability is the callable behind a tool. It may perform I/O.
	Capability func(ctx context.Context, args map[string]any) (string, error)

	Tool struct {
		Name        string
		Description string
		// Args lists the argument names the tool reads, in schema order.
		Args       []string
		Capability Capability
	}

	Registry struct {
		logger *slog.Logger

		mtx     sync.RWMutex
		tools   map[string]*Tool
		order   []string
		closers []io.Closer
	}
)

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		tools:  make(map[string]*Tool),
	}
}

func (r *Registry) Register(name, description string, capability Capability) error {
	return r.add(Tool{
		Name:        name,
		Description: description,
		Capability:  capability,
	})
}

func (r *Registry) add(t Tool) error {
	if t.Name == "" {
		return errors.Wrapf(errors.ErrInvalidParams, "tool name is required")
	}
	if t.Capability == nil {
		return errors.Wrapf(errors.ErrInvalidParams, "tool %s has no capability", t.Name)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.tools[t.Name]; ok {
		return errors.Wrapf(errors.ErrDuplicateTool, "tool %s", t.Name)
	}
	r.tools[t.Name] = &t
	r.order = append(r.order, t.Name)

	r.logger.Debug("tool registered", "tool", t.Name)
	return nil
}

// RegisterFunc registers fn as a tool whose arguments are decoded into In
// by their json names.
func RegisterFunc[In any](r *Registry, name, description string, fn func(ctx context.Context, in In) (string, error)) error {
	return r.add(Tool{
		Name:        name,
		Description: description,
		Args:        argNames[In](),
		Capability: func(ctx context.Context, args map[string]any) (string, error) {
			var in In
			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				TagName:          "json",
				WeaklyTypedInput: true,
				Result:           &in,
			})
			if err != nil {
				return "", errors.WithStack(err)
			}
			if err := decoder.Decode(args); err != nil {
				return "", errors.Wrapf(err, "invalid arguments for %s", name)
			}
			return fn(ctx, in)
		},
	})
}

func argNames[In any]() []string {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(new(In))
	if schema == nil || schema.Properties == nil {
		return nil
	}

	names := make([]string, 0, schema.Properties.Len())
	for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// AddCloser ties the lifetime of c to the registry.
func (r *Registry) AddCloser(c io.Closer) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.closers = append(r.closers, c)
}

func (r *Registry) Close() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	var errs []string
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	r.closers = nil

	if len(errs) > 0 {
		return errors.Errorf("failed to close tools: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (r *Registry) Has(name string) bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	return append([]string(nil), r.order...)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, *r.tools[name])
	}
	return tools
}

// DescribeAll lists every tool as "- name: description", one per line.
func (r *Registry) DescribeAll() string {
	var sb strings.Builder
	for i, t := range r.Tools() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s: %s", t.Name, t.Description)
	}
	return sb.String()
}

// Invoke runs the named tool. Failures come back as "ERROR: ..." strings so
// the caller can feed them into the next planning step.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result string) {
	if name == "" {
		return "ERROR: No tool specified in plan"
	}

	r.mtx.RLock()
	t, ok := r.tools[name]
	r.mtx.RUnlock()
	if !ok {
		r.logger.Warn("unknown tool", "tool", name, "available", r.sortedNames())
		return fmt.Sprintf("ERROR: Tool '%s' not found", name)
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool panicked", "tool", name, "panic", p)
			result = fmt.Sprintf("ERROR: %v", p)
		}
	}()

	if args == nil {
		args = map[string]any{}
	}

	r.logger.Debug("invoking tool", "tool", name, "args", args)
	out, err := t.Capability(ctx, args)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "err", err)
		return fmt.Sprintf("ERROR: %v", err)
	}
	return out
}

func (r *Registry) sortedNames() []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
