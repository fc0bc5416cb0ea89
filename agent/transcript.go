package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/habiliai/spoar/errors"
)

type Phase string

const (
	PhaseSense     Phase = "SENSE"
	PhasePlan      Phase = "PLAN"
	PhaseAct       Phase = "ACT"
	PhaseObserve   Phase = "OBSERVE"
	PhaseReflect   Phase = "REFLECT"
	PhaseComplete  Phase = "COMPLETE"
	PhaseExhausted Phase = "EXHAUSTED"
	PhaseCancelled Phase = "CANCELLED"
)

type (
	Entry struct {
		Phase     Phase     `json:"phase"`
		Data      any       `json:"data"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Transcript records the phases of one run.
	Transcript struct {
		mu      sync.Mutex
		entries []Entry
		now     func() time.Time
	}
)

func NewTranscript() *Transcript {
	return &Transcript{now: time.Now}
}

func (t *Transcript) Add(phase Phase, data any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{Phase: phase, Data: data, Timestamp: t.now()})
}

func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Transcript) Phases() []Phase {
	entries := t.Entries()
	phases := make([]Phase, len(entries))
	for i, e := range entries {
		phases[i] = e.Phase
	}
	return phases
}

// Save writes the transcript as indented JSON, creating parent directories.
func (t *Transcript) Save(path string) error {
	data, err := json.MarshalIndent(t.Entries(), "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode transcript")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create transcript directory")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "failed to write transcript %s", path)
}

// LogPath returns <dir>/agent_log_<unix seconds>.json.
func LogPath(dir string, at time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("agent_log_%d.json", at.Unix()))
}
