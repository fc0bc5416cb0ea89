package speech

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/habiliai/spoar/errors"
)

// FileSink stores synthesized audio under a directory.
type FileSink struct {
	dir string
	now func() time.Time
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir, now: time.Now}
}

// Write saves res as <dir>/speech_<unix nanos>.<format> and returns the
// path.
func (s *FileSink) Write(res *Result) (string, error) {
	if res == nil || len(res.Audio) == 0 {
		return "", errors.New("no audio to write")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", s.dir)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("speech_%d.%s", s.now().UnixNano(), res.Format))
	if err := os.WriteFile(path, res.Audio, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write audio %s", path)
	}
	return path, nil
}
