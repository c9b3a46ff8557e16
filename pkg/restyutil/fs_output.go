package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilesystemOutput writes every exchange into its own file under a directory,
// this is mostly useful for figuring out what changed when the portal's markup drifts.
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates a new directory named after `now` under `dir`
// and dumps into it, nothing already in `dir` is touched.
func NewFilesystemOutput(dir string, now time.Time) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, fmt.Errorf("create http dump dir: %w", err)
	}
	run := filepath.Join(dir, now.Format("20060102-150405.000"))
	err = os.Mkdir(run, 0777)
	if err != nil {
		return FilesystemOutput{}, fmt.Errorf("create http dump dir: %w", err)
	}
	return FilesystemOutput{directory: run}, nil
}

// Directory is where the files of this dump are written.
func (o FilesystemOutput) Directory() string {
	return o.directory
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".txt"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
