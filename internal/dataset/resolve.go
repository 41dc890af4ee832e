package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNotFound means no directory entry matched the target name.
	ErrNotFound = errors.New("file not found")
	// ErrAmbiguous means more than one entry normalized to the target name.
	ErrAmbiguous = errors.New("multiple files match")
)

// FileResolutionError reports a required file that could not be located unambiguously.
type FileResolutionError struct {
	Dir        string
	Target     string
	Candidates []string
	Err        error
}

func (e *FileResolutionError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("resolve %q in %s: %v (%s)", e.Target, e.Dir, e.Err, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("resolve %q in %s: %v", e.Target, e.Dir, e.Err)
}

func (e *FileResolutionError) Unwrap() error { return e.Err }

// ResolveFile finds the single regular file in dir whose name is canonically equivalent
// (NFC) to target. Names written by macOS arrive decomposed (NFD) and would not match byte-wise.
func ResolveFile(dir, target string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read data dir: %w", err)
	}
	want := norm.NFC.String(target)
	var matches []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if norm.NFC.String(e.Name()) == want {
			matches = append(matches, e.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", &FileResolutionError{Dir: dir, Target: target, Err: ErrNotFound}
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		return "", &FileResolutionError{Dir: dir, Target: target, Candidates: matches, Err: ErrAmbiguous}
	}
}
