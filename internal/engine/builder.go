package engine

import (
	"fmt"

	shellwords "github.com/mattn/go-shellwords"
)

// ParseArgs splits a shell-quoted argument string such as
// `--threads 8 "--opt=a b"` into words. An empty string yields no args.
func ParseArgs(s string) ([]string, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse engine args %q: %w", s, err)
	}
	return args, nil
}

// Build constructs the complete argument slice, engine first.
func Build(engine string, extra []string, script, workDir string) []string {
	args := make([]string, 0, len(extra)+5)
	args = append(args, engine)
	args = append(args, extra...)
	args = append(args, "-d", workDir, "-s", script)
	return args
}
