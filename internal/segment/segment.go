// Package segment defines the boundary to the external background-removal
// engine. The engine is opaque: it consumes encoded image bytes and returns
// encoded image bytes with the background made transparent.
package segment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Engine removes the background from one encoded image.
type Engine interface {
	Remove(ctx context.Context, data []byte) ([]byte, error)
}

// Func adapts a plain function to the Engine interface.
type Func func(ctx context.Context, data []byte) ([]byte, error)

func (f Func) Remove(ctx context.Context, data []byte) ([]byte, error) {
	return f(ctx, data)
}

// Command runs an external segmentation process per image, feeding the
// input bytes on stdin and reading the result from stdout. The model
// directory is handed to the child explicitly through U2NET_HOME instead
// of relying on whatever the parent environment happens to contain.
type Command struct {
	Path     string
	Args     []string
	ModelDir string
}

// DefaultCommand returns the stock rembg invocation with the given model
// directory.
func DefaultCommand(modelDir string) *Command {
	return &Command{Path: "rembg", Args: []string{"i"}, ModelDir: modelDir}
}

// Remove invokes the external process once. Stderr is captured and folded
// into the returned error so a failed inference is diagnosable from the
// item's failure detail alone.
func (c *Command) Remove(ctx context.Context, data []byte) ([]byte, error) {
	if c.Path == "" {
		return nil, errors.New("segment: no command configured")
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	env := os.Environ()
	if c.ModelDir != "" {
		env = append(env, "U2NET_HOME="+c.ModelDir)
	}
	cmd.Env = env

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("segment: %s: %w: %s", c.Path, err, msg)
		}
		return nil, fmt.Errorf("segment: %s: %w", c.Path, err)
	}

	return stdout.Bytes(), nil
}
