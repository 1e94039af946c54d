package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jacoelho/morph/internal/codec"
	"github.com/jacoelho/morph/internal/config"
	"github.com/jacoelho/morph/internal/exit"
	"github.com/jacoelho/morph/internal/flat"
	"github.com/jacoelho/morph/internal/selector"
	"github.com/jacoelho/morph/internal/shape"
	"github.com/jacoelho/morph/internal/xform"
	"github.com/theory/jsonpath"
)

var (
	ErrNoMatch = errors.New("select expression matched nothing")
	ErrTooDeep = errors.New("input nested too deeply")
)

// Runner executes one morph command over one document.
type Runner struct {
	config *config.Config
	logger *log.Logger
	path   *jsonpath.Path
	stdin  io.Reader
	stdout io.Writer
}

// New creates a new Runner with the provided configuration.
// If creation fails, returns nil runner and exit result.
func New(cfg *config.Config, logger *log.Logger) (*Runner, *exit.Result) {
	r := &Runner{
		config: cfg,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	if cfg.Select != "" {
		path, err := jsonpath.Parse(cfg.Select)
		if err != nil {
			return nil, exit.Errorf("Error: invalid select expression %s: %v\n", cfg.Select, err)
		}
		r.path = path
	}

	return r, nil
}

// Run reads the configured input, executes the command and writes the
// result to stdout. It returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	in := r.stdin
	if !r.config.ReadsStdin() {
		f, err := os.Open(r.config.InputFile)
		if err != nil {
			return r.fail(fmt.Errorf("open input: %w", err))
		}
		defer f.Close()
		in = f
	}

	if err := r.Execute(ctx, in, r.stdout); err != nil {
		return r.fail(err)
	}
	return exit.CodeSuccess
}

func (r *Runner) fail(err error) int {
	r.logger.Debug("command failed", "command", r.config.Command, "error", err)
	result := exit.FromError(err)
	result.Print()
	return result.ExitCode
}

// Execute decodes a document from in, applies the configured command and
// encodes the result to out.
func (r *Runner) Execute(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.Decode(in, r.config.InputFormat)
	if err != nil {
		return err
	}
	r.logger.Debug("decoded input", "format", r.config.InputFormat, "shape", shape.Of(data))

	data, err = r.selectData(data)
	if err != nil {
		return err
	}

	if r.config.MaxDepth > 0 {
		depth := shape.Depth(data)
		r.logger.Debug("measured depth", "depth", depth, "max", r.config.MaxDepth)
		if depth > r.config.MaxDepth {
			return fmt.Errorf("%w: depth %d exceeds --max-depth %d", ErrTooDeep, depth, r.config.MaxDepth)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := r.apply(data)
	if err != nil {
		return err
	}
	r.logger.Debug("applied command", "command", r.config.Command, "shape", shape.Of(result))

	if r.config.Stringify {
		result, err = xform.Transform(result, xform.Stringify)
		if err != nil {
			return fmt.Errorf("stringify: %w", err)
		}
	}

	return codec.Encode(out, r.config.OutputFormat, result)
}

// selectData narrows data to the first node matched by --select.
func (r *Runner) selectData(data any) (any, error) {
	if r.path == nil {
		return data, nil
	}

	results := r.path.Select(data)
	r.logger.Debug("selected nodes", "expression", r.config.Select, "matches", len(results))
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, r.config.Select)
	}
	return results[0], nil
}

func (r *Runner) apply(data any) (any, error) {
	switch r.config.Command {
	case config.CommandFlatten:
		return flat.Flatten(data)
	case config.CommandUnflatten:
		return flat.UnflattenValue(data)
	case config.CommandPick:
		picked, err := selector.Pick(data, r.config.Keys, r.selectorOptions())
		if err != nil {
			return nil, err
		}
		return r.selected(picked), nil
	case config.CommandOmit:
		kept, err := selector.Omit(data, r.config.Keys, r.selectorOptions())
		if err != nil {
			return nil, err
		}
		return r.selected(kept), nil
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownCommand, r.config.Command)
	}
}

// keepsOrder reports whether pick and omit results are encoded as ordered
// containers. Only the YAML encoder writes them directly.
func (r *Runner) keepsOrder() bool {
	return r.config.OutputFormat == codec.FormatYAML && !r.config.Stringify
}

func (r *Runner) selectorOptions() selector.Options {
	opts := r.config.SelectorOptions()
	if r.keepsOrder() {
		opts.Factory = selector.NewOrdered
	}
	return opts
}

func (r *Runner) selected(c selector.Container) any {
	if r.keepsOrder() {
		return c
	}
	return selector.ToMap(c)
}
