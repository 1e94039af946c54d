package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jacoelho/morph/internal/codec"
	"github.com/jacoelho/morph/internal/coerce"
	"github.com/jacoelho/morph/internal/exit"
	"github.com/jacoelho/morph/internal/selector"
)

// Command is the operation applied to the input document.
type Command string

const (
	CommandFlatten   Command = "flatten"
	CommandUnflatten Command = "unflatten"
	CommandPick      Command = "pick"
	CommandOmit      Command = "omit"
)

// StdinPath selects standard input explicitly.
const StdinPath = "-"

var (
	ErrNoArguments         = errors.New("no arguments provided")
	ErrNoCommand           = errors.New("no command specified")
	ErrUnknownCommand      = errors.New("unknown command")
	ErrTooManyInputs       = errors.New("only one input file can be given")
	ErrPrefixWithTree      = errors.New("--prefix and --tree cannot be used together")
	ErrSelectorOptions     = errors.New("--key, --keys, --key-file, --prefix and --tree only apply to pick and omit")
	ErrInvalidMaxDepth     = errors.New("--max-depth must be zero or positive")
	ErrEmptyKey            = errors.New("key cannot be empty")
	ErrInputNotFound       = errors.New("input file not found")
	ErrFormatNotDetectable = errors.New("cannot detect input format")
)

// Config represents the complete configuration for the morph tool.
type Config struct {
	Command Command

	// Input and output
	InputFile    string // empty or "-" for stdin
	InputFormat  codec.Format
	OutputFormat codec.Format
	Select       string // JSONPath applied before the command
	MaxDepth     int    // 0 = unlimited
	Stringify    bool

	// Selection (pick and omit)
	Keys      []string
	KeyFile   string
	Prefix    string
	HasPrefix bool
	Tree      bool

	Debug bool
}

// ReadsStdin reports whether the input comes from standard input.
func (c *Config) ReadsStdin() bool {
	return c.InputFile == "" || c.InputFile == StdinPath
}

// SelectorOptions maps the selection flags to selector options.
func (c *Config) SelectorOptions() selector.Options {
	switch {
	case c.HasPrefix:
		return selector.Options{Mode: selector.ModePrefix, Prefix: c.Prefix}
	case c.Tree:
		return selector.Options{Mode: selector.ModeTree}
	default:
		return selector.Options{Mode: selector.ModePlain}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch c.Command {
	case CommandFlatten, CommandUnflatten:
		if len(c.Keys) > 0 || c.KeyFile != "" || c.HasPrefix || c.Tree {
			return fmt.Errorf("%w, got command: %s", ErrSelectorOptions, c.Command)
		}
	case CommandPick, CommandOmit:
		if c.HasPrefix && c.Tree {
			return ErrPrefixWithTree
		}
	case "":
		return ErrNoCommand
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Command)
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidMaxDepth, c.MaxDepth)
	}

	for _, key := range c.Keys {
		if key == "" {
			return ErrEmptyKey
		}
	}

	if !c.ReadsStdin() {
		if _, err := os.Stat(c.InputFile); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInputNotFound, c.InputFile, err)
		}
	}

	return nil
}

// keysFlag implements flag.Value for parsing multiple --key flags.
type keysFlag []string

// String returns a string representation of the keys flag for flag.Value interface.
func (k *keysFlag) String() string {
	return strings.Join(*k, ",")
}

// Set appends a key for flag.Value interface.
func (k *keysFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyKey
	}
	*k = append(*k, value)
	return nil
}

// keyListFlag implements flag.Value for shell-quoted key lists.
type keyListFlag []string

func (k *keyListFlag) String() string {
	return strings.Join(*k, " ")
}

func (k *keyListFlag) Set(value string) error {
	words, err := coerce.ToList(value, coerce.ListOptions{})
	if err != nil {
		return err
	}
	for _, word := range words {
		*k = append(*k, fmt.Sprint(word))
	}
	return nil
}

// prefixFlag records whether --prefix was given, since an empty prefix is
// meaningful.
type prefixFlag struct {
	value string
	set   bool
}

func (p *prefixFlag) String() string {
	return p.value
}

func (p *prefixFlag) Set(value string) error {
	p.value = value
	p.set = true
	return nil
}

// boolWordFlag is a boolean flag accepting yes/no/on/off style words.
type boolWordFlag bool

func (b *boolWordFlag) String() string {
	if b == nil {
		return "false"
	}
	return fmt.Sprint(bool(*b))
}

func (b *boolWordFlag) Set(value string) error {
	parsed, err := coerce.ParseBool(value)
	if err != nil {
		return err
	}
	*b = boolWordFlag(parsed)
	return nil
}

// IsBoolFlag lets the flag be given without a value.
func (b *boolWordFlag) IsBoolFlag() bool { return true }

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s\n", ErrNoArguments, Usage())
	}
	if len(args) < 2 {
		return nil, exit.Errorf("Error: %v\n\n%s\n", ErrNoCommand, Usage())
	}

	switch args[1] {
	case "-h", "--help", "-help", "help":
		return nil, exit.Success(Usage() + "\n")
	}

	command := Command(strings.ToLower(args[1]))

	fs := flag.NewFlagSet(args[0]+" "+args[1], flag.ContinueOnError)

	// Suppress the default usage output since we handle it ourselves
	fs.Usage = func() {}
	// Suppress error output since we handle it ourselves
	fs.SetOutput(io.Discard)

	var (
		from      = fs.String("from", "", "Input format: json, yaml, toml, properties")
		to        = fs.String("to", string(codec.FormatJSON), "Output format: json, yaml, toml, properties")
		sel       = fs.String("select", "", "JSONPath expression applied to the input first")
		maxDepth  = fs.Int("max-depth", 0, "Reject input nested deeper than this (0 for unlimited)")
		stringify = fs.Bool("stringify", false, "Render every leaf value as a string")
		keyFile   = fs.String("key-file", "", "File with one key per line")
		debug     = fs.Bool("debug", false, "Enable debug logging")
		keys      keysFlag
		keyList   keyListFlag
		prefix    prefixFlag
		tree      boolWordFlag
	)

	fs.Var(&keys, "key", "Key to pick or omit (can be used multiple times)")
	fs.Var(&keyList, "keys", "Shell-quoted list of keys to pick or omit")
	fs.Var(&prefix, "prefix", "Select keys by prefix")
	fs.Var(&tree, "tree", "Resolve dotted keys against nested mappings")

	// flag stops at the first positional argument; resume after each one so
	// options may follow the input file.
	var files []string
	remaining := args[2:]
	for {
		if err := fs.Parse(remaining); err != nil {
			if err == flag.ErrHelp {
				return nil, exit.Success(Usage() + "\n")
			}
			return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s\n", err, Usage())
		}

		remaining = fs.Args()
		if len(remaining) == 0 {
			break
		}
		files = append(files, remaining[0])
		remaining = remaining[1:]
	}

	if len(files) > 1 {
		return nil, exit.Errorf("Error: %v, got: %s\n\n%s\n", ErrTooManyInputs, strings.Join(files, " "), Usage())
	}

	var inputFile string
	if len(files) == 1 {
		inputFile = files[0]
	}

	inputFormat, err := resolveInputFormat(*from, inputFile)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s\n", err, Usage())
	}

	outputFormat, err := codec.ParseFormat(*to)
	if err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s\n", err, Usage())
	}

	allKeys := append([]string(nil), keys...)
	allKeys = append(allKeys, keyList...)
	if *keyFile != "" {
		fileKeys, err := loadKeyFile(*keyFile)
		if err != nil {
			return nil, exit.Errorf("Error: failed to load key file: %v\n\n%s\n", err, Usage())
		}
		allKeys = append(allKeys, fileKeys...)
	}

	config := &Config{
		Command:      command,
		InputFile:    inputFile,
		InputFormat:  inputFormat,
		OutputFormat: outputFormat,
		Select:       strings.TrimSpace(*sel),
		MaxDepth:     *maxDepth,
		Stringify:    *stringify,
		Keys:         allKeys,
		KeyFile:      *keyFile,
		Prefix:       prefix.value,
		HasPrefix:    prefix.set,
		Tree:         bool(tree),
		Debug:        *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s\n", err, Usage())
	}

	return config, nil
}

// resolveInputFormat prefers an explicit --from, then the file extension, and
// falls back to JSON for stdin.
func resolveInputFormat(explicit string, inputFile string) (codec.Format, error) {
	if explicit != "" {
		return codec.ParseFormat(explicit)
	}
	if inputFile == "" || inputFile == StdinPath {
		return codec.FormatJSON, nil
	}
	if format, ok := codec.FormatFromPath(inputFile); ok {
		return format, nil
	}
	return "", fmt.Errorf("%w from %s, use --from", ErrFormatNotDetectable, inputFile)
}

// loadKeyFile loads keys from a file with one key per line.
// It supports comments (lines starting with #) and empty lines.
func loadKeyFile(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var keys []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keys = append(keys, line)
	}

	return keys, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `morph - flatten, unflatten and filter nested documents

Usage: morph <command> [options] [file]

Commands:
  flatten      Collapse a nested document into path keys (a.b, a.c[0])
  unflatten    Rebuild a nested document from path keys
  pick         Keep only the given keys
  omit         Drop the given keys

Options:
  --from FORMAT         Input format: json, yaml, toml, properties (default: from file extension, json for stdin)
  --to FORMAT           Output format: json, yaml, toml, properties (default: json)
  --select EXPR         JSONPath expression applied to the input first (first match is used)
  --max-depth N         Reject input nested deeper than N (0 for unlimited)
  --stringify           Render every leaf value as a string
  --key KEY             Key to pick or omit (can be used multiple times)
  --keys LIST           Shell-quoted list of keys to pick or omit
  --key-file FILE       File with one key per line
  --prefix PREFIX       Pick: keep keys starting with PREFIX, stripped; omit: drop them
  --tree[=BOOL]         Resolve dotted keys against nested mappings
  --debug               Enable debug logging
  -h, --help            Show this help message

Examples:
  morph flatten config.yaml                       # {"server.port": 8080, ...}
  morph flatten --to properties config.yaml       # server.port=8080
  morph unflatten app.properties --to yaml        # nested YAML
  morph pick --tree --key server.tls config.json  # keep only server.tls
  morph omit --prefix debug_ settings.toml        # drop debug_* keys
  cat doc.json | morph flatten --select '$.spec'  # flatten a sub-document`
}
