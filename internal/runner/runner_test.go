package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/jacoelho/morph/internal/codec"
	"github.com/jacoelho/morph/internal/config"
	"github.com/jacoelho/morph/internal/exit"
	"github.com/jacoelho/morph/internal/flat"
	"github.com/jacoelho/morph/internal/selector"
)

func newTestRunner(t *testing.T, cfg *config.Config) *Runner {
	t.Helper()

	if cfg.InputFormat == "" {
		cfg.InputFormat = codec.FormatJSON
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = codec.FormatJSON
	}

	r, exitResult := New(cfg, log.New(io.Discard))
	if exitResult != nil {
		t.Fatalf("New() unexpected error: %s", exitResult.Message)
	}
	return r
}

func decodeJSON(t *testing.T, data []byte) any {
	t.Helper()

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, data)
	}
	return v
}

func TestExecute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config config.Config
		input  string
		want   any
	}{
		{
			name:   "flatten",
			config: config.Config{Command: config.CommandFlatten},
			input:  `{"a": {"b": 1, "c": [1, {"d": 2}]}, "e": null}`,
			want:   map[string]any{"a.b": 1.0, "a.c[0]": 1.0, "a.c[1].d": 2.0, "e": nil},
		},
		{
			name:   "flatten_sequence",
			config: config.Config{Command: config.CommandFlatten},
			input:  `[1, [2, [3]], {"a": [4]}]`,
			want:   []any{1.0, 2.0, 3.0, map[string]any{"a": []any{4.0}}},
		},
		{
			name:   "unflatten",
			config: config.Config{Command: config.CommandUnflatten},
			input:  `{"a.b": 1, "a.c[1]": "y", "a.c[0]": "x", "[0]": true}`,
			want: map[string]any{
				"a": map[string]any{"b": 1.0, "c": []any{"x", "y"}},
				"":  []any{true},
			},
		},
		{
			name:   "pick_plain",
			config: config.Config{Command: config.CommandPick, Keys: []string{"a", "missing"}},
			input:  `{"a": 1, "b": 2}`,
			want:   map[string]any{"a": 1.0},
		},
		{
			name:   "pick_tree",
			config: config.Config{Command: config.CommandPick, Keys: []string{"server.tls.cert", "name"}, Tree: true},
			input:  `{"name": "api", "server": {"port": 80, "tls": {"cert": "c", "key": "k"}}}`,
			want: map[string]any{
				"name":   "api",
				"server": map[string]any{"tls": map[string]any{"cert": "c"}},
			},
		},
		{
			name:   "pick_prefix",
			config: config.Config{Command: config.CommandPick, Keys: []string{"host"}, HasPrefix: true, Prefix: "db_"},
			input:  `{"db_host": "h", "db_port": 5432, "host": "other"}`,
			want:   map[string]any{"host": "h"},
		},
		{
			name:   "omit_prefix",
			config: config.Config{Command: config.CommandOmit, HasPrefix: true, Prefix: "debug_"},
			input:  `{"debug_level": 3, "name": "x"}`,
			want:   map[string]any{"name": "x"},
		},
		{
			name:   "omit_tree",
			config: config.Config{Command: config.CommandOmit, Keys: []string{"server.port"}, Tree: true},
			input:  `{"server": {"port": 80, "host": "h"}}`,
			want:   map[string]any{"server": map[string]any{"host": "h"}},
		},
		{
			name:   "select_then_flatten",
			config: config.Config{Command: config.CommandFlatten, Select: "$.spec"},
			input:  `{"kind": "x", "spec": {"replicas": 2, "ports": [80]}}`,
			want:   map[string]any{"replicas": 2.0, "ports[0]": 80.0},
		},
		{
			name:   "stringify",
			config: config.Config{Command: config.CommandFlatten, Stringify: true},
			input:  `{"a": {"b": 1, "c": true, "d": null}}`,
			want:   map[string]any{"a.b": "1", "a.c": "true", "a.d": ""},
		},
		{
			name:   "depth_within_limit",
			config: config.Config{Command: config.CommandFlatten, MaxDepth: 2},
			input:  `{"a": {"b": 1}}`,
			want:   map[string]any{"a.b": 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.config
			r := newTestRunner(t, &cfg)

			var out bytes.Buffer
			if err := r.Execute(context.Background(), strings.NewReader(tt.input), &out); err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}

			if got := decodeJSON(t, out.Bytes()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Execute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExecuteErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  config.Config
		input   string
		wantErr error
	}{
		{
			name:    "invalid_json",
			config:  config.Config{Command: config.CommandFlatten},
			input:   `{"a":`,
			wantErr: codec.ErrDecode,
		},
		{
			name:    "flatten_scalar",
			config:  config.Config{Command: config.CommandFlatten},
			input:   `42`,
			wantErr: flat.ErrUnflattenableType,
		},
		{
			name:    "unflatten_sequence",
			config:  config.Config{Command: config.CommandUnflatten},
			input:   `[1]`,
			wantErr: flat.ErrNotAMapping,
		},
		{
			name:    "unflatten_conflict",
			config:  config.Config{Command: config.CommandUnflatten},
			input:   `{"a": 1, "a.b": 2}`,
			wantErr: flat.ErrConflictingScalarAndStructure,
		},
		{
			name:    "unflatten_mixed_children",
			config:  config.Config{Command: config.CommandUnflatten},
			input:   `{"a.b": 1, "a[0]": 2}`,
			wantErr: flat.ErrConflictingListAndMapping,
		},
		{
			name:    "unflatten_bad_index",
			config:  config.Config{Command: config.CommandUnflatten},
			input:   `{"a[x]": 1}`,
			wantErr: flat.ErrMalformedIndex,
		},
		{
			name:    "pick_from_scalar",
			config:  config.Config{Command: config.CommandPick, Keys: []string{"a"}},
			input:   `"text"`,
			wantErr: selector.ErrUnsupportedSource,
		},
		{
			name:    "select_no_match",
			config:  config.Config{Command: config.CommandFlatten, Select: "$.missing"},
			input:   `{"a": 1}`,
			wantErr: ErrNoMatch,
		},
		{
			name:    "too_deep",
			config:  config.Config{Command: config.CommandFlatten, MaxDepth: 1},
			input:   `{"a": {"b": 1}}`,
			wantErr: ErrTooDeep,
		},
		{
			name:    "toml_output_of_sequence",
			config:  config.Config{Command: config.CommandFlatten, OutputFormat: codec.FormatTOML},
			input:   `[1, 2]`,
			wantErr: codec.ErrUnsupportedValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.config
			r := newTestRunner(t, &cfg)

			err := r.Execute(context.Background(), strings.NewReader(tt.input), io.Discard)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Execute() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExecuteFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config config.Config
		input  string
		want   string
	}{
		{
			name: "yaml_to_properties",
			config: config.Config{
				Command:      config.CommandFlatten,
				InputFormat:  codec.FormatYAML,
				OutputFormat: codec.FormatProperties,
			},
			input: "server:\n  port: 8080\n  hosts:\n    - a\n    - b\n",
			want:  "server.hosts[0]=a\nserver.hosts[1]=b\nserver.port=8080\n",
		},
		{
			name: "toml_to_properties",
			config: config.Config{
				Command:      config.CommandFlatten,
				InputFormat:  codec.FormatTOML,
				OutputFormat: codec.FormatProperties,
			},
			input: "[db]\nhost = \"h\"\nports = [1, 2]\n",
			want:  "db.host=h\ndb.ports[0]=1\ndb.ports[1]=2\n",
		},
		{
			name: "pick_tree_to_yaml",
			config: config.Config{
				Command:      config.CommandPick,
				Keys:         []string{"server.tls.cert", "name"},
				Tree:         true,
				OutputFormat: codec.FormatYAML,
			},
			input: `{"server": {"port": 80, "tls": {"key": "k", "cert": "c"}}, "name": "api"}`,
			want:  "name: api\nserver:\n  tls:\n    cert: c\n",
		},
		{
			name: "omit_to_yaml",
			config: config.Config{
				Command:      config.CommandOmit,
				Keys:         []string{"b"},
				OutputFormat: codec.FormatYAML,
			},
			input: `{"c": "z", "b": "y", "a": "x"}`,
			want:  "a: x\nc: z\n",
		},
		{
			name: "properties_to_json",
			config: config.Config{
				Command:      config.CommandUnflatten,
				InputFormat:  codec.FormatProperties,
				OutputFormat: codec.FormatJSON,
			},
			input: "# app\na.b=1\na.c[0]=x\n",
			want:  "{\n  \"a\": {\n    \"b\": \"1\",\n    \"c\": [\n      \"x\"\n    ]\n  }\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.config
			r := newTestRunner(t, &cfg)

			var out bytes.Buffer
			if err := r.Execute(context.Background(), strings.NewReader(tt.input), &out); err != nil {
				t.Fatalf("Execute() unexpected error: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("Execute() = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestApplyOrderedForYAML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      config.Config
		wantOrdered bool
	}{
		{"yaml", config.Config{Command: config.CommandPick, Keys: []string{"a"}, OutputFormat: codec.FormatYAML}, true},
		{"yaml_stringified", config.Config{Command: config.CommandPick, Keys: []string{"a"}, OutputFormat: codec.FormatYAML, Stringify: true}, false},
		{"json", config.Config{Command: config.CommandOmit, Keys: []string{"a"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.config
			r := newTestRunner(t, &cfg)

			got, err := r.apply(map[string]any{"a": 1, "b": 2})
			if err != nil {
				t.Fatalf("apply() unexpected error: %v", err)
			}
			if _, ok := got.(*selector.Ordered); ok != tt.wantOrdered {
				t.Fatalf("apply() = %T, want ordered %v", got, tt.wantOrdered)
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, &config.Config{Command: config.CommandFlatten})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Execute(ctx, strings.NewReader(`{"a": 1}`), io.Discard)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want %v", err, context.Canceled)
	}
}

func TestNewInvalidSelect(t *testing.T) {
	t.Parallel()

	r, exitResult := New(&config.Config{Command: config.CommandFlatten, Select: "$[?"}, log.New(io.Discard))
	if r != nil {
		t.Errorf("New() runner = %v, want nil", r)
	}
	if exitResult == nil || exitResult.ExitCode != exit.CodeFailure {
		t.Fatalf("New() exit result = %+v, want failure", exitResult)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	input := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(input, []byte(`{"a": [1]}`), 0644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t, &config.Config{
		Command:      config.CommandFlatten,
		InputFile:    input,
		OutputFormat: codec.FormatProperties,
	})
	var out bytes.Buffer
	r.stdout = &out

	if code := r.Run(context.Background()); code != exit.CodeSuccess {
		t.Fatalf("Run() = %d, want %d", code, exit.CodeSuccess)
	}
	if want := "a[0]=1\n"; out.String() != want {
		t.Errorf("Run() output = %q, want %q", out.String(), want)
	}
}

func TestRunStdin(t *testing.T) {
	t.Parallel()

	r := newTestRunner(t, &config.Config{Command: config.CommandUnflatten})
	r.stdin = strings.NewReader(`{"a": 1, "a.b": 2}`)
	r.stdout = io.Discard

	if code := r.Run(context.Background()); code != exit.CodeFailure {
		t.Fatalf("Run() = %d, want %d", code, exit.CodeFailure)
	}
}
