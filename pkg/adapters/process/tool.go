package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/fsmagent/pkg/domain"
	"github.com/aretw0/fsmagent/pkg/registry"
)

// EnvPrefix prefixes the environment variables carrying tool arguments.
const EnvPrefix = "FSMAGENT_ARG_"

// Tool runs an allow-listed command for each invocation.
// Arguments are passed as environment variables, never as command-line flags.
type Tool struct {
	cfg     Config
	baseDir string
	timeout time.Duration
}

// Option configures a process Tool.
type Option func(*Tool)

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) Option {
	return func(t *Tool) {
		t.baseDir = dir
	}
}

// NewTool creates a Tool from its config.
func NewTool(cfg Config, opts ...Option) (*Tool, error) {
	t := &Tool{cfg: cfg}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%w: tool %q: invalid timeout %q", domain.ErrConfiguration, cfg.Name, cfg.Timeout)
		}
		t.timeout = d
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Register adds a Tool for every config to reg.
func Register(reg *registry.Registry, configs []Config, opts ...Option) error {
	for _, cfg := range configs {
		t, err := NewTool(cfg, opts...)
		if err != nil {
			return err
		}
		reg.Register(t)
	}
	return nil
}

func (t *Tool) Name() string        { return t.cfg.Name }
func (t *Tool) Description() string { return t.cfg.Description }

func (t *Tool) Parameters() []domain.ParamSpec {
	return append([]domain.ParamSpec(nil), t.cfg.Parameters...)
}

// Invoke runs the command. Declared required parameters are checked first.
// Stdout is the result, decoded as JSON when it looks like JSON. A non-zero
// exit is an error carrying stderr.
func (t *Tool) Invoke(ctx context.Context, args registry.Args) (any, error) {
	for _, p := range t.cfg.Parameters {
		if p.Required && !args.Has(p.Name) {
			return nil, &domain.ArgumentError{Key: p.Name, Reason: "missing required argument"}
		}
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, t.cfg.Command, t.cfg.Args...)
	cmd.Dir = t.baseDir
	cmd.Env = append(cmd.Environ(), t.environ(args)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	trimmed := strings.TrimSpace(stdout.String())
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var out any
		if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
			return out, nil
		}
	}
	return trimmed, nil
}

func (t *Tool) environ(args registry.Args) []string {
	env := make([]string, 0, len(t.cfg.Environment)+len(args))
	for k, v := range t.cfg.Environment {
		env = append(env, k+"="+v)
	}

	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var val string
		switch v := args[k].(type) {
		case nil:
		case string:
			val = v
		case int, int64, float64, bool, json.Number:
			val = fmt.Sprintf("%v", v)
		default:
			if data, err := json.Marshal(v); err == nil {
				val = string(data)
			} else {
				val = fmt.Sprintf("%v", v)
			}
		}
		env = append(env, EnvPrefix+strings.ToUpper(k)+"="+val)
	}
	return env
}
