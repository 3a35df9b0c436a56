// Package engine wires the guard registry, override store, and audit
// log into one evaluation pipeline.
package engine

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avolkov/hookgate/internal/audit"
	"github.com/avolkov/hookgate/internal/config"
	"github.com/avolkov/hookgate/internal/event"
	"github.com/avolkov/hookgate/internal/guard"
	"github.com/avolkov/hookgate/internal/override"
	"github.com/avolkov/hookgate/internal/verdict"
)

// Engine evaluates events against the guard pipeline.
type Engine struct {
	registry   *guard.Registry
	overrides  *override.Store
	log        *audit.Log
	logger     *zap.Logger
	configHash string
}

// Options configure engine construction.
type Options struct {
	Config     *config.Config
	ConfigHash string
	// AuditPath overrides the config's audit log location.
	AuditPath string
	// OverrideDir overrides the config's override store location.
	OverrideDir string
	Logger      *zap.Logger
}

// New builds an Engine: a statically-constructed guard table in a fixed
// order, the override store, and the audit log.
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	overrideDir := opts.OverrideDir
	if overrideDir == "" {
		overrideDir = cfg.OverrideDir
	}
	if overrideDir == "" {
		overrideDir = override.DefaultDir()
	}
	overrides, err := override.NewStore(overrideDir)
	if err != nil {
		return nil, fmt.Errorf("engine: open override store: %w", err)
	}

	auditPath := opts.AuditPath
	if auditPath == "" {
		auditPath = cfg.AuditLog
	}
	if auditPath == "" {
		auditPath = audit.DefaultPath()
	}
	log, err := audit.Open(auditPath)
	if err != nil {
		return nil, fmt.Errorf("engine: open audit log: %w", err)
	}

	return &Engine{
		registry:   registry,
		overrides:  overrides,
		log:        log,
		logger:     logger,
		configHash: opts.ConfigHash,
	}, nil
}

// BuildRegistry constructs the guard table. Registration order is
// deterministic and defined here, nowhere else.
func BuildRegistry(cfg *config.Config) (*guard.Registry, error) {
	registry := guard.NewRegistry()
	guards := []guard.Guard{
		guard.NewPathBoundary(cfg.Root, cfg.AllowPaths),
		guard.NewInstallScript(cfg.InstallEntryPoint),
		guard.NewBypassPattern(cfg.BypassPatterns),
		guard.NewScriptIntegrity(cfg.ProtectedFiles),
		guard.NewDangerousCommand(),
	}
	for _, g := range guards {
		if err := registry.Register(g); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.DisabledGuards {
		if err := registry.Disable(name); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Registry exposes the guard table for listing.
func (e *Engine) Registry() *guard.Registry { return e.registry }

// Evaluate runs the event through every enabled guard, consumes an
// override code if one is offered and needed, records the decision, and
// returns the verdict.
//
// overrideCode is the out-of-band candidate read from the environment by
// the adapter; it is never parsed from the event's own fields. A clean
// event does not consume the code.
func (e *Engine) Evaluate(ev *event.Event, overrideCode string) verdict.Verdict {
	decisions := e.registry.Evaluate(ev)

	overridden := false
	if verdict.AnyBlocking(decisions) && overrideCode != "" {
		overridden = e.overrides.ValidateAndConsume(overrideCode)
		if !overridden {
			// A rejection can mean a concurrent winner raced this code,
			// so the candidate may still be sensitive. Log a prefix only.
			e.logger.Warn("override code rejected",
				zap.String("code", redactCode(overrideCode)))
		}
	}

	v := verdict.Aggregate(decisions, overridden)

	rec := audit.Record{
		ID:         uuid.NewString(),
		Event:      ev.Summarize(),
		Blocked:    v.Blocked,
		Overridden: v.Overridden,
		Reasons:    v.Reasons,
		ConfigHash: e.configHash,
	}
	if overridden {
		rec.OverrideID = overrideCode
	}

	// A failed append must not change the verdict the host receives,
	// but losing audit history is a silent safety regression: retry
	// once, then complain loudly.
	if err := e.log.Append(rec); err != nil {
		e.logger.Warn("audit append failed, retrying", zap.Error(err))
		if err := e.log.Append(rec); err != nil {
			e.logger.Error("audit append failed permanently", zap.Error(err))
		}
	}

	return v
}

// redactCode keeps enough of a candidate code to correlate with the
// store without reproducing the full credential.
func redactCode(code string) string {
	const keep = 6
	if len(code) <= keep {
		return code
	}
	return code[:keep] + "..."
}

// Close releases the audit log.
func (e *Engine) Close() error {
	return e.log.Close()
}
