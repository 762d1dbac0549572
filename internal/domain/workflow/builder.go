package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a declared move should be allowed at runtime
type GuardFunc func(ctx context.Context) bool

// Builder assembles a transition table into immutable state machines
type Builder interface {
	// Configure returns the configuration for moves out of the given status
	Configure(status Status) StatusConfiguration

	// Build creates a new state machine positioned at the given status
	Build(current Status) StateMachine
}

// StatusConfiguration declares the legal moves out of one status
type StatusConfiguration interface {
	// Permit declares a move to the target status
	Permit(to Status) StatusConfiguration

	// PermitIf declares a move to the target status gated by a guard
	PermitIf(to Status, guard GuardFunc) StatusConfiguration
}

type move struct {
	to    Status
	guard GuardFunc
}

type statusConfig struct {
	from  Status
	moves []move
}

type tableBuilder struct {
	configs map[Status]*statusConfig
}

type stateMachine struct {
	current Status
	configs map[Status]*statusConfig
}

// NewBuilder creates a new transition table builder
func NewBuilder() Builder {
	return &tableBuilder{
		configs: make(map[Status]*statusConfig),
	}
}

func (b *tableBuilder) Configure(status Status) StatusConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("configure: invalid status %s", status))
	}

	cfg, ok := b.configs[status]
	if !ok {
		cfg = &statusConfig{from: status}
		b.configs[status] = cfg
	}
	return cfg
}

func (b *tableBuilder) Build(current Status) StateMachine {
	if !current.IsValid() {
		panic(fmt.Sprintf("build: invalid status %s", current))
	}

	// Copy configurations so machines built from the same builder stay independent
	configs := make(map[Status]*statusConfig, len(b.configs))
	for status, cfg := range b.configs {
		configs[status] = &statusConfig{
			from:  status,
			moves: append([]move{}, cfg.moves...),
		}
	}

	return &stateMachine{
		current: current,
		configs: configs,
	}
}

func (c *statusConfig) Permit(to Status) StatusConfiguration {
	return c.PermitIf(to, nil)
}

func (c *statusConfig) PermitIf(to Status, guard GuardFunc) StatusConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("permit: invalid target status %s", to))
	}
	if c.from.IsTerminal() {
		panic(fmt.Sprintf("permit: %s is terminal, no moves may leave it", c.from))
	}

	c.moves = append(c.moves, move{to: to, guard: guard})
	return c
}

func (m *stateMachine) Status() Status {
	return m.current
}

func (m *stateMachine) CanMove(to Status) bool {
	cfg, ok := m.configs[m.current]
	if !ok {
		return false
	}
	for _, mv := range cfg.moves {
		if mv.to == to {
			return true
		}
	}
	return false
}

func (m *stateMachine) Move(ctx context.Context, to Status) error {
	cfg, ok := m.configs[m.current]
	if !ok {
		return fmt.Errorf("%w: %s -> %s (no moves declared)", ErrInvalidTransition, m.current, to)
	}

	declared := false
	for _, mv := range cfg.moves {
		if mv.to != to {
			continue
		}
		declared = true
		if mv.guard == nil || mv.guard(ctx) {
			m.current = to
			return nil
		}
	}

	if declared {
		return fmt.Errorf("%w: %s -> %s", ErrGuardFailed, m.current, to)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
}

func (m *stateMachine) PermittedTargets() []Status {
	cfg, ok := m.configs[m.current]
	if !ok {
		return []Status{}
	}

	seen := make(map[Status]bool, len(cfg.moves))
	targets := make([]Status, 0, len(cfg.moves))
	for _, mv := range cfg.moves {
		if !seen[mv.to] {
			seen[mv.to] = true
			targets = append(targets, mv.to)
		}
	}
	return targets
}
