package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusOpen, false},
		{StatusMonitoring, false},
		{StatusAwaitingReturn, false},
		{StatusCollected, false},
		{StatusPending, false},
		{StatusInAnalysis, false},
		{StatusInRoute, false},
		{StatusApproved, false},
		{StatusActive, false},
		{StatusPaused, false},
		{StatusFinalized, true},
		{StatusCancelled, true},
		{StatusPaid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"valid status", StatusOpen, true},
		{"valid terminal status", StatusPaid, true},
		{"invalid status", Status("INVALID"), false},
		{"empty status", Status(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKind_IsValid(t *testing.T) {
	if !KindReturnCase.IsValid() {
		t.Error("Kind.IsValid() should be true for declared kinds")
	}
	if Kind("unknown-kind").IsValid() {
		t.Error("Kind.IsValid() should be false for undeclared kinds")
	}
}

func TestBuilder_Configure(t *testing.T) {
	builder := NewBuilder()

	config := builder.Configure(StatusOpen)
	if config == nil {
		t.Fatal("Configure() returned nil")
	}

	config2 := builder.Configure(StatusOpen)
	if config != config2 {
		t.Error("Configure() should return same config for same status")
	}
}

func TestBuilder_ConfigurePanicsOnInvalidStatus(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid status")
		}
	}()

	builder.Configure(Status("INVALID"))
}

func TestBuilder_PermitPanicsOnTerminalSource(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Permit() should panic when the source status is terminal")
		}
	}()

	builder.Configure(StatusFinalized).Permit(StatusOpen)
}

func TestStateMachine_Move(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatusOpen).
		Permit(StatusMonitoring).
		Permit(StatusFinalized)
	builder.Configure(StatusMonitoring).
		Permit(StatusOpen)

	machine := builder.Build(StatusOpen)

	if !machine.CanMove(StatusMonitoring) {
		t.Error("CanMove() should be true for a declared move")
	}
	if machine.CanMove(StatusPaid) {
		t.Error("CanMove() should be false for an undeclared move")
	}

	if err := machine.Move(context.Background(), StatusMonitoring); err != nil {
		t.Fatalf("Move() unexpected error: %v", err)
	}
	if machine.Status() != StatusMonitoring {
		t.Errorf("Status() = %v, want %v", machine.Status(), StatusMonitoring)
	}

	err := machine.Move(context.Background(), StatusFinalized)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Move() error = %v, want ErrInvalidTransition", err)
	}
}

func TestStateMachine_MoveWithGuard(t *testing.T) {
	type guardKey struct{}

	guard := func(ctx context.Context) bool {
		allowed, _ := ctx.Value(guardKey{}).(bool)
		return allowed
	}

	builder := NewBuilder()
	builder.Configure(StatusInAnalysis).
		PermitIf(StatusFinalized, guard).
		Permit(StatusCancelled)

	t.Run("guard denies", func(t *testing.T) {
		machine := builder.Build(StatusInAnalysis)
		err := machine.Move(context.Background(), StatusFinalized)
		if !errors.Is(err, ErrGuardFailed) {
			t.Errorf("Move() error = %v, want ErrGuardFailed", err)
		}
		if machine.Status() != StatusInAnalysis {
			t.Error("a denied move must not change the current status")
		}
	})

	t.Run("guard allows", func(t *testing.T) {
		machine := builder.Build(StatusInAnalysis)
		ctx := context.WithValue(context.Background(), guardKey{}, true)
		if err := machine.Move(ctx, StatusFinalized); err != nil {
			t.Fatalf("Move() unexpected error: %v", err)
		}
		if machine.Status() != StatusFinalized {
			t.Errorf("Status() = %v, want %v", machine.Status(), StatusFinalized)
		}
	})

	t.Run("unguarded sibling move unaffected", func(t *testing.T) {
		machine := builder.Build(StatusInAnalysis)
		if err := machine.Move(context.Background(), StatusCancelled); err != nil {
			t.Fatalf("Move() unexpected error: %v", err)
		}
	})
}

func TestStateMachine_PermittedTargets(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatusOpen).
		Permit(StatusMonitoring).
		Permit(StatusFinalized)

	machine := builder.Build(StatusOpen)

	targets := machine.PermittedTargets()
	if len(targets) != 2 {
		t.Fatalf("PermittedTargets() returned %d targets, want 2", len(targets))
	}

	machine = builder.Build(StatusFinalized)
	if len(machine.PermittedTargets()) != 0 {
		t.Error("PermittedTargets() should be empty for a status with no declared moves")
	}
}

func TestStateMachine_IndependentFromBuilder(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatusOpen).Permit(StatusMonitoring)

	first := builder.Build(StatusOpen)
	second := builder.Build(StatusOpen)

	if err := first.Move(context.Background(), StatusMonitoring); err != nil {
		t.Fatalf("Move() unexpected error: %v", err)
	}

	if second.Status() != StatusOpen {
		t.Error("machines built from the same builder must not share position")
	}
}
