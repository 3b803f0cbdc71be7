package control

import (
	"math"
	"testing"

	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/spatial"
)

func TestPidProportionalOnlyOnFirstCall(t *testing.T) {
	p := NewPid(2, 1, 1, 0)
	out := p.Update(10, 0, 0)
	if out != 20 {
		t.Fatalf("expected a dt<=0 call to be pure proportional (2*10=20), got %v", out)
	}
}

func TestPidIntegralAccumulates(t *testing.T) {
	p := NewPid(0, 1, 0, 0)
	p.Update(1, 0, 1)
	out := p.Update(1, 0, 1)
	if out != 2 {
		t.Fatalf("expected the integral term to accumulate error*dt across calls, got %v", out)
	}
}

func TestPidIntegralClampsToMax(t *testing.T) {
	p := NewPid(0, 1, 0, 5)
	for i := 0; i < 100; i++ {
		p.Update(10, 0, 1)
	}
	out := p.Update(10, 0, 1)
	if out != 5 {
		t.Fatalf("expected the integral term to clamp at IntegralMax=5, got %v", out)
	}
}

func TestPidResetClearsMemory(t *testing.T) {
	p := NewPid(0, 1, 1, 0)
	p.Update(1, 0, 1)
	p.Reset()
	out := p.Update(1, 0, 1)
	if out != 1 {
		t.Fatalf("expected Reset to clear integral/derivative memory, got %v", out)
	}
}

func TestAxisPidUpdatesEachAxisIndependently(t *testing.T) {
	a := NewAxisPid(1, 0, 0, 0)
	out := a.Update(spatial.Vec3{X: 1, Y: 2, Z: 3}, spatial.Vec3{}, 1)
	if out != (spatial.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("expected per-axis proportional output, got %+v", out)
	}
}

func TestStateMachineArmDisarmedOnly(t *testing.T) {
	m := NewStateMachine()
	if !m.Arm() {
		t.Fatalf("expected Arm to succeed from Disarmed")
	}
	if m.Arm() {
		t.Fatalf("expected a second Arm call to be a no-op once already Armed")
	}
	if m.State() != Armed {
		t.Fatalf("expected state Armed, got %v", m.State())
	}
}

func TestStateMachineArmedToFlyingRequiresThrottleAndAltitude(t *testing.T) {
	m := NewStateMachine()
	m.Arm()
	m.Update(StateMachineInputs{Throttle: 0.05, Altitude: 5, BatteryFraction: 1})
	if m.State() != Armed {
		t.Fatalf("expected to stay Armed below the throttle threshold, got %v", m.State())
	}
	m.Update(StateMachineInputs{Throttle: 0.5, Altitude: 5, BatteryFraction: 1})
	if m.State() != Flying {
		t.Fatalf("expected to transition to Flying once throttle and altitude clear thresholds, got %v", m.State())
	}
}

func TestStateMachineEmergencyForcesLanding(t *testing.T) {
	m := NewStateMachine()
	m.Arm()
	m.Update(StateMachineInputs{Throttle: 0.5, Altitude: 5, BatteryFraction: 1})
	m.Update(StateMachineInputs{Throttle: 0.5, Altitude: 5, BatteryFraction: 0.05})
	if m.State() != Landing {
		t.Fatalf("expected low battery to force Landing from Flying, got %v", m.State())
	}
}

func TestStateMachineRcLossOnlyMattersWhenRequired(t *testing.T) {
	m := NewStateMachine()
	m.Arm()
	m.Update(StateMachineInputs{Throttle: 0.5, Altitude: 5, BatteryFraction: 1, RcLost: true, RcRequired: false})
	if m.State() != Flying {
		t.Fatalf("expected RC loss to be ignored when RcRequired is false, got %v", m.State())
	}
}

func TestStateMachineLandingReachesDisarmed(t *testing.T) {
	m := NewStateMachine()
	m.Arm()
	m.Update(StateMachineInputs{Throttle: 0.5, Altitude: 5, BatteryFraction: 0.05})
	m.Update(StateMachineInputs{Altitude: 0.05, LandedThreshold: 0.1})
	if m.State() != Disarmed {
		t.Fatalf("expected landing below LandedThreshold to reach Disarmed, got %v", m.State())
	}
}

func TestControllerConstantModeReturnsZeroCommand(t *testing.T) {
	c := NewController(1, 9.81)
	k := &kinematics.Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}}
	cmd := c.Update(Goal{Mode: GoalConstant}, k, 0.01)
	if cmd != (ActuatorCommand{}) {
		t.Fatalf("expected GoalConstant to produce a zero actuator command, got %+v", cmd)
	}
}

func TestControllerHoverAtGoalPositionRequestsNearHoverThrust(t *testing.T) {
	c := NewController(1, 9.81)
	k := &kinematics.Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}}
	cmd := c.Update(Goal{Mode: GoalPosition, Position: spatial.Vec3{}}, k, 0.01)
	if math.Abs(cmd.Thrust-9.81) > 1.0 {
		t.Fatalf("expected near-hover thrust when already at the goal position, got %v", cmd.Thrust)
	}
}

func TestControllerModeSwitchResetsIntegrators(t *testing.T) {
	c := NewController(1, 9.81)
	k := &kinematics.Kinematics{Pose: spatial.Pose{Orientation: spatial.IdentityQuat}}
	// Build up integrator state in position mode...
	for i := 0; i < 50; i++ {
		c.Update(Goal{Mode: GoalPosition, Position: spatial.Vec3{X: 10}}, k, 0.01)
	}
	// ...then switch to rate mode and back to confirm the switch doesn't panic
	// and that position's integrator is reset (verified indirectly: a fresh
	// hover command after the round trip stays near hoverThrust).
	c.Update(Goal{Mode: GoalRate}, k, 0.01)
	cmd := c.Update(Goal{Mode: GoalPosition, Position: spatial.Vec3{}}, k, 0.01)
	if math.Abs(cmd.Thrust-9.81) > 2.0 {
		t.Fatalf("expected the reset position integrator to not carry over stale windup, got thrust %v", cmd.Thrust)
	}
}
