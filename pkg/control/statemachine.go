package control

import "github.com/autonomysim/coresim/pkg/spatial"

// FlightState is a node in the per-vehicle firmware state machine of spec
// §4.6.
type FlightState int

const (
	Disarmed FlightState = iota
	Armed
	Flying
	Landing
)

func (s FlightState) String() string {
	switch s {
	case Armed:
		return "Armed"
	case Flying:
		return "Flying"
	case Landing:
		return "Landing"
	default:
		return "Disarmed"
	}
}

// StateMachineInputs are the ground-truth signals transitions are gated on.
type StateMachineInputs struct {
	Altitude        spatial.Real // meters above ground, positive up
	Throttle        spatial.Real // [0,1]
	BatteryFraction spatial.Real // [0,1]
	RcRequired      bool
	RcLost          bool
	LandedThreshold spatial.Real
}

// StateMachine drives Disarmed → Armed → Flying → Landing → Disarmed,
// requiring confirmation from ground-truth altitude/throttle and forcing
// Landing on emergency conditions (spec §4.6).
type StateMachine struct {
	state FlightState
}

// NewStateMachine starts Disarmed, as a freshly constructed vehicle always
// is.
func NewStateMachine() *StateMachine { return &StateMachine{state: Disarmed} }

func (m *StateMachine) State() FlightState { return m.state }

func (m *StateMachine) Reset() { m.state = Disarmed }

// Arm transitions Disarmed → Armed; it is a no-op (returns false) from any
// other state.
func (m *StateMachine) Arm() bool {
	if m.state != Disarmed {
		return false
	}
	m.state = Armed
	return true
}

// Disarm forces the machine back to Disarmed from any state, cancelling
// flight.
func (m *StateMachine) Disarm() {
	m.state = Disarmed
}

// Update advances the machine from ground-truth confirmation signals,
// forcing Landing on emergency (low battery, RC loss when required),
// matching spec §4.6.
func (m *StateMachine) Update(in StateMachineInputs) {
	emergency := in.BatteryFraction < 0.1 || (in.RcRequired && in.RcLost)

	switch m.state {
	case Armed:
		if emergency {
			m.state = Landing
			return
		}
		if in.Throttle > 0.1 && in.Altitude > 0.2 {
			m.state = Flying
		}
	case Flying:
		if emergency {
			m.state = Landing
			return
		}
	case Landing:
		if in.Altitude <= in.LandedThreshold {
			m.state = Disarmed
		}
	}
}
