// Package swarm implements SwarmController (spec §4.14), the top-level
// orchestrator composing MCP, A2A, NANDA, and FormationController over a
// set of agents and missions.
package swarm

import (
	"github.com/autonomysim/coresim/pkg/formation"
	"github.com/autonomysim/coresim/pkg/nanda"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Agent is the swarm-level record for one participant (spec §3's "swarm
// agent"), separate from nanda.Agent so the controller can track
// connectivity and vehicle binding without polluting NANDA's own view.
type Agent struct {
	ID            string
	Role          nanda.Role
	Position      spatial.Vec3
	Velocity      spatial.Vec3
	Orientation   spatial.Quat
	Energy        spatial.Real
	Capabilities  map[string]spatial.Real
	AssignedTasks []string
	Connected     bool
	LastUpdate    spatial.TimePoint
}

// TaskStatus mirrors the data model's status lattice (spec §3), extended
// with in_progress beyond NANDA's own pending/assigned/completed view.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskAssigned
	TaskInProgress
	TaskCompleted
	TaskFailed
)

// Task is one unit of mission work.
type Task struct {
	ID                   string
	Description          string
	Location             spatial.Vec3
	Priority             spatial.Real
	EstimatedDuration    spatial.TimeDelta
	RequiredCapabilities map[string]spatial.Real
	Assigned             []string
	Status               TaskStatus
	Completion           spatial.Real
	Deadline             spatial.TimePoint
}

// MissionState is a Mission's lifecycle stage.
type MissionState int

const (
	MissionInitializing MissionState = iota
	MissionPlanning
	MissionExecuting
	MissionAdapting
	MissionEmergency
	MissionIdle
	MissionCompleted
	MissionFailed
)

// Mission groups tasks toward a shared objective.
type Mission struct {
	ID             string
	Type           string
	TargetLocation spatial.Vec3
	Priority       spatial.Real
	AssignedAgents []string
	Tasks          []*Task
	State          MissionState
	Completion     spatial.Real
	Start          spatial.TimePoint
	Deadline       spatial.TimePoint
}

// Recompute sets m.Completion to the mean of its tasks' completions (spec
// §3 invariant) and auto-transitions Executing → Completed at 1.0.
func (m *Mission) Recompute() {
	if len(m.Tasks) == 0 {
		m.Completion = 0
		return
	}
	sum := spatial.Real(0)
	for _, t := range m.Tasks {
		sum += t.Completion
	}
	m.Completion = sum / spatial.Real(len(m.Tasks))
	if m.State == MissionExecuting && m.Completion >= 1.0 {
		m.State = MissionCompleted
	}
}

// FormationAssignment binds an agent to a formation index for
// FormationController.Compute.
type FormationAssignment struct {
	AgentID string
	Index   int
}

// FormationSpec configures which shape/leader the controller flies.
type FormationSpec struct {
	Shape       formation.Shape
	LeaderID    string
	Params      formation.Params
	Assignments []FormationAssignment
}
