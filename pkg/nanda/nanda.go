// Package nanda implements the NANDACoordinator of spec §4.12: role
// reassignment, task allocation by fitness, and emergent-behavior detection.
package nanda

import (
	"math"
	"sort"

	"github.com/autonomysim/coresim/pkg/spatial"
)

// Role is an assignable swarm role.
type Role int

const (
	RoleWorker Role = iota
	RoleLeader
	RoleScout
	RoleGuardian
	RoleRelay
	// RoleSpecialist and RoleAdaptive complete the data-model role set (spec
	// §3) but are never assigned by ReassignRoles; they are reserved for
	// caller-driven role overrides outside the automatic heuristic.
	RoleSpecialist
	RoleAdaptive
)

func (r Role) String() string {
	switch r {
	case RoleLeader:
		return "Leader"
	case RoleScout:
		return "Scout"
	case RoleGuardian:
		return "Guardian"
	case RoleRelay:
		return "Relay"
	case RoleSpecialist:
		return "Specialist"
	case RoleAdaptive:
		return "Adaptive"
	default:
		return "Worker"
	}
}

// Agent is NANDA's view of one swarm participant.
type Agent struct {
	ID              string
	Position        spatial.Vec3
	Energy          spatial.Real
	Capabilities    map[string]spatial.Real
	Role            Role
	AssignedTasks   int
}

// Task is a pending or assigned unit of work.
type Task struct {
	ID                   string
	Location             spatial.Vec3
	RequiredCapabilities map[string]spatial.Real
	Status               TaskStatus
	AssignedAgent        string
	Completion           spatial.Real
}

// TaskStatus is a Task's lifecycle stage.
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskAssigned
	TaskCompleted
)

// DecisionMode selects how Decision processing finalizes.
type DecisionMode int

const (
	DecisionCentralized DecisionMode = iota
	DecisionDistributed
	DecisionConsensus
)

// Decision is one pending or finalized NANDA-level decision.
type Decision struct {
	ID           string
	Mode         DecisionMode
	Votes        map[string]spatial.Real
	Participants int
	Threshold    spatial.Real
	Finalized    bool
	Outcome      string
}

// BehaviorKind names an emergent-behavior detection result.
type BehaviorKind int

const (
	BehaviorNone BehaviorKind = iota
	BehaviorAggregation
	BehaviorFormation
)

// BehaviorReport is one tick's emergent-behavior finding.
type BehaviorReport struct {
	Kind     BehaviorKind
	Strength spatial.Real
}

// ReassignRoles partitions agents by descending energy into role bands:
// top ⌈n/10⌉ Leaders, next ⌊n/5⌋ Scouts, next ⌊n/10⌋ Guardians, next
// ⌊n/10⌋ Relays, remainder Workers. Ties break by lexicographically
// smaller agent id sorting first.
func ReassignRoles(agents []*Agent) {
	n := len(agents)
	if n == 0 {
		return
	}
	sorted := make([]*Agent, n)
	copy(sorted, agents)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Energy != sorted[j].Energy {
			return sorted[i].Energy > sorted[j].Energy
		}
		return sorted[i].ID < sorted[j].ID
	})

	nLeaders := ceilDiv(n, 10)
	nScouts := n / 5
	nGuardians := n / 10
	nRelays := n / 10

	idx := 0
	assign := func(count int, role Role) {
		for i := 0; i < count && idx < n; i++ {
			sorted[idx].Role = role
			idx++
		}
	}
	assign(nLeaders, RoleLeader)
	assign(nScouts, RoleScout)
	assign(nGuardians, RoleGuardian)
	assign(nRelays, RoleRelay)
	assign(n-idx, RoleWorker)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Fitness computes the task-allocation fitness of agent for task per spec
// §4.12. Missing any required capability yields zero fitness.
func Fitness(agent *Agent, task *Task) spatial.Real {
	capSum := spatial.Real(0)
	for name, required := range task.RequiredCapabilities {
		have, ok := agent.Capabilities[name]
		if !ok {
			return 0
		}
		_ = required
		capSum += have
	}
	distance := agent.Position.DistanceTo(task.Location)
	distanceFactor := 1 / (1 + 0.01*distance)
	loadFactor := 1 / (1 + spatial.Real(agent.AssignedTasks))
	return capSum * distanceFactor * agent.Energy * loadFactor
}

// AllocateTask assigns the single best-fitness agent to task, breaking ties
// by smallest agent id, and marks the task assigned. Returns false if no
// agent has non-zero fitness.
func AllocateTask(agents []*Agent, task *Task) bool {
	var best *Agent
	bestFitness := spatial.Real(-1)
	for _, a := range agents {
		f := Fitness(a, task)
		if f <= 0 {
			continue
		}
		if f > bestFitness || (f == bestFitness && best != nil && a.ID < best.ID) {
			bestFitness = f
			best = a
		}
	}
	if best == nil {
		return false
	}
	task.Status = TaskAssigned
	task.AssignedAgent = best.ID
	best.AssignedTasks++
	return true
}

// DetectEmergentBehavior computes swarm centroid, dispersion (RMS distance
// to centroid), and cohesion, reporting Aggregation or Formation per the
// thresholds in spec §4.12. Reports BehaviorNone when neither threshold is
// met.
func DetectEmergentBehavior(agents []*Agent) BehaviorReport {
	n := len(agents)
	if n == 0 {
		return BehaviorReport{Kind: BehaviorNone}
	}
	centroid := spatial.Vec3{}
	for _, a := range agents {
		centroid = centroid.Add(a.Position)
	}
	centroid = centroid.Scale(1 / spatial.Real(n))

	sumSq := spatial.Real(0)
	sumDist := spatial.Real(0)
	for _, a := range agents {
		d := a.Position.DistanceTo(centroid)
		sumSq += d * d
		sumDist += d
	}
	dispersion := math.Sqrt(sumSq / spatial.Real(n))
	meanDist := sumDist / spatial.Real(n)
	cohesion := 1 / (1 + 0.1*meanDist)

	if dispersion < 10 {
		return BehaviorReport{Kind: BehaviorAggregation, Strength: 1 - dispersion/10}
	}
	if cohesion > 0.7 {
		return BehaviorReport{Kind: BehaviorFormation, Strength: cohesion}
	}
	return BehaviorReport{Kind: BehaviorNone}
}

// ProcessDecision advances a pending Decision by one tick per its Mode.
// Centralized finalizes approved on any vote; Distributed finalizes
// immediately regardless of votes; Consensus waits for
// len(Votes) >= Participants, then applies mean >= Threshold.
func ProcessDecision(d *Decision) {
	if d.Finalized {
		return
	}
	switch d.Mode {
	case DecisionCentralized:
		if len(d.Votes) > 0 {
			d.Finalized = true
			d.Outcome = "approved"
		}
	case DecisionDistributed:
		d.Finalized = true
		d.Outcome = "distributed"
	case DecisionConsensus:
		if len(d.Votes) < d.Participants {
			return
		}
		sum := spatial.Real(0)
		for _, v := range d.Votes {
			sum += v
		}
		mean := sum / spatial.Real(len(d.Votes))
		d.Finalized = true
		if mean >= d.Threshold {
			d.Outcome = "approved"
		} else {
			d.Outcome = "rejected"
		}
	}
}
