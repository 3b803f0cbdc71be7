package nanda

import (
	"testing"

	"github.com/autonomysim/coresim/pkg/spatial"
)

func agentsByEnergy(energies ...spatial.Real) []*Agent {
	agents := make([]*Agent, len(energies))
	for i, e := range energies {
		agents[i] = &Agent{ID: idFor(i), Energy: e}
	}
	return agents
}

func idFor(i int) string {
	return string(rune('a' + i))
}

func TestReassignRolesBandSizes(t *testing.T) {
	// 10 agents: ceil(10/10)=1 leader, 10/5=2 scouts, 10/10=1 guardian,
	// 10/10=1 relay, remaining 5 workers.
	agents := agentsByEnergy(10, 9, 8, 7, 6, 5, 4, 3, 2, 1)
	ReassignRoles(agents)

	counts := map[Role]int{}
	for _, a := range agents {
		counts[a.Role]++
	}
	if counts[RoleLeader] != 1 {
		t.Fatalf("expected 1 leader, got %d", counts[RoleLeader])
	}
	if counts[RoleScout] != 2 {
		t.Fatalf("expected 2 scouts, got %d", counts[RoleScout])
	}
	if counts[RoleGuardian] != 1 {
		t.Fatalf("expected 1 guardian, got %d", counts[RoleGuardian])
	}
	if counts[RoleRelay] != 1 {
		t.Fatalf("expected 1 relay, got %d", counts[RoleRelay])
	}
	if counts[RoleWorker] != 5 {
		t.Fatalf("expected 5 workers, got %d", counts[RoleWorker])
	}
}

func TestReassignRolesHighestEnergyBecomesLeader(t *testing.T) {
	agents := agentsByEnergy(3, 9, 1)
	ReassignRoles(agents)

	for _, a := range agents {
		if a.ID == idFor(1) {
			if a.Role != RoleLeader {
				t.Fatalf("expected the highest-energy agent to be Leader, got %v", a.Role)
			}
		}
	}
}

func TestReassignRolesTieBreaksByLexicographicID(t *testing.T) {
	agents := []*Agent{
		{ID: "z", Energy: 5},
		{ID: "a", Energy: 5},
		{ID: "m", Energy: 5},
	}
	ReassignRoles(agents)

	// Equal energy: sort places "a" first, so it takes the single Leader slot.
	var leader string
	for _, a := range agents {
		if a.Role == RoleLeader {
			leader = a.ID
		}
	}
	if leader != "a" {
		t.Fatalf("expected lexicographically smallest id to win the tie, got %q", leader)
	}
}

func TestReassignRolesEmpty(t *testing.T) {
	// Must not panic on an empty roster.
	ReassignRoles(nil)
}

func TestFitnessZeroWhenCapabilityMissing(t *testing.T) {
	agent := &Agent{ID: "a1", Capabilities: map[string]spatial.Real{"camera": 1}, Energy: 1}
	task := &Task{RequiredCapabilities: map[string]spatial.Real{"lidar": 1}}

	if f := Fitness(agent, task); f != 0 {
		t.Fatalf("expected zero fitness for a missing capability, got %v", f)
	}
}

func TestFitnessFormula(t *testing.T) {
	agent := &Agent{
		ID:            "a1",
		Position:      spatial.Vec3{X: 0, Y: 0, Z: 0},
		Energy:        2,
		Capabilities:  map[string]spatial.Real{"camera": 3, "lidar": 1},
		AssignedTasks: 1,
	}
	task := &Task{
		Location:             spatial.Vec3{X: 100, Y: 0, Z: 0},
		RequiredCapabilities: map[string]spatial.Real{"camera": 1, "lidar": 1},
	}

	// capSum = 3+1 = 4, distanceFactor = 1/(1+0.01*100) = 0.5,
	// loadFactor = 1/(1+1) = 0.5, energy = 2 -> 4*0.5*2*0.5 = 2
	got := Fitness(agent, task)
	want := spatial.Real(2)
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected fitness %v, got %v", want, got)
	}
}

func TestAllocateTaskPicksHighestFitness(t *testing.T) {
	weak := &Agent{ID: "weak", Position: spatial.Vec3{}, Energy: 1, Capabilities: map[string]spatial.Real{"camera": 1}}
	strong := &Agent{ID: "strong", Position: spatial.Vec3{}, Energy: 5, Capabilities: map[string]spatial.Real{"camera": 1}}
	task := &Task{RequiredCapabilities: map[string]spatial.Real{"camera": 1}}

	if !AllocateTask([]*Agent{weak, strong}, task) {
		t.Fatalf("expected an agent to be allocated")
	}
	if task.AssignedAgent != "strong" {
		t.Fatalf("expected the higher-energy agent to win, got %q", task.AssignedAgent)
	}
	if task.Status != TaskAssigned {
		t.Fatalf("expected task status TaskAssigned")
	}
	if strong.AssignedTasks != 1 {
		t.Fatalf("expected the winning agent's AssignedTasks to increment")
	}
}

func TestAllocateTaskTieBreaksBySmallestID(t *testing.T) {
	a := &Agent{ID: "b-agent", Position: spatial.Vec3{}, Energy: 1, Capabilities: map[string]spatial.Real{"x": 1}}
	b := &Agent{ID: "a-agent", Position: spatial.Vec3{}, Energy: 1, Capabilities: map[string]spatial.Real{"x": 1}}
	task := &Task{RequiredCapabilities: map[string]spatial.Real{"x": 1}}

	if !AllocateTask([]*Agent{a, b}, task) {
		t.Fatalf("expected an agent to be allocated")
	}
	if task.AssignedAgent != "a-agent" {
		t.Fatalf("expected the lexicographically smaller id to win an exact tie, got %q", task.AssignedAgent)
	}
}

func TestAllocateTaskNoEligibleAgent(t *testing.T) {
	agent := &Agent{ID: "a1", Capabilities: map[string]spatial.Real{"camera": 1}}
	task := &Task{RequiredCapabilities: map[string]spatial.Real{"lidar": 1}}

	if AllocateTask([]*Agent{agent}, task) {
		t.Fatalf("expected allocation to fail when no agent has the required capability")
	}
	if task.Status != TaskPending {
		t.Fatalf("expected task to remain TaskPending on failed allocation")
	}
}

func TestDetectEmergentBehaviorAggregation(t *testing.T) {
	agents := []*Agent{
		{Position: spatial.Vec3{X: 0, Y: 0, Z: 0}},
		{Position: spatial.Vec3{X: 1, Y: 0, Z: 0}},
		{Position: spatial.Vec3{X: 0, Y: 1, Z: 0}},
	}
	report := DetectEmergentBehavior(agents)
	if report.Kind != BehaviorAggregation {
		t.Fatalf("expected aggregation for tightly clustered agents, got %v", report.Kind)
	}
}

func TestDetectEmergentBehaviorNoneWhenSparse(t *testing.T) {
	agents := []*Agent{
		{Position: spatial.Vec3{X: 0, Y: 0, Z: 0}},
		{Position: spatial.Vec3{X: 1000, Y: 0, Z: 0}},
		{Position: spatial.Vec3{X: -1000, Y: 500, Z: 0}},
	}
	report := DetectEmergentBehavior(agents)
	if report.Kind != BehaviorNone {
		t.Fatalf("expected no detected behavior for a dispersed, low-cohesion roster, got %v", report.Kind)
	}
}

func TestDetectEmergentBehaviorEmpty(t *testing.T) {
	report := DetectEmergentBehavior(nil)
	if report.Kind != BehaviorNone {
		t.Fatalf("expected BehaviorNone for an empty roster, got %v", report.Kind)
	}
}

func TestProcessDecisionCentralizedFinalizesOnAnyVote(t *testing.T) {
	d := &Decision{Mode: DecisionCentralized, Votes: map[string]spatial.Real{"a1": 1}}
	ProcessDecision(d)
	if !d.Finalized || d.Outcome != "approved" {
		t.Fatalf("expected centralized decision to finalize approved on any vote, got finalized=%v outcome=%q", d.Finalized, d.Outcome)
	}
}

func TestProcessDecisionDistributedAlwaysFinalizes(t *testing.T) {
	d := &Decision{Mode: DecisionDistributed}
	ProcessDecision(d)
	if !d.Finalized || d.Outcome != "distributed" {
		t.Fatalf("expected distributed decision to finalize regardless of votes, got finalized=%v outcome=%q", d.Finalized, d.Outcome)
	}
}

func TestProcessDecisionConsensusWaitsForParticipants(t *testing.T) {
	d := &Decision{
		Mode:         DecisionConsensus,
		Participants: 2,
		Threshold:    0.5,
		Votes:        map[string]spatial.Real{"a1": 1.0},
	}
	ProcessDecision(d)
	if d.Finalized {
		t.Fatalf("expected consensus decision to stay pending with 1/2 votes cast")
	}

	d.Votes["a2"] = 1.0
	ProcessDecision(d)
	if !d.Finalized || d.Outcome != "approved" {
		t.Fatalf("expected consensus decision to finalize approved once votes reach participants and mean clears threshold")
	}
}

func TestProcessDecisionConsensusRejectsBelowThreshold(t *testing.T) {
	d := &Decision{
		Mode:         DecisionConsensus,
		Participants: 1,
		Threshold:    0.9,
		Votes:        map[string]spatial.Real{"a1": 0.1},
	}
	ProcessDecision(d)
	if !d.Finalized || d.Outcome != "rejected" {
		t.Fatalf("expected consensus decision below threshold to finalize rejected, got finalized=%v outcome=%q", d.Finalized, d.Outcome)
	}
}

func TestProcessDecisionAlreadyFinalizedIsNoOp(t *testing.T) {
	d := &Decision{Mode: DecisionCentralized, Finalized: true, Outcome: "approved"}
	ProcessDecision(d)
	if d.Outcome != "approved" {
		t.Fatalf("expected a finalized decision to be left untouched")
	}
}
