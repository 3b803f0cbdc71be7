package swarm

import (
	"sync"

	"github.com/autonomysim/coresim/pkg/a2a"
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/formation"
	"github.com/autonomysim/coresim/pkg/mcp"
	"github.com/autonomysim/coresim/pkg/nanda"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Params configures a Controller's health and behavior thresholds.
type Params struct {
	AgentTimeout    spatial.TimeDelta
	MinAgents       int
	DynamicRoles    bool
	ContextTimeout  spatial.TimeDelta
	ContextBuffer   int
}

// DefaultParams matches typical small-swarm defaults.
func DefaultParams() Params {
	return Params{
		AgentTimeout:   spatial.SecondsToDelta(5),
		MinAgents:      2,
		DynamicRoles:   true,
		ContextTimeout: spatial.SecondsToDelta(30),
		ContextBuffer:  64,
	}
}

// Controller is SwarmController (spec §4.14): it owns NANDA's agent/task
// views, the MCP store, the A2A messenger, and formation configuration as
// exclusive children (spec §3's "Ownership" — no cyclic references; the
// subsystems here are plain data structures, not back-pointers).
//
// Lock order is fixed at agents → missions → state (spec §5); any method
// touching more than one must acquire them in that order.
type Controller struct {
	params Params

	muAgents sync.Mutex
	agents   map[string]*Agent
	nandaBy  map[string]*nanda.Agent

	muMissions sync.Mutex
	missions   map[string]*Mission

	muState sync.Mutex
	emergency bool
	decisions map[string]*nanda.Decision

	mcp       *mcp.Store
	a2a       *a2a.Messenger
	formation FormationSpec
}

// New builds an empty Controller.
func New(params Params) *Controller {
	return &Controller{
		params:    params,
		agents:    make(map[string]*Agent),
		nandaBy:   make(map[string]*nanda.Agent),
		missions:  make(map[string]*Mission),
		decisions: make(map[string]*nanda.Decision),
		mcp:       mcp.New(params.ContextBuffer, params.ContextTimeout),
		a2a:       a2a.New(),
	}
}

// MCP exposes the owned context store for RPC/introspection callers.
func (c *Controller) MCP() *mcp.Store { return c.mcp }

// A2A exposes the owned messenger for RPC/introspection callers.
func (c *Controller) A2A() *a2a.Messenger { return c.a2a }

// AddAgent registers a new swarm participant.
func (c *Controller) AddAgent(a *Agent) {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	a.Connected = true
	if a.Capabilities == nil {
		a.Capabilities = make(map[string]spatial.Real)
	}
	c.agents[a.ID] = a
	c.nandaBy[a.ID] = &nanda.Agent{
		ID:           a.ID,
		Position:     a.Position,
		Energy:       a.Energy,
		Capabilities: a.Capabilities,
		Role:         a.Role,
	}
	c.a2a.Register(a.ID)
}

// RemoveAgent drops a swarm participant.
func (c *Controller) RemoveAgent(id string) {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	delete(c.agents, id)
	delete(c.nandaBy, id)
}

// SetFormation installs the active formation configuration.
func (c *Controller) SetFormation(spec FormationSpec) {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	c.formation = spec
}

// AddMission registers a mission to be tracked.
func (c *Controller) AddMission(m *Mission) {
	c.muMissions.Lock()
	defer c.muMissions.Unlock()
	m.Recompute()
	c.missions[m.ID] = m
}

// PauseMission moves a mission to Idle.
func (c *Controller) PauseMission(id string) error {
	c.muMissions.Lock()
	defer c.muMissions.Unlock()
	m, ok := c.missions[id]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown mission")
	}
	m.State = MissionIdle
	return nil
}

// ResumeMission returns a mission to Executing.
func (c *Controller) ResumeMission(id string) error {
	c.muMissions.Lock()
	defer c.muMissions.Unlock()
	m, ok := c.missions[id]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown mission")
	}
	m.State = MissionExecuting
	return nil
}

// AbortMission moves a mission to Failed, terminal per spec §3.
func (c *Controller) AbortMission(id string) error {
	c.muMissions.Lock()
	defer c.muMissions.Unlock()
	m, ok := c.missions[id]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown mission")
	}
	m.State = MissionFailed
	return nil
}

// StartDecision registers a new pending decision.
func (c *Controller) StartDecision(d *nanda.Decision) {
	c.muState.Lock()
	defer c.muState.Unlock()
	c.decisions[d.ID] = d
}

// Vote records a vote on a pending decision.
func (c *Controller) Vote(decisionID, agentID string, confidence spatial.Real) error {
	c.muState.Lock()
	defer c.muState.Unlock()
	d, ok := c.decisions[decisionID]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown decision")
	}
	if d.Votes == nil {
		d.Votes = make(map[string]spatial.Real)
	}
	d.Votes[agentID] = confidence
	return nil
}

// IsEmergency reports the controller's current health state.
func (c *Controller) IsEmergency() bool {
	c.muState.Lock()
	defer c.muState.Unlock()
	return c.emergency
}

// Tick runs one full coordination cycle in the order spec §4.14 lists:
// sync agents ← NANDA, process decisions, reassign roles, allocate pending
// tasks by fitness, refresh formation commands, update mission progress,
// check health.
func (c *Controller) Tick(now spatial.TimePoint) {
	c.syncAgentsFromNanda()
	c.processDecisions()
	if c.params.DynamicRoles {
		c.reassignRoles()
	}
	c.allocateTasks()
	c.refreshFormation()
	c.updateMissions()
	c.checkHealth(now)
	c.publishContexts(now)
}

func (c *Controller) syncAgentsFromNanda() {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	for id, na := range c.nandaBy {
		a, ok := c.agents[id]
		if !ok {
			continue
		}
		a.Role = na.Role
	}
}

func (c *Controller) reassignRoles() {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	list := make([]*nanda.Agent, 0, len(c.nandaBy))
	for _, na := range c.nandaBy {
		list = append(list, na)
	}
	nanda.ReassignRoles(list)
	for _, na := range list {
		if a, ok := c.agents[na.ID]; ok {
			a.Role = na.Role
		}
	}
}

func (c *Controller) processDecisions() {
	c.muState.Lock()
	defer c.muState.Unlock()
	for _, d := range c.decisions {
		nanda.ProcessDecision(d)
	}
}

// allocateTasks assigns every pending task of every active mission to its
// best-fitness agent via nanda.AllocateTask (spec §4.12), mirroring
// reassignRoles' pattern of handing NANDA a plain slice view and folding the
// result back into the owned agent/mission maps. Lock order is agents →
// missions, per the fixed ordering documented on Controller.
func (c *Controller) allocateTasks() {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	c.muMissions.Lock()
	defer c.muMissions.Unlock()

	candidates := make([]*nanda.Agent, 0, len(c.nandaBy))
	for _, na := range c.nandaBy {
		candidates = append(candidates, na)
	}

	for _, m := range c.missions {
		if m.State != MissionExecuting && m.State != MissionPlanning {
			continue
		}
		for _, t := range m.Tasks {
			if t.Status != TaskPending {
				continue
			}
			nt := &nanda.Task{
				ID:                   t.ID,
				Location:             t.Location,
				RequiredCapabilities: t.RequiredCapabilities,
			}
			if !nanda.AllocateTask(candidates, nt) {
				continue
			}
			t.Status = TaskAssigned
			t.Assigned = append(t.Assigned, nt.AssignedAgent)
			if agent, ok := c.agents[nt.AssignedAgent]; ok {
				agent.AssignedTasks = append(agent.AssignedTasks, t.ID)
			}
		}
	}
}

func (c *Controller) refreshFormation() {
	c.muAgents.Lock()
	defer c.muAgents.Unlock()
	if c.formation.LeaderID == "" {
		return
	}
	leaderAgent, ok := c.agents[c.formation.LeaderID]
	if !ok {
		return
	}
	leaderPose := spatial.Pose{Position: leaderAgent.Position, Orientation: leaderAgent.Orientation}
	n := len(c.formation.Assignments)
	for _, asn := range c.formation.Assignments {
		follower, ok := c.agents[asn.AgentID]
		if !ok || asn.AgentID == c.formation.LeaderID {
			continue
		}
		neighbors := c.neighborsOf(asn.AgentID)
		cmd := formation.Compute(c.formation.Shape, asn.Index, n, leaderPose, leaderAgent.Velocity,
			follower.Position, follower.Velocity, neighbors, follower.Orientation, c.formation.Params)
		follower.Velocity = cmd.Velocity
		follower.Orientation = cmd.Orientation
	}
}

func (c *Controller) neighborsOf(id string) []formation.Neighbor {
	out := make([]formation.Neighbor, 0, len(c.agents))
	for otherID, a := range c.agents {
		if otherID == id {
			continue
		}
		out = append(out, formation.Neighbor{Position: a.Position, Velocity: a.Velocity})
	}
	return out
}

func (c *Controller) updateMissions() {
	c.muMissions.Lock()
	defer c.muMissions.Unlock()
	for _, m := range c.missions {
		m.Recompute()
	}
}

func (c *Controller) checkHealth(now spatial.TimePoint) {
	c.muAgents.Lock()
	total := 0
	lowEnergy := 0
	for _, a := range c.agents {
		if now.Sub(a.LastUpdate) > c.params.AgentTimeout {
			a.Connected = false
		}
		if a.Connected {
			total++
			if a.Energy < 0.2 {
				lowEnergy++
			}
		}
	}
	c.muAgents.Unlock()

	c.muState.Lock()
	defer c.muState.Unlock()
	c.emergency = total < c.params.MinAgents || (total > 0 && lowEnergy*2 > total)
}

func (c *Controller) publishContexts(now spatial.TimePoint) {
	c.muAgents.Lock()
	snapshots := make([]mcp.ContextSnapshot, 0, len(c.agents))
	for _, a := range c.agents {
		snapshots = append(snapshots, mcp.ContextSnapshot{
			AgentID:   a.ID,
			Timestamp: now,
			Position:  a.Position,
			Data: map[string]any{
				"role":   a.Role.String(),
				"energy": a.Energy,
			},
		})
	}
	c.muAgents.Unlock()

	for _, snap := range snapshots {
		c.mcp.Publish(snap)
	}
}
