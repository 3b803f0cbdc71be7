// Package a2a implements A2AMessenger (spec §4.11): direct agent-to-agent
// messaging, broadcast, and consensus voting.
package a2a

import (
	"sync"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Message is one A2A message.
type Message struct {
	ID        string
	From      string
	To        string // empty for broadcast
	Body      any
	SentAt    spatial.TimePoint
	ExpiresAt spatial.TimePoint // zero = never expires
}

// ConsensusOutcome is the terminal state of a consensus decision.
type ConsensusOutcome int

const (
	ConsensusPending ConsensusOutcome = iota
	ConsensusApproved
	ConsensusRejected
)

// Consensus tracks one start_consensus round.
type Consensus struct {
	ID            string
	Topic         string
	RequiredVotes int
	Threshold     spatial.Real
	Votes         map[string]spatial.Real
	Outcome       ConsensusOutcome
}

// Proposal is a peer-initiated decision request with accept/reject replies.
type Proposal struct {
	ID              string
	From            string
	Body            any
	ExpiresAt       spatial.TimePoint
	Accepted        map[string]bool
	Rejected        map[string]string
}

type inbox struct {
	bySender map[string][]Message // FIFO per sender
	all      []Message            // delivery order across all senders
	seen     map[string]bool      // broadcast dedup by message id
}

func newInbox() *inbox {
	return &inbox{bySender: make(map[string][]Message), seen: make(map[string]bool)}
}

// Messenger is the A2AMessenger: per-recipient inboxes, proposals, and
// consensus rounds, guarded by its own mutex (spec §5).
type Messenger struct {
	mu         sync.Mutex
	agents     map[string]bool
	inboxes    map[string]*inbox
	proposals  map[string]*Proposal
	consensus  map[string]*Consensus
}

// New builds an empty Messenger.
func New() *Messenger {
	return &Messenger{
		agents:    make(map[string]bool),
		inboxes:   make(map[string]*inbox),
		proposals: make(map[string]*Proposal),
		consensus: make(map[string]*Consensus),
	}
}

// Register adds an agent as a known broadcast subscriber.
func (m *Messenger) Register(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[agentID] = true
	m.ensureInbox(agentID)
}

func (m *Messenger) ensureInbox(agentID string) *inbox {
	ib, ok := m.inboxes[agentID]
	if !ok {
		ib = newInbox()
		m.inboxes[agentID] = ib
	}
	return ib
}

// Send delivers msg to msg.To, preserving FIFO order within the
// (From, To) pair. A message whose deadline has already passed at send time
// is dropped rather than enqueued.
func (m *Messenger) Send(msg Message) error {
	if msg.ExpiresAt != 0 && msg.ExpiresAt <= msg.SentAt {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ib := m.ensureInbox(msg.To)
	if msg.ID != "" && ib.seen[msg.ID] {
		return nil
	}
	ib.bySender[msg.From] = append(ib.bySender[msg.From], msg)
	ib.all = append(ib.all, msg)
	return nil
}

// Broadcast delivers msg to every registered agent except the sender,
// exactly once per recipient even if the recipient is also individually
// addressed by a later Send with the same message id.
func (m *Messenger) Broadcast(msg Message) error {
	if msg.ExpiresAt != 0 && msg.ExpiresAt <= msg.SentAt {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for agentID := range m.agents {
		if agentID == msg.From {
			continue
		}
		ib := m.ensureInbox(agentID)
		if ib.seen[msg.ID] {
			continue
		}
		ib.seen[msg.ID] = true
		copyMsg := msg
		copyMsg.To = agentID
		ib.bySender[msg.From] = append(ib.bySender[msg.From], copyMsg)
		ib.all = append(ib.all, copyMsg)
	}
	return nil
}

// expired reports whether msg's deadline has passed as of now; a zero
// ExpiresAt never expires.
func expired(msg Message, now spatial.TimePoint) bool {
	return msg.ExpiresAt != 0 && msg.ExpiresAt <= now
}

// Receive drains and returns every pending, unexpired message for agentID,
// in overall delivery order (FIFO within any one sender). A message that
// expired while still queued is dropped rather than returned, per spec §3's
// "the messenger must never return an expired message."
func (m *Messenger) Receive(agentID string, now spatial.TimePoint) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	ib, ok := m.inboxes[agentID]
	if !ok || len(ib.all) == 0 {
		return nil
	}
	out := make([]Message, 0, len(ib.all))
	for _, msg := range ib.all {
		if !expired(msg, now) {
			out = append(out, msg)
		}
	}
	ib.all = nil
	ib.bySender = make(map[string][]Message)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ReceiveFrom pops the oldest pending, unexpired message from sender for
// agentID, if any; messages found expired along the way are discarded
// rather than returned.
func (m *Messenger) ReceiveFrom(agentID, sender string, now spatial.TimePoint) (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ib, ok := m.inboxes[agentID]
	if !ok {
		return Message{}, false
	}
	queue := ib.bySender[sender]
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		ib.bySender[sender] = queue
		for i, candidate := range ib.all {
			if candidate.From == sender && candidate.ID == msg.ID {
				ib.all = append(ib.all[:i], ib.all[i+1:]...)
				break
			}
		}
		if !expired(msg, now) {
			return msg, true
		}
	}
	return Message{}, false
}

// Propose registers a proposal for other agents to Accept/Reject.
func (m *Messenger) Propose(p Proposal) {
	if p.Accepted == nil {
		p.Accepted = make(map[string]bool)
	}
	if p.Rejected == nil {
		p.Rejected = make(map[string]string)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[p.ID] = &p
}

// Accept records agentID's acceptance of proposalID.
func (m *Messenger) Accept(proposalID, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[proposalID]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown proposal")
	}
	p.Accepted[agentID] = true
	return nil
}

// Reject records agentID's rejection of proposalID with a reason.
func (m *Messenger) Reject(proposalID, agentID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[proposalID]
	if !ok {
		return errkind.New(errkind.InvalidArgument, "unknown proposal")
	}
	p.Rejected[agentID] = reason
	return nil
}

// ExpireProposals drops every proposal whose expiry has passed as of now,
// per spec §4.11 ("proposals past their expiry_timestamp are dropped
// silently on the next tick").
func (m *Messenger) ExpireProposals(now spatial.TimePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.proposals {
		if p.ExpiresAt != 0 && p.ExpiresAt <= now {
			delete(m.proposals, id)
		}
	}
}

// StartConsensus opens a new consensus round. required_votes is checked
// before threshold when finalizing (the source's ambiguity is resolved this
// way per the design notes): a round never finalizes until it has collected
// at least required_votes, at which point the mean-vs-threshold comparison
// decides approved vs rejected.
func (m *Messenger) StartConsensus(id, topic string, requiredVotes int, threshold spatial.Real) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consensus[id] = &Consensus{
		ID:            id,
		Topic:         topic,
		RequiredVotes: requiredVotes,
		Threshold:     threshold,
		Votes:         make(map[string]spatial.Real),
	}
}

// Vote records agentID's confidence for consensusID and, once at least
// RequiredVotes have been collected, finalizes the outcome.
func (m *Messenger) Vote(consensusID, agentID string, confidence spatial.Real) (*Consensus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consensus[consensusID]
	if !ok {
		return nil, errkind.New(errkind.InvalidArgument, "unknown consensus round")
	}
	if c.Outcome != ConsensusPending {
		return c, nil
	}
	c.Votes[agentID] = confidence
	if len(c.Votes) < c.RequiredVotes {
		return c, nil
	}
	sum := spatial.Real(0)
	for _, v := range c.Votes {
		sum += v
	}
	mean := sum / spatial.Real(len(c.Votes))
	if mean >= c.Threshold {
		c.Outcome = ConsensusApproved
	} else {
		c.Outcome = ConsensusRejected
	}
	return c, nil
}

// Get returns the current state of a consensus round.
func (m *Messenger) Get(consensusID string) (*Consensus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.consensus[consensusID]
	return c, ok
}
