// Package updatable defines the reset/update capability set every stateful
// simulation object implements (spec §4.2), plus a Graph helper that walks a
// tree of such objects in declaration order and aggregates any per-child
// failures instead of aborting at the first one.
package updatable

import (
	"github.com/hashicorp/go-multierror"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Updatable is the capability set every stateful object in the simulation
// exposes. Reset must leave the object indistinguishable from a freshly
// constructed instance; Update advances it by exactly one tick.
type Updatable interface {
	Reset()
	Update(now spatial.TimePoint, dt spatial.TimeDelta) error
}

// Graph composes a fixed, ordered list of Updatable children and forwards
// Reset/Update to each in declaration order, the way PhysicsEngine drives
// bodies before SensorSuite drives sensors before VehicleController drives
// its loops. It also enforces "it is an error to call update() before
// reset()" from spec §4.2.
type Graph struct {
	children []Updatable
	didReset bool
}

// NewGraph builds a Graph over children, preserving call order.
func NewGraph(children ...Updatable) *Graph {
	return &Graph{children: children}
}

// Add appends a child; a subsequent Reset is required before Update again
// runs cleanly, mirroring the "children in declaration order" rule for
// objects assembled incrementally (e.g. sensors attached after the vehicle
// is constructed but before the first tick).
func (g *Graph) Add(child Updatable) {
	g.children = append(g.children, child)
	g.didReset = false
}

// Reset resets every child in order and clears the not-yet-reset guard.
// Individual child failures do not stop the walk; they are collected into
// one aggregate error via go-multierror, since a partially reset graph is
// still safer to report and continue from than to leave call order
// undetermined.
func (g *Graph) Reset() error {
	var errs *multierror.Error
	for _, c := range g.children {
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = multierror.Append(errs, errkind.Newf(errkind.InternalError, "panic during reset: %v", r))
				}
			}()
			c.Reset()
		}()
	}
	g.didReset = true
	return errs.ErrorOrNil()
}

// Update advances every child by one tick in order. It returns
// errkind.NotReady if Reset has never been called.
func (g *Graph) Update(now spatial.TimePoint, dt spatial.TimeDelta) error {
	if !g.didReset {
		return errkind.New(errkind.NotReady, "Graph.Update called before Reset")
	}
	var errs *multierror.Error
	for _, c := range g.children {
		if err := c.Update(now, dt); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// Len reports the number of registered children.
func (g *Graph) Len() int { return len(g.children) }
