// Package apiprovider implements the ApiProvider registry of spec §4.8: a
// name → (control API, sim API) mapping with a distinguished default alias,
// shared between the physics thread and the RPC thread pool under a single
// reader-writer lock (spec §5).
package apiprovider

import (
	"sync"

	"github.com/autonomysim/coresim/pkg/vehicle"
)

// ApiProvider is the sole cross-thread mutable data shared between RPC and
// physics threads (spec §5); every read/write goes through its single
// RWMutex, held only for the duration of a lookup or insert.
type ApiProvider struct {
	mu       sync.RWMutex
	control  map[string]*vehicle.Api
	sim      map[string]*vehicle.SimApi
	worldSim *vehicle.SimApi
	// defaultName is the name currently aliased to "" by MakeDefault, or ""
	// if no default has been designated. Tracked explicitly because the
	// control/sim maps store the aliased pointer, not the name it came
	// from, so Remove has no other way to tell whether it just deleted the
	// vehicle the default points at.
	defaultName string
}

// New builds an empty ApiProvider.
func New() *ApiProvider {
	return &ApiProvider{
		control: make(map[string]*vehicle.Api),
		sim:     make(map[string]*vehicle.SimApi),
	}
}

// InsertOrAssign registers (or replaces) the control/sim API pair under
// name. Inserting under the default key "" directly is allowed but
// unusual; MakeDefault is the intended way to alias a name to "".
func (p *ApiProvider) InsertOrAssign(name string, control *vehicle.Api, sim *vehicle.SimApi) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.control[name] = control
	p.sim[name] = sim
}

// Remove drops name from both maps. If name was aliased as the default, the
// default alias is also cleared so it never points at a deleted vehicle.
func (p *ApiProvider) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.control, name)
	delete(p.sim, name)
	if p.defaultName == name {
		delete(p.control, "")
		delete(p.sim, "")
		p.defaultName = ""
	}
}

// GetVehicleApi returns the control API registered under name. Looking up
// "" returns the default vehicle's API if one has been designated, else
// (nil, false) — the spec's "null/absent marker".
func (p *ApiProvider) GetVehicleApi(name string) (*vehicle.Api, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.control[name]
	return a, ok
}

// GetVehicleSimApi returns the sim API registered under name, per the same
// default-resolution rule as GetVehicleApi.
func (p *ApiProvider) GetVehicleSimApi(name string) (*vehicle.SimApi, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	a, ok := p.sim[name]
	return a, ok
}

// GetWorldSimApi returns the world-level sim API (weather, pause, object
// pose), independent of any single vehicle.
func (p *ApiProvider) GetWorldSimApi() (*vehicle.SimApi, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.worldSim, p.worldSim != nil
}

// SetWorldSimApi installs the world-level sim API.
func (p *ApiProvider) SetWorldSimApi(sim *vehicle.SimApi) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.worldSim = sim
}

// MakeDefault aliases the "" key to whatever is registered under name: "the
// default is an alias, not a copy — mutations via the aliased name are
// observed under the original name" (spec §4.8). Because both maps store
// pointers, assigning the same pointer under "" achieves this without any
// copy.
func (p *ApiProvider) MakeDefault(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.control[name]
	if !ok {
		return false
	}
	s := p.sim[name]
	p.control[""] = c
	p.sim[""] = s
	p.defaultName = name
	return true
}

// HasDefault reports whether a default vehicle has been designated.
func (p *ApiProvider) HasDefault() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.control[""]
	return ok
}

// VehicleCount returns the number of distinct registered names: it counts
// the entries of the control map and skips the "" default alias, so the
// default vehicle is counted once.
func (p *ApiProvider) VehicleCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	count := 0
	for name := range p.control {
		if name == "" {
			continue
		}
		count++
	}
	return count
}

// Names returns every non-default registered vehicle name.
func (p *ApiProvider) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.control))
	for name := range p.control {
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
