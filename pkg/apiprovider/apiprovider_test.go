package apiprovider

import (
	"testing"

	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

func buildVehicle(name string) *vehicle.Vehicle {
	return vehicle.New(name, vehicle.KindMultirotor, 1.0, 9.81, kinematics.GeoPoint{})
}

func TestInsertAndLookup(t *testing.T) {
	p := New()
	v := buildVehicle("drone1")
	p.InsertOrAssign("drone1", vehicle.NewApi(v), vehicle.NewSimApi(v))

	api, ok := p.GetVehicleApi("drone1")
	if !ok || api == nil {
		t.Fatalf("expected drone1 to be registered")
	}
	if _, ok := p.GetVehicleApi("missing"); ok {
		t.Fatalf("expected missing vehicle lookup to fail")
	}
}

func TestMakeDefaultAliasesSamePointer(t *testing.T) {
	p := New()
	v := buildVehicle("drone1")
	control := vehicle.NewApi(v)
	sim := vehicle.NewSimApi(v)
	p.InsertOrAssign("drone1", control, sim)

	if !p.MakeDefault("drone1") {
		t.Fatalf("MakeDefault should succeed for a registered name")
	}
	if !p.HasDefault() {
		t.Fatalf("expected HasDefault true after MakeDefault")
	}

	def, ok := p.GetVehicleApi("")
	if !ok {
		t.Fatalf("expected default alias to resolve")
	}
	if def != control {
		t.Fatalf("default alias must be the same pointer as the aliased vehicle, not a copy")
	}

	// Mutations via the aliased name must be observed under the original name.
	def.EnableApiControl(true)
	orig, _ := p.GetVehicleApi("drone1")
	if !orig.IsApiControlEnabled() {
		t.Fatalf("expected mutation through the default alias to be visible under the original name")
	}
}

func TestMakeDefaultUnknownName(t *testing.T) {
	p := New()
	if p.MakeDefault("nope") {
		t.Fatalf("MakeDefault should fail for an unregistered name")
	}
}

func TestVehicleCountExcludesDefaultAlias(t *testing.T) {
	p := New()
	v1 := buildVehicle("a")
	v2 := buildVehicle("b")
	p.InsertOrAssign("a", vehicle.NewApi(v1), vehicle.NewSimApi(v1))
	p.InsertOrAssign("b", vehicle.NewApi(v2), vehicle.NewSimApi(v2))
	p.MakeDefault("a")

	if got := p.VehicleCount(); got != 2 {
		t.Fatalf("expected VehicleCount 2, got %d", got)
	}
}

func TestRemove(t *testing.T) {
	p := New()
	v := buildVehicle("a")
	p.InsertOrAssign("a", vehicle.NewApi(v), vehicle.NewSimApi(v))
	p.Remove("a")
	if _, ok := p.GetVehicleApi("a"); ok {
		t.Fatalf("expected vehicle to be removed")
	}
}

func TestRemoveClearsDefaultAliasWhenDefaultVehicleIsRemoved(t *testing.T) {
	p := New()
	v := buildVehicle("a")
	p.InsertOrAssign("a", vehicle.NewApi(v), vehicle.NewSimApi(v))
	p.MakeDefault("a")

	p.Remove("a")

	if p.HasDefault() {
		t.Fatalf("expected the default alias to be cleared when its target vehicle is removed")
	}
	if _, ok := p.GetVehicleApi(""); ok {
		t.Fatalf("expected the default alias to no longer resolve to a stale *vehicle.Api")
	}
}

func TestRemoveLeavesDefaultAliasIntactWhenSupersededVehicleIsRemoved(t *testing.T) {
	p := New()
	a := buildVehicle("a")
	b := buildVehicle("b")
	p.InsertOrAssign("a", vehicle.NewApi(a), vehicle.NewSimApi(a))
	p.InsertOrAssign("b", vehicle.NewApi(b), vehicle.NewSimApi(b))
	p.MakeDefault("a")
	p.MakeDefault("b")

	p.Remove("a")

	if !p.HasDefault() {
		t.Fatalf("expected the default alias (now pointing at b) to survive removing the superseded vehicle a")
	}
}
