package sensors

import (
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// AnySensorKind tags the concrete sensor type held by an AnySensor.
type AnySensorKind int

const (
	KindImu AnySensorKind = iota
	KindBarometer
	KindMagnetometer
	KindGps
	KindDistance
	KindLidar
)

// AnySensor is the tagged-union polymorphism vehicle for sensors described
// in spec §9 ("template base classes ... achieved by a tagged-union
// AnySensor that the SensorSuite stores as vector<AnySensor>"). Exactly one
// of the typed fields is populated, matching Kind.
type AnySensor struct {
	Kind         AnySensorKind
	name         string
	Imu          *Imu
	Barometer    *Barometer
	Magnetometer *Magnetometer
	Gps          *Gps
	Distance     *Distance
	Lidar        *Lidar
}

func FromImu(s *Imu) AnySensor                 { return AnySensor{Kind: KindImu, name: s.Name(), Imu: s} }
func FromBarometer(s *Barometer) AnySensor     { return AnySensor{Kind: KindBarometer, name: s.Name(), Barometer: s} }
func FromMagnetometer(s *Magnetometer) AnySensor { return AnySensor{Kind: KindMagnetometer, name: s.Name(), Magnetometer: s} }
func FromGps(s *Gps) AnySensor                 { return AnySensor{Kind: KindGps, name: s.Name(), Gps: s} }
func FromDistance(s *Distance) AnySensor       { return AnySensor{Kind: KindDistance, name: s.Name(), Distance: s} }
func FromLidar(s *Lidar) AnySensor             { return AnySensor{Kind: KindLidar, name: s.Name(), Lidar: s} }

func (a AnySensor) Name() string { return a.name }

func (a AnySensor) Reset() {
	switch a.Kind {
	case KindImu:
		a.Imu.Reset()
	case KindBarometer:
		a.Barometer.Reset()
	case KindMagnetometer:
		a.Magnetometer.Reset()
	case KindGps:
		a.Gps.Reset()
	case KindDistance:
		a.Distance.Reset()
	case KindLidar:
		a.Lidar.Reset()
	}
}

func (a AnySensor) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	switch a.Kind {
	case KindImu:
		return a.Imu.Update(now, dt, gt)
	case KindBarometer:
		return a.Barometer.Update(now, dt, gt)
	case KindMagnetometer:
		return a.Magnetometer.Update(now, dt, gt)
	case KindGps:
		return a.Gps.Update(now, dt, gt)
	case KindDistance:
		return a.Distance.Update(now, dt, gt)
	case KindLidar:
		return a.Lidar.Update(now, dt, gt)
	}
	return nil
}

// Suite is the ordered collection of sensors attached to one vehicle.
// Update runs every sensor against a single shared GroundTruth borrow, in
// declaration order, matching the "physics before sensors" tick ordering
// from spec §4.2.
type Suite struct {
	sensors []AnySensor
}

// NewSuite builds a Suite from an ordered set of sensors.
func NewSuite(sensors ...AnySensor) *Suite {
	return &Suite{sensors: sensors}
}

// Add attaches a sensor, preserving declaration order.
func (s *Suite) Add(sensor AnySensor) { s.sensors = append(s.sensors, sensor) }

// Get looks up a sensor by name.
func (s *Suite) Get(name string) (AnySensor, bool) {
	for _, sn := range s.sensors {
		if sn.Name() == name {
			return sn, true
		}
	}
	return AnySensor{}, false
}

func (s *Suite) Reset() {
	for _, sn := range s.sensors {
		sn.Reset()
	}
}

func (s *Suite) Update(now spatial.TimePoint, dt spatial.TimeDelta, gt GroundTruth) error {
	for _, sn := range s.sensors {
		if err := sn.Update(now, dt, gt); err != nil {
			return errkind.Wrap(errkind.InternalError, "sensor "+sn.Name()+" update failed", err)
		}
	}
	return nil
}

// Len reports the number of attached sensors.
func (s *Suite) Len() int { return len(s.sensors) }
