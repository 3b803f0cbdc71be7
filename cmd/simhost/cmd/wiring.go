package cmd

import (
	"net/http"

	"github.com/autonomysim/coresim/pkg/rpc/wsfeed"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/settings"
	"github.com/autonomysim/coresim/pkg/spatial"
	"github.com/autonomysim/coresim/pkg/telemetry"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

func sensorSpecFor(name string) vehicle.SensorSpec {
	switch name {
	case "imu":
		return vehicle.SensorSpec{Kind: sensors.KindImu}
	case "barometer":
		return vehicle.SensorSpec{Kind: sensors.KindBarometer}
	case "magnetometer":
		return vehicle.SensorSpec{Kind: sensors.KindMagnetometer}
	case "gps":
		return vehicle.SensorSpec{Kind: sensors.KindGps}
	case "distance":
		return vehicle.SensorSpec{Kind: sensors.KindDistance, Caster: sensors.NoHitRayCaster{}}
	case "lidar":
		return vehicle.SensorSpec{Kind: sensors.KindLidar, Caster: sensors.NoHitRayCaster{}}
	default:
		return vehicle.SensorSpec{Kind: sensors.KindImu}
	}
}

// recordingOutputPath resolves the file a recording sink writes to, falling
// back to a sink-named default when the settings file leaves it blank.
func recordingOutputPath(rs settings.RecordingSettings) string {
	if rs.OutputPath != "" {
		return rs.OutputPath
	}
	return "recording." + rs.Sink
}

// openRecorder builds the telemetry.Recorder named by rs.Sink, or (nil, nil)
// if recording is disabled.
func openRecorder(rs settings.RecordingSettings) (telemetry.Recorder, error) {
	if !rs.Enabled {
		return nil, nil
	}
	path := recordingOutputPath(rs)
	if rs.Sink == "sqlite" {
		return telemetry.NewSQLiteSink(path)
	}
	return telemetry.NewTSVSink(path, nil)
}

// recordingPeriod converts a recording frequency in Hz to the minimum
// simulated interval between recorded ticks; a non-positive frequency
// records every tick.
func recordingPeriod(frequencyHz float64) spatial.TimeDelta {
	if frequencyHz <= 0 {
		return 0
	}
	return spatial.SecondsToDelta(1.0 / frequencyHz)
}

// feedServeMux wraps hub in a minimal *http.Server so run.go can start the
// telemetry websocket feed with the same ListenAndServe shape as the RPC
// listener, without dragging routing middleware into a single-endpoint feed.
func feedServeMux(hub *wsfeed.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	return &http.Server{Handler: mux}
}
