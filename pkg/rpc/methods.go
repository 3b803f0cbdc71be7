package rpc

import (
	"encoding/json"

	"github.com/autonomysim/coresim/pkg/apiprovider"
	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

func vehicleApi(p *apiprovider.ApiProvider, name string) (*vehicle.Api, error) {
	api, ok := p.GetVehicleApi(name)
	if !ok {
		return nil, errkind.Newf(errkind.VehicleNotFound, "no vehicle registered under %q", name)
	}
	return api, nil
}

func simApi(p *apiprovider.ApiProvider, name string) (*vehicle.SimApi, error) {
	api, ok := p.GetVehicleSimApi(name)
	if !ok {
		return nil, errkind.Newf(errkind.VehicleNotFound, "no vehicle registered under %q", name)
	}
	return api, nil
}

type vehicleParams struct {
	VehicleName string `json:"vehicle_name"`
}

type armParams struct {
	VehicleName string `json:"vehicle_name"`
}

type enableApiControlParams struct {
	Enabled     bool   `json:"enabled"`
	VehicleName string `json:"vehicle_name"`
}

type takeoffParams struct {
	Altitude    float64 `json:"altitude"`
	VehicleName string  `json:"vehicle_name"`
}

type moveToPositionParams struct {
	Position    WireVec3 `json:"position"`
	Speed       float64  `json:"speed"`
	VehicleName string   `json:"vehicle_name"`
}

type moveByVelocityParams struct {
	Velocity    WireVec3 `json:"velocity"`
	Duration    float64  `json:"duration"`
	VehicleName string   `json:"vehicle_name"`
}

type moveByAngleRatesParams struct {
	Rates       WireVec3 `json:"rates"`
	Z           float64  `json:"z"`
	Duration    float64  `json:"duration"`
	VehicleName string   `json:"vehicle_name"`
}

type setRcDataParams struct {
	Roll, Pitch, Throttle, Yaw float64
	VehicleName                string `json:"vehicle_name"`
}

type setPoseParams struct {
	Pose        WirePose `json:"pose"`
	VehicleName string   `json:"vehicle_name"`
}

type carControlsParams struct {
	Controls    WireCarControls `json:"controls"`
	VehicleName string          `json:"vehicle_name"`
}

// RegisterVehicleMethods binds every VehicleApi/VehicleSimApi method of
// spec §4.7/§6 to s, each taking a trailing vehicle_name (empty ⇒ default).
func RegisterVehicleMethods(s *Server) {
	s.Register("enable_api_control", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params enableApiControlParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		api.EnableApiControl(params.Enabled)
		return true, nil
	})

	s.Register("arm", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params armParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		return true, api.Arm()
	})

	s.Register("disarm", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params armParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		return true, api.Disarm()
	})

	s.Register("reset", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params armParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		api.Reset()
		return true, nil
	})

	s.Register("get_state", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		state := api.GetState()
		return map[string]interface{}{
			"kinematics":   KinematicsToWire(state.Kinematics),
			"armed":        state.Armed,
			"flight_state": int(state.FlightState),
			"ready":        state.Ready,
		}, nil
	})

	s.Register("get_home_geo_point", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		return GeoPointToWire(api.GetHomeGeoPoint()), nil
	})

	s.Register("get_imu", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetImu()
		if err != nil {
			return nil, err
		}
		return ImuDataToWire(out), nil
	})

	s.Register("get_barometer", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetBarometer()
		if err != nil {
			return nil, err
		}
		return BarometerDataToWire(out), nil
	})

	s.Register("get_magnetometer", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetMagnetometer()
		if err != nil {
			return nil, err
		}
		return MagnetometerDataToWire(out), nil
	})

	s.Register("get_gps", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetGps()
		if err != nil {
			return nil, err
		}
		return GpsDataToWire(out), nil
	})

	s.Register("get_distance_sensor_data", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetDistance()
		if err != nil {
			return nil, err
		}
		return DistanceSensorDataToWire(out), nil
	})

	s.Register("get_lidar_data", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		out, err := api.GetLidar()
		if err != nil {
			return nil, err
		}
		return LidarDataToWire(out), nil
	})

	s.Register("takeoff", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params takeoffParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.Takeoff(params.Altitude)
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("land", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.Land()
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("hover", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.Hover()
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("move_to_position", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params moveToPositionParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.MoveToPosition(Vec3ToCore(params.Position), vehicle.MoveToPositionOptions{Speed: params.Speed})
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("move_by_velocity", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params moveByVelocityParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.MoveByVelocity(Vec3ToCore(params.Velocity), params.Duration)
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("move_by_angle_rates", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params moveByAngleRatesParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.MoveByAngleRates(Vec3ToCore(params.Rates), params.Z, params.Duration)
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("set_rc_data", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params setRcDataParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		token, err := api.SetRcData(vehicle.RcData{Roll: params.Roll, Pitch: params.Pitch, Throttle: params.Throttle, Yaw: params.Yaw})
		if err != nil {
			return nil, err
		}
		return waitToken(token)
	})

	s.Register("set_car_controls", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params carControlsParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		return true, api.SetControls(CarControlsToCore(params.Controls))
	})

	s.Register("sim_set_pose", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params setPoseParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		api, err := simApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		api.SetPose(PoseToCore(params.Pose))
		return true, nil
	})

	s.Register("get_car_state", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := vehicleApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		state := api.GetState()
		return CarStateToWire(CarState{Kinematics: state.Kinematics, Controls: api.GetControls()}), nil
	})

	s.Register("sim_get_pose", func(p *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params vehicleParams
		_ = json.Unmarshal(raw, &params)
		api, err := simApi(p, params.VehicleName)
		if err != nil {
			return nil, err
		}
		return PoseToWire(api.GetPose()), nil
	})
}

// waitToken blocks until token resolves with no timeout, per §4.7's
// "wait(timeout) resolves when the goal is attained or the timeout
// expires" — an RPC call with no client-specified deadline waits
// indefinitely for the command's own completion or cancellation.
func waitToken(token *vehicle.CommandToken) (interface{}, error) {
	if err := token.Wait(0); err != nil {
		return nil, err
	}
	return true, nil
}

// Introspection and world-simulation methods (spec §6 groups 2 and 3).
// These carry no vehicle-specific dispatch, so they're registered
// separately from RegisterVehicleMethods against whatever world state the
// caller supplies.

// WorldState is the minimal world-simulation surface RpcServer exposes
// beyond individual vehicles: pause/continue, wind, external force, and the
// world-scoped resets and environment controls of spec §6 group 3.
type WorldState struct {
	Paused bool
	OnSetWind        func(v [3]float64)
	OnSetExtForce    func(v [3]float64)
	OnContinueFrames func(n int)
	OnResetWorld     func()
	OnSetTimeOfDay   func(iso8601 string, celestialClockSpeed float64)
	OnSetWeather     func(kind string, value float64)
	SettingsString   string
	ServerVersion    string
}

type continueForFramesParams struct {
	Frames int `json:"frames"`
}

type setTimeOfDayParams struct {
	DateTime            string  `json:"date_time"`
	CelestialClockSpeed float64 `json:"celestial_clock_speed"`
}

type setWeatherParams struct {
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// RegisterWorldMethods binds pause/continue/introspection methods against
// world.
func RegisterWorldMethods(s *Server, world *WorldState) {
	s.Register("ping", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		return true, nil
	})
	s.Register("get_server_version", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		return world.ServerVersion, nil
	})
	s.Register("get_settings_string", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		return world.SettingsString, nil
	})
	s.Register("pause", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		world.Paused = true
		return true, nil
	})
	s.Register("is_paused", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		return world.Paused, nil
	})
	s.Register("continue_for_time", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		world.Paused = false
		return true, nil
	})
	s.Register("set_wind", func(_ *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var w WireVec3
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		if world.OnSetWind != nil {
			world.OnSetWind([3]float64{w.X, w.Y, w.Z})
		}
		return true, nil
	})
	s.Register("set_ext_force", func(_ *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var w WireVec3
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		if world.OnSetExtForce != nil {
			world.OnSetExtForce([3]float64{w.X, w.Y, w.Z})
		}
		return true, nil
	})
	s.Register("continue_for_frames", func(_ *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params continueForFramesParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		if params.Frames <= 0 {
			return nil, errkind.New(errkind.InvalidArgument, "frames must be positive")
		}
		if world.OnContinueFrames != nil {
			world.OnContinueFrames(params.Frames)
		}
		return true, nil
	})
	s.Register("reset_world", func(*apiprovider.ApiProvider, json.RawMessage) (interface{}, error) {
		if world.OnResetWorld != nil {
			world.OnResetWorld()
		}
		world.Paused = false
		return true, nil
	})
	s.Register("set_time_of_day", func(_ *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params setTimeOfDayParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		if world.OnSetTimeOfDay != nil {
			world.OnSetTimeOfDay(params.DateTime, params.CelestialClockSpeed)
		}
		return true, nil
	})
	s.Register("set_weather", func(_ *apiprovider.ApiProvider, raw json.RawMessage) (interface{}, error) {
		var params setWeatherParams
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, errkind.Wrap(errkind.InvalidArgument, "bad params", err)
		}
		if world.OnSetWeather != nil {
			world.OnSetWeather(params.Kind, params.Value)
		}
		return true, nil
	})
}
