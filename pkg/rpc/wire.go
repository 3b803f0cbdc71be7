// Package rpc implements RpcServer (spec §4.9): JSON-RPC 2.0 dispatch over
// TCP, backed by ApiProvider, with wire ↔ core adaptor types for every
// struct that crosses the network boundary. Wire structs are flat with
// snake_case fields; enums are encoded as their numeric underlying values;
// vectors are {x,y,z}; quaternions are {w,x,y,z} (spec §6).
package rpc

import (
	"time"

	"github.com/autonomysim/coresim/pkg/kinematics"
	"github.com/autonomysim/coresim/pkg/sensors"
	"github.com/autonomysim/coresim/pkg/spatial"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

// WireVec3 is the wire encoding of spatial.Vec3.
type WireVec3 struct {
	X spatial.Real `json:"x"`
	Y spatial.Real `json:"y"`
	Z spatial.Real `json:"z"`
}

func Vec3ToWire(v spatial.Vec3) WireVec3 { return WireVec3{X: v.X, Y: v.Y, Z: v.Z} }
func Vec3ToCore(w WireVec3) spatial.Vec3 { return spatial.Vec3{X: w.X, Y: w.Y, Z: w.Z} }

// WireQuat is the wire encoding of spatial.Quat, w-first.
type WireQuat struct {
	W spatial.Real `json:"w"`
	X spatial.Real `json:"x"`
	Y spatial.Real `json:"y"`
	Z spatial.Real `json:"z"`
}

func QuatToWire(q spatial.Quat) WireQuat { return WireQuat{W: q.W, X: q.X, Y: q.Y, Z: q.Z} }
func QuatToCore(w WireQuat) spatial.Quat { return spatial.Quat{W: w.W, X: w.X, Y: w.Y, Z: w.Z} }

// WirePose is the wire encoding of spatial.Pose.
type WirePose struct {
	Position    WireVec3 `json:"position"`
	Orientation WireQuat `json:"orientation"`
}

func PoseToWire(p spatial.Pose) WirePose {
	return WirePose{Position: Vec3ToWire(p.Position), Orientation: QuatToWire(p.Orientation)}
}
func PoseToCore(w WirePose) spatial.Pose {
	return spatial.Pose{Position: Vec3ToCore(w.Position), Orientation: QuatToCore(w.Orientation)}
}

// WireTwist is the wire encoding of kinematics.Twist.
type WireTwist struct {
	Linear  WireVec3 `json:"linear"`
	Angular WireVec3 `json:"angular"`
}

// WireAccelerations is the wire encoding of kinematics.Accelerations.
type WireAccelerations struct {
	Linear  WireVec3 `json:"linear"`
	Angular WireVec3 `json:"angular"`
}

// WireKinematics is the wire encoding of kinematics.Kinematics.
type WireKinematics struct {
	Pose          WirePose          `json:"pose"`
	Twist         WireTwist         `json:"twist"`
	Accelerations WireAccelerations `json:"accelerations"`
}

func KinematicsToWire(k kinematics.Kinematics) WireKinematics {
	return WireKinematics{
		Pose:          PoseToWire(k.Pose),
		Twist:         WireTwist{Linear: Vec3ToWire(k.Twist.Linear), Angular: Vec3ToWire(k.Twist.Angular)},
		Accelerations: WireAccelerations{Linear: Vec3ToWire(k.Accelerations.Linear), Angular: Vec3ToWire(k.Accelerations.Angular)},
	}
}

func KinematicsToCore(w WireKinematics) kinematics.Kinematics {
	return kinematics.Kinematics{
		Pose:          PoseToCore(w.Pose),
		Twist:         kinematics.Twist{Linear: Vec3ToCore(w.Twist.Linear), Angular: Vec3ToCore(w.Twist.Angular)},
		Accelerations: kinematics.Accelerations{Linear: Vec3ToCore(w.Accelerations.Linear), Angular: Vec3ToCore(w.Accelerations.Angular)},
	}
}

// WireGeoPoint is the wire encoding of kinematics.GeoPoint.
type WireGeoPoint struct {
	Latitude  float64      `json:"latitude"`
	Longitude float64      `json:"longitude"`
	Altitude  spatial.Real `json:"altitude"`
}

func GeoPointToWire(g kinematics.GeoPoint) WireGeoPoint {
	return WireGeoPoint{Latitude: g.Latitude, Longitude: g.Longitude, Altitude: g.Altitude}
}
func GeoPointToCore(w WireGeoPoint) kinematics.GeoPoint {
	return kinematics.GeoPoint{Latitude: w.Latitude, Longitude: w.Longitude, Altitude: w.Altitude}
}

// WireImuData is the wire encoding of sensors.ImuOutput.
type WireImuData struct {
	TimeStamp          int64    `json:"time_stamp"`
	Orientation        WireQuat `json:"orientation"`
	AngularVelocity    WireVec3 `json:"angular_velocity"`
	LinearAcceleration WireVec3 `json:"linear_acceleration"`
}

func ImuDataToWire(o sensors.ImuOutput) WireImuData {
	return WireImuData{
		TimeStamp:          int64(o.TimeStamp),
		Orientation:        QuatToWire(o.Orientation),
		AngularVelocity:    Vec3ToWire(o.AngularVelocity),
		LinearAcceleration: Vec3ToWire(o.LinearAcceleration),
	}
}
func ImuDataToCore(w WireImuData) sensors.ImuOutput {
	return sensors.ImuOutput{
		TimeStamp:          spatial.TimePoint(w.TimeStamp),
		Orientation:        QuatToCore(w.Orientation),
		AngularVelocity:    Vec3ToCore(w.AngularVelocity),
		LinearAcceleration: Vec3ToCore(w.LinearAcceleration),
	}
}

// WireBarometerData is the wire encoding of sensors.BarometerOutput.
type WireBarometerData struct {
	TimeStamp int64        `json:"time_stamp"`
	Altitude  spatial.Real `json:"altitude"`
	Pressure  spatial.Real `json:"pressure"`
	Qnh       spatial.Real `json:"qnh"`
}

func BarometerDataToWire(o sensors.BarometerOutput) WireBarometerData {
	return WireBarometerData{TimeStamp: int64(o.TimeStamp), Altitude: o.Altitude, Pressure: o.Pressure, Qnh: o.Qnh}
}
func BarometerDataToCore(w WireBarometerData) sensors.BarometerOutput {
	return sensors.BarometerOutput{TimeStamp: spatial.TimePoint(w.TimeStamp), Altitude: w.Altitude, Pressure: w.Pressure, Qnh: w.Qnh}
}

// WireMagnetometerData is the wire encoding of sensors.MagnetometerOutput.
type WireMagnetometerData struct {
	TimeStamp         int64        `json:"time_stamp"`
	MagneticFieldBody WireVec3     `json:"magnetic_field_body"`
	Covariance        [9]spatial.Real `json:"covariance"`
}

func MagnetometerDataToWire(o sensors.MagnetometerOutput) WireMagnetometerData {
	return WireMagnetometerData{TimeStamp: int64(o.TimeStamp), MagneticFieldBody: Vec3ToWire(o.MagneticFieldBody), Covariance: o.Covariance}
}
func MagnetometerDataToCore(w WireMagnetometerData) sensors.MagnetometerOutput {
	return sensors.MagnetometerOutput{TimeStamp: spatial.TimePoint(w.TimeStamp), MagneticFieldBody: Vec3ToCore(w.MagneticFieldBody), Covariance: w.Covariance}
}

// WireGpsData is the wire encoding of sensors.GpsOutput.
type WireGpsData struct {
	TimeStamp int64        `json:"time_stamp"`
	GeoPoint  WireGeoPoint `json:"geo_point"`
	Eph       spatial.Real `json:"eph"`
	Epv       spatial.Real `json:"epv"`
	Velocity  WireVec3     `json:"velocity"`
	FixType   int          `json:"fix_type"`
	TimeUtc   int64        `json:"time_utc"`
}

func GpsDataToWire(o sensors.GpsOutput) WireGpsData {
	return WireGpsData{
		TimeStamp: int64(o.TimeStamp),
		GeoPoint:  GeoPointToWire(o.GeoPoint),
		Eph:       o.Eph,
		Epv:       o.Epv,
		Velocity:  Vec3ToWire(o.Velocity),
		FixType:   int(o.FixType),
		TimeUtc:   o.TimeUtc.UnixMilli(),
	}
}
func GpsDataToCore(w WireGpsData) sensors.GpsOutput {
	return sensors.GpsOutput{
		TimeStamp: spatial.TimePoint(w.TimeStamp),
		GeoPoint:  GeoPointToCore(w.GeoPoint),
		Eph:       w.Eph,
		Epv:       w.Epv,
		Velocity:  Vec3ToCore(w.Velocity),
		FixType:   sensors.GpsFixType(w.FixType),
		TimeUtc:   time.UnixMilli(w.TimeUtc).UTC(),
	}
}

// WireDistanceSensorData is the wire encoding of sensors.DistanceOutput.
type WireDistanceSensorData struct {
	TimeStamp    int64        `json:"time_stamp"`
	Distance     spatial.Real `json:"distance"`
	MinDistance  spatial.Real `json:"min_distance"`
	MaxDistance  spatial.Real `json:"max_distance"`
	RelativePose WirePose     `json:"relative_pose"`
}

func DistanceSensorDataToWire(o sensors.DistanceOutput) WireDistanceSensorData {
	return WireDistanceSensorData{
		TimeStamp:    int64(o.TimeStamp),
		Distance:     o.Distance,
		MinDistance:  o.MinDistance,
		MaxDistance:  o.MaxDistance,
		RelativePose: PoseToWire(o.RelativePose),
	}
}
func DistanceSensorDataToCore(w WireDistanceSensorData) sensors.DistanceOutput {
	return sensors.DistanceOutput{
		TimeStamp:    spatial.TimePoint(w.TimeStamp),
		Distance:     w.Distance,
		MinDistance:  w.MinDistance,
		MaxDistance:  w.MaxDistance,
		RelativePose: PoseToCore(w.RelativePose),
	}
}

// WireLidarData is the wire encoding of sensors.LidarOutput.
type WireLidarData struct {
	TimeStamp    int64          `json:"time_stamp"`
	PointCloud   []spatial.Real `json:"point_cloud"`
	Segmentation []int32        `json:"segmentation"`
	Pose         WirePose       `json:"pose"`
}

func LidarDataToWire(o sensors.LidarOutput) WireLidarData {
	return WireLidarData{TimeStamp: int64(o.TimeStamp), PointCloud: o.PointCloud, Segmentation: o.Segmentation, Pose: PoseToWire(o.Pose)}
}
func LidarDataToCore(w WireLidarData) sensors.LidarOutput {
	return sensors.LidarOutput{TimeStamp: spatial.TimePoint(w.TimeStamp), PointCloud: w.PointCloud, Segmentation: w.Segmentation, Pose: PoseToCore(w.Pose)}
}

// WireCarControls is the wire encoding of vehicle.CarControls.
type WireCarControls struct {
	Throttle  spatial.Real `json:"throttle"`
	Steering  spatial.Real `json:"steering"`
	Brake     spatial.Real `json:"brake"`
	Handbrake bool         `json:"handbrake"`
	Gear      int          `json:"gear"`
}

func CarControlsToWire(c vehicle.CarControls) WireCarControls {
	return WireCarControls{Throttle: c.Throttle, Steering: c.Steering, Brake: c.Brake, Handbrake: c.Handbrake, Gear: c.Gear}
}
func CarControlsToCore(w WireCarControls) vehicle.CarControls {
	return vehicle.CarControls{Throttle: w.Throttle, Steering: w.Steering, Brake: w.Brake, Handbrake: w.Handbrake, Gear: w.Gear}
}

// CarState is the core-side snapshot of a car vehicle's dynamic state; the
// core has no dedicated car-state type beyond Kinematics plus the last
// applied controls, so this adaptor composes the two per spec §8's
// round-trip requirement for CarState.
type CarState struct {
	Kinematics kinematics.Kinematics
	Controls   vehicle.CarControls
}

// WireCarState is the wire encoding of CarState.
type WireCarState struct {
	Kinematics WireKinematics  `json:"kinematics"`
	Controls   WireCarControls `json:"controls"`
}

func CarStateToWire(s CarState) WireCarState {
	return WireCarState{Kinematics: KinematicsToWire(s.Kinematics), Controls: CarControlsToWire(s.Controls)}
}
func CarStateToCore(w WireCarState) CarState {
	return CarState{Kinematics: KinematicsToCore(w.Kinematics), Controls: CarControlsToCore(w.Controls)}
}

// ImageRequest names a requested camera image (out-of-scope render output,
// per spec §1's "no rendering/3D-engine internals"); the core only carries
// the request parameters through to an external renderer.
type ImageRequest struct {
	CameraName  string
	ImageType   int
	PixelsAsFloat bool
	Compress    bool
}

// WireImageRequest is the wire encoding of ImageRequest.
type WireImageRequest struct {
	CameraName    string `json:"camera_name"`
	ImageType     int    `json:"image_type"`
	PixelsAsFloat bool   `json:"pixels_as_float"`
	Compress      bool   `json:"compress"`
}

func ImageRequestToWire(r ImageRequest) WireImageRequest {
	return WireImageRequest{CameraName: r.CameraName, ImageType: r.ImageType, PixelsAsFloat: r.PixelsAsFloat, Compress: r.Compress}
}
func ImageRequestToCore(w WireImageRequest) ImageRequest {
	return ImageRequest{CameraName: w.CameraName, ImageType: w.ImageType, PixelsAsFloat: w.PixelsAsFloat, Compress: w.Compress}
}

// CollisionInfo reports a single collision event surfaced from the (out of
// scope) external geometry engine.
type CollisionInfo struct {
	HasCollided   bool
	Position      spatial.Vec3
	Normal        spatial.Vec3
	ImpactPoint   spatial.Vec3
	PenetrationDepth spatial.Real
	ObjectName    string
}

// WireCollisionInfo is the wire encoding of CollisionInfo.
type WireCollisionInfo struct {
	HasCollided      bool     `json:"has_collided"`
	Position         WireVec3 `json:"position"`
	Normal           WireVec3 `json:"normal"`
	ImpactPoint      WireVec3 `json:"impact_point"`
	PenetrationDepth spatial.Real `json:"penetration_depth"`
	ObjectName       string   `json:"object_name"`
}

func CollisionInfoToWire(c CollisionInfo) WireCollisionInfo {
	return WireCollisionInfo{
		HasCollided:      c.HasCollided,
		Position:         Vec3ToWire(c.Position),
		Normal:           Vec3ToWire(c.Normal),
		ImpactPoint:      Vec3ToWire(c.ImpactPoint),
		PenetrationDepth: c.PenetrationDepth,
		ObjectName:       c.ObjectName,
	}
}
func CollisionInfoToCore(w WireCollisionInfo) CollisionInfo {
	return CollisionInfo{
		HasCollided:      w.HasCollided,
		Position:         Vec3ToCore(w.Position),
		Normal:           Vec3ToCore(w.Normal),
		ImpactPoint:      Vec3ToCore(w.ImpactPoint),
		PenetrationDepth: w.PenetrationDepth,
		ObjectName:       w.ObjectName,
	}
}

// CameraInfo reports a camera's pose and field of view.
type CameraInfo struct {
	Pose spatial.Pose
	Fov  spatial.Real
}

// WireCameraInfo is the wire encoding of CameraInfo.
type WireCameraInfo struct {
	Pose WirePose     `json:"pose"`
	Fov  spatial.Real `json:"fov"`
}

func CameraInfoToWire(c CameraInfo) WireCameraInfo {
	return WireCameraInfo{Pose: PoseToWire(c.Pose), Fov: c.Fov}
}
func CameraInfoToCore(w WireCameraInfo) CameraInfo {
	return CameraInfo{Pose: PoseToCore(w.Pose), Fov: w.Fov}
}
