package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/autonomysim/coresim/pkg/apiprovider"
	"github.com/autonomysim/coresim/pkg/clock"
	"github.com/autonomysim/coresim/pkg/logger"
	"github.com/autonomysim/coresim/pkg/physics"
	"github.com/autonomysim/coresim/pkg/rpc"
	"github.com/autonomysim/coresim/pkg/rpc/wsfeed"
	"github.com/autonomysim/coresim/pkg/settings"
	"github.com/autonomysim/coresim/pkg/spatial"
	"github.com/autonomysim/coresim/pkg/telemetry"
	"github.com/autonomysim/coresim/pkg/updatable"
	"github.com/autonomysim/coresim/pkg/vehicle"
)

var settingsPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation host",
	Long:  `Loads the settings file, assembles the vehicle fleet, and drives the physics loop while serving RPC and telemetry-feed clients.`,
	RunE:  runHost,
}

func init() {
	runCmd.Flags().StringVarP(&settingsPath, "settings", "s", "", "settings file (overrides --config)")
}

func runHost(cmd *cobra.Command, _ []string) error {
	path := settingsPath
	if path == "" {
		path = cfgFile
	}
	var cfg settings.Settings
	if err := logger.WithSpinner("loading settings", func() error {
		loaded, err := settings.LoadOrDefault(path, envFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	logger.LogSection("Assembling vehicle fleet")
	engine := physics.New()
	provider := apiprovider.New()
	var vehicles []*vehicle.Vehicle

	bar := logger.NewProgressBar(len(cfg.Vehicles), "building vehicles")
	for _, vs := range cfg.Vehicles {
		spec := vehicle.Spec{
			Name:        vs.Name,
			Mass:        spatial.Real(vs.Mass),
			HoverThrust: spatial.Real(vs.HoverThrust),
			InitialPose: spatial.Pose{
				Position:    spatial.Vec3{X: spatial.Real(vs.InitialPosition[0]), Y: spatial.Real(vs.InitialPosition[1]), Z: spatial.Real(vs.InitialPosition[2])},
				Orientation: spatial.IdentityQuat,
			},
			Home: cfg.Home,
		}
		for _, s := range vs.Sensors {
			spec.Sensors = append(spec.Sensors, sensorSpecFor(s))
		}

		v, err := vehicle.DefaultRegistry.Build(vs.Type, spec)
		if err != nil {
			return fmt.Errorf("failed to build vehicle %q: %w", vs.Name, err)
		}
		vehicles = append(vehicles, v)
		engine.Register(v.Body)
		provider.InsertOrAssign(vs.Name, vehicle.NewApi(v), vehicle.NewSimApi(v))
		if !provider.HasDefault() {
			provider.MakeDefault(vs.Name)
		}
		bar.Increment()
	}
	bar.Finish()

	graph := updatable.NewGraph()
	for _, v := range vehicles {
		graph.Add(v)
	}
	if err := graph.Reset(); err != nil {
		return fmt.Errorf("failed to reset vehicle graph: %w", err)
	}

	feed := wsfeed.NewHub()
	go feed.Run()
	defer feed.Stop()

	world := &rpc.WorldState{
		ServerVersion: "1",
		OnSetWind:     func(w [3]float64) { engine.SetWind(spatial.Vec3{X: spatial.Real(w[0]), Y: spatial.Real(w[1]), Z: spatial.Real(w[2])}) },
		OnSetExtForce: func(f [3]float64) { engine.SetExternalForce(spatial.Vec3{X: spatial.Real(f[0]), Y: spatial.Real(f[1]), Z: spatial.Real(f[2])}) },
		OnResetWorld:  func() { engine.Reset() },
	}

	server := rpc.New(provider, cfg.Rpc.Workers)
	rpc.RegisterVehicleMethods(server)
	rpc.RegisterWorldMethods(server, world)

	addr := fmt.Sprintf("%s:%d", cfg.Rpc.BindAddress, cfg.Rpc.Port)
	go func() {
		logger.Progressf("rpc server listening on %s", addr)
		if err := server.Serve(addr); err != nil {
			logger.Errorf("rpc server stopped: %v", err)
		}
	}()
	defer server.Close()

	feedAddr := fmt.Sprintf("%s:%d", cfg.Rpc.BindAddress, cfg.Rpc.FeedPort)
	feedServer := feedServeMux(feed)
	feedServer.Addr = feedAddr
	go func() {
		logger.Progressf("telemetry feed listening on %s", feedAddr)
		if err := feedServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("telemetry feed stopped: %v", err)
		}
	}()
	defer feedServer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("received interrupt, stopping simulation host")
		cancel()
	}()

	c := clock.NewSteppableClock(spatial.SecondsToDelta(cfg.PhysicsPeriod))
	period := time.Duration(cfg.PhysicsPeriod * float64(time.Second))

	recorder, err := openRecorder(cfg.Recording)
	if err != nil {
		return fmt.Errorf("failed to open recording sink: %w", err)
	}
	if recorder != nil {
		defer recorder.Close()
		logger.Progressf("recording telemetry to %s (%s)", recordingOutputPath(cfg.Recording), cfg.Recording.Sink)
	}
	recordPeriod := recordingPeriod(cfg.Recording.Frequency)
	lastRecorded := spatial.TimePoint(-recordPeriod)

	logger.LogSection("Running")
	for {
		select {
		case <-ctx.Done():
			logger.Success("simulation host stopped")
			return nil
		default:
		}

		now := c.Step()
		if err := graph.Update(now, spatial.SecondsToDelta(cfg.PhysicsPeriod)); err != nil {
			logger.WithSimTime(now).Errorf("vehicle update failed: %v", err)
		}
		if err := engine.Step(spatial.SecondsToDelta(cfg.PhysicsPeriod)); err != nil {
			logger.WithSimTime(now).Errorf("physics step failed: %v", err)
		}

		shouldRecord := recorder != nil && now.Sub(lastRecorded) >= recordPeriod
		for _, v := range vehicles {
			pose := v.Kinematics.Pose
			feed.Publish(wsfeed.Frame{
				VehicleName: v.Name,
				TimeStamp:   int64(now),
				PosX:        float64(pose.Position.X),
				PosY:        float64(pose.Position.Y),
				PosZ:        float64(pose.Position.Z),
				QW:          float64(pose.Orientation.W),
				QX:          float64(pose.Orientation.X),
				QY:          float64(pose.Orientation.Y),
				QZ:          float64(pose.Orientation.Z),
			})
			if shouldRecord {
				if err := recorder.Record(telemetry.Sample{
					TimeStamp: now,
					Vehicle:   v.Name,
					PosX:      pose.Position.X,
					PosY:      pose.Position.Y,
					PosZ:      pose.Position.Z,
					QW:        pose.Orientation.W,
					QX:        pose.Orientation.X,
					QY:        pose.Orientation.Y,
					QZ:        pose.Orientation.Z,
				}); err != nil {
					logger.WithSimTime(now).Errorf("telemetry record failed: %v", err)
				}
			}
		}
		if shouldRecord {
			lastRecorded = now
		}

		time.Sleep(period)
	}
}

func displayName(name string) string {
	if name == "" {
		return "(default)"
	}
	return name
}
