// Package telemetry implements the recording surface of SPEC_FULL.md §4.15:
// the tab-separated log format of spec §6, an equivalent GORM/SQLite sink
// grounded on the teacher's services.database.go, and a gonum/plot exporter
// grounded on the teacher's ctrl/plot package.
package telemetry

import (
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/autonomysim/coresim/pkg/errkind"
	"github.com/autonomysim/coresim/pkg/spatial"
)

// Sample is one recorded row: one vehicle, one tick.
type Sample struct {
	TimeStamp spatial.TimePoint
	Vehicle   string
	PosX      spatial.Real
	PosY      spatial.Real
	PosZ      spatial.Real
	QW        spatial.Real
	QX        spatial.Real
	QY        spatial.Real
	QZ        spatial.Real
	Extra     map[string]spatial.Real // vehicle-specific fields, spec §6
	ImageFile string
}

// Recorder is the shared interface every sink implements, so the physics
// loop can fan a tick out to more than one sink without knowing their
// concrete types.
type Recorder interface {
	Record(s Sample) error
	Close() error
}

// TSVSink writes the tab-separated recording format of spec §6: one header
// row, one row per vehicle per recorded tick, columns
// TimeStamp, POS_X, POS_Y, POS_Z, Q_W, Q_X, Q_Y, Q_Z, [vehicle-specific], ImageFile.
type TSVSink struct {
	f            *os.File
	extraColumns []string
	wroteHeader  bool
}

// NewTSVSink opens (creating or truncating) path and prepares a TSVSink.
// extraColumns fixes the vehicle-specific column order for the life of the
// sink; a Sample missing one of them records it as 0.
func NewTSVSink(path string, extraColumns []string) (*TSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.ConfigError, "creating recording file", err)
	}
	return &TSVSink{f: f, extraColumns: extraColumns}, nil
}

func (s *TSVSink) Record(sample Sample) error {
	if !s.wroteHeader {
		header := "TimeStamp\tPOS_X\tPOS_Y\tPOS_Z\tQ_W\tQ_X\tQ_Y\tQ_Z"
		for _, c := range s.extraColumns {
			header += "\t" + c
		}
		header += "\tImageFile\n"
		if _, err := s.f.WriteString(header); err != nil {
			return errkind.Wrap(errkind.ConfigError, "writing recording header", err)
		}
		s.wroteHeader = true
	}

	row := fmt.Sprintf("%d\t%g\t%g\t%g\t%g\t%g\t%g\t%g",
		int64(sample.TimeStamp), sample.PosX, sample.PosY, sample.PosZ,
		sample.QW, sample.QX, sample.QY, sample.QZ)
	for _, c := range s.extraColumns {
		row += fmt.Sprintf("\t%g", sample.Extra[c])
	}
	row += "\t" + sample.ImageFile + "\n"
	if _, err := s.f.WriteString(row); err != nil {
		return errkind.Wrap(errkind.ConfigError, "writing recording row", err)
	}
	return nil
}

func (s *TSVSink) Close() error { return s.f.Close() }

// TelemetryRow is the GORM model backing SQLiteSink, the equivalent of the
// teacher's AGVLog model persisted through gorm.Open + AutoMigrate.
type TelemetryRow struct {
	ID        uint  `gorm:"primaryKey"`
	TimeStamp int64 `gorm:"index"`
	Vehicle   string `gorm:"index"`
	PosX, PosY, PosZ spatial.Real
	QW, QX, QY, QZ   spatial.Real
	ImageFile string
}

// SQLiteSink persists samples through GORM into a SQLite file, mirroring
// the teacher's InitDatabase/AutoMigrate pattern but against
// gorm.io/driver/sqlite instead of MySQL, since the recording target here
// is a single embedded file rather than a shared server.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink opens (creating if absent) the SQLite file at path and
// migrates the TelemetryRow schema into it.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, errkind.Wrap(errkind.ConfigError, "opening telemetry database", err)
	}
	if err := db.AutoMigrate(&TelemetryRow{}); err != nil {
		return nil, errkind.Wrap(errkind.ConfigError, "migrating telemetry schema", err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Record(sample Sample) error {
	row := TelemetryRow{
		TimeStamp: int64(sample.TimeStamp),
		Vehicle:   sample.Vehicle,
		PosX:      sample.PosX,
		PosY:      sample.PosY,
		PosZ:      sample.PosZ,
		QW:        sample.QW,
		QX:        sample.QX,
		QY:        sample.QY,
		QZ:        sample.QZ,
		ImageFile: sample.ImageFile,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return errkind.Wrap(errkind.ConfigError, "inserting telemetry row", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errkind.Wrap(errkind.InternalError, "unwrapping sql.DB", err)
	}
	return sqlDB.Close()
}

// Query returns every recorded row for a vehicle, oldest first, for
// post-run inspection or plotting.
func (s *SQLiteSink) Query(vehicle string) ([]TelemetryRow, error) {
	var rows []TelemetryRow
	err := s.db.Where("vehicle = ?", vehicle).Order("time_stamp asc").Find(&rows).Error
	if err != nil {
		return nil, errkind.Wrap(errkind.ConfigError, "querying telemetry rows", err)
	}
	return rows, nil
}
