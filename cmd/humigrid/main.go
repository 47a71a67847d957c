package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/taiwx/humigrid/internal/grid"
	"github.com/taiwx/humigrid/internal/interp"
	"github.com/taiwx/humigrid/internal/metrics"
	"github.com/taiwx/humigrid/internal/models"
	"github.com/taiwx/humigrid/internal/render"
	"github.com/taiwx/humigrid/internal/source"
	"github.com/taiwx/humigrid/internal/store"
	"github.com/taiwx/humigrid/internal/timelapse"
)

// Target grid matching the existing temperature timelapse dataset. The mask
// and every humidity frame must overlay it pixel-for-pixel.
var taiwanGrid = grid.Spec{
	MinLon: 120.0, MaxLon: 121.98,
	MinLat: 21.88, MaxLat: 25.45,
	Rows: 120, Cols: 67,
	ResolutionDeg: 0.03, ResolutionKm: 3.3,
}

var cli struct {
	EnvFile kongdotenv.ENVFileConfig `name:"env-file" optional:"" help:"Path to .env file."`

	Days      int    `help:"Limit to the most recent N days."`
	StartDate string `name:"start-date" help:"Start date (YYYY-MM-DD), inclusive."`
	EndDate   string `name:"end-date" help:"End date (YYYY-MM-DD), inclusive."`
	MaxFrames int    `name:"max-frames" default:"720" help:"Maximum number of frames to keep."`
	Workers   int    `default:"4" help:"Concurrent frame workers."`

	Output          string `default:"public/humidity_timelapse_data.json" help:"Output timelapse file."`
	TemperatureFile string `name:"temperature-file" default:"public/temperature_timelapse_data.json" help:"Temperature timelapse the land mask is derived from."`
	Preview         string `optional:"" help:"Write a PNG preview of the final frame to this path."`
	CacheDB         string `name:"cache-db" optional:"" help:"SQLite payload cache (skips re-downloads)."`
	DebugAddr       string `name:"debug-addr" optional:"" help:"Expose /metrics and pprof on this address."`

	S3Bucket    string `env:"S3_BUCKET" help:"S3 bucket holding weather station snapshots."`
	S3AccessKey string `env:"S3_ACCESS_KEY" help:"S3 access key."`
	S3SecretKey string `env:"S3_SECRET_KEY" help:"S3 secret key."`
	S3Region    string `env:"S3_REGION" default:"ap-northeast-1" help:"S3 region."`
	S3Endpoint  string `env:"S3_ENDPOINT" help:"Custom S3 endpoint."`
	FTPHost     string `name:"ftp-host" env:"FTP_HOST" optional:"" help:"Read frames from an FTP mirror instead of S3."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("humigrid"),
		kong.Description("Rebuild the Taiwan humidity timelapse from weather station snapshots."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))
	slog.SetDefault(log)

	kctx.FatalIfErrorf(run(log))
}

func run(log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startedAt := time.Now()

	if cli.DebugAddr != "" {
		metrics.ServeDebug(cli.DebugAddr, log)
	}

	startDate, endDate := cli.StartDate, cli.EndDate
	if cli.Days > 0 {
		now := time.Now().In(taipeiLocation())
		startDate = now.AddDate(0, 0, -cli.Days).Format("2006-01-02")
		endDate = now.Format("2006-01-02")
		log.Info("limiting to recent days", "days", cli.Days, "start", startDate, "end", endDate)
	}

	// The mask is loaded once, up front, before any frame workers start.
	// A missing or unreadable reference only disables masking.
	mask, err := grid.LoadLandMask(cli.TemperatureFile)
	if err != nil {
		log.Warn("no land mask, interpolating unmasked", "error", err)
	}

	it, err := interp.New(taiwanGrid, mask)
	if err != nil {
		return err
	}

	var src source.Source
	if cli.FTPHost != "" {
		src = source.NewFTP(cli.FTPHost)
		log.Info("using FTP mirror", "host", cli.FTPHost)
	} else if cli.S3Bucket == "" {
		return errors.New("S3_BUCKET is required (or pass --ftp-host)")
	} else {
		s3src, err := source.NewS3(ctx, source.S3Config{
			Bucket:    cli.S3Bucket,
			Region:    cli.S3Region,
			AccessKey: cli.S3AccessKey,
			SecretKey: cli.S3SecretKey,
			Endpoint:  cli.S3Endpoint,
		})
		if err != nil {
			return err
		}
		src = s3src
		log.Info("using S3", "bucket", cli.S3Bucket, "region", cli.S3Region)
	}

	var st *store.Store
	if cli.CacheDB != "" {
		db, err := sql.Open("sqlite", cli.CacheDB)
		if err != nil {
			return fmt.Errorf("open cache db: %w", err)
		}
		defer db.Close()
		db.Exec("PRAGMA journal_mode=WAL")
		db.Exec("PRAGMA busy_timeout=5000")

		st = store.New(db)
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("migrate cache db: %w", err)
		}
		src = source.NewCached(src, st, log)
		log.Info("payload cache enabled", "path", cli.CacheDB)
	}

	builder := timelapse.NewBuilder(src, it, log)
	frames, err := builder.Run(ctx, timelapse.Options{
		StartDate: startDate,
		EndDate:   endDate,
		MaxFrames: cli.MaxFrames,
		Workers:   cli.Workers,
	})
	if err != nil {
		return err
	}
	if len(frames) == 0 {
		return errors.New("no humidity frames produced")
	}

	doc, err := timelapse.NewDocument(frames, taiwanGrid, time.Now())
	if err != nil {
		return err
	}
	if err := timelapse.WriteDocument(cli.Output, doc); err != nil {
		return err
	}
	log.Info("timelapse written",
		"path", cli.Output,
		"frames", doc.Metadata.TotalFrames,
		"start", doc.Metadata.StartTime,
		"end", doc.Metadata.EndTime)

	if cli.Preview != "" {
		if err := writePreview(cli.Preview, frames); err != nil {
			log.Warn("preview not written", "path", cli.Preview, "error", err)
		} else {
			log.Info("preview written", "path", cli.Preview)
		}
	}

	if st != nil {
		if err := st.RecordRun(startedAt, doc.Metadata.StartTime, doc.Metadata.EndTime, doc.Metadata.TotalFrames, cli.Output); err != nil {
			log.Warn("run not recorded", "error", err)
		}
	}

	return nil
}

func writePreview(path string, frames []models.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	last := frames[len(frames)-1]
	return render.PNG(f, last.Data, interp.ClampMin, interp.ClampMax, 4)
}

func taipeiLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}
