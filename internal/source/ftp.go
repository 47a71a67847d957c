package source

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/taiwx/humigrid/internal/metrics"
	"github.com/taiwx/humigrid/internal/models"
)

// FTPSource reads the same weather/YYYY/MM/DD layout from an anonymous FTP
// mirror. Each operation dials a fresh connection; agency mirrors tend to
// drop idle sessions.
type FTPSource struct {
	host    string
	timeout time.Duration
}

func NewFTP(host string) *FTPSource {
	return &FTPSource{host: host, timeout: 30 * time.Second}
}

func (f *FTPSource) ListDates(ctx context.Context) ([]string, error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	var dates []string
	years, err := f.listDirs(ctx, conn, strings.TrimSuffix(rootPrefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	for _, year := range years {
		months, err := f.listDirs(ctx, conn, year)
		if err != nil {
			return nil, fmt.Errorf("list months under %s: %w", year, err)
		}
		for _, month := range months {
			days, err := f.listDirs(ctx, conn, month)
			if err != nil {
				return nil, fmt.Errorf("list days under %s: %w", month, err)
			}
			for _, day := range days {
				if date, ok := dateFromPrefix(day + "/"); ok {
					dates = append(dates, date)
				}
			}
		}
	}
	slices.Sort(dates)
	return slices.Compact(dates), nil
}

func (f *FTPSource) ListFrames(ctx context.Context, date string) ([]FrameRef, error) {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("list frames: bad date %q: %w", date, err)
	}
	dir := rootPrefix + parsed.Format("2006/01/02")

	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	entries, err := conn.List(dir)
	if err != nil {
		metrics.SourceRequests.WithLabelValues("list", "error").Inc()
		return nil, fmt.Errorf("list frames for %s: %w", date, err)
	}
	metrics.SourceRequests.WithLabelValues("list", "ok").Inc()

	var refs []FrameRef
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		if ref, ok := frameRefFromKey(dir+"/"+e.Name, int64(e.Size)); ok {
			refs = append(refs, ref)
		}
	}
	slices.SortFunc(refs, func(a, b FrameRef) int {
		return strings.Compare(a.Time, b.Time)
	})
	return refs, nil
}

func (f *FTPSource) Fetch(ctx context.Context, ref FrameRef) ([]models.StationReading, error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := conn.Retr(ref.Key)
	if err != nil {
		metrics.SourceRequests.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("fetch %s: %w", ref.Key, err)
	}
	defer resp.Close()

	body, err := io.ReadAll(resp)
	if err != nil {
		metrics.SourceRequests.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("read %s: %w", ref.Key, err)
	}
	metrics.FetchLatency.Observe(time.Since(start).Seconds())
	metrics.SourceRequests.WithLabelValues("get", "ok").Inc()

	return decodeSnapshot(body)
}

func (f *FTPSource) dial(ctx context.Context) (*ftp.ServerConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := ftp.Dial(f.host, ftp.DialWithContext(ctx), ftp.DialWithTimeout(f.timeout))
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", f.host, err)
	}
	if err := conn.Login("anonymous", "anonymous"); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("ftp login: %w", err)
	}
	return conn, nil
}

// listDirs returns child directories of dir as slash-joined paths.
func (f *FTPSource) listDirs(ctx context.Context, conn *ftp.ServerConn, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := conn.List(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type == ftp.EntryTypeFolder && e.Name != "." && e.Name != ".." {
			out = append(out, dir+"/"+e.Name)
		}
	}
	return out, nil
}
