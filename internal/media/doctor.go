package media

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// Capabilities reports which external video tools are usable.
type Capabilities struct {
	HasFFmpeg      bool
	HasFFprobe     bool
	FFmpegVersion  string
	FFprobeVersion string
	ProbedAt       time.Time
}

// Ready reports whether both decode and probe tooling are available.
func (c *Capabilities) Ready() bool {
	return c.HasFFmpeg && c.HasFFprobe
}

// Doctor probes the ffmpeg toolchain and caches the result with a TTL.
// This avoids spawning version probes on every export.
type Doctor struct {
	ffmpegPath  string
	ffprobePath string
	ttl         time.Duration
	logger      *slog.Logger

	mu     sync.RWMutex
	cached *Capabilities
}

func NewDoctor(ffmpegPath, ffprobePath string, logger *slog.Logger) *Doctor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Doctor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		ttl:         defaultCacheTTL,
		logger:      logger,
	}
}

// Get returns cached capabilities if fresh, otherwise re-probes.
func (d *Doctor) Get(ctx context.Context) *Capabilities {
	d.mu.RLock()
	if d.cached != nil && time.Since(d.cached.ProbedAt) < d.ttl {
		caps := d.cached
		d.mu.RUnlock()
		return caps
	}
	d.mu.RUnlock()

	return d.Refresh(ctx)
}

func (d *Doctor) Peek() *Capabilities {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

// Refresh forces a new probe regardless of cache freshness.
func (d *Doctor) Refresh(ctx context.Context) *Capabilities {
	d.mu.Lock()
	defer d.mu.Unlock()

	caps := &Capabilities{ProbedAt: time.Now()}
	caps.FFmpegVersion, caps.HasFFmpeg = probeVersion(ctx, d.ffmpegPath)
	caps.FFprobeVersion, caps.HasFFprobe = probeVersion(ctx, d.ffprobePath)

	if d.logger != nil && !caps.Ready() {
		d.logger.Warn("video toolchain incomplete",
			"ffmpeg", caps.HasFFmpeg, "ffprobe", caps.HasFFprobe)
	}

	d.cached = caps
	return caps
}

// Invalidate clears the cached capabilities.
func (d *Doctor) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}

func probeVersion(ctx context.Context, bin string) (string, bool) {
	out, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		return "", false
	}
	firstLine := strings.SplitN(string(out), "\n", 2)[0]
	return strings.TrimSpace(firstLine), true
}

// RequireReady is a convenience guard for operations that need the toolchain.
func (d *Doctor) RequireReady(ctx context.Context) error {
	caps := d.Get(ctx)
	if !caps.Ready() {
		return fmt.Errorf("ffmpeg toolchain not available (ffmpeg=%v ffprobe=%v)",
			caps.HasFFmpeg, caps.HasFFprobe)
	}
	return nil
}
