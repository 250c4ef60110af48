// Package player owns the playback position and play/pause state for the
// loaded video. A single background goroutine advances the frame index while
// playing; everything else runs on the caller's goroutine.
package player

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

const fallbackFrameRate = 30.0

// Controller tracks the current frame of one video and drives playback.
// The advance loop is the only writer of the frame index while playing;
// pausing is cooperative, checked once per tick.
type Controller struct {
	frameCount int64
	frameRate  float64
	current    atomic.Int64
	playing    atomic.Bool
	// loopGen invalidates advance loops: each play start, Load, and Unload
	// bumps it, and a loop that wakes to a different generation exits
	// without touching the position.
	loopGen atomic.Int64
	logger  *slog.Logger

	// onRefresh is invoked after every position change so the surface can
	// redraw. May be nil.
	onRefresh func(frame int)
}

func NewController(logger *slog.Logger) *Controller {
	return &Controller{logger: logger}
}

// SetRefreshFunc registers the display refresh callback. Must be called
// before playback starts.
func (c *Controller) SetRefreshFunc(fn func(frame int)) {
	c.onRefresh = fn
}

// Load resets the controller for a newly loaded video: frame 0, paused.
func (c *Controller) Load(frameCount int, frameRate float64) {
	c.playing.Store(false)
	c.loopGen.Add(1)
	atomic.StoreInt64(&c.frameCount, int64(frameCount))
	c.frameRate = frameRate
	c.current.Store(0)
	c.refresh()
}

// Unload stops playback and forgets the video.
func (c *Controller) Unload() {
	c.playing.Store(false)
	c.loopGen.Add(1)
	atomic.StoreInt64(&c.frameCount, 0)
	c.frameRate = 0
	c.current.Store(0)
}

func (c *Controller) FrameCount() int {
	return int(atomic.LoadInt64(&c.frameCount))
}

func (c *Controller) FrameRate() float64 {
	return c.frameRate
}

func (c *Controller) CurrentFrame() int {
	return int(c.current.Load())
}

func (c *Controller) IsPlaying() bool {
	return c.playing.Load()
}

// CurrentTimeSeconds is currentFrame/frameRate, 0 if the rate is unknown.
func (c *Controller) CurrentTimeSeconds() float64 {
	if c.frameRate <= 0 {
		return 0
	}
	return float64(c.CurrentFrame()) / c.frameRate
}

// DurationSeconds is frameCount/frameRate, 0 if the rate is unknown.
func (c *Controller) DurationSeconds() float64 {
	if c.frameRate <= 0 {
		return 0
	}
	return float64(c.FrameCount()) / c.frameRate
}

// ProgressPercent is currentFrame/frameCount scaled to [0,100].
func (c *Controller) ProgressPercent() float64 {
	total := c.FrameCount()
	if total <= 0 {
		return 0
	}
	return float64(c.CurrentFrame()) / float64(total) * 100
}

// TimeText renders "MM:SS / MM:SS" for the position and duration.
func (c *Controller) TimeText() string {
	return fmt.Sprintf("%s / %s", FormatTime(c.CurrentTimeSeconds()), FormatTime(c.DurationSeconds()))
}

// TogglePlay flips between playing and stopped. When playback starts, the
// advance loop runs until pause, end of video, or Unload. Returns the new
// playing state.
func (c *Controller) TogglePlay() bool {
	if c.FrameCount() == 0 {
		return false
	}

	nowPlaying := !c.playing.Load()
	c.playing.Store(nowPlaying)

	if nowPlaying {
		go c.advanceLoop(c.loopGen.Add(1))
	}
	return nowPlaying
}

func (c *Controller) advanceLoop(gen int64) {
	rate := c.frameRate
	if rate <= 0 {
		rate = fallbackFrameRate
	}
	interval := time.Duration(float64(time.Second) / rate)

	for c.playing.Load() && c.loopGen.Load() == gen {
		frame := c.current.Load()
		total := atomic.LoadInt64(&c.frameCount)
		if frame >= total-1 {
			c.playing.Store(false)
			c.refresh()
			if c.logger != nil {
				c.logger.Debug("playback reached end of video", "frame", frame)
			}
			return
		}

		time.Sleep(interval)

		// A pause, resume, or video switch during the sleep hands the
		// position to a newer generation; this loop must not write it.
		if !c.playing.Load() || c.loopGen.Load() != gen {
			return
		}
		c.current.Store(frame + 1)
		c.refresh()
	}
}

// SeekRelative moves by deltaSeconds, clamped to [0, frameCount-1].
// Ignored while playing.
func (c *Controller) SeekRelative(deltaSeconds float64) {
	if c.playing.Load() || c.FrameCount() == 0 {
		return
	}

	rate := c.frameRate
	if rate <= 0 {
		rate = fallbackFrameRate
	}
	delta := int(math.Round(deltaSeconds * rate))
	c.setFrame(c.CurrentFrame() + delta)
}

// SeekFraction jumps to p*frameCount for p in [0,1], clamped to
// [0, frameCount-1]. Ignored while playing.
func (c *Controller) SeekFraction(p float64) {
	if c.playing.Load() || c.FrameCount() == 0 {
		return
	}
	c.setFrame(int(math.Round(p * float64(c.FrameCount()))))
}

func (c *Controller) setFrame(frame int) {
	total := c.FrameCount()
	if frame < 0 {
		frame = 0
	}
	if frame > total-1 {
		frame = total - 1
	}
	c.current.Store(int64(frame))
	c.refresh()
}

func (c *Controller) refresh() {
	if c.onRefresh != nil {
		c.onRefresh(c.CurrentFrame())
	}
}

// FormatTime renders seconds as MM:SS, truncating the fractional part.
func FormatTime(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
