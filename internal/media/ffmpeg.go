package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// FFmpeg implements Toolchain by shelling out to ffmpeg/ffprobe.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

func NewFFmpeg(ffmpegPath, ffprobePath string, logger *slog.Logger) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath, logger: logger}
}

type ffprobeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (f *FFmpeg) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	stdout, stderr, err := f.runProbe(ctx,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		"-show_format",
		filePath,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w (%s)", filepath.Base(filePath), err, strings.TrimSpace(string(stderr)))
	}

	var out ffprobeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream in %s", filepath.Base(filePath))
	}

	stream := out.Streams[0]
	result := &ProbeResult{
		Width:     stream.Width,
		Height:    stream.Height,
		Codec:     stream.CodecName,
		FrameRate: ParseFrameRate(stream.RFrameRate),
	}

	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		result.Duration = d
	}

	if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
		result.FrameCount = n
	} else if result.FrameRate > 0 {
		// Containers without nb_frames (mov, avi) get an estimate.
		result.FrameCount = int(math.Round(result.Duration * result.FrameRate))
	}

	return result, nil
}

// ReadFrame decodes the frame at the given index and returns it as JPEG bytes.
func (f *FFmpeg) ReadFrame(ctx context.Context, filePath string, index int) ([]byte, error) {
	stdout, stderr, err := f.run(ctx,
		"-i", filePath,
		"-vf", fmt.Sprintf("select='eq(n\\,%d)'", index),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", "mjpeg",
		"pipe:1",
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg read frame %d: %w (%s)", index, err, strings.TrimSpace(string(stderr)))
	}
	if len(stdout) == 0 {
		return nil, ErrEndOfStream
	}
	return stdout, nil
}

// ExtractClip re-encodes frames [StartFrame, EndFrame) of the source into a
// standalone clip. ffmpeg stops at end of input, so a short source truncates
// the clip rather than failing.
func (f *FFmpeg) ExtractClip(ctx context.Context, req ClipRequest) error {
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return fmt.Errorf("create clip directory: %w", err)
	}

	fps := req.FrameRate
	if fps <= 0 {
		fps = 30
	}

	_, stderr, err := f.run(ctx,
		"-y",
		"-i", req.SourcePath,
		"-vf", fmt.Sprintf("select='between(n\\,%d\\,%d)',setpts=N/FRAME_RATE/TB", req.StartFrame, req.EndFrame-1),
		"-r", formatRate(fps),
		"-an",
		req.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg clip %s: %w (%s)", filepath.Base(req.OutputPath), err, strings.TrimSpace(string(stderr)))
	}
	return nil
}

// ExtractFrames decodes every frame of the video into outputDir as
// frame_0001.jpg, frame_0002.jpg, ... and returns the number written.
func (f *FFmpeg) ExtractFrames(ctx context.Context, filePath, outputDir string) (int, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create frames directory: %w", err)
	}

	framePattern := filepath.Join(outputDir, "frame_%04d.jpg")
	_, stderr, err := f.run(ctx,
		"-y",
		"-i", filePath,
		framePattern,
	)
	if err != nil {
		return 0, fmt.Errorf("ffmpeg extract frames: %w (%s)", err, strings.TrimSpace(string(stderr)))
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return 0, fmt.Errorf("glob frames: %w", err)
	}
	sort.Strings(frames)
	return len(frames), nil
}

func (f *FFmpeg) run(ctx context.Context, args ...string) ([]byte, []byte, error) {
	return f.execute(ctx, f.ffmpegPath, args)
}

func (f *FFmpeg) runProbe(ctx context.Context, args ...string) ([]byte, []byte, error) {
	return f.execute(ctx, f.ffprobePath, args)
}

func (f *FFmpeg) execute(ctx context.Context, bin string, args []string) ([]byte, []byte, error) {
	if f.logger != nil {
		f.logger.Debug("running", "bin", bin, "args", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	if err != nil && f.logger != nil {
		f.logger.Error("command failed", "bin", bin, "error", err)
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// ParseFrameRate parses ffprobe's rational frame rate ("30000/1001").
// Returns 0 for malformed or zero-denominator input.
func ParseFrameRate(s string) float64 {
	if s == "" {
		return 0
	}
	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
