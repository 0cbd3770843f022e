package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// frameFilename returns the path of the still for a frame number. The fixed
// width keeps ffmpeg's %08d sequence input happy and the frames sortable.
func frameFilename(dir string, frame int) string {
	return filepath.Join(dir, fmt.Sprintf("IMG%08d.jpeg", frame))
}

// prepareCaptureDir wipes leftovers from a previous run and recreates the
// run-scoped capture directory.
func prepareCaptureDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean capture directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create capture directory %s: %w", dir, err)
	}
	return nil
}

// checkCameraDeps verifies the external binaries the selected camera and the
// assembler need are on PATH, before anything touches the printer.
func checkCameraDeps(camera string) error {
	required := []string{"ffmpeg"}
	switch camera {
	case CameraUSB:
		required = append(required, "fswebcam")
	case CameraPi:
		required = append(required, "raspistill")
	}
	for _, bin := range required {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required command %q not found on PATH: %w", bin, err)
		}
	}
	return nil
}

// NewFrameSink builds the sink for the configured camera kind.
func NewFrameSink(cfg *Config) (FrameSink, error) {
	switch cfg.Camera {
	case CameraUSB:
		return &UsbCamera{dir: cfg.CaptureDir}, nil
	case CameraPi:
		return &PiCamera{dir: cfg.CaptureDir}, nil
	case CameraWeb:
		return NewWebCamera(cfg.CaptureDir, cfg.WebURL), nil
	default:
		return nil, fmt.Errorf("unknown camera type %q", cfg.Camera)
	}
}

// UsbCamera grabs stills from a v4l2 device with fswebcam.
type UsbCamera struct {
	dir string
}

func (u *UsbCamera) Capture(frame int) error {
	fn := frameFilename(u.dir, frame)
	cmd := exec.Command("fswebcam",
		"--quiet",
		"-d", "v4l2:/dev/video0",
		"-i", "0",
		"-r", VideoSize,
		"-p", "YUYV",
		"--no-banner",
		fn,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("fswebcam failed: %w\noutput:\n%s", err, string(output))
	}
	return nil
}

// PiCamera grabs stills from the Raspberry Pi camera module.
type PiCamera struct {
	dir string
}

func (p *PiCamera) Capture(frame int) error {
	fn := frameFilename(p.dir, frame)
	cmd := exec.Command("raspistill", "-o", fn)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("raspistill failed: %w\noutput:\n%s", err, string(output))
	}
	return nil
}

// WebCamera fetches a still image from a network camera URL.
type WebCamera struct {
	dir        string
	url        string
	httpClient *http.Client
}

func NewWebCamera(dir, url string) *WebCamera {
	return &WebCamera{
		dir: dir,
		url: url,
		httpClient: &http.Client{
			Timeout: WebcamTimeout * time.Second,
		},
	}
}

func (w *WebCamera) Capture(frame int) error {
	resp, err := w.httpClient.Get(w.url)
	if err != nil {
		return fmt.Errorf("failed to fetch still from webcam: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webcam error: %d - %s", resp.StatusCode, string(body))
	}

	fn := frameFilename(w.dir, frame)
	out, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", fn, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", fn, err)
	}
	return nil
}
