package main

import (
	"fmt"
	"strings"
)

// Config holds the validated, immutable set of run parameters. It is built
// once from the command line in main and never mutated afterwards.
type Config struct {
	Duet     string // name or IP address of the Duet printer
	Password string

	Camera string
	WebURL string // still-image URL for -camera web

	Seconds      float64 // interval trigger period; 0 disables
	Detect       string
	Pause        bool // force a printer pause around each capture
	MoveHeadX    float64
	MoveHeadY    float64
	PauseCapture string

	Port        string // web dashboard port, "0" disables
	CaptureDir  string
	HistoryFile string // capture journal, "" disables
}

// MoveHeadSet reports whether a head park position was requested.
// (0,0) means unset, matching the command line default.
func (c *Config) MoveHeadSet() bool {
	return c.MoveHeadX != 0 || c.MoveHeadY != 0
}

// Validate checks flag combinations before any printer or filesystem activity.
// All violations are reported together so the operator can fix the command
// line in one pass.
func (c *Config) Validate() error {
	var problems []string

	if c.Duet == "" {
		problems = append(problems, "-duet is required: name or IP address of the Duet printer")
	}

	switch c.Camera {
	case CameraUSB, CameraPi:
	case CameraWeb:
		if c.WebURL == "" {
			problems = append(problems, `"-camera web" requires -weburl with a still-image URL`)
		}
	case CameraDSLR:
		problems = append(problems, "camera type dslr is not yet supported")
	default:
		problems = append(problems, fmt.Sprintf("unknown camera type %q (choose usb, pi or web)", c.Camera))
	}

	switch c.Detect {
	case DetectLayer, DetectPause, DetectNone:
	default:
		problems = append(problems, fmt.Sprintf("unknown detection mode %q (choose layer, pause or none)", c.Detect))
	}

	if c.Seconds < 0 {
		problems = append(problems, fmt.Sprintf("-seconds %.2f is invalid: must be 0 or positive", c.Seconds))
	}

	switch c.PauseCapture {
	case PauseCaptureEveryTick, PauseCaptureOnce:
	default:
		problems = append(problems, fmt.Sprintf("unknown pause capture policy %q (choose everytick or once)", c.PauseCapture))
	}

	if c.MoveHeadSet() && !c.Pause && c.Detect != DetectPause {
		problems = append(problems, fmt.Sprintf(
			`"-movehead %.2f %.2f" requires either "-pause yes" or "-detect pause"`,
			c.MoveHeadX, c.MoveHeadY))
	}

	if c.Pause && c.Detect == DetectPause {
		problems = append(problems,
			`"-pause yes" forces pauses while "-detect pause" expects pauses already in the gcode; these are fundamentally incompatible`)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// parseMoveHead parses the -movehead flag value, two coordinates separated by
// whitespace, e.g. "10 10". An empty value means no head move.
func parseMoveHead(raw string) (x, y float64, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, nil
	}
	if _, err := fmt.Sscanf(raw, "%f %f", &x, &y); err != nil {
		return 0, 0, fmt.Errorf(`invalid -movehead %q: expected two coordinates, e.g. "10 10"`, raw)
	}
	return x, y, nil
}
