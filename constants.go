package main

import "time"

// Detection modes
const (
	DetectLayer = "layer"
	DetectPause = "pause"
	DetectNone  = "none"
)

// Camera kinds
const (
	CameraUSB  = "usb"
	CameraPi   = "pi"
	CameraWeb  = "web"
	CameraDSLR = "dslr" // recognized on the command line, not supported
)

// Pause-capture policies for "-detect pause"
const (
	PauseCaptureEveryTick = "everytick"
	PauseCaptureOnce      = "once"
)

// G-code sent to the printer
const (
	GcodePause  = "M25"
	GcodeDrain  = "M400" // blocks until the motion queue is empty
	GcodeResume = "M24"
)

// PollInterval is deliberately not an integer divisor of one second so the
// loop does not beat against printer-side periodic behaviour.
const PollInterval = 370 * time.Millisecond

// Default configuration values
const (
	DefaultCamera       = CameraUSB
	DefaultDetect       = DetectLayer
	DefaultPauseCapture = PauseCaptureEveryTick
	DefaultWebPort      = "5000"
	DefaultCaptureDir   = "/tmp/DuetLapse"
	DefaultHistoryFile  = "duetlapse.db"
)

// Video assembly parameters
const (
	VideoFrameRate = 10
	VideoSize      = "800x600"
	VideoCRF       = "25"
)

// HTTP timeouts
const (
	DuetTimeout   = 10 // seconds
	WebcamTimeout = 30 // seconds, network cameras can be slow to expose
)
