package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Phase is the closed classification of printer status consumed by the
// engine. Raw firmware status strings never leave this file.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseIdle
	PhaseProcessing
	PhasePaused
	PhaseBusy // responding, but neither printing, paused nor idle
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseProcessing:
		return "processing"
	case PhasePaused:
		return "paused"
	case PhaseBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Coords is a point-in-time read of the head position.
type Coords struct {
	X float64
	Y float64
	Z float64
}

// DuetClient talks to a Duet printer over HTTP. Both firmware generations
// are supported: RepRapFirmware V2 standalone (rr_ endpoints) and V3 under
// the Duet Software Framework (/machine endpoints). The generation is
// detected once by Connect.
type DuetClient struct {
	baseURL    string
	password   string
	generation int
	httpClient *http.Client
}

// NewDuetClient creates a client for the printer at host. Connect must be
// called before any other method.
func NewDuetClient(host, password string) *DuetClient {
	return &DuetClient{
		baseURL:  "http://" + host,
		password: password,
		httpClient: &http.Client{
			Timeout: DuetTimeout * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// rrStatus is the subset of the V2 rr_status response the engine needs.
type rrStatus struct {
	Status string `json:"status"`
	Coords struct {
		XYZ []float64 `json:"xyz"`
	} `json:"coords"`
}

// machineStatus is the subset of the V3 object model the engine needs.
type machineStatus struct {
	State struct {
		Status string `json:"status"`
	} `json:"state"`
	Move struct {
		Axes []struct {
			Letter          string  `json:"letter"`
			MachinePosition float64 `json:"machinePosition"`
		} `json:"axes"`
	} `json:"move"`
}

// Connect probes the printer and records which API generation it speaks.
func (c *DuetClient) Connect() error {
	// V2 standalone answers rr_connect; anything else 404s it.
	var v2 struct {
		Err int `json:"err"`
	}
	connectPath := fmt.Sprintf("/rr_connect?password=%s&time=%s",
		url.QueryEscape(c.password),
		url.QueryEscape(time.Now().Format("2006-01-02T15:04:05")))
	if err := c.getJSON(connectPath, &v2); err == nil {
		if v2.Err != 0 {
			return fmt.Errorf("duet: connection refused (err=%d), check -duetpw", v2.Err)
		}
		c.generation = 2
		return nil
	}

	var v3 machineStatus
	if err := c.getJSON("/machine/status", &v3); err != nil {
		return fmt.Errorf("duet: device at %s did not respond as a V2 or V3 printer: %w", c.baseURL, err)
	}
	c.generation = 3
	return nil
}

// Generation returns the detected firmware generation, 2 or 3.
func (c *DuetClient) Generation() int { return c.generation }

// Phase queries current status and classifies it.
func (c *DuetClient) Phase() (Phase, error) {
	raw, err := c.rawStatus()
	if err != nil {
		return PhaseUnknown, err
	}
	return classifyStatus(raw), nil
}

func (c *DuetClient) rawStatus() (string, error) {
	if c.generation == 3 {
		var st machineStatus
		if err := c.getJSON("/machine/status", &st); err != nil {
			return "", err
		}
		return st.State.Status, nil
	}
	var st rrStatus
	if err := c.getJSON("/rr_status?type=2", &st); err != nil {
		return "", err
	}
	return st.Status, nil
}

// Coordinates returns the current head position.
func (c *DuetClient) Coordinates() (Coords, error) {
	if c.generation == 3 {
		var st machineStatus
		if err := c.getJSON("/machine/status", &st); err != nil {
			return Coords{}, err
		}
		var coords Coords
		for _, axis := range st.Move.Axes {
			switch axis.Letter {
			case "X":
				coords.X = axis.MachinePosition
			case "Y":
				coords.Y = axis.MachinePosition
			case "Z":
				coords.Z = axis.MachinePosition
			}
		}
		return coords, nil
	}

	var st rrStatus
	if err := c.getJSON("/rr_status?type=2", &st); err != nil {
		return Coords{}, err
	}
	if len(st.Coords.XYZ) < 3 {
		return Coords{}, fmt.Errorf("duet: status reported %d axes, expected at least 3", len(st.Coords.XYZ))
	}
	return Coords{X: st.Coords.XYZ[0], Y: st.Coords.XYZ[1], Z: st.Coords.XYZ[2]}, nil
}

// Gcode sends one command and confirms the printer accepted it.
func (c *DuetClient) Gcode(cmd string) error {
	if c.generation == 3 {
		resp, err := c.httpClient.Post(c.baseURL+"/machine/code", "text/plain", strings.NewReader(cmd))
		if err != nil {
			return fmt.Errorf("failed to send %q: %w", cmd, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("duet rejected %q: %d - %s", cmd, resp.StatusCode, string(body))
		}
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	var reply struct {
		Buff int `json:"buff"`
	}
	if err := c.getJSON("/rr_gcode?gcode="+url.QueryEscape(cmd), &reply); err != nil {
		return fmt.Errorf("failed to send %q: %w", cmd, err)
	}
	return nil
}

func (c *DuetClient) getJSON(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request to duet failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("duet API error: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode duet response: %w", err)
	}
	return nil
}

// classifyStatus maps raw firmware status to a Phase. V2 standalone reports
// single letters, V3 reports words. "pausing"/"D" is transitional and
// classified busy until the pause settles.
func classifyStatus(raw string) Phase {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return PhaseUnknown
	case "i", "idle", "off":
		return PhaseIdle
	case "p", "m", "r", "printing", "processing", "simulating", "resuming":
		return PhaseProcessing
	case "s", "paused":
		return PhasePaused
	default:
		return PhaseBusy
	}
}
