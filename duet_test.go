package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Phase
	}{
		// RepRapFirmware V2 single letters
		{"I", PhaseIdle},
		{"P", PhaseProcessing},
		{"M", PhaseProcessing},
		{"R", PhaseProcessing},
		{"S", PhasePaused},
		{"B", PhaseBusy},
		{"T", PhaseBusy},
		{"D", PhaseBusy}, // pausing is transitional, not yet paused
		// V3 / DSF words
		{"idle", PhaseIdle},
		{"off", PhaseIdle},
		{"processing", PhaseProcessing},
		{"printing", PhaseProcessing},
		{"simulating", PhaseProcessing},
		{"resuming", PhaseProcessing},
		{"paused", PhasePaused},
		{"pausing", PhaseBusy},
		{"changingTool", PhaseBusy},
		// Edge input
		{"", PhaseUnknown},
		{"  idle  ", PhaseIdle},
		{"halted", PhaseBusy},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.raw), func(t *testing.T) {
			if got := classifyStatus(tt.raw); got != tt.want {
				t.Errorf("classifyStatus(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

// v2Server fakes a RepRapFirmware V2 standalone printer.
func v2Server(t *testing.T, status string, xyz []float64) (*httptest.Server, *[]string) {
	t.Helper()
	var gcodes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rr_connect":
			fmt.Fprint(w, `{"err":0}`)
		case "/rr_status":
			fmt.Fprintf(w, `{"status":%q,"coords":{"xyz":[%g,%g,%g]}}`, status, xyz[0], xyz[1], xyz[2])
		case "/rr_gcode":
			gcodes = append(gcodes, r.URL.Query().Get("gcode"))
			fmt.Fprint(w, `{"buff":240}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &gcodes
}

func newTestClient(srv *httptest.Server) *DuetClient {
	u, _ := url.Parse(srv.URL)
	c := NewDuetClient(u.Host, "")
	c.httpClient = srv.Client()
	return c
}

func TestDuetClientV2(t *testing.T) {
	srv, gcodes := v2Server(t, "P", []float64{30, 40, 1.2})
	c := newTestClient(srv)

	require.NoError(t, c.Connect())
	assert.Equal(t, 2, c.Generation())

	phase, err := c.Phase()
	require.NoError(t, err)
	assert.Equal(t, PhaseProcessing, phase)

	coords, err := c.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, Coords{X: 30, Y: 40, Z: 1.2}, coords)

	require.NoError(t, c.Gcode("M25"))
	require.NoError(t, c.Gcode("G1 X10.00 Y10.00"))
	assert.Equal(t, []string{"M25", "G1 X10.00 Y10.00"}, *gcodes)
}

func TestDuetClientV2RefusesBadPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rr_connect" {
			fmt.Fprint(w, `{"err":1}`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv)
	err := c.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duetpw")
}

func TestDuetClientV3(t *testing.T) {
	var gcodes []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/machine/status":
			fmt.Fprint(w, `{
				"state": {"status": "paused"},
				"move": {"axes": [
					{"letter": "X", "machinePosition": 5.5},
					{"letter": "Y", "machinePosition": 6.5},
					{"letter": "Z", "machinePosition": 0.6}
				]}
			}`)
		case "/machine/code":
			body, _ := io.ReadAll(r.Body)
			gcodes = append(gcodes, string(body))
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(srv)
	require.NoError(t, c.Connect())
	assert.Equal(t, 3, c.Generation())

	phase, err := c.Phase()
	require.NoError(t, err)
	assert.Equal(t, PhasePaused, phase)

	coords, err := c.Coordinates()
	require.NoError(t, err)
	assert.Equal(t, Coords{X: 5.5, Y: 6.5, Z: 0.6}, coords)

	require.NoError(t, c.Gcode("M24"))
	assert.Equal(t, []string{"M24"}, gcodes)
}

func TestDuetClientConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	c := newTestClient(srv)
	err := c.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not respond as a V2 or V3 printer")
}

func TestDuetClientV2ShortAxes(t *testing.T) {
	srv, _ := v2Server(t, "I", []float64{0, 0, 0})
	c := newTestClient(srv)
	require.NoError(t, c.Connect())

	// Patch the server response through a second fake with too few axes.
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"I","coords":{"xyz":[1.0]}}`)
	}))
	t.Cleanup(short.Close)
	u, _ := url.Parse(short.URL)
	c.baseURL = "http://" + u.Host

	_, err := c.Coordinates()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected at least 3")
}
