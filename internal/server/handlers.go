package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ChicagoDave/threadweaver/pkg/agents"
	"github.com/ChicagoDave/threadweaver/pkg/geo"
	"github.com/ChicagoDave/threadweaver/pkg/player"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

const maxBody = 1 << 20

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Threadweaver</title></head>
<body style="margin:0;background:#111;color:#fff;font-family:system-ui;display:flex;align-items:center;justify-content:center;height:100vh">
<div style="text-align:center">
<h1>Threadweaver</h1>
<p>The walking city is live. Scene at <code>/api/scene</code>, map at <code>/api/map</code>, story on <code>/ws/story</code>.</p>
</div>
</body></html>`)
}

// handleScene serves the scene graph as JSON, or zstd-compressed JSON with
// ?format=zst.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.URL.Query().Get("format") == "zst" {
		w.Header().Set("Content-Type", "application/zstd")
		if err := scene.WriteCompressed(w, s.world.Scene); err != nil {
			s.logger.Printf("scene export: %v", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, s.world.Scene)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.world.Minimap(r.URL.Query().Get("agents") == "1"))
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.world.Config())
}

type rebuildResponse struct {
	Config     spec.Config        `json:"config"`
	Stats      world.Stats        `json:"stats"`
	Validation *validation.Report `json:"validation"`
}

// handleRebuild applies a config over the current one and rebuilds. Fields
// absent from the body keep their current values. Out-of-range sliders are
// reported and clamped, not rejected.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.world.Config()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	report := validation.ValidateConfig(&cfg)
	s.world.Rebuild(cfg)
	report.Merge(s.world.Report())
	writeJSON(w, http.StatusOK, rebuildResponse{
		Config:     s.world.Config(),
		Stats:      s.world.Stats(),
		Validation: report,
	})
}

func (s *Server) handleValidation(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report := validation.NewReport()
	report.Merge(s.world.Report())
	report.Merge(s.world.Validate())
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.world.Stats())
}

// playerInput is a partial update of the controller.
type playerInput struct {
	Lock *bool        `json:"lock,omitempty"`
	Keys *player.Keys `json:"keys,omitempty"`
	Look [2]float64   `json:"look"` // yaw, pitch deltas
}

type playerState struct {
	State    string      `json:"state"`
	Camera   geo.Vec3    `json:"camera"`
	Forward  geo.Vec3    `json:"forward"`
	OnGround bool        `json:"on_ground"`
	Swinging bool        `json:"swinging"`
	Keys     player.Keys `json:"keys"`
}

func (s *Server) playerState() playerState {
	p := s.world.Player
	return playerState{
		State:    p.State().String(),
		Camera:   p.Camera(),
		Forward:  p.Forward(),
		OnGround: p.OnGround(),
		Swinging: p.Arm().Swinging(),
		Keys:     p.Keys,
	}
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	var in playerInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.world.Player
	if in.Lock != nil {
		if *in.Lock {
			p.Lock()
		} else {
			p.Unlock()
		}
	}
	if in.Keys != nil && p.Locked() {
		p.Keys = *in.Keys
	}
	p.Look(in.Look[0], in.Look[1])
	writeJSON(w, http.StatusOK, s.playerState())
}

func (s *Server) handlePunch(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]bool{"started": s.world.Punch()})
}

type interactResponse struct {
	Found bool          `json:"found"`
	Node  string        `json:"node,omitempty"`
	Agent *agents.Agent `json:"agent,omitempty"`
}

func (s *Server) handleInteract(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.world.Interact()
	if !ok {
		writeJSON(w, http.StatusOK, interactResponse{})
		return
	}
	writeJSON(w, http.StatusOK, interactResponse{Found: true, Node: a.NodeID(), Agent: a})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
