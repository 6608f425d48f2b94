package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/scene2d"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/story"
	"github.com/ChicagoDave/threadweaver/pkg/validation"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

func testServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	cfg := spec.Defaults()
	cfg.People = 0
	cfg.Trees = 0.1
	cfg.World = 0
	cfg.Seed = 11
	cfg.Weather = spec.WeatherDuskOvercast

	s := New(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func postJSON(t *testing.T, url, body string, v any) int {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestSceneJSONAndCompressed(t *testing.T) {
	_, ts := testServer(t)

	var g scene.Graph
	getJSON(t, ts.URL+"/api/scene", &g)
	assert.Equal(t, int64(11), g.Metadata.Seed)
	assert.NotEmpty(t, g.Entities)

	resp, err := http.Get(ts.URL + "/api/scene?format=zst")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/zstd", resp.Header.Get("Content-Type"))
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoded, err := scene.ReadCompressed(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Len(t, decoded.Entities, len(g.Entities))
}

func TestMap(t *testing.T) {
	_, ts := testServer(t)
	var m scene2d.Scene2D
	getJSON(t, ts.URL+"/api/map?agents=1", &m)
	assert.Equal(t, 240.0, m.Metadata.Extent)
	assert.NotEmpty(t, m.Markers)
	assert.NotNil(t, m.Player)
}

func TestRebuildViaConfig(t *testing.T) {
	s, ts := testServer(t)

	var before world.Stats
	getJSON(t, ts.URL+"/api/stats", &before)
	assert.Equal(t, 1, before.Builds)
	assert.Equal(t, before.Structures, before.StaticBoxes)

	var out rebuildResponse
	code := postJSON(t, ts.URL+"/api/config", `{"buildings": 1.5, "world": 1}`, &out)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, out.Config.Buildings)
	assert.Equal(t, int64(11), out.Config.Seed, "unspecified fields are kept")
	assert.Equal(t, 2, out.Stats.Builds)
	assert.Equal(t, out.Stats.Structures, out.Stats.StaticBoxes)
	assert.False(t, out.Validation.Valid, "out-of-range slider is reported")

	var cfg spec.Config
	getJSON(t, ts.URL+"/api/config", &cfg)
	assert.Equal(t, 1.0, cfg.World)
	assert.Equal(t, 400.0, s.world.Params().World.Extent)

	code = postJSON(t, ts.URL+"/api/config", `{"buildings": "lots"}`, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestValidationEndpoint(t *testing.T) {
	_, ts := testServer(t)
	var r validation.Report
	getJSON(t, ts.URL+"/api/validation", &r)
	assert.True(t, r.Valid, "%+v", r.Errors)
}

func TestPlayerPunchAndInteract(t *testing.T) {
	s, ts := testServer(t)

	var st playerState
	postJSON(t, ts.URL+"/api/player", `{"keys":{"forward":true}}`, &st)
	assert.Equal(t, "unlocked", st.State)
	assert.False(t, st.Keys.Forward, "keys ignored while unlocked")

	var punch map[string]bool
	postJSON(t, ts.URL+"/api/punch", ``, &punch)
	assert.False(t, punch["started"])

	postJSON(t, ts.URL+"/api/player", `{"lock":true,"keys":{"forward":true}}`, &st)
	assert.Equal(t, "locked", st.State)
	assert.True(t, st.Keys.Forward)

	start := st.Camera
	for i := 0; i < 30; i++ {
		s.Tick(1.0 / 60)
	}
	postJSON(t, ts.URL+"/api/player", `{}`, &st)
	assert.Less(t, st.Camera.Z, start.Z, "walked toward -Z")

	postJSON(t, ts.URL+"/api/punch", ``, &punch)
	assert.True(t, punch["started"])

	var in interactResponse
	postJSON(t, ts.URL+"/api/interact", ``, &in)
	if in.Found {
		assert.NotEmpty(t, in.Node)
		postJSON(t, ts.URL+"/api/player", `{}`, &st)
		assert.Equal(t, "unlocked", st.State)
	}
}

func TestChatRoutesMounted(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, ts := testServer(t)

	var health map[string]any
	getJSON(t, ts.URL+"/api/health", &health)
	assert.Equal(t, true, health["ok"])
	assert.Equal(t, false, health["hasKey"])

	var body map[string]string
	code := postJSON(t, ts.URL+"/api/chat", `{"npcId":"x","messages":[]}`, &body)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Missing OPENAI_API_KEY", body["error"])
}

func TestStorySocketMounted(t *testing.T) {
	_, ts := testServer(t)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/story", nil)
	require.NoError(t, err)
	defer conn.Close()

	var env story.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, story.EventStart, env.Event)
}

func TestIndex(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
