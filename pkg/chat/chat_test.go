package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	mu      sync.Mutex
	status  Status
	reply   string
	err     error
	prompts []Prompt
}

func (p *stubProvider) Generate(_ context.Context, pr Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, pr)
	return p.reply, p.err
}

func (p *stubProvider) Status() Status { return p.status }

func newTestHandler(p Provider) (*httptest.Server, *MapStore) {
	store := NewMapStore(rand.New(rand.NewSource(1)))
	mux := http.NewServeMux()
	NewHandler(p, store, nil).Register(mux)
	return httptest.NewServer(mux), store
}

func postChat(t *testing.T, url string, req Request) (int, map[string]any) {
	t.Helper()
	buf, err := json.Marshal(req)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/chat", "application/json", strings.NewReader(string(buf)))
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandlerMissingKey(t *testing.T) {
	p := &stubProvider{reply: "hi"}
	srv, store := newTestHandler(p)
	defer srv.Close()

	code, body := postChat(t, srv.URL, Request{AgentID: "pedestrian_1"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{"error": "Missing OPENAI_API_KEY"}, body)
	assert.Empty(t, p.prompts)
	assert.Zero(t, store.Len())
}

func TestHandlerReply(t *testing.T) {
	p := &stubProvider{status: Status{HasKey: true, Model: DefaultModel}, reply: "Busy. What?"}
	srv, store := newTestHandler(p)
	defer srv.Close()

	persona := Persona{Name: "Riven", Role: "data courier", Quirk: "tracks sunsets", Seed: 12}
	code, body := postChat(t, srv.URL, Request{AgentID: "pedestrian_1", Persona: persona.Encode()})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Busy. What?", body["text"])

	require.Len(t, p.prompts, 1)
	assert.Equal(t, introTokens, p.prompts[0].MaxOutputTokens)
	assert.Contains(t, p.prompts[0].Input, "You are NPC Riven (data courier)")
	assert.Contains(t, p.prompts[0].Input, "Arc step: 1.")
	assert.Contains(t, p.prompts[0].Input, "user: First line only")

	history := []Message{{Role: RoleUser, Content: "hey"}}
	code, _ = postChat(t, srv.URL, Request{AgentID: "pedestrian_1", Persona: persona.Encode(), Messages: history})
	require.Equal(t, http.StatusOK, code)
	require.Len(t, p.prompts, 2)
	assert.Equal(t, replyTokens, p.prompts[1].MaxOutputTokens)
	assert.Contains(t, p.prompts[1].Input, "Arc step: 2.")
	assert.True(t, strings.HasSuffix(p.prompts[1].Input, "\nuser: hey"))
	assert.Equal(t, 1, store.Len())
}

func TestHandlerUpstreamFailureHidesDetail(t *testing.T) {
	p := &stubProvider{status: Status{HasKey: true}, err: errors.New("status=401 body=bad key sk-secret")}
	srv, _ := newTestHandler(p)
	defer srv.Close()

	code, body := postChat(t, srv.URL, Request{AgentID: "a"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, map[string]any{"error": "chat_failed"}, body)
}

func TestHandlerBadJSON(t *testing.T) {
	srv, _ := newTestHandler(&stubProvider{status: Status{HasKey: true}})
	defer srv.Close()
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader("{nope"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestHandler(&stubProvider{status: Status{HasKey: true, Model: "m", Project: true}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]any{"ok": true, "hasKey": true, "model": "m", "org": false, "project": true}, body)
}

func TestOpenAIProvider(t *testing.T) {
	var got responsesRequest
	var headers http.Header
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&got)
		io.WriteString(w, `{"output":[{"content":[{"text":"from output"}]}]}`)
	}))
	defer upstream.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "k", OrgID: "org", Endpoint: upstream.URL})
	text, err := p.Generate(context.Background(), Prompt{Input: "hi", MaxOutputTokens: 40, Temperature: 1.05})
	require.NoError(t, err)
	assert.Equal(t, "from output", text)
	assert.Equal(t, responsesRequest{Model: DefaultModel, Input: "hi", MaxOutputTokens: 40, Temperature: 1.05}, got)
	assert.Equal(t, "Bearer k", headers.Get("Authorization"))
	assert.Equal(t, "org", headers.Get("OpenAI-Organization"))
	assert.Empty(t, headers.Get("OpenAI-Project"))
	assert.Equal(t, Status{HasKey: true, Model: DefaultModel, Org: true}, p.Status())
}

func TestOpenAIProviderPrefersOutputText(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"output_text":"direct","output":[{"content":[{"text":"nested"}]}]}`)
	}))
	defer upstream.Close()

	text, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Endpoint: upstream.URL}).Generate(context.Background(), Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "direct", text)
}

func TestOpenAIProviderErrors(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{}).Generate(context.Background(), Prompt{})
	assert.ErrorIs(t, err, ErrMissingCredential)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"bad key sk-live-123"}`)
	}))
	defer upstream.Close()

	_, err = NewOpenAIProvider(OpenAIConfig{APIKey: "sk-live-123", Endpoint: upstream.URL}).Generate(context.Background(), Prompt{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
	assert.NotContains(t, err.Error(), "sk-live-123")
}

func TestNewCharacter(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := NewCharacter(Persona{}, "", rng)
	assert.Equal(t, defaultCharacterName, c.Name)
	assert.Contains(t, archetypes, c.Role)
	assert.Contains(t, secrets, c.Quirk)
	assert.Zero(t, c.ArcStep)

	c = NewCharacter(Persona{Name: "Vex", Role: "street artist", Quirk: "speaks in haikus", Seed: 99}, "", rng)
	assert.Equal(t, "Vex", c.Name)
	assert.Equal(t, "street artist", c.Role)
	assert.Equal(t, "99", c.Seed)
}

func TestParsePersona(t *testing.T) {
	p, raw := ParsePersona(`{"name":"Sol","seed":5}`)
	assert.Equal(t, Persona{Name: "Sol", Seed: 5}, p)
	assert.Empty(t, raw)

	p, raw = ParsePersona("12345")
	assert.Equal(t, Persona{}, p)
	assert.Equal(t, "12345", raw)
}

func TestSystemLineMentionsPartnerOnlyWhenMarried(t *testing.T) {
	c := Character{Name: "Nyx", Family: familyMarried, Partner: "Iris"}
	assert.Contains(t, c.SystemLine(), "Family: married to Iris.")
	c.Family = "single"
	assert.NotContains(t, c.SystemLine(), "Iris")
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory", "chars.db")
	ctx := context.Background()

	store, err := OpenSQLiteStore(path, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	first, err := store.Advance(ctx, "pedestrian_1", Persona{Name: "Juno"}.Encode())
	require.NoError(t, err)
	assert.Equal(t, "Juno", first.Name)
	assert.Equal(t, 1, first.ArcStep)
	require.NoError(t, store.Close())

	store, err = OpenSQLiteStore(path, rand.New(rand.NewSource(2)))
	require.NoError(t, err)
	defer store.Close()
	again, err := store.Advance(ctx, "pedestrian_1", Persona{Name: "Other"}.Encode())
	require.NoError(t, err)
	assert.Equal(t, 2, again.ArcStep)
	first.ArcStep = 2
	assert.Equal(t, first, again)

	_, err = store.Advance(ctx, "", "")
	require.NoError(t, err)
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

type stubRequester struct {
	mu    sync.Mutex
	reqs  []Request
	reply func(Request) (string, error)
}

func (s *stubRequester) Chat(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	return s.reply(req)
}

func TestDialogueOpenAndSend(t *testing.T) {
	req := &stubRequester{reply: func(r Request) (string, error) {
		return "reply " + string(rune('0'+len(r.Messages))), nil
	}}
	d := NewDialogue(req, rand.New(rand.NewSource(1)))

	p := d.Open("pedestrian_a")
	assert.Contains(t, personaNames, p.Name)
	d.Wait()
	replies := d.Poll()
	require.Len(t, replies, 1)
	assert.Equal(t, "reply 0", replies[0].Text)
	assert.Empty(t, d.History("pedestrian_a"), "opening line is not recorded")

	require.True(t, d.Send("  hello  "))
	d.Wait()
	replies = d.Poll()
	require.Len(t, replies, 1)
	assert.Equal(t, "reply 1", replies[0].Text)
	assert.Equal(t, []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "reply 1"},
	}, d.History("pedestrian_a"))

	// same persona on every request
	for _, r := range req.reqs {
		assert.Equal(t, p.Encode(), r.Persona)
		assert.Equal(t, "pedestrian_a", r.AgentID)
	}
	assert.False(t, d.Send("   "))
}

func TestDialogueFallbackAndStaleReplies(t *testing.T) {
	req := &stubRequester{reply: func(r Request) (string, error) {
		return "", errors.New("boom")
	}}
	d := NewDialogue(req, rand.New(rand.NewSource(1)))

	assert.False(t, d.Send("nobody listening"))

	d.Open("a")
	d.Wait()
	replies := d.Poll()
	require.Len(t, replies, 1)
	assert.Equal(t, FallbackReply, replies[0].Text)
	assert.Error(t, replies[0].Err)

	require.True(t, d.Send("still there?"))
	d.Close()
	d.Wait()
	assert.Empty(t, d.Poll())
	assert.Len(t, d.History("a"), 2)

	persona, ok := d.Persona("a")
	require.True(t, ok)
	assert.Equal(t, persona, d.Open("a"))
	d.Open("b")
	d.Wait()
	replies = d.Poll()
	require.Len(t, replies, 1)
	assert.Equal(t, "b", replies[0].AgentID)
}

func TestDialogueKeepsEveryExchange(t *testing.T) {
	release := make(chan struct{})
	req := &stubRequester{reply: func(r Request) (string, error) {
		<-release
		return "ok", nil
	}}
	d := NewDialogue(req, rand.New(rand.NewSource(1)))
	d.Open("a")

	const lines = 40
	for i := 0; i < lines; i++ {
		require.True(t, d.Send(fmt.Sprintf("line %d", i)))
	}
	close(release)
	d.Wait()

	replies := d.Poll()
	assert.Len(t, replies, lines+1)

	history := d.History("a")
	require.Len(t, history, lines*2)
	var users, assistants int
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			users++
		case RoleAssistant:
			assistants++
		}
	}
	assert.Equal(t, lines, users)
	assert.Equal(t, lines, assistants)
	assert.Equal(t, "line 0", history[0].Content)

	// later requests carry the earlier lines
	var longest int
	for _, r := range req.reqs {
		longest = max(longest, len(r.Messages))
	}
	assert.Equal(t, lines, longest)
}

func TestClientAgainstHandler(t *testing.T) {
	p := &stubProvider{status: Status{HasKey: true}, reply: "Need something?"}
	srv, _ := newTestHandler(p)
	defer srv.Close()

	c := NewClient(srv.URL+"/", nil)
	text, err := c.Chat(context.Background(), Request{AgentID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "Need something?", text)

	p.status.HasKey = false
	_, err = c.Chat(context.Background(), Request{AgentID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing OPENAI_API_KEY")
}
