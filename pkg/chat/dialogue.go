package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Requester sends one chat request and returns the reply text.
type Requester interface {
	Chat(ctx context.Context, req Request) (string, error)
}

// Client calls a remote /api/chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout + 5*time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) Chat(ctx context.Context, req Request) (string, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	hr.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(hr)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&e)
		return "", fmt.Errorf("chat request: status=%d error=%s", resp.StatusCode, e.Error)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat request: decoding reply: %w", err)
	}
	return out.Text, nil
}

// Reply is a finished exchange delivered by Poll.
type Reply struct {
	AgentID string
	Text    string
	Err     error
}

type pending struct {
	agentID string
	session uint64
	opening bool
	reply   string
	err     error
}

// Dialogue is the player's side of NPC conversations. Open and Send return
// immediately; replies arrive through Poll, which the frame loop calls.
// Every method except the request goroutines runs on the frame thread.
type Dialogue struct {
	requester Requester
	rng       *rand.Rand
	timeout   time.Duration

	personas      map[string]Persona
	conversations map[string][]Message
	active        string
	session       uint64

	mu   sync.Mutex
	done []pending
	wg   sync.WaitGroup
}

// NewDialogue creates a dialogue that draws personas from rng.
func NewDialogue(requester Requester, rng *rand.Rand) *Dialogue {
	return &Dialogue{
		requester:     requester,
		rng:           rng,
		timeout:       DefaultTimeout + 5*time.Second,
		personas:      make(map[string]Persona),
		conversations: make(map[string][]Message),
	}
}

// Open starts talking to agentID and requests an opening line. The agent
// keeps the same persona and history for the whole session.
func (d *Dialogue) Open(agentID string) Persona {
	p, ok := d.personas[agentID]
	if !ok {
		p = RandomPersona(d.rng)
		d.personas[agentID] = p
	}
	if _, ok := d.conversations[agentID]; !ok {
		d.conversations[agentID] = []Message{}
	}
	d.active = agentID
	d.session++
	d.request(agentID, p, d.History(agentID), true)
	return p
}

// Send posts a player line to the open conversation. The line joins the
// history right away; the reply is appended when it arrives. It returns
// false when no conversation is open or text is blank.
func (d *Dialogue) Send(text string) bool {
	text = strings.TrimSpace(text)
	if d.active == "" || text == "" {
		return false
	}
	d.conversations[d.active] = append(d.conversations[d.active], Message{Role: RoleUser, Content: text})
	d.request(d.active, d.personas[d.active], d.History(d.active), false)
	return true
}

// Close ends the open conversation. Replies still in flight for it are
// recorded in history but not delivered.
func (d *Dialogue) Close() {
	d.active = ""
	d.session++
}

// Active returns the agent currently being talked to.
func (d *Dialogue) Active() (string, bool) {
	return d.active, d.active != ""
}

// Persona returns the persona assigned to agentID, if any.
func (d *Dialogue) Persona(agentID string) (Persona, bool) {
	p, ok := d.personas[agentID]
	return p, ok
}

// History returns a copy of the conversation with agentID.
func (d *Dialogue) History(agentID string) []Message {
	h := d.conversations[agentID]
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

func (d *Dialogue) request(agentID string, p Persona, msgs []Message, opening bool) {
	session := d.session
	req := Request{AgentID: agentID, Persona: p.Encode(), Messages: msgs}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		text, err := d.requester.Chat(ctx, req)
		d.mu.Lock()
		d.done = append(d.done, pending{agentID: agentID, session: session, opening: opening, reply: text, err: err})
		d.mu.Unlock()
	}()
}

// Poll delivers finished replies for the open conversation. Failed or
// empty replies become FallbackReply.
func (d *Dialogue) Poll() []Reply {
	d.mu.Lock()
	done := d.done
	d.done = nil
	d.mu.Unlock()

	var out []Reply
	for _, r := range done {
		text := r.reply
		if r.err != nil || text == "" {
			text = FallbackReply
		}
		if !r.opening {
			d.conversations[r.agentID] = append(d.conversations[r.agentID], Message{Role: RoleAssistant, Content: text})
		}
		if r.agentID == d.active && r.session == d.session {
			out = append(out, Reply{AgentID: r.agentID, Text: text, Err: r.err})
		}
	}
	return out
}

// Wait blocks until every request in flight has finished. Replies are
// still collected by Poll.
func (d *Dialogue) Wait() {
	d.wg.Wait()
}
