package chat

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

var (
	archetypes = []string{"runaway analyst", "street poet", "tower custodian", "market fixer", "drone tuner", "sound cartographer"}
	secrets    = []string{"owes a quiet debt", "stole a sunset file", "can hear elevators dream", "keeps a ghost-radio", "maps footsteps", "feeds stray servers"}
	goals      = []string{"find a lost packet", "repair a broken loop", "leave the tower", "buy time for a friend", "teach the city a song", "win one honest trade"}
	moods      = []string{"wry", "sardonic", "sweet", "deadpan", "chaotic", "earnest", "snarky", "soft-spoken"}
	families   = []string{"single", "married", "it's complicated", "roommates forever", "recently divorced"}
	partners   = []string{"Ari", "Bo", "Cyra", "Dax", "Eve", "Fox", "Gale", "Halo", "Iris", "Jett"}
	pets       = []string{"koi drone", "street cat", "ferret", "gecko", "pigeon", "robo-moth"}
	hobbies    = []string{"hoards neon postcards", "writes micro-haikus", "speed-cooks dumplings", "repairs junk synths", "chases sunsets", "brews silly tea"}
	stressors  = []string{"late rent", "tower audits", "wedding planning", "sibling drama", "broken drone", "boss texts at 2am"}
	favorites  = []string{"dumplings", "noodles", "spicy tofu", "sweet buns", "sour synthpop", "old jazz"}
	gossipWho  = []string{"tower exec", "market broker", "drone union", "street vendor", "archivist", "security chief"}
	gossipWhat = []string{"seeing someone in secret", "embezzling time credits", "opening a speakeasy", "planning to flee the city", "rigging a raffle", "hoarding batteries"}
)

const (
	defaultCharacterName = "Nyx"
	unknownAgent         = "unknown"
	familyMarried        = "married"
)

// Character is the server-side memory of one NPC. It is created on first
// contact and its arc advances by one step per request.
type Character struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	Quirk    string `json:"quirk"`
	Goal     string `json:"goal"`
	Mood     string `json:"mood"`
	Family   string `json:"family"`
	Partner  string `json:"partner"`
	Pet      string `json:"pet"`
	Hobby    string `json:"hobby"`
	Stressor string `json:"stressor"`
	Favorite string `json:"favorite"`
	Gossip   string `json:"gossip"`
	ArcStep  int    `json:"arc_step"`
	Seed     string `json:"seed"`
}

// NewCharacter rolls a character. Name, role, and quirk come from the
// persona when it carries them.
func NewCharacter(p Persona, rawSeed string, rng *rand.Rand) Character {
	c := Character{
		Name:     p.Name,
		Role:     p.Role,
		Quirk:    p.Quirk,
		Seed:     rawSeed,
		Goal:     pick(rng, goals),
		Mood:     pick(rng, moods),
		Family:   pick(rng, families),
		Partner:  pick(rng, partners),
		Pet:      pick(rng, pets),
		Hobby:    pick(rng, hobbies),
		Stressor: pick(rng, stressors),
		Favorite: pick(rng, favorites),
		Gossip:   pick(rng, gossipWho) + " is " + pick(rng, gossipWhat),
	}
	if c.Name == "" {
		c.Name = defaultCharacterName
	}
	if c.Role == "" {
		c.Role = pick(rng, archetypes)
	}
	if c.Quirk == "" {
		c.Quirk = pick(rng, secrets)
	}
	if c.Seed == "" && p.Seed != 0 {
		c.Seed = strconv.FormatInt(p.Seed, 10)
	}
	return c
}

// MemoryStore keeps characters across requests.
type MemoryStore interface {
	// Advance returns the character for agentID, creating it from the
	// persona seed on first contact, with its arc step already incremented.
	Advance(ctx context.Context, agentID, personaSeed string) (Character, error)
	Close() error
}

// MapStore is an in-process MemoryStore.
type MapStore struct {
	mu    sync.Mutex
	rng   *rand.Rand
	chars map[string]*Character
}

// NewMapStore creates an empty in-process store.
func NewMapStore(rng *rand.Rand) *MapStore {
	return &MapStore{rng: rng, chars: make(map[string]*Character)}
}

func (s *MapStore) Advance(_ context.Context, agentID, personaSeed string) (Character, error) {
	if agentID == "" {
		agentID = unknownAgent
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chars[agentID]
	if !ok {
		p, raw := ParsePersona(personaSeed)
		nc := NewCharacter(p, raw, s.rng)
		c = &nc
		s.chars[agentID] = c
	}
	c.ArcStep++
	return *c, nil
}

// Len returns the number of remembered characters.
func (s *MapStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chars)
}

func (s *MapStore) Close() error { return nil }

const styleRules = "Write 1-2 short lines. " +
	"Plain, direct phrasing; minimal flourish; feel conversational. " +
	"Unpredictable tone each turn (friendly, brusque, distracted, sarcastic, excited, annoyed, goofy). " +
	"Push the arc a little each turn (tiny reveal/action/choice). " +
	"Often share personal life (gossip, family, wedding plans, stress, pet antics, favorite food/music). " +
	"About 30%: end with a playful hook or one-line riddle."

const introCue = "First line only: 3-10 words, can be abrupt (e.g., 'Busy. What?', 'Hey, careful.', 'Need something?'). No backstory, no exposition."

const (
	introTokens      = 40
	replyTokens      = 80
	replyTemperature = 1.05
)

// Prompt is one text-generation call.
type Prompt struct {
	Input           string
	MaxOutputTokens int
	Temperature     float64
}

// SystemLine describes the character to the model.
func (c Character) SystemLine() string {
	family := c.Family
	if family == familyMarried {
		family += " to " + c.Partner
	}
	return fmt.Sprintf("You are NPC %s (%s) in Threadweaver. Mood: %s. Family: %s. Pet: %s. Hobby: %s. Stressor: %s. Favorite: %s. Gossip you might share: %s. Quirk: %s. Quiet goal: %s. Arc step: %d. %s Avoid repetition. Keep continuity.",
		c.Name, c.Role, c.Mood, family, c.Pet, c.Hobby, c.Stressor, c.Favorite, c.Gossip, c.Quirk, c.Goal, c.ArcStep, styleRules)
}

// BuildPrompt renders the transcript for a character and its history. An
// empty history asks for a short opening line.
func BuildPrompt(c Character, history []Message) Prompt {
	intro := len(history) == 0
	lines := []string{c.SystemLine()}
	if intro {
		lines = append(lines, RoleUser+": "+introCue)
	}
	for _, m := range history {
		lines = append(lines, m.Role+": "+m.Content)
	}
	p := Prompt{
		Input:           strings.Join(lines, "\n"),
		MaxOutputTokens: replyTokens,
		Temperature:     replyTemperature,
	}
	if intro {
		p.MaxOutputTokens = introTokens
	}
	return p
}
