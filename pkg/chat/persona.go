package chat

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

var (
	personaNames  = []string{"Riven", "Mara", "Nyx", "Juno", "Kade", "Ori", "Vex", "Sol", "Lumen", "Echo"}
	personaRoles  = []string{"data courier", "street artist", "tower analyst", "market broker", "drone wrangler", "sound designer"}
	personaQuirks = []string{"collects obsolete chips", "speaks in haikus", "never rides elevators", "tracks sunsets", "sketches strangers", "counts footsteps"}
)

const maxPersonaSeed = 1_000_000_000

// Persona is the client-side identity of a pedestrian, fixed the first time
// the player talks to them.
type Persona struct {
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Quirk string `json:"quirk,omitempty"`
	Seed  int64  `json:"seed,omitempty"`
}

// RandomPersona draws a persona from the name, role, and quirk tables.
func RandomPersona(rng *rand.Rand) Persona {
	return Persona{
		Name:  pick(rng, personaNames),
		Role:  pick(rng, personaRoles),
		Quirk: pick(rng, personaQuirks),
		Seed:  rng.Int63n(maxPersonaSeed),
	}
}

// Title is the dialogue header.
func (p Persona) Title() string {
	if p.Role == "" {
		return p.Name
	}
	return fmt.Sprintf("%s, %s", p.Name, p.Role)
}

// Encode returns the persona as the JSON string carried in Request.Persona.
func (p Persona) Encode() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParsePersona decodes Request.Persona. A seed that is not a JSON object is
// kept verbatim as the raw seed.
func ParsePersona(seed string) (Persona, string) {
	if seed == "" {
		return Persona{}, ""
	}
	var p Persona
	if err := json.Unmarshal([]byte(seed), &p); err != nil {
		return Persona{}, seed
	}
	return p, ""
}

func pick(rng *rand.Rand, list []string) string {
	return list[rng.Intn(len(list))]
}
