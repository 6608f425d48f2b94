// Package story serves the Corporate Citistate choice graph over a
// websocket.
package story

// StartID is the id of the opening node.
const StartID = "start"

// Choice is an edge to another node. Desc is flavor text that is never sent
// to clients.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Desc string `json:"-"`
}

// Node is one scene of the story.
type Node struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Choices []Choice `json:"choices"`
}

// Terminal reports whether the node ends the story.
func (n Node) Terminal() bool { return len(n.Choices) == 0 }

// Graph is a static lookup of nodes by id.
type Graph struct {
	nodes map[string]Node
}

// NewGraph indexes nodes by id.
func NewGraph(nodes ...Node) *Graph {
	g := &Graph{nodes: make(map[string]Node, len(nodes))}
	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	return g
}

// Node returns the client payload for id: a copy with choice descriptions
// dropped and a non-nil choice list.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	out := Node{ID: n.ID, Text: n.Text, Choices: make([]Choice, len(n.Choices))}
	for i, c := range n.Choices {
		out.Choices[i] = Choice{ID: c.ID, Text: c.Text}
	}
	return out, true
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Citistate returns the Corporate Citistate story.
func Citistate() *Graph {
	return NewGraph(
		Node{ID: StartID, Text: "Welcome to Corporate Citistate, where neon halos crown glass towers and ambitions run vertical.", Choices: []Choice{
			{ID: "enter_tower", Text: "Enter the Corporate Tower", Desc: "A monolith of glass and compliance. Executive floors hum with curated power."},
			{ID: "explore_market", Text: "Explore the Neon Market", Desc: "Pop-up stalls broadcast firmware futures. Deals, debts, and data."},
		}},
		Node{ID: "enter_tower", Text: "Security gates hum. A biometric scanner watches with synthetic patience.", Choices: []Choice{
			{ID: "talk_guard", Text: "Talk to Security", Desc: "Ask for guidance. Speak softly. Let the system believe in you."},
			{ID: "sprint_elevator", Text: "Sprint for the Elevators", Desc: "Beat the lock. Ride momentum into the logistical heart."},
		}},
		Node{ID: "explore_market", Text: "The market glows with contraband firmware and corporate-approved dreams.", Choices: []Choice{
			{ID: "approach_vendor", Text: "Approach a Vendor", Desc: "They trade in possibilities. Prices fluctuate with your pulse."},
			{ID: "follow_drone", Text: "Follow a Courier Drone", Desc: "Shadow logistics gives away the city's respiration."},
		}},
		Node{ID: "talk_guard", Text: "The guard tilts their visor. \"Credentials?\" The city holds its breath.", Choices: []Choice{
			{ID: "flash_badge", Text: "Flash a Temporary Badge"},
			{ID: "retreat_lobby", Text: "Retreat to the Lobby"},
		}},
		Node{ID: "sprint_elevator", Text: "You dash. Doors slide. For an instant, the tower believes you belong.", Choices: []Choice{
			{ID: "penthouse", Text: "Aim for the Penthouse"},
			{ID: "data_floor", Text: "Descend to the Data Floor"},
		}},
		Node{ID: "approach_vendor", Text: "\"Looking for futures?\" the vendor grins, offering a glowing wafer.", Choices: []Choice{
			{ID: "buy_wafer", Text: "Buy the Quantum Wafer"},
			{ID: "decline_wafer", Text: "Decline Politely"},
		}},
		Node{ID: "follow_drone", Text: "The drone weaves alleys like a whisper, leading you to a loading dock.", Choices: []Choice{
			{ID: "dock_terminal", Text: "Access the Dock Terminal"},
			{ID: "hide_crates", Text: "Hide Among the Crates"},
		}},
		Node{ID: "flash_badge", Text: "The scanner blinks green. Access granted."},
		Node{ID: "retreat_lobby", Text: "You step back. The lobby orchestra resumes its hum."},
		Node{ID: "penthouse", Text: "The skyline unfolds like a ledger. You made it to the top, tonight."},
		Node{ID: "data_floor", Text: "Rows of servers breathe frost. Secrets sleep in patterns."},
		Node{ID: "buy_wafer", Text: "The wafer warms your palm. A future rewrites itself."},
		Node{ID: "decline_wafer", Text: "\"Wise,\" they smirk. Some futures cost too much."},
		Node{ID: "dock_terminal", Text: "Terminals chirp compliance. A portal opens."},
		Node{ID: "hide_crates", Text: "You vanish between shipments; the city forgets you, for now."},
	)
}
