package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/chat"
	"github.com/ChicagoDave/threadweaver/pkg/physics"
	"github.com/ChicagoDave/threadweaver/pkg/player"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

const (
	walkTick       = time.Second / 60
	walkFrame      = float64(walkTick) / float64(time.Second)
	framesPerInput = 15
	lookStep       = math.Pi / 12
	chatWait       = 25 * time.Second
)

const walkHelp = `commands:
  lock | unlock            capture or release the controls
  w a s d | jump | stop    hold a movement key (toggle), jump, release all
  left | right | up | down turn the camera by 15 degrees
  wait [frames]            let the world run
  punch                    swing at whatever is in front of you
  talk                     start talking to the pedestrian you face
  say <text>               speak in the open conversation
  bye                      end the conversation and take the controls back
  where | stats            position, world counts
  quit`

// walkSession is a terminal front end for one local world. It is single
// threaded: every command advances the frame loop on this goroutine.
type walkSession struct {
	world    *world.State
	dialogue *chat.Dialogue
	out      io.Writer
}

func runWalk(in io.Reader, out io.Writer, projectPath, chatURL string) error {
	cfg, err := loadConfig(projectPath)
	if err != nil {
		return err
	}
	logger := log.New(out, "[world] ", 0)
	s := &walkSession{
		world:    world.New(cfg, scene.NewGraph(), physics.NewWorld(), world.WithLogger(logger)),
		dialogue: chat.NewDialogue(chat.NewClient(chatURL, nil), rand.New(rand.NewSource(time.Now().UnixNano()))),
		out:      out,
	}
	fmt.Fprintln(out, walkHelp)

	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		if !s.exec(strings.TrimSpace(sc.Text())) {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

// exec runs one command and reports whether the session continues.
func (s *walkSession) exec(line string) bool {
	cmd, arg, _ := strings.Cut(line, " ")
	p := s.world.Player
	frames := framesPerInput

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(s.out, walkHelp)
		frames = 0
	case "lock":
		p.Lock()
	case "unlock":
		p.Unlock()
	case "w":
		p.Keys.Forward = !p.Keys.Forward
	case "s":
		p.Keys.Backward = !p.Keys.Backward
	case "a":
		p.Keys.Left = !p.Keys.Left
	case "d":
		p.Keys.Right = !p.Keys.Right
	case "jump":
		p.Keys.Jump = true
		s.run(1)
		p.Keys.Jump = false
	case "stop":
		p.Keys = player.Keys{}
	case "left":
		p.Look(lookStep, 0)
	case "right":
		p.Look(-lookStep, 0)
	case "up":
		p.Look(0, lookStep)
	case "down":
		p.Look(0, -lookStep)
	case "wait":
		if n, err := strconv.Atoi(arg); err == nil && n > 0 {
			frames = n
		}
	case "punch":
		if !s.world.Punch() {
			fmt.Fprintln(s.out, "you need the controls (lock) and a free arm")
		}
	case "talk":
		a, ok := s.world.Interact()
		if !ok {
			fmt.Fprintln(s.out, "nobody to talk to")
			break
		}
		persona := s.dialogue.Open(a.NodeID())
		fmt.Fprintf(s.out, "talking to %s\n", persona.Title())
		s.await()
		frames = 0
	case "say":
		if !s.dialogue.Send(arg) {
			fmt.Fprintln(s.out, "say what, to whom?")
			break
		}
		s.await()
		frames = 0
	case "bye":
		s.dialogue.Close()
		p.Lock()
	case "where":
		c := p.Camera()
		fmt.Fprintf(s.out, "%s at (%.1f, %.1f, %.1f) facing %.0f deg, ground=%v\n",
			p.State(), c.X, c.Y, c.Z, p.Yaw*180/math.Pi, p.OnGround())
		if a, d := s.world.Agents.Nearest(c); a != nil {
			fmt.Fprintf(s.out, "nearest: %s, %.1fm\n", a.Kind, d)
		} else {
			fmt.Fprintln(s.out, "nearest: nobody")
		}
		frames = 0
	case "stats":
		printStats(s.out, s.world.Stats())
		frames = 0
	default:
		fmt.Fprintf(s.out, "unknown command %q (try help)\n", cmd)
		frames = 0
	}
	s.run(frames)
	return true
}

func (s *walkSession) run(frames int) {
	for i := 0; i < frames; i++ {
		if a := s.world.Frame(walkFrame); a != nil {
			fmt.Fprintf(s.out, "*thwack* %s staggers back\n", a.Kind)
		}
		s.printReplies()
	}
}

// await keeps the world running until the reply to the last request
// arrives or the client gives up.
func (s *walkSession) await() {
	deadline := time.Now().Add(chatWait)
	for time.Now().Before(deadline) {
		if s.printReplies() > 0 {
			return
		}
		s.world.Frame(walkFrame)
		time.Sleep(walkTick)
	}
}

func (s *walkSession) printReplies() int {
	replies := s.dialogue.Poll()
	for _, r := range replies {
		p, _ := s.dialogue.Persona(r.AgentID)
		fmt.Fprintf(s.out, "%s: %s\n", p.Name, r.Text)
	}
	return len(replies)
}
