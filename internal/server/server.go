package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/ChicagoDave/threadweaver/pkg/chat"
	"github.com/ChicagoDave/threadweaver/pkg/physics"
	"github.com/ChicagoDave/threadweaver/pkg/scene"
	"github.com/ChicagoDave/threadweaver/pkg/spec"
	"github.com/ChicagoDave/threadweaver/pkg/story"
	"github.com/ChicagoDave/threadweaver/pkg/world"
)

const (
	defaultFrameRate = 60
	maxFrameDelta    = 0.1
)

// Options configures a Server.
type Options struct {
	Port      int
	Config    spec.Config
	Chat      *chat.Handler
	Story     *story.Graph
	Logger    *log.Logger
	FrameRate int
}

// Server hosts one live world plus the chat proxy and story socket. The
// world is only touched with mu held, by the frame loop or a handler.
type Server struct {
	mu    sync.Mutex
	world *world.State

	chat      *chat.Handler
	story     *story.Handler
	logger    *log.Logger
	port      int
	frameRate int
}

// New builds the initial world and wires the handlers. A nil chat handler
// gets one configured from the environment with in-process memory.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = defaultFrameRate
	}
	if opts.Chat == nil {
		opts.Chat = chat.NewHandler(
			chat.NewOpenAIProvider(chat.OpenAIConfigFromEnv()),
			chat.NewMapStore(rand.New(rand.NewSource(time.Now().UnixNano()))),
			logger,
		)
	}
	if opts.Story == nil {
		opts.Story = story.Citistate()
	}

	worldLog := log.New(logger.Writer(), "[world] ", logger.Flags())
	return &Server{
		world:     world.New(opts.Config, scene.NewGraph(), physics.NewWorld(), world.WithLogger(worldLog)),
		chat:      opts.Chat,
		story:     story.NewHandler(opts.Story, logger),
		logger:    logger,
		port:      opts.Port,
		frameRate: opts.FrameRate,
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/scene", s.handleScene)
	mux.HandleFunc("GET /api/map", s.handleMap)
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleRebuild)
	mux.HandleFunc("GET /api/validation", s.handleValidation)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/player", s.handlePlayer)
	mux.HandleFunc("POST /api/punch", s.handlePunch)
	mux.HandleFunc("POST /api/interact", s.handleInteract)
	s.chat.Register(mux)
	mux.Handle("GET /ws/story", s.story)
	mux.HandleFunc("GET /", s.handleIndex)

	return mux
}

// Tick advances the world by dt seconds.
func (s *Server) Tick(dt float64) {
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.world.Frame(dt); a != nil {
		s.logger.Printf("punch landed on %s", a.NodeID())
	}
}

// Run drives the frame loop and serves HTTP until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.frameLoop(loopCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Threadweaver online at http://localhost%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}
