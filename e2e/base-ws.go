package e2e

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"vitatrack/infrastructure/ws"
	"vitatrack/observability"
	"vitatrack/runtime"
)

const readTimeout = 2 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config
	url    string
	server *httptest.Server
}

// SetupSuite loads the environment configuration and starts a local server when none is targeted.
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.SignalAddr != "" {
		s.url = fmt.Sprintf("ws://%s/ws", s.Config.SignalAddr)
		return
	}
	log := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	coordinator := runtime.NewCoordinator(log, runtime.NewRelay(log, metrics), metrics)
	s.server = httptest.NewServer(ws.NewSignalingServer(log, coordinator, ws.DefaultOptions()))
	s.url = "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
}

// Peer is one websocket participant driven by a scenario.
// A single goroutine owns reads; Expect and ExpectSilence wait on its channel so
// no read deadline is ever left expired on the connection.
type Peer struct {
	Name   string
	suite  *BaseWsSuite
	conn   *websocket.Conn
	frames chan ws.Envelope
	closed chan struct{}
	err    error
}

func (s *BaseWsSuite) header(text string) {
	header := fmt.Sprintf("  ====== %s ======", text)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Connect opens a new peer connection.
func (s *BaseWsSuite) Connect(name string) *Peer {
	s.header("Connecting " + name)
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	s.Require().NoError(err)
	p := &Peer{
		Name:   name,
		suite:  s,
		conn:   conn,
		frames: make(chan ws.Envelope, 64),
		closed: make(chan struct{}),
	}
	go p.readLoop()
	return p
}

func (p *Peer) readLoop() {
	defer close(p.closed)
	for {
		var env ws.Envelope
		if err := p.conn.ReadJSON(&env); err != nil {
			p.err = err
			return
		}
		p.frames <- env
	}
}

func (p *Peer) Close() {
	_ = p.conn.Close()
}

func (p *Peer) Send(event string, data any) {
	raw, err := json.Marshal(data)
	p.suite.Require().NoError(err)
	p.trace("->", event, raw)
	p.suite.Require().NoError(p.conn.WriteJSON(ws.Envelope{Event: event, Data: raw}))
}

// next returns the next frame, false when none arrives within wait.
func (p *Peer) next(wait time.Duration) (ws.Envelope, bool) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case env := <-p.frames:
		return env, true
	case <-p.closed:
		// Frames buffered before the connection ended still count.
		select {
		case env := <-p.frames:
			return env, true
		default:
		}
		p.suite.Require().FailNow("connection closed", "%s: %v", p.Name, p.err)
		return ws.Envelope{}, false
	case <-timer.C:
		return ws.Envelope{}, false
	}
}

// Expect waits for the next frame and requires it to be named event.
func (p *Peer) Expect(event string) json.RawMessage {
	env, ok := p.next(readTimeout)
	p.suite.Require().True(ok, "%s timed out waiting for %s", p.Name, event)
	p.trace("<-", env.Event, env.Data)
	p.suite.Require().Equal(event, env.Event, "%s got an unexpected event", p.Name)
	return env.Data
}

// ExpectSilence requires no frame to arrive within wait. The connection stays usable.
func (p *Peer) ExpectSilence(wait time.Duration) {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case env := <-p.frames:
		p.suite.Require().Failf("unexpected frame", "%s received %s", p.Name, env.Event)
	case <-timer.C:
	}
}

func (p *Peer) trace(direction, event string, data json.RawMessage) {
	if !p.suite.Config.DebugJSON {
		return
	}
	line := fmt.Sprintf("%s %s %s %s", p.Name, direction, event, string(data))
	if p.suite.Config.Colours {
		line = color.FgCyan.Render(line)
	}
	p.suite.T().Log(line)
}
