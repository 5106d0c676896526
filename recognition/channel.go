package recognition

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"github.com/coder/websocket"

	"github.com/scrivenapp/scriven/internal/types"
)

// DefaultStreamURL is the default streaming recognition endpoint.
const DefaultStreamURL = "wss://api.assemblyai.com/v2/realtime/ws"

// State is the lifecycle state of a Channel.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

// ChannelConfig configures a streaming channel.
type ChannelConfig struct {
	BaseURL    string   // streaming endpoint, DefaultStreamURL when empty
	Token      string   // session token from TokenClient.Fetch
	SampleRate int      // PCM sample rate of outbound frames
	WordBoost  []string // vocabulary hint phrases
}

// Channel is a persistent bidirectional connection to the recognition
// service. Outbound messages are raw binary audio frames; inbound
// transcript events are delivered on a single ordered channel exactly
// as they arrive off the wire.
type Channel struct {
	cfg ChannelConfig

	mu    sync.Mutex
	state State
	conn  *websocket.Conn

	events chan types.TranscriptEvent
	done   chan struct{}
	err    error

	closeOnce sync.Once
}

// NewChannel creates an unconnected channel. Call Open to connect.
func NewChannel(cfg ChannelConfig) *Channel {
	return &Channel{
		cfg:    cfg,
		events: make(chan types.TranscriptEvent, 64),
		done:   make(chan struct{}),
	}
}

// Open establishes the websocket connection and starts the read loop.
func (c *Channel) Open(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("channel already opened")
	}
	c.state = StateConnecting
	c.mu.Unlock()

	wsURL, err := c.buildURL()
	if err != nil {
		c.setState(StateClosed)
		return fmt.Errorf("build stream URL: %w", err)
	}

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		c.setState(StateClosed)
		return fmt.Errorf("websocket dial: %w", err)
	}
	// Frames are small; the default read limit is for inbound JSON only.

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// buildURL parameterizes the endpoint with sample rate, token, and the
// URL-encoded JSON array of vocabulary-boost phrases.
func (c *Channel) buildURL() (string, error) {
	base := c.cfg.BaseURL
	if base == "" {
		base = DefaultStreamURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("sample_rate", strconv.Itoa(c.cfg.SampleRate))
	q.Set("token", c.cfg.Token)
	if len(c.cfg.WordBoost) > 0 {
		boost, err := json.Marshal(c.cfg.WordBoost)
		if err != nil {
			return "", err
		}
		q.Set("word_boost", string(boost))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Events returns the ordered stream of inbound transcript events. The
// channel is closed when the connection ends for any reason. Consumers
// must drain it until it closes; reads are never dropped on their
// behalf.
func (c *Channel) Events() <-chan types.TranscriptEvent {
	return c.events
}

// Done is closed when the read loop has exited, whether gracefully or
// not. After Done, Err reports the terminal error, if any.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that ended the connection, or nil after a clean
// close. Only valid after Done.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State returns the current channel state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send forwards one audio frame, best-effort. Frames sent while the
// channel is not open are dropped silently: audio is real-time and a
// stale frame has no value. Send never returns an error to the capture
// path.
func (c *Channel) Send(frame []byte) {
	c.mu.Lock()
	if c.state != StateOpen || c.conn == nil {
		c.mu.Unlock()
		return
	}
	conn := c.conn
	c.mu.Unlock()

	if err := conn.Write(context.Background(), websocket.MessageBinary, frame); err != nil {
		// The read loop surfaces the terminal error; individual frame
		// writes stay fire-and-forget.
		slog.Debug("dropped audio frame", "error", err)
	}
}

// Close performs the graceful termination handshake: a terminate
// control message when the channel is open or opening, then the
// underlying close. Closing an already-closed channel is a no-op.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		active := c.state == StateOpen || c.state == StateConnecting
		c.state = StateClosing
		c.mu.Unlock()

		if conn != nil && active {
			terminate := []byte(`{"terminate_session": true}`)
			if err := conn.Write(context.Background(), websocket.MessageText, terminate); err != nil {
				slog.Debug("terminate handshake", "error", err)
			}
		}
		if conn != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "session terminated")
		}
		c.setState(StateClosed)
	})
	return nil
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// serverMessage is the inbound wire format. Messages without text, or
// with an unknown message_type, are ignored.
type serverMessage struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
}

// parseServerMessage maps a raw inbound message to a transcript event.
// Returns false for messages that should be ignored.
func parseServerMessage(data []byte) (types.TranscriptEvent, bool) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Debug("unparseable server message", "error", err)
		return types.TranscriptEvent{}, false
	}
	if msg.Text == "" {
		return types.TranscriptEvent{}, false
	}
	switch msg.MessageType {
	case "PartialTranscript":
		return types.TranscriptEvent{Kind: types.Partial, Text: msg.Text}, true
	case "FinalTranscript":
		return types.TranscriptEvent{Kind: types.Final, Text: msg.Text}, true
	default:
		return types.TranscriptEvent{}, false
	}
}

// readLoop receives inbound messages and publishes transcript events in
// arrival order until the connection ends.
func (c *Channel) readLoop() {
	defer close(c.done)
	defer close(c.events)

	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			c.mu.Lock()
			if c.state != StateClosing && c.state != StateClosed {
				// Abnormal termination; the session routes this into
				// its stop path.
				c.err = err
			}
			c.mu.Unlock()
			return
		}

		ev, ok := parseServerMessage(data)
		if !ok {
			continue
		}
		// Blocking send: a transcript is never discarded. The consumer
		// drains Events until it closes, so a full buffer only means
		// momentary backpressure on the socket reader.
		c.events <- ev
	}
}
