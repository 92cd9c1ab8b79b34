package mcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds the knobs a Client is built from. The zero Config is not
// meaningful on its own; use DefaultConfig or New's options to fill it in.
type Config struct {
	IP        string
	Port      int
	Format    ProtocolFormat
	NetworkNo byte
	PCNo      byte
	Timeout   time.Duration
}

// DefaultConfig matches the PLC's own factory defaults: station 192.168.10.100
// port 6000, binary encoding, network 0 / PC station 0xFF, and a 4 second
// request timeout.
func DefaultConfig() Config {
	return Config{
		IP:        "192.168.10.100",
		Port:      6000,
		Format:    FormatBinary,
		NetworkNo: 0x00,
		PCNo:      0xFF,
		Timeout:   4 * time.Second,
	}
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithConfig replaces the client's starting configuration wholesale.
func WithConfig(cfg Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithIP overrides the PLC's IPv4 address.
func WithIP(ip string) Option {
	return func(c *Client) { c.cfg.IP = ip }
}

// WithPort overrides the PLC's TCP port.
func WithPort(port int) Option {
	return func(c *Client) { c.cfg.Port = port }
}

// WithFormat selects the wire encoding.
func WithFormat(format ProtocolFormat) Option {
	return func(c *Client) { c.cfg.Format = format }
}

// WithStation overrides the network number and PC station number fields
// carried in every frame's outer header.
func WithStation(networkNo, pcNo byte) Option {
	return func(c *Client) { c.cfg.NetworkNo = networkNo; c.cfg.PCNo = pcNo }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.Timeout = d }
}

// WithOnDisconnect registers a hook invoked from the reader goroutine the
// moment the socket is observed to have dropped.
func WithOnDisconnect(fn func(error)) Option {
	return func(c *Client) { c.onDisconnect = fn }
}

// WithOnReconnect registers a hook invoked from the watchdog goroutine right
// after a dropped connection has been reopened.
func WithOnReconnect(fn func()) Option {
	return func(c *Client) { c.onReconnect = fn }
}

// Client is the public MC protocol 3E-frame PLC client: it composes frame
// assembly, the session's socket/reconnect machinery, and response parsing
// behind Connect/Disconnect/Read/Write/HealthCheck.
type Client struct {
	cfg Config

	onDisconnect func(error)
	onReconnect  func()

	session *Session
}

// New builds a disconnected Client. With no options it targets the PLC's
// factory-default address; callers that move the station will always pass
// WithIP/WithPort in practice.
func New(opts ...Option) *Client {
	c := &Client{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) frameOptions() FrameOptions {
	return FrameOptions{
		Format:       c.cfg.Format,
		NetworkNo:    c.cfg.NetworkNo,
		PCNo:         c.cfg.PCNo,
		TimeoutTicks: uint16(c.cfg.Timeout / (250 * time.Millisecond)),
	}
}

func validateIPv4(ip string) error {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return &InvalidIPError{IP: ip}
	}
	return nil
}

// Connect validates the configured address and opens the session,
// starting the reader and reconnect-watchdog goroutines.
func (c *Client) Connect() error {
	if err := validateIPv4(c.cfg.IP); err != nil {
		return err
	}
	if c.session == nil {
		c.session = NewSession(c.cfg.Timeout)
		c.session.onDisconnect = c.onDisconnect
		c.session.onReconnect = c.onReconnect
	} else {
		c.session.SetTimeout(c.cfg.Timeout)
	}
	addr := net.JoinHostPort(c.cfg.IP, strconv.Itoa(c.cfg.Port))
	return c.session.Connect(addr)
}

// Disconnect closes the session.
func (c *Client) Disconnect() error {
	if c.session == nil {
		return ErrNotOpen
	}
	return c.session.Disconnect()
}

// Refresh disconnects and reconnects to the same address, discarding any
// buffered state. Equivalent to calling Disconnect then Connect, but also
// usable while already connected.
func (c *Client) Refresh() error {
	if c.session == nil {
		return ErrNotOpen
	}
	return c.session.Refresh()
}

// IsConnected reports whether the underlying session currently holds an
// open socket.
func (c *Client) IsConnected() bool {
	return c.session != nil && c.session.IsConnected()
}

// Dispose releases the client's resources. It is safe to call on a client
// that was never connected.
func (c *Client) Dispose() error {
	if c.session == nil || !c.session.IsConnected() {
		return nil
	}
	return c.session.Disconnect()
}

func (c *Client) requireSession() (*Session, error) {
	if c.session == nil || !c.session.IsConnected() {
		return nil, ErrNotOpen
	}
	return c.session, nil
}

// --- reads ------------------------------------------------------------

// ReadOne performs a single-point (contiguous) read of item.NumPoints
// registers starting at item.Address.
func (c *Client) ReadOne(item ReadItem) (ReceiveItem, error) {
	session, err := c.requireSession()
	if err != nil {
		return ReceiveItem{}, err
	}
	opt := c.frameOptions()
	frame := BuildReadFrame(opt, item)
	raw, err := session.Request(frame)
	if err != nil {
		return ReceiveItem{}, err
	}
	payload, err := ParseResponse(opt, raw, int(item.NumPoints)*2)
	if err != nil {
		return ReceiveItem{}, err
	}
	return ReceiveItem{Device: item.Device, Address: item.Address, Raw: payload}, nil
}

// ReadMany performs a random read of multiple, independently addressed
// items in one round trip. Each item's NumPoints must be 1 (word) or 2
// (dword). Results are returned in the same order as items, regardless of
// the word-then-dword order the wire payload carries them in.
func (c *Client) ReadMany(items []ReadItem) ([]ReceiveItem, error) {
	session, err := c.requireSession()
	if err != nil {
		return nil, err
	}
	wordItems, dwordItems, err := classifyReadItems(items)
	if err != nil {
		return nil, err
	}

	opt := c.frameOptions()
	frame, err := BuildRandomReadFrame(opt, items)
	if err != nil {
		return nil, err
	}
	raw, err := session.Request(frame)
	if err != nil {
		return nil, err
	}
	expected := len(wordItems)*2 + len(dwordItems)*4
	payload, err := ParseResponse(opt, raw, expected)
	if err != nil {
		return nil, err
	}

	wordBytes := payload[:len(wordItems)*2]
	dwordBytes := payload[len(wordItems)*2:]

	out := make([]ReceiveItem, len(items))
	wordCursor, dwordCursor := 0, 0
	for i, it := range items {
		var raw []byte
		switch it.NumPoints {
		case 1:
			raw = wordBytes[wordCursor*2 : wordCursor*2+2]
			wordCursor++
		case 2:
			raw = dwordBytes[dwordCursor*4 : dwordCursor*4+4]
			dwordCursor++
		}
		out[i] = ReceiveItem{Device: it.Device, Address: it.Address, Raw: raw}
	}
	return out, nil
}

// --- writes -------------------------------------------------------------

// WriteOne performs a single-point write.
func (c *Client) WriteOne(item WriteItem) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}
	opt := c.frameOptions()
	frame, err := BuildWriteFrame(opt, item)
	if err != nil {
		return err
	}
	raw, err := session.Request(frame)
	if err != nil {
		return err
	}
	_, err = ParseResponse(opt, raw, 0)
	return err
}

// WriteMany performs a random write of multiple, independently addressed
// items. Bit-family and word/dword-family items are carried on separate
// frames and sent as two round trips when both families are present, the
// bit frame first; a failure on the bit frame aborts before the word/dword
// frame is sent.
func (c *Client) WriteMany(items []WriteItem) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}
	opt := c.frameOptions()
	frames, err := BuildRandomWriteFrames(opt, items)
	if err != nil {
		return err
	}
	for _, frame := range frames {
		raw, err := session.Request(frame)
		if err != nil {
			return err
		}
		if _, err := ParseResponse(opt, raw, 0); err != nil {
			return err
		}
	}
	return nil
}

// Read dispatches a SendItem built by ReadRequest to ReadOne. Passing a
// SendItem built by WriteRequest is a programmer error and returns
// ErrWrongMessageFormat.
func (c *Client) Read(item SendItem) (ReceiveItem, error) {
	if item.Read == nil {
		return ReceiveItem{}, ErrWrongMessageFormat
	}
	return c.ReadOne(*item.Read)
}

// Write dispatches a SendItem built by WriteRequest to WriteOne. Passing a
// SendItem built by ReadRequest is a programmer error and returns
// ErrWrongMessageFormat.
func (c *Client) Write(item SendItem) error {
	if item.Write == nil {
		return ErrWrongMessageFormat
	}
	return c.WriteOne(*item.Write)
}

// --- health check ---------------------------------------------------------

// HealthCheck sends the MC protocol loop-back test (command 0x0619) and
// verifies the PLC echoes the fixed payload back unchanged. It respects ctx
// cancellation in addition to the session's own request timeout.
func (c *Client) HealthCheck(ctx context.Context) error {
	session, err := c.requireSession()
	if err != nil {
		return err
	}
	opt := c.frameOptions()
	frame := BuildHealthCheckFrame(opt)

	type result struct {
		payload []byte
		err     error
	}
	done := make(chan result, 1)
	go func() {
		raw, err := session.Request(frame)
		if err != nil {
			done <- result{err: err}
			return
		}
		payload, err := ParseResponse(opt, raw, len(healthCheckPayload))
		done <- result{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return r.err
		}
		if string(r.payload) != healthCheckPayload {
			return fmt.Errorf("mcp: health check echo mismatch: got %q want %q", r.payload, healthCheckPayload)
		}
		return nil
	}
}
