package mcp

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	readerChunkSize = 256
	watchdogTick    = 1 * time.Second
	queuePollTick   = 10 * time.Millisecond
)

// inboundQueue is the FIFO of whole response buffers the reader goroutine
// produces and the request path drains, one buffer per request. It is its
// own small lock rather than borrowing the communication mutex, matching
// the "inbound queue is guarded by its own mutex" resource rule.
type inboundQueue struct {
	mu  sync.Mutex
	buf [][]byte
}

func (q *inboundQueue) push(b []byte) {
	q.mu.Lock()
	q.buf = append(q.buf, b)
	q.mu.Unlock()
}

func (q *inboundQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return nil, false
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	return b, true
}

// clear drops any buffered responses. Called after a timeout so a stray
// response already queued is not delivered to the next request; a response
// that arrives after the clear is still queued and is popped by the next
// request.
func (q *inboundQueue) clear() {
	q.mu.Lock()
	q.buf = nil
	q.mu.Unlock()
}

// Session owns the TCP socket, the reader goroutine, the reconnect
// watchdog, and the inbound response queue for one PLC connection. Exactly
// one request may be in flight at a time, serialized by commMu.
type Session struct {
	connected atomic.Bool

	addrMu sync.Mutex
	addr   string

	connMu sync.Mutex
	conn   net.Conn

	commMu sync.Mutex
	inbox  inboundQueue

	timeoutMu sync.RWMutex
	timeout   time.Duration

	shutdown     chan struct{}
	readerExited chan struct{}

	limiter *rate.Limiter

	onDisconnect func(error)
	onReconnect  func()
}

// NewSession constructs a disconnected Session. timeout is the request
// deadline. The session's reconnect limiter bounds how often the watchdog
// may attempt a fresh dial (roughly one per second, per the watchdog tick,
// with a small burst so a long outage's backlog drains quickly once the
// PLC comes back).
func NewSession(timeout time.Duration) *Session {
	return &Session{
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Every(watchdogTick), 3),
	}
}

// IsConnected is a side-effect-free, lock-free load — callers must not need
// the communication mutex to check connection status.
func (s *Session) IsConnected() bool {
	return s.connected.Load()
}

// SetTimeout updates the request deadline. It takes effect on the next
// request; a request already waiting on a response is not affected.
func (s *Session) SetTimeout(d time.Duration) {
	s.timeoutMu.Lock()
	s.timeout = d
	s.timeoutMu.Unlock()
}

func (s *Session) getTimeout() time.Duration {
	s.timeoutMu.RLock()
	defer s.timeoutMu.RUnlock()
	return s.timeout
}

// Connect dials addr and starts the reader and watchdog goroutines.
func (s *Session) Connect(addr string) error {
	if s.IsConnected() {
		return ErrAlreadyOpen
	}

	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return &TransportError{Err: err}
	}

	s.addrMu.Lock()
	s.addr = addr
	s.addrMu.Unlock()

	readerExited := make(chan struct{})
	s.connMu.Lock()
	s.conn = conn
	s.readerExited = readerExited
	s.connMu.Unlock()

	s.shutdown = make(chan struct{})
	s.inbox.clear()
	s.connected.Store(true)

	go s.readLoop(conn, readerExited)
	go s.watchdogLoop()

	return nil
}

// Disconnect closes the socket and stops the reader and watchdog, waiting
// for the reader to exit before returning.
func (s *Session) Disconnect() error {
	if !s.IsConnected() {
		return ErrNotOpen
	}
	s.connected.Store(false)
	close(s.shutdown)

	s.connMu.Lock()
	conn := s.conn
	readerExited := s.readerExited
	s.connMu.Unlock()
	if conn != nil {
		if tcp, ok := conn.(*net.TCPConn); ok {
			tcp.SetLinger(0)
			_ = tcp.CloseRead()
		}
		_ = conn.Close()
	}

	if readerExited != nil {
		<-readerExited
	}
	s.inbox.clear()
	return nil
}

// Refresh disconnects and reconnects to the same address.
func (s *Session) Refresh() error {
	addr := s.currentAddr()
	if s.IsConnected() {
		if err := s.Disconnect(); err != nil {
			return err
		}
	}
	return s.Connect(addr)
}

func (s *Session) currentAddr() string {
	s.addrMu.Lock()
	defer s.addrMu.Unlock()
	return s.addr
}

// readLoop is the dedicated reader goroutine: it blocks on the socket,
// reassembling a response out of consecutive 256-byte reads, and enqueues
// each assembled buffer for the request path. It exits silently on any
// socket error, leaving reconnection to the watchdog. conn and done are
// captured at goroutine start so a later reconnect's fresh socket and done
// channel never alias this generation's.
func (s *Session) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	for {
		buf, err := readOneResponse(conn)
		if err != nil {
			s.connected.Store(false)
			if s.onDisconnect != nil {
				s.onDisconnect(&TransportError{Err: err})
			}
			return
		}
		if len(buf) > 0 {
			s.inbox.push(buf)
		}

		select {
		case <-s.shutdown:
			return
		default:
		}
	}
}

// readOneResponse reads one logical PLC response: repeated 256-byte reads
// until a short read closes out the frame.
func readOneResponse(conn net.Conn) ([]byte, error) {
	var out []byte
	for {
		chunk := make([]byte, readerChunkSize)
		n, err := conn.Read(chunk)
		if n > 0 {
			out = append(out, chunk[:n]...)
		}
		if err != nil {
			return out, err
		}
		if n < readerChunkSize {
			return out, nil
		}
	}
}

// watchdogLoop sleeps one tick, and if the session has dropped, reconnects
// it. Reconnect attempts are rate-limited so a prolonged outage does not
// dial faster than the documented one-second cadence.
func (s *Session) watchdogLoop() {
	ticker := time.NewTicker(watchdogTick)
	defer ticker.Stop()
	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			if s.IsConnected() {
				continue
			}
			select {
			case <-s.shutdown:
				return
			default:
			}
			if !s.limiter.Allow() {
				continue
			}
			if err := s.reconnect(); err != nil {
				log.Printf("mcp: watchdog reconnect failed: %v", err)
				continue
			}
			if s.onReconnect != nil {
				s.onReconnect()
			}
		}
	}
}

func (s *Session) reconnect() error {
	addr := s.currentAddr()
	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	if err != nil {
		return err
	}

	readerExited := make(chan struct{})
	s.connMu.Lock()
	s.conn = conn
	s.readerExited = readerExited
	s.connMu.Unlock()

	s.inbox.clear()
	s.connected.Store(true)

	go s.readLoop(conn, readerExited)
	return nil
}

// Request serializes (write frame, await one response) under the
// communication mutex and returns the raw response bytes. The caller (the
// public API, which knows the frame's semantics) is responsible for frame
// assembly and response parsing.
func (s *Session) Request(frame []byte) ([]byte, error) {
	if !s.IsConnected() {
		return nil, ErrNotOpen
	}

	s.commMu.Lock()
	defer s.commMu.Unlock()

	s.connMu.Lock()
	conn := s.conn
	s.connMu.Unlock()
	if conn == nil {
		return nil, ErrNotOpen
	}

	if _, err := conn.Write(frame); err != nil {
		s.connected.Store(false)
		return nil, &TransportError{Err: err}
	}

	deadline := time.Now().Add(s.getTimeout())
	for {
		if buf, ok := s.inbox.pop(); ok {
			return buf, nil
		}
		if time.Now().After(deadline) {
			s.inbox.clear()
			return nil, ErrTimeout
		}
		time.Sleep(queuePollTick)
	}
}
