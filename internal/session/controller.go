package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
	"github.com/jeettech-root/QuickShare-P2P/internal/signaling"
	"github.com/jeettech-root/QuickShare-P2P/internal/transfer"
)

// KeepaliveInterval is how often a connected session pings its peer.
const KeepaliveInterval = 4 * time.Second

var (
	ErrStopped    = errors.New("session controller stopped")
	ErrNoIdentity = errors.New("no identity assigned yet")
	ErrNoTarget   = errors.New("no peer identity given")
	ErrSelfCall   = errors.New("cannot call yourself")
	ErrNoCall     = errors.New("no incoming call to accept")
)

// Signaler sends call requests and answers through the relay.
type Signaler interface {
	CallUser(target string, offer peer.Descriptor, from, name string) error
	AnswerCall(to string, answer peer.Descriptor) error
}

type UpdateKind int

const (
	UpdateState UpdateKind = iota
	UpdateIdentity
	UpdateChat
	UpdateProgress
	UpdateFile
	UpdateFault
)

// Update is delivered to the observer from the controller's loop.
type Update struct {
	Kind    UpdateKind
	Session Session

	Chat transfer.ChatMessage

	Direction transfer.Direction
	FileName  string
	FileSize  int64
	Progress  int
	File      *transfer.ReceivedFile

	Err error
}

type Options struct {
	Factory  peer.Factory
	Signaler Signaler

	// DisplayName is announced to peers we call.
	DisplayName string

	// ChunkSize overrides the file chunk size; zero keeps the default.
	ChunkSize int

	KeepaliveInterval time.Duration

	// Observer must not block; it runs on the loop.
	Observer func(Update)

	Logger *slog.Logger
}

// Snapshot is a consistent copy of the controller's state.
type Snapshot struct {
	Session Session
	Chat    []transfer.ChatMessage
}

// Controller is the session context: it owns the one Session and the one
// transport link. Signaling events, link events, user commands and the
// keepalive ticker are all serialized on the goroutine running Run.
type Controller struct {
	factory     peer.Factory
	signaler    Signaler
	displayName string
	chunkSize   int
	keepalive   time.Duration
	observer    func(Update)
	logger      *slog.Logger

	actions chan func()
	stopped chan struct{}

	// owned by the loop
	session  Session
	link     peer.Link
	gen      uint64
	codec    protocol.Codec
	receiver *transfer.Receiver
	offer    *peer.Descriptor
	chat     *transfer.ChatLog
}

func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	keepalive := opts.KeepaliveInterval
	if keepalive <= 0 {
		keepalive = KeepaliveInterval
	}
	observer := opts.Observer
	if observer == nil {
		observer = func(Update) {}
	}

	return &Controller{
		factory:     opts.Factory,
		signaler:    opts.Signaler,
		displayName: opts.DisplayName,
		chunkSize:   opts.ChunkSize,
		keepalive:   keepalive,
		observer:    observer,
		logger:      logger.With("component", "session"),
		actions:     make(chan func(), 64),
		stopped:     make(chan struct{}),
		chat:        transfer.NewChatLog(),
		codec:       protocol.LegacyCodec{},
	}
}

// Run processes events until ctx is cancelled. The current link is
// disposed and the keepalive ticker stopped before it returns.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.keepalive)
	defer func() {
		ticker.Stop()
		c.disposeLink()
		close(c.stopped)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-c.actions:
			fn()
		case <-ticker.C:
			c.sendKeepalive()
		}
	}
}

// do runs fn on the loop and waits for it.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	select {
	case c.actions <- func() { fn(); close(done) }:
	case <-c.stopped:
		return ErrStopped
	}

	select {
	case <-done:
		return nil
	case <-c.stopped:
		return ErrStopped
	}
}

// post queues fn without waiting. Used from transport callbacks.
func (c *Controller) post(fn func()) {
	select {
	case c.actions <- fn:
	case <-c.stopped:
	}
}

func (c *Controller) emit(u Update) {
	u.Session = c.session
	c.observer(u)
}

func (c *Controller) fault(err error) {
	c.logger.Warn("session fault", "state", c.session.State.String(), "error", err)
	c.emit(Update{Kind: UpdateFault, Err: err})
}

// transition applies ev and notifies on success.
func (c *Controller) transition(ev Event) bool {
	before := c.session.State
	if err := c.session.Apply(ev); err != nil {
		c.logger.Debug("transition rejected", "error", err)
		return false
	}
	c.logger.Info("session transition", "event", ev.String(), "from", before.String(), "to", c.session.State.String())
	c.emit(Update{Kind: UpdateState})
	return true
}

// SetIdentity records the identity the relay assigned to us.
func (c *Controller) SetIdentity(id string) error {
	return c.do(func() {
		c.session.LocalID = id
		c.emit(Update{Kind: UpdateIdentity})
	})
}

// Call starts an outbound call to target, superseding any call that is
// not yet connected.
func (c *Controller) Call(target string) error {
	var err error
	if stopErr := c.do(func() { err = c.call(strings.TrimSpace(target)) }); stopErr != nil {
		return stopErr
	}
	return err
}

func (c *Controller) call(target string) error {
	switch {
	case target == "":
		return ErrNoTarget
	case c.session.LocalID == "":
		return ErrNoIdentity
	case target == c.session.LocalID:
		return ErrSelfCall
	}

	if _, ok := Next(c.session.State, EventDial); !ok {
		return fmt.Errorf("%w: dial while %s", ErrInvalidTransition, c.session.State)
	}

	if err := c.replaceLink(peer.Initiator); err != nil {
		c.fault(err)
		return err
	}

	c.offer = nil
	c.codec = protocol.LegacyCodec{}
	c.session = Session{
		LocalID:  c.session.LocalID,
		RemoteID: target,
		Role:     peer.Initiator,
		State:    c.session.State,
	}
	c.transition(EventDial)
	return nil
}

// HandleIncomingCall stores a relayed call request. Calls arriving while
// calling, connected or after accepting are ignored.
func (c *Controller) HandleIncomingCall(call signaling.IncomingCall) error {
	return c.do(func() { c.handleIncomingCall(call) })
}

func (c *Controller) handleIncomingCall(call signaling.IncomingCall) {
	candidate := c.session
	if err := candidate.Apply(EventIncomingCall); err != nil {
		c.logger.Info("ignoring incoming call", "from", call.From, "state", c.session.State.String())
		return
	}

	c.disposeLink()
	offer := call.Signal
	c.offer = &offer
	c.codec = protocol.SelectCodec(call.ClientType)
	c.session = Session{
		LocalID:        c.session.LocalID,
		RemoteID:       call.From,
		RemoteName:     call.Name,
		PeerClientType: call.ClientType,
		Role:           peer.Responder,
		State:          c.session.State,
	}
	c.logger.Debug("codec selected", "codec", c.codec.Name(), "peer", call.ClientType)
	c.transition(EventIncomingCall)
}

// Accept answers the pending incoming call.
func (c *Controller) Accept() error {
	var err error
	if stopErr := c.do(func() { err = c.accept() }); stopErr != nil {
		return stopErr
	}
	return err
}

func (c *Controller) accept() error {
	if c.session.State != Ringing || c.session.Accepted || c.offer == nil {
		return ErrNoCall
	}

	if err := c.replaceLink(peer.Responder); err != nil {
		c.fault(err)
		return err
	}
	c.transition(EventAccept)

	offer := *c.offer
	c.offer = nil
	if err := c.link.Signal(offer); err != nil {
		c.fail(fmt.Errorf("apply offer: %w", err))
		return err
	}
	return nil
}

// HandleCallAccepted forwards the callee's answer to the link at once.
func (c *Controller) HandleCallAccepted(acc signaling.CallAccepted) error {
	return c.do(func() { c.handleCallAccepted(acc) })
}

func (c *Controller) handleCallAccepted(acc signaling.CallAccepted) {
	if c.session.State != Calling || c.link == nil {
		c.logger.Info("ignoring call accepted", "from", acc.From, "state", c.session.State.String())
		return
	}
	if acc.From != "" && acc.From != c.session.RemoteID {
		c.logger.Info("ignoring answer from superseded call", "from", acc.From, "calling", c.session.RemoteID)
		return
	}

	c.codec = protocol.SelectCodec(acc.ClientType)
	c.session.PeerClientType = acc.ClientType
	c.logger.Debug("codec selected", "codec", c.codec.Name(), "peer", acc.ClientType)

	if err := c.link.Signal(acc.Signal); err != nil {
		c.fail(fmt.Errorf("apply answer: %w", err))
	}
}

// SendChat sends text to the connected peer and records it locally. A
// failed send is reported as a fault and leaves the state unchanged.
func (c *Controller) SendChat(text string) error {
	var err error
	if stopErr := c.do(func() { err = c.sendChat(text) }); stopErr != nil {
		return stopErr
	}
	return err
}

func (c *Controller) sendChat(text string) error {
	if c.session.State != Connected || c.link == nil {
		c.fault(transfer.ErrNotConnected)
		return transfer.ErrNotConnected
	}

	if err := transfer.SendChat(c.link, c.codec, text); err != nil {
		c.fault(err)
		return err
	}

	msg := c.chat.Append(transfer.Local, text)
	c.emit(Update{Kind: UpdateChat, Chat: msg})
	return nil
}

// SendFile frames file onto the current link. It runs on the caller's
// goroutine; progress updates are delivered through the loop.
func (c *Controller) SendFile(ctx context.Context, file transfer.OutgoingFile) error {
	var (
		link  peer.Link
		codec protocol.Codec
	)
	if err := c.do(func() {
		if c.session.State == Connected && c.link != nil {
			link, codec = c.link, c.codec
		}
	}); err != nil {
		return err
	}
	if link == nil {
		c.post(func() { c.fault(transfer.ErrNotConnected) })
		return transfer.ErrNotConnected
	}

	size := int64(len(file.Data))
	sender := transfer.NewFileSender(link, codec, c.chunkSize)
	err := sender.Send(ctx, file, func(percent int) {
		c.post(func() {
			c.emit(Update{
				Kind:      UpdateProgress,
				Direction: transfer.Outbound,
				FileName:  file.Name,
				FileSize:  size,
				Progress:  percent,
			})
		})
	})
	if err != nil {
		c.post(func() { c.fault(err) })
	}
	return err
}

// Hangup closes the current link, or declines a ringing call.
func (c *Controller) Hangup() error {
	return c.do(func() {
		c.disposeLink()
		c.offer = nil
		c.transition(EventClosed)
	})
}

func (c *Controller) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := c.do(func() {
		s = Snapshot{Session: c.session, Chat: c.chat.Messages()}
	})
	return s, err
}

func (c *Controller) sendKeepalive() {
	if c.session.State != Connected || c.link == nil {
		return
	}
	p, err := c.codec.Encode(protocol.Keepalive())
	if err != nil {
		return
	}
	if err := c.link.Send(p); err != nil {
		c.logger.Debug("keepalive failed", "error", err)
	}
}

// replaceLink disposes the current link before creating its successor.
// Events from earlier generations are dropped.
func (c *Controller) replaceLink(role peer.Role) error {
	c.disposeLink()

	c.gen++
	gen := c.gen
	link, err := c.factory.NewLink(role, c.handlersFor(gen))
	if err != nil {
		return fmt.Errorf("create %s link: %w", role, err)
	}

	c.link = link
	c.receiver = transfer.NewReceiver(c.chat)
	return nil
}

func (c *Controller) disposeLink() {
	if c.link == nil {
		return
	}
	old := c.link
	c.link = nil
	c.gen++
	if err := old.Close(); err != nil {
		c.logger.Debug("closing link", "error", err)
	}
}

func (c *Controller) handlersFor(gen uint64) peer.Handlers {
	return peer.Handlers{
		OnDescriptor: func(d peer.Descriptor) {
			c.post(func() { c.onDescriptor(gen, d) })
		},
		OnConnect: func() {
			c.post(func() { c.onConnect(gen) })
		},
		OnData: func(p protocol.Payload) {
			c.post(func() { c.onData(gen, p) })
		},
		OnClose: func() {
			c.post(func() { c.onClose(gen) })
		},
		OnError: func(err error) {
			c.post(func() { c.onError(gen, err) })
		},
	}
}

func (c *Controller) stale(gen uint64, what string) bool {
	if gen == c.gen && c.link != nil {
		return false
	}
	c.logger.Debug("dropping stale link event", "event", what, "generation", gen, "current", c.gen)
	return true
}

func (c *Controller) onDescriptor(gen uint64, d peer.Descriptor) {
	if c.stale(gen, "descriptor") {
		return
	}

	var err error
	switch {
	case c.session.Role == peer.Initiator && c.session.State == Calling:
		err = c.signaler.CallUser(c.session.RemoteID, d, c.session.LocalID, c.displayName)
	case c.session.Role == peer.Responder && c.session.State == Ringing && c.session.Accepted:
		err = c.signaler.AnswerCall(c.session.RemoteID, d)
	default:
		c.logger.Debug("descriptor not needed", "state", c.session.State.String())
		return
	}
	if err != nil {
		c.fault(fmt.Errorf("signal %s: %w", d.Type, err))
	}
}

func (c *Controller) onConnect(gen uint64) {
	if c.stale(gen, "connect") {
		return
	}
	c.transition(EventConnected)
}

func (c *Controller) onData(gen uint64, p protocol.Payload) {
	if c.stale(gen, "data") {
		return
	}

	frame, err := c.codec.Decode(p)
	if err != nil {
		c.logger.Warn("dropping frame", "codec", c.codec.Name(), "error", err)
		return
	}

	d := c.receiver.Accept(frame)

	if d.Chat != nil {
		c.emit(Update{Kind: UpdateChat, Chat: *d.Chat})
	}
	if d.ProgressChanged {
		u := Update{Kind: UpdateProgress, Direction: transfer.Inbound, Progress: d.Progress}
		if d.File != nil {
			u.FileName, u.FileSize = d.File.Name, int64(len(d.File.Data))
		} else if meta, ok := c.receiver.Pending(); ok {
			u.FileName, u.FileSize = meta.Name, int64(meta.Size)
		}
		c.emit(u)
	}
	if d.File != nil {
		c.emit(Update{Kind: UpdateFile, File: d.File, Direction: transfer.Inbound})
	}
}

func (c *Controller) onClose(gen uint64) {
	if c.stale(gen, "close") {
		return
	}
	c.disposeLink()
	c.transition(EventClosed)
}

func (c *Controller) onError(gen uint64, err error) {
	if c.stale(gen, "error") {
		return
	}
	c.fail(err)
}

// fail handles a transport-level error: the link is dropped and the
// session moves to Error.
func (c *Controller) fail(err error) {
	c.disposeLink()
	c.fault(err)
	c.transition(EventError)
}
