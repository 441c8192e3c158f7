package peer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeettech-root/QuickShare-P2P/internal/config"
	"github.com/jeettech-root/QuickShare-P2P/internal/protocol"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
	pion "github.com/pion/webrtc/v4"
)

// ChannelLabel names the single data channel.
const ChannelLabel = "quickshare"

// PionFactory creates WebRTC links with trickle ICE disabled.
type PionFactory struct {
	ICEServers []pion.ICEServer
	Policy     pion.ICETransportPolicy

	// IncludeLoopback gathers 127.0.0.1 candidates, used for local tests.
	IncludeLoopback bool

	Logger *slog.Logger
}

// NewPionFactory builds the ICE configuration from cfg. Relay-only policy
// is used when forced or when the host looks like it sits behind a VPN or
// CGNAT, and only if a TURN server is configured.
func NewPionFactory(cfg *config.Config, logger *slog.Logger) *PionFactory {
	var iceServers []pion.ICEServer
	if stun := cfg.GetSTUNServers(); stun != nil {
		iceServers = append(iceServers, pion.ICEServer{URLs: stun})
	}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && (cfg.ForceRelay || utils.ShouldForceRelay()) {
		policy = pion.ICETransportPolicyRelay
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &PionFactory{
		ICEServers: iceServers,
		Policy:     policy,
		Logger:     logger,
	}
}

func (f *PionFactory) NewLink(role Role, h Handlers) (Link, error) {
	se := pion.SettingEngine{}
	if f.IncludeLoopback {
		se.SetIncludeLoopbackCandidate(true)
	}
	api := pion.NewAPI(pion.WithSettingEngine(se))

	pc, err := api.NewPeerConnection(pion.Configuration{
		ICEServers:         f.ICEServers,
		ICETransportPolicy: f.Policy,
	})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &pionLink{
		role:     role,
		pc:       pc,
		handlers: h,
		done:     make(chan struct{}),
		lowWater: make(chan struct{}, 1),
		logger:   logger.With("role", role.String()),
	}

	pc.OnConnectionStateChange(l.onConnectionState)

	if role == Responder {
		pc.OnDataChannel(l.attach)
		return l, nil
	}

	ordered := true
	dc, err := pc.CreateDataChannel(ChannelLabel, &pion.DataChannelInit{Ordered: &ordered})
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create data channel: %w", err)
	}
	l.attach(dc)

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		pc.Close()
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := l.publishLocal(offer); err != nil {
		pc.Close()
		return nil, err
	}
	return l, nil
}

type pionLink struct {
	role     Role
	pc       *pion.PeerConnection
	handlers Handlers
	logger   *slog.Logger

	mu sync.Mutex
	dc *pion.DataChannel

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
	lowWater  chan struct{}

	answered atomic.Bool
}

// publishLocal sets the local description and emits it once ICE gathering
// has finished, so the remote side gets every candidate in one descriptor.
func (l *pionLink) publishLocal(desc pion.SessionDescription) error {
	gathered := pion.GatheringCompletePromise(l.pc)
	if err := l.pc.SetLocalDescription(desc); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	go func() {
		select {
		case <-gathered:
		case <-l.done:
			return
		}

		local := l.pc.LocalDescription()
		if local == nil {
			return
		}
		l.logger.Debug("local descriptor ready", "type", local.Type.String())
		l.emit(func() {
			if l.handlers.OnDescriptor != nil {
				l.handlers.OnDescriptor(Descriptor{Type: local.Type.String(), SDP: local.SDP})
			}
		})
	}()
	return nil
}

func (l *pionLink) Signal(d Descriptor) error {
	if l.closed.Load() {
		return ErrClosed
	}

	switch {
	case l.role == Responder && d.Type == DescriptorOffer:
		if !l.answered.CompareAndSwap(false, true) {
			return fmt.Errorf("%w: offer already applied", ErrUnexpectedSignal)
		}
		if err := l.pc.SetRemoteDescription(pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: d.SDP}); err != nil {
			return fmt.Errorf("set remote description: %w", err)
		}
		answer, err := l.pc.CreateAnswer(nil)
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		return l.publishLocal(answer)

	case l.role == Initiator && d.Type == DescriptorAnswer:
		if err := l.pc.SetRemoteDescription(pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: d.SDP}); err != nil {
			return fmt.Errorf("set remote description: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: %s as %s", ErrUnexpectedSignal, d.Type, l.role)
	}
}

func (l *pionLink) attach(dc *pion.DataChannel) {
	l.mu.Lock()
	l.dc = dc
	l.mu.Unlock()

	dc.SetBufferedAmountLowThreshold(uint64(utils.LowWaterMark))
	dc.OnBufferedAmountLow(func() {
		select {
		case l.lowWater <- struct{}{}:
		default:
		}
	})

	dc.OnOpen(func() {
		l.logger.Debug("data channel open", "label", dc.Label())
		l.emit(func() {
			if l.handlers.OnConnect != nil {
				l.handlers.OnConnect()
			}
		})
	})

	dc.OnMessage(func(msg pion.DataChannelMessage) {
		l.emit(func() {
			if l.handlers.OnData != nil {
				l.handlers.OnData(protocol.Payload{Data: msg.Data, IsString: msg.IsString})
			}
		})
	})

	dc.OnClose(l.notifyClosed)
}

func (l *pionLink) onConnectionState(state pion.PeerConnectionState) {
	l.logger.Debug("peer connection state", "state", state.String())

	switch state {
	case pion.PeerConnectionStateFailed:
		l.emit(func() {
			if l.handlers.OnError != nil {
				l.handlers.OnError(ErrConnectionFailed)
			}
		})
	case pion.PeerConnectionStateClosed:
		l.notifyClosed()
	}
}

func (l *pionLink) notifyClosed() {
	l.closeOnce.Do(func() {
		l.emit(func() {
			if l.handlers.OnClose != nil {
				l.handlers.OnClose()
			}
		})
	})
}

// emit drops events once the link has been disposed locally.
func (l *pionLink) emit(fn func()) {
	if l.closed.Load() {
		return
	}
	fn()
}

func (l *pionLink) channel() (*pion.DataChannel, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	l.mu.Lock()
	dc := l.dc
	l.mu.Unlock()
	if dc == nil || dc.ReadyState() != pion.DataChannelStateOpen {
		return nil, ErrNotOpen
	}
	return dc, nil
}

func (l *pionLink) Send(p protocol.Payload) error {
	dc, err := l.channel()
	if err != nil {
		return err
	}
	if p.IsString {
		return dc.SendText(string(p.Data))
	}
	return dc.Send(p.Data)
}

// WaitForWindow blocks while the channel's send buffer is above the high
// water mark.
func (l *pionLink) WaitForWindow(ctx context.Context) error {
	dc, err := l.channel()
	if err != nil {
		return err
	}

	buffered := dc.BufferedAmount()
	if buffered < uint64(utils.HighWaterMark) {
		return nil
	}

	timeout := time.Duration(utils.SendTimeout) * time.Second
	select {
	case <-l.lowWater:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrClosed
	case <-time.After(timeout):
		if dc.BufferedAmount() < buffered {
			return nil
		}
		return fmt.Errorf("send buffer not draining after %s", timeout)
	}
}

// Close disposes the link: handlers stop firing, then the channel and the
// peer connection are closed.
func (l *pionLink) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(l.done)

	l.mu.Lock()
	dc := l.dc
	l.mu.Unlock()
	if dc != nil {
		dc.Close()
	}
	return l.pc.Close()
}
