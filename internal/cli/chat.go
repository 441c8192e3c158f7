package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeettech-root/QuickShare-P2P/internal/files"
	"github.com/jeettech-root/QuickShare-P2P/internal/invite"
	"github.com/jeettech-root/QuickShare-P2P/internal/peer"
	"github.com/jeettech-root/QuickShare-P2P/internal/session"
	"github.com/jeettech-root/QuickShare-P2P/internal/transfer"
	"github.com/jeettech-root/QuickShare-P2P/internal/ui"
	"github.com/jeettech-root/QuickShare-P2P/internal/utils"
)

type chatOptions struct {
	Title string

	// Target is dialled as soon as the session starts.
	Target string

	AutoAccept bool

	// Files are sent once the first call connects.
	Files []files.FileInfo
}

// chatSession bridges the session controller, the relay handler and the
// terminal UI for one run of the program.
type chatSession struct {
	ctx    context.Context
	conn   *Connection
	opts   chatOptions
	ctrl   *session.Controller
	view   *ui.SessionUI
	logger *slog.Logger

	sendQueued sync.Once

	mu       sync.Mutex
	trackers map[string]*transfer.ProgressTracker
}

func runChat(ctx context.Context, conn *Connection, opts chatOptions, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &chatSession{
		ctx:      ctx,
		conn:     conn,
		opts:     opts,
		logger:   logger,
		trackers: make(map[string]*transfer.ProgressTracker),
	}
	s.view = ui.NewSessionUI(opts.Title, s.handleInput)
	s.ctrl = session.NewController(session.Options{
		Factory:     peer.NewPionFactory(conn.Config, logger),
		Signaler:    conn.Client,
		DisplayName: conn.Config.DisplayName,
		Observer:    s.observe,
		Logger:      logger,
	})

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.ctrl.Run(ctx)
	}()
	go s.pumpSignaling()

	if err := s.ctrl.SetIdentity(conn.Identity); err != nil {
		return err
	}
	if opts.Target != "" {
		go s.call(opts.Target)
	}

	// Ctrl+C reaches the program as a key press; SIGTERM cancels ctx
	go func() {
		select {
		case <-ctx.Done():
			s.view.Quit()
		case <-s.view.Done():
		}
	}()

	err := s.view.Run()

	_ = s.ctrl.Hangup()
	cancel()
	<-stopped
	return err
}

// pumpSignaling feeds relay events into the controller until the relay
// connection ends.
func (s *chatSession) pumpSignaling() {
	h := s.conn.Handler
	for {
		select {
		case call, ok := <-h.IncomingCall:
			if !ok {
				s.relayLost()
				return
			}
			if err := s.ctrl.HandleIncomingCall(call); err != nil {
				return
			}

		case acc, ok := <-h.CallAccepted:
			if !ok {
				s.relayLost()
				return
			}
			if err := s.ctrl.HandleCallAccepted(acc); err != nil {
				return
			}

		case msg, ok := <-h.Error:
			if !ok {
				s.relayLost()
				return
			}
			s.notice(msg, true)
			s.abandonCall()

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *chatSession) relayLost() {
	if s.ctx.Err() == nil {
		s.notice("Lost connection to the relay; new calls are unavailable", true)
	}
}

// abandonCall drops an outbound call the relay could not deliver.
func (s *chatSession) abandonCall() {
	snap, err := s.ctrl.Snapshot()
	if err != nil || snap.Session.State != session.Calling {
		return
	}
	_ = s.ctrl.Hangup()
}

func (s *chatSession) handleInput(line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/send":
		if arg == "" {
			s.notice("usage: /send <path>", true)
			return
		}
		info, err := files.ValidateFile(arg)
		if err != nil {
			s.notice(err.Error(), true)
			return
		}
		s.sendFile(info)

	case "/call":
		s.call(arg)

	case "/accept":
		if err := s.ctrl.Accept(); err != nil {
			s.notice(err.Error(), true)
		}

	case "/decline", "/hangup":
		_ = s.ctrl.Hangup()

	default:
		if strings.HasPrefix(cmd, "/") {
			s.notice(fmt.Sprintf("unknown command %s", cmd), true)
			return
		}
		// failures surface as faults through the observer
		_ = s.ctrl.SendChat(line)
	}
}

func (s *chatSession) call(target string) {
	id, err := invite.Parse(target)
	if err != nil {
		s.notice(err.Error(), true)
		return
	}
	if err := s.ctrl.Call(id); err != nil {
		s.notice(err.Error(), true)
	}
}

func (s *chatSession) sendFile(info files.FileInfo) {
	data, err := info.ReadAll()
	if err != nil {
		s.notice(err.Error(), true)
		return
	}

	tracker := s.track(transfer.Outbound, info.Name, info.Size)
	err = s.ctrl.SendFile(s.ctx, transfer.OutgoingFile{Name: info.Name, Type: info.Type, Data: data})
	if err != nil {
		s.untrack(transfer.Outbound, info.Name)
		return
	}
	s.printSummary(tracker)
	s.untrack(transfer.Outbound, info.Name)
}

// observe runs on the controller's loop. Anything that calls back into
// the controller is started on its own goroutine.
func (s *chatSession) observe(u session.Update) {
	switch u.Kind {
	case session.UpdateIdentity:
		s.view.Send(ui.IdentityMsg{ID: u.Session.LocalID, Invite: s.conn.InviteLink()})

	case session.UpdateState:
		s.view.Send(statusMsg(u.Session))
		s.onState(u.Session)

	case session.UpdateChat:
		s.view.Send(ui.ChatMsg{
			Local: u.Chat.Sender == transfer.Local,
			From:  peerLabel(u.Session),
			Text:  u.Chat.Text,
			At:    u.Chat.At,
		})

	case session.UpdateProgress:
		t := s.track(u.Direction, u.FileName, u.FileSize)
		s.mu.Lock()
		moved := t.Update(u.Progress)
		s.mu.Unlock()
		if moved || u.Progress == 0 {
			s.view.Send(ui.ProgressMsg{
				Outbound: u.Direction == transfer.Outbound,
				File:     u.FileName,
				Size:     u.FileSize,
				Percent:  u.Progress,
			})
		}

	case session.UpdateFile:
		go s.saveFile(u.File)

	case session.UpdateFault:
		s.notice(u.Err.Error(), true)
	}
}

func (s *chatSession) onState(sess session.Session) {
	switch sess.State {
	case session.Ringing:
		if sess.Accepted {
			return
		}
		if s.opts.AutoAccept {
			go func() {
				if err := s.ctrl.Accept(); err != nil {
					s.notice(err.Error(), true)
				}
			}()
			return
		}
		s.notice(fmt.Sprintf("Incoming call from %s. Type /accept or /decline", peerLabel(sess)), false)

	case session.Connected:
		s.notice(fmt.Sprintf("Connected to %s", peerLabel(sess)), false)
		if len(s.opts.Files) > 0 {
			s.sendQueued.Do(func() {
				go func() {
					for _, f := range s.opts.Files {
						s.sendFile(f)
					}
				}()
			})
		}

	case session.Closed:
		s.notice("Call ended", false)

	case session.Error:
		s.notice("Connection failed. Use /call to try again", true)
	}
}

func (s *chatSession) saveFile(f *transfer.ReceivedFile) {
	path, err := f.Save(s.conn.Config.OutputDir)
	if err != nil {
		s.notice(transfer.NewFileError("save file", f.Name, err).Error(), true)
		return
	}

	tracker := s.track(transfer.Inbound, f.Name, int64(len(f.Data)))
	s.mu.Lock()
	tracker.FileSize = int64(len(f.Data))
	tracker.Update(100)
	s.mu.Unlock()

	s.notice(fmt.Sprintf("Saved %s to %s", f.Name, path), false)
	s.printSummary(tracker)
	s.untrack(transfer.Inbound, f.Name)
}

func (s *chatSession) printSummary(t *transfer.ProgressTracker) {
	s.mu.Lock()
	summary := t.Summary()
	s.mu.Unlock()
	s.view.Send(ui.PrintMsg{Text: ui.TransferSummaryView(ui.IconStats+" Transfer Summary", summary)})
}

func trackerKey(dir transfer.Direction, name string) string {
	return dir.String() + "/" + name
}

// track returns the running tracker for a file, starting one when none is
// running or the previous one already finished.
func (s *chatSession) track(dir transfer.Direction, name string, size int64) *transfer.ProgressTracker {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := trackerKey(dir, name)
	if t, ok := s.trackers[key]; ok && (!t.Done() || dir == transfer.Inbound) {
		return t
	}
	t := transfer.NewProgressTracker(dir, name, size)
	s.trackers[key] = t
	return t
}

func (s *chatSession) untrack(dir transfer.Direction, name string) {
	s.mu.Lock()
	delete(s.trackers, trackerKey(dir, name))
	s.mu.Unlock()
}

func (s *chatSession) notice(text string, isErr bool) {
	s.view.Send(ui.NoticeMsg{Text: text, Err: isErr})
}

func statusMsg(sess session.Session) ui.StatusMsg {
	msg := ui.StatusMsg{
		State:  sess.State.String(),
		Active: sess.State == session.Calling || sess.State == session.Ringing,
	}
	if sess.State != session.Idle {
		msg.Peer = peerLabel(sess)
	}
	return msg
}

// peerLabel prefers the caller-supplied name, which is display-only.
func peerLabel(sess session.Session) string {
	if sess.RemoteName != "" {
		return utils.TruncateString(sess.RemoteName, 32) + " (" + sess.RemoteID + ")"
	}
	return sess.RemoteID
}
