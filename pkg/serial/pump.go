package serial

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/stats"
)

// readDeadliner is implemented by net.Conn and websocket.Conn.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// pump delivers received frames to the link until stopped.
type pump struct {
	link   *Link
	stream io.ReadWriter
	frames framing.FrameReader
}

// Name implements framework.Named.
func (p *pump) Name() string {
	return "serial-pump"
}

// Run implements framework.Runnable.
// Frames are read by a separate goroutine as a blocked Read can't observe
// ctx. On cancel, a stream with a read deadline is interrupted and the
// reader is joined after the frames it already holds are delivered.
// Otherwise the reader exits at its next frame or error.
func (p *pump) Run(ctx context.Context) error {
	frameCh, errCh, quitCh := make(chan []byte), make(chan error, 1), make(chan struct{})
	go p.readLoop(frameCh, errCh, quitCh)
	for {
		select {
		case <-ctx.Done():
			if d, ok := p.stream.(readDeadliner); ok && d.SetReadDeadline(time.Unix(1, 0)) == nil {
				p.drain(d, frameCh, errCh)
			} else {
				close(quitCh)
			}
			return ctx.Err()
		case err := <-errCh:
			return err
		case frame := <-frameCh:
			p.link.receive(frame)
		}
	}
}

func (p *pump) drain(d readDeadliner, frameCh <-chan []byte, errCh <-chan error) {
	defer d.SetReadDeadline(time.Time{})
	for {
		select {
		case frame := <-frameCh:
			p.link.receive(frame)
		case <-errCh:
			return
		}
	}
}

func (p *pump) readLoop(frameCh chan<- []byte, errCh chan<- error, quitCh <-chan struct{}) {
	for {
		frame, err := p.frames.ReadFrame()
		if err != nil {
			if framing.IsRecoverable(err) {
				reason := stats.ReasonMalformed
				if errors.Is(err, framing.ErrFrameTooLarge) {
					reason = stats.ReasonOversize
				}
				p.link.Metrics.Dropped(reason)
				glog.V(2).Infof("serial: drop frame: %v", err)
				continue
			}
			errCh <- err
			return
		}
		select {
		case frameCh <- frame:
		case <-quitCh:
			return
		}
	}
}
