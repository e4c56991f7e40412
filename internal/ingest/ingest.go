// Package ingest subscribes to the frame publisher.
//
// goesrecv (and compatible demodulators) publish decoded VCDU frames on a
// nanomsg pub-sub socket, one 892-byte message per frame. Any other
// message size means we are pointed at the wrong publisher, and the
// reader stops rather than feed garbage downstream.
package ingest

import (
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"
	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/lrit"
)

// Reader is a subscribed nanomsg socket delivering frames.
type Reader struct {
	sock mangos.Socket
	log  *zap.SugaredLogger
}

// Dial connects and subscribes to everything the endpoint publishes.
func Dial(endpoint string, log *zap.SugaredLogger) (*Reader, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("ingest: new sub socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte("")); err != nil {
		sock.Close()
		return nil, fmt.Errorf("ingest: subscribe: %w", err)
	}
	if err := sock.Dial(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("ingest: dial %s: %w", endpoint, err)
	}
	log.Infof("connected and subscribed to %s", endpoint)
	return &Reader{sock: sock, log: log}, nil
}

// Run receives frames and sends them to out until the socket fails or a
// wrong-sized message arrives. It closes out on return so the consumer
// sees the transport die.
func (r *Reader) Run(out chan<- []byte) error {
	defer close(out)
	for {
		msg, err := r.sock.Recv()
		if err != nil {
			return fmt.Errorf("ingest: recv: %w", err)
		}
		if len(msg) != lrit.FrameSize {
			return fmt.Errorf("ingest: message of %d bytes, want %d", len(msg), lrit.FrameSize)
		}
		out <- msg
	}
}

// Close tears down the socket, unblocking a Run in progress.
func (r *Reader) Close() error {
	return r.sock.Close()
}
