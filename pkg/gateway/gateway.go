// Package gateway is the QUIC channel through which externally constructed
// heartbeats reach the submission interface. One stream carries one
// submission: the client writes the wire-encoded heartbeat and closes its
// side, the server answers with a single status byte.
package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/rs/zerolog"

	"github.com/eigerco/bilberry/internal/liveness"
)

// Protocol is the ALPN identifier negotiated on every connection.
const Protocol = "bilberry/0"

// MaxSubmissionSize bounds a single submission; honest heartbeats are well
// under a kilobyte.
const MaxSubmissionSize = 1024

// MaxIdleTimeout defines the maximum duration a connection can be idle
// before timing out.
const MaxIdleTimeout = 5 * time.Minute

// Status is the single-byte submission verdict written back to the client.
type Status byte

const (
	StatusRecorded Status = iota
	StatusAlreadyRecorded
	StatusStaleSession
	StatusFutureSession
	StatusWrongNetwork
	StatusIndexOutOfBounds
	StatusBadSignature
	StatusInactive
	StatusMalformed
)

// Submitter is the inbound submission interface the gateway feeds.
// *liveness.Engine satisfies it.
type Submitter interface {
	SubmitHeartbeat(raw []byte) (liveness.RecordOutcome, error)
}

// Server accepts heartbeat submissions over QUIC.
type Server struct {
	addr      string
	tlsCert   *tls.Certificate
	submitter Submitter
	log       zerolog.Logger

	listener *quic.Listener
	cancel   context.CancelFunc
}

func NewServer(addr string, tlsCert *tls.Certificate, submitter Submitter, logger zerolog.Logger) *Server {
	return &Server{
		addr:      addr,
		tlsCert:   tlsCert,
		submitter: submitter,
		log:       logger,
	}
}

// Start begins listening and accepting submissions until Stop is called.
func (s *Server) Start() error {
	tlsConf := &tls.Config{
		Certificates: []tls.Certificate{*s.tlsCert},
		NextProtos:   []string{Protocol},
		MinVersion:   tls.VersionTLS13,
	}
	listener, err := quic.ListenAddr(s.addr, tlsConf, &quic.Config{
		MaxIdleTimeout: MaxIdleTimeout,
	})
	if err != nil {
		return err
	}
	s.listener = listener

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.acceptLoop(ctx)

	s.log.Info().Str("addr", listener.Addr().String()).Msg("submission gateway listening")
	return nil
}

// Addr returns the bound listen address; valid after Start.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Stop closes the listener and stops accepting new submissions.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Debug().Err(err).Msg("accept connection")
			return
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn quic.Connection) {
	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		go s.handleStream(stream)
	}
}

func (s *Server) handleStream(stream quic.Stream) {
	defer stream.Close()

	raw, err := io.ReadAll(io.LimitReader(stream, MaxSubmissionSize))
	if err != nil {
		s.log.Debug().Err(err).Msg("read submission")
		return
	}

	status := s.submit(raw)
	if _, err := stream.Write([]byte{byte(status)}); err != nil {
		s.log.Debug().Err(err).Msg("write submission status")
	}
}

func (s *Server) submit(raw []byte) Status {
	outcome, err := s.submitter.SubmitHeartbeat(raw)
	if err != nil {
		return statusFromError(err)
	}
	if outcome == liveness.AlreadyRecorded {
		return StatusAlreadyRecorded
	}
	return StatusRecorded
}

func statusFromError(err error) Status {
	switch {
	case errors.Is(err, liveness.ErrStaleSession):
		return StatusStaleSession
	case errors.Is(err, liveness.ErrFutureSession):
		return StatusFutureSession
	case errors.Is(err, liveness.ErrWrongNetwork):
		return StatusWrongNetwork
	case errors.Is(err, liveness.ErrIndexOutOfBounds):
		return StatusIndexOutOfBounds
	case errors.Is(err, liveness.ErrBadSignature):
		return StatusBadSignature
	case errors.Is(err, liveness.ErrNotActive):
		return StatusInactive
	default:
		return StatusMalformed
	}
}
