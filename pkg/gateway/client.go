package gateway

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"

	"github.com/quic-go/quic-go"
)

// ErrNoStatus means the server closed the stream without a verdict.
var ErrNoStatus = errors.New("gateway: no submission status received")

// Client submits heartbeats to a gateway server. The transport does not
// authenticate the server; the submission itself is signed.
type Client struct {
	addr string
}

func NewClient(addr string) *Client {
	return &Client{addr: addr}
}

// Submit sends one wire-encoded heartbeat and returns the server's verdict.
func (c *Client) Submit(ctx context.Context, raw []byte) (Status, error) {
	tlsConf := &tls.Config{
		NextProtos:         []string{Protocol},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: true,
	}
	conn, err := quic.DialAddr(ctx, c.addr, tlsConf, &quic.Config{
		MaxIdleTimeout: MaxIdleTimeout,
	})
	if err != nil {
		return 0, fmt.Errorf("dial gateway: %w", err)
	}
	defer conn.CloseWithError(0, "done")

	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		return 0, fmt.Errorf("open stream: %w", err)
	}

	if _, err := stream.Write(raw); err != nil {
		return 0, fmt.Errorf("write submission: %w", err)
	}
	if err := stream.Close(); err != nil {
		return 0, fmt.Errorf("close submission stream: %w", err)
	}

	var status [1]byte
	if _, err := io.ReadFull(stream, status[:]); err != nil {
		return 0, ErrNoStatus
	}
	return Status(status[0]), nil
}
