package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eigerco/bilberry/internal/config"
	"github.com/eigerco/bilberry/internal/crypto"
	"github.com/eigerco/bilberry/internal/crypto/ed25519"
	"github.com/eigerco/bilberry/internal/heartbeat"
	"github.com/eigerco/bilberry/internal/liveness"
	"github.com/eigerco/bilberry/internal/offence"
	"github.com/eigerco/bilberry/internal/schedule"
	"github.com/eigerco/bilberry/internal/store"
	"github.com/eigerco/bilberry/internal/telemetry"
	"github.com/eigerco/bilberry/pkg/db/pebble"
	"github.com/eigerco/bilberry/pkg/gateway"
	"github.com/eigerco/bilberry/pkg/log"
)

const certValidity = 365 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "config.yaml", "path to the node config file")
	generateKey := flag.String("generate-key", "", "write a new keystore to the given path and exit")
	flag.Parse()

	if *generateKey != "" {
		if err := generateKeystore(*generateKey); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("keystore written to", *generateKey)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.Init(log.Options{LogLevel: level, Type: log.ConsoleLogger})

	pub, prv, err := loadKeystore(cfg.KeyFile)
	if err != nil {
		return err
	}
	authorities, err := parseAuthorities(cfg.Authorities)
	if err != nil {
		return err
	}

	kv, err := pebble.NewKVStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open liveness archive: %w", err)
	}
	defer kv.Close()

	networkID := crypto.NetworkIDFromChainName(cfg.ChainName)
	engine := liveness.NewEngine(liveness.Config{
		PeriodLength: cfg.HeartbeatPeriodBlocks,
		Enabled:      cfg.HeartbeatEnabled,
		NetworkID:    networkID,
	}, heartbeat.Ed25519Verifier{}, offence.NewLogReporter(log.Session), store.NewLiveness(kv), log.Liveness)

	if err := engine.OnSessionStart(0, authorities); err != nil {
		return err
	}

	tlsCert, err := gateway.GenerateTLSCert(pub, prv, certValidity)
	if err != nil {
		return err
	}
	server := gateway.NewServer(cfg.ListenAddr, tlsCert, engine, log.Gateway)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	defer server.Stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	node := &node{
		cfg:         cfg,
		engine:      engine,
		signer:      heartbeat.NewKeySigner(prv),
		client:      gateway.NewClient(server.Addr()),
		networkID:   networkID,
		authorities: authorities,
		ownIndex:    ownAuthorityIndex(authorities, pub),
	}
	node.runBlockLoop(ctx)
	return nil
}

// node drives the block clock: per block it checks whether this
// authority's heartbeat is due and whether the session deadline has been
// reached.
type node struct {
	cfg         config.Config
	engine      *liveness.Engine
	signer      heartbeat.Signer
	client      *gateway.Client
	networkID   crypto.NetworkID
	authorities []ed25519.PublicKey
	ownIndex    int

	height     uint64
	session    uint32
	sessionEnd uint64
}

func (n *node) runBlockLoop(ctx context.Context) {
	n.sessionEnd = n.cfg.SessionLengthBlocks
	ticker := time.NewTicker(n.cfg.BlockPeriod())
	defer ticker.Stop()

	if n.ownIndex < 0 {
		log.Session.Warn().Msg("own key is not in the authority set; running as observer")
	}

	for {
		select {
		case <-ctx.Done():
			log.Root.Info().Msg("shutting down")
			return
		case <-ticker.C:
			n.height++
			n.onBlock(ctx)
		}
	}
}

func (n *node) onBlock(ctx context.Context) {
	if n.ownIndex >= 0 &&
		schedule.IsHeartbeatDue(n.height, uint32(n.ownIndex), n.cfg.HeartbeatPeriodBlocks, n.cfg.HeartbeatEnabled) {
		n.authorHeartbeat(ctx)
	}

	if schedule.SessionDeadlineReached(n.height, n.sessionEnd) {
		n.rotateSession()
	}
}

// authorHeartbeat constructs, signs and submits this authority's own
// heartbeat. Construction happens here, off the serialized submission
// path; the result re-enters through the gateway like any other
// submission.
func (n *node) authorHeartbeat(ctx context.Context) {
	hb := &heartbeat.Heartbeat{
		BlockNumber:    n.height,
		SessionIndex:   n.session,
		AuthorityIndex: uint32(n.ownIndex),
		NetworkID:      n.networkID,
	}
	if err := hb.Sign(n.signer); err != nil {
		log.Liveness.Error().Err(err).Msg("sign heartbeat")
		return
	}
	raw, err := hb.Bytes()
	if err != nil {
		log.Liveness.Error().Err(err).Msg("encode heartbeat")
		return
	}

	submitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	status, err := n.client.Submit(submitCtx, raw)
	if err != nil {
		log.Liveness.Warn().Err(err).Msg("submit heartbeat")
		return
	}
	log.Liveness.Debug().
		Uint64("block", n.height).
		Uint8("status", uint8(status)).
		Msg("heartbeat submitted")
}

func (n *node) rotateSession() {
	oldSession := n.session
	n.session++
	n.sessionEnd += n.cfg.SessionLengthBlocks

	report, err := n.engine.Rotate(oldSession, n.session, n.authorities)
	if err != nil && !errors.Is(err, offence.ErrReporterUnavailable) {
		log.Session.Error().Err(err).Msg("session rotation")
		return
	}
	log.Session.Info().
		Uint32("session", n.session).
		Int("offline_previous", len(report.Offline)).
		Msg("session rotated")
}

func ownAuthorityIndex(authorities []ed25519.PublicKey, pub ed25519.PublicKey) int {
	for i, a := range authorities {
		if bytes.Equal(a, pub) {
			return i
		}
	}
	return -1
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Root.Error().Err(err).Msg("metrics server")
	}
}
