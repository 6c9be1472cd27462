package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/chainpress/chainpress/app/services/node/handlers"
	"github.com/chainpress/chainpress/foundation/blockchain/genesis"
	"github.com/chainpress/chainpress/foundation/blockchain/ledger"
	"github.com/chainpress/chainpress/foundation/blockchain/peer"
	"github.com/chainpress/chainpress/foundation/blockchain/state"
	"github.com/chainpress/chainpress/foundation/blockchain/storage/badgerdb"
	"github.com/chainpress/chainpress/foundation/blockchain/storage/disk"
	"github.com/chainpress/chainpress/foundation/blockchain/storage/memory"
	"github.com/chainpress/chainpress/foundation/blockchain/worker"
	"github.com/chainpress/chainpress/foundation/events"
	"github.com/chainpress/chainpress/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags
// in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// GOMAXPROCS

	// Want to see what maxprocs reports.
	log.Infow("startup", "GOMAXPROCS", runtime.GOMAXPROCS(0))

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			PrivateHost     string        `conf:"default:0.0.0.0:9080"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
		}
		Node struct {
			GenesisPath string   `conf:"default:zblock/genesis.json"`
			Storage     string   `conf:"default:disk,help:disk | memory | badger"`
			DBPath      string   `conf:"default:zblock/blocks"`
			Origin      string   `conf:"default:*"`
			KnownPeers  []string `conf:"default:0.0.0.0:9080"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "chainpress ledger node",
		},
	}

	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	expvar.NewString("build").Set(build)

	// =========================================================================
	// Blockchain Support

	// Load the genesis file for this chain.
	gen, err := genesis.Load(cfg.Node.GenesisPath)
	if err != nil {
		return fmt.Errorf("unable to load genesis file: %w", err)
	}

	// Load the set of peers this node starts with.
	peerSet := peer.NewPeerSet()
	for _, host := range cfg.Node.KnownPeers {
		peerSet.Add(peer.New(host))
	}

	// Construct the events system for streaming node activity to clients.
	evts := events.New()
	defer evts.Shutdown()

	// The blockchain packages log through this function so they stay free
	// of any logger dependency. Every event also feeds the websocket stream.
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// Select the block archive implementation.
	var strg ledger.Storage
	switch strings.ToLower(cfg.Node.Storage) {
	case "disk":
		strg, err = disk.New(cfg.Node.DBPath)
	case "badger":
		strg, err = badgerdb.New(cfg.Node.DBPath)
	case "memory":
		strg, err = memory.New()
	default:
		err = fmt.Errorf("unknown storage option %q", cfg.Node.Storage)
	}
	if err != nil {
		return fmt.Errorf("unable to construct storage: %w", err)
	}

	// Construct the state value that owns the ledger for this node.
	st, err := state.New(state.Config{
		Host:       cfg.Web.PrivateHost,
		Genesis:    gen,
		Storage:    strg,
		KnownPeers: peerSet,
		EvHandler:  ev,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	// Start the background workers: mining, peer sync, tx sharing. This
	// runs an initial network sync before returning.
	worker.Run(st, ev)

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the
	// debug related endpoints. This includes the standard library endpoints.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, handlers.DebugMux(build, log, st)); err != nil {
			log.Errorw("shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Start Public and Private Services

	log.Infow("startup", "status", "initializing node API support")

	// Make a channel to listen for an interrupt or terminate signal from
	// the OS. Signal package requires a buffered channel.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this
	// error.
	serverErrors := make(chan error, 1)

	muxCfg := handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    st,
		Evts:     evts,
		Origin:   cfg.Node.Origin,
	}

	publicSrv := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      handlers.PublicMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "public router started", "host", publicSrv.Addr)
		serverErrors <- publicSrv.ListenAndServe()
	}()

	privateSrv := http.Server{
		Addr:         cfg.Web.PrivateHost,
		Handler:      handlers.PrivateMux(muxCfg),
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	go func() {
		log.Infow("startup", "status", "private router started", "host", privateSrv.Addr)
		serverErrors <- privateSrv.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listeners to shut down and shed load.
		if err := publicSrv.Shutdown(ctx); err != nil {
			publicSrv.Close()
		}
		if err := privateSrv.Shutdown(ctx); err != nil {
			privateSrv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
