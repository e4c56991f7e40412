// Command goesrx consumes the VCDU frame stream published by a GOES-R
// HRIT/LRIT demodulator (goesrecv or compatible), reassembles LRIT files,
// and fans them out to the configured handlers, with a terminal dashboard
// showing per-channel receive rates and recent messages.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goesrx/goesrx/internal/config"
	"github.com/goesrx/goesrx/internal/handlers"
	"github.com/goesrx/goesrx/internal/ingest"
	"github.com/goesrx/goesrx/internal/logging"
	"github.com/goesrx/goesrx/internal/lrit"
	"github.com/goesrx/goesrx/internal/stats"
	"github.com/goesrx/goesrx/internal/ui"
)

// rateWindow is how far back the dashboard's VC bars look.
const rateWindow = 10 * time.Second

const drawInterval = 100 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// In dashboard mode log lines flow through a queue into the message
	// pane; the processing loop is the only consumer of all three queues.
	var (
		dash     *ui.App
		keys     chan ui.KeyEvent
		logLines chan string
		log      *zap.SugaredLogger
	)
	if cfg.NoUI {
		log = logging.New(cfg.LogLevel)
	} else {
		keys = make(chan ui.KeyEvent, 8)
		logLines = make(chan string, 256)
		dash = ui.New(keys)
		log = logging.NewPane(cfg.LogLevel, func(line string) {
			select {
			case logLines <- line:
			default: // never stall the pipeline on a full pane
			}
		})
	}
	defer log.Sync()

	rec := stats.New()
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := rec.Register(reg); err != nil {
			log.Errorf("metrics registration: %v", err)
		} else {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
					log.Errorf("metrics server: %v", err)
				}
			}()
			log.Infof("serving metrics on %s", cfg.MetricsAddr)
		}
	}

	hs, closers, err := buildHandlers(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()

	reader, err := ingest.Dial(cfg.Endpoint, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer reader.Close()

	frames := make(chan []byte, cfg.FrameQueue)
	readErr := make(chan error, 1)
	go func() {
		readErr <- reader.Run(frames)
	}()

	if dash != nil {
		go func() {
			if err := dash.Run(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		}()
		defer dash.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	demux := lrit.NewDemultiplexer(log, rec)
	tick := time.NewTicker(drawInterval)
	defer tick.Stop()

	// The core is single-threaded: every frame, keystroke, and log line
	// funnels through this loop. In-flight sessions are simply abandoned
	// on shutdown.
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				// Transport failed; the reader's error says why.
				err := <-readErr
				if dash != nil {
					dash.Stop()
				}
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			files, err := demux.ProcessFrame(frame)
			if err != nil {
				log.Warnf("dropping frame: %v", err)
				continue
			}
			for _, l := range files {
				handlers.Dispatch(hs, l, log)
			}

		case key := <-keys:
			switch {
			case key.Quit:
				return 0
			case key.Clear:
				dash.ClearMessages()
			}

		case line := <-logLines:
			dash.AppendMessage(line)

		case <-tick.C:
			if dash != nil {
				packets, _, fills, discards, crcBad, lrits := rec.Totals()
				dash.Update(ui.Snapshot{
					VCRates:  rec.VCRates(rateWindow),
					Packets:  packets,
					Fills:    fills,
					Discards: discards,
					CRCBad:   crcBad,
					LRITs:    lrits,
				})
			}

		case <-sigCh:
			return 0
		}
	}
}

// buildHandlers assembles the fan-out list in dispatch order.
func buildHandlers(cfg *config.Config, log *zap.SugaredLogger) ([]handlers.Handler, []func(), error) {
	var (
		hs      []handlers.Handler
		closers []func()
	)

	hs = append(hs, handlers.NewTextHandler(cfg.OutputRoot, log))

	img, err := handlers.NewImageHandler(cfg.OutputRoot, log)
	if err != nil {
		return nil, nil, err
	}
	hs = append(hs, img)

	hs = append(hs, handlers.NewDCSHandler(cfg.OutputRoot, log))
	hs = append(hs, handlers.NewDebugHandler(cfg.OutputRoot, log))

	if cfg.CatalogPath != "" {
		cat, err := handlers.NewCatalogHandler(cfg.CatalogPath, log)
		if err != nil {
			return nil, nil, err
		}
		hs = append(hs, cat)
		closers = append(closers, func() { cat.Close() })
	}

	return hs, closers, nil
}
