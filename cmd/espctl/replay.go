package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/danmuck/esphost/internal/observability"
	"github.com/danmuck/esphost/internal/protocol"
	"github.com/danmuck/esphost/internal/protocol/frame"
	"github.com/danmuck/esphost/internal/protocol/rpc"
	"github.com/danmuck/esphost/internal/protocol/session"
	"github.com/danmuck/esphost/internal/protocol/tlv"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func replayCmd(opts *rootOptions) *cobra.Command {
	var (
		metricsAddr string
		hold        bool
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "replay <capture>",
		Short: "Decode a capture of hex frames and print a summary",
		Long: `Decode a capture holding one hex frame per line. Lines starting with '>'
are frames the host sent; their requests are registered so later responses
match. Lines starting with '<' or with no marker are received frames. Blank
lines and lines starting with '#' are skipped. Use '-' to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := metricsAddr
			if addr == "" {
				addr = opts.cfg.MetricsAddr
			}

			in, closeFn, err := openCapture(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			defer closeFn()

			var rec *observability.Recorder
			if addr != "" {
				rec = observability.NewRecorder()
			}
			s, err := session.New(opts.cfg.Session, frame.NewSeqCounter(0), discard, rec)
			if err != nil {
				return err
			}

			stats := newReplayStats()
			var srv *http.Server
			if addr != "" {
				srv = &http.Server{
					Addr:              addr,
					Handler:           newMetricsRouter(opts.logger, stats),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						opts.logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
					}
				}()
				defer shutdownServer(srv)
				opts.logger.Info().Str("addr", addr).Msg("serving /metrics and /healthz")
			}

			out := cmd.OutOrStdout()
			var verboseOut io.Writer
			if verbose {
				verboseOut = out
			}
			if err := replay(in, s, stats, verboseOut); err != nil {
				return err
			}
			stats.print(out)

			if srv != nil && hold {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
	cmd.Flags().BoolVar(&hold, "hold", false, "keep serving metrics after the capture is decoded")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "describe every frame")

	return cmd
}

func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func openCapture(stdin io.Reader, path string) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

type replayStats struct {
	mu      sync.Mutex
	frames  int
	sent    int
	kinds   map[string]int
	errors  map[string]int
	lastErr string
}

func newReplayStats() *replayStats {
	return &replayStats{
		kinds:  make(map[string]int),
		errors: make(map[string]int),
	}
}

func (st *replayStats) addKind(kind string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.frames++
	st.kinds[kind]++
}

func (st *replayStats) addSent() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sent++
}

func (st *replayStats) addErr(line int, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.frames++
	st.errors[errorClass(err)]++
	st.lastErr = fmt.Sprintf("line %d: %v", line, err)
}

type replaySnapshot struct {
	Status    string         `json:"status"`
	Frames    int            `json:"frames"`
	Sent      int            `json:"sent"`
	Kinds     map[string]int `json:"kinds"`
	Errors    map[string]int `json:"errors"`
	LastError string         `json:"last_error,omitempty"`
}

func (st *replayStats) snapshot() replaySnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	snap := replaySnapshot{
		Status:    "ok",
		Frames:    st.frames,
		Sent:      st.sent,
		Kinds:     make(map[string]int, len(st.kinds)),
		Errors:    make(map[string]int, len(st.errors)),
		LastError: st.lastErr,
	}
	for k, v := range st.kinds {
		snap.Kinds[k] = v
	}
	for k, v := range st.errors {
		snap.Errors[k] = v
	}
	return snap
}

func (st *replayStats) print(w io.Writer) {
	snap := st.snapshot()
	fmt.Fprintf(w, "frames=%d sent=%d\n", snap.Frames, snap.Sent)
	for _, k := range sortedKeys(snap.Kinds) {
		fmt.Fprintf(w, "  %-10s %d\n", k, snap.Kinds[k])
	}
	for _, k := range sortedKeys(snap.Errors) {
		fmt.Fprintf(w, "  error:%-10s %d\n", k, snap.Errors[k])
	}
	if snap.LastError != "" {
		fmt.Fprintf(w, "last error: %s\n", snap.LastError)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, protocol.ErrChecksumMismatch):
		return "checksum"
	case errors.Is(err, protocol.ErrUnexpectedResponse):
		return "unexpected"
	case errors.Is(err, protocol.ErrDeviceError):
		return "device"
	case errors.Is(err, protocol.ErrCapacity):
		return "capacity"
	case errors.Is(err, protocol.ErrInvalidData):
		return "invalid"
	default:
		return "other"
	}
}

// replay feeds every frame in r through s. Decode failures are counted, not
// returned; only read errors stop the replay. With verbose set each frame is
// described there.
func replay(r io.Reader, s *session.Session, stats *replayStats, verbose io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		outbound := false
		switch text[0] {
		case '>':
			outbound = true
			text = text[1:]
		case '<':
			text = text[1:]
		}
		raw, err := parseHex(text)
		if err != nil {
			stats.addErr(line, fmt.Errorf("%w: %v", protocol.ErrInvalidData, err))
			continue
		}

		if outbound {
			if err := registerSent(s, raw); err != nil {
				stats.addErr(line, err)
				continue
			}
			stats.addSent()
			continue
		}

		in, err := s.Receive(raw)
		if verbose != nil && in.Kind != 0 {
			fmt.Fprintf(verbose, "-- line %d\n", line)
			describe(verbose, in)
		}
		if err != nil {
			stats.addErr(line, err)
			continue
		}
		stats.addKind(in.Kind.String())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read capture: %w", err)
	}
	return nil
}

// registerSent marks the request carried by a host frame as pending. Frames
// that carry no request, such as HCI commands, are accepted and ignored.
func registerSent(s *session.Session, raw []byte) error {
	cfg := s.Config()
	f, err := frame.Parse(raw, cfg.VerifyChecksum)
	if err != nil {
		return err
	}
	if f.Header.IfType != frame.IfSerial {
		return nil
	}
	body := f.Payload
	if cfg.SerialTLV {
		msg, err := tlv.Decode(body)
		if err != nil {
			return err
		}
		body = msg.Data
	}
	r, _, _, err := rpc.FromBytes(body)
	if err != nil {
		return err
	}
	if r.Type != rpc.TypeReq {
		return nil
	}
	return s.Pending().Add(session.PendingRequest{UID: r.UID, ID: r.ID, SentAt: time.Now()})
}

func newMetricsRouter(logger zerolog.Logger, stats *replayStats) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observability.RequestLogger(logger))
	r.Use(observability.RequestMetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats.snapshot())
	})
	return r
}
