package source

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pancudaniel7/kafka-output-binding/internal/core/port"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/apperr"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

const defaultMaxLineBytes = 1 << 20

// LineSource feeds newline-delimited input to a handler.
type LineSource struct {
	log     applog.AppLogger
	r       io.Reader
	cfg     Config
	handler port.LineHandler
}

func NewLineSource(log applog.AppLogger, r io.Reader, cfg Config, v *validator.Validate) (*LineSource, error) {
	if r == nil {
		return nil, apperr.NewInvalidArgErr("reader is required", nil)
	}
	if err := v.Struct(cfg); err != nil {
		return nil, apperr.NewInvalidArgErr("invalid line source config", err)
	}
	if cfg.MaxLineBytes == 0 {
		cfg.MaxLineBytes = defaultMaxLineBytes
	}
	return &LineSource{log: log, r: r, cfg: cfg}, nil
}

func (s *LineSource) SetHandler(handler port.LineHandler) {
	s.handler = handler
}

// Run reads until EOF, a handler error or ctx cancellation. Reading happens
// on its own goroutine so cancellation is honored while the reader is idle;
// a reader that is also an io.Closer is closed once Run returns.
func (s *LineSource) Run(ctx context.Context) error {
	if s.handler == nil {
		return apperr.NewInvalidArgErr("line handler is not set", nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c, ok := s.r.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go s.scan(ctx, lines, scanErr)

	sm := metrics.Source()
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return err
				}
				s.log.Debug("Input exhausted", "lines", n)
				return nil
			}
			n++
			sm.LinesReadTotal.Inc()
			sm.LastLineTimestamp.Set(float64(time.Now().Unix()))
			if s.cfg.SkipBlank && len(line) == 0 {
				sm.BlankLinesSkippedTotal.Inc()
				continue
			}
			if err := s.handler(ctx, line); err != nil {
				s.log.Error("Failed to handle input line", "line", n, "err", err)
				return err
			}
		}
	}
}

// scan sends a copy of every line, then reports the read error on errc
// before closing lines.
func (s *LineSource) scan(ctx context.Context, lines chan<- []byte, errc chan<- error) {
	defer close(lines)

	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, min(4096, s.cfg.MaxLineBytes)), s.cfg.MaxLineBytes)
	for sc.Scan() {
		select {
		case lines <- bytes.Clone(sc.Bytes()):
		case <-ctx.Done():
			errc <- nil
			return
		}
	}
	if err := sc.Err(); err != nil && ctx.Err() == nil {
		errc <- apperr.NewInternalErr("failed to read input", err)
		return
	}
	errc <- nil
}
