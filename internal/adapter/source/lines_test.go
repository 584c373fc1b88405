package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/metrics"
)

type testLogger struct{}

func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
func (testLogger) Debug(string, ...any) {}
func (testLogger) Trace(string, ...any) {}
func (testLogger) Fatal(string, ...any) {}

func collect(t *testing.T, input string, cfg Config) ([]string, error) {
	t.Helper()
	s, err := NewLineSource(testLogger{}, strings.NewReader(input), cfg, validator.New())
	require.NoError(t, err)
	var got []string
	s.SetHandler(func(_ context.Context, line []byte) error {
		got = append(got, string(line))
		return nil
	})
	return got, s.Run(context.Background())
}

func TestLineSource_Run(t *testing.T) {
	cases := []struct {
		name  string
		input string
		cfg   Config
		want  []string
	}{
		{name: "plain", input: "a\nb\nc\n", want: []string{"a", "b", "c"}},
		{name: "no trailing newline", input: "a\nb", want: []string{"a", "b"}},
		{name: "blank kept", input: "a\n\nb\n", want: []string{"a", "", "b"}},
		{name: "blank skipped", input: "a\n\nb\n", cfg: Config{SkipBlank: true}, want: []string{"a", "b"}},
		{name: "crlf", input: "a\r\nb\r\n", want: []string{"a", "b"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := collect(t, tc.input, tc.cfg)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestLineSource_CountsLines(t *testing.T) {
	sm := metrics.Source()
	read := testutil.ToFloat64(sm.LinesReadTotal)
	skipped := testutil.ToFloat64(sm.BlankLinesSkippedTotal)

	_, err := collect(t, "a\n\n\nb\n", Config{SkipBlank: true})
	require.NoError(t, err)
	require.Equal(t, read+4, testutil.ToFloat64(sm.LinesReadTotal))
	require.Equal(t, skipped+2, testutil.ToFloat64(sm.BlankLinesSkippedTotal))
	require.Greater(t, testutil.ToFloat64(sm.LastLineTimestamp), float64(0))
}

func TestLineSource_TooLong(t *testing.T) {
	_, err := collect(t, strings.Repeat("x", 200)+"\n", Config{MaxLineBytes: 64})
	require.Error(t, err)
}

func TestLineSource_HandlerErrorStops(t *testing.T) {
	s, err := NewLineSource(testLogger{}, strings.NewReader("a\nb\n"), Config{}, validator.New())
	require.NoError(t, err)
	boom := errors.New("boom")
	calls := 0
	s.SetHandler(func(context.Context, []byte) error {
		calls++
		return boom
	})
	require.ErrorIs(t, s.Run(context.Background()), boom)
	require.Equal(t, 1, calls)
}

func TestLineSource_Canceled(t *testing.T) {
	s, err := NewLineSource(testLogger{}, strings.NewReader("a\n"), Config{}, validator.New())
	require.NoError(t, err)
	s.SetHandler(func(context.Context, []byte) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Run(ctx), context.Canceled)
}

func TestLineSource_CanceledWhileIdle(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	s, err := NewLineSource(testLogger{}, pr, Config{}, validator.New())
	require.NoError(t, err)
	s.SetHandler(func(context.Context, []byte) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation on an idle reader")
	}

	_, err = pw.Write([]byte("late\n"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestLineSource_StreamsThenStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })

	s, err := NewLineSource(testLogger{}, pr, Config{}, validator.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 4)
	s.SetHandler(func(_ context.Context, line []byte) error {
		got <- string(line)
		return nil
	})
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	_, err = pw.Write([]byte("one\ntwo\n"))
	require.NoError(t, err)
	require.Equal(t, "one", <-got)
	require.Equal(t, "two", <-got)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestLineSource_PipeEOF(t *testing.T) {
	pr, pw := io.Pipe()
	s, err := NewLineSource(testLogger{}, pr, Config{}, validator.New())
	require.NoError(t, err)
	var got []string
	s.SetHandler(func(_ context.Context, line []byte) error {
		got = append(got, string(line))
		return nil
	})

	go func() {
		_, _ = pw.Write([]byte("a\nb"))
		_ = pw.Close()
	}()
	require.NoError(t, s.Run(context.Background()))
	require.Equal(t, []string{"a", "b"}, got)
}

func TestLineSource_Invalid(t *testing.T) {
	_, err := NewLineSource(testLogger{}, nil, Config{}, validator.New())
	require.Error(t, err)

	_, err = NewLineSource(testLogger{}, strings.NewReader(""), Config{MaxLineBytes: 1}, validator.New())
	require.Error(t, err)

	s, err := NewLineSource(testLogger{}, strings.NewReader(""), Config{}, validator.New())
	require.NoError(t, err)
	require.Error(t, s.Run(context.Background()))
}
