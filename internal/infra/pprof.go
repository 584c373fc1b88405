package infra

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"

	"github.com/pancudaniel7/kafka-output-binding/internal/pkg/applog"
)

const defaultPprofAddr = "127.0.0.1:6060"

// StartPprof serves net/http/pprof on pprof.addr when pprof.enabled is set and
// returns the function that shuts it down.
func StartPprof(logger applog.AppLogger, wg *sync.WaitGroup) func(context.Context) error {
	if !viper.GetBool("pprof.enabled") {
		return func(context.Context) error { return nil }
	}

	addr := viper.GetString("pprof.addr")
	if addr == "" {
		addr = defaultPprofAddr
	}
	if n := viper.GetInt("pprof.block_profile_rate"); n > 0 {
		runtime.SetBlockProfileRate(n)
	}
	if n := viper.GetInt("pprof.mutex_profile_fraction"); n > 0 {
		runtime.SetMutexProfileFraction(n)
	}

	srv := &http.Server{Addr: addr, ReadHeaderTimeout: 5 * time.Second}
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("pprof listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("pprof server error", "err", err)
		}
	}()

	return func(ctx context.Context) error {
		if ctx == nil {
			c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(c)
		}
		return srv.Shutdown(ctx)
	}
}
