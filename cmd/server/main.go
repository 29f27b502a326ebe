package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"variantchess/internal/httpx"
	"variantchess/internal/session"
	"variantchess/internal/uci"
)

func main() {
	// Flags (env fallbacks). The engine is optional: without a binary the
	// server still hosts human-vs-human rooms.
	addr := flag.String("addr", getenv("VCHESS_ADDR", ":8080"), "listen address")
	enginePath := flag.String("engine", getenv("VCHESS_ENGINE", ""), "path to a UCI engine binary (empty: no computer opponent)")
	engineTimeout := flag.Duration("engine-timeout", getend("VCHESS_ENGINE_TIMEOUT", 10*time.Second), "per-search engine deadline")
	debug := flag.Bool("debug", getenb("VCHESS_DEBUG", false), "verbose logging")
	flag.Parse()

	log := newLogger(*debug)
	defer func() { _ = log.Sync() }()

	var engine session.Engine
	if *enginePath != "" {
		pool, err := uci.NewPool(log, *enginePath, *engineTimeout)
		if err != nil {
			log.Fatal("engine init", zap.String("path", *enginePath), zap.Error(err))
		}
		defer func() { _ = pool.Close() }()
		engine = pool
		log.Info("engine ready", zap.String("path", *enginePath), zap.Duration("timeout", *engineTimeout))
	} else {
		log.Info("no engine configured, computer rooms disabled")
	}

	co := session.NewCoordinator(log, engine)
	srv := httpx.NewServer(log, co)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	if err := srv.Listen(*addr); err != nil {
		log.Fatal("http server", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenb(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return def
}

func getend(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
