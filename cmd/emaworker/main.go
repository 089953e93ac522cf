package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/estandiaa-marain/EMAworkbench/internal/evaluator"
	_ "github.com/estandiaa-marain/EMAworkbench/internal/flumodel"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
)

func main() {
	var addr string
	var logLevel string

	flag.StringVar(&addr, "addr", ":50051", "gRPC listen address")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpcServer := grpc.NewServer()
	evaluator.RegisterWorkerService(grpcServer, evaluator.NewWorkerServer(logger.Default))

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen", "addr", addr, "error", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("worker listening", "addr", addr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("worker server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	grpcServer.GracefulStop()
}
