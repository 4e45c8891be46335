package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/jugs/internal/api"
	"github.com/danielpatrickdp/jugs/internal/gate"
	"github.com/danielpatrickdp/jugs/internal/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	sess, store, closeFn, err := openSession(strictMode)
	if err != nil {
		return err
	}
	defer closeFn()

	// Start with a puzzle only when one was asked for; clients can call Setup.
	if presetName != "" || capacitiesArg != "" {
		caps, target, err := resolvePuzzle(appConfig, presetName, capacitiesArg, targetArg)
		if err != nil {
			return err
		}
		if _, err := sess.Setup(caps, target); err != nil {
			return err
		}
	}

	lis, err := net.Listen("tcp", appConfig.GRPCAddr)
	if err != nil {
		return err
	}
	grpcServer := grpc.NewServer()
	rpc.Register(grpcServer, rpc.NewServer(sess, rpc.ServerConfig{
		GateConfig: gate.GateConfig{RejectSelfPour: rejectSelfPour},
		ReplayPace: appConfig.ReplayPace,
	}, logger))

	httpServer := &http.Server{
		Addr:              appConfig.HTTPAddr,
		Handler:           api.NewRouter(api.NewHandler(sess, store, logger)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() {
		logger.Info("grpc listening", "addr", lis.Addr().String())
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", "addr", appConfig.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		logger.Error("http shutdown", "error", serr)
	}
	grpcServer.GracefulStop()
	return err
}
