package evaluator

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// GRPCEngine drives one remote worker process over gRPC. Concurrency
// bounds the number of RPCs in flight against the worker, so the engine
// acts as the worker's submission queue.
type GRPCEngine struct {
	target      string
	concurrency int
	dialOpts    []grpc.DialOption

	conn *grpc.ClientConn
	sem  chan struct{}
	wg   sync.WaitGroup
}

// NewGRPCEngine creates an engine for the worker listening on target.
// A concurrency below one defaults to a single RPC in flight. Extra
// dial options are appended after the default insecure credentials.
func NewGRPCEngine(target string, concurrency int, opts ...grpc.DialOption) *GRPCEngine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &GRPCEngine{target: target, concurrency: concurrency, dialOpts: opts}
}

// Initialize dials the worker and asks it to build the named models.
func (e *GRPCEngine) Initialize(ctx context.Context, modelNames []string) error {
	opts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, e.dialOpts...)
	conn, err := grpc.NewClient(e.target, opts...)
	if err != nil {
		return fmt.Errorf("dialing worker %s: %w", e.target, err)
	}

	names := make([]any, len(modelNames))
	for i, n := range modelNames {
		names[i] = n
	}
	req, err := structpb.NewStruct(map[string]any{"models": names})
	if err != nil {
		conn.Close()
		return fmt.Errorf("encoding initialize request: %w", err)
	}

	resp := new(structpb.Struct)
	if err := conn.Invoke(ctx, workerInitializeMethod, req, resp); err != nil {
		conn.Close()
		return fmt.Errorf("initializing worker %s: %w", e.target, err)
	}

	e.conn = conn
	e.sem = make(chan struct{}, e.concurrency)
	return nil
}

// Submit ships the experiment to the worker without blocking the
// caller. The completion lands on out when the RPC returns.
func (e *GRPCEngine) Submit(ctx context.Context, exp *experiment.Experiment, out chan<- Completion) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		select {
		case e.sem <- struct{}{}:
			defer func() { <-e.sem }()
		case <-ctx.Done():
			out <- Completion{Experiment: exp, Err: ctx.Err()}
			return
		}

		outcomes, err := e.run(ctx, exp)
		out <- Completion{Experiment: exp, Outcomes: outcomes, Err: err}
	}()
}

func (e *GRPCEngine) run(ctx context.Context, exp *experiment.Experiment) (models.Outcomes, error) {
	req, err := experimentToStruct(exp)
	if err != nil {
		return nil, err
	}
	resp := new(structpb.Struct)
	if err := e.conn.Invoke(ctx, workerRunExperimentMethod, req, resp); err != nil {
		return nil, fmt.Errorf("worker %s: %w", e.target, err)
	}
	return outcomesFromStruct(resp)
}

// Close waits for in-flight RPCs, asks the worker to release its
// models, and tears down the connection.
func (e *GRPCEngine) Close() error {
	if e.conn == nil {
		return nil
	}
	e.wg.Wait()

	req, err := structpb.NewStruct(nil)
	if err == nil {
		resp := new(structpb.Struct)
		err = e.conn.Invoke(context.Background(), workerShutdownMethod, req, resp)
	}
	if closeErr := e.conn.Close(); err == nil {
		err = closeErr
	}
	e.conn = nil
	return err
}
