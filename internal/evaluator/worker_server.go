package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// WorkerServer serves experiments on a worker process. Models are
// instantiated from the registry on the first Initialize call and kept
// for the lifetime of the run, so expensive model setup is paid once
// per worker rather than once per experiment.
type WorkerServer struct {
	log *slog.Logger

	mu     sync.Mutex
	runner *experiment.Runner
	kinds  map[string]map[string]params.Kind

	// runMu serializes model invocation. The worker owns a single
	// instance of each model, and grpc serves unary calls on separate
	// goroutines, so overlapping RunExperiment calls must queue here.
	runMu sync.Mutex
}

// NewWorkerServer creates an uninitialized worker server.
func NewWorkerServer(log *slog.Logger) *WorkerServer {
	if log == nil {
		log = slog.Default()
	}
	return &WorkerServer{log: log}
}

// Initialize builds the requested models. Repeat calls with the same
// model set are no-ops, so several engines may share one worker.
func (s *WorkerServer) Initialize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	names, err := modelNamesFromStruct(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runner != nil {
		return structpb.NewStruct(map[string]any{"initialized": true})
	}

	instances := make([]models.Model, 0, len(names))
	kinds := make(map[string]map[string]params.Kind, len(names))
	for _, name := range names {
		m, err := models.New(name)
		if err != nil {
			return nil, fmt.Errorf("initializing worker: %w", err)
		}
		instances = append(instances, m)
		kinds[m.Name()] = parameterKinds(m)
	}
	runner, err := experiment.NewRunner(instances)
	if err != nil {
		return nil, fmt.Errorf("initializing worker: %w", err)
	}
	s.runner = runner.WithLogger(s.log)
	s.kinds = kinds
	s.log.Info("worker initialized", "models", names)
	return structpb.NewStruct(map[string]any{"initialized": true})
}

// RunExperiment executes one experiment and returns its outcomes.
func (s *WorkerServer) RunExperiment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	runner, modelKinds := s.runner, s.kinds
	s.mu.Unlock()
	if runner == nil {
		return nil, fmt.Errorf("worker not initialized")
	}

	exp, err := experimentFromStruct(req)
	if err != nil {
		return nil, err
	}
	if kinds, ok := modelKinds[exp.Model]; ok {
		exp.Scenario = params.NewScenario(exp.Scenario.Name(), coerceWireValues(kinds, exp.Scenario.Values()))
		exp.Policy = params.NewPolicy(exp.Policy.Name(), coerceWireValues(kinds, exp.Policy.Values()))
	}

	s.runMu.Lock()
	outcomes, err := runner.RunExperiment(ctx, exp)
	s.runMu.Unlock()
	if err != nil {
		return nil, err
	}
	return outcomesToStruct(outcomes)
}

// Shutdown releases the worker's model instances.
func (s *WorkerServer) Shutdown(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	runner := s.runner
	s.runner = nil
	s.kinds = nil
	s.mu.Unlock()

	if runner != nil {
		if err := runner.Cleanup(); err != nil {
			return nil, fmt.Errorf("worker shutdown: %w", err)
		}
	}
	return structpb.NewStruct(map[string]any{"shutdown": true})
}

func modelNamesFromStruct(req *structpb.Struct) ([]string, error) {
	raw, ok := req.AsMap()["models"].([]any)
	if !ok {
		return nil, fmt.Errorf("initialize payload missing models list")
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("initialize payload: model name is %T", v)
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("initialize payload: no models requested")
	}
	return names, nil
}

func parameterKinds(m models.Model) map[string]params.Kind {
	kinds := make(map[string]params.Kind)
	for _, p := range m.Uncertainties() {
		kinds[p.Name()] = p.Kind()
	}
	for _, p := range m.Levers() {
		kinds[p.Name()] = p.Kind()
	}
	return kinds
}
