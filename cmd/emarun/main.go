package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/estandiaa-marain/EMAworkbench/internal/evaluator"
	_ "github.com/estandiaa-marain/EMAworkbench/internal/flumodel"
	"github.com/estandiaa-marain/EMAworkbench/internal/sampling"
	"github.com/estandiaa-marain/EMAworkbench/pkg/config"
	"github.com/estandiaa-marain/EMAworkbench/pkg/ema"
	"github.com/estandiaa-marain/EMAworkbench/pkg/logger"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

func main() {
	var setupPath string
	var logLevel string
	var sampleOnly bool

	flag.StringVar(&setupPath, "setup", "config/setup.yaml", "experiment setup file")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flag.BoolVar(&sampleOnly, "sample", false, "sample cases from the setup's parameters and print them without running")
	flag.Parse()

	setup, err := config.LoadSetup(setupPath)
	if err != nil {
		logger.Error("failed to load setup", "error", err)
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = setup.LogLevel
	}
	logger.SetDefault(logger.NewText(logLevel, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sampleOnly {
		if err := sampleCases(setup); err != nil {
			logger.Error("sampling failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, setup); err != nil {
		logger.Error("experiment run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, setup *config.Setup) error {
	ms := make([]models.Model, 0, len(setup.Models))
	for _, name := range setup.Models {
		m, err := models.New(name)
		if err != nil {
			return err
		}
		ms = append(ms, m)
	}

	opts, err := runOptions(setup)
	if err != nil {
		return err
	}

	res, err := ema.PerformExperiments(ctx, ms, opts...)
	if err != nil {
		return err
	}

	summaries, err := res.Summarize()
	if err != nil {
		return err
	}
	for _, s := range summaries {
		logger.Info("outcome summary", "outcome", s.Outcome,
			"min", s.Min, "max", s.Max, "mean", s.Mean,
			"median", s.Median, "stddev", s.StdDev)
	}
	return nil
}

func runOptions(setup *config.Setup) ([]ema.Option, error) {
	var opts []ema.Option

	if run := setup.Run; run != nil {
		if run.Scenarios > 0 {
			opts = append(opts, ema.WithScenarios(run.Scenarios))
		}
		if run.Policies > 0 {
			opts = append(opts, ema.WithPolicies(run.Policies))
		}
		if run.UncertaintySampling != "" {
			opts = append(opts, ema.WithUncertaintySampling(sampling.Method(run.UncertaintySampling)))
		}
		if run.LeverSampling != "" {
			opts = append(opts, ema.WithLeverSampling(sampling.Method(run.LeverSampling)))
		}
		opts = append(opts,
			ema.WithUncertaintyUnion(run.UncertaintyUnion),
			ema.WithLeverUnion(run.LeverUnion))
		if run.Seed != 0 {
			opts = append(opts, ema.WithSeed(run.Seed))
		}
		if run.ReportingInterval > 0 {
			opts = append(opts, ema.WithReportingInterval(run.ReportingInterval))
		}
	}

	if len(setup.Scenarios) > 0 {
		opts = append(opts, ema.WithScenarioSet(config.BuildScenarios(setup.Scenarios)))
	}
	if len(setup.Policies) > 0 {
		opts = append(opts, ema.WithPolicySet(config.BuildPolicies(setup.Policies)))
	}

	ev, err := buildEvaluator(setup)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		opts = append(opts, ema.WithEvaluator(ev))
	}
	return opts, nil
}

func buildEvaluator(setup *config.Setup) (evaluator.Evaluator, error) {
	spec := setup.Evaluator
	if spec == nil || spec.Type == "" || spec.Type == "sequential" {
		return nil, nil
	}

	switch spec.Type {
	case "pool":
		factories := make([]models.Factory, 0, len(setup.Models))
		for _, name := range setup.Models {
			factories = append(factories, func() (models.Model, error) {
				return models.New(name)
			})
		}
		return evaluator.NewPool(factories, spec.Workers), nil
	case "distributed":
		engines := make([]evaluator.Engine, 0, len(spec.Endpoints))
		for _, endpoint := range spec.Endpoints {
			engines = append(engines, evaluator.NewGRPCEngine(endpoint, spec.Concurrency))
		}
		return evaluator.NewDistributed(engines, setup.Models)
	default:
		return nil, nil
	}
}

// sampleCases draws cases over the setup's own parameter declarations
// and prints them, without touching any model.
func sampleCases(setup *config.Setup) error {
	parameters, err := config.BuildParameters(setup.Parameters)
	if err != nil {
		return err
	}

	method := sampling.MethodLHS
	n := 10
	var seed int64
	if setup.Run != nil {
		if setup.Run.UncertaintySampling != "" {
			method = sampling.Method(setup.Run.UncertaintySampling)
		}
		if setup.Run.Scenarios > 0 {
			n = setup.Run.Scenarios
		}
		seed = setup.Run.Seed
	}

	sampler, err := sampling.NewSampler(method, seed)
	if err != nil {
		return err
	}
	set, err := sampler.GenerateDesigns(parameters, n)
	if err != nil {
		return err
	}
	cases, err := set.Scenarios()
	if err != nil {
		return err
	}

	logger.Info("sampled cases", "method", string(method), "count", len(cases))
	for i, c := range cases {
		logger.Info("case", "index", i, "values", c.Values())
	}
	return nil
}
