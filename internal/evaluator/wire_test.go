package evaluator

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/estandiaa-marain/EMAworkbench/internal/experiment"
	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
	"github.com/estandiaa-marain/EMAworkbench/pkg/params"
)

// wireModel declares a real, an integer and a boolean parameter and
// asserts that the values it receives carry those kinds.
type wireModel struct {
	models.Definition
}

func newWireModel() (*wireModel, error) {
	rate, err := params.NewReal("rate", 0, 1)
	if err != nil {
		return nil, err
	}
	count, err := params.NewInteger("count", 0, 10)
	if err != nil {
		return nil, err
	}
	flag, err := params.NewBoolean("flag")
	if err != nil {
		return nil, err
	}
	return &wireModel{Definition: models.Definition{
		ModelName:          "wire-echo",
		ModelUncertainties: []params.Parameter{rate, count},
		ModelLevers:        []params.Parameter{flag},
		ModelOutcomes:      []models.Outcome{models.ScalarOutcome("total"), models.SeriesOutcome("trace")},
	}}, nil
}

func (m *wireModel) Run(ctx context.Context, variables map[string]any) (models.Outcomes, error) {
	rate := variables["rate"].(float64)
	count := variables["count"].(int)
	flag := variables["flag"].(bool)

	total := rate * float64(count)
	if flag {
		total++
	}
	return models.Outcomes{
		"total": total,
		"trace": []float64{rate, float64(count)},
	}, nil
}

func init() {
	models.Register("wire-echo", func() (models.Model, error) { return newWireModel() })
	models.Register("wire-gate", func() (models.Model, error) {
		m := &gateModel{Definition: models.Definition{
			ModelName:     "wire-gate",
			ModelOutcomes: []models.Outcome{models.ScalarOutcome("ok")},
		}}
		gateInstance.Store(m)
		return m, nil
	})
}

// gateModel counts runs that enter while another run is still inside.
type gateModel struct {
	models.Definition
	busy     atomic.Int32
	overlaps atomic.Int32
}

var gateInstance atomic.Pointer[gateModel]

func (m *gateModel) Run(ctx context.Context, variables map[string]any) (models.Outcomes, error) {
	if !m.busy.CompareAndSwap(0, 1) {
		m.overlaps.Add(1)
	}
	time.Sleep(time.Millisecond)
	m.busy.Store(0)
	return models.Outcomes{"ok": 1.0}, nil
}

func wireExperiment() *experiment.Experiment {
	return &experiment.Experiment{
		ID:       7,
		Model:    "wire-echo",
		Scenario: params.NewScenario("s0", map[string]any{"rate": 0.5, "count": 4}),
		Policy:   params.NewPolicy("p0", map[string]any{"flag": true}),
	}
}

func TestExperimentWireRoundTrip(t *testing.T) {
	exp := wireExperiment()
	payload, err := experimentToStruct(exp)
	require.NoError(t, err)

	decoded, err := experimentFromStruct(payload)
	require.NoError(t, err)
	assert.Equal(t, 7, decoded.ID)
	assert.Equal(t, "wire-echo", decoded.Model)
	assert.Equal(t, "s0", decoded.Scenario.Name())
	// structpb flattens every number to float64
	assert.Equal(t, float64(4), decoded.Scenario.Values()["count"])
}

func TestCoerceWireValues(t *testing.T) {
	kinds := map[string]params.Kind{
		"rate":  params.KindReal,
		"count": params.KindInteger,
		"flag":  params.KindBoolean,
	}
	values := coerceWireValues(kinds, map[string]any{
		"rate":  0.5,
		"count": 4.0,
		"flag":  1.0,
		"label": "high",
	})
	assert.Equal(t, 0.5, values["rate"])
	assert.Equal(t, 4, values["count"])
	assert.Equal(t, true, values["flag"])
	assert.Equal(t, "high", values["label"])
}

func TestOutcomesWireRoundTrip(t *testing.T) {
	payload, err := outcomesToStruct(models.Outcomes{
		"total": 3.0,
		"trace": []float64{0.5, 4},
	})
	require.NoError(t, err)

	decoded, err := outcomesFromStruct(payload)
	require.NoError(t, err)
	assert.Equal(t, 3.0, decoded["total"])
	assert.Equal(t, []float64{0.5, 4}, decoded["trace"])
}

func TestWorkerServerRequiresInitialize(t *testing.T) {
	srv := NewWorkerServer(nil)
	payload, err := experimentToStruct(wireExperiment())
	require.NoError(t, err)

	_, err = srv.RunExperiment(context.Background(), payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestWorkerServerSerializesRuns(t *testing.T) {
	srv := NewWorkerServer(nil)
	initPayload, err := structpb.NewStruct(map[string]any{"models": []any{"wire-gate"}})
	require.NoError(t, err)
	_, err = srv.Initialize(context.Background(), initPayload)
	require.NoError(t, err)

	// the server owns a single model instance, so calls arriving on
	// separate rpc goroutines must never reach it at the same time
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		payload, err := experimentToStruct(&experiment.Experiment{
			ID:       i,
			Model:    "wire-gate",
			Scenario: params.EmptyScenario(),
			Policy:   params.EmptyPolicy(),
		})
		require.NoError(t, err)

		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := srv.RunExperiment(context.Background(), payload)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	m := gateInstance.Load()
	require.NotNil(t, m)
	assert.Equal(t, int32(0), m.overlaps.Load())
}

func TestGRPCWorkerEndToEnd(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterWorkerService(server, NewWorkerServer(nil))
	go server.Serve(lis)
	defer server.Stop()

	dialer := func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}
	engine := NewGRPCEngine("passthrough:///worker", 2, grpc.WithContextDialer(dialer))
	ev, err := NewDistributed([]Engine{engine}, []string{"wire-echo"})
	require.NoError(t, err)

	scenarios := []params.Scenario{
		params.NewScenario("s0", map[string]any{"rate": 0.5, "count": 4}),
		params.NewScenario("s1", map[string]any{"rate": 1.0, "count": 2}),
	}
	policies := []params.Policy{
		params.NewPolicy("off", map[string]any{"flag": false}),
		params.NewPolicy("on", map[string]any{"flag": true}),
	}
	gen, err := experiment.NewGenerator(scenarios, []string{"wire-echo"}, policies)
	require.NoError(t, err)

	totals := map[int]float64{}
	err = ev.Evaluate(context.Background(), gen, func(exp *experiment.Experiment, outcomes models.Outcomes) error {
		totals[exp.ID] = outcomes["total"].(float64)
		return nil
	})
	require.NoError(t, err)

	// ids nest scenario-major, policy fastest
	assert.Equal(t, map[int]float64{
		0: 2.0, // 0.5*4, flag off
		1: 3.0, // 0.5*4 + 1
		2: 2.0, // 1.0*2, flag off
		3: 3.0, // 1.0*2 + 1
	}, totals)
}
