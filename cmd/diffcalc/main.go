package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/calcforge/autodiff/diff"
	"github.com/calcforge/autodiff/internal/config"
	"github.com/calcforge/autodiff/internal/logging"
)

// sample is one evaluated grid point: the inputs, the function value and
// the raw partial derivatives up to the configured order, keyed by their
// multi-index (for example "1,0" is the first derivative with respect to
// the first variable).
type sample struct {
	Inputs      []float64          `json:"inputs"`
	Value       float64            `json:"value"`
	Derivatives map[string]float64 `json:"derivatives"`
}

func main() {
	pretty := flag.Bool("pretty", false, "indent the JSON output")
	flag.Parse()

	cfg := config.LoadOrDefault()

	logger, err := logging.New(logging.Config(cfg.Logging))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("evaluating demo function",
		zap.Int("parameters", cfg.Engine.Parameters),
		zap.Int("order", cfg.Engine.Order),
		zap.Int("points", cfg.Sample.Points))

	samples, err := run(cfg)
	if err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}

	var out []byte
	if *pretty {
		out, err = sonic.MarshalIndent(samples, "", "  ")
	} else {
		out, err = sonic.Marshal(samples)
	}
	if err != nil {
		logger.Fatal("failed to encode results", zap.Error(err))
	}
	fmt.Println(string(out))
}

// run evaluates f(x) = exp(-|x|^2/2) * (1 + sum x_i) with full derivative
// information on an evenly spaced diagonal grid.
func run(cfg *config.Config) ([]sample, error) {
	factory, err := diff.NewFactory(cfg.Engine.Parameters, cfg.Engine.Order)
	if err != nil {
		return nil, err
	}

	step := 0.0
	if cfg.Sample.Points > 1 {
		step = (cfg.Sample.To - cfg.Sample.From) / float64(cfg.Sample.Points-1)
	}

	samples := make([]sample, 0, cfg.Sample.Points)
	for p := 0; p < cfg.Sample.Points; p++ {
		t := cfg.Sample.From + float64(p)*step

		inputs := make([]float64, cfg.Engine.Parameters)
		vars := make([]*diff.DerivativeStructure, cfg.Engine.Parameters)
		for i := range vars {
			inputs[i] = t + 0.1*float64(i)
			vars[i], err = factory.Variable(i, inputs[i])
			if err != nil {
				return nil, err
			}
		}

		f := demo(factory, vars)

		s := sample{
			Inputs:      inputs,
			Value:       f.Value(),
			Derivatives: make(map[string]float64),
		}
		compiler := factory.Compiler()
		for slot := 1; slot < compiler.Size(); slot++ {
			orders, err := compiler.PartialDerivativeOrders(slot)
			if err != nil {
				return nil, err
			}
			d, err := f.PartialDerivative(orders...)
			if err != nil {
				return nil, err
			}
			s.Derivatives[ordersKey(orders)] = d
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func demo(factory *diff.Factory, vars []*diff.DerivativeStructure) *diff.DerivativeStructure {
	normSq := factory.Constant(0)
	linear := factory.Constant(1)
	for _, v := range vars {
		normSq = normSq.Add(v.Multiply(v))
		linear = linear.Add(v)
	}
	return normSq.MultiplyScalar(-0.5).Exp().Multiply(linear)
}

func ordersKey(orders []int) string {
	key := ""
	for i, o := range orders {
		if i > 0 {
			key += ","
		}
		key += fmt.Sprint(o)
	}
	return key
}
