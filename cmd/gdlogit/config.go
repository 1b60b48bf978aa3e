package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/YuminosukeSato/gdlogit/core/model"
	"github.com/YuminosukeSato/gdlogit/linear"
	"github.com/YuminosukeSato/gdlogit/pkg/errors"
	"github.com/YuminosukeSato/gdlogit/pkg/log"
	"github.com/YuminosukeSato/gdlogit/pkg/telemetry"
	"github.com/YuminosukeSato/gdlogit/report"
	"github.com/YuminosukeSato/gdlogit/sklearn/linear_model"
	"github.com/prometheus/client_golang/prometheus"
)

const logLevelEnv = "GDLOGIT_LOG_LEVEL"

// config holds the flags shared by every command.
type config struct {
	alpha       float64
	iters       int
	lambda      float64
	seed        int64
	testSize    float64
	plot        string
	save        string
	logLevel    string
	metricsAddr string
}

func newFlagSet(name string, out io.Writer, cfg *config) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)

	defaultLevel := os.Getenv(logLevelEnv)
	if defaultLevel == "" {
		defaultLevel = "info"
	}
	fs.Float64Var(&cfg.alpha, "alpha", linear.DefaultLearningRate, "gradient-descent learning rate")
	fs.IntVar(&cfg.iters, "iters", linear.DefaultIterations, "number of gradient-descent iterations")
	fs.Float64Var(&cfg.lambda, "lambda", 0, "L2 regularization strength (bias excluded)")
	fs.Int64Var(&cfg.seed, "seed", 42, "seed for data generation and the train/test split")
	fs.Float64Var(&cfg.testSize, "test-size", 0.2, "fraction of examples held out for testing")
	fs.StringVar(&cfg.plot, "plot", "", "write the cost history plot to this file (png, svg, pdf)")
	fs.StringVar(&cfg.save, "save", "", "save the trained model to this gob file")
	fs.StringVar(&cfg.logLevel, "log-level", defaultLevel, "log level: debug, info, warn, error (env "+logLevelEnv+")")
	fs.StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return fs
}

// setup configures logging and, when requested, the metrics endpoint. The
// returned observer is nil when metrics are disabled.
func (c *config) setup(ctx context.Context, name string) (linear.Observer, error) {
	if err := log.SetupLogger(c.logLevel); err != nil {
		return nil, err
	}
	if c.metricsAddr == "" {
		return nil, nil
	}

	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics()
	if err := m.Register(reg); err != nil {
		return nil, err
	}
	go func() {
		if err := telemetry.Serve(ctx, c.metricsAddr, reg); err != nil {
			log.GetLoggerWithName("telemetry").Error("metrics server stopped", log.ErrAttrKey, err)
		}
	}()
	return m.Observer(name), nil
}

func (c *config) classifier(observer linear.Observer) *linear_model.LogisticRegression {
	return linear_model.NewLogisticRegression(
		linear_model.WithLRLearningRate(c.alpha),
		linear_model.WithLRMaxIter(c.iters),
		linear_model.WithLRLambda(c.lambda),
		linear_model.WithLRObserver(observer),
	)
}

// finish writes the optional plot and model file.
func (c *config) finish(clf *linear_model.LogisticRegression, title string) error {
	if c.plot != "" {
		histories := clf.CostHistory()
		var err error
		if len(histories) == 1 {
			err = report.PlotCostHistory(histories[0], title, c.plot)
		} else {
			err = report.PlotCostHistories(histories, title, c.plot)
		}
		if err != nil {
			return err
		}
	}
	if c.save != "" {
		if err := model.SaveModel(clf, c.save); err != nil {
			return errors.Wrap(err, "save model")
		}
	}
	return nil
}
