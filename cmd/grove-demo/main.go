// Command grove-demo mounts a small host tree, binds greeters at two scope
// boundaries and prints what each node sees. Run it with:
//
//	go run ./cmd/grove-demo -config config.yml
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ARTM2000/grove"
	"github.com/ARTM2000/grove/internal/config"
	"github.com/ARTM2000/grove/internal/logging"
	"github.com/ARTM2000/grove/mount"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

type Audience interface {
	Who() string
}

type Greeter interface {
	Greet() (string, error)
}

type audience string

func (a audience) Who() string { return string(a) }

type greeter struct {
	audience grove.Lazy[Audience]
	prefix   grove.Lazy[string]
}

func (g *greeter) Greet() (string, error) {
	a, err := g.audience.Get()
	if err != nil {
		return "", err
	}
	prefix, err := g.prefix.Get()
	if err != nil {
		return "", err
	}
	return prefix + "hello " + a.Who(), nil
}

var (
	IAudience = grove.NewIdentifier[Audience]("Audience")
	IGreeter  = grove.NewIdentifier[Greeter]("Greeter")
	IPrefix   = grove.NewIdentifier[string]("Prefix")
)

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

func newAudience(who string) grove.Constructor[Audience] {
	return func(*grove.Injector) (Audience, error) {
		return audience(who), nil
	}
}

func newGreeter(in *grove.Injector) (Greeter, error) {
	return &greeter{
		audience: grove.Required(in, IAudience),
		prefix:   grove.Optional(in, IPrefix),
	}, nil
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(cfg.Logging).With().Str("service", cfg.Name).Logger()
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("demo failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) (err error) {
	reg := prometheus.NewRegistry()
	rootOpts := []grove.Option{grove.WithName("app"), grove.WithLogger(log)}
	if cfg.Metrics.Enabled {
		metrics, err := grove.NewMetrics(reg)
		if err != nil {
			return err
		}
		rootOpts = append(rootOpts, grove.WithMetrics(metrics))
	}

	defer func() { err = errors.Join(err, grove.CloseDefaultRoot()) }()

	app := grove.New(rootOpts...)
	defer func() { err = errors.Join(err, app.Dispose()) }()

	tree := mount.NewRoot(cfg.Name)
	child := tree.Append("child")
	grandChild := child.Append("grandchild")
	orphan := tree.Append("orphan")
	stranger := tree.Append("stranger")
	defer func() { err = errors.Join(err, tree.Unmount()) }()

	self, err := grove.ProvideSelf(app)
	if err != nil {
		return err
	}
	wa, err := grove.Provide(app, IAudience, newAudience(cfg.Greeting.Audience))
	if err != nil {
		return err
	}
	wg, err := grove.Provide(app, IGreeter, newGreeter)
	if err != nil {
		return err
	}
	grove.Pipe(self, wa, wg)(child)

	scope, err := child.Scope()
	if err != nil {
		return err
	}
	wa, err = grove.Provide(scope, IAudience, newAudience(cfg.Greeting.Alternative))
	if err != nil {
		return err
	}
	wg, err = grove.Provide(scope, IGreeter, newGreeter)
	if err != nil {
		return err
	}
	grove.Pipe(wa, wg)(grandChild)

	for _, n := range []*mount.Node{child, grandChild, orphan} {
		report(log, n, func() (Greeter, error) { return mount.Use(n, IGreeter) })
	}
	report(log, stranger, func() (Greeter, error) { return mount.UseOptional(stranger, IGreeter) })

	if cfg.Metrics.Enabled {
		logMetrics(log, reg)
	}
	return nil
}

func report(log zerolog.Logger, n *mount.Node, use func() (Greeter, error)) {
	g, err := use()
	if err != nil {
		log.Warn().Err(err).Str("node", n.Path()).Msg("no greeter")
		return
	}
	if g == nil {
		log.Info().Str("node", n.Path()).Msg("greeter not provided")
		return
	}
	msg, err := g.Greet()
	if err != nil {
		log.Warn().Err(err).Str("node", n.Path()).Msg("greeting failed")
		return
	}
	fmt.Printf("%s: %s\n", n.Path(), msg)
}

func logMetrics(log zerolog.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("gathering metrics")
		return
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		log.Debug().Str("metric", mf.GetName()).Float64("value", total).Msg("metrics")
	}
}
