// The solver1927 command runs standalone Equihash 192,7 solve attempts
// for benchmarking and diagnostics. Pool submission lives in a separate
// client; this binary only drives the solver core.
package main

import (
	"context"
	"encoding/binary"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/oneidprod/solver1927/config/params"
	"github.com/oneidprod/solver1927/simd"
	"github.com/oneidprod/solver1927/solver"
)

var log = logrus.WithField("prefix", "main")

var (
	headerFlag = &cli.StringFlag{
		Name:  "header",
		Usage: "challenge header bytes",
		Value: "solver1927-benchmark-header",
	}
	nonceStartFlag = &cli.Uint64Flag{
		Name:  "nonce-start",
		Usage: "first nonce of the search range",
	}
	attemptsFlag = &cli.IntFlag{
		Name:  "attempts",
		Usage: "number of solve attempts to run",
		Value: 16,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "concurrent workers, each with its own arena",
		Value: 1,
	}
	forceTierFlag = &cli.StringFlag{
		Name:  "force-tier",
		Usage: "pin the vector tier (scalar, sse2-128, avx2-256, avx512-512) instead of auto-detecting",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "logging level (trace, debug, info, warn, error)",
		Value: "info",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "solver1927"
	app.Usage = "CPU solver for the Equihash 192,7 proof of work"
	app.Flags = []cli.Flag{
		headerFlag, nonceStartFlag, attemptsFlag, workersFlag, forceTierFlag, verbosityFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		logrus.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		level, err := logrus.ParseLevel(ctx.String(verbosityFlag.Name))
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		return nil
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(cliCtx *cli.Context) error {
	var opts []solver.Option
	if name := cliCtx.String(forceTierFlag.Name); name != "" {
		tier, err := simd.ParseTier(name)
		if err != nil {
			return err
		}
		opts = append(opts, solver.WithForcedTier(tier))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	header := []byte(cliCtx.String(headerFlag.Name))
	nonceStart := cliCtx.Uint64(nonceStartFlag.Name)
	attempts := cliCtx.Int(attemptsFlag.Name)
	workers := cliCtx.Int(workersFlag.Name)
	if workers < 1 {
		workers = 1
	}

	var solved, exhausted, cancelled atomic.Uint64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			// Every worker owns its solver and arena; attempts share
			// nothing across goroutines.
			s, err := solver.New(params.EquihashConfig(), opts...)
			if err != nil {
				log.WithError(err).Error("Could not initialize solver")
				stop()
				return
			}
			defer s.Release()

			if w == 0 {
				tier, width := s.Capabilities()
				log.WithFields(logrus.Fields{
					"tier":    tier,
					"batch":   width,
					"arenaMB": s.UsageMB(),
				}).Info("Solver configured")
			}

			cancel := func() bool { return ctx.Err() != nil }
			for i := w; i < attempts; i += workers {
				var nonce [8]byte
				binary.LittleEndian.PutUint64(nonce[:], nonceStart+uint64(i))

				outcome := s.Solve(header, nonce[:], cancel,
					func(indices []uint32, _ int, nonce []byte) {
						log.WithFields(logrus.Fields{
							"worker":  w,
							"nonce":   nonce,
							"indices": len(indices),
						}).Info("Solution found")
					}, nil)

				switch outcome {
				case solver.OutcomeSolved:
					solved.Add(1)
				case solver.OutcomeExhausted:
					exhausted.Add(1)
				case solver.OutcomeCancelled:
					cancelled.Add(1)
					return
				case solver.OutcomeFailed:
					log.Error("Attempt setup failed; stopping worker")
					return
				}
			}
		}(w)
	}
	wg.Wait()

	log.WithFields(logrus.Fields{
		"solved":    solved.Load(),
		"exhausted": exhausted.Load(),
		"cancelled": cancelled.Load(),
	}).Info("Run complete")
	return nil
}
