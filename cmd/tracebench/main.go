// Package main is the tracebench command line entrypoint: a thin urfave/cli
// wrapper dispatching to internal/driver's trace and simulate runs.
/*
 * Copyright (c) 2024, tracebench authors.
 */
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/gc-research/tracebench/internal/cmn/nlog"
	"github.com/gc-research/tracebench/internal/driver"
	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/nmp"
)

var (
	objectModelFlag = cli.StringFlag{
		Name:  "object-model",
		Value: string(heap.OpenJDK),
		Usage: "heap object model to restore the snapshot into: OpenJDK, OpenJDKAE, Bidirectional, BidirectionalFallback",
	}
	tracingLoopFlag = cli.StringFlag{
		Name:  "tracing-loop",
		Value: string(driver.KernelWP),
		Usage: "tracing kernel to run: EdgeSlot, EdgeObjref, NodeObjref, DistributedNodeObjref, ShapeCache, WP, WP2, WPEdgeSlot, WPEdgeSlotDual, Forwarding; overridden by the TRACING_LOOP environment variable",
	}
	iterationsFlag = cli.IntFlag{
		Name:  "iterations",
		Value: 1,
		Usage: "number of marking epochs to run per heapdump",
	}
	workersFlag = cli.IntFlag{
		Name:  "threads",
		Value: 4,
		Usage: "worker/processor count; overridden by the THREADS environment variable",
	}
	topologyFlag = cli.StringFlag{
		Name:  "topology",
		Value: string(nmp.TopologyFullyConnected),
		Usage: "NMP network topology: line, ring, fully-connected",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "if set, serve Prometheus metrics at this address for the run's duration",
	}
)

func buildConfig(c *cli.Context) (driver.Config, error) {
	if c.NArg() == 0 {
		return driver.Config{}, errors.New("at least one heapdump snapshot path is required")
	}
	cfg := driver.Default()
	cfg.Paths = c.Args()
	cfg.ObjectModel = heap.Kind(c.String(objectModelFlag.Name))
	if os.Getenv("TRACING_LOOP") == "" {
		cfg.TracingLoop = driver.KernelChoice(c.String(tracingLoopFlag.Name))
	}
	cfg.Iterations = c.Int(iterationsFlag.Name)
	cfg.Topology = nmp.TopologyKind(c.String(topologyFlag.Name))
	cfg.MetricsAddr = c.String(metricsAddrFlag.Name)
	if c.IsSet(workersFlag.Name) && os.Getenv("THREADS") == "" {
		cfg.NumWorkers = c.Int(workersFlag.Name)
		cfg.NumProcessors = c.Int(workersFlag.Name)
	}
	return cfg, nil
}

func withMetricsServer(cfg driver.Config, run func() error) error {
	if cfg.MetricsAddr == "" {
		return run()
	}
	runID, err := driver.NewRunID()
	if err != nil {
		return err
	}
	srv := driver.NewMetricsServer(cfg.MetricsAddr, driver.NewMetrics(runID))
	go func() {
		if err := srv.Serve(); err != nil {
			nlog.Warningf("tracebench: metrics server stopped: %v", err)
		}
	}()
	defer srv.Shutdown()
	return run()
}

func notImplemented(name string) cli.ActionFunc {
	return func(*cli.Context) error {
		return fmt.Errorf("tracebench: %s is not implemented", name)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "tracebench"
	app.Usage = "replay recorded heap snapshots against parallel GC tracing kernels and the NMP simulator"
	app.Commands = []cli.Command{
		{
			Name:      "trace",
			Usage:     "restore snapshots and run a tracing kernel against them",
			ArgsUsage: "SNAPSHOT [SNAPSHOT...]",
			Flags:     []cli.Flag{objectModelFlag, tracingLoopFlag, iterationsFlag, workersFlag, metricsAddrFlag},
			Action: func(c *cli.Context) error {
				cfg, err := buildConfig(c)
				if err != nil {
					return err
				}
				return withMetricsServer(cfg, func() error { return driver.RunTrace(cfg) })
			},
		},
		{
			Name:      "simulate",
			Usage:     "restore snapshots and run the NMP simulator against them",
			ArgsUsage: "SNAPSHOT [SNAPSHOT...]",
			Flags:     []cli.Flag{objectModelFlag, workersFlag, topologyFlag, metricsAddrFlag},
			Action: func(c *cli.Context) error {
				cfg, err := buildConfig(c)
				if err != nil {
					return err
				}
				return withMetricsServer(cfg, func() error { return driver.RunSimulate(cfg) })
			},
		},
		{
			Name:      "verify",
			Usage:     "sanity-check that a snapshot's declared objects match what its roots reach",
			ArgsUsage: "SNAPSHOT [SNAPSHOT...]",
			Action: func(c *cli.Context) error {
				if c.NArg() == 0 {
					return errors.New("at least one heapdump snapshot path is required")
				}
				return driver.VerifySnapshots(c.Args())
			},
		},
		{Name: "analyze", Usage: "not implemented", Action: notImplemented("analyze")},
		{Name: "depth", Usage: "not implemented", Action: notImplemented("depth")},
		{Name: "utilization", Usage: "not implemented", Action: notImplemented("utilization")},
		{Name: "export", Usage: "not implemented", Action: notImplemented("export")},
		{Name: "memdump", Usage: "not implemented", Action: notImplemented("memdump")},
		{Name: "paper-analyze", Usage: "not implemented", Action: notImplemented("paper-analyze")},
	}

	if err := app.Run(os.Args); err != nil {
		nlog.Errorf("tracebench: %v", err)
		os.Exit(1)
	}
}
