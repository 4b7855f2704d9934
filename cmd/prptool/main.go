package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/mersenne-go/prptool/internal/config"
	"github.com/mersenne-go/prptool/internal/fftplan"
	"github.com/mersenne-go/prptool/internal/pm1"
	"github.com/mersenne-go/prptool/internal/prp"
	"github.com/mersenne-go/prptool/internal/statlog"
	"github.com/mersenne-go/prptool/internal/stopflag"
	"github.com/mersenne-go/prptool/internal/transform"
	"github.com/mersenne-go/prptool/internal/weights"
)

// VERSION is injected by buildflags, following the teacher's
// client/main.go/server/main.go convention.
var VERSION = "SELFBUILD"

// stop is the process-wide cancellation flag SIGINT raises and both
// drivers poll at block boundaries (§5 "Cancellation", §9). The
// signal handler that sets it lives in signal_unix.go, gated to the
// platforms that support SIGUSR1 (teacher's client/signal.go).
var stop = stopflag.New()

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	myApp := cli.NewApp()
	myApp.Name = "prptool"
	myApp.Usage = "PRP and P-1 testing of Mersenne numbers"
	myApp.Version = VERSION
	myApp.Flags = []cli.Flag{
		cli.IntFlag{Name: "exponent, e", Usage: "Mersenne exponent E to test (2^E-1); required"},
		cli.IntFlag{Name: "fft", Usage: "FFT size, or a signed delta (<10) from the default shape"},
		cli.IntFlag{Name: "block", Value: 1000, Usage: "PRP Gerbicz block size; 10000 must be divisible by it"},
		cli.IntFlag{Name: "B1", Usage: "P-1 stage-1 bound; enables P-1 when > 0"},
		cli.IntFlag{Name: "B2", Usage: "P-1 stage-2 bound"},
		cli.StringFlag{Name: "carry", Value: "auto", Usage: "carry width policy: long, short, auto"},
		cli.IntFlag{Name: "device", Usage: "OpenCL device index"},
		cli.IntFlag{Name: "maxAlloc", Usage: "max GPU allocation in MB; required for P-1 runs when the device reports no free memory"},
		cli.IntFlag{Name: "iters", Usage: "stop after this many squarings, a bounded benchmark run; 0 for unbounded"},
		cli.IntFlag{Name: "log", Usage: "emit a progress line every N iterations"},
		cli.StringFlag{Name: "logfile", Usage: "redirect logging to this file instead of stderr"},
		cli.StringFlag{Name: "dump", Usage: "write the chosen FFT plan and the first direct weights to PATH for offline inspection"},
		cli.StringFlag{Name: "checkpointdir", Value: ".", Usage: "directory for PRP/P1/P2 checkpoint files"},
		cli.StringFlag{Name: "statlog", Usage: "collect stats to file, aware of time format in Go, like ./stat-20060102.csv"},
		cli.IntFlag{Name: "statperiod", Value: 60, Usage: "stats collection period in seconds"},
		cli.BoolFlag{Name: "profile", Usage: "enable per-kernel-stage timing"},
		cli.BoolFlag{Name: "cuYield", Usage: "poll queue completion instead of blocking (NVIDIA OpenCL driver workaround)"},
		cli.StringFlag{Name: "c", Usage: "config from JSON file, overriding the command line"},
	}

	myApp.Action = run

	if err := myApp.Run(os.Args); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg := config.Config{
		Exponent:      uint32(c.Int("exponent")),
		FFTSize:       int32(c.Int("fft")),
		Block:         uint32(c.Int("block")),
		B1:            uint32(c.Int("B1")),
		B2:            uint32(c.Int("B2")),
		Carry:         c.String("carry"),
		Device:        c.Int("device"),
		MaxAlloc:      c.Int("maxAlloc"),
		Iters:         uint32(c.Int("iters")),
		LogStep:       uint32(c.Int("log")),
		Log:           c.String("logfile"),
		Dump:          c.String("dump"),
		StatLog:       c.String("statlog"),
		StatPeriod:    c.Int("statperiod"),
		CheckpointDir: c.String("checkpointdir"),
		Profile:       c.Bool("profile"),
		CudaYield:     c.Bool("cuYield"),
		// DeviceReportsFreeMemory is a stand-in for the out-of-scope
		// OpenCL device-discovery collaborator (§1); it is plumbed
		// here as always-false since this build has no real device
		// query to consult.
	}

	if path := c.String("c"); path != "" {
		if err := config.ParseJSON(&cfg, path); err != nil {
			return errors.Wrap(err, "loading -c config file")
		}
	}

	if cfg.Log != "" {
		f, err := os.OpenFile(cfg.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return errors.Wrap(err, "opening -logfile")
		}
		defer f.Close()
		log.SetOutput(f)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Exponent == 0 {
		return errors.New("config: -exponent is required")
	}

	log.Println("version:", VERSION)
	log.Println("exponent:", cfg.Exponent)
	log.Println("carry:", cfg.Carry)
	log.Println("checkpointdir:", cfg.CheckpointDir)

	carryMode := parseCarryMode(cfg.Carry)

	if cfg.Dump != "" {
		if err := dumpPlan(cfg.Dump, cfg.Exponent, cfg.FFTSize, carryMode); err != nil {
			color.Red("dump failed: %v", err)
		}
	}

	var stats *statlog.Live
	if cfg.StatLog != "" {
		stats = statlog.NewLive()
		statStop := make(chan struct{})
		defer close(statStop)
		go statlog.Run(cfg.StatLog, time.Duration(cfg.StatPeriod)*time.Second, stats.Load, statStop)
	}

	if cfg.B1 > 0 {
		return runPM1(cfg, carryMode, stats)
	}
	return runPRP(cfg, carryMode, stats)
}

func runPRP(cfg config.Config, carryMode transform.CarryMode, stats *statlog.Live) error {
	result, err := prp.Run(cfg.Exponent, prp.Options{
		FFTSizeHint:   cfg.FFTSize,
		BlockSize:     cfg.Block,
		Carry:         carryMode,
		CheckpointDir: cfg.CheckpointDir,
		LogStep:       cfg.LogStep,
		Iters:         cfg.Iters,
		Profile:       cfg.Profile,
		CudaYield:     cfg.CudaYield,
		Stop:          stop,
		Stats:         stats,
	})
	if err != nil {
		if prp.ErrStopped(err) {
			log.Println("stopped by request, checkpoint saved")
			return nil
		}
		return err
	}
	if result.Bounded {
		log.Printf("%d bounded run finished at k=%d", cfg.Exponent, result.K)
		return nil
	}
	status := "composite"
	if result.IsPrime {
		status = "probably prime"
	}
	fmt.Printf("M%d is %s, res64 %016x, %d errors\n", cfg.Exponent, status, result.Res64, result.NErrors)
	return nil
}

func runPM1(cfg config.Config, carryMode transform.CarryMode, stats *statlog.Live) error {
	result, err := pm1.Run(cfg.Exponent, pm1.Options{
		B1:            cfg.B1,
		B2:            cfg.B2,
		FFTSizeHint:   cfg.FFTSize,
		Carry:         carryMode,
		CheckpointDir: cfg.CheckpointDir,
		Profile:       cfg.Profile,
		CudaYield:     cfg.CudaYield,
		Stop:          stop,
		Stats:         stats,
	})
	if err != nil {
		if pm1.ErrStopped(err) {
			log.Println("stopped by request, checkpoint saved")
			return nil
		}
		return err
	}
	if result.Factor != "" {
		fmt.Printf("M%d has a factor: %s\n", cfg.Exponent, result.Factor)
	} else {
		fmt.Printf("M%d: no factor found below B2=%d\n", cfg.Exponent, cfg.B2)
	}
	return nil
}

func parseCarryMode(s string) transform.CarryMode {
	switch s {
	case "long":
		return transform.CarryLong
	case "short":
		return transform.CarryShort
	default:
		return transform.CarryAuto
	}
}

// dumpPlan writes the chosen FFT shape and the first four direct
// weights (aTab) to dir/<N>K.txt, the Go-native analogue of gpuowl's
// -save-temps (SPEC_FULL §3 "Supplemented features"). The rest of the
// weight tables are not written.
func dumpPlan(dir string, e uint32, fftHint int32, carryMode transform.CarryMode) error {
	configs := fftplan.GenConfigs()
	cfgShape, err := fftplan.Select(configs, e, fftHint)
	if err != nil {
		return err
	}
	if err := fftplan.ValidateBitsPerWord(e, cfgShape); err != nil {
		return err
	}

	tab := weights.Generate(e, cfgShape.Width, cfgShape.Height, fftplan.NW(cfgShape.Width))

	n := cfgShape.FFTSize()
	path := filepath.Join(dir, fmt.Sprintf("%dK.txt", n/1024))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "E=%d shape=%s N=%d bitsPerWord=%.3f longCarry=%v\n",
		e, cfgShape.Spec(), n, fftplan.BitsPerWord(e, cfgShape), carryMode == transform.CarryLong)
	fmt.Fprintf(f, "aTab[0..3]=%v\n", tab.ATab[:min(4, len(tab.ATab))])
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
