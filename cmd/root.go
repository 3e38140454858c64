package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	sim "github.com/inference-sim/ddos-sim/sim"
	"github.com/inference-sim/ddos-sim/sim/trace"
	"github.com/inference-sim/ddos-sim/sim/workload"
)

// simFlags holds every CLI flag that maps onto a SimConfig field.
type simFlags struct {
	horizon         float64 // Simulated time at which a run stops
	seed            int64   // Master seed for all random streams
	traceLevel      string  // Decision trace level (none, decisions)
	initialCapacity int     // Server slots at start and after scale windows
	rateLimit       int     // Slots in use at which legitimate requests are dropped
	queueThreshold  int     // Queue length that opens a scale window
	scalingDuration float64 // Length of one scale window
	scalingMode     string  // independent or counted
	scaleCheck      string  // completion or arrival
	maxCapacity     int     // Ceiling on scaled capacity (0 = unbounded)
	serviceRate     float64 // Service completions per time unit for one slot
	serviceDist     string  // Service-time distribution shape
	serviceSigma    float64 // lognormal / pareto_lognormal sigma
	serviceAlpha    float64 // pareto_lognormal shape
	serviceMix      float64 // pareto_lognormal Pareto share
	bucketSize      int     // Token bucket burst
	refillRate      float64 // Token bucket refill per time unit
	arrivalMode     string  // open or closed
	legitProcess    string  // Inter-arrival process for legitimate traffic
	legitCV         float64 // CV for gamma/weibull legitimate traffic
	attackProcess   string  // Inter-arrival process for attack traffic
	attackCV        float64 // CV for gamma/weibull attack traffic
}

var (
	logLevel    string   // Log verbosity level
	scenario    string   // Scenario to run
	legitRate   float64  // Legitimate arrivals per time unit
	attackRate  float64  // Attack arrivals per time unit
	runJSONPath string   // Optional JSON output path
	traceOut    string   // Optional decision trace path prefix
	runFlags    simFlags // SimConfig flags of the run command
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ddos-sim",
	Short: "Discrete-event simulator comparing DDoS mitigation strategies",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scenario at one pair of arrival rates",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := sim.DefaultSimConfig()
		applySimFlags(cmd.Flags(), &runFlags, &cfg)
		if traceOut != "" {
			cfg.TraceLevel = string(trace.TraceLevelDecisions)
		}

		res, err := sim.RunSimulation(scenario, legitRate, attackRate, cfg)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		writeResult(os.Stdout, res)
		if runJSONPath != "" {
			if err := writeJSON(runJSONPath, res); err != nil {
				logrus.Fatalf("Failed to write results: %v", err)
			}
			logrus.Infof("Results written to %s", runJSONPath)
		}
		if traceOut != "" {
			headerPath, dataPath, err := exportRunTrace(traceOut, cfg, res)
			if err != nil {
				logrus.Fatalf("Failed to export trace: %v", err)
			}
			logrus.Infof("Trace written to %s and %s", headerPath, dataPath)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addSimFlags registers the SimConfig flags on fs with DefaultSimConfig values.
func addSimFlags(fs *pflag.FlagSet, f *simFlags) {
	def := sim.DefaultSimConfig()

	fs.Float64Var(&f.horizon, "horizon", def.Horizon, "Simulated time at which the run stops")
	fs.Int64Var(&f.seed, "seed", def.Seed, "Seed for all random streams")
	fs.StringVar(&f.traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")

	// Server and mitigation
	fs.IntVar(&f.initialCapacity, "capacity", def.InitialCapacity, "Server slots at start of run")
	fs.IntVar(&f.rateLimit, "rate-limit", def.RateLimit, "rate-limiting: slots in use at which legitimate requests are dropped")
	fs.IntVar(&f.queueThreshold, "queue-threshold", def.QueueThreshold, "adaptive-scaling: queue length that opens a scale window")
	fs.Float64Var(&f.scalingDuration, "scaling-duration", def.ScalingDuration, "adaptive-scaling: length of a scale window")
	fs.StringVar(&f.scalingMode, "scaling-mode", def.ScalingMode, "adaptive-scaling: independent or counted windows")
	fs.StringVar(&f.scaleCheck, "scale-check", def.ScaleCheck, "adaptive-scaling: look at the queue after each completion or after each arrival")
	fs.IntVar(&f.maxCapacity, "max-capacity", def.MaxCapacity, "adaptive-scaling: capacity ceiling (0 = unbounded)")
	fs.Float64Var(&f.serviceRate, "service-rate", def.ServiceRate, "Service completions per time unit for one slot")
	fs.StringVar(&f.serviceDist, "service-dist", workload.DistExponential, "Service-time distribution (constant, exponential, lognormal, pareto_lognormal)")
	fs.Float64Var(&f.serviceSigma, "service-sigma", 1.0, "Service-time sigma of ln(X) (lognormal, pareto_lognormal)")
	fs.Float64Var(&f.serviceAlpha, "service-alpha", 2.5, "Service-time Pareto shape (pareto_lognormal)")
	fs.Float64Var(&f.serviceMix, "service-mix-weight", 0.3, "Service-time Pareto share (pareto_lognormal)")
	fs.IntVar(&f.bucketSize, "bucket-size", def.BucketSize, "token-bucket: burst size")
	fs.Float64Var(&f.refillRate, "refill-rate", def.RefillRate, "token-bucket: tokens per time unit")

	// Traffic shape
	fs.StringVar(&f.arrivalMode, "arrival-mode", def.ArrivalMode, "open (arrivals never wait) or closed (next arrival after the current request leaves)")
	fs.StringVar(&f.legitProcess, "legit-process", workload.ProcessPoisson, "Legitimate inter-arrival process (poisson, constant, gamma, weibull)")
	fs.Float64Var(&f.legitCV, "legit-cv", 1.0, "Legitimate inter-arrival CV (gamma, weibull)")
	fs.StringVar(&f.attackProcess, "attack-process", workload.ProcessPoisson, "Attack inter-arrival process (poisson, constant, gamma, weibull)")
	fs.Float64Var(&f.attackCV, "attack-cv", 1.0, "Attack inter-arrival CV (gamma, weibull)")
}

// applySimFlags copies the flags the user set onto cfg. Flags left at their
// default do not override values already in cfg (e.g. from a YAML bundle).
func applySimFlags(fs *pflag.FlagSet, f *simFlags, cfg *sim.SimConfig) {
	if fs.Changed("horizon") {
		cfg.Horizon = f.horizon
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("trace-level") {
		cfg.TraceLevel = f.traceLevel
	}
	if fs.Changed("capacity") {
		cfg.InitialCapacity = f.initialCapacity
	}
	if fs.Changed("rate-limit") {
		cfg.RateLimit = f.rateLimit
	}
	if fs.Changed("queue-threshold") {
		cfg.QueueThreshold = f.queueThreshold
	}
	if fs.Changed("scaling-duration") {
		cfg.ScalingDuration = f.scalingDuration
	}
	if fs.Changed("scaling-mode") {
		cfg.ScalingMode = f.scalingMode
	}
	if fs.Changed("scale-check") {
		cfg.ScaleCheck = f.scaleCheck
	}
	if fs.Changed("max-capacity") {
		cfg.MaxCapacity = f.maxCapacity
	}
	if fs.Changed("service-rate") {
		cfg.ServiceRate = f.serviceRate
	}
	if fs.Changed("service-dist") {
		cfg.ServiceDist = serviceDistFromFlags(f)
	} else {
		overlayServiceParams(fs, f, &cfg.ServiceDist)
	}
	if fs.Changed("bucket-size") {
		cfg.BucketSize = f.bucketSize
	}
	if fs.Changed("refill-rate") {
		cfg.RefillRate = f.refillRate
	}
	if fs.Changed("arrival-mode") {
		cfg.ArrivalMode = f.arrivalMode
	}
	if fs.Changed("legit-process") || fs.Changed("legit-cv") {
		cfg.LegitimateArrival = arrivalFromFlags(fs, "legit-cv", f.legitProcess, f.legitCV)
	}
	if fs.Changed("attack-process") || fs.Changed("attack-cv") {
		cfg.AttackArrival = arrivalFromFlags(fs, "attack-cv", f.attackProcess, f.attackCV)
	}
}

// arrivalFromFlags builds an ArrivalSpec. The CV is only attached when the
// user set it, so poisson and constant specs stay valid.
func arrivalFromFlags(fs *pflag.FlagSet, cvFlag, process string, cv float64) workload.ArrivalSpec {
	spec := workload.ArrivalSpec{Process: process}
	if fs.Changed(cvFlag) {
		spec.CV = &cv
	}
	return spec
}

// serviceDistFromFlags attaches only the parameters the chosen distribution
// reads, so a lognormal spec does not carry Pareto settings.
func serviceDistFromFlags(f *simFlags) workload.DistSpec {
	spec := workload.DistSpec{Type: f.serviceDist}
	switch f.serviceDist {
	case workload.DistLogNormal:
		spec.Params = map[string]float64{"sigma": f.serviceSigma}
	case workload.DistParetoLogNormal:
		spec.Params = map[string]float64{
			"alpha":      f.serviceAlpha,
			"sigma":      f.serviceSigma,
			"mix_weight": f.serviceMix,
		}
	}
	return spec
}

// serviceParamFlags maps distribution parameters to the flags that set them.
var serviceParamFlags = map[string]string{
	"sigma":      "service-sigma",
	"alpha":      "service-alpha",
	"mix_weight": "service-mix-weight",
}

// overlayServiceParams applies explicitly set parameter flags to a
// distribution chosen elsewhere (a bundle, or the default). Flags the
// distribution does not read are reported and dropped.
func overlayServiceParams(fs *pflag.FlagSet, f *simFlags, spec *workload.DistSpec) {
	values := map[string]float64{
		"sigma":      f.serviceSigma,
		"alpha":      f.serviceAlpha,
		"mix_weight": f.serviceMix,
	}
	reads := make(map[string]bool)
	for _, name := range workload.DistParams(spec.Type) {
		reads[name] = true
	}
	for _, name := range []string{"sigma", "alpha", "mix_weight"} {
		flag := serviceParamFlags[name]
		if !fs.Changed(flag) {
			continue
		}
		if !reads[name] {
			dist := spec.Type
			if dist == "" {
				dist = workload.DistExponential
			}
			logrus.Warnf("--%s has no effect on the %s service distribution; set --service-dist to use it", flag, dist)
			continue
		}
		params := make(map[string]float64, len(spec.Params)+1)
		for k, v := range spec.Params {
			params[k] = v
		}
		params[name] = values[name]
		spec.Params = params
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&scenario, "scenario", sim.ScenarioRateLimiting, "Scenario (rate-limiting, adaptive-scaling, token-bucket, none)")
	runCmd.Flags().Float64Var(&legitRate, "legit-rate", 0, "Legitimate arrivals per time unit")
	runCmd.Flags().Float64Var(&attackRate, "attack-rate", 0, "Attack arrivals per time unit")
	runCmd.Flags().StringVar(&runJSONPath, "json", "", "Write the result as JSON to this path")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "Export decisions to <prefix>.yaml and <prefix>.csv (implies --trace-level=decisions)")
	addSimFlags(runCmd.Flags(), &runFlags)
	_ = runCmd.MarkFlagRequired("legit-rate")
	_ = runCmd.MarkFlagRequired("attack-rate")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
