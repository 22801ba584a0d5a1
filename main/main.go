package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/edaniels/golog"
	plt "github.com/phil-mansfield/pyplot"
	"gonum.org/v1/gonum/mat"

	"github.com/slipcontrol/limitsurface"
	"github.com/slipcontrol/limitsurface/io"
	"github.com/slipcontrol/limitsurface/velocity"
)

const loggerName = "limitsurface"

type FileGroup struct {
	prof, out *os.File
	logToFile bool
}

func (fg *FileGroup) Close(logger golog.Logger) {
	if fg.prof != nil {
		pprof.StopCPUProfile()
		if err := fg.prof.Close(); err != nil {
			logger.Fatal(err.Error())
		}
	}

	if fg.out != nil && fg.out != os.Stdout {
		if err := fg.out.Close(); err != nil {
			logger.Fatal(err.Error())
		}
	}

	// Syncing stderr fails on some terminals, so only file loggers are checked.
	if err := logger.Sync(); err != nil && fg.logToFile {
		logger.Fatal(err.Error())
	}
}

func main() {
	var (
		estimate, plotModel, vel string
		exampleConfig           string
	)
	vars := map[string]*string{
		"Estimate":      &estimate,
		"PlotModel":     &plotModel,
		"Velocity":      &vel,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&estimate, "Estimate", "",
		"Configuration file for [Estimate] mode.",
	)
	flag.StringVar(
		&plotModel, "PlotModel", "",
		"Configuration file for [PlotModel] mode. Uses the same file as "+
			"[Estimate] mode.",
	)
	flag.StringVar(
		&vel, "Velocity", "",
		"Configuration file for [Velocity] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Estimator' "+
			"and 'Velocity'.",
	)

	flag.Parse()

	logger := newLogger("")

	modeName, err := getModeName(vars)
	if err != nil {
		logger.Fatal(err.Error())
	}

	switch modeName {
	case "Estimate":
		wrap, err := io.ReadEstimatorConfig(estimate)
		if err != nil {
			logger.Fatal(err.Error())
		}
		con := &wrap.Estimate

		if !con.ValidInput() {
			logger.Fatal("Invalid/non-existent 'Input' value.")
		} else if !con.ValidFtColumn() || !con.ValidTaunColumn() {
			logger.Fatal(
				"'FtColumn' and 'TaunColumn' must be different, " +
					"non-negative column indices.",
			)
		} else if con.ValidCORFile() && !con.ValidCORColumns() {
			logger.Fatal(
				"'CORRatioColumn' and 'CORRadiusColumn' must be different, " +
					"non-negative column indices.",
			)
		} else if con.ValidCORFile() && !con.ValidCORMethod() {
			logger.Fatalf("Unrecognized 'CORMethod' value, '%s'.", con.CORMethod)
		}
		estimateMain(wrap, logger)

	case "PlotModel":
		wrap, err := io.ReadEstimatorConfig(plotModel)
		if err != nil {
			logger.Fatal(err.Error())
		}
		con := &wrap.Plot

		if !con.ValidOutput() {
			logger.Fatal("Invalid/non-existent 'Output' value in [Plot].")
		} else if !con.ValidRange() {
			logger.Fatalf(
				"Invalid plot range: need CMin < CMax and Points > 1, but "+
					"have CMin = %g, CMax = %g, Points = %d.",
				con.CMin, con.CMax, con.Points,
			)
		}
		plotModelMain(wrap, logger)

	case "Velocity":
		wrap, err := io.ReadVelocityConfig(vel)
		if err != nil {
			logger.Fatal(err.Error())
		}
		velocityMain(wrap, logger)

	case "ExampleConfig":
		switch exampleConfig {
		case "Estimator":
			fmt.Println(io.ExampleEstimatorFile)
		case "Velocity":
			fmt.Println(io.ExampleVelocityFile)
		default:
			logger.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Estimator' and 'Velocity'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but limitsurface "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// newLogger returns a development logger which writes to logFile, or to
// stderr if logFile is empty. Results go to stdout, so the two never mix.
func newLogger(logFile string) golog.Logger {
	cfg := golog.NewDevelopmentLoggerConfig()
	if logFile == "" {
		cfg.OutputPaths = []string{"stderr"}
	} else {
		cfg.OutputPaths = []string{logFile}
	}

	logger, err := cfg.Build()
	if err != nil {
		golog.Global().Fatal(err)
	}
	return logger.Sugar().Named(loggerName)
}

func setupIO(
	con *io.SharedConfig, logger golog.Logger,
) (*FileGroup, golog.Logger) {
	fg := &FileGroup{out: os.Stdout}
	var err error

	if con.ValidLogFile() {
		logger = newLogger(con.LogFile)
		fg.logToFile = true
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			logger.Fatal(err.Error())
		}
		if err = pprof.StartCPUProfile(fg.prof); err != nil {
			logger.Fatal(err.Error())
		}
	}

	if con.ValidOutput() {
		fg.out, err = os.Create(con.Output)
		if err != nil {
			logger.Fatalf("Could not create %s.", con.Output)
		}
	}

	return fg, logger
}

func estimateMain(wrap *io.EstimatorWrapper, logger golog.Logger) {
	con := &wrap.Estimate
	fg, logger := setupIO(&con.SharedConfig, logger)
	defer fg.Close(logger)

	model, err := wrap.LimitSurface.LoadModel()
	if err != nil {
		logger.Fatal(err.Error())
	}
	var radius limitsurface.RadiusEstimator
	tab, err := con.LoadCOR()
	if err != nil {
		logger.Fatal(err.Error())
	} else if tab != nil {
		lo, hi := tab.Range()
		logger.Infof(
			"Using %s COR table %s over ratios [%g, %g].",
			tab.Method, con.CORFile, lo, hi,
		)
		radius = tab
	}

	est, err := limitsurface.NewEstimator(
		wrap.LimitSurface.Shape(), model, wrap.Solver.Params(), radius,
	)
	if err != nil {
		logger.Fatal(err.Error())
	}

	ft, taun, err := io.ReadMeasurements(con.Input, con.FtColumn, con.TaunColumn)
	if err != nil {
		logger.Fatal(err.Error())
	}
	logger.Infof("Estimating normal forces for %d measurements.", len(ft))

	fmt.Fprintln(
		fg.out, "# ft taun sigma c fn maxFt maxTaun radius corRadius flags",
	)
	guess := wrap.Solver.InitialRatio
	hits, indeterminate := 0, 0

	for i := range ft {
		e := est.Estimate(ft[i], taun[i], guess)

		if e.HitMaxIter {
			hits++
			logger.Debugw("iteration cap reached", "row", i, "c", e.CTilde)
		} else if !math.IsNaN(e.CTilde) {
			guess = e.CTilde
		}
		if e.Indeterminate {
			indeterminate++
		}

		fmt.Fprintf(
			fg.out, "%.6g %.6g %.6g %.6g %.6g %.6g %.6g %.6g %.6g %s\n",
			ft[i], taun[i], e.Sigma, e.CTilde, e.Fn,
			e.MaxFt, e.MaxTaun, e.Radius, e.CORRadius, estimateFlags(&e),
		)
	}

	if hits > 0 {
		logger.Warnf("%d/%d solves hit the iteration cap.", hits, len(ft))
	}
	if indeterminate > 0 {
		logger.Warnf(
			"%d/%d normal forces could not be determined.",
			indeterminate, len(ft),
		)
	}
}

// estimateFlags marks rows which hit the iteration cap (M) or whose normal
// force is indeterminate (I).
func estimateFlags(e *limitsurface.Estimate) string {
	flags := ""
	if e.HitMaxIter {
		flags += "M"
	}
	if e.Indeterminate {
		flags += "I"
	}
	if flags == "" {
		return "-"
	}
	return flags
}

func plotModelMain(wrap *io.EstimatorWrapper, logger golog.Logger) {
	con := &wrap.Plot
	ls := &wrap.LimitSurface

	model, err := ls.LoadModel()
	if err != nil {
		logger.Fatal(err.Error())
	}

	cs := make([]float64, con.Points)
	fts := make([]float64, con.Points)
	tauns := make([]float64, con.Points)
	sigmas := make([]float64, con.Points)

	dc := (con.CMax - con.CMin) / float64(con.Points-1)
	for i := range cs {
		cs[i] = con.CMin + dc*float64(i)
		fts[i] = model.FtTilde(cs[i])
		tauns[i] = model.TaunTilde(cs[i])
		sigmas[i] = limitsurface.ClampSigma(
			limitsurface.SigmaTilde(fts[i], tauns[i], ls.Gamma),
			wrap.Solver.MaxSigma,
		)
	}

	plt.Figure()
	plt.Plot(cs, fts, "r", plt.LW(3))
	plt.Plot(cs, tauns, "b", plt.LW(3))
	plt.Plot(cs, sigmas, "k", plt.LW(2))

	plt.Title(fmt.Sprintf(
		`$k$ = %g: $\tilde{f}_t$ (red), $\tilde{\tau}_n$ (blue), `+
			`$\tilde{\sigma}$ (black)`, ls.K,
	))
	plt.XLabel(`$\tilde{c}$`, plt.FontSize(16))
	plt.YLabel(`Normalized value`, plt.FontSize(16))
	plt.XLim(con.CMin, con.CMax)

	plt.Grid(plt.Axis("y"))
	plt.Grid(plt.Axis("x"))
	plt.SaveFig(con.Output)
	plt.Execute()

	logger.Infof("Wrote model plot to %s.", con.Output)
}

func velocityMain(wrap *io.VelocityWrapper, logger golog.Logger) {
	con := &wrap.Simulation
	fg, logger := setupIO(&con.SharedConfig, logger)
	defer fg.Close(logger)

	m, err := wrap.VelocitySystem.NewModel()
	if err != nil {
		logger.Fatal(err.Error())
	}

	x0 := mat.NewVecDense(velocity.StateDim, nil)
	u := mat.NewVecDense(velocity.InputDim, []float64{con.U})
	xs := velocity.Simulate(m, x0, u, con.Dt, con.Steps)
	logger.Infof("Simulated %d steps of the %s model.", con.Steps, m.Kind())

	fmt.Fprintln(fg.out, "# t x0 x1 x2 y0 y1")
	for i, x := range xs {
		y := m.Output(x, u)
		fmt.Fprintf(
			fg.out, "%.6g %.6g %.6g %.6g %.6g %.6g\n",
			con.Dt*float64(i), x.AtVec(0), x.AtVec(1), x.AtVec(2),
			y.AtVec(0), y.AtVec(1),
		)
	}
}
