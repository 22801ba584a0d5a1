package io

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/slipcontrol/limitsurface"
	"github.com/slipcontrol/limitsurface/cor"
	"github.com/slipcontrol/limitsurface/velocity"
)

const (
	ExampleEstimatorFile = `[LimitSurface]

#######################
# Required Parameters #
#######################

# Shape exponent of the contact's pressure distribution. Larger values give
# flatter pressure profiles. K must match one of the fitted model files.
K = 4

# Coefficient of friction.
Mu = 0.8

# Radius coefficient: the contact radius is Delta * Fn^Gamma.
Delta = 0.003
Gamma = 0.3

# Directory containing the fitted model files. The model for K = 4 is read
# from ModelDir/4_00.txt.
ModelDir = path/to/model/dir

[Solver]

#######################
# Optional Parameters #
#######################

# The measured force/torque ratio is clamped to [-MaxSigma, MaxSigma] before
# it is inverted. Default is 5.
# MaxSigma = 5

# Newton step gain, convergence threshold on the cost, derivative
# regularization and iteration cap. Defaults are 1, 1e-8, 1e-9 and 100.
# Gain = 1
# CostTol = 1e-8
# Lambda = 1e-9
# MaxIter = 100

# Contact ratio used to start the first solve. Every later solve starts from
# the previous answer. Default is 1.
# InitialRatio = 1

[Estimate]

#######################
# Required Parameters #
#######################

# Whitespace-separated table of measurements, one row per sample.
Input = path/to/measurements.txt

#######################
# Optional Parameters #
#######################

# Columns containing the tangential force and the torque. Defaults are 0
# and 1.
# FtColumn = 0
# TaunColumn = 1

# Estimates are written here instead of stdout when set.
# Output = path/to/estimates.txt

# Table of contact ratios and centre-of-rotation radii. When set, every
# estimate also reports the interpolated COR radius. CORMethod must be one of
# [ Linear | Cubic | Monotone ]. Defaults are 0, 1 and Cubic.
# CORFile = path/to/cor.txt
# CORRatioColumn = 0
# CORRadiusColumn = 1
# CORMethod = Cubic

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out

[Plot]

#######################
# Optional Parameters #
#######################

# Only used by -PlotModel. The basis sums and the force/torque ratio are
# plotted over [CMin, CMax]. Defaults are -3, 3 and 200.
# Output = path/to/model.png
# CMin = -3
# CMax = 3
# Points = 200`
	ExampleVelocityFile = `[VelocitySystem]

#######################
# Required Parameters #
#######################

# Model must be one of [ Rotational | Translational ].
Model = Rotational

# Inertia of the object and its mass.
Io = 1e-3
Mo = 0.1

# Viscous friction coefficients and bristle stiffnesses of the two
# LuGre-style friction states.
BetaO2 = 0.05
BetaO3 = 0.04
Sigma02 = 10
Sigma03 = 8

# Coulomb limits of the two friction states.
FMax0 = 1
FMax1 = 0.8

#######################
# Optional Parameters #
#######################

# Distance from the contact to the centre of rotation and to the object's
# centre of mass. Only used by the rotational model.
# COR = 0.01
# B = 0.02

[Simulation]

#######################
# Required Parameters #
#######################

# Constant input, time step and number of steps.
U = 0.05
Dt = 1e-4
Steps = 1000

#######################
# Optional Parameters #
#######################

# States and outputs are written here instead of stdout when set.
# Output = path/to/trajectory.txt

# ProfileFile = prof.out
# LogFile = log.out`
)

type SharedConfig struct {
	// Required
	Input, Output string
	// Optional
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// LimitSurfaceConfig describes the contact and where its model lives.
type LimitSurfaceConfig struct {
	// Required
	K, Mu, Delta, Gamma float64
	ModelDir            string
}

func (con *LimitSurfaceConfig) ValidK() bool {
	return con.K > 0
}
func (con *LimitSurfaceConfig) ValidMu() bool {
	return con.Mu > 0 && !math.IsInf(con.Mu, 0)
}
func (con *LimitSurfaceConfig) ValidDelta() bool {
	return con.Delta > 0 && !math.IsInf(con.Delta, 0)
}
func (con *LimitSurfaceConfig) ValidGamma() bool {
	return con.Gamma > 0 && !math.IsInf(con.Gamma, 0)
}
func (con *LimitSurfaceConfig) ValidModelDir() bool {
	return con.ModelDir != ""
}

func (con *LimitSurfaceConfig) CheckInit() error {
	if !con.ValidK() {
		return fmt.Errorf(
			"K must be positive, but is %g. K = 0 has no torque response, "+
				"so the normal force cannot be recovered from the torque.",
			con.K,
		)
	} else if !con.ValidMu() {
		return fmt.Errorf("Mu must be positive and finite, but is %g.", con.Mu)
	} else if !con.ValidDelta() {
		return fmt.Errorf(
			"Delta must be positive and finite, but is %g.", con.Delta,
		)
	} else if !con.ValidGamma() {
		return fmt.Errorf(
			"Gamma must be positive and finite, but is %g.", con.Gamma,
		)
	} else if !con.ValidModelDir() {
		return fmt.Errorf("Invalid/non-existent 'ModelDir' value.")
	}
	return nil
}

// Shape returns the contact geometry described by con.
func (con *LimitSurfaceConfig) Shape() *limitsurface.ContactShape {
	return limitsurface.NewContactShape(con.K, con.Mu, con.Delta, con.Gamma)
}

// LoadModel reads the model fit for con.K from con.ModelDir.
func (con *LimitSurfaceConfig) LoadModel() (*limitsurface.Model, error) {
	return limitsurface.LoadModel(con.ModelDir, con.K)
}

type SolverConfig struct {
	// Optional
	MaxSigma, Gain, CostTol, Lambda float64
	MaxIter                         int
	InitialRatio                    float64
}

func (con *SolverConfig) ValidMaxSigma() bool {
	return con.MaxSigma > 0
}
func (con *SolverConfig) ValidGain() bool {
	return con.Gain != 0 && !math.IsNaN(con.Gain)
}
func (con *SolverConfig) ValidCostTol() bool {
	return con.CostTol > 0
}
func (con *SolverConfig) ValidLambda() bool {
	return con.Lambda >= 0
}
func (con *SolverConfig) ValidMaxIter() bool {
	return con.MaxIter > 0
}
func (con *SolverConfig) ValidInitialRatio() bool {
	return !math.IsNaN(con.InitialRatio) && !math.IsInf(con.InitialRatio, 0)
}

func (con *SolverConfig) CheckInit() error {
	if !con.ValidMaxSigma() {
		return fmt.Errorf("MaxSigma must be positive, but is %g.", con.MaxSigma)
	} else if !con.ValidGain() {
		return fmt.Errorf("Gain must be non-zero, but is %g.", con.Gain)
	} else if !con.ValidCostTol() {
		return fmt.Errorf("CostTol must be positive, but is %g.", con.CostTol)
	} else if !con.ValidLambda() {
		return fmt.Errorf("Lambda must be non-negative, but is %g.", con.Lambda)
	} else if !con.ValidMaxIter() {
		return fmt.Errorf("MaxIter must be positive, but is %d.", con.MaxIter)
	} else if !con.ValidInitialRatio() {
		return fmt.Errorf(
			"InitialRatio must be finite, but is %g.", con.InitialRatio,
		)
	}
	return nil
}

// Params converts con into the parameters used by the contact ratio solver.
func (con *SolverConfig) Params() limitsurface.SolverParams {
	return limitsurface.SolverParams{
		MaxSigma: con.MaxSigma,
		Gain:     con.Gain,
		CostTol:  con.CostTol,
		Lambda:   con.Lambda,
		MaxIter:  con.MaxIter,
	}
}

type EstimateConfig struct {
	SharedConfig

	// Optional
	FtColumn, TaunColumn            int
	CORFile, CORMethod              string
	CORRatioColumn, CORRadiusColumn int
}

func (con *EstimateConfig) ValidFtColumn() bool {
	return con.FtColumn >= 0 && con.FtColumn != con.TaunColumn
}
func (con *EstimateConfig) ValidTaunColumn() bool {
	return con.TaunColumn >= 0 && con.FtColumn != con.TaunColumn
}
func (con *EstimateConfig) ValidCORFile() bool {
	return con.CORFile != ""
}
func (con *EstimateConfig) ValidCORMethod() bool {
	_, err := cor.ParseMethod(con.CORMethod)
	return err == nil
}
func (con *EstimateConfig) ValidCORColumns() bool {
	return con.CORRatioColumn >= 0 && con.CORRadiusColumn >= 0 &&
		con.CORRatioColumn != con.CORRadiusColumn
}

// LoadCOR reads the COR table named by con. It returns nil if no table is
// configured.
func (con *EstimateConfig) LoadCOR() (*cor.Table, error) {
	if !con.ValidCORFile() {
		return nil, nil
	}
	method, err := cor.ParseMethod(con.CORMethod)
	if err != nil {
		return nil, err
	}
	return ReadCORTable(
		con.CORFile, con.CORRatioColumn, con.CORRadiusColumn, method,
	)
}

type PlotConfig struct {
	// Optional
	Output     string
	CMin, CMax float64
	Points     int
}

func (con *PlotConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *PlotConfig) ValidRange() bool {
	return con.CMin < con.CMax && con.Points > 1
}

type EstimatorWrapper struct {
	LimitSurface LimitSurfaceConfig
	Solver       SolverConfig
	Estimate     EstimateConfig
	Plot         PlotConfig
}

func DefaultEstimatorWrapper() *EstimatorWrapper {
	p := limitsurface.DefaultSolverParams()
	wrap := &EstimatorWrapper{}

	wrap.Solver = SolverConfig{
		MaxSigma: p.MaxSigma, Gain: p.Gain, CostTol: p.CostTol,
		Lambda: p.Lambda, MaxIter: p.MaxIter, InitialRatio: 1,
	}
	wrap.Estimate.FtColumn, wrap.Estimate.TaunColumn = 0, 1
	wrap.Estimate.CORRatioColumn, wrap.Estimate.CORRadiusColumn = 0, 1
	wrap.Estimate.CORMethod = cor.Cubic.String()
	wrap.Plot = PlotConfig{CMin: -3, CMax: 3, Points: 200}

	return wrap
}

// ReadEstimatorConfig reads and checks the [LimitSurface] and [Solver]
// sections of fname. Mode-specific sections are left for the caller to check.
func ReadEstimatorConfig(fname string) (*EstimatorWrapper, error) {
	wrap := DefaultEstimatorWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}

	if err := wrap.LimitSurface.CheckInit(); err != nil {
		return nil, err
	} else if err := wrap.Solver.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// VelocitySystemConfig holds the parameters of the velocity dynamics model.
type VelocitySystemConfig struct {
	// Required
	Model                            string
	Io, Mo                           float64
	BetaO2, BetaO3, Sigma02, Sigma03 float64
	FMax0, FMax1                     float64

	// Optional
	COR, B float64
}

func (con *VelocitySystemConfig) ValidModel() bool {
	_, err := velocity.ParseKind(con.Model)
	return err == nil
}
func (con *VelocitySystemConfig) ValidMo() bool {
	return con.Mo > 0
}
func (con *VelocitySystemConfig) ValidIo() bool {
	return con.Io >= 0
}
func (con *VelocitySystemConfig) ValidFMax() bool {
	return con.FMax0 > 0 && con.FMax1 > 0
}

func (con *VelocitySystemConfig) CheckInit() error {
	if !con.ValidModel() {
		names := []string{}
		var k velocity.Kind
		for k = 0; k < velocity.EndKind; k++ {
			names = append(names, k.String())
		}
		return fmt.Errorf(
			"Model must be one of [%s], but is '%s'.",
			strings.Join(names, " | "), con.Model,
		)
	} else if !con.ValidMo() {
		return fmt.Errorf("Mo must be positive, but is %g.", con.Mo)
	} else if !con.ValidIo() {
		return fmt.Errorf("Io must be non-negative, but is %g.", con.Io)
	} else if !con.ValidFMax() {
		return fmt.Errorf(
			"FMax0 and FMax1 must be positive, but are %g and %g.",
			con.FMax0, con.FMax1,
		)
	}

	if k, _ := velocity.ParseKind(con.Model); k == velocity.RotationalKind &&
		con.Io+con.Mo*(con.COR+con.B)*(con.COR+con.B) == 0 {
		return fmt.Errorf("The rotational model has zero inertia.")
	}
	return nil
}

// Params returns the physical parameters of con.
func (con *VelocitySystemConfig) Params() velocity.Params {
	return velocity.Params{
		Io: con.Io, Mo: con.Mo,
		BetaO2: con.BetaO2, BetaO3: con.BetaO3,
		Sigma02: con.Sigma02, Sigma03: con.Sigma03,
		FMax0: con.FMax0, FMax1: con.FMax1,
		COR: con.COR, B: con.B,
	}
}

// NewModel returns the state-space model named by con.Model.
func (con *VelocitySystemConfig) NewModel() (velocity.Model, error) {
	k, err := velocity.ParseKind(con.Model)
	if err != nil {
		return nil, err
	}
	return velocity.New(k, con.Params()), nil
}

type SimulationConfig struct {
	SharedConfig

	// Required
	U, Dt float64
	Steps int
}

func (con *SimulationConfig) ValidDt() bool {
	return con.Dt > 0
}
func (con *SimulationConfig) ValidSteps() bool {
	return con.Steps > 0
}

func (con *SimulationConfig) CheckInit() error {
	if !con.ValidDt() {
		return fmt.Errorf("Dt must be positive, but is %g.", con.Dt)
	} else if !con.ValidSteps() {
		return fmt.Errorf("Steps must be positive, but is %d.", con.Steps)
	}
	return nil
}

type VelocityWrapper struct {
	VelocitySystem VelocitySystemConfig
	Simulation     SimulationConfig
}

func DefaultVelocityWrapper() *VelocityWrapper {
	return &VelocityWrapper{}
}

// ReadVelocityConfig reads and checks every section of a velocity config
// file.
func ReadVelocityConfig(fname string) (*VelocityWrapper, error) {
	wrap := DefaultVelocityWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}

	if err := wrap.VelocitySystem.CheckInit(); err != nil {
		return nil, err
	} else if err := wrap.Simulation.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}
