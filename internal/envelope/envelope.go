// Package envelope provides the library of pulse envelope shapes used by the
// model target system. All shapes are functions of time over a pulse of
// duration t_final, with shape parameters passed by name.
package envelope

import (
	"fmt"
	"math"
	"sort"
)

// Params holds named shape parameters such as t_final, sigma or risefall.
type Params map[string]float64

// Shape evaluates an envelope at time t.
type Shape func(t float64, p Params) float64

type entry struct {
	fn       Shape
	required []string
}

var registry = map[string]entry{}

func register(name string, required []string, fn Shape) {
	registry[name] = entry{fn: fn, required: required}
}

func init() {
	register("no_drive", nil, func(t float64, p Params) float64 {
		return 0
	})
	register("rect", nil, func(t float64, p Params) float64 {
		return 1
	})
	register("flattop_risefall", []string{"t_up", "t_down", "risefall"}, flattopRisefall)
	register("flattop", []string{"t_up", "t_down"}, func(t float64, p Params) float64 {
		q := Params{"t_up": p["t_up"], "t_down": p["t_down"], "risefall": 1e-9}
		return flattopRisefall(t, q)
	})
	register("flattop_variant", []string{"t_up", "t_down", "ramp"}, flattopVariant)
	register("gaussian_nonorm", []string{"t_final", "sigma"}, gaussianNonorm)
	register("gaussian_sigma", []string{"t_final", "sigma"}, gaussianSigma)
	register("gaussian", []string{"t_final"}, func(t float64, p Params) float64 {
		return gaussianSigma(t, withStandardWidth(p))
	})
	register("gaussian_der_nonorm", []string{"t_final", "sigma"}, gaussianDerNonorm)
	register("gaussian_der", []string{"t_final", "sigma"}, gaussianDer)
	register("drag_sigma", []string{"t_final", "sigma"}, dragSigma)
	register("drag", []string{"t_final"}, func(t float64, p Params) float64 {
		return dragSigma(t, withStandardWidth(p))
	})
	register("drag_der", []string{"t_final", "sigma"}, dragDer)
}

// withStandardWidth fixes sigma at the standard time/sigma ratio t_final/4,
// for the shapes that take no explicit width.
func withStandardWidth(p Params) Params {
	tFinal := p["t_final"]
	return Params{"t_final": tFinal, "sigma": tFinal / 4}
}

// Names returns the registered shape names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a shape by name, checking that all parameters it requires
// are present. Unknown shapes and missing parameters are configuration
// errors.
func Lookup(name string, p Params) (Shape, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown envelope shape %q", name)
	}
	for _, key := range e.required {
		if _, ok := p[key]; !ok {
			return nil, fmt.Errorf("envelope %q requires parameter %q", name, key)
		}
	}
	return e.fn, nil
}

// Eval evaluates the named shape at time t.
func Eval(name string, t float64, p Params) (float64, error) {
	fn, err := Lookup(name, p)
	if err != nil {
		return 0, err
	}
	return fn(t, p), nil
}

// Area numerically integrates the named shape over [0, tFinal] with the
// given number of trapezoid steps.
func Area(name string, p Params, tFinal float64, steps int) (float64, error) {
	fn, err := Lookup(name, p)
	if err != nil {
		return 0, err
	}
	if steps < 1 {
		steps = 1
	}
	h := tFinal / float64(steps)
	sum := (fn(0, p) + fn(tFinal, p)) / 2
	for i := 1; i < steps; i++ {
		sum += fn(float64(i)*h, p)
	}
	return sum * h, nil
}

// flattopRisefall is a flattop with error-function ramps of width risefall
// centered at t_up and t_down.
func flattopRisefall(t float64, p Params) float64 {
	tUp := p["t_up"]
	tDown := p["t_down"]
	risefall := p["risefall"]
	return (1 + math.Erf((t-tUp)/risefall)) / 2 * (1 + math.Erf((-t+tDown)/risefall)) / 2
}

// gaussianNonorm is a gaussian with maximum 1, centered at t_final/2.
func gaussianNonorm(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	return math.Exp(-(t - tFinal/2) * (t - tFinal/2) / (2 * sigma * sigma))
}

// gaussianSigma is the offset-subtracted gaussian normalized to unit area.
func gaussianSigma(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	gauss := math.Exp(-(t - tFinal/2) * (t - tFinal/2) / (2 * sigma * sigma))
	norm := math.Sqrt(2*math.Pi*sigma*sigma)*math.Erf(tFinal/(math.Sqrt(8)*sigma)) -
		tFinal*math.Exp(-tFinal*tFinal/(8*sigma*sigma))
	offset := math.Exp(-tFinal * tFinal / (8 * sigma * sigma))
	return (gauss - offset) / norm
}

// gaussianDerNonorm is the derivative of the gaussian, itself unnormalized.
func gaussianDerNonorm(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	return math.Exp(-(t-tFinal/2)*(t-tFinal/2)/(2*sigma*sigma)) * (t - tFinal/2) / (sigma * sigma)
}

// gaussianDer is the derivative of the normalized gaussian.
func gaussianDer(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	der := math.Exp(-(t-tFinal/2)*(t-tFinal/2)/(2*sigma*sigma)) * (t - tFinal/2) / (sigma * sigma)
	norm := math.Sqrt(2*math.Pi*sigma*sigma)*math.Erf(tFinal/(math.Sqrt(8)*sigma)) -
		tFinal*math.Exp(-tFinal*tFinal/(8*sigma*sigma))
	return der / norm
}

// dragSigma is the second-order gaussian.
func dragSigma(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	gauss := math.Exp(-(t - tFinal/2) * (t - tFinal/2) / (2 * sigma * sigma))
	norm := math.Sqrt(2*math.Pi*sigma*sigma)*math.Erf(tFinal/(math.Sqrt(8)*sigma)) -
		tFinal*math.Exp(-tFinal*tFinal/(8*sigma*sigma))
	offset := math.Exp(-tFinal * tFinal / (8 * sigma * sigma))
	return (gauss - offset) * (gauss - offset) / norm
}

// dragDer is the derivative of the second-order gaussian.
func dragDer(t float64, p Params) float64 {
	tFinal := p["t_final"]
	sigma := p["sigma"]
	gauss := math.Exp(-(t - tFinal/2) * (t - tFinal/2) / (2 * sigma * sigma))
	norm := math.Sqrt(2*math.Pi*sigma*sigma)*math.Erf(tFinal/(math.Sqrt(8)*sigma)) -
		tFinal*math.Exp(-tFinal*tFinal/(8*sigma*sigma))
	offset := math.Exp(-tFinal * tFinal / (8 * sigma * sigma))
	return -2 * (gauss - offset) * gauss * (t - tFinal/2) / (sigma * sigma) / norm
}

// flattopVariant is a flattop with gaussian ramps of width ramp at t_up and
// t_down. A ramp wider than half the plateau span is clamped to it.
func flattopVariant(t float64, p Params) float64 {
	tUp := p["t_up"]
	tDown := p["t_down"]
	ramp := p["ramp"]
	if ramp > (tDown-tUp)/2 {
		ramp = (tDown - tUp) / 2
	}
	sigma := math.Sqrt2 * ramp * 0.2
	switch {
	case t >= tUp && t <= tUp+ramp:
		return math.Exp(-(t - tUp - ramp) * (t - tUp - ramp) / (2 * sigma * sigma))
	case t > tUp+ramp && t < tDown-ramp:
		return 1
	case t >= tDown-ramp && t <= tDown:
		return math.Exp(-(t - tDown + ramp) * (t - tDown + ramp) / (2 * sigma * sigma))
	default:
		return 0
	}
}
