package envelope

import (
	"math"
	"testing"
)

func TestNamesIncludesAllShapes(t *testing.T) {
	want := map[string]bool{
		"no_drive": true, "rect": true,
		"flattop": true, "flattop_risefall": true, "flattop_variant": true,
		"gaussian": true, "gaussian_nonorm": true, "gaussian_sigma": true,
		"gaussian_der": true, "gaussian_der_nonorm": true,
		"drag": true, "drag_sigma": true, "drag_der": true,
	}
	names := Names()
	if len(names) != len(want) {
		t.Fatalf("expected %d shapes, got %d: %v", len(want), len(names), names)
	}
	for _, name := range names {
		if !want[name] {
			t.Fatalf("unexpected shape %q", name)
		}
	}
}

func TestLookupErrors(t *testing.T) {
	if _, err := Lookup("nosuch", nil); err == nil {
		t.Fatalf("expected error for unknown shape")
	}
	if _, err := Lookup("gaussian_nonorm", Params{"t_final": 1e-8}); err == nil {
		t.Fatalf("expected error for missing sigma")
	}
	if _, err := Lookup("gaussian_nonorm", Params{"t_final": 1e-8, "sigma": 2e-9}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNoDriveAndRect(t *testing.T) {
	for _, tt := range []float64{0, 1e-9, 5e-9} {
		v, err := Eval("no_drive", tt, nil)
		if err != nil || v != 0 {
			t.Fatalf("no_drive(%g) = %v, %v", tt, v, err)
		}
		v, err = Eval("rect", tt, nil)
		if err != nil || v != 1 {
			t.Fatalf("rect(%g) = %v, %v", tt, v, err)
		}
	}
}

func TestGaussianNonorm(t *testing.T) {
	p := Params{"t_final": 8e-9, "sigma": 2e-9}
	peak, err := Eval("gaussian_nonorm", 4e-9, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(peak-1) > 1e-12 {
		t.Fatalf("peak should be 1 at the center, got %v", peak)
	}
	left, _ := Eval("gaussian_nonorm", 2e-9, p)
	right, _ := Eval("gaussian_nonorm", 6e-9, p)
	if math.Abs(left-right) > 1e-12 {
		t.Fatalf("gaussian should be symmetric about the center: %v vs %v", left, right)
	}
	if left >= peak {
		t.Fatalf("off-center value should be below the peak")
	}
}

func TestFlattopRisefall(t *testing.T) {
	p := Params{"t_up": 2e-9, "t_down": 8e-9, "risefall": 2e-10}
	mid, err := Eval("flattop_risefall", 5e-9, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(mid-1) > 1e-6 {
		t.Fatalf("flattop should be 1 on the plateau, got %v", mid)
	}
	before, _ := Eval("flattop_risefall", 0, p)
	after, _ := Eval("flattop_risefall", 10e-9, p)
	if before > 1e-6 || after > 1e-6 {
		t.Fatalf("flattop should vanish outside the ramps: %v, %v", before, after)
	}
	edge, _ := Eval("flattop_risefall", 2e-9, p)
	if math.Abs(edge-0.5) > 1e-6 {
		t.Fatalf("flattop should be 1/2 at the ramp center, got %v", edge)
	}
}

func TestGaussianDerChangesSign(t *testing.T) {
	p := Params{"t_final": 8e-9, "sigma": 2e-9}
	left, _ := Eval("gaussian_der", 2e-9, p)
	right, _ := Eval("gaussian_der", 6e-9, p)
	center, _ := Eval("gaussian_der", 4e-9, p)
	if math.Abs(center) > 1e-12 {
		t.Fatalf("derivative should vanish at the center, got %v", center)
	}
	if left*right >= 0 {
		t.Fatalf("derivative should change sign across the center: %v, %v", left, right)
	}
}

func TestGaussianSigmaUnitArea(t *testing.T) {
	p := Params{"t_final": 8e-9, "sigma": 2e-9}
	area, err := Area("gaussian_sigma", p, 8e-9, 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(area-1) > 1e-3 {
		t.Fatalf("normalized gaussian area should be 1, got %v", area)
	}
}

func TestGaussianStandardWidth(t *testing.T) {
	// The width-free form fixes sigma at t_final/4.
	tFinal := 8e-9
	fixed := Params{"t_final": tFinal}
	explicit := Params{"t_final": tFinal, "sigma": tFinal / 4}
	for _, tt := range []float64{0, 2e-9, 4e-9, 7e-9} {
		a, err := Eval("gaussian", tt, fixed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ := Eval("gaussian_sigma", tt, explicit)
		if math.Abs(a-b) > 1e-12*math.Abs(b)+1e-15 {
			t.Fatalf("gaussian(%g) = %v, want gaussian_sigma with sigma t_final/4 = %v", tt, a, b)
		}
		a, err = Eval("drag", tt, fixed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, _ = Eval("drag_sigma", tt, explicit)
		if math.Abs(a-b) > 1e-12*math.Abs(b)+1e-15 {
			t.Fatalf("drag(%g) = %v, want drag_sigma with sigma t_final/4 = %v", tt, a, b)
		}
	}
}

func TestDerivativeShapesAreOddAboutCenter(t *testing.T) {
	p := Params{"t_final": 8e-9, "sigma": 2e-9}
	for _, name := range []string{"gaussian_der_nonorm", "drag_der"} {
		center, err := Eval(name, 4e-9, p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if math.Abs(center) > 1e-9 {
			t.Fatalf("%s should vanish at the center, got %v", name, center)
		}
		left, _ := Eval(name, 2e-9, p)
		right, _ := Eval(name, 6e-9, p)
		if math.Abs(left+right) > 1e-9*math.Abs(left) {
			t.Fatalf("%s should be odd about the center: %v vs %v", name, left, right)
		}
		if left == 0 || right == 0 {
			t.Fatalf("%s should not vanish off-center", name)
		}
	}
}

func TestFlattopVariant(t *testing.T) {
	p := Params{"t_up": 2e-9, "t_down": 8e-9, "ramp": 1e-9}
	mid, err := Eval("flattop_variant", 5e-9, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mid != 1 {
		t.Fatalf("plateau value should be exactly 1, got %v", mid)
	}
	top, _ := Eval("flattop_variant", 3e-9, p)
	if math.Abs(top-1) > 1e-12 {
		t.Fatalf("ramp should reach 1 at the plateau edge, got %v", top)
	}
	start, _ := Eval("flattop_variant", 2e-9, p)
	if start <= 0 || start >= 0.1 {
		t.Fatalf("ramp start should be a small positive tail, got %v", start)
	}
	outside, _ := Eval("flattop_variant", 1e-9, p)
	if outside != 0 {
		t.Fatalf("value outside the pulse should be 0, got %v", outside)
	}
	after, _ := Eval("flattop_variant", 9e-9, p)
	if after != 0 {
		t.Fatalf("value after t_down should be 0, got %v", after)
	}

	// An over-wide ramp is clamped to half the span.
	wide := Params{"t_up": 2e-9, "t_down": 8e-9, "ramp": 10e-9}
	center, _ := Eval("flattop_variant", 5e-9, wide)
	if math.Abs(center-1) > 1e-12 {
		t.Fatalf("clamped ramp should still peak at 1, got %v", center)
	}
}

func TestArea(t *testing.T) {
	area, err := Area("rect", nil, 2.0, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(area-2.0) > 1e-12 {
		t.Fatalf("rect area over [0,2] should be 2, got %v", area)
	}

	p := Params{"t_final": 8e-9, "sigma": 2e-9}
	area, err = Area("gaussian_nonorm", p, 8e-9, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if area <= 0 || area >= 8e-9 {
		t.Fatalf("gaussian area should be positive and below the full window, got %v", area)
	}

	if _, err := Area("nosuch", nil, 1, 10); err == nil {
		t.Fatalf("expected error for unknown shape")
	}
}
