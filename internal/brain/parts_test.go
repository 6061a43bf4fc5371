package brain

import (
	"errors"
	"testing"
)

func TestNewArea(t *testing.T) {
	tests := []struct {
		name    string
		n, k    int
		wantK   int
		wantErr error
	}{
		{name: "explicit quota", n: 100, k: 10, wantK: 10},
		{name: "quota equals n", n: 50, k: 50, wantK: 50},
		{name: "zero quota defaults to sqrt(n)", n: 100, k: 0, wantK: 10},
		{name: "sqrt default floors", n: 99, k: 0, wantK: 9},
		{name: "zero neurons", n: 0, k: 5, wantErr: ErrInvalidSize},
		{name: "negative neurons", n: -10, k: 5, wantErr: ErrInvalidSize},
		{name: "negative quota", n: 100, k: -1, wantErr: ErrInvalidQuota},
		{name: "quota above n", n: 10, k: 11, wantErr: ErrInvalidQuota},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, err := NewArea("test", tt.n, tt.k, 0.05)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewArea(n=%d, k=%d) error = %v, want %v", tt.n, tt.k, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewArea(n=%d, k=%d) unexpected error: %v", tt.n, tt.k, err)
			}
			if area.Neurons() != tt.n {
				t.Errorf("Neurons() = %d, want %d", area.Neurons(), tt.n)
			}
			if area.Quota() != tt.wantK {
				t.Errorf("Quota() = %d, want %d", area.Quota(), tt.wantK)
			}
			if area.Beta() != 0.05 {
				t.Errorf("Beta() = %g, want 0.05", area.Beta())
			}
		})
	}
}

func TestNewStimulus(t *testing.T) {
	stim, err := NewStimulus("stim", 100)
	if err != nil {
		t.Fatalf("NewStimulus: unexpected error: %v", err)
	}
	if stim.Name() != "stim" {
		t.Errorf("Name() = %q, want %q", stim.Name(), "stim")
	}
	if stim.Neurons() != 100 {
		t.Errorf("Neurons() = %d, want 100", stim.Neurons())
	}

	if _, err := NewStimulus("bad", 0); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewStimulus(n=0) error = %v, want %v", err, ErrInvalidSize)
	}
}

func TestNewAreaRejectsNegativeBeta(t *testing.T) {
	if _, err := NewArea("test", 100, 10, -0.1); !errors.Is(err, ErrInvalidBeta) {
		t.Errorf("NewArea(beta=-0.1) error = %v, want %v", err, ErrInvalidBeta)
	}
	if _, err := NewArea("test", 100, 10, 0); err != nil {
		t.Errorf("NewArea(beta=0) unexpected error: %v", err)
	}
}

func TestConnectionBetaResolution(t *testing.T) {
	src := mustArea(t, "src", 10, 3, 0.2)
	dst := mustArea(t, "dst", 10, 3, 0.5)
	stim := mustStimulus(t, "stim", 10)

	synapses := make([][]float64, 10)
	for i := range synapses {
		synapses[i] = make([]float64, 10)
	}

	// Area source: the source's own rate wins.
	conn := NewConnection(src, dst, synapses)
	if conn.Beta != 0.2 {
		t.Errorf("area-sourced Beta = %g, want 0.2", conn.Beta)
	}

	// Stimulus source: the destination's rate applies.
	conn = NewConnection(stim, dst, synapses)
	if conn.Beta != 0.5 {
		t.Errorf("stimulus-sourced Beta = %g, want 0.5", conn.Beta)
	}
}

func TestConnectionPotentiate(t *testing.T) {
	src := mustArea(t, "src", 3, 1, 0.5)
	dst := mustArea(t, "dst", 3, 1, 0.1)

	synapses := [][]float64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	}
	conn := NewConnection(src, dst, synapses)

	conn.Potentiate([]int{0, 2}, []int{1})

	want := [][]float64{
		{1, 1.5, 1},
		{1, 1, 1},
		{1, 1.5, 1},
	}
	for i := range want {
		for j := range want[i] {
			if conn.Synapses[i][j] != want[i][j] {
				t.Errorf("Synapses[%d][%d] = %g, want %g", i, j, conn.Synapses[i][j], want[i][j])
			}
		}
	}
}

func mustArea(t *testing.T, name string, n, k int, beta float64) *Area {
	t.Helper()
	area, err := NewArea(name, n, k, beta)
	if err != nil {
		t.Fatalf("NewArea(%s): %v", name, err)
	}
	return area
}

func mustStimulus(t *testing.T, name string, n int) *Stimulus {
	t.Helper()
	stim, err := NewStimulus(name, n)
	if err != nil {
		t.Fatalf("NewStimulus(%s): %v", name, err)
	}
	return stim
}
