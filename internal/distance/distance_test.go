package distance

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/agbru/distcalc/internal/alignment"
	apperrors "github.com/agbru/distcalc/internal/errors"
)

const tol = 1e-12

func newCalc(t *testing.T, name string, m alignment.Moltype, opts Options) Calculator {
	t.Helper()
	c, err := NewDefaultRegistry().New(name, m, opts)
	if err != nil {
		t.Fatalf("New(%s, %s): %v", name, m, err)
	}
	return c
}

func pair(a, b string) alignment.Pair {
	return alignment.Pair{NameA: "a", NameB: "b", SeqA: []byte(a), SeqB: []byte(b)}
}

func near(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestHamming(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		moltype alignment.Moltype
		a, b    string
		want    float64
	}{
		{"identical dna", alignment.DNA, "ACGT", "ACGT", 0},
		{"one of four", alignment.DNA, "ACGT", "ACGA", 0.25},
		{"gaps excluded", alignment.DNA, "AC-TN", "ACGTA", 0},
		{"protein", alignment.Protein, "MKV-L", "MRVAL", 0.25},
		{"text", alignment.Text, "kitten", "sitten", 1.0 / 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			est := newCalc(t, "hamming", tt.moltype, Options{}).Estimate(pair(tt.a, tt.b))
			if !near(est.Distance, tt.want, tol) {
				t.Errorf("distance = %v, want %v", est.Distance, tt.want)
			}
			if !est.Converged || est.Err != nil {
				t.Errorf("unexpected failure: %+v", est)
			}
		})
	}
}

func TestHamming_Variance(t *testing.T) {
	t.Parallel()
	est := newCalc(t, "hamming", alignment.DNA, Options{}).Estimate(pair("AAAAAAAAAA", "AAAAAAAACC"))
	want := 0.2 * 0.8 / 10
	if !near(est.Variance, want, tol) {
		t.Errorf("variance = %v, want %v", est.Variance, want)
	}
}

func TestJC69(t *testing.T) {
	t.Parallel()
	c := newCalc(t, "jc69", alignment.DNA, Options{})

	est := c.Estimate(pair("ACGTACGTAC", "ACGTACGTAA"))
	p := 0.1
	w := 1 - 4*p/3
	if want := -0.75 * math.Log(w); !near(est.Distance, want, tol) {
		t.Errorf("distance = %v, want %v", est.Distance, want)
	}
	if want := p * (1 - p) / (10 * w * w); !near(est.Variance, want, tol) {
		t.Errorf("variance = %v, want %v", est.Variance, want)
	}
}

func TestJC69_Saturation(t *testing.T) {
	t.Parallel()
	c := newCalc(t, "jc69", alignment.DNA, Options{})
	for _, b := range []string{"ACGT", "CCCC"} { // p = 0.75 and p = 1
		est := c.Estimate(pair("AAAA", b))
		if est.Defined() {
			t.Errorf("%s: expected NaN distance at saturation, got %v", b, est.Distance)
		}
		var undef apperrors.UndefinedDistanceError
		if !errors.As(est.Err, &undef) {
			t.Errorf("%s: expected UndefinedDistanceError, got %v", b, est.Err)
		}
	}
}

func TestTN93_ReducesToK2P(t *testing.T) {
	t.Parallel()
	// Pooled composition is uniform, P1 = P2 = 2/16, Q = 2/16.
	a := "AAAACCCCGGGGTTTT"
	b := "GCAATACCAGGGCTTT"
	est := newCalc(t, "tn93", alignment.DNA, Options{}).Estimate(pair(a, b))

	P, Q := 0.25, 0.125
	want := -0.5*math.Log(1-2*P-Q) - 0.25*math.Log(1-2*Q)
	if !near(est.Distance, want, 1e-12) {
		t.Errorf("distance = %v, want K2P %v", est.Distance, want)
	}
	if !(est.Variance > 0) {
		t.Errorf("variance should be positive, got %v", est.Variance)
	}
}

func TestTN93_IdenticalAndRNA(t *testing.T) {
	t.Parallel()
	est := newCalc(t, "tn93", alignment.RNA, Options{}).Estimate(pair("ACGUACGU", "ACGUACGU"))
	if est.Distance != 0 || est.Variance != 0 {
		t.Errorf("identical sequences: got %+v, want zero", est)
	}
}

func TestTN93_Undefined(t *testing.T) {
	t.Parallel()
	c := newCalc(t, "tn93", alignment.DNA, Options{})
	tests := map[string][2]string{
		"missing base":   {"AACC", "AACC"},
		"all transverse": {"AAAACCCCGGGGTTTT", "CCCCAAAATTTTGGGG"},
	}
	for name, seqs := range tests {
		est := c.Estimate(pair(seqs[0], seqs[1]))
		if est.Defined() {
			t.Errorf("%s: expected NaN, got %v", name, est.Distance)
		}
		var undef apperrors.UndefinedDistanceError
		if !errors.As(est.Err, &undef) {
			t.Errorf("%s: expected UndefinedDistanceError, got %v", name, est.Err)
		}
	}
}

func TestDeterminantDistances_Identical(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"logdet", "paralinear"} {
		est := newCalc(t, name, alignment.DNA, Options{}).Estimate(pair("AACCGGTTACGT", "AACCGGTTACGT"))
		if !near(est.Distance, 0, 1e-12) || !near(est.Variance, 0, 1e-12) {
			t.Errorf("%s: identical sequences gave %+v", name, est)
		}
	}
}

func TestDeterminantDistances_Heterogeneous(t *testing.T) {
	t.Parallel()
	a := "AAAACCCCGGGGTTTT"
	b := "AAAACCCCGGGGTTTA"
	para := newCalc(t, "paralinear", alignment.DNA, Options{}).Estimate(pair(a, b))
	logdet := newCalc(t, "logdet", alignment.DNA, Options{}).Estimate(pair(a, b))

	// J is lower triangular with diagonal (4, 4, 4, 3)/16; compositions are
	// (4, 4, 4, 4)/16 for a and (5, 4, 4, 3)/16 for b.
	wantPara := -0.25 * (math.Log(192) - 0.5*math.Log(256) - 0.5*math.Log(240))
	if !near(para.Distance, wantPara, 1e-12) {
		t.Errorf("paralinear = %v, want %v", para.Distance, wantPara)
	}
	wantLogDet := -0.25 * (math.Log(192) - math.Log(4.5*4*4*3.5))
	if !near(logdet.Distance, wantLogDet, 1e-12) {
		t.Errorf("logdet = %v, want %v", logdet.Distance, wantLogDet)
	}
	if !(logdet.Distance > para.Distance) {
		t.Errorf("pooled-composition logdet (%v) should exceed paralinear (%v) under heterogeneity", logdet.Distance, para.Distance)
	}
	if !(para.Variance > 0) || !(logdet.Variance > 0) {
		t.Errorf("variances should be positive: paralinear %v, logdet %v", para.Variance, logdet.Variance)
	}
}

func TestDeterminantDistances_Singular(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"logdet", "paralinear"} {
		for _, seqs := range [][2]string{
			{"AAAA", "AAAA"},         // three states unobserved
			{"ACGTACGT", "AAGGAAGG"}, // two columns of F are zero
		} {
			est := newCalc(t, name, alignment.DNA, Options{}).Estimate(pair(seqs[0], seqs[1]))
			if est.Defined() {
				t.Errorf("%s %v: expected NaN, got %v", name, seqs, est.Distance)
			}
			var sing apperrors.SingularMatrixError
			if !errors.As(est.Err, &sing) {
				t.Errorf("%s %v: expected SingularMatrixError, got %v", name, seqs, est.Err)
			}
		}
	}
}

func TestMinInformative(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"hamming", "jc69", "tn93", "logdet", "paralinear"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := newCalc(t, name, alignment.DNA, Options{MinInformative: 5})
			est := c.Estimate(pair("AC--GT", "ACGTGN"))
			var insufficient apperrors.InsufficientDataError
			if !errors.As(est.Err, &insufficient) {
				t.Fatalf("expected InsufficientDataError, got %v", est.Err)
			}
			if insufficient.Informative != 3 || insufficient.Required != 5 {
				t.Errorf("got %+v, want 3 informative of 5 required", insufficient)
			}
			if est.Defined() {
				t.Error("distance should be NaN")
			}
		})
	}
}

func TestMinInformative_DefaultRejectsAllGap(t *testing.T) {
	t.Parallel()
	est := newCalc(t, "hamming", alignment.DNA, Options{}).Estimate(pair("----", "ACGT"))
	var insufficient apperrors.InsufficientDataError
	if !errors.As(est.Err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", est.Err)
	}
}

func TestEstimate_StdErr(t *testing.T) {
	t.Parallel()
	e := Estimate{Distance: 0.1, Variance: 0.0004}
	if !near(e.StdErr(), 0.02, 1e-15) {
		t.Errorf("StdErr = %v, want 0.02", e.StdErr())
	}
	if !math.IsNaN(Failed(errors.New("x"), false).StdErr()) {
		t.Error("failed estimates should have NaN standard error")
	}
}

func TestJC69_IdenticalIsPositiveZero(t *testing.T) {
	t.Parallel()
	est := newCalc(t, "jc69", alignment.DNA, Options{}).Estimate(pair("ACGTACGT", "ACGTACGT"))
	if est.Distance != 0 || math.Signbit(est.Distance) {
		t.Errorf("distance = %v (signbit %v), want +0", est.Distance, math.Signbit(est.Distance))
	}
}

func TestDeterminantDistances_SingularInBothOrientations(t *testing.T) {
	t.Parallel()
	// F = [[2 1 1 3] [2 2 0 1] [0 0 2 1] [1 1 1 1]] has det 0 exactly, but
	// the floating-point LU of its transpose does not see it.
	a := "T-ACAGTTGCAA-ATTCCGAACAC--"
	b := "-TGAAGCAG-ATCCTGCCTT-TTA-G"

	for _, name := range []string{"logdet", "paralinear"} {
		c := newCalc(t, name, alignment.DNA, Options{})
		for _, p := range []alignment.Pair{pair(a, b), pair(b, a)} {
			est := c.Estimate(p)
			if est.Defined() || !math.IsNaN(est.Variance) {
				t.Errorf("%s(%s, %s) = %+v, want NaN", name, p.SeqA, p.SeqB, est)
			}
			var sing apperrors.SingularMatrixError
			if !errors.As(est.Err, &sing) {
				t.Errorf("%s(%s, %s): expected SingularMatrixError, got %v", name, p.SeqA, p.SeqB, est.Err)
			}
		}
	}
}

func TestCountDeterminant(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []float64
		want int64
	}{
		{"identity", []float64{1, 0, 0, 1}, 1},
		{"needs pivot", []float64{0, 2, 3, 1}, -6},
		{"singular", []float64{2, 4, 1, 2}, 0},
		{"zero column", []float64{5, 0, 7, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := countDeterminant(mat.NewDense(2, 2, tt.data)); got.Int64() != tt.want {
				t.Errorf("det = %s, want %d", got, tt.want)
			}
		})
	}

	f := mat.NewDense(4, 4, []float64{
		2, 1, 1, 3,
		2, 2, 0, 1,
		0, 0, 2, 1,
		1, 1, 1, 1,
	})
	if got := countDeterminant(f); got.Sign() != 0 {
		t.Errorf("det = %s, want 0", got)
	}
	if got := countDeterminant(mat.DenseCopyOf(f.T())); got.Sign() != 0 {
		t.Errorf("det of transpose = %s, want 0", got)
	}
}
