package demod

import "testing"

func uniformStats(means [6]float64, variance float64) ClusterStats {
	cs := ClusterStats{Means: make([]float64, 6), Vars: make([]float64, 6)}
	for i, m := range means {
		cs.Means[i] = m
		cs.Vars[i] = variance
	}
	return cs
}

func TestDemapRejectsWrongAxisLength(t *testing.T) {
	good := uniformStats([6]float64{0, 1, 2, 3, 4, 5}, 0.1)
	bad := ClusterStats{Means: []float64{0, 1, 2}, Vars: []float64{0.1, 0.1, 0.1}}
	if _, err := (PAM2DDemapper{}).Demap(0, 0, bad, good); err == nil {
		t.Fatal("Demap() with 3 column means: want error")
	}
	if _, err := (PAM2DDemapper{}).Demap(0, 0, good, bad); err == nil {
		t.Fatal("Demap() with 3 row means: want error")
	}
}

func TestDemapAllZerosNearOrigin(t *testing.T) {
	// Constellation32[0] = {col:0, row:0}, whose index (0) has no bits
	// set, so every bit partition excludes this cell: a point confidently
	// at the (0,0) grid cell should yield negative LLRs (bit=0 favoured)
	// for all five bit positions.
	stats := uniformStats([6]float64{0, 1, 2, 3, 4, 5}, 0.01)
	llr, err := (PAM2DDemapper{}).Demap(0, 0, stats, stats)
	if err != nil {
		t.Fatalf("Demap() error = %v", err)
	}
	for b, v := range llr {
		if v >= 0 {
			t.Errorf("llr[%d] = %d, want negative (bit=0 favoured near constellation index 0)", b, v)
		}
	}
}

func TestDemapAllOnesNearTopCorner(t *testing.T) {
	// Constellation32[31] = {col:4, row:3}; index 31 = 0b11111 has every
	// bit set, so a point confidently at the (4,3) grid cell should yield
	// positive LLRs (bit=1 favoured) for all five bit positions.
	stats := uniformStats([6]float64{0, 1, 2, 3, 4, 5}, 0.01)
	llr, err := (PAM2DDemapper{}).Demap(4, 3, stats, stats)
	if err != nil {
		t.Fatalf("Demap() error = %v", err)
	}
	for b, v := range llr {
		if v <= 0 {
			t.Errorf("llr[%d] = %d, want positive (bit=1 favoured near constellation index 31)", b, v)
		}
	}
}

func TestLlrByteClampsRange(t *testing.T) {
	if got := llrByte(1e-12, 1e12); got != 127 {
		t.Errorf("llrByte(tiny, huge) = %d, want 127", got)
	}
	if got := llrByte(1e12, 1e-12); got != -128 {
		t.Errorf("llrByte(huge, tiny) = %d, want -128", got)
	}
	if got := llrByte(1, 1); got != 0 {
		t.Errorf("llrByte(1,1) = %d, want 0", got)
	}
}

func TestGaussianLikelihoodPeaksAtMean(t *testing.T) {
	atMean := gaussianLikelihood(5, 5, 1)
	away := gaussianLikelihood(5, 0, 1)
	if atMean <= away {
		t.Errorf("gaussianLikelihood at mean = %v, away from mean = %v; want at-mean strictly greater", atMean, away)
	}
	if atMean != 1 {
		t.Errorf("gaussianLikelihood(x == mu) = %v, want 1", atMean)
	}
}

func TestGaussianLikelihoodFloorsNonPositiveVariance(t *testing.T) {
	a := gaussianLikelihood(2, 0, 0)
	b := gaussianLikelihood(2, 0, 1)
	if a != b {
		t.Errorf("gaussianLikelihood with variance=0 = %v, want same as variance=1 (%v)", a, b)
	}
}
