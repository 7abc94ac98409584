package similar

import (
	"math"
	"testing"
)

func TestCorpus_IDF(t *testing.T) {
	c := NewCorpus([]string{
		"transformer attention",
		"transformer graph",
		"transformer diffusion",
		"graph diffusion",
	})

	if got := c.IDF("transformer"); got <= 0 {
		t.Errorf("IDF(transformer) = %v, want > 0 when df < N", got)
	}
	if c.IDF("attention") <= c.IDF("graph") {
		t.Error("IDF must decrease as document frequency grows")
	}
	if c.IDF("graph") <= c.IDF("transformer") {
		t.Error("IDF must decrease as document frequency grows")
	}
	if got := c.IDF("unseen"); got != 0 {
		t.Errorf("IDF(unseen) = %v, want 0", got)
	}
}

func TestCorpus_IDF_TermInEveryDocument(t *testing.T) {
	c := NewCorpus([]string{"neural network", "neural field", "neural code"})
	if got := c.IDF("neural"); got != 0 {
		t.Errorf("IDF(neural) = %v, want 0", got)
	}
	if v := c.Vectorize(Tokenize("neural neural")); len(v) != 0 {
		t.Errorf("vector of ubiquitous terms = %v, want empty", v)
	}
}

func TestCorpus_DocFreqCountsOncePerDocument(t *testing.T) {
	c := NewCorpus([]string{"graph graph graph", "other text"})
	want := math.Log(3.0 / 2.0)
	if got := c.IDF("graph"); math.Abs(got-want) > 1e-12 {
		t.Errorf("IDF(graph) = %v, want %v", got, want)
	}
}

func TestCorpus_Vectorize_TermFrequency(t *testing.T) {
	c := NewCorpus([]string{"graph graph network", "unrelated words"})
	v := c.Vectorize(c.Tokens(0))

	if math.Abs(v["graph"]-2*v["network"]) > 1e-12 {
		t.Errorf("graph weight %v should be twice network weight %v", v["graph"], v["network"])
	}
}

func TestVectorize_EmptyText(t *testing.T) {
	v := Vectorize("", []string{"", "deep learning"})
	if len(v) != 0 {
		t.Errorf("Vectorize(\"\") = %v, want empty", v)
	}
	if v.Magnitude() != 0 {
		t.Errorf("Magnitude() = %v, want 0", v.Magnitude())
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{"graph": 1, "network": 2}, Vector{"graph": 1, "network": 2}, 1},
		{"disjoint", Vector{"graph": 1}, Vector{"network": 1}, 0},
		{"empty left", Vector{}, Vector{"graph": 1}, 0},
		{"both empty", Vector{}, Vector{}, 0},
		{"scaled", Vector{"graph": 1, "network": 1}, Vector{"graph": 3, "network": 3}, 1},
		{"partial", Vector{"graph": 1}, Vector{"graph": 1, "network": 1}, 1 / math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("Cosine() = %v out of [0, 1]", got)
			}
		})
	}
}

func TestCosine_Symmetric(t *testing.T) {
	a := Vector{"graph": 0.3, "network": 0.7, "message": 0.1}
	b := Vector{"graph": 0.5, "message": 0.9}
	if math.Abs(Cosine(a, b)-Cosine(b, a)) > 1e-12 {
		t.Errorf("Cosine not symmetric: %v vs %v", Cosine(a, b), Cosine(b, a))
	}
}
