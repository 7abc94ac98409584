package metrics

import "testing"

func TestUtilization(t *testing.T) {
	tests := []struct {
		name          string
		tokens, limit int64
		want          float64
	}{
		{"unlimited", 5000, 0, 0},
		{"unused", 0, 1000, 0},
		{"quarter", 250, 1000, 25},
		{"spent", 1000, 1000, 100},
		{"overdrawn", 1300, 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.tokens, tt.limit)
			if m.Tokens() != tt.tokens {
				t.Errorf("Tokens() = %d, want %d", m.Tokens(), tt.tokens)
			}
			if got := m.Utilization(); got != tt.want {
				t.Errorf("Utilization() = %v, want %v", got, tt.want)
			}
		})
	}
}
