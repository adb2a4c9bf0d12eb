package display

import "testing"

func TestIsQuit(t *testing.T) {
	tests := []struct {
		key  int
		want bool
	}{
		{-1, false},
		{'q', true},
		{'Q', false},
		{'a', false},
		{0x100 | 'q', true},
	}

	for _, tt := range tests {
		if got := isQuit(tt.key); got != tt.want {
			t.Errorf("isQuit(%d) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
