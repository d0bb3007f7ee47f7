package sqlstore

import "testing"

func TestRebind(t *testing.T) {
	tests := []struct {
		name     string
		numbered bool
		query    string
		want     string
	}{
		{"qmark untouched", false, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = ? AND b = ?"},
		{"numbered", true, "SELECT 1 WHERE a = ? AND b = ?", "SELECT 1 WHERE a = $1 AND b = $2"},
		{"no params", true, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(Dialect{Numbered: tt.numbered})
			if got := s.rebind(tt.query); got != tt.want {
				t.Errorf("rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}
