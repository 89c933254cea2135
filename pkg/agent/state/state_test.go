package state

import (
	"testing"
)

func TestAddTurnAppends(t *testing.T) {
	s := New("sess-1")
	s.AddTurn(RoleUser, "what is the capital of Kenya?")
	s.AddTurn(RoleAssistant, "Nairobi [1]")

	if len(s.History) != 2 {
		t.Fatalf("History len = %d, want 2", len(s.History))
	}
	if s.History[0].Role != RoleUser || s.History[1].Role != RoleAssistant {
		t.Errorf("History roles = %q, %q", s.History[0].Role, s.History[1].Role)
	}
}

func TestLastTurns(t *testing.T) {
	s := New("sess-1")
	for i := 0; i < 8; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		s.AddTurn(role, "turn")
	}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"window smaller than history", 5, 5},
		{"window equals history", 8, 8},
		{"window larger than history", 20, 8},
		{"zero window", 0, 0},
		{"negative window", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.LastTurns(tt.n)
			if len(got) != tt.want {
				t.Errorf("LastTurns(%d) len = %d, want %d", tt.n, len(got), tt.want)
			}
		})
	}

	last := s.LastTurns(3)
	if &last[2] != &s.History[7] {
		t.Error("LastTurns should return the most recent turns")
	}
}

func TestSourcesFallsBackToRaw(t *testing.T) {
	s := New("sess-1")
	s.RawResults = []SearchResult{{URL: "https://a.example"}, {URL: "https://b.example"}}

	if got := s.Sources(); len(got) != 2 {
		t.Fatalf("Sources len = %d, want 2 (raw fallback)", len(got))
	}

	s.RankedResults = []SearchResult{{URL: "https://b.example"}}
	got := s.Sources()
	if len(got) != 1 || got[0].URL != "https://b.example" {
		t.Errorf("Sources = %v, want ranked subset", got)
	}
}

func TestValidCitationIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want bool
	}{
		{"empty", nil, true},
		{"dense from one", []int{1, 2, 3}, true},
		{"gap", []int{1, 3}, false},
		{"zero based", []int{0, 1}, false},
		{"out of order", []int{2, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("sess-1")
			for _, id := range tt.ids {
				s.Citations = append(s.Citations, Citation{ID: id})
			}
			if got := s.ValidCitationIDs(); got != tt.want {
				t.Errorf("ValidCitationIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}
