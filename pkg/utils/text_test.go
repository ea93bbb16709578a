package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"shorter than limit", "reserva", 10, "reserva"},
		{"exactly at limit", "reserva", 7, "reserva"},
		{"over limit", "faturamento", 6, "fatura..."},
		{"multibyte runes", "manutenção", 7, "manuten..."},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.s, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		s    string
		want string
	}{
		{"Manutenção", "manutencao"},
		{"RESERVA", "reserva"},
		{"Relatórios Gerenciais", "relatorios gerenciais"},
		{"check-in", "check-in"},
		{"já há ações", "ja ha acoes"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.s); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestHumanizeFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"nova-reserva.html", "Nova Reserva"},
		{"auditoria_noturna.html", "Auditoria Noturna"},
		{"check-in.html", "Check In"},
		{"painel.html", "Painel"},
		{"relatorios-gerenciais-2024.html", "Relatorios Gerenciais 2024"},
	}
	for _, tt := range tests {
		if got := HumanizeFilename(tt.name); got != tt.want {
			t.Errorf("HumanizeFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
