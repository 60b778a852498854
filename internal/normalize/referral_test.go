package normalize

import "testing"

func TestReferralKey(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		in   string
		want string
	}{
		{"", EmptyReferral},
		{"   ", EmptyReferral},
		{"caps três vendas", "CAPS TRES VENDAS"},
		{"CAPS TRES VENDAS", "CAPS TRES VENDAS"},
		{" CAPS  II ", "CAPS II"},
		{"UBS   Centro", "UBS CENTRO"},
	}
	for _, tt := range tests {
		if got := rules.ReferralKey(tt.in); got != tt.want {
			t.Errorf("ReferralKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CAPS II", "CAPS II"},
		{"CAPS/AD (NORTE)", "CAPS_AD _NORTE_"},
		{"UBS-CENTRO_1", "UBS-CENTRO_1"},
		{"SÃO JOSÉ", "SÃO JOSÉ"},
		{"", "vazio"},
	}
	for _, tt := range tests {
		if got := SafeName(tt.in, "vazio"); got != tt.want {
			t.Errorf("SafeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsDischargeType(t *testing.T) {
	rules := DefaultRules()
	for _, v := range []string{"ALTA", "alta", " Melhorada ", "ÓBITO", "Transferência"} {
		if !rules.IsDischargeType(v) {
			t.Errorf("IsDischargeType(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"", "João Costa", "ALTAS"} {
		if rules.IsDischargeType(v) {
			t.Errorf("IsDischargeType(%q) = true, want false", v)
		}
	}
}

func TestHasFacilityPrefix(t *testing.T) {
	rules := DefaultRules()
	if !rules.HasFacilityPrefix("caps ii") {
		t.Error("expected lowercase caps to match")
	}
	if !rules.HasFacilityPrefix(" Hospital Municipal") {
		t.Error("expected hospital to match")
	}
	if rules.HasFacilityPrefix("Rua dos CAPS") {
		t.Error("prefix must anchor at the start")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2023-01-05", "2023-01-05"},
		{"05/01/2023", "2023-01-05"},
		{"5/1/2023", "2023-01-05"},
		{"2023-01-05 00:00:00", "2023-01-05"},
	}
	for _, tt := range tests {
		got := ParseDate(tt.in)
		if got == nil {
			t.Errorf("ParseDate(%q) = nil", tt.in)
			continue
		}
		if got.Format(ISODate) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format(ISODate), tt.want)
		}
	}
	if ParseDate("") != nil || ParseDate("ontem") != nil {
		t.Error("expected nil for empty and garbage input")
	}
}
