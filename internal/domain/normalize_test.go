package domain

import "testing"

func TestNormalizeHumanName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Alex   Rivera ": "Alex Rivera",
		"\tJo\n":           "Jo",
		"   ":              "",
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizeHumanName(in); got != want {
			t.Fatalf("NormalizeHumanName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestOptionalText(t *testing.T) {
	t.Parallel()

	if got := OptionalText("   "); got != nil {
		t.Fatalf("OptionalText(blank)=%q, want nil", *got)
	}
	got := OptionalText("  Troop 204 ")
	if got == nil || *got != "Troop 204" {
		t.Fatalf("OptionalText()=%v, want Troop 204", got)
	}
}

func TestParseOptionalAge(t *testing.T) {
	t.Parallel()

	age, err := ParseOptionalAge("")
	if err != nil || age != nil {
		t.Fatalf("ParseOptionalAge(\"\")=(%v, %v), want (nil, nil)", age, err)
	}
	age, err = ParseOptionalAge(" 13 ")
	if err != nil || age == nil || *age != 13 {
		t.Fatalf("ParseOptionalAge(13)=(%v, %v), want 13", age, err)
	}
	if _, err := ParseOptionalAge("thirteen"); err == nil {
		t.Fatalf("expected error for non-numeric age")
	}
	age, err = ParseOptionalAge("2147483647")
	if err != nil || age == nil || *age != 2147483647 {
		t.Fatalf("ParseOptionalAge(max int32)=(%v, %v), want 2147483647", age, err)
	}
	for _, in := range []string{"3000000000", "-2147483649"} {
		if _, err := ParseOptionalAge(in); err == nil {
			t.Fatalf("ParseOptionalAge(%q) err=nil, want out of range", in)
		}
	}
}
