package service

import "testing"

func TestPseudoCredentials_RoundTrip(t *testing.T) {
	codec := PseudoCredentials{Domain: "wachplan.app"}

	encoded := codec.Encode("4711", "acme")
	if encoded != "4711@acme.wachplan.app" {
		t.Fatalf("unexpected identifier %q", encoded)
	}
	if !codec.IsPseudo(encoded) {
		t.Fatal("encoded identifier must be recognized as pseudo")
	}

	num, tenant, ok := codec.Decode(encoded)
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if num != "4711" || tenant != "acme" {
		t.Fatalf("decoded (%q, %q), want (4711, acme)", num, tenant)
	}
}

func TestPseudoCredentials_RealEmailNotPseudo(t *testing.T) {
	codec := PseudoCredentials{Domain: "wachplan.app"}

	for _, email := range []string{
		"m.mustermann@wache-bonn.de",
		"admin@example.com",
		"4711@acme.wachplan.io",
	} {
		if codec.IsPseudo(email) {
			t.Errorf("IsPseudo(%q) = true, want false", email)
		}
		if _, _, ok := codec.Decode(email); ok {
			t.Errorf("Decode(%q) succeeded, want failure", email)
		}
	}
}

func TestPseudoCredentials_DecodeMalformed(t *testing.T) {
	codec := PseudoCredentials{Domain: "wachplan.app"}

	cases := []string{
		"acme.wachplan.app",           // no @
		"@acme.wachplan.app",          // empty employee number
		"4711@.wachplan.app",          // empty tenant
		"4711@nord.acme.wachplan.app", // dotted tenant part
	}
	for _, id := range cases {
		if _, _, ok := codec.Decode(id); ok {
			t.Errorf("Decode(%q) succeeded, want failure", id)
		}
	}
}

func TestPseudoCredentials_CaseInsensitiveSuffix(t *testing.T) {
	codec := PseudoCredentials{Domain: "wachplan.app"}

	num, tenant, ok := codec.Decode("4711@ACME.Wachplan.App")
	if !ok {
		t.Fatal("expected decode to succeed")
	}
	if num != "4711" || tenant != "acme" {
		t.Fatalf("decoded (%q, %q), want (4711, acme)", num, tenant)
	}
}
