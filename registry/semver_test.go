package registry

import "testing"

func TestParseVersionDefaultsMissingSegments(t *testing.T) {
	v, ok := parseVersion("2")
	if !ok || v != (version{major: 2}) {
		t.Fatalf("expected {2 0 0}, got %+v ok=%v", v, ok)
	}

	v, ok = parseVersion("v1.5")
	if !ok || v != (version{major: 1, minor: 5}) {
		t.Fatalf("expected v-prefix trimmed to {1 5 0}, got %+v ok=%v", v, ok)
	}
}

func TestParseVersionRejectsNonNumeric(t *testing.T) {
	if _, ok := parseVersion("not-a-version"); ok {
		t.Fatal("expected parseVersion to reject non-numeric input")
	}
}

func TestSatisfiesWildcardAlwaysMatches(t *testing.T) {
	matched, recognized := satisfies("9.9.9", "*")
	if !matched || !recognized {
		t.Fatalf("expected wildcard to match and be recognized, got matched=%v recognized=%v", matched, recognized)
	}
}

func TestSatisfiesTildeRestrictsToMinorVersion(t *testing.T) {
	matched, recognized := satisfies("1.2.5", "~1.2.0")
	if !matched || !recognized {
		t.Fatalf("expected ~1.2.0 to match 1.2.5")
	}
	matched, _ = satisfies("1.3.0", "~1.2.0")
	if matched {
		t.Fatal("expected ~1.2.0 to reject 1.3.0")
	}
}

func TestSatisfiesUnrecognizedSyntax(t *testing.T) {
	_, recognized := satisfies("1.0.0", "whatever this is")
	if recognized {
		t.Fatal("expected nonsense constraint syntax to be unrecognized")
	}
}
