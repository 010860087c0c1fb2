package dsl

import "testing"

func TestLint(t *testing.T) {
	prog := mustParse(t, `
INTENT a {
  when always then goto missing;
  when intent == b then reply "never";
  when intent == a then reply "always";
  when contains "x" then reply "shadowed";
  when always then set k = "fine";
}

INTENT b {
  when contains "" then reply "catch all";
  when always then goto a;
}`)

	warns := Lint(prog)
	want := []struct {
		line    int
		message string
	}{
		{3, "goto missing: intent is not defined"},
		{4, "intent == b can never match inside intent a"},
		{6, "reply is unreachable after unconditional reply on line 5"},
	}
	if len(warns) != len(want) {
		t.Fatalf("Lint() = %v, want %d warnings", warns, len(want))
	}
	for i, w := range want {
		if warns[i].Line != w.line || warns[i].Message != w.message {
			t.Errorf("warning %d = %v, want line %d %q", i, warns[i], w.line, w.message)
		}
	}
}

func TestLintClean(t *testing.T) {
	prog := mustParse(t, `
INTENT a {
  when contains "x" then reply "x";
  when always then reply "default";
}`)
	if warns := Lint(prog); len(warns) != 0 {
		t.Errorf("Lint() = %v, want none", warns)
	}
}
