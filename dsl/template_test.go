package dsl

import "testing"

func TestRender(t *testing.T) {
	vars := map[string]string{
		"name":  "小明",
		"order": "SF123",
		"loop":  "{name}",
		"empty": "",
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"single", "你好 {name}", "你好 小明"},
		{"repeated", "{order}/{order}", "SF123/SF123"},
		{"unknown kept", "hi {nobody}", "hi {nobody}"},
		{"empty name kept", "a {} b", "a {} b"},
		{"empty value", "[{empty}]", "[]"},
		{"no recursion", "{loop}", "{name}"},
		{"unclosed", "hi {name", "hi {name"},
		{"nested open", "{{name}}", "{小明}"},
		{"stray close", "} {name} }", "} 小明 }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.text, vars); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRenderNilVars(t *testing.T) {
	if got := Render("{x}", nil); got != "{x}" {
		t.Errorf("Render with nil vars = %q", got)
	}
}
