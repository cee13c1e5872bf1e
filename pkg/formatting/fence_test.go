package formatting_test

import (
	"testing"

	"github.com/sapulidi/sapulidi/pkg/formatting"
)

func TestStripFence(t *testing.T) {
	payload := `{"waste_types":[]}`

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence is identity", payload, payload},
		{"no fence is trimmed", "\n  " + payload + "  \n", payload},
		{"tagged fence", "```json\n" + payload + "\n```", payload},
		{"untagged fence", "```\n" + payload + "\n```", payload},
		{"tagged fence inside prose", "Hasil:\n```json\n" + payload + "\n```\nTerima kasih", payload},
		{
			"tagged fence wins over earlier untagged",
			"```\nnot this\n```\n```json\n" + payload + "\n```",
			payload,
		},
		{"first tagged fence only", "```json\n" + payload + "\n```\n```json\n[1]\n```", payload},
		{"unclosed tagged fence", "```json\n" + payload + "\n", payload},
		{"unclosed untagged fence", "```\n" + payload, payload},
		{"prose without fence", "Sorry, I can't process this.", "Sorry, I can't process this."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatting.StripFence(tt.input); got != tt.want {
				t.Errorf("StripFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
