package transcriber

import (
	"testing"

	"golang.org/x/text/language"
)

func TestTransformFinal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "command sentence becomes paragraph break",
			in:   "Hello world. New line. Next thought.",
			want: "Hello world. \n\n Next thought.",
		},
		{
			name: "single word form matches",
			in:   "Hello world. Newline. Next thought.",
			want: "Hello world. \n\n Next thought.",
		},
		{
			name: "case insensitive",
			in:   "First. NEW LINE. Second.",
			want: "First. \n\n Second.",
		},
		{
			name: "newline lowercase with period",
			in:   "newline.",
			want: "\n\n",
		},
		{
			name: "exclamation counts as terminal punctuation",
			in:   "New line!",
			want: "\n\n",
		},
		{
			name: "no punctuation is not a command",
			in:   "new line",
			want: "new line",
		},
		{
			name: "phrase inside a sentence is left alone",
			in:   "Please add a new line here.",
			want: "Please add a new line here.",
		},
		{
			name: "plain text unchanged",
			in:   "Hello world.",
			want: "Hello world.",
		},
		{
			name: "consecutive commands",
			in:   "One. New line. New line. Two.",
			want: "One. \n\n \n\n Two.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransformFinal(tt.in, language.English)
			if got != tt.want {
				t.Errorf("TransformFinal(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTransformFinal_CJKPunctuation(t *testing.T) {
	got := TransformFinal("你好。New line。继续。", language.Chinese)
	want := "你好。 \n\n 继续。"
	if got != want {
		t.Errorf("TransformFinal = %q, want %q", got, want)
	}
}

func TestIsNewlineCommand(t *testing.T) {
	punct := terminalPunct(language.English)
	tests := []struct {
		in   string
		want bool
	}{
		{"New line.", true},
		{"newline.", true},
		{"NEWLINE?", true},
		{"new line", false},
		{"new lines.", false},
		{"line.", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isNewlineCommand(tt.in, punct); got != tt.want {
			t.Errorf("isNewlineCommand(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
