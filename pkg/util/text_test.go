package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "residual tags", in: "<|en|>hello <|Speech|> world", want: "hello world"},
		{name: "whitespace", in: "  hello\n\tworld  ", want: "hello world"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTranscript(tt.in))
		})
	}
}

func TestRemoveAllPunctuation(t *testing.T) {
	assert.Equal(t, "exit", RemoveAllPunctuation("exit!"))
	assert.Equal(t, "再见", RemoveAllPunctuation("再见。"))
}
