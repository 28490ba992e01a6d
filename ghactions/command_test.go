package ghactions

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeData(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "all good", "all good"},
		{"percent", "100%", "100%25"},
		{"crlf", "one\r\ntwo", "one%0D%0Atwo"},
		{"percent before crlf", "100%\r\n", "100%25%0D%0A"},
		{"literal encoded form", "%0D", "%250D"},
		{"lone cr", "a\rb", "a%0Db"},
		{"lone lf", "a\nb", "a%0Ab"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, EscapeData(test.in))
		})
	}
}

func TestEscapeProperty(t *testing.T) {
	assert.Equal(t, "a%3Ab%2Cc%25d", EscapeProperty("a:b,c%d"))
}

func TestError_SingleLine(t *testing.T) {
	var out bytes.Buffer

	Error(&out, "stagehand", "fetch failed: host unreachable\r\nat 100%")

	line := out.String()
	assert.True(t, strings.HasSuffix(line, "\n"))

	body := strings.TrimSuffix(line, "\n")
	assert.NotContains(t, body, "\n")
	assert.NotContains(t, body, "\r")
	assert.Equal(
		t,
		"::error title=stagehand::fetch failed: host unreachable%0D%0Aat 100%25",
		body,
	)
}
