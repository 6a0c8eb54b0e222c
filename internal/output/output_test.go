package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	old := Stdout
	Stdout = &buf
	defer func() { Stdout = old }()
	fn()
	return buf.String()
}

func TestMessageHelpers(t *testing.T) {
	tests := []struct {
		name   string
		fn     func()
		symbol string
		text   string
	}{
		{name: "success", fn: func() { Success("updated %d documents", 7) }, symbol: "✓", text: "updated 7 documents"},
		{name: "info", fn: func() { Info("querying") }, symbol: "→", text: "querying"},
		{name: "warning", fn: func() { Warning("skipping range") }, symbol: "⚠", text: "skipping range"},
		{name: "error", fn: func() { Error("failed: %s", "msg-1") }, symbol: "✗", text: "failed: msg-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, tt.fn)
			assert.Contains(t, out, tt.symbol)
			assert.Contains(t, out, tt.text)
		})
	}
}

func TestKeyValue(t *testing.T) {
	out := captureStdout(t, func() { KeyValue("Documents updated", "7") })
	assert.Contains(t, out, "Documents updated")
	assert.Contains(t, out, "7")
	assert.True(t, strings.HasPrefix(out, "  "))
}

func TestHeader(t *testing.T) {
	out := captureStdout(t, func() { Header("Update summary") })
	assert.Contains(t, out, "Update summary")
	assert.Contains(t, out, "━")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "yes", input: "y\n", expected: true},
		{name: "yes word", input: "yes\n", expected: true},
		{name: "no", input: "n\n", expected: false},
		{name: "empty defaults to no", input: "\n", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldIn := Stdin
			Stdin = strings.NewReader(tt.input)
			defer func() { Stdin = oldIn }()

			_ = captureStdout(t, func() {
				assert.Equal(t, tt.expected, Confirm("proceed?"))
			})
		})
	}
}
