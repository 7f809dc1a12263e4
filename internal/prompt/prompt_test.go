package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{" YES ", true},
		{"Yes\n", true},
		{"", false},
		{"n", false},
		{"no", false},
		{"maybe", false},
		{"yes please", false},
		{"ye", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAffirmative(tt.input))
		})
	}
}

func TestConsoleAsker_Ask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"answer with newline", "yes\n", "yes"},
		{"windows line ending", "y\r\n", "y"},
		{"empty line uses default", "\n", DefaultAnswer},
		{"whitespace uses default", "   \n", DefaultAnswer},
		{"eof without newline", "y", "y"},
		{"eof without input uses default", "", DefaultAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			asker := NewConsoleAsker(strings.NewReader(tt.input), &out)

			got, err := asker.Ask("Overwrite? (y/N) ", DefaultAnswer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Overwrite? (y/N) ")
		})
	}
}

func TestConsoleAsker_ReadsOneLinePerQuestion(t *testing.T) {
	var out bytes.Buffer
	asker := NewConsoleAsker(strings.NewReader("y\nn\n"), &out)

	first, err := asker.Ask("first? ", DefaultAnswer)
	require.NoError(t, err)
	second, err := asker.Ask("second? ", DefaultAnswer)
	require.NoError(t, err)

	assert.Equal(t, "y", first)
	assert.Equal(t, "n", second)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("tty closed") }

func TestConsoleAsker_ReadError(t *testing.T) {
	asker := NewConsoleAsker(errReader{}, &bytes.Buffer{})

	_, err := asker.Ask("? ", DefaultAnswer)
	require.Error(t, err)
}

func TestConfirmer_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"y", "y\n", true},
		{"Y", "Y\n", true},
		{"yes", "yes\n", true},
		{"padded YES", " YES \n", true},
		{"empty", "\n", false},
		{"n", "n\n", false},
		{"no", "no\n", false},
		{"maybe", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConfirmer(NewConsoleAsker(strings.NewReader(tt.input), &bytes.Buffer{}))
			assert.Equal(t, tt.want, c.Confirm("Do you want to overwrite them? (y/N) "))
		})
	}
}

func TestConfirmer_ReadErrorIsNo(t *testing.T) {
	c := NewConfirmer(NewConsoleAsker(errReader{}, &bytes.Buffer{}))
	assert.False(t, c.Confirm("? "))
}

func TestFixedAsker(t *testing.T) {
	var out bytes.Buffer
	yes := NewConfirmer(&FixedAsker{Answer: "y", Out: &out})
	no := NewConfirmer(&FixedAsker{Answer: "n"})
	unset := NewConfirmer(&FixedAsker{})

	assert.True(t, yes.Confirm("Overwrite? "))
	assert.False(t, no.Confirm("Overwrite? "))
	assert.False(t, unset.Confirm("Overwrite? "))
	assert.Equal(t, "Overwrite? y\n", out.String())
}
