package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptForCredential(t *testing.T) {
	old := readSecret
	defer func() { readSecret = old }()
	readSecret = func(int) ([]byte, error) {
		return []byte("  sk-hidden \n"), nil
	}

	var out bytes.Buffer
	got, err := PromptForCredential(&out)

	require.NoError(t, err)
	assert.Equal(t, "sk-hidden", got)
	assert.Contains(t, out.String(), "Enter API key:")
}

func TestPromptForCredential_ReadError(t *testing.T) {
	old := readSecret
	defer func() { readSecret = old }()
	readSecret = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	var out bytes.Buffer
	if _, err := PromptForCredential(&out); err == nil {
		t.Fatal("expected an error from the terminal read")
	}
}
