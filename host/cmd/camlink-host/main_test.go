package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"camlink/core"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		words []string
		want  string
	}{
		{[]string{"at"}, "AT"},
		{[]string{"gmr"}, "AT+GMR"},
		{[]string{"rst"}, "AT+RST"},
		{[]string{"mode?"}, "AT+CWMODE?"},
		{[]string{"mode"}, "AT+CWMODE?"},
		{[]string{"mode", "3"}, "AT+CWMODE=3"},
		{[]string{"send", "AT+CIFSR"}, "AT+CIFSR"},
		{[]string{"send", "AT+CWJAP=", `"ssid","pw"`}, `AT+CWJAP="ssid","pw"`},
		{[]string{"AT+CWMODE=1"}, "AT+CWMODE=1"},
	}
	for _, tt := range tests {
		cmd, err := parseCommand(tt.words)
		require.NoError(t, err, tt.words)
		assert.Equal(t, tt.want, cmd.String())
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, words := range [][]string{
		{"mode", "7"},
		{"mode", "x"},
		{"send"},
		{"send", "a", "b", "c"},
		{"dance"},
	} {
		_, err := parseCommand(words)
		assert.Error(t, err, words)
	}
}

func TestParseCommandModeSetHasPayload(t *testing.T) {
	cmd, err := parseCommand([]string{"mode", "2"})
	require.NoError(t, err)
	assert.Equal(t, core.CmdCWModeSet(core.ModeSoftAP), cmd)
}
