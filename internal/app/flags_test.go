package app

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantArgs   []string
		wantOutput string
		wantLat    float64
	}{
		{name: "flags first", args: []string{"--output", "json", "NASA confirms water"}, wantArgs: []string{"NASA confirms water"}, wantOutput: "json"},
		{name: "flags after positional", args: []string{"NASA confirms water", "--output", "json"}, wantArgs: []string{"NASA confirms water"}, wantOutput: "json"},
		{name: "interleaved", args: []string{"--lat", "-33.8", "near me", "--output=json", "extra"}, wantArgs: []string{"near me", "extra"}, wantOutput: "json", wantLat: -33.8},
		{name: "double dash ends flags", args: []string{"--", "--output", "json"}, wantArgs: []string{"--output", "json"}, wantOutput: "text"},
		{name: "no positional", args: []string{"--output", "json"}, wantOutput: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("cli", flag.ContinueOnError)
			output := fs.String("output", "text", "")
			lat := fs.Float64("lat", 0, "")

			got, err := ParseArgs(fs, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantArgs, got)
			assert.Equal(t, tt.wantOutput, *output)
			assert.InDelta(t, tt.wantLat, *lat, 1e-9)
		})
	}
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	_, err := ParseArgs(fs, []string{"headline", "--verbose"})
	assert.Error(t, err)
}
