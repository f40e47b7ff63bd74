package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseYears(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int
		wantErr bool
	}{
		{
			name:  "single year",
			input: "2020",
			want:  []int{2020},
		},
		{
			name:  "comma list",
			input: "2018,2020",
			want:  []int{2018, 2020},
		},
		{
			name:  "range",
			input: "2019-2021",
			want:  []int{2019, 2020, 2021},
		},
		{
			name:  "mixed with duplicates",
			input: "2020, 2019-2021",
			want:  []int{2020, 2019, 2021},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "twenty-twenty",
			wantErr: true,
		},
		{
			name:    "reversed range",
			input:   "2021-2019",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseYears(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			set := flag.NewFlagSet("test", 0)
			set.String("log-level", level, "")
			c := cli.NewContext(nil, set, nil)
			assert.NoError(t, setupLogger(c), "level %s", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		set := flag.NewFlagSet("test", 0)
		set.String("log-level", "verbose", "")
		c := cli.NewContext(nil, set, nil)
		require.Error(t, setupLogger(c))
	})
}
