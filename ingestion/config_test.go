package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "no partitions",
			mutate:  func(c *Config) { c.Years = nil },
			wantErr: ErrNoPartitions,
		},
		{
			name:    "bad batch size",
			mutate:  func(c *Config) { c.BatchSize = -1 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "bad dimension",
			mutate:  func(c *Config) { c.VectorDimension = -8 },
			wantErr: ErrInvalidDimension,
		},
		{
			name:    "bad page cap",
			mutate:  func(c *Config) { c.MaxPagesPerPartition = -1 },
			wantErr: ErrInvalidPageCap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Years = []int{2020}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_NormalizeFillsDefaults(t *testing.T) {
	cfg := Config{Years: []int{2020}}
	cfg.Normalize()

	defaults := DefaultConfig()
	assert.Equal(t, defaults.RetryLimit, cfg.RetryLimit)
	assert.Equal(t, defaults.BaseDelay, cfg.BaseDelay)
	assert.Equal(t, defaults.BatchSize, cfg.BatchSize)
	assert.Equal(t, defaults.ChunkSize, cfg.ChunkSize)
	assert.Equal(t, defaults.ChunkOverlap, cfg.ChunkOverlap)
	assert.Equal(t, defaults.Region, cfg.Region)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_NormalizeKeepsExplicitValues(t *testing.T) {
	cfg := Config{Years: []int{2020}, BatchSize: 7, Region: "DE"}
	cfg.Normalize()

	assert.Equal(t, 7, cfg.BatchSize)
	assert.Equal(t, "DE", cfg.Region)
}
