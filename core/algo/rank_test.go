package algo

import (
	"testing"

	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
)

func TestOrderEnvironments(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"empty", nil, nil},
		{"canonical shuffled", []string{"nft", "dev", "uat", "sit"}, []string{"dev", "sit", "uat", "nft"}},
		{"others keep encounter order", []string{"prod", "uat", "perf", "dev"}, []string{"dev", "uat", "prod", "perf"}},
		{"only others", []string{"zeta", "alpha"}, []string{"zeta", "alpha"}},
		{"duplicates dropped", []string{"sit", "dev", "sit"}, []string{"dev", "sit"}},
		{"case sensitive", []string{"DEV", "dev"}, []string{"dev", "DEV"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderEnvironments(tt.input)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRankProgress(t *testing.T) {
	records := []schema.EnvironmentProgress{
		{Env: "prod"}, {Env: "nft"}, {Env: "dev"}, {Env: "perf"}, {Env: "sit"},
	}
	got := RankProgress(records)
	var envs []string
	for _, r := range got {
		envs = append(envs, r.Env)
	}
	assert.Equal(t, []string{"dev", "sit", "nft", "prod", "perf"}, envs)
}

func TestRankSeries(t *testing.T) {
	series := []schema.EnvironmentSeries{{Env: "x"}, {Env: "uat"}, {Env: "dev"}}
	got := RankSeries(series)
	assert.Equal(t, "dev", got[0].Env)
	assert.Equal(t, "uat", got[1].Env)
	assert.Equal(t, "x", got[2].Env)
}
