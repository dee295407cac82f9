package profile

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed weights.yaml
var weightsYAML []byte

// DefaultSourceScore is returned for a source name with no configured
// weight and no matching fallback rule.
const DefaultSourceScore = 0.5

type weightsFile struct {
	Sources map[string]float64 `yaml:"sources"`
}

var (
	weightsOnce sync.Once
	weights     map[string]float64
)

func loadWeights() {
	weightsOnce.Do(func() {
		var wf weightsFile
		if err := yaml.Unmarshal(weightsYAML, &wf); err == nil {
			weights = wf.Sources
		}
		if weights == nil {
			weights = map[string]float64{}
		}
	})
}

// SourceWeight returns a default quality score for a source name: exact
// match, then case-insensitive substring match either direction, then the
// r/ prefix rule and the "hacker news" substring rule, falling back to
// DefaultSourceScore.
// Grounded on original_source/clawler/weights.py's get_quality_score.
func SourceWeight(sourceName string) float64 {
	loadWeights()

	if v, ok := weights[sourceName]; ok {
		return v
	}

	lower := strings.ToLower(sourceName)
	for key, score := range weights {
		keyLower := strings.ToLower(key)
		if strings.Contains(lower, keyLower) || strings.Contains(keyLower, lower) {
			return score
		}
	}

	if strings.HasPrefix(sourceName, "r/") {
		if v, ok := weights["Reddit"]; ok {
			return v
		}
		return DefaultSourceScore
	}
	if strings.Contains(lower, "hacker news") {
		if v, ok := weights["Hacker News"]; ok {
			return v
		}
		return DefaultSourceScore
	}

	return DefaultSourceScore
}

// AllSourceWeights returns a copy of the loaded source-weight table.
func AllSourceWeights() map[string]float64 {
	loadWeights()
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}
