package classify

import (
	"github.com/robgonnella/aegis/internal/config"
	"github.com/robgonnella/aegis/internal/util"
)

// Thresholds the heuristic limits used by Evaluate
type Thresholds struct {
	HarmfulScore     int
	HarmfulPortCount int
	CriticalPorts    []int
}

// DefaultThresholds returns the built-in thresholds
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.Default().Risk)
}

// ThresholdsFromConfig returns thresholds from the risk config section
func ThresholdsFromConfig(risk config.Risk) Thresholds {
	return Thresholds{
		HarmfulScore:     risk.HarmfulScore,
		HarmfulPortCount: risk.HarmfulPortCount,
		CriticalPorts:    risk.CriticalPorts,
	}
}

// Verdict outcome of Evaluate
type Verdict struct {
	Harmful       bool
	RiskScore     int
	OpenPortCount int
	CriticalPorts []int
}

// Evaluate returns the harmful verdict for f. It never fails.
func Evaluate(f Features, t Thresholds) Verdict {
	critical := []int{}

	for _, p := range f.OpenPorts {
		if util.SliceIncludes(t.CriticalPorts, p) {
			critical = append(critical, p)
		}
	}

	count := len(f.OpenPorts)

	harmful := len(critical) > 0

	if t.HarmfulScore > 0 && f.RiskScore >= t.HarmfulScore {
		harmful = true
	}

	if t.HarmfulPortCount > 0 && count >= t.HarmfulPortCount {
		harmful = true
	}

	return Verdict{
		Harmful:       harmful,
		RiskScore:     f.RiskScore,
		OpenPortCount: count,
		CriticalPorts: critical,
	}
}
