package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// On-disk YAML shape. Condition fields are optional; presence selects the
// condition variant.
type fileConfig struct {
	Tenants map[string]fileSet `yaml:"tenants"`
}

type fileSet struct {
	Policies []filePolicy `yaml:"policies"`
}

type filePolicy struct {
	Action              Action          `yaml:"action"`
	Kind                Kind            `yaml:"kind"`
	Timeframe           Timeframe       `yaml:"timeframe"`
	ItemsPerTimeframe   int             `yaml:"itemsPerTimeframe"`
	Message             string          `yaml:"message"`
	AppliesToOwnThreads bool            `yaml:"appliesToOwnThreads"`
	Conditions          *fileConditions `yaml:"conditions"`
}

type fileConditions struct {
	KarmaCeiling       *int64            `yaml:"karmaCeiling"`
	KarmaFloor         *int64            `yaml:"karmaFloor"`
	DownvoteRatioFloor *float64          `yaml:"downvoteRatioFloor"`
	RecentKarmaFloor   *fileSampledInt   `yaml:"recentKarmaFloor"`
	DownvoterCount     *fileSampledCount `yaml:"downvoterCountFloor"`
}

type fileSampledInt struct {
	Max    int64 `yaml:"max"`
	Sample int   `yaml:"sample"`
}

type fileSampledCount struct {
	Min    int `yaml:"min"`
	Sample int `yaml:"sample"`
}

func (fc *fileConditions) build() []Condition {
	if fc == nil {
		return nil
	}
	var out []Condition
	if fc.KarmaCeiling != nil {
		out = append(out, KarmaCeiling{Max: *fc.KarmaCeiling})
	}
	if fc.KarmaFloor != nil {
		out = append(out, KarmaFloor{Min: *fc.KarmaFloor})
	}
	if fc.DownvoteRatioFloor != nil {
		out = append(out, DownvoteRatioFloor{Min: *fc.DownvoteRatioFloor})
	}
	if fc.RecentKarmaFloor != nil {
		out = append(out, RecentKarmaFloor{Max: fc.RecentKarmaFloor.Max, Sample: fc.RecentKarmaFloor.Sample})
	}
	if fc.DownvoterCount != nil {
		out = append(out, DownvoterCountFloor{Min: fc.DownvoterCount.Min, Sample: fc.DownvoterCount.Sample})
	}
	return out
}

// Parses and validates a policy configuration. Any invalid policy rejects
// the whole configuration, so bad config fails at process start rather than
// at evaluation time.
func ParseConfig(raw []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parsing policy config: %w", err)
	}
	if len(fc.Tenants) == 0 {
		return nil, fmt.Errorf("policy config declares no tenants")
	}
	cfg := make(Config, len(fc.Tenants))
	for tenant, fs := range fc.Tenants {
		set := Set{Policies: make([]Policy, 0, len(fs.Policies))}
		for _, fp := range fs.Policies {
			set.Policies = append(set.Policies, Policy{
				Action:              fp.Action,
				Kind:                fp.Kind,
				Timeframe:           fp.Timeframe,
				ItemsPerTimeframe:   fp.ItemsPerTimeframe,
				Message:             fp.Message,
				AppliesToOwnThreads: fp.AppliesToOwnThreads,
				Conditions:          fp.Conditions.build(),
			})
		}
		cfg[tenant] = set
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy config: %w", err)
	}
	return ParseConfig(raw)
}
