package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleConfigYAML = `
tenants:
  default:
    policies:
      - action: posts
        kind: universal
        timeframe: {length: 1, unit: days}
        itemsPerTimeframe: 5
        message: "Users cannot submit more than 5 posts per day."
        appliesToOwnThreads: true
      - action: comments
        kind: lowReputation
        timeframe: {length: 1, unit: days}
        itemsPerTimeframe: 3
        message: "New users can write up to 3 comments per day."
        conditions:
          karmaCeiling: 5
  quietbrand:
    policies:
      - action: comments
        kind: downvoteRatio
        timeframe: {length: 1, unit: weeks}
        itemsPerTimeframe: 1
        message: "Heavily downvoted users can comment once per week here."
        conditions:
          downvoteRatioFloor: 0.3
          downvoterCountFloor: {min: 4, sample: 20}
`

func TestParseConfig(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	cfg, err := ParseConfig([]byte(sampleConfigYAML))
	require.NoError(err)
	require.Len(cfg, 2)

	def, err := cfg.Select("default")
	require.NoError(err)
	require.Len(def.Policies, 2)

	assert.Equal(ActionPosts, def.Policies[0].Action)
	assert.Equal(KindUniversal, def.Policies[0].Kind)
	assert.True(def.Policies[0].AppliesToOwnThreads)
	assert.Empty(def.Policies[0].Conditions)

	assert.Equal([]Condition{KarmaCeiling{Max: 5}}, def.Policies[1].Conditions)

	quiet, err := cfg.Select("quietbrand")
	require.NoError(err)
	require.Len(quiet.Policies, 1)
	assert.Equal([]Condition{
		DownvoteRatioFloor{Min: 0.3},
		DownvoterCountFloor{Min: 4, Sample: 20},
	}, quiet.Policies[0].Conditions)
}

func TestParseConfigRejectsBadPolicies(t *testing.T) {
	assert := assert.New(t)

	// threshold below one
	_, err := ParseConfig([]byte(`
tenants:
  default:
    policies:
      - action: posts
        kind: universal
        timeframe: {length: 1, unit: days}
        itemsPerTimeframe: 0
        message: "nope"
`))
	assert.Error(err)

	// unknown timeframe unit
	_, err = ParseConfig([]byte(`
tenants:
  default:
    policies:
      - action: posts
        kind: universal
        timeframe: {length: 1, unit: fortnights}
        itemsPerTimeframe: 1
        message: "nope"
`))
	assert.Error(err)

	// sampled condition without a sample size
	_, err = ParseConfig([]byte(`
tenants:
  default:
    policies:
      - action: comments
        kind: lowReputation
        timeframe: {length: 1, unit: days}
        itemsPerTimeframe: 1
        message: "nope"
        conditions:
          recentKarmaFloor: {max: 1}
`))
	assert.Error(err)

	// no tenants at all
	_, err = ParseConfig([]byte(`tenants: {}`))
	assert.Error(err)

	// not yaml
	_, err = ParseConfig([]byte(`{{{`))
	assert.Error(err)
}
