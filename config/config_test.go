package config

import (
	"testing"
	"time"

	"github.com/shoenig/test/must"
	"github.com/stretchr/testify/require"
)

const basicConfig = `
regions:
  - name: eu-west
    interval: 1s
    threshold: 2
    groups:
      - name: core
        threshold: 2
        tests:
          - http example.org
          - tcp example.org:443
      - name: dns
        tests:
          - dns example.org
`

func TestConfig_Parse(t *testing.T) {
	conf, err := Parse([]byte(basicConfig))
	must.NoError(t, err)
	must.Len(t, 1, conf.Regions)

	region := conf.Regions[0]
	must.Eq(t, "eu-west", region.Name)
	must.Eq(t, time.Second, region.Interval)
	must.Eq(t, 2, region.Threshold)
	must.Len(t, 2, region.Groups)

	// The second group only sets a name and tests; the rest is
	// defaulted.
	must.Eq(t, DefaultThreshold, region.Groups[1].Threshold)
}

func TestConfig_Parse_Defaults(t *testing.T) {
	conf, err := Parse([]byte(`
regions:
  - name: eu
    groups:
      - name: g
        tests: ["http example.org"]
`))
	must.NoError(t, err)
	must.Eq(t, DefaultInterval, conf.Regions[0].Interval)
	must.Eq(t, DefaultThreshold, conf.Regions[0].Threshold)
}

func TestConfig_Parse_MediumsScalarOrList(t *testing.T) {
	scalar, err := Parse([]byte(`
alerting:
  - name: chat
    medium: telegram
regions:
  - name: eu
    groups:
      - name: g
        mediums: chat
        tests: ["http example.org"]
`))
	require.NoError(t, err)
	require.Equal(t, Mediums{"chat"}, scalar.Regions[0].Groups[0].Mediums)

	list, err := Parse([]byte(`
alerting:
  - name: chat
    medium: telegram
  - name: sms
    medium: spryng
regions:
  - name: eu
    groups:
      - name: g
        mediums: [chat, sms]
        tests: ["http example.org"]
`))
	require.NoError(t, err)
	require.Equal(t, Mediums{"chat", "sms"}, list.Regions[0].Groups[0].Mediums)
}

func TestConfig_Validate_Errors(t *testing.T) {
	cases := []struct {
		name     string
		yaml     string
		expected string
	}{
		{
			name:     "no regions",
			yaml:     `regions: []`,
			expected: "at least one region",
		},
		{
			name: "unknown probe kind",
			yaml: `
regions:
  - name: eu
    groups:
      - name: g
        tests: ["icmp 10.0.0.1"]
`,
			expected: `unknown probe kind "icmp"`,
		},
		{
			name: "duplicate region",
			yaml: `
regions:
  - name: eu
    groups:
      - name: g
        tests: ["http example.org"]
  - name: eu
    groups:
      - name: g
        tests: ["http example.org"]
`,
			expected: "duplicate region name",
		},
		{
			name: "duplicate group",
			yaml: `
regions:
  - name: eu
    groups:
      - name: g
        tests: ["http example.org"]
      - name: g
        tests: ["http example.org"]
`,
			expected: "duplicate group name",
		},
		{
			name: "negative threshold",
			yaml: `
regions:
  - name: eu
    threshold: -1
    groups:
      - name: g
        tests: ["http example.org"]
`,
			expected: "threshold must be at least 1",
		},
		{
			name: "invalid interval",
			yaml: `
regions:
  - name: eu
    interval: -5s
    groups:
      - name: g
        tests: ["http example.org"]
`,
			expected: "interval must be positive",
		},
		{
			name: "group without tests",
			yaml: `
regions:
  - name: eu
    groups:
      - name: g
`,
			expected: "at least one test is required",
		},
		{
			name: "undeclared medium",
			yaml: `
regions:
  - name: eu
    groups:
      - name: g
        mediums: ghost
        tests: ["http example.org"]
`,
			expected: `medium "ghost" is not declared`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.expected)
		})
	}
}

func TestConfig_Parse_BadInterval(t *testing.T) {
	_, err := Parse([]byte(`
regions:
  - name: eu
    interval: often
    groups:
      - name: g
        tests: ["http example.org"]
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid interval")
}

func TestConfig_Region(t *testing.T) {
	conf, err := Parse([]byte(basicConfig))
	must.NoError(t, err)
	must.NotNil(t, conf.Region("eu-west"))
	must.Nil(t, conf.Region("ghost"))
}

func TestConfig_Hash_Stable(t *testing.T) {
	first, err := Parse([]byte(basicConfig))
	must.NoError(t, err)
	second, err := Parse([]byte(basicConfig))
	must.NoError(t, err)

	h1, err := first.Hash()
	must.NoError(t, err)
	h2, err := second.Hash()
	must.NoError(t, err)
	must.Eq(t, h1, h2)
}

func TestConfig_Hash_KeyOrderIndependent(t *testing.T) {
	// Same document with region map keys in a different order.
	reordered := `
regions:
  - groups:
      - name: core
        threshold: 2
        tests:
          - http example.org
          - tcp example.org:443
      - name: dns
        tests:
          - dns example.org
    threshold: 2
    interval: 1s
    name: eu-west
`
	first, err := Parse([]byte(basicConfig))
	must.NoError(t, err)
	second, err := Parse([]byte(reordered))
	must.NoError(t, err)

	h1, err := first.Hash()
	must.NoError(t, err)
	h2, err := second.Hash()
	must.NoError(t, err)
	must.Eq(t, h1, h2)
}

func TestConfig_Hash_TestOrderSignificant(t *testing.T) {
	reordered := `
regions:
  - name: eu-west
    interval: 1s
    threshold: 2
    groups:
      - name: core
        threshold: 2
        tests:
          - tcp example.org:443
          - http example.org
      - name: dns
        tests:
          - dns example.org
`
	first, err := Parse([]byte(basicConfig))
	must.NoError(t, err)
	second, err := Parse([]byte(reordered))
	must.NoError(t, err)

	h1, err := first.Hash()
	must.NoError(t, err)
	h2, err := second.Hash()
	must.NoError(t, err)
	must.NotEq(t, h1, h2)
}
