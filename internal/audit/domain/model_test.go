package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProvider(t *testing.T) {
	for raw, want := range map[string]Provider{
		"aws":   ProviderAWS,
		"AWS":   ProviderAWS,
		" gcp ": ProviderGCP,
		"Azure": ProviderAzure,
	} {
		p, ok := ParseProvider(raw)
		assert.True(t, ok, "input %q", raw)
		assert.Equal(t, want, p)
	}

	for _, raw := range []string{"", "oracle", "amazon", "aw s"} {
		_, ok := ParseProvider(raw)
		assert.False(t, ok, "input %q", raw)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, NormalizeSeverity(" critical "))
	assert.Equal(t, SeverityHigh, NormalizeSeverity("High"))
	assert.Equal(t, "WEIRD", NormalizeSeverity("weird"))
	assert.Equal(t, "", NormalizeSeverity("  "))
}
