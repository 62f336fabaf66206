package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNetworkPolicy(t *testing.T) {
	policy := DefaultNetworkPolicy()

	tests := []struct {
		resourceType string
		allowed      bool
	}{
		{"image", false},
		{"fetch", false},
		{"media", false},
		{"font", false},
		{"stylesheet", false},
		{"document", true},
		{"script", true},
		{"xhr", true},
		{"other", true},
	}

	for _, tt := range tests {
		t.Run(tt.resourceType, func(t *testing.T) {
			got := policy.Allow(tt.resourceType, "https://ebelajar.stiki.ac.id/some/resource")
			assert.Equal(t, tt.allowed, got)
		})
	}
}

func TestNetworkPolicyURLPatterns(t *testing.T) {
	policy, err := NewNetworkPolicy(DefaultBlockedResourceTypes, []string{
		"*google-analytics.com*",
		"https://ebelajar.stiki.ac.id/theme/*",
	})
	require.NoError(t, err)

	assert.False(t, policy.Allow("script", "https://www.google-analytics.com/analytics.js"))
	assert.False(t, policy.Allow("script", "https://ebelajar.stiki.ac.id/theme/yui_combo.php"))
	assert.True(t, policy.Allow("script", "https://ebelajar.stiki.ac.id/lib/javascript.php"))
	assert.True(t, policy.Allow("document", "https://ebelajar.stiki.ac.id/my/"))

	// Resource type rules still apply alongside patterns
	assert.False(t, policy.Allow("image", "https://ebelajar.stiki.ac.id/lib/logo.png"))
}

func TestNewNetworkPolicyInvalidPattern(t *testing.T) {
	_, err := NewNetworkPolicy(nil, []string{"[unterminated"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid blocked URL pattern")
}

func TestEmptyNetworkPolicyAllowsEverything(t *testing.T) {
	policy, err := NewNetworkPolicy(nil, nil)
	require.NoError(t, err)

	for _, rt := range DefaultBlockedResourceTypes {
		assert.True(t, policy.Allow(rt, "https://example.com"), rt)
	}
}
