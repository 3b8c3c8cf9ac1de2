package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doITmagic/october-code-mcp/internal/files"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
		ok   bool
	}{
		{"v1.0.474", V1_0, true},
		{"1.1.5", V1_1, true},
		{"v2.2.34", V2_2, true},
		{"^3.0", V3_0, true},
		{"~3.5.0", V3_5, true},
		{">=3.7", V3_7, true},
		{"3.*", V3_0, true},
		{"2", V2_0, true},
		{"^2.0 || ^3.0", V2_0, true},
		{"v4.0.1", V4_0, true},
		{"dev-develop", 0, false},
		{"", 0, false},
		{"9.1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseVersion(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestVersionsAscending(t *testing.T) {
	all := Versions()
	require.Len(t, all, int(Latest)+1)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
	assert.Equal(t, "v3.5", V3_5.String())
	assert.Equal(t, "3", V3_5.Major())
}

func TestCapabilities(t *testing.T) {
	old := New(V1_1)
	assert.False(t, old.HasAppDirectory())
	assert.False(t, old.SupportsAnonymousMigrations())
	assert.False(t, old.UsesIdInMigrations())
	assert.False(t, old.UsesCommandSignature())
	assert.Equal(t, "resources/lang", old.RootLangDirectory())

	mid := New(V2_1)
	assert.True(t, mid.UsesIdInMigrations())
	assert.False(t, mid.HasAppDirectory())

	current := New(V3_3)
	assert.True(t, current.HasAppDirectory())
	assert.True(t, current.SupportsAnonymousMigrations())
	assert.True(t, current.UsesCommandSignature())
	assert.Equal(t, "lang", current.RootLangDirectory())
}

func TestDetect_LockfileWins(t *testing.T) {
	mem := files.NewMemFS()
	mem.WriteFile("/p/composer.lock", `{"packages":[{"name":"laravel/framework","version":"v9.0.0"},{"name":"october/rain","version":"v3.4.16"}]}`)
	mem.WriteFile("/p/composer.json", `{"require":{"october/all":"^2.0"}}`)

	v, err := Detect(mem, "/p")
	require.NoError(t, err)
	assert.Equal(t, V3_4, v)
}

func TestDetect_ManifestUmbrellaThenCore(t *testing.T) {
	mem := files.NewMemFS()
	mem.WriteFile("/p/composer.json", `{"require":{"october/all":"^3.1","october/rain":"^2.0"}}`)

	v, err := Detect(mem, "/p")
	require.NoError(t, err)
	assert.Equal(t, V3_1, v)

	mem.WriteFile("/q/composer.json", `{"require":{"october/rain":"2.1.*"}}`)
	v, err = Detect(mem, "/q")
	require.NoError(t, err)
	assert.Equal(t, V2_1, v)
}

func TestDetect_ManifestWithoutOctober(t *testing.T) {
	mem := files.NewMemFS()
	mem.WriteFile("/p/composer.json", `{"require":{"laravel/framework":"^9.0"}}`)
	mem.WriteFile("/p/vendor/october/rain/composer.json", `{}`)

	_, err := Detect(mem, "/p")
	assert.ErrorIs(t, err, ErrNotOctoberProject)
}

func TestDetect_VendorFallback(t *testing.T) {
	mem := files.NewMemFS()
	mem.WriteFile("/p/vendor/october/rain/composer.json", `{}`)

	v, err := Detect(mem, "/p")
	require.NoError(t, err)
	assert.Equal(t, V1_0, v)
}

func TestDetect_NoSignal(t *testing.T) {
	mem := files.NewMemFS()
	mem.WriteFile("/p/index.php", `<?php`)

	_, err := Detect(mem, "/p")
	assert.ErrorIs(t, err, ErrVersionNotDetected)
}
