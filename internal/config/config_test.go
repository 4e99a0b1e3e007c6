//go:build linux

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thorio/keyremap"
)

func TestParseKeyRef_BareKeyDefaultsToScaleOne(t *testing.T) {
	ref, err := ParseKeyRef("KEY_A")
	require.NoError(t, err)
	require.Equal(t, keyremap.FamilyKey, ref.Code.Family)
	require.Equal(t, int32(1), ref.Scale)
}

func TestParseKeyRef_BtnNormalizesToKeyFamily(t *testing.T) {
	ref, err := ParseKeyRef("BTN_LEFT")
	require.NoError(t, err)
	require.Equal(t, keyremap.FamilyKey, ref.Code.Family)
}

func TestParseKeyRef_BareAxisDefaultsToWildcardZeroScale(t *testing.T) {
	ref, err := ParseKeyRef("REL_WHEEL")
	require.NoError(t, err)
	require.Equal(t, keyremap.FamilyRel, ref.Code.Family)
	require.Equal(t, int32(0), ref.Scale)
}

func TestParseKeyRef_DirectionOnlyDefaultsMagnitudeToOne(t *testing.T) {
	pos, err := ParseKeyRef("REL_WHEEL+")
	require.NoError(t, err)
	require.Equal(t, int32(1), pos.Scale)

	neg, err := ParseKeyRef("REL_WHEEL-")
	require.NoError(t, err)
	require.Equal(t, int32(-1), neg.Scale)
}

func TestParseKeyRef_DirectionWithMagnitude(t *testing.T) {
	ref, err := ParseKeyRef("REL_WHEEL+3")
	require.NoError(t, err)
	require.Equal(t, int32(3), ref.Scale)

	ref, err = ParseKeyRef("ABS_X-12")
	require.NoError(t, err)
	require.Equal(t, int32(-12), ref.Scale)
}

func TestParseKeyRef_UnknownName(t *testing.T) {
	_, err := ParseKeyRef("KEY_NOT_A_REAL_KEY")
	require.Error(t, err)
}

func TestLoad_RequiresDeviceName(t *testing.T) {
	var f File
	_, err := f.validate()
	require.Error(t, err)
}

func TestLoad_BuildsTableFromDualRoleAndRemap(t *testing.T) {
	f := File{
		DeviceName: "Test Keyboard",
		DualRole: []dualRoleEntry{
			{Input: "KEY_CAPSLOCK", Hold: "KEY_LEFTCTRL", Tap: "KEY_ESC"},
		},
		Remap: []remapEntry{
			{Input: []string{"KEY_LEFTALT", "KEY_TAB"}, Output: []string{"KEY_LEFTCTRL", "KEY_TAB"}},
		},
	}

	cfg, err := f.validate()
	require.NoError(t, err)
	require.Equal(t, "Test Keyboard", cfg.DeviceName)
	require.Len(t, cfg.Table.Rules, 2)
	require.Equal(t, keyremap.RuleDualRole, cfg.Table.Rules[0].Kind)
	require.Equal(t, keyremap.RuleRemap, cfg.Table.Rules[1].Kind)
}

func TestLoad_DualRoleHoldAcceptsList(t *testing.T) {
	f := File{
		DeviceName: "Test Keyboard",
		DualRole: []dualRoleEntry{
			{Input: "KEY_CAPSLOCK", Hold: []any{"KEY_LEFTCTRL", "KEY_LEFTSHIFT"}, Tap: "KEY_ESC"},
		},
	}

	cfg, err := f.validate()
	require.NoError(t, err)
	require.Len(t, cfg.Table.Rules[0].Hold, 2)
}
