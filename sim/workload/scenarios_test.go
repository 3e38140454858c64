package workload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_AreValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			spec, err := Preset(name)
			require.NoError(t, err)
			assert.NoError(t, spec.Validate())
			assert.NotEmpty(t, spec.Points)
		})
	}
}

func TestPresetNames_Sorted(t *testing.T) {
	assert.Equal(t, []string{"attack-dominant", "bursty-attack", "steady-flood"}, PresetNames())
}

func TestPreset_Unknown_ReturnsError(t *testing.T) {
	_, err := Preset("slowloris")
	assert.Error(t, err)
}

func TestPreset_ReturnsFreshCopy(t *testing.T) {
	// GIVEN a preset whose CV is mutated by the caller
	a, err := Preset("bursty-attack")
	require.NoError(t, err)
	*a.Attack.CV = 9
	a.Points[0].Attack = 1

	// WHEN the preset is requested again
	b, err := Preset("bursty-attack")
	require.NoError(t, err)

	// THEN it is unaffected
	assert.Equal(t, 3.5, *b.Attack.CV)
	assert.Equal(t, DefaultSweep()[0], b.Points[0])
}

func TestBurstyAttack_AttackIsBurstierThanLegitimate(t *testing.T) {
	spec := ScenarioBurstyAttack()
	assert.Equal(t, ProcessGamma, spec.Attack.Process)
	assert.Equal(t, ProcessPoisson, spec.Legitimate.Process)
	require.NotNil(t, spec.Attack.CV)
	assert.Greater(t, *spec.Attack.CV, 1.0)
}

func TestAttackDominant_AttackExceedsLegitimate(t *testing.T) {
	for _, p := range ScenarioAttackDominant().Points {
		assert.Greater(t, p.Attack, p.Legitimate)
	}
}
