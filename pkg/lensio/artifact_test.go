package lensio_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karmalentil/potk/pkg/lensio"
	"github.com/karmalentil/potk/pkg/polyfit"
)

func testModel() *polyfit.Model {
	degree := 1
	size := polyfit.BasisSize(degree)
	m := &polyfit.Model{
		FormatVersion: polyfit.FormatVersion,
		LensName:      "round_trip",
		Degree:        degree,
		Zoom:          0.5,
		Transmittance: "pass_through",
	}
	for ch := range m.Coeffs {
		m.Coeffs[ch] = make([]float64, size)
		m.Coeffs[ch][0] = float64(ch) + 0.25
	}
	for c := range m.Norm.In {
		m.Norm.In[c] = polyfit.Range{Min: -1, Max: 1}
	}
	for c := range m.Norm.Out {
		m.Norm.Out[c] = polyfit.Range{Min: -10, Max: 10}
	}
	return m
}

func TestModelArtifact_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	want := testModel()
	require.NoError(t, lensio.WriteModel(path, want))

	got, err := lensio.ReadModel(path)
	require.NoError(t, err)

	assert.Equal(t, want.FormatVersion, got.FormatVersion)
	assert.Equal(t, want.LensName, got.LensName)
	assert.Equal(t, want.Degree, got.Degree)
	assert.Equal(t, want.Zoom, got.Zoom)
	assert.Equal(t, want.Transmittance, got.Transmittance)
	assert.Equal(t, want.Norm, got.Norm)
	assert.Equal(t, want.Coeffs, got.Coeffs)

	// The reloaded model evaluates identically.
	wx, wy, _, _, _ := want.Evaluate(0.1, 0.2, 0.3, 0.4, 0.55)
	gx, gy, _, _, _ := got.Evaluate(0.1, 0.2, 0.3, 0.4, 0.55)
	assert.Equal(t, wx, gx)
	assert.Equal(t, wy, gy)
}

func TestReadModel_VersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	m := testModel()
	m.FormatVersion = polyfit.FormatVersion + 1
	require.NoError(t, lensio.WriteModel(path, m))

	_, err := lensio.ReadModel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format version")
}

func TestReadModel_CoefficientLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	m := testModel()
	m.Coeffs[2] = m.Coeffs[2][:3]
	require.NoError(t, lensio.WriteModel(path, m))

	_, err := lensio.ReadModel(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit_dx")
}

func TestReadModel_DegreeOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		degree int
	}{
		{"zero", 0},
		{"negative", -1},
		{"beyond evaluator bound", polyfit.MaxDegree + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.json")
			m := testModel()
			m.Degree = tt.degree
			// Match the coefficient count so only the degree check can
			// reject the artifact.
			if size := polyfit.BasisSize(tt.degree); size > 0 {
				for ch := range m.Coeffs {
					m.Coeffs[ch] = make([]float64, size)
				}
			}
			require.NoError(t, lensio.WriteModel(path, m))

			_, err := lensio.ReadModel(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "degree")
		})
	}
}

func TestReadModel_MissingFile(t *testing.T) {
	_, err := lensio.ReadModel(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestReportArtifact_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	want := &polyfit.Report{
		LensName:    "round_trip",
		Degree:      5,
		Zoom:        0.5,
		Requested:   2048,
		Valid:       1500,
		DiscardRate: 0.267,
		PositionRMS: 0.042,
		Threshold:   0.1,
		Pass:        true,
		Residuals:   []polyfit.Residual{{SensorX: 1, SensorY: 2, ErrX: 0.1, ErrY: -0.1}},
	}
	for ch, name := range polyfit.ChannelNames {
		want.Channels[ch] = polyfit.ChannelError{Name: name, RMS: 0.01, Max: 0.05}
	}
	require.NoError(t, lensio.WriteReport(path, want))

	got, err := lensio.ReadReport(path)
	require.NoError(t, err)
	assert.Equal(t, want.PositionRMS, got.PositionRMS)
	assert.Equal(t, want.Channels, got.Channels)
	assert.True(t, got.Pass)

	// Residuals are plot-only state, not part of the artifact.
	assert.Nil(t, got.Residuals)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "Residuals")
}
