package lensio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/karmalentil/potk/pkg/polyfit"
)

// WriteModel writes the fitted-coefficient artifact consumed by the
// render-time evaluator and the shader generator.
func WriteModel(path string, model *polyfit.Model) error {
	data, err := json.MarshalIndent(model, "", "  ")
	if err != nil {
		return fmt.Errorf("lensio: encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("lensio: write model: %w", err)
	}
	return nil
}

// ReadModel reads a fitted-coefficient artifact, rejecting incompatible
// format versions and structurally broken coefficient tables.
func ReadModel(path string) (*polyfit.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lensio: %w", err)
	}

	var model polyfit.Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("lensio: invalid model JSON in %s: %w", path, err)
	}
	if model.FormatVersion != polyfit.FormatVersion {
		return nil, fmt.Errorf("lensio: model %s: format version %d, this build reads version %d",
			path, model.FormatVersion, polyfit.FormatVersion)
	}
	if model.Degree < 1 || model.Degree > polyfit.MaxDegree {
		return nil, fmt.Errorf("lensio: model %s: degree %d out of range [1,%d]",
			path, model.Degree, polyfit.MaxDegree)
	}

	want := polyfit.BasisSize(model.Degree)
	for ch, coeffs := range model.Coeffs {
		if len(coeffs) != want {
			return nil, fmt.Errorf("lensio: model %s: channel %s has %d coefficients, degree %d needs %d",
				path, polyfit.ChannelNames[ch], len(coeffs), model.Degree, want)
		}
	}
	return &model, nil
}

// WriteReport writes the validation report artifact used for automated
// regression testing across lens revisions.
func WriteReport(path string, report *polyfit.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("lensio: encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("lensio: write report: %w", err)
	}
	return nil
}

// ReadReport reads a validation report artifact
func ReadReport(path string) (*polyfit.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lensio: %w", err)
	}
	var report polyfit.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("lensio: invalid report JSON in %s: %w", path, err)
	}
	return &report, nil
}
