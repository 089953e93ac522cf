package sampling

import (
	"fmt"

	"github.com/estandiaa-marain/EMAworkbench/pkg/models"
)

// SampleUncertainties generates a design set over the uncertainty
// declarations of the given models, merged by union or intersection.
func SampleUncertainties(ms []models.Model, n int, union bool, sampler Sampler) (*DesignSet, error) {
	uncertainties := models.UncertaintiesOf(ms, union)
	if len(uncertainties) == 0 {
		return nil, fmt.Errorf("no uncertainties declared by the given models")
	}
	return sampler.GenerateDesigns(uncertainties, n)
}

// SampleLevers generates a design set over the lever declarations of the
// given models, merged by union or intersection.
func SampleLevers(ms []models.Model, n int, union bool, sampler Sampler) (*DesignSet, error) {
	levers := models.LeversOf(ms, union)
	if len(levers) == 0 {
		return nil, fmt.Errorf("no levers declared by the given models")
	}
	return sampler.GenerateDesigns(levers, n)
}
