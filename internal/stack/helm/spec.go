package helm

import "github.com/kindlab/kindstack/internal/config"

// GetChartSpec returns the chart spec for the given component name, applying
// any overrides from the HelmChartConfig.
func GetChartSpec(name string, helmCfg config.HelmChartConfig) ChartSpec {
	spec, ok := DefaultChartSpecs[name]
	if !ok {
		// Empty spec for unknown components, caller handles this.
		return ChartSpec{}
	}

	if helmCfg.Repository != "" {
		spec.Repository = helmCfg.Repository
	}
	if helmCfg.Chart != "" {
		spec.Name = helmCfg.Chart
	}
	if helmCfg.Version != "" {
		spec.Version = helmCfg.Version
	}

	return spec
}
