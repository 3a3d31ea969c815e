package helm

// ChartSpec identifies a chart by repository, name, and version.
type ChartSpec struct {
	Repository string
	Name       string
	Version    string
}

// DefaultChartSpecs contains the default chart specifications for each stack
// component. Users can override these via config.HelmChartConfig.
var DefaultChartSpecs = map[string]ChartSpec{
	"kube-prometheus-stack": {
		Repository: "https://prometheus-community.github.io/helm-charts",
		Name:       "kube-prometheus-stack",
		Version:    "75.6.0",
	},
	"loki": {
		Repository: "https://grafana.github.io/helm-charts",
		Name:       "loki",
		Version:    "6.30.1",
	},
	"argo-events": {
		Repository: "https://argoproj.github.io/argo-helm",
		Name:       "argo-events",
		Version:    "2.4.15",
	},
}
