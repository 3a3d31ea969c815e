package stack

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack/helm"
)

// MonitoringRelease is the Helm release name for kube-prometheus-stack.
const MonitoringRelease = "monitoring"

// installMonitoring installs the kube-prometheus-stack release: Prometheus,
// Grafana, Alertmanager, node exporter, and kube-state-metrics.
//
// Grafana reads its admin credentials from the secret created in the secrets
// step and is exposed on a fixed NodePort so the local bridge can reach it.
func (d *Deployer) installMonitoring(ctx context.Context) error {
	log.Printf("[stack] Installing kube-prometheus-stack (Prometheus, Grafana, Alertmanager)...")

	helmClient, err := d.newHelmClient(config.NamespaceMonitoring)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	values := buildMonitoringValues(d.cfg)
	spec := helm.GetChartSpec("kube-prometheus-stack", d.cfg.Stack.Monitoring.Helm)

	if _, err := helmClient.InstallOrUpgrade(ctx, MonitoringRelease, spec, values); err != nil {
		return fmt.Errorf("failed to install kube-prometheus-stack: %w", err)
	}

	// The chart wait covers hooks; verify the Grafana rollout explicitly
	// since the bridge depends on it.
	grafanaDeployment := MonitoringRelease + "-grafana"
	if err := d.k8s.WaitForDeployment(ctx, config.NamespaceMonitoring, grafanaDeployment, d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] kube-prometheus-stack installed")
	return nil
}

// buildMonitoringValues creates helm values for kube-prometheus-stack.
func buildMonitoringValues(cfg *config.Config) helm.Values {
	monCfg := cfg.Stack.Monitoring

	return helm.Values{
		"grafana": helm.Values{
			"admin": helm.Values{
				"existingSecret": GrafanaAdminSecret,
				"userKey":        "admin-user",
				"passwordKey":    "admin-password",
			},
			"service": helm.Values{
				"type":     "NodePort",
				"nodePort": config.GrafanaNodePort,
			},
			// The test pod races the service account on kind.
			"testFramework": helm.Values{
				"enabled": false,
			},
			"sidecar": helm.Values{
				"dashboards":  helm.Values{"enabled": true},
				"datasources": helm.Values{"enabled": true},
			},
		},
		"prometheus": helm.Values{
			"prometheusSpec": helm.Values{
				"retention": fmt.Sprintf("%dd", monCfg.RetentionDays),
				// Scrape all monitors, not just the chart's own.
				"serviceMonitorSelectorNilUsesHelmValues": false,
				"podMonitorSelectorNilUsesHelmValues":     false,
				"ruleSelectorNilUsesHelmValues":           false,
				"resources": helm.Values{
					"requests": helm.Values{
						"cpu":    "200m",
						"memory": "512Mi",
					},
				},
			},
		},
		"alertmanager": helm.Values{
			"enabled": true,
		},
		"nodeExporter": helm.Values{
			"enabled": true,
		},
		"kubeStateMetrics": helm.Values{
			"enabled": true,
		},
	}
}
