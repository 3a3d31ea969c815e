package stack

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack/helm"
)

// LokiRelease is the Helm release name for Loki.
const LokiRelease = "loki"

// installLoki installs Loki in single-binary mode with filesystem storage,
// sized for a local kind cluster rather than a production deployment.
func (d *Deployer) installLoki(ctx context.Context) error {
	log.Printf("[stack] Installing Loki...")

	helmClient, err := d.newHelmClient(config.NamespaceMonitoring)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	values := buildLokiValues()
	spec := helm.GetChartSpec("loki", d.cfg.Stack.Loki.Helm)

	if _, err := helmClient.InstallOrUpgrade(ctx, LokiRelease, spec, values); err != nil {
		return fmt.Errorf("failed to install loki: %w", err)
	}

	if err := d.k8s.WaitForPodsReady(ctx, config.NamespaceMonitoring,
		"app.kubernetes.io/name=loki", d.cfg.StepTimeout.Std()); err != nil {
		return err
	}

	log.Printf("[stack] Loki installed")
	return nil
}

// buildLokiValues creates helm values for a single-binary Loki.
func buildLokiValues() helm.Values {
	return helm.Values{
		"deploymentMode": "SingleBinary",
		"loki": helm.Values{
			"auth_enabled": false,
			"commonConfig": helm.Values{
				"replication_factor": 1,
			},
			"storage": helm.Values{
				"type": "filesystem",
			},
			"schemaConfig": helm.Values{
				"configs": []helm.Values{
					{
						"from":         "2024-04-01",
						"store":        "tsdb",
						"object_store": "filesystem",
						"schema":       "v13",
						"index": helm.Values{
							"prefix": "loki_index_",
							"period": "24h",
						},
					},
				},
			},
		},
		"singleBinary": helm.Values{
			"replicas": 1,
		},
		// Scalable-mode components are off in single-binary mode.
		"read":    helm.Values{"replicas": 0},
		"write":   helm.Values{"replicas": 0},
		"backend": helm.Values{"replicas": 0},
		"gateway": helm.Values{
			"enabled": false,
		},
		"lokiCanary": helm.Values{
			"enabled": false,
		},
		"test": helm.Values{
			"enabled": false,
		},
		"chunksCache": helm.Values{
			"enabled": false,
		},
		"resultsCache": helm.Values{
			"enabled": false,
		},
	}
}
