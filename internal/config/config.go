// Package config defines the kindstack configuration file format and its
// loading, defaulting, and validation rules.
package config

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "kindstack.yaml"

// Namespaces the stack deploys into.
const (
	NamespaceMonitoring = "monitoring"
	NamespaceEvents     = "events"
	NamespacePlatform   = "platform"
)

// clusterNameRegex validates cluster name format: 1-32 lowercase alphanumeric with hyphens.
var clusterNameRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,30}[a-z0-9])?$`)

// Config is the top-level kindstack configuration.
type Config struct {
	// ClusterName is the name of the Kind cluster.
	ClusterName string `yaml:"cluster_name"`

	// Workers is the number of worker nodes in addition to the control plane.
	Workers int `yaml:"workers"`

	// NodeImage overrides the Kind node image (empty uses Kind's default).
	NodeImage string `yaml:"node_image"`

	// KubeconfigPath is where the cluster kubeconfig is written.
	KubeconfigPath string `yaml:"kubeconfig_path"`

	// Stack configures the components deployed onto the cluster.
	Stack StackConfig `yaml:"stack"`

	// Bridges are local TCP relays into the cluster's Docker network.
	Bridges []BridgeConfig `yaml:"bridges"`

	// StepTimeout bounds each deployment step (waits, chart installs).
	StepTimeout Duration `yaml:"step_timeout"`
}

// StackConfig holds per-component settings.
type StackConfig struct {
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Loki       LokiConfig       `yaml:"loki"`
	Events     EventsConfig     `yaml:"events"`
	Controller ControllerConfig `yaml:"controller"`
}

// MonitoringConfig configures the kube-prometheus-stack release.
type MonitoringConfig struct {
	Enabled          bool            `yaml:"enabled"`
	GrafanaAdminUser string          `yaml:"grafana_admin_user"`
	GrafanaAdminPass string          `yaml:"grafana_admin_password"`
	RetentionDays    int             `yaml:"retention_days"`
	Helm             HelmChartConfig `yaml:"helm"`
}

// LokiConfig configures the Loki release.
type LokiConfig struct {
	Enabled bool            `yaml:"enabled"`
	Helm    HelmChartConfig `yaml:"helm"`
}

// EventsConfig configures the Argo Events release and the webhook wiring.
type EventsConfig struct {
	Enabled      bool            `yaml:"enabled"`
	WebhookToken string          `yaml:"webhook_token"`
	WebhookPort  int             `yaml:"webhook_port"`
	Helm         HelmChartConfig `yaml:"helm"`
}

// ControllerConfig configures the platform controller deployment.
// The controller image is expected in the local Docker daemon; if absent,
// the deployment is skipped with a remediation hint rather than failing.
type ControllerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Image   string `yaml:"image"`
}

// HelmChartConfig allows overriding a chart's repository, name, and version.
type HelmChartConfig struct {
	Repository string `yaml:"repository"`
	Chart      string `yaml:"chart"`
	Version    string `yaml:"version"`
}

// BridgeConfig describes one local-port-to-cluster TCP relay.
type BridgeConfig struct {
	// Name identifies the bridge; the relay container is named after it.
	Name string `yaml:"name"`

	// LocalPort is the port bound on 127.0.0.1.
	LocalPort int `yaml:"local_port"`

	// TargetHost is a resolvable name on the kind Docker network,
	// typically the control-plane node container.
	TargetHost string `yaml:"target_host"`

	// TargetPort is the TCP port on the target, usually a NodePort.
	TargetPort int `yaml:"target_port"`
}

// NodePorts the stack services are exposed on inside the cluster.
const (
	GrafanaNodePort = 30300
	WebhookNodePort = 30120
)

// Default returns a configuration with every stack component enabled and
// the standard local bridges for Grafana and the webhook endpoint.
func Default() *Config {
	cfg := &Config{
		ClusterName:    "kindstack",
		Workers:        1,
		KubeconfigPath: "kubeconfig",
		Stack: StackConfig{
			Monitoring: MonitoringConfig{
				Enabled:          true,
				GrafanaAdminUser: "admin",
				RetentionDays:    7,
			},
			Loki:   LokiConfig{Enabled: true},
			Events: EventsConfig{Enabled: true, WebhookPort: 12000},
			Controller: ControllerConfig{
				Enabled: true,
				Image:   "kindstack/controller:dev",
			},
		},
		StepTimeout: Duration(10 * time.Minute),
	}
	cfg.Bridges = DefaultBridges(cfg)
	return cfg
}

// DefaultBridges returns the standard bridges for the enabled components:
// Grafana on 3000 and the Argo Events webhook on its configured port.
func DefaultBridges(cfg *Config) []BridgeConfig {
	host := cfg.ClusterName + "-control-plane"

	var bridges []BridgeConfig
	if cfg.Stack.Monitoring.Enabled {
		bridges = append(bridges, BridgeConfig{
			Name:       "grafana",
			LocalPort:  3000,
			TargetHost: host,
			TargetPort: GrafanaNodePort,
		})
	}
	if cfg.Stack.Events.Enabled {
		bridges = append(bridges, BridgeConfig{
			Name:       "webhook",
			LocalPort:  cfg.Stack.Events.WebhookPort,
			TargetHost: host,
			TargetPort: WebhookNodePort,
		})
	}
	return bridges
}

// Validate checks the configuration for errors that would break a run.
func (c *Config) Validate() error {
	if !clusterNameRegex.MatchString(c.ClusterName) {
		return fmt.Errorf("invalid cluster name %q: must be 1-32 lowercase alphanumeric characters or hyphens", c.ClusterName)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.StepTimeout <= 0 {
		return fmt.Errorf("step_timeout must be positive, got %s", c.StepTimeout.Std())
	}
	if c.Stack.Monitoring.Enabled && c.Stack.Monitoring.RetentionDays < 1 {
		return fmt.Errorf("monitoring retention_days must be at least 1, got %d", c.Stack.Monitoring.RetentionDays)
	}
	if c.Stack.Controller.Enabled && c.Stack.Controller.Image == "" {
		return fmt.Errorf("controller is enabled but no image is configured")
	}
	if c.Stack.Events.Enabled {
		if c.Stack.Events.WebhookPort < 1 || c.Stack.Events.WebhookPort > 65535 {
			return fmt.Errorf("events webhook_port must be 1-65535, got %d", c.Stack.Events.WebhookPort)
		}
	}
	return c.validateBridges()
}

// validateBridges checks bridge names and ports for validity and uniqueness.
func (c *Config) validateBridges() error {
	names := make(map[string]struct{}, len(c.Bridges))
	ports := make(map[int]struct{}, len(c.Bridges))

	for _, b := range c.Bridges {
		if !clusterNameRegex.MatchString(b.Name) {
			return fmt.Errorf("invalid bridge name %q: must be 1-32 lowercase alphanumeric characters or hyphens", b.Name)
		}
		if _, dup := names[b.Name]; dup {
			return fmt.Errorf("duplicate bridge name %q", b.Name)
		}
		names[b.Name] = struct{}{}

		if b.LocalPort < 1 || b.LocalPort > 65535 {
			return fmt.Errorf("bridge %q: local_port must be 1-65535, got %d", b.Name, b.LocalPort)
		}
		if _, dup := ports[b.LocalPort]; dup {
			return fmt.Errorf("bridge %q: local_port %d already used by another bridge", b.Name, b.LocalPort)
		}
		ports[b.LocalPort] = struct{}{}

		if b.TargetPort < 1 || b.TargetPort > 65535 {
			return fmt.Errorf("bridge %q: target_port must be 1-65535, got %d", b.Name, b.TargetPort)
		}
		if b.TargetHost == "" {
			return fmt.Errorf("bridge %q: target_host is required", b.Name)
		}
	}
	return nil
}

// EnabledComponents returns the names of enabled stack components, sorted.
func (c *Config) EnabledComponents() []string {
	var out []string
	if c.Stack.Monitoring.Enabled {
		out = append(out, "monitoring")
	}
	if c.Stack.Loki.Enabled {
		out = append(out, "loki")
	}
	if c.Stack.Events.Enabled {
		out = append(out, "events")
	}
	if c.Stack.Controller.Enabled {
		out = append(out, "controller")
	}
	sort.Strings(out)
	return out
}
