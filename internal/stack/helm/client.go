package helm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"

	"github.com/kindlab/kindstack/internal/util/retry"
)

// Client provides Helm operations scoped to a single namespace.
type Client struct {
	kubeconfig   []byte
	namespace    string
	timeout      time.Duration
	actionConfig *action.Configuration
}

// NewClient creates a Helm client from kubeconfig bytes. The timeout bounds
// each install or upgrade, including its readiness wait.
func NewClient(kubeconfig []byte, namespace string, timeout time.Duration) (*Client, error) {
	c := &Client{
		kubeconfig: kubeconfig,
		namespace:  namespace,
		timeout:    timeout,
	}

	actionConfig := new(action.Configuration)
	restGetter := newKubeConfigGetter(kubeconfig, namespace)

	// Helm's debug logging is noise here.
	if err := actionConfig.Init(restGetter, namespace, "secret", func(format string, v ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	c.actionConfig = actionConfig
	return c, nil
}

// InstallOrUpgrade installs a chart or upgrades the release if it exists,
// making repeated runs converge on the same release state.
func (c *Client) InstallOrUpgrade(ctx context.Context, releaseName string, spec ChartSpec, values map[string]interface{}) (*release.Release, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return c.install(ctx, releaseName, spec, values)
	}
	return c.upgrade(ctx, releaseName, spec, values)
}

func (c *Client) install(ctx context.Context, releaseName string, spec ChartSpec, values map[string]interface{}) (*release.Release, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = releaseName
	installClient.Namespace = c.namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = true
	installClient.Timeout = c.timeout

	loadedChart, err := c.loadChart(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	return installClient.RunWithContext(ctx, loadedChart, values)
}

func (c *Client) upgrade(ctx context.Context, releaseName string, spec ChartSpec, values map[string]interface{}) (*release.Release, error) {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Version = spec.Version
	upgradeClient.Wait = true
	upgradeClient.Timeout = c.timeout
	upgradeClient.ReuseValues = false

	loadedChart, err := c.loadChart(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	return upgradeClient.RunWithContext(ctx, releaseName, loadedChart, values)
}

// loadChart downloads the chart archive from its repository and loads it.
// Index fetches are retried since chart repos occasionally time out; a chart
// or version missing from the index will not appear on a later attempt, so
// that error aborts the retry loop.
func (c *Client) loadChart(ctx context.Context, spec ChartSpec) (*chart.Chart, error) {
	settings := cli.New()

	var chartPath string
	err := retry.Do(ctx, func() error {
		var findErr error
		chartPath, findErr = repo.FindChartInRepoURL(
			spec.Repository,
			spec.Name,
			spec.Version,
			"", "", "",
			getter.All(settings),
		)
		return chartFindError(findErr)
	}, retry.WithAttempts(3), retry.WithBaseDelay(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", spec.Name, spec.Repository, err)
	}

	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}

// chartFindError classifies a chart lookup failure for the retry loop:
// a chart or version absent from the repo index is permanent, everything
// else (network, index fetch) is worth another attempt.
func chartFindError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "not found") {
		return retry.Fatal(err)
	}
	return err
}

// Uninstall removes a Helm release.
func (c *Client) Uninstall(releaseName string) error {
	uninstallClient := action.NewUninstall(c.actionConfig)
	uninstallClient.Wait = true
	uninstallClient.Timeout = 5 * time.Minute

	_, err := uninstallClient.Run(releaseName)
	return err
}

// ReleaseExists checks if a release exists in the client's namespace.
func (c *Client) ReleaseExists(releaseName string) (bool, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return false, nil
	}
	return true, nil
}

// ReleaseStatus returns the release status string, e.g. "deployed", or
// "not installed" when the release does not exist.
func (c *Client) ReleaseStatus(releaseName string) (string, error) {
	statusClient := action.NewStatus(c.actionConfig)
	rel, err := statusClient.Run(releaseName)
	if err != nil {
		return "not installed", nil
	}
	if rel.Info == nil {
		return "unknown", nil
	}
	return rel.Info.Status.String(), nil
}
