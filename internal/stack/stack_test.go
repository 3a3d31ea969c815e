package stack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/release"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack/helm"
	"github.com/kindlab/kindstack/internal/stack/k8sclient"
)

// fakeHelmClient records installs and serves canned release statuses.
type fakeHelmClient struct {
	mu         sync.Mutex
	namespace  string
	installs   []string
	installErr error
	statuses   map[string]string
}

func (f *fakeHelmClient) InstallOrUpgrade(_ context.Context, releaseName string, _ helm.ChartSpec, _ map[string]interface{}) (*release.Release, error) {
	if f.installErr != nil {
		return nil, f.installErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.installs = append(f.installs, releaseName)
	return &release.Release{Name: releaseName, Namespace: f.namespace}, nil
}

func (f *fakeHelmClient) ReleaseExists(releaseName string) (bool, error) {
	_, ok := f.statuses[releaseName]
	return ok, nil
}

func (f *fakeHelmClient) ReleaseStatus(releaseName string) (string, error) {
	status, ok := f.statuses[releaseName]
	if !ok {
		return "not installed", nil
	}
	return status, nil
}

func (f *fakeHelmClient) Uninstall(_ string) error { return nil }

func int32Ptr(v int32) *int32 { return &v }

func readyDeployment(namespace, name string) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec:       appsv1.DeploymentSpec{Replicas: int32Ptr(1)},
		Status: appsv1.DeploymentStatus{
			Replicas:          1,
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
			Conditions: []appsv1.DeploymentCondition{
				{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
			},
		},
	}
}

func readyPod(namespace, name string, labels map[string]string) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace, Labels: labels},
		Status: corev1.PodStatus{
			Phase: corev1.PodRunning,
			Conditions: []corev1.PodCondition{
				{Type: corev1.PodReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

// newTestK8s builds a Client over fake clientsets, pre-seeded with objects.
func newTestK8s(objects ...runtime.Object) k8sclient.Client {
	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	_ = appsv1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)
	return k8sclient.NewFromClients(clientset, dynamicClient, newStackTestMapper())
}

// newStackTestMapper maps the core and rbac kinds the embedded manifests use.
func newStackTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name: "",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "serviceaccounts", Namespaced: true, Kind: "ServiceAccount"},
					{Name: "services", Namespaced: true, Kind: "Service"},
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name: "apps",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "apps/v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "apps/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "deployments", Namespaced: true, Kind: "Deployment"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name: "rbac.authorization.k8s.io",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "rbac.authorization.k8s.io/v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{
					GroupVersion: "rbac.authorization.k8s.io/v1",
					Version:      "v1",
				},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "roles", Namespaced: true, Kind: "Role"},
					{Name: "rolebindings", Namespaced: true, Kind: "RoleBinding"},
				},
			},
		},
	}
	return restmapper.NewDiscoveryRESTMapper(resources)
}

func helmFactory(f *fakeHelmClient) func(namespace string) (HelmClient, error) {
	return func(namespace string) (HelmClient, error) {
		f.namespace = namespace
		return f, nil
	}
}

func TestDeploy_BaseSteps(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Stack.Monitoring.Enabled = false
	cfg.Stack.Loki.Enabled = false
	cfg.Stack.Events.Enabled = false
	cfg.Stack.Controller.Enabled = false

	d := NewDeployerWithClients(cfg, newTestK8s(), nil, nil)

	result, err := d.Deploy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{StepNamespaces, StepSecrets}, result.Completed)
	assert.Empty(t, result.Degraded)
}

func TestDeploy_MonitoringAndLoki(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Stack.Events.Enabled = false
	cfg.Stack.Controller.Enabled = false
	cfg.StepTimeout = config.Duration(time.Minute)

	lokiLabels := map[string]string{"app.kubernetes.io/name": "loki"}
	k8s := newTestK8s(
		readyDeployment(config.NamespaceMonitoring, "monitoring-grafana"),
		readyPod(config.NamespaceMonitoring, "loki-0", lokiLabels),
	)

	helmFake := &fakeHelmClient{}
	d := NewDeployerWithClients(cfg, k8s, nil, helmFactory(helmFake))

	result, err := d.Deploy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{StepNamespaces, StepSecrets, StepMonitoring, StepLoki}, result.Completed)
	assert.Equal(t, []string{MonitoringRelease, LokiRelease}, helmFake.installs)
}

func TestDeploy_StepFailureAborts(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Stack.Loki.Enabled = false
	cfg.Stack.Events.Enabled = false
	cfg.Stack.Controller.Enabled = false

	helmFake := &fakeHelmClient{installErr: errors.New("chart fetch failed")}
	d := NewDeployerWithClients(cfg, newTestK8s(), nil, helmFactory(helmFake))

	_, err := d.Deploy(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step monitoring failed")
}

func TestStatus(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Stack.Events.Enabled = false

	helmFake := &fakeHelmClient{
		statuses: map[string]string{
			MonitoringRelease: "deployed",
			LokiRelease:       "failed",
		},
	}
	k8s := newTestK8s(readyDeployment(config.NamespacePlatform, ControllerDeployment))

	d := NewDeployerWithClients(cfg, k8s, nil, helmFactory(helmFake))

	statuses, err := d.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, ComponentStatus{Name: StepMonitoring, Detail: "deployed"}, statuses[0])
	assert.Equal(t, ComponentStatus{Name: StepLoki, Detail: "failed"}, statuses[1])
	assert.Equal(t, ComponentStatus{Name: StepController, Detail: "ready"}, statuses[2])
}

func TestStatus_ControllerNotReady(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Stack.Monitoring.Enabled = false
	cfg.Stack.Loki.Enabled = false
	cfg.Stack.Events.Enabled = false

	d := NewDeployerWithClients(cfg, newTestK8s(), nil, helmFactory(&fakeHelmClient{}))

	statuses, err := d.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, ComponentStatus{Name: StepController, Detail: "not ready"}, statuses[0])
}
