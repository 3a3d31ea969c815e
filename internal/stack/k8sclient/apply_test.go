package k8sclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
)

// Server-Side Apply is not supported by the fake dynamic client, so these
// tests cover parsing, validation, and routing up to the apply call.

func newTestClient(t *testing.T) *client {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset()
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)
	dynamicClient := dynamicfake.NewSimpleDynamicClient(scheme)

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        newTestMapper(),
	}
}

func newTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name: "",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{
					GroupVersion: "v1",
					Version:      "v1",
				},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "configmaps", Namespaced: true, Kind: "ConfigMap"},
					{Name: "services", Namespaced: true, Kind: "Service"},
					{Name: "serviceaccounts", Namespaced: true, Kind: "ServiceAccount"},
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
				},
			},
		},
	}
	return restmapper.NewDiscoveryRESTMapper(resources)
}

func TestApplyManifests_EmptyInput(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	require.NoError(t, c.ApplyManifests(context.Background(), nil, "kindstack"))
	require.NoError(t, c.ApplyManifests(context.Background(), []byte("---\n---\n"), "kindstack"))
}

func TestApplyManifests_InvalidYAML(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	err := c.ApplyManifests(context.Background(), []byte("{invalid yaml: ["), "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode manifest")
}

func TestApplyManifests_MultiDocument(t *testing.T) {
	t.Parallel()

	manifests := []byte(`---
apiVersion: v1
kind: ConfigMap
metadata:
  name: first
  namespace: events
---
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: second
  namespace: events
`)

	c := newTestClient(t)

	// The fake dynamic client rejects SSA, so the error comes from the apply
	// step, proving both documents parsed.
	err := c.ApplyManifests(context.Background(), manifests, "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply")
}

func TestApplyObject_NoKind(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"metadata":   map[string]any{"name": "test"},
		},
	}

	err := c.applyObject(context.Background(), obj, "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kind set")
}

func TestApplyObject_UnknownGVK(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "argoproj.io/v1alpha1",
			"kind":       "EventBus",
			"metadata":   map[string]any{"name": "default"},
		},
	}

	err := c.applyObject(context.Background(), obj, "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get REST mapping")
}

func TestApplyObject_DefaultsNamespace(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"kind":       "ConfigMap",
			"metadata":   map[string]any{"name": "no-namespace"},
		},
	}

	// Fails on the fake's missing SSA support, after namespace defaulting.
	err := c.applyObject(context.Background(), obj, "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server-side apply failed")
}

func TestApplyObject_ClusterScoped(t *testing.T) {
	t.Parallel()

	c := newTestClient(t)

	obj := &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": "v1",
			"kind":       "Namespace",
			"metadata":   map[string]any{"name": "platform"},
		},
	}

	err := c.applyObject(context.Background(), obj, "kindstack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server-side apply failed")
}
