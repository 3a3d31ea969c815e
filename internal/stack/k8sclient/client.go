// Package k8sclient provides the Kubernetes operations the stack deployer
// needs: server-side apply of manifests, secret and namespace management,
// API discovery, and readiness waits.
package k8sclient

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides Kubernetes operations for stack deployment.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	// The fieldManager identifies the actor applying the configuration.
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error

	// EnsureNamespace creates a namespace if it does not exist.
	EnsureNamespace(ctx context.Context, name string) error

	// CreateSecret creates or replaces a secret in its namespace.
	CreateSecret(ctx context.Context, secret *corev1.Secret) error

	// DeleteSecret deletes a secret, returning nil if not found.
	DeleteSecret(ctx context.Context, namespace, name string) error

	// SecretExists reports whether a secret exists.
	SecretExists(ctx context.Context, namespace, name string) (bool, error)

	// RefreshDiscovery refreshes API discovery to pick up newly installed
	// CRDs, for example after a chart install.
	RefreshDiscovery(ctx context.Context) error

	// HasAPIResource checks whether the given kind is served under the
	// given groupVersion, e.g. ("argoproj.io/v1alpha1", "EventBus").
	HasAPIResource(ctx context.Context, groupVersion, kind string) (bool, error)

	// WaitForAPIResource polls until the kind is served or the timeout
	// elapses, refreshing discovery between polls.
	WaitForAPIResource(ctx context.Context, groupVersion, kind string, timeout time.Duration) error

	// WaitForDeployment waits for a deployment rollout to complete.
	WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error

	// WaitForDaemonSet waits for a daemonset to be ready on all nodes.
	WaitForDaemonSet(ctx context.Context, namespace, name string, timeout time.Duration) error

	// WaitForPodsReady waits until every pod matching the label selector
	// in the namespace is running and ready. At least one pod must exist.
	WaitForPodsReady(ctx context.Context, namespace, labelSelector string, timeout time.Duration) error

	// HasReadyEndpoints checks if a service has at least one ready endpoint.
	HasReadyEndpoints(ctx context.Context, namespace, serviceName string) (bool, error)

	// DeploymentReady reports whether a deployment is fully rolled out.
	DeploymentReady(ctx context.Context, namespace, name string) (bool, error)
}

// client implements Client using k8s.io/client-go.
type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	kubeconfig    []byte // retained for discovery refreshes
}

// NewFromKubeconfig creates a Client from kubeconfig bytes, avoiding the
// need to write the kubeconfig to a file first.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get API group resources: %w", err)
	}
	mapper := restmapper.NewDiscoveryRESTMapper(groupResources)

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
		kubeconfig:    kubeconfig,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients, for testing
// with fakes.
func NewFromClients(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
	}
}

// RefreshDiscovery rebuilds the REST mapper from a fresh discovery pass.
func (c *client) RefreshDiscovery(ctx context.Context) error {
	if len(c.kubeconfig) == 0 {
		// Test clients have no kubeconfig to rediscover from.
		return nil
	}

	restConfig, err := clientcmd.RESTConfigFromKubeConfig(c.kubeconfig)
	if err != nil {
		return fmt.Errorf("failed to create REST config: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("failed to create discovery client: %w", err)
	}

	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return fmt.Errorf("failed to get API group resources: %w", err)
	}

	c.mapper = restmapper.NewDiscoveryRESTMapper(groupResources)
	return nil
}

// HasAPIResource checks discovery for a served kind under a groupVersion.
func (c *client) HasAPIResource(ctx context.Context, groupVersion, kind string) (bool, error) {
	if len(c.kubeconfig) == 0 {
		return true, nil // Test clients serve everything.
	}

	restConfig, err := clientcmd.RESTConfigFromKubeConfig(c.kubeconfig)
	if err != nil {
		return false, fmt.Errorf("failed to create REST config: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return false, fmt.Errorf("failed to create discovery client: %w", err)
	}

	_, apiResourceLists, err := discoveryClient.ServerGroupsAndResources()
	if err != nil {
		// Partial discovery errors are common when some APIs are unavailable.
		if !discovery.IsGroupDiscoveryFailedError(err) {
			return false, fmt.Errorf("failed to discover API resources: %w", err)
		}
	}

	for _, list := range apiResourceLists {
		if list.GroupVersion != groupVersion {
			continue
		}
		for _, resource := range list.APIResources {
			if resource.Kind == kind {
				return true, nil
			}
		}
	}
	return false, nil
}

// HasReadyEndpoints checks if a service has at least one ready endpoint.
func (c *client) HasReadyEndpoints(ctx context.Context, namespace, serviceName string) (bool, error) {
	endpoints, err := c.clientset.CoreV1().Endpoints(namespace).Get(ctx, serviceName, metav1.GetOptions{})
	if err != nil {
		return false, nil // Service does not exist yet.
	}

	for _, subset := range endpoints.Subsets {
		if len(subset.Addresses) > 0 {
			return true, nil
		}
	}
	return false, nil
}
