// Package helm installs the stack's charts programmatically through the
// Helm SDK, driven by in-memory kubeconfig bytes.
package helm

import (
	"sync"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// kubeConfigGetter satisfies genericclioptions.RESTClientGetter from the
// kubeconfig bytes kind hands back, so the Helm client never touches the
// filesystem. The kubeconfig is parsed once and the result reused across
// all getter calls.
type kubeConfigGetter struct {
	kubeconfig []byte
	namespace  string

	once       sync.Once
	restConfig *rest.Config
	loadErr    error
}

func newKubeConfigGetter(kubeconfig []byte, namespace string) *kubeConfigGetter {
	return &kubeConfigGetter{
		kubeconfig: kubeconfig,
		namespace:  namespace,
	}
}

func (g *kubeConfigGetter) load() (*rest.Config, error) {
	g.once.Do(func() {
		clientConfig, err := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
		if err != nil {
			g.loadErr = err
			return
		}
		cfg, err := clientConfig.ClientConfig()
		if err != nil {
			g.loadErr = err
			return
		}
		// Helm fires a burst of discovery requests per chart; the default
		// client-side throttle slows installs noticeably.
		cfg.Burst = 100
		g.restConfig = cfg
	})
	return g.restConfig, g.loadErr
}

// ToRESTConfig returns the REST config parsed from the kubeconfig bytes.
func (g *kubeConfigGetter) ToRESTConfig() (*rest.Config, error) {
	return g.load()
}

// ToDiscoveryClient returns a memory-cached discovery client.
func (g *kubeConfigGetter) ToDiscoveryClient() (discovery.CachedDiscoveryInterface, error) {
	restConfig, err := g.load()
	if err != nil {
		return nil, err
	}

	dc, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, err
	}
	return memory.NewMemCacheClient(dc), nil
}

// ToRESTMapper returns a REST mapper backed by the cached discovery client.
func (g *kubeConfigGetter) ToRESTMapper() (meta.RESTMapper, error) {
	dc, err := g.ToDiscoveryClient()
	if err != nil {
		return nil, err
	}
	return restmapper.NewDeferredDiscoveryRESTMapper(dc), nil
}

// ToRawKubeConfigLoader returns a clientcmd.ClientConfig pinned to the
// getter's namespace.
func (g *kubeConfigGetter) ToRawKubeConfigLoader() clientcmd.ClientConfig {
	raw, err := clientcmd.Load(g.kubeconfig)
	if err != nil {
		clientConfig, _ := clientcmd.NewClientConfigFromBytes(g.kubeconfig)
		return clientConfig
	}
	overrides := &clientcmd.ConfigOverrides{
		Context: clientcmdapi.Context{Namespace: g.namespace},
	}
	return clientcmd.NewNonInteractiveClientConfig(*raw, raw.CurrentContext, overrides, nil)
}
