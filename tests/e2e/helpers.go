//go:build e2e

package e2e

import (
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// newRawClient builds a typed clientset straight from kubeconfig bytes, for
// assertions that bypass the kindstack client wrapper.
func newRawClient(kubeconfig []byte) (kubernetes.Interface, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(restConfig)
}
