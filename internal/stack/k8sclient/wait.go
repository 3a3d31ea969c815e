package k8sclient

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
)

const pollInterval = 5 * time.Second

// WaitForDeployment waits for a deployment rollout to complete.
func (c *client) WaitForDeployment(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			return c.DeploymentReady(ctx, namespace, name)
		})
	if err != nil {
		return fmt.Errorf("deployment %s/%s not ready: %w", namespace, name, err)
	}
	return nil
}

// WaitForDaemonSet waits for a daemonset to be ready on all scheduled nodes.
func (c *client) WaitForDaemonSet(ctx context.Context, namespace, name string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			daemonSet, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				return false, nil
			}
			return isDaemonSetReady(daemonSet), nil
		})
	if err != nil {
		return fmt.Errorf("daemonset %s/%s not ready: %w", namespace, name, err)
	}
	return nil
}

// WaitForPodsReady waits until every pod matching the selector is ready.
func (c *client) WaitForPodsReady(ctx context.Context, namespace, labelSelector string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			podList, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
				LabelSelector: labelSelector,
			})
			if err != nil || len(podList.Items) == 0 {
				return false, nil
			}
			for _, pod := range podList.Items {
				if !isPodReady(&pod) {
					return false, nil
				}
			}
			return true, nil
		})
	if err != nil {
		return fmt.Errorf("pods %q in %s not ready: %w", labelSelector, namespace, err)
	}
	return nil
}

// WaitForAPIResource polls discovery until the kind is served, refreshing
// the REST mapper on each attempt so a subsequent apply can resolve it.
func (c *client) WaitForAPIResource(ctx context.Context, groupVersion, kind string, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			found, err := c.HasAPIResource(ctx, groupVersion, kind)
			if err != nil || !found {
				return false, nil
			}
			if err := c.RefreshDiscovery(ctx); err != nil {
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		return fmt.Errorf("API resource %s/%s not available: %w", groupVersion, kind, err)
	}
	return nil
}

// DeploymentReady reports whether a deployment is fully rolled out.
func (c *client) DeploymentReady(ctx context.Context, namespace, name string) (bool, error) {
	deployment, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return false, nil
	}
	return isDeploymentReady(deployment), nil
}

// isDaemonSetReady checks scheduled, ready, and available counts.
func isDaemonSetReady(daemonSet *appsv1.DaemonSet) bool {
	return daemonSet.Status.DesiredNumberScheduled > 0 &&
		daemonSet.Status.NumberReady == daemonSet.Status.DesiredNumberScheduled &&
		daemonSet.Status.NumberAvailable == daemonSet.Status.DesiredNumberScheduled
}

// isPodReady checks the pod phase and Ready condition.
func isPodReady(pod *corev1.Pod) bool {
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, condition := range pod.Status.Conditions {
		if condition.Type == corev1.PodReady && condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}

// isDeploymentReady checks replica counts and the Available condition.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	if deployment.Spec.Replicas == nil {
		return false
	}
	replicas := *deployment.Spec.Replicas
	if deployment.Status.UpdatedReplicas != replicas {
		return false
	}
	if deployment.Status.Replicas != replicas {
		return false
	}
	if deployment.Status.AvailableReplicas != replicas {
		return false
	}

	for _, condition := range deployment.Status.Conditions {
		if condition.Type == appsv1.DeploymentAvailable &&
			condition.Status == corev1.ConditionTrue {
			return true
		}
	}
	return false
}
