//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/stack"
)

var _ = Describe("Stack lifecycle", Ordered, func() {
	const (
		timeout  = 15 * time.Minute
		interval = 5 * time.Second
	)

	It("deploys the full stack", func() {
		result, err := deployer.Deploy(suiteCtx)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Completed).To(ContainElements(stack.StepNamespaces, stack.StepSecrets))
		Expect(result.Completed).To(ContainElement(stack.StepMonitoring))
		Expect(result.Completed).To(ContainElement(stack.StepLoki))

		// No locally built controller image in CI, so the controller step
		// degrades instead of failing.
		Expect(result.Degraded).To(Or(BeEmpty(), ConsistOf(stack.StepController)))
	})

	It("reports component status", func() {
		statuses, err := deployer.Status(suiteCtx)
		Expect(err).NotTo(HaveOccurred())

		byName := map[string]string{}
		for _, s := range statuses {
			byName[s.Name] = s.Detail
		}
		Expect(byName).To(HaveKeyWithValue(stack.StepMonitoring, "deployed"))
		Expect(byName).To(HaveKeyWithValue(stack.StepLoki, "deployed"))
	})

	It("starts the local bridges", func() {
		Expect(bridges.EnsureAll(suiteCtx, cfg.Bridges)).To(Succeed())

		statuses, err := bridges.List(suiteCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(statuses).To(HaveLen(len(cfg.Bridges)))

		for _, b := range cfg.Bridges {
			addr := fmt.Sprintf("127.0.0.1:%d", b.LocalPort)
			Eventually(func() error {
				conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
				if err != nil {
					return err
				}
				return conn.Close()
			}, timeout, interval).Should(Succeed(), "bridge %s should accept connections on %s", b.Name, addr)
		}
	})

	It("is idempotent on re-deploy", func() {
		result, err := deployer.Deploy(suiteCtx)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Completed).To(ContainElement(stack.StepMonitoring))
	})

	It("survives a bridge container being removed", func() {
		Expect(bridges.RemoveAll(suiteCtx)).To(Succeed())

		statuses, err := bridges.List(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(statuses).To(BeEmpty())

		Expect(bridges.EnsureAll(suiteCtx, cfg.Bridges)).To(Succeed())

		Eventually(func() (int, error) {
			statuses, err := bridges.List(context.Background())
			return len(statuses), err
		}, time.Minute, interval).Should(Equal(len(cfg.Bridges)))
	})

	It("keeps the generated grafana admin password across deploys", func() {
		kubeconfig, err := provisioner.Kubeconfig()
		Expect(err).NotTo(HaveOccurred())

		first := grafanaPassword(kubeconfig)
		Expect(first).NotTo(BeEmpty())

		_, err = deployer.Deploy(suiteCtx)
		Expect(err).NotTo(HaveOccurred())

		Expect(grafanaPassword(kubeconfig)).To(Equal(first))
	})
})

// grafanaPassword reads the generated admin password from the cluster.
func grafanaPassword(kubeconfig []byte) string {
	GinkgoHelper()

	k8s, err := newRawClient(kubeconfig)
	Expect(err).NotTo(HaveOccurred())

	secret, err := k8s.CoreV1().Secrets(config.NamespaceMonitoring).
		Get(context.Background(), stack.GrafanaAdminSecret, metav1.GetOptions{})
	Expect(err).NotTo(HaveOccurred())
	return string(secret.Data["admin-password"])
}
