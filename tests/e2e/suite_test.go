//go:build e2e

// Package e2e runs the full up/deploy/status/down lifecycle against a real
// kind cluster. The suite needs docker and network access, so it only runs
// when KINDSTACK_E2E=1 is set:
//
//	KINDSTACK_E2E=1 go test -v -tags=e2e ./tests/e2e/...
//
// Set KINDSTACK_E2E_KEEP=1 to keep the cluster after the run for debugging.
package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kindlab/kindstack/internal/bridge"
	"github.com/kindlab/kindstack/internal/cluster"
	"github.com/kindlab/kindstack/internal/config"
	"github.com/kindlab/kindstack/internal/dockerutil"
	"github.com/kindlab/kindstack/internal/stack"
)

var (
	cfg         *config.Config
	provisioner *cluster.Provisioner
	docker      *dockerutil.Client
	deployer    *stack.Deployer
	bridges     *bridge.Manager

	suiteCtx    context.Context
	suiteCancel context.CancelFunc
)

func TestE2E(t *testing.T) {
	if os.Getenv("KINDSTACK_E2E") == "" {
		t.Skip("KINDSTACK_E2E not set, skipping e2e suite")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "Kindstack E2E Suite")
}

var _ = BeforeSuite(func() {
	suiteCtx, suiteCancel = context.WithTimeout(context.Background(), 30*time.Minute)

	cfg = config.Default()
	cfg.ClusterName = "kindstack-e2e"
	cfg.Workers = 1
	cfg.KubeconfigPath = "kindstack-e2e.kubeconfig"
	// The controller image is not built in CI, so the controller step is
	// expected to degrade rather than deploy.
	cfg.Bridges = config.DefaultBridges(cfg)
	Expect(cfg.Validate()).To(Succeed())

	var err error
	docker, err = dockerutil.New()
	Expect(err).NotTo(HaveOccurred(), "docker daemon must be reachable")

	By("creating the kind cluster")
	provisioner = cluster.NewProvisioner(cfg)
	Expect(provisioner.Ensure()).To(Succeed())

	kubeconfig, err := provisioner.Kubeconfig()
	Expect(err).NotTo(HaveOccurred())
	Expect(os.WriteFile(cfg.KubeconfigPath, kubeconfig, 0o600)).To(Succeed())

	deployer, err = stack.NewDeployer(cfg, kubeconfig, docker)
	Expect(err).NotTo(HaveOccurred())

	bridges = bridge.NewManager(docker, cfg.ClusterName)
})

var _ = AfterSuite(func() {
	defer suiteCancel()

	if os.Getenv("KINDSTACK_E2E_KEEP") != "" {
		GinkgoWriter.Println("KINDSTACK_E2E_KEEP set, leaving cluster in place")
		return
	}

	By("tearing down bridges and cluster")
	if bridges != nil {
		_ = bridges.RemoveAll(context.Background())
	}
	if provisioner != nil {
		_ = provisioner.Delete()
	}
	_ = os.Remove(cfg.KubeconfigPath)
})
