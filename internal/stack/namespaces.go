package stack

import (
	"context"
	"fmt"
	"log"

	"github.com/kindlab/kindstack/internal/config"
)

// stackNamespaces are created up front so secrets and CRs have somewhere to
// land before their charts run.
var stackNamespaces = []string{
	config.NamespaceMonitoring,
	config.NamespaceEvents,
	config.NamespacePlatform,
}

// ensureNamespaces creates the stack namespaces, skipping ones that exist.
func (d *Deployer) ensureNamespaces(ctx context.Context) error {
	for _, ns := range stackNamespaces {
		if err := d.k8s.EnsureNamespace(ctx, ns); err != nil {
			return fmt.Errorf("failed to ensure namespace %q: %w", ns, err)
		}
	}
	log.Printf("[stack] Namespaces ready: %v", stackNamespaces)
	return nil
}
