package stack

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kindlab/kindstack/internal/config"
)

// Secret names referenced by chart values and event wiring.
const (
	GrafanaAdminSecret = "grafana-admin"
	WebhookTokenSecret = "webhook-token"
)

// ensureSecrets creates the credentials the charts and event wiring expect.
// Configured values are written as-is; unset credentials are generated once
// and kept across runs so logins and tokens stay stable.
func (d *Deployer) ensureSecrets(ctx context.Context) error {
	if d.cfg.Stack.Monitoring.Enabled {
		if err := d.ensureGrafanaAdminSecret(ctx); err != nil {
			return err
		}
	}
	if d.cfg.Stack.Events.Enabled {
		if err := d.ensureWebhookTokenSecret(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) ensureGrafanaAdminSecret(ctx context.Context) error {
	monCfg := d.cfg.Stack.Monitoring

	password := monCfg.GrafanaAdminPass
	if password == "" {
		exists, err := d.k8s.SecretExists(ctx, config.NamespaceMonitoring, GrafanaAdminSecret)
		if err != nil {
			return fmt.Errorf("failed to check grafana admin secret: %w", err)
		}
		if exists {
			log.Printf("[stack] Secret %s/%s already exists, keeping generated password",
				config.NamespaceMonitoring, GrafanaAdminSecret)
			return nil
		}
		password, err = randomToken()
		if err != nil {
			return err
		}
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      GrafanaAdminSecret,
			Namespace: config.NamespaceMonitoring,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"admin-user":     monCfg.GrafanaAdminUser,
			"admin-password": password,
		},
	}
	if err := d.k8s.CreateSecret(ctx, secret); err != nil {
		return fmt.Errorf("failed to create grafana admin secret: %w", err)
	}
	log.Printf("[stack] Secret %s/%s created", config.NamespaceMonitoring, GrafanaAdminSecret)
	return nil
}

func (d *Deployer) ensureWebhookTokenSecret(ctx context.Context) error {
	token := d.cfg.Stack.Events.WebhookToken
	if token == "" {
		exists, err := d.k8s.SecretExists(ctx, config.NamespaceEvents, WebhookTokenSecret)
		if err != nil {
			return fmt.Errorf("failed to check webhook token secret: %w", err)
		}
		if exists {
			log.Printf("[stack] Secret %s/%s already exists, keeping generated token",
				config.NamespaceEvents, WebhookTokenSecret)
			return nil
		}
		token, err = randomToken()
		if err != nil {
			return err
		}
	}

	secret := &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      WebhookTokenSecret,
			Namespace: config.NamespaceEvents,
		},
		Type: corev1.SecretTypeOpaque,
		StringData: map[string]string{
			"token": token,
		},
	}
	if err := d.k8s.CreateSecret(ctx, secret); err != nil {
		return fmt.Errorf("failed to create webhook token secret: %w", err)
	}
	log.Printf("[stack] Secret %s/%s created", config.NamespaceEvents, WebhookTokenSecret)
	return nil
}

// randomToken returns 32 hex characters from a CSPRNG.
func randomToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
