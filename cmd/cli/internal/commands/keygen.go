package commands

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wolfeidau/membership/internal/auth"
)

// KeygenCmd generates the ECDSA P-256 key pair used to sign and verify tokens.
type KeygenCmd struct {
	OutputDir string `help:"Directory receiving signing.key and signing.pub" default:"." type:"path"`
	Force     bool   `help:"Overwrite an existing key pair" default:"false"`
}

func (c *KeygenCmd) Run(ctx context.Context, globals *Globals) error {
	privatePath := filepath.Join(c.OutputDir, "signing.key")
	publicPath := filepath.Join(c.OutputDir, "signing.pub")

	if !c.Force {
		if _, err := os.Stat(privatePath); err == nil {
			return fmt.Errorf("%s already exists, use --force to replace it", privatePath)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	privateKeyDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	publicKeyDER, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to marshal public key: %w", err)
	}

	if err := os.MkdirAll(c.OutputDir, 0o700); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(privatePath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: privateKeyDER}), 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	if err := os.WriteFile(publicPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicKeyDER}), 0o644); err != nil {
		return fmt.Errorf("failed to write public key: %w", err)
	}

	kid, err := auth.KeyID(&privateKey.PublicKey)
	if err != nil {
		return err
	}

	fmt.Printf("Signing key:  %s\n", privatePath)
	fmt.Printf("Public key:   %s\n", publicPath)
	fmt.Printf("Key ID:       %s\n", kid)
	fmt.Println()
	fmt.Printf("Start the server with: membership-server server --jwt-public-key %s\n", publicPath)

	return nil
}
