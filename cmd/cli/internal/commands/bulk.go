package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	membershipv1 "github.com/wolfeidau/membership/api/membership/v1"
	"github.com/wolfeidau/membership/internal/client"
	"gopkg.in/yaml.v3"
)

// Manifest lists invitations to send to one organization.
//
//	organization: 0192b3c4-...
//	message: Welcome aboard
//	invitees:
//	  - email: ada@example.com
//	  - user_id: 0192b3c4-...
//	    message: See you Monday
type Manifest struct {
	OrganizationID uuid.UUID `yaml:"organization"`
	Message        string    `yaml:"message"`
	Invitees       []Invitee `yaml:"invitees"`
}

type Invitee struct {
	UserID  uuid.UUID `yaml:"user_id"`
	Email   string    `yaml:"email"`
	Message string    `yaml:"message"`
}

func (i Invitee) String() string {
	if i.UserID != uuid.Nil {
		return i.UserID.String()
	}
	return i.Email
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if m.OrganizationID == uuid.Nil {
		return errors.New("manifest: organization is required")
	}
	if len(m.Invitees) == 0 {
		return errors.New("manifest: no invitees")
	}
	for n, inv := range m.Invitees {
		hasID := inv.UserID != uuid.Nil
		hasEmail := strings.TrimSpace(inv.Email) != ""
		if hasID == hasEmail {
			return fmt.Errorf("manifest: invitee %d needs exactly one of user_id or email", n+1)
		}
	}
	return nil
}

// message returns the invitee's message, falling back to the manifest default.
func (m *Manifest) message(inv Invitee) *string {
	msg := inv.Message
	if msg == "" {
		msg = m.Message
	}
	if msg == "" {
		return nil
	}
	return &msg
}

type InviteBulkCmd struct {
	Manifest string `arg:"" help:"Path to the YAML manifest" type:"existingfile"`
	DryRun   bool   `help:"Resolve invitees without sending invitations" default:"false"`
}

func (c *InviteBulkCmd) Run(ctx context.Context, globals *Globals) error {
	manifest, err := loadManifest(c.Manifest)
	if err != nil {
		return err
	}

	cl, err := globals.client()
	if err != nil {
		return err
	}

	sent, failed := sendManifest(ctx, cl, manifest, c.DryRun)

	fmt.Printf("\nSent: %d, failed: %d\n", sent, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d invitations failed", failed, len(manifest.Invitees))
	}
	return nil
}

// sendManifest sends each invitation independently so one failure does not
// stop the rest.
func sendManifest(ctx context.Context, cl *client.Client, m *Manifest, dryRun bool) (sent, failed int) {
	for _, invitee := range m.Invitees {
		userID := invitee.UserID
		if userID == uuid.Nil {
			user, err := cl.GetUserByEmail(ctx, invitee.Email)
			if err != nil {
				fmt.Printf("✗ %-40s %v\n", invitee, err)
				failed++
				continue
			}
			userID = user.ID
		}

		if dryRun {
			fmt.Printf("- %-40s would invite %s\n", invitee, userID)
			continue
		}

		inv, err := cl.SendInvitation(ctx, &membershipv1.SendInvitationRequest{
			UserID:         userID,
			OrganizationID: m.OrganizationID,
			Message:        m.message(invitee),
		})
		if err != nil {
			fmt.Printf("✗ %-40s %v\n", invitee, err)
			failed++
			continue
		}

		fmt.Printf("✓ %-40s invitation %s\n", invitee, inv.ID)
		sent++
	}
	return sent, failed
}
