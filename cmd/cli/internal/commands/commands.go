package commands

import (
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"connectrpc.com/otelconnect"
	"github.com/google/uuid"
	"github.com/wolfeidau/membership/internal/client"
	"github.com/wolfeidau/membership/internal/logger"
	"github.com/wolfeidau/membership/internal/models"
	"github.com/wolfeidau/membership/internal/store"
)

type Globals struct {
	Debug   bool
	Version string

	Server  string
	Token   string
	ActorID uuid.UUID
	Timeout time.Duration
}

// PageFlags selects a page of a listing.
type PageFlags struct {
	Offset int `help:"Number of results to skip" default:"0"`
	Limit  int `help:"Number of results per page" default:"20"`
}

func (p PageFlags) page() store.Page {
	return store.Page{Offset: p.Offset, Limit: p.Limit}
}

func (g *Globals) client() (*client.Client, error) {
	otelInterceptor, err := otelconnect.NewInterceptor()
	if err != nil {
		return nil, fmt.Errorf("failed to create interceptor: %w", err)
	}

	interceptors := []connect.Interceptor{otelInterceptor}
	if g.Debug {
		interceptors = append(interceptors, logger.NewConnectRequests(logger.Setup(true)))
	}

	config := client.DefaultConfig()
	if g.Server != "" {
		config.ServerURL = g.Server
	}
	if g.Timeout > 0 {
		config.Timeout = g.Timeout
	}
	config.Debug = g.Debug
	config.Token = g.Token
	config.ActorID = g.ActorID

	return client.New(config, interceptors...), nil
}

func printUsers(users []*models.User) {
	if len(users) == 0 {
		fmt.Println("No users found.")
		return
	}

	fmt.Printf("%-36s %-30s %-25s %-8s %-11s %-20s\n",
		"User ID", "Email", "Full Name", "Role", "Status", "Created At")
	fmt.Println(strings.Repeat("─", 135))

	for _, u := range users {
		fmt.Printf("%-36s %-30s %-25s %-8s %-11s %-20s\n",
			u.ID, truncate(u.Email, 30), truncate(u.FullName, 25), u.Role, u.Status,
			u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printOrganizations(orgs []*models.Organization) {
	if len(orgs) == 0 {
		fmt.Println("No organizations found.")
		return
	}

	fmt.Printf("%-36s %-30s %-15s %-6s %-7s %-20s\n",
		"Organization ID", "Name", "Registry", "Size", "Founded", "Created At")
	fmt.Println(strings.Repeat("─", 120))

	for _, o := range orgs {
		fmt.Printf("%-36s %-30s %-15s %-6d %-7d %-20s\n",
			o.ID, truncate(o.Name, 30), truncate(o.RegistryNumber, 15), o.CompanySize, o.YearFounded,
			o.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printInvitations(invitations []*models.Invitation) {
	if len(invitations) == 0 {
		fmt.Println("No invitations found.")
		return
	}

	fmt.Printf("%-36s %-36s %-36s %-9s %-20s\n",
		"Invitation ID", "User ID", "Organization ID", "Status", "Created At")
	fmt.Println(strings.Repeat("─", 140))

	for _, inv := range invitations {
		fmt.Printf("%-36s %-36s %-36s %-9s %-20s\n",
			inv.ID, inv.UserID, inv.OrganizationID, inv.Status,
			inv.CreatedAt.Format("2006-01-02 15:04:05"))
	}
}

func printAuditLogs(entries []*models.AuditLog) {
	if len(entries) == 0 {
		fmt.Println("No audit records found.")
		return
	}

	for _, e := range entries {
		fmt.Printf("%s %-6s by %s\n", e.Timestamp.Format(time.RFC3339), e.Action, e.ActorID)
		for _, line := range strings.Split(e.Description, "\n") {
			fmt.Printf("    %s\n", line)
		}
	}
}

func printPageSummary(shown, offset, total int) {
	fmt.Printf("\nShowing %d of %d", shown, total)
	if next := offset + shown; next < total {
		fmt.Printf(" (use --offset=%d to see the next page)", next)
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
