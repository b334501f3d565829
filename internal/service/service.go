// Package service implements the membership workflows: users, organizations,
// invitations and the audit trail, each operation passing through the
// authorization gate before touching the stores.
package service

import (
	"time"

	"github.com/wolfeidau/membership/internal/notify"
	"github.com/wolfeidau/membership/internal/store"
)

// DefaultRetention is how long an invitation may stay PENDING before the sweep expires it.
const DefaultRetention = 7 * 24 * time.Hour

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Stores groups the persistence collaborators. Mutations made through them
// are expected to be audited, see audit.NewUserStore and friends.
type Stores struct {
	Users         store.UserStore
	Organizations store.OrganizationStore
	Invitations   store.InvitationStore
	AuditLogs     store.AuditLogStore
}

// Listing is one page of results plus the total number of matches.
type Listing[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

func newListing[T any](items []T, total int, page store.Page) *Listing[T] {
	page = page.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Listing[T]{Items: items, Total: total, Offset: page.Offset, Limit: page.Limit}
}

type options struct {
	clock     Clock
	sender    notify.Sender
	retention time.Duration
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithSender sets the invitation notification sender.
func WithSender(sender notify.Sender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

// WithRetention sets how long invitations stay PENDING before expiry.
func WithRetention(retention time.Duration) Option {
	return func(o *options) {
		o.retention = retention
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:     SystemClock{},
		sender:    notify.LogSender{},
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
