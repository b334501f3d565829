package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/membership/internal/models"
)

func testNotification(message *string) *Notification {
	invitee := &models.User{ID: uuid.Must(uuid.NewV7()), Email: "ada@example.com", FullName: "Ada Lovelace"}
	org := &models.Organization{ID: uuid.Must(uuid.NewV7()), Name: "Analytical Engines"}
	inv := &models.Invitation{
		ID:             uuid.Must(uuid.NewV7()),
		UserID:         invitee.ID,
		OrganizationID: org.ID,
		Message:        message,
		Status:         models.InvitationStatusPending,
	}
	return NewNotification(inv, invitee, org)
}

func TestNewNotification(t *testing.T) {
	t.Run("with message", func(t *testing.T) {
		msg := "Welcome aboard"
		n := testNotification(&msg)

		require.Equal(t, "You have been invited to join Analytical Engines!", n.Subject)
		require.Equal(t, "ada@example.com", n.RecipientEmail)
		require.Equal(t, "Welcome aboard", n.Message)
		require.Contains(t, n.Body, "Hello Ada Lovelace,")
		require.Contains(t, n.Body, `"Welcome aboard"`)
	})

	t.Run("without message", func(t *testing.T) {
		n := testNotification(nil)

		require.Empty(t, n.Message)
		require.Contains(t, n.Body, `"No message provided."`)
	})
}

func TestWebhookSender(t *testing.T) {
	t.Run("requires URL", func(t *testing.T) {
		_, err := NewWebhookSender(WebhookConfig{})
		require.Error(t, err)
	})

	t.Run("delivers JSON", func(t *testing.T) {
		var (
			got         Notification
			method      string
			contentType string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			contentType = r.Header.Get("Content-Type")
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		sender, err := NewWebhookSender(WebhookConfig{URL: srv.URL})
		require.NoError(t, err)

		n := testNotification(nil)
		require.NoError(t, sender.Send(context.Background(), n))
		require.Equal(t, http.MethodPost, method)
		require.Equal(t, "application/json", contentType)
		require.Equal(t, n.InvitationID, got.InvitationID)
		require.Equal(t, n.Subject, got.Subject)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		sender, err := NewWebhookSender(WebhookConfig{URL: srv.URL, MaxRetries: 3, BaseBackoff: time.Millisecond})
		require.NoError(t, err)

		require.NoError(t, sender.Send(context.Background(), testNotification(nil)))
		require.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		sender, err := NewWebhookSender(WebhookConfig{URL: srv.URL, MaxRetries: 2, BaseBackoff: time.Millisecond})
		require.NoError(t, err)

		require.Error(t, sender.Send(context.Background(), testNotification(nil)))
		require.Equal(t, int32(3), calls.Load())
	})

	t.Run("zero max retries makes a single attempt", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		sender, err := NewWebhookSender(WebhookConfig{URL: srv.URL, BaseBackoff: time.Millisecond})
		require.NoError(t, err)

		require.Error(t, sender.Send(context.Background(), testNotification(nil)))
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		sender, err := NewWebhookSender(WebhookConfig{URL: srv.URL, MaxRetries: 3, BaseBackoff: time.Millisecond})
		require.NoError(t, err)

		require.Error(t, sender.Send(context.Background(), testNotification(nil)))
		require.Equal(t, int32(1), calls.Load())
	})
}

type recordingSender struct {
	mu      sync.Mutex
	sent    []*Notification
	err     error
	release chan struct{}
}

func (r *recordingSender) Send(ctx context.Context, n *Notification) error {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestAsync(t *testing.T) {
	t.Run("close drains queue", func(t *testing.T) {
		next := &recordingSender{}
		async := NewAsync(next, AsyncConfig{QueueSize: 10, Workers: 2})

		for range 5 {
			require.NoError(t, async.Send(context.Background(), testNotification(nil)))
		}

		async.Close()
		require.Equal(t, 5, next.count())

		require.ErrorIs(t, async.Send(context.Background(), testNotification(nil)), ErrClosed)
		async.Close()
	})

	t.Run("delivery errors stay inside", func(t *testing.T) {
		next := &recordingSender{err: errors.New("smtp down")}
		async := NewAsync(next, AsyncConfig{})

		require.NoError(t, async.Send(context.Background(), testNotification(nil)))
		async.Close()
		require.Equal(t, 1, next.count())
	})

	t.Run("full queue", func(t *testing.T) {
		next := &recordingSender{release: make(chan struct{})}
		async := NewAsync(next, AsyncConfig{QueueSize: 1, Workers: 1})

		// The first is picked up by the worker and blocks, the second fills the queue.
		require.NoError(t, async.Send(context.Background(), testNotification(nil)))
		require.Eventually(t, func() bool {
			return len(async.queue) == 0
		}, time.Second, time.Millisecond)
		require.NoError(t, async.Send(context.Background(), testNotification(nil)))

		require.ErrorIs(t, async.Send(context.Background(), testNotification(nil)), ErrQueueFull)

		close(next.release)
		async.Close()
		require.Equal(t, 2, next.count())
	})

	t.Run("log sender", func(t *testing.T) {
		require.NoError(t, LogSender{}.Send(context.Background(), testNotification(nil)))
	})
}
