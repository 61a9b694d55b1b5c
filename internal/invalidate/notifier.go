package invalidate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/conneroisu/linkpage/internal/errors"
	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/validation"
)

// Notifier modes.
const (
	ModeLocal = "local"
	ModeHTTP  = "http"
)

// LocalNotifier invalidates an in-process cache from a background goroutine.
// Notifications that arrive while one is pending coalesce into it.
type LocalNotifier struct {
	target  Invalidator
	logger  logging.Logger
	pending chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc

	mutex    sync.Mutex
	started  bool
	stopOnce sync.Once

	// invalidated observes each completed invalidation.
	invalidated func(removed int)
}

// NewLocalNotifier creates a notifier for target.
func NewLocalNotifier(target Invalidator, logger logging.Logger) *LocalNotifier {
	return &LocalNotifier{
		target:  target,
		logger:  logger.WithComponent("notifier"),
		pending: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start runs the invalidation loop until ctx is done or Stop is called.
func (n *LocalNotifier) Start(ctx context.Context) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.started {
		return
	}
	n.started = true

	ctx, n.cancel = context.WithCancel(ctx)
	go n.loop(ctx)
}

// Notify queues an invalidation without blocking.
func (n *LocalNotifier) Notify(_ context.Context) {
	select {
	case n.pending <- struct{}{}:
	default:
	}
}

// Stop ends the loop and waits for it to exit.
func (n *LocalNotifier) Stop() {
	n.stopOnce.Do(func() {
		n.mutex.Lock()
		started := n.started
		cancel := n.cancel
		n.mutex.Unlock()

		if !started {
			return
		}
		cancel()
		<-n.done
	})
}

func (n *LocalNotifier) loop(ctx context.Context) {
	defer close(n.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-n.pending:
			removed := Invalidate(n.target)
			n.logger.Debug(ctx, "Render cache invalidated after reload", "removed", removed)
			if n.invalidated != nil {
				n.invalidated(removed)
			}
		}
	}
}

// LoopbackURL returns the trigger URL on the local server.
func LoopbackURL(port int) string {
	return fmt.Sprintf("http://localhost:%d%s", port, Route)
}

// HTTPNotifier calls the trigger endpoint over HTTP with the bearer token.
type HTTPNotifier struct {
	client *http.Client
	url    string
	token  string
	logger logging.Logger
	errors *errors.ErrorHandler
	wg     sync.WaitGroup
}

// NewHTTPNotifier creates a notifier posting to url. A zero timeout leaves
// requests unbounded.
func NewHTTPNotifier(url, token string, timeout time.Duration, logger logging.Logger) (*HTTPNotifier, error) {
	if err := validation.ValidateLoopbackURL(url); err != nil {
		return nil, fmt.Errorf("invalid invalidation URL: %w", err)
	}

	logger = logger.WithComponent("notifier")

	return &HTTPNotifier{
		client: &http.Client{Timeout: timeout},
		url:    url,
		token:  token,
		logger: logger,
		errors: errors.NewErrorHandler(logger),
	}, nil
}

// Notify sends the trigger in the background. Failures are logged.
func (n *HTTPNotifier) Notify(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.Send(ctx); err != nil {
			n.errors.Handle(ctx, err)
		}
	}()
}

// Send calls the trigger and waits for the response.
func (n *HTTPNotifier) Send(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url, nil)
	if err != nil {
		return errors.NewInvalidationTransportError(n.url, err)
	}
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.NewInvalidationTransportError(n.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.NewInvalidationTransportError(n.url,
			fmt.Errorf("unexpected status %d", resp.StatusCode)).
			WithContext("status", resp.StatusCode)
	}

	n.logger.Debug(ctx, "Invalidation trigger sent", "url", n.url)

	return nil
}

// Wait blocks until background sends have finished.
func (n *HTTPNotifier) Wait() {
	n.wg.Wait()
}
