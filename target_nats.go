package clusterview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher is the part of *nats.Conn the NATS target needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// SelectionEvent is published whenever the selection changes.
type SelectionEvent struct {
	Selection SelectionJSON `json:"selection"`
	Summary   SummaryJSON   `json:"summary"`
	At        time.Time     `json:"at"`
}

// NATSTarget publishes selection changes to a NATS subject.
type NATSTarget struct {
	pub     Publisher
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
	now     func() time.Time

	mu   sync.Mutex
	last *SelectionView
}

// NATSOption configures a NATSTarget.
type NATSOption func(*NATSTarget)

// WithNATSLogger sets the logger.
func WithNATSLogger(l *zap.Logger) NATSOption {
	return func(t *NATSTarget) {
		t.logger = l
	}
}

// DialNATS connects to url and returns a target publishing on subject.
func DialNATS(url, subject string, opts ...NATSOption) (*NATSTarget, error) {
	t := newNATSTarget(nil, subject, opts...)
	logger := t.logger
	nc, err := nats.Connect(url,
		nats.Name("clusterview"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	t.pub = nc
	t.conn = nc
	return t, nil
}

// NewNATSTarget creates a target publishing through pub.
func NewNATSTarget(pub Publisher, subject string, opts ...NATSOption) (*NATSTarget, error) {
	if pub == nil {
		return nil, errors.New("nats target: nil publisher")
	}
	if subject == "" {
		return nil, errors.New("nats target: empty subject")
	}
	return newNATSTarget(pub, subject, opts...), nil
}

func newNATSTarget(pub Publisher, subject string, opts ...NATSOption) *NATSTarget {
	t := &NATSTarget{
		pub:     pub,
		subject: subject,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name implements Target.
func (t *NATSTarget) Name() string {
	return fmt.Sprintf("NATS(%s)", t.subject)
}

// Update implements Target. Nothing is sent while the selection is
// unchanged since the last successful publish.
func (t *NATSTarget) Update(ctx context.Context, state *ViewState) error {
	if state == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.last != nil && *t.last == state.Selection {
		return nil
	}
	data, err := json.Marshal(SelectionEvent{
		Selection: SelectionJSON(state.Selection),
		Summary:   SummaryJSON(state.Summary),
		At:        t.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if t.conn != nil && t.conn.IsClosed() {
		return errors.New("nats not connected")
	}
	if err := t.pub.Publish(t.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", t.subject, err)
	}
	sel := state.Selection
	t.last = &sel
	t.logger.Debug("selection published",
		zap.String("machine", sel.Machine),
		zap.String("workload", sel.Workload))
	return nil
}

// Close implements Target. Pending messages are flushed first.
func (t *NATSTarget) Close() error {
	if t.conn == nil {
		return nil
	}
	if err := t.conn.Drain(); err != nil {
		t.conn.Close()
		return err
	}
	return nil
}
