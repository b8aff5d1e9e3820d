package report

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject run reports are published to.
const DefaultSubject = "eoscsync.reports"

// NATSPublisher publishes run reports as JSON messages on a NATS subject,
// one message per run.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// NATSOption configures a NATSPublisher.
type NATSOption func(*NATSPublisher)

// WithSubject overrides the publish subject.
func WithSubject(subject string) NATSOption {
	return func(p *NATSPublisher) {
		p.subject = subject
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) NATSOption {
	return func(p *NATSPublisher) {
		p.logger = logger
	}
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string, opts ...NATSOption) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("eoscsync"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %q: %w", url, err)
	}

	p := &NATSPublisher{
		conn:    conn,
		subject: DefaultSubject,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Publish sends one report and flushes the connection so a run that exits
// right after publishing does not lose its report.
func (p *NATSPublisher) Publish(r *Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding run report %q: %w", r.RunID, err)
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("publishing run report %q: %w", r.RunID, err)
	}
	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("flushing run report %q: %w", r.RunID, err)
	}

	p.logger.Debug("run report published", "run_id", r.RunID, "subject", p.subject)
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	p.conn.Close()
}
