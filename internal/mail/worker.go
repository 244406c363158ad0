package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Worker delivers queued mail in the background so requests never wait on SMTP.
// Delivery failures are logged and counted, never returned to the caller.
type Worker struct {
	queue    chan Message
	sender   Sender
	failures prometheus.Counter
	sent     prometheus.Counter
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWorker creates a worker with a queue of bufferSize messages and registers
// its counters with reg
func NewWorker(sender Sender, bufferSize int, reg prometheus.Registerer) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		queue:  make(chan Message, bufferSize),
		sender: sender,
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsplit_mail_failures_total",
			Help: "Emails that could not be delivered.",
		}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tripsplit_mail_sent_total",
			Help: "Emails handed to the mail relay.",
		}),
		ctx:    ctx,
		cancel: cancel,
	}
	reg.MustRegister(w.failures, w.sent)
	return w
}

// Start launches the delivery loop
func (w *Worker) Start() {
	w.wg.Go(func() {
		for {
			select {
			case <-w.ctx.Done():
				slog.Info("Draining mail queue before shutdown", "remaining", len(w.queue))
				for len(w.queue) > 0 {
					w.deliver(context.Background(), <-w.queue)
				}
				return
			case msg := <-w.queue:
				// Shutdown must not abort a send already in flight
				w.deliver(context.Background(), msg)
			}
		}
	})
}

// Enqueue queues msg for delivery. A full queue drops the message with a warning.
func (w *Worker) Enqueue(msg Message) {
	select {
	case w.queue <- msg:
	default:
		w.failures.Inc()
		slog.Warn("Mail queue full, dropping email", "to", msg.To, "subject", msg.Subject)
	}
}

// Shutdown stops the worker after delivering what is already queued
func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

func (w *Worker) deliver(ctx context.Context, msg Message) {
	if err := w.sender.Send(ctx, msg); err != nil {
		w.failures.Inc()
		slog.Error("Failed to send email", "to", msg.To, "subject", msg.Subject, "error", err)
		return
	}
	w.sent.Inc()
	slog.Info("Email sent", "to", msg.To, "subject", msg.Subject)
}
