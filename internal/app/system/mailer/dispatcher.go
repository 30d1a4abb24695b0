package mailer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultQueueSize = 64
	sendTimeout      = 30 * time.Second
)

// Dispatcher delivers emails on a background goroutine so that the primary
// mutation (registration, verification, reset) never waits on, or rolls
// back for, the email provider. Failures are logged and dropped.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
	queue  chan Email
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the given sender. queueSize <= 0
// uses a default.
func NewDispatcher(sender Sender, logger *zap.Logger, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Dispatcher{
		sender: sender,
		log:    logger,
		queue:  make(chan Email, queueSize),
		stopCh: make(chan struct{}),
	}
}

// Start begins the delivery loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	d.log.Info("mail dispatcher started", zap.Int("queue_size", cap(d.queue)))
}

// Stop drains queued emails and waits for the loop to finish.
func (d *Dispatcher) Stop() {
	close(d.stopCh)
	d.wg.Wait()
	d.log.Info("mail dispatcher stopped")
}

// Enqueue hands an email to the background loop. If the queue is full the
// email is dropped with a log entry; mail is best-effort by contract.
func (d *Dispatcher) Enqueue(e Email) {
	select {
	case d.queue <- e:
	default:
		d.log.Warn("mail queue full, dropping email",
			zap.String("to", e.To),
			zap.String("subject", e.Subject))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		case <-d.stopCh:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case e := <-d.queue:
					d.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(e Email) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, e); err != nil {
		d.log.Error("failed to send mail",
			zap.String("to", e.To),
			zap.String("subject", e.Subject),
			zap.Error(err))
		return
	}
	d.log.Debug("email sent",
		zap.String("to", e.To),
		zap.String("subject", e.Subject))
}
