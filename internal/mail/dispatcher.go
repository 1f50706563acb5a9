package mail

import (
	"context"
	"log"
	"sync"
	"time"
)

// job is one queued recovery email.
type job struct {
	to   string
	code string
}

// Dispatcher delivers recovery emails off the request path. Enqueue never
// blocks: when the queue is full the email is dropped and the caller is told,
// so the HTTP response can report emailQueued=false instead of hanging.
type Dispatcher struct {
	mailer     Mailer
	codeTTL    time.Duration
	queue      chan job
	maxRetries int
	backoff    time.Duration

	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDispatcher(mailer Mailer, codeTTL time.Duration, queueSize, maxRetries int, backoff time.Duration) *Dispatcher {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if queueSize < 1 {
		queueSize = 64
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Dispatcher{
		mailer:     mailer,
		codeTTL:    codeTTL,
		queue:      make(chan job, queueSize),
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Enqueue queues a recovery code email. It reports false when the queue is
// full; delivery failure after that point is logged, not surfaced.
func (d *Dispatcher) Enqueue(to, code string) bool {
	select {
	case d.queue <- job{to: to, code: code}:
		return true
	default:
		log.Printf("WARN: mail queue full, dropping recovery email for %s", to)
		return false
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	subject, body := RecoveryBody(j.code, d.codeTTL)
	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := d.mailer.Send(ctx, j.to, subject, body)
		cancel()
		if err == nil {
			return
		}
		if attempt >= d.maxRetries {
			log.Printf("ERROR: giving up on recovery email for %s after %d attempts: %v", j.to, attempt+1, err)
			return
		}
		time.Sleep(d.backoff)
	}
}
