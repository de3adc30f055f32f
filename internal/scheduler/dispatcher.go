package scheduler

import (
	"context"
	"sync"
	"time"

	"zeku/internal/clock"
	"zeku/internal/contracts"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/logger"
	"zeku/internal/models"
)

// Executor runs one request on the execution slot.
type Executor interface {
	Run(ctx context.Context, req Request) error
}

// Options configure a Dispatcher.
type Options struct {
	Clock           clock.Clock
	IDs             clock.IDGenerator
	Network         NetworkMonitor
	AllowMetered    bool
	RecheckInterval time.Duration
}

// Dispatcher keeps at most one pending request. Submitting replaces any
// request that has not started, and started requests run one at a time.
type Dispatcher struct {
	exec         Executor
	downloads    contracts.DownloadStore
	clock        clock.Clock
	ids          clock.IDGenerator
	network      NetworkMonitor
	allowMetered bool
	recheck      time.Duration

	slot chan struct{}
	wg   sync.WaitGroup

	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	pending    *pending
	superseded int
	running    *Request
}

type pending struct {
	req  Request
	stop chan struct{}
}

// New returns a Dispatcher feeding exec. Call Start before submitting.
func New(exec Executor, downloads contracts.DownloadStore, opts Options) *Dispatcher {
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.IDs == nil {
		opts.IDs = clock.UUIDGenerator{}
	}
	if opts.Network == nil {
		opts.Network = NewStaticNetwork(false)
	}
	if opts.RecheckInterval <= 0 {
		opts.RecheckInterval = consts.NetworkRecheckInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		exec:         exec,
		downloads:    downloads,
		clock:        opts.Clock,
		ids:          opts.IDs,
		network:      opts.Network,
		allowMetered: opts.AllowMetered,
		recheck:      opts.RecheckInterval,
		slot:         make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start binds dispatched runs to ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.cancel()
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.mu.Unlock()
}

// Stop drops the pending request, cancels running ones and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	d.cancel()
	if d.pending != nil {
		close(d.pending.stop)
		d.pending = nil
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Submit plans items and makes the plan the pending request.
func (d *Dispatcher) Submit(ctx context.Context, items []*models.DownloadItem, continueAfterPriority bool) (Advisory, error) {
	if err := ctx.Err(); err != nil {
		return Advisory{}, err
	}
	now := d.clock.Now()
	req := Plan(items, now, PlanOptions{
		ContinueAfterPriority: continueAfterPriority,
		AllowMetered:          d.allowMetered,
	})
	req.ID = d.ids.New()

	p := &pending{req: req, stop: make(chan struct{})}

	d.mu.Lock()
	if d.pending != nil {
		close(d.pending.stop)
		d.superseded++
		logger.Pl.D(2, "Request %s superseded by %s", d.pending.req.ID, req.ID)
	}
	d.pending = p
	base := d.ctx
	d.wg.Add(1)
	d.mu.Unlock()

	go d.await(base, p)

	logger.Pl.D(1, "Submitted request %s with %d priority item(s), delay %v", req.ID, len(req.PriorityIDs), req.Delay)
	return advise(req, d.network.Metered(ctx), now), nil
}

// Kick submits every Queued and Scheduled row and returns the advisory of
// the new request.
func (d *Dispatcher) Kick(ctx context.Context) Advisory {
	items, ok := d.runnable(ctx)
	if !ok {
		return Advisory{Messages: []string{}}
	}
	adv, err := d.Submit(ctx, items, true)
	if err != nil {
		logger.Pl.E("Could not submit downloads: %v", err)
		return Advisory{Messages: []string{}}
	}
	for _, m := range adv.Messages {
		logger.Pl.I("%s", m)
	}
	return adv
}

// Advise returns the advisory a Kick would produce now, without submitting.
func (d *Dispatcher) Advise(ctx context.Context) Advisory {
	items, ok := d.runnable(ctx)
	if !ok {
		return Advisory{Messages: []string{}}
	}
	now := d.clock.Now()
	req := Plan(items, now, PlanOptions{ContinueAfterPriority: true, AllowMetered: d.allowMetered})
	return advise(req, d.network.Metered(ctx), now)
}

func (d *Dispatcher) runnable(ctx context.Context) ([]*models.DownloadItem, bool) {
	items, err := d.downloads.ListByStatus(ctx, models.StatusQueued, models.StatusScheduled)
	if err != nil {
		logger.Pl.E("Could not load runnable downloads: %v", err)
		return nil, false
	}
	return items, len(items) > 0
}

// Pending returns the request waiting to start, if any.
func (d *Dispatcher) Pending() (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Request{}, false
	}
	return d.pending.req, true
}

// Running returns the request on the execution slot, if any.
func (d *Dispatcher) Running() (Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running == nil {
		return Request{}, false
	}
	return *d.running, true
}

// Superseded returns how many pending requests were replaced.
func (d *Dispatcher) Superseded() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.superseded
}

// await waits out the delay and the network constraint, then runs p on the
// slot unless it is superseded first.
func (d *Dispatcher) await(ctx context.Context, p *pending) {
	defer d.wg.Done()

	if p.req.Delay > 0 {
		timer := time.NewTimer(p.req.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}

	for p.req.Network == NetworkUnmetered && d.network.Metered(ctx) {
		logger.Pl.D(2, "Request %s waiting for an unmetered network", p.req.ID)
		select {
		case <-time.After(d.recheck):
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}

	select {
	case d.slot <- struct{}{}:
	case <-p.stop:
		return
	case <-ctx.Done():
		return
	}
	defer func() { <-d.slot }()

	d.mu.Lock()
	select {
	case <-p.stop:
		d.mu.Unlock()
		return
	default:
	}
	if d.pending == p {
		d.pending = nil
	}
	req := p.req
	d.running = &req
	d.mu.Unlock()

	if err := d.exec.Run(ctx, req); err != nil {
		logger.Pl.E("Request %s failed: %v", req.ID, err)
	}

	d.mu.Lock()
	d.running = nil
	idle := d.pending == nil
	d.mu.Unlock()

	if idle && ctx.Err() == nil {
		d.resubmitScheduled(ctx)
	}
}

// resubmitScheduled plans a new request for rows still waiting on their start time.
func (d *Dispatcher) resubmitScheduled(ctx context.Context) {
	items, err := d.downloads.ListByStatus(ctx, models.StatusScheduled)
	if err != nil {
		logger.Pl.E("Could not load scheduled downloads: %v", err)
		return
	}
	if len(items) == 0 {
		return
	}
	if _, err := d.Submit(ctx, items, true); err != nil {
		logger.Pl.E("Could not resubmit scheduled downloads: %v", err)
	}
}
