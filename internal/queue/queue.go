// Package queue shows banners one at a time, in priority order.
package queue

import (
	"container/list"
	"log/slog"
	"time"

	"github.com/jmylchreest/bannerd/internal/clock"
	"github.com/jmylchreest/bannerd/internal/presenter"
)

// Prioritized is implemented by content that should jump the queue.
// Content without it has priority zero.
type Prioritized interface {
	Priority() int
}

// Options configures queueing behaviour.
type Options struct {
	// IgnoreDuplicates rejects content whose identity matches the
	// visible banner or one already queued.
	IgnoreDuplicates bool

	// PauseBetween is the gap between one banner hiding and the next
	// one showing.
	PauseBetween time.Duration

	// MaxQueued bounds the number of waiting banners. Zero means no
	// limit.
	MaxQueued int
}

// QueuedBanner is a banner waiting to be presented. No presenter exists
// for it until it reaches the front.
type QueuedBanner struct {
	ID       string
	Content  any
	Config   presenter.Config
	Priority int
	QueuedAt time.Time
}

// CloseCallback is called once for every accepted banner, when it has
// been hidden or dropped without being shown.
type CloseCallback func(content any, reason presenter.HideReason)

// EventCallback receives the lifecycle events of every banner.
type EventCallback func(content any, e presenter.Event)

// Queue presents banners one at a time. A fresh Presenter is built for
// every show. All methods must be called on the UI loop.
type Queue struct {
	env    presenter.Environment
	opts   Options
	logger *slog.Logger

	queue *list.List // of *QueuedBanner, highest priority first

	current     *presenter.Presenter
	currentItem *QueuedBanner
	pause       *clock.Timer
	pausing     bool

	onClose CloseCallback
	onEvent EventCallback
}

// New creates a queue that presents banners in env.
func New(env presenter.Environment, opts Options, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	env = env.WithDefaults()
	return &Queue{
		env:    env,
		opts:   opts,
		logger: logger,
		queue:  list.New(),
	}
}

// SetCloseCallback sets the callback for hidden or dropped banners.
func (q *Queue) SetCloseCallback(cb CloseCallback) {
	q.onClose = cb
}

// SetEventCallback sets the callback for lifecycle events.
func (q *Queue) SetEventCallback(cb EventCallback) {
	q.onEvent = cb
}

// SetOptions replaces the queue options. Already queued banners keep
// their place; MaxQueued is enforced on the next Enqueue.
func (q *Queue) SetOptions(opts Options) {
	q.opts = opts
	q.logger.Debug("queue options updated",
		"ignore_duplicates", opts.IgnoreDuplicates,
		"pause_between", opts.PauseBetween,
		"max_queued", opts.MaxQueued,
	)
}

// Enqueue adds content to the queue and shows it right away when
// nothing else is visible. It returns false when the content was
// rejected as a duplicate or immediately dropped by the queue bound.
func (q *Queue) Enqueue(content any, cfg presenter.Config) bool {
	item := &QueuedBanner{
		Content:  content,
		Config:   cfg,
		QueuedAt: q.env.Clock.Now(),
	}
	if idf, ok := content.(presenter.Identifiable); ok {
		item.ID = idf.ID()
	}
	if pr, ok := content.(Prioritized); ok {
		item.Priority = pr.Priority()
	}

	if q.opts.IgnoreDuplicates && item.ID != "" && q.isDuplicate(item.ID) {
		q.logger.Debug("ignored duplicate banner", "id", item.ID)
		return false
	}

	q.insert(item)
	if dropped := q.enforceLimit(); dropped == item {
		return false
	}

	q.logger.Debug("queued banner",
		"id", item.ID,
		"priority", item.Priority,
		"queue_size", q.queue.Len(),
	)
	q.showNext()
	return true
}

func (q *Queue) isDuplicate(id string) bool {
	if q.current != nil && q.current.ID() == id && !q.current.IsHiding() {
		return true
	}
	for e := q.queue.Front(); e != nil; e = e.Next() {
		if e.Value.(*QueuedBanner).ID == id {
			return true
		}
	}
	return false
}

// insert places item after every queued banner of equal or higher
// priority.
func (q *Queue) insert(item *QueuedBanner) {
	for e := q.queue.Front(); e != nil; e = e.Next() {
		if item.Priority > e.Value.(*QueuedBanner).Priority {
			q.queue.InsertBefore(item, e)
			return
		}
	}
	q.queue.PushBack(item)
}

// enforceLimit drops the oldest banner of the lowest priority when the
// queue is over its bound, and returns it.
func (q *Queue) enforceLimit() *QueuedBanner {
	if q.opts.MaxQueued <= 0 || q.queue.Len() <= q.opts.MaxQueued {
		return nil
	}

	lowest := q.queue.Back()
	lowestPriority := lowest.Value.(*QueuedBanner).Priority
	for e := lowest.Prev(); e != nil; e = e.Prev() {
		if e.Value.(*QueuedBanner).Priority != lowestPriority {
			break
		}
		lowest = e
	}

	dropped := q.queue.Remove(lowest).(*QueuedBanner)
	q.logger.Debug("queue full, dropped banner", "id", dropped.ID, "max_queued", q.opts.MaxQueued)
	q.notifyClosed(dropped.Content, presenter.HideExpired)
	return dropped
}

// showNext presents the front of the queue unless a banner is visible
// or the queue is pausing between banners.
func (q *Queue) showNext() {
	for q.current == nil && !q.pausing && q.queue.Len() > 0 {
		item := q.queue.Remove(q.queue.Front()).(*QueuedBanner)

		cfg := item.Config.WithListener(q.listenerFor(item))
		p := presenter.New(item.Content, cfg, q.env)
		q.current = p
		q.currentItem = item

		err := p.Show(func(completed bool) { q.showFinished(p, completed) })
		if err != nil {
			q.logger.Warn("failed to show banner", "id", item.ID, "error", err)
			q.current = nil
			q.currentItem = nil
			q.notifyClosed(item.Content, presenter.HideExpired)
			continue
		}
		q.logger.Debug("showing banner", "id", item.ID, "queued", q.queue.Len())
	}
}

func (q *Queue) listenerFor(item *QueuedBanner) presenter.Listener {
	return func(e presenter.Event, p *presenter.Presenter) {
		if q.onEvent != nil {
			q.onEvent(item.Content, e)
		}
		if e == presenter.DidHide {
			q.finished(p)
		}
	}
}

// showFinished handles banners that never became visible.
func (q *Queue) showFinished(p *presenter.Presenter, completed bool) {
	if completed {
		return
	}
	if p.State() == presenter.StateRemoved {
		q.finished(p)
		return
	}
	p.Hide(nil)
}

func (q *Queue) finished(p *presenter.Presenter) {
	if q.current != p {
		return
	}
	item := q.currentItem
	q.current = nil
	q.currentItem = nil
	q.notifyClosed(item.Content, p.HideReason())

	if q.opts.PauseBetween > 0 && q.queue.Len() > 0 {
		q.pausing = true
		q.pause = q.env.Clock.AfterFunc(q.opts.PauseBetween, func() {
			q.env.Dispatch(func() {
				q.pausing = false
				q.pause = nil
				q.showNext()
			})
		})
		return
	}
	q.showNext()
}

func (q *Queue) notifyClosed(content any, reason presenter.HideReason) {
	if q.onClose != nil {
		q.onClose(content, reason)
	}
}

// Hide hides the visible banner with the given identity or removes it
// from the queue. It reports whether a banner was found.
func (q *Queue) Hide(id string) bool {
	if q.current != nil && q.current.ID() == id {
		q.current.Hide(nil)
		return true
	}
	for e := q.queue.Front(); e != nil; e = e.Next() {
		item := e.Value.(*QueuedBanner)
		if item.ID == id {
			q.queue.Remove(e)
			q.logger.Debug("removed queued banner", "id", id)
			q.notifyClosed(item.Content, presenter.HideRequested)
			return true
		}
	}
	return false
}

// HideMatching hides or removes every banner whose content satisfies
// match, and returns how many were found.
func (q *Queue) HideMatching(match func(content any) bool) int {
	n := 0
	for e := q.queue.Front(); e != nil; {
		next := e.Next()
		item := e.Value.(*QueuedBanner)
		if match(item.Content) {
			q.queue.Remove(e)
			q.notifyClosed(item.Content, presenter.HideRequested)
			n++
		}
		e = next
	}
	if q.current != nil && match(q.current.Content()) {
		q.current.Hide(nil)
		n++
	}
	return n
}

// HideAll clears the queue and hides the visible banner.
func (q *Queue) HideAll() {
	items := make([]*QueuedBanner, 0, q.queue.Len())
	for e := q.queue.Front(); e != nil; e = e.Next() {
		items = append(items, e.Value.(*QueuedBanner))
	}
	q.queue.Init()
	for _, item := range items {
		q.notifyClosed(item.Content, presenter.HideRequested)
	}
	if q.current != nil {
		q.current.Hide(nil)
	}
}

// Stop hides everything and cancels a pending pause.
func (q *Queue) Stop() {
	q.pause.Stop()
	q.pause = nil
	q.pausing = false
	q.HideAll()
}

// Current returns the content of the visible banner.
func (q *Queue) Current() (any, bool) {
	if q.current == nil {
		return nil, false
	}
	return q.current.Content(), true
}

// CurrentPresenter returns the presenter of the visible banner, or nil.
func (q *Queue) CurrentPresenter() *presenter.Presenter {
	return q.current
}

// QueuedCount returns the number of waiting banners.
func (q *Queue) QueuedCount() int {
	return q.queue.Len()
}

// Count returns the number of visible and waiting banners.
func (q *Queue) Count() int {
	n := q.queue.Len()
	if q.current != nil {
		n++
	}
	return n
}

// Pending returns the waiting banners in presentation order.
func (q *Queue) Pending() []QueuedBanner {
	items := make([]QueuedBanner, 0, q.queue.Len())
	for e := q.queue.Front(); e != nil; e = e.Next() {
		items = append(items, *e.Value.(*QueuedBanner))
	}
	return items
}
