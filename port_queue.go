package sim

// defaultQueuePortCapacity is spec.md §4.I's default bound for a
// QueuePort's backing FIFO.
const defaultQueuePortCapacity = 100

// queueRing is a fixed-capacity FIFO with the same read/write-index shape
// as teacherref/catrate/ring.go's ringBuffer[E], simplified: indices wrap
// modulo len(buf) (one spare slot beyond capacity) instead of by a
// power-of-two mask, and QueuePort only ever needs
// push-at-back/pop-at-front, never catrate's sorted Insert.
type queueRing[T any] struct {
	buf        []T
	r, w       int
	cap        int
}

func newQueueRing[T any](capacity int) *queueRing[T] {
	return &queueRing[T]{buf: make([]T, capacity+1), cap: capacity}
}

func (q *queueRing[T]) len() int {
	n := q.w - q.r
	if n < 0 {
		n += len(q.buf)
	}
	return n
}

func (q *queueRing[T]) full() bool { return q.len() == q.cap }

func (q *queueRing[T]) pushBack(v T) {
	q.buf[q.w] = v
	q.w = (q.w + 1) % len(q.buf)
}

func (q *queueRing[T]) popFront() (v T, ok bool) {
	if q.len() == 0 {
		return v, false
	}
	v = q.buf[q.r]
	var zero T
	q.buf[q.r] = zero
	q.r = (q.r + 1) % len(q.buf)
	return v, true
}

// dropFront discards the oldest element to make room, used when the
// queue is full and a new push must evict (spec.md §9(ii)).
func (q *queueRing[T]) dropFront() {
	var zero T
	q.buf[q.r] = zero
	q.r = (q.r + 1) % len(q.buf)
}

// QueuePort is a bounded FIFO signal sink (spec.md §4.I: "queue = bounded
// FIFO"). When full, a push evicts the oldest queued element rather than
// blocking or erroring, and increments lostCount — surfaced via
// LostCount() and a WARN log line, resolving spec.md §9(ii)'s open
// question on how overflow should be observable.
type QueuePort[T any] struct {
	owner *Runner
	name  string

	ring      *queueRing[T]
	lostCount int

	subs leafRegistry
}

// NewQueuePort constructs an empty QueuePort with the default capacity
// (100). Use NewQueuePortCapacity for a different bound.
func NewQueuePort[T any](owner *Runner, name string) *QueuePort[T] {
	return NewQueuePortCapacity[T](owner, name, defaultQueuePortCapacity)
}

// NewQueuePortCapacity constructs an empty QueuePort with the given
// capacity.
func NewQueuePortCapacity[T any](owner *Runner, name string, capacity int) *QueuePort[T] {
	return &QueuePort[T]{owner: owner, name: name, ring: newQueueRing[T](capacity)}
}

func (p *QueuePort[T]) deliver(v T) {
	if p.ring.full() {
		p.ring.dropFront()
		p.lostCount++
		if p.owner != nil && p.owner.unit != nil {
			p.owner.unit.logEvent(levelWarn, p.owner, "QUEUE_OVERFLOW", "port", p.name, "lost", p.lostCount)
		}
	}
	p.ring.pushBack(v)
	if p.owner != nil && p.owner.unit != nil {
		p.owner.unit.logEvent(levelInfo, p.owner, "PUSH", "port", p.name, "value", v)
	}
	p.subs.notify()
}

// Pop removes and returns the oldest queued value, if any.
func (p *QueuePort[T]) Pop() (T, bool) {
	v, ok := p.ring.popFront()
	if ok {
		if p.owner != nil && p.owner.unit != nil {
			p.owner.unit.logEvent(levelInfo, p.owner, "POP", "port", p.name, "value", v)
		}
		p.subs.notify()
	}
	return v, ok
}

// Size returns the number of values currently queued.
func (p *QueuePort[T]) Size() int { return p.ring.len() }

// IsAvailable reports whether Pop would currently succeed.
func (p *QueuePort[T]) IsAvailable() bool { return p.ring.len() > 0 }

// LostCount returns the number of values evicted due to overflow over the
// port's lifetime (spec.md §9(ii)).
func (p *QueuePort[T]) LostCount() int { return p.lostCount }

// SizeExpr exposes queue depth as a reactive Expr leaf.
func (p *QueuePort[T]) SizeExpr() Expr[int] {
	return &queuePortIntExpr[T]{p: p, get: func(q *QueuePort[T]) int { return q.Size() }}
}

// IsAvailableExpr exposes queue non-emptiness as a reactive Expr leaf.
func (p *QueuePort[T]) IsAvailableExpr() Expr[bool] {
	return &queuePortBoolExpr[T]{p: p, get: func(q *QueuePort[T]) bool { return q.IsAvailable() }}
}

type queuePortIntExpr[T any] struct {
	p   *QueuePort[T]
	get func(*QueuePort[T]) int
}

func (e *queuePortIntExpr[T]) Value() int                 { return e.get(e.p) }
func (e *queuePortIntExpr[T]) enable(_ *Runner, c *Condition) { e.p.subs.subscribe(c) }
func (e *queuePortIntExpr[T]) disable(c *Condition)        { e.p.subs.unsubscribe(c) }

type queuePortBoolExpr[T any] struct {
	p   *QueuePort[T]
	get func(*QueuePort[T]) bool
}

func (e *queuePortBoolExpr[T]) Value() bool                { return e.get(e.p) }
func (e *queuePortBoolExpr[T]) enable(_ *Runner, c *Condition) { e.p.subs.subscribe(c) }
func (e *queuePortBoolExpr[T]) disable(c *Condition)       { e.p.subs.unsubscribe(c) }
