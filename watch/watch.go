// Package watch keeps every subscribed observer's copy of a protocol
// consistent with the authoritative store. Each confirmed write is delivered
// as a complete snapshot, never a diff: observers replace their state
// wholesale and converge on the store's write order.
package watch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/angelop-1602/rec-review-api/schema"
)

const watchLogPrefix = "watch"

// Notification carries one confirmed protocol state. NotFound marks an
// absent or deleted protocol; it is a recoverable condition distinct from a
// transport error, and the subscription stays open.
type Notification struct {
	Protocol *schema.Protocol
	NotFound bool
}

type ChangeFunc func(Notification)
type ErrorFunc func(error)

// Stream is one upstream change feed for a single protocol.
type Stream interface {
	// Next blocks until the store confirms another write or the feed breaks.
	Next(ctx context.Context) error
	Close(ctx context.Context) error
}

// SnapshotSource is the storage-side contract the hub runs on. Snapshot must
// return store.ErrProtocolNotFound semantics via IsNotFound.
type SnapshotSource interface {
	Snapshot(ctx context.Context, protocolID primitive.ObjectID) (*schema.Protocol, error)
	Watch(ctx context.Context, protocolID primitive.ObjectID) (Stream, error)
	IsNotFound(err error) bool
}

// Hub multiplexes any number of local observers over at most one upstream
// subscription per protocol.
type Hub struct {
	source SnapshotSource

	fetchTimeout time.Duration
	retryDelay   time.Duration

	mu    sync.Mutex
	feeds map[primitive.ObjectID]*feed
}

type subscriber struct {
	// done is flipped without taking mu, so an observer may call its
	// unsubscribe function from inside its own callback.
	done atomic.Bool

	mu       sync.Mutex
	seen     uint64
	onChange ChangeFunc
	onError  ErrorFunc
}

// notify delivers one snapshot. Deliveries are serialized per subscriber and
// stamped with the feed's sequence: a cached replay that loses the race
// against a fresh delivery is dropped rather than regressing the observer to
// an older state.
func (s *subscriber) notify(n Notification, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done.Load() || seq <= s.seen {
		return
	}
	s.seen = seq
	s.onChange(n)
}

func (s *subscriber) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done.Load() {
		return
	}
	s.onError(err)
}

// close guarantees no further callbacks start after unsubscribe.
func (s *subscriber) close() {
	s.done.Store(true)
}

type feed struct {
	protocolID primitive.ObjectID
	cancel     context.CancelFunc

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	seq    uint64
	last   *Notification
}

func NewHub(source SnapshotSource) *Hub {
	return &Hub{
		source:       source,
		fetchTimeout: 5 * time.Second,
		retryDelay:   time.Second,
		feeds:        make(map[primitive.ObjectID]*feed),
	}
}

// Subscribe registers an observer for a protocol and returns its unsubscribe
// function. Unsubscribing is idempotent; calling it twice, or after an error
// notification, is a no-op. The upstream feed is shared: the first observer
// opens it and the last one tears it down.
func (h *Hub) Subscribe(protocolID primitive.ObjectID, onChange ChangeFunc, onError ErrorFunc) func() {
	sub := &subscriber{onChange: onChange, onError: onError}

	h.mu.Lock()
	f, ok := h.feeds[protocolID]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		f = &feed{
			protocolID: protocolID,
			cancel:     cancel,
			subs:       make(map[int]*subscriber),
		}
		h.feeds[protocolID] = f
		go h.run(ctx, f)
	}

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = sub
	last, lastSeq := f.last, f.seq
	f.mu.Unlock()
	h.mu.Unlock()

	// a late joiner immediately sees the last confirmed snapshot; its
	// sequence stamp lets the subscriber drop the replay if a newer delivery
	// got there first
	if last != nil {
		sub.notify(*last, lastSeq)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.close()
			h.drop(f, id)
		})
	}
}

func (h *Hub) drop(f *feed, id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	f.mu.Lock()
	delete(f.subs, id)
	empty := len(f.subs) == 0
	f.mu.Unlock()

	if empty {
		f.cancel()
		delete(h.feeds, f.protocolID)
	}
}

// run owns the upstream feed for one protocol: it delivers one snapshot per
// confirmed write, reopening the stream with a delay after transport
// failures. A snapshot is delivered right after every (re)open so observers
// see the current state without waiting for the next write, and writes that
// landed during an outage are not lost.
func (h *Hub) run(ctx context.Context, f *feed) {
	for ctx.Err() == nil {
		stream, err := h.source.Watch(ctx, f.protocolID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.WithFields(log.Fields{
				"prefix":      watchLogPrefix,
				"protocol ID": f.protocolID.Hex(),
				"error":       err,
			}).Warn("open change stream")
			f.fanError(err)
			h.sleep(ctx)
			continue
		}

		h.deliver(ctx, f)

		for {
			if err := stream.Next(ctx); err != nil {
				stream.Close(context.Background())
				if ctx.Err() != nil {
					return
				}
				f.fanError(err)
				h.sleep(ctx)
				break
			}
			h.deliver(ctx, f)
		}
	}
}

// deliver fetches the full current entity and fans it out. The fetch is
// bounded: a store that stops confirming surfaces a transport error instead
// of hanging the loading state.
func (h *Hub) deliver(ctx context.Context, f *feed) {
	fetchCtx, cancel := context.WithTimeout(ctx, h.fetchTimeout)
	defer cancel()

	protocol, err := h.source.Snapshot(fetchCtx, f.protocolID)
	if err != nil {
		if h.source.IsNotFound(err) {
			f.fanChange(Notification{NotFound: true})
			return
		}
		if ctx.Err() != nil {
			return
		}
		f.fanError(err)
		return
	}

	f.fanChange(Notification{Protocol: protocol})
}

func (h *Hub) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(h.retryDelay):
	}
}

func (f *feed) fanChange(n Notification) {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.last = &n
	subs := snapshotSubs(f.subs)
	f.mu.Unlock()

	for _, s := range subs {
		s.notify(n, seq)
	}
}

func (f *feed) fanError(err error) {
	f.mu.Lock()
	subs := snapshotSubs(f.subs)
	f.mu.Unlock()

	for _, s := range subs {
		s.fail(err)
	}
}

func snapshotSubs(m map[int]*subscriber) []*subscriber {
	subs := make([]*subscriber, 0, len(m))
	for _, s := range m {
		subs = append(subs, s)
	}
	return subs
}
