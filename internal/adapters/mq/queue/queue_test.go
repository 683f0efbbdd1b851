package queue_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/courtsidehq/courtside/internal/adapters/mq/queue"
	"github.com/courtsidehq/courtside/internal/domain/model"
)

func event(id string) queue.Event {
	return model.InteractionEvent{EventID: id, ItemID: "item-1", Type: model.InteractionView, At: time.Now()}
}

func TestEnqueueDequeue(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with capacity", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))

		Convey("When events are enqueued", func() {
			So(q.Enqueue(ctx, event("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, event("b")), ShouldBeTrue)

			Convey("Then they come out in order", func() {
				So(q.Len(ctx), ShouldEqual, 2)
				ch := q.Dequeue(ctx)
				So((<-ch).EventID, ShouldEqual, "a")
				So((<-ch).EventID, ShouldEqual, "b")
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestBackpressure(t *testing.T) {
	ctx := context.Background()

	Convey("Given a full queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		So(q.Enqueue(ctx, event("a")), ShouldBeTrue)
		So(q.Enqueue(ctx, event("b")), ShouldBeTrue)

		Convey("When another event arrives", func() {
			ok := q.Enqueue(ctx, event("c"))

			Convey("Then it is rejected without blocking", func() {
				So(ok, ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When a slot frees up", func() {
			<-q.Dequeue(ctx)

			Convey("Then enqueue succeeds again", func() {
				So(q.Enqueue(ctx, event("c")), ShouldBeTrue)
			})
		})
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()

	Convey("Given a queue with buffered events", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		So(q.Enqueue(ctx, event("a")), ShouldBeTrue)

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueues are rejected", func() {
				So(q.Enqueue(ctx, event("b")), ShouldBeFalse)
			})

			Convey("And buffered events drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				ev, ok := <-ch
				So(ok, ShouldBeTrue)
				So(ev.EventID, ShouldEqual, "a")

				_, ok = <-ch
				So(ok, ShouldBeFalse)
			})

			Convey("And closing again is a no-op", func() {
				So(q.Close(), ShouldBeNil)
			})
		})
	})
}
