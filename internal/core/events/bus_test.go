package events_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dmitrivolkov/safety-management/internal/core/events"
)

func TestEvents(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Events Suite")
}

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
	})

	It("should deliver published events to every subscriber", func() {
		var delivered int32
		for i := 0; i < 3; i++ {
			bus.Subscribe(events.EventTypeMaintenanceDue, func(context.Context, events.Event) error {
				atomic.AddInt32(&delivered, 1)
				return nil
			})
		}

		event := events.NewMaintenanceDueEvent(1, 1, time.Now())
		Expect(bus.Publish(context.Background(), event)).To(Succeed())

		Eventually(func() int32 {
			return atomic.LoadInt32(&delivered)
		}).Should(Equal(int32(3)))
	})

	It("should ignore events without subscribers", func() {
		event := events.NewEmployeeHiredEvent(1, 1, 1)
		Expect(bus.Publish(context.Background(), event)).To(Succeed())
	})

	Describe("PublishSync", func() {
		It("should stop on the first handler failure", func() {
			var secondRan bool
			bus.Subscribe(events.EventTypeMaintenanceCompleted, func(context.Context, events.Event) error {
				return errors.New("boom")
			})
			bus.Subscribe(events.EventTypeMaintenanceCompleted, func(context.Context, events.Event) error {
				secondRan = true
				return nil
			})

			event := events.NewMaintenanceCompletedEvent(1, 1, time.Now())
			err := bus.PublishSync(context.Background(), event)
			Expect(err).To(HaveOccurred())
			Expect(secondRan).To(BeFalse())
		})
	})

	It("should stamp identity on domain events", func() {
		event := events.NewMaintenanceCompletedEvent(7, 3, time.Now())
		Expect(event.EventID()).ToNot(BeEmpty())
		Expect(event.EventType()).To(Equal(events.EventTypeMaintenanceCompleted))
		Expect(event.OccurredAt()).To(BeTemporally("~", time.Now(), time.Second))
	})
})
