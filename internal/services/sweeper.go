package services

import (
	"context"
	"errors"
	"log"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

const sweepBatchSize = 100

// Sweeper is the background process that expires stale AWAITING_PAYMENT
// orders and releases their reservations. Multiple instances may run
// concurrently: the expiry transition is a compare-and-set, so a race over
// the same order has exactly one winner and stock is released exactly once.
type Sweeper struct {
	orderRepo    repositories.OrderRepository
	orderService *OrderService
	interval     time.Duration
}

// NewSweeper creates a new Sweeper scanning at the given interval.
func NewSweeper(orderRepo repositories.OrderRepository, orderService *OrderService, interval time.Duration) *Sweeper {
	return &Sweeper{
		orderRepo:    orderRepo,
		orderService: orderService,
		interval:     interval,
	}
}

// Run sweeps until the context is cancelled. Intended to be started as a
// goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	log.Printf("Starting order sweeper (interval %v)", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Order sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				log.Printf("Sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("Expired %d stale orders", n)
			}
		}
	}
}

// Sweep runs one scan-and-expire cycle and returns how many orders this
// instance actually expired. Orders snatched by a concurrent sweeper are
// skipped, not errors.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	stale, err := s.orderRepo.FindExpired(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range stale {
		err := s.orderService.Expire(ctx, order.ID)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, models.ErrInvalidTransition):
			// Lost the race to another sweeper instance or to a payment.
		default:
			log.Printf("Failed to expire order %s: %v", order.ID, err)
		}
	}
	return expired, nil
}
