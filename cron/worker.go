package cron

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"roamly/config"
	bookingRepo "roamly/database/repository/booking"
	bookingsvc "roamly/services/booking"
)

const TypeCompletionSweep = "booking:completion_sweep"

// InitBookingWorker runs the async worker and its scheduler in background.
// The completion sweep closes out confirmed bookings whose service end date
// has passed, which is what makes them reviewable.
func InitBookingWorker(ledger bookingsvc.Ledger, repo bookingRepo.BookingRepository, logger *zap.Logger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCompletionSweep, handleCompletionSweep(ledger, repo, logger))

	go func() {
		log.Println("[BookingWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[BookingWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[BookingWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register("@every 1h", asynq.NewTask(TypeCompletionSweep, nil)); err != nil {
		log.Printf("[BookingWorker] failed to register completion sweep: %v", err)
		return
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[BookingWorker] scheduler stopped: %v", err)
		}
	}()
}

func handleCompletionSweep(ledger bookingsvc.Ledger, repo bookingRepo.BookingRepository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		ended, err := repo.ListConfirmedEndedBefore(ctx, time.Now())
		if err != nil {
			logger.Error("completion sweep query failed", zap.Error(err))
			return err
		}

		for _, b := range ended {
			if _, err := ledger.Complete(ctx, b.ID); err != nil {
				// A booking cancelled between query and completion is not a
				// sweep failure; anything else is worth a look.
				var tErr *bookingsvc.InvalidTransitionError
				if errors.As(err, &tErr) || errors.Is(err, bookingsvc.ErrServiceNotEnded) {
					continue
				}
				logger.Warn("completion sweep could not complete booking",
					zap.String("bookingId", b.ID), zap.Error(err))
			}
		}
		logger.Info("completion sweep finished", zap.Int("candidates", len(ended)))
		return nil
	}
}
