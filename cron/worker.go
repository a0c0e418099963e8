package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"mountify/config"
	"mountify/models"
	"mountify/services/referral"

	"github.com/hibiken/asynq"
)

// InitUsageWorker runs the async worker recording referral usages in the
// background. Usage recording is idempotent per booking reference, so asynq
// retrying a task after a transient storage failure can never double-count.
func InitUsageWorker(ledger referral.Ledger) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisUsageQueueDB,
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
	mux.HandleFunc(referral.TypeRecordUsage, handleUsageTask(ledger))

	go func() {
		log.Println("[UsageWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[UsageWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[UsageWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleUsageTask(ledger referral.Ledger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.UsagePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[UsageWorker] invalid payload: %v", err)
			return err
		}

		recorded, err := ledger.RecordUsage(ctx, p.CodeID, p.BookingRef, p.DiscountAmount, p.SubsidyAmount)
		if err != nil {
			if referral.IsTransient(err) {
				// Returning the error lets asynq retry with backoff.
				log.Printf("[UsageWorker] transient failure for booking %s, will retry: %v", p.BookingRef, err)
				return err
			}
			log.Printf("[UsageWorker] dropping unrecordable usage for booking %s: %v", p.BookingRef, err)
			return nil
		}
		if !recorded {
			log.Printf("[UsageWorker] usage for booking %s already recorded", p.BookingRef)
		}
		return nil
	}
}
