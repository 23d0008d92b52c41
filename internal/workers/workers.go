package workers

import (
	"time"

	"github.com/rs/zerolog/log"

	"qrgen/internal/engine/bulk"
)

// PollBulkJobs claims pending jobs on a fixed interval and runs each to its
// terminal status. Blocks forever; run it on its own goroutine or as the
// worker process main loop.
func PollBulkJobs(jobs *bulk.Repository, processor *bulk.Processor, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("bulk job worker started")

	for range ticker.C {
		for {
			job, err := jobs.ClaimNext()
			if err != nil {
				log.Error().Err(err).Msg("failed to claim bulk job")
				break
			}
			if job == nil {
				break
			}

			log.Info().Str("job_id", job.ID).Msg("processing bulk job")
			// Process marks the job completed or failed itself.
			processor.Process(job)
		}
	}
}
