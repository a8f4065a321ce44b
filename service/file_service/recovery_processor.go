package file_service

import (
	"log"
	"time"

	"tabular-file-service/model"
	"tabular-file-service/model/dao"
)

// RecoveryProcessor sweeps records stuck in a non-terminal state. Upload
// tracker state is not persisted, so a restart mid-upload or mid-parse
// leaves records orphaned in uploading/processing; the sweep flips them to
// failed once they have gone quiet past the threshold.
type RecoveryProcessor struct {
	recordDAO        *dao.FileRecordDAO
	stopChan         chan struct{}
	interval         time.Duration
	batchSize        int
	stalledThreshold time.Duration
}

// NewRecoveryProcessor create recovery processor instance
func NewRecoveryProcessor(recordDAO *dao.FileRecordDAO, stalledThreshold time.Duration) *RecoveryProcessor {
	if stalledThreshold <= 0 {
		stalledThreshold = 10 * time.Minute
	}

	return &RecoveryProcessor{
		recordDAO:        recordDAO,
		stopChan:         make(chan struct{}),
		interval:         time.Minute,
		batchSize:        20,
		stalledThreshold: stalledThreshold,
	}
}

// Start start the background sweep
func (rp *RecoveryProcessor) Start() {
	log.Println("Recovery processor started")
	go rp.run()
}

// Stop stop the background sweep
func (rp *RecoveryProcessor) Stop() {
	log.Println("Stopping recovery processor...")
	close(rp.stopChan)
}

func (rp *RecoveryProcessor) run() {
	ticker := time.NewTicker(rp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.stopChan:
			log.Println("Recovery processor stopped")
			return
		case <-ticker.C:
			rp.sweepStalledRecords()
		}
	}
}

// sweepStalledRecords marks quiet non-terminal records failed
func (rp *RecoveryProcessor) sweepStalledRecords() {
	before := time.Now().Add(-rp.stalledThreshold)

	records, err := rp.recordDAO.GetStalled(before, rp.batchSize)
	if err != nil {
		log.Printf("Failed to get stalled records: %v", err)
		return
	}
	if len(records) == 0 {
		return
	}

	log.Printf("Found %d stalled records, marking failed...", len(records))
	for _, rec := range records {
		if err := rp.recordDAO.UpdateFields(rec.FileId, map[string]interface{}{
			"status":   model.StatusFailed,
			"progress": 0,
		}); err != nil {
			log.Printf("Failed to mark stalled record %s failed: %v", rec.FileId, err)
		}
	}
}
