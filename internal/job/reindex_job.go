package job

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/service"
)

// ReindexJob refreshes the vector index from the catalog on a cron spec,
// so admin edits made outside the API eventually land in search too.
type ReindexJob struct {
	indexer *service.Indexer
}

func NewReindexJob(indexer *service.Indexer) *ReindexJob {
	return &ReindexJob{indexer: indexer}
}

func (j *ReindexJob) Name() string {
	return "product_reindex"
}

func (j *ReindexJob) Run(ctx context.Context) error {
	report, err := j.indexer.ReindexAll(ctx)
	if err != nil {
		// a manually triggered run may already be in flight
		if errors.Is(err, errs.ErrBusy) {
			logutil.GetLogger(ctx).Info("reindex skipped: already running")
			return nil
		}
		return err
	}
	logutil.GetLogger(ctx).Info("scheduled reindex done",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return nil
}
