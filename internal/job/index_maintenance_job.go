package job

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/semsearch/internal/repo"
)

// IndexMaintenanceJob retries ANN index creation in the background so a
// corpus that crossed the size threshold between ingests still gets its
// index without waiting for the next write.
type IndexMaintenanceJob struct {
	chunks    *repo.ChunkRepo
	threshold int
}

func NewIndexMaintenanceJob(chunks *repo.ChunkRepo, threshold int) *IndexMaintenanceJob {
	return &IndexMaintenanceJob{chunks: chunks, threshold: threshold}
}

func (j *IndexMaintenanceJob) Name() string {
	return "index_maintenance"
}

func (j *IndexMaintenanceJob) Run(ctx context.Context) error {
	if j.chunks == nil {
		return nil
	}
	created, err := j.chunks.EnsureANNIndex(ctx, j.threshold)
	if err != nil {
		return err
	}
	if created {
		logutil.GetLogger(ctx).Info("ann index created by maintenance job",
			zap.String("index", repo.ANNIndexName),
			zap.Int("threshold", j.threshold),
		)
	}
	return nil
}
