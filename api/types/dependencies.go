package types

import (
	"github.com/clipforge/media-api/internal/database"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/cache"
	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB           *database.DB
	MediaService media.Service
	MediaRepo    media.Repository
	BlobStore    blobstore.Store
	JobService   jobs.Service
	WorkerPool   *workers.WorkerPool
	Cache        cache.Cache
}
