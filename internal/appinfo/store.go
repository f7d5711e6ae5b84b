package appinfo

import (
	"sync/atomic"
	"time"
)

var StartTime = time.Now()

var (
	ImagesAttached     atomic.Int64
	ImagesDetached     atomic.Int64
	BlobDeleteFailures atomic.Int64
	OrphansSwept       atomic.Int64
)

type Stats struct {
	Uptime             string `json:"uptime"`
	ImagesAttached     int64  `json:"imagesAttached"`
	ImagesDetached     int64  `json:"imagesDetached"`
	BlobDeleteFailures int64  `json:"blobDeleteFailures"`
	OrphansSwept       int64  `json:"orphansSwept"`
}

// Snapshot: Counters since process start, served by /health
func Snapshot() Stats {
	return Stats{
		Uptime:             time.Since(StartTime).Round(time.Second).String(),
		ImagesAttached:     ImagesAttached.Load(),
		ImagesDetached:     ImagesDetached.Load(),
		BlobDeleteFailures: BlobDeleteFailures.Load(),
		OrphansSwept:       OrphansSwept.Load(),
	}
}
