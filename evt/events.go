package evt

import (
	"github.com/asaskevich/EventBus"
)

const (
	// SuffixListDownloadFailed fires if a suffix list source could not be downloaded. Parameter: source url
	SuffixListDownloadFailed = "suffixlist:downloadFailed"

	// SuffixListCacheRefreshed fires after the suffix list cache was written. Parameter: cache key, text size in bytes
	SuffixListCacheRefreshed = "suffixlist:cacheRefreshed"

	// SuffixListSnapshotUsed fires if all sources failed and the bundled snapshot was used. No parameters.
	SuffixListSnapshotUsed = "suffixlist:snapshotUsed"
)

// nolint
var evtBus = EventBus.New()

func Bus() EventBus.Bus {
	return evtBus
}
