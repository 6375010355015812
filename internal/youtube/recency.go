package youtube

import (
	"fmt"
	"math"
	"time"
)

// RecencyLabel converts an upload timestamp into the coarse "published X
// ago" label shown alongside listings. Day counts round up, week and month
// counts round down.
func RecencyLabel(published, now time.Time) string {
	diff := now.Sub(published)
	if diff < 0 {
		diff = -diff
	}

	days := int(math.Ceil(diff.Hours() / 24))
	switch {
	case days < 1:
		return "Today"
	case days == 1:
		return "1 day ago"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		weeks := days / 7
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := days / 30
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}
