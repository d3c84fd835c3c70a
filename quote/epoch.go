package quote

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/etnz/extract/date"
)

// futureEpoch is the epoch-second count of 2200-01-01, far beyond any trade
// date a feed can legitimately report. Any number above it cannot be
// seconds, and any number below its day equivalent cannot be seconds
// either; that is enough to tell the three epoch conventions apart.
var futureEpoch = time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// ParseEpochDate interprets a feed's trade-date value. Feeds disagree on
// the unit: epoch seconds, epoch milliseconds, or whole days since
// 1970-01-01; the magnitude decides. ISO date strings and numbers carried
// as strings are accepted too. A structurally wrong value yields
// (zero, false), never an error, because a feed with a broken date path
// should degrade to "no date", not kill the fetch.
func ParseEpochDate(v any) (date.Date, bool) {
	switch t := v.(type) {
	case nil:
		return date.Date{}, false
	case float64:
		return fromEpochNumber(int64(t)), true
	case int64:
		return fromEpochNumber(t), true
	case int:
		return fromEpochNumber(int64(t)), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return fromEpochNumber(n), true
		}
		if f, err := t.Float64(); err == nil {
			return fromEpochNumber(int64(f)), true
		}
		return date.Date{}, false
	case string:
		if d, err := date.Parse(t); err == nil {
			return d, true
		}
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return fromEpochNumber(n), true
		}
		return date.Date{}, false
	default:
		return date.Date{}, false
	}
}

func fromEpochNumber(v int64) date.Date {
	switch {
	case v > futureEpoch:
		// milliseconds
		return date.FromTime(time.UnixMilli(v).UTC())
	case v < futureEpoch/86400:
		// days since the epoch
		return date.FromTime(time.Unix(v*86400, 0).UTC())
	default:
		return date.FromTime(time.Unix(v, 0).UTC())
	}
}
