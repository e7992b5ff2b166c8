package domain

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// USGS gauge stations used for water lookups.
const (
	SpringRiverStation      = "07069305" // Spring River at Spring Street Bridge, Hardy, AR
	ElevenPointRiverStation = "07072000" // Eleven Point River near Ravenden Springs, AR
)

// missingValue is the USGS sentinel for an unavailable reading.
const missingValue = "-999999"

// WaterTier records where a reading came from.
type WaterTier string

const (
	TierDaily         WaterTier = "daily"
	TierInstantaneous WaterTier = "instantaneous"
	TierNone          WaterTier = "none"
	TierFailed        WaterTier = "failed"
	TierSkipped       WaterTier = "skipped"
)

// DailyValues holds the first daily discharge (cfs) and gage height (ft)
// values as reported by the service, unvalidated.
type DailyValues struct {
	Discharge  string
	GageHeight string
}

// TimedValue is one sub-daily reading.
type TimedValue struct {
	DateTime string
	Value    string
}

// WaterService looks up gauge readings for a station on a calendar date
// (YYYY-MM-DD).
type WaterService interface {
	// DailyValues returns the aggregated daily readings.
	DailyValues(ctx context.Context, stationID, date string) (DailyValues, error)

	// InstantaneousGageHeight returns the sub-daily gage height series.
	InstantaneousGageHeight(ctx context.Context, stationID, date string) ([]TimedValue, error)
}

// WaterReading is the enrichment result for one record. It is stored apart
// from the record and references it by RecordID.
type WaterReading struct {
	RecordID   string    `json:"recordId"`
	Date       string    `json:"date"`
	Location   string    `json:"location"`
	StationID  string    `json:"stationId"`
	Discharge  string    `json:"discharge,omitempty"`
	GageHeight string    `json:"gageHeight,omitempty"`
	Tier       WaterTier `json:"tier"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// StationFor maps a stream name to its gauge. Streams without their own gauge
// use the Spring River station.
func StationFor(location string) string {
	if strings.Contains(strings.ToLower(location), "eleven point") {
		return ElevenPointRiverStation
	}
	return SpringRiverStation
}

// LookupWaterData fetches gauge readings for a record. Daily values are tried
// first; when they carry no gage height the sub-daily series is consulted and
// a midday reading preferred. Failures degrade to TierFailed and are logged.
// Records whose date could not be parsed are skipped.
func LookupWaterData(ctx context.Context, rec DiaryRecord, svc WaterService, logger *slog.Logger) WaterReading {
	reading := WaterReading{
		RecordID:  rec.ID,
		Date:      rec.Date,
		Location:  rec.Location,
		StationID: StationFor(rec.Location),
		Tier:      TierSkipped,
		FetchedAt: clock.Now(),
	}
	if rec.DateStatus == DateRaw || svc == nil {
		return reading
	}

	daily, dailyErr := svc.DailyValues(ctx, reading.StationID, rec.Date)
	if dailyErr != nil {
		logger.Warn("daily water lookup failed",
			"record_id", rec.ID,
			"station", reading.StationID,
			"date", rec.Date,
			"error", dailyErr,
		)
	} else {
		if validValue(daily.Discharge) {
			reading.Discharge = daily.Discharge
		}
		if validValue(daily.GageHeight) {
			reading.GageHeight = daily.GageHeight
		}
	}

	if reading.GageHeight != "" {
		reading.Tier = TierDaily
		return reading
	}

	series, ivErr := svc.InstantaneousGageHeight(ctx, reading.StationID, rec.Date)
	if ivErr != nil {
		logger.Warn("instantaneous water lookup failed",
			"record_id", rec.ID,
			"station", reading.StationID,
			"date", rec.Date,
			"error", ivErr,
		)
	} else if v := pickMiddayValue(series); v != "" {
		reading.GageHeight = v
		reading.Tier = TierInstantaneous
		return reading
	}

	switch {
	case reading.Discharge != "":
		reading.Tier = TierDaily
	case dailyErr != nil && ivErr != nil:
		reading.Tier = TierFailed
	default:
		reading.Tier = TierNone
	}
	return reading
}

// middayHours are the preferred reading hours, 10:00 through 14:59 local.
var middayHours = []string{"T10:", "T11:", "T12:", "T13:", "T14:"}

// pickMiddayValue returns the first valid midday reading, or the first valid
// reading of the day when none fall in the window.
func pickMiddayValue(series []TimedValue) string {
	first := ""
	for _, v := range series {
		if !validValue(v.Value) {
			continue
		}
		for _, h := range middayHours {
			if strings.Contains(v.DateTime, h) {
				return v.Value
			}
		}
		if first == "" {
			first = v.Value
		}
	}
	return first
}

func validValue(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != missingValue
}
