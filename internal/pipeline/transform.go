package pipeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openpinpoint/analytics-service/internal/models"
)

// The identity pool the emulator reports; the hosted service would fill in a
// real Cognito pool here.
const identityPoolId = "local"

// Transform maps one raw event plus the endpoint snapshot resolved for its
// batch item into the canonical analytics record. It is total: every optional
// input defaults to an empty string or empty map, never a missing field.
// Apart from ArrivalTimestamp (the ingestion clock, passed as now) the output
// is fully determined by the inputs.
func Transform(appID string, event models.Event, endpoint models.Endpoint, now time.Time) models.AnalyticsRecord {
	attrs := event.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	metrics := event.Metrics
	if metrics == nil {
		metrics = map[string]float64{}
	}

	session := models.RecordSession{
		SessionId:      event.Session.Id,
		StartTimestamp: parseTimestamp(event.Session.StartTimestamp),
	}
	// Duration and stop travel together or not at all.
	if event.Session.Duration != 0 && event.Session.StopTimestamp != "" {
		session.Duration = event.Session.Duration
		session.StopTimestamp = parseTimestamp(event.Session.StopTimestamp)
	}

	return models.AnalyticsRecord{
		Application: models.RecordApplication{
			AppId:                 appID,
			CognitoIdentityPoolId: identityPoolId,
			VersionName:           event.AppVersionCode,
		},
		ArrivalTimestamp: now.UnixMilli(),
		Attributes:       attrs,
		Metrics:          metrics,
		Client: models.RecordClient{
			ClientId:  endpoint.Id,
			CognitoId: cognitoId(endpoint.Id),
		},
		Device: models.RecordDevice{
			Model: endpoint.Demographic.Model,
			Make:  endpoint.Demographic.Make,
			Locale: models.RecordLocale{
				Code:     endpoint.Demographic.Locale,
				Country:  strings.ToUpper(endpoint.Location.Country),
				Language: localeLanguage(endpoint.Demographic.Locale),
			},
			Platform: models.RecordPlatform{
				Name:    endpoint.Demographic.Platform,
				Version: endpoint.Demographic.PlatformVersion,
			},
		},
		Endpoint:       endpoint,
		EventType:      event.EventType,
		EventTimestamp: parseTimestamp(event.Timestamp),
		EventVersion:   "",
		Session:        session,
	}
}

// cognitoId derives a stable pseudo-identity from the client id, so the same
// client always maps to the same cognito_id without any identity backend.
func cognitoId(clientID string) string {
	if clientID == "" {
		return ""
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(clientID)).String()
}

// localeLanguage extracts the language subtag from a locale code such as
// "en-US" or "zh_Hant_TW": everything before the first separator, lowercased.
func localeLanguage(locale string) string {
	if locale == "" {
		return ""
	}
	lang := locale
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		lang = locale[:i]
	}
	return strings.ToLower(lang)
}

// parseTimestamp accepts client timestamps as RFC3339 strings or epoch
// milliseconds and normalizes them to epoch milliseconds. Anything else
// becomes 0; a bad clock never fails an event.
func parseTimestamp(ts string) int64 {
	if ts == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		return t.UnixMilli()
	}
	if millis, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return millis
	}
	return 0
}
