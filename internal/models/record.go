package models

// The analytics record is the canonical write-once document forwarded to the
// search backend. Field names are snake_case on the wire, matching what the
// hosted service emits into its Elasticsearch export.

type RecordApplication struct {
	AppId                 string `json:"app_id"`
	CognitoIdentityPoolId string `json:"cognito_identity_pool_id"`
	VersionName           string `json:"version_name"`
}

type RecordClient struct {
	ClientId  string `json:"client_id"`
	CognitoId string `json:"cognito_id"`
}

type RecordLocale struct {
	Code     string `json:"code"`
	Country  string `json:"country"`
	Language string `json:"language"`
}

type RecordPlatform struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type RecordDevice struct {
	Model    string         `json:"model"`
	Make     string         `json:"make"`
	Locale   RecordLocale   `json:"locale"`
	Platform RecordPlatform `json:"platform"`
}

// RecordSession carries duration/stop_timestamp only when the input event
// reported both; otherwise they are omitted entirely.
type RecordSession struct {
	SessionId      string `json:"session_id"`
	StartTimestamp int64  `json:"start_timestamp"`
	Duration       int64  `json:"duration,omitempty"`
	StopTimestamp  int64  `json:"stop_timestamp,omitempty"`
}

// AnalyticsRecord is immutable once produced. ArrivalTimestamp is the
// ingestion clock; EventTimestamp is the client clock. EventVersion is
// reserved and currently always empty.
type AnalyticsRecord struct {
	Application      RecordApplication  `json:"application"`
	ArrivalTimestamp int64              `json:"arrival_timestamp"`
	Attributes       map[string]string  `json:"attributes"`
	Metrics          map[string]float64 `json:"metrics"`
	Client           RecordClient       `json:"client"`
	Device           RecordDevice       `json:"device"`
	Endpoint         Endpoint           `json:"endpoint"`
	EventType        string             `json:"event_type"`
	EventTimestamp   int64              `json:"event_timestamp"`
	EventVersion     string             `json:"event_version"`
	Session          RecordSession      `json:"session"`
}
