package models

// EventSession is the session descriptor embedded in every client event.
// Duration and StopTimestamp travel together; a record only carries them when
// the client reported both.
type EventSession struct {
	Id             string `json:"Id,omitempty"`
	StartTimestamp string `json:"StartTimestamp,omitempty"`
	StopTimestamp  string `json:"StopTimestamp,omitempty"`
	Duration       int64  `json:"Duration,omitempty"`
}

// Event is one client-generated event inside a batch item. It is input-only:
// once transformed into an AnalyticsRecord it is discarded.
type Event struct {
	EventType      string             `json:"EventType,omitempty"`
	Timestamp      string             `json:"Timestamp,omitempty"`
	AppVersionCode string             `json:"AppVersionCode,omitempty"`
	Attributes     map[string]string  `json:"Attributes,omitempty"`
	Metrics        map[string]float64 `json:"Metrics,omitempty"`
	Session        EventSession       `json:"Session,omitempty"`
}

// BatchItem bundles one client's endpoint metadata with its events, keyed by
// event id.
type BatchItem struct {
	Endpoint Endpoint         `json:"Endpoint"`
	Events   map[string]Event `json:"Events"`
}

// EventsRequest is the POST /v1/apps/:app/events payload. BatchItem is keyed
// by client id; a request without it is malformed.
type EventsRequest struct {
	BatchItem map[string]BatchItem `json:"BatchItem"`
}

// ItemResponse is the per-endpoint / per-event acknowledgment leaf.
type ItemResponse struct {
	StatusCode int    `json:"StatusCode"`
	Message    string `json:"Message"`
}

// BatchItemResult acknowledges one batch item, mirroring its event-id keys.
type BatchItemResult struct {
	EndpointItemResponse ItemResponse            `json:"EndpointItemResponse"`
	EventsItemResponse   map[string]ItemResponse `json:"EventsItemResponse"`
}

// EventsResponse is returned by the batch endpoint. Its key structure mirrors
// the request's BatchItem exactly.
type EventsResponse struct {
	Results map[string]BatchItemResult `json:"Results"`
}

// EndpointResponse is returned by PUT /v1/apps/:app/endpoints/:endpoint.
type EndpointResponse struct {
	Message   string `json:"Message"`
	RequestID string `json:"RequestID"`
}
