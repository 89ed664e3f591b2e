package models

// EndpointDemographic describes the device/user demographic fields carried by
// an endpoint. Everything is optional; absent fields marshal away so a sparse
// sync payload never clears stored data during a merge.
type EndpointDemographic struct {
	AppVersion      string `json:"AppVersion,omitempty"`
	Locale          string `json:"Locale,omitempty"`
	Make            string `json:"Make,omitempty"`
	Model           string `json:"Model,omitempty"`
	Platform        string `json:"Platform,omitempty"`
	PlatformVersion string `json:"PlatformVersion,omitempty"`
	Timezone        string `json:"Timezone,omitempty"`
}

// EndpointLocation is the coarse location block clients report.
type EndpointLocation struct {
	City       string  `json:"City,omitempty"`
	Country    string  `json:"Country,omitempty"`
	Latitude   float64 `json:"Latitude,omitempty"`
	Longitude  float64 `json:"Longitude,omitempty"`
	PostalCode string  `json:"PostalCode,omitempty"`
	Region     string  `json:"Region,omitempty"`
}

// EndpointUser identifies the user behind a device, if the client knows one.
type EndpointUser struct {
	UserId         string              `json:"UserId,omitempty"`
	UserAttributes map[string][]string `json:"UserAttributes,omitempty"`
}

// Endpoint is the durable per-client record. Id, CreationDate and CohortId are
// assigned by the store on first write and never overwritten by later merges;
// EffectiveDate is stamped on every write.
type Endpoint struct {
	Id             string              `json:"Id,omitempty"`
	ApplicationId  string              `json:"ApplicationId,omitempty"`
	Address        string              `json:"Address,omitempty"`
	ChannelType    string              `json:"ChannelType,omitempty"`
	OptOut         string              `json:"OptOut,omitempty"`
	RequestId      string              `json:"RequestId,omitempty"`
	CohortId       int                 `json:"CohortId,omitempty"`
	CreationDate   string              `json:"CreationDate,omitempty"`
	EffectiveDate  string              `json:"EffectiveDate,omitempty"`
	EndpointStatus string              `json:"EndpointStatus,omitempty"`
	Demographic    EndpointDemographic `json:"Demographic,omitempty"`
	Location       EndpointLocation    `json:"Location,omitempty"`
	User           EndpointUser        `json:"User,omitempty"`
	Attributes     map[string][]string `json:"Attributes,omitempty"`
	Metrics        map[string]float64  `json:"Metrics,omitempty"`
}
