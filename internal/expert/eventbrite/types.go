package eventbrite

// searchResponse is the Eventbrite /events/search response envelope.
type searchResponse struct {
	Events     []event    `json:"events"`
	Pagination pagination `json:"pagination"`
}

type pagination struct {
	ObjectCount int `json:"object_count"`
	PageCount   int `json:"page_count"`
}

type event struct {
	ID          string     `json:"id"`
	Name        multipart  `json:"name"`
	Description multipart  `json:"description"`
	URL         string     `json:"url"`
	Start       eventTime  `json:"start"`
	Organizer   *organizer `json:"organizer"`
	Format      *format    `json:"format"`
}

// multipart is Eventbrite's text/html field pair.
type multipart struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type eventTime struct {
	UTC      string `json:"utc"`
	Local    string `json:"local"`
	Timezone string `json:"timezone"`
}

type organizer struct {
	Name string `json:"name"`
}

type format struct {
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}
