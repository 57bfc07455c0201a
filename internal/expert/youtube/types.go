package youtube

// searchResponse is the YouTube Data API v3 search.list response envelope.
type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID      itemID  `json:"id"`
	Snippet snippet `json:"snippet"`
}

type itemID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type snippet struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}
