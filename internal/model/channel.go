package model

// Channel is a YouTube channel as resolved from the Data API.
type Channel struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	Country           string `json:"country,omitempty"`
	PublishedAt       string `json:"publishedAt,omitempty"`
	SubscriberCount   int64  `json:"subscriberCount"`
	ViewCount         int64  `json:"viewCount"`
	VideoCount        int64  `json:"videoCount"`
	UploadsPlaylistID string `json:"-"`
}

// AuthorProfile is the public channel of a commenter.
type AuthorProfile struct {
	ChannelID  string `json:"channelId"`
	Name       string `json:"name"`
	JoinedDate string `json:"date"`
	Gender     Gender `json:"gender"`
}

// Gender is the name-based guess for an author.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Comment is a top-level comment; only the author is of interest.
type Comment struct {
	ID                string `json:"id"`
	VideoID           string `json:"videoId"`
	AuthorChannelID   string `json:"authorChannelId"`
	AuthorDisplayName string `json:"authorDisplayName,omitempty"`
}
