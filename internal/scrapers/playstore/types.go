package playstore

import "time"

type App struct {
	AppID     string
	Title     string
	Summary   string
	Score     *float64
	ScoreText string
	Url       string
	IconUrl   string
	Developer string
	PriceText string
	Price     *float64
	Currency  string
	IsFree    bool
}

type AppDetails struct {
	AppID           string
	Url             string
	Title           string
	DescriptionHtml string
	Summary         string
	Installs        string
	MinInstalls     int64
	MaxInstalls     int64

	Score            *float64
	ScoreText        string
	RatingCount      int64
	ReviewCount      int64
	RatingsHistogram map[string]int64

	PriceText string
	Price     *float64
	Currency  string
	IsFree    bool

	IsAvailable              bool
	OffersInAppPurchases     bool
	InAppPurchasesPriceRange string

	AndroidVersion     string
	AndroidVersionText string

	Developer           string
	DeveloperID         string
	DeveloperInternalID string
	DeveloperEmail      string
	DeveloperWebsite    string
	DeveloperAddress    string
	PrivacyPolicyUrl    string

	Genre         string
	GenreID       string
	FamilyGenre   string
	FamilyGenreID string

	IconUrl           string
	HeaderImageUrl    string
	ScreenshotUrls    []string
	VideoUrl          string
	VideoThumbnailUrl string

	ContentRating            string
	ContentRatingDescription string
	ContainsAds              bool

	ReleaseDate         time.Time
	LastUpdated         time.Time
	Version             string
	LastUpdateChangelog string
	IsEditorsChoice     bool
}

type AppReview struct {
	ID             string
	Url            string
	AppID          string
	AuthorUsername string
	AuthorImageUrl string
	Timestamp      time.Time
	Score          int
	Title          string
	Text           string
	ReplyTimestamp *time.Time
	ReplyText      string
	AppVersion     string
	ThumbsUpCount  int
	Criteria       []string
}

type Category struct {
	ID    string
	Title string
}

type Permission struct {
	Type        string
	Description string
}

// Collection is a themed app listing of the store.
type Collection string

const (
	TOP_FREE           Collection = "TOP_FREE"
	TOP_PAID           Collection = "TOP_PAID"
	GROSSING           Collection = "GROSSING"
	TRENDING           Collection = "TRENDING"
	TOP_FREE_GAMES     Collection = "TOP_FREE_GAMES"
	TOP_PAID_GAMES     Collection = "TOP_PAID_GAMES"
	TOP_GROSSING_GAMES Collection = "TOP_GROSSING_GAMES"
	NEW_FREE           Collection = "NEW_FREE"
	NEW_PAID           Collection = "NEW_PAID"
	NEW_FREE_GAMES     Collection = "NEW_FREE_GAMES"
	NEW_PAID_GAMES     Collection = "NEW_PAID_GAMES"
)

var Collections = []Collection{
	TOP_FREE, TOP_PAID, GROSSING, TRENDING,
	TOP_FREE_GAMES, TOP_PAID_GAMES, TOP_GROSSING_GAMES,
	NEW_FREE, NEW_PAID, NEW_FREE_GAMES, NEW_PAID_GAMES,
}

func (c Collection) isNew() bool {
	switch c {
	case NEW_FREE, NEW_PAID, NEW_FREE_GAMES, NEW_PAID_GAMES:
		return true
	}
	return false
}

// ReviewSort is the order reviews are returned in, the value is the code the
// reviews rpc expects.
type ReviewSort int

const (
	SORT_HELPFULNESS ReviewSort = 1
	SORT_NEWEST      ReviewSort = 2
	SORT_RATING      ReviewSort = 3
)

func ParseReviewSort(name string) (ReviewSort, bool) {
	switch name {
	case "newest":
		return SORT_NEWEST, true
	case "rating":
		return SORT_RATING, true
	case "helpfulness":
		return SORT_HELPFULNESS, true
	}
	return 0, false
}
