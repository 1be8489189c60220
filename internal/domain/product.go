package domain

// Kind groups the four product categories the shop sells.
type Kind string

const (
	KindManga        Kind = "manga"
	KindBoxSet       Kind = "boxset"
	KindActionFigure Kind = "figure"
	KindKatana       Kind = "katana"
)

// Product is a purchasable unit. Cart lines and orders hold frozen copies of
// this struct taken at add-time; the catalog is never re-read once an item is
// snapshotted. Derived volume selections synthesize ids like
// "{id}-vol-{n}" and "{id}-vols-1-{n}", so ID is unique per purchasable unit,
// not per catalog row.
type Product struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	Description   string   `json:"description,omitempty"`
	Price         int64    `json:"price"`
	OriginalPrice int64    `json:"original_price"`
	Image         string   `json:"image"`
	Genre         []string `json:"genre,omitempty"`
	Rating        float64  `json:"rating"`
	Volumes       int      `json:"volumes"`
	Status        string   `json:"status"`
	Kind          Kind     `json:"kind"`
	Featured      bool     `json:"featured,omitempty"`
	New           bool     `json:"new,omitempty"`
}
