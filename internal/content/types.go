package content

// ItemKind is the media type of a matchable item.
type ItemKind string

const (
	KindText  ItemKind = "text"
	KindImage ItemKind = "image"
	KindAudio ItemKind = "audio"
)

// GEPTLevel is the proficiency band a content item targets.
type GEPTLevel string

const (
	GEPTElementary   GEPTLevel = "elementary"
	GEPTIntermediate GEPTLevel = "intermediate"
	GEPTAdvanced     GEPTLevel = "high-intermediate"
)

// Item is one side of a match pair.
type Item struct {
	ID          string    `json:"id"`
	Kind        ItemKind  `json:"kind"`
	Content     string    `json:"content"`
	DisplayText string    `json:"display_text,omitempty"`
	GEPTLevel   GEPTLevel `json:"gept_level,omitempty"`
}

// Pair is a matchable (left, right) item pair.
type Pair struct {
	ID    string `json:"id"`
	Left  Item   `json:"left"`
	Right Item   `json:"right"`
}

// Pack is a loadable set of pairs at a proficiency level.
type Pack struct {
	Name      string    `json:"name"`
	GEPTLevel GEPTLevel `json:"gept_level,omitempty"`
	Pairs     []Pair    `json:"pairs"`
}

// Supplier provides match pairs to the orchestrator.
type Supplier interface {
	// Pairs returns up to limit pairs; limit <= 0 means all.
	Pairs(limit int) ([]Pair, error)
}
