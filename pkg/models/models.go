package models

// NodeKind classifies a directory in the gallery hierarchy
type NodeKind int

const (
	// KindBranch is a directory holding sub-galleries
	KindBranch NodeKind = iota
	// KindLeaf is a directory holding media directly
	KindLeaf
	// KindSequenceContainer is a directory whose only children are frame sequences.
	// It is rendered and encoded exactly like a leaf.
	KindSequenceContainer
)

// String returns the label used in listings and exports
func (k NodeKind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindLeaf:
		return "leaf"
	case KindSequenceContainer:
		return "sequence-container"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear as a label in JSON exports
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MediaKind classifies a gallery item
type MediaKind int

const (
	// MediaImage is a still image file
	MediaImage MediaKind = iota
	// MediaVideo is a video file
	MediaVideo
	// MediaImageSequence is a directory of frames compiled into a video
	MediaImageSequence
)

// String returns the label used in listings and exports
func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	case MediaImageSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// MarshalText lets the kind appear as a label in JSON exports
func (k MediaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// TemplateType is the value substituted for {{type}} in the slide template.
// Sequences play back as videos.
func (k MediaKind) TemplateType() string {
	if k == MediaImage {
		return "image"
	}
	return "video"
}

// RootURL is the url of the top-level node
const RootURL = "."

// NoItems marks a node whose items have not been counted (branches keep it)
const NoItems = -1

// NavNode is one directory of the site hierarchy
type NavNode struct {
	Path      string         `json:"-"`
	Name      string         `json:"name"`
	Depth     int            `json:"depth"`
	Kind      NodeKind       `json:"kind"`
	URL       string         `json:"url"`
	ItemCount int            `json:"itemCount"`
	Items     []*GalleryItem `json:"items,omitempty"`
}

// IsGallery reports whether the node holds media and gets its own page
func (n *NavNode) IsGallery() bool {
	return n.Kind != KindBranch
}

// FirstItem returns the first gallery item of the node, or nil
func (n *NavNode) FirstItem() *GalleryItem {
	if len(n.Items) == 0 {
		return nil
	}
	return n.Items[0]
}

// GalleryItem is one media entry of a gallery node
type GalleryItem struct {
	SourceFile    string    `json:"-"`
	Owner         *NavNode  `json:"-"`
	Slug          string    `json:"slug"`
	Kind          MediaKind `json:"kind"`
	DisplayWidth  int       `json:"width"`
	DisplayHeight int       `json:"height"`
	Palette       []string  `json:"palette"`
	ImageOptions  string    `json:"imageOptions,omitempty"`
	VideoOptions  string    `json:"videoOptions,omitempty"`
	VideoFilters  string    `json:"videoFilters,omitempty"`
}

// URL returns the item's output location relative to the site root
func (g *GalleryItem) URL() string {
	if g.Owner == nil || g.Owner.URL == RootURL {
		return g.Slug
	}
	return g.Owner.URL + "/" + g.Slug
}

// SelectRung applies the largest-satisfied-else-last rule to a resolution
// ladder in its configured order. It returns the chosen rung and the height
// scaled to it, or zeros for an empty ladder.
func SelectRung(ladder []int, width, height int) (int, int) {
	maxWidth, maxHeight := 0, 0
	for count, res := range ladder {
		if width >= res && res > maxWidth {
			maxWidth = res
			maxHeight = scaleHeight(res, width, height)
		} else if maxWidth == 0 && count == len(ladder)-1 {
			maxWidth = res
			maxHeight = scaleHeight(res, width, height)
		}
	}
	return maxWidth, maxHeight
}

func scaleHeight(res, width, height int) int {
	if width == 0 {
		return 0
	}
	return res * height / width
}

// BitrateFor returns the bitrate paired with ladder index i, reusing the last
// entry when the bitrate ladder is shorter
func BitrateFor(bitrates []float64, i int) float64 {
	if len(bitrates) == 0 {
		return 0
	}
	if i < len(bitrates) {
		return bitrates[i]
	}
	return bitrates[len(bitrates)-1]
}
