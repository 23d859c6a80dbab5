package models

// Index is the view model of the preview server's gallery index
type Index struct {
	Title     string
	Galleries []GalleryLink
}

// GalleryLink is one row of the gallery index
type GalleryLink struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Href  string `json:"href"`
	Depth int    `json:"depth"`
	Kind  string `json:"kind"`
	Items int    `json:"items"`
}

// LinkFor builds the index row of a gallery node
func LinkFor(n *NavNode) GalleryLink {
	href := "/"
	if n.URL != RootURL {
		href = "/" + n.URL + "/"
	}
	return GalleryLink{
		Name:  n.Name,
		URL:   n.URL,
		Href:  href,
		Depth: n.Depth,
		Kind:  n.Kind.String(),
		Items: n.ItemCount,
	}
}
