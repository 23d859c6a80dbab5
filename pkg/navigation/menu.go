package navigation

import (
	"strings"

	"expose/pkg/models"
)

// Menu renders the nested navigation list for a page. current receives the
// active marker. A node's parent is the nearest preceding node one level up;
// the root itself is never listed. Empty child lists are left in place for
// the page finalization pass to remove.
func Menu(nodes []*models.NavNode, current *models.NavNode) string {
	var top []*models.NavNode
	children := make(map[*models.NavNode][]*models.NavNode)
	lastAt := make(map[int]*models.NavNode)

	for _, n := range nodes {
		lastAt[n.Depth] = n
		switch {
		case n.Depth == 0:
		case n.Depth == 1:
			top = append(top, n)
		default:
			if parent := lastAt[n.Depth-1]; parent != nil {
				children[parent] = append(children[parent], n)
			}
		}
	}

	var sb strings.Builder
	for _, n := range top {
		writeEntry(&sb, n, children, current)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, n *models.NavNode, children map[*models.NavNode][]*models.NavNode, current *models.NavNode) {
	if n.Kind == models.KindBranch {
		sb.WriteString(`<li><span class="label">`)
		sb.WriteString(n.Name)
		sb.WriteString(`</span><ul>`)
	} else {
		active := ""
		if n == current {
			active = "active"
		}
		// an empty gallery has no image of its own; no site-wide fallback
		image := ""
		if first := n.FirstItem(); first != nil {
			image = first.Slug
		}
		sb.WriteString(`<li class="gallery ` + active + `" data-image="` + image + `">`)
		sb.WriteString(`<a href="{{basepath}}` + n.URL + `"><span>` + n.Name + `</span></a><ul>`)
	}
	for _, c := range children[n] {
		writeEntry(sb, c, children, current)
	}
	sb.WriteString(`</ul></li>`)
}
