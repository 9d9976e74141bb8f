package finder

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/routefind/core"
)

// Mermaid renders the graph and the route's key placements as a mermaid
// flowchart: node shapes follow node kinds, item labels carry their placed
// keys, and edge labels carry requirements. Output is deterministic in ID
// order, so dumps of equal routes diff cleanly.
func (r *Route) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")

	for _, n := range r.finder.g.Nodes() {
		label := n.Label
		if n.IsItem() {
			if ks := r.final.PlacedKeys(n); len(ks) > 0 {
				names := make([]string, len(ks))
				for i, k := range ks {
					names[i] = k.Label
				}
				label = fmt.Sprintf("%s: %s", n.Label, strings.Join(names, ", "))
			}
		}
		fmt.Fprintf(&b, "    n%d%s\n", n.ID, mermaidShape(n.Kind, label))
	}

	for _, e := range r.finder.g.Edges() {
		arrow := mermaidArrow(e.Kind)
		if reqs := mermaidRequires(e); reqs != "" {
			arrow += fmt.Sprintf("|%s|", reqs)
		}
		fmt.Fprintf(&b, "    n%d %s n%d\n", e.Source.ID, arrow, e.Destination.ID)
	}
	return b.String()
}

func mermaidShape(kind core.NodeKind, label string) string {
	switch kind {
	case core.NodeAnd:
		return fmt.Sprintf("{{%q}}", label)
	case core.NodeOr:
		return fmt.Sprintf("([%q])", label)
	case core.NodeItem:
		return fmt.Sprintf("[(%q)]", label)
	case core.NodeOneWay:
		return fmt.Sprintf(">%q]", label)
	default:
		return fmt.Sprintf("[/%q/]", label)
	}
}

func mermaidArrow(kind core.EdgeKind) string {
	switch kind {
	case core.EdgeTwoWay:
		return "---"
	case core.EdgeOneWay:
		return "-->"
	default:
		return "==>"
	}
}

func mermaidRequires(e *core.Edge) string {
	var parts []string
	for _, k := range e.RequiredKeys {
		parts = append(parts, k.Label)
	}
	for _, n := range e.RequiredNodes {
		parts = append(parts, n.Label)
	}
	return strings.Join(parts, ", ")
}
