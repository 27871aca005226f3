package ontology

import "sort"

// TreeNode is one node of the hierarchical catalog view. Children hang off
// inherits edges only; mixins are cross-cutting and not shown in the tree.
type TreeNode struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Layer    int         `json:"layer"`
	Abstract bool        `json:"abstract"`
	Pillar   string      `json:"pillar,omitempty"`
	Children []*TreeNode `json:"children"`
}

// Stats aggregates catalog counts. Classifiable counts concrete concepts
// whose effective template is non-empty after inheritance merge.
type Stats struct {
	TotalConcepts int            `json:"total_concepts"`
	ByLayer       map[int]int    `json:"by_layer"`
	ByPillar      map[string]int `json:"by_pillar"`
	AbstractCount int            `json:"abstract_count"`
	Classifiable  int            `json:"classifiable_count"`
}

// Tree builds the rooted forest view. Roots are concepts with no inherits,
// ordered by label; children are ordered by label with id as tie-break.
// Depth is capped so a corrupted catalog fails with CycleError instead of
// recursing forever.
func (s *Snapshot) Tree() ([]*TreeNode, error) {
	children := make(map[string][]*Concept)
	var roots []*Concept
	for _, id := range s.ids {
		c := s.concepts[id]
		if c.Inherits == "" {
			roots = append(roots, c)
			continue
		}
		children[c.Inherits] = append(children[c.Inherits], c)
	}
	sortByLabel(roots)

	forest := make([]*TreeNode, 0, len(roots))
	for _, root := range roots {
		node, err := s.buildNode(root, children, 0)
		if err != nil {
			return nil, err
		}
		forest = append(forest, node)
	}
	return forest, nil
}

func (s *Snapshot) buildNode(c *Concept, children map[string][]*Concept, depth int) (*TreeNode, error) {
	if depth > maxChainDepth {
		return nil, &CycleError{Path: []string{c.ID}}
	}
	node := &TreeNode{
		ID:       c.ID,
		Label:    c.Label,
		Layer:    c.Layer,
		Abstract: c.Abstract,
		Pillar:   s.PillarOf(c.ID),
		Children: []*TreeNode{},
	}
	kids := append([]*Concept(nil), children[c.ID]...)
	sortByLabel(kids)
	for _, kid := range kids {
		child, err := s.buildNode(kid, children, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func sortByLabel(concepts []*Concept) {
	sort.SliceStable(concepts, func(i, j int) bool {
		if concepts[i].Label != concepts[j].Label {
			return concepts[i].Label < concepts[j].Label
		}
		return concepts[i].ID < concepts[j].ID
	})
}

// Stats computes aggregate counts over the whole catalog in one pass plus a
// resolution per concept for the classifiable count.
func (s *Snapshot) Stats() (Stats, error) {
	stats := Stats{
		ByLayer:  map[int]int{},
		ByPillar: map[string]int{},
	}
	for _, id := range s.ids {
		c := s.concepts[id]
		stats.TotalConcepts++
		stats.ByLayer[c.Layer]++
		if pillar := s.PillarOf(id); pillar != "" {
			stats.ByPillar[pillar]++
		}
		if c.Abstract {
			stats.AbstractCount++
			continue
		}
		r, err := s.Resolve(id)
		if err != nil {
			return Stats{}, err
		}
		if !r.Template.Empty() {
			stats.Classifiable++
		}
	}
	return stats, nil
}
