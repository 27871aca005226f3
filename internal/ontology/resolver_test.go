package ontology

import (
	"errors"
	"testing"
)

func TestAncestorChainOrderAndTermination(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()

	chain, err := snap.Ancestors("invoice")
	if err != nil {
		t.Fatalf("ancestors: %v", err)
	}
	if len(chain) != 2 || chain[0].ID != "document" || chain[1].ID != "financial_document" {
		t.Fatalf("expected [document financial_document], got %v", chainIDs(chain))
	}

	seen := map[string]bool{"invoice": true}
	for _, a := range chain {
		if seen[a.ID] {
			t.Fatalf("id %s appears more than once in chain", a.ID)
		}
		seen[a.ID] = true
	}

	root, err := snap.Ancestors("document")
	if err != nil {
		t.Fatalf("ancestors of root: %v", err)
	}
	if len(root) != 0 {
		t.Fatalf("root must have empty chain, got %v", chainIDs(root))
	}
}

func TestAncestorChainDetectsCorruptCatalog(t *testing.T) {
	// assemble a corrupt snapshot directly; the store would reject this
	concepts := map[string]*Concept{
		"a": {ID: "a", Layer: 1, Label: "A", Inherits: "b"},
		"b": {ID: "b", Layer: 1, Label: "B", Inherits: "a"},
	}
	snap := newSnapshot(concepts, LayerPolicyStrict)

	_, err := snap.Ancestors("a")
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}

	_, err = snap.Resolve("a")
	if !errors.As(err, &cycle) {
		t.Fatalf("resolve should surface CycleError, got %v", err)
	}
}

func TestMixinCycleReportsOrderedPath(t *testing.T) {
	// mixin cycle the store would reject; resolution must report the walk
	// order, the same path every time
	concepts := map[string]*Concept{
		"a": {ID: "a", Layer: 1, Label: "A", Abstract: true, Mixins: []string{"b"}},
		"b": {ID: "b", Layer: 1, Label: "B", Abstract: true, Mixins: []string{"a"}},
	}
	snap := newSnapshot(concepts, LayerPolicyStrict)

	want := []string{"a", "b", "a"}
	for i := 0; i < 5; i++ {
		_, err := snap.Resolve("a")
		var cycle *CycleError
		if !errors.As(err, &cycle) {
			t.Fatalf("expected CycleError, got %v", err)
		}
		if len(cycle.Path) != len(want) {
			t.Fatalf("path %v, want %v", cycle.Path, want)
		}
		for j := range want {
			if cycle.Path[j] != want[j] {
				t.Fatalf("path %v, want %v", cycle.Path, want)
			}
		}
	}
}

func TestEffectiveSchemaUnionWithoutOverrides(t *testing.T) {
	s := newTestStore(t)
	r, err := s.Snapshot().Resolve("receipt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// document: title, language; financial_document: amount, currency
	want := []string{"title", "language", "amount", "currency"}
	if len(r.Properties) != len(want) {
		t.Fatalf("expected %d properties, got %d: %v", len(want), len(r.Properties), propNames(r.Properties))
	}
	for i, name := range want {
		if r.Properties[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, r.Properties[i].Name)
		}
	}
}

func TestEffectiveSchemaOverridePrecedence(t *testing.T) {
	s := newTestStore(t)
	r, err := s.Snapshot().Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var currency *Property
	for i := range r.Properties {
		if r.Properties[i].Name == "currency" {
			currency = &r.Properties[i]
		}
	}
	if currency == nil {
		t.Fatal("currency missing from effective schema")
	}
	if currency.Default == nil || currency.Default.Str != "EUR" {
		t.Fatalf("concept's own declaration must win: got %+v", currency.Default)
	}

	// first-seen order is preserved even for overridden names
	names := propNames(r.Properties)
	want := []string{"title", "language", "amount", "currency", "due_date"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
}

func TestMixinContributesSchemaAndLaterMixinWins(t *testing.T) {
	s := NewStore(testLogger(), LayerPolicyStrict)
	mustCreate := func(c Concept) {
		t.Helper()
		if _, err := s.Create(c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}
	mustCreate(Concept{ID: "base", Layer: 1, Label: "Base", Abstract: true})
	mustCreate(Concept{
		ID: "trait_a", Layer: 1, Label: "Trait A", Abstract: true,
		Properties: []Property{{Name: "shared", Type: TypeString, Default: StringValue("a")}},
	})
	mustCreate(Concept{
		ID: "trait_b", Layer: 1, Label: "Trait B", Abstract: true,
		Properties: []Property{{Name: "shared", Type: TypeString, Default: StringValue("b")}},
	})
	mustCreate(Concept{
		ID: "target", Layer: 2, Label: "Target", Inherits: "base",
		Mixins: []string{"trait_a", "trait_b"},
	})

	r, err := s.Snapshot().Resolve("target")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(r.Properties) != 1 || r.Properties[0].Name != "shared" {
		t.Fatalf("expected single shared property, got %v", propNames(r.Properties))
	}
	if r.Properties[0].Default.Str != "b" {
		t.Fatalf("later-listed mixin must win, got default %q", r.Properties[0].Default.Str)
	}
}

func TestTemplateUnionAcrossMergeOrder(t *testing.T) {
	s := newTestStore(t)
	// parent hint flows into the child template
	tpl := &ExtractionTemplate{ClassificationHints: []string{"financial"}}
	if _, err := s.Update("financial_document", Patch{Template: tpl}); err != nil {
		t.Fatalf("update: %v", err)
	}

	r, err := s.Snapshot().Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	hints := map[string]bool{}
	for _, h := range r.Template.ClassificationHints {
		hints[h] = true
	}
	for _, want := range []string{"financial", "invoice", "amount due"} {
		if !hints[want] {
			t.Fatalf("expected hint %q in union, got %v", want, r.Template.ClassificationHints)
		}
	}
}

func TestMixinTemplateUnion(t *testing.T) {
	s := newTestStore(t)
	r, err := s.Snapshot().Resolve("contract")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	hints := map[string]bool{}
	for _, h := range r.Template.ClassificationHints {
		hints[h] = true
	}
	if !hints["signature"] || !hints["agreement"] {
		t.Fatalf("expected mixin and own hints in union, got %v", r.Template.ClassificationHints)
	}
}

func TestInheritedGroupsProvenance(t *testing.T) {
	s := newTestStore(t)
	r, err := s.Snapshot().Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	bySource := map[string]InheritedGroup{}
	for _, g := range r.Groups {
		bySource[g.SourceID] = g
	}

	doc, ok := bySource["document"]
	if !ok {
		t.Fatalf("expected group for document, got %v", groupSources(r.Groups))
	}
	// currency is overridden away from financial_document's group
	fin, ok := bySource["financial_document"]
	if !ok {
		t.Fatalf("expected group for financial_document, got %v", groupSources(r.Groups))
	}
	for _, p := range fin.Properties {
		if p.Name == "currency" {
			t.Fatal("overridden property must not appear in its source group")
		}
	}
	if len(doc.Properties) != 2 {
		t.Fatalf("document group should keep title and language, got %v", propNames(doc.Properties))
	}
	own, ok := bySource["invoice"]
	if !ok || len(own.Properties) != 2 {
		t.Fatal("target's own group should carry currency and due_date")
	}
	if own.SourceLayer != 3 {
		t.Fatalf("group must be tagged with source layer, got %d", own.SourceLayer)
	}
}

func TestResolveMemoizedPerSnapshot(t *testing.T) {
	s := newTestStore(t)
	snap := s.Snapshot()
	first, err := snap.Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := snap.Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first != second {
		t.Fatal("same snapshot must return the memoized result")
	}

	label := "Invoice v2"
	if _, err := s.Update("invoice", Patch{Label: &label}); err != nil {
		t.Fatalf("update: %v", err)
	}
	third, err := s.Snapshot().Resolve("invoice")
	if err != nil {
		t.Fatalf("resolve after mutation: %v", err)
	}
	if third.Concept.Label != "Invoice v2" {
		t.Fatal("new snapshot must resolve fresh state")
	}
}

func chainIDs(chain []*Concept) []string {
	out := make([]string, len(chain))
	for i, c := range chain {
		out[i] = c.ID
	}
	return out
}

func propNames(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}

func groupSources(groups []InheritedGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.SourceID
	}
	return out
}
