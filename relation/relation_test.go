package relation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOppositeInvolution(t *testing.T) {
	for _, d := range Dimensions {
		for _, tok := range d.Tokens() {
			opp := tok.Opposite()
			if opp == tok {
				t.Errorf("%s: opposite is itself", tok)
			}
			if !opp.In(d) {
				t.Errorf("%s: opposite %s left dimension %s", tok, opp, d)
			}
			if got := opp.Opposite(); got != tok {
				t.Errorf("opposite(opposite(%s)) = %s", tok, got)
			}
		}
	}
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		in      string
		want    Token
		wantErr bool
	}{
		{in: "north", want: North},
		{in: " Borders ", want: Borders},
		{in: "FAR", want: Far},
		{in: "northeast", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseToken(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseToken(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewTableDropsForeignTokens(t *testing.T) {
	tbl := NewTable(Direction, []Fact{
		{Subject: "A", Object: "B", Relation: North},
		{Subject: "A", Object: "C", Relation: Near},
		{Subject: "B", Object: "C", Relation: "northwest"},
	})
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 fact, got %d", tbl.Len())
	}
}

func TestIndexLookups(t *testing.T) {
	tbl := NewTable(Distance, []Fact{
		{Subject: "A", Object: "B", Relation: Near},
		{Subject: "A", Object: "C", Relation: Near},
		{Subject: "D", Object: "B", Relation: Near},
		{Subject: "A", Object: "E", Relation: Far},
	})
	ix := NewIndex(Distance, tbl)

	if diff := cmp.Diff([]string{"B", "C"}, ix.Objects("A", Near)); diff != "" {
		t.Errorf("Objects mismatch (-want +got):\n%s", diff)
	}
	if got := ix.Objects("A", Close); len(got) != 0 {
		t.Errorf("missing key should be empty, got %v", got)
	}
	if got := ix.Objects("Z", Near); len(got) != 0 {
		t.Errorf("unknown place should be empty, got %v", got)
	}
	if diff := cmp.Diff([]string{"A", "D"}, ix.SubjectsRelatedTo("B", Near)); diff != "" {
		t.Errorf("SubjectsRelatedTo mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "D"}, ix.Subjects()); diff != "" {
		t.Errorf("Subjects mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Token{Near, Far}, ix.Tokens("A")); diff != "" {
		t.Errorf("Tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenProductSize(t *testing.T) {
	tests := []struct {
		dims []Dimension
		want int
	}{
		{[]Dimension{Direction}, 4},
		{[]Dimension{Topology}, 2},
		{[]Dimension{Direction, Topology}, 8},
		{[]Dimension{Distance, Direction}, 16},
		{[]Dimension{Direction, Topology, Distance}, 32},
	}
	for _, tt := range tests {
		if got := len(TokenProduct(tt.dims)); got != tt.want {
			t.Errorf("TokenProduct(%v) = %d combinations, want %d", tt.dims, got, tt.want)
		}
	}
	first := TokenProduct([]Dimension{Direction, Topology, Distance})[0]
	if diff := cmp.Diff([]Token{North, Within, Near}, first); diff != "" {
		t.Errorf("first combination mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverSingleWitness(t *testing.T) {
	ix := BuildIndexes(
		NewTable(Direction, []Fact{{Subject: "X", Object: "W", Relation: West}}),
		NewTable(Topology, []Fact{{Subject: "X", Object: "Y", Relation: Within}}),
		NewTable(Distance, []Fact{{Subject: "X", Object: "Z", Relation: Far}}),
	)
	combos, err := Discover(ix, []Dimension{Direction, Topology, Distance})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(combos) != 1 {
		t.Fatalf("expected exactly one viable combination, got %d", len(combos))
	}
	c := combos[0]
	if c.Key() != "west/within/far" {
		t.Errorf("combination key = %q", c.Key())
	}
	if diff := cmp.Diff([]string{"X"}, c.Witnesses); diff != "" {
		t.Errorf("witnesses mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverEmptyIntersection(t *testing.T) {
	ix := BuildIndexes(
		NewTable(Direction, []Fact{{Subject: "A", Object: "B", Relation: North}}),
		NewTable(Topology, []Fact{{Subject: "C", Object: "D", Relation: Borders}}),
	)
	combos, err := Discover(ix, []Dimension{Direction, Topology})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(combos) != 0 {
		t.Fatalf("expected no combinations, got %d", len(combos))
	}
}

func TestDiscoverMissingIndex(t *testing.T) {
	ix := BuildIndexes(NewTable(Direction, nil))
	if _, err := Discover(ix, []Dimension{Direction, Distance}); err == nil {
		t.Fatal("expected error for missing distance index")
	}
}

func TestPlaces(t *testing.T) {
	got := Places(
		NewTable(Direction, []Fact{{Subject: "B", Object: "A", Relation: North}}),
		nil,
		NewTable(Topology, []Fact{{Subject: "C", Object: "A", Relation: Within}}),
	)
	if diff := cmp.Diff([]string{"A", "B", "C"}, got); diff != "" {
		t.Errorf("Places mismatch (-want +got):\n%s", diff)
	}
}
