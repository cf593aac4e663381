package splice

import "testing"

func TestSpliceSiteMembership(t *testing.T) {
	ref := []Structure{
		{{100, 200}, {300, 400}, {500, 600}},
	}

	t.Run("both sites known", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 200, Acceptor: 300}}, ref)
		want := []bool{true, true}
		checkSites(t, got, want)
	})

	t.Run("novel donor known acceptor", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 250, Acceptor: 300}}, ref)
		checkSites(t, got, []bool{false, true})
	})

	t.Run("known donor novel acceptor", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 400, Acceptor: 450}}, ref)
		checkSites(t, got, []bool{true, false})
	})

	t.Run("final exon end is not a donor", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 600, Acceptor: 700}}, ref)
		checkSites(t, got, []bool{false, false})
	})

	t.Run("first exon start is not an acceptor", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 50, Acceptor: 100}}, ref)
		checkSites(t, got, []bool{false, false})
	})

	t.Run("multiple junctions ordered", func(t *testing.T) {
		junctions := []Junction{
			{Donor: 200, Acceptor: 300},
			{Donor: 400, Acceptor: 550},
		}
		got := SpliceSiteMembership(junctions, ref)
		checkSites(t, got, []bool{true, true, true, false})
	})

	t.Run("sites from different structures", func(t *testing.T) {
		refs := []Structure{
			{{100, 200}, {300, 400}},
			{{100, 250}, {320, 400}},
		}
		junctions := []Junction{{Donor: 250, Acceptor: 300}}
		got := SpliceSiteMembership(junctions, refs)
		checkSites(t, got, []bool{true, true})
	})

	t.Run("single exon structures contribute nothing", func(t *testing.T) {
		refs := []Structure{{{100, 600}}}
		got := SpliceSiteMembership([]Junction{{Donor: 200, Acceptor: 300}}, refs)
		checkSites(t, got, []bool{false, false})
	})

	t.Run("no junctions", func(t *testing.T) {
		got := SpliceSiteMembership(nil, ref)
		if len(got) != 0 {
			t.Fatalf("got %v, want empty", got)
		}
	})

	t.Run("no structures", func(t *testing.T) {
		got := SpliceSiteMembership([]Junction{{Donor: 200, Acceptor: 300}}, nil)
		checkSites(t, got, []bool{false, false})
	})
}

func checkSites(t *testing.T, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("site %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
