package pricing

import "testing"

func countRecommended(pkgs []PackageDraft) int {
	n := 0
	for _, p := range pkgs {
		if p.IsRecommended {
			n++
		}
	}
	return n
}

func TestNormalizePackagesSynthesizes(t *testing.T) {
	got := NormalizePackages(nil, 500)
	if len(got) != 3 {
		t.Fatalf("tiers = %d, want 3", len(got))
	}
	if got[0].Price != 500 || got[1].Price != 700 || got[2].Price != 1000 {
		t.Fatalf("prices = %v %v %v, want 500 700 1000", got[0].Price, got[1].Price, got[2].Price)
	}
	if !got[1].IsRecommended {
		t.Fatal("middle tier must be recommended")
	}
	if countRecommended(got) != 1 {
		t.Fatalf("recommended count = %d, want 1", countRecommended(got))
	}

	// One or two candidates also synthesize rather than pad.
	got = NormalizePackages([]PackageDraft{{Name: "Solo", Price: 900}}, 500)
	if len(got) != 3 || got[0].Name != "Essential" {
		t.Fatalf("short candidate list must synthesize, got %+v", got)
	}
}

func TestNormalizePackagesSortsAndClamps(t *testing.T) {
	in := []PackageDraft{
		{Name: "Premium", Price: 2000},
		{Name: "Basic", Price: 100},
		{Name: "Standard", Price: 900, Features: []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
	}
	got := NormalizePackages(in, 500)
	if len(got) != 3 {
		t.Fatalf("tiers = %d, want 3", len(got))
	}
	if got[0].Name != "Basic" || got[2].Name != "Premium" {
		t.Fatalf("order = %q %q %q, want ascending price", got[0].Name, got[1].Name, got[2].Name)
	}
	if got[0].Price != 500 {
		t.Fatalf("cheapest price = %v, want clamped to floor 500", got[0].Price)
	}
	if len(got[1].Features) != 6 {
		t.Fatalf("features = %d, want truncated to 6", len(got[1].Features))
	}
	// No candidate flagged: the middle tier becomes the recommendation.
	if !got[1].IsRecommended {
		t.Fatal("middle tier must be recommended when none was flagged")
	}
}

func TestNormalizePackagesSingleRecommendation(t *testing.T) {
	in := []PackageDraft{
		{Name: "A", Price: 500, IsRecommended: true},
		{Name: "B", Price: 700, IsRecommended: true},
		{Name: "C", Price: 1000, IsRecommended: true},
	}
	got := NormalizePackages(in, 100)
	if countRecommended(got) != 1 {
		t.Fatalf("recommended count = %d, want 1", countRecommended(got))
	}
	if !got[0].IsRecommended {
		t.Fatal("first flagged tier must keep the recommendation")
	}
}

func TestNormalizePlansDefaults(t *testing.T) {
	got := NormalizePlans(nil, 1000)
	if len(got) != 3 {
		t.Fatalf("plans = %d, want 3", len(got))
	}
	if got[0].Type != "light" || got[0].Deposit != 300 || got[0].Total != 1000 {
		t.Fatalf("light = %+v", got[0])
	}
	if got[1].Type != "balanced" || got[1].Deposit != 500 {
		t.Fatalf("balanced = %+v", got[1])
	}
	// Full pay: 5% discount, deposit equals total.
	if got[2].Type != "full" || got[2].Total != 950 || got[2].Deposit != 950 {
		t.Fatalf("full = %+v", got[2])
	}
}

func TestNormalizePlansClamps(t *testing.T) {
	got := NormalizePlans([]PlanDraft{
		{Type: "light", DepositPercent: 0.05},                   // below the 20% floor
		{Type: "greedy", DepositPercent: 2},                     // above 100%
		{Type: "sale", DepositPercent: 1, DiscountPercent: 0.9}, // discount capped at 20%
		{Type: "blank"},                                         // zero percent defaults to half
	}, 1000)

	if got[0].Deposit != 200 {
		t.Fatalf("clamped low deposit = %v, want 200", got[0].Deposit)
	}
	if got[1].Deposit != 1000 {
		t.Fatalf("clamped high deposit = %v, want 1000", got[1].Deposit)
	}
	if got[2].Total != 800 {
		t.Fatalf("capped discount total = %v, want 800", got[2].Total)
	}
	if got[3].Deposit != 500 {
		t.Fatalf("defaulted deposit = %v, want 500", got[3].Deposit)
	}
	for _, p := range got {
		if p.Deposit > p.Total {
			t.Fatalf("plan %q deposit %v exceeds total %v", p.Type, p.Deposit, p.Total)
		}
		if p.Total <= 0 {
			t.Fatalf("plan %q total %v must be positive", p.Type, p.Total)
		}
	}
}
