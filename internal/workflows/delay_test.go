package workflows

import "testing"

func TestParseDelayToMinutes(t *testing.T) {
	tests := []struct {
		name  string
		input *string
		want  int
	}{
		{"nil defaults", nil, DefaultDelayMinutes},
		{"empty defaults", ptr(""), DefaultDelayMinutes},
		{"blank defaults", ptr("   "), DefaultDelayMinutes},
		{"bare number is minutes", ptr("45"), 45},
		{"zero is immediate", ptr("0"), 0},
		{"negative defaults", ptr("-5"), DefaultDelayMinutes},
		{"minutes unit", ptr("30 minutes"), 30},
		{"singular minute", ptr("1 minute"), 1},
		{"min shorthand", ptr("15 min"), 15},
		{"hours unit", ptr("24 hours"), 1440},
		{"singular hour", ptr("1 hour"), 60},
		{"hr shorthand", ptr("2 hrs"), 120},
		{"days unit", ptr("3 days"), 4320},
		{"singular day", ptr("1 day"), 1440},
		{"mixed case", ptr("2 Hours"), 120},
		{"surrounding whitespace", ptr("  30 minutes  "), 30},
		{"unknown unit defaults", ptr("5 weeks"), DefaultDelayMinutes},
		{"garbage defaults", ptr("soon"), DefaultDelayMinutes},
		{"too many words defaults", ptr("3 business days"), DefaultDelayMinutes},
		{"non-numeric count defaults", ptr("three days"), DefaultDelayMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDelayToMinutes(tt.input); got != tt.want {
				t.Fatalf("ParseDelayToMinutes(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestDefaultCatalogCoversEveryCategory(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != 15 {
		t.Fatalf("expected 15 catalog stages, got %d", len(catalog))
	}

	seen := map[string]bool{}
	for _, entry := range catalog {
		key := entry.Category + "/" + entry.Title
		if seen[key] {
			t.Fatalf("duplicate catalog entry %q", key)
		}
		seen[key] = true
		if entry.TriggerTopic == "" {
			t.Fatalf("catalog entry %q has no trigger topic", entry.Title)
		}
	}

	for _, category := range []string{CategoryAbandonedCart, CategoryOrderLifecycle, CategoryCOD, CategoryCustomer, CategoryPostPurchase} {
		found := false
		for _, entry := range catalog {
			if entry.Category == category {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no catalog entry for category %q", category)
		}
	}
}

func ptr(s string) *string { return &s }
