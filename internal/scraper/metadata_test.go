package scraper

import "testing"

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dd-mm-yyyy", "issued on 15-02-2024 by the department", "2024-02-15"},
		{"dd/mm/yyyy", "dated 08/12/2023", "2023-12-08"},
		{"yyyy-mm-dd", "effective 2024-04-01 onwards", "2024-04-01"},
		{"month first", "Published February 15, 2024", "2024-02-15"},
		{"day first", "issued 5 March 2024", "2024-03-05"},
		{"no date", "no date in this text", ""},
		{"invalid day-first numeric", "99-99-2024", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDate(tt.in); got != tt.want {
				t.Errorf("ExtractDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanTitle(t *testing.T) {
	if got := CleanTitle("  Master   Direction \n on KYC  "); got != "Master Direction on KYC" {
		t.Errorf("CleanTitle() = %q", got)
	}
	if got := CleanTitle(""); got != "" {
		t.Errorf("CleanTitle(\"\") = %q, want empty", got)
	}
}

func TestDetermineSection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"RBI Notification on deposits", "Notifications"},
		{"Master Circular on KYC", "Circulars"},
		{"Order under section 119", "Orders"},
		{"Press Release 2024", "Press Releases"},
		{"Governor's speech at summit", "Speeches"},
		{"miscellaneous document", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := DetermineSection(tt.in); got != tt.want {
				t.Errorf("DetermineSection(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildFilename(t *testing.T) {
	tests := []struct {
		name            string
		title, date     string
		section, ext    string
		want            string
	}{
		{"full", "KYC Master Direction", "2024-02-15", "Circulars", ".pdf", "Circulars_KYC_Master_Direction_2024-02-15.pdf"},
		{"missing date and section", "Some Doc", "", "", "", "Document_Some_Doc_NODATE.pdf"},
		{"strips unsafe chars", "Rates: 8.5% (revised)!", "2024-01-01", "Orders", ".pdf", "Orders_Rates_85_revised_2024-01-01.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildFilename(tt.title, tt.date, tt.section, tt.ext); got != tt.want {
				t.Errorf("BuildFilename() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("caps title at 50 chars", func(t *testing.T) {
		long := "aaaaaaaaaabbbbbbbbbbccccccccccddddddddddeeeeeeeeeeffffffffff"
		got := BuildFilename(long, "2024-01-01", "Other", ".pdf")
		want := "Other_" + long[:50] + "_2024-01-01.pdf"
		if got != want {
			t.Errorf("BuildFilename() = %q, want %q", got, want)
		}
	})
}

func TestRelevanceFilter(t *testing.T) {
	f := NewRelevanceFilter([]string{"bank"}, []string{`basel`})

	tests := []struct {
		name string
		doc  DocumentRef
		want bool
	}{
		{"citizen keyword in title", DocumentRef{Title: "Circular on deposits"}, true},
		{"extra keyword", DocumentRef{Title: "bank holidays 2024"}, true},
		{"keyword in link", DocumentRef{Title: "Update", DownloadURL: "https://x/notification_2024.pdf"}, true},
		{"technical veto beats keyword", DocumentRef{Title: "Basel III circular"}, false},
		{"base technical pattern", DocumentRef{Title: "internal memo on circulars"}, false},
		{"nothing matches", DocumentRef{Title: "quarterly statistics annexure"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.IsCitizenRelevant(tt.doc); got != tt.want {
				t.Errorf("IsCitizenRelevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	f := NewRelevanceFilter(nil, nil)

	docs := []DocumentRef{
		{Title: "Public notice on forms"},
		{Title: "system update window"},
		{Title: "Advisory for citizens"},
	}

	citizen, technical := f.Partition(docs)
	if len(citizen) != 2 {
		t.Errorf("len(citizen) = %d, want 2", len(citizen))
	}
	if len(technical) != 1 {
		t.Errorf("len(technical) = %d, want 1", len(technical))
	}
}
