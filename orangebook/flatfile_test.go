package orangebook

import (
	"testing"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/entities"
)

func TestParseFlatFile(t *testing.T) {
	fields := []string{"a", "b", "c"}

	tests := []struct {
		name     string
		text     string
		expected []Record
	}{
		{
			name:     "empty text",
			text:     "",
			expected: []Record{},
		},
		{
			name:     "header only",
			text:     "A~B~C",
			expected: []Record{},
		},
		{
			name: "full rows are trimmed",
			text: "A~B~C\n 1 ~2~ 3\n4~5~6\n",
			expected: []Record{
				{"a": "1", "b": "2", "c": "3"},
				{"a": "4", "b": "5", "c": "6"},
			},
		},
		{
			name: "short rows are padded",
			text: "A~B~C\n1~2\n7",
			expected: []Record{
				{"a": "1", "b": "2", "c": ""},
				{"a": "7", "b": "", "c": ""},
			},
		},
		{
			name: "extra fields are ignored",
			text: "A~B~C\n1~2~3~4~5",
			expected: []Record{
				{"a": "1", "b": "2", "c": "3"},
			},
		},
		{
			name: "blank lines and CRLF",
			text: "A~B~C\r\n1~2~3\r\n\r\n   \r\n4~5~6\r\n",
			expected: []Record{
				{"a": "1", "b": "2", "c": "3"},
				{"a": "4", "b": "5", "c": "6"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFlatFile(tt.text, fields)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d records, got %d: %v", len(tt.expected), len(got), got)
			}
			for i, record := range got {
				if len(record) != len(fields) {
					t.Errorf("record %d has %d keys, want %d", i, len(record), len(fields))
				}
				for key, want := range tt.expected[i] {
					if record[key] != want {
						t.Errorf("record %d field %s = %q, want %q", i, key, record[key], want)
					}
				}
			}
		})
	}
}

func TestMakePatents(t *testing.T) {
	text := "Appl_Type~Appl_No~Product_No~Patent_No~Patent_Expire_Date_Text~Drug_Substance_Flag~Drug_Product_Flag~Patent_Use_Code~Delist_Flag~Submission_Date\n" +
		"N~211675~001~9999999~Oct 17, 2036~Y~~U-1~~Nov 1, 2018\n" +
		"N~211675~002~8888888~sometime~~y~~Y~\n"

	patents := makePatents(text)
	if len(patents) != 2 {
		t.Fatalf("expected 2 patents, got %d", len(patents))
	}

	first := patents[0]
	if first.ExpiryDateParsed != "2036-10-17" {
		t.Errorf("expected parsed expiry 2036-10-17, got %q", first.ExpiryDateParsed)
	}
	if !first.DrugSubstanceFlag || first.DrugProductFlag || first.DelistFlag {
		t.Errorf("unexpected flags on first patent: %+v", first)
	}
	if first.PatentUseCode != "U-1" || first.SubmissionDate != "Nov 1, 2018" {
		t.Errorf("unexpected text fields: %+v", first)
	}

	second := patents[1]
	if second.ExpiryDateParsed != "" {
		t.Errorf("expected empty parsed date, got %q", second.ExpiryDateParsed)
	}
	if second.ExpiryDateText != "sometime" {
		t.Errorf("expected raw text to be kept, got %q", second.ExpiryDateText)
	}
	if !second.DrugProductFlag || !second.DelistFlag {
		t.Errorf("expected lower-case and upper-case Y flags to be set: %+v", second)
	}
}

func TestMakeExclusivitiesAndProducts(t *testing.T) {
	exclusivities := makeExclusivities("h\nN~021234~001~NPP~Jan 5, 2027\n")
	if len(exclusivities) != 1 {
		t.Fatalf("expected 1 exclusivity, got %d", len(exclusivities))
	}
	e := exclusivities[0]
	if e.ExclusivityCode != "NPP" || e.ExclusivityDateParsed != "2027-01-05" || e.ExclusivityType != "" {
		t.Errorf("unexpected exclusivity: %+v", e)
	}

	products := makeProducts("h\nSEMAGLUTIDE~TABLET;ORAL~RYBELSUS~NOVO~3MG~N~213051~001~~Sep 20, 2019~Yes~No~RX~NOVO NORDISK INC\n")
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	p := products[0]
	if p.TradeName != "RYBELSUS" || p.ApplNo != "213051" || p.ApplicantFullName != "NOVO NORDISK INC" {
		t.Errorf("unexpected product: %+v", p)
	}
}

func TestParseOrangeBookDate(t *testing.T) {
	tests := []struct {
		input    string
		expected entities.ISODate
	}{
		{"Oct 17, 2036", "2036-10-17"},
		{"Oct 07, 2036", "2036-10-07"},
		{"Oct 7, 2036", "2036-10-07"},
		{"  Oct   7,  2036 ", "2036-10-07"},
		{"October 7, 2036", "2036-10-07"},
		{"10/07/2036", "2036-10-07"},
		{"2036-10-07", "2036-10-07"},
		{"", ""},
		{"   ", ""},
		{"Approved Prior to Jan 1, 1982", ""},
		{"Feb 30, 2030", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseOrangeBookDate(tt.input); got != tt.expected {
				t.Errorf("ParseOrangeBookDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
