package catalog

import (
	"reflect"
	"strings"
	"testing"
)

func TestSegmentBracketAware(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "compound with bracket details",
			raw:  "Synthesizer [Oberheim, Prophet V], Producer",
			want: []string{"Synthesizer", "Oberheim", "Prophet V", "Producer"},
		},
		{
			name: "plain comma split",
			raw:  "Producer, Bass, Drums",
			want: []string{"Producer", "Bass", "Drums"},
		},
		{
			name: "single role",
			raw:  "Vocals",
			want: []string{"Vocals"},
		},
		{
			name: "comma inside brackets does not split",
			raw:  "Piano [Fender Rhodes, Wurlitzer]",
			want: []string{"Piano", "Fender Rhodes", "Wurlitzer"},
		},
		{
			name: "bracket detail order preserved",
			raw:  "Producer, Synthesizer [Moog], Vocals",
			want: []string{"Producer", "Synthesizer", "Moog", "Vocals"},
		},
		{
			name: "empty string",
			raw:  "",
			want: nil,
		},
		{
			name: "whitespace only",
			raw:  "   ",
			want: nil,
		},
		{
			name: "unclosed bracket treated as detail list",
			raw:  "Synthesizer [Minimoog",
			want: []string{"Synthesizer", "Minimoog"},
		},
	}

	seg := NewSegmenter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Segment(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segment(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSegmentNoiseFiltering(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "bare year discarded",
			raw:  "Producer [1982]",
			want: []string{"Producer"},
		},
		{
			name: "side letter discarded",
			raw:  "Guitar [A1]",
			want: []string{"Guitar"},
		},
		{
			name: "side range discarded",
			raw:  "Drums [A1 to A4]",
			want: []string{"Drums"},
		},
		{
			name: "generic word discarded",
			raw:  "Engineer [Uncredited]",
			want: []string{"Engineer"},
		},
		{
			name: "equipment survives next to noise",
			raw:  "Synthesizer [Moog, 1975, Uncredited]",
			want: []string{"Synthesizer", "Moog"},
		},
		{
			name: "unknown detail passes through",
			raw:  "Vocals [Lead]",
			want: []string{"Vocals", "Lead"},
		},
	}

	seg := NewSegmenter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := seg.Segment(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Segment(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSegmentEquipmentCanonicalized(t *testing.T) {
	seg := NewSegmenter()

	got := seg.Segment("Keyboards [prophet 5, rhodes]")
	want := []string{"Keyboards", "Prophet V", "Fender Rhodes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Segment = %v, want %v", got, want)
	}
}

func TestSegmentCompanyFilter(t *testing.T) {
	seg := NewSegmenter()

	got := seg.Segment("Producer [Westlake Studios]")
	want := []string{"Producer"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("default filter: Segment = %v, want %v", got, want)
	}

	// The predicate is swappable; a stricter one changes the verdict.
	seg.IsCompany = func(detail string) bool {
		return strings.Contains(strings.ToLower(detail), "ltd")
	}
	got = seg.Segment("Producer [Westlake Studios]")
	want = []string{"Producer", "Westlake Studios"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("custom filter: Segment = %v, want %v", got, want)
	}
}

func TestDefaultCompanyFilter(t *testing.T) {
	tests := []struct {
		detail string
		want   bool
	}{
		{"Westlake Studios", true},
		{"Island Records", true},
		{"EMI Publishing", true},
		{"Acme Ltd", true},
		{"Moog", false},
		{"Lead", false},
	}
	for _, tt := range tests {
		if got := DefaultCompanyFilter(tt.detail); got != tt.want {
			t.Errorf("DefaultCompanyFilter(%q) = %v, want %v", tt.detail, got, tt.want)
		}
	}
}
