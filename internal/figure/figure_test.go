package figure

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/chartmask/internal/geometry"
)

const sampleRecord = `{
	"Page": 3,
	"ImageBB": [100, 200, 500, 500],
	"ImageText": [
		{"TextBB": [120, 220, 180, 240], "Text": "Time"},
		{"TextBB": [300, 400, 350, 420]}
	],
	"Caption": "Figure 2: results"
}`

func TestDecode(t *testing.T) {
	fig, err := Decode([]byte(sampleRecord))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if fig.Page != 3 {
		t.Errorf("Page = %d, want 3", fig.Page)
	}
	if fig.ImageBB != geometry.NewRect(100, 200, 500, 500) {
		t.Errorf("ImageBB = %v", fig.ImageBB)
	}
	if len(fig.ImageText) != 2 {
		t.Fatalf("ImageText has %d boxes, want 2", len(fig.ImageText))
	}
	if fig.ImageText[0].Text != "Time" {
		t.Errorf("Text = %q, want Time", fig.ImageText[0].Text)
	}
	if fig.ImageText[1].TextBB != geometry.NewRect(300, 400, 350, 420) {
		t.Errorf("second TextBB = %v", fig.ImageText[1].TextBB)
	}
	if fig.Caption != "Figure 2: results" {
		t.Errorf("Caption = %q", fig.Caption)
	}
}

func TestDecode_EmptyTextIsValid(t *testing.T) {
	fig, err := Decode([]byte(`{"Page": 1, "ImageBB": [0,0,10,10], "ImageText": []}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(fig.ImageText) != 0 {
		t.Errorf("expected no text boxes, got %d", len(fig.ImageText))
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"Page":`},
		{"missing ImageBB", `{"Page": 1, "ImageText": []}`},
		{"missing ImageText", `{"Page": 1, "ImageBB": [0,0,1,1]}`},
		{"missing Page", `{"ImageBB": [0,0,1,1], "ImageText": []}`},
		{"zero Page", `{"Page": 0, "ImageBB": [0,0,1,1], "ImageText": []}`},
		{"negative Page", `{"Page": -2, "ImageBB": [0,0,1,1], "ImageText": []}`},
		{"short ImageBB", `{"Page": 1, "ImageBB": [0,0,1], "ImageText": []}`},
		{"unordered ImageBB", `{"Page": 1, "ImageBB": [5,0,1,1], "ImageText": []}`},
		{"text box without TextBB", `{"Page": 1, "ImageBB": [0,0,1,1], "ImageText": [{"Text": "a"}]}`},
		{"short TextBB", `{"Page": 1, "ImageBB": [0,0,1,1], "ImageText": [{"TextBB": [0,0]}]}`},
		{"unordered TextBB", `{"Page": 1, "ImageBB": [0,0,9,9], "ImageText": [{"TextBB": [0,5,1,1]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("expected ErrMalformedRecord, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	fig, err := Decode([]byte(sampleRecord))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fig.json")
	if err := Save(path, fig); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.ImageBB != fig.ImageBB || len(loaded.ImageText) != len(fig.ImageText) {
		t.Errorf("loaded figure differs: %+v", loaded)
	}
}

func TestRead(t *testing.T) {
	fig, err := Read(strings.NewReader(sampleRecord))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if fig.Page != 3 {
		t.Errorf("Page = %d", fig.Page)
	}
}

func TestNames(t *testing.T) {
	n := Names{Ident: "paper", Index: 2}

	tests := []struct {
		got, want string
	}{
		{n.ID(), "paper-Figure-2"},
		{n.JSON(), "paper-Figure-2.json"},
		{n.Image(1), "paper-Figure-2.png"},
		{n.Image(2), "paper-Figure-2-2x.png"},
		{n.Label(), "paper-Figure-2-label.png"},
		{n.Debug(), "paper-Figure-2-dbg.png"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestIdentFromPath(t *testing.T) {
	if got := IdentFromPath("/data/pdfs/paper.v2.pdf"); got != "paper.v2" {
		t.Errorf("IdentFromPath = %q", got)
	}
}

func TestIDFromRecordName(t *testing.T) {
	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"paper-Figure-3.json", "paper-Figure-3", true},
		{"out/json/paper-Figure-12.json", "out/json/paper-Figure-12", true},
		{"paper-Figure-3.png", "", false},
		{"notes.json", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IDFromRecordName(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("IDFromRecordName(%q) = %q, %v", tt.name, got, ok)
			}
		})
	}
}
