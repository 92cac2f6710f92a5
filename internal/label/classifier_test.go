package label

import (
	"testing"

	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/geometry"
)

func makeFigure(bb geometry.Rect, boxes ...geometry.Rect) figure.Figure {
	fig := figure.Figure{Page: 1, ImageBB: bb, ImageText: []figure.TextBox{}}
	for _, b := range boxes {
		fig.ImageText = append(fig.ImageText, figure.TextBox{TextBB: b})
	}
	return fig
}

func TestClassify(t *testing.T) {
	bb := geometry.NewRect(0, 0, 200, 100)

	tests := []struct {
		name   string
		fig    figure.Figure
		want   Reason
		wantOK bool
	}{
		{
			name: "no text",
			fig:  makeFigure(bb),
			want: ReasonNoText,
		},
		{
			name: "single text box",
			fig:  makeFigure(bb, geometry.NewRect(50, 40, 70, 50)),
			want: ReasonSingleText,
		},
		{
			name: "text only in top band",
			fig: makeFigure(bb,
				geometry.NewRect(10, 1, 30, 4),
				geometry.NewRect(50, 1, 70, 4),
			),
			want: ReasonBorderOnly,
		},
		{
			name: "text only in bottom band",
			fig: makeFigure(bb,
				geometry.NewRect(10, 96, 30, 99),
				geometry.NewRect(50, 96, 70, 99),
			),
			want: ReasonBorderOnly,
		},
		{
			name: "text mostly covers figure",
			fig: makeFigure(bb,
				geometry.NewRect(10, 10, 190, 50),
				geometry.NewRect(10, 55, 190, 90),
			),
			want: ReasonTextDominates,
		},
		{
			name: "three modest boxes in the middle",
			fig: makeFigure(bb,
				geometry.NewRect(20, 20, 40, 26),
				geometry.NewRect(90, 45, 120, 52),
				geometry.NewRect(150, 70, 170, 76),
			),
			want:   ReasonNone,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Classify(tt.fig)
			if v.Reason != tt.want {
				t.Errorf("Reason = %q, want %q", v.Reason, tt.want)
			}
			if v.Bad == tt.wantOK {
				t.Errorf("Bad = %v, want %v", v.Bad, !tt.wantOK)
			}
			if IsBad(tt.fig) != v.Bad {
				t.Error("IsBad disagrees with Classify")
			}
		})
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	// A single huge box would also trip the area rule; the count rule wins.
	fig := makeFigure(geometry.NewRect(0, 0, 100, 100), geometry.NewRect(1, 1, 99, 99))
	if got := Classify(fig).Reason; got != ReasonSingleText {
		t.Errorf("Reason = %q, want %q", got, ReasonSingleText)
	}
}

func TestAllInBorder_NeedsBothFlags(t *testing.T) {
	bb := geometry.NewRect(0, 0, 100, 100)

	// Box touching the top band is only inside not-bottom; box touching the
	// bottom band is only inside not-top. Together both flags are set.
	fig := makeFigure(bb,
		geometry.NewRect(10, 2, 20, 50),
		geometry.NewRect(30, 50, 40, 98),
	)
	if allInBorder(fig) {
		t.Error("boxes covering both regions together should be accepted")
	}

	// Only the not-bottom flag ever becomes true.
	fig = makeFigure(bb,
		geometry.NewRect(10, 2, 20, 50),
		geometry.NewRect(30, 3, 40, 60),
	)
	if !allInBorder(fig) {
		t.Error("boxes that all reach into the top band should be rejected")
	}
}

func TestAllInBorder_OffsetFigure(t *testing.T) {
	bb := geometry.NewRect(100, 300, 400, 500)
	fig := makeFigure(bb,
		geometry.NewRect(150, 350, 200, 360),
		geometry.NewRect(250, 400, 300, 420),
	)
	if allInBorder(fig) {
		t.Error("text in the middle of an offset figure should be accepted")
	}
}

func TestTextDominates_StrictThreshold(t *testing.T) {
	bb := geometry.NewRect(0, 0, 10, 10) // area 100, limit 50

	exact := makeFigure(bb, geometry.NewRect(1, 1, 6, 6), geometry.NewRect(1, 1, 6, 6))
	if textDominates(exact) {
		t.Error("sum equal to the limit should not fire")
	}

	over := makeFigure(bb,
		geometry.NewRect(1, 1, 6, 6),
		geometry.NewRect(1, 1, 6, 6),
		geometry.NewRect(1, 1, 2, 2),
	)
	if !textDominates(over) {
		t.Error("sum above the limit should fire")
	}
}

func TestNewClassifier_CustomRules(t *testing.T) {
	tiny := Rule{
		Reason: "tiny_figure",
		Check: func(fig figure.Figure) bool {
			return geometry.Area(fig.ImageBB) < 10
		},
	}
	c := NewClassifier(append(DefaultRules(), tiny)...)

	fig := makeFigure(geometry.NewRect(0, 0, 3, 3),
		geometry.NewRect(0.5, 0.5, 1, 1),
		geometry.NewRect(1.5, 1.5, 2, 2),
	)
	if v := c.Classify(fig); v.Reason != "tiny_figure" {
		t.Errorf("Reason = %q, want tiny_figure", v.Reason)
	}
}

func TestReason_Description(t *testing.T) {
	if ReasonBorderOnly.Description() == "" || ReasonNone.Description() != "good label" {
		t.Error("unexpected descriptions")
	}
	if Reason("custom").Description() != "custom" {
		t.Error("unknown reasons should describe themselves")
	}
}
