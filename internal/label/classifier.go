// Package label decides whether an extracted figure is usable as a training
// label.
//
// A figure is a bad label when its text boxes suggest the figure is a
// rasterized image without embedded text (no text, a single stray box, or
// text squeezed into a caption strip) or when it is mostly text (equations or
// tables misclassified as charts). The checks run as an ordered list of named
// rules; the first rule that fires decides the verdict.
package label

import (
	"github.com/ironsheep/chartmask/internal/figure"
	"github.com/ironsheep/chartmask/internal/geometry"
)

// Reason identifies the rule that rejected a figure.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonNoText        Reason = "no_text"
	ReasonSingleText    Reason = "single_text"
	ReasonBorderOnly    Reason = "border_only"
	ReasonTextDominates Reason = "text_dominates"
)

// Description returns a human-readable explanation of the reason.
func (r Reason) Description() string {
	switch r {
	case ReasonNone:
		return "good label"
	case ReasonNoText:
		return "no text"
	case ReasonSingleText:
		return "one text label"
	case ReasonBorderOnly:
		return "all text is in upper or lower border"
	case ReasonTextDominates:
		return "almost everything is text"
	default:
		return string(r)
	}
}

const (
	// BorderFraction is the share of the figure height treated as the top
	// and bottom border bands.
	BorderFraction = 0.05

	// MaxTextFraction is the share of the figure area text may cover.
	MaxTextFraction = 0.5
)

// Rule is one named rejection check. Check returns true when the figure
// should be rejected.
type Rule struct {
	Reason Reason
	Check  func(fig figure.Figure) bool
}

// DefaultRules returns the rejection rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Reason: ReasonNoText, Check: hasNoText},
		{Reason: ReasonSingleText, Check: hasSingleText},
		{Reason: ReasonBorderOnly, Check: allInBorder},
		{Reason: ReasonTextDominates, Check: textDominates},
	}
}

// Verdict is the classifier output.
type Verdict struct {
	Bad    bool   `json:"bad"`
	Reason Reason `json:"reason,omitempty"`
}

// Classifier evaluates a list of rules against figures.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules. With no rules it uses
// DefaultRules.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify runs the rules in order and stops at the first one that fires.
func (c *Classifier) Classify(fig figure.Figure) Verdict {
	for _, r := range c.rules {
		if r.Check(fig) {
			return Verdict{Bad: true, Reason: r.Reason}
		}
	}
	return Verdict{}
}

var defaultClassifier = NewClassifier()

// Classify applies the default rules to fig.
func Classify(fig figure.Figure) Verdict {
	return defaultClassifier.Classify(fig)
}

// IsBad reports whether fig is unusable as a training label.
func IsBad(fig figure.Figure) bool {
	return Classify(fig).Bad
}

func hasNoText(fig figure.Figure) bool {
	return len(fig.ImageText) == 0
}

func hasSingleText(fig figure.Figure) bool {
	return len(fig.ImageText) == 1
}

// allInBorder reports whether the text never covers both the region below
// the top band and the region above the bottom band. The figure is accepted
// only once some box lies strictly inside the not-top region and some
// (possibly different) box lies strictly inside the not-bottom region.
func allInBorder(fig figure.Figure) bool {
	bb := fig.ImageBB
	band := bb.Height() * BorderFraction

	notTop := geometry.NewRect(bb.X0, bb.Y0+band, bb.X1, bb.Y1)
	notBottom := geometry.NewRect(bb.X0, bb.Y0, bb.X1, bb.Y1-band)

	var top, bottom bool
	for _, tb := range fig.ImageText {
		if geometry.Contains(tb.TextBB, notTop) {
			top = true
		}
		if geometry.Contains(tb.TextBB, notBottom) {
			bottom = true
		}
		if top && bottom {
			return false
		}
	}
	return true
}

// textDominates sums text areas in order and fires as soon as the running
// total exceeds MaxTextFraction of the figure area.
func textDominates(fig figure.Figure) bool {
	limit := geometry.Area(fig.ImageBB) * MaxTextFraction
	var sum float64
	for _, tb := range fig.ImageText {
		sum += geometry.Area(tb.TextBB)
		if sum > limit {
			return true
		}
	}
	return false
}
