package render

import (
	"html/template"

	"gdprcheck/internal/catalog"
)

// Status is the presentation of one compliance verdict. Every place that
// shows a verdict (page styles, badge, copy, console output, feed) reads it
// from statuses rather than switching on the verdict itself.
type Status struct {
	Compliance catalog.Compliance
	// Color is the accent colour token used for the badge.
	Color template.CSS
	Glyph string
	Label string
	// Heading completes "Why ..." above the reason.
	Heading string
	// LegalSummary follows the tool name in the legal-context paragraph.
	LegalSummary string
	// ActionsIntro introduces the recommended actions. {name} is replaced
	// with the tool name.
	ActionsIntro string
	// Recommend is true when the page should push an alternative.
	Recommend bool
}

const (
	legalSummaryOK = "either processes data within the EU or provides adequate safeguards for GDPR compliance."
	legalSummaryUS = "is based in or sends data to the US, which currently lacks an adequacy decision following Schrems II. This makes compliance complex."
)

var statuses = map[catalog.Compliance]Status{
	catalog.Compliant: {
		Compliance:   catalog.Compliant,
		Color:        "#10b981",
		Glyph:        "✅",
		Label:        "✅ GDPR Compliant",
		Heading:      "It's Compliant",
		LegalSummary: legalSummaryOK,
		ActionsIntro: "{name} appears to be GDPR-compliant, but always:",
	},
	catalog.Partial: {
		Compliance:   catalog.Partial,
		Color:        "#f59e0b",
		Glyph:        "⚠️",
		Label:        "⚠️ Partial Compliance",
		Heading:      "It's Not Compliant",
		LegalSummary: legalSummaryUS,
		ActionsIntro: "Consider these steps:",
		Recommend:    true,
	},
	catalog.NonCompliant: {
		Compliance:   catalog.NonCompliant,
		Color:        "#ef4444",
		Glyph:        "❌",
		Label:        "❌ Not GDPR Compliant",
		Heading:      "It's Not Compliant",
		LegalSummary: legalSummaryUS,
		ActionsIntro: "Consider these steps:",
		Recommend:    true,
	},
}

// StatusFor returns the presentation for c. Invalid verdicts fall back to
// the non-compliant presentation.
func StatusFor(c catalog.Compliance) Status {
	if s, ok := statuses[c]; ok {
		return s
	}
	return statuses[catalog.NonCompliant]
}
