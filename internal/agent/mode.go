// Package agent selects an advisory mode, assembles the prompts and
// requests completions from the language model.
package agent

// Mode is the closed set of advisory personas. Each maps 1:1 to a
// prompt template key; the switch in TemplateKey is the exhaustive
// mapping, so adding a mode without a template is a compile-time todo
// surfaced right here.
type Mode string

const (
	ModeContentAnalyst Mode = "content_analyst"
	ModeMonetization   Mode = "monetization"
	ModeStrategy       Mode = "strategy"
	ModeAudience       Mode = "audience"
	ModeVoiceImpact    Mode = "voice_impact"
)

// DefaultMode is the documented fallback for unrecognized mode strings.
const DefaultMode = ModeContentAnalyst

// Modes lists every mode in presentation order.
func Modes() []Mode {
	return []Mode{
		ModeContentAnalyst,
		ModeMonetization,
		ModeStrategy,
		ModeAudience,
		ModeVoiceImpact,
	}
}

// Resolve maps a mode string to a Mode, falling back to DefaultMode
// for anything unrecognized. Deliberately lenient: boundary callers
// send free-form strings and must never get a fatal error here.
func Resolve(s string) Mode {
	switch Mode(s) {
	case ModeContentAnalyst, ModeMonetization, ModeStrategy, ModeAudience, ModeVoiceImpact:
		return Mode(s)
	}
	return DefaultMode
}

// TemplateKey returns the prompt template key for the mode.
func (m Mode) TemplateKey() string {
	switch m {
	case ModeContentAnalyst:
		return "content_analyst"
	case ModeMonetization:
		return "monetization_advisor"
	case ModeStrategy:
		return "content_strategy"
	case ModeAudience:
		return "audience_insights"
	case ModeVoiceImpact:
		return "voice_impact_summary"
	}
	return DefaultMode.TemplateKey()
}

// Description returns the human-readable summary shown by the API's
// mode listing.
func (m Mode) Description() string {
	switch m {
	case ModeContentAnalyst:
		return "Performance analysis: evaluates your posts and identifies what works"
	case ModeMonetization:
		return "Monetization: advice on partnerships and revenue"
	case ModeStrategy:
		return "Content strategy: planning and creation ideas"
	case ModeAudience:
		return "Audience insights: understand your community"
	case ModeVoiceImpact:
		return "Voice summary: generates an audio recap of your latest post's impact"
	}
	return "Unknown mode"
}
