package voice

import "strings"

var markdownReplacer = strings.NewReplacer(
	"**", "",
	"__", "",
	"*", "",
	"_", "",
	"### ", "",
	"## ", "",
	"# ", "",
	"`", "",
)

// CleanForSpeech strips markdown markers and collapses whitespace so
// the synthesizer does not read formatting aloud.
func CleanForSpeech(text string) string {
	clean := markdownReplacer.Replace(text)
	return strings.Join(strings.Fields(clean), " ")
}
