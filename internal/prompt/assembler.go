package prompt

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"creatorcoach/internal/record"
)

// NoRelevantPosts is rendered instead of an empty posts section, so
// the model never sees an ambiguous blank block.
const NoRelevantPosts = "No relevant post found."

// Context carries the optional inputs for the system prompt's context
// block. Absent inputs omit their section entirely rather than
// rendering empty.
type Context struct {
	Profile  *record.CreatorProfile
	Posts    []record.ContentRecord
	Metrics  []Metric
	Question string
}

// Metric is a labeled value for the recent-metrics context section.
type Metric struct {
	Name  string
	Value string
}

// Assembler builds system and user prompts. Both products are pure
// functions of their inputs and the loaded template text.
type Assembler struct {
	manager *Manager
}

func NewAssembler(manager *Manager) *Assembler {
	return &Assembler{manager: manager}
}

// SystemPrompt returns the mode template followed by a structured
// context block.
func (a *Assembler) SystemPrompt(templateKey string, ctx Context) (string, error) {
	base, err := a.manager.Template(templateKey)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n# CURRENT CONTEXT\n")

	if ctx.Profile != nil {
		p := ctx.Profile
		sb.WriteString("\n## Creator profile\n")
		fmt.Fprintf(&sb, "- Username: @%s\n", p.Username)
		fmt.Fprintf(&sb, "- Followers: %s\n", humanize.Comma(int64(p.Followers)))
		fmt.Fprintf(&sb, "- Average engagement rate: %.2f%%\n", p.AvgEngagementRate)
		if p.Niche != "" {
			fmt.Fprintf(&sb, "- Niche: %s\n", p.Niche)
		}
	}

	if len(ctx.Metrics) > 0 {
		sb.WriteString("\n## Recent metrics\n")
		for _, m := range ctx.Metrics {
			fmt.Fprintf(&sb, "- %s: %s\n", m.Name, m.Value)
		}
	}

	if len(ctx.Posts) > 0 {
		var likes, comments int
		for _, p := range ctx.Posts {
			likes += p.Metrics.Likes
			comments += p.Metrics.Comments
		}
		n := len(ctx.Posts)
		sb.WriteString("\n## Content data\n")
		fmt.Fprintf(&sb, "- Posts analyzed: %d\n", n)
		fmt.Fprintf(&sb, "- Average likes: %.0f\n", float64(likes)/float64(n))
		fmt.Fprintf(&sb, "- Average comments: %.0f\n", float64(comments)/float64(n))
	}

	if ctx.Question != "" {
		fmt.Fprintf(&sb, "\n## User question\n%s\n", ctx.Question)
	}

	return sb.String(), nil
}

// UserPrompt returns the profile summary, the formatted retrieved
// posts in retrieval order, the question, and a closing instruction.
func (a *Assembler) UserPrompt(profile *record.CreatorProfile, question string, posts []record.ContentRecord) string {
	var sb strings.Builder

	sb.WriteString("CREATOR PROFILE:\n")
	if profile != nil {
		fmt.Fprintf(&sb, "- Username: @%s\n", profile.Username)
		fmt.Fprintf(&sb, "- Followers: %s\n", humanize.Comma(int64(profile.Followers)))
		fmt.Fprintf(&sb, "- Average engagement rate: %g%%\n", profile.AvgEngagementRate)
		fmt.Fprintf(&sb, "- Niche: %s\n", profile.Niche)
		fmt.Fprintf(&sb, "- Posting frequency: %s\n", profile.PostingFrequency)
	} else {
		sb.WriteString("- No profile loaded\n")
	}

	sb.WriteString("\nRELEVANT POSTS:\n")
	sb.WriteString(FormatPosts(posts))

	fmt.Fprintf(&sb, "\n\nQUESTION:\n%s\n", question)
	sb.WriteString("\nAnswer in a personalized way based on the data above.")

	return sb.String()
}

// FormatPosts renders one block per post in the given order, or the
// NoRelevantPosts sentinel when there are none.
func FormatPosts(posts []record.ContentRecord) string {
	if len(posts) == 0 {
		return NoRelevantPosts
	}

	blocks := make([]string, 0, len(posts))
	for i, p := range posts {
		var sb strings.Builder
		fmt.Fprintf(&sb, "POST %d:\n", i+1)
		fmt.Fprintf(&sb, "- Caption: %s\n", p.Caption)
		fmt.Fprintf(&sb, "- Type: %s\n", p.MediaType)
		fmt.Fprintf(&sb, "- Date: %s\n", p.Timestamp)
		fmt.Fprintf(&sb, "- Engagement: %g%%\n", p.Metrics.EngagementRate)
		fmt.Fprintf(&sb, "- Likes: %d | Comments: %d | Saves: %d\n",
			p.Metrics.Likes, p.Metrics.Comments, p.Metrics.Saves)
		fmt.Fprintf(&sb, "- Reach: %d | Impressions: %d\n",
			p.Metrics.Reach, p.Metrics.Impressions)
		fmt.Fprintf(&sb, "- Hashtags: %s", strings.Join(p.Hashtags, ", "))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}
