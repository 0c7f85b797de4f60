package content

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"subpulse/pkg/contracts/domain"
)

// Converter turns exported post HTML into markdown. Platform chrome
// (buttons, share icons, subscribe prompts) is stripped; embeds collapse to
// short placeholder notes.
type Converter struct {
	converter *md.Converter
}

// NewConverter builds a converter with the platform-specific rules applied.
func NewConverter() *Converter {
	converter := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		HorizontalRule:   "---",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		EmDelimiter:      "*",
		StrongDelimiter:  "**",
		LinkStyle:        "inlined",
	})

	converter.Remove("script", "style", "noscript", "button", "svg")
	converter.Keep("sup", "sub")

	converter.AddRules(
		divRule(),
		mentionRule(),
		iframeRule(),
		subscribeLinkRule(),
	)

	return &Converter{converter: converter}
}

// divRule handles the platform's div-based widgets: captioned images,
// pullquotes, audio/video/tweet embeds, and UI wrappers. Unrecognized divs
// fall through to the default handling.
func divRule() md.Rule {
	return md.Rule{
		Filter: []string{"div"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			switch {
			case selec.HasClass("button-wrapper"), selec.HasClass("image-link-expand"):
				return md.String("")

			case selec.HasClass("captioned-image-container"):
				img := selec.Find("img").First()
				if img.Length() == 0 {
					return md.String("")
				}
				src, _ := img.Attr("src")
				alt, ok := img.Attr("alt")
				if !ok || alt == "" {
					alt = "Image"
				}
				return md.String(fmt.Sprintf("\n\n![%s](%s)\n\n", alt, src))

			case selec.HasClass("pullquote"):
				return md.String(fmt.Sprintf("\n\n> **%s**\n\n", strings.TrimSpace(content)))

			case selec.HasClass("audio-embed"), selec.AttrOr("data-component-name", "") == "AudioEmbed":
				return md.String("\n\n*[Podcast episode embedded]*\n\n")

			case selec.HasClass("video-container"):
				return md.String("\n\n*[Video embedded]*\n\n")

			case selec.HasClass("tweet"),
				strings.Contains(selec.AttrOr("data-component-name", ""), "Tweet"):
				return md.String("\n\n*[Tweet embedded]*\n\n")
			}

			return nil
		},
	}
}

// mentionRule flattens user mentions to the display name carried in the
// data-attrs payload.
func mentionRule() md.Rule {
	return md.Rule{
		Filter: []string{"span", "a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if !selec.HasClass("mention-wrap") {
				return nil
			}
			if raw, ok := selec.Attr("data-attrs"); ok {
				var attrs struct {
					Name string `json:"name"`
				}
				if err := json.Unmarshal([]byte(raw), &attrs); err == nil && attrs.Name != "" {
					return md.String(attrs.Name)
				}
			}
			return md.String(content)
		},
	}
}

// iframeRule collapses embedded frames to placeholder notes, keeping the URL
// for recognizable video hosts.
func iframeRule() md.Rule {
	return md.Rule{
		Filter: []string{"iframe"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			src := selec.AttrOr("src", "")
			if strings.Contains(src, "youtube") || strings.Contains(src, "youtu.be") {
				return md.String(fmt.Sprintf("\n\n*[YouTube video: %s]*\n\n", src))
			}
			return md.String("\n\n*[Video embedded]*\n\n")
		},
	}
}

// subscribeLinkRule drops subscribe call-to-action links entirely.
func subscribeLinkRule() md.Rule {
	return md.Rule{
		Filter: []string{"a"},
		Replacement: func(content string, selec *goquery.Selection, opt *md.Options) *string {
			if selec.HasClass("button") && strings.Contains(selec.AttrOr("href", ""), "subscribe") {
				return md.String("")
			}
			return nil
		},
	}
}

var (
	excessNewlines = regexp.MustCompile(`\n{4,}`)
	trailingSpace  = regexp.MustCompile(`(?m)[ \t]+$`)
	spaceAfterOpen = regexp.MustCompile(`\[ +`)
	spaceBeforeEnd = regexp.MustCompile(` +\]`)
	emptyLinks     = regexp.MustCompile(`\[\]\([^)]*\)`)
	leakedDataAttr = regexp.MustCompile(`data-[a-z-]+="[^"]*"`)
)

// HTMLToMarkdown converts one HTML document and applies the cleanup pass.
func (c *Converter) HTMLToMarkdown(html string) (string, error) {
	markdown, err := c.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}
	return cleanupMarkdown(markdown), nil
}

// cleanupMarkdown removes conversion residue: runs of blank lines, trailing
// whitespace, broken or empty links, stray entities and leaked attributes.
func cleanupMarkdown(markdown string) string {
	result := excessNewlines.ReplaceAllString(markdown, "\n\n\n")
	result = trailingSpace.ReplaceAllString(result, "")
	result = spaceAfterOpen.ReplaceAllString(result, "[")
	result = spaceBeforeEnd.ReplaceAllString(result, "]")
	result = emptyLinks.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	result = replacer.Replace(result)
	result = leakedDataAttr.ReplaceAllString(result, "")

	return strings.TrimSpace(result)
}

// ConvertPost renders a full post document: metadata header followed by the
// converted body.
func (c *Converter) ConvertPost(post *domain.Post) (string, error) {
	body, err := c.HTMLToMarkdown(post.HTMLContent)
	if err != nil {
		return "", err
	}

	dateStr := "Unknown date"
	if post.Date != nil {
		dateStr = post.Date.Format("January 2, 2006")
	}

	var b strings.Builder
	title := post.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "**Date:** %s\n", dateStr)
	fmt.Fprintf(&b, "**Type:** %s\n", titleCase(post.Type))
	fmt.Fprintf(&b, "**Audience:** %s\n", audienceLabel(post.Audience))
	if post.Subtitle != "" {
		fmt.Fprintf(&b, "\n*%s*\n", post.Subtitle)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(body)

	return b.String(), nil
}

func audienceLabel(audience string) string {
	switch audience {
	case "everyone":
		return "Everyone"
	case "only_paid":
		return "Paid subscribers"
	case "only_free":
		return "Free subscribers"
	default:
		return audience
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
