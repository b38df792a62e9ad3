// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/pdiddy/research-digest/pkg/types"
)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"truncate": func(s string, max int) string {
		if len(s) <= max {
			return s
		}
		return strings.TrimSpace(s[:max]) + "..."
	},
}

// htmlTemplate renders the digest for email delivery. Kept deliberately
// plain so it survives email client CSS stripping.
var htmlTemplate = template.Must(template.New("digest").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Georgia, serif; max-width: 700px; margin: 0 auto; padding: 20px;">
<h1 style="font-size: 22px;">{{.Title}}</h1>
<p style="color: #555;">{{.Intro}}</p>
<p style="color: #888; font-size: 13px;">{{.Digest.PaperCount}} papers &middot; generated {{.Digest.GeneratedAt.Format "January 2, 2006"}}</p>
<hr>
{{range $i, $p := .Digest.Papers}}
<div style="margin-bottom: 24px;">
<h2 style="font-size: 17px; margin-bottom: 4px;"><a href="{{$p.URL}}">{{$p.Title}}</a></h2>
<p style="color: #666; font-size: 13px; margin: 2px 0;">{{join $p.Authors ", "}}{{if $p.PublishedDate}} &middot; {{$p.PublishedDate}}{{end}} &middot; {{$p.Source}} &middot; score {{printf "%.1f" $p.RelevanceScore}}</p>
{{if $p.Summary}}<p style="margin: 6px 0;">{{$p.Summary}}</p>{{else if $p.Abstract}}<p style="margin: 6px 0;">{{truncate $p.Abstract 400}}</p>{{end}}
{{if $p.PDFURL}}<p style="font-size: 13px; margin: 2px 0;"><a href="{{$p.PDFURL}}">PDF</a></p>{{end}}
</div>
{{end}}
</body>
</html>
`))

// FormatHTML renders the digest as an email-ready HTML document.
func FormatHTML(d types.Digest, intro string) (string, error) {
	var sb strings.Builder
	err := htmlTemplate.Execute(&sb, struct {
		Title  string
		Intro  string
		Digest types.Digest
	}{
		Title:  digestTitle(d),
		Intro:  intro,
		Digest: d,
	})
	if err != nil {
		return "", fmt.Errorf("rendering HTML digest: %w", err)
	}
	return sb.String(), nil
}

// FormatText renders the digest as plain text, one block per paper.
func FormatText(d types.Digest, intro string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n%s\n\n", digestTitle(d), strings.Repeat("=", len(digestTitle(d))))
	if intro != "" {
		fmt.Fprintf(&sb, "%s\n\n", intro)
	}
	fmt.Fprintf(&sb, "%d papers, generated %s\n\n", d.PaperCount, d.GeneratedAt.Format("2006-01-02"))

	for i, p := range d.Papers {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p.Title)
		if len(p.Authors) > 0 {
			fmt.Fprintf(&sb, "   %s\n", strings.Join(p.Authors, ", "))
		}
		fmt.Fprintf(&sb, "   %s | score %.1f\n", p.Source, p.RelevanceScore)
		if p.Summary != "" {
			fmt.Fprintf(&sb, "   %s\n", p.Summary)
		}
		fmt.Fprintf(&sb, "   %s\n\n", p.URL)
	}
	return sb.String()
}

func digestTitle(d types.Digest) string {
	switch d.Period {
	case types.PeriodWeekly:
		return "Weekly Research Digest"
	default:
		return "Daily Research Digest"
	}
}
