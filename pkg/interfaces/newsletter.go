package interfaces

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/ManosMrgk/NeverMiss/pkg/calendar"
	"github.com/ManosMrgk/NeverMiss/pkg/domain"
)

// NewsletterRenderer turns a BucketSet into the HTML newsletter. The "This
// week" section is omitted entirely on Fridays, following the bucketer's
// suppression rule.
type NewsletterRenderer struct {
	tmpl *template.Template
	loc  *time.Location
}

func NewNewsletterRenderer(loc *time.Location) (*NewsletterRenderer, error) {
	r := &NewsletterRenderer{loc: loc}

	tmpl, err := template.New("newsletter").Funcs(template.FuncMap{
		"eventDate": r.formatEventDate,
		"location":  formatLocation,
	}).Parse(newsletterTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse newsletter template: %w", err)
	}

	r.tmpl = tmpl
	return r, nil
}

type newsletterSection struct {
	Title  string
	Events []domain.Event
}

type newsletterData struct {
	Today    string
	Sections []newsletterSection
}

func (r *NewsletterRenderer) Render(w io.Writer, buckets domain.BucketSet, today time.Time) error {
	data := newsletterData{
		Today: today.In(r.loc).Format("Monday, 02 January 2006"),
	}

	if !buckets.ThisWeekSuppressed() {
		data.Sections = append(data.Sections, newsletterSection{"This week", buckets.ThisWeek})
	}
	data.Sections = append(data.Sections,
		newsletterSection{"This weekend", buckets.ThisWeekend},
		newsletterSection{"Next week", buckets.NextWeek},
		newsletterSection{"Coming soon", buckets.ComingSoon},
	)

	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render newsletter: %w", err)
	}
	return nil
}

func (r *NewsletterRenderer) formatEventDate(ev domain.Event) string {
	dt := calendar.ParseEventDate(ev.StartDate, r.loc)
	if dt == nil {
		return "Date TBA"
	}
	return dt.Format("Mon, 02 Jan 2006")
}

func formatLocation(ev domain.Event) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ev.Venue, ev.City, ev.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Location TBA"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " · " + p
	}
	return out
}

// Email-friendly: inline CSS only, no external references.
const newsletterTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>NeverMiss Newsletter</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>
  body { margin: 0; padding: 24px; background: #0b1020; color: #e8eeff; font-family: Arial, Helvetica, sans-serif; }
  h1 { font-size: 22px; margin: 0 0 4px; }
  .today { color: #9fb0d6; margin-bottom: 24px; }
  h2 { font-size: 18px; border-bottom: 1px solid #1b2450; padding-bottom: 6px; }
  .empty { color: #9fb0d6; font-style: italic; margin: 8px 0 20px; }
  .card { display: block; background: #0f1a3a; border-radius: 8px; padding: 12px; margin: 8px 0; color: inherit; text-decoration: none; }
  .card .date { color: #7aa2ff; font-size: 13px; }
  .card .title { font-weight: bold; margin: 4px 0; }
  .card .where { color: #9fb0d6; font-size: 13px; }
</style>
</head>
<body>
  <h1>NeverMiss</h1>
  <div class="today">{{.Today}}</div>
{{range .Sections}}  <section>
    <h2>{{.Title}}</h2>
{{if .Events}}{{range .Events}}    <a class="card" href="{{.URL}}" target="_blank" rel="noopener noreferrer">
      <div class="date">{{eventDate .}}</div>
      <div class="title">{{.Title}}</div>
      <div class="where">{{location .}}</div>
    </a>
{{end}}{{else}}    <div class="empty">No events in this section.</div>
{{end}}  </section>
{{end}}</body>
</html>
`
