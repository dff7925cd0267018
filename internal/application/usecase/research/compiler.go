// Package research turns a list of X profiles into a research brief: it
// fetches recent posts, has the agent pick one, looks up context on the web
// and has the agent compile the findings.
package research

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

// ResearcherSystemPrompt sets the voice of the research agent
const ResearcherSystemPrompt = `You are a research analyst for a social media writer.
You do not stop at the surface: for any post you pick, you find out why it matters,
what the backstory is and what other people are saying about it.
Your output is always factual and complete enough for a writer to form an opinion.`

// ErrNoPosts is returned when no profile yielded a single post
var ErrNoPosts = errors.New("no posts available for research")

// Options bound the supplementary web research
type Options struct {
	MaxSearches    int
	MaxScrapes     int
	ScrapeMaxChars int
	MaxTokens      int
}

// Finding is one supplementary lookup
type Finding struct {
	Kind   string // search or page
	Source string // query or URL
	Text   string
}

// Brief is the compiled research handed to drafting
type Brief struct {
	Digest    social.Digest
	Selection string    // agent's pick with its notes
	Findings  []Finding // web lookups that succeeded
	Text      string    // final brief
}

// Compiler builds research briefs
type Compiler struct {
	reader   output.ProfileReader
	agent    output.AgentGateway
	searcher output.WebSearcher
	scraper  output.PageScraper
	opts     Options
	logger   app.Logger
}

// NewCompiler creates a compiler. searcher and scraper may be nil, in which
// case that kind of lookup is skipped.
func NewCompiler(reader output.ProfileReader, agent output.AgentGateway, searcher output.WebSearcher, scraper output.PageScraper, opts Options, logger app.Logger) *Compiler {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2048
	}
	if opts.ScrapeMaxChars <= 0 {
		opts.ScrapeMaxChars = 4000
	}
	return &Compiler{
		reader:   reader,
		agent:    agent,
		searcher: searcher,
		scraper:  scraper,
		opts:     opts,
		logger:   app.LoggerOrDefault(logger),
	}
}

// Compile researches the given profiles. Agent failures are returned as
// errors; individual web lookups that fail are skipped.
func (c *Compiler) Compile(ctx context.Context, profiles []string) (*Brief, error) {
	usernames := social.NormalizeUsernames(profiles)
	if len(usernames) == 0 {
		return nil, fmt.Errorf("no profiles to research")
	}
	c.logger.Info("Researching %d profiles", len(usernames))

	digest, err := c.reader.Fetch(ctx, usernames)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}
	for _, s := range digest.Sections {
		if s.IsError() {
			c.logger.Warn("%s", s.Message)
		}
	}
	if digest.PostCount() == 0 {
		return nil, fmt.Errorf("%w:\n%s", ErrNoPosts, digest.String())
	}

	selection, err := c.ask(ctx, selectionPrompt(digest.String(), c.opts.MaxSearches))
	if err != nil {
		return nil, fmt.Errorf("select post: %w", err)
	}

	queries, urls := parseLeads(selection)
	findings := c.lookup(ctx, queries, urls)

	text, err := c.ask(ctx, compilePrompt(selection, findings))
	if err != nil {
		return nil, fmt.Errorf("compile brief: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("compile brief: agent returned an empty brief")
	}

	return &Brief{
		Digest:    digest,
		Selection: selection,
		Findings:  findings,
		Text:      text,
	}, nil
}

func (c *Compiler) ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.agent.Execute(ctx, output.AgentRequest{
		SystemPrompt: ResearcherSystemPrompt,
		Prompt:       prompt,
		MaxTokens:    c.opts.MaxTokens,
		Temperature:  0.3,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Output), nil
}

// lookup runs the searches and scrapes within the configured limits
func (c *Compiler) lookup(ctx context.Context, queries, urls []string) []Finding {
	var findings []Finding

	if c.searcher != nil {
		for i, q := range queries {
			if i >= c.opts.MaxSearches {
				break
			}
			results, err := c.searcher.Search(ctx, q)
			if err != nil {
				c.logger.Warn("Web search %q failed: %v", q, err)
				continue
			}
			findings = append(findings, Finding{Kind: "search", Source: q, Text: formatResults(results)})
		}
	}

	if c.scraper != nil {
		for i, u := range urls {
			if i >= c.opts.MaxScrapes {
				break
			}
			text, err := c.scraper.Scrape(ctx, u)
			if err != nil {
				c.logger.Warn("Scraping %s failed: %v", u, err)
				continue
			}
			findings = append(findings, Finding{Kind: "page", Source: u, Text: truncate(text, c.opts.ScrapeMaxChars)})
		}
	}

	return findings
}

func selectionPrompt(digest string, maxSearches int) string {
	if maxSearches <= 0 {
		maxSearches = 3
	}
	var b strings.Builder
	b.WriteString("Here are recent posts from the X profiles I follow:\n\n")
	b.WriteString(digest)
	b.WriteString("\n\nPick the single most interesting post for a LinkedIn audience.\n")
	b.WriteString("Reply with the selected post's text, URL, date and metrics, then explain in a few sentences why it is interesting.\n")
	fmt.Fprintf(&b, "Finish with up to %d lines of the form `SEARCH: <query>` for web searches that would give useful context, ", maxSearches)
	b.WriteString("and one line `URL: <link>` for every link in the post worth reading.")
	return b.String()
}

func compilePrompt(selection string, findings []Finding) string {
	var b strings.Builder
	b.WriteString("Selected post and notes:\n\n")
	b.WriteString(selection)
	b.WriteString("\n\nAdditional research:\n")
	if len(findings) == 0 {
		b.WriteString("\n(no web research available, rely on the post itself)\n")
	}
	for _, f := range findings {
		switch f.Kind {
		case "search":
			fmt.Fprintf(&b, "\n### Search: %s\n%s\n", f.Source, f.Text)
		default:
			fmt.Fprintf(&b, "\n### Page: %s\n%s\n", f.Source, f.Text)
		}
	}
	b.WriteString("\nCompile a research brief for a writer. Include:\n")
	b.WriteString("1. The selected post (text, URL, metrics)\n")
	b.WriteString("2. A summary of the additional research\n")
	b.WriteString("3. Key talking points a writer could use for commentary")
	return b.String()
}

var (
	searchLine = regexp.MustCompile(`(?im)^\s*SEARCH:\s*(.+?)\s*$`)
	urlLine    = regexp.MustCompile(`(?im)^\s*URL:\s*(\S+)\s*$`)
	anyURL     = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`)
)

// parseLeads extracts search queries and page URLs from the agent's selection.
// Links to X itself are not scraped; t.co short links are kept and resolved
// by the scraper's redirect handling.
func parseLeads(selection string) ([]string, []string) {
	var queries []string
	for _, m := range searchLine.FindAllStringSubmatch(selection, -1) {
		q := strings.Trim(m[1], "`\"'")
		if q != "" {
			queries = append(queries, q)
		}
	}

	seen := map[string]bool{}
	var urls []string
	add := func(u string) {
		u = strings.TrimRight(u, ".,;:!?`")
		if u == "" || seen[u] || isXLink(u) {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	for _, m := range urlLine.FindAllStringSubmatch(selection, -1) {
		add(m[1])
	}
	for _, u := range anyURL.FindAllString(selection, -1) {
		add(u)
	}
	return queries, urls
}

func isXLink(u string) bool {
	for _, host := range []string{"://x.com/", "://twitter.com/", "://www.x.com/", "://www.twitter.com/"} {
		if strings.Contains(u, host) {
			return true
		}
	}
	return false
}

func formatResults(results []output.SearchResult) string {
	if len(results) == 0 {
		return "(no results)"
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "- %s (%s)", r.Title, r.Link)
		if r.Snippet != "" {
			fmt.Fprintf(&b, ": %s", r.Snippet)
		}
		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
