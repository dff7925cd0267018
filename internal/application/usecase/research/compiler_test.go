package research

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/repostflow/internal/app"
	"github.com/YoshitsuguKoike/repostflow/internal/application/port/output"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/social"
)

type fakeReader struct {
	digest social.Digest
	err    error
	got    []string
}

func (f *fakeReader) Fetch(ctx context.Context, usernames []string) (social.Digest, error) {
	f.got = usernames
	return f.digest, f.err
}

// scriptedAgent answers prompts in order
type scriptedAgent struct {
	outputs []string
	err     error
	prompts []output.AgentRequest
}

func (a *scriptedAgent) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	a.prompts = append(a.prompts, req)
	if a.err != nil {
		return nil, a.err
	}
	i := len(a.prompts) - 1
	if i >= len(a.outputs) {
		return &output.AgentResponse{Output: ""}, nil
	}
	return &output.AgentResponse{Output: a.outputs[i]}, nil
}

func (a *scriptedAgent) GetCapability() output.AgentCapability { return output.AgentCapability{} }
func (a *scriptedAgent) HealthCheck(ctx context.Context) error  { return nil }

type fakeSearcher struct {
	fail    map[string]bool
	queries []string
}

func (s *fakeSearcher) Search(ctx context.Context, q string) ([]output.SearchResult, error) {
	s.queries = append(s.queries, q)
	if s.fail[q] {
		return nil, errors.New("quota exceeded")
	}
	return []output.SearchResult{{Title: "About " + q, Link: "https://example.com/" + q, Snippet: "snippet"}}, nil
}

type fakeScraper struct {
	pages map[string]string
	urls  []string
}

func (s *fakeScraper) Scrape(ctx context.Context, url string) (string, error) {
	s.urls = append(s.urls, url)
	text, ok := s.pages[url]
	if !ok {
		return "", errors.New("404")
	}
	return text, nil
}

func digestWithPost() social.Digest {
	return social.Digest{Sections: []social.Section{
		social.PostsSection("alice", social.WindowLast24Hours, []social.Post{
			{ID: "1", Text: "New model release https://example.com/blog", CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)},
		}),
	}}
}

const selection = `Selected: https://x.com/alice/status/1
The post announces a model release.
SEARCH: model release benchmarks
SEARCH: "alice lab funding"
URL: https://example.com/blog.`

func TestCompile_FullFlow(t *testing.T) {
	reader := &fakeReader{digest: digestWithPost()}
	agent := &scriptedAgent{outputs: []string{selection, "  the brief  "}}
	searcher := &fakeSearcher{fail: map[string]bool{"alice lab funding": true}}
	scraper := &fakeScraper{pages: map[string]string{"https://example.com/blog": "Blog body"}}

	c := NewCompiler(reader, agent, searcher, scraper, Options{MaxSearches: 3, MaxScrapes: 2}, app.NopLogger{})
	brief, err := c.Compile(context.Background(), []string{"@alice", " ", "https://x.com/bob"})
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "bob"}, reader.got)
	assert.Equal(t, "the brief", brief.Text)
	assert.Equal(t, []string{"model release benchmarks", "alice lab funding"}, searcher.queries)
	assert.Equal(t, []string{"https://example.com/blog"}, scraper.urls, "x.com links are not scraped")

	require.Len(t, brief.Findings, 2, "failed search is skipped")
	assert.Equal(t, "search", brief.Findings[0].Kind)
	assert.Equal(t, "page", brief.Findings[1].Kind)

	require.Len(t, agent.prompts, 2)
	assert.Equal(t, ResearcherSystemPrompt, agent.prompts[0].SystemPrompt)
	assert.Contains(t, agent.prompts[0].Prompt, "Posts from @alice")
	assert.Contains(t, agent.prompts[1].Prompt, "### Page: https://example.com/blog\nBlog body")
	assert.Contains(t, agent.prompts[1].Prompt, "Key talking points")
}

func TestCompile_NoPosts(t *testing.T) {
	reader := &fakeReader{digest: social.Digest{Sections: []social.Section{social.NotFoundSection("ghost")}}}
	agent := &scriptedAgent{}

	c := NewCompiler(reader, agent, nil, nil, Options{}, app.NopLogger{})
	_, err := c.Compile(context.Background(), []string{"ghost"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPosts)
	assert.Contains(t, err.Error(), "ghost")
	assert.Empty(t, agent.prompts, "agent is not called without posts")
}

func TestCompile_MissingXTokenStopsResearch(t *testing.T) {
	msg := "Error: X_BEARER_TOKEN environment variable not set."
	reader := &fakeReader{digest: social.Digest{Sections: []social.Section{social.MessageSection(msg)}}}
	agent := &scriptedAgent{}

	_, err := NewCompiler(reader, agent, nil, nil, Options{}, app.NopLogger{}).Compile(context.Background(), []string{"alice"})
	require.ErrorIs(t, err, ErrNoPosts)
	assert.Contains(t, err.Error(), msg)
	assert.Empty(t, agent.prompts)
}

func TestCompile_NoProfiles(t *testing.T) {
	c := NewCompiler(&fakeReader{}, &scriptedAgent{}, nil, nil, Options{}, app.NopLogger{})
	_, err := c.Compile(context.Background(), []string{"", "@"})
	assert.Error(t, err)
}

func TestCompile_ReaderError(t *testing.T) {
	reader := &fakeReader{err: errors.New("missing token")}
	c := NewCompiler(reader, &scriptedAgent{}, nil, nil, Options{}, app.NopLogger{})

	_, err := c.Compile(context.Background(), []string{"alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing token")
}

func TestCompile_AgentErrorIsReturned(t *testing.T) {
	agent := &scriptedAgent{err: context.DeadlineExceeded}
	c := NewCompiler(&fakeReader{digest: digestWithPost()}, agent, nil, nil, Options{}, app.NopLogger{})

	_, err := c.Compile(context.Background(), []string{"alice"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompile_EmptyBrief(t *testing.T) {
	agent := &scriptedAgent{outputs: []string{"pick", "   "}}
	c := NewCompiler(&fakeReader{digest: digestWithPost()}, agent, nil, nil, Options{}, app.NopLogger{})

	_, err := c.Compile(context.Background(), []string{"alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty brief")
}

func TestCompile_WithoutWebTools(t *testing.T) {
	agent := &scriptedAgent{outputs: []string{selection, "brief"}}
	c := NewCompiler(&fakeReader{digest: digestWithPost()}, agent, nil, nil, Options{MaxSearches: 3}, app.NopLogger{})

	brief, err := c.Compile(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.Empty(t, brief.Findings)
	assert.Contains(t, agent.prompts[1].Prompt, "no web research available")
}

func TestCompile_LookupLimits(t *testing.T) {
	agent := &scriptedAgent{outputs: []string{
		"SEARCH: a\nSEARCH: b\nSEARCH: c\nURL: https://one.example\nURL: https://two.example",
		"brief",
	}}
	searcher := &fakeSearcher{}
	scraper := &fakeScraper{pages: map[string]string{"https://one.example": strings.Repeat("x", 50)}}

	c := NewCompiler(&fakeReader{digest: digestWithPost()}, agent, searcher, scraper,
		Options{MaxSearches: 2, MaxScrapes: 1, ScrapeMaxChars: 10}, app.NopLogger{})
	brief, err := c.Compile(context.Background(), []string{"alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, searcher.queries)
	assert.Equal(t, []string{"https://one.example"}, scraper.urls)
	assert.Equal(t, strings.Repeat("x", 10)+"...", brief.Findings[2].Text)
}

func TestParseLeads(t *testing.T) {
	queries, urls := parseLeads("text https://a.example/x, more\nSEARCH: `q1`\n  search: q2 \nURL: https://b.example\nhttps://t.co/abc https://a.example/x")
	assert.Equal(t, []string{"q1", "q2"}, queries)
	assert.Equal(t, []string{"https://b.example", "https://a.example/x", "https://t.co/abc"}, urls)
}

func TestCompile_PostLinkIsScraped(t *testing.T) {
	reader := &fakeReader{digest: social.Digest{Sections: []social.Section{
		social.PostsSection("alice", social.WindowLast24Hours, []social.Post{
			{ID: "1", Text: "Read this https://t.co/AbC123", CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)},
		}),
	}}}
	sel := "Selected: https://x.com/alice/status/1\nRead this https://t.co/AbC123\nURL: https://t.co/AbC123"
	agent := &scriptedAgent{outputs: []string{sel, "brief"}}
	scraper := &fakeScraper{pages: map[string]string{"https://t.co/AbC123": "Linked article"}}

	c := NewCompiler(reader, agent, nil, scraper, Options{MaxScrapes: 2}, app.NopLogger{})
	brief, err := c.Compile(context.Background(), []string{"alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://t.co/AbC123"}, scraper.urls)
	require.Len(t, brief.Findings, 1)
	assert.Equal(t, "Linked article", brief.Findings[0].Text)
	assert.Contains(t, agent.prompts[1].Prompt, "### Page: https://t.co/AbC123\nLinked article")
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "(no results)", formatResults(nil))
	assert.Equal(t, "- T (L): S\n- T2 (L2)", formatResults([]output.SearchResult{
		{Title: "T", Link: "L", Snippet: "S"},
		{Title: "T2", Link: "L2"},
	}))
}
