package presenter

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/repostflow/internal/application/dto"
	"github.com/YoshitsuguKoike/repostflow/internal/domain/review"
)

func sampleOutput() *dto.KickoffOutput {
	return &dto.KickoffOutput{
		SessionID: "01HZX",
		Outcome:   "published",
		Payload:   "Successfully published LinkedIn post. Post ID: urn:li:share:7",
		Attempts:  2,
		Profiles:  []string{"alice", "bob"},
		ElapsedMs: 1500,
	}
}

func TestCLIPresenter_PresentOutcome(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCLIPresenter(&buf).PresentOutcome(sampleOutput()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\n"+FlowCompleteBanner+"\n"))
	assert.Contains(t, out, "Outcome: published after 2 draft(s) in 1.5s")
	assert.Contains(t, out, "Profiles: alice, bob")
	assert.True(t, strings.HasSuffix(out, "Post ID: urn:li:share:7\n"))
}

func TestCLIPresenter_PresentHistory(t *testing.T) {
	var buf bytes.Buffer
	p := NewCLIPresenter(&buf)

	require.NoError(t, p.PresentHistory(nil))
	assert.Equal(t, "No sessions recorded yet.\n", buf.String())

	buf.Reset()
	s := review.NewSession([]string{"alice"}, 3)
	_, err := s.BeginDraft()
	require.NoError(t, err)
	require.NoError(t, s.RecordDraft("a draft\nsecond line", ""))
	require.NoError(t, s.RecordVerdict(review.Reject("no")))
	require.NoError(t, s.Complete(review.Abandoned("a draft\nsecond line")))

	require.NoError(t, p.PresentHistory([]*review.Session{s}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "SESSION")
	assert.Contains(t, lines[1], s.ID.String())
	assert.Contains(t, lines[1], "ABANDONED")
	assert.Contains(t, lines[1], "1/3")
	assert.True(t, strings.HasSuffix(lines[1], "a draft"))
}

func TestCLIPresenter_PresentError(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("boom")
	assert.Equal(t, boom, NewCLIPresenter(&buf).PresentError(boom))
	assert.Equal(t, "✗ Error: boom\n", buf.String())
}

func TestJSONPresenter(t *testing.T) {
	var buf bytes.Buffer
	p := NewRunPresenter("json", &buf)
	require.NoError(t, p.PresentOutcome(sampleOutput()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "published", decoded["outcome"])
	assert.Equal(t, float64(2), decoded["attempts"])

	buf.Reset()
	require.NoError(t, p.PresentHistory(nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, p.PresentError(errors.New("bad")))
	assert.Contains(t, buf.String(), `"success": false`)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one\ntwo", 10))
	assert.Equal(t, "abcdefg...", firstLine(strings.Repeat("abcdefghij", 3), 10))
	assert.Equal(t, "1.5s", elapsed(1500))
	assert.Equal(t, "0s", elapsed(0))
}
