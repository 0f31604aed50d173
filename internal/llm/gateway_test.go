package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply string
	err   error
	got   []Prompt
}

func (f *fakeCompleter) Complete(_ context.Context, p Prompt) (string, error) {
	f.got = append(f.got, p)
	return f.reply, f.err
}

func TestGenerateArticle(t *testing.T) {
	fc := &fakeCompleter{reply: `{"title":"Solar Surge","content":"<p>Panels everywhere.</p>","excerpt":"Panels. Everywhere."}`}
	g := NewGateway(fc)

	d, err := g.GenerateArticle(context.Background(), "  renewable energy ")
	require.NoError(t, err)
	assert.Equal(t, "Solar Surge", d.Title)
	assert.Equal(t, "<p>Panels everywhere.</p>", d.Content)
	assert.Equal(t, "Panels. Everywhere.", d.Excerpt)

	require.Len(t, fc.got, 1)
	assert.True(t, fc.got[0].JSON)
	assert.Contains(t, fc.got[0].User, `"renewable energy"`)
}

func TestGenerateArticleRendersMarkdownContent(t *testing.T) {
	fc := &fakeCompleter{reply: `{"title":"T","content":"## Heading\n\nBody text.","excerpt":"E"}`}

	d, err := NewGateway(fc).GenerateArticle(context.Background(), "topic")
	require.NoError(t, err)
	assert.Contains(t, d.Content, "<h2>Heading</h2>")
	assert.Contains(t, d.Content, "<p>Body text.</p>")
}

func TestGenerateArticleFailures(t *testing.T) {
	cases := map[string]*fakeCompleter{
		"remote error":  {err: errors.New("connection refused")},
		"empty reply":   {reply: "   "},
		"not json":      {reply: "Here is your article about renewable energy!"},
		"missing key":   {reply: `{"title":"T","content":"<p>c</p>"}`},
		"extra key":     {reply: `{"title":"T","content":"<p>c</p>","excerpt":"e","tags":[]}`},
		"trailing data": {reply: `{"title":"T","content":"<p>c</p>","excerpt":"e"} and more`},
		"array not obj": {reply: `["T","c","e"]`},
		"blank excerpt": {reply: `{"title":"T","content":"<p>c</p>","excerpt":"  "}`},
	}
	for name, fc := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := NewGateway(fc).GenerateArticle(context.Background(), "renewable energy")
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.Zero(t, d)
		})
	}
}

func TestGenerateArticleEmptyTopic(t *testing.T) {
	fc := &fakeCompleter{}
	_, err := NewGateway(fc).GenerateArticle(context.Background(), " \t")
	assert.ErrorIs(t, err, ErrEmptyTopic)
	assert.Empty(t, fc.got, "no remote call for a blank topic")
}

func TestGenerateArticleWithoutCompleter(t *testing.T) {
	_, err := NewGateway(nil).GenerateArticle(context.Background(), "topic")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestParseDraftCodeFence(t *testing.T) {
	raw := "```json\n{\"title\":\"T\",\"content\":\"<p>c</p>\",\"excerpt\":\"e\"}\n```"
	d, err := ParseDraft(raw)
	require.NoError(t, err)
	assert.Equal(t, "T", d.Title)
}

func TestGatewayComplete(t *testing.T) {
	fc := &fakeCompleter{reply: "raw text"}
	out, err := NewGateway(fc).Complete(context.Background(), "say something")
	require.NoError(t, err)
	assert.Equal(t, "raw text", out)
	assert.False(t, fc.got[0].JSON)
	assert.Equal(t, "say something", fc.got[0].User)

	fc.err = errors.New("upstream down")
	_, err = NewGateway(fc).Complete(context.Background(), "again")
	assert.EqualError(t, err, "upstream down")
}

func TestGatewayRateLimitHonorsContext(t *testing.T) {
	fc := &fakeCompleter{reply: "ok"}
	g := NewGateway(fc, WithRateLimit(0.001, 1))

	_, err := g.Complete(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Complete(ctx, "second")
	assert.Error(t, err)
	assert.Len(t, fc.got, 1)
}
