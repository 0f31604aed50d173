package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/time/rate"

	"github.com/nitesh/velara/pkg/models"
)

var (
	// ErrGenerationFailed is the single failure callers see from GenerateArticle.
	ErrGenerationFailed = errors.New("generation failed, try again")
	// ErrEmptyTopic rejects a blank topic before any remote call.
	ErrEmptyTopic = errors.New("topic is required")
)

// Gateway turns a topic into an article draft through a Completer.
type Gateway struct {
	completer Completer
	limiter   *rate.Limiter
	md        goldmark.Markdown
}

type GatewayOption func(*Gateway)

// WithRateLimit caps upstream calls at rps with the given burst.
func WithRateLimit(rps float64, burst int) GatewayOption {
	return func(g *Gateway) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func NewGateway(c Completer, opts ...GatewayOption) *Gateway {
	g := &Gateway{completer: c, md: goldmark.New()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateArticle asks the model for a JSON draft about topic. Any remote
// error, empty reply or malformed reply comes back as ErrGenerationFailed.
func (g *Gateway) GenerateArticle(ctx context.Context, topic string) (models.Draft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return models.Draft{}, ErrEmptyTopic
	}

	raw, err := g.complete(ctx, buildArticlePrompt(topic))
	if err != nil {
		log.Printf("[llm] generate failed topic=%q err=%v", topic, err)
		return models.Draft{}, ErrGenerationFailed
	}

	draft, err := ParseDraft(raw)
	if err != nil {
		log.Printf("[llm] generate failed topic=%q err=%v", topic, err)
		return models.Draft{}, ErrGenerationFailed
	}

	html, err := g.normalizeContent(draft.Content)
	if err != nil {
		log.Printf("[llm] render content failed topic=%q err=%v", topic, err)
		return models.Draft{}, ErrGenerationFailed
	}
	draft.Content = html
	return draft, nil
}

// Complete forwards a free-form prompt and returns the raw reply.
func (g *Gateway) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := g.complete(ctx, Prompt{User: prompt})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (g *Gateway) complete(ctx context.Context, p Prompt) (string, error) {
	if g.completer == nil {
		return "", errors.New("no text model configured")
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}
	text, err := g.completer.Complete(ctx, p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("model returned an empty reply")
	}
	return text, nil
}

var fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ParseDraft decodes a model reply holding exactly the title, content and
// excerpt keys. A surrounding markdown code fence is tolerated.
func ParseDraft(raw string) (models.Draft, error) {
	text := strings.TrimSpace(raw)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if text == "" {
		return models.Draft{}, errors.New("empty reply")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var d models.Draft
	if err := dec.Decode(&d); err != nil {
		return models.Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return models.Draft{}, errors.New("decode draft: trailing data after object")
	}

	var missing []string
	if strings.TrimSpace(d.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(d.Content) == "" {
		missing = append(missing, "content")
	}
	if strings.TrimSpace(d.Excerpt) == "" {
		missing = append(missing, "excerpt")
	}
	if len(missing) > 0 {
		return models.Draft{}, fmt.Errorf("decode draft: missing %s", strings.Join(missing, ", "))
	}
	return d, nil
}

var htmlTagRe = regexp.MustCompile(`(?i)<(p|h[1-6]|ul|ol|li|br|strong|em|blockquote|div)[\s>/]`)

// normalizeContent keeps HTML as is and renders anything else as Markdown.
func (g *Gateway) normalizeContent(content string) (string, error) {
	if htmlTagRe.MatchString(content) {
		return content, nil
	}
	var buf bytes.Buffer
	if err := g.md.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
