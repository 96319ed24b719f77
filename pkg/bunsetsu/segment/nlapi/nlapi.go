// Package nlapi adapts the Cloud Natural Language API as a segmenter
// backend. It calls documents:annotateText with UTF32 offsets so that all
// positions are rune offsets, and in entity mode additionally requests
// entity mentions, which become spans for the composer.
package nlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cognicore/bunsetsu/pkg/bunsetsu/internalerr"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/segment"
	"github.com/cognicore/bunsetsu/pkg/bunsetsu/token"
)

const defaultBaseURL = "https://language.googleapis.com"

// supportedLanguages lists the CJK languages the syntax analysis endpoint
// handles. Empty language means server-side detection.
var supportedLanguages = map[string]struct{}{
	"ja": {}, "ko": {}, "zh": {}, "zh-TW": {}, "zh-CN": {}, "zh-HK": {},
}

// Client calls the Cloud Natural Language REST endpoint.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

// New creates a client authenticated with an API key.
func New(apiKey string) *Client {
	return &Client{APIKey: apiKey}
}

// Name implements segment.Segmenter.
func (c *Client) Name() string { return "nlapi" }

type annotateRequest struct {
	Document     document `json:"document"`
	Features     features `json:"features"`
	EncodingType string   `json:"encodingType"`
}

type document struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	Language string `json:"language,omitempty"`
}

type features struct {
	ExtractSyntax   bool `json:"extractSyntax"`
	ExtractEntities bool `json:"extractEntities,omitempty"`
}

type annotateResponse struct {
	Tokens []struct {
		Text struct {
			Content     string `json:"content"`
			BeginOffset int    `json:"beginOffset"`
		} `json:"text"`
		PartOfSpeech struct {
			Tag string `json:"tag"`
		} `json:"partOfSpeech"`
		DependencyEdge struct {
			HeadTokenIndex int    `json:"headTokenIndex"`
			Label          string `json:"label"`
		} `json:"dependencyEdge"`
	} `json:"tokens"`
	Entities []struct {
		Mentions []struct {
			Text struct {
				Content     string `json:"content"`
				BeginOffset int    `json:"beginOffset"`
			} `json:"text"`
		} `json:"mentions"`
	} `json:"entities"`
	Language string `json:"language"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Segment implements segment.Segmenter.
func (c *Client) Segment(ctx context.Context, text, language string, mode segment.Mode) (segment.Result, error) {
	if strings.TrimSpace(text) == "" {
		return segment.Result{}, internalerr.ErrEmptyInput
	}
	if language != "" {
		if _, ok := supportedLanguages[language]; !ok {
			return segment.Result{}, fmt.Errorf("%w: nlapi does not support %q", internalerr.ErrUnsupportedLanguage, language)
		}
	}

	payload, err := c.annotate(ctx, text, language, mode)
	if err != nil {
		return segment.Result{}, err
	}

	result := segment.Result{Language: payload.Language}
	for i, tok := range payload.Tokens {
		pos := mapPOS(tok.PartOfSpeech.Tag)
		label := mapLabel(tok.DependencyEdge.Label)
		head := tok.DependencyEdge.HeadTokenIndex
		t := token.Token{
			Text:  tok.Text.Content,
			POS:   pos,
			Label: label,
			Head:  head,
		}
		// An offset gap before the next token is a separator in the
		// source.
		if i+1 < len(payload.Tokens) {
			next := payload.Tokens[i+1].Text.BeginOffset
			end := tok.Text.BeginOffset + utf8.RuneCountInString(tok.Text.Content)
			t.TrailingSpace = next > end
		}
		result.Tokens = append(result.Tokens, t)
	}

	if mode == segment.ModeEntity {
		for _, ent := range payload.Entities {
			for _, m := range ent.Mentions {
				start := m.Text.BeginOffset
				result.Entities = append(result.Entities, token.Span{
					Start: start,
					End:   start + utf8.RuneCountInString(m.Text.Content),
				})
			}
		}
	}
	return result, nil
}

func (c *Client) annotate(ctx context.Context, text, language string, mode segment.Mode) (*annotateResponse, error) {
	reqBody, err := json.Marshal(annotateRequest{
		Document: document{Type: "PLAIN_TEXT", Content: text, Language: language},
		Features: features{
			ExtractSyntax:   true,
			ExtractEntities: mode == segment.ModeEntity,
		},
		EncodingType: "UTF32",
	})
	if err != nil {
		return nil, err
	}

	url := c.baseURL() + "/v1/documents:annotateText"
	if c.APIKey != "" {
		url += "?key=" + c.APIKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	var payload annotateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", internalerr.ErrBackendUnavailable, err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("%w: nlapi error %d: %s",
			internalerr.ErrBackendUnavailable, payload.Error.Code, payload.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nlapi status %d", internalerr.ErrBackendUnavailable, resp.StatusCode)
	}
	return &payload, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return defaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// mapPOS converts API part-of-speech tags. Unknown tags degrade to OTHER.
func mapPOS(tag string) token.POS {
	switch tag {
	case "NOUN", "PRON":
		return token.Noun
	case "VERB":
		return token.Verb
	case "ADJ":
		return token.Adjective
	case "PRT", "ADP":
		return token.Particle
	case "PUNCT":
		return token.Punctuation
	case "NUM":
		return token.Number
	default:
		return token.Other
	}
}

// mapLabel converts API dependency labels. Unknown labels degrade to DEP,
// which never merges.
func mapLabel(label string) token.Label {
	switch label {
	case "ROOT":
		return token.LabelRoot
	case "P":
		return token.LabelPunct
	case "PRT", "CASE":
		return token.LabelCase
	case "AUX", "AUXPASS", "AUXVV", "AUXCAUS":
		return token.LabelAux
	case "SUFF", "RDROP":
		return token.LabelSuffix
	case "PREF":
		return token.LabelPrefix
	case "NUM", "NUMBER", "SNUM":
		return token.LabelNum
	case "NN":
		return token.LabelCompound
	default:
		return token.LabelDep
	}
}
