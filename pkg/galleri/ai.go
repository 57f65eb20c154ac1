package galleri

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// MaxSuggestedTags caps the number of tags accepted from the model.
const MaxSuggestedTags = 5

var tagPrompt = "generate 1-5 comma-separated one-word tags for this image. " +
	"Tags should be a present-tense singular lower-case word that someone organizing an image " +
	"collection would filter by: the subject (portrait, landscape, animal, building), the style " +
	"(photo, drawing, anime, painting, pixelart), dominant colors, and setting (beach, forest, urban, night). " +
	"Use bw for black and white images. Do not combine multiple words. Do not use plural words. " +
	"Reply with the tags only."

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
}

// SuggestTags asks a generative model for tags describing the image at path.
func SuggestTags(ctx context.Context, client *genai.Client, model string, path string) (Tags, error) {
	mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported image type: %s", path)
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromBytes(bs, mt),
			genai.NewPartFromText(tagPrompt),
		},
	}}

	resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return parseSuggestion(resp), nil
}

func parseSuggestion(resp *genai.GenerateContentResponse) Tags {
	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		break
	}

	ts := Tags{}
	for _, t := range ParseTags(sb.String()) {
		t = strings.ToLower(strings.ReplaceAll(t, " ", ""))
		if t == "" {
			continue
		}
		ts = append(ts, t)
		if len(ts) == MaxSuggestedTags {
			break
		}
	}
	return ts
}
