package llm

import (
	"errors"
	"iter"
	"testing"

	"google.golang.org/genai"
)

type streamStep struct {
	resp *genai.GenerateContentResponse
	err  error
}

// scriptedStream yields the given steps in order and counts how many the
// consumer actually pulled.
func scriptedStream(steps []streamStep, consumed *int) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, step := range steps {
			*consumed++
			if !yield(step.resp, step.err) {
				return
			}
		}
	}
}

func textChunk(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func inlineChunk(data []byte, mimeType string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{
				InlineData: &genai.Blob{Data: data, MIMEType: mimeType},
			}}},
		}},
	}
}

func TestScanImageStream_TextThenImage(t *testing.T) {
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: textChunk("rendering your image")},
		{resp: inlineChunk([]byte("png-bytes"), "image/png")},
	}, &consumed)

	image, err := scanImageStream("GenerateImage", "image-model", stream)
	if err != nil {
		t.Fatalf("scanImageStream: %v", err)
	}
	if string(image.Data) != "png-bytes" || image.MimeType != "image/png" || image.Model != "image-model" {
		t.Errorf("image = {%q %q %q}", image.Data, image.MimeType, image.Model)
	}
}

func TestScanImageStream_ShortCircuitsOnFirstInlineData(t *testing.T) {
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: inlineChunk([]byte("first"), "image/png")},
		{resp: inlineChunk([]byte("second"), "image/png")},
		{resp: textChunk("trailing commentary")},
	}, &consumed)

	image, err := scanImageStream("GenerateImage", "image-model", stream)
	if err != nil {
		t.Fatalf("scanImageStream: %v", err)
	}
	if string(image.Data) != "first" {
		t.Errorf("image data = %q, want first chunk's bytes", image.Data)
	}
	if consumed != 1 {
		t.Errorf("consumed %d chunks, want 1 (rest of stream discarded)", consumed)
	}
}

func TestScanImageStream_SkipsEmptyChunks(t *testing.T) {
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: &genai.GenerateContentResponse{}},
		{resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{resp: inlineChunk([]byte("png-bytes"), "image/png")},
	}, &consumed)

	image, err := scanImageStream("GenerateImage", "image-model", stream)
	if err != nil {
		t.Fatalf("scanImageStream: %v", err)
	}
	if string(image.Data) != "png-bytes" {
		t.Errorf("image data = %q", image.Data)
	}
}

func TestScanImageStream_DefaultsMimeType(t *testing.T) {
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: inlineChunk([]byte("png-bytes"), "")},
	}, &consumed)

	image, err := scanImageStream("GenerateImage", "image-model", stream)
	if err != nil {
		t.Fatalf("scanImageStream: %v", err)
	}
	if image.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png default", image.MimeType)
	}
}

func TestScanImageStream_TextOnlyYieldsErrNoImage(t *testing.T) {
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: textChunk("I cannot generate that image")},
		{resp: textChunk("please rephrase")},
	}, &consumed)

	if _, err := scanImageStream("GenerateImage", "image-model", stream); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
}

func TestScanImageStream_EmptyStreamYieldsErrNoImage(t *testing.T) {
	var consumed int
	stream := scriptedStream(nil, &consumed)

	if _, err := scanImageStream("GenerateImage", "image-model", stream); !errors.Is(err, ErrNoImage) {
		t.Fatalf("err = %v, want ErrNoImage", err)
	}
}

func TestScanImageStream_MidStreamError(t *testing.T) {
	wantErr := errors.New("stream reset")
	var consumed int
	stream := scriptedStream([]streamStep{
		{resp: textChunk("rendering your image")},
		{err: wantErr},
		{resp: inlineChunk([]byte("png-bytes"), "image/png")},
	}, &consumed)

	if _, err := scanImageStream("GenerateImage", "image-model", stream); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the stream error", err)
	}
	if consumed != 2 {
		t.Errorf("consumed %d chunks, want 2 (stop at the failed chunk)", consumed)
	}
}
