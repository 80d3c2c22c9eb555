package extract

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/starford/unpack/internal/apperr"
	"github.com/starford/unpack/internal/llm"
)

type fakeCompleter struct {
	text string
	err  error
	req  llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.req = req
	return f.text, f.err
}

func (f *fakeCompleter) CompleteJSON(context.Context, llm.Request, llm.Schema, any) error {
	return errors.New("not used")
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestConfidence(t *testing.T) {
	cases := []struct {
		unclear, words int
		want           float64
	}{
		{0, 50, 1.0},
		{10, 50, 0.6},
		{40, 50, 0.3},
		{20, 50, 0.3},
		{5, 50, 0.8},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := Confidence(c.unclear, c.words); !approx(got, c.want) {
			t.Errorf("Confidence(%d, %d) = %v, want %v", c.unclear, c.words, got, c.want)
		}
	}
}

func TestScore(t *testing.T) {
	text := "one two [unclear] four five six seven eight nine ten"
	if got := Score(text); !approx(got, 0.8) {
		t.Errorf("Score = %v, want 0.8", got)
	}
}

func TestVisionExtractor_Success(t *testing.T) {
	fc := &fakeCompleter{text: "  Today I felt calm.  "}
	e := NewVisionExtractor(fc)

	res, err := e.Extract(context.Background(), Page{Key: "p1", Data: []byte("\xff\xd8\xff\xe0jpeg"), ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Today I felt calm." {
		t.Errorf("text = %q", res.Text)
	}
	if !approx(res.Confidence, 1.0) {
		t.Errorf("confidence = %v", res.Confidence)
	}
	if !fc.req.Vision {
		t.Error("request should use the vision model")
	}
	if len(fc.req.Messages) != 1 || !strings.HasPrefix(fc.req.Messages[0].ImageURL, "data:image/jpeg;base64,") {
		t.Errorf("image not attached: %+v", fc.req.Messages)
	}
}

func TestVisionExtractor_EmptyAnnotationFails(t *testing.T) {
	e := NewVisionExtractor(&fakeCompleter{text: "   "})
	_, err := e.Extract(context.Background(), Page{Key: "p1", Data: []byte("img")})
	if !errors.Is(err, apperr.ErrExtraction) {
		t.Errorf("err = %v, want ErrExtraction", err)
	}
}

func TestVisionExtractor_UpstreamFailure(t *testing.T) {
	e := NewVisionExtractor(&fakeCompleter{err: llm.ErrUnavailable})
	_, err := e.Extract(context.Background(), Page{Key: "p1", Data: []byte("img")})
	if !errors.Is(err, apperr.ErrExtraction) || !errors.Is(err, llm.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestVisionExtractor_EmptyPage(t *testing.T) {
	e := NewVisionExtractor(&fakeCompleter{text: "should not be called"})
	if _, err := e.Extract(context.Background(), Page{Key: "p1"}); !errors.Is(err, apperr.ErrExtraction) {
		t.Errorf("err = %v", err)
	}
}

func TestDataURL_DetectsType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	if got := DataURL(Page{Data: png}); !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("DataURL = %q", got)
	}
}
