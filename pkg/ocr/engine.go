// Package ocr recognizes receipt text with Tesseract and extracts
// candidate transactions from it.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// Result is the recognized text and mean word confidence in percent.
type Result struct {
	Text       string
	Confidence float64
}

// Engine runs Tesseract through gosseract. Each call uses its own client,
// so an Engine is safe for concurrent use.
type Engine struct {
	Languages []string
	// LowConfidence triggers a second, binarized pass when the first pass
	// scores below it.
	LowConfidence float64
	Log           *zap.Logger
}

// NewEngine returns an engine for the given Tesseract language codes.
func NewEngine(languages []string, lowConfidence float64, log *zap.Logger) *Engine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{Languages: languages, LowConfidence: lowConfidence, Log: log}
}

// ExtractText recognizes the text of an encoded image. Tesseract itself
// cannot be interrupted; when ctx ends first the call returns ctx.Err() and
// the recognition finishes in the background.
func (e *Engine) ExtractText(ctx context.Context, img []byte) (Result, error) {
	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := e.extract(img)
		ch <- outcome{res, err}
	}()
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o := <-ch:
		return o.res, o.err
	}
}

func (e *Engine) extract(raw []byte) (Result, error) {
	img, err := decodeImage(raw)
	if err != nil {
		return Result{}, err
	}
	gray := prepare(img)
	buf, err := encodePNG(gray)
	if err != nil {
		return Result{}, err
	}
	best, err := e.recognize(buf)
	if err != nil {
		return Result{}, err
	}
	if best.Confidence < e.LowConfidence {
		if bin, err := encodePNG(binarize(gray, 160)); err == nil {
			if second, err := e.recognize(bin); err == nil && second.Confidence > best.Confidence {
				e.Log.Debug("ocr binarized pass improved confidence",
					zap.Float64("first", best.Confidence), zap.Float64("second", second.Confidence))
				best = second
			}
		}
	}
	if strings.TrimSpace(best.Text) == "" {
		return best, ErrNoText
	}
	e.Log.Debug("ocr text", zap.String("snippet", snippet(normalizeOCRText(best.Text), 120)), zap.Float64("confidence", best.Confidence))
	return best, nil
}

func (e *Engine) recognize(png []byte) (Result, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.Languages...); err != nil {
		return Result{}, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return Result{}, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return Result{}, fmt.Errorf("recognize: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{Text: text}, nil
	}
	var sum float64
	n := 0
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" {
			continue
		}
		sum += b.Confidence
		n++
	}
	conf := 0.0
	if n > 0 {
		conf = sum / float64(n)
	}
	return Result{Text: text, Confidence: conf}, nil
}
