package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"keubot/pkg/ocr"

	"go.uber.org/zap"
)

func main() {
	img := flag.String("image", "", "image file to run OCR on")
	langs := flag.String("lang", "ind,eng", "tesseract languages, comma separated")
	low := flag.Float64("low", 50, "confidence below which a binarized retry runs")
	flag.Parse()
	if *img == "" {
		fmt.Println("usage: go run ./cmd/ocr_dump -image receipt.jpg [-lang ind,eng]")
		os.Exit(2)
	}

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	p, _ := filepath.Abs(*img)
	data, err := os.ReadFile(p)
	if err != nil {
		log.Fatal("read image", zap.Error(err))
	}
	fmt.Printf("Running OCR on %s\n", p)
	engine := ocr.NewEngine(strings.Split(*langs, ","), *low, log)
	res, err := engine.ExtractText(context.Background(), data)
	if err != nil {
		log.Fatal("extract text", zap.Error(err))
	}
	cleaned := ocr.Clean(res.Text)
	fmt.Printf("confidence=%.1f\n", res.Confidence)
	fmt.Println(strings.Repeat("-", 50))
	fmt.Println(cleaned)
	fmt.Println(strings.Repeat("-", 50))

	cands := ocr.FindCandidates(cleaned)
	for i, c := range cands {
		fmt.Printf("%d. amount=%d context=%s raw=%q line=%q\n", i+1, c.Amount, c.Context, c.Raw, c.Line)
	}
	if best, ok := ocr.Best(cands); ok {
		fmt.Printf("best amount=%d line=%q\n", best.Amount, best.Line)
	} else {
		fmt.Println("no amount candidates")
	}
}
