package util

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrNoText = errors.New("no text extracted from PDF")

// ExtractPDFText returns the text layer of a PDF. Pages without a text layer
// go through tesseract when it is installed.
func ExtractPDFText(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	defer doc.Close()

	ocr := tesseractAvailable()
	var fullText strings.Builder
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			continue
		}
		pageText = strings.TrimSpace(pageText)

		if pageText == "" && ocr {
			img, err := doc.Image(n)
			if err != nil {
				lastErr = fmt.Errorf("page %d: render: %w", n+1, err)
				continue
			}
			if pageText, err = ocrImage(img); err != nil {
				lastErr = fmt.Errorf("page %d: %w", n+1, err)
				continue
			}
		}

		if pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("%w: %w", ErrNoText, lastErr)
		}
		return "", ErrNoText
	}
	return result, nil
}

func tesseractAvailable() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

func ocrImage(img image.Image) (string, error) {
	tmp, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode PNG: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	var stderr bytes.Buffer
	cmd := exec.Command("tesseract", tmp.Name(), "stdout", "-l", "eng")
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
