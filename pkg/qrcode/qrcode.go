// Package qrcode renders the server URL as a scannable code, either as a
// PNG file or as block characters on a terminal.
package qrcode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"
)

const (
	// BoxSize is the edge length of one module in pixels.
	BoxSize = 10
	// Border is the width of the quiet zone in modules.
	Border = 4
)

var (
	ErrEmptyText        = errors.New("qrcode: text must not be empty")
	ErrCapacityExceeded = errors.New("qrcode: text exceeds the capacity of the largest version")
	ErrWrite            = errors.New("qrcode: cannot write image")
)

var palette = color.Palette{color.White, color.Black}

// Render encodes text at error correction level L. The version grows with
// the input; text that fits no version yields ErrCapacityExceeded.
func Render(text string) (image.Image, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	code, err := qr.Encode(text, qr.L)
	if err != nil {
		return nil, fmt.Errorf("%w: %d bytes: %v", ErrCapacityExceeded, len(text), err)
	}

	side := (code.Size + 2*Border) * BoxSize
	img := image.NewPaletted(image.Rect(0, 0, side, side), palette)
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			if !code.Black(x, y) {
				continue
			}
			x0, y0 := (x+Border)*BoxSize, (y+Border)*BoxSize
			for dy := 0; dy < BoxSize; dy++ {
				for dx := 0; dx < BoxSize; dx++ {
					img.SetColorIndex(x0+dx, y0+dy, 1)
				}
			}
		}
	}
	return img, nil
}

// Generate writes the PNG for text to destination, replacing any existing
// file, and returns destination.
func Generate(text, destination string) (string, error) {
	img, err := Render(text)
	if err != nil {
		return "", err
	}
	if err := writePNG(destination, img); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return destination, nil
}

func writePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return png.Encode(f, img)
}

// Half block characters for dark terminal backgrounds.
const (
	blackBlack = " "
	blackWhite = "▄"
	whiteBlack = "▀"
	whiteWhite = "█"
)

// PrintTerminal draws text as a code made of half blocks on w.
func PrintTerminal(w io.Writer, text string) {
	qrterminal.GenerateWithConfig(text, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      blackBlack,
		BlackWhiteChar: blackWhite,
		WhiteChar:      whiteWhite,
		WhiteBlackChar: whiteBlack,
		QuietZone:      1,
	})
}
