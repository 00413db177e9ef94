// Package fingerprint computes perceptual similarity hashes from image pixel
// content. Unlike a cryptographic hash, a perceptual hash is robust to
// uniform rescaling: the same content at different pixel dimensions produces
// the identical fingerprint, which is what makes it usable for duplicate
// detection across export sizes.
package fingerprint

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

// HashLength is the length of every fingerprint string: 64 bits as 16 hex
// characters.
const HashLength = 16

// Fingerprints bundles the three similarity hashes computed per image.
// Perceptual (DCT-based) is the primary one; average and difference hashes
// are cheaper and kept for coarse similarity queries.
type Fingerprints struct {
	Perceptual string
	Average    string
	Difference string
}

// FromFile decodes the image at path and fingerprints it. Returns an error
// when the file cannot be opened or its format cannot be decoded; callers
// treat that as non-fatal and leave the fingerprint absent.
func FromFile(path string) (*Fingerprints, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	return FromImage(img)
}

// FromImage fingerprints already-decoded pixel data.
func FromImage(img image.Image) (*Fingerprints, error) {
	phash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perception hash: %w", err)
	}
	ahash, err := goimagehash.AverageHash(img)
	if err != nil {
		return nil, fmt.Errorf("average hash: %w", err)
	}
	dhash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil, fmt.Errorf("difference hash: %w", err)
	}

	return &Fingerprints{
		Perceptual: formatHash(phash.GetHash()),
		Average:    formatHash(ahash.GetHash()),
		Difference: formatHash(dhash.GetHash()),
	}, nil
}

func formatHash(bits uint64) string {
	return fmt.Sprintf("%016x", bits)
}
