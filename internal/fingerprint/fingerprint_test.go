package fingerprint

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"
)

var hexHash = regexp.MustCompile(`^[0-9a-f]{16}$`)

// quadrantImage builds a strongly structured test image: two opposing black
// quadrants on white. The coarse structure survives any uniform rescale.
func quadrantImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x < half) == (y < half) {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestFromImageFormat(t *testing.T) {
	fps, err := FromImage(quadrantImage(256))
	require.NoError(t, err)

	assert.Regexp(t, hexHash, fps.Perceptual)
	assert.Regexp(t, hexHash, fps.Average)
	assert.Regexp(t, hexHash, fps.Difference)
	assert.Len(t, fps.Perceptual, HashLength)
}

func TestFromImageIsDeterministic(t *testing.T) {
	first, err := FromImage(quadrantImage(256))
	require.NoError(t, err)
	second, err := FromImage(quadrantImage(256))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFingerprintSurvivesRescaling(t *testing.T) {
	original := quadrantImage(512)

	scaled := image.NewRGBA(image.Rect(0, 0, 128, 128))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), original, original.Bounds(), draw.Over, nil)

	fromOriginal, err := FromImage(original)
	require.NoError(t, err)
	fromScaled, err := FromImage(scaled)
	require.NoError(t, err)

	assert.Equal(t, fromOriginal.Perceptual, fromScaled.Perceptual)
	assert.Equal(t, fromOriginal.Average, fromScaled.Average)
	assert.Equal(t, fromOriginal.Difference, fromScaled.Difference)
}

func TestFromFileJPEGAndPNGDecode(t *testing.T) {
	dir := t.TempDir()
	img := quadrantImage(64)

	jpegPath := filepath.Join(dir, "test.jpg")
	jf, err := os.Create(jpegPath)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(jf, img, &jpeg.Options{Quality: 95}))
	require.NoError(t, jf.Close())

	pngPath := filepath.Join(dir, "test.png")
	pf, err := os.Create(pngPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(pf, img))
	require.NoError(t, pf.Close())

	fromJPEG, err := FromFile(jpegPath)
	require.NoError(t, err)
	fromPNG, err := FromFile(pngPath)
	require.NoError(t, err)

	// Lossy encoding still preserves the coarse structure.
	assert.Equal(t, fromPNG.Perceptual, fromJPEG.Perceptual)
}

func TestFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := FromFile(filepath.Join(dir, "missing.jpg"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not pixels"), 0o644))
	_, err = FromFile(garbage)
	assert.Error(t, err)
}
