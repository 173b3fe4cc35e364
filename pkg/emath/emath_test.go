package emath

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		in, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{math.NaN(), 0, 1, 0},
		{7, 2, 12, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Clamp(tt.in, tt.min, tt.max), "Clamp(%v, %v, %v)", tt.in, tt.min, tt.max)
	}
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{0.5, 0.25, 2}

	assert.Equal(t, Vec3{1.5, 2.25, 5}, a.Add(b))
	assert.Equal(t, Vec3{0.5, 0.5, 6}, a.Mul(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, 3.0, a.Max())
	assert.Equal(t, Vec3{1, 4, 9}, a.Map(func(f float64) float64 { return f * f }))

	c := Vec3{-1, 0.5, 2}
	c.FloorAt(0)
	c.CeilingAt(1)
	assert.Equal(t, Vec3{0, 0.5, 1}, c)

	assert.True(t, a.ApproxEqual(Vec3{1.00001, 2, 3}, 1e-4))
	assert.False(t, a.ApproxEqual(Vec3{1.1, 2, 3}, 1e-4))
}

func TestFloatGridCentroidAbove(t *testing.T) {
	fg := NewFloatGrid(4, 3)
	_, _, n := fg.CentroidAbove(0)
	assert.Equal(t, 0, n)

	fg.Set(1, 1, 10)
	fg.Set(3, 1, 10)
	fg.Set(2, 2, 5) // below threshold

	x, y, n := fg.CentroidAbove(5)
	assert.Equal(t, 2, n)
	assert.InDelta(t, 2.0, x, 1e-12)
	assert.InDelta(t, 1.0, y, 1e-12)
}

func TestFloatGridFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 10, 13, 12))
	img.Set(12, 11, color.NRGBA{R: 200, A: 255})

	fg := NewFloatGridFromImage(img, func(c color.Color) float64 {
		return float64(color.NRGBAModel.Convert(c).(color.NRGBA).R)
	})
	require.Equal(t, 3, fg.Dx())
	require.Equal(t, 2, fg.Dy())
	assert.Equal(t, 200.0, fg.Get(2, 1))
	assert.Equal(t, 0.0, fg.Get(0, 0))

	min, max := fg.MinMax()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 200.0, max)
}

func TestFloatGridEmpty(t *testing.T) {
	fg := NewFloatGrid(0, 5)
	assert.Equal(t, 0, fg.Dx())
	assert.Equal(t, 0, fg.Dy())
}

func TestFloatGridToImg(t *testing.T) {
	fg := NewFloatGrid(16, 8)
	fg.Set(3, 3, 1)
	require.NoError(t, fg.ToImg("mask", filepath.Join(t.TempDir(), "grid.png")))
}
