package texture

import (
	"encoding/binary"
	"image"
	"image/color"
)

// DXT block compression. Encoding is a simple range fit: the per-channel
// extremes become the block endpoints and every pixel snaps to the nearest
// palette entry. The bit layout matches what the runtime's S3TC decoder
// expects; the decoders below exist for the preview server and tests.

func rgb565FromBytes(r, g, b byte) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func rgb565ToBytes(c uint16) (r, g, b byte) {
	r = byte((c >> 11) & 0x1f)
	g = byte((c >> 5) & 0x3f)
	b = byte(c & 0x1f)
	r = r<<3 | r>>2
	g = g<<2 | g>>4
	b = b<<3 | b>>2
	return
}

// extractBlock copies a 4x4 tile out of an RGBA byte slice, replicating the
// edge pixels of partial tiles.
func extractBlock(rgba []byte, w, h, bx, by int, block *[16][4]byte) {
	for y := 0; y < 4; y++ {
		sy := by + y
		if sy >= h {
			sy = h - 1
		}
		for x := 0; x < 4; x++ {
			sx := bx + x
			if sx >= w {
				sx = w - 1
			}
			o := (sy*w + sx) * 4
			block[y*4+x] = [4]byte{rgba[o], rgba[o+1], rgba[o+2], rgba[o+3]}
		}
	}
}

func colorPalette(c0, c1 uint16) (pal [4][3]int) {
	r0, g0, b0 := rgb565ToBytes(c0)
	r1, g1, b1 := rgb565ToBytes(c1)
	pal[0] = [3]int{int(r0), int(g0), int(b0)}
	pal[1] = [3]int{int(r1), int(g1), int(b1)}
	pal[2] = [3]int{(2*int(r0) + int(r1)) / 3, (2*int(g0) + int(g1)) / 3, (2*int(b0) + int(b1)) / 3}
	pal[3] = [3]int{(int(r0) + 2*int(r1)) / 3, (int(g0) + 2*int(g1)) / 3, (int(b0) + 2*int(b1)) / 3}
	return
}

func encodeColorBlock(dst []byte, block *[16][4]byte) {
	minC := [3]int{255, 255, 255}
	maxC := [3]int{0, 0, 0}
	for _, px := range block {
		for c := 0; c < 3; c++ {
			v := int(px[c])
			if v < minC[c] {
				minC[c] = v
			}
			if v > maxC[c] {
				maxC[c] = v
			}
		}
	}

	c0 := rgb565FromBytes(byte(maxC[0]), byte(maxC[1]), byte(maxC[2]))
	c1 := rgb565FromBytes(byte(minC[0]), byte(minC[1]), byte(minC[2]))
	// four-color mode needs c0 > c1
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	binary.LittleEndian.PutUint16(dst[0:], c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)

	if c0 == c1 {
		binary.LittleEndian.PutUint32(dst[4:], 0)
		return
	}

	pal := colorPalette(c0, c1)
	var code uint32
	for i, px := range block {
		best, bestDist := 0, 1<<30
		for p, pc := range pal {
			dr := int(px[0]) - pc[0]
			dg := int(px[1]) - pc[1]
			db := int(px[2]) - pc[2]
			dist := dr*dr + dg*dg + db*db
			if dist < bestDist {
				best, bestDist = p, dist
			}
		}
		code |= uint32(best) << (2 * uint(i))
	}
	binary.LittleEndian.PutUint32(dst[4:], code)
}

func encodeAlphaBlock(dst []byte, block *[16][4]byte) {
	minA, maxA := 255, 0
	for _, px := range block {
		a := int(px[3])
		if a < minA {
			minA = a
		}
		if a > maxA {
			maxA = a
		}
	}

	a0, a1 := maxA, minA
	dst[0], dst[1] = byte(a0), byte(a1)

	var bits uint64
	if a0 > a1 {
		// palette: code 0 = a0, 1 = a1, 2..7 interpolated
		var pal [8]int
		pal[0], pal[1] = a0, a1
		for c := 2; c < 8; c++ {
			pal[c] = ((8-c)*a0 + (c-1)*a1) / 7
		}
		for i, px := range block {
			a := int(px[3])
			best, bestDist := 0, 1<<30
			for c, pa := range pal {
				d := a - pa
				if d < 0 {
					d = -d
				}
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			bits |= uint64(best) << (3 * uint(i))
		}
	}
	for i := 0; i < 6; i++ {
		dst[2+i] = byte(bits >> (8 * uint(i)))
	}
}

// CompressDXT1 packs RGBA pixel data into 8-byte color blocks.
func CompressDXT1(rgba []byte, w, h int) []byte {
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, bw*bh*8)
	var block [16][4]byte
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			extractBlock(rgba, w, h, bx*4, by*4, &block)
			encodeColorBlock(out[(by*bw+bx)*8:], &block)
		}
	}
	return out
}

// CompressDXT5 packs RGBA pixel data into 16-byte alpha+color blocks.
func CompressDXT5(rgba []byte, w, h int) []byte {
	bw, bh := (w+3)/4, (h+3)/4
	out := make([]byte, bw*bh*16)
	var block [16][4]byte
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			extractBlock(rgba, w, h, bx*4, by*4, &block)
			off := (by*bw + bx) * 16
			encodeAlphaBlock(out[off:], &block)
			encodeColorBlock(out[off+8:], &block)
		}
	}
	return out
}

func decompressBlockDXT1(blockData []byte, outColors []color.NRGBA) {
	c0 := binary.LittleEndian.Uint16(blockData[0:])
	c1 := binary.LittleEndian.Uint16(blockData[2:])
	code := binary.LittleEndian.Uint32(blockData[4:])

	pal := colorPalette(c0, c1)
	for i := 0; i < 16; i++ {
		p := pal[(code>>(2*uint(i)))&3]
		outColors[i] = color.NRGBA{R: byte(p[0]), G: byte(p[1]), B: byte(p[2]), A: 0xff}
	}
}

func decompressBlockDXT5(blockData []byte, outColors []color.NRGBA) {
	a0 := int(blockData[0])
	a1 := int(blockData[1])
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(blockData[2+i]) << (8 * uint(i))
	}

	decompressBlockDXT1(blockData[8:], outColors)

	for i := 0; i < 16; i++ {
		c := int((bits >> (3 * uint(i))) & 7)
		var a int
		switch {
		case c == 0:
			a = a0
		case c == 1:
			a = a1
		case a0 > a1:
			a = ((8-c)*a0 + (c-1)*a1) / 7
		case c == 6:
			a = 0
		case c == 7:
			a = 0xff
		default:
			a = ((6-c)*a0 + (c-1)*a1) / 5
		}
		outColors[i].A = byte(a)
	}
}

func decompressImage(data []byte, w, h, blockSize int, decode func(block []byte, out []color.NRGBA)) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bw := (w + 3) / 4
	out := make([]color.NRGBA, 16)
	for i := 0; i*blockSize+blockSize <= len(data); i++ {
		decode(data[i*blockSize:], out)
		bx, by := (i%bw)*4, (i/bw)*4
		for y := 0; y < 4 && by+y < h; y++ {
			for x := 0; x < 4 && bx+x < w; x++ {
				img.SetNRGBA(bx+x, by+y, out[y*4+x])
			}
		}
	}
	return img
}

// DecompressDXT1 rebuilds an image from DXT1 blocks.
func DecompressDXT1(data []byte, w, h int) *image.NRGBA {
	return decompressImage(data, w, h, 8, decompressBlockDXT1)
}

// DecompressDXT5 rebuilds an image from DXT5 blocks.
func DecompressDXT5(data []byte, w, h int) *image.NRGBA {
	return decompressImage(data, w, h, 16, decompressBlockDXT5)
}
