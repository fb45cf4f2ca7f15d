// Package blend provides the pixel compositing operations used by the
// noise effects: a "lighten" blend that never darkens the destination,
// and standard source-over alpha compositing.
package blend

// Lighten selects the lighter value per channel, alpha included.
// Noise composited with Lighten can only brighten the base image.
func Lighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return maxByte(sr, dr), maxByte(sg, dg), maxByte(sb, db), maxByte(sa, da)
}

// SourceOver blends a non-premultiplied source pixel over a destination
// pixel using standard alpha compositing:
//
//	outA = sa + da*(1 - sa)
//	outC = (sc*sa + dc*da*(1 - sa)) / outA
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 || da == 0 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}

	// Destination weight da*(1-sa), then total alpha. Both stay within a
	// byte because sa + da*(255-sa)/255 <= 255.
	dw := mulDiv255(da, 255-sa)
	outA := addClamp255(sa, dw)
	if outA == 0 {
		return 0, 0, 0, 0
	}

	c := func(s, d byte) byte {
		num := uint32(s)*uint32(sa) + uint32(d)*uint32(dw)
		return byte((num + uint32(outA)/2) / uint32(outA))
	}
	return c(sr, dr), c(sg, dg), c(sb, db), outA
}

// maxByte returns the larger of two bytes.
func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}
