package mesh

import "math"

// pointInRing reports whether (x, y) lies inside the polygon with the
// even-odd ray casting rule. The ring need not be explicitly closed.
func pointInRing(ring [][2]float64, x, y float64) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring [][2]float64) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i][0]*ring[j][1] - ring[j][0]*ring[i][1]
	}
	return sum / 2
}

// offsetRing displaces every vertex outward by dist along the average
// normal of its two edges, approximating a buffered polygon outline.
func offsetRing(ring [][2]float64, dist float64) [][2]float64 {
	n := len(ring)
	if n < 3 {
		return ring
	}

	// outward is to the right of travel on counter-clockwise rings
	sign := 1.0
	if signedArea(ring) < 0 {
		sign = -1.0
	}

	out := make([][2]float64, n)
	for i := 0; i < n; i++ {
		prev := ring[(i+n-1)%n]
		next := ring[(i+1)%n]

		nx, ny := edgeNormal(prev, ring[i])
		mx, my := edgeNormal(ring[i], next)

		ax, ay := nx+mx, ny+my
		norm := math.Hypot(ax, ay)
		if norm == 0 {
			ax, ay = nx, ny
			norm = math.Hypot(ax, ay)
		}
		if norm == 0 {
			out[i] = ring[i]
			continue
		}
		out[i] = [2]float64{
			ring[i][0] + sign*dist*ax/norm,
			ring[i][1] + sign*dist*ay/norm,
		}
	}
	return out
}

func edgeNormal(a, b [2]float64) (float64, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	// right-hand normal
	return dy / l, -dx / l
}

func ringLength(ring [][2]float64) float64 {
	var total float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		total += math.Hypot(ring[j][0]-ring[i][0], ring[j][1]-ring[i][1])
	}
	return total
}

// resampleRing walks the closed ring emitting points at the given
// spacing along its perimeter.
func resampleRing(ring [][2]float64, spacing float64) [][2]float64 {
	if len(ring) < 2 || spacing <= 0 {
		return ring
	}

	var pts [][2]float64
	carried := 0.0
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		seg := math.Hypot(b[0]-a[0], b[1]-a[1])
		if seg == 0 {
			continue
		}
		pos := carried
		for pos < seg {
			t := pos / seg
			pts = append(pts, [2]float64{
				a[0] + t*(b[0]-a[0]),
				a[1] + t*(b[1]-a[1]),
			})
			pos += spacing
		}
		carried = pos - seg
	}
	return pts
}

// samplePolyline emits points along an open polyline every spacing map
// units, always including both endpoints.
func samplePolyline(line [][2]float64, spacing float64) [][2]float64 {
	if len(line) == 0 {
		return nil
	}
	if len(line) == 1 || spacing <= 0 {
		return [][2]float64{line[0]}
	}

	pts := [][2]float64{line[0]}
	carried := spacing
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		seg := math.Hypot(b[0]-a[0], b[1]-a[1])
		if seg == 0 {
			continue
		}
		pos := carried
		for pos < seg {
			t := pos / seg
			pts = append(pts, [2]float64{
				a[0] + t*(b[0]-a[0]),
				a[1] + t*(b[1]-a[1]),
			})
			pos += spacing
		}
		carried = pos - seg
	}

	last := line[len(line)-1]
	if pts[len(pts)-1] != last {
		pts = append(pts, last)
	}
	return pts
}
