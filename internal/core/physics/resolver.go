package physics

// ContactRecord summarises one resolved contact for downstream consumers.
//
// NormalSpeedA and NormalSpeedB are each body's pre-resolution velocity
// component along the contact normal, which points from A to B. A static
// wall always reports zero.
type ContactRecord struct {
	Impulse      float32 `json:"impulse"`
	NormalSpeedA float32 `json:"normal_speed_a"`
	NormalSpeedB float32 `json:"normal_speed_b"`
}

// swapped returns the record as seen from the other side of the contact.
// The normal reverses, so both speeds change sign.
func (r ContactRecord) swapped() ContactRecord {
	return ContactRecord{Impulse: r.Impulse, NormalSpeedA: negate(r.NormalSpeedB), NormalSpeedB: negate(r.NormalSpeedA)}
}

// negate keeps a zero speed positive so walls never report -0.
func negate(v float32) float32 { return 0 - v }

// Resolve applies c to its bodies and returns the contact summary in (A, B) order.
func Resolve(c Collision, restitution float32) ContactRecord {
	if c.IsWall() {
		return ResolveWall(c.A, c.Contact, restitution)
	}
	return ResolvePair(c.A, c.B, c.Contact, restitution)
}

// ResolveWall bounces a dynamic body off an infinitely heavy static one.
// Velocity is reflected only when moving into the surface; the full
// penetration is always removed from the body's position.
func ResolveWall(b *Body, c Contact, restitution float32) ContactRecord {
	n := c.Normal
	vn := Planar(b.Velocity).Dot(n)

	// c.Normal points out of the wall, toward b.
	var rec ContactRecord
	rec.NormalSpeedA = negate(vn)
	if vn < 0 {
		k := (1 + restitution) * vn
		b.Velocity[0] -= k * n.X()
		b.Velocity[1] -= k * n.Y()
		rec.Impulse = -k * b.Mass
	}

	b.Position[0] += n.X() * c.Penetration
	b.Position[1] += n.Y() * c.Penetration

	return rec
}

// ResolvePair exchanges a mass-weighted impulse between two dynamic bodies
// when they approach along the normal (which points from a to b), then
// separates them. The lighter body takes the larger share of the
// positional correction.
func ResolvePair(a, b *Body, c Contact, restitution float32) ContactRecord {
	n := c.Normal
	va := Planar(a.Velocity).Dot(n)
	vb := Planar(b.Velocity).Dot(n)

	rec := ContactRecord{NormalSpeedA: va, NormalSpeedB: vb}

	closing := va - vb
	if closing > 0 {
		j := -(1 + restitution) * closing / (1/a.Mass + 1/b.Mass)
		ja, jb := j/a.Mass, j/b.Mass
		a.Velocity[0] += ja * n.X()
		a.Velocity[1] += ja * n.Y()
		b.Velocity[0] -= jb * n.X()
		b.Velocity[1] -= jb * n.Y()
		rec.Impulse = -j
	}

	if c.Penetration > 0 {
		total := a.Mass + b.Mass
		ca := c.Penetration * (b.Mass / total)
		cb := c.Penetration * (a.Mass / total)
		a.Position[0] -= n.X() * ca
		a.Position[1] -= n.Y() * ca
		b.Position[0] += n.X() * cb
		b.Position[1] += n.Y() * cb
	}

	return rec
}
