package main

const numCorners = 4

// startPose is a fixed starting corner: top-left position plus the
// initial facing angle in degrees (the client rotates the sprite).
type startPose struct {
	X, Y  float64
	Angle float64
}

// startPoses returns the four corner spawns for the configured field.
// Pacman boxes are 2*radius wide; corners sit 10px inside the edges.
func startPoses(cfg *Config) [numCorners]startPose {
	size := 2 * cfg.PacmanRadius
	margin := 10.0
	w, h := cfg.FieldWidth, cfg.FieldHeight
	return [numCorners]startPose{
		{X: margin, Y: margin, Angle: 45},
		{X: w - size - margin, Y: margin, Angle: 135},
		{X: margin, Y: h - size - margin, Angle: -45},
		{X: w - size - margin, Y: h - size - margin, Angle: -135},
	}
}

// cornerSlots allocates the four starting corners. The occupant of the
// lowest-indexed corner is the host.
type cornerSlots struct {
	ids [numCorners]string // player id, "" when free
}

// reserve takes the lowest free corner for id. Returns false when full.
func (c *cornerSlots) reserve(id string) (int, bool) {
	for i := range c.ids {
		if c.ids[i] == "" {
			c.ids[i] = id
			return i, true
		}
	}
	return -1, false
}

// release frees a corner; releasing a free or out-of-range corner is a no-op.
func (c *cornerSlots) release(corner int) {
	if corner < 0 || corner >= numCorners {
		return
	}
	c.ids[corner] = ""
}

// host returns the player id occupying the lowest-indexed corner, or "".
func (c *cornerSlots) host() string {
	for _, id := range c.ids {
		if id != "" {
			return id
		}
	}
	return ""
}

func (c *cornerSlots) count() int {
	n := 0
	for _, id := range c.ids {
		if id != "" {
			n++
		}
	}
	return n
}

func (c *cornerSlots) reset() {
	for i := range c.ids {
		c.ids[i] = ""
	}
}
