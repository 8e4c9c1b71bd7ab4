package walking

// pose is a planar foot pose relative to the body: x and y in meters, yaw in radians.
type pose struct {
	x, y, yaw float64
}

func (p pose) add(o pose) pose {
	return pose{p.x + o.x, p.y + o.y, p.yaw + o.yaw}
}

func (p pose) sub(o pose) pose {
	return pose{p.x - o.x, p.y - o.y, p.yaw - o.yaw}
}

func (p pose) div(d float64) pose {
	return pose{p.x / d, p.y / d, p.yaw / d}
}

// footOffset interpolates one foot toward its swing target, one delta per frame.
type footOffset struct {
	current pose
	delta   pose
	target  pose
}

// retarget aims the foot at target, to be reached in frames steps.
func (o *footOffset) retarget(target pose, frames float64) {
	o.target = target
	o.delta = target.sub(o.current).div(frames)
}

// advance moves the foot one frame closer to its target.
func (o *footOffset) advance() {
	o.current = o.current.add(o.delta)
}

// snap places the foot exactly on its target, dropping accumulated rounding.
func (o *footOffset) snap() {
	o.current = o.target
}
