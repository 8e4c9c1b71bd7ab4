package lipm

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"github.com/FaaizHaikal/gankenkun/planner"
)

const gravity = 9.81

// Generator is a TrajectoryGenerator that swings the CoM as a linear inverted pendulum over the
// current support foot. Each step starts from the last sample handed out by PopFront and finishes
// over the midpoint between the current and the next footstep.
type Generator struct {
	comHeight float64
	timeStep  float64
	comPeriod float64

	trajectory Trajectory
	// com is the last sample consumed, so a replan mid-step continues from where the body is.
	com r2.Point
}

// NewGenerator returns a generator with the CoM at the origin. SetParameters must be called before
// Update.
func NewGenerator() *Generator {
	return &Generator{}
}

// SetParameters implements TrajectoryGenerator.
func (g *Generator) SetParameters(comHeight, timeStep, comPeriod float64) {
	g.comHeight = comHeight
	g.timeStep = timeStep
	g.comPeriod = comPeriod
}

// Trajectory implements TrajectoryGenerator.
func (g *Generator) Trajectory() []Sample {
	return g.trajectory.Remaining()
}

// PopFront implements TrajectoryGenerator.
func (g *Generator) PopFront() (Sample, bool) {
	s, ok := g.trajectory.PopFront()
	if ok {
		g.com = s.Position
	}
	return s, ok
}

// Update implements TrajectoryGenerator. It emits one sample per tick from steps[0] to steps[1],
// round((steps[1].Time - steps[0].Time) / timeStep) samples in total.
func (g *Generator) Update(t float64, steps []planner.FootStep) {
	g.trajectory.Reset()
	if len(steps) < 2 || g.timeStep <= 0 {
		return
	}
	duration := steps[1].Time - steps[0].Time
	frames := int(math.Round(duration / g.timeStep))
	if frames <= 0 {
		return
	}

	end := steps[0].Position.Add(steps[1].Position).Mul(0.5)
	times, knots := g.knots(g.com, end, steps[0].Position, duration)

	k := 0
	for i := 1; i <= frames; i++ {
		tau := math.Min(float64(i)*g.timeStep, duration)
		for k < len(times)-2 && times[k+1] < tau {
			k++
		}
		g.trajectory.Push(Sample{Position: lerp(times[k], knots[k], times[k+1], knots[k+1], tau), Time: t + tau})
	}
}

// knots evaluates the pendulum every comPeriod over the step, plus the final instant. The pendulum
// pivots on zmp and its initial velocity is chosen so it reaches end at duration.
func (g *Generator) knots(start, end, zmp r2.Point, duration float64) ([]float64, []r2.Point) {
	if g.comHeight <= 0 || g.comPeriod <= 0 {
		return []float64{0, duration}, []r2.Point{start, end}
	}
	tc := math.Sqrt(g.comHeight / gravity)

	// rows are position relative to zmp and velocity, columns are the x and y axes
	s0 := start.Sub(zmp)
	e := end.Sub(zmp)
	c, sh := math.Cosh(duration/tc), math.Sinh(duration/tc)
	state := mat.NewDense(2, 2, []float64{
		s0.X, s0.Y,
		(e.X - s0.X*c) / (tc * sh), (e.Y - s0.Y*c) / (tc * sh),
	})

	times := []float64{0}
	knots := []r2.Point{start}
	for tau := 0.0; tau < duration; {
		h := math.Min(g.comPeriod, duration-tau)
		if h < 1e-12 {
			break
		}
		tau += h
		var next mat.Dense
		next.Mul(transition(h, tc), state)
		state = &next
		times = append(times, tau)
		knots = append(knots, r2.Point{X: state.At(0, 0), Y: state.At(0, 1)}.Add(zmp))
	}
	knots[len(knots)-1] = end
	return times, knots
}

// transition is the pendulum state transition matrix over h seconds.
func transition(h, tc float64) *mat.Dense {
	c, s := math.Cosh(h/tc), math.Sinh(h/tc)
	return mat.NewDense(2, 2, []float64{
		c, tc * s,
		s / tc, c,
	})
}

func lerp(t0 float64, p0 r2.Point, t1 float64, p1 r2.Point, t float64) r2.Point {
	if t1 <= t0 {
		return p1
	}
	return p0.Add(p1.Sub(p0).Mul((t - t0) / (t1 - t0)))
}
