package animator

import (
	"testing"

	"github.com/Carmen-Shannon/hyako/engine/transform"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTarget struct {
	t transform.Transform
}

func (f *fakeTarget) Transform() transform.Transform     { return f.t }
func (f *fakeTarget) SetTransform(t transform.Transform) { f.t = t }

type recordingTrajectory struct {
	deltas []float32
	resets int
}

func (r *recordingTrajectory) Animate(t *transform.Transform, dt float32) {
	r.deltas = append(r.deltas, dt)
	t.Translation[0] += dt
}

func (r *recordingTrajectory) Reset() { r.resets++ }

func TestDirectionVector(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       mgl32.Vec3
	}{
		{"zero", 0, 0, mgl32.Vec3{1, 0, 0}},
		{"yaw 90", math32.Pi / 2, 0, mgl32.Vec3{0, 1, 0}},
		{"pitch 90", 0, math32.Pi / 2, mgl32.Vec3{0, 0, 1}},
		{"yaw 180", math32.Pi, 0, mgl32.Vec3{-1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionVector(tt.yaw, tt.pitch)
			for i := range 3 {
				assert.InDelta(t, tt.want[i], got[i], 1e-5)
			}
			assert.InDelta(t, 1, got.Len(), 1e-5)
		})
	}
}

func TestStationary_NeverMoves(t *testing.T) {
	tr := transform.New(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
	s := Stationary{}
	s.Animate(&tr, 10)
	s.Reset()
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, tr.Translation)
}

func TestNewCircular_Validates(t *testing.T) {
	_, err := NewCircular(mgl32.Vec3{}, -1)
	assert.Error(t, err)
	_, err = NewCircular(mgl32.Vec3{}, math32.NaN())
	assert.Error(t, err)

	c, err := NewCircular(mgl32.Vec3{}, 2)
	require.NoError(t, err)
	assert.Equal(t, DefaultCircularSpeed, c.SpeedDeg)
}

func TestCircular_StaysOnCircleAroundCenter(t *testing.T) {
	center := mgl32.Vec3{10, 4, 20}
	c, err := NewCircular(center, 3)
	require.NoError(t, err)

	tr := transform.Identity()
	tr.Translation[1] = 7
	c.Animate(&tr, 0)
	assert.InDelta(t, 13, tr.Translation.X(), 1e-5)
	assert.InDelta(t, 20, tr.Translation.Z(), 1e-5)

	for range 10 {
		c.Animate(&tr, 0.37)
		dx := tr.Translation.X() - center.X()
		dz := tr.Translation.Z() - center.Z()
		assert.InDelta(t, 3, math32.Sqrt(dx*dx+dz*dz), 1e-4)
		assert.Equal(t, float32(7), tr.Translation.Y())
	}
}

func TestCircular_QuarterTurn(t *testing.T) {
	c, err := NewCircular(mgl32.Vec3{}, 5)
	require.NoError(t, err)
	tr := transform.Identity()

	// 100 deg/s for 0.9 s is 90 degrees
	c.Animate(&tr, 0.9)
	assert.InDelta(t, 90, c.Angle(), 1e-4)
	assert.InDelta(t, 0, tr.Translation.X(), 1e-4)
	assert.InDelta(t, 5, tr.Translation.Z(), 1e-4)

	c.Reset()
	assert.Zero(t, c.Angle())
}

func TestNewLinear_RejectsZeroDistanceOrSpeed(t *testing.T) {
	_, err := NewLinear(LinearConfig{Distance: 0, Speed: 1})
	assert.Error(t, err)
	_, err = NewLinear(LinearConfig{Distance: 1, Speed: 0})
	assert.Error(t, err)
}

func TestLinear_ForwardMovement(t *testing.T) {
	l, err := NewLinear(LinearConfig{Distance: 10, Speed: 5, Reversing: true})
	require.NoError(t, err)
	tr := transform.Identity()

	l.Animate(&tr, 1)
	assert.InDelta(t, 0.5, l.Progress(), 1e-5)
	assert.InDelta(t, 5, tr.Translation.X(), 1e-5)
	assert.InDelta(t, 0, tr.Translation.Y(), 1e-5)
}

func TestLinear_PingPong(t *testing.T) {
	l, err := NewLinear(LinearConfig{Yaw: math32.Pi / 2, Distance: 4, Speed: 2, Looping: true, Reversing: true})
	require.NoError(t, err)
	tr := transform.Identity()

	l.Animate(&tr, 3.5)
	assert.True(t, l.Backwards())
	assert.InDelta(t, 1, l.Progress(), 1e-5)
	assert.InDelta(t, 4, tr.Translation.Y(), 1e-4)

	l.Animate(&tr, 5)
	assert.False(t, l.Backwards())
	assert.InDelta(t, -1, l.Progress(), 1e-5)
	assert.InDelta(t, -4, tr.Translation.Y(), 1e-4)
}

func TestLinear_LoopWithoutReversingRestarts(t *testing.T) {
	start := mgl32.Vec3{1, 1, 1}
	l, err := NewLinear(LinearConfig{Start: start, Distance: 2, Speed: 2, Looping: true})
	require.NoError(t, err)
	tr := transform.Identity()

	l.Animate(&tr, 1)
	assert.Zero(t, l.Progress())
	assert.Equal(t, start, tr.Translation)
}

func TestLinear_StopsAtEndWithoutLoopOrReverse(t *testing.T) {
	l, err := NewLinear(LinearConfig{Distance: 1, Speed: 1})
	require.NoError(t, err)
	tr := transform.Identity()

	l.Animate(&tr, 5)
	l.Animate(&tr, 5)
	assert.InDelta(t, 1, l.Progress(), 1e-6)
	assert.InDelta(t, 1, tr.Translation.X(), 1e-5)
}

func TestAnimator_UpdateScalesBySpeed(t *testing.T) {
	target := &fakeTarget{t: transform.Identity()}
	traj := &recordingTrajectory{}
	a := NewAnimator(WithSpeed(2))

	_, err := a.Add(target, traj)
	require.NoError(t, err)
	a.Update(0.5)

	assert.Equal(t, []float32{1}, traj.deltas)
	assert.InDelta(t, 1, target.t.Translation.X(), 1e-6)
	assert.InDelta(t, 0.5, a.Elapsed(), 1e-6)
}

func TestAnimator_PauseResume(t *testing.T) {
	target := &fakeTarget{t: transform.Identity()}
	traj := &recordingTrajectory{}
	a := NewAnimator()
	_, err := a.Add(target, traj)
	require.NoError(t, err)

	a.Pause()
	assert.True(t, a.Paused())
	a.Update(1)
	assert.Empty(t, traj.deltas)
	assert.Zero(t, a.Elapsed())

	a.Resume()
	a.Update(1)
	assert.Len(t, traj.deltas, 1)
}

func TestAnimator_ResetPlacesTargetsAtStart(t *testing.T) {
	start := mgl32.Vec3{2, 0, 0}
	lin, err := NewLinear(LinearConfig{Start: start, Distance: 4, Speed: 1})
	require.NoError(t, err)

	target := &fakeTarget{t: transform.Identity()}
	a := NewAnimator()
	_, err = a.Add(target, lin)
	require.NoError(t, err)

	a.Update(2)
	assert.InDelta(t, 4, target.t.Translation.X(), 1e-5)

	a.Reset()
	assert.Zero(t, a.Elapsed())
	assert.Zero(t, lin.Progress())
	assert.Equal(t, start, target.t.Translation)
}

func TestAnimator_SetSpeedValidates(t *testing.T) {
	a := NewAnimator()
	assert.Error(t, a.SetSpeed(-1))
	assert.Error(t, a.SetSpeed(math32.Inf(1)))
	assert.Equal(t, NeutralSpeed, a.Speed())

	require.NoError(t, a.SetSpeed(0.25))
	assert.Equal(t, float32(0.25), a.Speed())
}

func TestAnimator_SkipsInvalidDelta(t *testing.T) {
	traj := &recordingTrajectory{}
	a := NewAnimator()
	_, err := a.Add(&fakeTarget{t: transform.Identity()}, traj)
	require.NoError(t, err)

	a.Update(-1)
	a.Update(math32.NaN())
	assert.Empty(t, traj.deltas)
}

func TestAnimator_AddRemove(t *testing.T) {
	a := NewAnimator()
	_, err := a.Add(nil, Stationary{})
	assert.Error(t, err)

	id, err := a.Add(&fakeTarget{}, Stationary{})
	require.NoError(t, err)
	assert.Equal(t, 1, a.Len())

	a.Remove(id)
	assert.Equal(t, 0, a.Len())
}
