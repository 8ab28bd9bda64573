package vecmath

import (
	"fmt"
	"math"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

type Float interface {
	~float32 | ~float64
}

// Number is any component type a Vector3 can hold.
type Number interface {
	Signed | Unsigned | Float
}

// Vector3 is a value type; every operation returns a new vector.
type Vector3[T Number] struct {
	X, Y, Z T
}

// Vec3 is a direction or velocity in simulation space.
type Vec3 = Vector3[float64]

// Point3 is a position in simulation space.
type Point3 = Vector3[float64]

func New[T Number](x, y, z T) Vector3[T] {
	return Vector3[T]{X: x, Y: y, Z: z}
}

func (v Vector3[T]) Add(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vector3[T]) Sub(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul is the componentwise (Hadamard) product.
func (v Vector3[T]) Mul(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Div is componentwise division. Integer vectors panic on a zero divisor
// like any integer division.
func (v Vector3[T]) Div(o Vector3[T]) Vector3[T] {
	return Vector3[T]{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

func (v Vector3[T]) Scale(s T) Vector3[T] {
	return Vector3[T]{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3[T]) DivScalar(s T) Vector3[T] {
	return Vector3[T]{v.X / s, v.Y / s, v.Z / s}
}

func (v Vector3[T]) Neg() Vector3[T] {
	var zero T
	return Vector3[T]{zero - v.X, zero - v.Y, zero - v.Z}
}

func (v Vector3[T]) Dot(o Vector3[T]) T {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3[T]) Cross(o Vector3[T]) Vector3[T] {
	return Vector3[T]{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3[T]) SquaredLength() T {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length is computed in float64 regardless of T.
func (v Vector3[T]) Length() float64 {
	return math.Sqrt(float64(v.SquaredLength()))
}

func (v Vector3[T]) IsZero() bool {
	var zero T
	return v.X == zero && v.Y == zero && v.Z == zero
}

// At returns component i (0 = X, 1 = Y, 2 = Z).
func (v Vector3[T]) At(i int) (T, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	case 2:
		return v.Z, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
}

func (v *Vector3[T]) Set(i int, val T) error {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	default:
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	return nil
}

func (v Vector3[T]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", v.X, v.Y, v.Z)
}

// Distance2 returns the squared distance between a and b.
func Distance2[T Number](a, b Vector3[T]) T {
	return a.Sub(b).SquaredLength()
}

// Normalize scales v in place to unit length.
func Normalize[T Float](v *Vector3[T]) error {
	l := v.Length()
	if l == 0 {
		return ErrZeroLength
	}
	*v = v.DivScalar(T(l))
	return nil
}

// Unit returns the unit vector in the direction of v.
func Unit[T Float](v Vector3[T]) (Vector3[T], error) {
	if err := Normalize(&v); err != nil {
		return Vector3[T]{}, err
	}
	return v, nil
}
