package testutil

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"lukechampine.com/frand"

	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/value"
)

// ScalarKinds lists every kind except List.
var ScalarKinds = []value.Kind{
	value.KindNull, value.KindString, value.KindByte, value.KindBoolean,
	value.KindShort, value.KindInt, value.KindLong, value.KindFloat,
	value.KindDouble, value.KindDate, value.KindDateTime, value.KindDecimal,
	value.KindRID, value.KindBinary,
}

// RNG is a seeded, reproducible random source for test data.
// It is thread-safe.
type RNG struct {
	rand *frand.RNG
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: newSource(seed), seed: seed}
}

func newSource(seed int64) *frand.RNG {
	key := make([]byte, 32)
	binary.BigEndian.PutUint64(key, uint64(seed))
	return frand.NewCustom(key, 1024, 12)
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = newSource(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return binary.BigEndian.Uint64(r.rand.Bytes(8))
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Bytes(n)
}

// RID returns a random non-null RID.
func (r *RNG) RID() model.RID {
	return model.NewRID(int32(r.Intn(1<<16)), int64(r.Uint64()>>1))
}

// Value returns a random value of kind k. Integer kinds hit their range
// boundaries about one time in four. Lists hold up to eight scalar items.
func (r *RNG) Value(k value.Kind) value.Value {
	edge := r.Intn(4) == 0
	switch k {
	case value.KindNull:
		return value.Null()
	case value.KindString:
		return value.String(r.text(r.Intn(24)))
	case value.KindByte:
		return value.Byte(int8(r.Intn(256) - 128))
	case value.KindBoolean:
		return value.Bool(r.Intn(2) == 1)
	case value.KindShort:
		if edge {
			return value.Short(pick(r, int16(math.MinInt16), math.MaxInt16, 0, -1))
		}
		return value.Short(int16(r.Uint64()))
	case value.KindInt:
		if edge {
			return value.Int(pick(r, int32(math.MinInt32), math.MaxInt32, 0, -1))
		}
		return value.Int(int32(r.Uint64()))
	case value.KindLong:
		if edge {
			return value.Long(pick(r, int64(math.MinInt64), math.MaxInt64, 0, -1))
		}
		return value.Long(int64(r.Uint64()))
	case value.KindFloat:
		if edge {
			return value.Float(pick(r, float32(math.MaxFloat32), -math.MaxFloat32, math.SmallestNonzeroFloat32, 0))
		}
		return value.Float(float32(r.unit()*2e6 - 1e6))
	case value.KindDouble:
		if edge {
			return value.Double(pick(r, math.MaxFloat64, -math.MaxFloat64, math.SmallestNonzeroFloat64, 0))
		}
		return value.Double(r.unit()*2e12 - 1e12)
	case value.KindDate:
		return value.Date(time.UnixMilli(r.millis()).UTC())
	case value.KindDateTime:
		return value.DateTimeMillis(r.millis())
	case value.KindDecimal:
		unscaled := new(big.Int).SetBytes(r.Bytes(1 + r.Intn(20)))
		if r.Intn(2) == 0 {
			unscaled.Neg(unscaled)
		}
		return value.Decimal(unscaled, int32(r.Intn(12)))
	case value.KindRID:
		return value.Ref(r.RID())
	case value.KindBinary:
		return value.Binary(r.Bytes(r.Intn(32)))
	case value.KindList:
		items := make([]value.Value, r.Intn(9))
		for i := range items {
			items[i] = r.Value(r.ScalarKind())
		}
		return value.List(items...)
	default:
		panic(fmt.Sprintf("testutil: no generator for kind %s", k))
	}
}

// ScalarKind returns a random kind from ScalarKinds.
func (r *RNG) ScalarKind() value.Kind {
	return ScalarKinds[r.Intn(len(ScalarKinds))]
}

// Properties returns n properties named p0..p(n-1) with random kinds,
// lists included.
func (r *RNG) Properties(n int) value.Properties {
	props := make(value.Properties, 0, n)
	for i := range n {
		k := r.ScalarKind()
		if r.Intn(8) == 0 {
			k = value.KindList
		}
		props = append(props, value.Property{Name: fmt.Sprintf("p%d", i), Value: r.Value(k)})
	}
	return props
}

func (r *RNG) text(n int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyzäöü€日本 "
	runes := []rune(alphabet)
	out := make([]rune, n)
	for i := range out {
		out[i] = runes[r.Intn(len(runes))]
	}
	return string(out)
}

func (r *RNG) unit() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// millis stays within roughly +/- 300 years of the epoch.
func (r *RNG) millis() int64 {
	const span = int64(300*365*24) * int64(time.Hour/time.Millisecond)
	return int64(r.Uint64()%uint64(2*span)) - span
}

func pick[T any](r *RNG, choices ...T) T {
	return choices[r.Intn(len(choices))]
}
