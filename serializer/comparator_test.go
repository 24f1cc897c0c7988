package serializer

import (
	"cmp"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/testutil"
	"github.com/hupe1980/recgo/value"
)

func payload(t *testing.T, v value.Value) []byte {
	t.Helper()
	b := buffer.New(16)
	require.NoError(t, EncodePayload(b, v))
	return b.Bytes()
}

func sign(n int) int {
	return cmp.Compare(n, 0)
}

func TestCompareValuesAgreesWithDecoded(t *testing.T) {
	rng := testutil.NewRNG(4711)

	for _, k := range testutil.ScalarKinds {
		for range 300 {
			a, b := rng.Value(k), rng.Value(k)
			if rng.Intn(10) == 0 {
				b = a
			}

			want, err := value.Compare(a, b)
			require.NoError(t, err)
			got, err := CompareValues(payload(t, a), payload(t, b), k)
			require.NoError(t, err)
			require.Equal(t, sign(want), sign(got), "%s: %s vs %s", k, a, b)
		}
	}
}

func TestCompareInsideRecords(t *testing.T) {
	s := newTestSerializer()
	rng := testutil.NewRNG(11)

	offsetOf := func(buf *buffer.Buffer, name string) int {
		id, ok := s.Dictionary().ID(name, false)
		require.True(t, ok)
		b, h, err := parseHeader(buf.Bytes(), model.Null)
		require.NoError(t, err)
		found := -1
		require.NoError(t, scanTable(b, h, model.Null, func(pid int32, off int) (bool, error) {
			if pid == id {
				found = off
				return false, nil
			}
			return true, nil
		}))
		require.GreaterOrEqual(t, found, 0)
		return found + 1 // skip the tag byte
	}

	for _, k := range testutil.ScalarKinds {
		for range 50 {
			a, b := rng.Value(k), rng.Value(k)
			ra, err := s.Serialize(nil, document(prop("pad", rng.Value(value.KindString)), prop("v", a)))
			require.NoError(t, err)
			rb, err := s.Serialize(nil, document(prop("v", b)))
			require.NoError(t, err)

			want, err := value.Compare(a, b)
			require.NoError(t, err)
			got, err := Compare(ra, offsetOf(ra, "v"), rb, offsetOf(rb, "v"), k)
			require.NoError(t, err)
			require.Equal(t, sign(want), sign(got), "%s: %s vs %s", k, a, b)
		}
	}
}

func TestCompareOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want int
	}{
		{"bool", value.Bool(false), value.Bool(true), -1},
		{"negative byte", value.Byte(-1), value.Byte(1), -1},
		{"int", value.Int(-5), value.Int(-6), 1},
		{"double", value.Double(-0.5), value.Double(0.25), -1},
		{"decimal scale", value.Decimal(big.NewInt(10), 1), value.Decimal(big.NewInt(100), 2), 0},
		{"decimal", value.Decimal(big.NewInt(-1), 0), value.Decimal(big.NewInt(1), 3), -1},
		{"string prefix", value.String("ab"), value.String("abc"), -1},
		{"rid bucket major", value.Ref(model.NewRID(1, 100)), value.Ref(model.NewRID(2, 0)), -1},
		{"null", value.Null(), value.Null(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareValues(payload(t, tt.a), payload(t, tt.b), tt.a.Kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sign(got))
		})
	}
}

func TestCompareErrors(t *testing.T) {
	list := payload(t, value.List(value.Int(1)))
	_, err := CompareValues(list, list, value.KindList)
	assert.ErrorIs(t, err, value.ErrIncomparable)

	_, err = CompareValues(nil, nil, value.Kind(200))
	assert.ErrorIs(t, err, value.ErrIncomparable)

	s := payload(t, value.String("hello"))
	_, err = CompareValues(s[:3], s, value.KindString)
	assert.ErrorIs(t, err, ErrCorrupted)

	buf := buffer.Wrap(s)
	_, err = Compare(buf, len(s)+1, buf, 0, value.KindString)
	assert.ErrorIs(t, err, ErrCorrupted)
}

func TestCompareDecimalExtremeScales(t *testing.T) {
	one := value.Decimal(big.NewInt(1), 0)
	tiny := value.Decimal(big.NewInt(1), math.MaxInt32)
	huge := value.Decimal(big.NewInt(-7), math.MinInt32)

	got, err := CompareValues(payload(t, one), payload(t, tiny), value.KindDecimal)
	require.NoError(t, err)
	assert.Positive(t, got)

	got, err = CompareValues(payload(t, huge), payload(t, tiny), value.KindDecimal)
	require.NoError(t, err)
	assert.Negative(t, got)
}
