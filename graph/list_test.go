package graph

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/buffer"
	"github.com/hupe1980/recgo/dictionary"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/serializer"
	"github.com/hupe1980/recgo/storage"
	"github.com/hupe1980/recgo/value"
)

var errWrite = errors.New("write failed")

// recordingStore logs writes and can fail creates or updates of one RID.
type recordingStore struct {
	*storage.MemoryStore

	mu         sync.Mutex
	ops        []string
	failCreate bool
	failUpdate model.RID
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: storage.NewMemoryStore(), failUpdate: model.Null}
}

func (s *recordingStore) Create(ctx context.Context, bucket int32, data []byte) (model.RID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return model.Null, errWrite
	}
	rid, err := s.MemoryStore.Create(ctx, bucket, data)
	s.ops = append(s.ops, "create "+rid.String())
	return rid, err
}

func (s *recordingStore) Update(ctx context.Context, rid model.RID, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rid == s.failUpdate {
		return errWrite
	}
	s.ops = append(s.ops, "update "+rid.String())
	return s.MemoryStore.Update(ctx, rid, data)
}

func (s *recordingStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

func newVertex(t *testing.T, store Store, props value.Properties) model.RID {
	t.Helper()
	ser := serializer.New(dictionary.New())
	buf, err := ser.Serialize(nil, serializer.NewVertex(props))
	require.NoError(t, err)
	rid, err := store.Create(context.Background(), 1, buf.Bytes())
	require.NoError(t, err)
	return rid
}

func headPointer(t *testing.T, store Store, vertex model.RID, dir model.Direction) model.RID {
	t.Helper()
	data, err := store.Read(context.Background(), vertex)
	require.NoError(t, err)
	out, in, err := serializer.GraphPointers(buffer.Wrap(data))
	require.NoError(t, err)
	if dir == model.Out {
		return out
	}
	return in
}

func collect(t *testing.T, l *EdgeLinkedList) []Pair {
	t.Helper()
	var pairs []Pair
	for p, err := range l.All(context.Background()) {
		require.NoError(t, err)
		pairs = append(pairs, p)
	}
	return pairs
}

func TestNoChunk(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	v := newVertex(t, store, nil)

	l, err := Open(ctx, store, v, model.Out)
	require.NoError(t, err)
	assert.True(t, l.Head().IsNull())
	assert.Empty(t, collect(t, l))
	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, l.AddAll(ctx, nil))
	assert.True(t, headPointer(t, store, v, model.Out).IsNull())
}

func TestOverflowAllocatesSecondChunk(t *testing.T) {
	const capacity = 4
	ctx := context.Background()

	for name, add := range map[string]func(*EdgeLinkedList, []Pair) error{
		"one by one": func(l *EdgeLinkedList, pairs []Pair) error {
			for _, p := range pairs {
				if err := l.Add(ctx, p.Neighbor, p.Edge); err != nil {
					return err
				}
			}
			return nil
		},
		"batch": func(l *EdgeLinkedList, pairs []Pair) error { return l.AddAll(ctx, pairs) },
	} {
		t.Run(name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			v := newVertex(t, store, nil)
			l, err := Open(ctx, store, v, model.Out, WithChunkCapacity(capacity))
			require.NoError(t, err)

			var pairs []Pair
			for i := range capacity + 1 {
				pairs = append(pairs, pair(i))
			}
			require.NoError(t, add(l, pairs))

			var chunks []*EdgeChunk
			for c, err := range l.Chunks(ctx) {
				require.NoError(t, err)
				chunks = append(chunks, c)
			}
			require.Len(t, chunks, 2)

			head, older := chunks[0], chunks[1]
			assert.Equal(t, 1, head.Len())
			assert.Equal(t, older.RID(), head.Next())
			assert.Equal(t, capacity, older.Len())
			assert.True(t, older.Full())
			assert.True(t, older.Next().IsNull())

			assert.Equal(t, head.RID(), l.Head())
			assert.Equal(t, head.RID(), headPointer(t, store, v, model.Out))
			assert.True(t, headPointer(t, store, v, model.In).IsNull())

			want := append([]Pair{pair(capacity)}, pairs[:capacity]...)
			assert.Equal(t, want, collect(t, l))
		})
	}
}

func TestChunkPersistedBeforeRepoint(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	v := newVertex(t, store, nil)
	store.reset()

	l, err := Open(ctx, store, v, model.In, WithChunkCapacity(2))
	require.NoError(t, err)
	require.NoError(t, l.AddAll(ctx, []Pair{pair(0), pair(1), pair(2)}))

	first := model.NewRID(1, 1)
	second := model.NewRID(1, 2)
	assert.Equal(t, []string{
		"create " + first.String(),
		"update " + v.String(),
		"create " + second.String(),
		"update " + v.String(),
	}, store.ops)
}

func TestCreateFailureLeavesVertexUntouched(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	v := newVertex(t, store, value.Properties{{Name: "name", Value: value.String("a")}})

	l, err := Open(ctx, store, v, model.Out, WithChunkCapacity(2))
	require.NoError(t, err)
	require.NoError(t, l.AddAll(ctx, []Pair{pair(0), pair(1)}))
	head := l.Head()
	before, err := store.Read(ctx, v)
	require.NoError(t, err)

	store.failCreate = true
	err = l.Add(ctx, pair(2).Neighbor, pair(2).Edge)
	require.ErrorIs(t, err, errWrite)

	after, err := store.Read(ctx, v)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, head, l.Head())

	store.failCreate = false
	reopened, err := Open(ctx, store, v, model.Out, WithChunkCapacity(2))
	require.NoError(t, err)
	assert.Equal(t, []Pair{pair(0), pair(1)}, collect(t, reopened))
}

func TestRepointFailureOrphansChunk(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	v := newVertex(t, store, nil)

	l, err := Open(ctx, store, v, model.Out)
	require.NoError(t, err)

	store.failUpdate = v
	err = l.Add(ctx, pair(0).Neighbor, pair(0).Edge)
	require.ErrorIs(t, err, errWrite)
	assert.True(t, l.Head().IsNull())
	assert.True(t, headPointer(t, store, v, model.Out).IsNull())

	// The chunk exists but nothing references it.
	assert.Equal(t, 2, store.Count(1))

	store.failUpdate = model.Null
	require.NoError(t, l.Add(ctx, pair(1).Neighbor, pair(1).Edge))
	assert.Equal(t, []Pair{pair(1)}, collect(t, l))
}

func TestHeadUpdateFailureReloads(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	v := newVertex(t, store, nil)

	l, err := Open(ctx, store, v, model.Out, WithChunkCapacity(4))
	require.NoError(t, err)
	require.NoError(t, l.Add(ctx, pair(0).Neighbor, pair(0).Edge))

	store.failUpdate = l.Head()
	require.ErrorIs(t, l.Add(ctx, pair(1).Neighbor, pair(1).Edge), errWrite)

	store.failUpdate = model.Null
	require.NoError(t, l.Add(ctx, pair(2).Neighbor, pair(2).Edge))
	assert.Equal(t, []Pair{pair(0), pair(2)}, collect(t, l))
}

func TestReopenContinuesHead(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	v := newVertex(t, store, nil)

	l, err := Open(ctx, store, v, model.Out, WithChunkCapacity(4))
	require.NoError(t, err)
	require.NoError(t, l.AddAll(ctx, []Pair{pair(0), pair(1), pair(2)}))

	l, err = Open(ctx, store, v, model.Out, WithChunkCapacity(4))
	require.NoError(t, err)
	require.NoError(t, l.AddAll(ctx, []Pair{pair(3), pair(4)}))

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []Pair{pair(4), pair(0), pair(1), pair(2), pair(3)}, collect(t, l))
}

func TestDirectionsAndPropertiesPreserved(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	props := value.Properties{{Name: "name", Value: value.String("alice")}, {Name: "age", Value: value.Long(30)}}
	dict := dictionary.New()
	ser := serializer.New(dict)
	buf, err := ser.Serialize(nil, serializer.NewVertex(props))
	require.NoError(t, err)
	v, err := store.Create(ctx, 1, buf.Bytes())
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out, err := Open(ctx, store, v, model.Out, WithChunkBucket(7), WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, out.Add(ctx, pair(1).Neighbor, pair(1).Edge))
	in, err := Open(ctx, store, v, model.In, WithChunkBucket(7))
	require.NoError(t, err)
	require.NoError(t, in.Add(ctx, pair(2).Neighbor, pair(2).Edge))

	assert.Equal(t, int32(7), out.Head().BucketID)
	assert.NotEqual(t, out.Head(), in.Head())
	assert.Equal(t, out.Head(), headPointer(t, store, v, model.Out))
	assert.Equal(t, in.Head(), headPointer(t, store, v, model.In))
	assert.Contains(t, logs.String(), "edge chunk allocated")

	// out was opened before in repointed the vertex; its view stays valid.
	assert.Equal(t, []Pair{pair(1)}, collect(t, out))
	assert.Equal(t, []Pair{pair(2)}, collect(t, in))

	data, err := store.Read(ctx, v)
	require.NoError(t, err)
	got, err := ser.DeserializeAll(buffer.Wrap(data))
	require.NoError(t, err)
	assert.True(t, props.Equal(got))
}

func TestOpenRejectsNonVertex(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	ser := serializer.New(dictionary.New())
	buf, err := ser.Serialize(nil, serializer.Record{Type: model.RecordDocument})
	require.NoError(t, err)
	doc, err := store.Create(ctx, 1, buf.Bytes())
	require.NoError(t, err)

	_, err = Open(ctx, store, doc, model.Out)
	assert.ErrorIs(t, err, ErrNotVertex)

	_, err = Open(ctx, store, model.NewRID(1, 99), model.Out)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCycleDetected(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	v := newVertex(t, store, nil)

	l, err := Open(ctx, store, v, model.Out)
	require.NoError(t, err)
	require.NoError(t, l.Add(ctx, pair(0).Neighbor, pair(0).Edge))

	self := NewEdgeChunk(DefaultChunkCapacity, l.Head())
	self.Append(pair(0).Neighbor, pair(0).Edge)
	data, err := self.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, l.Head(), data))

	var last error
	seen := 0
	for _, err := range l.All(ctx) {
		if err != nil {
			last = err
			break
		}
		seen++
	}
	assert.ErrorIs(t, last, ErrCycle)
	assert.Equal(t, 1, seen)
	_, err = l.Count(ctx)
	assert.ErrorIs(t, err, ErrCycle)
}
