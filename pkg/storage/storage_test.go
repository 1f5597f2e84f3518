package storage_test

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrshah/tenantengine/pkg/storage"
)

// fakeS3 is an in-memory bucket implementing the client subset the package
// uses.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.objects[aws.ToString(in.Key)] = data
	f.mu.Unlock()
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	data, ok := f.objects[aws.ToString(in.Key)]
	f.mu.Unlock()

	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "key not found"}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(string(data)))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	delete(f.objects, aws.ToString(in.Key))
	f.mu.Unlock()
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	for _, obj := range in.Delete.Objects {
		delete(f.objects, aws.ToString(obj.Key))
	}
	f.mu.Unlock()
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var contents []types.Object
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			contents = append(contents, types.Object{Key: aws.String(key)})
		}
	}
	sort.Slice(contents, func(i, j int) bool {
		return aws.ToString(contents[i].Key) < aws.ToString(contents[j].Key)
	})

	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newTestStorage(t *testing.T, client storage.S3Client) *storage.Storage {
	t.Helper()

	s, err := storage.New(context.Background(),
		storage.Config{Bucket: "test-bucket"},
		storage.WithClient(client),
	)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing bucket", func(t *testing.T) {
		t.Parallel()

		_, err := storage.New(context.Background(), storage.Config{})
		assert.ErrorIs(t, err, storage.ErrMissingBucket)
	})

	t.Run("normalizes root prefix", func(t *testing.T) {
		t.Parallel()

		s, err := storage.New(context.Background(),
			storage.Config{Bucket: "b", RootPrefix: "data"},
			storage.WithClient(newFakeS3()),
		)
		require.NoError(t, err)
		assert.Equal(t, "data/acme/", s.ForTenant("acme").Prefix())
	})
}

func TestTenantStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put and get round trip", func(t *testing.T) {
		t.Parallel()

		client := newFakeS3()
		store := newTestStorage(t, client).ForTenant("acme")

		require.NoError(t, store.Put(ctx, "reports/q1.csv", strings.NewReader("a,b,c"), "text/csv"))

		body, err := store.Get(ctx, "reports/q1.csv")
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "a,b,c", string(data))

		// The object lives under the tenant prefix in the bucket.
		assert.Equal(t, []string{"tenants/acme/reports/q1.csv"}, client.keys())
	})

	t.Run("missing object", func(t *testing.T) {
		t.Parallel()

		store := newTestStorage(t, newFakeS3()).ForTenant("acme")

		_, err := store.Get(ctx, "nope.txt")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})

	t.Run("tenants cannot see each other's objects", func(t *testing.T) {
		t.Parallel()

		s := newTestStorage(t, newFakeS3())
		acme := s.ForTenant("acme")
		other := s.ForTenant("other")

		require.NoError(t, acme.Put(ctx, "secret.txt", strings.NewReader("acme data"), "text/plain"))

		_, err := other.Get(ctx, "secret.txt")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)

		names, err := other.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("list returns names relative to the tenant prefix", func(t *testing.T) {
		t.Parallel()

		store := newTestStorage(t, newFakeS3()).ForTenant("acme")
		require.NoError(t, store.Put(ctx, "a.txt", strings.NewReader("1"), "text/plain"))
		require.NoError(t, store.Put(ctx, "docs/b.txt", strings.NewReader("2"), "text/plain"))

		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "docs/b.txt"}, names)

		names, err = store.List(ctx, "docs/")
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/b.txt"}, names)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		store := newTestStorage(t, newFakeS3()).ForTenant("acme")
		require.NoError(t, store.Put(ctx, "a.txt", strings.NewReader("1"), "text/plain"))

		require.NoError(t, store.Delete(ctx, "a.txt"))
		require.NoError(t, store.Delete(ctx, "a.txt"))

		_, err := store.Get(ctx, "a.txt")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})

	t.Run("purge removes only the tenant's objects", func(t *testing.T) {
		t.Parallel()

		client := newFakeS3()
		s := newTestStorage(t, client)

		acme := s.ForTenant("acme")
		other := s.ForTenant("other")

		require.NoError(t, acme.Put(ctx, "a.txt", strings.NewReader("1"), "text/plain"))
		require.NoError(t, acme.Put(ctx, "b.txt", strings.NewReader("2"), "text/plain"))
		require.NoError(t, other.Put(ctx, "keep.txt", strings.NewReader("3"), "text/plain"))

		require.NoError(t, acme.Purge(ctx))

		assert.Equal(t, []string{"tenants/other/keep.txt"}, client.keys())

		// Purging an already-empty prefix is fine.
		require.NoError(t, acme.Purge(ctx))
	})
}

func TestStoreContext(t *testing.T) {
	t.Parallel()

	store := newTestStorage(t, newFakeS3()).ForTenant("acme")

	ctx := storage.WithStore(context.Background(), store)
	got, ok := storage.StoreFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, store, got)

	_, ok = storage.StoreFromContext(context.Background())
	assert.False(t, ok)
}
