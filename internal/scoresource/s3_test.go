package scoresource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 serves HEAD, GET and ListObjectsV2 for a path-style bucket from memory.
type fakeS3 struct {
	objects map[string][]byte
	heads   int
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	empty := func(code int) *http.Response {
		return &http.Response{StatusCode: code, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}
	}

	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(b.String())),
			Header:     http.Header{"Content-Type": {"application/xml"}},
		}, nil
	}

	body, ok := f.objects[key]
	switch req.Method {
	case http.MethodHead:
		f.heads++
		if !ok {
			return empty(http.StatusNotFound), nil
		}
		resp := empty(http.StatusOK)
		resp.Header.Set("Content-Length", fmt.Sprintf("%d", len(body)))
		return resp, nil
	case http.MethodGet:
		if !ok {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader(`<Error><Code>NoSuchKey</Code></Error>`)),
				Header:     http.Header{"Content-Type": {"application/xml"}},
			}, nil
		}
		return &http.Response{
			StatusCode:    http.StatusOK,
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Header:        http.Header{"Content-Length": {fmt.Sprintf("%d", len(body))}},
		}, nil
	}
	return empty(http.StatusNotImplemented), nil
}

func newFakeBucket(t *testing.T, objects map[string][]byte) (*Bucket, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: objects}
	b, err := NewBucket(context.Background(), S3Config{
		Bucket:          "scores",
		Prefix:          "hssp/",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	require.NoError(t, err)
	return b, fake
}

func TestNewBucket_RequiresBucket(t *testing.T) {
	_, err := NewBucket(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestBucket_ResolverAndOpen(t *testing.T) {
	b, _ := newFakeBucket(t, map[string][]byte{
		"hssp/1abc_A.scores":    []byte("0\tA\t0.5\n"),
		"hssp/1abc_B.scores.gz": gzipBytes(t, "0\tG\t0.1\n"),
	})
	ctx := context.Background()
	r := b.Resolver("1abc", PerChain)

	src, ok, err := r.Resolve(ctx, "A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1abc_A.scores", src.Name())
	assert.Equal(t, "0\tA\t0.5\n", readAll(t, src))

	src, ok, err = r.Resolve(ctx, "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0\tG\t0.1\n", readAll(t, src))

	_, ok, err = r.Resolve(ctx, "C")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBucket_List(t *testing.T) {
	b, _ := newFakeBucket(t, map[string][]byte{
		"hssp/b.scores":    []byte("x"),
		"hssp/a.scores.gz": gzipBytes(t, "y"),
		"hssp/readme.txt":  []byte("z"),
		"other/c.scores":   []byte("w"),
	})

	sources, err := b.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, "hssp/a.scores.gz", sources[0].(S3Object).Key())
	assert.Equal(t, "hssp/b.scores", sources[1].(S3Object).Key())
}

func TestS3Object_OpenMissing(t *testing.T) {
	b, _ := newFakeBucket(t, map[string][]byte{})
	_, err := b.Object("gone.scores").Open(context.Background())
	assert.Error(t, err)
}
