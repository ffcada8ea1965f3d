package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"resume-parser/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "resumes/file.pdf", want: "resumes/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "resumes/file.pdf", want: "root/resumes/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "resumes/file.pdf", want: "root/resumes/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/resumes/file.pdf", want: "root/resumes/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "resumes/file.pdf", want: "root/sub/resumes/file.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeAPI struct {
	put     *s3.PutObjectInput
	body    string
	getErr  error
	deleted []string
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func (f *fakeAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestPutUsesPrefixAndEncryption(t *testing.T) {
	api := &fakeAPI{}
	store, err := NewWithClient(api, "bucket", "/env/", "kms-key")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	n, err := store.Put(context.Background(), "resumes/u/r/cv.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	if got := aws.ToString(api.put.Key); got != "env/resumes/u/r/cv.pdf" {
		t.Fatalf("unexpected key %q", got)
	}
	if api.put.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms {
		t.Fatalf("expected kms encryption, got %q", api.put.ServerSideEncryption)
	}
	if got := aws.ToString(api.put.ContentType); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}

	if err := store.Delete(context.Background(), "resumes/u/r/cv.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "env/resumes/u/r/cv.pdf" {
		t.Fatalf("unexpected deletes %v", api.deleted)
	}
}

func TestOpenMapsMissingKey(t *testing.T) {
	api := &fakeAPI{getErr: &s3types.NoSuchKey{}}
	store, err := NewWithClient(api, "bucket", "", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := store.Open(context.Background(), "missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := NewWithClient(&fakeAPI{}, " ", "", ""); err == nil {
		t.Fatalf("expected error for empty bucket")
	}
}
