package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"listdist/internal/analysis"
)

// StdinLocation reads the CSV from standard input.
const StdinLocation = "-"

// Object is an opened input. Version changes whenever the content
// changes; an empty Version means the content must not be cached.
type Object struct {
	io.ReadCloser
	Version string
}

// Source opens input locations.
type Source interface {
	Open(ctx context.Context, location string) (*Object, error)
}

// FileSource opens local files.
type FileSource struct{}

func (FileSource) Open(_ context.Context, location string) (*Object, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, analysis.IOError(location, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, analysis.IOError(location, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, analysis.IOError(location, fmt.Errorf("is a directory"))
	}
	version := fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano())
	return &Object{ReadCloser: f, Version: version}, nil
}

// ReaderSource serves a single already open stream, typically stdin.
type ReaderSource struct {
	R io.Reader
}

func (s ReaderSource) Open(_ context.Context, _ string) (*Object, error) {
	return &Object{ReadCloser: io.NopCloser(s.R)}, nil
}

// BytesSource serves in-memory content, e.g. stdin read up front so that
// several analyses can share it. Every Open returns a fresh reader.
type BytesSource struct {
	Data []byte
}

func (s BytesSource) Open(_ context.Context, _ string) (*Object, error) {
	sum := sha256.Sum256(s.Data)
	return &Object{
		ReadCloser: io.NopCloser(bytes.NewReader(s.Data)),
		Version:    hex.EncodeToString(sum[:]),
	}, nil
}

// S3Source reads s3://bucket/key locations.
type S3Source struct {
	Client s3iface.S3API
}

// NewS3Source builds a client from the shared AWS config and environment.
func NewS3Source(region string) (*S3Source, error) {
	cfg := aws.Config{
		MaxRetries: aws.Int(3),
	}
	if region != "" {
		cfg.Region = aws.String(region)
	}
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, err
	}
	return &S3Source{Client: s3.New(sess)}, nil
}

// ParseS3Location splits s3://bucket/key.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", analysis.SourceError(location, err.Error())
	}
	if u.Scheme != "s3" {
		return "", "", analysis.SourceError(location, "not an s3 location")
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", analysis.SourceError(location, "expected s3://bucket/key")
	}
	return u.Host, key, nil
}

func (s *S3Source) Open(ctx context.Context, location string) (*Object, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return nil, err
	}
	out, err := s.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok {
			return nil, analysis.IOError(location, fmt.Errorf("%s: %s", aerr.Code(), aerr.Message()))
		}
		return nil, analysis.IOError(location, err)
	}
	return &Object{ReadCloser: out.Body, Version: aws.StringValue(out.ETag)}, nil
}

// Router dispatches a location to the source serving its scheme.
// The S3 client is created on first use.
type Router struct {
	Files Source
	Stdin Source

	Region string
	once   sync.Once
	s3     Source
	s3Err  error
}

// NewRouter returns a Router over local files, stdin and S3.
func NewRouter(region string) *Router {
	return &Router{
		Files:  FileSource{},
		Stdin:  ReaderSource{R: os.Stdin},
		Region: region,
	}
}

// WithS3 overrides the S3 source, mainly for tests.
func (r *Router) WithS3(src Source) *Router {
	r.once.Do(func() {})
	r.s3 = src
	return r
}

func (r *Router) Open(ctx context.Context, location string) (*Object, error) {
	switch {
	case location == StdinLocation:
		if r.Stdin == nil {
			return nil, analysis.SourceError(location, "stdin is not available")
		}
		return r.Stdin.Open(ctx, location)
	case strings.HasPrefix(location, "s3://"):
		r.once.Do(func() {
			r.s3, r.s3Err = NewS3Source(r.Region)
		})
		if r.s3Err != nil {
			return nil, analysis.SourceError(location, r.s3Err.Error())
		}
		return r.s3.Open(ctx, location)
	case strings.Contains(location, "://"):
		return nil, analysis.SourceError(location, "unsupported scheme")
	default:
		return r.Files.Open(ctx, location)
	}
}
