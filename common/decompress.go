package common

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

type decompressorFactory = func(io.Reader) (io.Reader, error)

// Returns a decompressor factory according to encoding type. Encoding names
// follow HTTP content-encoding tokens.
func getDecompressorFactory(encoding string) (decompressorFactory, error) {
	switch encoding {
	case "br":
		return func(reader io.Reader) (io.Reader, error) {
			return brotli.NewReader(reader), nil
		}, nil
	case "bzip2":
		return func(reader io.Reader) (io.Reader, error) {
			return bzip2.NewReader(reader), nil
		}, nil
	case "deflate":
		return func(reader io.Reader) (io.Reader, error) {
			return flate.NewReader(reader), nil
		}, nil
	case "gzip":
		return func(reader io.Reader) (io.Reader, error) {
			return gzip.NewReader(reader)
		}, nil
	case "zstd":
		return func(reader io.Reader) (io.Reader, error) {
			decoder, err := zstd.NewReader(reader)
			if err != nil {
				return nil, err
			}
			return decoder.IOReadCloser(), nil
		}, nil
	case "", "identity":
		return func(reader io.Reader) (io.Reader, error) {
			return reader, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown content-encoding: %s", encoding)
	}
}

// DecompressBody decodes data of given content-encoding.
func DecompressBody(encoding string, body []byte) ([]byte, error) {
	factory, err := getDecompressorFactory(encoding)
	if err != nil {
		return nil, err
	}

	reader, err := factory(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	output, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %s", err)
	}

	return output, nil
}

// EncodingFromExt maps a file extension to the content-encoding token used by
// DecompressBody.
func EncodingFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".br":
		return "br"
	case ".bz2":
		return "bzip2"
	case ".gz":
		return "gzip"
	case ".zst", ".zstd":
		return "zstd"
	default:
		return ""
	}
}

type inputFile struct {
	io.Reader
	closers []io.Closer
}

func (f *inputFile) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenInput opens a file for reading, transparently decompressing it when its
// extension names a known compression format.
func OpenInput(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %s", path, err)
	}

	factory, err := getDecompressorFactory(EncodingFromExt(path))
	if err != nil {
		file.Close()
		return nil, err
	}

	reader, err := factory(bufio.NewReader(file))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create decompressor for %s: %s", path, err)
	}

	result := &inputFile{Reader: reader, closers: []io.Closer{file}}
	if closer, ok := reader.(io.Closer); ok {
		result.closers = append(result.closers, closer)
	}

	return result, nil
}
