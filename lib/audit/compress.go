// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// compressFile zstd-compresses source into destination.
func compressFile(source, destination string) error {
	input, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("audit: opening %s: %w", source, err)
	}
	defer input.Close()

	output, err := os.OpenFile(destination, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("audit: creating %s: %w", destination, err)
	}
	defer output.Close()

	writer, err := zstd.NewWriter(output)
	if err != nil {
		return fmt.Errorf("audit: zstd writer: %w", err)
	}
	if _, err := io.Copy(writer, input); err != nil {
		writer.Close()
		return fmt.Errorf("audit: compressing %s: %w", source, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("audit: finishing %s: %w", destination, err)
	}
	return nil
}

// zstReader adapts zstd.Decoder to io.ReadCloser.
type zstReader struct {
	decoder *zstd.Decoder
}

func newZstReader(reader io.Reader) (*zstReader, error) {
	decoder, err := zstd.NewReader(reader)
	if err != nil {
		return nil, err
	}
	return &zstReader{decoder: decoder}, nil
}

func (r *zstReader) Read(p []byte) (int, error) { return r.decoder.Read(p) }

func (r *zstReader) Close() error {
	r.decoder.Close()
	return nil
}
