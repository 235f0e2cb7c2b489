// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// recordDomainKey is the BLAKE3 keyed-hash domain for audit entries.
// The bytes are the ASCII domain name zero-padded to 32 bytes, so the
// key is inspectable in hex dumps without losing any cryptographic
// property.
var recordDomainKey = [32]byte{
	's', 't', 'a', 'g', 'e', 'h', 'a', 'n', 'd', '.',
	'a', 'u', 'd', 'i', 't', '.', 'r', 'e', 'c', 'o', 'r', 'd',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding: the same logical entry always produces identical bytes,
// which the hash chain depends on.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("audit: CBOR encoder initialization failed: " + err.Error())
	}
}

// Record describes one committed transaction.
type Record struct {
	ID        string    `cbor:"id"`
	Sequence  uint64    `cbor:"sequence"`
	Time      time.Time `cbor:"time"`
	SessionID string    `cbor:"session_id"`
	Label     string    `cbor:"label"`
	Methods   []string  `cbor:"methods"`
	Executed  bool      `cbor:"executed"`
}

// entry is the on-disk framing: the record plus its chain hashes.
type entry struct {
	Record   Record `cbor:"record"`
	PrevHash []byte `cbor:"prev_hash"`
	Hash     []byte `cbor:"hash"`
}

// ErrChainBroken is returned by verification when an entry's hash
// does not match the recomputed chain value.
var ErrChainBroken = errors.New("audit: hash chain broken")

// Log is an open audit log. Not safe for concurrent use; the bridge
// appends from its control goroutine only.
type Log struct {
	path     string
	file     *os.File
	logger   *slog.Logger
	sequence uint64
	prevHash []byte
}

// Open opens (or creates) the audit log at path and replays any
// existing entries to recover the chain position. A log whose
// existing entries fail verification refuses to open — appending to
// a corrupt chain would mask the corruption.
func Open(path string, logger *slog.Logger) (*Log, error) {
	if logger == nil {
		logger = slog.Default()
	}

	log := &Log{path: path, logger: logger}

	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		count, lastSequence, lastHash, err := verifyStream(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("audit: existing log %s: %w", path, err)
		}
		log.sequence = lastSequence
		log.prevHash = lastHash
		logger.Debug("audit log replayed", "path", path, "entries", count)
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("audit: reading %s: %w", path, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("audit: opening %s: %w", path, err)
	}
	log.file = file
	return log, nil
}

// Append records one committed transaction and extends the chain.
func (l *Log) Append(sessionID, label string, methods []string, executed bool) error {
	record := Record{
		ID:        uuid.NewString(),
		Sequence:  l.sequence + 1,
		Time:      time.Now().UTC(),
		SessionID: sessionID,
		Label:     label,
		Methods:   methods,
		Executed:  executed,
	}

	hash, err := hashRecord(record, l.prevHash)
	if err != nil {
		return err
	}

	encoded, err := encMode.Marshal(entry{
		Record:   record,
		PrevHash: l.prevHash,
		Hash:     hash,
	})
	if err != nil {
		return fmt.Errorf("audit: encoding entry: %w", err)
	}
	if _, err := l.file.Write(encoded); err != nil {
		return fmt.Errorf("audit: writing entry: %w", err)
	}

	l.sequence = record.Sequence
	l.prevHash = hash
	return nil
}

// Close closes the log file.
func (l *Log) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Sequence returns the sequence number of the last appended entry.
func (l *Log) Sequence() uint64 { return l.sequence }

// hashRecord computes the chain hash for a record: keyed BLAKE3 over
// the previous hash followed by the record's deterministic encoding.
func hashRecord(record Record, prevHash []byte) ([]byte, error) {
	encoded, err := encMode.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("audit: encoding record: %w", err)
	}
	hasher, err := blake3.NewKeyed(recordDomainKey[:])
	if err != nil {
		return nil, fmt.Errorf("audit: hash initialization: %w", err)
	}
	hasher.Write(prevHash)
	hasher.Write(encoded)
	return hasher.Sum(nil), nil
}

// Rotate closes the current segment, compresses it to
// <path>.<lastSequence>.zst, and starts a fresh segment. The chain
// continues: the next entry's prev_hash is the rotated segment's last
// hash.
func (l *Log) Rotate() error {
	if l.sequence == 0 {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("audit: closing segment: %w", err)
	}
	l.file = nil

	compressed := l.path + "." + strconv.FormatUint(l.sequence, 10) + ".zst"
	if err := compressFile(l.path, compressed); err != nil {
		return err
	}
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("audit: removing rotated segment: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("audit: opening fresh segment: %w", err)
	}
	l.file = file
	l.logger.Info("audit log rotated", "segment", compressed, "entries", l.sequence)
	return nil
}

// VerifyFile replays a log segment and checks the hash chain.
// Transparently decompresses .zst segments. Returns the number of
// verified entries.
func VerifyFile(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("audit: opening %s: %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if isZstPath(path) {
		decoder, err := newZstReader(file)
		if err != nil {
			return 0, fmt.Errorf("audit: decompressing %s: %w", path, err)
		}
		defer decoder.Close()
		reader = decoder
	}

	count, _, _, err := verifyStream(reader, nil)
	return count, err
}

// verifyStream decodes entries and recomputes the chain. startHash
// seeds the chain (nil for a segment that begins it). Returns entry
// count, last sequence, and last hash.
func verifyStream(reader io.Reader, startHash []byte) (int, uint64, []byte, error) {
	decoder := cbor.NewDecoder(reader)
	prevHash := startHash
	count := 0
	var lastSequence uint64

	for {
		var e entry
		if err := decoder.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return count, lastSequence, prevHash, nil
			}
			return count, lastSequence, prevHash, fmt.Errorf("audit: decoding entry %d: %w", count+1, err)
		}

		// A fresh segment's first entry may continue a rotated chain;
		// accept its recorded prev_hash as the seed in that case.
		if count == 0 && startHash == nil {
			prevHash = e.PrevHash
		}
		if !bytes.Equal(e.PrevHash, prevHash) {
			return count, lastSequence, prevHash,
				fmt.Errorf("%w: entry %d prev_hash mismatch", ErrChainBroken, e.Record.Sequence)
		}
		expected, err := hashRecord(e.Record, prevHash)
		if err != nil {
			return count, lastSequence, prevHash, err
		}
		if !bytes.Equal(e.Hash, expected) {
			return count, lastSequence, prevHash,
				fmt.Errorf("%w: entry %d hash mismatch", ErrChainBroken, e.Record.Sequence)
		}

		prevHash = e.Hash
		lastSequence = e.Record.Sequence
		count++
	}
}

func isZstPath(path string) bool {
	return len(path) > 4 && path[len(path)-4:] == ".zst"
}
