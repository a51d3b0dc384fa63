package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"neuromap/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdErr     error
)

// Shared by every store; EncodeAll and DecodeAll are safe for concurrent use.
func zstdCodecs() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zstdErr != nil {
			return
		}
		zstdDecoder, zstdErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdErr
}

// EncodeSnapshot serializes a snapshot as zstd-compressed JSON.
func EncodeSnapshot(s model.DatasetSnapshot) ([]byte, error) {
	if err := checkVersion(s.VersionedRecord); err != nil {
		return nil, err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	enc, _, err := zstdCodecs()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

func DecodeSnapshot(payload []byte) (model.DatasetSnapshot, error) {
	_, dec, err := zstdCodecs()
	if err != nil {
		return model.DatasetSnapshot{}, err
	}
	data, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return model.DatasetSnapshot{}, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snapshot model.DatasetSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.DatasetSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.DatasetSnapshot{}, err
	}
	return snapshot, nil
}

// CurrentVersion is the record version written by this build.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
