package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"adaptive-core/internal/brain"
	"adaptive-core/internal/profile"
)

const (
	fileMagic   uint32 = 0x4142524E // "ABRN"
	fileVersion uint16 = 1
)

// Store serializes brains and the symbol profile as fixed-layout binary
// records, one file per instrument. Saves are best-effort and atomic: data
// goes to a temp file first and is renamed into place, so a crash mid-write
// never leaves a truncated brain file behind.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns the brain file location for a symbol.
func (s *Store) Path(symbol string) string {
	return filepath.Join(s.Dir, symbol+".brain")
}

type fileHeader struct {
	Magic   uint32
	Version uint16
}

// profileRecord is the fixed-size on-disk shape of a SymbolProfile.
type profileRecord struct {
	AvgDailyRange     float64
	SpikeProbability  float64
	ReversionSpeed    float64
	TrendPersistence  float64
	SessionVolatility [profile.SessionCount]float64
	SampleCount       int64
}

// Save writes both brain snapshots and the profile for a symbol.
func (s *Store) Save(symbol string, trend, reversal *brain.Snapshot, prof *profile.SymbolProfile) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create brain dir: %w", err)
	}

	final := s.Path(symbol)
	tmp, err := os.CreateTemp(s.Dir, symbol+".brain.tmp-*")
	if err != nil {
		return fmt.Errorf("create temp brain file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// On any failure path the temp file must not linger.
		if tmpName != "" {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := writeRecords(w, trend, reversal, prof); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush brain file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync brain file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close brain file: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		return fmt.Errorf("rename brain file: %w", err)
	}
	tmpName = "" // ownership transferred
	return nil
}

func writeRecords(w io.Writer, trend, reversal *brain.Snapshot, prof *profile.SymbolProfile) error {
	hdr := fileHeader{Magic: fileMagic, Version: fileVersion}
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, trend); err != nil {
		return fmt.Errorf("write trend brain: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, reversal); err != nil {
		return fmt.Errorf("write reversal brain: %w", err)
	}
	rec := profileRecord{
		AvgDailyRange:     prof.AvgDailyRange,
		SpikeProbability:  prof.SpikeProbability,
		ReversionSpeed:    prof.ReversionSpeed,
		TrendPersistence:  prof.TrendPersistence,
		SessionVolatility: prof.SessionVolatility,
		SampleCount:       prof.SampleCount,
	}
	if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Load reads back both brains and the profile for a symbol. The load is
// fail-closed: a missing file, bad header, or any short read rejects the
// whole file and the caller falls back to fresh brains plus pre-training.
func (s *Store) Load(symbol string) (*brain.Snapshot, *brain.Snapshot, *profile.SymbolProfile, error) {
	f, err := os.Open(s.Path(symbol))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open brain file: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, nil, nil, fmt.Errorf("read header: %w", err)
	}
	if hdr.Magic != fileMagic {
		return nil, nil, nil, fmt.Errorf("bad magic %#x", hdr.Magic)
	}
	if hdr.Version != fileVersion {
		return nil, nil, nil, fmt.Errorf("unsupported version %d", hdr.Version)
	}

	trend := &brain.Snapshot{}
	if err := binary.Read(r, binary.LittleEndian, trend); err != nil {
		return nil, nil, nil, fmt.Errorf("read trend brain: %w", err)
	}
	reversal := &brain.Snapshot{}
	if err := binary.Read(r, binary.LittleEndian, reversal); err != nil {
		return nil, nil, nil, fmt.Errorf("read reversal brain: %w", err)
	}

	var rec profileRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return nil, nil, nil, fmt.Errorf("read profile: %w", err)
	}

	prof := profile.New(symbol)
	prof.AvgDailyRange = rec.AvgDailyRange
	prof.SpikeProbability = rec.SpikeProbability
	prof.ReversionSpeed = rec.ReversionSpeed
	prof.TrendPersistence = rec.TrendPersistence
	prof.SessionVolatility = rec.SessionVolatility
	prof.SampleCount = rec.SampleCount

	return trend, reversal, prof, nil
}
