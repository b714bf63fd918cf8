package savestate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Amund211/cheevo/internal/domain"
	"github.com/Amund211/cheevo/internal/runtime"
	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/afero"
)

var magic = [4]byte{'C', 'H', 'V', 'S'}

const formatVersion uint16 = 1

// magic + version + checksum
const headerSize = 4 + 2 + 8

type operandRecord struct {
	Current  uint32 `cbor:"1,keyasint"`
	Previous uint32 `cbor:"2,keyasint"`
	Prior    uint32 `cbor:"3,keyasint"`
	Valid    bool   `cbor:"4,keyasint"`
}

type conditionRecord struct {
	Hits  uint32        `cbor:"1,keyasint"`
	Left  operandRecord `cbor:"2,keyasint"`
	Right operandRecord `cbor:"3,keyasint"`
}

type entityRecord struct {
	Kind          int               `cbor:"1,keyasint"`
	ID            uint32            `cbor:"2,keyasint"`
	Signature     uint64            `cbor:"3,keyasint"`
	State         int               `cbor:"4,keyasint"`
	Edge          bool              `cbor:"5,keyasint"`
	Value         int64             `cbor:"6,keyasint"`
	Conditions    []conditionRecord `cbor:"7,keyasint"`
	ValueOperands []operandRecord   `cbor:"8,keyasint"`
}

type payload struct {
	Entities []entityRecord `cbor:"1,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("failed to create cbor encoder: %w", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyEnforcedAPF,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("failed to create cbor decoder: %w", err))
	}
}

func toOperandRecord(s runtime.OperandSnapshot) operandRecord {
	return operandRecord{Current: s.Current, Previous: s.Previous, Prior: s.Prior, Valid: s.Valid}
}

func (r operandRecord) snapshot() runtime.OperandSnapshot {
	return runtime.OperandSnapshot{Current: r.Current, Previous: r.Previous, Prior: r.Prior, Valid: r.Valid}
}

// Encode serializes a snapshot into the versioned save-state format
func Encode(snapshot runtime.Snapshot) ([]byte, error) {
	p := payload{Entities: make([]entityRecord, 0, len(snapshot.Entities))}
	for _, entity := range snapshot.Entities {
		record := entityRecord{
			Kind:      int(entity.Kind),
			ID:        entity.ID,
			Signature: entity.Signature,
			State:     entity.State,
			Edge:      entity.Edge,
			Value:     entity.Value,
		}
		for _, cond := range entity.Conditions {
			record.Conditions = append(record.Conditions, conditionRecord{
				Hits:  cond.Hits,
				Left:  toOperandRecord(cond.Left),
				Right: toOperandRecord(cond.Right),
			})
		}
		for _, operand := range entity.ValueOperands {
			record.ValueOperands = append(record.ValueOperands, toOperandRecord(operand))
		}
		p.Entities = append(p.Entities, record)
	}

	body, err := encMode.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode save state: %w", err)
	}

	buf := make([]byte, headerSize, headerSize+len(body))
	copy(buf, magic[:])
	binary.LittleEndian.PutUint16(buf[4:], formatVersion)
	binary.LittleEndian.PutUint64(buf[6:], xxhash.Sum64(body))
	return append(buf, body...), nil
}

// Decode parses and validates a buffer produced by Encode.
// Every failure wraps domain.ErrCorruptState.
func Decode(buf []byte) (runtime.Snapshot, error) {
	if len(buf) < headerSize {
		return runtime.Snapshot{}, fmt.Errorf("%w: buffer too short (%d bytes)", domain.ErrCorruptState, len(buf))
	}
	if !bytes.Equal(buf[:4], magic[:]) {
		return runtime.Snapshot{}, fmt.Errorf("%w: bad magic", domain.ErrCorruptState)
	}
	if version := binary.LittleEndian.Uint16(buf[4:]); version != formatVersion {
		return runtime.Snapshot{}, fmt.Errorf("%w: unsupported version %d", domain.ErrCorruptState, version)
	}

	body := buf[headerSize:]
	if checksum := binary.LittleEndian.Uint64(buf[6:]); checksum != xxhash.Sum64(body) {
		return runtime.Snapshot{}, fmt.Errorf("%w: checksum mismatch", domain.ErrCorruptState)
	}

	var p payload
	if err := decMode.Unmarshal(body, &p); err != nil {
		return runtime.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrCorruptState, err)
	}

	snapshot := runtime.Snapshot{Entities: make([]runtime.EntitySnapshot, 0, len(p.Entities))}
	for _, record := range p.Entities {
		kind := runtime.EntityKind(record.Kind)
		if kind != runtime.EntityAchievement && kind != runtime.EntityLeaderboard {
			return runtime.Snapshot{}, fmt.Errorf("%w: unknown entity kind %d", domain.ErrCorruptState, record.Kind)
		}

		entity := runtime.EntitySnapshot{
			Kind:      kind,
			ID:        record.ID,
			Signature: record.Signature,
			State:     record.State,
			Edge:      record.Edge,
			Value:     record.Value,
			// Same shape as runtime.Processor.Snapshot
			Conditions: make([]runtime.ConditionSnapshot, 0, len(record.Conditions)),
		}
		if kind == runtime.EntityLeaderboard {
			entity.ValueOperands = make([]runtime.OperandSnapshot, 0, len(record.ValueOperands))
		}
		for _, cond := range record.Conditions {
			entity.Conditions = append(entity.Conditions, runtime.ConditionSnapshot{
				Hits:  cond.Hits,
				Left:  cond.Left.snapshot(),
				Right: cond.Right.snapshot(),
			})
		}
		for _, operand := range record.ValueOperands {
			entity.ValueOperands = append(entity.ValueOperands, operand.snapshot())
		}
		snapshot.Entities = append(snapshot.Entities, entity)
	}

	return snapshot, nil
}

// Serializer captures and restores the evaluation state of a processor
type Serializer struct {
	proc *runtime.Processor
	fs   afero.Fs
}

func New(proc *runtime.Processor, fs afero.Fs) *Serializer {
	return &Serializer{proc: proc, fs: fs}
}

func (s *Serializer) Capture() ([]byte, error) {
	return Encode(s.proc.Snapshot())
}

// Restore replaces the processor state with the captured state.
// The buffer is fully validated first, so on error the processor is left untouched.
func (s *Serializer) Restore(buf []byte) error {
	if !s.proc.HasEntities() {
		return domain.ErrNothingLoaded
	}

	snapshot, err := Decode(buf)
	if err != nil {
		return err
	}

	s.proc.Apply(snapshot)
	return nil
}

func (s *Serializer) SaveToFile(path string) error {
	buf, err := s.Capture()
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create save state directory: %w", err)
	}

	// Written next to the target and renamed into place
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write save state: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return errors.Join(fmt.Errorf("failed to move save state into place: %w", err), s.fs.Remove(tmp))
	}
	return nil
}

func (s *Serializer) LoadFromFile(path string) error {
	buf, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read save state: %w", err)
	}
	return s.Restore(buf)
}
