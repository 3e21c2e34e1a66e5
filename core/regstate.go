package core

import "fmt"

// AccessKind is the kind of the most recent access to a register.
type AccessKind int

const (
	AccessNone AccessKind = iota
	AccessRead
	AccessWrite
)

func (k AccessKind) String() string {
	switch k {
	case AccessNone:
		return "none"
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("AccessKind(%d)", int(k))
	}
}

type regRecord struct {
	inst int
	kind AccessKind
}

var unaccessed = regRecord{inst: -1, kind: AccessNone}

// RegisterState remembers, for every register, the last instruction that
// touched it and whether that access was a read or a write. The zero value
// is uninitialized.
type RegisterState struct {
	records []regRecord
}

// NewRegisterState creates an initialized state with count registers.
func NewRegisterState(count int) (*RegisterState, error) {
	s := &RegisterState{}
	if err := s.Init(count); err != nil {
		return nil, err
	}
	return s, nil
}

// Init creates count never-accessed records. It may be called only once.
func (s *RegisterState) Init(count int) error {
	if s.records != nil {
		return fmt.Errorf("register state already initialized with %d registers",
			len(s.records))
	}

	if count <= 0 {
		return fmt.Errorf("register count must be positive, got %d", count)
	}

	s.records = make([]regRecord, count)
	for i := range s.records {
		s.records[i] = unaccessed
	}

	return nil
}

// Initialized reports whether Init has succeeded.
func (s *RegisterState) Initialized() bool {
	return s != nil && s.records != nil
}

// Count returns the number of registers, 0 when uninitialized.
func (s *RegisterState) Count() int {
	if !s.Initialized() {
		return 0
	}
	return len(s.records)
}

// RecordAccess overwrites the record of reg.
func (s *RegisterState) RecordAccess(reg, inst int, kind AccessKind) error {
	if err := s.check(reg); err != nil {
		return err
	}

	s.records[reg] = regRecord{inst: inst, kind: kind}

	return nil
}

// LastAccess returns the last instruction that accessed reg and how. A
// never-accessed register reports -1 and AccessNone.
func (s *RegisterState) LastAccess(reg int) (int, AccessKind, error) {
	if err := s.check(reg); err != nil {
		return unaccessed.inst, unaccessed.kind, err
	}

	r := s.records[reg]

	return r.inst, r.kind, nil
}

// Valid reports whether reg is inside the register file.
func (s *RegisterState) Valid(reg int) bool {
	return s.check(reg) == nil
}

func (s *RegisterState) check(reg int) error {
	if !s.Initialized() {
		return ErrUninitialized
	}

	if reg < 0 || reg >= len(s.records) {
		return &InvalidRegisterError{Reg: reg, Count: len(s.records), Inst: -1}
	}

	return nil
}
