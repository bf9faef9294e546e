// Package backend is the single seam between the optimised MIR program
// and an object artifact. It follows the teacher's internal/buildutil
// versioned-container idiom (magic number, version, table, payload,
// all via encoding/binary) rather than emitting real machine code,
// which is out of scope (§1, §4.10): a genuine native backend would
// replace only this package behind the same Emit signature.
package backend

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/samuelsleight/catastrophic-go/internal/mir"
)

// MagicNumber identifies the container format ("CATA" in hex).
const MagicNumber uint32 = 0x43415441

// Version is the container format's own version, independent of the
// language or toolchain version.
const Version uint32 = 1

// opcode is the container's flat instruction encoding.
type opcode uint8

const (
	opCommand opcode = iota
	opPushArg
	opPushNumber
	opPushBlock
	opPushBuiltin
	opImmediateCallBlock
	opImmediateCallBuiltin
	opImmediateConditionalCall
	opImmediateOperation
)

// Emit serialises blocks into the versioned binary object container:
// magic number, format version, block count, then per block its
// offset/arity and flat instruction table. log, when non-nil, receives
// a summary line sized with go-humanize and tagged with a build id
// from google/uuid -- mirroring the teacher's profiling/log-on-build
// texture without pulling a tracing library in for a single line.
func Emit(blocks []*mir.Block, w io.Writer, log *logrus.Logger) error {
	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, MagicNumber); err != nil {
		return fmt.Errorf("backend: write magic number: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, Version); err != nil {
		return fmt.Errorf("backend: write version: %w", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, uint32(len(blocks))); err != nil {
		return fmt.Errorf("backend: write block count: %w", err)
	}

	for i, b := range blocks {
		if err := writeBlock(&buf, b); err != nil {
			return fmt.Errorf("backend: write block %d: %w", i, err)
		}
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("backend: write object: %w", err)
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"build_id": uuid.NewString(),
			"blocks":   len(blocks),
			"size":     humanize.Bytes(uint64(n)),
		}).Info("emitted object container")
	}

	return nil
}

func writeBlock(buf *bytes.Buffer, b *mir.Block) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(b.Offset)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(b.Args)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(b.Instrs))); err != nil {
		return err
	}

	for _, instr := range b.Instrs {
		if err := writeInstr(buf, instr.Data); err != nil {
			return err
		}
	}
	return nil
}

func writeInstr(buf *bytes.Buffer, i mir.Instr) error {
	switch i.Kind {
	case mir.InstrCommand:
		return writeAll(buf, opCommand, uint8(i.Command))

	case mir.InstrPush:
		return writeValue(buf, i.Value)

	case mir.InstrImmediateCall:
		switch i.Call.Kind {
		case mir.FunctionBlock:
			return writeAll(buf, opImmediateCallBlock, uint32(i.Call.Block))
		case mir.FunctionBinOp:
			return writeAll(buf, opImmediateCallBuiltin, uint8(i.Call.Bin))
		default:
			return fmt.Errorf("unsupported immediate call function kind %d", i.Call.Kind)
		}

	case mir.InstrImmediateConditionalCall:
		if err := writeAll(buf, opImmediateConditionalCall); err != nil {
			return err
		}
		if err := writeValue(buf, *i.Cond); err != nil {
			return err
		}
		if err := writeAll(buf, uint32(i.Then.Block)); err != nil {
			return err
		}
		return writeAll(buf, uint32(i.Else.Block))

	default:
		return fmt.Errorf("unsupported instruction kind %d", i.Kind)
	}
}

func writeValue(buf *bytes.Buffer, v mir.Value) error {
	switch v.Kind {
	case mir.ValueArg:
		return writeAll(buf, opPushArg, uint32(v.Arg))
	case mir.ValueNumber:
		return writeAll(buf, opPushNumber, v.Number)
	case mir.ValueFunction:
		if v.Function.Kind == mir.FunctionBlock {
			return writeAll(buf, opPushBlock, uint32(v.Function.Block))
		}
		return writeAll(buf, opPushBuiltin, uint8(v.Function.Bin))
	case mir.ValueImmediateBinOp, mir.ValueImmediateTriOp:
		op := uint8(v.Bin)
		if v.Kind == mir.ValueImmediateTriOp {
			op = uint8(v.Tri)
		}
		if err := writeAll(buf, opImmediateOperation, uint8(v.Kind), op, uint8(len(v.Operands))); err != nil {
			return err
		}
		for _, operand := range v.Operands {
			if err := writeValue(buf, *operand); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported value kind %d for emission", v.Kind)
	}
}

func writeAll(buf *bytes.Buffer, fields ...interface{}) error {
	for _, f := range fields {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}
