package minimeta

import (
	"encoding/binary"
	"io"
	"reflect"
	"unsafe"
)

// Encoder accumulates the binary encoding of one or more values. The format
// is host-endian and untagged; a buffer is interpretable only by a reader
// that already knows the target type.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder appending to buf.
func NewEncoder(buf []byte) *Encoder { return &Encoder{buf: buf} }

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int { return len(e.buf) }

// Reset discards the buffer contents, keeping its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// WriteTo implements io.WriterTo.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(e.buf)
	return int64(n), err
}

func (e *Encoder) writeRaw(p []byte) { e.buf = append(e.buf, p...) }

func (e *Encoder) writeUint64(v uint64) { e.buf = binary.NativeEndian.AppendUint64(e.buf, v) }

// Encode appends the encoding of the value at src, described by td.
func (e *Encoder) Encode(td *TypeDescriptor, src unsafe.Pointer) error {
	return td.actions.WriteBinary(e, nil, src)
}

// Decoder reads binary encodings from a byte slice.
type Decoder struct {
	buf      []byte
	off      int
	depth    int
	maxDepth int
}

// NewDecoder returns a Decoder over data. maxDepth bounds value nesting;
// zero disables the check.
func NewDecoder(data []byte, maxDepth int) *Decoder {
	return &Decoder{buf: data, maxDepth: maxDepth}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int { return len(d.buf) - d.off }

// Decode reads one value described by td into dst.
func (d *Decoder) Decode(td *TypeDescriptor, dst unsafe.Pointer) error {
	return td.actions.ReadBinary(d, nil, dst)
}

func (d *Decoder) readRaw(typeName string, n int) ([]byte, error) {
	if n > d.Remaining() {
		return nil, newError(PhaseDecode, KindMalformedInput).typ(typeName).
			detail("need %d bytes at offset %d, have %d", n, d.off, d.Remaining()).
			cause(io.ErrUnexpectedEOF).build()
	}
	p := d.buf[d.off : d.off+n]
	d.off += n
	return p, nil
}

func (d *Decoder) readUint64(typeName string) (uint64, error) {
	p, err := d.readRaw(typeName, 8)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(p), nil
}

// readCount reads a sequence length whose elements each occupy at least
// elemMin bytes. A count the remaining input cannot hold is corrupt; the
// check runs before the caller allocates, so a short buffer can never force
// a large allocation.
func (d *Decoder) readCount(typeName string, elemMin uint64) (int, error) {
	n, err := d.readUint64(typeName)
	if err != nil {
		return 0, err
	}
	if elemMin == 0 {
		elemMin = 1
	}
	if need := mulSat(n, elemMin); need > uint64(d.Remaining()) {
		return 0, malformed(PhaseDecode, typeName,
			"sequence length %d needs at least %d bytes, have %d", n, need, d.Remaining())
	}
	return int(n), nil
}

func (d *Decoder) enter(typeName string) error {
	d.depth++
	if d.maxDepth > 0 && d.depth > d.maxDepth {
		return malformed(PhaseDecode, typeName, "nesting depth exceeds %d", d.maxDepth)
	}
	return nil
}

func (d *Decoder) leave() { d.depth-- }

// Serialize returns the binary encoding of v.
func Serialize[T any](r *Registry, v T) ([]byte, error) {
	td, err := TypeDescriptorOf[T](r)
	if err != nil {
		return nil, err
	}
	e := NewEncoder(make([]byte, 0, td.size+8))
	if err := e.Encode(td, unsafe.Pointer(&v)); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Deserialize decodes data into a new T. The whole buffer must be consumed.
func Deserialize[T any](r *Registry, data []byte) (T, error) {
	var v T
	td, err := TypeDescriptorOf[T](r)
	if err != nil {
		return v, err
	}
	if err := r.decodeAll(td, data, unsafe.Pointer(&v)); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Marshal is the non-generic form of Serialize.
func (r *Registry) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, newError(PhaseEncode, KindRegistration).detail("nil value").build()
	}
	rv := reflect.ValueOf(v)
	td, err := r.TypeOf(rv.Type())
	if err != nil {
		return nil, err
	}
	// copy into addressable memory
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	e := NewEncoder(make([]byte, 0, td.size+8))
	if err := e.Encode(td, p.UnsafePointer()); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// Unmarshal decodes data into the value out points to. The target is reset
// to its zero value first.
func (r *Registry) Unmarshal(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(PhaseDecode, KindRegistration).detail("Unmarshal requires a non-nil pointer, got %T", out).build()
	}
	td, err := r.TypeOf(rv.Type().Elem())
	if err != nil {
		return err
	}
	tmp := reflect.New(td.goType)
	if err := r.decodeAll(td, data, tmp.UnsafePointer()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

func (r *Registry) decodeAll(td *TypeDescriptor, data []byte, dst unsafe.Pointer) error {
	d := NewDecoder(data, r.opts.MaxDepth)
	if err := d.Decode(td, dst); err != nil {
		return err
	}
	if n := d.Remaining(); n > 0 {
		return malformed(PhaseDecode, td.name, "%d trailing bytes after value", n)
	}
	return nil
}
