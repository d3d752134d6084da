package minimeta

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

// registration is one composite type queued on a Builder.
type registration struct {
	goType reflect.Type
	name   string
	table  []FieldEntry
}

// Builder collects composite registrations and produces an immutable
// Registry. Types may be added in any order; field types are resolved only
// in Build. A Builder is not safe for concurrent use.
type Builder struct {
	opts    Options
	pending []*registration
	byType  map[reflect.Type]*registration
	errs    []error
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:   opts.withDefaults(),
		byType: make(map[reflect.Type]*registration),
	}
}

// Add registers struct type T with the field table derived from its
// declaration (see FieldTable).
func Add[T any](b *Builder, opts ...RegisterOpt) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	b.add(rt, FieldTable(rt), opts...)
}

// AddTable registers struct type rt with an explicit field table.
func AddTable(b *Builder, rt reflect.Type, table []FieldEntry, opts ...RegisterOpt) {
	cp := make([]FieldEntry, len(table))
	copy(cp, table)
	b.add(rt, cp, opts...)
}

func (b *Builder) add(rt reflect.Type, table []FieldEntry, opts ...RegisterOpt) {
	if rt == nil || rt.Kind() != reflect.Struct {
		b.errs = append(b.errs, newError(PhaseRegister, KindRegistration).
			detail("composite registration requires a struct type, got %v", rt).build())
		return
	}
	if _, dup := b.byType[rt]; dup {
		b.errs = append(b.errs, newError(PhaseRegister, KindRegistration).
			typ(typeName(rt)).detail("type registered twice").build())
		return
	}
	reg := &registration{goType: rt, name: typeName(rt), table: table}
	for _, o := range opts {
		o(reg)
	}
	b.pending = append(b.pending, reg)
	b.byType[rt] = reg
	b.opts.Logger.Debug("type queued",
		zap.String("type", reg.name),
		zap.Stringer("go_type", rt),
		zap.Int("fields", len(table)))
}

// Build resolves every queued registration and returns the frozen Registry.
// All registration problems are reported together.
func (b *Builder) Build() (*Registry, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	r := newRegistry(b.opts)
	log := b.opts.Logger

	var errs []error
	for _, reg := range b.pending {
		id := Hash(reg.name)
		if other, ok := r.byIdentity[id]; ok {
			errs = append(errs, newError(PhaseRegister, KindRegistration).typ(reg.name).
				detail("identity %#016x already used by %s", id, other.goType).build())
			continue
		}
		td := &TypeDescriptor{
			name:     reg.name,
			size:     uint64(reg.goType.Size()),
			identity: id,
			category: Composite,
			goType:   reg.goType,
		}
		td.actions = compositeActions{td: td}
		r.composites[reg.goType] = td
		r.byIdentity[id] = td
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	for _, reg := range b.pending {
		td := r.composites[reg.goType]
		class, err := r.buildClass(td, reg.table)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		td.class = class
		log.Debug("type registered",
			zap.String("type", td.name),
			zap.Uint64("identity", td.identity),
			zap.Uint64("version", class.version),
			zap.Uint64("size", td.size),
			zap.Int("fields", len(class.fields)))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	done := make(map[*TypeDescriptor]bool)
	for _, reg := range b.pending {
		settleMinSize(r.composites[reg.goType], done)
	}
	log.Debug("registry built", zap.Int("composites", len(r.composites)))
	return r, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Registry {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) buildClass(td *TypeDescriptor, table []FieldEntry) (*ClassDescriptor, error) {
	rt := td.goType
	c := &ClassDescriptor{
		fields: make([]*FieldDescriptor, 0, len(table)),
		byName: make(map[string]*FieldDescriptor, len(table)),
	}
	names := make([]string, 0, len(table))
	for _, e := range table {
		fail := func(format string, args ...any) error {
			err := newError(PhaseRegister, KindRegistration).typ(td.name).detail(format, args...).build()
			err.Path = []string{e.Name}
			return err
		}
		if e.Name == "" {
			return nil, fail("field at offset %d has no name", e.Offset)
		}
		if _, dup := c.byName[e.Name]; dup {
			return nil, fail("duplicate field name")
		}
		sf, ok := structFieldAt(rt, e)
		if !ok {
			return nil, fail("no field at offset %d", e.Offset)
		}
		ft := r.derive(sf.Type, nil)
		if e.TypeName != "" && e.TypeName != ft.name {
			return nil, fail("field table names type %q, resolved %q", e.TypeName, ft.name)
		}
		fd := &FieldDescriptor{name: e.Name, typ: ft, offset: e.Offset}
		c.fields = append(c.fields, fd)
		c.byName[e.Name] = fd
		names = append(names, ft.name)
	}
	c.version = ClassVersion(td.identity, names...)
	return c, nil
}
